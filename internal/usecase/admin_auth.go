package usecase

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/gogo-imperial/gogo-web/internal/entity"
	"github.com/gogo-imperial/gogo-web/internal/infra/auth"
)

var (
	ErrUnauthorized  = &DomainError{Code: CodeUnauthorized, Message: "Unauthorized"}
	ErrNotAllowed    = &DomainError{Code: CodeUnauthorized, Message: "Email not authorized for admin access"}
	ErrLoginDisabled = &DomainError{Code: CodeLoginDisabled, Message: "Admin login not configured"}
)

type AdminAuthUseCase struct {
	Sessions entity.SessionRepositoryInterface
	Verifier TokenVerifier
	Audit    *AuditLogger
	TTL      time.Duration
	Logger   *zap.Logger

	allowed  map[string]struct{}
	now      Clock
	newToken func() (string, error)
}

// NewAdminAuthUseCase builds the admin session manager. A nil verifier disables login.
func NewAdminAuthUseCase(
	sessions entity.SessionRepositoryInterface,
	verifier TokenVerifier,
	audit *AuditLogger,
	allowlist []string,
	ttl time.Duration,
	logger *zap.Logger,
) *AdminAuthUseCase {
	if ttl <= 0 {
		ttl = time.Hour
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	allowed := make(map[string]struct{}, len(allowlist))
	for _, e := range allowlist {
		if e = strings.ToLower(strings.TrimSpace(e)); e != "" {
			allowed[e] = struct{}{}
		}
	}
	return &AdminAuthUseCase{
		Sessions: sessions,
		Verifier: verifier,
		Audit:    audit,
		TTL:      ttl,
		Logger:   logger,
		allowed:  allowed,
		now:      time.Now,
		newToken: auth.NewSessionToken,
	}
}

func (uc *AdminAuthUseCase) IsAllowed(email string) bool {
	_, ok := uc.allowed[strings.ToLower(strings.TrimSpace(email))]
	return ok
}

// Login exchanges a verified identity token for an admin session.
func (uc *AdminAuthUseCase) Login(ctx context.Context, in LoginInput) (*LoginOutput, error) {
	if uc.Verifier == nil {
		return nil, ErrLoginDisabled
	}
	if strings.TrimSpace(in.Token) == "" {
		return nil, &DomainError{Code: CodeValidation, Message: "Token is required"}
	}

	identity, err := uc.Verifier.Verify(ctx, in.Token)
	if err != nil {
		uc.Logger.Warn("admin token rejected", zap.String("ip", in.IP), zap.Error(err))
		return nil, ErrUnauthorized
	}

	actor := Actor{Email: identity.Email, IP: in.IP, UserAgent: in.UserAgent}
	uc.Audit.Log(ctx, actor, entity.AuditLoginRequest, entity.ItemAdminSession, "", nil, nil)

	if !uc.IsAllowed(identity.Email) {
		uc.Logger.Warn("admin login for email outside allowlist", zap.String("email", identity.Email))
		return nil, ErrNotAllowed
	}

	raw, err := uc.newToken()
	if err != nil {
		return nil, &TechnicalError{Code: CodeStorage, Message: "failed to create session", Err: err}
	}
	now := uc.now().UTC()
	session := &entity.AdminSession{
		Email:     identity.Email,
		TokenHash: auth.HashToken(raw),
		ExpiresAt: now.Add(uc.TTL),
		CreatedAt: now,
	}
	if err := uc.Sessions.Create(ctx, session); err != nil {
		return nil, storageError("failed to create session", err)
	}

	uc.Audit.Log(ctx, actor, entity.AuditLogin, entity.ItemAdminSession, session.ID, nil,
		map[string]any{"expires_at": session.ExpiresAt.Format(time.RFC3339)})
	uc.Logger.Info("admin logged in", zap.String("email", identity.Email))

	return &LoginOutput{Email: identity.Email, SessionToken: raw, ExpiresAt: session.ExpiresAt}, nil
}

// Authorize resolves a raw session token to its active session.
func (uc *AdminAuthUseCase) Authorize(ctx context.Context, raw string) (*entity.AdminSession, error) {
	if raw == "" {
		return nil, ErrUnauthorized
	}
	session, err := uc.Sessions.FindActive(ctx, auth.HashToken(raw), uc.now().UTC())
	if errors.Is(err, entity.ErrNotFound) {
		return nil, ErrUnauthorized
	}
	if err != nil {
		return nil, storageError("failed to load session", err)
	}
	if !uc.IsAllowed(session.Email) {
		return nil, ErrUnauthorized
	}
	return session, nil
}

// Logout deletes the session behind raw. Unknown or expired tokens are not an error.
func (uc *AdminAuthUseCase) Logout(ctx context.Context, raw string, actor Actor) error {
	if raw == "" {
		return nil
	}
	hash := auth.HashToken(raw)
	if session, err := uc.Sessions.FindActive(ctx, hash, uc.now().UTC()); err == nil && actor.Email == "" {
		actor.Email = session.Email
	}
	if err := uc.Sessions.DeleteByHash(ctx, hash); err != nil && !errors.Is(err, entity.ErrNotFound) {
		return storageError("failed to delete session", err)
	}
	uc.Audit.Log(ctx, actor, entity.AuditLogout, entity.ItemAdminSession, "", nil, nil)
	return nil
}
