package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/gogo-imperial/gogo-web/internal/entity"
	"github.com/gogo-imperial/gogo-web/internal/infra/auth"
	"github.com/gogo-imperial/gogo-web/internal/infra/database/memory"
)

func newAuthUseCase(verifier TokenVerifier) (*AdminAuthUseCase, *memory.SessionRepository, *memory.AuditRepository) {
	sessions := memory.NewSessionRepository()
	audits := memory.NewAuditRepository()
	uc := NewAdminAuthUseCase(sessions, verifier, NewAuditLogger(audits, nil), []string{" Admin@Gogo.bj "}, time.Hour, nil)
	return uc, sessions, audits
}

func auditActions(t *testing.T, repo *memory.AuditRepository) []entity.AuditAction {
	t.Helper()
	entries, err := repo.List(context.Background(), 100, 0)
	require.NoError(t, err)
	var actions []entity.AuditAction
	for i := len(entries) - 1; i >= 0; i-- {
		actions = append(actions, entries[i].Action)
	}
	return actions
}

func TestAdminLogin_CreatesSessionAndAudits(t *testing.T) {
	verifier := new(MockTokenVerifier)
	verifier.On("Verify", mock.Anything, "jwt").Return(auth.Identity{Email: "admin@gogo.bj"}, nil)
	uc, _, audits := newAuthUseCase(verifier)
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	uc.now = func() time.Time { return now }

	out, err := uc.Login(context.Background(), LoginInput{Token: "jwt", IP: "1.1.1.1"})
	require.NoError(t, err)
	assert.Equal(t, "admin@gogo.bj", out.Email)
	assert.Equal(t, now.Add(time.Hour), out.ExpiresAt)
	assert.NotEmpty(t, out.SessionToken)

	session, err := uc.Authorize(context.Background(), out.SessionToken)
	require.NoError(t, err)
	assert.Equal(t, "admin@gogo.bj", session.Email)
	assert.Equal(t, auth.HashToken(out.SessionToken), session.TokenHash)

	assert.Equal(t, []entity.AuditAction{entity.AuditLoginRequest, entity.AuditLogin}, auditActions(t, audits))
}

func TestAdminLogin_Rejections(t *testing.T) {
	t.Run("no verifier", func(t *testing.T) {
		uc, _, _ := newAuthUseCase(nil)
		_, err := uc.Login(context.Background(), LoginInput{Token: "x"})
		assert.Equal(t, ErrLoginDisabled, err)
	})

	t.Run("missing token", func(t *testing.T) {
		uc, _, _ := newAuthUseCase(new(MockTokenVerifier))
		_, err := uc.Login(context.Background(), LoginInput{})
		var de *DomainError
		require.ErrorAs(t, err, &de)
		assert.Equal(t, CodeValidation, de.Code)
	})

	t.Run("bad token", func(t *testing.T) {
		verifier := new(MockTokenVerifier)
		verifier.On("Verify", mock.Anything, "bad").Return(auth.Identity{}, auth.ErrInvalidToken)
		uc, _, audits := newAuthUseCase(verifier)
		_, err := uc.Login(context.Background(), LoginInput{Token: "bad"})
		assert.Equal(t, ErrUnauthorized, err)
		assert.Empty(t, auditActions(t, audits))
	})

	t.Run("not on allowlist", func(t *testing.T) {
		verifier := new(MockTokenVerifier)
		verifier.On("Verify", mock.Anything, "jwt").Return(auth.Identity{Email: "intruder@evil.com"}, nil)
		uc, _, audits := newAuthUseCase(verifier)
		_, err := uc.Login(context.Background(), LoginInput{Token: "jwt"})
		assert.Equal(t, ErrNotAllowed, err)
		assert.Equal(t, []entity.AuditAction{entity.AuditLoginRequest}, auditActions(t, audits))
	})

	t.Run("token generation fails", func(t *testing.T) {
		verifier := new(MockTokenVerifier)
		verifier.On("Verify", mock.Anything, "jwt").Return(auth.Identity{Email: "admin@gogo.bj"}, nil)
		uc, _, _ := newAuthUseCase(verifier)
		uc.newToken = func() (string, error) { return "", errors.New("entropy") }
		_, err := uc.Login(context.Background(), LoginInput{Token: "jwt"})
		assert.True(t, IsTechnicalError(err))
	})
}

func TestAdminAuthorize_Expiry(t *testing.T) {
	uc, sessions, _ := newAuthUseCase(nil)
	now := time.Now().UTC()
	require.NoError(t, sessions.Create(context.Background(), &entity.AdminSession{
		Email: "admin@gogo.bj", TokenHash: auth.HashToken("raw"), ExpiresAt: now.Add(time.Minute),
	}))

	uc.now = func() time.Time { return now }
	_, err := uc.Authorize(context.Background(), "raw")
	assert.NoError(t, err)

	uc.now = func() time.Time { return now.Add(time.Minute) }
	_, err = uc.Authorize(context.Background(), "raw")
	assert.Equal(t, ErrUnauthorized, err)

	_, err = uc.Authorize(context.Background(), "")
	assert.Equal(t, ErrUnauthorized, err)
}

func TestAdminLogout(t *testing.T) {
	uc, sessions, audits := newAuthUseCase(nil)
	require.NoError(t, sessions.Create(context.Background(), &entity.AdminSession{
		Email: "admin@gogo.bj", TokenHash: auth.HashToken("raw"), ExpiresAt: time.Now().Add(time.Hour),
	}))

	require.NoError(t, uc.Logout(context.Background(), "raw", Actor{IP: "1.1.1.1"}))
	_, err := uc.Authorize(context.Background(), "raw")
	assert.Equal(t, ErrUnauthorized, err)
	assert.Equal(t, []entity.AuditAction{entity.AuditLogout}, auditActions(t, audits))

	entries, err := audits.List(context.Background(), 1, 0)
	require.NoError(t, err)
	assert.Equal(t, "admin@gogo.bj", entries[0].ActorEmail)
}

func TestAuditLogger_FailureIsSwallowed(t *testing.T) {
	a := NewAuditLogger(failingAuditRepo{}, nil)
	assert.NotPanics(t, func() {
		a.Log(context.Background(), Actor{}, entity.AuditCreate, entity.ItemPage, "p1", nil, nil)
	})
	_, err := a.List(context.Background(), 10, 0)
	assert.True(t, IsTechnicalError(err))
}
