package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/gogo-imperial/gogo-web/internal/infra/http/middleware"
	"github.com/gogo-imperial/gogo-web/internal/usecase"
)

type AdminAuthenticator interface {
	Login(ctx context.Context, in usecase.LoginInput) (*usecase.LoginOutput, error)
	Logout(ctx context.Context, raw string, actor usecase.Actor) error
}

type AdminAuthHandler struct {
	auth         AdminAuthenticator
	cookieSecure bool
	logger       *zap.Logger
}

func NewAdminAuthHandler(auth AdminAuthenticator, cookieSecure bool, logger *zap.Logger) *AdminAuthHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AdminAuthHandler{auth: auth, cookieSecure: cookieSecure, logger: logger}
}

type loginRequest struct {
	Token string `json:"token"`
}

func (h *AdminAuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	out, err := h.auth.Login(r.Context(), usecase.LoginInput{
		Token:     req.Token,
		IP:        middleware.ClientIP(r),
		UserAgent: r.UserAgent(),
	})
	if err != nil {
		var de *usecase.DomainError
		if errors.As(err, &de) && de.Code == usecase.CodeUnauthorized {
			writeError(w, http.StatusUnauthorized, "Authentication failed")
			return
		}
		writeUsecaseError(w, h.logger, err)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     middleware.SessionCookie,
		Value:    out.SessionToken,
		Path:     "/",
		Expires:  out.ExpiresAt,
		MaxAge:   int(time.Until(out.ExpiresAt).Seconds()),
		HttpOnly: true,
		Secure:   h.cookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "email": out.Email})
}

func (h *AdminAuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	var raw string
	if c, err := r.Cookie(middleware.SessionCookie); err == nil {
		raw = c.Value
	}
	if err := h.auth.Logout(r.Context(), raw, actorFrom(r)); err != nil {
		writeUsecaseError(w, h.logger, err)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     middleware.SessionCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.cookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

func actorFrom(r *http.Request) usecase.Actor {
	return usecase.Actor{
		Email:     middleware.AdminEmail(r.Context()),
		IP:        middleware.ClientIP(r),
		UserAgent: r.UserAgent(),
	}
}
