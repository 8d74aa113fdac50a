package middleware

import (
	"context"
	"encoding/json"
	"net"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/gogo-imperial/gogo-web/internal/entity"
	"github.com/gogo-imperial/gogo-web/internal/usecase"
)

// SessionCookie carries the raw admin session token.
const SessionCookie = "admin_session"

type contextKey string

const adminEmailKey contextKey = "admin_email"

type SessionAuthorizer interface {
	Authorize(ctx context.Context, raw string) (*entity.AdminSession, error)
}

// RequireAdmin rejects requests without an active admin session and stores
// the admin email on the request context.
func RequireAdmin(authz SessionAuthorizer, logger *zap.Logger) func(http.Handler) http.Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			cookie, err := r.Cookie(SessionCookie)
			if err != nil || cookie.Value == "" {
				unauthorized(w)
				return
			}

			session, err := authz.Authorize(r.Context(), cookie.Value)
			if err != nil {
				if !usecase.IsDomainError(err) {
					logger.Error("admin session lookup failed", zap.Error(err))
				}
				unauthorized(w)
				return
			}

			ctx := context.WithValue(r.Context(), adminEmailKey, session.Email)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// AdminEmail returns the authenticated admin, or "" outside RequireAdmin.
func AdminEmail(ctx context.Context) string {
	email, _ := ctx.Value(adminEmailKey).(string)
	return email
}

func unauthorized(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": "Unauthorized"})
}

// ClientIP prefers the first X-Forwarded-For hop, then X-Real-IP, then the peer address.
func ClientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		if ip := strings.TrimSpace(first); ip != "" {
			return ip
		}
	}
	if xri := strings.TrimSpace(r.Header.Get("X-Real-IP")); xri != "" {
		return xri
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
