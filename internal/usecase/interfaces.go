package usecase

import (
	"context"
	"time"

	"github.com/gogo-imperial/gogo-web/internal/entity"
	"github.com/gogo-imperial/gogo-web/internal/infra/auth"
	"github.com/gogo-imperial/gogo-web/internal/infra/captcha"
	"github.com/gogo-imperial/gogo-web/internal/infra/ratelimit"
)

type RateLimiter interface {
	Check(ctx context.Context, clientID, routeKey string) ratelimit.Decision
}

type CaptchaVerifier interface {
	Verify(ctx context.Context, token, remoteIP string) captcha.Verdict
}

type LeadNotifier interface {
	SendLeadNotification(ctx context.Context, lead *entity.Lead, maxAttempts int) entity.NotificationResult
}

// TokenVerifier checks an identity-provider token presented at admin login.
type TokenVerifier interface {
	Verify(ctx context.Context, raw string) (auth.Identity, error)
}

type Clock func() time.Time
