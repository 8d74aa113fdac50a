// Package ratelimit implements a fixed-window request limiter keyed by client and route.
package ratelimit

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// Hit is the window state after counting one request.
type Hit struct {
	Count       int
	WindowStart time.Time
}

// WindowStore keeps the counters. Implementations must make Increment atomic per key.
type WindowStore interface {
	// Increment counts one request for key, opening a fresh window when none
	// exists or the current one is older than window.
	Increment(ctx context.Context, key string, now time.Time, window time.Duration) (Hit, error)
	Ban(ctx context.Context, key string, now, until time.Time) error
	// BannedUntil returns the zero time when key is not banned at now.
	BannedUntil(ctx context.Context, key string, now time.Time) (time.Time, error)
}

type Decision struct {
	Allowed    bool
	Banned     bool
	Limit      int
	Remaining  int
	ResetAt    time.Time
	RetryAfter time.Duration
}

// RetryAfterSeconds rounds up to whole seconds, never below one.
func (d Decision) RetryAfterSeconds() int {
	secs := int((d.RetryAfter + time.Second - 1) / time.Second)
	if secs < 1 {
		secs = 1
	}
	return secs
}

type Config struct {
	Limit  int
	Window time.Duration
	// BanAfter > 0 bans a key once it is denied BanAfter times within one window.
	BanAfter    int
	BanDuration time.Duration
}

type Limiter struct {
	store  WindowStore
	cfg    Config
	logger *zap.Logger
	now    func() time.Time
}

func New(store WindowStore, cfg Config, logger *zap.Logger) *Limiter {
	if cfg.Limit <= 0 {
		cfg.Limit = 5
	}
	if cfg.Window <= 0 {
		cfg.Window = time.Minute
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Limiter{store: store, cfg: cfg, logger: logger, now: time.Now}
}

// WithClock replaces the time source; used by tests.
func (l *Limiter) WithClock(now func() time.Time) *Limiter {
	l.now = now
	return l
}

// Check counts one request for clientID on routeKey and decides whether it is admitted.
// Store failures are logged and the request admitted.
func (l *Limiter) Check(ctx context.Context, clientID, routeKey string) Decision {
	now := l.now()
	key := routeKey + "|" + clientID

	if l.cfg.BanAfter > 0 {
		until, err := l.store.BannedUntil(ctx, key, now)
		if err != nil {
			l.logger.Warn("rate limit ban lookup failed", zap.String("key", key), zap.Error(err))
		} else if !until.IsZero() {
			return Decision{
				Banned:     true,
				Limit:      l.cfg.Limit,
				ResetAt:    until,
				RetryAfter: until.Sub(now),
			}
		}
	}

	hit, err := l.store.Increment(ctx, key, now, l.cfg.Window)
	if err != nil {
		l.logger.Error("rate limit store failed, admitting request", zap.String("key", key), zap.Error(err))
		return Decision{Allowed: true, Limit: l.cfg.Limit, Remaining: l.cfg.Limit, ResetAt: now.Add(l.cfg.Window)}
	}

	resetAt := hit.WindowStart.Add(l.cfg.Window)
	d := Decision{
		Allowed:   hit.Count <= l.cfg.Limit,
		Limit:     l.cfg.Limit,
		Remaining: max(l.cfg.Limit-hit.Count, 0),
		ResetAt:   resetAt,
	}
	if d.Allowed {
		return d
	}
	d.RetryAfter = resetAt.Sub(now)

	if l.cfg.BanAfter > 0 && hit.Count >= l.cfg.Limit+l.cfg.BanAfter {
		until := now.Add(l.cfg.BanDuration)
		if err := l.store.Ban(ctx, key, now, until); err != nil {
			l.logger.Warn("rate limit ban failed", zap.String("key", key), zap.Error(err))
			return d
		}
		l.logger.Info("client banned", zap.String("key", key), zap.Time("until", until))
		d.Banned = true
		d.ResetAt = until
		d.RetryAfter = until.Sub(now)
	}
	return d
}
