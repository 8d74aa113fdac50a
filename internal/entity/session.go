package entity

import (
	"context"
	"time"
)

type AdminSession struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	TokenHash string    `json:"-"`
	ExpiresAt time.Time `json:"expires_at"`
	CreatedAt time.Time `json:"created_at"`
}

func (s *AdminSession) Expired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}

type SessionRepositoryInterface interface {
	Create(ctx context.Context, session *AdminSession) error
	// FindActive returns ErrNotFound when the hash is unknown or expired at now.
	FindActive(ctx context.Context, tokenHash string, now time.Time) (*AdminSession, error)
	DeleteByHash(ctx context.Context, tokenHash string) error
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}
