package database

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/gogo-imperial/gogo-web/internal/entity"
)

type SessionRepository struct {
	DB *sqlx.DB
}

func NewSessionRepository(db *sqlx.DB) *SessionRepository {
	return &SessionRepository{DB: db}
}

func (r *SessionRepository) Create(ctx context.Context, s *entity.AdminSession) error {
	query := `
		INSERT INTO admin_sessions (email, token_hash, expires_at, created_at)
		VALUES ($1, $2, $3, $4)
		RETURNING id`
	err := r.DB.QueryRowxContext(ctx, query, s.Email, s.TokenHash, s.ExpiresAt, s.CreatedAt).Scan(&s.ID)
	return mapError(err)
}

func (r *SessionRepository) FindActive(ctx context.Context, tokenHash string, now time.Time) (*entity.AdminSession, error) {
	var s struct {
		ID        string    `db:"id"`
		Email     string    `db:"email"`
		TokenHash string    `db:"token_hash"`
		ExpiresAt time.Time `db:"expires_at"`
		CreatedAt time.Time `db:"created_at"`
	}
	query := `
		SELECT id, email, token_hash, expires_at, created_at
		FROM admin_sessions
		WHERE token_hash = $1 AND expires_at > $2`
	if err := r.DB.GetContext(ctx, &s, query, tokenHash, now); err != nil {
		return nil, mapError(err)
	}
	return &entity.AdminSession{
		ID:        s.ID,
		Email:     s.Email,
		TokenHash: s.TokenHash,
		ExpiresAt: s.ExpiresAt,
		CreatedAt: s.CreatedAt,
	}, nil
}

func (r *SessionRepository) DeleteByHash(ctx context.Context, tokenHash string) error {
	_, err := r.DB.ExecContext(ctx, `DELETE FROM admin_sessions WHERE token_hash = $1`, tokenHash)
	return mapError(err)
}

func (r *SessionRepository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	res, err := r.DB.ExecContext(ctx, `DELETE FROM admin_sessions WHERE expires_at <= $1`, now)
	if err != nil {
		return 0, mapError(err)
	}
	return res.RowsAffected()
}
