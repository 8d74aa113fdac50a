package database

import (
	"context"
	"database/sql"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/gogo-imperial/gogo-web/internal/entity"
)

type AuditRepository struct {
	DB *sqlx.DB
}

func NewAuditRepository(db *sqlx.DB) *AuditRepository {
	return &AuditRepository{DB: db}
}

type auditRow struct {
	ID          string         `db:"id"`
	UserEmail   sql.NullString `db:"user_email"`
	Action      string         `db:"action"`
	ItemType    sql.NullString `db:"item_type"`
	ItemID      sql.NullString `db:"item_id"`
	BeforeState jsonObject     `db:"before_state"`
	AfterState  jsonObject     `db:"after_state"`
	IPAddress   sql.NullString `db:"ip_address"`
	UserAgent   sql.NullString `db:"user_agent"`
	CreatedAt   time.Time      `db:"created_at"`
}

func (r *AuditRepository) Append(ctx context.Context, e *entity.AuditEntry) error {
	before, err := nullableJSON(e.BeforeState)
	if err != nil {
		return err
	}
	after, err := nullableJSON(e.AfterState)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO content_audit (user_email, action, item_type, item_id, before_state, after_state, ip_address, user_agent, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id`

	err = r.DB.QueryRowxContext(ctx, query,
		nullString(e.ActorEmail),
		string(e.Action),
		nullString(e.ItemType),
		nullString(e.ItemID),
		before,
		after,
		nullString(e.IPAddress),
		nullString(e.UserAgent),
		e.CreatedAt,
	).Scan(&e.ID)
	return mapError(err)
}

func (r *AuditRepository) List(ctx context.Context, limit, offset int) ([]*entity.AuditEntry, error) {
	query := `
		SELECT id, user_email, action, item_type, item_id, before_state, after_state, ip_address, user_agent, created_at
		FROM content_audit
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2`

	var rows []auditRow
	if err := r.DB.SelectContext(ctx, &rows, query, limit, offset); err != nil {
		return nil, mapError(err)
	}
	entries := make([]*entity.AuditEntry, 0, len(rows))
	for _, row := range rows {
		entries = append(entries, &entity.AuditEntry{
			ID:          row.ID,
			ActorEmail:  row.UserEmail.String,
			Action:      entity.AuditAction(row.Action),
			ItemType:    row.ItemType.String,
			ItemID:      row.ItemID.String,
			BeforeState: row.BeforeState,
			AfterState:  row.AfterState,
			IPAddress:   row.IPAddress.String,
			UserAgent:   row.UserAgent.String,
			CreatedAt:   row.CreatedAt,
		})
	}
	return entries, nil
}
