package database

import (
	"context"
	"database/sql"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/gogo-imperial/gogo-web/internal/entity"
)

type LeadRepository struct {
	DB *sqlx.DB
}

func NewLeadRepository(db *sqlx.DB) *LeadRepository {
	return &LeadRepository{DB: db}
}

type leadRow struct {
	ID                   string         `db:"id"`
	CompanyName          string         `db:"company_name"`
	FleetSize            string         `db:"fleet_size"`
	FuelType             string         `db:"fuel_type"`
	Email                string         `db:"email"`
	Phone                string         `db:"phone"`
	DeliveryStatus       string         `db:"delivery_status"`
	DeliveryError        sql.NullString `db:"delivery_error"`
	NotificationAttempts int            `db:"notification_attempts"`
	ClientIP             sql.NullString `db:"client_ip"`
	CreatedAt            time.Time      `db:"created_at"`
	UpdatedAt            time.Time      `db:"updated_at"`
}

func (r leadRow) toEntity() *entity.Lead {
	return &entity.Lead{
		ID:                   r.ID,
		CompanyName:          r.CompanyName,
		FleetSize:            entity.FleetSize(r.FleetSize),
		FuelType:             entity.FuelType(r.FuelType),
		Email:                r.Email,
		Phone:                r.Phone,
		DeliveryStatus:       entity.DeliveryStatus(r.DeliveryStatus),
		DeliveryError:        r.DeliveryError.String,
		NotificationAttempts: r.NotificationAttempts,
		ClientIP:             r.ClientIP.String,
		CreatedAt:            r.CreatedAt,
		UpdatedAt:            r.UpdatedAt,
	}
}

const leadColumns = `id, company_name, fleet_size, fuel_type, email, phone, delivery_status,
	delivery_error, notification_attempts, client_ip, created_at, updated_at`

func (r *LeadRepository) Insert(ctx context.Context, lead *entity.Lead) error {
	query := `
		INSERT INTO leads (company_name, fleet_size, fuel_type, email, phone, delivery_status, client_ip)
		VALUES ($1, $2, $3, $4, $5, 'pending', $6)
		RETURNING id, created_at, updated_at`

	err := r.DB.QueryRowxContext(ctx, query,
		lead.CompanyName,
		string(lead.FleetSize),
		string(lead.FuelType),
		lead.Email,
		lead.Phone,
		nullString(lead.ClientIP),
	).Scan(&lead.ID, &lead.CreatedAt, &lead.UpdatedAt)
	if err != nil {
		return mapError(err)
	}
	lead.DeliveryStatus = entity.DeliveryPending
	return nil
}

// UpdateDeliveryStatus moves a pending lead to its terminal status.
func (r *LeadRepository) UpdateDeliveryStatus(ctx context.Context, id string, status entity.DeliveryStatus, deliveryError string, attempts int) error {
	query := `
		UPDATE leads
		SET delivery_status = $1, delivery_error = $2, notification_attempts = $3, updated_at = NOW()
		WHERE id = $4 AND delivery_status = 'pending'`

	res, err := r.DB.ExecContext(ctx, query, string(status), nullString(deliveryError), attempts, id)
	if err != nil {
		return mapError(err)
	}
	return requireAffected(res)
}

func (r *LeadRepository) FindByID(ctx context.Context, id string) (*entity.Lead, error) {
	var row leadRow
	if err := r.DB.GetContext(ctx, &row, `SELECT `+leadColumns+` FROM leads WHERE id = $1`, id); err != nil {
		return nil, mapError(err)
	}
	return row.toEntity(), nil
}

func (r *LeadRepository) List(ctx context.Context, filter entity.ListLeadsFilter) ([]*entity.Lead, error) {
	query := `SELECT ` + leadColumns + ` FROM leads
		WHERE ($1 = '' OR delivery_status = $1)
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3`

	var rows []leadRow
	if err := r.DB.SelectContext(ctx, &rows, query, string(filter.Status), filter.Limit, filter.Offset); err != nil {
		return nil, mapError(err)
	}
	leads := make([]*entity.Lead, 0, len(rows))
	for _, row := range rows {
		leads = append(leads, row.toEntity())
	}
	return leads, nil
}
