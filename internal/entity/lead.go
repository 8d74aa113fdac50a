package entity

import (
	"context"
	"errors"
	"strings"
	"time"
)

var (
	ErrNotFound = errors.New("not found")
	ErrConflict = errors.New("already exists")
)

type FleetSize string

const (
	FleetSmall  FleetSize = "small"
	FleetMedium FleetSize = "medium"
	FleetLarge  FleetSize = "large"
)

// ParseFleetSize accepts the form labels ("1-10", "11-50", "50+") and the canonical names.
func ParseFleetSize(s string) (FleetSize, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "1-10", "small":
		return FleetSmall, true
	case "11-50", "medium":
		return FleetMedium, true
	case "50+", "large":
		return FleetLarge, true
	}
	return "", false
}

func (f FleetSize) Label() string {
	switch f {
	case FleetSmall:
		return "1-10"
	case FleetMedium:
		return "11-50"
	case FleetLarge:
		return "50+"
	}
	return string(f)
}

type FuelType string

const (
	FuelDiesel   FuelType = "diesel"
	FuelGasoline FuelType = "gasoline"
	FuelBoth     FuelType = "both"
)

// ParseFuelType accepts the form labels ("Diesel", "Super", "Both") and the canonical names.
func ParseFuelType(s string) (FuelType, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "diesel":
		return FuelDiesel, true
	case "super", "gasoline":
		return FuelGasoline, true
	case "both":
		return FuelBoth, true
	}
	return "", false
}

func (f FuelType) Label() string {
	switch f {
	case FuelDiesel:
		return "Diesel"
	case FuelGasoline:
		return "Super"
	case FuelBoth:
		return "Both"
	}
	return string(f)
}

type DeliveryStatus string

const (
	DeliveryPending DeliveryStatus = "pending"
	DeliverySent    DeliveryStatus = "sent"
	DeliveryFailed  DeliveryStatus = "failed"
)

func (s DeliveryStatus) Valid() bool {
	return s == DeliveryPending || s == DeliverySent || s == DeliveryFailed
}

type Lead struct {
	ID                   string         `json:"id"`
	CompanyName          string         `json:"company_name"`
	FleetSize            FleetSize      `json:"fleet_size"`
	FuelType             FuelType       `json:"fuel_type"`
	Email                string         `json:"email"`
	Phone                string         `json:"phone"`
	DeliveryStatus       DeliveryStatus `json:"delivery_status"`
	DeliveryError        string         `json:"delivery_error,omitempty"`
	NotificationAttempts int            `json:"notification_attempts"`
	ClientIP             string         `json:"client_ip,omitempty"`
	CreatedAt            time.Time      `json:"created_at"`
	UpdatedAt            time.Time      `json:"updated_at"`
}

type ListLeadsFilter struct {
	Status DeliveryStatus
	Limit  int
	Offset int
}

type LeadRepositoryInterface interface {
	// Insert assigns ID and timestamps. The lead must carry DeliveryPending.
	Insert(ctx context.Context, lead *Lead) error
	// UpdateDeliveryStatus only transitions leads that are still pending.
	UpdateDeliveryStatus(ctx context.Context, id string, status DeliveryStatus, deliveryError string, attempts int) error
	FindByID(ctx context.Context, id string) (*Lead, error)
	List(ctx context.Context, filter ListLeadsFilter) ([]*Lead, error)
}
