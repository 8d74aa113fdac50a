package entity

import (
	"context"
	"time"
)

type AuditAction string

const (
	AuditLoginRequest AuditAction = "login_request"
	AuditLogin        AuditAction = "login"
	AuditLogout       AuditAction = "logout"
	AuditCreate       AuditAction = "create"
	AuditUpdate       AuditAction = "update"
	AuditDelete       AuditAction = "delete"
	AuditPublish      AuditAction = "publish"
	AuditUnpublish    AuditAction = "unpublish"
)

const (
	ItemPage            = "page"
	ItemPageTranslation = "page_translation"
	ItemAdminSession    = "admin_session"
)

// AuditEntry is written once and never updated.
type AuditEntry struct {
	ID          string         `json:"id"`
	ActorEmail  string         `json:"user_email,omitempty"`
	Action      AuditAction    `json:"action"`
	ItemType    string         `json:"item_type,omitempty"`
	ItemID      string         `json:"item_id,omitempty"`
	BeforeState map[string]any `json:"before_state,omitempty"`
	AfterState  map[string]any `json:"after_state,omitempty"`
	IPAddress   string         `json:"ip_address,omitempty"`
	UserAgent   string         `json:"user_agent,omitempty"`
	CreatedAt   time.Time      `json:"created_at"`
}

type AuditRepositoryInterface interface {
	Append(ctx context.Context, entry *AuditEntry) error
	List(ctx context.Context, limit, offset int) ([]*AuditEntry, error)
}
