package usecase

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/gogo-imperial/gogo-web/internal/entity"
	"github.com/gogo-imperial/gogo-web/internal/infra/metrics"
)

// AuditLogger records admin actions. A failed write never fails the action that triggered it.
type AuditLogger struct {
	repo   entity.AuditRepositoryInterface
	logger *zap.Logger
	now    Clock
}

func NewAuditLogger(repo entity.AuditRepositoryInterface, logger *zap.Logger) *AuditLogger {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuditLogger{repo: repo, logger: logger, now: time.Now}
}

func (a *AuditLogger) Log(ctx context.Context, actor Actor, action entity.AuditAction, itemType, itemID string, before, after map[string]any) {
	entry := &entity.AuditEntry{
		ActorEmail:  actor.Email,
		Action:      action,
		ItemType:    itemType,
		ItemID:      itemID,
		BeforeState: before,
		AfterState:  after,
		IPAddress:   actor.IP,
		UserAgent:   actor.UserAgent,
		CreatedAt:   a.now().UTC(),
	}
	if err := a.repo.Append(ctx, entry); err != nil {
		metrics.RecordAuditFailure()
		a.logger.Error("failed to write audit entry",
			zap.String("action", string(action)),
			zap.String("item_type", itemType),
			zap.String("item_id", itemID),
			zap.Error(err),
		)
	}
}

func (a *AuditLogger) List(ctx context.Context, limit, offset int) ([]*entity.AuditEntry, error) {
	limit, offset = clampPage(limit, offset)
	entries, err := a.repo.List(ctx, limit, offset)
	if err != nil {
		return nil, storageError("failed to list audit entries", err)
	}
	return entries, nil
}

const (
	defaultPageSize = 50
	maxPageSize     = 200
)

func clampPage(limit, offset int) (int, int) {
	if limit <= 0 {
		limit = defaultPageSize
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}
