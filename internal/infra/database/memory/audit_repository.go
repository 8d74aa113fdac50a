package memory

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/gogo-imperial/gogo-web/internal/entity"
)

// AuditRepository is append-only; List returns the newest entries first.
type AuditRepository struct {
	mu      sync.RWMutex
	entries []entity.AuditEntry
}

func NewAuditRepository() *AuditRepository {
	return &AuditRepository{}
}

func (r *AuditRepository) Append(_ context.Context, entry *entity.AuditEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	entry.ID = uuid.New().String()
	r.entries = append(r.entries, *entry)
	return nil
}

func (r *AuditRepository) List(_ context.Context, limit, offset int) ([]*entity.AuditEntry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*entity.AuditEntry, 0, len(r.entries))
	for i := len(r.entries) - 1; i >= 0; i-- {
		e := r.entries[i]
		out = append(out, &e)
	}
	return paginate(out, limit, offset), nil
}
