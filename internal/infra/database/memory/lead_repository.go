// Package memory holds in-process repositories used when no database is configured.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/gogo-imperial/gogo-web/internal/entity"
)

type LeadRepository struct {
	mu    sync.RWMutex
	leads map[string]entity.Lead
	now   func() time.Time
}

func NewLeadRepository() *LeadRepository {
	return &LeadRepository{leads: make(map[string]entity.Lead), now: time.Now}
}

func (r *LeadRepository) Insert(_ context.Context, lead *entity.Lead) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now().UTC()
	lead.ID = uuid.New().String()
	lead.CreatedAt = now
	lead.UpdatedAt = now
	if lead.DeliveryStatus == "" {
		lead.DeliveryStatus = entity.DeliveryPending
	}
	r.leads[lead.ID] = *lead
	return nil
}

func (r *LeadRepository) UpdateDeliveryStatus(_ context.Context, id string, status entity.DeliveryStatus, deliveryError string, attempts int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	lead, ok := r.leads[id]
	if !ok || lead.DeliveryStatus != entity.DeliveryPending {
		return entity.ErrNotFound
	}
	lead.DeliveryStatus = status
	lead.DeliveryError = deliveryError
	lead.NotificationAttempts = attempts
	lead.UpdatedAt = r.now().UTC()
	r.leads[id] = lead
	return nil
}

func (r *LeadRepository) FindByID(_ context.Context, id string) (*entity.Lead, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	lead, ok := r.leads[id]
	if !ok {
		return nil, entity.ErrNotFound
	}
	return &lead, nil
}

func (r *LeadRepository) List(_ context.Context, filter entity.ListLeadsFilter) ([]*entity.Lead, error) {
	r.mu.RLock()
	out := make([]*entity.Lead, 0, len(r.leads))
	for _, l := range r.leads {
		if filter.Status != "" && l.DeliveryStatus != filter.Status {
			continue
		}
		l := l
		out = append(out, &l)
	}
	r.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return paginate(out, filter.Limit, filter.Offset), nil
}

func paginate[T any](items []T, limit, offset int) []T {
	if offset >= len(items) {
		return items[:0]
	}
	items = items[offset:]
	if limit > 0 && limit < len(items) {
		items = items[:limit]
	}
	return items
}
