package memory

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/gogo-imperial/gogo-web/internal/entity"
)

type SessionRepository struct {
	mu     sync.RWMutex
	byHash map[string]entity.AdminSession
}

func NewSessionRepository() *SessionRepository {
	return &SessionRepository{byHash: make(map[string]entity.AdminSession)}
}

func (r *SessionRepository) Create(_ context.Context, s *entity.AdminSession) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byHash[s.TokenHash]; ok {
		return entity.ErrConflict
	}
	s.ID = uuid.New().String()
	r.byHash[s.TokenHash] = *s
	return nil
}

func (r *SessionRepository) FindActive(_ context.Context, tokenHash string, now time.Time) (*entity.AdminSession, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.byHash[tokenHash]
	if !ok || s.Expired(now) {
		return nil, entity.ErrNotFound
	}
	return &s, nil
}

func (r *SessionRepository) DeleteByHash(_ context.Context, tokenHash string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.byHash, tokenHash)
	return nil
}

func (r *SessionRepository) DeleteExpired(_ context.Context, now time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for h, s := range r.byHash {
		if s.Expired(now) {
			delete(r.byHash, h)
			n++
		}
	}
	return n, nil
}
