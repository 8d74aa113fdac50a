package ratelimit

import (
	"context"
	"sync"
	"time"
)

type visitor struct {
	count       int
	windowStart time.Time
	window      time.Duration
}

// MemoryStore keeps windows in process memory. A restart forgets every window.
type MemoryStore struct {
	mu       sync.Mutex
	visitors map[string]*visitor
	bans     map[string]time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		visitors: make(map[string]*visitor),
		bans:     make(map[string]time.Time),
	}
}

func (s *MemoryStore) Increment(_ context.Context, key string, now time.Time, window time.Duration) (Hit, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	v, exists := s.visitors[key]
	if !exists || now.Sub(v.windowStart) > window {
		v = &visitor{count: 1, windowStart: now, window: window}
		s.visitors[key] = v
		return Hit{Count: 1, WindowStart: now}, nil
	}

	v.count++
	return Hit{Count: v.count, WindowStart: v.windowStart}, nil
}

func (s *MemoryStore) Ban(_ context.Context, key string, _, until time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.bans[key] = until
	return nil
}

func (s *MemoryStore) BannedUntil(_ context.Context, key string, now time.Time) (time.Time, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	until, ok := s.bans[key]
	if !ok || !now.Before(until) {
		return time.Time{}, nil
	}
	return until, nil
}

// Sweep drops windows idle for more than twice their length and expired bans.
// It returns how many entries were removed.
func (s *MemoryStore) Sweep(now time.Time) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for key, v := range s.visitors {
		if now.Sub(v.windowStart) > v.window*2 {
			delete(s.visitors, key)
			removed++
		}
	}
	for key, until := range s.bans {
		if !now.Before(until) {
			delete(s.bans, key)
			removed++
		}
	}
	return removed
}

// Reset forgets every window and ban.
func (s *MemoryStore) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.visitors = make(map[string]*visitor)
	s.bans = make(map[string]time.Time)
}
