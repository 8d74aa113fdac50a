package ratelimit

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func newTestLimiter(cfg Config) (*Limiter, *fakeClock) {
	clock := &fakeClock{now: time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)}
	return New(NewMemoryStore(), cfg, nil).WithClock(clock.Now), clock
}

func TestLimiter_SixthRequestDenied(t *testing.T) {
	l, _ := newTestLimiter(Config{Limit: 5, Window: time.Minute})
	ctx := context.Background()

	for i := 1; i <= 5; i++ {
		d := l.Check(ctx, "10.0.0.1", "/leads")
		require.True(t, d.Allowed, "request %d", i)
		assert.Equal(t, 5-i, d.Remaining)
	}

	for i := 0; i < 3; i++ {
		d := l.Check(ctx, "10.0.0.1", "/leads")
		assert.False(t, d.Allowed)
		assert.False(t, d.Banned)
		assert.Equal(t, 0, d.Remaining)
		assert.Positive(t, d.RetryAfterSeconds())
	}
}

func TestLimiter_WindowRollsOver(t *testing.T) {
	l, clock := newTestLimiter(Config{Limit: 5, Window: time.Minute})
	ctx := context.Background()

	for i := 0; i < 6; i++ {
		l.Check(ctx, "10.0.0.1", "/leads")
	}
	clock.Advance(59 * time.Second)
	assert.False(t, l.Check(ctx, "10.0.0.1", "/leads").Allowed)

	clock.Advance(2 * time.Second)
	d := l.Check(ctx, "10.0.0.1", "/leads")
	assert.True(t, d.Allowed)
	assert.Equal(t, 4, d.Remaining)
}

func TestLimiter_WindowBoundaryStillCounts(t *testing.T) {
	l, clock := newTestLimiter(Config{Limit: 5, Window: time.Minute})
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		require.True(t, l.Check(ctx, "10.0.0.1", "/leads").Allowed)
	}
	clock.Advance(time.Minute)
	assert.False(t, l.Check(ctx, "10.0.0.1", "/leads").Allowed, "window expires only after its full length")

	clock.Advance(time.Millisecond)
	d := l.Check(ctx, "10.0.0.1", "/leads")
	assert.True(t, d.Allowed)
	assert.Equal(t, 4, d.Remaining)
}

func TestLimiter_IndependentClients(t *testing.T) {
	l, _ := newTestLimiter(Config{Limit: 5, Window: time.Minute})
	ctx := context.Background()

	for i := 0; i < 10; i++ {
		l.Check(ctx, "10.0.0.1", "/leads")
	}
	assert.True(t, l.Check(ctx, "10.0.0.2", "/leads").Allowed)
	assert.True(t, l.Check(ctx, "10.0.0.1", "/other").Allowed)
}

func TestLimiter_ConcurrentCallsNeverExceedCeiling(t *testing.T) {
	l, _ := newTestLimiter(Config{Limit: 5, Window: time.Minute})
	ctx := context.Background()

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		allowed int
	)
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if l.Check(ctx, "10.0.0.9", "/leads").Allowed {
				mu.Lock()
				allowed++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, 5, allowed)
}

func TestLimiter_Ban(t *testing.T) {
	l, clock := newTestLimiter(Config{Limit: 2, Window: time.Minute, BanAfter: 2, BanDuration: 10 * time.Minute})
	ctx := context.Background()

	l.Check(ctx, "bot", "/leads")
	l.Check(ctx, "bot", "/leads")
	assert.False(t, l.Check(ctx, "bot", "/leads").Banned)

	d := l.Check(ctx, "bot", "/leads")
	assert.False(t, d.Allowed)
	assert.True(t, d.Banned)
	assert.Equal(t, 600, d.RetryAfterSeconds())

	clock.Advance(2 * time.Minute)
	d = l.Check(ctx, "bot", "/leads")
	assert.True(t, d.Banned, "ban outlives the window")

	clock.Advance(9 * time.Minute)
	assert.True(t, l.Check(ctx, "bot", "/leads").Allowed)
}

type failingStore struct{}

func (failingStore) Increment(context.Context, string, time.Time, time.Duration) (Hit, error) {
	return Hit{}, errors.New("store down")
}
func (failingStore) Ban(context.Context, string, time.Time, time.Time) error { return nil }
func (failingStore) BannedUntil(context.Context, string, time.Time) (time.Time, error) {
	return time.Time{}, nil
}

func TestLimiter_StoreFailureAdmits(t *testing.T) {
	l := New(failingStore{}, Config{Limit: 1, Window: time.Minute}, nil)
	for i := 0; i < 3; i++ {
		assert.True(t, l.Check(context.Background(), "x", "/leads").Allowed)
	}
}

func TestMemoryStore_Sweep(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	start := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	for i := 0; i < 3; i++ {
		_, err := s.Increment(ctx, fmt.Sprintf("k%d", i), start, time.Minute)
		require.NoError(t, err)
	}
	_, err := s.Increment(ctx, "fresh", start.Add(2*time.Minute), time.Minute)
	require.NoError(t, err)
	require.NoError(t, s.Ban(ctx, "banned", start, start.Add(time.Minute)))

	assert.Equal(t, 4, s.Sweep(start.Add(150*time.Second)))

	hit, err := s.Increment(ctx, "fresh", start.Add(150*time.Second), time.Minute)
	require.NoError(t, err)
	assert.Equal(t, 2, hit.Count)
}
