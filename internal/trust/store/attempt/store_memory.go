package attempt

import (
	"context"
	"sync"
	"time"

	"trustplane/internal/trust/models"
)

// InMemoryAttemptStore implements AttemptStore with fixed-window counters.
// Suitable for a single instance; use RedisStore when the limiter must be
// shared across replicas.
type InMemoryAttemptStore struct {
	mu      sync.RWMutex
	buckets map[string]*fixedWindow
}

// fixedWindow is one counter: attempts so far and when the window ends.
type fixedWindow struct {
	count     int
	windowEnd time.Time
}

// NewInMemoryAttemptStore creates a new in-memory attempt store.
func NewInMemoryAttemptStore() *InMemoryAttemptStore {
	return &InMemoryAttemptStore{
		buckets: make(map[string]*fixedWindow),
	}
}

// Allow checks if an attempt is admissible and consumes one slot if so.
// The mutex makes check-and-increment linearizable per key: concurrent
// callers racing on the same key can never over-admit past the limit.
func (s *InMemoryAttemptStore) Allow(_ context.Context, key string, limit int, window time.Duration) (*models.AttemptResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()

	fw := s.buckets[key]
	if fw == nil || !now.Before(fw.windowEnd) {
		// First attempt for the key, or the stored window expired.
		fw = &fixedWindow{count: 1, windowEnd: now.Add(window)}
		s.buckets[key] = fw
		return &models.AttemptResult{
			Allowed:   true,
			Limit:     limit,
			Remaining: limit - 1,
			ResetAt:   fw.windowEnd,
		}, nil
	}

	if fw.count >= limit {
		// Denied without incrementing; the window keeps its original end.
		return &models.AttemptResult{
			Allowed:    false,
			Limit:      limit,
			Remaining:  0,
			ResetAt:    fw.windowEnd,
			RetryAfter: retryAfterSeconds(fw.windowEnd, now),
		}, nil
	}

	fw.count++
	return &models.AttemptResult{
		Allowed:   true,
		Limit:     limit,
		Remaining: limit - fw.count,
		ResetAt:   fw.windowEnd,
	}, nil
}

// Reset clears the counter for a key.
func (s *InMemoryAttemptStore) Reset(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.buckets, key)
	return nil
}

// GetCurrentCount returns the current attempt count in the window.
func (s *InMemoryAttemptStore) GetCurrentCount(_ context.Context, key string) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	fw := s.buckets[key]
	if fw == nil || !time.Now().Before(fw.windowEnd) {
		return 0, nil
	}
	return fw.count, nil
}

func retryAfterSeconds(resetAt, now time.Time) int {
	return max(int(resetAt.Sub(now).Seconds()), 0)
}
