package usage

import (
	"context"
	"sync"
	"time"

	id "trustplane/pkg/domain"
)

// InMemoryUsageStore records listing creation timestamps per user. It backs
// quota derivation in tests and single-instance deployments.
type InMemoryUsageStore struct {
	mu       sync.RWMutex
	listings map[id.UserID][]time.Time
}

func NewInMemoryUsageStore() *InMemoryUsageStore {
	return &InMemoryUsageStore{
		listings: make(map[id.UserID][]time.Time),
	}
}

// RecordListing notes that a user created a listing at the given time.
func (s *InMemoryUsageStore) RecordListing(_ context.Context, userID id.UserID, createdAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listings[userID] = append(s.listings[userID], createdAt)
	return nil
}

func (s *InMemoryUsageStore) CountListingsSince(_ context.Context, userID id.UserID, since time.Time) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	count := 0
	for _, createdAt := range s.listings[userID] {
		if !createdAt.Before(since) {
			count++
		}
	}
	return count, nil
}
