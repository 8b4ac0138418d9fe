package user

import (
	"context"
	"sync"

	"trustplane/internal/trust/models"
	id "trustplane/pkg/domain"
)

// InMemoryUserStore keeps the trust-relevant user slices (verification flags
// and subscription) in process memory. Absent users read as nil; defaulting
// is the service's call.
type InMemoryUserStore struct {
	mu            sync.RWMutex
	flags         map[id.UserID]models.VerificationFlags
	subscriptions map[id.UserID]models.Subscription
}

func NewInMemoryUserStore() *InMemoryUserStore {
	return &InMemoryUserStore{
		flags:         make(map[id.UserID]models.VerificationFlags),
		subscriptions: make(map[id.UserID]models.Subscription),
	}
}

func (s *InMemoryUserStore) GetVerificationFlags(_ context.Context, userID id.UserID) (*models.VerificationFlags, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	flags, ok := s.flags[userID]
	if !ok {
		return nil, nil
	}
	return &flags, nil
}

func (s *InMemoryUserStore) SetVerificationFlags(_ context.Context, userID id.UserID, flags models.VerificationFlags) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.flags[userID] = flags
	return nil
}

func (s *InMemoryUserStore) GetSubscription(_ context.Context, userID id.UserID) (*models.Subscription, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sub, ok := s.subscriptions[userID]
	if !ok {
		return nil, nil
	}
	cp := sub
	if sub.LastPaymentAt != nil {
		t := *sub.LastPaymentAt
		cp.LastPaymentAt = &t
	}
	return &cp, nil
}

func (s *InMemoryUserStore) SetSubscription(_ context.Context, userID id.UserID, sub models.Subscription) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cp := sub
	if sub.LastPaymentAt != nil {
		t := *sub.LastPaymentAt
		cp.LastPaymentAt = &t
	}
	s.subscriptions[userID] = cp
	return nil
}

// ListSubscribed returns the ids of every user with a stored subscription.
// The lapse sweep iterates these.
func (s *InMemoryUserStore) ListSubscribed(_ context.Context) ([]id.UserID, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := make([]id.UserID, 0, len(s.subscriptions))
	for userID := range s.subscriptions {
		ids = append(ids, userID)
	}
	return ids, nil
}
