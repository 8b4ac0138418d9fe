package attempt

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"trustplane/internal/trust/models"
)

const (
	testLimit  = 3
	testWindow = 15 * time.Minute
)

type InMemoryAttemptStoreSuite struct {
	suite.Suite
	store *InMemoryAttemptStore
	ctx   context.Context
}

func TestInMemoryAttemptStoreSuite(t *testing.T) {
	suite.Run(t, new(InMemoryAttemptStoreSuite))
}

func (s *InMemoryAttemptStoreSuite) SetupTest() {
	s.store = NewInMemoryAttemptStore()
	s.ctx = context.Background()
}

func (s *InMemoryAttemptStoreSuite) TestAllow() {
	s.Run("first attempt allowed", func() {
		result, err := s.store.Allow(s.ctx, "login:203.0.113.7", testLimit, testWindow)
		s.Require().NoError(err)
		s.True(result.Allowed)
		s.Equal(testLimit, result.Limit)
		s.Equal(testLimit-1, result.Remaining)
		s.False(result.ResetAt.IsZero())
	})

	s.Run("attempts up to limit allowed", func() {
		var result *models.AttemptResult
		var err error
		for range testLimit {
			result, err = s.store.Allow(s.ctx, "login:203.0.113.8", testLimit, testWindow)
			s.Require().NoError(err)
			s.True(result.Allowed)
		}
		s.Equal(0, result.Remaining)
	})

	s.Run("attempt over limit denied", func() {
		for range testLimit {
			_, err := s.store.Allow(s.ctx, "login:203.0.113.9", testLimit, testWindow)
			require.NoError(s.T(), err)
		}
		result, err := s.store.Allow(s.ctx, "login:203.0.113.9", testLimit, testWindow)
		s.Require().NoError(err)
		s.False(result.Allowed)
		s.Equal(0, result.Remaining)
		s.Positive(result.RetryAfter)
	})

	s.Run("denied attempts do not consume or extend the window", func() {
		key := "login:203.0.113.10"
		for range testLimit {
			_, err := s.store.Allow(s.ctx, key, testLimit, testWindow)
			require.NoError(s.T(), err)
		}
		first, err := s.store.Allow(s.ctx, key, testLimit, testWindow)
		s.Require().NoError(err)
		s.Require().False(first.Allowed)

		second, err := s.store.Allow(s.ctx, key, testLimit, testWindow)
		s.Require().NoError(err)
		s.False(second.Allowed)
		s.Equal(first.ResetAt, second.ResetAt)

		count, err := s.store.GetCurrentCount(s.ctx, key)
		s.Require().NoError(err)
		s.Equal(testLimit, count)
	})

	s.Run("after window expires attempts allowed with fresh count", func() {
		key := "login:203.0.113.11"
		for range testLimit {
			_, err := s.store.Allow(s.ctx, key, testLimit, testWindow)
			require.NoError(s.T(), err)
		}

		s.store.mu.Lock()
		s.store.buckets[key].windowEnd = time.Now().Add(-time.Second)
		s.store.mu.Unlock()

		result, err := s.store.Allow(s.ctx, key, testLimit, testWindow)
		s.Require().NoError(err)
		s.True(result.Allowed)
		s.Equal(testLimit-1, result.Remaining)

		count, err := s.store.GetCurrentCount(s.ctx, key)
		s.Require().NoError(err)
		s.Equal(1, count)
	})

	s.Run("keys are independent", func() {
		for range testLimit {
			_, err := s.store.Allow(s.ctx, "login:203.0.113.12", testLimit, testWindow)
			require.NoError(s.T(), err)
		}
		result, err := s.store.Allow(s.ctx, "registration:203.0.113.12", testLimit, testWindow)
		s.Require().NoError(err)
		s.True(result.Allowed)
	})
}

func (s *InMemoryAttemptStoreSuite) TestReset() {
	key := "login:203.0.113.20"
	for range testLimit {
		_, err := s.store.Allow(s.ctx, key, testLimit, testWindow)
		s.Require().NoError(err)
	}

	err := s.store.Reset(s.ctx, key)
	s.Require().NoError(err)

	result, err := s.store.Allow(s.ctx, key, testLimit, testWindow)
	s.Require().NoError(err)
	s.True(result.Allowed)
	s.Equal(testLimit-1, result.Remaining)
}

func (s *InMemoryAttemptStoreSuite) TestGetCurrentCount() {
	s.Run("unknown key has zero count", func() {
		count, err := s.store.GetCurrentCount(s.ctx, "login:203.0.113.30")
		s.Require().NoError(err)
		s.Equal(0, count)
	})

	s.Run("count reflects consumed attempts", func() {
		key := "login:203.0.113.31"
		for range 2 {
			_, err := s.store.Allow(s.ctx, key, testLimit, testWindow)
			s.Require().NoError(err)
		}
		count, err := s.store.GetCurrentCount(s.ctx, key)
		s.Require().NoError(err)
		s.Equal(2, count)
	})

	s.Run("expired window reads as zero", func() {
		key := "login:203.0.113.32"
		_, err := s.store.Allow(s.ctx, key, testLimit, testWindow)
		s.Require().NoError(err)

		s.store.mu.Lock()
		s.store.buckets[key].windowEnd = time.Now().Add(-time.Second)
		s.store.mu.Unlock()

		count, err := s.store.GetCurrentCount(s.ctx, key)
		s.Require().NoError(err)
		s.Equal(0, count)
	})
}

func (s *InMemoryAttemptStoreSuite) TestConcurrent() {
	limit := 100 // Different from testLimit for concurrency testing
	key := "login:concurrent"
	var wg sync.WaitGroup
	var mu sync.Mutex
	allowedCount := 0

	for range 200 {
		wg.Go(func() {
			result, err := s.store.Allow(s.ctx, key, limit, testWindow)
			s.Require().NoError(err)
			if result.Allowed {
				mu.Lock()
				allowedCount++
				mu.Unlock()
			}
		})
	}

	wg.Wait()
	s.Equal(limit, allowedCount)
}
