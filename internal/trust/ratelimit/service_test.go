package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"trustplane/internal/trust/config"
	"trustplane/internal/trust/store/attempt"
	auditmem "trustplane/pkg/platform/audit/store/memory"
	"trustplane/pkg/platform/audit/publisher"
)

type RateLimitServiceSuite struct {
	suite.Suite
	store      *attempt.InMemoryAttemptStore
	auditStore *auditmem.InMemoryStore
	service    *Service
	ctx        context.Context
}

func TestRateLimitServiceSuite(t *testing.T) {
	suite.Run(t, new(RateLimitServiceSuite))
}

func (s *RateLimitServiceSuite) SetupTest() {
	s.ctx = context.Background()
	s.store = attempt.NewInMemoryAttemptStore()
	s.auditStore = auditmem.NewInMemoryStore()

	pub := publisher.NewPublisher(s.auditStore)

	var err error
	s.service, err = New(s.store,
		WithConfig(config.DefaultConfig()),
		WithAuditPublisher(pub),
	)
	s.Require().NoError(err)
}

func (s *RateLimitServiceSuite) TestNew() {
	s.Run("nil store returns error", func() {
		_, err := New(nil)
		s.Error(err)
		s.Contains(err.Error(), "attempt store is required")
	})

	s.Run("valid store returns configured service", func() {
		svc, err := New(s.store)
		s.NoError(err)
		s.NotNil(svc)
	})
}

func (s *RateLimitServiceSuite) TestCheckAndRecordAttempt() {
	s.Run("login allows five attempts then denies", func() {
		for i := range 5 {
			result, err := s.service.CheckAndRecordAttempt(s.ctx, FlowLogin, "198.51.100.1")
			s.Require().NoError(err)
			s.True(result.Allowed, "attempt %d should be allowed", i+1)
		}

		result, err := s.service.CheckAndRecordAttempt(s.ctx, FlowLogin, "198.51.100.1")
		s.Require().NoError(err)
		s.False(result.Allowed)
		s.Equal(5, result.Limit)
		s.Equal(0, result.Remaining)
	})

	s.Run("password reset allows three attempts then denies", func() {
		for range 3 {
			result, err := s.service.CheckAndRecordAttempt(s.ctx, FlowPasswordReset, "198.51.100.2")
			s.Require().NoError(err)
			s.True(result.Allowed)
		}

		result, err := s.service.CheckAndRecordAttempt(s.ctx, FlowPasswordReset, "198.51.100.2")
		s.Require().NoError(err)
		s.False(result.Allowed)
	})

	s.Run("flows are isolated per subject", func() {
		for range 3 {
			result, err := s.service.CheckAndRecordAttempt(s.ctx, FlowPasswordReset, "198.51.100.3")
			s.Require().NoError(err)
			s.Require().True(result.Allowed)
		}

		result, err := s.service.CheckAndRecordAttempt(s.ctx, FlowLogin, "198.51.100.3")
		s.Require().NoError(err)
		s.True(result.Allowed, "login flow should not share the password reset bucket")
	})

	s.Run("facial upload buckets per user id", func() {
		userA := uuid.NewString()
		userB := uuid.NewString()

		for range 3 {
			result, err := s.service.CheckAndRecordAttempt(s.ctx, FlowFacialUpload, userA)
			s.Require().NoError(err)
			s.Require().True(result.Allowed)
		}

		denied, err := s.service.CheckAndRecordAttempt(s.ctx, FlowFacialUpload, userA)
		s.Require().NoError(err)
		s.False(denied.Allowed)

		allowed, err := s.service.CheckAndRecordAttempt(s.ctx, FlowFacialUpload, userB)
		s.Require().NoError(err)
		s.True(allowed.Allowed)
	})

	s.Run("facial upload rejects malformed user id", func() {
		_, err := s.service.CheckAndRecordAttempt(s.ctx, FlowFacialUpload, "not-a-uuid")
		s.Error(err)
	})

	s.Run("blocked attempt is audited", func() {
		for range 4 {
			_, err := s.service.CheckAndRecordAttempt(s.ctx, FlowPasswordReset, "198.51.100.4")
			s.Require().NoError(err)
		}

		events, err := s.auditStore.ListAll(s.ctx)
		s.Require().NoError(err)

		found := false
		for _, event := range events {
			if event.Action == "attempt_blocked" {
				found = true
			}
		}
		s.True(found, "expected an attempt_blocked audit event")
	})

	s.Run("empty subject returns bad request", func() {
		_, err := s.service.CheckAndRecordAttempt(s.ctx, FlowLogin, "")
		s.Error(err)
	})

	s.Run("unknown flow returns bad request", func() {
		_, err := s.service.CheckAndRecordAttempt(s.ctx, Flow("bogus"), "198.51.100.5")
		s.Error(err)
	})
}

func (s *RateLimitServiceSuite) TestAllow() {
	s.Run("applies explicit limit and window", func() {
		result, err := s.service.Allow(s.ctx, "custom:key", 1, time.Minute)
		s.Require().NoError(err)
		s.True(result.Allowed)

		result, err = s.service.Allow(s.ctx, "custom:key", 1, time.Minute)
		s.Require().NoError(err)
		s.False(result.Allowed)
	})

	s.Run("non-positive limit returns bad request", func() {
		_, err := s.service.Allow(s.ctx, "custom:key", 0, time.Minute)
		s.Error(err)
	})
}

func (s *RateLimitServiceSuite) TestReset() {
	subject := "198.51.100.10"

	for range 5 {
		_, err := s.service.CheckAndRecordAttempt(s.ctx, FlowLogin, subject)
		s.Require().NoError(err)
	}
	denied, err := s.service.CheckAndRecordAttempt(s.ctx, FlowLogin, subject)
	s.Require().NoError(err)
	s.Require().False(denied.Allowed)

	err = s.service.Reset(s.ctx, FlowLogin, subject)
	s.Require().NoError(err)

	result, err := s.service.CheckAndRecordAttempt(s.ctx, FlowLogin, subject)
	s.Require().NoError(err)
	s.True(result.Allowed)

	count, err := s.service.CurrentCount(s.ctx, FlowLogin, subject)
	s.Require().NoError(err)
	s.Equal(1, count)
}
