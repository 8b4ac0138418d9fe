package quota

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"trustplane/internal/trust/models"
	"trustplane/internal/trust/ports"
	usagestore "trustplane/internal/trust/store/usage"
	userstore "trustplane/internal/trust/store/user"
	id "trustplane/pkg/domain"
	auditmem "trustplane/pkg/platform/audit/store/memory"
	"trustplane/pkg/platform/audit/publisher"
	"trustplane/pkg/requestcontext"
)

type recordingSink struct {
	notifications []ports.Notification
}

func (r *recordingSink) Notify(_ context.Context, n ports.Notification) error {
	r.notifications = append(r.notifications, n)
	return nil
}

type QuotaServiceSuite struct {
	suite.Suite
	users      *userstore.InMemoryUserStore
	usage      *usagestore.InMemoryUsageStore
	auditStore *auditmem.InMemoryStore
	sink       *recordingSink
	service    *Service
	now        time.Time
	ctx        context.Context
}

func TestQuotaServiceSuite(t *testing.T) {
	suite.Run(t, new(QuotaServiceSuite))
}

func (s *QuotaServiceSuite) SetupTest() {
	s.users = userstore.NewInMemoryUserStore()
	s.usage = usagestore.NewInMemoryUsageStore()
	s.auditStore = auditmem.NewInMemoryStore()
	s.sink = &recordingSink{}
	s.now = time.Date(2025, time.June, 15, 12, 0, 0, 0, time.UTC)
	s.ctx = requestcontext.WithTime(context.Background(), s.now)

	var err error
	s.service, err = New(s.users, s.usage,
		WithAuditPublisher(publisher.NewPublisher(s.auditStore)),
		WithNotificationSink(s.sink),
	)
	s.Require().NoError(err)
}

func (s *QuotaServiceSuite) newUser() id.UserID {
	userID, err := id.ParseUserID(uuid.NewString())
	s.Require().NoError(err)
	return userID
}

// subscribe stores an active subscription paid daysAgo days before the
// suite's pinned clock.
func (s *QuotaServiceSuite) subscribe(userID id.UserID, tier models.SubscriptionTier, daysAgo int) time.Time {
	paidAt := s.now.AddDate(0, 0, -daysAgo)
	err := s.users.SetSubscription(s.ctx, userID, models.Subscription{
		Tier:          tier,
		Status:        models.SubscriptionActive,
		LastPaymentAt: &paidAt,
	})
	s.Require().NoError(err)
	return paidAt
}

func (s *QuotaServiceSuite) post(userID id.UserID, n int, at time.Time) {
	for range n {
		s.Require().NoError(s.usage.RecordListing(s.ctx, userID, at))
	}
}

func (s *QuotaServiceSuite) TestNew() {
	s.Run("nil user store returns error", func() {
		_, err := New(nil, s.usage)
		s.Error(err)
	})

	s.Run("nil usage store returns error", func() {
		_, err := New(s.users, nil)
		s.Error(err)
	})
}

func (s *QuotaServiceSuite) TestGetStatus() {
	s.Run("unknown user defaults to active free tier", func() {
		status, err := s.service.GetStatus(s.ctx, s.newUser())
		s.Require().NoError(err)
		s.Equal(models.TierFree, status.Tier)
		s.True(status.Active)
		s.Equal(3, status.RemainingPosts)
		s.False(status.NeedsResubscribe)
	})

	s.Run("standard tier reports remaining posts", func() {
		userID := s.newUser()
		paidAt := s.subscribe(userID, models.TierStandard, 10)
		s.post(userID, 7, paidAt.AddDate(0, 0, 1))

		status, err := s.service.GetStatus(s.ctx, userID)
		s.Require().NoError(err)
		s.Equal(models.TierStandard, status.Tier)
		s.Equal(3, status.RemainingPosts)
		s.False(status.NeedsResubscribe)
	})

	s.Run("posts before the payment do not count", func() {
		userID := s.newUser()
		paidAt := s.subscribe(userID, models.TierStandard, 10)
		s.post(userID, 5, paidAt.AddDate(0, 0, -3))

		status, err := s.service.GetStatus(s.ctx, userID)
		s.Require().NoError(err)
		s.Equal(10, status.RemainingPosts)
	})

	s.Run("exhausted paid quota needs resubscription", func() {
		userID := s.newUser()
		paidAt := s.subscribe(userID, models.TierStandard, 10)
		s.post(userID, 10, paidAt.AddDate(0, 0, 1))

		status, err := s.service.GetStatus(s.ctx, userID)
		s.Require().NoError(err)
		s.False(status.Active)
		s.True(status.NeedsResubscribe)
		s.Equal(0, status.RemainingPosts)
		s.Contains(status.Reason, "exhausted")
	})

	s.Run("free tier exhaustion does not force resubscription", func() {
		userID := s.newUser()
		s.post(userID, 3, s.now.AddDate(0, 0, -1))

		status, err := s.service.GetStatus(s.ctx, userID)
		s.Require().NoError(err)
		s.True(status.Active)
		s.False(status.NeedsResubscribe)
		s.Equal(0, status.RemainingPosts)
	})

	s.Run("lapsed payment forces downgrade to free", func() {
		userID := s.newUser()
		s.subscribe(userID, models.TierPremium, 40)

		status, err := s.service.GetStatus(s.ctx, userID)
		s.Require().NoError(err)
		s.Equal(models.TierFree, status.Tier)
		s.False(status.Active)
		s.True(status.NeedsResubscribe)

		sub, err := s.users.GetSubscription(s.ctx, userID)
		s.Require().NoError(err)
		s.Equal(models.TierFree, sub.Tier)
		s.Equal(models.SubscriptionInactive, sub.Status)
	})

	s.Run("lazy downgrade is idempotent", func() {
		userID := s.newUser()
		s.subscribe(userID, models.TierPremium, 40)
		s.sink.notifications = nil

		first, err := s.service.GetStatus(s.ctx, userID)
		s.Require().NoError(err)
		second, err := s.service.GetStatus(s.ctx, userID)
		s.Require().NoError(err)
		s.Equal(first, second)
		s.Len(s.sink.notifications, 1, "downgrade must notify exactly once")
	})

	s.Run("payment on jan 31 keeps february covered", func() {
		userID := s.newUser()
		paidAt := time.Date(2025, time.January, 31, 9, 0, 0, 0, time.UTC)
		err := s.users.SetSubscription(s.ctx, userID, models.Subscription{
			Tier:          models.TierStandard,
			Status:        models.SubscriptionActive,
			LastPaymentAt: &paidAt,
		})
		s.Require().NoError(err)

		ctx := requestcontext.WithTime(context.Background(), time.Date(2025, time.February, 28, 8, 0, 0, 0, time.UTC))
		status, err := s.service.GetStatus(ctx, userID)
		s.Require().NoError(err)
		s.False(status.NeedsResubscribe, "period ends feb 28 09:00, not earlier")

		ctx = requestcontext.WithTime(context.Background(), time.Date(2025, time.February, 28, 9, 0, 0, 0, time.UTC))
		status, err = s.service.GetStatus(ctx, userID)
		s.Require().NoError(err)
		s.True(status.NeedsResubscribe)
	})
}

func (s *QuotaServiceSuite) TestCanPost() {
	s.Run("active subscription with room allows posting", func() {
		userID := s.newUser()
		paidAt := s.subscribe(userID, models.TierStandard, 5)
		s.post(userID, 7, paidAt.AddDate(0, 0, 1))

		check, err := s.service.CanPost(s.ctx, userID)
		s.Require().NoError(err)
		s.True(check.CanPost)
		s.Equal(3, check.RemainingPosts)
		s.Empty(check.Message)
	})

	s.Run("exhausted quota denies with exhaustion message", func() {
		userID := s.newUser()
		paidAt := s.subscribe(userID, models.TierStandard, 5)
		s.post(userID, 10, paidAt.AddDate(0, 0, 1))

		check, err := s.service.CanPost(s.ctx, userID)
		s.Require().NoError(err)
		s.False(check.CanPost)
		s.Equal(0, check.RemainingPosts)
		s.Contains(check.Message, "exhausted")
	})

	s.Run("expired subscription denies with renewal message", func() {
		userID := s.newUser()
		s.subscribe(userID, models.TierStandard, 40)

		check, err := s.service.CanPost(s.ctx, userID)
		s.Require().NoError(err)
		s.False(check.CanPost)
		s.Contains(check.Message, "renew")
	})

	s.Run("exhaustion is audited", func() {
		userID := s.newUser()
		paidAt := s.subscribe(userID, models.TierFree, 2)
		s.post(userID, 3, paidAt.AddDate(0, 0, 1))

		_, err := s.service.CanPost(s.ctx, userID)
		s.Require().NoError(err)

		events, err := s.auditStore.ListAll(s.ctx)
		s.Require().NoError(err)
		found := false
		for _, event := range events {
			if event.Action == "quota_exhausted" {
				found = true
			}
		}
		s.True(found)
	})
}

func (s *QuotaServiceSuite) TestApplyPayment() {
	s.Run("payment activates the tier and restarts the period", func() {
		userID := s.newUser()
		sub, err := s.service.ApplyPayment(s.ctx, userID, models.TierPremium, s.now)
		s.Require().NoError(err)
		s.Equal(models.TierPremium, sub.Tier)
		s.Equal(models.SubscriptionActive, sub.Status)
		s.Equal(s.now, *sub.LastPaymentAt)

		status, err := s.service.GetStatus(s.ctx, userID)
		s.Require().NoError(err)
		s.Equal(50, status.RemainingPosts)
	})

	s.Run("payment reactivates a lapsed subscription", func() {
		userID := s.newUser()
		s.subscribe(userID, models.TierStandard, 40)

		status, err := s.service.GetStatus(s.ctx, userID)
		s.Require().NoError(err)
		s.Require().True(status.NeedsResubscribe)

		_, err = s.service.ApplyPayment(s.ctx, userID, models.TierStandard, s.now)
		s.Require().NoError(err)

		status, err = s.service.GetStatus(s.ctx, userID)
		s.Require().NoError(err)
		s.False(status.NeedsResubscribe)
		s.True(status.Active)
		s.Equal(models.TierStandard, status.Tier)
	})

	s.Run("unknown tier rejected", func() {
		_, err := s.service.ApplyPayment(s.ctx, s.newUser(), models.SubscriptionTier("gold"), s.now)
		s.Error(err)
	})

	s.Run("zero paid-at falls back to request time", func() {
		userID := s.newUser()
		sub, err := s.service.ApplyPayment(s.ctx, userID, models.TierStandard, time.Time{})
		s.Require().NoError(err)
		s.Equal(s.now, *sub.LastPaymentAt)
	})
}

func (s *QuotaServiceSuite) TestExpireLapsed() {
	lapsedA := s.newUser()
	lapsedB := s.newUser()
	current := s.newUser()

	s.subscribe(lapsedA, models.TierStandard, 35)
	s.subscribe(lapsedB, models.TierPremium, 60)
	s.subscribe(current, models.TierStandard, 5)

	expired, err := s.service.ExpireLapsed(s.ctx)
	s.Require().NoError(err)
	s.Equal(2, expired)

	sub, err := s.users.GetSubscription(s.ctx, current)
	s.Require().NoError(err)
	s.Equal(models.SubscriptionActive, sub.Status)

	// A second sweep finds nothing new.
	expired, err = s.service.ExpireLapsed(s.ctx)
	s.Require().NoError(err)
	s.Equal(0, expired)
}
