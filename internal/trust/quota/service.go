// Package quota derives posting capacity from subscription state and actual
// listing usage. Expiry is lazy: nothing marks a subscription lapsed until
// someone asks, so reads may write.
package quota

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"trustplane/internal/trust/config"
	"trustplane/internal/trust/metrics"
	"trustplane/internal/trust/models"
	"trustplane/internal/trust/ports"
	id "trustplane/pkg/domain"
	dErrors "trustplane/pkg/domain-errors"
	requesttime "trustplane/pkg/platform/middleware/requesttime"
)

// Status reasons reported when posting is blocked.
const (
	reasonLapsed    = "subscription lapsed"
	reasonExhausted = "post quota exhausted"
)

// Type aliases for shared interfaces.
type (
	UserStore      = ports.UserStore
	UsageStore     = ports.UsageStore
	AuditPublisher = ports.AuditPublisher
)

type Service struct {
	users          UserStore
	usage          UsageStore
	sink           ports.NotificationSink
	auditPublisher AuditPublisher
	logger         *slog.Logger
	config         *config.Config
	metrics        *metrics.Metrics
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithAuditPublisher(publisher AuditPublisher) Option {
	return func(s *Service) {
		s.auditPublisher = publisher
	}
}

func WithNotificationSink(sink ports.NotificationSink) Option {
	return func(s *Service) {
		s.sink = sink
	}
}

func WithConfig(cfg *config.Config) Option {
	return func(s *Service) {
		s.config = cfg
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

func New(users UserStore, usage UsageStore, opts ...Option) (*Service, error) {
	if users == nil {
		return nil, fmt.Errorf("user store is required")
	}
	if usage == nil {
		return nil, fmt.Errorf("usage store is required")
	}

	svc := &Service{
		users:  users,
		usage:  usage,
		config: config.DefaultConfig(),
	}

	for _, opt := range opts {
		opt(svc)
	}

	return svc, nil
}

// GetStatus reports a user's effective tier, remaining posts, and whether the
// subscription lapsed. Lapsed paid subscriptions are downgraded in place
// before the status is computed, so repeated calls are idempotent.
func (s *Service) GetStatus(ctx context.Context, userID id.UserID) (*models.QuotaStatus, error) {
	if userID.IsNil() {
		return nil, dErrors.New(dErrors.CodeBadRequest, "user id is required")
	}

	sub, err := s.loadSubscription(ctx, userID)
	if err != nil {
		return nil, err
	}

	now := requesttime.Now(ctx)

	lapsed, err := s.maybeExpire(ctx, userID, sub, now)
	if err != nil {
		return nil, err
	}

	used, err := s.postsUsed(ctx, userID, sub)
	if err != nil {
		return nil, err
	}

	maxPosts := s.config.MaxPosts(sub.Tier)
	status := &models.QuotaStatus{
		Tier:             sub.Tier,
		Active:           sub.Status == models.SubscriptionActive,
		RemainingPosts:   max(maxPosts-used, 0),
		NeedsResubscribe: lapsed,
	}
	switch {
	case lapsed:
		status.Reason = reasonLapsed
	case sub.Tier != models.TierFree && used >= maxPosts:
		// A paid tier that burned its whole quota needs a new payment; the
		// period only restarts when one lands.
		status.Active = false
		status.NeedsResubscribe = true
		status.RemainingPosts = 0
		status.Reason = reasonExhausted
	}
	return status, nil
}

// CanPost answers whether a user may create one more listing right now.
// Exhaustion and expiry are modeled results with distinct messages, never
// errors.
func (s *Service) CanPost(ctx context.Context, userID id.UserID) (*models.PostCheck, error) {
	status, err := s.GetStatus(ctx, userID)
	if err != nil {
		return nil, err
	}

	check := &models.PostCheck{
		Tier:           status.Tier,
		RemainingPosts: status.RemainingPosts,
	}

	switch {
	case status.NeedsResubscribe && status.Reason != reasonExhausted:
		check.Message = "subscription expired, renew to keep posting"
		if s.metrics != nil {
			s.metrics.IncPostDenied("expired")
		}
	case status.RemainingPosts <= 0:
		check.Message = "post quota exhausted for the current period"
		if s.metrics != nil {
			s.metrics.IncPostDenied("exhausted")
		}
		ports.LogAudit(ctx, s.logger, s.auditPublisher, userID, "quota_exhausted",
			"tier", status.Tier,
		)
	default:
		check.CanPost = true
	}

	return check, nil
}

// ApplyPayment records a successful payment: the tier takes effect
// immediately, the subscription reactivates, and the billing period restarts
// at the payment time.
func (s *Service) ApplyPayment(ctx context.Context, userID id.UserID, tier models.SubscriptionTier, paidAt time.Time) (*models.Subscription, error) {
	if userID.IsNil() {
		return nil, dErrors.New(dErrors.CodeBadRequest, "user id is required")
	}
	if !tier.IsValid() {
		return nil, dErrors.Newf(dErrors.CodeInvalidInput, "unknown subscription tier: %s", tier)
	}
	if paidAt.IsZero() {
		paidAt = requesttime.Now(ctx)
	}

	sub := models.Subscription{
		Tier:          tier,
		Status:        models.SubscriptionActive,
		LastPaymentAt: &paidAt,
	}
	if err := s.users.SetSubscription(ctx, userID, sub); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to store subscription")
	}

	ports.LogAudit(ctx, s.logger, s.auditPublisher, userID, "payment_applied",
		"tier", tier,
		"paid_at", paidAt,
	)

	return &sub, nil
}

// ExpireLapsed sweeps every stored subscription and downgrades the lapsed
// ones. Lazy expiry already guarantees correctness; the sweep only keeps
// dashboards and exports from reading stale paid tiers. Returns the number
// of subscriptions downgraded.
func (s *Service) ExpireLapsed(ctx context.Context) (int, error) {
	userIDs, err := s.users.ListSubscribed(ctx)
	if err != nil {
		return 0, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list subscriptions")
	}

	now := requesttime.Now(ctx)
	expired := 0
	for _, userID := range userIDs {
		sub, err := s.loadSubscription(ctx, userID)
		if err != nil {
			return expired, err
		}
		wasActive := sub.Status == models.SubscriptionActive
		lapsed, err := s.maybeExpire(ctx, userID, sub, now)
		if err != nil {
			return expired, err
		}
		if lapsed && wasActive {
			expired++
		}
	}
	return expired, nil
}

// loadSubscription reads a user's subscription, defaulting absent records to
// an active free tier with no payment history.
func (s *Service) loadSubscription(ctx context.Context, userID id.UserID) (*models.Subscription, error) {
	sub, err := s.users.GetSubscription(ctx, userID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load subscription")
	}
	if sub == nil {
		sub = &models.Subscription{
			Tier:   models.TierFree,
			Status: models.SubscriptionActive,
		}
	}
	return sub, nil
}

// maybeExpire downgrades a paid subscription whose billing period has ended.
// It mutates sub in place so callers see post-downgrade state. Reports
// whether the subscription is currently lapsed, including downgrades that
// happened on earlier calls.
func (s *Service) maybeExpire(ctx context.Context, userID id.UserID, sub *models.Subscription, now time.Time) (bool, error) {
	// An earlier lazy downgrade leaves tier=free, status=inactive; that still
	// reads as lapsed until the next payment.
	alreadyLapsed := sub.Status == models.SubscriptionInactive
	if alreadyLapsed {
		return true, nil
	}

	if sub.Tier == models.TierFree || sub.LastPaymentAt == nil {
		return false, nil
	}

	periodEnd := AddMonthsClamped(*sub.LastPaymentAt, s.config.BillingPeriodMonths)
	if now.Before(periodEnd) {
		return false, nil
	}

	previousTier := sub.Tier
	sub.Tier = models.TierFree
	sub.Status = models.SubscriptionInactive

	if err := s.users.SetSubscription(ctx, userID, *sub); err != nil {
		return false, dErrors.Wrap(err, dErrors.CodeInternal, "failed to downgrade subscription")
	}

	ports.LogAudit(ctx, s.logger, s.auditPublisher, userID, "subscription_expired",
		"previous_tier", previousTier,
		"period_end", periodEnd,
	)
	if s.metrics != nil {
		s.metrics.IncDowngrade()
	}
	if s.sink != nil {
		notification := ports.Notification{
			UserID:  userID,
			Kind:    ports.NotifyDowngraded,
			Message: "subscription lapsed, account moved to the free tier",
			At:      now,
		}
		if err := s.sink.Notify(ctx, notification); err != nil && s.logger != nil {
			s.logger.WarnContext(ctx, "failed to deliver notification", "kind", notification.Kind, "error", err)
		}
	}

	return true, nil
}

// postsUsed counts listings created inside the current billing period. Users
// who never paid are counted from the beginning of time: the free quota is a
// lifetime allowance until a first payment starts a period.
func (s *Service) postsUsed(ctx context.Context, userID id.UserID, sub *models.Subscription) (int, error) {
	var since time.Time
	if sub.LastPaymentAt != nil {
		since = *sub.LastPaymentAt
	}
	used, err := s.usage.CountListingsSince(ctx, userID, since)
	if err != nil {
		return 0, dErrors.Wrap(err, dErrors.CodeInternal, "failed to count listings")
	}
	return used, nil
}
