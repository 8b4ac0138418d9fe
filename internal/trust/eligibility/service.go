// Package eligibility is the single read surface the rest of the marketplace
// asks before letting a user act. It composes the verification ledger and
// the quota engine and holds no state of its own.
package eligibility

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"trustplane/internal/trust/models"
	id "trustplane/pkg/domain"
	dErrors "trustplane/pkg/domain-errors"
)

const tracerName = "trustplane/internal/trust/eligibility"

// VerificationService is the slice of the ledger the façade forwards to.
type VerificationService interface {
	Submit(ctx context.Context, userID id.UserID, docType models.DocumentType, payloadRef string) (*models.VerificationDocument, error)
	Review(ctx context.Context, docID id.DocumentID, decision models.ReviewDecision, reason string) (*models.ReviewOutcome, error)
	Progress(ctx context.Context, userID id.UserID) (*models.VerificationProgress, error)
	ConfirmEmail(ctx context.Context, userID id.UserID) (*models.VerificationFlags, error)
	ConfirmPhone(ctx context.Context, userID id.UserID) (*models.VerificationFlags, error)
	Flags(ctx context.Context, userID id.UserID) (*models.VerificationFlags, error)
}

// QuotaService is the slice of the quota engine the façade forwards to.
type QuotaService interface {
	GetStatus(ctx context.Context, userID id.UserID) (*models.QuotaStatus, error)
	CanPost(ctx context.Context, userID id.UserID) (*models.PostCheck, error)
	ApplyPayment(ctx context.Context, userID id.UserID, tier models.SubscriptionTier, paidAt time.Time) (*models.Subscription, error)
}

type Service struct {
	verification VerificationService
	quota        QuotaService
	logger       *slog.Logger
	tracer       trace.Tracer
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(s *Service) {
		s.tracer = tp.Tracer(tracerName)
	}
}

func New(verification VerificationService, quota QuotaService, opts ...Option) (*Service, error) {
	if verification == nil {
		return nil, fmt.Errorf("verification service is required")
	}
	if quota == nil {
		return nil, fmt.Errorf("quota service is required")
	}

	svc := &Service{
		verification: verification,
		quota:        quota,
		tracer:       otel.Tracer(tracerName),
	}

	for _, opt := range opts {
		opt(svc)
	}

	return svc, nil
}

// CanCreateListing answers whether a user may create one more listing. A
// denial is a modeled result carrying the reason, never an error.
func (s *Service) CanCreateListing(ctx context.Context, userID id.UserID) (*models.PostCheck, error) {
	ctx, span := s.startSpan(ctx, "CanCreateListing", userID)
	defer span.End()

	check, err := s.quota.CanPost(ctx, userID)
	if err != nil {
		return nil, s.fail(span, err)
	}
	span.SetAttributes(
		attribute.Bool("eligibility.can_post", check.CanPost),
		attribute.Int("eligibility.remaining_posts", check.RemainingPosts),
	)
	return check, nil
}

// IsTrustedForAction reports whether a user's verification flags satisfy the
// trust level an action demands.
func (s *Service) IsTrustedForAction(ctx context.Context, userID id.UserID, level models.TrustLevel) (bool, error) {
	ctx, span := s.startSpan(ctx, "IsTrustedForAction", userID)
	defer span.End()

	if !level.IsValid() {
		return false, s.fail(span, dErrors.Newf(dErrors.CodeInvalidInput, "invalid trust level %q", level))
	}

	flags, err := s.verification.Flags(ctx, userID)
	if err != nil {
		return false, s.fail(span, err)
	}

	trusted := level.MetBy(*flags)
	span.SetAttributes(
		attribute.String("eligibility.trust_level", string(level)),
		attribute.Bool("eligibility.trusted", trusted),
	)
	return trusted, nil
}

// SubmitDocument forwards a document submission to the ledger.
func (s *Service) SubmitDocument(ctx context.Context, userID id.UserID, docType models.DocumentType, payloadRef string) (*models.VerificationDocument, error) {
	ctx, span := s.startSpan(ctx, "SubmitDocument", userID)
	defer span.End()

	doc, err := s.verification.Submit(ctx, userID, docType, payloadRef)
	if err != nil {
		return nil, s.fail(span, err)
	}
	return doc, nil
}

// ReviewDocument forwards a moderator verdict to the ledger.
func (s *Service) ReviewDocument(ctx context.Context, docID id.DocumentID, decision models.ReviewDecision, reason string) (*models.ReviewOutcome, error) {
	ctx, span := s.tracer.Start(ctx, "eligibility.ReviewDocument")
	defer span.End()

	outcome, err := s.verification.Review(ctx, docID, decision, reason)
	if err != nil {
		return nil, s.fail(span, err)
	}
	return outcome, nil
}

// VerificationProgress forwards a per-category progress read.
func (s *Service) VerificationProgress(ctx context.Context, userID id.UserID) (*models.VerificationProgress, error) {
	ctx, span := s.startSpan(ctx, "VerificationProgress", userID)
	defer span.End()

	progress, err := s.verification.Progress(ctx, userID)
	if err != nil {
		return nil, s.fail(span, err)
	}
	return progress, nil
}

// ConfirmEmail forwards an email confirmation to the ledger.
func (s *Service) ConfirmEmail(ctx context.Context, userID id.UserID) (*models.VerificationFlags, error) {
	ctx, span := s.startSpan(ctx, "ConfirmEmail", userID)
	defer span.End()

	flags, err := s.verification.ConfirmEmail(ctx, userID)
	if err != nil {
		return nil, s.fail(span, err)
	}
	return flags, nil
}

// ConfirmPhone forwards a phone confirmation to the ledger.
func (s *Service) ConfirmPhone(ctx context.Context, userID id.UserID) (*models.VerificationFlags, error) {
	ctx, span := s.startSpan(ctx, "ConfirmPhone", userID)
	defer span.End()

	flags, err := s.verification.ConfirmPhone(ctx, userID)
	if err != nil {
		return nil, s.fail(span, err)
	}
	return flags, nil
}

// QuotaStatus forwards a quota read.
func (s *Service) QuotaStatus(ctx context.Context, userID id.UserID) (*models.QuotaStatus, error) {
	ctx, span := s.startSpan(ctx, "QuotaStatus", userID)
	defer span.End()

	status, err := s.quota.GetStatus(ctx, userID)
	if err != nil {
		return nil, s.fail(span, err)
	}
	return status, nil
}

// ApplyPayment forwards a confirmed payment to the quota engine.
func (s *Service) ApplyPayment(ctx context.Context, userID id.UserID, tier models.SubscriptionTier, paidAt time.Time) (*models.Subscription, error) {
	ctx, span := s.startSpan(ctx, "ApplyPayment", userID)
	defer span.End()

	sub, err := s.quota.ApplyPayment(ctx, userID, tier, paidAt)
	if err != nil {
		return nil, s.fail(span, err)
	}
	return sub, nil
}

func (s *Service) startSpan(ctx context.Context, operation string, userID id.UserID) (context.Context, trace.Span) {
	return s.tracer.Start(ctx, "eligibility."+operation,
		trace.WithAttributes(attribute.String("user.id", userID.String())),
	)
}

func (s *Service) fail(span trace.Span, err error) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, dErrors.MessageOf(err))
	if s.logger != nil {
		s.logger.Warn("eligibility operation failed", "error", err)
	}
	return err
}
