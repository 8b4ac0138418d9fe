// Package verification owns the document ledger and the per-user
// verification flags. Review decisions, category flags, and the
// fully-verified aggregate always move together in one transaction.
package verification

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"trustplane/internal/trust/metrics"
	"trustplane/internal/trust/models"
	"trustplane/internal/trust/ports"
	id "trustplane/pkg/domain"
	dErrors "trustplane/pkg/domain-errors"
	requesttime "trustplane/pkg/platform/middleware/requesttime"
)

// Type aliases for shared interfaces.
type (
	DocumentStore  = ports.DocumentStore
	UserStore      = ports.UserStore
	AuditPublisher = ports.AuditPublisher
)

type Service struct {
	documents      DocumentStore
	users          UserStore
	txRunner       ports.TxRunner
	sink           ports.NotificationSink
	auditPublisher AuditPublisher
	logger         *slog.Logger
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

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

func New(documents DocumentStore, users UserStore, txRunner ports.TxRunner, opts ...Option) (*Service, error) {
	if documents == nil {
		return nil, fmt.Errorf("document store is required")
	}
	if users == nil {
		return nil, fmt.Errorf("user store is required")
	}
	if txRunner == nil {
		return nil, fmt.Errorf("tx runner is required")
	}

	svc := &Service{
		documents: documents,
		users:     users,
		txRunner:  txRunner,
	}

	for _, opt := range opts {
		opt(svc)
	}

	return svc, nil
}

// Submit records a new pending document. The latest submission per category
// is authoritative; a new one supersedes its predecessor. Categories that are
// already verified accept resubmissions only where the document naturally
// goes stale (facial, address) and conflict otherwise.
func (s *Service) Submit(ctx context.Context, userID id.UserID, docType models.DocumentType, payloadRef string) (*models.VerificationDocument, error) {
	doc, err := models.NewVerificationDocument(userID, docType, payloadRef, requesttime.Now(ctx))
	if err != nil {
		return nil, err
	}

	latest, err := s.documents.FindLatestByCategory(ctx, userID, doc.Category)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load latest document")
	}
	if latest != nil && latest.Status == models.StatusVerified && !doc.Category.Resubmittable() {
		return nil, dErrors.Newf(dErrors.CodeConflict, "category %s is already verified", doc.Category)
	}

	if err := s.documents.Create(ctx, doc); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to store document")
	}

	ports.LogAudit(ctx, s.logger, s.auditPublisher, userID, "document_submitted",
		"document_id", doc.ID,
		"category", doc.Category,
		"doc_type", doc.Type,
	)

	return doc, nil
}

// Review applies a moderator verdict to a document. The document status, the
// category flag, and the fully-verified aggregate change in one transaction;
// a rejection always drops the aggregate. Re-reviewing a terminal document
// with the same verdict is a no-op answered with current state, but it is
// audited as anomalous because moderation tooling should never retry
// settled documents.
func (s *Service) Review(ctx context.Context, docID id.DocumentID, decision models.ReviewDecision, reason string) (*models.ReviewOutcome, error) {
	approve := decision == models.DecisionApprove
	if !approve && decision != models.DecisionReject {
		return nil, dErrors.Newf(dErrors.CodeBadRequest, "unknown review decision: %s", decision)
	}
	if !approve && strings.TrimSpace(reason) == "" {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "rejection requires a reason")
	}
	if approve {
		// Approvals never carry a reason; an earlier rejection's reason is
		// cleared by the status update.
		reason = ""
	}

	var (
		outcome   models.ReviewOutcome
		anomalous bool
	)

	err := s.txRunner.RunInTx(ctx, func(ctx context.Context) error {
		doc, err := s.documents.Get(ctx, docID)
		if err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to load document")
		}
		if doc == nil {
			return dErrors.Newf(dErrors.CodeNotFound, "document %s not found", docID)
		}

		if doc.Status.IsTerminal() {
			sameVerdict := (approve && doc.Status == models.StatusVerified) ||
				(!approve && doc.Status == models.StatusRejected)
			if !sameVerdict {
				return dErrors.Newf(dErrors.CodeConflict, "document %s already reviewed as %s", docID, doc.Status)
			}

			flags, err := s.loadFlags(ctx, doc.UserID)
			if err != nil {
				return err
			}
			anomalous = true
			outcome = models.ReviewOutcome{Document: doc, Flags: *flags}
			return nil
		}

		now := requesttime.Now(ctx)
		status := models.StatusRejected
		var verifiedAt *time.Time
		if approve {
			status = models.StatusVerified
			verifiedAt = &now
		}

		if err := s.documents.UpdateStatus(ctx, docID, status, reason, verifiedAt); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to update document status")
		}
		doc.Status = status
		doc.RejectionReason = reason
		doc.VerifiedAt = verifiedAt

		flags, err := s.loadFlags(ctx, doc.UserID)
		if err != nil {
			return err
		}
		wasFullyVerified := flags.FullyVerified

		// Only the authoritative (latest) submission in the category can
		// grant its flag; approving a superseded document changes nothing.
		// A rejection clears the flag no matter which submission it hits,
		// so the aggregate always stays the conjunction of the five flags.
		if approve {
			latest, err := s.documents.FindLatestByCategory(ctx, doc.UserID, doc.Category)
			if err != nil {
				return dErrors.Wrap(err, dErrors.CodeInternal, "failed to load latest document")
			}
			if latest != nil && latest.ID == doc.ID {
				flags.Set(doc.Category, true)
			}
		} else {
			flags.Set(doc.Category, false)
		}
		flags.FullyVerified = flags.AllSet()

		if err := s.users.SetVerificationFlags(ctx, doc.UserID, *flags); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to update verification flags")
		}

		outcome = models.ReviewOutcome{
			Document:         doc,
			Flags:            *flags,
			AggregateChanged: flags.FullyVerified != wasFullyVerified,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if anomalous {
		ports.LogAudit(ctx, s.logger, s.auditPublisher, outcome.Document.UserID, "document_rereviewed",
			"document_id", docID,
			"status", outcome.Document.Status,
		)
		return &outcome, nil
	}

	event := "document_rejected"
	if approve {
		event = "document_approved"
	}
	ports.LogAudit(ctx, s.logger, s.auditPublisher, outcome.Document.UserID, event,
		"document_id", docID,
		"category", outcome.Document.Category,
		"reason", reason,
	)
	if s.metrics != nil {
		s.metrics.IncDocumentReviewed(string(decision))
	}

	s.announceAggregate(ctx, outcome.Document.UserID, outcome)

	return &outcome, nil
}

// Progress reports per-category completion for a user. Users with no
// activity read as all-false rather than not found.
func (s *Service) Progress(ctx context.Context, userID id.UserID) (*models.VerificationProgress, error) {
	flags, err := s.loadFlags(ctx, userID)
	if err != nil {
		return nil, err
	}

	perCategory := make(map[models.Category]bool, len(models.AllCategories))
	for _, category := range models.AllCategories {
		perCategory[category] = flags.Get(category)
	}

	return &models.VerificationProgress{
		PerCategory:    perCategory,
		CompletedCount: flags.CompletedCount(),
		TotalCount:     len(models.AllCategories),
		FullyVerified:  flags.FullyVerified,
	}, nil
}

// ConfirmEmail marks the email category verified, e.g. after a confirmation
// link is followed. Idempotent.
func (s *Service) ConfirmEmail(ctx context.Context, userID id.UserID) (*models.VerificationFlags, error) {
	return s.confirmChannel(ctx, userID, models.CategoryEmail, "email_confirmed")
}

// ConfirmPhone marks the phone category verified, e.g. after an SMS code
// check. Idempotent.
func (s *Service) ConfirmPhone(ctx context.Context, userID id.UserID) (*models.VerificationFlags, error) {
	return s.confirmChannel(ctx, userID, models.CategoryPhone, "phone_confirmed")
}

func (s *Service) confirmChannel(ctx context.Context, userID id.UserID, category models.Category, event string) (*models.VerificationFlags, error) {
	if userID.IsNil() {
		return nil, dErrors.New(dErrors.CodeBadRequest, "user id is required")
	}

	var (
		result           models.VerificationFlags
		aggregateChanged bool
	)

	err := s.txRunner.RunInTx(ctx, func(ctx context.Context) error {
		flags, err := s.loadFlags(ctx, userID)
		if err != nil {
			return err
		}
		wasFullyVerified := flags.FullyVerified

		flags.Set(category, true)
		flags.FullyVerified = flags.AllSet()

		if err := s.users.SetVerificationFlags(ctx, userID, *flags); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to update verification flags")
		}

		result = *flags
		aggregateChanged = flags.FullyVerified != wasFullyVerified
		return nil
	})
	if err != nil {
		return nil, err
	}

	ports.LogAudit(ctx, s.logger, s.auditPublisher, userID, event)

	if aggregateChanged {
		s.announceAggregate(ctx, userID, models.ReviewOutcome{Flags: result, AggregateChanged: true})
	}

	return &result, nil
}

// Flags returns a user's category flags and aggregate. Users with no
// activity read as all-false.
func (s *Service) Flags(ctx context.Context, userID id.UserID) (*models.VerificationFlags, error) {
	if userID.IsNil() {
		return nil, dErrors.New(dErrors.CodeBadRequest, "user id is required")
	}
	return s.loadFlags(ctx, userID)
}

// loadFlags reads a user's flags, defaulting absent users to all-false.
func (s *Service) loadFlags(ctx context.Context, userID id.UserID) (*models.VerificationFlags, error) {
	flags, err := s.users.GetVerificationFlags(ctx, userID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load verification flags")
	}
	if flags == nil {
		flags = &models.VerificationFlags{}
	}
	return flags, nil
}

// announceAggregate audits, counts, and notifies an aggregate transition.
// Notification delivery is best-effort; a sink failure never fails the review.
func (s *Service) announceAggregate(ctx context.Context, userID id.UserID, outcome models.ReviewOutcome) {
	if !outcome.AggregateChanged {
		return
	}

	event := "user_fully_verified"
	kind := ports.NotifyAggregateVerified
	message := "all verification requirements are complete"
	if !outcome.Flags.FullyVerified {
		event = "user_unverified"
		kind = ports.NotifyAggregateUnverified
		message = "verification status was revoked"
	}

	ports.LogAudit(ctx, s.logger, s.auditPublisher, userID, event)
	if s.metrics != nil {
		s.metrics.IncAggregateTransition(outcome.Flags.FullyVerified)
	}

	if s.sink == nil {
		return
	}
	notification := ports.Notification{
		UserID:  userID,
		Kind:    kind,
		Message: message,
		At:      requesttime.Now(ctx),
	}
	if err := s.sink.Notify(ctx, notification); err != nil && s.logger != nil {
		s.logger.WarnContext(ctx, "failed to deliver notification", "kind", kind, "error", err)
	}
}
