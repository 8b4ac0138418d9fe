// Package ports defines shared interfaces for the trust module.
// Interfaces are placed here when consumed by multiple services to avoid
// duplication.
package ports

import (
	"context"
	"log/slog"
	"time"

	"trustplane/internal/trust/models"
	id "trustplane/pkg/domain"
	audit "trustplane/pkg/platform/audit"
	request "trustplane/pkg/platform/middleware/request"
)

// AuditPublisher emits audit events for security-relevant operations.
type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event) error
}

// AttemptStore manages fixed-window attempt counters for sensitive flows.
type AttemptStore interface {
	// Allow checks if an attempt is admissible and consumes one slot if so.
	// The check-and-increment is atomic per key.
	Allow(ctx context.Context, key string, limit int, window time.Duration) (*models.AttemptResult, error)

	// Reset clears the counter for a key (e.g. after a successful login).
	Reset(ctx context.Context, key string) error

	// GetCurrentCount returns the current attempt count in the window.
	GetCurrentCount(ctx context.Context, key string) (int, error)
}

// DocumentStore persists verification document submissions.
type DocumentStore interface {
	// Create stores a new pending document. The new document supersedes any
	// prior submission in the same category.
	Create(ctx context.Context, doc *models.VerificationDocument) error

	// Get retrieves a document by id. Returns nil when absent.
	Get(ctx context.Context, docID id.DocumentID) (*models.VerificationDocument, error)

	// UpdateStatus records a review verdict on a document.
	UpdateStatus(ctx context.Context, docID id.DocumentID, status models.DocumentStatus, reason string, verifiedAt *time.Time) error

	// FindLatestByCategory returns the authoritative (most recent) document
	// for a user and category. Returns nil when the user never submitted one.
	FindLatestByCategory(ctx context.Context, userID id.UserID, category models.Category) (*models.VerificationDocument, error)
}

// UserStore exposes the trust-relevant slices of the external user record.
type UserStore interface {
	// GetVerificationFlags loads the five category flags plus the aggregate.
	GetVerificationFlags(ctx context.Context, userID id.UserID) (*models.VerificationFlags, error)

	// SetVerificationFlags writes the flags and aggregate in one unit.
	SetVerificationFlags(ctx context.Context, userID id.UserID, flags models.VerificationFlags) error

	// GetSubscription loads tier, status and last payment timestamp.
	GetSubscription(ctx context.Context, userID id.UserID) (*models.Subscription, error)

	// SetSubscription writes tier, status and last payment timestamp.
	SetSubscription(ctx context.Context, userID id.UserID, sub models.Subscription) error

	// ListSubscribed returns every user with a stored subscription record.
	// The lapse sweep iterates these.
	ListSubscribed(ctx context.Context) ([]id.UserID, error)
}

// UsageStore counts listings (packages plus trips) for quota derivation.
type UsageStore interface {
	// CountListingsSince returns the number of listings the user created at
	// or after the given timestamp.
	CountListingsSince(ctx context.Context, userID id.UserID, since time.Time) (int, error)
}

// TxRunner executes fn atomically. The verification ledger uses it to make
// document status, category flag, and aggregate recomputation one unit; a
// failure anywhere rolls back everything.
type TxRunner interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// Notification is a fire-and-forget message to the outbound sink. Delivery is
// never awaited for correctness.
type Notification struct {
	UserID  id.UserID `json:"user_id"`
	Kind    string    `json:"kind"`
	Message string    `json:"message"`
	At      time.Time `json:"at"`
}

// Notification kinds emitted by the trust services.
const (
	NotifyAggregateVerified   = "aggregate_verified"
	NotifyAggregateUnverified = "aggregate_unverified"
	NotifyDowngraded          = "subscription_downgraded"
)

// NotificationSink delivers notifications to the outside world (email/SMS
// fan-out lives behind it).
type NotificationSink interface {
	Notify(ctx context.Context, n Notification) error
}

// LogAudit is a shared helper for logging audit events across trust services.
// It logs to both the structured logger and the audit publisher if available.
func LogAudit(ctx context.Context, logger *slog.Logger, publisher AuditPublisher, userID id.UserID, event string, attrs ...any) {
	if requestID := request.GetRequestID(ctx); requestID != "" {
		attrs = append(attrs, "request_id", requestID)
	}

	args := append(attrs, "event", event, "log_type", "audit")

	if logger != nil {
		logger.InfoContext(ctx, event, args...)
	}

	if publisher == nil {
		return
	}
	if err := publisher.Emit(ctx, audit.Event{UserID: userID, Action: event, RequestID: request.GetRequestID(ctx)}); err != nil && logger != nil {
		logger.WarnContext(ctx, "failed to emit audit event", "event", event, "error", err)
	}
}
