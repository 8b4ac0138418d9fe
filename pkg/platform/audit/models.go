package audit

import (
	"context"
	"time"

	id "trustplane/pkg/domain"
)

// EventCategory classifies audit events by their primary purpose. Categories
// drive retention and routing: security events feed monitoring pipelines,
// operations events can be sampled.
type EventCategory string

const (
	// CategorySecurity covers events relevant to security monitoring:
	// rate-limit blocks, document rejections, re-reviews of terminal documents.
	CategorySecurity EventCategory = "security"

	// CategoryCompliance covers events with regulatory significance:
	// verification state changes and subscription downgrades.
	CategoryCompliance EventCategory = "compliance"

	// CategoryOperations covers routine operational visibility.
	CategoryOperations EventCategory = "operations"
)

// Event is emitted from domain logic to capture key actions. Keep it
// transport-agnostic so stores and sinks can fan out.
type Event struct {
	Category  EventCategory
	Timestamp time.Time
	UserID    id.UserID
	Action    string
	Reason    string
	// RequestID correlates the event with the HTTP request that caused it.
	RequestID string
}

// AuditEvent names every action trustplane records.
type AuditEvent string

const (
	// Verification ledger events
	EventDocumentSubmitted  AuditEvent = "document_submitted"
	EventDocumentApproved   AuditEvent = "document_approved"
	EventDocumentRejected   AuditEvent = "document_rejected"
	EventDocumentRereviewed AuditEvent = "document_rereviewed"
	EventUserFullyVerified  AuditEvent = "user_fully_verified"
	EventUserUnverified     AuditEvent = "user_unverified"
	EventEmailConfirmed     AuditEvent = "email_confirmed"
	EventPhoneConfirmed     AuditEvent = "phone_confirmed"

	// Quota engine events
	EventSubscriptionExpired   AuditEvent = "subscription_expired"
	EventQuotaExhausted        AuditEvent = "quota_exhausted"
	EventPaymentApplied        AuditEvent = "payment_applied"
	EventSubscriptionDowngrade AuditEvent = "subscription_downgraded"

	// Rate limiter events
	EventAttemptBlocked AuditEvent = "attempt_blocked"
	EventBucketCleared  AuditEvent = "bucket_cleared"
)

// Store persists audit events.
type Store interface {
	Append(ctx context.Context, event Event) error
	ListByUser(ctx context.Context, userID id.UserID) ([]Event, error)
}
