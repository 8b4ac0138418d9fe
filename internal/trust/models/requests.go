package models

import (
	"strings"
	"time"

	dErrors "trustplane/pkg/domain-errors"
)

// SubmitDocumentRequest is the payload for a document submission.
type SubmitDocumentRequest struct {
	Type       string `json:"type"`
	PayloadRef string `json:"payload_ref"`
}

func (r *SubmitDocumentRequest) Normalize() {
	if r == nil {
		return
	}
	r.Type = strings.TrimSpace(strings.ToLower(r.Type))
	r.PayloadRef = strings.TrimSpace(r.PayloadRef)
}

// Follows validation order: Size -> Required -> Syntax.
func (r *SubmitDocumentRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request is required")
	}
	if len(r.PayloadRef) > 1024 {
		return dErrors.New(dErrors.CodeInvalidInput, "payload_ref must be 1024 characters or less")
	}
	if r.Type == "" {
		return dErrors.New(dErrors.CodeInvalidInput, "type is required")
	}
	if r.PayloadRef == "" {
		return dErrors.New(dErrors.CodeInvalidInput, "payload_ref is required")
	}
	if _, err := ParseDocumentType(r.Type); err != nil {
		return err
	}
	return nil
}

// ReviewDocumentRequest is the payload for a moderator verdict.
type ReviewDocumentRequest struct {
	Decision string `json:"decision"`
	Reason   string `json:"reason,omitempty"`
}

func (r *ReviewDocumentRequest) Normalize() {
	if r == nil {
		return
	}
	r.Decision = strings.TrimSpace(strings.ToLower(r.Decision))
	r.Reason = strings.TrimSpace(r.Reason)
}

func (r *ReviewDocumentRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request is required")
	}
	if len(r.Reason) > 500 {
		return dErrors.New(dErrors.CodeInvalidInput, "reason must be 500 characters or less")
	}
	if r.Decision == "" {
		return dErrors.New(dErrors.CodeInvalidInput, "decision is required")
	}
	if _, err := ParseReviewDecision(r.Decision); err != nil {
		return err
	}
	return nil
}

// PaymentWebhookRequest is the payload the billing provider posts after a
// successful charge.
type PaymentWebhookRequest struct {
	UserID string     `json:"user_id"`
	Tier   string     `json:"tier"`
	PaidAt *time.Time `json:"paid_at,omitempty"`
}

func (r *PaymentWebhookRequest) Normalize() {
	if r == nil {
		return
	}
	r.UserID = strings.TrimSpace(r.UserID)
	r.Tier = strings.TrimSpace(strings.ToLower(r.Tier))
}

func (r *PaymentWebhookRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request is required")
	}
	if r.UserID == "" {
		return dErrors.New(dErrors.CodeInvalidInput, "user_id is required")
	}
	if r.Tier == "" {
		return dErrors.New(dErrors.CodeInvalidInput, "tier is required")
	}
	if _, err := ParseSubscriptionTier(r.Tier); err != nil {
		return err
	}
	return nil
}

// AttemptCheckRequest asks the limiter to admit one attempt for a subject.
type AttemptCheckRequest struct {
	Subject string `json:"subject"`
}

func (r *AttemptCheckRequest) Normalize() {
	if r == nil {
		return
	}
	r.Subject = strings.TrimSpace(r.Subject)
}

func (r *AttemptCheckRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request is required")
	}
	if len(r.Subject) > 255 {
		return dErrors.New(dErrors.CodeInvalidInput, "subject must be 255 characters or less")
	}
	if r.Subject == "" {
		return dErrors.New(dErrors.CodeInvalidInput, "subject is required")
	}
	return nil
}
