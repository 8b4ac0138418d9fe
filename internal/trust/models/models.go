package models

import (
	"time"

	id "trustplane/pkg/domain"
	dErrors "trustplane/pkg/domain-errors"
)

// Category is one of the five independent verification tracks that feed the
// aggregate "fully verified" state.
type Category string

const (
	CategoryEmail   Category = "email"
	CategoryPhone   Category = "phone"
	CategoryID      Category = "id"
	CategoryFacial  Category = "facial"
	CategoryAddress Category = "address"
)

// AllCategories lists every category in aggregate-evaluation order.
var AllCategories = []Category{
	CategoryEmail,
	CategoryPhone,
	CategoryID,
	CategoryFacial,
	CategoryAddress,
}

// IsValid checks if the category is one of the supported enum values.
func (c Category) IsValid() bool {
	switch c {
	case CategoryEmail, CategoryPhone, CategoryID, CategoryFacial, CategoryAddress:
		return true
	}
	return false
}

// String returns the string representation.
func (c Category) String() string {
	return string(c)
}

// Resubmittable reports whether a new document may be submitted while the
// category is already verified. Facial and address documents always go
// through manual review and therefore stay resubmittable; the remaining
// categories conflict on resubmission once verified.
func (c Category) Resubmittable() bool {
	return c == CategoryFacial || c == CategoryAddress
}

// DocumentType is the concrete kind of document a user submits. Several types
// collapse into one category: all government id variants count as "id", all
// proof-of-address variants count as "address".
type DocumentType string

const (
	DocTypeNationalID    DocumentType = "national_id"
	DocTypePassport      DocumentType = "passport"
	DocTypeDriverLicense DocumentType = "driver_license"
	DocTypeFacialPhoto   DocumentType = "facial_photo"
	DocTypeLease         DocumentType = "lease"
	DocTypeUtilityBill   DocumentType = "utility_bill"
	DocTypeBankStatement DocumentType = "bank_statement"
)

// ParseDocumentType creates a DocumentType from a string, validating it.
func ParseDocumentType(s string) (DocumentType, error) {
	if s == "" {
		return "", dErrors.New(dErrors.CodeInvalidInput, "document type cannot be empty")
	}
	t := DocumentType(s)
	if _, ok := t.Category(); !ok {
		return "", dErrors.Newf(dErrors.CodeInvalidInput, "unknown document type %q", s)
	}
	return t, nil
}

// Category maps a document type to its verification category.
func (t DocumentType) Category() (Category, bool) {
	switch t {
	case DocTypeNationalID, DocTypePassport, DocTypeDriverLicense:
		return CategoryID, true
	case DocTypeFacialPhoto:
		return CategoryFacial, true
	case DocTypeLease, DocTypeUtilityBill, DocTypeBankStatement:
		return CategoryAddress, true
	}
	return "", false
}

// String returns the string representation.
func (t DocumentType) String() string {
	return string(t)
}

// DocumentStatus is the review state of a submission.
type DocumentStatus string

const (
	StatusPending  DocumentStatus = "PENDING"
	StatusVerified DocumentStatus = "VERIFIED"
	StatusRejected DocumentStatus = "REJECTED"
)

// IsTerminal reports whether the document has already been reviewed.
func (s DocumentStatus) IsTerminal() bool {
	return s == StatusVerified || s == StatusRejected
}

// VerificationDocument is one submission in a verification category. Multiple
// documents may exist per category per user; only the most recent one is
// authoritative for that category.
type VerificationDocument struct {
	ID              id.DocumentID  `json:"id"`
	UserID          id.UserID      `json:"user_id"`
	Type            DocumentType   `json:"type"`
	Category        Category       `json:"category"`
	Status          DocumentStatus `json:"status"`
	PayloadRef      string         `json:"payload_ref"`
	RejectionReason string         `json:"rejection_reason,omitempty"`
	SubmittedAt     time.Time      `json:"submitted_at"`
	VerifiedAt      *time.Time     `json:"verified_at,omitempty"`
}

// NewVerificationDocument creates a pending document with domain invariant
// validation.
func NewVerificationDocument(userID id.UserID, docType DocumentType, payloadRef string, now time.Time) (*VerificationDocument, error) {
	if userID.IsNil() {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "user id is required")
	}
	category, ok := docType.Category()
	if !ok {
		return nil, dErrors.Newf(dErrors.CodeInvalidInput, "unknown document type %q", docType)
	}
	if payloadRef == "" {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "payload reference cannot be empty")
	}

	return &VerificationDocument{
		ID:          id.NewDocumentID(),
		UserID:      userID,
		Type:        docType,
		Category:    category,
		Status:      StatusPending,
		PayloadRef:  payloadRef,
		SubmittedAt: now,
	}, nil
}

// ReviewDecision is the reviewer's verdict on a pending document.
type ReviewDecision string

const (
	DecisionApprove ReviewDecision = "approve"
	DecisionReject  ReviewDecision = "reject"
)

// ParseReviewDecision creates a ReviewDecision from a string, validating it.
func ParseReviewDecision(s string) (ReviewDecision, error) {
	switch ReviewDecision(s) {
	case DecisionApprove:
		return DecisionApprove, nil
	case DecisionReject:
		return DecisionReject, nil
	}
	return "", dErrors.Newf(dErrors.CodeInvalidInput, "invalid review decision %q: must be 'approve' or 'reject'", s)
}

// VerificationFlags holds a user's five category flags plus the derived
// aggregate. The aggregate is stored rather than recomputed on read so the
// request layer gets a single authoritative boolean, but every write path
// recomputes it in the same atomic unit as the flag change.
type VerificationFlags struct {
	Email         bool `json:"email"`
	Phone         bool `json:"phone"`
	ID            bool `json:"id"`
	Facial        bool `json:"facial"`
	Address       bool `json:"address"`
	FullyVerified bool `json:"fully_verified"`
}

// Get returns the flag for a category.
func (f VerificationFlags) Get(c Category) bool {
	switch c {
	case CategoryEmail:
		return f.Email
	case CategoryPhone:
		return f.Phone
	case CategoryID:
		return f.ID
	case CategoryFacial:
		return f.Facial
	case CategoryAddress:
		return f.Address
	}
	return false
}

// Set updates the flag for a category. The aggregate is not touched here;
// callers recompute it explicitly so the invariant stays visible at the
// mutation site.
func (f *VerificationFlags) Set(c Category, v bool) {
	switch c {
	case CategoryEmail:
		f.Email = v
	case CategoryPhone:
		f.Phone = v
	case CategoryID:
		f.ID = v
	case CategoryFacial:
		f.Facial = v
	case CategoryAddress:
		f.Address = v
	}
}

// AllSet reports whether every category flag is true.
func (f VerificationFlags) AllSet() bool {
	for _, c := range AllCategories {
		if !f.Get(c) {
			return false
		}
	}
	return true
}

// CompletedCount returns the number of verified categories.
func (f VerificationFlags) CompletedCount() int {
	count := 0
	for _, c := range AllCategories {
		if f.Get(c) {
			count++
		}
	}
	return count
}

// VerificationProgress is the read model served to the request layer.
type VerificationProgress struct {
	PerCategory    map[Category]bool `json:"per_category"`
	CompletedCount int               `json:"completed_count"`
	TotalCount     int               `json:"total_count"`
	FullyVerified  bool              `json:"fully_verified"`
}

// ReviewOutcome reports the state after a review action: the document, the
// user's flags, and whether the aggregate flipped as a result.
type ReviewOutcome struct {
	Document         *VerificationDocument `json:"document"`
	Flags            VerificationFlags     `json:"flags"`
	AggregateChanged bool                  `json:"aggregate_changed"`
}

// SubscriptionTier determines the per-billing-period posting quota.
type SubscriptionTier string

const (
	TierFree     SubscriptionTier = "free"
	TierStandard SubscriptionTier = "standard"
	TierPremium  SubscriptionTier = "premium"
)

// ParseSubscriptionTier creates a SubscriptionTier from a string, validating it.
func ParseSubscriptionTier(s string) (SubscriptionTier, error) {
	t := SubscriptionTier(s)
	if !t.IsValid() {
		return "", dErrors.Newf(dErrors.CodeInvalidInput, "invalid subscription tier %q", s)
	}
	return t, nil
}

// IsValid checks if the tier is one of the supported enum values.
func (t SubscriptionTier) IsValid() bool {
	switch t {
	case TierFree, TierStandard, TierPremium:
		return true
	}
	return false
}

// String returns the string representation.
func (t SubscriptionTier) String() string {
	return string(t)
}

// SubscriptionStatus is the billing state of an account.
type SubscriptionStatus string

const (
	SubscriptionActive   SubscriptionStatus = "active"
	SubscriptionInactive SubscriptionStatus = "inactive"
)

// Subscription is the billing-relevant slice of a user record.
type Subscription struct {
	Tier          SubscriptionTier   `json:"tier"`
	Status        SubscriptionStatus `json:"status"`
	LastPaymentAt *time.Time         `json:"last_payment_at,omitempty"`
}

// QuotaStatus reports a user's posting capacity for the current billing
// period. Exhaustion and expiry are modeled results, never errors.
type QuotaStatus struct {
	Tier             SubscriptionTier `json:"tier"`
	Active           bool             `json:"active"`
	RemainingPosts   int              `json:"remaining_posts"`
	NeedsResubscribe bool             `json:"needs_resubscribe"`
	Reason           string           `json:"reason,omitempty"`
}

// PostCheck is the listing-creation decision served to the request layer.
type PostCheck struct {
	CanPost        bool             `json:"can_post"`
	Message        string           `json:"message,omitempty"`
	RemainingPosts int              `json:"remaining_posts"`
	Tier           SubscriptionTier `json:"tier"`
}

// AttemptResult represents the outcome of a rate limit check.
type AttemptResult struct {
	Allowed    bool      `json:"allowed"`
	Limit      int       `json:"limit"`
	Remaining  int       `json:"remaining"`
	ResetAt    time.Time `json:"reset_at"`
	RetryAfter int       `json:"retry_after,omitempty"` // seconds, only set when not allowed
}

// TrustLevel is the identity assurance an action demands.
type TrustLevel string

const (
	// TrustNone gates nothing; posting a listing requires no identity trust.
	TrustNone TrustLevel = "none"
	// TrustPhone requires a confirmed phone number.
	TrustPhone TrustLevel = "phone"
	// TrustIdentity requires verified government id and facial photo.
	TrustIdentity TrustLevel = "identity"
	// TrustFull requires the full aggregate; payout-related actions use this.
	TrustFull TrustLevel = "full"
)

// ParseTrustLevel creates a TrustLevel from a string, validating it.
func ParseTrustLevel(s string) (TrustLevel, error) {
	t := TrustLevel(s)
	if !t.IsValid() {
		return "", dErrors.Newf(dErrors.CodeInvalidInput, "invalid trust level %q", s)
	}
	return t, nil
}

// IsValid checks if the trust level is one of the supported enum values.
func (t TrustLevel) IsValid() bool {
	switch t {
	case TrustNone, TrustPhone, TrustIdentity, TrustFull:
		return true
	}
	return false
}

// MetBy reports whether the given flags satisfy this trust level.
func (t TrustLevel) MetBy(flags VerificationFlags) bool {
	switch t {
	case TrustNone:
		return true
	case TrustPhone:
		return flags.Phone
	case TrustIdentity:
		return flags.ID && flags.Facial
	case TrustFull:
		return flags.FullyVerified
	}
	return false
}
