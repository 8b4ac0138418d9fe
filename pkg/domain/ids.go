// Package domain defines typed identifiers shared across trustplane services.
// Distinct types keep user and document ids from being swapped at call sites;
// the compiler enforces what code review would otherwise have to catch.
package domain

import (
	"github.com/google/uuid"

	dErrors "trustplane/pkg/domain-errors"
)

// UserID identifies a marketplace account.
type UserID uuid.UUID

// DocumentID identifies a verification document submission.
type DocumentID uuid.UUID

// NewDocumentID mints a fresh document id.
func NewDocumentID() DocumentID {
	return DocumentID(uuid.New())
}

// ParseUserID parses and validates a user id. IDs must be valid, non-empty,
// non-nil UUIDs; anything else is rejected at the trust boundary.
func ParseUserID(s string) (UserID, error) {
	u, err := parseUUID(s, "user id")
	return UserID(u), err
}

// ParseDocumentID parses and validates a document id.
func ParseDocumentID(s string) (DocumentID, error) {
	u, err := parseUUID(s, "document id")
	return DocumentID(u), err
}

func parseUUID(s, label string) (uuid.UUID, error) {
	if s == "" {
		return uuid.Nil, dErrors.Newf(dErrors.CodeInvalidInput, "%s cannot be empty", label)
	}
	u, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, dErrors.Newf(dErrors.CodeInvalidInput, "invalid %s", label)
	}
	if u == uuid.Nil {
		return uuid.Nil, dErrors.Newf(dErrors.CodeInvalidInput, "%s cannot be the nil uuid", label)
	}
	return u, nil
}

func (id UserID) String() string { return uuid.UUID(id).String() }

func (id UserID) IsNil() bool { return uuid.UUID(id) == uuid.Nil }

// MarshalText renders the id in canonical UUID form for JSON and logs.
func (id UserID) MarshalText() ([]byte, error) {
	return []byte(id.String()), nil
}

// UnmarshalText parses with the same validation as ParseUserID.
func (id *UserID) UnmarshalText(b []byte) error {
	parsed, err := ParseUserID(string(b))
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}

func (id DocumentID) String() string { return uuid.UUID(id).String() }

func (id DocumentID) IsNil() bool { return uuid.UUID(id) == uuid.Nil }

// MarshalText renders the id in canonical UUID form for JSON and logs.
func (id DocumentID) MarshalText() ([]byte, error) {
	return []byte(id.String()), nil
}

// UnmarshalText parses with the same validation as ParseDocumentID.
func (id *DocumentID) UnmarshalText(b []byte) error {
	parsed, err := ParseDocumentID(string(b))
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}
