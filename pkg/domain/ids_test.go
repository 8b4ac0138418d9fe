package domain

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "trustplane/pkg/domain-errors"
)

// TestParseUUID_Invariants validates the parsing invariant:
// ids must be valid, non-empty, non-nil UUIDs.
func TestParseUUID_Invariants(t *testing.T) {
	t.Run("rejects empty string", func(t *testing.T) {
		_, err := ParseUserID("")
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})

	t.Run("rejects invalid format", func(t *testing.T) {
		_, err := ParseUserID("not-a-uuid")
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})

	t.Run("rejects nil UUID", func(t *testing.T) {
		_, err := ParseDocumentID(uuid.Nil.String())
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})

	t.Run("accepts valid UUID", func(t *testing.T) {
		valid := uuid.New()
		id, err := ParseUserID(valid.String())
		require.NoError(t, err)
		assert.Equal(t, UserID(valid), id)
		assert.Equal(t, valid.String(), id.String())
		assert.False(t, id.IsNil())
	})
}

// TestTypeDistinction documents the compile-time invariant: a UserID cannot be
// passed where a DocumentID is expected. If the types ever become aliases the
// commented assignments below would start to compile.
func TestTypeDistinction(t *testing.T) {
	userID := UserID(uuid.New())
	docID := DocumentID(uuid.New())

	// var _ UserID = docID     // compile error
	// var _ DocumentID = userID // compile error

	assert.NotEqual(t, uuid.UUID(userID), uuid.UUID(docID))
}
