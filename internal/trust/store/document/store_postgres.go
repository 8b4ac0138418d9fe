package document

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"trustplane/internal/trust/models"
	id "trustplane/pkg/domain"
	"trustplane/pkg/platform/tx"
)

// PostgresDocumentStore persists verification documents in PostgreSQL.
// This store is pure I/O; supersession and review rules belong in the service.
// All methods resolve the querier from the context so they participate in a
// surrounding transaction when one is present.
type PostgresDocumentStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresDocumentStore {
	return &PostgresDocumentStore{db: db}
}

func (s *PostgresDocumentStore) Create(ctx context.Context, doc *models.VerificationDocument) error {
	query := `
		INSERT INTO verification_documents
			(id, user_id, doc_type, category, status, payload_ref, rejection_reason, submitted_at, verified_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	_, err := tx.Resolve(ctx, s.db).ExecContext(ctx, query,
		doc.ID.String(),
		doc.UserID.String(),
		doc.Type,
		doc.Category,
		doc.Status,
		doc.PayloadRef,
		doc.RejectionReason,
		doc.SubmittedAt,
		doc.VerifiedAt,
	)
	if err != nil {
		return fmt.Errorf("create verification document: %w", err)
	}
	return nil
}

func (s *PostgresDocumentStore) Get(ctx context.Context, docID id.DocumentID) (*models.VerificationDocument, error) {
	query := `
		SELECT id, user_id, doc_type, category, status, payload_ref, rejection_reason, submitted_at, verified_at
		FROM verification_documents
		WHERE id = $1
	`
	doc, err := scanDocument(tx.Resolve(ctx, s.db).QueryRowContext(ctx, query, docID.String()))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("get verification document: %w", err)
	}
	return doc, nil
}

func (s *PostgresDocumentStore) UpdateStatus(ctx context.Context, docID id.DocumentID, status models.DocumentStatus, reason string, verifiedAt *time.Time) error {
	query := `
		UPDATE verification_documents
		SET status = $2, rejection_reason = $3, verified_at = $4
		WHERE id = $1
	`
	_, err := tx.Resolve(ctx, s.db).ExecContext(ctx, query, docID.String(), status, reason, verifiedAt)
	if err != nil {
		return fmt.Errorf("update verification document status: %w", err)
	}
	return nil
}

func (s *PostgresDocumentStore) FindLatestByCategory(ctx context.Context, userID id.UserID, category models.Category) (*models.VerificationDocument, error) {
	query := `
		SELECT id, user_id, doc_type, category, status, payload_ref, rejection_reason, submitted_at, verified_at
		FROM verification_documents
		WHERE user_id = $1 AND category = $2
		ORDER BY submitted_at DESC, id DESC
		LIMIT 1
	`
	doc, err := scanDocument(tx.Resolve(ctx, s.db).QueryRowContext(ctx, query, userID.String(), category))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("find latest document by category: %w", err)
	}
	return doc, nil
}

// ListByUser returns every document a user ever submitted, newest first.
func (s *PostgresDocumentStore) ListByUser(ctx context.Context, userID id.UserID) ([]models.VerificationDocument, error) {
	query := `
		SELECT id, user_id, doc_type, category, status, payload_ref, rejection_reason, submitted_at, verified_at
		FROM verification_documents
		WHERE user_id = $1
		ORDER BY submitted_at DESC, id DESC
	`
	rows, err := tx.Resolve(ctx, s.db).QueryContext(ctx, query, userID.String())
	if err != nil {
		return nil, fmt.Errorf("list documents by user: %w", err)
	}
	defer rows.Close()

	var docs []models.VerificationDocument
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, fmt.Errorf("scan document row: %w", err)
		}
		docs = append(docs, *doc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate document rows: %w", err)
	}
	return docs, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanDocument(row rowScanner) (*models.VerificationDocument, error) {
	var (
		doc             models.VerificationDocument
		rawID           string
		rawUserID       string
		rejectionReason sql.NullString
		verifiedAt      sql.NullTime
	)
	if err := row.Scan(
		&rawID,
		&rawUserID,
		&doc.Type,
		&doc.Category,
		&doc.Status,
		&doc.PayloadRef,
		&rejectionReason,
		&doc.SubmittedAt,
		&verifiedAt,
	); err != nil {
		return nil, err
	}

	docID, err := id.ParseDocumentID(rawID)
	if err != nil {
		return nil, err
	}
	userID, err := id.ParseUserID(rawUserID)
	if err != nil {
		return nil, err
	}

	doc.ID = docID
	doc.UserID = userID
	doc.RejectionReason = rejectionReason.String
	if verifiedAt.Valid {
		t := verifiedAt.Time
		doc.VerifiedAt = &t
	}
	return &doc, nil
}
