package user

import (
	"context"
	"database/sql"
	"fmt"

	"trustplane/internal/trust/models"
	id "trustplane/pkg/domain"
	"trustplane/pkg/platform/tx"
)

// PostgresUserStore persists verification flags and subscription state in the
// user_trust table, one row per user, upserted on write. Methods resolve the
// querier from the context so flag writes join the review transaction.
type PostgresUserStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresUserStore {
	return &PostgresUserStore{db: db}
}

func (s *PostgresUserStore) GetVerificationFlags(ctx context.Context, userID id.UserID) (*models.VerificationFlags, error) {
	query := `
		SELECT email_verified, phone_verified, id_verified, facial_verified, address_verified, fully_verified
		FROM user_trust
		WHERE user_id = $1
	`
	var flags models.VerificationFlags
	err := tx.Resolve(ctx, s.db).QueryRowContext(ctx, query, userID.String()).Scan(
		&flags.Email,
		&flags.Phone,
		&flags.ID,
		&flags.Facial,
		&flags.Address,
		&flags.FullyVerified,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get verification flags: %w", err)
	}
	return &flags, nil
}

func (s *PostgresUserStore) SetVerificationFlags(ctx context.Context, userID id.UserID, flags models.VerificationFlags) error {
	query := `
		INSERT INTO user_trust
			(user_id, email_verified, phone_verified, id_verified, facial_verified, address_verified, fully_verified)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (user_id) DO UPDATE SET
			email_verified = EXCLUDED.email_verified,
			phone_verified = EXCLUDED.phone_verified,
			id_verified = EXCLUDED.id_verified,
			facial_verified = EXCLUDED.facial_verified,
			address_verified = EXCLUDED.address_verified,
			fully_verified = EXCLUDED.fully_verified
	`
	_, err := tx.Resolve(ctx, s.db).ExecContext(ctx, query,
		userID.String(),
		flags.Email,
		flags.Phone,
		flags.ID,
		flags.Facial,
		flags.Address,
		flags.FullyVerified,
	)
	if err != nil {
		return fmt.Errorf("set verification flags: %w", err)
	}
	return nil
}

func (s *PostgresUserStore) GetSubscription(ctx context.Context, userID id.UserID) (*models.Subscription, error) {
	query := `
		SELECT tier, sub_status, last_payment_at
		FROM user_trust
		WHERE user_id = $1 AND tier IS NOT NULL
	`
	var (
		sub           models.Subscription
		lastPaymentAt sql.NullTime
	)
	err := tx.Resolve(ctx, s.db).QueryRowContext(ctx, query, userID.String()).Scan(
		&sub.Tier,
		&sub.Status,
		&lastPaymentAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get subscription: %w", err)
	}
	if lastPaymentAt.Valid {
		t := lastPaymentAt.Time
		sub.LastPaymentAt = &t
	}
	return &sub, nil
}

func (s *PostgresUserStore) SetSubscription(ctx context.Context, userID id.UserID, sub models.Subscription) error {
	query := `
		INSERT INTO user_trust (user_id, tier, sub_status, last_payment_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (user_id) DO UPDATE SET
			tier = EXCLUDED.tier,
			sub_status = EXCLUDED.sub_status,
			last_payment_at = EXCLUDED.last_payment_at
	`
	var lastPaymentAt sql.NullTime
	if sub.LastPaymentAt != nil {
		lastPaymentAt = sql.NullTime{Time: *sub.LastPaymentAt, Valid: true}
	}
	_, err := tx.Resolve(ctx, s.db).ExecContext(ctx, query,
		userID.String(),
		sub.Tier,
		sub.Status,
		lastPaymentAt,
	)
	if err != nil {
		return fmt.Errorf("set subscription: %w", err)
	}
	return nil
}

func (s *PostgresUserStore) ListSubscribed(ctx context.Context) ([]id.UserID, error) {
	query := `SELECT user_id FROM user_trust WHERE tier IS NOT NULL`

	rows, err := tx.Resolve(ctx, s.db).QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list subscribed users: %w", err)
	}
	defer rows.Close()

	var ids []id.UserID
	for rows.Next() {
		var raw string
		if err := rows.Scan(&raw); err != nil {
			return nil, fmt.Errorf("scan user id: %w", err)
		}
		userID, err := id.ParseUserID(raw)
		if err != nil {
			return nil, err
		}
		ids = append(ids, userID)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate subscribed users: %w", err)
	}
	return ids, nil
}
