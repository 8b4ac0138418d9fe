package usage

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	id "trustplane/pkg/domain"
)

// PostgresUsageStore derives post usage by counting listing rows owned by the
// marketplace. It is read-only from this service's point of view: listings
// are written by the marketplace core, we only count them. A dedicated pgx
// pool keeps this read path off the transactional connection.
type PostgresUsageStore struct {
	pool *pgxpool.Pool
}

func NewPostgres(pool *pgxpool.Pool) *PostgresUsageStore {
	return &PostgresUsageStore{pool: pool}
}

// CountListingsSince counts packages and trips the user created at or after
// the given timestamp. Both kinds count toward the same quota.
func (s *PostgresUsageStore) CountListingsSince(ctx context.Context, userID id.UserID, since time.Time) (int, error) {
	query := `
		SELECT count(*)
		FROM listings
		WHERE user_id = $1 AND created_at >= $2
	`
	var count int
	if err := s.pool.QueryRow(ctx, query, userID.String(), since).Scan(&count); err != nil {
		return 0, fmt.Errorf("count listings since: %w", err)
	}
	return count, nil
}

// RecordListing inserts a listing row. Production writes come from the
// marketplace core; this insert backs integration tests and local setups.
func (s *PostgresUsageStore) RecordListing(ctx context.Context, userID id.UserID, createdAt time.Time) error {
	query := `INSERT INTO listings (user_id, created_at) VALUES ($1, $2)`
	if _, err := s.pool.Exec(ctx, query, userID.String(), createdAt); err != nil {
		return fmt.Errorf("record listing: %w", err)
	}
	return nil
}
