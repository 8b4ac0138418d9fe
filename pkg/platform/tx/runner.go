package tx

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
)

// SQLRunner runs fn inside a database transaction. The transaction rides the
// context, so any store using Resolve participates automatically.
type SQLRunner struct {
	db *sql.DB
}

func NewSQLRunner(db *sql.DB) *SQLRunner {
	return &SQLRunner{db: db}
}

func (r *SQLRunner) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	dbTx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}

	if err := fn(WithTx(ctx, dbTx)); err != nil {
		if rbErr := dbTx.Rollback(); rbErr != nil && rbErr != sql.ErrTxDone {
			return fmt.Errorf("rollback tx after %w: %v", err, rbErr)
		}
		return err
	}

	if err := dbTx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

// SerialRunner serializes fn executions behind one mutex. It pairs with the
// in-memory stores, which have no transaction concept: mutual exclusion is
// enough to make multi-store updates appear atomic to readers that also go
// through the runner.
type SerialRunner struct {
	mu sync.Mutex
}

func NewSerialRunner() *SerialRunner {
	return &SerialRunner{}
}

func (r *SerialRunner) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return fn(ctx)
}
