// Package publisher delivers audit events to a store, synchronously by
// default or through a buffered channel when async mode is enabled.
//
// Sync mode is fail-open for the caller: Emit returns the store error but
// business operations treat audit as best-effort. Async mode drops events when
// the buffer is full rather than blocking request handling.
package publisher

import (
	"context"
	"log/slog"
	"sync"
	"time"

	id "trustplane/pkg/domain"
	audit "trustplane/pkg/platform/audit"
)

type Publisher struct {
	store  audit.Store
	logger *slog.Logger

	buffer chan audit.Event
	wg     sync.WaitGroup

	closeOnce sync.Once
}

type Option func(*Publisher)

// WithLogger sets a logger for drop/failure reporting.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Publisher) {
		p.logger = logger
	}
}

// WithAsyncBuffer enables asynchronous delivery through a buffer of the given
// size. Emit never blocks; events are dropped when the buffer is full.
func WithAsyncBuffer(size int) Option {
	return func(p *Publisher) {
		p.buffer = make(chan audit.Event, size)
	}
}

// NewPublisher builds a publisher over the given store.
func NewPublisher(store audit.Store, opts ...Option) *Publisher {
	p := &Publisher{store: store}
	for _, opt := range opts {
		opt(p)
	}

	if p.buffer != nil {
		p.wg.Add(1)
		go p.drain()
	}

	return p
}

// Emit records an audit event. The timestamp is stamped here when the caller
// left it zero so stores never see unset times.
func (p *Publisher) Emit(ctx context.Context, event audit.Event) error {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}

	if p.buffer == nil {
		return p.store.Append(ctx, event)
	}

	select {
	case p.buffer <- event:
	default:
		if p.logger != nil {
			p.logger.Warn("audit buffer full, dropping event", "action", event.Action)
		}
	}
	return nil
}

// List returns the audit trail for a user.
func (p *Publisher) List(ctx context.Context, userID id.UserID) ([]audit.Event, error) {
	return p.store.ListByUser(ctx, userID)
}

// Close drains any buffered events and stops the background worker.
func (p *Publisher) Close() {
	p.closeOnce.Do(func() {
		if p.buffer != nil {
			close(p.buffer)
			p.wg.Wait()
		}
	})
}

func (p *Publisher) drain() {
	defer p.wg.Done()
	for event := range p.buffer {
		if err := p.store.Append(context.Background(), event); err != nil && p.logger != nil {
			p.logger.Warn("audit append failed", "action", event.Action, "error", err)
		}
	}
}
