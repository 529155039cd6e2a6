// Package relay forwards committed audit events from the outbox table to the
// event stream.
package relay

import (
	"context"
	"database/sql"
	"log/slog"
	"time"

	"github.com/google/uuid"

	auditstore "depositguard/internal/audit/store"
	"depositguard/pkg/platform/tx"
)

type Source interface {
	PendingOutbox(ctx context.Context, limit int) ([]auditstore.OutboxEntry, error)
	MarkPublished(ctx context.Context, entryID uuid.UUID, at time.Time) error
}

// Sink publishes one outbox entry. Implementations must be safe to retry: an
// entry is re-sent if marking it published fails.
type Sink interface {
	Publish(ctx context.Context, key, eventType string, payload []byte) error
}

// Relay polls the outbox and publishes pending entries in order.
type Relay struct {
	source   Source
	sink     Sink
	interval time.Duration
	batch    int
	logger   *slog.Logger
	runInTx  func(ctx context.Context, fn func(ctx context.Context) error) error
	clock    func() time.Time
}

type Option func(*Relay)

func WithInterval(d time.Duration) Option {
	return func(r *Relay) {
		if d > 0 {
			r.interval = d
		}
	}
}

func WithBatchSize(n int) Option {
	return func(r *Relay) {
		if n > 0 {
			r.batch = n
		}
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(r *Relay) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// WithDB runs each batch in a transaction so SKIP LOCKED row locks hold until
// the batch is marked.
func WithDB(db *sql.DB) Option {
	return func(r *Relay) {
		r.runInTx = func(ctx context.Context, fn func(ctx context.Context) error) error {
			return tx.Run(ctx, db, fn)
		}
	}
}

func New(source Source, sink Sink, opts ...Option) *Relay {
	r := &Relay{
		source:   source,
		sink:     sink,
		interval: time.Second,
		batch:    100,
		logger:   slog.Default(),
		runInTx:  func(ctx context.Context, fn func(context.Context) error) error { return fn(ctx) },
		clock:    time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run flushes on every tick until ctx is cancelled.
func (r *Relay) Run(ctx context.Context) error {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if _, err := r.Flush(ctx); err != nil {
				r.logger.WarnContext(ctx, "audit relay flush failed", "error", err)
			}
		}
	}
}

// Flush publishes one batch and returns how many entries were marked
// published. It stops at the first publish failure so ordering per case is
// preserved; the batch transaction then rolls back and Flush reports zero.
func (r *Relay) Flush(ctx context.Context) (int, error) {
	sent := 0
	err := r.runInTx(ctx, func(ctx context.Context) error {
		entries, err := r.source.PendingOutbox(ctx, r.batch)
		if err != nil {
			return err
		}
		for _, e := range entries {
			if err := r.sink.Publish(ctx, e.Key, e.EventType, e.Payload); err != nil {
				return err
			}
			if err := r.source.MarkPublished(ctx, e.ID, r.clock().UTC()); err != nil {
				return err
			}
			sent++
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return sent, nil
}
