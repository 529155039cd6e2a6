package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"depositguard/internal/audit"
	id "depositguard/pkg/domain"
	"depositguard/pkg/platform/tx"
)

// PostgresStore writes audit events and their outbox rows in the caller's
// transaction. The outbox relay publishes them once the transaction commits.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// Append inserts the event and an outbox entry. audit_events has no UPDATE or
// DELETE path.
func (s *PostgresStore) Append(ctx context.Context, event *audit.Event) error {
	meta, err := json.Marshal(event.Metadata)
	if err != nil {
		return fmt.Errorf("marshal audit metadata: %w", err)
	}
	var actor *uuid.UUID
	if event.ActorID != nil {
		a := uuid.UUID(*event.ActorID)
		actor = &a
	}

	exec := tx.ExecutorFrom(ctx, s.db)
	err = exec.QueryRowContext(ctx, `
		INSERT INTO audit_events (id, case_id, action, description, actor_id, request_id, metadata, occurred_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING seq
	`, event.ID, uuid.UUID(event.CaseID), string(event.Action), event.Description, actor,
		event.RequestID, string(meta), event.Timestamp,
	).Scan(&event.Seq)
	if err != nil {
		return fmt.Errorf("insert audit event: %w", err)
	}

	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal outbox payload: %w", err)
	}
	_, err = exec.ExecContext(ctx, `
		INSERT INTO outbox (id, aggregate_id, event_type, payload, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`, uuid.New(), uuid.UUID(event.CaseID), string(event.Action), payload, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("insert outbox entry: %w", err)
	}
	return nil
}

func (s *PostgresStore) ListByCase(ctx context.Context, caseID id.CaseID) ([]audit.Event, error) {
	rows, err := tx.ExecutorFrom(ctx, s.db).QueryContext(ctx, `
		SELECT id, case_id, seq, action, description, actor_id, request_id, metadata, occurred_at
		FROM audit_events
		WHERE case_id = $1
		ORDER BY occurred_at, seq
	`, uuid.UUID(caseID))
	if err != nil {
		return nil, fmt.Errorf("list audit events: %w", err)
	}
	defer rows.Close()

	var out []audit.Event
	for rows.Next() {
		var (
			e       audit.Event
			rawCase uuid.UUID
			actor   uuid.NullUUID
			action  string
			meta    []byte
		)
		if err := rows.Scan(&e.ID, &rawCase, &e.Seq, &action, &e.Description, &actor, &e.RequestID, &meta, &e.Timestamp); err != nil {
			return nil, fmt.Errorf("scan audit event: %w", err)
		}
		e.CaseID = id.CaseID(rawCase)
		e.Action = audit.Action(action)
		if actor.Valid {
			a := id.UserID(actor.UUID)
			e.ActorID = &a
		}
		if len(meta) > 0 {
			if err := json.Unmarshal(meta, &e.Metadata); err != nil {
				return nil, fmt.Errorf("decode audit metadata: %w", err)
			}
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list audit events: %w", err)
	}
	return out, nil
}

// OutboxEntry is a pending audit event awaiting publication.
type OutboxEntry struct {
	ID        uuid.UUID
	Key       string
	EventType string
	Payload   []byte
}

// PendingOutbox returns up to limit unpublished entries, oldest first. Rows
// are locked with SKIP LOCKED so concurrent relays do not double-publish.
func (s *PostgresStore) PendingOutbox(ctx context.Context, limit int) ([]OutboxEntry, error) {
	rows, err := tx.ExecutorFrom(ctx, s.db).QueryContext(ctx, `
		SELECT id, aggregate_id, event_type, payload
		FROM outbox
		WHERE published_at IS NULL
		ORDER BY created_at
		LIMIT $1
		FOR UPDATE SKIP LOCKED
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("query outbox: %w", err)
	}
	defer rows.Close()

	var out []OutboxEntry
	for rows.Next() {
		var (
			e   OutboxEntry
			agg uuid.UUID
		)
		if err := rows.Scan(&e.ID, &agg, &e.EventType, &e.Payload); err != nil {
			return nil, fmt.Errorf("scan outbox: %w", err)
		}
		e.Key = agg.String()
		out = append(out, e)
	}
	return out, rows.Err()
}

func (s *PostgresStore) MarkPublished(ctx context.Context, entryID uuid.UUID, at time.Time) error {
	_, err := tx.ExecutorFrom(ctx, s.db).ExecContext(ctx,
		`UPDATE outbox SET published_at = $2 WHERE id = $1`, entryID, at)
	if err != nil {
		return fmt.Errorf("mark outbox published: %w", err)
	}
	return nil
}

// DB exposes the handle the relay uses to open its batch transaction.
func (s *PostgresStore) DB() *sql.DB { return s.db }
