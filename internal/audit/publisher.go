package audit

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	id "depositguard/pkg/domain"
	"depositguard/pkg/requestcontext"
)

// Store persists audit events with insert-only semantics.
type Store interface {
	Append(ctx context.Context, event *Event) error
	ListByCase(ctx context.Context, caseID id.CaseID) ([]Event, error)
}

// Recorder appends audit entries for case mutations. Recording is fail-closed:
// callers run it inside the mutation's transaction and abort on error.
type Recorder struct {
	store  Store
	logger *slog.Logger
}

func NewRecorder(store Store, logger *slog.Logger) *Recorder {
	if logger == nil {
		logger = slog.Default()
	}
	return &Recorder{store: store, logger: logger}
}

// Record appends one event. Actor and timestamp default to the request
// context when the event leaves them unset.
func (r *Recorder) Record(ctx context.Context, event Event) (*Event, error) {
	if event.Action == "" {
		return nil, errors.New("audit event requires an action")
	}
	if event.CaseID.IsNil() {
		return nil, errors.New("audit event requires a case id")
	}
	if event.ID == uuid.Nil {
		event.ID = uuid.New()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = requestcontext.Now(ctx)
	}
	event.Timestamp = event.Timestamp.UTC().Truncate(time.Microsecond)
	if event.ActorID == nil {
		if actor := requestcontext.UserID(ctx); !actor.IsNil() {
			event.ActorID = &actor
		}
	}
	if event.RequestID == "" {
		event.RequestID = requestcontext.RequestID(ctx)
	}
	if err := r.store.Append(ctx, &event); err != nil {
		r.logger.ErrorContext(ctx, "audit append failed",
			"case_id", event.CaseID.String(),
			"action", string(event.Action),
			"error", err,
		)
		return nil, err
	}
	return &event, nil
}

// List returns a case's audit trail in order.
func (r *Recorder) List(ctx context.Context, caseID id.CaseID) ([]Event, error) {
	events, err := r.store.ListByCase(ctx, caseID)
	if err != nil {
		return nil, err
	}
	Sort(events)
	return events, nil
}
