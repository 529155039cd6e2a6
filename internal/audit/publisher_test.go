package audit_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"depositguard/internal/audit"
	auditstore "depositguard/internal/audit/store"
	id "depositguard/pkg/domain"
	"depositguard/pkg/requestcontext"
)

func TestRecorder_Record(t *testing.T) {
	store := auditstore.NewInMemory()
	rec := audit.NewRecorder(store, nil)
	caseID := id.CaseID(uuid.New())
	actor := id.UserID(uuid.New())
	now := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

	ctx := requestcontext.WithTime(context.Background(), now)
	ctx = requestcontext.WithUserID(ctx, actor)
	ctx = requestcontext.WithRequestID(ctx, "req-1")

	got, err := rec.Record(ctx, audit.Event{CaseID: caseID, Action: audit.ActionCaseCreated, Description: "Case opened"})
	require.NoError(t, err)
	assert.Equal(t, now, got.Timestamp)
	require.NotNil(t, got.ActorID)
	assert.Equal(t, actor, *got.ActorID)
	assert.Equal(t, "req-1", got.RequestID)
	assert.NotZero(t, got.Seq)

	t.Run("rejects events without action or case", func(t *testing.T) {
		_, err := rec.Record(ctx, audit.Event{CaseID: caseID})
		assert.Error(t, err)
		_, err = rec.Record(ctx, audit.Event{Action: audit.ActionCaseCreated})
		assert.Error(t, err)
	})
}

func TestRecorder_ListOrdersByTimestampThenSeq(t *testing.T) {
	store := auditstore.NewInMemory()
	rec := audit.NewRecorder(store, nil)
	caseID := id.CaseID(uuid.New())
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	ctx := context.Background()

	_, err := rec.Record(ctx, audit.Event{CaseID: caseID, Action: audit.ActionDeductionAdded, Timestamp: base.Add(time.Minute)})
	require.NoError(t, err)
	_, err = rec.Record(ctx, audit.Event{CaseID: caseID, Action: audit.ActionCaseCreated, Timestamp: base})
	require.NoError(t, err)
	_, err = rec.Record(ctx, audit.Event{CaseID: caseID, Action: audit.ActionDeductionDeleted, Timestamp: base.Add(time.Minute)})
	require.NoError(t, err)

	events, err := rec.List(ctx, caseID)
	require.NoError(t, err)
	require.Len(t, events, 3)
	assert.Equal(t, audit.ActionCaseCreated, events[0].Action)
	assert.Equal(t, audit.ActionDeductionAdded, events[1].Action)
	assert.Equal(t, audit.ActionDeductionDeleted, events[2].Action)
}

func TestStatusAction(t *testing.T) {
	assert.Equal(t, audit.Action("status_pending_send"), audit.StatusAction("PENDING_SEND"))
}
