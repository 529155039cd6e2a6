package relay

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	auditstore "depositguard/internal/audit/store"
)

type fakeSource struct {
	mu        sync.Mutex
	pending   []auditstore.OutboxEntry
	published []uuid.UUID
}

func (f *fakeSource) publishedCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.published)
}

func (f *fakeSource) PendingOutbox(_ context.Context, limit int) ([]auditstore.OutboxEntry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := min(limit, len(f.pending))
	return append([]auditstore.OutboxEntry(nil), f.pending[:n]...), nil
}

func (f *fakeSource) MarkPublished(_ context.Context, entryID uuid.UUID, _ time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.published = append(f.published, entryID)
	remaining := f.pending[:0]
	for _, e := range f.pending {
		if e.ID != entryID {
			remaining = append(remaining, e)
		}
	}
	f.pending = remaining
	return nil
}

type fakeSink struct {
	keys   []string
	failAt int
}

func (f *fakeSink) Publish(_ context.Context, key, _ string, _ []byte) error {
	if f.failAt > 0 && len(f.keys)+1 == f.failAt {
		return errors.New("broker unavailable")
	}
	f.keys = append(f.keys, key)
	return nil
}

func entries(n int) []auditstore.OutboxEntry {
	out := make([]auditstore.OutboxEntry, n)
	for i := range out {
		out[i] = auditstore.OutboxEntry{ID: uuid.New(), Key: "case", EventType: "case_created"}
	}
	return out
}

func TestRelay_Flush(t *testing.T) {
	t.Run("publishes and marks a batch", func(t *testing.T) {
		src := &fakeSource{pending: entries(3)}
		sink := &fakeSink{}
		r := New(src, sink, WithBatchSize(2))

		sent, err := r.Flush(context.Background())
		require.NoError(t, err)
		assert.Equal(t, 2, sent)
		assert.Len(t, src.published, 2)
		assert.Len(t, src.pending, 1)
	})

	t.Run("stops at the first publish failure", func(t *testing.T) {
		src := &fakeSource{pending: entries(3)}
		sink := &fakeSink{failAt: 2}
		r := New(src, sink)

		sent, err := r.Flush(context.Background())
		assert.Error(t, err)
		assert.Equal(t, 0, sent, "a failed batch reports nothing sent")
		assert.Equal(t, []string{"case"}, sink.keys)
	})

	t.Run("failed batch rolls back and reports zero", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()
		mock.ExpectBegin()
		mock.ExpectRollback()

		src := &fakeSource{pending: entries(3)}
		r := New(src, &fakeSink{failAt: 2}, WithDB(db))

		sent, err := r.Flush(context.Background())
		assert.EqualError(t, err, "broker unavailable")
		assert.Zero(t, sent)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestRelay_RunStopsOnCancel(t *testing.T) {
	src := &fakeSource{pending: entries(1)}
	r := New(src, &fakeSink{}, WithInterval(5*time.Millisecond))
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() { done <- r.Run(ctx) }()

	assert.Eventually(t, func() bool { return src.publishedCount() == 1 }, time.Second, 5*time.Millisecond)
	cancel()
	assert.ErrorIs(t, <-done, context.Canceled)
}
