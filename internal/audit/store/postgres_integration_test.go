//go:build integration

package store_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"depositguard/internal/audit"
	"depositguard/internal/audit/store"
	id "depositguard/pkg/domain"
	"depositguard/pkg/testutil/containers"
)

type PostgresStoreSuite struct {
	suite.Suite
	postgres *containers.PostgresContainer
	store    *store.PostgresStore
}

func TestPostgresStoreSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(PostgresStoreSuite))
}

func (s *PostgresStoreSuite) SetupSuite() {
	s.postgres = containers.GetManager().GetPostgres(s.T())
	s.store = store.NewPostgres(s.postgres.DB)
}

func (s *PostgresStoreSuite) SetupTest() {
	s.Require().NoError(s.postgres.TruncateTables(context.Background(), "audit_events", "outbox"))
}

func event(caseID id.CaseID, action audit.Action, at time.Time) *audit.Event {
	return &audit.Event{
		ID:          uuid.New(),
		CaseID:      caseID,
		Action:      action,
		Description: string(action),
		Metadata:    map[string]string{"k": "v"},
		Timestamp:   at,
	}
}

func (s *PostgresStoreSuite) TestAppendOrdersByTimestampThenSeq() {
	ctx := context.Background()
	caseID := id.CaseID(uuid.New())
	at := time.Date(2026, 1, 5, 15, 0, 0, 0, time.UTC)

	for _, e := range []*audit.Event{
		event(caseID, audit.ActionDeductionAdded, at),
		event(caseID, audit.ActionCaseCreated, at.Add(-time.Minute)),
		event(caseID, audit.ActionDeductionUpdated, at),
	} {
		s.Require().NoError(s.store.Append(ctx, e))
		s.Positive(e.Seq)
	}

	got, err := s.store.ListByCase(ctx, caseID)
	s.Require().NoError(err)
	s.Require().Len(got, 3)
	s.Equal(audit.ActionCaseCreated, got[0].Action)
	s.Equal(audit.ActionDeductionAdded, got[1].Action)
	s.Equal(audit.ActionDeductionUpdated, got[2].Action)
	s.Equal("v", got[0].Metadata["k"])
}

func (s *PostgresStoreSuite) TestRowsCannotBeRewritten() {
	ctx := context.Background()
	e := event(id.CaseID(uuid.New()), audit.ActionCaseCreated, time.Now().UTC())
	s.Require().NoError(s.store.Append(ctx, e))

	_, err := s.postgres.DB.ExecContext(ctx, `UPDATE audit_events SET description = 'edited' WHERE id = $1`, e.ID)
	s.Error(err)
	_, err = s.postgres.DB.ExecContext(ctx, `DELETE FROM audit_events WHERE id = $1`, e.ID)
	s.Error(err)
}

func (s *PostgresStoreSuite) TestOutboxDrains() {
	ctx := context.Background()
	caseID := id.CaseID(uuid.New())
	s.Require().NoError(s.store.Append(ctx, event(caseID, audit.ActionCaseCreated, time.Now().UTC())))

	pending, err := s.store.PendingOutbox(ctx, 10)
	s.Require().NoError(err)
	s.Require().Len(pending, 1)
	s.Equal(caseID.String(), pending[0].Key)
	s.Equal(string(audit.ActionCaseCreated), pending[0].EventType)
	s.Contains(string(pending[0].Payload), `"case_created"`)

	s.Require().NoError(s.store.MarkPublished(ctx, pending[0].ID, time.Now().UTC()))
	pending, err = s.store.PendingOutbox(ctx, 10)
	s.Require().NoError(err)
	s.Empty(pending)
}
