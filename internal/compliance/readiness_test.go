package compliance

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"depositguard/pkg/testutil"
)

func TestEvaluateReadiness(t *testing.T) {
	t.Run("all blocking checks passed", func(t *testing.T) {
		got := EvaluateReadiness(ReadinessInput{
			Checklist: []ChecklistFact{
				{Label: "Inspect unit", Completed: true, BlocksExport: true},
				{Label: "Thank-you note", Completed: false, BlocksExport: false},
			},
			HasNoticeLetter:      true,
			HasItemizedStatement: true,
			Deductions:           []EvidenceFact{{Description: "Carpet", HasEvidence: false}},
		})
		assert.True(t, got.Ready)
		assert.Empty(t, got.Blockers)
		assert.Len(t, got.Warnings, 1)
		assert.Len(t, got.Checks, 4, "non-blocking checklist items are not counted")
		assert.Equal(t, 75, got.Score)
	})

	t.Run("missing documents block", func(t *testing.T) {
		got := EvaluateReadiness(ReadinessInput{})
		assert.False(t, got.Ready)
		assert.Len(t, got.Blockers, 2)
		assert.Equal(t, 0, got.Score)
	})

	t.Run("incomplete blocking checklist item blocks", func(t *testing.T) {
		got := EvaluateReadiness(ReadinessInput{
			Checklist:            []ChecklistFact{{Label: "Confirm forwarding address", BlocksExport: true}},
			HasNoticeLetter:      true,
			HasItemizedStatement: true,
		})
		assert.False(t, got.Ready)
		assert.Equal(t, "Confirm forwarding address", got.Blockers[0].Label)
		assert.Equal(t, 67, got.Score)
	})

	t.Run("stale documents block", func(t *testing.T) {
		got := EvaluateReadiness(ReadinessInput{
			HasNoticeLetter:        true,
			HasItemizedStatement:   true,
			ItemizedStatementStale: true,
		})
		assert.False(t, got.Ready)
		require.Len(t, got.Blockers, 1)
		assert.Contains(t, got.Blockers[0].Label, "Itemized statement out of date")
		assert.Equal(t, 50, got.Score)
	})

	t.Run("long descriptions are truncated in labels", func(t *testing.T) {
		long := "Removed extensive water damage from the kitchen subfloor and replaced the underlayment"
		got := EvaluateReadiness(ReadinessInput{Deductions: []EvidenceFact{{Description: long}}})
		last := got.Checks[len(got.Checks)-1]
		assert.LessOrEqual(t, len([]rune(last.Label)), len("Evidence attached: ")+evidenceLabelMax)
	})
}

func TestReadinessScenario(t *testing.T) {
	testutil.Given(t, "a case with an open move-out inspection and no documents", func(t *testing.T) {
		in := ReadinessInput{
			Checklist:  []ChecklistFact{{Label: "Move-out inspection", BlocksExport: true}},
			Deductions: []EvidenceFact{{Description: "Broken blinds", HasEvidence: true}},
		}
		before := EvaluateReadiness(in)
		assert.False(t, before.Ready)
		assert.Len(t, before.Blockers, 3)

		testutil.When(t, "the inspection is completed and both documents are generated", func(t *testing.T) {
			in.Checklist[0].Completed = true
			in.HasNoticeLetter = true
			in.HasItemizedStatement = true
			after := EvaluateReadiness(in)

			testutil.Then(t, "the case is ready with a full score", func(t *testing.T) {
				assert.True(t, after.Ready)
				assert.Empty(t, after.Blockers)
				assert.Equal(t, 100, after.Score)
			})
		})
	})
}

func TestReadinessReadyMatchesBlockers(t *testing.T) {
	open := ChecklistFact{Label: "Return keys", BlocksExport: true}
	done := ChecklistFact{Label: "Return keys", Completed: true, BlocksExport: true}
	advisory := ChecklistFact{Label: "Thank-you note", BlocksExport: false}
	tests := []struct {
		name string
		in   ReadinessInput
	}{
		{"empty", ReadinessInput{}},
		{"documents only", ReadinessInput{HasNoticeLetter: true, HasItemizedStatement: true}},
		{"one document", ReadinessInput{HasNoticeLetter: true}},
		{"stale notice", ReadinessInput{HasNoticeLetter: true, NoticeLetterStale: true, HasItemizedStatement: true}},
		{"stale flag without document", ReadinessInput{NoticeLetterStale: true, HasItemizedStatement: true}},
		{"open checklist", ReadinessInput{Checklist: []ChecklistFact{open}, HasNoticeLetter: true, HasItemizedStatement: true}},
		{"advisory only open", ReadinessInput{Checklist: []ChecklistFact{done, advisory}, HasNoticeLetter: true, HasItemizedStatement: true}},
		{"missing evidence", ReadinessInput{
			HasNoticeLetter:      true,
			HasItemizedStatement: true,
			Deductions:           []EvidenceFact{{Description: "Carpet"}, {Description: "Blinds", HasEvidence: true}},
		}},
		{"everything open", ReadinessInput{
			Checklist:  []ChecklistFact{open, advisory},
			Deductions: []EvidenceFact{{Description: "Carpet"}},
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := EvaluateReadiness(tt.in)
			assert.Equal(t, len(got.Blockers) == 0, got.Ready)
			assert.GreaterOrEqual(t, got.Score, 0)
			assert.LessOrEqual(t, got.Score, 100)
			for _, b := range got.Blockers {
				assert.True(t, b.Blocking)
				assert.False(t, b.Passed)
			}
		})
	}
}
