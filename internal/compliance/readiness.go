package compliance

import "math"

const (
	checkKindChecklist = "checklist"
	checkKindDocument  = "document"
	checkKindEvidence  = "evidence"
	evidenceLabelMax   = 60
)

type ChecklistFact struct {
	Label        string
	Completed    bool
	BlocksExport bool
}

type EvidenceFact struct {
	Description string
	HasEvidence bool
}

// ReadinessInput carries the case facts. A document marked stale was
// generated before the last change to the content it renders and does not
// satisfy its check.
type ReadinessInput struct {
	Checklist              []ChecklistFact
	HasNoticeLetter        bool
	NoticeLetterStale      bool
	HasItemizedStatement   bool
	ItemizedStatementStale bool
	Deductions             []EvidenceFact
}

// Check is one pass/fail line of the readiness report.
type Check struct {
	Kind     string `json:"kind"`
	Label    string `json:"label"`
	Passed   bool   `json:"passed"`
	Blocking bool   `json:"blocking"`
}

type Readiness struct {
	Score    int     `json:"score"`
	Ready    bool    `json:"ready"`
	Blockers []Check `json:"blockers"`
	Warnings []Check `json:"warnings"`
	Checks   []Check `json:"checks"`
}

// EvaluateReadiness aggregates blocking checklist items, the two required
// documents and per-deduction evidence. Non-blocking checklist items are
// advisory and not counted. Ready iff there are no blockers.
func EvaluateReadiness(in ReadinessInput) Readiness {
	var checks []Check
	for _, item := range in.Checklist {
		if !item.BlocksExport {
			continue
		}
		checks = append(checks, Check{Kind: checkKindChecklist, Label: item.Label, Passed: item.Completed, Blocking: true})
	}
	checks = append(checks,
		documentCheck("Notice letter", in.HasNoticeLetter, in.NoticeLetterStale),
		documentCheck("Itemized statement", in.HasItemizedStatement, in.ItemizedStatementStale),
	)
	for _, d := range in.Deductions {
		checks = append(checks, Check{
			Kind:   checkKindEvidence,
			Label:  "Evidence attached: " + truncate(d.Description, evidenceLabelMax),
			Passed: d.HasEvidence,
		})
	}
	return summarize(checks)
}

func documentCheck(name string, generated, stale bool) Check {
	c := Check{Kind: checkKindDocument, Label: name + " generated", Passed: generated && !stale, Blocking: true}
	if generated && stale {
		c.Label = name + " out of date; regenerate after the latest changes"
	}
	return c
}

func summarize(checks []Check) Readiness {
	r := Readiness{Blockers: []Check{}, Warnings: []Check{}, Checks: checks}
	if r.Checks == nil {
		r.Checks = []Check{}
	}
	passed := 0
	for _, c := range checks {
		switch {
		case c.Passed:
			passed++
		case c.Blocking:
			r.Blockers = append(r.Blockers, c)
		default:
			r.Warnings = append(r.Warnings, c)
		}
	}
	r.Score = 100
	if len(checks) > 0 {
		r.Score = int(math.Round(100 * float64(passed) / float64(len(checks))))
	}
	r.Ready = len(r.Blockers) == 0
	return r
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
