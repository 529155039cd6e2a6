package compliance

import (
	"strings"
	"unicode/utf8"

	"depositguard/pkg/money"
)

// Level is a qualitative rating shared by risk scores and penalty likelihoods.
type Level string

const (
	LevelLow    Level = "LOW"
	LevelMedium Level = "MEDIUM"
	LevelHigh   Level = "HIGH"
)

// Rank orders levels LOW < MEDIUM < HIGH. Unknown levels rank below LOW.
func (l Level) Rank() int {
	switch l {
	case LevelLow:
		return 1
	case LevelMedium:
		return 2
	case LevelHigh:
		return 3
	default:
		return 0
	}
}

func (l Level) Valid() bool { return l.Rank() > 0 }

// ParseLevel accepts a level in any case.
func ParseLevel(raw string) (Level, bool) {
	l := Level(strings.ToUpper(strings.TrimSpace(raw)))
	return l, l.Valid()
}

const (
	CategoryCleaning    = "CLEANING"
	DamageNormalWear    = "NORMAL_WEAR"
	shortDescriptionLen = 30
)

var (
	highAmount   = money.FromCents(50000)
	mediumAmount = money.FromCents(20000)
)

// DeductionFacts are the attributes the risk score depends on.
type DeductionFacts struct {
	Category    string
	Amount      money.Amount
	DamageType  string
	Description string
	AIGenerated bool
	HasEvidence bool
}

// RiskAssessment is the scored dispute risk of one deduction.
type RiskAssessment struct {
	Score   int      `json:"score"`
	Level   Level    `json:"level"`
	Reasons []string `json:"reasons"`
	Actions []string `json:"actions"`
}

// ScoreDeduction is the single source of truth for deduction risk.
//
// Weights: missing evidence +3, cleaning +1, amount > 500 +2, amount in
// (200, 500] +1, normal wear +3, short non-AI description +1.
// Levels: score >= 4 HIGH, >= 2 MEDIUM, else LOW.
func ScoreDeduction(f DeductionFacts) RiskAssessment {
	a := RiskAssessment{Reasons: []string{}, Actions: []string{}}
	add := func(points int, reason, action string) {
		a.Score += points
		a.Reasons = append(a.Reasons, reason)
		a.Actions = append(a.Actions, action)
	}

	if !f.HasEvidence {
		add(3, "No supporting evidence attached", "Attach photos, receipts or invoices")
	}
	if strings.EqualFold(f.Category, CategoryCleaning) {
		add(1, "Cleaning charges are frequently disputed", "Document the condition beyond ordinary cleaning")
	}
	switch {
	case f.Amount.GreaterThan(highAmount):
		add(2, "Amount exceeds 500", "Attach an itemized invoice or estimate")
	case f.Amount.GreaterThan(mediumAmount):
		add(1, "Amount exceeds 200", "Attach a receipt or estimate")
	}
	if strings.EqualFold(f.DamageType, DamageNormalWear) {
		add(3, "Normal wear and tear is generally not deductible", "Remove the charge or reclassify the damage")
	}
	if utf8.RuneCountInString(strings.TrimSpace(f.Description)) < shortDescriptionLen && !f.AIGenerated {
		add(1, "Description is too brief to justify the charge", "Improve wording")
	}

	a.Level = levelForScore(a.Score)
	return a
}

func levelForScore(score int) Level {
	switch {
	case score >= 4:
		return LevelHigh
	case score >= 2:
		return LevelMedium
	default:
		return LevelLow
	}
}

// EffectiveLevel applies an explicit user override on top of the computed
// level. The override is the only risk value ever persisted.
func EffectiveLevel(override *Level, computed Level) Level {
	if override != nil && override.Valid() {
		return *override
	}
	return computed
}
