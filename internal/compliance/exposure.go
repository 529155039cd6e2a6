package compliance

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"

	"depositguard/internal/jurisdiction/models"
	"depositguard/pkg/money"
)

// PenaltyParser extracts a deposit multiplier from a penalty clause. It is an
// interface so a structured multiplier field can replace prose parsing.
type PenaltyParser interface {
	Multiplier(text string) (decimal.Decimal, bool)
}

type multiplierPattern struct {
	re    *regexp.Regexp
	value func(match []string) (decimal.Decimal, bool)
}

func fixed(n int64) func([]string) (decimal.Decimal, bool) {
	return func([]string) (decimal.Decimal, bool) { return decimal.NewFromInt(n), true }
}

var wordNumbers = map[string]int64{
	"one": 1, "two": 2, "three": 3, "four": 4, "five": 5,
}

func numeric(match []string) (decimal.Decimal, bool) {
	if n, ok := wordNumbers[strings.ToLower(match[1])]; ok {
		return decimal.NewFromInt(n), true
	}
	d, err := decimal.NewFromString(match[1])
	if err != nil || !d.IsPositive() {
		return decimal.Zero, false
	}
	return d, true
}

var multiplierPatterns = []multiplierPattern{
	{regexp.MustCompile(`(?i)\b(\d+(?:\.\d+)?)\s?(?:x\b|×)`), numeric},
	{regexp.MustCompile(`(?i)\b(\d+(?:\.\d+)?|one|two|three|four|five)\s+times\b`), numeric},
	{regexp.MustCompile(`(?i)\b(?:double|twice)\b`), fixed(2)},
	{regexp.MustCompile(`(?i)\b(?:triple|treble)\b`), fixed(3)},
	{regexp.MustCompile(`(?i)\bfull\s+(?:amount\s+of\s+the\s+)?(?:security\s+)?deposit\b`), fixed(1)},
	{regexp.MustCompile(`(?i)\bforfeit`), fixed(1)},
}

// RegexPenaltyParser recognises common statutory multiplier phrasing. When a
// clause mentions several multipliers the largest wins.
type RegexPenaltyParser struct{}

func (RegexPenaltyParser) Multiplier(text string) (decimal.Decimal, bool) {
	best := decimal.Zero
	found := false
	for _, p := range multiplierPatterns {
		for _, m := range p.re.FindAllStringSubmatch(text, -1) {
			v, ok := p.value(m)
			if !ok {
				continue
			}
			if !found || v.GreaterThan(best) {
				best = v
				found = true
			}
		}
	}
	return best, found
}

var (
	deadlineTrigger    = regexp.MustCompile(`(?i)\bwithin\s+\d+\s+days\b|\bdeadline\b|\blate\b|\btimely\b|\bfail\w*\s+to\s+return\b`)
	withholdingTrigger = regexp.MustCompile(`(?i)bad[\s-]faith|wrongful|willful|intentional|withh[oe]ld|retain|retention|refus`)
)

// ClassifyTrigger returns the penalty's explicit trigger, or infers one from
// its wording.
func ClassifyTrigger(p models.Penalty) models.PenaltyTrigger {
	switch p.Trigger {
	case models.TriggerDeadline, models.TriggerWithholding, models.TriggerGeneral:
		return p.Trigger
	}
	switch {
	case deadlineTrigger.MatchString(p.Description):
		return models.TriggerDeadline
	case withholdingTrigger.MatchString(p.Description):
		return models.TriggerWithholding
	default:
		return models.TriggerGeneral
	}
}

// DeliveryState says whether the deposit return has gone out.
type DeliveryState string

const (
	NotSent    DeliveryState = "NOT_SENT"
	SentOnTime DeliveryState = "SENT_ON_TIME"
	SentLate   DeliveryState = "SENT_LATE"
)

// RiskFactors summarise the deductions for likelihood estimation.
type RiskFactors struct {
	MissingEvidence    int
	NormalWearClaims   int
	HighRiskDeductions int
}

// ExposureInput is everything the estimator looks at.
type ExposureInput struct {
	Deposit       money.Amount
	Penalties     []models.Penalty
	DaysRemaining int
	Delivery      DeliveryState
	Factors       RiskFactors
}

// PenaltyItem is one penalty clause as estimated.
type PenaltyItem struct {
	Text       string                `json:"text"`
	Trigger    models.PenaltyTrigger `json:"trigger"`
	Multiplier *decimal.Decimal      `json:"multiplier,omitempty"`
	Amount     *money.Amount         `json:"amount,omitempty"`
	Likelihood Level                 `json:"likelihood"`
	Reasons    []string              `json:"reasons"`
}

// Exposure is the estimated monetary penalty risk of a case.
//
// Unquantified clauses carry no multiplier and are excluded from both totals.
type Exposure struct {
	MaxExposure  money.Amount  `json:"max_exposure"`
	MinExposure  money.Amount  `json:"min_exposure"`
	Likelihood   Level         `json:"likelihood"`
	Items        []PenaltyItem `json:"items"`
	Unquantified []string      `json:"unquantified"`
}

// EstimateExposure derives exposure from the rule set's penalty clauses and
// the case's current state. A nil parser uses RegexPenaltyParser.
func EstimateExposure(in ExposureInput, parser PenaltyParser) Exposure {
	if parser == nil {
		parser = RegexPenaltyParser{}
	}
	out := Exposure{
		MaxExposure:  money.Zero,
		MinExposure:  money.Zero,
		Likelihood:   LevelLow,
		Items:        make([]PenaltyItem, 0, len(in.Penalties)),
		Unquantified: []string{},
	}
	var maxAll, maxLikely decimal.Decimal

	for _, p := range in.Penalties {
		trigger := ClassifyTrigger(p)
		likelihood, reasons := likelihoodFor(trigger, in)
		item := PenaltyItem{
			Text:       p.Description,
			Trigger:    trigger,
			Likelihood: likelihood,
			Reasons:    reasons,
		}
		if mult, ok := parser.Multiplier(p.Description); ok {
			m := mult
			amount := in.Deposit.Mul(m).Round()
			item.Multiplier = &m
			item.Amount = &amount
			maxAll = decimal.Max(maxAll, m)
			if likelihood == LevelHigh {
				maxLikely = decimal.Max(maxLikely, m)
			}
		} else {
			out.Unquantified = append(out.Unquantified, p.Description)
		}
		if likelihood.Rank() > out.Likelihood.Rank() {
			out.Likelihood = likelihood
		}
		out.Items = append(out.Items, item)
	}

	out.MaxExposure = in.Deposit.Mul(maxAll).Round()
	out.MinExposure = in.Deposit.Mul(maxLikely).Round()
	return out
}

func likelihoodFor(trigger models.PenaltyTrigger, in ExposureInput) (Level, []string) {
	if trigger == models.TriggerDeadline {
		switch {
		case in.Delivery == SentOnTime:
			return LevelLow, []string{"Deposit return was sent before the deadline"}
		case in.Delivery == SentLate:
			return LevelHigh, []string{"Deposit return was sent after the deadline"}
		case in.DaysRemaining < 0:
			return LevelHigh, []string{fmt.Sprintf("Return deadline passed %d day(s) ago", -in.DaysRemaining)}
		case in.DaysRemaining <= 3:
			return LevelMedium, []string{fmt.Sprintf("Return deadline is in %d day(s)", in.DaysRemaining)}
		default:
			return LevelLow, []string{fmt.Sprintf("%d day(s) remain before the return deadline", in.DaysRemaining)}
		}
	}

	f := in.Factors
	points := f.MissingEvidence + 2*f.NormalWearClaims + f.HighRiskDeductions
	reasons := []string{}
	if f.MissingEvidence > 0 {
		reasons = append(reasons, fmt.Sprintf("%d deduction(s) lack evidence", f.MissingEvidence))
	}
	if f.NormalWearClaims > 0 {
		reasons = append(reasons, fmt.Sprintf("%d deduction(s) claim normal wear", f.NormalWearClaims))
	}
	if f.HighRiskDeductions > 0 {
		reasons = append(reasons, fmt.Sprintf("%d deduction(s) rated high risk", f.HighRiskDeductions))
	}
	switch {
	case points >= 3:
		return LevelHigh, reasons
	case points >= 1:
		return LevelMedium, reasons
	default:
		return LevelLow, []string{"No disputed deductions"}
	}
}

// FactorsFrom tallies risk factors from scored deductions.
func FactorsFrom(facts []DeductionFacts) RiskFactors {
	var rf RiskFactors
	for _, f := range facts {
		if !f.HasEvidence {
			rf.MissingEvidence++
		}
		if strings.EqualFold(f.DamageType, DamageNormalWear) {
			rf.NormalWearClaims++
		}
		if ScoreDeduction(f).Level == LevelHigh {
			rf.HighRiskDeductions++
		}
	}
	return rf
}
