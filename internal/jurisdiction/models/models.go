package models

import (
	"slices"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	id "depositguard/pkg/domain"
	dErrors "depositguard/pkg/domain-errors"
	"depositguard/pkg/money"
)

// CoverageLevel describes how much of a jurisdiction's law the rule data covers.
type CoverageLevel string

const (
	CoverageFull      CoverageLevel = "FULL"
	CoveragePartial   CoverageLevel = "PARTIAL"
	CoverageStateOnly CoverageLevel = "STATE_ONLY"
)

// Jurisdiction is a state, or a city within a state, with its own deposit law.
// A city-level record overrides the state-level record for the same code.
type Jurisdiction struct {
	ID           id.JurisdictionID `json:"id"`
	State        string            `json:"state"`
	StateCode    string            `json:"state_code"`
	City         *string           `json:"city"`
	Coverage     CoverageLevel     `json:"coverage"`
	LastVerified time.Time         `json:"last_verified"`
}

// CityKey is the lookup form of a city name.
func CityKey(city string) string {
	return strings.ToLower(strings.Join(strings.Fields(city), " "))
}

type InterestMethod string

const (
	InterestSimple         InterestMethod = "SIMPLE"
	InterestCompoundAnnual InterestMethod = "COMPOUND_ANNUAL"
)

// InterestRule holds the deposit-interest parameters. Zero value means no
// interest is owed.
type InterestRule struct {
	Required        bool            `json:"required" yaml:"required"`
	Rate            decimal.Decimal `json:"rate" yaml:"rate"`
	Source          string          `json:"source,omitempty" yaml:"source"`
	Method          InterestMethod  `json:"method,omitempty" yaml:"method"`
	MinHoldingDays  int             `json:"min_holding_days,omitempty" yaml:"min_holding_days"`
	AdminFeePercent decimal.Decimal `json:"admin_fee_percent" yaml:"admin_fee_percent"`
}

type ItemizationRule struct {
	Required         bool          `json:"required" yaml:"required"`
	ReceiptThreshold *money.Amount `json:"receipt_threshold,omitempty" yaml:"receipt_threshold"`
}

type Citation struct {
	Title string `json:"title" yaml:"title"`
	Code  string `json:"code" yaml:"code"`
	URL   string `json:"url,omitempty" yaml:"url"`
}

// PenaltyTrigger says what kind of non-compliance a penalty punishes.
type PenaltyTrigger string

const (
	TriggerDeadline    PenaltyTrigger = "DEADLINE"
	TriggerWithholding PenaltyTrigger = "WITHHOLDING"
	TriggerGeneral     PenaltyTrigger = "GENERAL"
)

// Penalty is a free-text penalty clause as written in the statute summary.
// Trigger is optional; when empty it is inferred from the text.
type Penalty struct {
	Description string         `json:"description" yaml:"description"`
	Trigger     PenaltyTrigger `json:"trigger,omitempty" yaml:"trigger"`
}

// RuleSet is an immutable, versioned snapshot of a jurisdiction's deposit law.
//
// Invariants:
//   - once inserted, content is never rewritten; a change is a new RuleSet
//   - LockedAt is set the first time a case references the rule set
//   - ReturnDeadlineDays > 0 (a missing deadline is bad seed data)
type RuleSet struct {
	ID                     id.RuleSetID      `json:"id"`
	JurisdictionID         id.JurisdictionID `json:"jurisdiction_id"`
	Version                string            `json:"version"`
	EffectiveDate          time.Time         `json:"effective_date"`
	ReturnDeadlineDays     int               `json:"return_deadline_days"`
	Interest               InterestRule      `json:"interest"`
	Itemization            ItemizationRule   `json:"itemization"`
	MaxDepositMonths       decimal.Decimal   `json:"max_deposit_months"`
	AllowedDeliveryMethods []string          `json:"allowed_delivery_methods"`
	Citations              []Citation        `json:"citations"`
	Penalties              []Penalty         `json:"penalties"`
	CreatedAt              time.Time         `json:"created_at"`
	LockedAt               *time.Time        `json:"locked_at,omitempty"`
}

// Normalize replaces missing optional collections with empty ones and
// stores delivery methods upper-cased.
func (r *RuleSet) Normalize() {
	if r.AllowedDeliveryMethods == nil {
		r.AllowedDeliveryMethods = []string{}
	}
	for i, m := range r.AllowedDeliveryMethods {
		r.AllowedDeliveryMethods[i] = strings.ToUpper(strings.TrimSpace(m))
	}
	if r.Citations == nil {
		r.Citations = []Citation{}
	}
	if r.Penalties == nil {
		r.Penalties = []Penalty{}
	}
	if r.Interest.Method == "" {
		r.Interest.Method = InterestSimple
	}
}

// CheckRequired reports seed-data defects. Callers surface these as upstream
// failures rather than user errors.
func (r *RuleSet) CheckRequired() error {
	if r.ReturnDeadlineDays <= 0 {
		return dErrors.Newf(dErrors.CodeUpstream, "rule set %s has no return deadline", r.Version)
	}
	if r.Interest.Required && r.Interest.Rate.IsNegative() {
		return dErrors.Newf(dErrors.CodeUpstream, "rule set %s has a negative interest rate", r.Version)
	}
	return nil
}

// AllowsDelivery reports whether method may be used to send the return. An
// empty list places no restriction.
func (r *RuleSet) AllowsDelivery(method string) bool {
	if len(r.AllowedDeliveryMethods) == 0 {
		return true
	}
	method = strings.TrimSpace(method)
	return slices.ContainsFunc(r.AllowedDeliveryMethods, func(m string) bool {
		return strings.EqualFold(strings.TrimSpace(m), method)
	})
}

func (r *RuleSet) IsLocked() bool { return r.LockedAt != nil }

// Clone returns a deep copy so callers cannot alias cached or stored slices.
func (r RuleSet) Clone() RuleSet {
	out := r
	out.AllowedDeliveryMethods = slices.Clone(r.AllowedDeliveryMethods)
	out.Citations = slices.Clone(r.Citations)
	out.Penalties = slices.Clone(r.Penalties)
	if r.LockedAt != nil {
		t := *r.LockedAt
		out.LockedAt = &t
	}
	if r.Itemization.ReceiptThreshold != nil {
		v := *r.Itemization.ReceiptThreshold
		out.Itemization.ReceiptThreshold = &v
	}
	return out
}

// Resolution is the answer to "which rules apply to this address".
type Resolution struct {
	Jurisdiction Jurisdiction  `json:"jurisdiction"`
	RuleSet      RuleSet       `json:"rule_set"`
	Coverage     CoverageLevel `json:"coverage"`
	Citations    []Citation    `json:"citations"`
	Message      string        `json:"message,omitempty"`
}
