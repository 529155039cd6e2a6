package models

import (
	"slices"
	"strings"
	"time"

	"depositguard/internal/compliance"
	id "depositguard/pkg/domain"
	dErrors "depositguard/pkg/domain-errors"
	"depositguard/pkg/money"
)

var deductionCategories = []string{"CLEANING", "REPAIR", "PAINTING", "UNPAID_RENT", "KEYS", "OTHER"}

var damageTypes = []string{"NORMAL_WEAR", "BEYOND_NORMAL_WEAR", "INTENTIONAL", "UNKNOWN"}

// Deduction is one amount withheld from the deposit.
//
// RiskOverride is the only persisted risk value; the computed level comes
// from compliance.ScoreDeduction every time.
type Deduction struct {
	ID                  id.DeductionID    `json:"id"`
	Description         string            `json:"description"`
	Category            string            `json:"category"`
	Amount              money.Amount      `json:"amount"`
	Notes               string            `json:"notes,omitempty"`
	AttachmentIDs       []id.AttachmentID `json:"attachment_ids"`
	RiskOverride        *compliance.Level `json:"risk_override,omitempty"`
	ItemAgeMonths       *int              `json:"item_age_months,omitempty"`
	DamageType          string            `json:"damage_type,omitempty"`
	AIGenerated         bool              `json:"ai_generated"`
	OriginalDescription *string           `json:"original_description,omitempty"`
	CreatedAt           time.Time         `json:"created_at"`
	UpdatedAt           time.Time         `json:"updated_at"`
}

// HasEvidence is derived: true iff at least one attachment is linked.
func (d Deduction) HasEvidence() bool { return len(d.AttachmentIDs) > 0 }

func (d Deduction) Facts() compliance.DeductionFacts {
	return compliance.DeductionFacts{
		Category:    d.Category,
		Amount:      d.Amount,
		DamageType:  d.DamageType,
		Description: d.Description,
		AIGenerated: d.AIGenerated,
		HasEvidence: d.HasEvidence(),
	}
}

// AcceptRevision replaces the description with an AI suggestion the user has
// accepted. The first human-written description is preserved.
func (d *Deduction) AcceptRevision(description string) {
	if d.OriginalDescription == nil {
		orig := d.Description
		d.OriginalDescription = &orig
	}
	d.Description = description
	d.AIGenerated = true
}

func (d Deduction) clone() Deduction {
	out := d
	out.AttachmentIDs = slices.Clone(d.AttachmentIDs)
	if d.RiskOverride != nil {
		l := *d.RiskOverride
		out.RiskOverride = &l
	}
	if d.ItemAgeMonths != nil {
		n := *d.ItemAgeMonths
		out.ItemAgeMonths = &n
	}
	if d.OriginalDescription != nil {
		s := *d.OriginalDescription
		out.OriginalDescription = &s
	}
	return out
}

// NormalizeCategory upper-cases and checks a category.
func NormalizeCategory(raw string) (string, error) {
	c := strings.ToUpper(strings.TrimSpace(raw))
	if !slices.Contains(deductionCategories, c) {
		return "", dErrors.Newf(dErrors.CodeValidation, "unknown category %q", raw)
	}
	return c, nil
}

// NormalizeDamageType upper-cases and checks a damage type. Empty is allowed.
func NormalizeDamageType(raw string) (string, error) {
	t := strings.ToUpper(strings.TrimSpace(raw))
	if t == "" {
		return "", nil
	}
	if !slices.Contains(damageTypes, t) {
		return "", dErrors.Newf(dErrors.CodeValidation, "unknown damage type %q", raw)
	}
	return t, nil
}
