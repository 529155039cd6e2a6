package models

import (
	"time"

	"depositguard/internal/compliance"
	"depositguard/pkg/money"
)

// DeductionView is a deduction with its derived evidence flag and risk.
type DeductionView struct {
	Deduction
	HasEvidence bool                      `json:"has_evidence"`
	Risk        compliance.RiskAssessment `json:"risk"`
	RiskLevel   compliance.Level          `json:"risk_level"`
}

// CaseView is what every case operation returns: persisted fields plus the
// values derived from them at read time.
type CaseView struct {
	*Case
	Deductions      []DeductionView `json:"deductions"`
	DaysRemaining   int             `json:"days_remaining"`
	TotalDeductions money.Amount    `json:"total_deductions"`
	RefundAmount    money.Amount    `json:"refund_amount"`
}

func NewDeductionView(d Deduction) DeductionView {
	risk := compliance.ScoreDeduction(d.Facts())
	return DeductionView{
		Deduction:   d,
		HasEvidence: d.HasEvidence(),
		Risk:        risk,
		RiskLevel:   compliance.EffectiveLevel(d.RiskOverride, risk.Level),
	}
}

// NewCaseView derives the read-time fields of c as of now.
func NewCaseView(c *Case, now time.Time) *CaseView {
	views := make([]DeductionView, len(c.Deductions))
	for i, d := range c.Deductions {
		views[i] = NewDeductionView(d)
	}
	total := c.TotalDeductions()
	return &CaseView{
		Case:            c,
		Deductions:      views,
		DaysRemaining:   compliance.DaysRemaining(c.DueDate, now),
		TotalDeductions: total,
		RefundAmount:    compliance.Refund(c.DepositAmount, c.DepositInterest, total),
	}
}
