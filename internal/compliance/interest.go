package compliance

import (
	"github.com/shopspring/decimal"

	"depositguard/internal/jurisdiction/models"
	"depositguard/pkg/money"
)

var (
	daysPerYear = decimal.NewFromInt(365)
	hundred     = decimal.NewFromInt(100)
)

// Interest computes deposit interest owed for heldDays under rule.
//
// Interest is zero when the rule does not require it or the tenancy is shorter
// than MinHoldingDays. AdminFeePercent is the share of the earned interest the
// landlord may keep. Only the final amount is rounded.
func Interest(deposit money.Amount, rule models.InterestRule, heldDays int) money.Amount {
	if !rule.Required || heldDays <= 0 || !rule.Rate.IsPositive() || !deposit.Decimal().IsPositive() {
		return money.Zero
	}
	if heldDays < rule.MinHoldingDays {
		return money.Zero
	}

	var earned decimal.Decimal
	switch rule.Method {
	case models.InterestCompoundAnnual:
		earned = compoundAnnual(deposit.Decimal(), rule.Rate, heldDays)
	default:
		earned = deposit.Decimal().Mul(rule.Rate).Mul(decimal.NewFromInt(int64(heldDays))).Div(daysPerYear)
	}

	if fee := rule.AdminFeePercent; fee.IsPositive() {
		fee = decimal.Min(fee, hundred)
		earned = earned.Mul(hundred.Sub(fee)).Div(hundred)
	}
	return money.FromDecimal(earned).Round()
}

// compoundAnnual compounds once per full year held and accrues simple interest
// on the balance for the remaining partial year.
func compoundAnnual(principal, rate decimal.Decimal, heldDays int) decimal.Decimal {
	years := heldDays / 365
	rem := heldDays % 365
	balance := principal
	growth := decimal.NewFromInt(1).Add(rate)
	for i := 0; i < years; i++ {
		balance = balance.Mul(growth)
	}
	if rem > 0 {
		balance = balance.Add(balance.Mul(rate).Mul(decimal.NewFromInt(int64(rem))).Div(daysPerYear))
	}
	return balance.Sub(principal)
}

// Refund is deposit + interest - deductions, never below zero.
func Refund(deposit, interest, totalDeductions money.Amount) money.Amount {
	refund := deposit.Add(interest).Sub(totalDeductions)
	if refund.IsNegative() {
		return money.Zero
	}
	return refund.Round()
}
