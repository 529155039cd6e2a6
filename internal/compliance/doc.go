// Package compliance holds the deposit-law calculators: deadlines, interest,
// penalty exposure, deduction risk and send readiness.
//
// Everything here is pure domain logic - no I/O, no clocks, no randomness.
// Callers pass "now" explicitly, and identical inputs always produce identical
// outputs, so the functions are safe to call concurrently and repeatedly.
package compliance
