// Package finance implements the deal financial engine: retail installment
// structuring (amortized payment, trade-in ACV) and lease quoting
// (depreciation, rent charge, tax decomposition). Every function here is a
// pure computation with no I/O and no shared state, so callers may invoke them
// concurrently without coordination.
//
// Monetary values are float64 and stay unrounded through intermediate math;
// rounding happens once, at the point a result is finalized for callers.
// Structurally invalid inputs fail with typed errors. Numerically unusual but
// valid results (negative ACV, negative principal) pass through unmodified;
// the caller decides how to present them.
package finance

import "math"

// ComputeMonthlyPayment returns the periodic payment for a loan of the given
// principal at annualRatePercent over termMonths, using the standard
// amortization formula. A zero rate degenerates to straight division of the
// principal across the term.
//
// The principal may be negative (trade equity exceeding the price); no
// clamping happens here; the caller decides whether a negative payment is
// meaningful. The result is unrounded so that totals derived from it do not
// accumulate rounding drift.
func ComputeMonthlyPayment(principal, annualRatePercent float64, termMonths int) (float64, error) {
	if termMonths < 1 {
		return 0, &InvalidTermError{TermMonths: termMonths}
	}

	monthlyRate := annualRatePercent / 100 / 12
	if monthlyRate == 0 {
		return principal / float64(termMonths), nil
	}
	return principal * monthlyRate / (1 - math.Pow(1+monthlyRate, -float64(termMonths))), nil
}

// RoundCents rounds v to two decimal places.
func RoundCents(v float64) float64 {
	return math.Round(v*100) / 100
}

// RoundDollars rounds v to the nearest whole currency unit. Lease figures use
// this coarser convention, versus cents-level rounding for loan payments.
func RoundDollars(v float64) float64 {
	return math.Round(v)
}
