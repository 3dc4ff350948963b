package finance

import "strconv"

// defaultResidualPercent is used in comparison mode for terms that have no
// entry in the per-term residual mapping.
const defaultResidualPercent = 50

// LeaseInput carries the raw inputs of a lease quote. ResidualPercent is used
// for single-term quotes; ResidualPercents (term → percent) is consulted in
// comparison mode, falling back to defaultResidualPercent for unmapped terms.
type LeaseInput struct {
	MSRP             float64         `json:"msrp"`
	CapCost          float64         `json:"capCost"`
	ResidualPercent  float64         `json:"residualPercent"`
	ResidualPercents map[int]float64 `json:"residualPercents,omitempty"`
	MoneyFactor      float64         `json:"moneyFactor"`
	TermMonths       int             `json:"term"`
	DownPayment      float64         `json:"downPayment"`
	SalesTaxRate     float64         `json:"salesTaxRate"`
	TradeInValue     float64         `json:"tradeInValue"`
	VehicleLabel     string          `json:"vehicleLabel,omitempty"`
}

// LeaseQuote is a single-term lease computation. MonthlyPayment,
// ResidualValue and TotalInterest are rounded to whole dollars, the coarser
// convention lease figures use. Depreciation, RentCharge and Tax are the
// unrounded monthly components the payment was computed from.
type LeaseQuote struct {
	TermMonths     int     `json:"term"`
	MonthlyPayment float64 `json:"monthlyPayment"`
	ResidualValue  float64 `json:"residualValue"`
	TotalInterest  float64 `json:"totalInterest"`
	Depreciation   float64 `json:"depreciation"`
	RentCharge     float64 `json:"rentCharge"`
	Tax            float64 `json:"tax"`
}

// LeaseOption is one row of a multi-term comparison.
type LeaseOption struct {
	TermMonths     int     `json:"term"`
	MonthlyPayment float64 `json:"monthlyPayment"`
	TotalInterest  float64 `json:"totalInterest"`
	ResidualValue  float64 `json:"residualValue"`
	Depreciation   float64 `json:"depreciation"`
}

// LeaseComparison is the result of quoting the same vehicle across several
// term lengths.
type LeaseComparison struct {
	VehicleLabel string        `json:"vehicle"`
	Options      []LeaseOption `json:"options"`
}

// NormalizeMoneyFactor accepts a lease money factor in either of the two
// conventions in common use: the raw decimal factor (e.g. 0.00125) or the
// traditional "times 2400" form (e.g. 3.00, meaning 3.00/2400). Values above
// 1 are assumed to be in the times-2400 convention and divided down.
//
// The threshold at 1 is a heuristic: a genuine raw factor above 1 would imply
// an absurd finance rate, but a mis-entered times-2400 value below 1 cannot
// be detected here. Upstream input validation owns that case.
func NormalizeMoneyFactor(mf float64) float64 {
	if mf > 1 {
		return mf / 2400
	}
	return mf
}

// leaseComponents computes the monthly decomposition shared by single quotes
// and comparisons. The net cap cost is NOT floored: negative values are
// valid and must propagate, mirroring the deal-structure stance. Depreciation
// IS floored at zero: a negative depreciation is not a meaningful lease
// payment component. That asymmetry is intentional.
func leaseComponents(in LeaseInput, residualPercent float64, term int) (depreciation, rentCharge, tax, residualValue float64) {
	mf := NormalizeMoneyFactor(in.MoneyFactor)
	residualValue = in.MSRP * (residualPercent / 100)
	netCapCost := in.CapCost - in.DownPayment - in.TradeInValue

	depreciation = (netCapCost - residualValue) / float64(term)
	if depreciation < 0 {
		depreciation = 0
	}
	rentCharge = (netCapCost + residualValue) * mf
	tax = (depreciation + rentCharge) * (in.SalesTaxRate / 100)
	return depreciation, rentCharge, tax, residualValue
}

// QuoteLease computes a single-term lease quote.
func QuoteLease(in LeaseInput) (LeaseQuote, error) {
	if err := validateLeaseInput(in, true); err != nil {
		return LeaseQuote{}, err
	}

	dep, rent, tax, residual := leaseComponents(in, in.ResidualPercent, in.TermMonths)
	total := dep + rent + tax

	return LeaseQuote{
		TermMonths:     in.TermMonths,
		MonthlyPayment: RoundDollars(total),
		ResidualValue:  RoundDollars(residual),
		TotalInterest:  RoundDollars(rent * float64(in.TermMonths)),
		Depreciation:   dep,
		RentCharge:     rent,
		Tax:            tax,
	}, nil
}

// CompareTerms quotes the same lease inputs across each requested term,
// selecting the residual percentage per-term from in.ResidualPercents and
// defaulting to 50% for unmapped terms.
func CompareTerms(in LeaseInput, terms []int) (LeaseComparison, error) {
	if err := validateLeaseInput(in, false); err != nil {
		return LeaseComparison{}, err
	}
	if len(terms) == 0 {
		return LeaseComparison{}, &InvalidInputError{Field: "terms", Reason: "at least one lease term is required"}
	}

	options := make([]LeaseOption, 0, len(terms))
	for _, term := range terms {
		if term < 1 {
			return LeaseComparison{}, &InvalidInputError{Field: "terms", Reason: "term " + strconv.Itoa(term) + " must be at least 1"}
		}
		residualPercent, ok := in.ResidualPercents[term]
		if !ok {
			residualPercent = defaultResidualPercent
		}

		dep, rent, tax, residual := leaseComponents(in, residualPercent, term)
		total := dep + rent + tax

		options = append(options, LeaseOption{
			TermMonths:     term,
			MonthlyPayment: RoundDollars(total),
			TotalInterest:  RoundDollars(rent * float64(term)),
			ResidualValue:  RoundDollars(residual),
			Depreciation:   RoundDollars(dep),
		})
	}

	label := in.VehicleLabel
	if label == "" {
		label = "Vehicle"
	}
	return LeaseComparison{VehicleLabel: label, Options: options}, nil
}

// validateLeaseInput rejects missing or zero required fields. The term and
// residual percentage are only required for single-term quotes; comparison
// mode supplies terms separately and defaults residuals per-term.
func validateLeaseInput(in LeaseInput, singleTerm bool) error {
	switch {
	case in.MSRP == 0:
		return &InvalidInputError{Field: "msrp", Reason: "is required"}
	case in.CapCost == 0:
		return &InvalidInputError{Field: "capCost", Reason: "is required"}
	case in.MoneyFactor == 0:
		return &InvalidInputError{Field: "moneyFactor", Reason: "is required"}
	}
	if singleTerm {
		if in.ResidualPercent == 0 {
			return &InvalidInputError{Field: "residualPercent", Reason: "is required"}
		}
		if in.TermMonths == 0 {
			return &InvalidInputError{Field: "term", Reason: "is required"}
		}
		if in.TermMonths < 1 {
			return &InvalidInputError{Field: "term", Reason: "must be at least 1"}
		}
	}
	return nil
}
