package finance

// DefaultTermMonths is applied when a structure input leaves the term unset.
const DefaultTermMonths = 60

// StructureInput carries the raw inputs of a deal pencil. Zero values for
// DownPayment, TradeInValue and APR mean exactly that; a zero TermMonths means
// "unset" and defaults to DefaultTermMonths.
type StructureInput struct {
	SalePrice    float64    `json:"salePrice"`
	DownPayment  float64    `json:"downPayment"`
	TradeInValue float64    `json:"tradeInValue"`
	TermMonths   int        `json:"termMonths"`
	APR          float64    `json:"apr"`
	Appraisal    *Appraisal `json:"appraisal,omitempty"`
}

// DealStructure is the computed pencil: inputs echoed back plus the derived
// principal and monthly payment. It is a value object: immutable once
// computed, recomputed in full whenever any input changes.
type DealStructure struct {
	SalePrice      float64    `json:"salePrice"`
	DownPayment    float64    `json:"downPayment"`
	TradeInValue   float64    `json:"tradeInValue"`
	TermMonths     int        `json:"termMonths"`
	APR            float64    `json:"apr"`
	Principal      float64    `json:"principal"`
	MonthlyPayment float64    `json:"monthlyPayment"`
	Appraisal      *Appraisal `json:"appraisal,omitempty"`
}

// BuildStructure computes a complete, consistent deal structure from raw
// inputs.
//
// When an appraisal is present, its computed FinalACV is authoritative: it
// overrides any manually entered TradeInValue, even a conflicting one; the
// manual figure is a convenience value, the appraisal wins once computed.
//
// The principal is salePrice − downPayment − tradeInValue with no floor at
// zero. A negative principal means the deal is already covered by trade
// equity and cash down; the payment then computes to zero or negative, which
// is surfaced as-is rather than suppressed.
//
// The monthly payment is rounded to cents here, the finalization boundary.
// Principal and FinalACV are likewise rounded on the returned structure; the
// payment itself is computed from the unrounded principal.
func BuildStructure(input StructureInput) (DealStructure, error) {
	if input.SalePrice <= 0 {
		return DealStructure{}, &InvalidInputError{Field: "salePrice", Reason: "must be greater than zero"}
	}
	term := input.TermMonths
	if term == 0 {
		term = DefaultTermMonths
	}
	if term < 1 {
		return DealStructure{}, &InvalidInputError{Field: "termMonths", Reason: "must be at least 1"}
	}

	tradeIn := input.TradeInValue
	var appraisal *Appraisal
	if input.Appraisal != nil {
		a := *input.Appraisal
		a.FinalACV = ComputeACV(a.BaseValue, a.Deductions)
		tradeIn = a.FinalACV
		a.FinalACV = RoundCents(a.FinalACV)
		appraisal = &a
	}

	principal := input.SalePrice - input.DownPayment - tradeIn

	payment, err := ComputeMonthlyPayment(principal, input.APR, term)
	if err != nil {
		return DealStructure{}, err
	}

	return DealStructure{
		SalePrice:      input.SalePrice,
		DownPayment:    input.DownPayment,
		TradeInValue:   RoundCents(tradeIn),
		TermMonths:     term,
		APR:            input.APR,
		Principal:      RoundCents(principal),
		MonthlyPayment: RoundCents(payment),
		Appraisal:      appraisal,
	}, nil
}
