package finance

// Deduction is one itemized reconditioning or damage cost subtracted from a
// trade-in's base value. Cost is conventionally >= 0 but any sign is accepted.
type Deduction struct {
	Label string  `json:"label"`
	Cost  float64 `json:"cost"`
}

// Appraisal captures a trade-in evaluation: the appraiser's base value and the
// ordered deduction list. FinalACV is derived, never set by callers.
type Appraisal struct {
	VIN        string      `json:"vin,omitempty"`
	BaseValue  float64     `json:"baseValue"`
	Deductions []Deduction `json:"deductions,omitempty"`
	FinalACV   float64     `json:"finalACV"`
}

// ComputeACV returns baseValue minus the sum of all deduction costs.
//
// There is no floor at zero: a heavily damaged trade can legitimately produce
// a negative ACV, and that negative equity must propagate into downstream deal
// math rather than being silently clamped. An empty deduction list yields the
// base value unchanged.
func ComputeACV(baseValue float64, deductions []Deduction) float64 {
	acv := baseValue
	for _, d := range deductions {
		acv -= d.Cost
	}
	return acv
}
