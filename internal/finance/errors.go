package finance

import "fmt"

// InvalidInputError reports a required field that is missing or structurally
// invalid (non-positive price, zero term, empty terms list). It is always
// caller-recoverable: reject the request and surface the offending field.
type InvalidInputError struct {
	Field  string
	Reason string
}

func (e *InvalidInputError) Error() string {
	return fmt.Sprintf("invalid input: %s %s", e.Field, e.Reason)
}

// InvalidTermError reports an amortization term below one month.
type InvalidTermError struct {
	TermMonths int
}

func (e *InvalidTermError) Error() string {
	return fmt.Sprintf("invalid term: %d months (must be >= 1)", e.TermMonths)
}
