package handler

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/vinpro/dealdesk/internal/finance"
)

// LeaseHandler exposes the lease quote engine. These endpoints are pure
// computation: nothing is persisted unless the desk saves the result as a
// quote.
type LeaseHandler struct{}

// NewLeaseHandler creates a LeaseHandler.
func NewLeaseHandler() *LeaseHandler {
	return &LeaseHandler{}
}

// flexFloat accepts a JSON number or a numeric string. Desking tools send
// money factors both ways ("2.95" from form fields, 0.00123 from APIs).
type flexFloat float64

func (f *flexFloat) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	if s == "" || s == "null" {
		*f = 0
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return err
	}
	*f = flexFloat(v)
	return nil
}

// leaseRequest is the wire shape of both lease endpoints.
type leaseRequest struct {
	MSRP             float64         `json:"msrp"`
	CapCost          float64         `json:"capCost"`
	ResidualPercent  float64         `json:"residualPercent"`
	ResidualPercents map[int]float64 `json:"residualPercents,omitempty"`
	MoneyFactor      flexFloat       `json:"moneyFactor"`
	Term             int             `json:"term"`
	DownPayment      float64         `json:"downPayment"`
	SalesTaxRate     float64         `json:"salesTaxRate"`
	TradeInValue     float64         `json:"tradeInValue"`
	VehicleLabel     string          `json:"vehicleLabel,omitempty"`
	Terms            []int           `json:"terms,omitempty"` // compare only
}

func (req leaseRequest) toInput() finance.LeaseInput {
	return finance.LeaseInput{
		MSRP:             req.MSRP,
		CapCost:          req.CapCost,
		ResidualPercent:  req.ResidualPercent,
		ResidualPercents: req.ResidualPercents,
		MoneyFactor:      float64(req.MoneyFactor),
		TermMonths:       req.Term,
		DownPayment:      req.DownPayment,
		SalesTaxRate:     req.SalesTaxRate,
		TradeInValue:     req.TradeInValue,
		VehicleLabel:     req.VehicleLabel,
	}
}

// Calculate returns a single-term lease quote.
// POST /v1/lease/calculate
func (h *LeaseHandler) Calculate(w http.ResponseWriter, r *http.Request) {
	var req leaseRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_BODY", "invalid JSON body")
		return
	}

	quote, err := finance.QuoteLease(req.toInput())
	if err != nil {
		storeErrorToHTTP(w, err)
		return
	}
	writeJSON(w, http.StatusOK, quote)
}

// Compare quotes the same vehicle across several terms.
// POST /v1/lease/compare
func (h *LeaseHandler) Compare(w http.ResponseWriter, r *http.Request) {
	var req leaseRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_BODY", "invalid JSON body")
		return
	}

	comparison, err := finance.CompareTerms(req.toInput(), req.Terms)
	if err != nil {
		storeErrorToHTTP(w, err)
		return
	}
	writeJSON(w, http.StatusOK, comparison)
}
