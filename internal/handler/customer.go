package handler

import (
	"fmt"
	"hash/fnv"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/vinpro/dealdesk/internal/event"
	"github.com/vinpro/dealdesk/internal/store"
)

// CustomerHandler implements HTTP handlers for leads and customers.
type CustomerHandler struct {
	customers *store.CustomerStore
	recorder  event.Recorder
}

// NewCustomerHandler creates a CustomerHandler.
func NewCustomerHandler(customers *store.CustomerStore, rec event.Recorder) *CustomerHandler {
	return &CustomerHandler{customers: customers, recorder: rec}
}

// ScanLead creates a lead from a driver's-license scan, resuming any existing
// customer with the same license or email.
// POST /v1/leads/scan
func (h *CustomerHandler) ScanLead(w http.ResponseWriter, r *http.Request) {
	var in store.CreateLeadInput
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_BODY", "invalid JSON body")
		return
	}
	if in.Source == "" {
		in.Source = "dl_scan"
	}

	c, duplicate, err := h.customers.CreateLead(r.Context(), in)
	if err != nil {
		storeErrorToHTTP(w, err)
		return
	}

	if !duplicate {
		recordEvent(r.Context(), h.recorder, event.NewLeadCaptured(actorFrom(r), event.LeadCapturedPayload{
			CustomerID: c.ID,
			FirstName:  c.FirstName,
			LastName:   c.LastName,
			Source:     c.Source,
		}))
		writeJSON(w, http.StatusCreated, c)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"customer": c, "duplicate": true})
}

// softPullBands maps a pseudo-random draw onto the three credit tiers with
// their representative FICO windows.
var softPullBands = []struct {
	band      string
	low, high int
}{
	{"Prime", 715, 745},
	{"Near-Prime", 630, 675},
	{"Subprime", 510, 580},
}

// SoftPull runs a soft credit inquiry. Consent is required; the result is a
// band and score range, not an exact FICO. There is no bureau integration;
// the band is drawn deterministically per customer, standing in for the real
// service.
// POST /v1/customers/{id}/softpull
func (h *CustomerHandler) SoftPull(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var body struct {
		Consent bool `json:"consent"`
	}
	if err := decodeJSON(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_BODY", "invalid JSON body")
		return
	}
	if !body.Consent {
		writeError(w, http.StatusBadRequest, "CONSENT_REQUIRED", "credit consent is required for a soft pull")
		return
	}

	if _, err := h.customers.Get(r.Context(), id); err != nil {
		storeErrorToHTTP(w, err)
		return
	}

	hash := fnv.New32a()
	hash.Write([]byte(id))
	tier := softPullBands[hash.Sum32()%3]

	c, err := h.customers.SetQualification(r.Context(), id, store.Qualification{
		Band:      tier.band,
		ScoreLow:  tier.low,
		ScoreHigh: tier.high,
		PulledAt:  time.Now().UTC(),
	})
	if err != nil {
		storeErrorToHTTP(w, err)
		return
	}

	recordEvent(r.Context(), h.recorder, event.NewCreditQualified(actorFrom(r), event.CreditQualifiedPayload{
		CustomerID: c.ID,
		CreditBand: tier.band,
		FicoRange:  fmt.Sprintf("%d-%d", tier.low, tier.high),
	}))
	writeJSON(w, http.StatusOK, c)
}

// Get returns one customer.
// GET /v1/customers/{id}
func (h *CustomerHandler) Get(w http.ResponseWriter, r *http.Request) {
	c, err := h.customers.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		storeErrorToHTTP(w, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

// List returns customers, optionally filtered by status.
// GET /v1/customers
func (h *CustomerHandler) List(w http.ResponseWriter, r *http.Request) {
	p := parsePagination(r)
	customers, err := h.customers.List(r.Context(), r.URL.Query().Get("status"), p.Limit, p.Offset)
	if err != nil {
		storeErrorToHTTP(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"customers": customers, "count": len(customers)})
}

// UpdateStatus moves the customer through the sales funnel.
// POST /v1/customers/{id}/status
func (h *CustomerHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Status string `json:"status"`
	}
	if err := decodeJSON(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_BODY", "invalid JSON body")
		return
	}

	c, err := h.customers.UpdateStatus(r.Context(), chi.URLParam(r, "id"), body.Status)
	if err != nil {
		storeErrorToHTTP(w, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

// SetNotes replaces the customer's notes.
// PATCH /v1/customers/{id}/notes
func (h *CustomerHandler) SetNotes(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Notes string `json:"notes"`
	}
	if err := decodeJSON(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_BODY", "invalid JSON body")
		return
	}

	c, err := h.customers.SetNotes(r.Context(), chi.URLParam(r, "id"), body.Notes)
	if err != nil {
		storeErrorToHTTP(w, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}
