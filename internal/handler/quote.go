package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/vinpro/dealdesk/internal/event"
	"github.com/vinpro/dealdesk/internal/store"
)

// QuoteHandler implements HTTP handlers for saved quotes.
type QuoteHandler struct {
	quotes   *store.QuoteStore
	recorder event.Recorder
}

// NewQuoteHandler creates a QuoteHandler.
func NewQuoteHandler(quotes *store.QuoteStore, rec event.Recorder) *QuoteHandler {
	return &QuoteHandler{quotes: quotes, recorder: rec}
}

// Create saves a quote worksheet.
// POST /v1/quotes
func (h *QuoteHandler) Create(w http.ResponseWriter, r *http.Request) {
	var in store.CreateQuoteInput
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_BODY", "invalid JSON body")
		return
	}

	q, err := h.quotes.Create(r.Context(), in)
	if err != nil {
		storeErrorToHTTP(w, err)
		return
	}

	// Pull headline figures out of the snapshot for the feed summary.
	var calc struct {
		Term           int     `json:"term"`
		MonthlyPayment float64 `json:"monthlyPayment"`
	}
	_ = json.Unmarshal(q.Calculations, &calc)

	recordEvent(r.Context(), h.recorder, event.NewQuoteSaved(actorFrom(r), event.QuoteSavedPayload{
		QuoteID:        q.ID,
		CustomerID:     q.CustomerID,
		VehicleID:      q.VehicleID,
		TermMonths:     calc.Term,
		MonthlyPayment: calc.MonthlyPayment,
	}))
	writeJSON(w, http.StatusCreated, q)
}

// Get returns one quote.
// GET /v1/quotes/{id}
func (h *QuoteHandler) Get(w http.ResponseWriter, r *http.Request) {
	q, err := h.quotes.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		storeErrorToHTTP(w, err)
		return
	}
	writeJSON(w, http.StatusOK, q)
}

// List returns quotes, optionally filtered by customer.
// GET /v1/quotes
func (h *QuoteHandler) List(w http.ResponseWriter, r *http.Request) {
	p := parsePagination(r)
	quotes, err := h.quotes.List(r.Context(), r.URL.Query().Get("customer_id"), p.Limit, p.Offset)
	if err != nil {
		storeErrorToHTTP(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"quotes": quotes, "count": len(quotes)})
}

// SetStatus updates a quote's status.
// POST /v1/quotes/{id}/status
func (h *QuoteHandler) SetStatus(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Status string `json:"status"`
	}
	if err := decodeJSON(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_BODY", "invalid JSON body")
		return
	}

	q, err := h.quotes.SetStatus(r.Context(), chi.URLParam(r, "id"), body.Status)
	if err != nil {
		storeErrorToHTTP(w, err)
		return
	}
	writeJSON(w, http.StatusOK, q)
}
