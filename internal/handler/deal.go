package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/vinpro/dealdesk/internal/deal"
	"github.com/vinpro/dealdesk/internal/event"
	"github.com/vinpro/dealdesk/internal/finance"
	"github.com/vinpro/dealdesk/internal/store"
)

// DealHandler implements HTTP handlers for the deal desk.
type DealHandler struct {
	deals    *store.DealStore
	recorder event.Recorder
}

// NewDealHandler creates a DealHandler.
func NewDealHandler(deals *store.DealStore, rec event.Recorder) *DealHandler {
	return &DealHandler{deals: deals, recorder: rec}
}

// Create opens a new deal pencil.
// POST /v1/deals
func (h *DealHandler) Create(w http.ResponseWriter, r *http.Request) {
	var in store.CreateDealInput
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_BODY", "invalid JSON body")
		return
	}

	d, err := h.deals.Create(r.Context(), in)
	if err != nil {
		storeErrorToHTTP(w, err)
		return
	}

	recordEvent(r.Context(), h.recorder, event.NewPencilCreated(actorFrom(r), event.PencilCreatedPayload{
		DealID:         d.ID,
		CustomerID:     d.CustomerID,
		VehicleID:      d.VehicleID,
		MonthlyPayment: d.Structure.MonthlyPayment,
	}))
	writeJSON(w, http.StatusCreated, d)
}

// Get returns one deal.
// GET /v1/deals/{id}
func (h *DealHandler) Get(w http.ResponseWriter, r *http.Request) {
	d, err := h.deals.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		storeErrorToHTTP(w, err)
		return
	}
	writeJSON(w, http.StatusOK, d)
}

// List returns deals, optionally filtered by status, salesperson or customer.
// GET /v1/deals
func (h *DealHandler) List(w http.ResponseWriter, r *http.Request) {
	p := parsePagination(r)
	deals, err := h.deals.List(r.Context(), store.ListFilter{
		Status:      r.URL.Query().Get("status"),
		Salesperson: r.URL.Query().Get("salesperson"),
		CustomerID:  r.URL.Query().Get("customer_id"),
		Limit:       p.Limit,
		Offset:      p.Offset,
	})
	if err != nil {
		storeErrorToHTTP(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"deals": deals, "count": len(deals)})
}

// UpdateStructure recomputes the pencil from new inputs.
// PATCH /v1/deals/{id}/structure
func (h *DealHandler) UpdateStructure(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var in finance.StructureInput
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_BODY", "invalid JSON body")
		return
	}

	before, err := h.deals.Get(r.Context(), id)
	if err != nil {
		storeErrorToHTTP(w, err)
		return
	}
	oldPayment := before.Structure.MonthlyPayment

	d, err := h.deals.UpdateStructure(r.Context(), id, in)
	if err != nil {
		storeErrorToHTTP(w, err)
		return
	}

	recordEvent(r.Context(), h.recorder, event.NewStructureRevised(actorFrom(r), event.StructureRevisedPayload{
		DealID:         d.ID,
		CustomerID:     d.CustomerID,
		OldPayment:     oldPayment,
		MonthlyPayment: d.Structure.MonthlyPayment,
	}))
	writeJSON(w, http.StatusOK, d)
}

// SetStipulations replaces the compliance checklist.
// PATCH /v1/deals/{id}/stipulations
func (h *DealHandler) SetStipulations(w http.ResponseWriter, r *http.Request) {
	var stips deal.Stipulations
	if err := decodeJSON(r, &stips); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_BODY", "invalid JSON body")
		return
	}

	d, err := h.deals.SetStipulations(r.Context(), chi.URLParam(r, "id"), stips)
	if err != nil {
		storeErrorToHTTP(w, err)
		return
	}
	writeJSON(w, http.StatusOK, d)
}

// Commit submits the pencil for manager review.
// POST /v1/deals/{id}/commit
func (h *DealHandler) Commit(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, deal.StatusPendingManager)
}

// Transition moves the deal to the requested lifecycle status.
// POST /v1/deals/{id}/status
func (h *DealHandler) Transition(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Status deal.Status `json:"status"`
	}
	if err := decodeJSON(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_BODY", "invalid JSON body")
		return
	}
	if !deal.ValidStatus(body.Status) {
		writeError(w, http.StatusBadRequest, "INVALID_STATUS", "unknown deal status: "+string(body.Status))
		return
	}
	h.transition(w, r, body.Status)
}

func (h *DealHandler) transition(w http.ResponseWriter, r *http.Request, target deal.Status) {
	d, change, changed, err := h.deals.TransitionStatus(r.Context(), chi.URLParam(r, "id"), target)
	if err != nil {
		storeErrorToHTTP(w, err)
		return
	}
	if changed {
		recordEvent(r.Context(), h.recorder, event.NewDealStatusChanged(actorFrom(r), d.CustomerID, change))
	}
	writeJSON(w, http.StatusOK, d)
}
