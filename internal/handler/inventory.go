package handler

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/vinpro/dealdesk/internal/event"
	"github.com/vinpro/dealdesk/internal/marketdata"
	"github.com/vinpro/dealdesk/internal/metrics"
	"github.com/vinpro/dealdesk/internal/store"
)

// InventoryHandler implements HTTP handlers for lot inventory.
type InventoryHandler struct {
	inventory *store.InventoryStore
	valuator  marketdata.Valuator
	recorder  event.Recorder
}

// NewInventoryHandler creates an InventoryHandler.
func NewInventoryHandler(inventory *store.InventoryStore, valuator marketdata.Valuator, rec event.Recorder) *InventoryHandler {
	return &InventoryHandler{inventory: inventory, valuator: valuator, recorder: rec}
}

// Create adds a unit to the lot.
// POST /v1/inventory
func (h *InventoryHandler) Create(w http.ResponseWriter, r *http.Request) {
	var in store.CreateVehicleInput
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_BODY", "invalid JSON body")
		return
	}

	v, err := h.inventory.Create(r.Context(), in)
	if err != nil {
		storeErrorToHTTP(w, err)
		return
	}

	recordEvent(r.Context(), h.recorder, event.NewUnitAdded(actorFrom(r), event.UnitAddedPayload{
		VehicleID:   v.ID,
		VIN:         v.VIN,
		StockNumber: v.StockNumber,
		Label:       fmt.Sprintf("%d %s %s", v.Year, v.Make, v.Model),
		Price:       v.Price,
	}))
	writeJSON(w, http.StatusCreated, v)
}

// Get returns one unit.
// GET /v1/inventory/{id}
func (h *InventoryHandler) Get(w http.ResponseWriter, r *http.Request) {
	v, err := h.inventory.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		storeErrorToHTTP(w, err)
		return
	}
	writeJSON(w, http.StatusOK, v)
}

// List returns inventory, optionally filtered by status.
// GET /v1/inventory
func (h *InventoryHandler) List(w http.ResponseWriter, r *http.Request) {
	p := parsePagination(r)
	vehicles, err := h.inventory.List(r.Context(), r.URL.Query().Get("status"), p.Limit, p.Offset)
	if err != nil {
		storeErrorToHTTP(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"vehicles": vehicles, "count": len(vehicles)})
}

// SetPrice adjusts the asking price.
// POST /v1/inventory/{id}/price
func (h *InventoryHandler) SetPrice(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Price float64 `json:"price"`
	}
	if err := decodeJSON(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_BODY", "invalid JSON body")
		return
	}

	old, v, err := h.inventory.SetPrice(r.Context(), chi.URLParam(r, "id"), body.Price)
	if err != nil {
		storeErrorToHTTP(w, err)
		return
	}

	recordEvent(r.Context(), h.recorder, event.NewPriceAdjusted(actorFrom(r), event.PriceAdjustedPayload{
		VehicleID: v.ID,
		VIN:       v.VIN,
		OldPrice:  old.Price,
		NewPrice:  v.Price,
	}))
	writeJSON(w, http.StatusOK, v)
}

// SetStatus updates the unit's lot status.
// POST /v1/inventory/{id}/status
func (h *InventoryHandler) SetStatus(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Status string `json:"status"`
	}
	if err := decodeJSON(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_BODY", "invalid JSON body")
		return
	}

	v, err := h.inventory.SetStatus(r.Context(), chi.URLParam(r, "id"), body.Status)
	if err != nil {
		storeErrorToHTTP(w, err)
		return
	}
	writeJSON(w, http.StatusOK, v)
}

// Market returns a cached market valuation for the unit and records the read
// on the vehicle record.
// GET /v1/inventory/{id}/market
func (h *InventoryHandler) Market(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	v, err := h.inventory.Get(r.Context(), id)
	if err != nil {
		storeErrorToHTTP(w, err)
		return
	}

	val, err := h.valuator.Value(r.Context(), v.VIN, v.Price)
	if err != nil {
		writeError(w, http.StatusBadGateway, "MARKET_UNAVAILABLE", err.Error())
		return
	}
	metrics.MarketLookups.WithLabelValues(val.Source).Inc()

	updated, err := h.inventory.SetMarketData(r.Context(), id, val.MarketAverage, val.Rank)
	if err != nil {
		storeErrorToHTTP(w, err)
		return
	}

	recordEvent(r.Context(), h.recorder, event.NewMarketValueSynced(actorFrom(r), event.MarketValueSyncedPayload{
		VehicleID:     v.ID,
		VIN:           v.VIN,
		MarketAverage: val.MarketAverage,
		MarketRank:    fmt.Sprintf("%d of %d", val.Rank, val.ComparableSize),
	}))
	writeJSON(w, http.StatusOK, map[string]any{"vehicle": updated, "valuation": val})
}
