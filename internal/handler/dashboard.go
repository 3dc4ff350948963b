package handler

import (
	"net/http"

	"github.com/vinpro/dealdesk/internal/activity"
	"github.com/vinpro/dealdesk/internal/store"
	"github.com/vinpro/dealdesk/internal/types"
)

// DashboardHandler aggregates the desk's morning-meeting numbers: deal
// pipeline, lot health and the recent feed in one read.
type DashboardHandler struct {
	deals     *store.DealStore
	inventory *store.InventoryStore
	activity  activity.Store
}

// NewDashboardHandler creates a DashboardHandler.
func NewDashboardHandler(deals *store.DealStore, inventory *store.InventoryStore, act activity.Store) *DashboardHandler {
	return &DashboardHandler{deals: deals, inventory: inventory, activity: act}
}

// Get returns the dashboard aggregate.
// GET /v1/dashboard
func (h *DashboardHandler) Get(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	counts, err := h.deals.CountByStatus(ctx)
	if err != nil {
		storeErrorToHTTP(w, err)
		return
	}
	pipeline, err := h.deals.PipelineValue(ctx)
	if err != nil {
		storeErrorToHTTP(w, err)
		return
	}
	lot, err := h.inventory.Health(ctx)
	if err != nil {
		storeErrorToHTTP(w, err)
		return
	}

	opts := activity.DefaultQueryOptions()
	opts.Limit = 15
	recent, err := h.activity.Recent(ctx, opts)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "QUERY_FAILED", err.Error())
		return
	}
	if recent == nil {
		recent = []types.ActivityEntry{}
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"dealCounts":    counts,
		"pipelineValue": pipeline,
		"lotHealth":     lot,
		"recentPulse":   recent,
	})
}
