package handler

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/vinpro/dealdesk/internal/activity"
	"github.com/vinpro/dealdesk/internal/types"
)

// ActivityHandler implements HTTP handlers for the pulse activity feed.
type ActivityHandler struct {
	store activity.Store
}

// NewActivityHandler creates an ActivityHandler.
func NewActivityHandler(store activity.Store) *ActivityHandler {
	return &ActivityHandler{store: store}
}

// parseQueryOptions reads the shared feed filters from query params.
func parseQueryOptions(r *http.Request) activity.QueryOptions {
	opts := activity.DefaultQueryOptions()
	if s := r.URL.Query().Get("since"); s != "" {
		if t, err := time.Parse(time.RFC3339, s); err == nil {
			opts.Since = &t
		}
	}
	if u := r.URL.Query().Get("until"); u != "" {
		if t, err := time.Parse(time.RFC3339, u); err == nil {
			opts.Until = &t
		}
	}
	if cats := r.URL.Query().Get("categories"); cats != "" {
		opts.Categories = strings.Split(cats, ",")
	}
	if mw := r.URL.Query().Get("min_weight"); mw != "" {
		opts.MinWeight = mw
	}
	if l := r.URL.Query().Get("limit"); l != "" {
		if n, err := strconv.Atoi(l); err == nil && n > 0 {
			if n > 500 {
				n = 500
			}
			opts.Limit = n
		}
	}
	if c := r.URL.Query().Get("cursor"); c != "" {
		opts.Cursor = c
	}
	return opts
}

// Feed returns the newest feed entries across all entities.
// GET /v1/activity
func (h *ActivityHandler) Feed(w http.ResponseWriter, r *http.Request) {
	entries, err := h.store.Recent(r.Context(), parseQueryOptions(r))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "QUERY_FAILED", err.Error())
		return
	}
	if entries == nil {
		entries = []types.ActivityEntry{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"activities": entries, "count": len(entries)})
}

// EntityActivity returns a chronological activity feed for any entity.
// GET /v1/activity/entity/{entity_type}/{entity_id}
func (h *ActivityHandler) EntityActivity(w http.ResponseWriter, r *http.Request) {
	entityType := chi.URLParam(r, "entity_type")
	entityID := chi.URLParam(r, "entity_id")
	if entityType == "" || entityID == "" {
		writeError(w, http.StatusBadRequest, "MISSING_PARAMS", "entity_type and entity_id are required")
		return
	}

	opts := parseQueryOptions(r)
	entries, nextCursor, totalCount, err := h.store.QueryByEntity(r.Context(), entityType, entityID, opts)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "QUERY_FAILED", err.Error())
		return
	}
	if entries == nil {
		entries = []types.ActivityEntry{}
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"activities":  entries,
		"next_cursor": nextCursor,
		"total_count": totalCount,
	})
}

// Search performs substring search across feed summaries.
// POST /v1/activity/search
func (h *ActivityHandler) Search(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Query      string   `json:"query"`
		EntityType string   `json:"entity_type,omitempty"`
		Categories []string `json:"categories,omitempty"`
		Limit      int      `json:"limit,omitempty"`
	}
	if err := decodeJSON(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_BODY", "invalid JSON body")
		return
	}
	if body.Query == "" {
		writeError(w, http.StatusBadRequest, "MISSING_QUERY", "query is required")
		return
	}

	opts := activity.DefaultSearchOptions()
	opts.EntityType = body.EntityType
	opts.Categories = body.Categories
	if body.Limit > 0 {
		opts.Limit = body.Limit
	}

	entries, totalCount, err := h.store.Search(r.Context(), body.Query, opts)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "SEARCH_FAILED", err.Error())
		return
	}
	if entries == nil {
		entries = []types.ActivityEntry{}
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"activities":  entries,
		"total_count": totalCount,
	})
}
