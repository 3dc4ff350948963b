package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/vinpro/dealdesk/internal/store"
)

// TaskHandler implements HTTP handlers for store tasks.
type TaskHandler struct {
	tasks *store.TaskStore
}

// NewTaskHandler creates a TaskHandler.
func NewTaskHandler(tasks *store.TaskStore) *TaskHandler {
	return &TaskHandler{tasks: tasks}
}

// Create adds a task.
// POST /v1/tasks
func (h *TaskHandler) Create(w http.ResponseWriter, r *http.Request) {
	var t store.Task
	if err := decodeJSON(r, &t); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_BODY", "invalid JSON body")
		return
	}

	created, err := h.tasks.Create(r.Context(), &t)
	if err != nil {
		storeErrorToHTTP(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

// Get returns one task.
// GET /v1/tasks/{id}
func (h *TaskHandler) Get(w http.ResponseWriter, r *http.Request) {
	t, err := h.tasks.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		storeErrorToHTTP(w, err)
		return
	}
	writeJSON(w, http.StatusOK, t)
}

// List returns tasks, optionally filtered by status or assignee.
// GET /v1/tasks
func (h *TaskHandler) List(w http.ResponseWriter, r *http.Request) {
	p := parsePagination(r)
	tasks, err := h.tasks.List(r.Context(),
		r.URL.Query().Get("status"), r.URL.Query().Get("assignee"), p.Limit, p.Offset)
	if err != nil {
		storeErrorToHTTP(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"tasks": tasks, "count": len(tasks)})
}

// Update replaces a task's fields.
// PUT /v1/tasks/{id}
func (h *TaskHandler) Update(w http.ResponseWriter, r *http.Request) {
	var t store.Task
	if err := decodeJSON(r, &t); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_BODY", "invalid JSON body")
		return
	}

	updated, err := h.tasks.Update(r.Context(), chi.URLParam(r, "id"), &t)
	if err != nil {
		storeErrorToHTTP(w, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

// Delete removes a task.
// DELETE /v1/tasks/{id}
func (h *TaskHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.tasks.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		storeErrorToHTTP(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
