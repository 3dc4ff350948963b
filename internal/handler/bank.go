package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/vinpro/dealdesk/internal/store"
)

// BankHandler implements HTTP handlers for the lender directory.
type BankHandler struct {
	banks *store.BankStore
}

// NewBankHandler creates a BankHandler.
func NewBankHandler(banks *store.BankStore) *BankHandler {
	return &BankHandler{banks: banks}
}

// Create adds a lender.
// POST /v1/banks
func (h *BankHandler) Create(w http.ResponseWriter, r *http.Request) {
	var b store.Bank
	if err := decodeJSON(r, &b); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_BODY", "invalid JSON body")
		return
	}

	created, err := h.banks.Create(r.Context(), &b)
	if err != nil {
		storeErrorToHTTP(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

// Get returns one lender.
// GET /v1/banks/{id}
func (h *BankHandler) Get(w http.ResponseWriter, r *http.Request) {
	b, err := h.banks.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		storeErrorToHTTP(w, err)
		return
	}
	writeJSON(w, http.StatusOK, b)
}

// List returns the lender directory.
// GET /v1/banks
func (h *BankHandler) List(w http.ResponseWriter, r *http.Request) {
	banks, err := h.banks.List(r.Context())
	if err != nil {
		storeErrorToHTTP(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"banks": banks, "count": len(banks)})
}

// Update replaces a lender's fields.
// PUT /v1/banks/{id}
func (h *BankHandler) Update(w http.ResponseWriter, r *http.Request) {
	var b store.Bank
	if err := decodeJSON(r, &b); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_BODY", "invalid JSON body")
		return
	}

	updated, err := h.banks.Update(r.Context(), chi.URLParam(r, "id"), &b)
	if err != nil {
		storeErrorToHTTP(w, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

// Delete removes a lender.
// DELETE /v1/banks/{id}
func (h *BankHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.banks.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		storeErrorToHTTP(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
