package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/vinpro/dealdesk/internal/marketdata"
)

// VINHandler exposes VIN decoding.
type VINHandler struct {
	decoder marketdata.Decoder
}

// NewVINHandler creates a VINHandler.
func NewVINHandler(decoder marketdata.Decoder) *VINHandler {
	return &VINHandler{decoder: decoder}
}

// Decode resolves a VIN to vehicle identity.
// GET /v1/vin/{vin}
func (h *VINHandler) Decode(w http.ResponseWriter, r *http.Request) {
	vin := chi.URLParam(r, "vin")
	if len(vin) != 17 {
		writeError(w, http.StatusBadRequest, "INVALID_VIN", "vin must be 17 characters")
		return
	}

	info, err := h.decoder.Decode(r.Context(), vin)
	if err != nil {
		writeError(w, http.StatusBadGateway, "DECODE_FAILED", err.Error())
		return
	}
	writeJSON(w, http.StatusOK, info)
}
