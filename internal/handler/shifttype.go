package handler

import (
	"net/http"

	"github.com/vkarev/rotagen/internal/engine"
)

// ShiftTypeHandler serves the fixed shift-type catalogue. The vocabulary is
// part of the engine; a stored copy would only drift.
type ShiftTypeHandler struct{}

// NewShiftTypeHandler creates a new shift type handler.
func NewShiftTypeHandler() *ShiftTypeHandler {
	return &ShiftTypeHandler{}
}

// List returns the catalogue.
func (h *ShiftTypeHandler) List(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, engine.Catalogue())
}
