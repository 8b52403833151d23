package handler

import (
	"encoding/json"
	"net/http"

	"github.com/vkarev/rotagen/internal/service"
)

// SettingsHandler serves the policy bag.
type SettingsHandler struct {
	settings *service.SettingsService
}

// NewSettingsHandler creates a new settings handler.
func NewSettingsHandler(settings *service.SettingsService) *SettingsHandler {
	return &SettingsHandler{settings: settings}
}

// Get returns the effective policy (stored values over defaults).
func (h *SettingsHandler) Get(w http.ResponseWriter, r *http.Request) {
	bag, err := h.settings.Policy(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to load settings")
		return
	}
	respondJSON(w, http.StatusOK, bag)
}

// Put replaces the policy bag.
func (h *SettingsHandler) Put(w http.ResponseWriter, r *http.Request) {
	var bag service.PolicyBag
	if err := json.NewDecoder(r.Body).Decode(&bag); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := h.settings.SavePolicy(r.Context(), bag); err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to save settings")
		return
	}
	respondJSON(w, http.StatusOK, bag)
}
