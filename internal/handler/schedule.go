package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/vkarev/rotagen/internal/engine"
	"github.com/vkarev/rotagen/internal/model"
	"github.com/vkarev/rotagen/internal/service"
)

// ScheduleHandler serves month matrices, drafts and the generation endpoint.
type ScheduleHandler struct {
	schedules *service.ScheduleService
}

// NewScheduleHandler creates a new schedule handler.
func NewScheduleHandler(schedules *service.ScheduleService) *ScheduleHandler {
	return &ScheduleHandler{schedules: schedules}
}

// Matrix returns the stored matrix of a month.
func (h *ScheduleHandler) Matrix(w http.ResponseWriter, r *http.Request) {
	ym := chi.URLParam(r, "ym")
	view, err := h.schedules.Matrix(r.Context(), ym)
	if err != nil {
		if errors.Is(err, service.ErrMonthNotFound) {
			respondError(w, http.StatusNotFound, "Month has no stored schedule")
			return
		}
		var cfgErr *engine.ConfigurationError
		if errors.As(err, &cfgErr) {
			respondError(w, http.StatusBadRequest, cfgErr.Error())
			return
		}
		respondError(w, http.StatusInternalServerError, "Failed to load matrix")
		return
	}
	respondJSON(w, http.StatusOK, view)
}

type generateRequest struct {
	NormHours int                 `json:"norm_hours"`
	Vacations map[string][]string `json:"vacations"`
}

// Generate runs the generation pipeline for a month and stores the result.
func (h *ScheduleHandler) Generate(w http.ResponseWriter, r *http.Request) {
	ym := chi.URLParam(r, "ym")

	req := generateRequest{}
	if r.ContentLength > 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respondError(w, http.StatusBadRequest, "Invalid request body")
			return
		}
	}

	result, err := h.schedules.Generate(r.Context(), service.GenerateInput{
		YearMonth: ym,
		NormHours: req.NormHours,
		Vacations: req.Vacations,
	})
	if err != nil {
		var cfgErr *engine.ConfigurationError
		switch {
		case errors.As(err, &cfgErr):
			respondError(w, http.StatusBadRequest, cfgErr.Error())
		case errors.Is(err, service.ErrNoEmployees):
			respondError(w, http.StatusUnprocessableEntity, err.Error())
		default:
			respondError(w, http.StatusInternalServerError, "Failed to generate schedule")
		}
		return
	}
	respondJSON(w, http.StatusOK, result)
}

type draftRequest struct {
	Edits []struct {
		EmployeeCode string  `json:"employee_code"`
		Day          int     `json:"day"`
		NewCode      *string `json:"new_code"`
		Op           string  `json:"op"`
	} `json:"edits"`
}

// ApplyDraft stores pending editor overrides.
func (h *ScheduleHandler) ApplyDraft(w http.ResponseWriter, r *http.Request) {
	ym := chi.URLParam(r, "ym")
	var req draftRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	edits := make([]model.DraftEdit, 0, len(req.Edits))
	for _, e := range req.Edits {
		op := e.Op
		if op == "" {
			op = "edit"
		}
		edits = append(edits, model.DraftEdit{
			EmployeeCode: e.EmployeeCode,
			Day:          e.Day,
			NewCode:      e.NewCode,
			Op:           op,
		})
	}
	if err := h.schedules.ApplyDraft(r.Context(), ym, edits); err != nil {
		var cfgErr *engine.ConfigurationError
		if errors.As(err, &cfgErr) {
			respondError(w, http.StatusBadRequest, cfgErr.Error())
			return
		}
		respondError(w, http.StatusInternalServerError, "Failed to store draft")
		return
	}
	respondJSON(w, http.StatusAccepted, map[string]int{"accepted": len(edits)})
}

// CommitDraft folds pending edits into the stored matrix.
func (h *ScheduleHandler) CommitDraft(w http.ResponseWriter, r *http.Request) {
	ym := chi.URLParam(r, "ym")
	applied, err := h.schedules.CommitDraft(r.Context(), ym)
	if err != nil {
		if errors.Is(err, service.ErrMonthNotFound) {
			respondError(w, http.StatusNotFound, "Month has no stored schedule")
			return
		}
		respondError(w, http.StatusInternalServerError, "Failed to commit draft")
		return
	}
	respondJSON(w, http.StatusOK, map[string]int{"applied": applied})
}
