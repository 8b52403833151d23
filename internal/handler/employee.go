package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/vkarev/rotagen/internal/repository"
	"github.com/vkarev/rotagen/internal/service"
)

// EmployeeHandler serves the roster CRUD.
type EmployeeHandler struct {
	employees *service.EmployeeService
}

// NewEmployeeHandler creates a new employee handler.
func NewEmployeeHandler(employees *service.EmployeeService) *EmployeeHandler {
	return &EmployeeHandler{employees: employees}
}

// List returns the roster. ?include_inactive=1 shows retired members too.
func (h *EmployeeHandler) List(w http.ResponseWriter, r *http.Request) {
	includeInactive := r.URL.Query().Get("include_inactive") == "1"
	emps, err := h.employees.List(r.Context(), includeInactive)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to list employees")
		return
	}
	respondJSON(w, http.StatusOK, emps)
}

// Get returns one employee by id.
func (h *EmployeeHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid employee ID")
		return
	}
	e, err := h.employees.GetByID(r.Context(), id)
	if err != nil {
		respondError(w, http.StatusNotFound, "Employee not found")
		return
	}
	respondJSON(w, http.StatusOK, e)
}

type createEmployeeRequest struct {
	Code        string  `json:"code"`
	Name        string  `json:"name"`
	IsTrainee   bool    `json:"is_trainee"`
	MentorCode  *string `json:"mentor_code"`
	YTDOvertime int     `json:"ytd_overtime"`
	SortOrder   int     `json:"sort_order"`
}

// Create adds a roster member.
func (h *EmployeeHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createEmployeeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	e, err := h.employees.Create(r.Context(), service.CreateEmployeeInput{
		Code:        req.Code,
		Name:        req.Name,
		IsTrainee:   req.IsTrainee,
		MentorCode:  req.MentorCode,
		YTDOvertime: req.YTDOvertime,
		SortOrder:   req.SortOrder,
	})
	switch {
	case errors.Is(err, service.ErrEmployeeCodeRequired), errors.Is(err, service.ErrEmployeeNameRequired):
		respondError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, repository.ErrEmployeeExists):
		respondError(w, http.StatusConflict, err.Error())
	case err != nil:
		respondError(w, http.StatusInternalServerError, "Failed to create employee")
	default:
		respondJSON(w, http.StatusCreated, e)
	}
}

type updateEmployeeRequest struct {
	Name        *string `json:"name"`
	IsTrainee   *bool   `json:"is_trainee"`
	MentorCode  *string `json:"mentor_code"`
	YTDOvertime *int    `json:"ytd_overtime"`
	SortOrder   *int    `json:"sort_order"`
	IsActive    *bool   `json:"is_active"`
}

// Update applies partial changes.
func (h *EmployeeHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid employee ID")
		return
	}
	var req updateEmployeeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	e, err := h.employees.Update(r.Context(), id, service.UpdateEmployeeInput{
		Name:        req.Name,
		IsTrainee:   req.IsTrainee,
		MentorCode:  req.MentorCode,
		YTDOvertime: req.YTDOvertime,
		SortOrder:   req.SortOrder,
		IsActive:    req.IsActive,
	})
	switch {
	case errors.Is(err, repository.ErrEmployeeNotFound):
		respondError(w, http.StatusNotFound, "Employee not found")
	case errors.Is(err, service.ErrEmployeeNameRequired):
		respondError(w, http.StatusBadRequest, err.Error())
	case err != nil:
		respondError(w, http.StatusInternalServerError, "Failed to update employee")
	default:
		respondJSON(w, http.StatusOK, e)
	}
}

// Delete removes a roster member.
func (h *EmployeeHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid employee ID")
		return
	}
	if err := h.employees.Delete(r.Context(), id); err != nil {
		if errors.Is(err, repository.ErrEmployeeNotFound) {
			respondError(w, http.StatusNotFound, "Employee not found")
			return
		}
		respondError(w, http.StatusInternalServerError, "Failed to delete employee")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
