package handler

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/vkarev/rotagen/internal/service"
)

// ReportHandler serves report downloads for stored months.
type ReportHandler struct {
	reports *service.ReportService
}

// NewReportHandler creates a new report handler.
func NewReportHandler(reports *service.ReportService) *ReportHandler {
	return &ReportHandler{reports: reports}
}

func (h *ReportHandler) serve(w http.ResponseWriter, ym string, data []byte, err error, contentType, name string) {
	if err != nil {
		if errors.Is(err, service.ErrMonthNotFound) {
			respondError(w, http.StatusNotFound, "Month has no stored schedule")
			return
		}
		respondError(w, http.StatusInternalServerError, "Failed to render report")
		return
	}
	respondFile(w, contentType, ym+"_"+name, data)
}

// Workbook serves the styled XLSX grid.
func (h *ReportHandler) Workbook(w http.ResponseWriter, r *http.Request) {
	ym := chi.URLParam(r, "ym")
	data, err := h.reports.Workbook(r.Context(), ym)
	h.serve(w, ym, data, err, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", "schedule.xlsx")
}

// CSVGrid serves the plain CSV grid.
func (h *ReportHandler) CSVGrid(w http.ResponseWriter, r *http.Request) {
	ym := chi.URLParam(r, "ym")
	data, err := h.reports.CSVGrid(r.Context(), ym)
	h.serve(w, ym, data, err, "text/csv; charset=utf-8", "grid.csv")
}

// EmployeeMetrics serves per-employee hour metrics.
func (h *ReportHandler) EmployeeMetrics(w http.ResponseWriter, r *http.Request) {
	ym := chi.URLParam(r, "ym")
	data, err := h.reports.EmployeeMetricsCSV(r.Context(), ym)
	h.serve(w, ym, data, err, "text/csv; charset=utf-8", "metrics_employees.csv")
}

// DayMetrics serves per-day headcounts.
func (h *ReportHandler) DayMetrics(w http.ResponseWriter, r *http.Request) {
	ym := chi.URLParam(r, "ym")
	data, err := h.reports.DayMetricsCSV(r.Context(), ym)
	h.serve(w, ym, data, err, "text/csv; charset=utf-8", "metrics_days.csv")
}

// Pairs serves the pair overlap table.
func (h *ReportHandler) Pairs(w http.ResponseWriter, r *http.Request) {
	ym := chi.URLParam(r, "ym")
	data, err := h.reports.PairsCSV(r.Context(), ym)
	h.serve(w, ym, data, err, "text/csv; charset=utf-8", "pairs.csv")
}
