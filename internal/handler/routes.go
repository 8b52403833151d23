package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/vkarev/rotagen/internal/auth"
	"github.com/vkarev/rotagen/internal/middleware"
)

// Handlers bundles everything the router needs.
type Handlers struct {
	Auth       *AuthHandler
	Employees  *EmployeeHandler
	Schedules  *ScheduleHandler
	Settings   *SettingsHandler
	ShiftTypes *ShiftTypeHandler
	Reports    *ReportHandler
}

// RegisterRoutes wires the API under /api/v1. devMode exposes the dev login.
func RegisterRoutes(r chi.Router, h Handlers, jm *auth.JWTManager, devMode bool) {
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			if devMode {
				r.Get("/dev/login", h.Auth.DevLogin)
			}
			r.Post("/login", h.Auth.Login)
			r.Group(func(r chi.Router) {
				r.Use(middleware.AuthMiddleware(jm))
				r.Get("/me", h.Auth.Me)
			})
		})

		r.Group(func(r chi.Router) {
			r.Use(middleware.AuthMiddleware(jm))

			r.Route("/employees", func(r chi.Router) {
				r.Get("/", h.Employees.List)
				r.Post("/", h.Employees.Create)
				r.Get("/{id}", h.Employees.Get)
				r.Patch("/{id}", h.Employees.Update)
				r.Delete("/{id}", h.Employees.Delete)
			})

			r.Get("/shift-types", h.ShiftTypes.List)

			r.Route("/settings", func(r chi.Router) {
				r.Get("/", h.Settings.Get)
				r.Put("/", h.Settings.Put)
			})

			r.Route("/months/{ym}", func(r chi.Router) {
				r.Get("/matrix", h.Schedules.Matrix)
				r.Post("/generate", h.Schedules.Generate)
				r.Post("/draft", h.Schedules.ApplyDraft)
				r.Post("/draft/commit", h.Schedules.CommitDraft)

				r.Get("/report.xlsx", h.Reports.Workbook)
				r.Get("/grid.csv", h.Reports.CSVGrid)
				r.Get("/metrics/employees.csv", h.Reports.EmployeeMetrics)
				r.Get("/metrics/days.csv", h.Reports.DayMetrics)
				r.Get("/pairs.csv", h.Reports.Pairs)
			})
		})
	})
}
