// Package main is the entry point for the rotagen API server.
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/vkarev/rotagen/internal/auth"
	"github.com/vkarev/rotagen/internal/config"
	"github.com/vkarev/rotagen/internal/handler"
	"github.com/vkarev/rotagen/internal/middleware"
	"github.com/vkarev/rotagen/internal/repository"
	"github.com/vkarev/rotagen/internal/service"
	"github.com/vkarev/rotagen/internal/workcal"
)

func main() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}
	if level, err := zerolog.ParseLevel(cfg.LogLevel); err == nil {
		zerolog.SetGlobalLevel(level)
	}
	if cfg.IsDevelopment() {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}

	jwtManager := auth.NewJWTManager([]byte(cfg.JWT.Secret), "rotagen-api", cfg.JWT.Expiry)
	if cfg.IsDevelopment() {
		log.Info().Msg("Running in dev mode - use /api/v1/auth/dev/login")
	}

	db, err := repository.NewDB(cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error().Err(err).Msg("Failed to close database connection")
		}
	}()
	if err := db.Migrate(); err != nil {
		log.Fatal().Err(err).Msg("Failed to run migrations")
	}

	var calendar *workcal.Calendar
	if cfg.CalendarPath != "" {
		calendar, err = workcal.Load(cfg.CalendarPath)
		if err != nil {
			log.Fatal().Err(err).Str("path", cfg.CalendarPath).Msg("Failed to load production calendar")
		}
		log.Info().Str("path", cfg.CalendarPath).Msg("Production calendar loaded")
	}

	// Repositories
	employeeRepo := repository.NewEmployeeRepository(db)
	scheduleRepo := repository.NewScheduleRepository(db)
	settingRepo := repository.NewSettingRepository(db)

	// Services
	settingsService := service.NewSettingsService(settingRepo)
	employeeService := service.NewEmployeeService(employeeRepo)
	var cal service.MonthCalendar
	if calendar != nil {
		cal = calendar
	}
	scheduleService := service.NewScheduleService(employeeRepo, scheduleRepo, settingsService, cal)
	reportService := service.NewReportService(scheduleService, employeeRepo, cal)

	// Handlers
	handlers := handler.Handlers{
		Auth:       handler.NewAuthHandler(cfg, jwtManager),
		Employees:  handler.NewEmployeeHandler(employeeService),
		Schedules:  handler.NewScheduleHandler(scheduleService),
		Settings:   handler.NewSettingsHandler(settingsService),
		ShiftTypes: handler.NewShiftTypeHandler(),
		Reports:    handler.NewReportHandler(reportService),
	}

	r := chi.NewRouter()
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.RequestLogger)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORSAllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	r.Handle("/metrics", promhttp.Handler())
	handler.RegisterRoutes(r, handlers, jwtManager, cfg.IsDevelopment())

	srv := &http.Server{
		Addr:              cfg.ListenAddr(),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info().Str("addr", cfg.ListenAddr()).Msg("Server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("Shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("Graceful shutdown failed")
	}
}
