// cmd/main.go is the application entry point.
// It wires together all layers and starts the HTTP server.
package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/lucas-cardozo/turnos-service/internal/config"
	"github.com/lucas-cardozo/turnos-service/internal/database"
	"github.com/lucas-cardozo/turnos-service/internal/handler"
	"github.com/lucas-cardozo/turnos-service/internal/logger"
	"github.com/lucas-cardozo/turnos-service/internal/metrics"
	"github.com/lucas-cardozo/turnos-service/internal/notify"
	"github.com/lucas-cardozo/turnos-service/internal/repository"
	"github.com/lucas-cardozo/turnos-service/internal/service"
)

func main() {
	ctx := context.Background()
	cfg := config.Load()

	zlog, err := logger.New(cfg.Log)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer zlog.Sync()

	loc, err := time.LoadLocation(cfg.Booking.Timezone)
	if err != nil {
		zlog.Fatal("invalid booking timezone", zap.String("tz", cfg.Booking.Timezone), zap.Error(err))
	}

	collector := metrics.NewCollector(cfg.App.Name)

	// ── 1. Connect to PostgreSQL and bootstrap the schema ─────────────────
	pool, err := database.NewPool(ctx, cfg.Database, zlog)
	if err != nil {
		zlog.Fatal("database", zap.Error(err))
	}
	defer pool.Close()
	if err := database.EnsureSchema(ctx, pool); err != nil {
		zlog.Fatal("schema", zap.Error(err))
	}
	zlog.Info("connected to postgres", zap.String("db", cfg.Database.Name))

	// ── 2. Wire up layers ────────────────────────────────────────────────
	var notifier notify.Notifier
	if cfg.SMTP.Enabled() {
		notifier = notify.NewSMTPNotifier(cfg.SMTP, zlog)
		zlog.Info("smtp notifier enabled", zap.String("host", cfg.SMTP.Host))
	} else {
		notifier = notify.NewLogNotifier(zlog)
		zlog.Info("smtp not configured, using log notifier")
	}

	repo := repository.NewReservationRepository(pool)
	svc := service.NewSchedulingService(repo, notifier, zlog, service.Options{
		Location:           loc,
		BusinessHoursStart: cfg.Booking.BusinessHoursStart,
		BusinessHoursEnd:   cfg.Booking.BusinessHoursEnd,
		Metrics:            collector,
	})
	turnoHandler := handler.NewTurnoHandler(svc)

	// ── 3. Build the router ───────────────────────────────────────────────
	r := chi.NewRouter()

	r.Use(chimiddleware.Recoverer) // recover from panics, return 500
	r.Use(chimiddleware.RequestID) // attach request IDs
	r.Use(chimiddleware.RealIP)    // trust X-Forwarded-For
	r.Use(handler.Logger(zlog))    // structured access log
	r.Use(handler.Metrics(collector))
	r.Use(handler.CORS)

	r.Get("/health", handler.HealthCheck)
	r.Handle("/metrics", metrics.Handler())

	r.Route("/turnos", func(r chi.Router) {
		r.Get("/availability", turnoHandler.CheckAvailability)
		r.Post("/", turnoHandler.Reserve)
		r.Get("/", turnoHandler.ListReservations)
		r.Get("/{id}", turnoHandler.GetReservation)
		r.Delete("/{id}", turnoHandler.Cancel)
	})

	// ── 4. Start server with graceful shutdown ────────────────────────────
	srv := &http.Server{
		Addr:         cfg.Server.Address(),
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		zlog.Info("server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zlog.Fatal("server error", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	zlog.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		zlog.Fatal("graceful shutdown failed", zap.Error(err))
	}
	zlog.Info("server stopped")
}
