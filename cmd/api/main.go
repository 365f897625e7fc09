package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/wolfman30/clinic-scheduler/internal/api/router"
	"github.com/wolfman30/clinic-scheduler/internal/app/bootstrap"
	appconfig "github.com/wolfman30/clinic-scheduler/internal/config"
	"github.com/wolfman30/clinic-scheduler/internal/http/handlers"
	"github.com/wolfman30/clinic-scheduler/internal/observability/metrics"
	"github.com/wolfman30/clinic-scheduler/internal/scheduling"
	"github.com/wolfman30/clinic-scheduler/internal/tools"
	"github.com/wolfman30/clinic-scheduler/pkg/logging"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	// Load configuration
	cfg := appconfig.Load()

	// Initialize logger
	logger := logging.New(cfg.LogLevel)
	logger.Info("starting clinic scheduler API server",
		"env", cfg.Env,
		"port", cfg.Port,
		"clinic", cfg.ClinicName,
		"timezone", cfg.ClinicTimezone,
		"calendar_backend", cfg.CalendarBackend,
	)

	metricsHandler, schedulerMetrics := setupMetrics()

	rt, err := bootstrap.BuildScheduler(context.Background(), cfg, schedulerMetrics, logger)
	if err != nil {
		logger.Error("failed to initialize scheduler", "error", err)
		os.Exit(1)
	}
	defer func() {
		if err := rt.Close(); err != nil {
			logger.Warn("failed to close runtime", "error", err)
		}
	}()

	// Create HTTP server
	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      buildHandler(cfg, rt.Scheduler, schedulerMetrics, metricsHandler, logger),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: cfg.CalendarTimeout + 15*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		logger.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")

	// Graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
		return
	}

	logger.Info("server stopped")
	fmt.Println("Server exited gracefully")
}

// setupMetrics registers scheduler metrics on a dedicated registry and returns
// the /metrics handler for it.
func setupMetrics() (http.Handler, *metrics.SchedulerMetrics) {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{}), metrics.NewSchedulerMetrics(reg)
}

func buildHandler(cfg *appconfig.Config, s *scheduling.Scheduler, m *metrics.SchedulerMetrics, metricsHandler http.Handler, logger *logging.Logger) http.Handler {
	registry := tools.NewRegistry(s, m, logger.Component("tools"))
	return router.New(&router.Config{
		Logger:         logger,
		VoiceTools:     handlers.NewVoiceToolsHandler(registry, logger),
		Tools:          handlers.NewToolsHandler(registry, logger),
		MetricsHandler: metricsHandler,
		ToolsJWTSecret: cfg.ToolsJWTSecret,
		RateLimitRPS:   cfg.RateLimitRPS,
		RateLimitBurst: cfg.RateLimitBurst,
	})
}
