package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/wolfman30/clinic-scheduler/internal/http/handlers"
	httpmiddleware "github.com/wolfman30/clinic-scheduler/internal/http/middleware"
	"github.com/wolfman30/clinic-scheduler/pkg/logging"
)

// Config holds router configuration
type Config struct {
	Logger         *logging.Logger
	VoiceTools     *handlers.VoiceToolsHandler
	Tools          *handlers.ToolsHandler
	MetricsHandler http.Handler

	// ToolsJWTSecret protects tool endpoints when set.
	ToolsJWTSecret string
	RateLimitRPS   float64
	RateLimitBurst int
}

// New creates a new Chi router with all routes configured
func New(cfg *Config) http.Handler {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	if cfg.Logger != nil {
		r.Use(httpmiddleware.RequestLogger(cfg.Logger))
	}

	// Public endpoints
	r.Group(func(public chi.Router) {
		public.Get("/health", handlers.HealthCheck)
		if cfg.MetricsHandler != nil {
			public.Handle("/metrics", cfg.MetricsHandler)
		}
	})

	// Tool endpoints (rate limited, optionally JWT protected)
	r.Group(func(protected chi.Router) {
		protected.Use(httpmiddleware.RateLimit(cfg.RateLimitRPS, cfg.RateLimitBurst))
		protected.Use(httpmiddleware.ToolsJWT(cfg.ToolsJWTSecret))

		if cfg.VoiceTools != nil {
			protected.Post("/webhooks/voice/tools", cfg.VoiceTools.HandleToolCall)
		}
		if cfg.Tools != nil {
			protected.Route("/tools", func(r chi.Router) {
				r.Get("/", cfg.Tools.ListTools)
				r.Post("/{name}", cfg.Tools.InvokeTool)
			})
		}
	})

	return r
}
