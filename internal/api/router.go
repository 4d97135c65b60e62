// Package api provides the HTTP API for Swellbot.
package api

import (
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/swellbot/swellbot/internal/api/handler"
	"github.com/swellbot/swellbot/internal/api/middleware"
	"github.com/swellbot/swellbot/internal/chat"
	"github.com/swellbot/swellbot/internal/forecast"
	"github.com/swellbot/swellbot/internal/knowledge"
	"github.com/swellbot/swellbot/internal/provider/resilience"
)

// RouterConfig holds configuration for the router.
type RouterConfig struct {
	Version          string
	BuildTime        string
	Logger           zerolog.Logger
	ServiceName      string
	Metrics          *middleware.Metrics
	ChatService      *chat.Service
	ForecastService  *forecast.Service
	KnowledgeService *knowledge.Service
	Registry         *resilience.Registry
	DB               handler.Pinger
}

// NewRouter creates a new chi router with all API routes configured.
func NewRouter(cfg RouterConfig) *chi.Mux {
	r := chi.NewRouter()

	serviceName := cfg.ServiceName
	if serviceName == "" {
		serviceName = "swellbot-api"
	}

	// Global middleware - order matters
	r.Use(middleware.RequestID)            // Generate/propagate request ID first
	r.Use(middleware.Tracing(serviceName)) // Distributed tracing
	if cfg.Metrics != nil {
		r.Use(cfg.Metrics.Middleware()) // HTTP metrics
	}
	r.Use(middleware.Logger(cfg.Logger))   // Structured logging
	r.Use(middleware.Recovery(cfg.Logger)) // Panic recovery
	r.Use(chimiddleware.RealIP)            // Real IP extraction
	r.Use(middleware.SecurityHeaders)      // Security headers (HSTS, CSP, etc.)
	r.Use(middleware.RequireTLS)           // TLS enforcement (enabled via REQUIRE_TLS=true)
	r.Use(middleware.ContentTypeJSON)      // JSON content type
	r.Use(middleware.RequireJSON)          // Reject non-JSON request bodies

	// Initialize handlers
	opsHandler := handler.NewOpsHandler(cfg.Version, cfg.BuildTime, cfg.Registry, cfg.DB)
	chatHandler := handler.NewChatHandler(cfg.ChatService, cfg.Logger)
	sessionHandler := handler.NewSessionHandler(cfg.ChatService)
	forecastHandler := handler.NewForecastHandler(cfg.ForecastService, cfg.Logger)
	knowledgeHandler := handler.NewKnowledgeHandler(cfg.KnowledgeService, cfg.Logger)

	// Rate limit middleware for different endpoint categories
	chatRateLimit := middleware.RateLimitByIP(middleware.ChatRateLimit)         // 20 req/min
	forecastRateLimit := middleware.RateLimitByIP(middleware.ForecastRateLimit) // 60 req/min

	// API v1 routes
	r.Route("/v1", func(r chi.Router) {
		// Ops endpoints (public, unthrottled for probes)
		r.Route("/ops", func(r chi.Router) {
			r.Get("/health", opsHandler.HealthCheck)
			r.Get("/ready", opsHandler.ReadinessCheck)
			r.Get("/status", opsHandler.SystemStatus)
		})

		// Chat endpoints - each turn fans out to the LLM
		r.Group(func(r chi.Router) {
			r.Use(chatRateLimit)
			r.Post("/chat", chatHandler.Chat)
			r.Post("/chat/stream", chatHandler.ChatStream)
		})

		// Session history
		r.Route("/sessions/{sessionId}", func(r chi.Router) {
			r.Use(forecastRateLimit)
			r.Get("/history", sessionHandler.History)
			r.Delete("/", sessionHandler.Delete)
		})

		// Direct forecast and knowledge search
		r.With(forecastRateLimit).Get("/forecast", forecastHandler.Get)
		r.With(forecastRateLimit).Post("/knowledge/search", knowledgeHandler.Search)
	})

	return r
}
