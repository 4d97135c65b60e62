// Package main provides the entrypoint for the Swellbot API server.
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"github.com/swellbot/swellbot/internal/agent"
	"github.com/swellbot/swellbot/internal/agent/openai"
	"github.com/swellbot/swellbot/internal/api"
	"github.com/swellbot/swellbot/internal/api/middleware"
	"github.com/swellbot/swellbot/internal/chat"
	"github.com/swellbot/swellbot/internal/database"
	"github.com/swellbot/swellbot/internal/forecast"
	forecastmeteo "github.com/swellbot/swellbot/internal/forecast/openmeteo"
	geocodemeteo "github.com/swellbot/swellbot/internal/geocoding/openmeteo"
	"github.com/swellbot/swellbot/internal/knowledge"
	"github.com/swellbot/swellbot/internal/knowledge/vectorstore"
	"github.com/swellbot/swellbot/internal/provider/resilience"
	"github.com/swellbot/swellbot/internal/telemetry"
)

// Version and BuildTime are set at compile time via ldflags.
var (
	Version   = "dev"
	BuildTime = "unknown"
)

// systemPrompt is the persona handed to the model on every conversation.
const systemPrompt = `You are Swellbot, a friendly surf forecasting assistant for Australian beaches.
Use the get_surf_forecast tool for questions about surf conditions, and the
search_knowledge_base tool for questions about spots, hazards, and technique.
Keep answers short, practical, and in plain language. If the forecast rating
is low, say so honestly and suggest a better session or day when you can.`

func main() {
	const serviceName = "swellbot-api"

	// Setup structured logging
	log := zerolog.New(os.Stdout).
		With().
		Timestamp().
		Str("service", serviceName).
		Str("version", Version).
		Logger()

	log.Info().
		Str("build_time", BuildTime).
		Msg("starting Swellbot API")

	// Get configuration from environment
	port := envOrDefault("APP_PORT", "8080")
	otlpEndpoint := envOrDefault("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4317")
	env := envOrDefault("APP_ENV", "development")

	// Initialize OpenTelemetry
	ctx := context.Background()
	telemetryEnabled := os.Getenv("OTEL_ENABLED") == "true"

	tp, err := telemetry.Init(ctx, telemetry.Config{
		ServiceName:    serviceName,
		ServiceVersion: Version,
		Environment:    env,
		OTLPEndpoint:   otlpEndpoint,
		Enabled:        telemetryEnabled,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize telemetry")
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if shutdownErr := tp.Shutdown(shutdownCtx); shutdownErr != nil {
			log.Error().Err(shutdownErr).Msg("failed to shutdown telemetry")
		}
	}()

	if telemetryEnabled {
		log.Info().
			Str("otlp_endpoint", otlpEndpoint).
			Msg("OpenTelemetry initialized")
	}

	// Initialize metrics
	metrics, err := middleware.NewMetrics()
	if err != nil {
		log.Error().Err(err).Msg("failed to initialize metrics")
		os.Exit(1) //nolint:gocritic // intentional exit, telemetry cleanup is best-effort
	}

	providerMetrics, err := telemetry.NewProviderMetrics()
	if err != nil {
		log.Error().Err(err).Msg("failed to initialize provider metrics")
		os.Exit(1)
	}

	// Provider health registry shared by every upstream client
	registry := resilience.NewRegistry()

	// Open-Meteo forecast provider
	meteoCfg := resilience.DefaultClientConfig(forecastmeteo.ProviderName)
	meteoCfg.Registry = registry
	meteoClient := forecastmeteo.NewClient(forecastmeteo.ClientConfig{
		HTTPClient: resilience.NewClient(meteoCfg),
		Logger:     log,
	})

	// Open-Meteo geocoder
	geoCfg := resilience.DefaultClientConfig(geocodemeteo.ProviderName)
	geoCfg.Registry = registry
	geocoder := geocodemeteo.NewClient(geocodemeteo.ClientConfig{
		CountryCode: os.Getenv("GEOCODING_COUNTRY"),
		HTTPClient:  resilience.NewClient(geoCfg),
		Logger:      log,
	})

	forecastService := forecast.NewService(forecast.ServiceConfig{
		Provider: meteoClient,
		Geocoder: geocoder,
		Logger:   log,
		Metrics:  providerMetrics,
	})
	log.Info().Msg("forecast service initialized")

	// OpenAI chat completions provider
	apiKey := os.Getenv("OPENAI_API_KEY")
	if apiKey == "" {
		log.Warn().Msg("OPENAI_API_KEY not set - chat endpoints will fail")
	}
	llm := openai.NewClient(openai.ClientConfig{
		APIKey:   apiKey,
		Registry: registry,
		Logger:   log,
	})

	// Hosted vector store and knowledge search
	storeClient := vectorstore.NewClient(vectorstore.ClientConfig{
		APIKey:   apiKey,
		Registry: registry,
		Logger:   log,
	})
	knowledgeService := knowledge.NewService(knowledge.ServiceConfig{
		Store:     storeClient,
		StoreName: envOrDefault("VECTOR_STORE_NAME", "surf-knowledge"),
		Logger:    log,
	})
	log.Info().Msg("knowledge service initialized")

	// Agent with forecast and knowledge tools
	tools := agent.NewRegistry()
	tools.Register(forecast.NewTool(forecastService))
	tools.Register(knowledge.NewTool(knowledgeService))

	bot := agent.New(agent.Config{
		Provider:     llm,
		Model:        envOrDefault("OPENAI_MODEL", openai.DefaultModel),
		SystemPrompt: systemPrompt,
		Tools:        tools,
		Logger:       log,
	})

	// Session storage: Postgres when configured, in-memory otherwise
	var chatRepo chat.Repository
	var db *pgxpool.Pool
	if os.Getenv("DATABASE_URL") != "" || os.Getenv("DB_HOST") != "" {
		dbConfig := database.ConfigFromEnv()
		pool, err := database.Connect(ctx, dbConfig)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to connect to database")
		}
		defer pool.Close()
		if err := database.Migrate(ctx, pool); err != nil {
			log.Fatal().Err(err).Msg("failed to migrate database")
		}
		chatRepo = chat.NewPostgresRepository(pool)
		db = pool
		log.Info().
			Str("database", dbConfig.Database).
			Msg("database connected")
	} else {
		chatRepo = chat.NewInMemoryRepository()
		log.Warn().Msg("no database configured - sessions are in-memory only")
	}

	chatService := chat.NewService(chat.ServiceConfig{
		Repo:   chatRepo,
		Agent:  bot,
		Logger: log,
	})
	log.Info().Msg("chat service initialized")

	// Create router with configuration
	routerCfg := api.RouterConfig{
		Version:          Version,
		BuildTime:        BuildTime,
		Logger:           log,
		ServiceName:      serviceName,
		Metrics:          metrics,
		ChatService:      chatService,
		ForecastService:  forecastService,
		KnowledgeService: knowledgeService,
		Registry:         registry,
	}
	if db != nil {
		routerCfg.DB = db
	}
	router := api.NewRouter(routerCfg)

	// Create HTTP server
	server := &http.Server{
		Addr:         ":" + port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 120 * time.Second, // chat streaming holds the connection open
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		log.Info().
			Str("addr", server.Addr).
			Msg("server listening")

		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server")

	// Graceful shutdown with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server forced to shutdown")
		os.Exit(1)
	}

	log.Info().Msg("server stopped")
}

func envOrDefault(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
