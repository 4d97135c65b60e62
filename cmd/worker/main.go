// Package main provides the entrypoint for the Swellbot background worker.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/swellbot/swellbot/internal/forecast"
	forecastmeteo "github.com/swellbot/swellbot/internal/forecast/openmeteo"
	geocodemeteo "github.com/swellbot/swellbot/internal/geocoding/openmeteo"
	"github.com/swellbot/swellbot/internal/knowledge"
	"github.com/swellbot/swellbot/internal/knowledge/vectorstore"
	"github.com/swellbot/swellbot/internal/provider/resilience"
	"github.com/swellbot/swellbot/internal/worker"
)

// Version and BuildTime are set at compile time via ldflags
var (
	Version   = "dev"
	BuildTime = "unknown"
)

func main() {
	const serviceName = "swellbot-worker"

	log := zerolog.New(os.Stdout).
		With().
		Timestamp().
		Str("service", serviceName).
		Str("version", Version).
		Logger()

	log.Info().
		Str("build_time", BuildTime).
		Msg("starting Swellbot worker")

	port := os.Getenv("APP_PORT")
	if port == "" {
		port = "8080"
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	registry := resilience.NewRegistry()

	// Forecast service for cache warming
	meteoCfg := resilience.DefaultClientConfig(forecastmeteo.ProviderName)
	meteoCfg.Registry = registry
	meteoClient := forecastmeteo.NewClient(forecastmeteo.ClientConfig{
		HTTPClient: resilience.NewClient(meteoCfg),
		Logger:     log,
	})

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
	})

	warmJob := worker.NewWarmJob(worker.WarmJobConfig{
		Logger:  log,
		Service: forecastService,
	})

	// Knowledge indexer for reindex jobs
	var indexer *knowledge.Indexer
	apiKey := os.Getenv("OPENAI_API_KEY")
	if apiKey != "" {
		storeClient := vectorstore.NewClient(vectorstore.ClientConfig{
			APIKey:   apiKey,
			Registry: registry,
			Logger:   log,
		})
		indexer = knowledge.NewIndexer(knowledge.IndexerConfig{
			Store:     storeClient,
			StoreName: envOrDefault("VECTOR_STORE_NAME", "surf-knowledge"),
			DocsDir:   envOrDefault("DOCS_DIR", "docs"),
			Logger:    log,
		})
	} else {
		log.Warn().Msg("OPENAI_API_KEY not set - knowledge reindex jobs will fail")
	}

	// Health check server for the container runtime
	mux := http.NewServeMux()
	mux.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		fmt.Fprintf(w, `{"status":"healthy","version":"%s"}`, Version)
	})

	server := &http.Server{
		Addr:         ":" + port,
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	go func() {
		log.Info().Str("addr", server.Addr).Msg("health check server listening")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error().Err(err).Msg("health server error")
		}
	}()

	// Pub/Sub job subscription, or a local ticker when not configured
	projectID := os.Getenv("PUBSUB_PROJECT_ID")
	subscription := os.Getenv("PUBSUB_SUBSCRIPTION")

	if projectID != "" && subscription != "" {
		handler, err := worker.NewPubSubHandler(ctx, worker.PubSubConfig{
			ProjectID:        projectID,
			SubscriptionName: subscription,
			WarmJob:          warmJob,
			Indexer:          indexer,
			Logger:           log,
		})
		if err != nil {
			log.Fatal().Err(err).Msg("failed to create pubsub handler")
		}
		defer handler.Close()

		go func() {
			if err := handler.Start(ctx); err != nil && ctx.Err() == nil {
				log.Error().Err(err).Msg("pubsub handler stopped")
			}
		}()
	} else {
		log.Warn().Msg("pubsub not configured - warming on a local schedule")

		interval, err := time.ParseDuration(envOrDefault("WARM_INTERVAL", "30m"))
		if err != nil {
			interval = 30 * time.Minute
		}

		go func() {
			ticker := time.NewTicker(interval)
			defer ticker.Stop()

			warmJob.Run(ctx)
			for {
				select {
				case <-ctx.Done():
					return
				case <-ticker.C:
					warmJob.Run(ctx)
				}
			}
		}()
	}

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down worker")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("health server forced to shutdown")
	}

	log.Info().Msg("worker stopped")
}

func envOrDefault(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
