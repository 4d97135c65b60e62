package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"cloud.google.com/go/pubsub/v2"
	"github.com/rs/zerolog"

	"github.com/swellbot/swellbot/internal/knowledge"
)

// PubSubHandler handles Pub/Sub messages for the worker.
type PubSubHandler struct {
	client           *pubsub.Client
	subscriber       *pubsub.Subscriber
	subscriptionName string
	warmJob          *WarmJob
	indexer          *knowledge.Indexer
	logger           zerolog.Logger
}

// PubSubConfig holds configuration for the Pub/Sub handler.
type PubSubConfig struct {
	ProjectID        string
	SubscriptionName string
	WarmJob          *WarmJob
	Indexer          *knowledge.Indexer
	Logger           zerolog.Logger
}

// JobMessage represents a background job trigger.
type JobMessage struct {
	JobType string `json:"job_type"`
}

// Job types accepted on the subscription.
const (
	JobForecastWarm     = "forecast_warm"
	JobKnowledgeReindex = "knowledge_reindex"
	JobHealthCheck      = "health_check"
)

// NewPubSubHandler creates a new Pub/Sub handler.
func NewPubSubHandler(ctx context.Context, cfg PubSubConfig) (*PubSubHandler, error) {
	client, err := pubsub.NewClient(ctx, cfg.ProjectID)
	if err != nil {
		return nil, fmt.Errorf("creating pubsub client: %w", err)
	}

	subscriber := client.Subscriber(cfg.SubscriptionName)

	// Configure receive settings.
	subscriber.ReceiveSettings.MaxOutstandingMessages = 10
	subscriber.ReceiveSettings.MaxExtension = 10 * time.Minute

	return &PubSubHandler{
		client:           client,
		subscriber:       subscriber,
		subscriptionName: cfg.SubscriptionName,
		warmJob:          cfg.WarmJob,
		indexer:          cfg.Indexer,
		logger:           cfg.Logger,
	}, nil
}

// Start begins processing Pub/Sub messages.
func (h *PubSubHandler) Start(ctx context.Context) error {
	h.logger.Info().
		Str("subscription", h.subscriptionName).
		Msg("starting pubsub handler")

	return h.subscriber.Receive(ctx, func(ctx context.Context, msg *pubsub.Message) {
		h.handleMessage(ctx, msg)
	})
}

// Close closes the Pub/Sub client.
func (h *PubSubHandler) Close() error {
	return h.client.Close()
}

func (h *PubSubHandler) handleMessage(ctx context.Context, msg *pubsub.Message) {
	startTime := time.Now()

	logger := h.logger.With().
		Str("message_id", msg.ID).
		Str("publish_time", msg.PublishTime.Format(time.RFC3339)).
		Logger()

	logger.Debug().Msg("received pubsub message")

	var jobMsg JobMessage
	if err := json.Unmarshal(msg.Data, &jobMsg); err != nil {
		logger.Error().Err(err).Msg("failed to parse message")
		msg.Nack()
		return
	}

	var err error
	switch jobMsg.JobType {
	case JobForecastWarm:
		err = h.handleForecastWarm(ctx)
	case JobKnowledgeReindex:
		err = h.handleKnowledgeReindex(ctx)
	case JobHealthCheck:
		err = h.handleHealthCheck(ctx)
	default:
		logger.Warn().Str("job_type", jobMsg.JobType).Msg("unknown job type")
		msg.Ack() // Ack unknown messages to prevent redelivery
		return
	}

	if err != nil {
		logger.Error().Err(err).Msg("job failed")
		msg.Nack()
		return
	}

	duration := time.Since(startTime)
	logger.Info().
		Str("job_type", jobMsg.JobType).
		Dur("duration", duration).
		Msg("job completed successfully")

	msg.Ack()
}

func (h *PubSubHandler) handleForecastWarm(ctx context.Context) error {
	if h.warmJob == nil {
		return fmt.Errorf("warm job not configured")
	}

	result := h.warmJob.Run(ctx)

	h.logger.Info().
		Dur("duration", result.Duration).
		Int("successful", result.Successful).
		Int("failed", result.Failed).
		Int("total_requests", result.TotalRequests).
		Msg("forecast warm completed")

	// Consider it successful if more than half succeeded.
	if result.Failed > result.Successful {
		return fmt.Errorf("too many warm failures: %d/%d", result.Failed, result.TotalRequests)
	}

	return nil
}

func (h *PubSubHandler) handleKnowledgeReindex(ctx context.Context) error {
	if h.indexer == nil {
		return fmt.Errorf("indexer not configured")
	}

	result, err := h.indexer.Reindex(ctx)
	if err != nil {
		return fmt.Errorf("reindex: %w", err)
	}

	h.logger.Info().
		Dur("duration", result.Duration).
		Int("total", result.Total).
		Int("uploaded", result.Uploaded).
		Int("replaced", result.Replaced).
		Int("failed", result.Failed).
		Msg("knowledge reindex completed")

	if result.Failed > 0 && result.Uploaded == 0 {
		return fmt.Errorf("reindex uploaded nothing: %d failures", result.Failed)
	}

	return nil
}

func (h *PubSubHandler) handleHealthCheck(ctx context.Context) error {
	h.logger.Debug().Msg("running health check")

	if h.warmJob == nil {
		return fmt.Errorf("warm job not configured")
	}

	// Warm a single spot for today to verify provider connectivity.
	healthCheckJob := NewWarmJob(WarmJobConfig{
		Config: WarmConfig{
			Targets:     []WarmTarget{{Name: "Bondi Beach", Priority: 1}},
			Days:        []string{"today"},
			Concurrency: 1,
			Timeout:     10 * time.Second,
		},
		Logger:  h.logger,
		Service: h.warmJob.service,
	})

	result := healthCheckJob.Run(ctx)

	if result.Failed > 0 {
		return fmt.Errorf("health check failed: %d errors", result.Failed)
	}

	h.logger.Debug().Msg("health check passed")
	return nil
}
