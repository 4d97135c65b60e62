package worker

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"github.com/swellbot/swellbot/internal/forecast"
)

// WarmJob pre-warms the forecast cache for the configured surf spots so
// chat traffic hits warm entries instead of the upstream APIs.
type WarmJob struct {
	config  WarmConfig
	logger  zerolog.Logger
	service *forecast.Service

	metrics *warmMetrics
}

// WarmMetrics is a snapshot of warm job statistics.
type WarmMetrics struct {
	TotalRuns       int64
	SuccessfulWarms int64
	FailedWarms     int64
	LastRunAt       time.Time
	LastRunDuration time.Duration
	TotalDuration   time.Duration
}

type warmMetrics struct {
	mu sync.RWMutex

	totalRuns       int64
	successfulWarms int64
	failedWarms     int64
	lastRunAt       time.Time
	lastRunDuration time.Duration
	totalDuration   time.Duration
}

// WarmJobConfig holds configuration for creating a WarmJob.
type WarmJobConfig struct {
	Config  WarmConfig
	Logger  zerolog.Logger
	Service *forecast.Service
}

// NewWarmJob creates a new warm job processor.
func NewWarmJob(cfg WarmJobConfig) *WarmJob {
	config := cfg.Config
	if len(config.Targets) == 0 {
		config = DefaultWarmConfig()
	}
	if config.Concurrency <= 0 {
		config.Concurrency = 3
	}
	if config.Timeout <= 0 {
		config.Timeout = 30 * time.Second
	}
	if len(config.Days) == 0 {
		config.Days = []string{"today", "tomorrow"}
	}

	return &WarmJob{
		config:  config,
		logger:  cfg.Logger,
		service: cfg.Service,
		metrics: &warmMetrics{},
	}
}

// WarmResult contains the result of a warm run.
type WarmResult struct {
	StartTime     time.Time
	EndTime       time.Time
	Duration      time.Duration
	TotalRequests int
	Successful    int
	Failed        int
	Errors        []WarmError
}

// WarmError represents an error during a warm run.
type WarmError struct {
	Spot  string
	When  string
	Error string
}

// Run executes the warm job for all configured spots and days.
func (j *WarmJob) Run(ctx context.Context) *WarmResult {
	startTime := time.Now()
	result := &WarmResult{
		StartTime:     startTime,
		TotalRequests: j.config.TotalRequests(),
	}

	j.logger.Info().
		Int("total_requests", result.TotalRequests).
		Int("concurrency", j.config.Concurrency).
		Msg("starting forecast warm job")

	requests := j.config.allRequests()

	requestsChan := make(chan warmRequest, len(requests))
	resultsChan := make(chan warmOutcome, len(requests))

	var wg sync.WaitGroup
	for i := 0; i < j.config.Concurrency; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			j.warmWorker(ctx, requestsChan, resultsChan)
		}()
	}

	for _, req := range requests {
		requestsChan <- req
	}
	close(requestsChan)

	go func() {
		wg.Wait()
		close(resultsChan)
	}()

	for outcome := range resultsChan {
		if outcome.err == nil {
			result.Successful++
			atomic.AddInt64(&j.metrics.successfulWarms, 1)
		} else {
			result.Failed++
			atomic.AddInt64(&j.metrics.failedWarms, 1)
			result.Errors = append(result.Errors, WarmError{
				Spot:  outcome.req.Spot,
				When:  outcome.req.When,
				Error: outcome.err.Error(),
			})
		}
	}

	result.EndTime = time.Now()
	result.Duration = result.EndTime.Sub(startTime)

	j.updateMetrics(result)

	j.logger.Info().
		Dur("duration", result.Duration).
		Int("successful", result.Successful).
		Int("failed", result.Failed).
		Msg("forecast warm job completed")

	return result
}

type warmOutcome struct {
	req warmRequest
	err error
}

func (j *WarmJob) warmWorker(ctx context.Context, requests <-chan warmRequest, results chan<- warmOutcome) {
	for req := range requests {
		select {
		case <-ctx.Done():
			return
		default:
			results <- warmOutcome{req: req, err: j.warmOne(ctx, req)}
		}
	}
}

func (j *WarmJob) warmOne(ctx context.Context, req warmRequest) error {
	reqCtx, cancel := context.WithTimeout(ctx, j.config.Timeout)
	defer cancel()

	_, err := j.service.Forecast(reqCtx, forecast.Request{
		Location: req.Spot,
		When:     req.When,
	})
	if err != nil {
		j.logger.Warn().
			Err(err).
			Str("spot", req.Spot).
			Str("when", req.When).
			Msg("forecast warm failed")
	}
	return err
}

func (j *WarmJob) updateMetrics(result *WarmResult) {
	j.metrics.mu.Lock()
	defer j.metrics.mu.Unlock()

	j.metrics.totalRuns++
	j.metrics.lastRunAt = result.EndTime
	j.metrics.lastRunDuration = result.Duration
	j.metrics.totalDuration += result.Duration
}

// Metrics returns a snapshot of the job's counters.
func (j *WarmJob) Metrics() WarmMetrics {
	j.metrics.mu.RLock()
	defer j.metrics.mu.RUnlock()

	return WarmMetrics{
		TotalRuns:       j.metrics.totalRuns,
		SuccessfulWarms: atomic.LoadInt64(&j.metrics.successfulWarms),
		FailedWarms:     atomic.LoadInt64(&j.metrics.failedWarms),
		LastRunAt:       j.metrics.lastRunAt,
		LastRunDuration: j.metrics.lastRunDuration,
		TotalDuration:   j.metrics.totalDuration,
	}
}
