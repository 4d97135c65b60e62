package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/swellbot/swellbot/internal/api/models"
	"github.com/swellbot/swellbot/internal/api/response"
	"github.com/swellbot/swellbot/internal/provider/resilience"
)

// Pinger checks that a dependency is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// OpsHandler handles operational endpoints.
type OpsHandler struct {
	version   string
	buildTime string
	registry  *resilience.Registry
	db        Pinger
}

// NewOpsHandler creates a new OpsHandler. registry and db may be nil.
func NewOpsHandler(version, buildTime string, registry *resilience.Registry, db Pinger) *OpsHandler {
	return &OpsHandler{
		version:   version,
		buildTime: buildTime,
		registry:  registry,
		db:        db,
	}
}

// HealthCheck handles GET /v1/ops/health - liveness check.
func (h *OpsHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	health := models.Health{
		Status: models.HealthStatusOK,
		Time:   models.Timestamp(time.Now()),
		Details: map[string]interface{}{
			"version":   h.version,
			"buildTime": h.buildTime,
		},
	}
	response.JSON(w, r, http.StatusOK, health)
}

// ReadinessCheck handles GET /v1/ops/ready - readiness check. Pings the
// database when one is configured.
func (h *OpsHandler) ReadinessCheck(w http.ResponseWriter, r *http.Request) {
	if h.db != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		if err := h.db.Ping(ctx); err != nil {
			response.ServiceUnavailable(w, r, "database unreachable")
			return
		}
	}

	health := models.Health{
		Status: models.HealthStatusOK,
		Time:   models.Timestamp(time.Now()),
	}
	response.JSON(w, r, http.StatusOK, health)
}

// SystemStatus handles GET /v1/ops/status - provider circuit state and
// last success/failure per upstream.
func (h *OpsHandler) SystemStatus(w http.ResponseWriter, r *http.Request) {
	now := models.Timestamp(time.Now())
	status := models.SystemStatus{
		Status: models.HealthStatusOK,
		Time:   now,
	}

	if h.registry != nil {
		for _, health := range h.registry.AllHealth() {
			providerStatus := models.ProviderStatus{
				Provider:     health.Name,
				Status:       models.HealthStatusOK,
				CircuitState: health.CircuitState.String(),
			}

			switch {
			case health.Degraded():
				providerStatus.Status = models.HealthStatusDegraded
				status.Status = models.HealthStatusDegraded
			case !health.Healthy():
				providerStatus.Status = models.HealthStatusFail
				status.Status = models.HealthStatusDegraded
			}

			if health.LastSuccessAt != nil {
				ts := models.Timestamp(*health.LastSuccessAt)
				providerStatus.LastSuccessAt = &ts
			}
			if health.LastFailureAt != nil {
				ts := models.Timestamp(*health.LastFailureAt)
				providerStatus.LastFailureAt = &ts
			}
			if health.LastError != "" {
				msg := health.LastError
				providerStatus.Message = &msg
			}

			status.Providers = append(status.Providers, providerStatus)
		}
	}

	response.JSON(w, r, http.StatusOK, status)
}
