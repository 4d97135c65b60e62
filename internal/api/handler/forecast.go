package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/rs/zerolog"

	"github.com/swellbot/swellbot/internal/api/models"
	"github.com/swellbot/swellbot/internal/api/response"
	"github.com/swellbot/swellbot/internal/forecast"
)

// ForecastHandler handles the direct forecast endpoint.
type ForecastHandler struct {
	service *forecast.Service
	logger  zerolog.Logger
}

// NewForecastHandler creates a new ForecastHandler.
func NewForecastHandler(service *forecast.Service, logger zerolog.Logger) *ForecastHandler {
	return &ForecastHandler{service: service, logger: logger}
}

// Get handles GET /v1/forecast?location=...&when=...
func (h *ForecastHandler) Get(w http.ResponseWriter, r *http.Request) {
	location := strings.TrimSpace(r.URL.Query().Get("location"))
	if location == "" {
		response.BadRequest(w, r, "location is required", []models.FieldError{
			{Field: "location", Message: "must not be empty", Code: "required"},
		})
		return
	}

	report, err := h.service.Forecast(r.Context(), forecast.Request{
		Location: location,
		When:     r.URL.Query().Get("when"),
	})
	if err != nil {
		switch {
		case errors.Is(err, forecast.ErrLocationNotFound):
			response.NotFound(w, r, "no surf spot found for "+location)
		case errors.Is(err, forecast.ErrBeyondHorizon):
			response.BadRequest(w, r, err.Error(), nil)
		case errors.Is(err, forecast.ErrProviderUnavailable):
			response.ServiceUnavailable(w, r, "forecast provider unavailable")
		default:
			h.logger.Error().Err(err).Str("location", location).Msg("forecast failed")
			response.InternalError(w, r, "failed to build forecast")
		}
		return
	}

	response.JSON(w, r, http.StatusOK, toForecastResponse(report))
}

func toForecastResponse(report *forecast.Report) models.ForecastResponse {
	out := models.ForecastResponse{
		Location:  report.Location,
		Lat:       report.Lat,
		Lon:       report.Lon,
		Date:      report.Date,
		DayLabel:  report.DayLabel,
		Sessions:  make([]models.ForecastSession, 0, len(report.Sessions)),
		Tides:     make([]models.TideEvent, 0, len(report.Tides)),
		Text:      report.Text,
		FetchedAt: models.Timestamp(report.FetchedAt),
	}

	for _, s := range report.Sessions {
		out.Sessions = append(out.Sessions, models.ForecastSession{
			Session:       s.Session.Label(),
			WaveHeight:    s.WaveHeight,
			WavePeriod:    s.WavePeriod,
			WindSpeed:     s.WindSpeed,
			WindDirection: s.WindDirection,
			TideState:     s.TideState,
			Rating:        s.Rating,
			Description:   s.Description,
		})
	}
	for _, t := range report.Tides {
		out.Tides = append(out.Tides, models.TideEvent{
			Time:   t.Time,
			Height: t.Height,
			Kind:   string(t.Kind),
		})
	}

	return out
}
