package forecast

import (
	"context"
	"errors"
	"fmt"
)

// ToolName is the function name the agent exposes to the model.
const ToolName = "get_surf_forecast"

// Tool adapts the forecast service to the agent tool interface. Failures are
// reported as user-facing text so the model can relay them instead of the
// run aborting.
type Tool struct {
	service *Service
}

// NewTool wraps the forecast service as an agent tool.
func NewTool(service *Service) *Tool {
	return &Tool{service: service}
}

// Name returns the tool's function name.
func (t *Tool) Name() string { return ToolName }

// Description tells the model when to call the tool.
func (t *Tool) Description() string {
	return "Get a surf forecast for a named surf spot. Returns per-session wave, " +
		"wind, and tide conditions with a 1-10 quality rating for morning, midday, " +
		"and afternoon. Supports 'today', 'tomorrow', or a weekday name within the " +
		"next 5 days."
}

// Parameters returns the JSON schema for the tool arguments.
func (t *Tool) Parameters() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"location": map[string]any{
				"type":        "string",
				"description": "Name of the surf spot, e.g. 'Bells Beach' or 'Torquay'",
			},
			"when": map[string]any{
				"type":        "string",
				"description": "Time reference: 'today', 'tomorrow', or a weekday name. Defaults to today.",
			},
		},
		"required": []string{"location"},
	}
}

// Execute runs the forecast and returns the rendered report text.
func (t *Tool) Execute(ctx context.Context, args map[string]any) (string, error) {
	location, _ := args["location"].(string)
	if location == "" {
		return "Error: a location name is required for surf forecasts", nil
	}
	when, _ := args["when"].(string)

	report, err := t.service.Forecast(ctx, Request{Location: location, When: when})
	switch {
	case errors.Is(err, ErrLocationNotFound):
		return fmt.Sprintf("Could not find a surf spot named %q. Try a nearby town name.", location), nil
	case errors.Is(err, ErrBeyondHorizon):
		return fmt.Sprintf("Sorry, %q is beyond the 5-day forecast window. Ask about a day within the next 5 days.", when), nil
	case err != nil:
		return fmt.Sprintf("Error fetching surf forecast: %s", err), nil
	}

	return report.Text, nil
}
