package simapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/omarshaarawi/playbuilder/internal/models"
)

const (
	parseEndpoint    = "/parse-freeform"
	simulateEndpoint = "/simulate"
	driveEndpoint    = "/simulate-drive"
	healthEndpoint   = "/health"
)

type API struct {
	client *Client
}

func NewAPI(client *Client) *API {
	return &API{client: client}
}

func (a *API) BaseURL() string {
	return a.client.BaseURL()
}

func (a *API) ParseFreeform(ctx context.Context, req models.ParseRequest) (*models.ParseResult, error) {
	var result models.ParseResult
	if err := a.client.Post(ctx, parseEndpoint, req, &result); err != nil {
		return nil, fmt.Errorf("parsing play: %w", err)
	}
	return &result, nil
}

func (a *API) Simulate(ctx context.Context, req models.SimRequest) (*models.SimSummary, error) {
	var summary models.SimSummary
	if err := a.client.Post(ctx, simulateEndpoint, req, &summary); err != nil {
		return nil, fmt.Errorf("simulating play: %w", err)
	}
	return &summary, nil
}

func (a *API) SimulateDrive(ctx context.Context, req models.DriveRequest) (*models.DriveSummary, error) {
	var summary models.DriveSummary
	if err := a.client.Post(ctx, driveEndpoint, req, &summary); err != nil {
		return nil, fmt.Errorf("simulating drive: %w", err)
	}
	return &summary, nil
}

// Health probes the service. A failed probe is reported in the returned
// report rather than as an error so callers can always display it.
func (a *API) Health(ctx context.Context) models.HealthReport {
	report := models.HealthReport{CheckedAt: time.Now()}

	var payload json.RawMessage
	if err := a.client.Get(ctx, healthEndpoint, &payload); err != nil {
		report.Error = err.Error()
		return report
	}

	report.OK = true
	report.Payload = payload
	return report
}

// IsStatus reports whether err carries an HTTP status error with the given code.
func IsStatus(err error, code int) bool {
	var se *StatusError
	return errors.As(err, &se) && se.StatusCode == code
}
