package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/agritech/backend/internal/domain"
)

// ExternalForecaster is a statistical price model whose points are blended
// into the seasonal forecast. A nil result with a nil error means the model
// has nothing to contribute.
type ExternalForecaster interface {
	ExternalForecast(ctx context.Context, crop, district string, days int, now time.Time) ([]domain.ExternalPoint, error)
}

// MLBridge handles communication with the Python model service
type MLBridge struct {
	serviceURL string
	httpClient *http.Client
}

// NewMLBridge creates a new ML bridge
func NewMLBridge(serviceURL string) *MLBridge {
	return &MLBridge{
		serviceURL: serviceURL,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

type mlForecastRequest struct {
	Crop      string `json:"crop"`
	District  string `json:"district,omitempty"`
	Days      int    `json:"days"`
	StartDate string `json:"start_date"`
}

type mlForecastResponse struct {
	Predictions []domain.ExternalPoint `json:"predictions"`
}

// ExternalForecast asks the model service for a forecast covering the same
// dates as the seasonal series
func (b *MLBridge) ExternalForecast(ctx context.Context, crop, district string, days int, now time.Time) ([]domain.ExternalPoint, error) {
	if b.serviceURL == "" {
		return nil, nil
	}

	body, err := json.Marshal(mlForecastRequest{
		Crop:      crop,
		District:  district,
		Days:      days,
		StartDate: now.AddDate(0, 0, 1).Format(dateLayout),
	})
	if err != nil {
		return nil, fmt.Errorf("ml_bridge: failed to marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/forecast", b.serviceURL)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("ml_bridge: failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := b.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("ml_bridge: request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("ml_bridge: service returned status %d", resp.StatusCode)
	}

	var out mlForecastResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("ml_bridge: failed to decode response: %w", err)
	}

	return out.Predictions, nil
}

// Health checks ML service connectivity
func (b *MLBridge) Health(ctx context.Context) error {
	url := fmt.Sprintf("%s/health", b.serviceURL)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("ml_bridge: failed to create health request: %w", err)
	}

	resp, err := b.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("ml_bridge: health check failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("ml_bridge: health check returned status %d", resp.StatusCode)
	}

	return nil
}
