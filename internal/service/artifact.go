package service

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"os"
	"time"

	"github.com/agritech/backend/internal/domain"
)

// Feature names understood by model artifacts
const (
	FeatureTrend    = "trend"
	FeatureMonthSin = "month_sin"
	FeatureMonthCos = "month_cos"
)

// z-score of a two-sided 95% interval
const ciZ = 1.96

// Features is one model input row
type Features map[string]float64

// LinearModel is a per-crop regression exported by the offline training job
type LinearModel struct {
	Intercept    float64            `json:"intercept"`
	Coefficients map[string]float64 `json:"coefficients"`
	ResidualStd  float64            `json:"residual_std"`
}

// Predict evaluates the model. Features without a coefficient are ignored.
func (m LinearModel) Predict(f Features) float64 {
	price := m.Intercept
	for name, coef := range m.Coefficients {
		price += coef * f[name]
	}
	return price
}

// ModelArtifact is the persisted blob loaded at startup
type ModelArtifact struct {
	Version   string                 `json:"version"`
	TrainedAt time.Time              `json:"trained_at"`
	Models    map[string]LinearModel `json:"models"`
}

// ArtifactForecaster serves forecasts from a model artifact on disk
type ArtifactForecaster struct {
	artifact ModelArtifact
}

// LoadArtifact reads a model artifact from path
func LoadArtifact(path string) (*ArtifactForecaster, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("artifact: failed to read %s: %w", path, err)
	}

	var a ModelArtifact
	if err := json.Unmarshal(raw, &a); err != nil {
		return nil, fmt.Errorf("artifact: failed to parse %s: %w", path, err)
	}
	if len(a.Models) == 0 {
		return nil, fmt.Errorf("artifact: %s contains no models", path)
	}

	return &ArtifactForecaster{artifact: a}, nil
}

// NewArtifactForecaster wraps an in-memory artifact
func NewArtifactForecaster(a ModelArtifact) *ArtifactForecaster {
	return &ArtifactForecaster{artifact: a}
}

// Version identifies the loaded artifact
func (f *ArtifactForecaster) Version() string {
	return f.artifact.Version
}

// Predict returns the modelled price for crop, ok is false for crops the
// artifact was not trained on
func (f *ArtifactForecaster) Predict(crop string, features Features) (float64, bool) {
	m, ok := f.artifact.Models[crop]
	if !ok {
		return 0, false
	}
	return m.Predict(features), true
}

// ExternalForecast predicts each day of the horizon with a 95% interval
func (f *ArtifactForecaster) ExternalForecast(_ context.Context, crop, _ string, days int, now time.Time) ([]domain.ExternalPoint, error) {
	m, ok := f.artifact.Models[crop]
	if !ok {
		return nil, nil
	}

	start := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	points := make([]domain.ExternalPoint, 0, days)
	for i := 1; i <= days; i++ {
		date := start.AddDate(0, 0, i)
		price := m.Predict(FeaturesFor(i, date))
		points = append(points, domain.ExternalPoint{
			Date:            date.Format(dateLayout),
			Price:           price,
			ConfidenceLower: domain.Float(price - ciZ*m.ResidualStd),
			ConfidenceUpper: domain.Float(price + ciZ*m.ResidualStd),
		})
	}
	return points, nil
}

// FeaturesFor builds the model input for day i of a forecast
func FeaturesFor(day int, date time.Time) Features {
	angle := 2 * math.Pi * float64(date.Month()) / 12
	return Features{
		FeatureTrend:    float64(day),
		FeatureMonthSin: math.Sin(angle),
		FeatureMonthCos: math.Cos(angle),
	}
}
