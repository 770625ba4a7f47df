package domain

import (
	"context"
)

// DataRepository defines the interface for data persistence
// This follows the Dependency Inversion Principle - domain defines the interface
type DataRepository interface {
	// SaveForecastLog persists a served price forecast
	SaveForecastLog(ctx context.Context, entry ForecastLog) error

	// SaveRecommendationLog persists a served crop ranking
	SaveRecommendationLog(ctx context.Context, entry RecommendationLog) error

	// GetPriceHistory returns observed prices for a crop in a region, oldest
	// first. An empty result means no market data is available.
	GetPriceHistory(ctx context.Context, crop, region string, days int) ([]PricePoint, error)

	// Health checks database connectivity
	Health(ctx context.Context) error
}
