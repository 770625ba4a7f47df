package postgres

import (
	"context"
	"sync"

	"github.com/agritech/backend/internal/domain"
)

// MockRepository implements domain.DataRepository in memory for demo mode
// and tests. It has no price history unless one is seeded.
type MockRepository struct {
	mu              sync.Mutex
	forecasts       []domain.ForecastLog
	recommendations []domain.RecommendationLog
	history         map[string][]domain.PricePoint
}

// NewMockRepository creates a new mock repository
func NewMockRepository() *MockRepository {
	return &MockRepository{history: make(map[string][]domain.PricePoint)}
}

// SeedPriceHistory makes GetPriceHistory return points for crop in region
func (r *MockRepository) SeedPriceHistory(crop, region string, points []domain.PricePoint) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.history[crop+"|"+region] = points
}

// SaveForecastLog records the entry in memory
func (r *MockRepository) SaveForecastLog(ctx context.Context, entry domain.ForecastLog) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.forecasts = append(r.forecasts, entry)
	return nil
}

// SaveRecommendationLog records the entry in memory
func (r *MockRepository) SaveRecommendationLog(ctx context.Context, entry domain.RecommendationLog) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.recommendations = append(r.recommendations, entry)
	return nil
}

// GetPriceHistory returns seeded history, newest days last. days is ignored.
func (r *MockRepository) GetPriceHistory(ctx context.Context, crop, region string, days int) ([]domain.PricePoint, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	points := r.history[crop+"|"+region]
	if len(points) == 0 {
		return nil, nil
	}
	out := make([]domain.PricePoint, len(points))
	copy(out, points)
	return out, nil
}

// Health always returns nil in mock mode
func (r *MockRepository) Health(ctx context.Context) error {
	return nil
}

// ForecastLogs returns the recorded forecast logs
func (r *MockRepository) ForecastLogs() []domain.ForecastLog {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]domain.ForecastLog(nil), r.forecasts...)
}

// RecommendationLogs returns the recorded recommendation logs
func (r *MockRepository) RecommendationLogs() []domain.RecommendationLog {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]domain.RecommendationLog(nil), r.recommendations...)
}
