package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/agritech/backend/internal/domain"
)

// PostgresRepository implements domain.DataRepository
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository creates a new PostgreSQL repository
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

// SaveForecastLog persists a served forecast to PostgreSQL
func (r *PostgresRepository) SaveForecastLog(ctx context.Context, entry domain.ForecastLog) error {
	query := `
		INSERT INTO forecast_logs (
			id, crop, district, days, average_price, price_trend, blended, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	// Empty district is stored as NULL
	var district interface{}
	if entry.District != "" {
		district = entry.District
	}

	_, err := r.pool.Exec(ctx, query,
		entry.ID, entry.Crop, district, entry.Days,
		entry.AveragePrice, entry.PriceTrend, entry.Blended, entry.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("postgres: failed to save forecast log: %w", err)
	}

	return nil
}

// SaveRecommendationLog persists a served ranking to PostgreSQL
func (r *PostgresRepository) SaveRecommendationLog(ctx context.Context, entry domain.RecommendationLog) error {
	query := `
		INSERT INTO recommendation_logs (
			id, state, month, district, top_crop, top_score, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	var district interface{}
	if entry.District != "" {
		district = entry.District
	}

	_, err := r.pool.Exec(ctx, query,
		entry.ID, entry.State, entry.Month, district,
		entry.TopCrop, entry.TopScore, entry.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("postgres: failed to save recommendation log: %w", err)
	}

	return nil
}

// GetPriceHistory retrieves observed market prices, oldest first
func (r *PostgresRepository) GetPriceHistory(ctx context.Context, crop, region string, days int) ([]domain.PricePoint, error) {
	query := `
		SELECT observed_on, price
		FROM price_history
		WHERE crop = $1 AND region = $2 AND observed_on >= $3
		ORDER BY observed_on ASC
		LIMIT 366
	`

	since := time.Now().AddDate(0, 0, -days)
	rows, err := r.pool.Query(ctx, query, crop, region, since)
	if err != nil {
		return nil, fmt.Errorf("postgres: failed to query price history: %w", err)
	}
	defer rows.Close()

	var results []domain.PricePoint
	for rows.Next() {
		var p domain.PricePoint
		if err := rows.Scan(&p.Date, &p.Price); err != nil {
			return nil, fmt.Errorf("postgres: failed to scan price row: %w", err)
		}
		results = append(results, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("postgres: failed to read price history: %w", err)
	}

	return results, nil
}

// Health checks database connectivity
func (r *PostgresRepository) Health(ctx context.Context) error {
	if err := r.pool.Ping(ctx); err != nil {
		return fmt.Errorf("postgres: health check failed: %w", err)
	}
	return nil
}
