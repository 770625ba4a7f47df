package domain

import "time"

// ForecastPoint is one day of a price forecast
type ForecastPoint struct {
	Date            string          `json:"date"`
	Price           float64         `json:"price"`
	DayOfWeek       string          `json:"day"`
	ConfidenceLower *float64        `json:"confidence_lower,omitempty"`
	ConfidenceUpper *float64        `json:"confidence_upper,omitempty"`
	WeatherContext  *WeatherContext `json:"weather_context,omitempty"`
}

// ForecastSeries is ordered by date ascending and covers [today+1, today+days]
type ForecastSeries []ForecastPoint

// Prices returns the price column of the series
func (s ForecastSeries) Prices() []float64 {
	prices := make([]float64, len(s))
	for i, p := range s {
		prices[i] = p.Price
	}
	return prices
}

// ExternalPoint is a statistical model's prediction for one date
type ExternalPoint struct {
	Date            string   `json:"date"`
	Price           float64  `json:"price"`
	ConfidenceLower *float64 `json:"confidence_lower,omitempty"`
	ConfidenceUpper *float64 `json:"confidence_upper,omitempty"`
}

// ForecastSummary holds statistics over a whole series
type ForecastSummary struct {
	AveragePrice float64 `json:"average_price"`
	MinPrice     float64 `json:"min_price"`
	MaxPrice     float64 `json:"max_price"`
	PriceTrend   string  `json:"price_trend"`
	Volatility   float64 `json:"volatility"`
}

// ForecastRequest is the body of POST /forecast-price
type ForecastRequest struct {
	Crop     string `json:"crop"`
	Days     *int   `json:"days,omitempty"`
	District string `json:"district,omitempty"`
	Lang     string `json:"lang,omitempty"`
}

// ForecastResponse is returned by POST /forecast-price
type ForecastResponse struct {
	Crop         string          `json:"crop"`
	ForecastDays int             `json:"forecast_days"`
	District     string          `json:"district"`
	Predictions  ForecastSeries  `json:"predictions"`
	Summary      ForecastSummary `json:"summary"`
	Blended      bool            `json:"blended"`
	GeneratedAt  time.Time       `json:"generated_at"`
}

// PricePoint is one observed market price
type PricePoint struct {
	Date  time.Time `json:"date"`
	Price float64   `json:"price"`
}

// ForecastLog is the persisted record of a served forecast
type ForecastLog struct {
	ID           string
	Crop         string
	District     string
	Days         int
	AveragePrice float64
	PriceTrend   string
	Blended      bool
	CreatedAt    time.Time
}
