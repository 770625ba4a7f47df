package domain

import "time"

// RecommendationResult is one ranked crop
type RecommendationResult struct {
	Crop             string  `json:"crop"`
	SuitabilityScore float64 `json:"suitability_score"`
	EstimatedYield   float64 `json:"estimated_yield"`
	SeasonMatch      *bool   `json:"season_match"`
	RegionSuitable   *bool   `json:"region_suitable"`
	WeatherSuitable  *bool   `json:"weather_suitable"`
	MarketStrength   float64 `json:"market_strength"`
	Reason           string  `json:"recommendation_reason"`
}

// RecommendRequest is the body of POST /recommend-crop. When Crop is set the
// request is a single-crop analysis instead of a location-based ranking.
type RecommendRequest struct {
	State    string `json:"state"`
	Month    *int   `json:"month,omitempty"`
	District string `json:"district,omitempty"`
	Crop     string `json:"crop,omitempty"`
	Lang     string `json:"lang,omitempty"`
}

// RecommendResponse is the location-based ranking
type RecommendResponse struct {
	Mode            string                 `json:"mode"`
	State           string                 `json:"state"`
	Month           int                    `json:"month"`
	MonthName       string                 `json:"month_name"`
	District        string                 `json:"district"`
	Recommendations []RecommendationResult `json:"recommendations"`
	Season          string                 `json:"season"`
	CroppingSeason  string                 `json:"cropping_season"`
	GeneratedAt     time.Time              `json:"generated_at"`
}

// CropAnalysisResponse is the single-crop analysis
type CropAnalysisResponse struct {
	Mode          string               `json:"mode"`
	Crop          string               `json:"crop"`
	State         string               `json:"state"`
	Analysis      RecommendationResult `json:"analysis"`
	MarketOutlook MarketOutlook        `json:"market_outlook"`
	GeneratedAt   time.Time            `json:"generated_at"`
}

// PriceRange summarises recent prices
type PriceRange struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
	Avg float64 `json:"avg"`
}

// MarketOutlook is a qualitative read of a crop's market
type MarketOutlook struct {
	Demand           string     `json:"demand"`
	PriceStability   string     `json:"price_stability"`
	Competition      string     `json:"competition"`
	Trend            string     `json:"trend"`
	RegionalStrength int        `json:"regional_strength"`
	SeasonalTiming   string     `json:"seasonal_timing"`
	MarketVolatility float64    `json:"market_volatility"`
	ConfidenceScore  int        `json:"confidence_score"`
	PriceRange       PriceRange `json:"price_range"`
	FutureOutlook    string     `json:"future_outlook"`
}

// RecommendationLog is the persisted record of a served ranking
type RecommendationLog struct {
	ID        string
	State     string
	Month     int
	District  string
	TopCrop   string
	TopScore  float64
	CreatedAt time.Time
}

// Bool is a small helper for building optional flags
func Bool(v bool) *bool {
	return &v
}
