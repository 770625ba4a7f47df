package service

import (
	"math"
	"time"

	"github.com/agritech/backend/internal/domain"
	"github.com/agritech/backend/pkg/utils"
)

// Forecast horizon limits
const (
	MinForecastDays     = 1
	MaxForecastDays     = 30
	DefaultForecastDays = 15
)

const (
	dailyTrend      = 0.002
	volatilitySigma = 0.03

	extremeTempLow    = 15.0
	extremeTempHigh   = 35.0
	extremeTempFactor = 0.95
	heavyRainMM       = 50.0
	heavyRainFactor   = 0.9

	dateLayout = "2006-01-02"
)

// seasonalWindow is the high-price month set of a crop category
type seasonalWindow struct {
	months    map[int]bool
	high, low float64
}

var seasonalTable = map[domain.CropCategory]seasonalWindow{
	domain.CategoryStaple:     {months: map[int]bool{10: true, 11: true, 12: true, 1: true, 2: true}, high: 1.10, low: 0.95},
	domain.CategoryCash:       {months: map[int]bool{3: true, 4: true, 5: true}, high: 1.05, low: 1.00},
	domain.CategoryPerishable: {months: map[int]bool{6: true, 7: true, 8: true, 9: true}, high: 1.08, low: 0.92},
}

// SeasonalFactor returns the price multiplier for a category in a month
func SeasonalFactor(category domain.CropCategory, month int) float64 {
	w, ok := seasonalTable[category]
	if !ok {
		w = seasonalTable[domain.CategoryPerishable]
	}
	if w.months[month] {
		return w.high
	}
	return w.low
}

// CropLookup resolves a crop name to a profile, synthesizing a default for
// unknown names
type CropLookup interface {
	CropOrDefault(name string) domain.CropProfile
}

// ForecastContext carries the optional inputs of one forecast request
type ForecastContext struct {
	// Now anchors the series; day i is Now's date plus i days
	Now      time.Time
	District *string
	Weather  *domain.WeatherSnapshot

	// External holds a statistical model's points for the same dates, matched
	// by position
	External []domain.ExternalPoint

	// Rand drives the daily volatility. Nil means no volatility.
	Rand RandSource
}

// Blender combines the seasonal price model with an optional external model
type Blender struct {
	crops CropLookup
}

// NewBlender creates a blender over the reference crop table
func NewBlender(crops CropLookup) *Blender {
	return &Blender{crops: crops}
}

// Forecast builds a daily series for [Now+1, Now+days]. Unknown crops use
// the default base price.
func (b *Blender) Forecast(crop string, days int, fc ForecastContext) (domain.ForecastSeries, error) {
	if days < MinForecastDays || days > MaxForecastDays {
		return nil, domain.NewValidationError("days", "must be between 1 and 30")
	}

	profile := b.crops.CropOrDefault(crop)
	base := profile.BasePricePerQuintal
	// 70% of base, kept in integer steps so whole-rupee bases floor exactly
	floor := base * 7 / 10

	now := fc.Now
	if now.IsZero() {
		now = time.Now()
	}
	start := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

	weatherFactor, weatherCtx := weatherAdjustment(fc.Weather)

	series := make(domain.ForecastSeries, 0, days)
	for i := 1; i <= days; i++ {
		date := start.AddDate(0, 0, i)

		var volatility float64
		if fc.Rand != nil {
			volatility = fc.Rand.NormFloat64() * volatilitySigma
		}

		predicted := base *
			SeasonalFactor(profile.Category, int(date.Month())) *
			(1 + float64(i)*dailyTrend) *
			weatherFactor *
			(1 + volatility)
		predicted = math.Max(predicted, floor)

		point := domain.ForecastPoint{
			Date:           date.Format(dateLayout),
			DayOfWeek:      date.Weekday().String(),
			WeatherContext: weatherCtx,
		}

		if i-1 < len(fc.External) {
			ext := fc.External[i-1]
			predicted = math.Max((predicted+ext.Price)/2, floor)
			point.ConfidenceLower = roundedPtr(ext.ConfidenceLower)
			point.ConfidenceUpper = roundedPtr(ext.ConfidenceUpper)
		}

		point.Price = floorPrice(utils.RoundPrice(predicted), floor)
		series = append(series, point)
	}

	return series, nil
}

// Summarize computes statistics over a whole series
func Summarize(series domain.ForecastSeries) domain.ForecastSummary {
	if len(series) == 0 {
		return domain.ForecastSummary{PriceTrend: "decreasing"}
	}

	prices := series.Prices()
	lo, hi := utils.MinMax(prices)

	trend := "decreasing"
	if prices[len(prices)-1] > prices[0] {
		trend = "increasing"
	}

	return domain.ForecastSummary{
		AveragePrice: utils.RoundPrice(utils.Mean(prices)),
		MinPrice:     utils.RoundPrice(lo),
		MaxPrice:     utils.RoundPrice(hi),
		PriceTrend:   trend,
		Volatility:   utils.RoundPrice(utils.StdDev(prices)),
	}
}

func weatherAdjustment(w *domain.WeatherSnapshot) (float64, *domain.WeatherContext) {
	if w == nil {
		return 1.0, nil
	}

	factor := 1.0
	if w.Temperature != nil && (*w.Temperature > extremeTempHigh || *w.Temperature < extremeTempLow) {
		factor *= extremeTempFactor
	}
	if w.RainfallMM != nil && *w.RainfallMM > heavyRainMM {
		factor *= heavyRainFactor
	}

	impact := "positive"
	if factor < 1 {
		impact = "negative"
	}

	return factor, &domain.WeatherContext{
		Temperature: w.Temperature,
		Rainfall:    w.RainfallMM,
		Impact:      impact,
	}
}

// floorPrice keeps a rounded price from dipping under the floor
func floorPrice(price, floor float64) float64 {
	if price < floor {
		return math.Ceil(floor*100) / 100
	}
	return price
}

func roundedPtr(v *float64) *float64 {
	if v == nil {
		return nil
	}
	return domain.Float(utils.RoundPrice(*v))
}
