package service

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agritech/backend/internal/domain"
	"github.com/agritech/backend/internal/reference"
)

func TestSeasonalFactor(t *testing.T) {
	tests := []struct {
		category domain.CropCategory
		month    int
		want     float64
	}{
		{domain.CategoryStaple, 10, 1.10},
		{domain.CategoryStaple, 2, 1.10},
		{domain.CategoryStaple, 6, 0.95},
		{domain.CategoryCash, 4, 1.05},
		{domain.CategoryCash, 9, 1.00},
		{domain.CategoryPerishable, 7, 1.08},
		{domain.CategoryPerishable, 12, 0.92},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, SeasonalFactor(tt.category, tt.month), "%s month %d", tt.category, tt.month)
	}
}

func TestForecast_RiceHighSeason(t *testing.T) {
	b := NewBlender(reference.MustLoad())
	now := time.Date(2024, 10, 10, 9, 30, 0, 0, time.UTC)

	series, err := b.Forecast("Rice", 5, ForecastContext{Now: now, Rand: neutral})
	require.NoError(t, err)
	require.Len(t, series, 5)

	for i, p := range series {
		day := float64(i + 1)
		assert.InDelta(t, 2200*1.10*(1+day*0.002), p.Price, 0.006)
		assert.Nil(t, p.ConfidenceLower)
		assert.Nil(t, p.WeatherContext)
	}
	assert.Equal(t, "2024-10-11", series[0].Date)
	assert.Equal(t, "Friday", series[0].DayOfWeek)
	assert.Equal(t, "2024-10-15", series[4].Date)
}

func TestForecast_RiceLowSeason(t *testing.T) {
	b := NewBlender(reference.MustLoad())
	now := time.Date(2024, 6, 10, 0, 0, 0, 0, time.UTC)

	series, err := b.Forecast("Rice", 5, ForecastContext{Now: now, Rand: neutral})
	require.NoError(t, err)

	for i, p := range series {
		assert.InDelta(t, 2200*0.95*(1+float64(i+1)*0.002), p.Price, 0.006)
	}
}

func TestForecast_DatesAscendInFuture(t *testing.T) {
	b := NewBlender(reference.MustLoad())
	now := time.Date(2024, 12, 28, 23, 59, 0, 0, time.UTC)

	for days := MinForecastDays; days <= MaxForecastDays; days++ {
		series, err := b.Forecast("Wheat", days, ForecastContext{Now: now, Rand: NewRand(int64(days))})
		require.NoError(t, err)
		require.Len(t, series, days)

		prev := now
		for _, p := range series {
			d, err := time.Parse("2006-01-02", p.Date)
			require.NoError(t, err)
			assert.True(t, d.After(prev), "%s not after %s", p.Date, prev)
			prev = d
		}
	}
}

func TestForecast_PriceFloor(t *testing.T) {
	store := reference.MustLoad()
	b := NewBlender(store)
	now := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	crash := fixedRand{f: 0.5, n: -100}

	for _, crop := range store.Crops() {
		floor := crop.BasePricePerQuintal * 0.7
		weather := &domain.WeatherSnapshot{Temperature: domain.Float(45), RainfallMM: domain.Float(120)}
		external := []domain.ExternalPoint{{Price: -5000}, {Price: 0}}

		series, err := b.Forecast(crop.Name, 10, ForecastContext{Now: now, Weather: weather, External: external, Rand: crash})
		require.NoError(t, err)
		for _, p := range series {
			assert.GreaterOrEqual(t, p.Price, floor-1e-9, crop.Name)
		}
	}

	for seed := int64(1); seed <= 20; seed++ {
		series, err := b.Forecast("Onion", 30, ForecastContext{Now: now, Rand: NewRand(seed)})
		require.NoError(t, err)
		for _, p := range series {
			assert.GreaterOrEqual(t, p.Price, 1400*0.7-1e-9)
		}
	}
}

func TestForecast_DaysOutOfRange(t *testing.T) {
	b := NewBlender(reference.MustLoad())

	for _, days := range []int{0, -3, 31} {
		_, err := b.Forecast("Rice", days, ForecastContext{})
		require.Error(t, err)

		var verr *domain.ValidationError
		require.True(t, errors.As(err, &verr))
		assert.Equal(t, "days", verr.Field)
	}
}

func TestForecast_UnknownCropUsesDefaultPrice(t *testing.T) {
	b := NewBlender(reference.MustLoad())
	now := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)

	series, err := b.Forecast("Quinoa", 1, ForecastContext{Now: now, Rand: neutral})
	require.NoError(t, err)
	assert.InDelta(t, 2000*1.08*1.002, series[0].Price, 0.006)
}

func TestForecast_WeatherAdjustment(t *testing.T) {
	b := NewBlender(reference.MustLoad())
	now := time.Date(2024, 10, 10, 0, 0, 0, 0, time.UTC)

	weather := &domain.WeatherSnapshot{Temperature: domain.Float(40), RainfallMM: domain.Float(60)}
	series, err := b.Forecast("Rice", 1, ForecastContext{Now: now, Weather: weather, Rand: neutral})
	require.NoError(t, err)

	assert.InDelta(t, 2200*1.10*1.002*0.95*0.9, series[0].Price, 0.006)
	require.NotNil(t, series[0].WeatherContext)
	assert.Equal(t, "negative", series[0].WeatherContext.Impact)
	assert.Equal(t, 40.0, *series[0].WeatherContext.Temperature)

	mild := &domain.WeatherSnapshot{Temperature: domain.Float(25), RainfallMM: domain.Float(10)}
	series, err = b.Forecast("Rice", 1, ForecastContext{Now: now, Weather: mild, Rand: neutral})
	require.NoError(t, err)
	assert.InDelta(t, 2200*1.10*1.002, series[0].Price, 0.006)
	assert.Equal(t, "positive", series[0].WeatherContext.Impact)
}

func TestForecast_BlendsExternalPoints(t *testing.T) {
	b := NewBlender(reference.MustLoad())
	now := time.Date(2024, 10, 10, 0, 0, 0, 0, time.UTC)

	external := []domain.ExternalPoint{
		{Date: "2024-10-11", Price: 2000, ConfidenceLower: domain.Float(1900.456), ConfidenceUpper: domain.Float(2100)},
	}
	series, err := b.Forecast("Rice", 3, ForecastContext{Now: now, External: external, Rand: neutral})
	require.NoError(t, err)

	assert.InDelta(t, (2200*1.10*1.002+2000)/2, series[0].Price, 0.006)
	require.NotNil(t, series[0].ConfidenceLower)
	assert.Equal(t, 1900.46, *series[0].ConfidenceLower)
	assert.Equal(t, 2100.0, *series[0].ConfidenceUpper)

	// points beyond the external series are not blended
	assert.InDelta(t, 2200*1.10*1.004, series[1].Price, 0.006)
	assert.Nil(t, series[1].ConfidenceLower)
}

func TestSummarize(t *testing.T) {
	series := domain.ForecastSeries{{Price: 100}, {Price: 110}, {Price: 90}}

	s := Summarize(series)
	assert.Equal(t, 100.0, s.AveragePrice)
	assert.Equal(t, 90.0, s.MinPrice)
	assert.Equal(t, 110.0, s.MaxPrice)
	assert.Equal(t, "decreasing", s.PriceTrend)
	assert.Equal(t, 8.16, s.Volatility)

	s = Summarize(domain.ForecastSeries{{Price: 100}, {Price: 100.01}})
	assert.Equal(t, "increasing", s.PriceTrend)

	// equal ends are not an increase
	s = Summarize(domain.ForecastSeries{{Price: 100}, {Price: 150}, {Price: 100}})
	assert.Equal(t, "decreasing", s.PriceTrend)
}
