package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/agritech/backend/internal/cache"
	"github.com/agritech/backend/internal/domain"
)

// DefaultOpenWeatherURL is the public OpenWeatherMap endpoint
const DefaultOpenWeatherURL = "https://api.openweathermap.org"

// Report sources
const (
	SourceOpenWeather = "OpenWeatherMap"
	SourceFallback    = "Fallback (seasonal estimate)"
)

// DistrictLookup resolves district names to coordinates
type DistrictLookup interface {
	District(name string) (domain.Coordinates, bool)
}

// WeatherService handles weather data fetching
type WeatherService struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
	cache      cache.Cache[domain.WeatherSnapshot]
	districts  DistrictLookup
	now        func() time.Time
}

// NewWeatherService creates a new weather service. An empty baseURL uses the
// public endpoint; a nil cache gets an in-memory one.
func NewWeatherService(apiKey, baseURL string, c cache.Cache[domain.WeatherSnapshot], districts DistrictLookup) *WeatherService {
	if baseURL == "" {
		baseURL = DefaultOpenWeatherURL
	}
	if c == nil {
		c = cache.NewMemory[domain.WeatherSnapshot](cache.DefaultTTL, nil)
	}
	return &WeatherService{
		apiKey:  apiKey,
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		cache:     c,
		districts: districts,
		now:       time.Now,
	}
}

// OpenWeatherResponse represents the OpenWeatherMap API response
type OpenWeatherResponse struct {
	Main struct {
		Temp     float64 `json:"temp"`
		Humidity float64 `json:"humidity"`
	} `json:"main"`
	Weather []struct {
		Description string `json:"description"`
	} `json:"weather"`
	Wind struct {
		Speed float64 `json:"speed"`
	} `json:"wind"`
	Rain struct {
		OneHour   *float64 `json:"1h"`
		ThreeHour *float64 `json:"3h"`
	} `json:"rain"`
	Name string `json:"name"`
}

// ForCoordinates returns current weather at lat/lon. It never fails: any
// upstream problem yields the seasonal estimate.
func (s *WeatherService) ForCoordinates(ctx context.Context, lat, lon float64) domain.WeatherSnapshot {
	key := cacheKey(lat, lon)
	if w, ok := s.cache.Get(ctx, key); ok {
		return w
	}

	// Return fallback data if no API key
	if s.apiKey == "" {
		return s.fallback()
	}

	w, err := s.fetch(ctx, lat, lon)
	if err != nil {
		log.Printf("Weather fetch failed for %s, using seasonal estimate: %v", key, err)
		return s.fallback()
	}

	s.cache.Set(ctx, key, w)
	return w
}

// ForDistrict resolves a district and returns its weather report. ok is
// false when the district is unknown.
func (s *WeatherService) ForDistrict(ctx context.Context, district string) (domain.WeatherReport, bool) {
	if s.districts == nil {
		return domain.WeatherReport{}, false
	}
	coords, ok := s.districts.District(district)
	if !ok {
		return domain.WeatherReport{}, false
	}
	return s.Report(ctx, district, coords), true
}

// Report wraps the weather at coords with its location
func (s *WeatherService) Report(ctx context.Context, district string, coords domain.Coordinates) domain.WeatherReport {
	current := s.ForCoordinates(ctx, coords.Lat, coords.Lon)
	source := SourceOpenWeather
	if current.IsFallback {
		source = SourceFallback
	}
	return domain.WeatherReport{
		District:    district,
		Coordinates: coords,
		Current:     current,
		Source:      source,
		Timestamp:   s.now(),
	}
}

func (s *WeatherService) fetch(ctx context.Context, lat, lon float64) (domain.WeatherSnapshot, error) {
	q := url.Values{}
	q.Set("lat", strconv.FormatFloat(lat, 'f', -1, 64))
	q.Set("lon", strconv.FormatFloat(lon, 'f', -1, 64))
	q.Set("appid", s.apiKey)
	q.Set("units", "metric")
	endpoint := s.baseURL + "/data/2.5/weather?" + q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return domain.WeatherSnapshot{}, fmt.Errorf("weather: failed to create request: %w", err)
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return domain.WeatherSnapshot{}, fmt.Errorf("weather: request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return domain.WeatherSnapshot{}, fmt.Errorf("weather: provider returned status %d", resp.StatusCode)
	}

	var owResp OpenWeatherResponse
	if err := json.NewDecoder(resp.Body).Decode(&owResp); err != nil {
		return domain.WeatherSnapshot{}, fmt.Errorf("weather: failed to decode response: %w", err)
	}

	rain := 0.0
	if owResp.Rain.OneHour != nil {
		rain = *owResp.Rain.OneHour
	} else if owResp.Rain.ThreeHour != nil {
		rain = *owResp.Rain.ThreeHour
	}

	w := domain.WeatherSnapshot{
		Temperature: domain.Float(owResp.Main.Temp),
		Humidity:    domain.Float(owResp.Main.Humidity),
		RainfallMM:  domain.Float(rain),
		WindSpeed:   domain.Float(owResp.Wind.Speed),
		Timestamp:   s.now(),
	}
	if len(owResp.Weather) > 0 {
		w.Description = owResp.Weather[0].Description
	}
	return w, nil
}

// fallback returns the seasonal estimate for the current month
func (s *WeatherService) fallback() domain.WeatherSnapshot {
	return SeasonalEstimate(s.now())
}

// SeasonalEstimate is the deterministic weather used when the provider is
// unavailable
func SeasonalEstimate(now time.Time) domain.WeatherSnapshot {
	var temp, humidity, rain float64
	switch now.Month() {
	case 3, 4, 5: // Summer
		temp, humidity, rain = 35, 50, 0
	case 6, 7, 8, 9: // Monsoon
		temp, humidity, rain = 28, 80, 5
	case 11, 12, 1: // Winter
		temp, humidity, rain = 20, 60, 0
	default:
		temp, humidity, rain = 25, 65, 0
	}

	return domain.WeatherSnapshot{
		Temperature: domain.Float(temp),
		Humidity:    domain.Float(humidity),
		RainfallMM:  domain.Float(rain),
		WindSpeed:   domain.Float(10),
		Description: "Fallback data",
		Timestamp:   now,
		IsFallback:  true,
	}
}

func cacheKey(lat, lon float64) string {
	return strconv.FormatFloat(lat, 'f', -1, 64) + "," + strconv.FormatFloat(lon, 'f', -1, 64)
}
