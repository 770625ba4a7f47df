package service

import (
	"context"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/agritech/backend/internal/domain"
	"github.com/agritech/backend/internal/reference"
)

// Response modes of POST /recommend-crop
const (
	ModeLocationBased = "location_based"
	ModeCropAnalysis  = "crop_analysis"
)

const (
	// General labels an answer not tied to a state or district
	General = "General"

	// DefaultAnalysisScore is the suitability given to crops outside the table
	DefaultAnalysisScore = reference.DefaultScore

	historyDays           = 30
	analysisYield         = 2.5
	analysisReason        = "General farming practices recommended"
	backgroundSaveTimeout = 5 * time.Second
)

// AgriService wires the scorer, blender and market analyzer to their
// upstream providers. It is built once in main and shared by all handlers.
type AgriService struct {
	store       *reference.Store
	scorer      *Scorer
	blender     *Blender
	analyzer    *MarketAnalyzer
	weatherSvc  *WeatherService
	forecasters []ExternalForecaster
	repo        DataRepository

	now     func() time.Time
	newRand func() RandSource

	wgBg sync.WaitGroup // tracks background goroutines for graceful shutdown
}

// NewAgriService creates the service. forecasters are consulted in order and
// the first one returning points is blended in.
func NewAgriService(
	store *reference.Store,
	weatherSvc *WeatherService,
	repo DataRepository,
	forecasters ...ExternalForecaster,
) *AgriService {
	return &AgriService{
		store:       store,
		scorer:      NewScorer(store),
		blender:     NewBlender(store),
		analyzer:    NewMarketAnalyzer(store),
		weatherSvc:  weatherSvc,
		forecasters: forecasters,
		repo:        repo,
		now:         time.Now,
		newRand:     func() RandSource { return NewRand(0) },
	}
}

// WaitBackground blocks until all background save goroutines complete.
// Call during graceful shutdown to avoid dropped writes.
func (s *AgriService) WaitBackground() {
	s.wgBg.Wait()
}

// ForecastPrice builds a price forecast, blending in an external model when
// one is available
func (s *AgriService) ForecastPrice(ctx context.Context, req domain.ForecastRequest) (domain.ForecastResponse, error) {
	crop := strings.TrimSpace(req.Crop)
	if crop == "" {
		return domain.ForecastResponse{}, domain.NewValidationError("crop", "crop name is required")
	}
	days := DefaultForecastDays
	if req.Days != nil {
		days = *req.Days
	}
	if days < MinForecastDays || days > MaxForecastDays {
		return domain.ForecastResponse{}, domain.NewValidationError("days", "must be between 1 and 30")
	}
	district := strings.TrimSpace(req.District)
	now := s.now()

	var (
		weather  *domain.WeatherSnapshot
		external []domain.ExternalPoint
		wg       sync.WaitGroup
		mu       sync.Mutex
	)

	// Fetch district weather concurrently
	if district != "" {
		wg.Add(1)
		go func() {
			defer wg.Done()
			report, ok := s.weatherSvc.ForDistrict(ctx, district)
			if !ok {
				log.Printf("Unknown district %q, forecasting without weather", district)
				return
			}
			mu.Lock()
			weather = &report.Current
			mu.Unlock()
		}()
	}

	// Fetch external model points concurrently
	wg.Add(1)
	go func() {
		defer wg.Done()
		points := s.externalForecast(ctx, crop, district, days, now)
		mu.Lock()
		external = points
		mu.Unlock()
	}()

	wg.Wait()

	series, err := s.blender.Forecast(crop, days, ForecastContext{
		Now:      now,
		District: optional(district),
		Weather:  weather,
		External: external,
		Rand:     s.newRand(),
	})
	if err != nil {
		return domain.ForecastResponse{}, err
	}

	resp := domain.ForecastResponse{
		Crop:         crop,
		ForecastDays: days,
		District:     orGeneral(district),
		Predictions:  series,
		Summary:      Summarize(series),
		Blended:      len(external) > 0,
		GeneratedAt:  now,
	}

	s.saveInBackground(func(ctx context.Context) error {
		return s.repo.SaveForecastLog(ctx, domain.ForecastLog{
			ID:           uuid.NewString(),
			Crop:         crop,
			District:     district,
			Days:         days,
			AveragePrice: resp.Summary.AveragePrice,
			PriceTrend:   resp.Summary.PriceTrend,
			Blended:      resp.Blended,
			CreatedAt:    now,
		})
	})

	return resp, nil
}

// RecommendCrops ranks crops for a state, month and optional district
func (s *AgriService) RecommendCrops(ctx context.Context, req domain.RecommendRequest) (domain.RecommendResponse, error) {
	state := strings.TrimSpace(req.State)
	if state == "" {
		return domain.RecommendResponse{}, domain.NewValidationError("state", "state is required for location-based recommendations")
	}
	now := s.now()
	month := int(now.Month())
	if req.Month != nil {
		month = *req.Month
	}
	if month < 1 || month > 12 {
		return domain.RecommendResponse{}, domain.NewValidationError("month", "must be between 1 and 12")
	}
	district := strings.TrimSpace(req.District)

	crops := s.store.Crops()
	var (
		weather *domain.WeatherSnapshot
		history = make(map[string][]domain.PricePoint, len(crops))
		wg      sync.WaitGroup
		mu      sync.Mutex
	)

	if district != "" {
		wg.Add(1)
		go func() {
			defer wg.Done()
			report, ok := s.weatherSvc.ForDistrict(ctx, district)
			if !ok {
				log.Printf("Unknown district %q, ranking without weather", district)
				return
			}
			mu.Lock()
			weather = &report.Current
			mu.Unlock()
		}()
	}

	for _, crop := range crops {
		wg.Add(1)
		go func(name string) {
			defer wg.Done()
			points, err := s.repo.GetPriceHistory(ctx, name, state, historyDays)
			if err != nil {
				log.Printf("Price history fetch error for %s: %v", name, err)
				return
			}
			if len(points) == 0 {
				return
			}
			mu.Lock()
			history[name] = points
			mu.Unlock()
		}(crop.Name)
	}

	wg.Wait()

	results := s.scorer.Rank(crops, ScoreContext{
		State:        &state,
		Month:        &month,
		Weather:      weather,
		PriceHistory: history,
		Rand:         s.newRand(),
	}, TopK)

	resp := domain.RecommendResponse{
		Mode:            ModeLocationBased,
		State:           state,
		Month:           month,
		MonthName:       MonthName(month),
		District:        orGeneral(district),
		Recommendations: results,
		Season:          SeasonName(month),
		CroppingSeason:  CroppingSeason(month),
		GeneratedAt:     now,
	}

	if len(results) > 0 {
		top := results[0]
		s.saveInBackground(func(ctx context.Context) error {
			return s.repo.SaveRecommendationLog(ctx, domain.RecommendationLog{
				ID:        uuid.NewString(),
				State:     state,
				Month:     month,
				District:  district,
				TopCrop:   top.Crop,
				TopScore:  top.SuitabilityScore,
				CreatedAt: now,
			})
		})
	}

	return resp, nil
}

// AnalyzeCrop scores one crop for the current month and attaches a market
// outlook. Crops outside the reference table get a generic analysis.
func (s *AgriService) AnalyzeCrop(ctx context.Context, crop, state string) (domain.CropAnalysisResponse, error) {
	crop = strings.TrimSpace(crop)
	if crop == "" {
		return domain.CropAnalysisResponse{}, domain.NewValidationError("crop", "crop name is required")
	}
	state = strings.TrimSpace(state)
	now := s.now()
	month := int(now.Month())

	sc := ScoreContext{Month: &month, Rand: s.newRand()}
	if state != "" {
		sc.State = &state
	}

	analysis := domain.RecommendationResult{
		Crop:             crop,
		SuitabilityScore: DefaultAnalysisScore,
		EstimatedYield:   analysisYield,
		MarketStrength:   1.0,
		Reason:           analysisReason,
	}
	profile, known := s.lookupCrop(crop)
	if known {
		analysis = s.scorer.Score(profile, sc)
	} else {
		profile = reference.DefaultProfile(crop)
	}

	outlook := s.analyze(ctx, profile, state, now)

	return domain.CropAnalysisResponse{
		Mode:          ModeCropAnalysis,
		Crop:          crop,
		State:         orGeneral(state),
		Analysis:      analysis,
		MarketOutlook: outlook,
		GeneratedAt:   now,
	}, nil
}

// MarketAnalysis returns the market outlook for a crop in a state
func (s *AgriService) MarketAnalysis(ctx context.Context, crop, state string) (domain.MarketOutlook, error) {
	crop = strings.TrimSpace(crop)
	if crop == "" {
		return domain.MarketOutlook{}, domain.NewValidationError("crop", "crop name is required")
	}
	profile, known := s.lookupCrop(crop)
	if !known {
		profile = reference.DefaultProfile(crop)
	}
	return s.analyze(ctx, profile, strings.TrimSpace(state), s.now()), nil
}

// Weather returns the weather report for a district. Unknown districts use
// the default district's coordinates.
func (s *AgriService) Weather(ctx context.Context, district string) (domain.WeatherReport, error) {
	district = strings.TrimSpace(district)
	if district == "" {
		return domain.WeatherReport{}, domain.NewValidationError("district", "district parameter is required")
	}
	if report, ok := s.weatherSvc.ForDistrict(ctx, district); ok {
		return report, nil
	}
	_, coords := s.store.DefaultDistrict()
	return s.weatherSvc.Report(ctx, district, coords), nil
}

// WeatherAt returns the weather report at coordinates, named after the
// nearest known district
func (s *AgriService) WeatherAt(ctx context.Context, lat, lon float64) domain.WeatherReport {
	return s.weatherSvc.Report(ctx, s.store.NearestDistrict(lat, lon), domain.Coordinates{Lat: lat, Lon: lon})
}

// Health reports database connectivity
func (s *AgriService) Health(ctx context.Context) error {
	return s.repo.Health(ctx)
}

func (s *AgriService) analyze(ctx context.Context, profile domain.CropProfile, state string, now time.Time) domain.MarketOutlook {
	region := state
	if region == "" {
		region = General
	}
	history, err := s.repo.GetPriceHistory(ctx, profile.Name, region, historyDays)
	if err != nil {
		log.Printf("Price history fetch error for %s: %v", profile.Name, err)
		history = nil
	}
	// one outlook per crop per day
	daily := NewRand(int64(now.Year()*10000 + int(now.Month())*100 + now.Day()))
	return s.analyzer.Analyze(profile, state, history, now, daily)
}

// lookupCrop matches a crop name case-insensitively
func (s *AgriService) lookupCrop(name string) (domain.CropProfile, bool) {
	if p, ok := s.store.Crop(name); ok {
		return p, true
	}
	for _, p := range s.store.Crops() {
		if strings.EqualFold(p.Name, name) {
			return p, true
		}
	}
	return domain.CropProfile{}, false
}

func (s *AgriService) externalForecast(ctx context.Context, crop, district string, days int, now time.Time) []domain.ExternalPoint {
	for _, f := range s.forecasters {
		points, err := f.ExternalForecast(ctx, crop, district, days, now)
		if err != nil {
			log.Printf("External forecast unavailable: %v", err)
			continue
		}
		if len(points) > 0 {
			return points
		}
	}
	return nil
}

// saveInBackground persists a log record without delaying the response
// (tracked for graceful shutdown)
func (s *AgriService) saveInBackground(save func(ctx context.Context) error) {
	s.wgBg.Add(1)
	go func() {
		defer s.wgBg.Done()
		bgCtx, cancel := context.WithTimeout(context.Background(), backgroundSaveTimeout)
		defer cancel()
		if err := save(bgCtx); err != nil {
			log.Printf("Failed to save log record: %v", err)
		}
	}()
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func orGeneral(s string) string {
	if s == "" {
		return General
	}
	return s
}
