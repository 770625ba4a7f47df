package service

import (
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/agritech/backend/internal/domain"
	"github.com/agritech/backend/pkg/utils"
)

// Score bounds and the default ranking depth
const (
	MinScore = 30.0
	MaxScore = 100.0
	TopK     = 5
)

// Point values of the additive scoring system
const (
	seasonMatchBonus   = 15.0
	seasonMissPenalty  = -10.0
	regionMatchBonus   = 10.0
	regionMissPenalty  = -5.0
	tempInRange        = 10.0
	tempNearOptimal    = 5.0
	tempOptimalBand    = 3.0
	humidityInRange    = 8.0
	humidityNearOpt    = 4.0
	humidityOptimalBnd = 10.0
	rainPresent        = 7.0
	rainInRange        = 5.0
	marketSwing        = 5.0

	// weather_suitable threshold on the summed weather points
	weatherSuitableAbove = 15.0
	maxObservations      = 2
)

// MarketFactorLookup resolves the regional market strength of a crop
type MarketFactorLookup interface {
	MarketFactor(state, crop string) float64
}

// ScoreContext carries the optional inputs of one scoring request
type ScoreContext struct {
	State   *string
	Month   *int
	Weather *domain.WeatherSnapshot

	// MarketFactor overrides the regional lookup when set
	MarketFactor *float64

	// PriceHistory holds observed prices per crop, oldest first. A crop with
	// at least two points uses the trend branch instead of a random draw.
	PriceHistory map[string][]domain.PricePoint

	// Rand drives the market perturbation. Nil means no perturbation.
	Rand RandSource
}

// Scorer ranks crops for a location, time and weather context
type Scorer struct {
	factors MarketFactorLookup
}

// NewScorer creates a scorer. factors may be nil.
func NewScorer(factors MarketFactorLookup) *Scorer {
	return &Scorer{factors: factors}
}

// Score computes the suitability of one crop. It never fails: missing
// context dimensions contribute nothing.
func (s *Scorer) Score(profile domain.CropProfile, sc ScoreContext) domain.RecommendationResult {
	score := profile.BaseSuitabilityScore

	result := domain.RecommendationResult{
		Crop:           profile.Name,
		EstimatedYield: profile.YieldEstimate,
		MarketStrength: s.marketFactor(profile.Name, sc),
	}

	if sc.Month != nil {
		match := profile.InSeason(*sc.Month)
		result.SeasonMatch = domain.Bool(match)
		if match {
			score += seasonMatchBonus
		} else {
			score += seasonMissPenalty
		}
	}

	if sc.State != nil {
		match := profile.GrownIn(*sc.State)
		result.RegionSuitable = domain.Bool(match)
		if match {
			score += regionMatchBonus
		} else {
			score += regionMissPenalty
		}
	}

	if sc.Weather != nil {
		var ws float64
		if profile.WeatherTolerance != nil {
			ws = weatherScore(*profile.WeatherTolerance, *sc.Weather)
		}
		score += ws
		result.WeatherSuitable = domain.Bool(ws > weatherSuitableAbove)
	}

	score += marketAdjustment(sc.PriceHistory[profile.Name], sc.Rand)

	result.SuitabilityScore = utils.RoundTo(utils.Clamp(score, MinScore, MaxScore), 1)
	result.Reason = reason(profile, sc.Weather)

	return result
}

// Rank scores every profile and returns the best k, highest first. Equal
// scores keep the input order.
func (s *Scorer) Rank(profiles []domain.CropProfile, sc ScoreContext, k int) []domain.RecommendationResult {
	results := make([]domain.RecommendationResult, 0, len(profiles))
	for _, p := range profiles {
		results = append(results, s.Score(p, sc))
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].SuitabilityScore > results[j].SuitabilityScore
	})

	if k > 0 && len(results) > k {
		results = results[:k]
	}
	return results
}

func (s *Scorer) marketFactor(crop string, sc ScoreContext) float64 {
	if sc.MarketFactor != nil {
		return *sc.MarketFactor
	}
	if sc.State != nil && s.factors != nil {
		return s.factors.MarketFactor(*sc.State, crop)
	}
	return 1.0
}

func weatherScore(tol domain.WeatherTolerance, w domain.WeatherSnapshot) float64 {
	var total float64

	if w.Temperature != nil {
		t := *w.Temperature
		if tol.Temperature.Contains(t) {
			total += tempInRange
			if math.Abs(t-tol.Temperature.Optimal) <= tempOptimalBand {
				total += tempNearOptimal
			}
		}
	}

	if w.Humidity != nil {
		h := *w.Humidity
		if tol.Humidity.Contains(h) {
			total += humidityInRange
			if math.Abs(h-tol.Humidity.Optimal) <= humidityOptimalBnd {
				total += humidityNearOpt
			}
		}
	}

	if w.RainfallMM != nil && *w.RainfallMM > 0 {
		total += rainPresent
		if tol.Rainfall.Contains(*w.RainfallMM) {
			total += rainInRange
		}
	}

	return total
}

func marketAdjustment(history []domain.PricePoint, r RandSource) float64 {
	if len(history) >= 2 {
		if history[len(history)-1].Price > history[0].Price {
			return marketSwing
		}
		return -marketSwing
	}
	if r == nil {
		return 0
	}
	return uniform(r, -marketSwing, marketSwing)
}

func reason(profile domain.CropProfile, w *domain.WeatherSnapshot) string {
	parts := []string{profile.Rationale}
	if profile.Rationale == "" {
		parts[0] = "Suitable crop for the region"
	}
	if w == nil {
		return parts[0]
	}

	var notes []string
	if w.Temperature != nil && *w.Temperature >= 20 && *w.Temperature <= 30 {
		notes = append(notes, "Current temperature is favorable")
	}
	if w.Humidity != nil && *w.Humidity > 80 {
		notes = append(notes, "Watch for fungal diseases in high humidity")
	}
	if w.RainfallMM != nil && *w.RainfallMM > 0 {
		notes = append(notes, "Recent rainfall of "+strconv.FormatFloat(*w.RainfallMM, 'f', -1, 64)+"mm recorded")
	}
	if len(notes) > maxObservations {
		notes = notes[:maxObservations]
	}

	return strings.Join(append(parts, notes...), " | ")
}
