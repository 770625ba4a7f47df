package service

import (
	"math"
	"time"

	"github.com/agritech/backend/internal/domain"
	"github.com/agritech/backend/pkg/utils"
)

// Demand and competition levels, lowest first
var levels = []string{"low", "moderate", "high", "very_high"}

const (
	syntheticHistoryDays = 30
	recentWindow         = 7
	stableTrendBand      = 0.02
)

// MarketAnalyzer produces a qualitative market outlook for a crop
type MarketAnalyzer struct {
	factors MarketFactorLookup
}

// NewMarketAnalyzer creates an analyzer. factors may be nil.
func NewMarketAnalyzer(factors MarketFactorLookup) *MarketAnalyzer {
	return &MarketAnalyzer{factors: factors}
}

// Analyze reads demand, stability and trend for a crop. history is oldest
// first; with fewer than two points a synthetic month of prices is used.
func (a *MarketAnalyzer) Analyze(profile domain.CropProfile, state string, history []domain.PricePoint, now time.Time, r RandSource) domain.MarketOutlook {
	if r == nil {
		r = NewRand(0)
	}
	month := int(now.Month())
	isPeak := profile.PeakMonths[month]
	isLean := profile.LeanMonths[month]
	dailyFactor := uniform(r, 0.8, 1.2)

	baseDemand := profile.Demand
	if baseDemand == "" {
		baseDemand = "moderate"
	}

	demand := baseDemand
	switch {
	case isPeak:
		demand = upgrade(demand)
		if dailyFactor > 1.1 {
			demand = upgrade(demand)
		}
	case isLean:
		demand = downgrade(demand)
		if dailyFactor < 0.9 {
			demand = downgrade(demand)
		}
	default:
		if dailyFactor > 1.1 {
			demand = upgrade(demand)
		} else if dailyFactor < 0.9 {
			demand = downgrade(demand)
		}
	}

	strength := 1.0
	var competition string
	if state != "" {
		if a.factors != nil {
			strength = a.factors.MarketFactor(state, profile.Name)
		}
		strength = math.Max(1.0, strength+uniform(r, -0.05, 0.05))
		switch {
		case strength > 1.2:
			demand = upgrade(demand)
			competition = pick(dailyFactor > 1.0, "high", "moderate")
		case strength > 1.1:
			competition = pick(dailyFactor > 1.0, "moderate", "low")
		default:
			competition = "low"
		}
	} else {
		competition = levels[int(uniform(r, 0, 3))%3]
	}

	volatileVotes := 0
	if profile.Volatility == "high" || profile.Volatility == "very_high" {
		volatileVotes++
	}
	if !(isPeak && dailyFactor > 1.0) && (isLean || dailyFactor < 0.9) {
		volatileVotes++
	}
	if r.Float64() > 0.8 {
		volatileVotes++
	}
	stability := pick(volatileVotes >= 2, "volatile", "stable")

	prices := pricesOf(history)
	if len(prices) < 2 {
		prices = pricesOf(SyntheticHistory(profile, syntheticHistoryDays, now, r))
	}
	recent := prices
	if len(recent) > recentWindow {
		recent = recent[len(recent)-recentWindow:]
	}

	trend := "stable"
	if first := prices[0]; first > 0 {
		if change := (prices[len(prices)-1] - first) / first; math.Abs(change) >= stableTrendBand {
			trend = pick(change > 0, "increasing", "decreasing")
		}
	}

	volatility := utils.StdDev(recent)*0.7 + utils.StdDev(prices)*0.3

	confidence := (uniform(r, 0.7, 1.0) +
		pickFloat(stability == "stable", 0.8, 0.5) +
		pickFloat(isPeak || isLean, 1.0, 0.7)) / 3

	lo, hi := utils.MinMax(recent)

	outlook := "neutral"
	switch {
	case (demand == "high" || demand == "very_high") && stability == "stable" && trend == "increasing":
		outlook = "positive"
	case demand == "low" && stability == "volatile" && trend == "decreasing":
		outlook = "negative"
	}

	regional := 0
	if state != "" {
		regional = int(math.Round((strength - 1) * 100))
	}

	timing := "normal"
	if isPeak {
		timing = "peak"
	} else if isLean {
		timing = "lean"
	}

	return domain.MarketOutlook{
		Demand:           demand,
		PriceStability:   stability,
		Competition:      competition,
		Trend:            trend,
		RegionalStrength: regional,
		SeasonalTiming:   timing,
		MarketVolatility: utils.RoundPrice(volatility),
		ConfidenceScore:  int(math.Round(confidence * 100)),
		PriceRange: domain.PriceRange{
			Min: utils.RoundPrice(lo),
			Max: utils.RoundPrice(hi),
			Avg: utils.RoundPrice(utils.Mean(prices)),
		},
		FutureOutlook: outlook,
	}
}

// SyntheticHistory generates plausible daily prices ending at now, oldest
// first. Peak months run 10-30% above base, lean months 10-30% below.
func SyntheticHistory(profile domain.CropProfile, days int, now time.Time, r RandSource) []domain.PricePoint {
	base := profile.BasePricePerQuintal
	if base <= 0 {
		base = 2000
	}

	history := make([]domain.PricePoint, 0, days)
	for i := days - 1; i >= 0; i-- {
		date := now.AddDate(0, 0, -i)
		month := int(date.Month())

		var seasonal float64
		switch {
		case profile.PeakMonths[month]:
			seasonal = uniform(r, 1.1, 1.3)
		case profile.LeanMonths[month]:
			seasonal = uniform(r, 0.7, 0.9)
		default:
			seasonal = uniform(r, 0.9, 1.1)
		}
		variation := uniform(r, -0.1, 0.1)

		history = append(history, domain.PricePoint{
			Date:  date,
			Price: utils.RoundPrice(base * seasonal * (1 + variation)),
		})
	}
	return history
}

func upgrade(level string) string {
	for i, l := range levels {
		if l == level {
			return levels[min(i+1, len(levels)-1)]
		}
	}
	return level
}

func downgrade(level string) string {
	for i, l := range levels {
		if l == level {
			return levels[max(i-1, 0)]
		}
	}
	return level
}

func pick(cond bool, a, b string) string {
	if cond {
		return a
	}
	return b
}

func pickFloat(cond bool, a, b float64) float64 {
	if cond {
		return a
	}
	return b
}

func pricesOf(points []domain.PricePoint) []float64 {
	prices := make([]float64, len(points))
	for i, p := range points {
		prices[i] = p.Price
	}
	return prices
}
