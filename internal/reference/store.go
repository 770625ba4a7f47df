// Package reference holds the read-only crop, region, district and
// translation tables. The tables are embedded YAML parsed once at startup.
package reference

import (
	"embed"
	"fmt"
	"math"

	"gopkg.in/yaml.v3"

	"github.com/agritech/backend/internal/domain"
	"github.com/agritech/backend/pkg/utils"
)

//go:embed data/*.yaml
var dataFS embed.FS

// Fallback values for crops missing from the table
const (
	DefaultBasePrice = 2000.0
	DefaultScore     = 60.0
	DefaultYield     = 2.0
	DefaultRationale = "Suitable crop for the region"
)

type cropRecord struct {
	Name      string                   `yaml:"name"`
	Category  string                   `yaml:"category"`
	BasePrice float64                  `yaml:"base_price"`
	BaseScore float64                  `yaml:"base_score"`
	Yield     float64                  `yaml:"yield"`
	Months    []int                    `yaml:"months"`
	States    []string                 `yaml:"states"`
	Rationale string                   `yaml:"rationale"`
	Weather   *domain.WeatherTolerance `yaml:"weather"`
	Market    struct {
		Peak       []int  `yaml:"peak"`
		Lean       []int  `yaml:"lean"`
		Demand     string `yaml:"demand"`
		Volatility string `yaml:"volatility"`
	} `yaml:"market"`
}

type cropFile struct {
	Crops            []cropRecord                  `yaml:"crops"`
	RegionalStrength map[string]map[string]float64 `yaml:"regional_strength"`
}

type districtFile struct {
	Default   string                        `yaml:"default"`
	Districts map[string]domain.Coordinates `yaml:"districts"`
}

// Store is the Reference Data Store. All methods are safe for concurrent use
// because nothing is written after Load returns.
type Store struct {
	crops            []domain.CropProfile
	index            map[string]int
	regionalStrength map[string]map[string]float64
	districts        map[string]domain.Coordinates
	defaultDistrict  string
	translations     map[string]map[string]string
}

// Load parses the embedded tables
func Load() (*Store, error) {
	var cf cropFile
	if err := decode("data/crops.yaml", &cf); err != nil {
		return nil, err
	}
	var df districtFile
	if err := decode("data/districts.yaml", &df); err != nil {
		return nil, err
	}
	translations := map[string]map[string]string{}
	if err := decode("data/translations.yaml", &translations); err != nil {
		return nil, err
	}

	s := &Store{
		crops:            make([]domain.CropProfile, 0, len(cf.Crops)),
		index:            make(map[string]int, len(cf.Crops)),
		regionalStrength: cf.RegionalStrength,
		districts:        df.Districts,
		defaultDistrict:  df.Default,
		translations:     translations,
	}

	for _, rec := range cf.Crops {
		if _, dup := s.index[rec.Name]; dup {
			return nil, fmt.Errorf("reference: duplicate crop %q", rec.Name)
		}
		profile, err := rec.toProfile()
		if err != nil {
			return nil, err
		}
		s.index[rec.Name] = len(s.crops)
		s.crops = append(s.crops, profile)
	}

	if _, ok := s.districts[s.defaultDistrict]; !ok {
		return nil, fmt.Errorf("reference: default district %q has no coordinates", s.defaultDistrict)
	}

	return s, nil
}

// MustLoad is Load for process start, panicking on a broken build
func MustLoad() *Store {
	s, err := Load()
	if err != nil {
		panic(err)
	}
	return s
}

func decode(path string, out interface{}) error {
	raw, err := dataFS.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reference: failed to read %s: %w", path, err)
	}
	if err := yaml.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("reference: failed to parse %s: %w", path, err)
	}
	return nil
}

func (rec cropRecord) toProfile() (domain.CropProfile, error) {
	category := domain.CropCategory(rec.Category)
	switch category {
	case domain.CategoryStaple, domain.CategoryCash, domain.CategoryPerishable:
	default:
		return domain.CropProfile{}, fmt.Errorf("reference: crop %q has unknown category %q", rec.Name, rec.Category)
	}

	for _, m := range append(append(append([]int{}, rec.Months...), rec.Market.Peak...), rec.Market.Lean...) {
		if m < 1 || m > 12 {
			return domain.CropProfile{}, fmt.Errorf("reference: crop %q has invalid month %d", rec.Name, m)
		}
	}

	regions := make(map[string]bool, len(rec.States))
	for _, s := range rec.States {
		regions[s] = true
	}

	return domain.CropProfile{
		Name:                 rec.Name,
		Category:             category,
		BasePricePerQuintal:  rec.BasePrice,
		SuitableMonths:       monthSet(rec.Months),
		SuitableRegions:      regions,
		BaseSuitabilityScore: rec.BaseScore,
		YieldEstimate:        rec.Yield,
		WeatherTolerance:     rec.Weather,
		Rationale:            rec.Rationale,
		PeakMonths:           monthSet(rec.Market.Peak),
		LeanMonths:           monthSet(rec.Market.Lean),
		Demand:               rec.Market.Demand,
		Volatility:           rec.Market.Volatility,
	}, nil
}

func monthSet(months []int) map[int]bool {
	set := make(map[int]bool, len(months))
	for _, m := range months {
		set[m] = true
	}
	return set
}

// Crops returns every profile in registration order
func (s *Store) Crops() []domain.CropProfile {
	out := make([]domain.CropProfile, len(s.crops))
	copy(out, s.crops)
	return out
}

// Crop looks up a profile by exact name
func (s *Store) Crop(name string) (domain.CropProfile, bool) {
	i, ok := s.index[name]
	if !ok {
		return domain.CropProfile{}, false
	}
	return s.crops[i], true
}

// CropOrDefault returns the named profile, or a synthesized default for
// crops the table does not know. Unknown crops are valid input.
func (s *Store) CropOrDefault(name string) domain.CropProfile {
	if p, ok := s.Crop(name); ok {
		return p
	}
	return DefaultProfile(name)
}

// DefaultProfile is the profile used for crops missing from the table
func DefaultProfile(name string) domain.CropProfile {
	return domain.CropProfile{
		Name:                 name,
		Category:             domain.CategoryPerishable,
		BasePricePerQuintal:  DefaultBasePrice,
		SuitableMonths:       map[int]bool{},
		SuitableRegions:      map[string]bool{},
		BaseSuitabilityScore: DefaultScore,
		YieldEstimate:        DefaultYield,
		Rationale:            DefaultRationale,
		PeakMonths:           map[int]bool{},
		LeanMonths:           map[int]bool{},
		Demand:               "moderate",
		Volatility:           "moderate",
	}
}

// MarketFactor returns the regional market strength for a crop, 1.0 when
// the table has no entry
func (s *Store) MarketFactor(state, crop string) float64 {
	if byCrop, ok := s.regionalStrength[state]; ok {
		if f, ok := byCrop[crop]; ok && f >= 1.0 {
			return f
		}
	}
	return 1.0
}

// District resolves a district name to coordinates
func (s *Store) District(name string) (domain.Coordinates, bool) {
	c, ok := s.districts[name]
	return c, ok
}

// DefaultDistrict is used when a caller names an unknown district
func (s *Store) DefaultDistrict() (string, domain.Coordinates) {
	return s.defaultDistrict, s.districts[s.defaultDistrict]
}

// NearestDistrict returns the known district closest to lat/lon
func (s *Store) NearestDistrict(lat, lon float64) string {
	best, bestDist := s.defaultDistrict, math.MaxFloat64
	for name, c := range s.districts {
		d := utils.Haversine(lat, lon, c.Lat, c.Lon)
		if d < bestDist || (d == bestDist && name < best) {
			best, bestDist = name, d
		}
	}
	return best
}

// Translation returns the term in lang ("hi" or "kn")
func (s *Store) Translation(term, lang string) (string, bool) {
	byLang, ok := s.translations[term]
	if !ok {
		return "", false
	}
	t, ok := byLang[lang]
	return t, ok
}
