package domain

// CropCategory groups crops that share a seasonal price pattern
type CropCategory string

const (
	CategoryStaple     CropCategory = "staple"     // rabi-like cereals
	CategoryCash       CropCategory = "cash"       // fibre and other cash crops
	CategoryPerishable CropCategory = "perishable" // vegetables and everything else
)

// Range is a tolerance band for one weather dimension
type Range struct {
	Min     float64 `json:"min" yaml:"min"`
	Max     float64 `json:"max" yaml:"max"`
	Optimal float64 `json:"optimal" yaml:"optimal"`
}

// Contains reports whether v lies within [Min, Max]
func (r Range) Contains(v float64) bool {
	return v >= r.Min && v <= r.Max
}

// WeatherTolerance describes the conditions a crop grows well in
type WeatherTolerance struct {
	Temperature Range `json:"temperature" yaml:"temperature"`
	Humidity    Range `json:"humidity" yaml:"humidity"`
	Rainfall    Range `json:"rainfall" yaml:"rainfall"`
}

// CropProfile is the static reference record for one crop.
// Profiles are built once at startup and never mutated.
type CropProfile struct {
	Name                 string
	Category             CropCategory
	BasePricePerQuintal  float64
	SuitableMonths       map[int]bool
	SuitableRegions      map[string]bool
	BaseSuitabilityScore float64
	YieldEstimate        float64
	WeatherTolerance     *WeatherTolerance
	Rationale            string

	// Market pattern, used by the market analyzer
	PeakMonths map[int]bool
	LeanMonths map[int]bool
	Demand     string
	Volatility string
}

// InSeason reports whether month is one of the crop's sowing months
func (p CropProfile) InSeason(month int) bool {
	return p.SuitableMonths[month]
}

// GrownIn reports whether the crop is traditionally grown in state
func (p CropProfile) GrownIn(state string) bool {
	return p.SuitableRegions[state]
}

// Coordinates is a lat/lon pair
type Coordinates struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}
