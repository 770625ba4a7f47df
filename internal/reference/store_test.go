package reference

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agritech/backend/internal/domain"
)

func TestLoad_RegistrationOrder(t *testing.T) {
	s, err := Load()
	require.NoError(t, err)

	names := make([]string, 0)
	for _, c := range s.Crops() {
		names = append(names, c.Name)
	}
	assert.Equal(t, []string{
		"Rice", "Wheat", "Cotton", "Sugarcane", "Maize",
		"Onion", "Potato", "Tomato", "Soybean", "Groundnut",
	}, names)
}

func TestCrop_Profile(t *testing.T) {
	s := MustLoad()

	rice, ok := s.Crop("Rice")
	require.True(t, ok)
	assert.Equal(t, domain.CategoryStaple, rice.Category)
	assert.Equal(t, 2200.0, rice.BasePricePerQuintal)
	assert.Equal(t, 85.0, rice.BaseSuitabilityScore)
	assert.Equal(t, 4.2, rice.YieldEstimate)
	assert.True(t, rice.InSeason(7))
	assert.False(t, rice.InSeason(3))
	assert.True(t, rice.GrownIn("Punjab"))
	require.NotNil(t, rice.WeatherTolerance)
	assert.Equal(t, domain.Range{Min: 20, Max: 35, Optimal: 25}, rice.WeatherTolerance.Temperature)

	maize, ok := s.Crop("Maize")
	require.True(t, ok)
	assert.Nil(t, maize.WeatherTolerance)

	cotton, _ := s.Crop("Cotton")
	assert.Equal(t, domain.CategoryCash, cotton.Category)
}

func TestCropOrDefault_UnknownCrop(t *testing.T) {
	s := MustLoad()

	_, ok := s.Crop("Quinoa")
	assert.False(t, ok)

	p := s.CropOrDefault("Quinoa")
	assert.Equal(t, "Quinoa", p.Name)
	assert.Equal(t, 60.0, p.BaseSuitabilityScore)
	assert.GreaterOrEqual(t, p.YieldEstimate, 2.0)
	assert.LessOrEqual(t, p.YieldEstimate, 2.5)
	assert.Equal(t, 2000.0, p.BasePricePerQuintal)
	assert.Empty(t, p.SuitableMonths)
	assert.Nil(t, p.WeatherTolerance)
}

func TestMarketFactor(t *testing.T) {
	s := MustLoad()

	assert.Equal(t, 1.2, s.MarketFactor("Maharashtra", "Onion"))
	assert.Equal(t, 1.0, s.MarketFactor("Maharashtra", "Rice"))
	assert.Equal(t, 1.0, s.MarketFactor("Kerala", "Rice"))
}

func TestDistricts(t *testing.T) {
	s := MustLoad()

	pune, ok := s.District("Pune")
	require.True(t, ok)
	assert.Equal(t, 18.5204, pune.Lat)

	_, ok = s.District("Atlantis")
	assert.False(t, ok)

	name, coords := s.DefaultDistrict()
	assert.Equal(t, "Bangalore", name)
	assert.Equal(t, 77.5946, coords.Lon)

	assert.Equal(t, "Pune", s.NearestDistrict(18.53, 73.85))
	assert.Equal(t, "Mysore", s.NearestDistrict(12.30, 76.65))
}

func TestTranslation(t *testing.T) {
	s := MustLoad()

	hi, ok := s.Translation("Rice", "hi")
	require.True(t, ok)
	assert.Equal(t, "चावल", hi)

	_, ok = s.Translation("Rice", "fr")
	assert.False(t, ok)
	_, ok = s.Translation("Quinoa", "hi")
	assert.False(t, ok)
}
