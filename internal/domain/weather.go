package domain

import "time"

// WeatherSnapshot is the current weather as seen by the scoring and
// forecasting code. Nil fields mean the provider did not report them.
type WeatherSnapshot struct {
	Temperature *float64  `json:"temperature"`
	Humidity    *float64  `json:"humidity"`
	RainfallMM  *float64  `json:"rainfall"`
	WindSpeed   *float64  `json:"wind_speed,omitempty"`
	Description string    `json:"description"`
	Timestamp   time.Time `json:"timestamp"`
	IsFallback  bool      `json:"is_fallback"`
}

// WeatherReport wraps a snapshot with the location it was resolved for
type WeatherReport struct {
	District    string          `json:"district"`
	Coordinates Coordinates     `json:"coordinates"`
	Current     WeatherSnapshot `json:"current"`
	Source      string          `json:"source"`
	Timestamp   time.Time       `json:"timestamp"`
}

// WeatherContext is attached to a forecast point when weather influenced it
type WeatherContext struct {
	Temperature *float64 `json:"temperature"`
	Rainfall    *float64 `json:"rainfall"`
	Impact      string   `json:"impact"`
}

// Float is a small helper for building optional numeric fields
func Float(v float64) *float64 {
	return &v
}
