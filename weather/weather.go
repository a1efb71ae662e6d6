// Package weather defines the weather data model shared by the forecast
// sources and the evaluators. Temperatures are Celsius, precipitation is
// millimetres, wind speeds are km/h.
package weather

import (
	"context"
	"time"
)

// Condition categorises sky state for farming decisions.
type Condition string

const (
	Clear        Condition = "clear"
	PartlyCloudy Condition = "partly_cloudy"
	Cloudy       Condition = "cloudy"
	Rainy        Condition = "rainy"
	Stormy       Condition = "stormy"
	Foggy        Condition = "foggy"
)

// Current holds the observed conditions at fetch time.
type Current struct {
	TemperatureC    float64   `json:"temperature_c"`
	Humidity        float64   `json:"humidity"`
	PrecipitationMM float64   `json:"precipitation_mm"`
	WindKPH         float64   `json:"wind_kph"`
	Condition       Condition `json:"condition"`
	CloudCover      float64   `json:"cloud_cover"`
	IsDay           bool      `json:"is_day"`
}

// Daily holds one day of forecast.
type Daily struct {
	Date            time.Time `json:"date"`
	TempMaxC        float64   `json:"temp_max_c"`
	TempMinC        float64   `json:"temp_min_c"`
	PrecipitationMM float64   `json:"precipitation_mm"`
	RainProbability float64   `json:"rain_probability"` // percentage 0..100
	WindMaxKPH      float64   `json:"wind_max_kph"`
	Condition       Condition `json:"condition"`
}

// Data is the complete weather picture for one location.
type Data struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Current   Current `json:"current"`
	Forecast  []Daily `json:"forecast"`
	Timezone  string  `json:"timezone"`
}

// DayRecord is one day of historical observations, used for heat-unit
// accumulation since sowing.
type DayRecord struct {
	Date            time.Time `json:"date"`
	TempMaxC        float64   `json:"temp_max_c"`
	TempMinC        float64   `json:"temp_min_c"`
	PrecipitationMM float64   `json:"precipitation_mm"`
}

// Source fetches weather data for a coordinate pair.
type Source interface {
	// Fetch returns current conditions plus the daily forecast.
	Fetch(ctx context.Context, latitude, longitude float64) (*Data, error)

	// FetchHistory returns daily observations for the inclusive date range.
	FetchHistory(ctx context.Context, latitude, longitude float64, start, end time.Time) ([]DayRecord, error)
}
