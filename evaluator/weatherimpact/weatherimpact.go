// Package weatherimpact turns raw weather observations into a farming
// impact summary using fixed thresholds. No language model is involved.
package weatherimpact

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/sweetpotato0/agriadvisor/evaluator"
	"github.com/sweetpotato0/agriadvisor/pkg/logging"
	"github.com/sweetpotato0/agriadvisor/weather"
)

// Location is a coordinate pair. A nil *Location means the farmer has no
// recorded location.
type Location struct {
	Latitude  float64
	Longitude float64
}

// Impact is the actionable summary derived from weather data. Risk values
// are clamped to [0, 1].
type Impact struct {
	RainRisk         float64 `json:"rain_risk"`
	HeatStressRisk   float64 `json:"heat_stress_risk"`
	ColdStressRisk   float64 `json:"cold_stress_risk"`
	SpraySafe        bool    `json:"spray_safe"`
	IrrigationNeeded bool    `json:"irrigation_needed"`
	FieldWorkSafe    bool    `json:"field_work_safe"`
}

// Assessment is the weather evaluator's output. A zero-confidence
// assessment carries the failure in Err; no error is ever returned.
type Assessment struct {
	evaluator.Report

	Err          string          `json:"error,omitempty"`
	Current      weather.Current `json:"current"`
	Forecast3Day []weather.Daily `json:"forecast_3day"`
	Impact       Impact          `json:"farming_impact"`
}

// OK reports whether the assessment produced usable weather data.
func (a Assessment) OK() bool {
	return a.Err == "" && a.Confidence > 0
}

// Config holds the weather evaluator configuration.
type Config struct {
	Timeout time.Duration
}

// DefaultConfig returns the default weather evaluator configuration.
func DefaultConfig() *Config {
	return &Config{Timeout: 10 * time.Second}
}

// Evaluator fetches weather through a Source and assesses farming impact.
type Evaluator struct {
	source weather.Source
	cfg    *Config
}

// New creates a weather impact evaluator. A nil config uses defaults.
func New(source weather.Source, cfg *Config) *Evaluator {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	return &Evaluator{source: source, cfg: cfg}
}

// Evaluate fetches weather for the location and computes the farming
// impact. A nil location or a fetch failure yields confidence 0.
func (e *Evaluator) Evaluate(ctx context.Context, loc *Location) Assessment {
	if loc == nil {
		return Assessment{
			Report: evaluator.Report{
				Confidence: 0,
				Reasoning:  "Cannot fetch weather without location",
				Sources:    []string{},
			},
			Err: "location not available",
		}
	}

	ctx, cancel := context.WithTimeout(ctx, e.cfg.Timeout)
	defer cancel()

	data, err := e.source.Fetch(ctx, loc.Latitude, loc.Longitude)
	if err != nil {
		logging.WithComponent("weatherimpact").Warn("weather fetch failed", "error", err)
		return Assessment{
			Report: evaluator.Report{
				Confidence: 0,
				Reasoning:  fmt.Sprintf("Weather fetch failed: %v", err),
				Sources:    []string{},
			},
			Err: err.Error(),
		}
	}

	impact, reasoning := Assess(data)

	forecast := data.Forecast
	if len(forecast) > 3 {
		forecast = forecast[:3]
	}

	return Assessment{
		Report: evaluator.Report{
			Confidence: 0.9,
			Reasoning:  reasoning,
			Sources:    []string{"open-meteo"},
		},
		Current:      data.Current,
		Forecast3Day: forecast,
		Impact:       impact,
	}
}

// History returns daily observations for the inclusive date range, for
// heat-unit accumulation. A nil location, an empty range, or a source
// failure yields nil; callers fall back to average-based estimates.
func (e *Evaluator) History(ctx context.Context, loc *Location, start, end time.Time) []weather.DayRecord {
	if loc == nil || start.IsZero() || end.Before(start) {
		return nil
	}

	ctx, cancel := context.WithTimeout(ctx, e.cfg.Timeout)
	defer cancel()

	records, err := e.source.FetchHistory(ctx, loc.Latitude, loc.Longitude, start, end)
	if err != nil {
		logging.WithComponent("weatherimpact").Warn("weather history fetch failed", "error", err)
		return nil
	}
	return records
}

// Assess computes the farming impact of weather data. Pure function,
// fixed thresholds.
func Assess(data *weather.Data) (Impact, string) {
	current := data.Current
	var today *weather.Daily
	if len(data.Forecast) > 0 {
		today = &data.Forecast[0]
	}

	rainRisk := 0.0
	switch {
	case current.PrecipitationMM > 0:
		rainRisk = 0.9
	case today != nil && today.RainProbability > 50:
		rainRisk = today.RainProbability / 100
	case current.Condition == weather.Rainy || current.Condition == weather.Stormy:
		rainRisk = 0.8
	}

	// Heat stress ramps above 35C and saturates at 40C.
	heatStress := 0.0
	switch {
	case current.TemperatureC > 40:
		heatStress = 1.0
	case current.TemperatureC > 35:
		heatStress = (current.TemperatureC - 35) / 5
	case current.TemperatureC > 32:
		heatStress = 0.2
	}

	// Cold stress mirrors the heat ramp below 15C/10C/5C.
	coldStress := 0.0
	switch {
	case current.TemperatureC < 5:
		coldStress = 1.0
	case current.TemperatureC < 10:
		coldStress = (10 - current.TemperatureC) / 5
	case current.TemperatureC < 15:
		coldStress = 0.2
	}

	spraySafe := rainRisk < 0.3 &&
		current.WindKPH < 15 &&
		current.TemperatureC < 35 &&
		current.TemperatureC > 10

	irrigationNeeded := current.PrecipitationMM < 5 &&
		rainRisk < 0.3 &&
		current.TemperatureC > 25

	fieldWorkSafe := current.PrecipitationMM < 1 &&
		current.Condition != weather.Stormy &&
		current.WindKPH < 30

	var reasons []string
	if rainRisk > 0.5 {
		reasons = append(reasons, fmt.Sprintf("High rain probability (%.0f%%)", rainRisk*100))
	}
	if heatStress > 0.3 {
		reasons = append(reasons, fmt.Sprintf("Heat stress risk at %g°C", current.TemperatureC))
	}
	if coldStress > 0.3 {
		reasons = append(reasons, fmt.Sprintf("Cold stress risk at %g°C", current.TemperatureC))
	}
	if !spraySafe && current.WindKPH >= 15 {
		reasons = append(reasons, fmt.Sprintf("Wind too strong for spraying (%g km/h)", current.WindKPH))
	}

	reasoning := "Weather conditions are favorable for farming activities"
	if len(reasons) > 0 {
		reasoning = strings.Join(reasons, "; ")
	}

	return Impact{
		RainRisk:         evaluator.ClampConfidence(rainRisk),
		HeatStressRisk:   evaluator.ClampConfidence(heatStress),
		ColdStressRisk:   evaluator.ClampConfidence(coldStress),
		SpraySafe:        spraySafe,
		IrrigationNeeded: irrigationNeeded,
		FieldWorkSafe:    fieldWorkSafe,
	}, reasoning
}
