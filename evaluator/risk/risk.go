// Package risk applies a fixed set of threshold rules combining growth
// stage and weather into a ranked list of risks. The five rules, their
// trigger conditions, and severities are a stable contract.
package risk

import (
	"fmt"

	"github.com/sweetpotato0/agriadvisor/evaluator"
	"github.com/sweetpotato0/agriadvisor/evaluator/stage"
	"github.com/sweetpotato0/agriadvisor/evaluator/weatherimpact"
)

// Severity is the ordinal risk level attached to a detected risk.
type Severity string

const (
	Low    Severity = "low"
	Medium Severity = "medium"
	High   Severity = "high"
)

func (s Severity) rank() int {
	switch s {
	case High:
		return 2
	case Medium:
		return 1
	}
	return 0
}

// Max returns the higher of two severities.
func Max(a, b Severity) Severity {
	if b.rank() > a.rank() {
		return b
	}
	return a
}

// Risk is one detected threat.
type Risk struct {
	Type     string   `json:"type"`
	Severity Severity `json:"severity"`
	Message  string   `json:"message"`
	Action   string   `json:"action"`
}

// Assessment is the risk evaluator's output.
type Assessment struct {
	evaluator.Report

	OverallRisk       Severity `json:"overall_risk"`
	Risks             []Risk   `json:"risks"`
	Alerts            []string `json:"alerts"`
	CropStage         string   `json:"crop_stage"`
	ConditionsChecked []string `json:"conditions_checked"`
}

// ConditionsChecked is the fixed audit list of rule names, returned on
// every assessment whether or not the rules fired.
var ConditionsChecked = []string{
	"flowering_heat", "flowering_rain", "maturity_rain",
	"seedling_cold", "vegetative_drought",
}

// Stage families the rules key on.
var (
	heatFloweringStages = []string{"flowering", "silking", "tasseling"}
	rainFloweringStages = []string{"flowering", "silking", "pollination"}
	maturityStages      = []string{"maturity", "grain_filling", "boll_opening"}
	earlyStages         = []string{"germination", "seedling"}
)

func in(stage string, family []string) bool {
	for _, s := range family {
		if s == stage {
			return true
		}
	}
	return false
}

// Evaluate applies the five rules independently and aggregates the
// overall level as the maximum severity among triggered rules. Pure
// function of its inputs.
func Evaluate(crop stage.Assessment, wx weatherimpact.Assessment, irrigationType string) Assessment {
	if irrigationType == "" {
		irrigationType = "rainfed"
	}

	currentStage := crop.CurrentStage
	temp := wx.Current.TemperatureC
	forecast := wx.Forecast3Day

	var risks []Risk
	var alerts []string

	// Rule 1: heat stress during flowering-family stages.
	if in(currentStage, heatFloweringStages) && crop.HeatSensitive && crop.CriticalTempMax > 0 {
		if temp > crop.CriticalTempMax {
			risks = append(risks, Risk{
				Type:     "heat_stress",
				Severity: High,
				Message: fmt.Sprintf("Critical heat stress! Temperature (%g°C) exceeds safe limit (%g°C) during %s",
					temp, crop.CriticalTempMax, currentStage),
				Action: "Irrigate during hottest hours for cooling effect. Avoid field work 11am-3pm.",
			})
			alerts = append(alerts, fmt.Sprintf("⚠️ Heat Alert: %g°C dangerous for %s", temp, currentStage))
		} else {
			for _, f := range forecast {
				if f.TempMaxC > crop.CriticalTempMax {
					risks = append(risks, Risk{
						Type:     "heat_forecast",
						Severity: Medium,
						Message:  fmt.Sprintf("Heat stress expected in coming days during critical %s stage", currentStage),
						Action:   "Prepare for irrigation. Monitor temperatures closely.",
					})
					break
				}
			}
		}
	}

	// Rule 2: rain probability above 70% during flowering-family stages.
	if in(currentStage, rainFloweringStages) {
		maxProb := 0.0
		for _, f := range forecast {
			if f.RainProbability > maxProb {
				maxProb = f.RainProbability
			}
		}
		if maxProb > 70 {
			risks = append(risks, Risk{
				Type:     "rain_during_flowering",
				Severity: Medium,
				Message:  fmt.Sprintf("Rain expected (%g%% probability) during flowering may affect pollination", maxProb),
				Action:   "Monitor for disease after rain. Flowering timing may affect yield.",
			})
		}
	}

	// Rule 3: heavy cumulative rain during maturity-family stages.
	if in(currentStage, maturityStages) {
		totalRain := 0.0
		for _, f := range forecast {
			totalRain += f.PrecipitationMM
		}
		if totalRain > 20 {
			risks = append(risks, Risk{
				Type:     "rain_during_maturity",
				Severity: High,
				Message: fmt.Sprintf("Heavy rain (%.0fmm) expected during %s. Risk of grain damage.",
					totalRain, currentStage),
				Action: "Consider early harvest if crop is ready. Inspect for fungal issues after rain.",
			})
			alerts = append(alerts, fmt.Sprintf("🌧️ Rain Alert: %.0fmm expected - protect mature crop", totalRain))
		}
	}

	// Rule 4: forecast lows below 10C during germination or seedling.
	if in(currentStage, earlyStages) {
		for _, f := range forecast {
			if f.TempMinC < 10 {
				risks = append(risks, Risk{
					Type:     "cold_stress_seedling",
					Severity: Medium,
					Message:  "Cold temperatures may slow seedling growth",
					Action:   "Provide mulch or protective covering if possible.",
				})
				break
			}
		}
	}

	// Rule 5: rainfed drought during vegetative growth.
	if currentStage == "vegetative" && irrigationType == "rainfed" && wx.Impact.IrrigationNeeded {
		rainComing := false
		for _, f := range forecast {
			if f.RainProbability > 50 {
				rainComing = true
				break
			}
		}
		if !rainComing {
			risks = append(risks, Risk{
				Type:     "drought_stress",
				Severity: Medium,
				Message:  "Drought conditions during vegetative growth may limit yield potential",
				Action:   "Irrigate if possible. Consider foliar spray to reduce water stress.",
			})
		}
	}

	overall := Low
	for _, r := range risks {
		overall = Max(overall, r.Severity)
	}

	confidence := 0.9
	reasoning := "No significant risks detected"
	if len(risks) > 0 {
		confidence = 0.8
		reasoning = fmt.Sprintf("Assessed %d risk(s) for %s stage", len(risks), currentStage)
	}

	return Assessment{
		Report: evaluator.Report{
			Confidence: confidence,
			Reasoning:  reasoning,
			Sources:    []string{"risk_rules", "weather_data", "crop_stage"},
		},
		OverallRisk:       overall,
		Risks:             risks,
		Alerts:            alerts,
		CropStage:         currentStage,
		ConditionsChecked: ConditionsChecked,
	}
}
