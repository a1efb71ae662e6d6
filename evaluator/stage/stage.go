// Package stage determines a crop's growth stage from accumulated heat
// units. Purely deterministic; no language model involved.
package stage

import (
	"fmt"
	"time"

	"github.com/sweetpotato0/agriadvisor/cropdata"
	"github.com/sweetpotato0/agriadvisor/evaluator"
	"github.com/sweetpotato0/agriadvisor/weather"
)

// Default average temperatures used when no forecast is available.
// Reasonable for tropical growing regions.
const (
	DefaultAvgTempMax = 32.0
	DefaultAvgTempMin = 22.0
)

// Input carries what the stage evaluator needs. History holds daily
// observations since sowing and is summed directly when present;
// otherwise accumulation is estimated from the forecast averages, or
// from the tropical defaults when the forecast is empty too.
type Input struct {
	CropType   string
	SowingDate time.Time
	Forecast   []weather.Daily
	History    []weather.DayRecord
}

// Assessment is the stage evaluator's output.
type Assessment struct {
	evaluator.Report

	Err             string  `json:"error,omitempty"`
	CropType        string  `json:"crop_type"`
	SowingDate      string  `json:"sowing_date"`
	DaysSinceSowing int     `json:"days_since_sowing"`
	AccumulatedGDD  float64 `json:"accumulated_gdd"`
	DailyGDD        float64 `json:"daily_gdd"`
	AverageDailyGDD float64 `json:"average_daily_gdd"`
	CurrentStage    string  `json:"current_stage"`
	StageDesc       string  `json:"stage_description"`
	StageProgress   float64 `json:"stage_progress"`
	OverallProgress float64 `json:"overall_progress"`
	WaterNeed       string  `json:"water_need"`
	NutrientNeed    string  `json:"nutrient_need"`
	HeatSensitive   bool    `json:"heat_sensitive"`
	CriticalTempMax float64 `json:"critical_temp_max"`
	GDDToNextStage  float64 `json:"gdd_to_next_stage"`
	DaysToNextStage int     `json:"days_to_next_stage"`
	KnownCrop       bool    `json:"known_crop"`
}

// OK reports whether a stage was resolved from the knowledge base.
func (a Assessment) OK() bool {
	return a.Err == "" && a.KnownCrop
}

// Evaluator computes growth-stage assessments.
type Evaluator struct {
	now func() time.Time
}

// New creates a stage evaluator using the wall clock.
func New() *Evaluator {
	return &Evaluator{now: time.Now}
}

// NewAt creates a stage evaluator with a fixed clock, for tests.
func NewAt(now func() time.Time) *Evaluator {
	return &Evaluator{now: now}
}

// Evaluate resolves the crop's current stage from accumulated heat units.
// Missing crop type or sowing date yields confidence 0; an unknown crop
// type yields a partial result at confidence 0.5 rather than failure.
func (e *Evaluator) Evaluate(in Input) Assessment {
	if in.CropType == "" || in.SowingDate.IsZero() {
		return Assessment{
			Report: evaluator.Report{
				Confidence: 0,
				Reasoning:  "Missing required crop information",
				Sources:    []string{},
			},
			Err: "crop type and sowing date required",
		}
	}

	var gdd GDDResult
	if len(in.History) > 0 {
		gdd = AccumulateGDD(in.History, in.CropType)
	} else {
		avgMax, avgMin := DefaultAvgTempMax, DefaultAvgTempMin
		if len(in.Forecast) > 0 {
			sumMax, sumMin := 0.0, 0.0
			for _, f := range in.Forecast {
				sumMax += f.TempMaxC
				sumMin += f.TempMinC
			}
			avgMax = sumMax / float64(len(in.Forecast))
			avgMin = sumMin / float64(len(in.Forecast))
		}
		gdd = EstimateGDDFromAverage(in.SowingDate, avgMax, avgMin, in.CropType, e.now())
	}

	a := Assessment{
		CropType:        in.CropType,
		SowingDate:      in.SowingDate.Format("2006-01-02"),
		DaysSinceSowing: gdd.DaysSinceSowing,
		AccumulatedGDD:  gdd.AccumulatedGDD,
		DailyGDD:        gdd.DailyGDD,
		AverageDailyGDD: gdd.AverageDailyGDD,
	}

	crop, ok := cropdata.Info(in.CropType)
	if !ok {
		a.Report = evaluator.Report{
			Confidence: 0.5,
			Reasoning:  fmt.Sprintf("Crop %q not in knowledge base, using defaults", in.CropType),
			Sources:    []string{"gdd_calculation"},
		}
		return a
	}

	progress := crop.StageProgress(gdd.AccumulatedGDD)
	a.KnownCrop = true
	a.CurrentStage = progress.CurrentStage
	a.StageDesc = progress.Description
	a.StageProgress = progress.StageProgress
	a.OverallProgress = progress.OverallProgress
	a.WaterNeed = progress.WaterNeed
	a.NutrientNeed = progress.NutrientNeed
	a.HeatSensitive = progress.HeatSensitive
	a.CriticalTempMax = progress.CriticalTempMax
	a.GDDToNextStage = progress.GDDToNextStage
	a.DaysToNextStage = DaysToTargetGDD(gdd.AccumulatedGDD, gdd.AccumulatedGDD+progress.GDDToNextStage, gdd.AverageDailyGDD)
	a.Report = evaluator.Report{
		Confidence: 0.85,
		Reasoning:  fmt.Sprintf("Stage calculated using %.0f GDD over %d days", gdd.AccumulatedGDD, gdd.DaysSinceSowing),
		Sources:    []string{"gdd_calculation", "crop_knowledge_base"},
	}
	return a
}
