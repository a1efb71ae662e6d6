// Package cropdata holds the static crop knowledge base: per-crop base
// temperatures, growth-stage tables keyed by accumulated heat units, and
// the advisory attributes attached to each stage. Tables are validated at
// load time; every stage table must terminate in a "harvest" stage because
// overall crop progress is measured against its starting heat-unit value.
package cropdata

import (
	"fmt"
	"strings"
)

// Stage describes one growth stage in a crop's lifecycle. The stage covers
// the half-open accumulated-GDD range [GDDStart, GDDEnd).
type Stage struct {
	Name            string
	GDDStart        float64
	GDDEnd          float64
	Description     string
	WaterNeed       string
	NutrientNeed    string
	HeatSensitive   bool
	CriticalTempMax float64 // 0 when the stage has no critical maximum
}

// Crop bundles everything the advisory knows about one crop type.
type Crop struct {
	Name            string
	Category        string
	BaseTemperature float64
	SeasonDays      [2]int
	WaterRequirement string
	Stages          []Stage // ordered by GDDStart, last stage is "harvest"
	CommonPests     []string
	CommonDiseases  []string
}

// TerminalStageName is the stage every table must end with.
const TerminalStageName = "harvest"

// Progress summarises where a crop sits in its lifecycle for a given
// accumulated heat-unit value.
type Progress struct {
	CurrentStage    string
	Description     string
	StageProgress   float64 // 0..1 within the current stage
	OverallProgress float64 // 0..1 of the whole lifecycle (vs harvest GDDStart)
	GDDToNextStage  float64
	WaterNeed       string
	NutrientNeed    string
	HeatSensitive   bool
	CriticalTempMax float64
}

// Normalize canonicalises a crop type for table lookup.
func Normalize(cropType string) string {
	s := strings.ToLower(strings.TrimSpace(cropType))
	s = strings.ReplaceAll(s, " ", "_")
	s = strings.ReplaceAll(s, "-", "_")
	return s
}

// Info returns the knowledge-base entry for a crop type.
func Info(cropType string) (*Crop, bool) {
	crop, ok := crops[Normalize(cropType)]
	return crop, ok
}

// Known reports whether the crop type has a stage table.
func Known(cropType string) bool {
	_, ok := crops[Normalize(cropType)]
	return ok
}

// AvailableCrops lists all crop types with stage tables.
func AvailableCrops() []string {
	out := make([]string, 0, len(crops))
	for name := range crops {
		out = append(out, name)
	}
	return out
}

// CurrentStage selects the stage whose [GDDStart, GDDEnd) range contains the
// accumulated value. Values past every range resolve to the last stage, so the
// lookup is total for any non-negative input.
func (c *Crop) CurrentStage(accumulatedGDD float64) *Stage {
	for i := range c.Stages {
		s := &c.Stages[i]
		if s.GDDStart <= accumulatedGDD && accumulatedGDD < s.GDDEnd {
			return s
		}
	}
	if len(c.Stages) == 0 {
		return nil
	}
	return &c.Stages[len(c.Stages)-1]
}

// HarvestGDDStart returns the accumulated-GDD value at which the terminal
// harvest stage begins.
func (c *Crop) HarvestGDDStart() float64 {
	for i := range c.Stages {
		if c.Stages[i].Name == TerminalStageName {
			return c.Stages[i].GDDStart
		}
	}
	return 0
}

// StageProgress computes stage and lifecycle progress for the accumulated
// heat-unit value.
func (c *Crop) StageProgress(accumulatedGDD float64) Progress {
	stage := c.CurrentStage(accumulatedGDD)
	if stage == nil {
		return Progress{}
	}

	stageTotal := stage.GDDEnd - stage.GDDStart
	stageProgress := 1.0
	if stageTotal > 0 {
		stageProgress = clamp01((accumulatedGDD - stage.GDDStart) / stageTotal)
	}

	overall := 0.0
	if harvestStart := c.HarvestGDDStart(); harvestStart > 0 {
		overall = clamp01(accumulatedGDD / harvestStart)
	}

	toNext := stage.GDDEnd - accumulatedGDD
	if toNext < 0 {
		toNext = 0
	}

	return Progress{
		CurrentStage:    stage.Name,
		Description:     stage.Description,
		StageProgress:   stageProgress,
		OverallProgress: overall,
		GDDToNextStage:  toNext,
		WaterNeed:       stage.WaterNeed,
		NutrientNeed:    stage.NutrientNeed,
		HeatSensitive:   stage.HeatSensitive,
		CriticalTempMax: stage.CriticalTempMax,
	}
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// Validate checks the structural invariants of a stage table: non-empty,
// ordered, non-overlapping ranges starting at zero, and a terminal harvest
// stage. Called for every table at package load.
func (c *Crop) Validate() error {
	if len(c.Stages) == 0 {
		return fmt.Errorf("crop %s: stage table is empty", c.Name)
	}
	prevEnd := 0.0
	for _, s := range c.Stages {
		if s.GDDStart >= s.GDDEnd {
			return fmt.Errorf("crop %s: stage %s has invalid range [%.0f, %.0f)", c.Name, s.Name, s.GDDStart, s.GDDEnd)
		}
		if s.GDDStart != prevEnd {
			return fmt.Errorf("crop %s: stage %s starts at %.0f, expected %.0f", c.Name, s.Name, s.GDDStart, prevEnd)
		}
		if s.HeatSensitive && s.CriticalTempMax <= 0 {
			return fmt.Errorf("crop %s: heat-sensitive stage %s needs a critical temperature", c.Name, s.Name)
		}
		prevEnd = s.GDDEnd
	}
	if c.Stages[len(c.Stages)-1].Name != TerminalStageName {
		return fmt.Errorf("crop %s: stage table must end with %q", c.Name, TerminalStageName)
	}
	return nil
}

func init() {
	for name, crop := range crops {
		if err := crop.Validate(); err != nil {
			panic(fmt.Sprintf("cropdata: invalid stage table for %s: %v", name, err))
		}
	}
}
