package orchestrator

import (
	"context"
	"fmt"
	"time"

	"github.com/sweetpotato0/agriadvisor/conversation"
	"github.com/sweetpotato0/agriadvisor/cropdata"
	"github.com/sweetpotato0/agriadvisor/evaluator/risk"
	"github.com/sweetpotato0/agriadvisor/evaluator/stage"
	"github.com/sweetpotato0/agriadvisor/evaluator/weatherimpact"
	"github.com/sweetpotato0/agriadvisor/farm"
	"github.com/sweetpotato0/agriadvisor/intents"
	"github.com/sweetpotato0/agriadvisor/llm"
	"github.com/sweetpotato0/agriadvisor/pkg/logging"
	"github.com/sweetpotato0/agriadvisor/pkg/telemetry"
)

// pipelineState accumulates evaluator outputs across the ordered stages.
type pipelineState struct {
	snap      *farm.ContextSnapshot
	collected map[string]string

	weather weatherimpact.Assessment
	stage   stage.Assessment
	risk    risk.Assessment
	riskRan bool
}

// pipelineStage is one step of the fixed evaluator sequence. A stage
// whose ready predicate is false is skipped, never an error.
type pipelineStage struct {
	name  string
	ready func(*pipelineState) bool
	run   func(context.Context, *pipelineState)
}

// pipelineStages returns the fixed ordered stage list. Weather always runs (the
// evaluator itself degrades without a location); growth stage needs a
// crop and sowing date; risk needs a resolved stage.
func (o *Orchestrator) pipelineStages() []pipelineStage {
	return []pipelineStage{
		{
			name:  "weather",
			ready: func(*pipelineState) bool { return true },
			run: func(ctx context.Context, ps *pipelineState) {
				ps.weather = o.weather.Evaluate(ctx, farmLocation(ps.snap))
			},
		},
		{
			name: "growth_stage",
			ready: func(ps *pipelineState) bool {
				_, _, ok := cropInputs(ps.snap, ps.collected)
				return ok
			},
			run: func(ctx context.Context, ps *pipelineState) {
				cropType, sowing, _ := cropInputs(ps.snap, ps.collected)
				// Observed temperatures since sowing beat the forecast
				// averages; history ends yesterday.
				history := o.weather.History(ctx, farmLocation(ps.snap), sowing, o.now().AddDate(0, 0, -1))
				ps.stage = o.stages.Evaluate(stage.Input{
					CropType:   cropType,
					SowingDate: sowing,
					Forecast:   ps.weather.Forecast3Day,
					History:    history,
				})
			},
		},
		{
			name:  "risk",
			ready: func(ps *pipelineState) bool { return ps.stage.OK() },
			run: func(ctx context.Context, ps *pipelineState) {
				ps.risk = risk.Evaluate(ps.stage, ps.weather, ps.snap.IrrigationType())
				ps.riskRan = true
			},
		},
	}
}

// runPipeline executes the evaluator sequence, decides a recommendation,
// and phrases the final response.
func (o *Orchestrator) runPipeline(ctx context.Context, snap *farm.ContextSnapshot, intent intents.Intent, collected map[string]string, language string) *TurnResponse {
	logger := logging.WithComponent("orchestrator")
	ps := &pipelineState{snap: snap, collected: collected}

	for _, s := range o.pipelineStages() {
		if !s.ready(ps) {
			logger.Debug("pipeline stage skipped", "stage", s.name)
			continue
		}
		sctx, span := telemetry.Tracer("orchestrator").Start(ctx, "pipeline."+s.name)
		s.run(sctx, ps)
		telemetry.End(span, nil)
	}

	waterNeed := ps.stage.WaterNeed
	if waterNeed == "" {
		waterNeed = "medium"
	}
	riskLevel := risk.Low
	if ps.riskRan {
		riskLevel = ps.risk.OverallRisk
	}
	recommendation := Decide(intent, ps.weather.Impact, ps.stage.CurrentStage, waterNeed, riskLevel)

	phrase := o.model.PhraseResponse(ctx, llm.DecisionData{
		Intent:         intent,
		Weather:        ps.weather,
		WeatherOK:      ps.weather.OK(),
		CropStage:      ps.stage,
		CropStageOK:    ps.stage.OK(),
		Risks:          ps.risk,
		RisksOK:        ps.riskRan,
		Recommendation: recommendation,
		Alerts:         ps.risk.Alerts,
	}, language, snap.Farmer.Name)

	return &TurnResponse{
		Response:    phrase.Text,
		Confidence:  turnConfidence(ps),
		Reasoning:   turnReasoning(intent, ps),
		DataSources: turnSources(ps),
		Alerts:      ps.risk.Alerts,
	}
}

// farmLocation returns the farmer's coordinates, or nil when none are
// recorded.
func farmLocation(snap *farm.ContextSnapshot) *weatherimpact.Location {
	if !snap.HasLocation {
		return nil
	}
	return &weatherimpact.Location{
		Latitude:  *snap.Farmer.Latitude,
		Longitude: *snap.Farmer.Longitude,
	}
}

// cropInputs resolves the growth-stage inputs from collected values and
// the snapshot. ok is false when either is missing or unparseable.
func cropInputs(snap *farm.ContextSnapshot, collected map[string]string) (string, time.Time, bool) {
	cropType := conversation.ResolveField(intents.FieldCropType, snap, collected)
	sowingRaw := conversation.ResolveField(intents.FieldSowingDate, snap, collected)
	if cropType == "" || sowingRaw == "" {
		return "", time.Time{}, false
	}
	sowing, err := time.Parse("2006-01-02", sowingRaw)
	if err != nil {
		return "", time.Time{}, false
	}
	return cropdata.Normalize(cropType), sowing, true
}

// turnConfidence averages the fixed decision weight with the conditional
// weights of the evaluators that succeeded. Language phrasing never
// contributes.
func turnConfidence(ps *pipelineState) float64 {
	weights := []float64{0.9}
	if ps.weather.OK() {
		weights = append(weights, 0.9)
	}
	if ps.stage.OK() {
		weights = append(weights, 0.85)
	}
	sum := 0.0
	for _, w := range weights {
		sum += w
	}
	return sum / float64(len(weights))
}

func turnReasoning(intent intents.Intent, ps *pipelineState) string {
	stageName := "N/A"
	if ps.stage.CurrentStage != "" {
		stageName = ps.stage.CurrentStage
	}
	riskName := "N/A"
	if ps.riskRan {
		riskName = string(ps.risk.OverallRisk)
	}
	return fmt.Sprintf("Intent: %s | Stage: %s | Risk: %s", intent, stageName, riskName)
}

// turnSources aggregates evaluator source tags in pipeline order,
// deduplicated.
func turnSources(ps *pipelineState) []string {
	sources := []string{"intent_extraction"}
	sources = append(sources, ps.weather.Sources...)
	sources = append(sources, ps.stage.Sources...)
	sources = append(sources, ps.risk.Sources...)

	seen := make(map[string]bool, len(sources))
	out := sources[:0]
	for _, s := range sources {
		if !seen[s] {
			seen[s] = true
			out = append(out, s)
		}
	}
	return out
}
