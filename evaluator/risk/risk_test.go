package risk

import (
	"strings"
	"testing"

	"github.com/sweetpotato0/agriadvisor/evaluator/stage"
	"github.com/sweetpotato0/agriadvisor/evaluator/weatherimpact"
	"github.com/sweetpotato0/agriadvisor/weather"
)

func floweringCrop() stage.Assessment {
	return stage.Assessment{
		CurrentStage:    "flowering",
		HeatSensitive:   true,
		CriticalTempMax: 35,
		KnownCrop:       true,
	}
}

func mildWx() weatherimpact.Assessment {
	return weatherimpact.Assessment{
		Current: weather.Current{TemperatureC: 28},
		Forecast3Day: []weather.Daily{
			{TempMaxC: 31, TempMinC: 21, RainProbability: 10},
			{TempMaxC: 32, TempMinC: 22, RainProbability: 20},
			{TempMaxC: 30, TempMinC: 20, RainProbability: 15},
		},
	}
}

func TestNoRisks(t *testing.T) {
	a := Evaluate(floweringCrop(), mildWx(), "canal")
	if a.OverallRisk != Low {
		t.Errorf("overall = %s, want low", a.OverallRisk)
	}
	if len(a.Risks) != 0 {
		t.Errorf("risks = %d, want 0", len(a.Risks))
	}
	if a.Confidence != 0.9 {
		t.Errorf("confidence = %.2f, want 0.9", a.Confidence)
	}
	if len(a.ConditionsChecked) != 5 || a.ConditionsChecked[0] != "flowering_heat" {
		t.Errorf("audit list = %v", a.ConditionsChecked)
	}
}

func TestHeatStressCurrent(t *testing.T) {
	wx := mildWx()
	wx.Current.TemperatureC = 38
	a := Evaluate(floweringCrop(), wx, "canal")
	if a.OverallRisk != High {
		t.Fatalf("overall = %s, want high", a.OverallRisk)
	}
	if a.Risks[0].Type != "heat_stress" {
		t.Errorf("risk type = %s", a.Risks[0].Type)
	}
	if len(a.Alerts) != 1 || !strings.Contains(a.Alerts[0], "Heat Alert") {
		t.Errorf("alerts = %v", a.Alerts)
	}
	if a.Confidence != 0.8 {
		t.Errorf("confidence = %.2f, want 0.8", a.Confidence)
	}
}

func TestHeatStressForecastOnly(t *testing.T) {
	wx := mildWx()
	wx.Forecast3Day[1].TempMaxC = 37
	a := Evaluate(floweringCrop(), wx, "canal")
	if a.OverallRisk != Medium {
		t.Fatalf("overall = %s, want medium", a.OverallRisk)
	}
	if a.Risks[0].Type != "heat_forecast" {
		t.Errorf("risk type = %s", a.Risks[0].Type)
	}
	if len(a.Alerts) != 0 {
		t.Errorf("forecast-only heat should not alert, got %v", a.Alerts)
	}
}

func TestRainDuringFlowering(t *testing.T) {
	wx := mildWx()
	wx.Forecast3Day[0].RainProbability = 85
	a := Evaluate(floweringCrop(), wx, "canal")
	found := false
	for _, r := range a.Risks {
		if r.Type == "rain_during_flowering" && r.Severity == Medium {
			found = true
		}
	}
	if !found {
		t.Errorf("expected rain_during_flowering risk, got %+v", a.Risks)
	}
}

func TestRainDuringMaturity(t *testing.T) {
	crop := stage.Assessment{CurrentStage: "grain_filling", KnownCrop: true}
	wx := mildWx()
	wx.Forecast3Day[0].PrecipitationMM = 15
	wx.Forecast3Day[1].PrecipitationMM = 10
	a := Evaluate(crop, wx, "canal")
	if a.OverallRisk != High {
		t.Fatalf("overall = %s, want high", a.OverallRisk)
	}
	if len(a.Alerts) != 1 || !strings.Contains(a.Alerts[0], "Rain Alert") {
		t.Errorf("alerts = %v", a.Alerts)
	}
}

func TestSeedlingCold(t *testing.T) {
	crop := stage.Assessment{CurrentStage: "seedling", KnownCrop: true}
	wx := mildWx()
	wx.Forecast3Day[2].TempMinC = 7
	a := Evaluate(crop, wx, "canal")
	if a.OverallRisk != Medium {
		t.Fatalf("overall = %s, want medium", a.OverallRisk)
	}
	if a.Risks[0].Type != "cold_stress_seedling" {
		t.Errorf("risk type = %s", a.Risks[0].Type)
	}
}

func TestVegetativeDrought(t *testing.T) {
	crop := stage.Assessment{CurrentStage: "vegetative", KnownCrop: true}
	wx := mildWx()
	wx.Impact.IrrigationNeeded = true

	a := Evaluate(crop, wx, "rainfed")
	if len(a.Risks) != 1 || a.Risks[0].Type != "drought_stress" {
		t.Fatalf("expected drought_stress, got %+v", a.Risks)
	}

	// Irrigated farms do not trigger the drought rule.
	a = Evaluate(crop, wx, "canal")
	if len(a.Risks) != 0 {
		t.Errorf("canal irrigation should not trigger drought, got %+v", a.Risks)
	}

	// Rain on the way suppresses the rule.
	wx.Forecast3Day[1].RainProbability = 60
	a = Evaluate(crop, wx, "rainfed")
	if len(a.Risks) != 0 {
		t.Errorf("incoming rain should suppress drought, got %+v", a.Risks)
	}
}

func TestSeverityAggregationMax(t *testing.T) {
	// Trigger a medium (rain during flowering) and a high (heat stress).
	wx := mildWx()
	wx.Current.TemperatureC = 38
	wx.Forecast3Day[0].RainProbability = 85
	a := Evaluate(floweringCrop(), wx, "canal")
	if len(a.Risks) != 2 {
		t.Fatalf("risks = %d, want 2", len(a.Risks))
	}
	if a.OverallRisk != High {
		t.Errorf("overall = %s, want high (max of triggered severities)", a.OverallRisk)
	}
}

func TestEvaluateIdempotent(t *testing.T) {
	crop := floweringCrop()
	wx := mildWx()
	wx.Current.TemperatureC = 38
	a1 := Evaluate(crop, wx, "rainfed")
	a2 := Evaluate(crop, wx, "rainfed")
	if a1.OverallRisk != a2.OverallRisk || len(a1.Risks) != len(a2.Risks) || a1.Confidence != a2.Confidence {
		t.Error("Evaluate should be a pure function of its inputs")
	}
}
