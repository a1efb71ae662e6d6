package weatherimpact

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/sweetpotato0/agriadvisor/weather"
)

type stubSource struct {
	data    *weather.Data
	history []weather.DayRecord
	err     error
}

func (s *stubSource) Fetch(ctx context.Context, lat, lon float64) (*weather.Data, error) {
	return s.data, s.err
}

func (s *stubSource) FetchHistory(ctx context.Context, lat, lon float64, start, end time.Time) ([]weather.DayRecord, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.history, nil
}

func mildWeather() *weather.Data {
	return &weather.Data{
		Current: weather.Current{
			TemperatureC: 24,
			WindKPH:      8,
			Condition:    weather.Clear,
		},
		Forecast: []weather.Daily{
			{TempMaxC: 30, TempMinC: 20, RainProbability: 10},
			{TempMaxC: 31, TempMinC: 21, RainProbability: 20},
			{TempMaxC: 29, TempMinC: 19, RainProbability: 5},
			{TempMaxC: 28, TempMinC: 18, RainProbability: 5},
		},
	}
}

func TestEvaluateNoLocation(t *testing.T) {
	e := New(&stubSource{}, nil)
	a := e.Evaluate(context.Background(), nil)
	if a.Confidence != 0 {
		t.Errorf("confidence = %.2f, want 0", a.Confidence)
	}
	if a.Err == "" {
		t.Error("expected error field for missing location")
	}
	if a.OK() {
		t.Error("assessment should not be OK")
	}
}

func TestEvaluateFetchFailure(t *testing.T) {
	e := New(&stubSource{err: errors.New("connection refused")}, nil)
	a := e.Evaluate(context.Background(), &Location{17.4, 78.5})
	if a.Confidence != 0 {
		t.Errorf("confidence = %.2f, want 0", a.Confidence)
	}
	if a.Err == "" {
		t.Error("expected error field after fetch failure")
	}
}

func TestEvaluateSuccess(t *testing.T) {
	e := New(&stubSource{data: mildWeather()}, nil)
	a := e.Evaluate(context.Background(), &Location{17.4, 78.5})
	if a.Confidence != 0.9 {
		t.Errorf("confidence = %.2f, want 0.9", a.Confidence)
	}
	if len(a.Forecast3Day) != 3 {
		t.Errorf("forecast days = %d, want 3", len(a.Forecast3Day))
	}
	if len(a.Sources) != 1 || a.Sources[0] != "open-meteo" {
		t.Errorf("sources = %v", a.Sources)
	}
	if !a.OK() {
		t.Error("assessment should be OK")
	}
}

func TestHistory(t *testing.T) {
	records := []weather.DayRecord{
		{TempMaxC: 32, TempMinC: 22},
		{TempMaxC: 34, TempMinC: 24},
	}
	e := New(&stubSource{history: records}, nil)
	start := time.Date(2026, 6, 30, 0, 0, 0, 0, time.UTC)
	end := time.Date(2026, 8, 28, 0, 0, 0, 0, time.UTC)

	got := e.History(context.Background(), &Location{17.4, 78.5}, start, end)
	if len(got) != 2 {
		t.Errorf("records = %d, want 2", len(got))
	}

	if got := e.History(context.Background(), nil, start, end); got != nil {
		t.Errorf("nil location should yield nil, got %v", got)
	}
	if got := e.History(context.Background(), &Location{17.4, 78.5}, end, start); got != nil {
		t.Errorf("reversed range should yield nil, got %v", got)
	}

	failing := New(&stubSource{err: errors.New("archive down")}, nil)
	if got := failing.History(context.Background(), &Location{17.4, 78.5}, start, end); got != nil {
		t.Errorf("source failure should degrade to nil, got %v", got)
	}
}

func TestRainRisk(t *testing.T) {
	cases := []struct {
		name string
		mod  func(*weather.Data)
		want float64
	}{
		{"raining now", func(d *weather.Data) { d.Current.PrecipitationMM = 2 }, 0.9},
		{"forecast 80%", func(d *weather.Data) { d.Forecast[0].RainProbability = 80 }, 0.8},
		{"stormy sky", func(d *weather.Data) { d.Current.Condition = weather.Stormy }, 0.8},
		{"clear", func(d *weather.Data) {}, 0},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			d := mildWeather()
			c.mod(d)
			impact, _ := Assess(d)
			if impact.RainRisk != c.want {
				t.Errorf("rain risk = %.2f, want %.2f", impact.RainRisk, c.want)
			}
		})
	}
}

func TestHeatAndColdStress(t *testing.T) {
	cases := []struct {
		temp     float64
		wantHeat float64
		wantCold float64
	}{
		{42, 1.0, 0},
		{37.5, 0.5, 0},
		{33, 0.2, 0},
		{25, 0, 0},
		{13, 0, 0.2},
		{7.5, 0, 0.5},
		{3, 0, 1.0},
	}
	for _, c := range cases {
		d := mildWeather()
		d.Current.TemperatureC = c.temp
		impact, _ := Assess(d)
		if impact.HeatStressRisk != c.wantHeat {
			t.Errorf("temp %.1f: heat = %.2f, want %.2f", c.temp, impact.HeatStressRisk, c.wantHeat)
		}
		if impact.ColdStressRisk != c.wantCold {
			t.Errorf("temp %.1f: cold = %.2f, want %.2f", c.temp, impact.ColdStressRisk, c.wantCold)
		}
	}
}

func TestSafetyFlags(t *testing.T) {
	d := mildWeather()
	impact, reasoning := Assess(d)
	if !impact.SpraySafe {
		t.Error("mild weather should be spray safe")
	}
	if !impact.FieldWorkSafe {
		t.Error("mild weather should be field work safe")
	}
	if impact.IrrigationNeeded {
		t.Error("24C should not need irrigation")
	}
	if reasoning != "Weather conditions are favorable for farming activities" {
		t.Errorf("reasoning = %q", reasoning)
	}

	d.Current.WindKPH = 20
	impact, reasoning = Assess(d)
	if impact.SpraySafe {
		t.Error("20 km/h wind should block spraying")
	}
	if reasoning == "" || reasoning == "Weather conditions are favorable for farming activities" {
		t.Errorf("reasoning should mention wind, got %q", reasoning)
	}

	d = mildWeather()
	d.Current.TemperatureC = 30
	impact, _ = Assess(d)
	if !impact.IrrigationNeeded {
		t.Error("hot dry day should need irrigation")
	}

	d.Current.Condition = weather.Stormy
	impact, _ = Assess(d)
	if impact.FieldWorkSafe {
		t.Error("stormy weather should block field work")
	}
}

func TestAssessIdempotent(t *testing.T) {
	d := mildWeather()
	a1, r1 := Assess(d)
	a2, r2 := Assess(d)
	if a1 != a2 || r1 != r2 {
		t.Error("Assess should be a pure function of its input")
	}
}
