package orchestrator

import (
	"context"
	"errors"
	"math"
	"strings"
	"testing"
	"time"

	"github.com/sweetpotato0/agriadvisor/conversation"
	convstore "github.com/sweetpotato0/agriadvisor/conversation/store"
	agrierrors "github.com/sweetpotato0/agriadvisor/errors"
	"github.com/sweetpotato0/agriadvisor/evaluator/risk"
	"github.com/sweetpotato0/agriadvisor/evaluator/stage"
	"github.com/sweetpotato0/agriadvisor/evaluator/weatherimpact"
	"github.com/sweetpotato0/agriadvisor/farm"
	farmstore "github.com/sweetpotato0/agriadvisor/farm/store"
	"github.com/sweetpotato0/agriadvisor/intents"
	"github.com/sweetpotato0/agriadvisor/llm"
	"github.com/sweetpotato0/agriadvisor/weather"
)

var testNow = time.Date(2026, 8, 29, 12, 0, 0, 0, time.UTC)

// stubSource serves a fixed forecast: mild 32/22 days with a 70% rain
// probability today.
type stubSource struct {
	err error
}

func (s *stubSource) Fetch(ctx context.Context, lat, lon float64) (*weather.Data, error) {
	if s.err != nil {
		return nil, s.err
	}
	data := &weather.Data{
		Latitude:  lat,
		Longitude: lon,
		Current: weather.Current{
			TemperatureC: 30,
			Humidity:     60,
			WindKPH:      5,
			Condition:    weather.Cloudy,
		},
	}
	for i := 0; i < 3; i++ {
		d := weather.Daily{
			Date:     testNow.AddDate(0, 0, i),
			TempMaxC: 32,
			TempMinC: 22,
		}
		if i == 0 {
			d.RainProbability = 70
		}
		data.Forecast = append(data.Forecast, d)
	}
	return data, nil
}

func (s *stubSource) FetchHistory(ctx context.Context, lat, lon float64, start, end time.Time) ([]weather.DayRecord, error) {
	return nil, nil
}

// flakySaveStore wraps a real conversation store and fails Save on one
// designated call.
type flakySaveStore struct {
	conversation.Store
	calls  int
	failOn int
}

func (s *flakySaveStore) Save(ctx context.Context, state *conversation.State) error {
	s.calls++
	if s.calls == s.failOn {
		return errors.New("connection reset")
	}
	return s.Store.Save(ctx, state)
}

type fixture struct {
	orch  *Orchestrator
	farms *farmstore.InMemoryStore
	convs *convstore.InMemoryStore
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	farms := farmstore.NewInMemoryStore()
	convs := convstore.NewInMemoryStore()

	adapter := llm.NewAdapter(nil, &llm.Config{
		Timeout:     time.Second,
		MaxTokens:   500,
		Temperature: 0.3,
	})
	o := New(farms, convs,
		weatherimpact.New(&stubSource{}, nil),
		stage.NewAt(func() time.Time { return testNow }),
		adapter,
	)
	o.now = func() time.Time { return testNow }
	return &fixture{orch: o, farms: farms, convs: convs}
}

func (f *fixture) addFarmer(t *testing.T, withLocation bool) {
	t.Helper()
	farmer := &farm.Farmer{ID: "f1", Name: "Ravi", Language: "en"}
	if withLocation {
		lat, lon := 17.38, 78.48
		farmer.Latitude = &lat
		farmer.Longitude = &lon
	}
	if err := f.farms.SaveFarmer(context.Background(), farmer); err != nil {
		t.Fatalf("SaveFarmer: %v", err)
	}
}

func (f *fixture) addRiceCrop(t *testing.T) {
	t.Helper()
	// 60 days before the fixed clock: 17 GDD/day puts rice in flowering.
	_, err := f.farms.RegisterCrop(context.Background(), &farm.Crop{
		FarmerID:   "f1",
		CropType:   "rice",
		SowingDate: time.Date(2026, 6, 30, 12, 0, 0, 0, time.UTC),
		IsActive:   true,
	})
	if err != nil {
		t.Fatalf("RegisterCrop: %v", err)
	}
}

func TestRainHoldsIrrigation(t *testing.T) {
	f := newFixture(t)
	f.addFarmer(t, true)
	f.addRiceCrop(t)

	resp, err := f.orch.HandleTurn(context.Background(), &TurnRequest{
		FarmerID: "f1",
		Message:  "Should I water my rice today?",
	})
	if err != nil {
		t.Fatalf("HandleTurn: %v", err)
	}
	if !strings.Contains(resp.Response, "Hold irrigation") {
		t.Errorf("response should hold irrigation for 70%% rain:\n%s", resp.Response)
	}
	want := (0.9 + 0.9 + 0.85) / 3
	if math.Abs(resp.Confidence-want) > 1e-6 {
		t.Errorf("confidence = %.4f, want %.4f", resp.Confidence, want)
	}
	if resp.Reasoning != "Intent: irrigation_query | Stage: flowering | Risk: low" {
		t.Errorf("reasoning = %q", resp.Reasoning)
	}
	for _, src := range []string{"intent_extraction", "open-meteo", "gdd_calculation", "risk_rules"} {
		found := false
		for _, s := range resp.DataSources {
			if s == src {
				found = true
			}
		}
		if !found {
			t.Errorf("data sources missing %q: %v", src, resp.DataSources)
		}
	}
}

func TestDecideRainOverridesWaterNeed(t *testing.T) {
	got := Decide(intents.Irrigation,
		weatherimpact.Impact{RainRisk: 0.7, IrrigationNeeded: true},
		"flowering", "critical", risk.Low)
	if got != "Do not irrigate today - rain is expected." {
		t.Errorf("Decide = %q", got)
	}
}

func TestDecideTable(t *testing.T) {
	cases := []struct {
		name      string
		intent    intents.Intent
		impact    weatherimpact.Impact
		stage     string
		waterNeed string
		level     risk.Severity
		want      string
	}{
		{"irrigation needed", intents.Irrigation, weatherimpact.Impact{IrrigationNeeded: true}, "vegetative", "high", risk.Low,
			"Irrigation recommended today."},
		{"low water stage", intents.Irrigation, weatherimpact.Impact{}, "maturity", "low", risk.Low,
			"Irrigation not necessary - maturity stage has low water needs."},
		{"optional", intents.Irrigation, weatherimpact.Impact{}, "vegetative", "medium", risk.Low,
			"Optional irrigation - monitor soil moisture."},
		{"harvest ready dry", intents.Harvest, weatherimpact.Impact{RainRisk: 0.1}, "harvest", "none", risk.Low,
			"Your crop is ready for harvest. Weather looks good."},
		{"harvest ready wet", intents.Harvest, weatherimpact.Impact{RainRisk: 0.8}, "harvest", "none", risk.Low,
			"Crop ready but rain expected. Harvest quickly or wait for dry spell."},
		{"harvest near", intents.Harvest, weatherimpact.Impact{}, "maturity", "low", risk.Low,
			"Crop nearly ready. Prepare for harvest in 1-2 weeks."},
		{"harvest far", intents.Harvest, weatherimpact.Impact{}, "vegetative", "high", risk.Low,
			"Crop not ready - currently in vegetative stage."},
		{"spray safe", intents.Weather, weatherimpact.Impact{SpraySafe: true}, "", "medium", risk.Low,
			"Good conditions for field work and spraying."},
		{"spray unsafe", intents.Weather, weatherimpact.Impact{}, "", "medium", risk.Low,
			"Weather may affect field activities. Check before spraying."},
		{"pest", intents.PestDisease, weatherimpact.Impact{}, "flowering", "critical", risk.High,
			"For pest/disease issues, describe symptoms or upload a photo. Common issues for this stage are being assessed."},
		{"default high risk", intents.CropStatus, weatherimpact.Impact{}, "flowering", "critical", risk.High,
			"Alert: High risk detected for your flowering stage crop. Take precautions."},
		{"default calm", intents.General, weatherimpact.Impact{}, "vegetative", "high", risk.Low,
			"Your crop is progressing well. Keep monitoring."},
	}
	for _, c := range cases {
		if got := Decide(c.intent, c.impact, c.stage, c.waterNeed, c.level); got != c.want {
			t.Errorf("%s: Decide = %q, want %q", c.name, got, c.want)
		}
	}
}

func TestOneQuestionForSowingDate(t *testing.T) {
	f := newFixture(t)
	f.addFarmer(t, true)
	// Crop known but sowing date not recorded.
	_, err := f.farms.RegisterCrop(context.Background(), &farm.Crop{
		FarmerID: "f1", CropType: "rice", IsActive: true,
	})
	if err != nil {
		t.Fatalf("RegisterCrop: %v", err)
	}

	resp, err := f.orch.HandleTurn(context.Background(), &TurnRequest{
		FarmerID: "f1",
		Message:  "Should I water my rice today?",
	})
	if err != nil {
		t.Fatalf("HandleTurn: %v", err)
	}
	if !strings.Contains(resp.Response, "When did you sow") {
		t.Errorf("expected sowing date question, got: %s", resp.Response)
	}
	if !strings.Contains(resp.Reasoning, intents.FieldSowingDate) {
		t.Errorf("reasoning should name the field: %q", resp.Reasoning)
	}
	if len(resp.DataSources) != 1 || resp.DataSources[0] != "orchestrator" {
		t.Errorf("data sources = %v, want [orchestrator]", resp.DataSources)
	}

	state, err := f.convs.Get(context.Background(), "f1")
	if err != nil {
		t.Fatalf("state not persisted: %v", err)
	}
	if state.CurrentQuestionField != intents.FieldSowingDate {
		t.Errorf("pending field = %s", state.CurrentQuestionField)
	}

	// Answering completes the conversation and runs the pipeline.
	resp, err = f.orch.HandleTurn(context.Background(), &TurnRequest{
		FarmerID: "f1",
		Message:  "2026-06-30",
	})
	if err != nil {
		t.Fatalf("HandleTurn answer: %v", err)
	}
	if !strings.Contains(resp.Reasoning, "Stage: flowering") {
		t.Errorf("pipeline should have run: %q", resp.Reasoning)
	}
	if _, err := f.convs.Get(context.Background(), "f1"); !errors.Is(err, agrierrors.ErrNotFound) {
		t.Errorf("state should be cleared, got err = %v", err)
	}
}

func TestCropRegisteredAfterSlotFilling(t *testing.T) {
	f := newFixture(t)
	f.addFarmer(t, true)

	ctx := context.Background()
	if _, err := f.orch.HandleTurn(ctx, &TurnRequest{FarmerID: "f1", Message: "should i water my crop"}); err != nil {
		t.Fatalf("turn 1: %v", err)
	}
	if _, err := f.orch.HandleTurn(ctx, &TurnRequest{FarmerID: "f1", Message: "rice"}); err != nil {
		t.Fatalf("turn 2: %v", err)
	}
	resp, err := f.orch.HandleTurn(ctx, &TurnRequest{FarmerID: "f1", Message: "2026-06-30"})
	if err != nil {
		t.Fatalf("turn 3: %v", err)
	}
	if !strings.Contains(resp.Reasoning, "Stage: flowering") {
		t.Errorf("pipeline should have run: %q", resp.Reasoning)
	}

	crops, err := f.farms.ListCrops(ctx, "f1")
	if err != nil {
		t.Fatalf("ListCrops: %v", err)
	}
	if len(crops) != 1 || crops[0].CropType != "rice" || !crops[0].IsActive {
		t.Errorf("crop not registered: %+v", crops)
	}
}

func TestSaveFailureKeepsQuestionAndStateAligned(t *testing.T) {
	farms := farmstore.NewInMemoryStore()
	inner := convstore.NewInMemoryStore()
	convs := &flakySaveStore{Store: inner, failOn: 2}

	adapter := llm.NewAdapter(nil, &llm.Config{
		Timeout:     time.Second,
		MaxTokens:   500,
		Temperature: 0.3,
	})
	o := New(farms, convs,
		weatherimpact.New(&stubSource{}, nil),
		stage.NewAt(func() time.Time { return testNow }),
		adapter,
	)
	o.now = func() time.Time { return testNow }

	ctx := context.Background()
	lat, lon := 17.38, 78.48
	err := farms.SaveFarmer(ctx, &farm.Farmer{
		ID: "f1", Name: "Ravi", Language: "en", Latitude: &lat, Longitude: &lon,
	})
	if err != nil {
		t.Fatalf("SaveFarmer: %v", err)
	}

	resp, err := o.HandleTurn(ctx, &TurnRequest{FarmerID: "f1", Message: "should i water my crop"})
	if err != nil {
		t.Fatalf("turn 1: %v", err)
	}
	if !strings.Contains(resp.Response, "Which crop") {
		t.Fatalf("expected crop question: %q", resp.Response)
	}

	// The save advancing to the sowing date fails, so the stored record
	// still asks for the crop. The reply must repeat the crop question
	// or the next answer lands in the wrong slot.
	resp, err = o.HandleTurn(ctx, &TurnRequest{FarmerID: "f1", Message: "rice"})
	if err != nil {
		t.Fatalf("turn 2: %v", err)
	}
	if !strings.Contains(resp.Response, "Which crop") {
		t.Errorf("expected crop question re-asked, got: %q", resp.Response)
	}
	state, err := inner.Get(ctx, "f1")
	if err != nil {
		t.Fatalf("state should survive: %v", err)
	}
	if state.CurrentQuestionField != intents.FieldCropType {
		t.Errorf("pending field = %s, want %s", state.CurrentQuestionField, intents.FieldCropType)
	}
	if len(state.Collected) != 0 {
		t.Errorf("stored answers should be unchanged: %v", state.Collected)
	}

	// Once saves succeed the flow recovers in order: crop, then date.
	resp, err = o.HandleTurn(ctx, &TurnRequest{FarmerID: "f1", Message: "rice"})
	if err != nil {
		t.Fatalf("turn 3: %v", err)
	}
	if !strings.Contains(resp.Response, "When did you sow") {
		t.Errorf("expected sowing date question, got: %q", resp.Response)
	}
	resp, err = o.HandleTurn(ctx, &TurnRequest{FarmerID: "f1", Message: "2026-06-30"})
	if err != nil {
		t.Fatalf("turn 4: %v", err)
	}
	if !strings.Contains(resp.Reasoning, "Stage: flowering") {
		t.Errorf("pipeline should have run: %q", resp.Reasoning)
	}

	crops, err := farms.ListCrops(ctx, "f1")
	if err != nil {
		t.Fatalf("ListCrops: %v", err)
	}
	if len(crops) != 1 || crops[0].CropType != "rice" {
		t.Errorf("registered crops = %+v, want one rice crop", crops)
	}
}

func TestNoLocationDegrades(t *testing.T) {
	f := newFixture(t)
	f.addFarmer(t, false)
	f.addRiceCrop(t)

	resp, err := f.orch.HandleTurn(context.Background(), &TurnRequest{
		FarmerID: "f1",
		Message:  "how is my crop doing",
	})
	if err != nil {
		t.Fatalf("HandleTurn: %v", err)
	}
	// Stage falls back to tropical averages and still resolves flowering.
	if !strings.Contains(resp.Reasoning, "Stage: flowering") {
		t.Errorf("reasoning = %q", resp.Reasoning)
	}
	want := (0.9 + 0.85) / 2
	if math.Abs(resp.Confidence-want) > 1e-6 {
		t.Errorf("confidence = %.4f, want %.4f", resp.Confidence, want)
	}
	for _, s := range resp.DataSources {
		if s == "open-meteo" {
			t.Error("weather source should be absent without location")
		}
	}
}

func TestClarificationReAsk(t *testing.T) {
	f := newFixture(t)
	f.addFarmer(t, true)
	s := conversationState("f1", testNow)
	f.convs.Save(context.Background(), &s)

	resp, err := f.orch.HandleTurn(context.Background(), &TurnRequest{
		FarmerID: "f1",
		Message:  "hmm I really do not remember",
	})
	if err != nil {
		t.Fatalf("HandleTurn: %v", err)
	}
	if !strings.HasPrefix(resp.Response, "Sorry, I didn't catch that. ") {
		t.Errorf("expected clarification prefix: %q", resp.Response)
	}
	if !strings.Contains(resp.Response, "When did you sow") {
		t.Errorf("expected same question re-asked: %q", resp.Response)
	}

	state, err := f.convs.Get(context.Background(), "f1")
	if err != nil {
		t.Fatalf("state should survive: %v", err)
	}
	if state.CurrentQuestionField != intents.FieldSowingDate {
		t.Errorf("pending field changed: %s", state.CurrentQuestionField)
	}
}

func TestStaleStateDiscarded(t *testing.T) {
	f := newFixture(t)
	f.addFarmer(t, true)
	s := conversationState("f1", testNow.Add(-2*time.Hour))
	f.convs.Save(context.Background(), &s)

	resp, err := f.orch.HandleTurn(context.Background(), &TurnRequest{
		FarmerID: "f1",
		Message:  "hello",
	})
	if err != nil {
		t.Fatalf("HandleTurn: %v", err)
	}
	// A stale answer is treated as a brand new query.
	if !strings.Contains(resp.Response, "How can I help") {
		t.Errorf("expected greeting, got: %q", resp.Response)
	}
	if _, err := f.convs.Get(context.Background(), "f1"); !errors.Is(err, agrierrors.ErrNotFound) {
		t.Errorf("stale state should be deleted, got err = %v", err)
	}
}

func TestGreetingTurn(t *testing.T) {
	f := newFixture(t)
	f.addFarmer(t, true)

	resp, err := f.orch.HandleTurn(context.Background(), &TurnRequest{
		FarmerID: "f1",
		Message:  "hello",
	})
	if err != nil {
		t.Fatalf("HandleTurn: %v", err)
	}
	if resp.Response != "How can I help you with your farming today?" {
		t.Errorf("response = %q", resp.Response)
	}
	if resp.Confidence != 0.6 {
		t.Errorf("fallback classification confidence = %.2f, want 0.6", resp.Confidence)
	}
}

func conversationState(farmerID string, updated time.Time) conversation.State {
	return conversation.State{
		FarmerID:             farmerID,
		PendingIntent:        intents.Irrigation,
		Collected:            map[string]string{intents.FieldCropType: "rice"},
		MissingFields:        []string{intents.FieldSowingDate},
		CurrentQuestionField: intents.FieldSowingDate,
		UpdatedAt:            updated,
	}
}

func TestHandleTurnValidation(t *testing.T) {
	f := newFixture(t)
	f.addFarmer(t, true)

	if _, err := f.orch.HandleTurn(context.Background(), nil); !errors.Is(err, agrierrors.ErrInvalidInput) {
		t.Errorf("nil request: err = %v", err)
	}
	if _, err := f.orch.HandleTurn(context.Background(), &TurnRequest{FarmerID: "f1"}); !errors.Is(err, agrierrors.ErrInvalidInput) {
		t.Errorf("empty message: err = %v", err)
	}
	if _, err := f.orch.HandleTurn(context.Background(), &TurnRequest{FarmerID: "ghost", Message: "hi"}); !errors.Is(err, agrierrors.ErrNotFound) {
		t.Errorf("unknown farmer: err = %v", err)
	}
}
