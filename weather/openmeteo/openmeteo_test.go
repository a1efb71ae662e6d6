package openmeteo

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/sweetpotato0/agriadvisor/weather"
)

func TestConditionFromWMO(t *testing.T) {
	cases := []struct {
		code int
		want weather.Condition
	}{
		{0, weather.Clear},
		{1, weather.PartlyCloudy},
		{3, weather.Cloudy},
		{45, weather.Foggy},
		{61, weather.Rainy},
		{75, weather.Rainy}, // snow reads as rainy
		{95, weather.Stormy},
		{42, weather.Cloudy}, // unknown code
	}
	for _, c := range cases {
		if got := ConditionFromWMO(c.code); got != c.want {
			t.Errorf("ConditionFromWMO(%d) = %s, want %s", c.code, got, c.want)
		}
	}
}

func TestFetch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if q.Get("latitude") != "17.4" || q.Get("longitude") != "78.5" {
			t.Errorf("unexpected coordinates: %s, %s", q.Get("latitude"), q.Get("longitude"))
		}
		if q.Get("forecast_days") != "7" {
			t.Errorf("forecast_days = %s, want 7", q.Get("forecast_days"))
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"latitude": 17.4,
			"longitude": 78.5,
			"timezone": "Asia/Kolkata",
			"current": {
				"temperature_2m": 31.5,
				"relative_humidity_2m": 62,
				"precipitation": 0,
				"weather_code": 2,
				"cloud_cover": 40,
				"wind_speed_10m": 8.2,
				"is_day": 1
			},
			"daily": {
				"time": ["2026-08-29", "2026-08-30"],
				"weather_code": [61, 0],
				"temperature_2m_max": [33.0, 34.5],
				"temperature_2m_min": [24.0, 23.5],
				"precipitation_sum": [12.4, 0],
				"precipitation_probability_max": [80, 10],
				"wind_speed_10m_max": [20.1, 12.0]
			}
		}`))
	}))
	defer srv.Close()

	client, err := New(&Config{
		ForecastURL:  srv.URL,
		ArchiveURL:   srv.URL,
		Timeout:      5 * time.Second,
		ForecastDays: 7,
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	data, err := client.Fetch(context.Background(), 17.4, 78.5)
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if data.Current.TemperatureC != 31.5 {
		t.Errorf("temperature = %.1f, want 31.5", data.Current.TemperatureC)
	}
	if data.Current.Condition != weather.PartlyCloudy {
		t.Errorf("condition = %s, want partly_cloudy", data.Current.Condition)
	}
	if !data.Current.IsDay {
		t.Error("expected daytime")
	}
	if len(data.Forecast) != 2 {
		t.Fatalf("forecast length = %d, want 2", len(data.Forecast))
	}
	if data.Forecast[0].Condition != weather.Rainy {
		t.Errorf("day 0 condition = %s, want rainy", data.Forecast[0].Condition)
	}
	if data.Forecast[0].RainProbability != 80 {
		t.Errorf("day 0 rain probability = %.0f, want 80", data.Forecast[0].RainProbability)
	}
	if data.Timezone != "Asia/Kolkata" {
		t.Errorf("timezone = %s", data.Timezone)
	}
}

func TestFetchHistory(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if q.Get("start_date") != "2026-06-01" || q.Get("end_date") != "2026-06-03" {
			t.Errorf("unexpected range: %s..%s", q.Get("start_date"), q.Get("end_date"))
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"daily": {
				"time": ["2026-06-01", "2026-06-02", "2026-06-03"],
				"temperature_2m_max": [36.0, 37.5, 35.0],
				"temperature_2m_min": [26.0, 27.0, 25.5],
				"precipitation_sum": [0, 2.2, 0]
			}
		}`))
	}))
	defer srv.Close()

	client, err := New(&Config{
		ForecastURL:  srv.URL,
		ArchiveURL:   srv.URL,
		Timeout:      5 * time.Second,
		ForecastDays: 7,
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	start := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2026, 6, 3, 0, 0, 0, 0, time.UTC)
	records, err := client.FetchHistory(context.Background(), 17.4, 78.5, start, end)
	if err != nil {
		t.Fatalf("FetchHistory: %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("records = %d, want 3", len(records))
	}
	if records[1].TempMaxC != 37.5 || records[1].PrecipitationMM != 2.2 {
		t.Errorf("unexpected record: %+v", records[1])
	}
}

func TestFetchServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusBadGateway)
	}))
	defer srv.Close()

	client, err := New(&Config{
		ForecastURL:  srv.URL,
		ArchiveURL:   srv.URL,
		Timeout:      5 * time.Second,
		ForecastDays: 7,
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if _, err := client.Fetch(context.Background(), 0, 0); err == nil {
		t.Fatal("expected error for non-200 response")
	}
}

func TestFetchRejectsBadCoordinates(t *testing.T) {
	requested := false
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requested = true
	}))
	defer srv.Close()

	client, err := New(&Config{
		ForecastURL:  srv.URL,
		ArchiveURL:   srv.URL,
		Timeout:      5 * time.Second,
		ForecastDays: 7,
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	if _, err := client.Fetch(context.Background(), 200, 78.5); err == nil {
		t.Error("expected error for latitude out of range")
	}
	start := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2026, 6, 3, 0, 0, 0, 0, time.UTC)
	if _, err := client.FetchHistory(context.Background(), 17.4, -200, start, end); err == nil {
		t.Error("expected error for longitude out of range")
	}
	if requested {
		t.Error("no request should go out for invalid coordinates")
	}
}

func TestConfigValidation(t *testing.T) {
	if _, err := New(&Config{}); err == nil {
		t.Fatal("expected validation error for empty config")
	}
}
