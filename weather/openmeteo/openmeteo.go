// Package openmeteo implements weather.Source against the Open-Meteo API.
// The API is free and needs no key.
package openmeteo

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/sweetpotato0/agriadvisor/config"
	"github.com/sweetpotato0/agriadvisor/weather"
)

const (
	defaultForecastURL = "https://api.open-meteo.com/v1/forecast"
	defaultArchiveURL  = "https://archive-api.open-meteo.com/v1/archive"
	defaultTimeout     = 10 * time.Second
)

// Config holds the Open-Meteo client configuration.
type Config struct {
	ForecastURL  string
	ArchiveURL   string
	Timeout      time.Duration
	ForecastDays int
	HTTPClient   *http.Client
}

// DefaultConfig returns the default Open-Meteo configuration.
func DefaultConfig() *Config {
	return &Config{
		ForecastURL:  defaultForecastURL,
		ArchiveURL:   defaultArchiveURL,
		Timeout:      defaultTimeout,
		ForecastDays: 7,
	}
}

// Validate checks the configuration.
func (c *Config) Validate() error {
	return config.NewValidator().
		RequireNonEmpty("forecast_url", c.ForecastURL).
		RequireNonEmpty("archive_url", c.ArchiveURL).
		RequirePositiveDuration("timeout", c.Timeout.Seconds()).
		ValidateRange("forecast_days", c.ForecastDays, 1, 16).
		Err()
}

// Client fetches forecasts and historical observations from Open-Meteo.
type Client struct {
	cfg  *Config
	http *http.Client
}

var _ weather.Source = (*Client)(nil)

// New creates an Open-Meteo client. A nil config uses defaults.
func New(cfg *Config) (*Client, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	hc := cfg.HTTPClient
	if hc == nil {
		hc = &http.Client{Timeout: cfg.Timeout}
	}
	return &Client{cfg: cfg, http: hc}, nil
}

type forecastResponse struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Timezone  string  `json:"timezone"`
	Current   struct {
		Temperature2m      float64 `json:"temperature_2m"`
		RelativeHumidity2m float64 `json:"relative_humidity_2m"`
		Precipitation      float64 `json:"precipitation"`
		WeatherCode        int     `json:"weather_code"`
		CloudCover         float64 `json:"cloud_cover"`
		WindSpeed10m       float64 `json:"wind_speed_10m"`
		IsDay              int     `json:"is_day"`
	} `json:"current"`
	Daily struct {
		Time                        []string  `json:"time"`
		WeatherCode                 []int     `json:"weather_code"`
		Temperature2mMax            []float64 `json:"temperature_2m_max"`
		Temperature2mMin            []float64 `json:"temperature_2m_min"`
		PrecipitationSum            []float64 `json:"precipitation_sum"`
		PrecipitationProbabilityMax []float64 `json:"precipitation_probability_max"`
		WindSpeed10mMax             []float64 `json:"wind_speed_10m_max"`
	} `json:"daily"`
}

type archiveResponse struct {
	Daily struct {
		Time             []string  `json:"time"`
		Temperature2mMax []float64 `json:"temperature_2m_max"`
		Temperature2mMin []float64 `json:"temperature_2m_min"`
		PrecipitationSum []float64 `json:"precipitation_sum"`
	} `json:"daily"`
}

// validCoordinates rejects out-of-range coordinates before any request
// goes out; Open-Meteo would otherwise answer with an opaque 400.
func validCoordinates(latitude, longitude float64) error {
	return config.NewValidator().
		ValidateLatitude("latitude", latitude).
		ValidateLongitude("longitude", longitude).
		Err()
}

// Fetch returns current conditions and the daily forecast for a coordinate pair.
func (c *Client) Fetch(ctx context.Context, latitude, longitude float64) (*weather.Data, error) {
	if err := validCoordinates(latitude, longitude); err != nil {
		return nil, err
	}

	q := url.Values{}
	q.Set("latitude", formatCoord(latitude))
	q.Set("longitude", formatCoord(longitude))
	q.Set("current", "temperature_2m,relative_humidity_2m,precipitation,weather_code,cloud_cover,wind_speed_10m,is_day")
	q.Set("daily", "weather_code,temperature_2m_max,temperature_2m_min,precipitation_sum,precipitation_probability_max,wind_speed_10m_max")
	q.Set("timezone", "auto")
	q.Set("forecast_days", strconv.Itoa(c.cfg.ForecastDays))

	var resp forecastResponse
	if err := c.get(ctx, c.cfg.ForecastURL, q, &resp); err != nil {
		return nil, fmt.Errorf("fetch forecast: %w", err)
	}

	data := &weather.Data{
		Latitude:  resp.Latitude,
		Longitude: resp.Longitude,
		Timezone:  resp.Timezone,
		Current: weather.Current{
			TemperatureC:    resp.Current.Temperature2m,
			Humidity:        resp.Current.RelativeHumidity2m,
			PrecipitationMM: resp.Current.Precipitation,
			WindKPH:         resp.Current.WindSpeed10m,
			Condition:       ConditionFromWMO(resp.Current.WeatherCode),
			CloudCover:      resp.Current.CloudCover,
			IsDay:           resp.Current.IsDay != 0,
		},
	}
	if data.Timezone == "" {
		data.Timezone = "UTC"
	}

	for i, dateStr := range resp.Daily.Time {
		day, err := time.Parse("2006-01-02", dateStr)
		if err != nil {
			return nil, fmt.Errorf("parse forecast date %q: %w", dateStr, err)
		}
		data.Forecast = append(data.Forecast, weather.Daily{
			Date:            day,
			TempMaxC:        at(resp.Daily.Temperature2mMax, i),
			TempMinC:        at(resp.Daily.Temperature2mMin, i),
			PrecipitationMM: at(resp.Daily.PrecipitationSum, i),
			RainProbability: at(resp.Daily.PrecipitationProbabilityMax, i),
			WindMaxKPH:      at(resp.Daily.WindSpeed10mMax, i),
			Condition:       ConditionFromWMO(atInt(resp.Daily.WeatherCode, i)),
		})
	}
	return data, nil
}

// FetchHistory returns daily observations for the inclusive date range.
func (c *Client) FetchHistory(ctx context.Context, latitude, longitude float64, start, end time.Time) ([]weather.DayRecord, error) {
	if err := validCoordinates(latitude, longitude); err != nil {
		return nil, err
	}

	q := url.Values{}
	q.Set("latitude", formatCoord(latitude))
	q.Set("longitude", formatCoord(longitude))
	q.Set("start_date", start.Format("2006-01-02"))
	q.Set("end_date", end.Format("2006-01-02"))
	q.Set("daily", "temperature_2m_max,temperature_2m_min,precipitation_sum")
	q.Set("timezone", "auto")

	var resp archiveResponse
	if err := c.get(ctx, c.cfg.ArchiveURL, q, &resp); err != nil {
		return nil, fmt.Errorf("fetch history: %w", err)
	}

	records := make([]weather.DayRecord, 0, len(resp.Daily.Time))
	for i, dateStr := range resp.Daily.Time {
		day, err := time.Parse("2006-01-02", dateStr)
		if err != nil {
			return nil, fmt.Errorf("parse history date %q: %w", dateStr, err)
		}
		records = append(records, weather.DayRecord{
			Date:            day,
			TempMaxC:        at(resp.Daily.Temperature2mMax, i),
			TempMinC:        at(resp.Daily.Temperature2mMin, i),
			PrecipitationMM: at(resp.Daily.PrecipitationSum, i),
		})
	}
	return records, nil
}

func (c *Client) get(ctx context.Context, baseURL string, q url.Values, out any) error {
	ctx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, baseURL+"?"+q.Encode(), nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("open-meteo returned status %d", resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// ConditionFromWMO maps a WMO weather code to a farming condition. Snow
// codes map to rainy because the effect on field work is the same.
func ConditionFromWMO(code int) weather.Condition {
	switch code {
	case 0:
		return weather.Clear
	case 1, 2:
		return weather.PartlyCloudy
	case 3:
		return weather.Cloudy
	case 45, 48:
		return weather.Foggy
	case 51, 53, 55, 56, 57, 61, 63, 65, 66, 67, 80, 81, 82:
		return weather.Rainy
	case 71, 73, 75, 77, 85, 86:
		return weather.Rainy
	case 95, 96, 99:
		return weather.Stormy
	}
	return weather.Cloudy
}

func formatCoord(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func at(vals []float64, i int) float64 {
	if i < len(vals) {
		return vals[i]
	}
	return 0
}

func atInt(vals []int, i int) int {
	if i < len(vals) {
		return vals[i]
	}
	return 0
}
