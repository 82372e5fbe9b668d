// Package weather fetches the daily forecast from Open-Meteo and derives a
// clothing recommendation from it.
package weather

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/sony/gobreaker"
)

// Snapshot is today's forecast. CurrentTemp is nil when the provider omits
// the current_weather block.
type Snapshot struct {
	CurrentTemp *float64
	MaxTemp     float64
	MinTemp     float64
	PrecipProb  int
	WeatherCode int
}

type Config struct {
	BaseURL   string
	Latitude  float64
	Longitude float64
	Timezone  string
}

type Client struct {
	http    *http.Client
	cfg     Config
	circuit *gobreaker.CircuitBreaker
}

func NewClient(httpClient *http.Client, cfg Config) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.open-meteo.com/v1/forecast"
	}
	if cfg.Timezone == "" {
		cfg.Timezone = "America/Chicago"
	}
	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "openmeteo",
		MaxRequests: 5,
		Interval:    1 * time.Minute,
		Timeout:     2 * time.Minute,
	})
	return &Client{http: httpClient, cfg: cfg, circuit: cb}
}

type forecastPayload struct {
	CurrentWeather *struct {
		Temperature float64 `json:"temperature"`
	} `json:"current_weather"`
	Daily struct {
		WeatherCode []int     `json:"weathercode"`
		TempMax     []float64 `json:"temperature_2m_max"`
		TempMin     []float64 `json:"temperature_2m_min"`
		PrecipProb  []int     `json:"precipitation_probability_max"`
	} `json:"daily"`
}

// Forecast returns today's snapshot (index 0 of the daily arrays). Any
// transport, status or shape problem is returned as an error; callers decide
// the degraded text.
func (c *Client) Forecast(ctx context.Context) (Snapshot, error) {
	if c == nil || c.http == nil {
		return Snapshot{}, fmt.Errorf("weather client is not initialized")
	}
	values := url.Values{}
	values.Set("latitude", strconv.FormatFloat(c.cfg.Latitude, 'f', 4, 64))
	values.Set("longitude", strconv.FormatFloat(c.cfg.Longitude, 'f', 4, 64))
	values.Set("daily", "weathercode,temperature_2m_max,temperature_2m_min,precipitation_probability_max")
	values.Set("current_weather", "true")
	values.Set("timezone", c.cfg.Timezone)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.cfg.BaseURL+"?"+values.Encode(), nil)
	if err != nil {
		return Snapshot{}, err
	}

	result, err := c.circuit.Execute(func() (interface{}, error) {
		resp, err := c.http.Do(req)
		if err != nil {
			return nil, err
		}
		defer resp.Body.Close()
		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			return nil, fmt.Errorf("openmeteo http %d", resp.StatusCode)
		}
		var payload forecastPayload
		if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
			return nil, fmt.Errorf("decode forecast: %w", err)
		}
		return payload, nil
	})
	if err != nil {
		return Snapshot{}, err
	}
	payload := result.(forecastPayload)

	daily := payload.Daily
	if len(daily.TempMax) == 0 || len(daily.TempMin) == 0 ||
		len(daily.PrecipProb) == 0 || len(daily.WeatherCode) == 0 {
		return Snapshot{}, fmt.Errorf("forecast is missing daily fields")
	}
	snap := Snapshot{
		MaxTemp:     daily.TempMax[0],
		MinTemp:     daily.TempMin[0],
		PrecipProb:  daily.PrecipProb[0],
		WeatherCode: daily.WeatherCode[0],
	}
	if payload.CurrentWeather != nil {
		t := payload.CurrentWeather.Temperature
		snap.CurrentTemp = &t
	}
	return snap, nil
}
