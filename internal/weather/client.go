// Package weather provides retrieval and storage of per-location weather
// snapshots. Snapshots are fetched from the upstream provider by a polling
// worker, persisted as one row per location, and optionally cached in Redis
// for read traffic.
package weather

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/sony/gobreaker/v2"

	"agriklima/internal/config"
	"agriklima/internal/types"
)

// providerResponse is the wire shape returned by the upstream weather
// provider for a single location.
type providerResponse struct {
	Location struct {
		Name string `json:"name"`
	} `json:"location"`
	Current struct {
		TempC         *float64 `json:"temp_c"`
		Humidity      *float64 `json:"humidity"`
		WindKph       *float64 `json:"wind_kph"`
		FeelsLikeC    *float64 `json:"feelslike_c"`
		PressureMb    *float64 `json:"pressure_mb"`
		VisibilityKm  *float64 `json:"vis_km"`
		UV            *float64 `json:"uv"`
		ChanceOfRain  *float64 `json:"chance_of_rain"`
		ConditionText string   `json:"condition"`
	} `json:"current"`
	Forecast []struct {
		Date      string  `json:"date"`
		Condition string  `json:"condition"`
		MaxTempC  float64 `json:"maxtemp_c"`
		MinTempC  float64 `json:"mintemp_c"`
	} `json:"forecast"`
}

// ProviderClient fetches weather for a single location from the upstream
// provider. Calls are wrapped in a circuit breaker so a dead provider fails
// fast instead of tying up poller goroutines on timeouts.
type ProviderClient struct {
	http    *resty.Client
	breaker *gobreaker.CircuitBreaker[*resty.Response]
	clock   func() time.Time
}

// NewProviderClient creates a ProviderClient from the weather configuration.
func NewProviderClient(cfg config.WeatherConfig) *ProviderClient {
	client := resty.New().
		SetBaseURL(cfg.ProviderURL).
		SetTimeout(cfg.Timeout).
		SetRetryCount(2).
		SetRetryWaitTime(500 * time.Millisecond).
		SetRetryMaxWaitTime(5 * time.Second).
		SetHeader("Accept", "application/json")
	if key := cfg.ProviderAPIKey.Unmask(); key != "" {
		client.SetQueryParam("key", key)
	}

	cb := gobreaker.NewCircuitBreaker[*resty.Response](gobreaker.Settings{
		Name:        "weather-provider",
		MaxRequests: 1,
		Interval:    60 * time.Second,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures > 5
		},
	})

	return &ProviderClient{
		http:    client,
		breaker: cb,
		clock:   time.Now,
	}
}

// Fetch retrieves the current weather and forecast for one location and maps
// it to a snapshot. The snapshot ID is left empty; the repository assigns it
// on upsert.
func (c *ProviderClient) Fetch(ctx context.Context, location string) (*types.WeatherSnapshot, error) {
	var body providerResponse

	resp, err := c.breaker.Execute(func() (*resty.Response, error) {
		r, doErr := c.http.R().
			SetContext(ctx).
			SetQueryParam("q", location).
			SetResult(&body).
			Get("/current")
		if doErr != nil {
			return nil, doErr
		}
		if r.StatusCode() >= 500 || r.StatusCode() == http.StatusTooManyRequests {
			return r, fmt.Errorf("provider returned %d", r.StatusCode())
		}
		return r, nil
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return nil, types.NewAppError(
				types.ErrCodeUpstreamRateLimited,
				"circuit breaker is open; weather provider unavailable",
				err,
			)
		}
		return nil, types.NewAppError(
			types.ErrCodeUpstreamWeather,
			"weather provider request failed",
			err,
		)
	}

	if resp.IsError() {
		return nil, types.NewAppErrorWithDetails(
			types.ErrCodeUpstreamWeather,
			"weather provider returned an error response",
			nil,
			map[string]any{"status": resp.StatusCode(), "location": location},
		)
	}

	return c.toSnapshot(location, &body), nil
}

// toSnapshot maps the provider payload onto the stored snapshot shape. The
// provider's metric pointers carry through unchanged: a missing metric stays
// nil rather than becoming zero.
func (c *ProviderClient) toSnapshot(location string, body *providerResponse) *types.WeatherSnapshot {
	snap := &types.WeatherSnapshot{
		Location:    location,
		Temperature: body.Current.TempC,
		Humidity:    body.Current.Humidity,
		WindSpeed:   body.Current.WindKph,
		Condition:   body.Current.ConditionText,
		Details: types.WeatherDetails{
			FeelsLike:     body.Current.FeelsLikeC,
			Pressure:      body.Current.PressureMb,
			Visibility:    body.Current.VisibilityKm,
			UVIndex:       body.Current.UV,
			Precipitation: body.Current.ChanceOfRain,
		},
		FetchedAt: c.clock().UTC(),
	}
	if name := body.Location.Name; name != "" {
		snap.Location = name
	}
	for _, day := range body.Forecast {
		snap.Forecast = append(snap.Forecast, types.DailyForecast{
			Date:      day.Date,
			Condition: day.Condition,
			HighTemp:  day.MaxTempC,
			LowTemp:   day.MinTempC,
		})
	}
	return snap
}
