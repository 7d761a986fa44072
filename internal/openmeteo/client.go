// Package openmeteo implements the HTTP client for the Open-Meteo geocoding and
// forecast APIs. Neither endpoint needs authentication. Methods are
// context-aware, share a request pacer and a circuit breaker, and never retry:
// retry policy belongs to the caller.
package openmeteo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/sony/gobreaker/v2"
	"golang.org/x/time/rate"

	"github.com/derickschaefer/meteo/internal/model"
)

const (
	DefaultGeocodingURL = "https://geocoding-api.open-meteo.com/v1/search"
	DefaultForecastURL  = "https://api.open-meteo.com/v1/forecast"

	// MinQueryLength is the shortest query sent to the geocoder.
	MinQueryLength = 2
	// SearchLimit caps the number of geocoding results.
	SearchLimit = 10
	// HourlyPoints is the number of hourly entries kept from a forecast.
	HourlyPoints = 24
	// ForecastDays is the number of daily entries requested.
	ForecastDays = 10

	defaultBreakerFailures = 5
	breakerCooldown        = 30 * time.Second
)

// Field lists requested from the forecast endpoint.
var (
	currentFields = []string{
		"temperature_2m",
		"relative_humidity_2m",
		"apparent_temperature",
		"weather_code",
		"wind_speed_10m",
		"precipitation",
	}
	hourlyFields = []string{
		"temperature_2m",
		"weather_code",
		"precipitation_probability",
	}
	dailyFields = []string{
		"weather_code",
		"temperature_2m_max",
		"temperature_2m_min",
		"sunrise",
		"sunset",
		"precipitation_sum",
		"precipitation_probability_max",
	}
	lightFields = []string{"temperature_2m", "weather_code"}
)

// ClientConfig holds configuration for the Open-Meteo client.
type ClientConfig struct {
	// GeocodingURL and ForecastURL default to the public endpoints.
	GeocodingURL string
	ForecastURL  string

	// Timeout bounds a single HTTP exchange. Zero means no timeout.
	Timeout time.Duration

	// Rate is the maximum requests per second. Zero means unlimited.
	Rate float64

	// BreakerFailures is the number of consecutive transport failures that
	// opens the circuit. Zero uses the default of 5.
	BreakerFailures uint32

	// HTTPClient overrides the client built from Timeout.
	HTTPClient *http.Client

	// Debug logs request URLs and response sizes.
	Debug bool
}

// Client is the Open-Meteo API HTTP client.
type Client struct {
	geocodingURL string
	forecastURL  string
	httpClient   *http.Client
	limiter      *rate.Limiter
	breaker      *gobreaker.CircuitBreaker[[]byte]
	debug        bool
}

// NewClient creates a Client from cfg.
func NewClient(cfg ClientConfig) *Client {
	if cfg.GeocodingURL == "" {
		cfg.GeocodingURL = DefaultGeocodingURL
	}
	if cfg.ForecastURL == "" {
		cfg.ForecastURL = DefaultForecastURL
	}
	if cfg.BreakerFailures == 0 {
		cfg.BreakerFailures = defaultBreakerFailures
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}

	limiter := rate.NewLimiter(rate.Inf, 1)
	if cfg.Rate > 0 {
		burst := int(cfg.Rate)
		if burst < 1 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(cfg.Rate), burst)
	}

	failures := cfg.BreakerFailures
	breaker := gobreaker.NewCircuitBreaker[[]byte](gobreaker.Settings{
		Name:        "open-meteo",
		MaxRequests: 1,
		Timeout:     breakerCooldown,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= failures
		},
		// Only transport failures and 5xx count against the provider.
		IsSuccessful: func(err error) bool {
			var netErr *NetworkError
			if errors.As(err, &netErr) {
				return netErr.StatusCode != 0 && netErr.StatusCode < 500
			}
			return err == nil
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			slog.Warn("circuit breaker state change", "name", name, "from", from.String(), "to", to.String())
		},
	})

	return &Client{
		geocodingURL: cfg.GeocodingURL,
		forecastURL:  cfg.ForecastURL,
		httpClient:   httpClient,
		limiter:      limiter,
		breaker:      breaker,
		debug:        cfg.Debug,
	}
}

// ─── Geocoding ────────────────────────────────────────────────────────────────

type rawSearch struct {
	Results []struct {
		ID          int64   `json:"id"`
		Name        string  `json:"name"`
		Country     string  `json:"country"`
		CountryCode string  `json:"country_code"`
		Admin1      string  `json:"admin1"`
		Latitude    float64 `json:"latitude"`
		Longitude   float64 `json:"longitude"`
	} `json:"results"`
}

// SearchCities looks up places whose name matches query. Queries shorter than
// MinQueryLength return an empty slice without a network call. The result is
// never nil.
func (c *Client) SearchCities(ctx context.Context, query string) ([]model.Location, error) {
	if utf8.RuneCountInString(query) < MinQueryLength {
		return []model.Location{}, nil
	}

	params := url.Values{}
	params.Set("name", query)
	params.Set("count", strconv.Itoa(SearchLimit))
	params.Set("language", "en")
	params.Set("format", "json")

	var raw rawSearch
	if err := c.get(ctx, "search cities", c.geocodingURL, params, &raw); err != nil {
		return nil, err
	}

	locs := make([]model.Location, len(raw.Results))
	for i, r := range raw.Results {
		locs[i] = model.Location{
			ID:          r.ID,
			Name:        r.Name,
			Country:     r.Country,
			CountryCode: r.CountryCode,
			Admin1:      r.Admin1,
			Latitude:    r.Latitude,
			Longitude:   r.Longitude,
		}
	}
	return locs, nil
}

// ─── Forecast ─────────────────────────────────────────────────────────────────

// FetchWeather fetches current conditions, the next HourlyPoints hours and
// ForecastDays days for a coordinate. Timestamps are in the location's local
// time. Column-oriented provider arrays are reshaped into rows.
func (c *Client) FetchWeather(ctx context.Context, latitude, longitude float64) (*model.Forecast, error) {
	const op = "fetch weather"

	params := coordParams(latitude, longitude)
	params.Set("current", strings.Join(currentFields, ","))
	params.Set("hourly", strings.Join(hourlyFields, ","))
	params.Set("daily", strings.Join(dailyFields, ","))
	params.Set("timezone", "auto")
	params.Set("forecast_days", strconv.Itoa(ForecastDays))

	var raw rawForecast
	if err := c.get(ctx, op, c.forecastURL, params, &raw); err != nil {
		return nil, err
	}
	forecast, err := normalizeForecast(&raw)
	if err != nil {
		return nil, &DeserializationError{Op: op, Err: err}
	}
	return forecast, nil
}

// FetchCurrentWeather fetches only temperature and weather code, for cheap
// per-favorite refreshes.
func (c *Client) FetchCurrentWeather(ctx context.Context, latitude, longitude float64) (*model.FavoriteWeather, error) {
	const op = "fetch current weather"

	params := coordParams(latitude, longitude)
	params.Set("current", strings.Join(lightFields, ","))
	params.Set("timezone", "auto")

	var raw struct {
		Current *rawCurrent `json:"current"`
	}
	if err := c.get(ctx, op, c.forecastURL, params, &raw); err != nil {
		return nil, err
	}
	if raw.Current == nil {
		return nil, &DeserializationError{Op: op, Err: errors.New(`missing "current" section`)}
	}
	return &model.FavoriteWeather{
		Temperature: raw.Current.Temperature,
		WeatherCode: raw.Current.WeatherCode,
	}, nil
}

func coordParams(latitude, longitude float64) url.Values {
	params := url.Values{}
	params.Set("latitude", strconv.FormatFloat(latitude, 'f', -1, 64))
	params.Set("longitude", strconv.FormatFloat(longitude, 'f', -1, 64))
	return params
}

// ─── Low-level HTTP ───────────────────────────────────────────────────────────

// get performs a GET request through the pacer and circuit breaker and decodes
// the JSON body into out. Failures are returned as *NetworkError or
// *DeserializationError.
func (c *Client) get(ctx context.Context, op, base string, params url.Values, out interface{}) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return &NetworkError{Op: op, Err: err}
	}

	reqURL := base + "?" + params.Encode()
	if c.debug {
		slog.Debug("open-meteo request", "op", op, "url", reqURL)
	}

	body, err := c.breaker.Execute(func() ([]byte, error) {
		return c.do(ctx, op, reqURL)
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return &NetworkError{Op: op, Err: ErrCircuitOpen}
		}
		return err
	}

	if err := json.Unmarshal(body, out); err != nil {
		return &DeserializationError{Op: op, Err: err}
	}
	return nil
}

func (c *Client) do(ctx context.Context, op, reqURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, http.NoBody)
	if err != nil {
		return nil, &NetworkError{Op: op, Err: fmt.Errorf("building request: %w", err)}
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "meteo-cli/1.0")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &NetworkError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &NetworkError{Op: op, Err: fmt.Errorf("reading body: %w", err)}
	}

	if c.debug {
		slog.Debug("open-meteo response", "op", op, "status", resp.StatusCode, "bytes", len(body))
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		// Open-Meteo reports bad parameters as {"error": true, "reason": "..."}.
		var apiErr struct {
			Reason string `json:"reason"`
		}
		_ = json.Unmarshal(body, &apiErr)
		msg := apiErr.Reason
		if msg == "" {
			msg = strings.TrimSpace(string(body))
		}
		if msg == "" {
			msg = http.StatusText(resp.StatusCode)
		}
		return nil, &NetworkError{Op: op, StatusCode: resp.StatusCode, Err: errors.New(msg)}
	}
	return body, nil
}
