package openmeteo_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/derickschaefer/meteo/internal/openmeteo"
)

// ─── Helpers ──────────────────────────────────────────────────────────────────

// newTestClient points both endpoints at srv.
func newTestClient(srv *httptest.Server) *openmeteo.Client {
	return openmeteo.NewClient(openmeteo.ClientConfig{
		GeocodingURL: srv.URL + "/v1/search",
		ForecastURL:  srv.URL + "/v1/forecast",
	})
}

// jsonHandler serves body as JSON and counts requests.
func jsonHandler(hits *int32, body interface{}) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(hits, 1)
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(body)
	}
}

// forecastPayload builds a column-oriented payload with hours hourly entries
// and days daily entries.
func forecastPayload(hours, days int) map[string]interface{} {
	hTime := make([]string, hours)
	hTemp := make([]interface{}, hours)
	hCode := make([]interface{}, hours)
	hProb := make([]interface{}, hours)
	for i := 0; i < hours; i++ {
		hTime[i] = fmt.Sprintf("2024-03-%02dT%02d:00", 5+i/24, i%24)
		hTemp[i] = float64(i) + 0.5
		hCode[i] = i % 4
		hProb[i] = float64(i % 100)
	}
	dTime := make([]string, days)
	dMax := make([]interface{}, days)
	dMin := make([]interface{}, days)
	dCode := make([]interface{}, days)
	dRise := make([]interface{}, days)
	dSet := make([]interface{}, days)
	dSum := make([]interface{}, days)
	dProb := make([]interface{}, days)
	for i := 0; i < days; i++ {
		dTime[i] = fmt.Sprintf("2024-03-%02d", 5+i)
		dMax[i] = 15.0 + float64(i)
		dMin[i] = 5.0 + float64(i)
		dCode[i] = 61
		dRise[i] = fmt.Sprintf("2024-03-%02dT06:4%d", 5+i, i%10)
		dSet[i] = fmt.Sprintf("2024-03-%02dT18:1%d", 5+i, i%10)
		dSum[i] = 1.2
		dProb[i] = 80.0
	}
	return map[string]interface{}{
		"latitude":  51.5,
		"longitude": -0.12,
		"current": map[string]interface{}{
			"temperature_2m":       12.3,
			"relative_humidity_2m": 81,
			"apparent_temperature": 10.9,
			"weather_code":         3,
			"wind_speed_10m":       14.4,
			"precipitation":        0.1,
		},
		"hourly": map[string]interface{}{
			"time":                      hTime,
			"temperature_2m":            hTemp,
			"weather_code":              hCode,
			"precipitation_probability": hProb,
		},
		"daily": map[string]interface{}{
			"time":                          dTime,
			"weather_code":                  dCode,
			"temperature_2m_max":            dMax,
			"temperature_2m_min":            dMin,
			"sunrise":                       dRise,
			"sunset":                        dSet,
			"precipitation_sum":             dSum,
			"precipitation_probability_max": dProb,
		},
	}
}

// ─── SearchCities ─────────────────────────────────────────────────────────────

func TestSearchCitiesShortQuerySkipsNetwork(t *testing.T) {
	var hits int32
	srv := httptest.NewServer(jsonHandler(&hits, map[string]interface{}{}))
	defer srv.Close()
	c := newTestClient(srv)

	for _, q := range []string{"", "L", "é"} {
		got, err := c.SearchCities(context.Background(), q)
		if err != nil {
			t.Fatalf("SearchCities(%q): %v", q, err)
		}
		if got == nil || len(got) != 0 {
			t.Errorf("SearchCities(%q): expected empty non-nil slice, got %#v", q, got)
		}
	}
	if hits != 0 {
		t.Errorf("expected zero requests, got %d", hits)
	}
}

func TestSearchCitiesReturnsProviderResults(t *testing.T) {
	var gotQuery map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		gotQuery = map[string]string{
			"name": q.Get("name"), "count": q.Get("count"),
			"language": q.Get("language"), "format": q.Get("format"),
		}
		fmt.Fprint(w, `{"results":[{"id":1,"name":"London","country":"UK","latitude":51.5,"longitude":-0.12}]}`)
	}))
	defer srv.Close()

	got, err := newTestClient(srv).SearchCities(context.Background(), "Lo")
	if err != nil {
		t.Fatalf("SearchCities: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("expected 1 result, got %d", len(got))
	}
	l := got[0]
	if l.ID != 1 || l.Name != "London" || l.Country != "UK" || l.Latitude != 51.5 || l.Longitude != -0.12 {
		t.Errorf("unexpected location: %+v", l)
	}
	want := map[string]string{"name": "Lo", "count": "10", "language": "en", "format": "json"}
	for k, v := range want {
		if gotQuery[k] != v {
			t.Errorf("query param %s: expected %q, got %q", k, v, gotQuery[k])
		}
	}
}

func TestSearchCitiesMissingResultsIsEmpty(t *testing.T) {
	var hits int32
	srv := httptest.NewServer(jsonHandler(&hits, map[string]interface{}{"generationtime_ms": 0.5}))
	defer srv.Close()

	got, err := newTestClient(srv).SearchCities(context.Background(), "Xyzzy")
	if err != nil {
		t.Fatalf("SearchCities: %v", err)
	}
	if got == nil || len(got) != 0 {
		t.Errorf("expected empty non-nil slice, got %#v", got)
	}
}

func TestSearchCitiesHTTPErrorIsNetworkError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		fmt.Fprint(w, `{"error":true,"reason":"Parameter count must be between 1 and 100"}`)
	}))
	defer srv.Close()

	_, err := newTestClient(srv).SearchCities(context.Background(), "London")
	var netErr *openmeteo.NetworkError
	if !errors.As(err, &netErr) {
		t.Fatalf("expected NetworkError, got %T %v", err, err)
	}
	if netErr.StatusCode != http.StatusBadRequest {
		t.Errorf("status: expected 400, got %d", netErr.StatusCode)
	}
	if netErr.Err.Error() != "Parameter count must be between 1 and 100" {
		t.Errorf("reason not surfaced: %v", netErr.Err)
	}
}

func TestTransportFailureIsNetworkError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	c := newTestClient(srv)
	srv.Close()

	_, err := c.SearchCities(context.Background(), "London")
	var netErr *openmeteo.NetworkError
	if !errors.As(err, &netErr) {
		t.Fatalf("expected NetworkError, got %T %v", err, err)
	}
	if netErr.StatusCode != 0 {
		t.Errorf("transport failure should carry no status, got %d", netErr.StatusCode)
	}
}

func TestMalformedJSONIsDeserializationError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"results": [`)
	}))
	defer srv.Close()

	_, err := newTestClient(srv).SearchCities(context.Background(), "London")
	var decErr *openmeteo.DeserializationError
	if !errors.As(err, &decErr) {
		t.Fatalf("expected DeserializationError, got %T %v", err, err)
	}
}

// ─── FetchWeather ─────────────────────────────────────────────────────────────

func TestFetchWeatherRequestsExpectedFields(t *testing.T) {
	var q map[string][]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q = r.URL.Query()
		_ = json.NewEncoder(w).Encode(forecastPayload(24, 10))
	}))
	defer srv.Close()

	if _, err := newTestClient(srv).FetchWeather(context.Background(), 51.5, -0.12); err != nil {
		t.Fatalf("FetchWeather: %v", err)
	}
	want := map[string]string{
		"latitude":      "51.5",
		"longitude":     "-0.12",
		"current":       "temperature_2m,relative_humidity_2m,apparent_temperature,weather_code,wind_speed_10m,precipitation",
		"hourly":        "temperature_2m,weather_code,precipitation_probability",
		"daily":         "weather_code,temperature_2m_max,temperature_2m_min,sunrise,sunset,precipitation_sum,precipitation_probability_max",
		"timezone":      "auto",
		"forecast_days": "10",
	}
	for k, v := range want {
		if got := q[k]; len(got) != 1 || got[0] != v {
			t.Errorf("param %s: expected %q, got %v", k, v, got)
		}
	}
}

func TestFetchWeatherReshapesColumns(t *testing.T) {
	var hits int32
	srv := httptest.NewServer(jsonHandler(&hits, forecastPayload(48, 10)))
	defer srv.Close()

	f, err := newTestClient(srv).FetchWeather(context.Background(), 51.5, -0.12)
	if err != nil {
		t.Fatalf("FetchWeather: %v", err)
	}

	if f.Current.Temperature == nil || *f.Current.Temperature != 12.3 {
		t.Errorf("current temperature: got %v", f.Current.Temperature)
	}
	if f.Current.Humidity == nil || *f.Current.Humidity != 81 {
		t.Errorf("current humidity: got %v", f.Current.Humidity)
	}
	if f.Current.ApparentTemperature == nil || *f.Current.ApparentTemperature != 10.9 {
		t.Errorf("apparent temperature: got %v", f.Current.ApparentTemperature)
	}
	if f.Current.WeatherCode == nil || *f.Current.WeatherCode != 3 {
		t.Errorf("weather code: got %v", f.Current.WeatherCode)
	}
	if f.Current.WindSpeed == nil || *f.Current.WindSpeed != 14.4 {
		t.Errorf("wind speed: got %v", f.Current.WindSpeed)
	}

	if len(f.Hourly) != openmeteo.HourlyPoints {
		t.Fatalf("hourly: expected %d points, got %d", openmeteo.HourlyPoints, len(f.Hourly))
	}
	for i, h := range f.Hourly {
		wantTime := fmt.Sprintf("2024-03-05T%02d:00", i)
		if h.Time != wantTime {
			t.Errorf("hourly[%d].Time: expected %s, got %s", i, wantTime, h.Time)
		}
		if h.Temperature == nil || *h.Temperature != float64(i)+0.5 {
			t.Errorf("hourly[%d].Temperature: got %v", i, h.Temperature)
		}
	}

	if len(f.Daily) != 10 {
		t.Fatalf("daily: expected 10 points, got %d", len(f.Daily))
	}
	d := f.Daily[0]
	if d.Date != "2024-03-05" || *d.MaxTemperature != 15 || *d.MinTemperature != 5 ||
		*d.WeatherCode != 61 || d.Sunrise != "2024-03-05T06:40" || d.Sunset != "2024-03-05T18:10" ||
		*d.PrecipitationSum != 1.2 || *d.PrecipitationProbability != 80 {
		t.Errorf("unexpected daily[0]: %+v", d)
	}
}

func TestFetchWeatherShortColumnsReadAsMissing(t *testing.T) {
	payload := forecastPayload(24, 10)
	daily := payload["daily"].(map[string]interface{})
	rise := daily["sunrise"].([]interface{})
	rise[3] = nil
	daily["sunrise"] = rise[:9] // last day has no sunrise entry
	hourly := payload["hourly"].(map[string]interface{})
	hourly["temperature_2m"] = hourly["temperature_2m"].([]interface{})[:20]

	var hits int32
	srv := httptest.NewServer(jsonHandler(&hits, payload))
	defer srv.Close()

	f, err := newTestClient(srv).FetchWeather(context.Background(), 1, 2)
	if err != nil {
		t.Fatalf("FetchWeather: %v", err)
	}
	if f.Daily[3].Sunrise != "" {
		t.Errorf("null sunrise: expected empty, got %q", f.Daily[3].Sunrise)
	}
	if f.Daily[9].Sunrise != "" {
		t.Errorf("absent sunrise: expected empty, got %q", f.Daily[9].Sunrise)
	}
	if f.Daily[9].Sunset == "" {
		t.Error("sunset should still be populated")
	}
	if f.Hourly[21].Temperature != nil {
		t.Errorf("short hourly column: expected nil, got %v", *f.Hourly[21].Temperature)
	}
	if len(f.Hourly) != 24 {
		t.Errorf("time axis drives length: expected 24, got %d", len(f.Hourly))
	}
}

func TestFetchWeatherMissingSectionIsDeserializationError(t *testing.T) {
	for _, drop := range []string{"current", "hourly", "daily"} {
		payload := forecastPayload(24, 10)
		delete(payload, drop)

		var hits int32
		srv := httptest.NewServer(jsonHandler(&hits, payload))
		_, err := newTestClient(srv).FetchWeather(context.Background(), 1, 2)
		srv.Close()

		var decErr *openmeteo.DeserializationError
		if !errors.As(err, &decErr) {
			t.Errorf("without %s: expected DeserializationError, got %T %v", drop, err, err)
		}
	}
}

func TestFetchWeatherMissingColumnIsDeserializationError(t *testing.T) {
	payload := forecastPayload(24, 10)
	delete(payload["daily"].(map[string]interface{}), "temperature_2m_max")

	var hits int32
	srv := httptest.NewServer(jsonHandler(&hits, payload))
	defer srv.Close()

	_, err := newTestClient(srv).FetchWeather(context.Background(), 1, 2)
	var decErr *openmeteo.DeserializationError
	if !errors.As(err, &decErr) {
		t.Fatalf("expected DeserializationError, got %T %v", err, err)
	}
}

func TestFetchWeatherServerErrorIsNetworkError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "upstream down", http.StatusBadGateway)
	}))
	defer srv.Close()

	_, err := newTestClient(srv).FetchWeather(context.Background(), 1, 2)
	var netErr *openmeteo.NetworkError
	if !errors.As(err, &netErr) || netErr.StatusCode != http.StatusBadGateway {
		t.Fatalf("expected 502 NetworkError, got %v", err)
	}
}

// ─── FetchCurrentWeather ──────────────────────────────────────────────────────

func TestFetchCurrentWeather(t *testing.T) {
	var q map[string][]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q = r.URL.Query()
		fmt.Fprint(w, `{"current":{"time":"2024-03-05T12:00","temperature_2m":18.4,"weather_code":2}}`)
	}))
	defer srv.Close()

	got, err := newTestClient(srv).FetchCurrentWeather(context.Background(), 48.85, 2.35)
	if err != nil {
		t.Fatalf("FetchCurrentWeather: %v", err)
	}
	if got.Temperature == nil || *got.Temperature != 18.4 || got.WeatherCode == nil || *got.WeatherCode != 2 {
		t.Errorf("unexpected snapshot: %+v", got)
	}
	if q["current"][0] != "temperature_2m,weather_code" || q["timezone"][0] != "auto" {
		t.Errorf("unexpected params: %v", q)
	}
	if _, ok := q["hourly"]; ok {
		t.Error("lightweight call must not request hourly data")
	}
}

func TestFetchCurrentWeatherMissingCurrent(t *testing.T) {
	var hits int32
	srv := httptest.NewServer(jsonHandler(&hits, map[string]interface{}{"latitude": 1}))
	defer srv.Close()

	_, err := newTestClient(srv).FetchCurrentWeather(context.Background(), 1, 2)
	var decErr *openmeteo.DeserializationError
	if !errors.As(err, &decErr) {
		t.Fatalf("expected DeserializationError, got %T %v", err, err)
	}
}

// ─── Circuit breaker ──────────────────────────────────────────────────────────

func TestCircuitOpensAfterConsecutiveServerErrors(t *testing.T) {
	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	c := openmeteo.NewClient(openmeteo.ClientConfig{
		GeocodingURL:    srv.URL,
		ForecastURL:     srv.URL,
		BreakerFailures: 2,
	})
	for i := 0; i < 2; i++ {
		if _, err := c.FetchCurrentWeather(context.Background(), 1, 2); err == nil {
			t.Fatalf("call %d: expected error", i)
		}
	}
	_, err := c.FetchCurrentWeather(context.Background(), 1, 2)
	if !errors.Is(err, openmeteo.ErrCircuitOpen) {
		t.Fatalf("expected ErrCircuitOpen, got %v", err)
	}
	if hits != 2 {
		t.Errorf("open circuit should not reach the server: hits=%d", hits)
	}
}

func TestClientErrorsDoNotOpenCircuit(t *testing.T) {
	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer srv.Close()

	c := openmeteo.NewClient(openmeteo.ClientConfig{ForecastURL: srv.URL, BreakerFailures: 1})
	for i := 0; i < 3; i++ {
		_, err := c.FetchCurrentWeather(context.Background(), 1, 2)
		if errors.Is(err, openmeteo.ErrCircuitOpen) {
			t.Fatalf("call %d: 4xx responses must not open the circuit", i)
		}
	}
	if hits != 3 {
		t.Errorf("expected 3 requests, got %d", hits)
	}
}

func TestTemporary(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"transport", &openmeteo.NetworkError{Op: "fetch weather", Err: errors.New("connection refused")}, true},
		{"server error", &openmeteo.NetworkError{Op: "fetch weather", StatusCode: 503, Err: errors.New("unavailable")}, true},
		{"client error", &openmeteo.NetworkError{Op: "fetch weather", StatusCode: 400, Err: errors.New("bad request")}, false},
		{"circuit open", &openmeteo.NetworkError{Op: "fetch weather", Err: openmeteo.ErrCircuitOpen}, false},
		{"bad payload", &openmeteo.DeserializationError{Op: "fetch weather", Err: errors.New("eof")}, false},
		{"other", errors.New("boom"), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := openmeteo.Temporary(tt.err); got != tt.want {
				t.Errorf("Temporary(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}
