// Package model defines the canonical data types used throughout meteo.
// These types are the normalized shapes produced by the Open-Meteo client,
// held by the state containers, persisted by the store and consumed by the
// renderers.
package model

import (
	"fmt"
	"strings"
	"time"
)

// ─── Units ────────────────────────────────────────────────────────────────────

// TemperatureUnit selects how temperatures are displayed. Data is always
// carried in Celsius.
type TemperatureUnit string

const (
	Celsius    TemperatureUnit = "celsius"
	Fahrenheit TemperatureUnit = "fahrenheit"
)

// Valid reports whether u is one of the enumerated temperature units.
func (u TemperatureUnit) Valid() bool {
	return u == Celsius || u == Fahrenheit
}

// ParseTemperatureUnit accepts the canonical names plus the short forms
// "c" and "f".
func ParseTemperatureUnit(s string) (TemperatureUnit, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "celsius", "c":
		return Celsius, nil
	case "fahrenheit", "f":
		return Fahrenheit, nil
	}
	return "", fmt.Errorf("invalid temperature unit %q: choose celsius|fahrenheit", s)
}

// WindSpeedUnit selects how wind speeds are displayed. Data is always
// carried in km/h.
type WindSpeedUnit string

const (
	KMH WindSpeedUnit = "kmh"
	MPH WindSpeedUnit = "mph"
)

// Valid reports whether u is one of the enumerated wind speed units.
func (u WindSpeedUnit) Valid() bool {
	return u == KMH || u == MPH
}

// ParseWindSpeedUnit accepts "kmh", "km/h" and "mph".
func ParseWindSpeedUnit(s string) (WindSpeedUnit, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "kmh", "km/h":
		return KMH, nil
	case "mph":
		return MPH, nil
	}
	return "", fmt.Errorf("invalid wind speed unit %q: choose kmh|mph", s)
}

// ─── Locations ────────────────────────────────────────────────────────────────

// Location is a candidate place returned by the geocoding search.
// It is never mutated after the client returns it.
type Location struct {
	ID          int64   `json:"id"`
	Name        string  `json:"name"`
	Country     string  `json:"country,omitempty"`
	CountryCode string  `json:"country_code,omitempty"`
	Admin1      string  `json:"admin1,omitempty"`
	Latitude    float64 `json:"latitude"`
	Longitude   float64 `json:"longitude"`
}

// CountryName returns the full country name, falling back to the code.
func (l Location) CountryName() string {
	if l.Country != "" {
		return l.Country
	}
	return l.CountryCode
}

// Favorite is a user-saved location together with the last weather reading
// fetched for it.
type Favorite struct {
	ID             int64            `json:"id"`
	Name           string           `json:"name"`
	Country        string           `json:"country"`
	Latitude       float64          `json:"latitude"`
	Longitude      float64          `json:"longitude"`
	Admin1         string           `json:"admin1,omitempty"`
	CurrentWeather *FavoriteWeather `json:"current_weather,omitempty"`
}

// NewFavorite copies the identifying fields of a search result.
func NewFavorite(l Location) Favorite {
	return Favorite{
		ID:        l.ID,
		Name:      l.Name,
		Country:   l.CountryName(),
		Latitude:  l.Latitude,
		Longitude: l.Longitude,
		Admin1:    l.Admin1,
	}
}

// ─── Weather ──────────────────────────────────────────────────────────────────
//
// Numeric readings are pointers: the provider reports missing values as JSON
// null, and a nil reading renders as a placeholder rather than as zero.

// CurrentWeather is the full current-conditions snapshot.
type CurrentWeather struct {
	Temperature         *float64 `json:"temperature"`          // °C
	Humidity            *float64 `json:"humidity"`             // %
	ApparentTemperature *float64 `json:"apparent_temperature"` // °C
	WeatherCode         *int     `json:"weather_code"`         // WMO
	WindSpeed           *float64 `json:"wind_speed"`           // km/h
	Precipitation       *float64 `json:"precipitation"`        // mm
}

// FavoriteWeather is the lightweight snapshot shown on favorite cards.
type FavoriteWeather struct {
	Temperature *float64 `json:"temperature"`
	WeatherCode *int     `json:"weather_code"`
}

// HourlyPoint is one hour of the forecast. Time is the provider's local
// ISO-8601 timestamp.
type HourlyPoint struct {
	Time                     string   `json:"time"`
	Temperature              *float64 `json:"temperature"`
	WeatherCode              *int     `json:"weather_code"`
	PrecipitationProbability *float64 `json:"precipitation_probability"`
}

// DailyPoint is one day of the forecast. Index 0 is today.
type DailyPoint struct {
	Date                     string   `json:"date"`
	MaxTemperature           *float64 `json:"max_temperature"`
	MinTemperature           *float64 `json:"min_temperature"`
	WeatherCode              *int     `json:"weather_code"`
	Sunrise                  string   `json:"sunrise,omitempty"`
	Sunset                   string   `json:"sunset,omitempty"`
	PrecipitationSum         *float64 `json:"precipitation_sum"`
	PrecipitationProbability *float64 `json:"precipitation_probability"`
}

// Forecast bundles everything a weather detail view shows.
type Forecast struct {
	Current CurrentWeather `json:"current"`
	Hourly  []HourlyPoint  `json:"hourly"`
	Daily   []DailyPoint   `json:"daily"`
}

// Float returns a pointer to v.
func Float(v float64) *float64 { return &v }

// Int returns a pointer to v.
func Int(v int) *int { return &v }

// ─── Result Envelope ─────────────────────────────────────────────────────────

// ResultStats carries timing metadata for a command result.
type ResultStats struct {
	DurationMs int64 `json:"duration_ms"`
	Items      int   `json:"items"`
}

// Result is the uniform envelope returned by every command.
// The Data field holds the typed payload; Kind identifies what is in it.
// Renderers switch on Kind to format output appropriately.
type Result struct {
	Kind        string      `json:"kind"`
	GeneratedAt time.Time   `json:"generated_at"`
	Command     string      `json:"command"`
	Data        interface{} `json:"data"`
	Warnings    []string    `json:"warnings,omitempty"`
	Stats       ResultStats `json:"stats"`
}

// Kind constants for Result.Kind.
const (
	KindSearchResult = "search_result"
	KindForecast     = "forecast"
	KindFavorites    = "favorites"
	KindSettings     = "settings"
)

// SearchResult holds the locations matched by a geocoding query.
type SearchResult struct {
	Query     string     `json:"query"`
	Locations []Location `json:"locations"`
}

// ForecastView is a forecast labelled with the place it was fetched for,
// plus the display units in effect.
type ForecastView struct {
	Place           string          `json:"place"`
	Latitude        float64         `json:"latitude"`
	Longitude       float64         `json:"longitude"`
	TemperatureUnit TemperatureUnit `json:"temperature_unit"`
	WindSpeedUnit   WindSpeedUnit   `json:"wind_speed_unit"`
	Forecast        Forecast        `json:"forecast"`
}

// FavoritesView is the favorites list with the temperature unit in effect.
type FavoritesView struct {
	TemperatureUnit TemperatureUnit `json:"temperature_unit"`
	Cities          []Favorite      `json:"cities"`
}

// SettingsView is the display-preference payload of the settings commands.
type SettingsView struct {
	TemperatureUnit TemperatureUnit `json:"temperature_unit"`
	WindSpeedUnit   WindSpeedUnit   `json:"wind_speed_unit"`
	DarkTheme       bool            `json:"dark_theme"`
}
