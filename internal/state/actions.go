package state

import "github.com/derickschaefer/meteo/internal/model"

// Action is a state transition request. Type names the action for logging.
type Action interface {
	Type() string
}

// ─── Settings ─────────────────────────────────────────────────────────────────

type SetTemperatureUnit struct{ Unit model.TemperatureUnit }
type SetWindSpeedUnit struct{ Unit model.WindSpeedUnit }
type SetDarkTheme struct{ Dark bool }
type ToggleDarkTheme struct{}

func (SetTemperatureUnit) Type() string { return "settings/setTemperatureUnit" }
func (SetWindSpeedUnit) Type() string   { return "settings/setWindSpeedUnit" }
func (SetDarkTheme) Type() string       { return "settings/setDarkTheme" }
func (ToggleDarkTheme) Type() string    { return "settings/toggleDarkTheme" }

// ─── Favorites ────────────────────────────────────────────────────────────────

// AddFavorite appends Location unless its ID is already saved.
type AddFavorite struct{ Location model.Location }

// RemoveFavorite drops the favorite with ID, if any.
type RemoveFavorite struct{ ID int64 }

// ToggleFavorite removes Location when saved and adds it otherwise.
type ToggleFavorite struct{ Location model.Location }

// UpdateFavoriteWeather replaces the cached reading of the favorite with ID.
// It never inserts.
type UpdateFavoriteWeather struct {
	ID      int64
	Weather model.FavoriteWeather
}

func (AddFavorite) Type() string           { return "favorites/addFavorite" }
func (RemoveFavorite) Type() string        { return "favorites/removeFavorite" }
func (ToggleFavorite) Type() string        { return "favorites/toggleFavorite" }
func (UpdateFavoriteWeather) Type() string { return "favorites/updateFavoriteWeather" }

// ─── Weather ──────────────────────────────────────────────────────────────────
//
// Fetches move through three phases: Requested, then exactly one of
// Fulfilled or Rejected.

type WeatherRequested struct{}
type WeatherFulfilled struct{ Forecast model.Forecast }
type WeatherRejected struct{ Message string }
type ClearWeather struct{}

type SearchRequested struct{}
type SearchFulfilled struct{ Results []model.Location }
type SearchRejected struct{ Message string }
type ClearSearchResults struct{}

func (WeatherRequested) Type() string   { return "weather/getWeather/pending" }
func (WeatherFulfilled) Type() string   { return "weather/getWeather/fulfilled" }
func (WeatherRejected) Type() string    { return "weather/getWeather/rejected" }
func (ClearWeather) Type() string       { return "weather/clearWeather" }
func (SearchRequested) Type() string    { return "weather/searchLocations/pending" }
func (SearchFulfilled) Type() string    { return "weather/searchLocations/fulfilled" }
func (SearchRejected) Type() string     { return "weather/searchLocations/rejected" }
func (ClearSearchResults) Type() string { return "weather/clearSearchResults" }
