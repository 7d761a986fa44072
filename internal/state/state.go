// Package state holds meteo's application state: three independent
// sub-states (settings, favorites, weather), the pure reducers that transition
// them, and a Store handle that serializes dispatches and notifies
// subscribers after every committed transition.
package state

import (
	"github.com/derickschaefer/meteo/internal/model"
)

// SettingsState holds display preferences. It is persisted.
type SettingsState struct {
	TemperatureUnit model.TemperatureUnit `json:"temperature_unit"`
	WindSpeedUnit   model.WindSpeedUnit   `json:"wind_speed_unit"`
	DarkTheme       bool                  `json:"dark_theme"`
}

// DefaultSettings returns celsius, km/h and the light theme.
func DefaultSettings() SettingsState {
	return SettingsState{
		TemperatureUnit: model.Celsius,
		WindSpeedUnit:   model.KMH,
		DarkTheme:       false,
	}
}

// FavoritesState holds saved locations in insertion order, unique by ID.
// It is persisted.
type FavoritesState struct {
	Cities []model.Favorite `json:"cities"`
}

// DefaultFavorites returns an empty favorites list.
func DefaultFavorites() FavoritesState {
	return FavoritesState{Cities: []model.Favorite{}}
}

// Find returns the favorite with id.
func (f FavoritesState) Find(id int64) (model.Favorite, bool) {
	for _, c := range f.Cities {
		if c.ID == id {
			return c, true
		}
	}
	return model.Favorite{}, false
}

// Contains reports whether a favorite with id exists.
func (f FavoritesState) Contains(id int64) bool {
	_, ok := f.Find(id)
	return ok
}

// WeatherState is the transient weather-detail and search state. It is never
// persisted. Empty Error and SearchError mean no error.
type WeatherState struct {
	CurrentWeather *model.CurrentWeather `json:"current_weather"`
	HourlyForecast []model.HourlyPoint   `json:"hourly_forecast"`
	DailyForecast  []model.DailyPoint    `json:"daily_forecast"`
	SearchResults  []model.Location      `json:"search_results"`
	Loading        bool                  `json:"loading"`
	SearchLoading  bool                  `json:"search_loading"`
	Error          string                `json:"error,omitempty"`
	SearchError    string                `json:"search_error,omitempty"`
}

// EmptyWeather returns the initial weather state.
func EmptyWeather() WeatherState {
	return WeatherState{
		HourlyForecast: []model.HourlyPoint{},
		DailyForecast:  []model.DailyPoint{},
		SearchResults:  []model.Location{},
	}
}

// State is the whole application state.
type State struct {
	Settings  SettingsState
	Favorites FavoritesState
	Weather   WeatherState
}

// Persisted is the durable subset of State.
type Persisted struct {
	Settings  SettingsState  `json:"settings"`
	Favorites FavoritesState `json:"favorites"`
}

// DefaultPersisted returns the state used when nothing was stored.
func DefaultPersisted() Persisted {
	return Persisted{Settings: DefaultSettings(), Favorites: DefaultFavorites()}
}

// Persisted extracts the durable subset of s.
func (s State) Persisted() Persisted {
	return Persisted{Settings: s.Settings, Favorites: s.Favorites}
}

// Sanitize replaces out-of-domain units with defaults, drops duplicate
// favorite IDs (first wins) and ensures a non-nil city list. Rehydrated data
// passes through here so the store invariants hold whatever was on disk.
func (p Persisted) Sanitize() Persisted {
	def := DefaultSettings()
	if !p.Settings.TemperatureUnit.Valid() {
		p.Settings.TemperatureUnit = def.TemperatureUnit
	}
	if !p.Settings.WindSpeedUnit.Valid() {
		p.Settings.WindSpeedUnit = def.WindSpeedUnit
	}

	seen := make(map[int64]bool, len(p.Favorites.Cities))
	cities := make([]model.Favorite, 0, len(p.Favorites.Cities))
	for _, c := range p.Favorites.Cities {
		if seen[c.ID] {
			continue
		}
		seen[c.ID] = true
		cities = append(cities, c)
	}
	p.Favorites.Cities = cities
	return p
}

// Initial builds the starting State from rehydrated persisted data.
func Initial(p Persisted) State {
	p = p.Sanitize()
	return State{
		Settings:  p.Settings,
		Favorites: p.Favorites,
		Weather:   EmptyWeather(),
	}
}
