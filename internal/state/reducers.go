package state

import (
	"github.com/derickschaefer/meteo/internal/model"
)

const (
	defaultWeatherError = "Failed to fetch weather"
	defaultSearchError  = "Search failed"
)

// Reduce applies a to every sub-state. Reducers never modify their input:
// any slice they change is copied first, so earlier State values held by
// callers stay valid.
func Reduce(s State, a Action) State {
	return State{
		Settings:  ReduceSettings(s.Settings, a),
		Favorites: ReduceFavorites(s.Favorites, a),
		Weather:   ReduceWeather(s.Weather, a),
	}
}

// ReduceSettings transitions settings. Out-of-domain units are ignored.
func ReduceSettings(s SettingsState, a Action) SettingsState {
	switch a := a.(type) {
	case SetTemperatureUnit:
		if a.Unit.Valid() {
			s.TemperatureUnit = a.Unit
		}
	case SetWindSpeedUnit:
		if a.Unit.Valid() {
			s.WindSpeedUnit = a.Unit
		}
	case SetDarkTheme:
		s.DarkTheme = a.Dark
	case ToggleDarkTheme:
		s.DarkTheme = !s.DarkTheme
	}
	return s
}

// ReduceFavorites transitions the favorites list.
func ReduceFavorites(s FavoritesState, a Action) FavoritesState {
	switch a := a.(type) {
	case AddFavorite:
		return addFavorite(s, a.Location)
	case RemoveFavorite:
		return removeFavorite(s, a.ID)
	case ToggleFavorite:
		if s.Contains(a.Location.ID) {
			return removeFavorite(s, a.Location.ID)
		}
		return addFavorite(s, a.Location)
	case UpdateFavoriteWeather:
		return updateFavoriteWeather(s, a.ID, a.Weather)
	}
	return s
}

// addFavorite is first-write-wins: an existing entry is left untouched.
func addFavorite(s FavoritesState, loc model.Location) FavoritesState {
	if s.Contains(loc.ID) {
		return s
	}
	cities := make([]model.Favorite, len(s.Cities), len(s.Cities)+1)
	copy(cities, s.Cities)
	return FavoritesState{Cities: append(cities, model.NewFavorite(loc))}
}

func removeFavorite(s FavoritesState, id int64) FavoritesState {
	if !s.Contains(id) {
		return s
	}
	cities := make([]model.Favorite, 0, len(s.Cities)-1)
	for _, c := range s.Cities {
		if c.ID != id {
			cities = append(cities, c)
		}
	}
	return FavoritesState{Cities: cities}
}

func updateFavoriteWeather(s FavoritesState, id int64, w model.FavoriteWeather) FavoritesState {
	if !s.Contains(id) {
		return s
	}
	cities := make([]model.Favorite, len(s.Cities))
	copy(cities, s.Cities)
	for i := range cities {
		if cities[i].ID == id {
			cw := w
			cities[i].CurrentWeather = &cw
		}
	}
	return FavoritesState{Cities: cities}
}

// ReduceWeather transitions the transient weather and search state.
func ReduceWeather(s WeatherState, a Action) WeatherState {
	switch a := a.(type) {
	case WeatherRequested:
		s.Loading = true
		s.Error = ""
	case WeatherFulfilled:
		s.Loading = false
		s.Error = ""
		cur := a.Forecast.Current
		s.CurrentWeather = &cur
		s.HourlyForecast = nonNil(a.Forecast.Hourly)
		s.DailyForecast = nonNil(a.Forecast.Daily)
	case WeatherRejected:
		s.Loading = false
		s.Error = orDefault(a.Message, defaultWeatherError)
	case ClearWeather:
		s.CurrentWeather = nil
		s.HourlyForecast = []model.HourlyPoint{}
		s.DailyForecast = []model.DailyPoint{}
		s.Error = ""
	case SearchRequested:
		s.SearchLoading = true
		s.SearchError = ""
	case SearchFulfilled:
		s.SearchLoading = false
		s.SearchError = ""
		s.SearchResults = nonNil(a.Results)
	case SearchRejected:
		s.SearchLoading = false
		s.SearchError = orDefault(a.Message, defaultSearchError)
	case ClearSearchResults:
		s.SearchResults = []model.Location{}
		s.SearchError = ""
	}
	return s
}

func nonNil[T any](xs []T) []T {
	if xs == nil {
		return []T{}
	}
	return xs
}

func orDefault(msg, def string) string {
	if msg == "" {
		return def
	}
	return msg
}
