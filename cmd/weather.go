package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/derickschaefer/meteo/internal/app"
	"github.com/derickschaefer/meteo/internal/model"
	"github.com/derickschaefer/meteo/internal/state"
)

// placeTarget holds the flags that pick the place for weather and chart.
type placeTarget struct {
	Favorite string
	City     string
	Index    int
	Retry    int
}

var weatherTarget = placeTarget{Index: 1}

var weatherCmd = &cobra.Command{
	Use:   "weather [<lat> <lon>]",
	Short: "Show current conditions and the forecast for a place",
	Long: `Show current conditions, the next 24 hours and a 10-day forecast.

The place is given as a coordinate pair, as the ID of a saved favorite, or
as a search query whose Nth match is used. Temperatures and wind speeds are
shown in the units chosen with 'meteo settings set'.

--retry re-issues a failed request with exponential backoff. Only transport
failures and server errors are retried.`,
	Example: `  meteo weather 48.8534 2.3488
  meteo weather -- 51.5085 -0.1257
  meteo weather --favorite 2643743
  meteo weather --city Paris --index 2
  meteo weather --city Oslo --retry 3 --format json`,
	Args: cobra.MaximumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withState(func(deps *app.Deps) error {
			start := time.Now()
			view, err := loadForecast(cmd.Context(), deps, weatherTarget, args)
			if err != nil {
				return err
			}
			items := len(view.Forecast.Hourly) + len(view.Forecast.Daily)
			return emit(cmd, deps, newResult(model.KindForecast, "weather", view, items, start))
		})
	},
}

// loadForecast resolves the target, runs GetWeather and returns the loaded
// forecast. The weather state is cleared again before returning.
func loadForecast(ctx context.Context, deps *app.Deps, t placeTarget, args []string) (*model.ForecastView, error) {
	place, lat, lon, err := resolvePlace(ctx, deps, t, args)
	if err != nil {
		return nil, err
	}
	defer deps.State.Dispatch(state.ClearWeather{})

	if err := fetchWeatherWithRetry(ctx, deps, lat, lon, t.Retry); err != nil {
		return nil, err
	}

	st := deps.State.State()
	return &model.ForecastView{
		Place:           place,
		Latitude:        lat,
		Longitude:       lon,
		TemperatureUnit: st.Settings.TemperatureUnit,
		WindSpeedUnit:   st.Settings.WindSpeedUnit,
		Forecast: model.Forecast{
			Current: *st.Weather.CurrentWeather,
			Hourly:  st.Weather.HourlyForecast,
			Daily:   st.Weather.DailyForecast,
		},
	}, nil
}

// resolvePlace picks the coordinate from exactly one of: positional
// lat/lon, --favorite or --city.
func resolvePlace(ctx context.Context, deps *app.Deps, t placeTarget, args []string) (string, float64, float64, error) {
	sources := 0
	if len(args) > 0 {
		sources++
	}
	if t.Favorite != "" {
		sources++
	}
	if t.City != "" {
		sources++
	}
	if sources != 1 {
		return "", 0, 0, fmt.Errorf("specify exactly one of <lat> <lon>, --favorite or --city")
	}

	switch {
	case len(args) > 0:
		if len(args) != 2 {
			return "", 0, 0, fmt.Errorf("expected both <lat> and <lon>")
		}
		lat, lon, err := parseCoordinates(args[0], args[1])
		if err != nil {
			return "", 0, 0, err
		}
		return "", lat, lon, nil

	case t.Favorite != "":
		id, err := parseIntID(t.Favorite, "favorite ID")
		if err != nil {
			return "", 0, 0, err
		}
		fav, ok := deps.State.State().Favorites.Find(id)
		if !ok {
			return "", 0, 0, fmt.Errorf("no favorite with ID %d\n\n  Use: meteo fav list", id)
		}
		return placeLabel(fav.Name, fav.Admin1, fav.Country), fav.Latitude, fav.Longitude, nil

	default:
		loc, err := resolveLocation(ctx, deps, t.City, t.Index)
		if err != nil {
			return "", 0, 0, err
		}
		return placeLabel(loc.Name, loc.Admin1, loc.CountryName()), loc.Latitude, loc.Longitude, nil
	}
}

// fetchWeatherWithRetry runs GetWeather, re-issuing it up to retries more
// times while the failure is temporary. The weather state ends up holding
// the outcome of the last attempt.
func fetchWeatherWithRetry(ctx context.Context, deps *app.Deps, lat, lon float64, retries int) error {
	return retryLoop(ctx, retries, func() error {
		return deps.State.GetWeather(ctx, lat, lon)
	})
}

// bindPlaceFlags registers --favorite, --city, --index and --retry on cmd.
func bindPlaceFlags(cmd *cobra.Command, t *placeTarget) {
	f := cmd.Flags()
	f.StringVar(&t.Favorite, "favorite", "", "ID of a saved favorite")
	f.StringVar(&t.City, "city", "", "search query; the --index-th match is used")
	f.IntVar(&t.Index, "index", 1, "which search match to use with --city (1-based)")
	f.IntVar(&t.Retry, "retry", 0, "retry temporary failures this many times with exponential backoff")
	_ = cmd.RegisterFlagCompletionFunc("favorite", completeFavoriteIDs)
}

func init() {
	rootCmd.AddCommand(weatherCmd)
	bindPlaceFlags(weatherCmd, &weatherTarget)
}
