package state

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/derickschaefer/meteo/internal/model"
	"github.com/derickschaefer/meteo/internal/util"
)

// Provider is the remote data source behind the fetch operations.
// *openmeteo.Client satisfies it.
type Provider interface {
	SearchCities(ctx context.Context, query string) ([]model.Location, error)
	FetchWeather(ctx context.Context, latitude, longitude float64) (*model.Forecast, error)
	FetchCurrentWeather(ctx context.Context, latitude, longitude float64) (*model.FavoriteWeather, error)
}

var errNoProvider = errors.New("no weather provider configured")

// GetWeather fetches the full forecast for a coordinate and installs it in
// the weather state. On failure the error text is installed instead and the
// error is also returned so the caller can decide whether to retry.
func (s *Store) GetWeather(ctx context.Context, latitude, longitude float64) error {
	s.Dispatch(WeatherRequested{})
	if s.provider == nil {
		s.Dispatch(WeatherRejected{Message: errNoProvider.Error()})
		return errNoProvider
	}

	forecast, err := s.provider.FetchWeather(ctx, latitude, longitude)
	if err != nil {
		s.Dispatch(WeatherRejected{Message: err.Error()})
		return err
	}
	if forecast == nil {
		forecast = &model.Forecast{}
	}
	s.Dispatch(WeatherFulfilled{Forecast: *forecast})
	return nil
}

// SearchLocations runs a geocoding query and installs the results. Callers
// are expected to debounce keystrokes before calling it.
func (s *Store) SearchLocations(ctx context.Context, query string) error {
	s.Dispatch(SearchRequested{})
	if s.provider == nil {
		s.Dispatch(SearchRejected{Message: errNoProvider.Error()})
		return errNoProvider
	}

	results, err := s.provider.SearchCities(ctx, query)
	if err != nil {
		s.Dispatch(SearchRejected{Message: err.Error()})
		return err
	}
	s.Dispatch(SearchFulfilled{Results: results})
	return nil
}

// RefreshOptions tunes RefreshFavorites.
type RefreshOptions struct {
	// Concurrency is the number of favorites fetched at once. Values below 2
	// refresh one favorite at a time, in list order.
	Concurrency int
}

// RefreshFavorites fetches a lightweight reading for every favorite saved
// when the call starts and applies each as an UpdateFavoriteWeather
// transition. A failing favorite is logged and skipped; the others are still
// refreshed. The returned error aggregates the per-favorite failures.
func (s *Store) RefreshFavorites(ctx context.Context, opts RefreshOptions) error {
	if s.provider == nil {
		return errNoProvider
	}
	cities := s.State().Favorites.Cities

	var (
		mu   sync.Mutex
		errs util.MultiError
	)
	refresh := func(c model.Favorite) {
		w, err := s.provider.FetchCurrentWeather(ctx, c.Latitude, c.Longitude)
		if err != nil {
			slog.Warn("favorite refresh failed", "id", c.ID, "name", c.Name, "err", err)
			mu.Lock()
			errs.Add(fmt.Errorf("%s: %w", c.Name, err))
			mu.Unlock()
			return
		}
		if w == nil {
			w = &model.FavoriteWeather{}
		}
		s.Dispatch(UpdateFavoriteWeather{ID: c.ID, Weather: *w})
	}

	if opts.Concurrency < 2 {
		for _, c := range cities {
			refresh(c)
		}
		return errs.Err()
	}

	var g errgroup.Group
	g.SetLimit(opts.Concurrency)
	for _, c := range cities {
		g.Go(func() error {
			refresh(c)
			return nil
		})
	}
	_ = g.Wait()
	return errs.Err()
}
