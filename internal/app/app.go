// Package app wires together configuration, the Open-Meteo client, the local
// store and the state container into a single Deps struct that commands
// receive at runtime.
package app

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/derickschaefer/meteo/internal/config"
	"github.com/derickschaefer/meteo/internal/openmeteo"
	"github.com/derickschaefer/meteo/internal/state"
	"github.com/derickschaefer/meteo/internal/store"
)

// Deps holds all runtime dependencies injected into command Run functions.
// State starts from defaults; OpenStore rehydrates it from disk and keeps the
// disk copy current from then on.
type Deps struct {
	Config *config.Config
	Client *openmeteo.Client
	State  *state.Store
	Store  *store.Store

	persister *store.Persister
}

// New builds a Deps from resolved config.
func New(cfg *config.Config) *Deps {
	client := openmeteo.NewClient(openmeteo.ClientConfig{
		GeocodingURL:    cfg.GeocodingURL,
		ForecastURL:     cfg.ForecastURL,
		Timeout:         cfg.Timeout,
		Rate:            cfg.Rate,
		BreakerFailures: uint32(cfg.BreakerFailures),
		Debug:           cfg.Debug,
	})
	return &Deps{
		Config: cfg,
		Client: client,
		State:  state.NewStore(client, state.DefaultPersisted()),
	}
}

// OpenStore opens the database at Config.DBPath, rehydrates settings and
// favorites into a fresh State and starts persisting later changes.
func (d *Deps) OpenStore() error {
	if d.Store != nil {
		return nil
	}
	s, err := store.Open(d.Config.DBPath)
	if err != nil {
		return fmt.Errorf("opening store: %w", err)
	}
	p, err := s.Load()
	if err != nil {
		s.Close()
		return err
	}
	slog.Debug("state rehydrated", "path", s.Path(), "favorites", len(p.Favorites.Cities))

	d.Store = s
	d.State = state.NewStore(d.Client, p)
	d.persister = store.NewPersister(d.State, s)
	return nil
}

// Close flushes pending writes and closes the database. It is safe to call
// when the store was never opened.
func (d *Deps) Close() error {
	var errs []error
	if d.persister != nil {
		if err := d.persister.Close(); err != nil {
			errs = append(errs, fmt.Errorf("persisting state: %w", err))
		}
		d.persister = nil
	}
	if d.Store != nil {
		if err := d.Store.Close(); err != nil {
			errs = append(errs, err)
		}
		d.Store = nil
	}
	return errors.Join(errs...)
}
