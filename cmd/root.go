// Package cmd implements the meteo CLI command tree.
// This file defines the root command and registers all global persistent flags.
package cmd

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"time"

	"github.com/spf13/cobra"

	"github.com/derickschaefer/meteo/internal/app"
	"github.com/derickschaefer/meteo/internal/config"
	"github.com/derickschaefer/meteo/internal/render"
)

// globalFlags holds the parsed values of all persistent (global) flags.
// Commands read from this struct via the deps they receive.
var globalFlags struct {
	Format      string
	Out         string
	DB          string
	Timeout     string
	Concurrency int
	Rate        float64
	Quiet       bool
	Verbose     bool
	Debug       bool
}

// rootCmd is the base command. Running `meteo` with no subcommand
// prints help.
var rootCmd = &cobra.Command{
	Use:   "meteo",
	Short: "Weather lookup from the command line",
	Long: `meteo looks up places and their weather using the free Open-Meteo APIs.
No API key is needed.

Weather data by Open-Meteo.com; https://open-meteo.com/

Settings and favorite places are kept in a local database between runs.

Quick start:
  meteo search London                 # find a place
  meteo weather -- 51.5085 -0.1257    # full forecast; -- lets coordinates be negative
  meteo fav add London                # save the first match as a favorite
  meteo fav list --refresh            # favorites with current conditions`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		setupLogging(globalFlags.Debug)
	},
}

// Execute is the entry point called by main.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		stop()
		os.Exit(1)
	}
}

// setupLogging installs the process-wide slog handler on stderr. Debug mode
// shows request URLs and state transitions; otherwise only warnings.
func setupLogging(debug bool) {
	level := slog.LevelWarn
	if debug {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
}

// buildDeps resolves config and constructs the dependency container.
// Called at the start of each command's RunE.
func buildDeps() (*app.Deps, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	// Apply CLI flag overrides
	cfg.Quiet = globalFlags.Quiet
	cfg.Verbose = globalFlags.Verbose
	cfg.Debug = globalFlags.Debug

	if globalFlags.Format != "" {
		cfg.Format = globalFlags.Format
	}
	if globalFlags.DB != "" {
		cfg.DBPath = globalFlags.DB
	}
	if globalFlags.Timeout != "" {
		d, err := time.ParseDuration(globalFlags.Timeout)
		if err != nil {
			return nil, fmt.Errorf("--timeout: %w", err)
		}
		cfg.Timeout = d
	}
	if globalFlags.Concurrency > 0 {
		cfg.Concurrency = globalFlags.Concurrency
	}
	if globalFlags.Rate > 0 {
		cfg.Rate = globalFlags.Rate
	}

	if !render.ValidFormat(cfg.Format) {
		return nil, fmt.Errorf("unknown format %q (valid: table, json, jsonl, csv, tsv, md)", cfg.Format)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return app.New(cfg), nil
}

// withState builds deps, rehydrates settings and favorites from the local
// database, runs fn and flushes state back to disk before returning. A failed
// flush is logged; the command's own result stands.
func withState(fn func(deps *app.Deps) error) error {
	deps, err := buildDeps()
	if err != nil {
		return err
	}
	if err := deps.OpenStore(); err != nil {
		return err
	}
	defer closeState(deps)
	return fn(deps)
}

func closeState(c io.Closer) {
	if err := c.Close(); err != nil {
		slog.Error("saving local state failed", "err", err)
	}
}

func init() {
	pf := rootCmd.PersistentFlags()

	pf.StringVar(&globalFlags.Format, "format", "",
		"output format: table|json|jsonl|csv|tsv|md (default: table)")
	pf.StringVar(&globalFlags.Out, "out", "",
		"write output to file instead of stdout")
	pf.StringVar(&globalFlags.DB, "db", "",
		"path of the local database (overrides env METEO_DB_PATH and config.json)")
	pf.StringVar(&globalFlags.Timeout, "timeout", "",
		"HTTP request timeout (e.g. 10s, 1m)")
	pf.IntVar(&globalFlags.Concurrency, "concurrency", 0,
		"max parallel requests when refreshing favorites (default: 4)")
	pf.Float64Var(&globalFlags.Rate, "rate", 0,
		"max API requests per second (default: 5.0)")
	pf.BoolVar(&globalFlags.Quiet, "quiet", false,
		"suppress all non-error output")
	pf.BoolVar(&globalFlags.Verbose, "verbose", false,
		"show timing stats after output")
	pf.BoolVar(&globalFlags.Debug, "debug", false,
		"log HTTP requests and state transitions to stderr")
}
