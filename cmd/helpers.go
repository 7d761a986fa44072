package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/derickschaefer/meteo/internal/app"
	"github.com/derickschaefer/meteo/internal/model"
	"github.com/derickschaefer/meteo/internal/openmeteo"
	"github.com/derickschaefer/meteo/internal/render"
	"github.com/derickschaefer/meteo/internal/state"
	"github.com/derickschaefer/meteo/internal/util"
)

// resolveFormat returns the effective format string, falling back to "table".
func resolveFormat(cfgFormat string) string {
	if globalFlags.Format != "" {
		return globalFlags.Format
	}
	if cfgFormat != "" {
		return cfgFormat
	}
	return render.FormatTable
}

// outputWriter returns the writer selected by --out. The returned close
// function is always non-nil.
func outputWriter(def io.Writer) (io.Writer, func() error, error) {
	if globalFlags.Out == "" {
		return def, func() error { return nil }, nil
	}
	f, err := os.Create(globalFlags.Out)
	if err != nil {
		return nil, nil, fmt.Errorf("creating output file: %w", err)
	}
	return f, f.Close, nil
}

// emit renders result to stdout (or --out) in the configured format and
// prints the footer to stderr. --quiet suppresses everything but errors.
func emit(cmd *cobra.Command, deps *app.Deps, result *model.Result) error {
	if deps.Config.Quiet {
		return nil
	}
	w, closeFn, err := outputWriter(cmd.OutOrStdout())
	if err != nil {
		return err
	}
	if err := render.Render(w, result, resolveFormat(deps.Config.Format)); err != nil {
		_ = closeFn()
		return err
	}
	if err := closeFn(); err != nil {
		return err
	}
	render.PrintFooter(cmd.ErrOrStderr(), result, deps.Config.Verbose)
	return nil
}

// newResult wraps data in a Result envelope stamped with the elapsed time
// since start.
func newResult(kind, command string, data interface{}, items int, start time.Time) *model.Result {
	return &model.Result{
		Kind:        kind,
		GeneratedAt: time.Now(),
		Command:     command,
		Data:        data,
		Stats: model.ResultStats{
			Items:      items,
			DurationMs: time.Since(start).Milliseconds(),
		},
	}
}

// printSimpleTable renders a simple table with headers using tablewriter.
// The add callback is called with row values as variadic strings.
func printSimpleTable(w io.Writer, headers []string, fill func(add func(...string))) {
	tw := tablewriter.NewWriter(w)
	tw.SetHeader(headers)
	tw.SetBorder(true)
	tw.SetRowLine(false)
	tw.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	tw.SetAlignment(tablewriter.ALIGN_LEFT)
	tw.SetAutoWrapText(false)

	fill(func(cols ...string) {
		tw.Append(cols)
	})
	tw.Render()
}

// printKVTable renders a two-column key/value table using aligned columns.
func printKVTable(w io.Writer, rows [][]string) {
	maxKey := 0
	for _, r := range rows {
		if len(r[0]) > maxKey {
			maxKey = len(r[0])
		}
	}
	for _, r := range rows {
		padding := strings.Repeat(" ", maxKey-len(r[0]))
		fmt.Fprintf(w, "  %s%s  %s\n", r[0], padding, r[1])
	}
}

// ─── Argument Parsing ─────────────────────────────────────────────────────────

// parseIntID parses a string as a non-negative integer ID, with a descriptive
// label for errors.
func parseIntID(s, label string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil || id < 0 {
		return 0, fmt.Errorf("invalid %s %q: expected a non-negative integer", label, s)
	}
	return id, nil
}

// parseCoordinates parses a latitude/longitude pair in decimal degrees.
func parseCoordinates(latStr, lonStr string) (float64, float64, error) {
	lat, err := strconv.ParseFloat(strings.TrimSpace(latStr), 64)
	if err != nil || lat < -90 || lat > 90 {
		return 0, 0, fmt.Errorf("invalid latitude %q: expected a number between -90 and 90", latStr)
	}
	lon, err := strconv.ParseFloat(strings.TrimSpace(lonStr), 64)
	if err != nil || lon < -180 || lon > 180 {
		return 0, 0, fmt.Errorf("invalid longitude %q: expected a number between -180 and 180", lonStr)
	}
	return lat, lon, nil
}

// placeLabel joins the non-empty parts of a place name, e.g.
// "London, England, United Kingdom".
func placeLabel(parts ...string) string {
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return strings.Join(out, ", ")
}

// ─── Lookups ──────────────────────────────────────────────────────────────────

// resolveLocation runs a geocoding search and picks the index-th (1-based)
// match. The search results are left in the weather state.
func resolveLocation(ctx context.Context, deps *app.Deps, query string, index int) (model.Location, error) {
	query = strings.TrimSpace(query)
	if len([]rune(query)) < openmeteo.MinQueryLength {
		return model.Location{}, fmt.Errorf("query %q is too short: need at least %d characters", query, openmeteo.MinQueryLength)
	}
	if err := deps.State.SearchLocations(ctx, query); err != nil {
		return model.Location{}, err
	}
	results := deps.State.State().Weather.SearchResults
	if len(results) == 0 {
		return model.Location{}, fmt.Errorf("no locations found for %q", query)
	}
	if index < 1 || index > len(results) {
		return model.Location{}, fmt.Errorf("--index %d out of range: %q matched %d locations", index, query, len(results))
	}
	return results[index-1], nil
}

// refreshFavorites refreshes every favorite's reading and returns the
// per-favorite failures as warnings.
func refreshFavorites(ctx context.Context, deps *app.Deps) []string {
	err := deps.State.RefreshFavorites(ctx, state.RefreshOptions{Concurrency: deps.Config.Concurrency})
	if err == nil {
		return nil
	}
	var multi *util.MultiError
	if !errors.As(err, &multi) {
		return []string{err.Error()}
	}
	warnings := make([]string, 0, len(multi.Errors))
	for _, e := range multi.Errors {
		warnings = append(warnings, e.Error())
	}
	return warnings
}

// ─── Retry ────────────────────────────────────────────────────────────────────

// retryLoop runs op, then retries it up to n more times with exponential
// backoff while its error is temporary. n <= 0 runs op once.
func retryLoop(ctx context.Context, n int, op func() error) error {
	if n <= 0 {
		return op()
	}
	attempt := 0
	classified := func() error {
		attempt++
		err := op()
		if err != nil && !openmeteo.Temporary(err) {
			return backoff.Permanent(err)
		}
		return err
	}
	notify := func(err error, wait time.Duration) {
		slog.Warn("request failed, retrying", "attempt", attempt, "wait", wait, "err", err)
	}
	return backoff.RetryNotify(classified, retryPolicy(ctx, n), notify)
}

// retryPolicy returns an exponential backoff that allows n retries after the
// first attempt and stops when ctx is done.
func retryPolicy(ctx context.Context, n int) backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 500 * time.Millisecond
	b.MaxInterval = 5 * time.Second
	return backoff.WithContext(backoff.WithMaxRetries(b, uint64(n)), ctx)
}
