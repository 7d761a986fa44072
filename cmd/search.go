package cmd

import (
	"bufio"
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/spf13/cobra"

	"github.com/derickschaefer/meteo/internal/app"
	"github.com/derickschaefer/meteo/internal/model"
	"github.com/derickschaefer/meteo/internal/openmeteo"
	"github.com/derickschaefer/meteo/internal/util"
)

// searchDebounce is the quiet period --watch waits for before searching.
const searchDebounce = 300 * time.Millisecond

var (
	searchLimit         int
	searchWatch         bool
	searchWithFavorites bool
)

var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Search for places by name",
	Long: `Search the Open-Meteo geocoder for places matching a name.

Queries shorter than two characters return no results without contacting
the API. At most 10 matches are returned.

With --watch, queries are read from stdin one per line and a search runs
only after input has been quiet for 300ms, so typing fast does not flood
the API.`,
	Example: `  meteo search London
  meteo search "New York" --limit 3
  meteo search Par --format json
  meteo search --watch`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if searchWatch {
			if len(args) > 0 {
				return fmt.Errorf("--watch reads queries from stdin; do not pass a query argument")
			}
		} else if len(args) == 0 {
			return fmt.Errorf("missing query\n\n  Use: meteo search <query>")
		}

		return withState(func(deps *app.Deps) error {
			if searchWatch {
				return watchSearch(cmd, deps)
			}
			query := strings.Join(args, " ")
			if err := runSearch(cmd, deps, query); err != nil {
				return err
			}
			if searchWithFavorites {
				return listFavorites(cmd, deps, true)
			}
			return nil
		})
	},
}

// runSearch performs one search and renders the results held in state.
func runSearch(cmd *cobra.Command, deps *app.Deps, query string) error {
	start := time.Now()
	if err := deps.State.SearchLocations(cmd.Context(), query); err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	locations := deps.State.State().Weather.SearchResults
	if searchLimit > 0 && searchLimit < len(locations) {
		locations = locations[:searchLimit]
	}
	sr := &model.SearchResult{Query: query, Locations: locations}
	result := newResult(model.KindSearchResult, "search", sr, len(locations), start)
	if n := len([]rune(strings.TrimSpace(query))); n < openmeteo.MinQueryLength {
		result.Warnings = append(result.Warnings,
			fmt.Sprintf("query shorter than %d characters; nothing searched", openmeteo.MinQueryLength))
	}
	return emit(cmd, deps, result)
}

// watchSearch reads queries line by line and runs the latest one after each
// quiet period. The final query is always searched before returning.
func watchSearch(cmd *cobra.Command, deps *app.Deps) error {
	var (
		mu      sync.Mutex
		lastRun string
		runErr  error
	)
	run := func(ctx context.Context, q string) {
		mu.Lock()
		defer mu.Unlock()
		if q == lastRun || ctx.Err() != nil {
			return
		}
		lastRun = q
		if err := runSearch(cmd, deps, q); err != nil {
			fmt.Fprintln(cmd.ErrOrStderr(), "Error:", err)
			runErr = err
		}
	}

	ctx := cmd.Context()
	debouncer := util.NewDebouncer(searchDebounce)
	defer debouncer.Stop()

	var last string
	scanner := bufio.NewScanner(cmd.InOrStdin())
	for scanner.Scan() {
		q := strings.TrimSpace(scanner.Text())
		if q == "" {
			continue
		}
		last = q
		debouncer.Trigger(func() { run(ctx, q) })
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("reading queries: %w", err)
	}

	// Stop also waits for a search whose timer already fired.
	debouncer.Stop()
	if last != "" {
		run(ctx, last)
	}

	mu.Lock()
	defer mu.Unlock()
	return runErr
}

func init() {
	rootCmd.AddCommand(searchCmd)
	searchCmd.Flags().IntVar(&searchLimit, "limit", 0, "show at most this many matches (max 10)")
	searchCmd.Flags().BoolVar(&searchWatch, "watch", false, "read queries from stdin and search after a 300ms pause")
	searchCmd.Flags().BoolVar(&searchWithFavorites, "with-favorites", false, "also list favorites with refreshed conditions")
}
