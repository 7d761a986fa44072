package cmd

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/derickschaefer/meteo/internal/app"
	"github.com/derickschaefer/meteo/internal/model"
	"github.com/derickschaefer/meteo/internal/state"
)

var favCmd = &cobra.Command{
	Use:     "fav",
	Aliases: []string{"favorites"},
	Short:   "Manage favorite places",
	Long: `Add, remove and list favorite places. Favorites are saved in the local
database and keep the last conditions fetched for them.`,
}

// ─── fav add / toggle ─────────────────────────────────────────────────────────

var favIndex int

var favAddCmd = &cobra.Command{
	Use:   "add <query>",
	Short: "Save a place as a favorite",
	Long: `Search for a place and save the --index-th match (default: the first).
Adding a place that is already a favorite leaves the saved entry unchanged.`,
	Example: `  meteo fav add London
  meteo fav add Springfield --index 3`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return changeFavorite(cmd, args, func(loc model.Location) state.Action {
			return state.AddFavorite{Location: loc}
		})
	},
}

var favToggleCmd = &cobra.Command{
	Use:   "toggle <query>",
	Short: "Add a place to favorites, or remove it if already saved",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return changeFavorite(cmd, args, func(loc model.Location) state.Action {
			return state.ToggleFavorite{Location: loc}
		})
	},
}

func changeFavorite(cmd *cobra.Command, args []string, action func(model.Location) state.Action) error {
	query := strings.Join(args, " ")
	return withState(func(deps *app.Deps) error {
		loc, err := resolveLocation(cmd.Context(), deps, query, favIndex)
		if err != nil {
			return err
		}
		before := deps.State.State().Favorites.Contains(loc.ID)
		after := deps.State.Dispatch(action(loc)).Favorites.Contains(loc.ID)
		deps.State.Dispatch(state.ClearSearchResults{})

		if deps.Config.Quiet {
			return nil
		}
		label := placeLabel(loc.Name, loc.Admin1, loc.CountryName())
		out := cmd.OutOrStdout()
		switch {
		case !before && after:
			fmt.Fprintf(out, "✓ Added %s (ID %d)\n", label, loc.ID)
		case before && !after:
			fmt.Fprintf(out, "✓ Removed %s (ID %d)\n", label, loc.ID)
		default:
			fmt.Fprintf(out, "%s (ID %d) is already a favorite\n", label, loc.ID)
		}
		return nil
	})
}

// ─── fav remove ───────────────────────────────────────────────────────────────

var favRemoveCmd = &cobra.Command{
	Use:     "remove <ID>",
	Aliases: []string{"rm"},
	Short:   "Remove a favorite by ID",
	Args:    cobra.ExactArgs(1),
	ValidArgsFunction: func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		if len(args) > 0 {
			return nil, cobra.ShellCompDirectiveNoFileComp
		}
		return completeFavoriteIDs(cmd, args, toComplete)
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseIntID(args[0], "favorite ID")
		if err != nil {
			return err
		}
		return withState(func(deps *app.Deps) error {
			fav, ok := deps.State.State().Favorites.Find(id)
			if !ok {
				return fmt.Errorf("no favorite with ID %d", id)
			}
			deps.State.Dispatch(state.RemoveFavorite{ID: id})
			if !deps.Config.Quiet {
				fmt.Fprintf(cmd.OutOrStdout(), "✓ Removed %s (ID %d)\n", fav.Name, id)
			}
			return nil
		})
	},
}

// ─── fav list / refresh ───────────────────────────────────────────────────────

var favListRefresh bool

var favListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List favorites with their last known conditions",
	Example: `  meteo fav list
  meteo fav list --refresh
  meteo fav list --format csv`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withState(func(deps *app.Deps) error {
			return listFavorites(cmd, deps, favListRefresh)
		})
	},
}

var favRefreshCmd = &cobra.Command{
	Use:   "refresh",
	Short: "Fetch current conditions for every favorite",
	Long: `Fetch the current temperature and conditions for every favorite and save
them. A favorite that fails to refresh keeps its previous reading and is
reported as a warning; the others are still refreshed.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withState(func(deps *app.Deps) error {
			return listFavorites(cmd, deps, true)
		})
	},
}

// listFavorites renders the favorites list, refreshing readings first when
// refresh is set. Refresh failures become warnings, not errors.
func listFavorites(cmd *cobra.Command, deps *app.Deps, refresh bool) error {
	start := time.Now()
	var warnings []string
	if refresh {
		warnings = refreshFavorites(cmd.Context(), deps)
	}
	st := deps.State.State()
	view := &model.FavoritesView{
		TemperatureUnit: st.Settings.TemperatureUnit,
		Cities:          st.Favorites.Cities,
	}
	result := newResult(model.KindFavorites, "fav list", view, len(view.Cities), start)
	result.Warnings = warnings
	return emit(cmd, deps, result)
}

func init() {
	rootCmd.AddCommand(favCmd)
	favCmd.AddCommand(favAddCmd, favToggleCmd, favRemoveCmd, favListCmd, favRefreshCmd)

	favAddCmd.Flags().IntVar(&favIndex, "index", 1, "which search match to save (1-based)")
	favToggleCmd.Flags().IntVar(&favIndex, "index", 1, "which search match to toggle (1-based)")
	favListCmd.Flags().BoolVar(&favListRefresh, "refresh", false, "fetch current conditions before listing")
}
