package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/derickschaefer/meteo/internal/render"
	"github.com/derickschaefer/meteo/internal/store"
)

var storeCmd = &cobra.Command{
	Use:   "store",
	Short: "Inspect or reset the local database",
	Long: `Commands for the local bbolt database that keeps settings and favorites
between runs. Weather data is never stored.`,
}

// openStore opens the configured database without rehydrating state.
func openStore() (*store.Store, error) {
	deps, err := buildDeps()
	if err != nil {
		return nil, err
	}
	return store.Open(deps.Config.DBPath)
}

// ─── store stats ──────────────────────────────────────────────────────────────

var storeStatsCmd = &cobra.Command{
	Use:     "stats",
	Short:   "Show schema version, timestamps and bucket sizes",
	Example: `  meteo store stats`,
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openStore()
		if err != nil {
			return err
		}
		defer s.Close()

		info, err := s.Stats()
		if err != nil {
			return fmt.Errorf("reading store stats: %w", err)
		}

		if globalFlags.Format == render.FormatJSON {
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(info)
		}

		out := cmd.OutOrStdout()
		updated := info.UpdatedAt
		if updated == "" {
			updated = "(never)"
		}
		printKVTable(out, [][]string{
			{"database", info.Path},
			{"schema_version", info.SchemaVersion},
			{"created_at", info.CreatedAt},
			{"updated_at", updated},
		})
		fmt.Fprintln(out)
		printSimpleTable(out, []string{"BUCKET", "ROWS", "SIZE"}, func(add func(...string)) {
			for _, b := range info.Buckets {
				add(b.Name, fmt.Sprintf("%d", b.Count), humanBytes(b.Bytes))
			}
		})
		return nil
	},
}

// ─── store reset ──────────────────────────────────────────────────────────────

var storeResetYes bool

var storeResetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Forget saved settings and favorites",
	Long: `Delete the saved settings and favorites. The next run starts from the
defaults: celsius, km/h, light theme and no favorites.`,
	Example: `  meteo store reset --yes`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if !storeResetYes {
			return fmt.Errorf("this deletes all settings and favorites; re-run with --yes to confirm")
		}
		s, err := openStore()
		if err != nil {
			return err
		}
		defer s.Close()

		if err := s.Reset(); err != nil {
			return fmt.Errorf("resetting store: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "✓ Reset %s\n", s.Path())
		return nil
	},
}

// ─── store path ───────────────────────────────────────────────────────────────

var storePathCmd = &cobra.Command{
	Use:   "path",
	Short: "Print the database path",
	RunE: func(cmd *cobra.Command, args []string) error {
		deps, err := buildDeps()
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), deps.Config.DBPath)
		if _, err := os.Stat(deps.Config.DBPath); os.IsNotExist(err) {
			fmt.Fprintln(cmd.ErrOrStderr(), "  (not created yet)")
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(storeCmd)
	storeCmd.AddCommand(storeStatsCmd, storeResetCmd, storePathCmd)
	storeResetCmd.Flags().BoolVar(&storeResetYes, "yes", false, "confirm the reset")
}

// humanBytes formats a byte count as B, KB or MB.
func humanBytes(b int64) string {
	switch {
	case b >= 1<<20:
		return fmt.Sprintf("%.1f MB", float64(b)/(1<<20))
	case b >= 1<<10:
		return fmt.Sprintf("%.1f KB", float64(b)/(1<<10))
	default:
		return fmt.Sprintf("%d B", b)
	}
}
