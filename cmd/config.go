package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/derickschaefer/meteo/internal/config"
	"github.com/derickschaefer/meteo/internal/render"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage meteo configuration",
	Long: `Read and write meteo configuration stored in config.json.

Values are resolved in this order, later sources winning:
  config.json → .env → METEO_* environment variables → command-line flags`,
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Create a template config.json in the current directory",
	RunE: func(cmd *cobra.Command, args []string) error {
		path := config.DefaultConfigFile
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("config.json already exists at %s (delete it first to re-initialise)", path)
		}
		if err := config.WriteFile(path, config.Template()); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "✓ Created %s\n", path)
		fmt.Fprintln(cmd.OutOrStdout(), "  No API key is needed; edit it only to change defaults.")
		return nil
	},
}

var configGetCmd = &cobra.Command{
	Use:   "get",
	Short: "Print the current resolved configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		deps, err := buildDeps()
		if err != nil {
			return err
		}
		cfg := deps.Config

		src := "(not found)"
		if cfg.ConfigPath != "" {
			src = cfg.ConfigPath
		}
		envSrc := "(not found)"
		if cfg.EnvPath != "" {
			envSrc = cfg.EnvPath
		}

		if resolveFormat(cfg.Format) == render.FormatJSON {
			type configOut struct {
				Format          string  `json:"default_format"`
				Timeout         string  `json:"timeout"`
				Concurrency     int     `json:"concurrency"`
				Rate            float64 `json:"rate"`
				BreakerFailures int     `json:"breaker_failures"`
				GeocodingURL    string  `json:"geocoding_url"`
				ForecastURL     string  `json:"forecast_url"`
				DBPath          string  `json:"db_path"`
				ConfigFile      string  `json:"config_file"`
				EnvFile         string  `json:"env_file"`
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(configOut{
				Format:          cfg.Format,
				Timeout:         cfg.Timeout.String(),
				Concurrency:     cfg.Concurrency,
				Rate:            cfg.Rate,
				BreakerFailures: cfg.BreakerFailures,
				GeocodingURL:    cfg.GeocodingURL,
				ForecastURL:     cfg.ForecastURL,
				DBPath:          cfg.DBPath,
				ConfigFile:      src,
				EnvFile:         envSrc,
			})
		}

		printKVTable(cmd.OutOrStdout(), [][]string{
			{"default_format", cfg.Format},
			{"timeout", cfg.Timeout.String()},
			{"concurrency", fmt.Sprintf("%d", cfg.Concurrency)},
			{"rate", fmt.Sprintf("%.1f req/s", cfg.Rate)},
			{"breaker_failures", fmt.Sprintf("%d", cfg.BreakerFailures)},
			{"geocoding_url", cfg.GeocodingURL},
			{"forecast_url", cfg.ForecastURL},
			{"db_path", cfg.DBPath},
			{"config_file", src},
			{"env_file", envSrc},
		})
		return nil
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a configuration value in config.json",
	Args:  cobra.ExactArgs(2),
	ValidArgsFunction: func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		if len(args) == 0 {
			return config.Keys, cobra.ShellCompDirectiveNoFileComp
		}
		return nil, cobra.ShellCompDirectiveNoFileComp
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		key := strings.ToLower(args[0])
		path := config.DefaultConfigFile

		// Load existing file or start from template
		f := config.Template()
		existing, err := config.ReadFile(path)
		switch {
		case err == nil:
			f = *existing
		case !errors.Is(err, os.ErrNotExist):
			return err
		}

		if err := f.Set(key, args[1]); err != nil {
			return fmt.Errorf("%w\n\nValid keys: %s", err, strings.Join(config.Keys, ", "))
		}
		if err := config.WriteFile(path, f); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "✓ Set %s in %s\n", key, path)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configGetCmd)
	configCmd.AddCommand(configSetCmd)
}
