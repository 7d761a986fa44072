package cmd

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/derickschaefer/meteo/internal/app"
	"github.com/derickschaefer/meteo/internal/model"
	"github.com/derickschaefer/meteo/internal/state"
)

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "View and change display preferences",
	Long: `View and change the display preferences saved in the local database:

  temperature_unit  celsius | fahrenheit
  wind_speed_unit   kmh | mph
  dark_theme        true | false`,
}

var settingsGetCmd = &cobra.Command{
	Use:   "get",
	Short: "Show the current settings",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withState(func(deps *app.Deps) error {
			return emitSettings(cmd, deps, "settings get")
		})
	},
}

var settingsSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Change one setting",
	Example: `  meteo settings set temperature_unit fahrenheit
  meteo settings set wind_speed_unit mph
  meteo settings set dark_theme true`,
	Args: cobra.ExactArgs(2),
	ValidArgsFunction: func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		switch len(args) {
		case 0:
			return []string{"temperature_unit", "wind_speed_unit", "dark_theme"}, cobra.ShellCompDirectiveNoFileComp
		case 1:
			switch args[0] {
			case "temperature_unit":
				return []string{string(model.Celsius), string(model.Fahrenheit)}, cobra.ShellCompDirectiveNoFileComp
			case "wind_speed_unit":
				return []string{string(model.KMH), string(model.MPH)}, cobra.ShellCompDirectiveNoFileComp
			case "dark_theme":
				return []string{"true", "false"}, cobra.ShellCompDirectiveNoFileComp
			}
		}
		return nil, cobra.ShellCompDirectiveNoFileComp
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		action, err := settingsAction(args[0], args[1])
		if err != nil {
			return err
		}
		return withState(func(deps *app.Deps) error {
			deps.State.Dispatch(action)
			return emitSettings(cmd, deps, "settings set")
		})
	},
}

var settingsToggleThemeCmd = &cobra.Command{
	Use:   "toggle-theme",
	Short: "Switch between the light and dark theme",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withState(func(deps *app.Deps) error {
			deps.State.Dispatch(state.ToggleDarkTheme{})
			return emitSettings(cmd, deps, "settings toggle-theme")
		})
	},
}

// settingsAction parses a key/value pair into the matching settings
// transition. Out-of-domain values are rejected here so the user sees an
// error rather than a silently ignored change.
func settingsAction(key, val string) (state.Action, error) {
	switch strings.ToLower(key) {
	case "temperature_unit", "temperature", "temp":
		u, err := model.ParseTemperatureUnit(val)
		if err != nil {
			return nil, err
		}
		return state.SetTemperatureUnit{Unit: u}, nil
	case "wind_speed_unit", "wind":
		u, err := model.ParseWindSpeedUnit(val)
		if err != nil {
			return nil, err
		}
		return state.SetWindSpeedUnit{Unit: u}, nil
	case "dark_theme", "theme":
		switch strings.ToLower(val) {
		case "dark":
			return state.SetDarkTheme{Dark: true}, nil
		case "light":
			return state.SetDarkTheme{Dark: false}, nil
		}
		dark, err := strconv.ParseBool(val)
		if err != nil {
			return nil, fmt.Errorf("dark_theme must be true or false, got %q", val)
		}
		return state.SetDarkTheme{Dark: dark}, nil
	default:
		return nil, fmt.Errorf("unknown setting %q\n\nValid keys: temperature_unit, wind_speed_unit, dark_theme", key)
	}
}

func emitSettings(cmd *cobra.Command, deps *app.Deps, command string) error {
	s := deps.State.State().Settings
	view := &model.SettingsView{
		TemperatureUnit: s.TemperatureUnit,
		WindSpeedUnit:   s.WindSpeedUnit,
		DarkTheme:       s.DarkTheme,
	}
	return emit(cmd, deps, newResult(model.KindSettings, command, view, 3, time.Now()))
}

func init() {
	rootCmd.AddCommand(settingsCmd)
	settingsCmd.AddCommand(settingsGetCmd, settingsSetCmd, settingsToggleThemeCmd)
}
