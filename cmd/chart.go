package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/derickschaefer/meteo/internal/app"
	"github.com/derickschaefer/meteo/internal/chart"
)

var (
	chartTarget = placeTarget{Index: 1}
	chartMetric string
	chartWidth  int
)

var chartCmd = &cobra.Command{
	Use:   "chart [<lat> <lon>]",
	Short: "Chart the next 24 hours as ASCII bars",
	Long: `Render the hourly forecast for a place as a horizontal bar chart.

The place is chosen the same way as for 'meteo weather'. Temperatures use
the unit from settings. Sub-zero temperatures extend left of a baseline;
hours without a reading are left blank.`,
	Example: `  meteo chart -- 51.5085 -0.1257
  meteo chart --favorite 2643743 --metric precip
  meteo chart --city Oslo --width 60`,
	Args: cobra.MaximumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		metric, err := chart.ParseMetric(chartMetric)
		if err != nil {
			return err
		}
		return withState(func(deps *app.Deps) error {
			view, err := loadForecast(cmd.Context(), deps, chartTarget, args)
			if err != nil {
				return err
			}
			if deps.Config.Quiet {
				return nil
			}
			pts, suffix := chart.Hourly(view.Forecast.Hourly, metric, view.TemperatureUnit)

			place := view.Place
			if place == "" {
				place = formatLatLon(view.Latitude, view.Longitude)
			}
			title := fmt.Sprintf("%s  %s", place, metricTitle(metric))

			w, closeFn, err := outputWriter(cmd.OutOrStdout())
			if err != nil {
				return err
			}
			if err := chart.Bars(w, title, pts, chart.Options{Width: chartWidth, Suffix: suffix}); err != nil {
				_ = closeFn()
				return err
			}
			return closeFn()
		})
	},
}

func metricTitle(m chart.Metric) string {
	if m == chart.MetricPrecipitation {
		return "chance of precipitation"
	}
	return "temperature"
}

func formatLatLon(lat, lon float64) string {
	return fmt.Sprintf("%.4f, %.4f", lat, lon)
}

func init() {
	rootCmd.AddCommand(chartCmd)
	bindPlaceFlags(chartCmd, &chartTarget)
	chartCmd.Flags().StringVar(&chartMetric, "metric", "temp", "reading to chart: temp|precip")
	chartCmd.Flags().IntVar(&chartWidth, "width", 0,
		"total chart width in characters (default: auto-detect from $COLUMNS, fallback 80)")
}
