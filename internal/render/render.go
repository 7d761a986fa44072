// Package render converts Result values into human-readable or machine-parseable
// output. Each format is a separate function; the top-level Render dispatcher
// selects based on the format string.
//
// Temperatures and wind speeds arrive in metric and are converted to the unit
// carried by the payload at render time.
package render

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/olekukonko/tablewriter"

	"github.com/derickschaefer/meteo/internal/model"
	"github.com/derickschaefer/meteo/internal/units"
	"github.com/derickschaefer/meteo/internal/util"
	"github.com/derickschaefer/meteo/internal/wmo"
)

// Format constants matching --format flag values.
const (
	FormatTable = "table"
	FormatJSON  = "json"
	FormatJSONL = "jsonl"
	FormatCSV   = "csv"
	FormatTSV   = "tsv"
	FormatMD    = "md"
)

// Formats lists every supported --format value.
var Formats = []string{FormatTable, FormatJSON, FormatJSONL, FormatCSV, FormatTSV, FormatMD}

// ValidFormat reports whether f is a supported format.
func ValidFormat(f string) bool {
	for _, v := range Formats {
		if v == f {
			return true
		}
	}
	return false
}

// Render writes result to w in the specified format.
func Render(w io.Writer, result *model.Result, format string) error {
	switch format {
	case FormatJSON:
		return renderJSON(w, result)
	case FormatJSONL:
		return renderJSONL(w, result)
	case FormatCSV:
		return renderDelimited(w, result, ',')
	case FormatTSV:
		return renderDelimited(w, result, '\t')
	case FormatMD:
		return renderMarkdown(w, result)
	default:
		return renderTable(w, result)
	}
}

// ─── JSON ─────────────────────────────────────────────────────────────────────

func renderJSON(w io.Writer, result *model.Result) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(result)
}

// ─── JSONL ────────────────────────────────────────────────────────────────────

// renderJSONL writes one record per line: one per location, favorite or
// hourly point. Other payloads are written as a single line.
func renderJSONL(w io.Writer, result *model.Result) error {
	enc := json.NewEncoder(w)
	switch data := result.Data.(type) {
	case *model.SearchResult:
		for _, l := range data.Locations {
			if err := enc.Encode(l); err != nil {
				return err
			}
		}
		return nil
	case *model.FavoritesView:
		for _, c := range data.Cities {
			if err := enc.Encode(c); err != nil {
				return err
			}
		}
		return nil
	case *model.ForecastView:
		for _, h := range data.Forecast.Hourly {
			if err := enc.Encode(h); err != nil {
				return err
			}
		}
		return nil
	default:
		return enc.Encode(result.Data)
	}
}

// ─── Table ────────────────────────────────────────────────────────────────────

func renderTable(w io.Writer, result *model.Result) error {
	switch result.Kind {
	case model.KindSearchResult:
		sr, ok := result.Data.(*model.SearchResult)
		if !ok {
			return fmt.Errorf("unexpected data type for search_result")
		}
		return renderSearchTable(w, sr)
	case model.KindForecast:
		fv, ok := result.Data.(*model.ForecastView)
		if !ok {
			return fmt.Errorf("unexpected data type for forecast")
		}
		return renderForecastTables(w, fv)
	case model.KindFavorites:
		fv, ok := result.Data.(*model.FavoritesView)
		if !ok {
			return fmt.Errorf("unexpected data type for favorites")
		}
		return renderFavoritesTable(w, fv)
	case model.KindSettings:
		sv, ok := result.Data.(*model.SettingsView)
		if !ok {
			return fmt.Errorf("unexpected data type for settings")
		}
		return renderSettingsTable(w, sv)
	default:
		// Fallback: JSON
		return renderJSON(w, result)
	}
}

func newTable(w io.Writer, headers []string) *tablewriter.Table {
	tw := tablewriter.NewWriter(w)
	tw.SetHeader(headers)
	tw.SetBorder(true)
	tw.SetRowLine(false)
	tw.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	tw.SetAlignment(tablewriter.ALIGN_LEFT)
	tw.SetAutoWrapText(false)
	return tw
}

func renderSearchTable(w io.Writer, sr *model.SearchResult) error {
	fmt.Fprintf(w, "Search results for: %q\n\n", sr.Query)
	if len(sr.Locations) == 0 {
		fmt.Fprintln(w, "No locations found.")
		return nil
	}
	tw := newTable(w, []string{"#", "ID", "NAME", "REGION", "COUNTRY", "LAT", "LON"})
	for i, l := range sr.Locations {
		tw.Append([]string{
			strconv.Itoa(i + 1),
			strconv.FormatInt(l.ID, 10),
			l.Name,
			l.Admin1,
			l.CountryName(),
			formatCoord(l.Latitude),
			formatCoord(l.Longitude),
		})
	}
	tw.Render()
	return nil
}

func renderForecastTables(w io.Writer, fv *model.ForecastView) error {
	tu, wu := fv.TemperatureUnit, fv.WindSpeedUnit
	cur := fv.Forecast.Current

	place := fv.Place
	if place == "" {
		place = "Forecast"
	}
	fmt.Fprintf(w, "%s (%s, %s)\n\n", place, formatCoord(fv.Latitude), formatCoord(fv.Longitude))

	tw := newTable(w, []string{"NOW", "VALUE"})
	for _, r := range [][]string{
		{"Conditions", wmo.DescribePtr(cur.WeatherCode)},
		{"Temperature", units.FormatTemperatureWithUnit(cur.Temperature, tu)},
		{"Feels like", units.FormatTemperatureWithUnit(cur.ApparentTemperature, tu)},
		{"Humidity", units.FormatPercent(cur.Humidity)},
		{"Wind", units.FormatWindSpeed(cur.WindSpeed, wu)},
		{"Precipitation", units.FormatMillimetres(cur.Precipitation)},
	} {
		tw.Append(r)
	}
	tw.Render()

	if len(fv.Forecast.Hourly) > 0 {
		fmt.Fprintln(w, "\nNext 24 hours")
		tw = newTable(w, []string{"TIME", "TEMP", "CONDITIONS", "PRECIP"})
		for _, h := range fv.Forecast.Hourly {
			tw.Append([]string{
				util.FormatTime(h.Time),
				units.FormatTemperatureWithUnit(h.Temperature, tu),
				wmo.DescribePtr(h.WeatherCode),
				units.FormatPercent(h.PrecipitationProbability),
			})
		}
		tw.Render()
	}

	if len(fv.Forecast.Daily) > 0 {
		fmt.Fprintf(w, "\n%d-day forecast\n", len(fv.Forecast.Daily))
		tw = newTable(w, []string{"DAY", "DATE", "HIGH", "LOW", "CONDITIONS", "RAIN", "CHANCE", "SUNRISE", "SUNSET"})
		for _, d := range fv.Forecast.Daily {
			tw.Append([]string{
				dayLabel(d.Date),
				util.FormatShortDate(d.Date),
				units.FormatTemperatureWithUnit(d.MaxTemperature, tu),
				units.FormatTemperatureWithUnit(d.MinTemperature, tu),
				wmo.DescribePtr(d.WeatherCode),
				units.FormatMillimetres(d.PrecipitationSum),
				units.FormatPercent(d.PrecipitationProbability),
				util.FormatSunTime(d.Sunrise),
				util.FormatSunTime(d.Sunset),
			})
		}
		tw.Render()
	}
	return nil
}

// dayLabel is "Today" for the current date and the short weekday otherwise.
func dayLabel(date string) string {
	if util.IsToday(date) {
		return "Today"
	}
	return util.DayName(date, true)
}

func renderFavoritesTable(w io.Writer, fv *model.FavoritesView) error {
	if len(fv.Cities) == 0 {
		fmt.Fprintln(w, "No favorites saved.")
		return nil
	}
	tw := newTable(w, []string{"ID", "NAME", "REGION", "COUNTRY", "TEMP", "CONDITIONS"})
	for _, c := range fv.Cities {
		temp, cond := units.Placeholder, units.Placeholder
		if c.CurrentWeather != nil {
			temp = units.FormatTemperatureWithUnit(c.CurrentWeather.Temperature, fv.TemperatureUnit)
			if c.CurrentWeather.WeatherCode != nil {
				cond = wmo.Describe(*c.CurrentWeather.WeatherCode)
			}
		}
		tw.Append([]string{
			strconv.FormatInt(c.ID, 10),
			c.Name,
			c.Admin1,
			c.Country,
			temp,
			cond,
		})
	}
	tw.Render()
	return nil
}

func settingsRows(sv *model.SettingsView) [][]string {
	theme := "light"
	if sv.DarkTheme {
		theme = "dark"
	}
	return [][]string{
		{"temperature_unit", string(sv.TemperatureUnit)},
		{"wind_speed_unit", string(sv.WindSpeedUnit)},
		{"dark_theme", strconv.FormatBool(sv.DarkTheme) + " (" + theme + ")"},
	}
}

func renderSettingsTable(w io.Writer, sv *model.SettingsView) error {
	tw := newTable(w, []string{"SETTING", "VALUE"})
	for _, r := range settingsRows(sv) {
		tw.Append(r)
	}
	tw.Render()
	return nil
}

// ─── CSV / TSV ────────────────────────────────────────────────────────────────

func renderDelimited(w io.Writer, result *model.Result, sep rune) error {
	cw := csv.NewWriter(w)
	cw.Comma = sep

	switch data := result.Data.(type) {
	case *model.SearchResult:
		_ = cw.Write([]string{"id", "name", "admin1", "country", "country_code", "latitude", "longitude"})
		for _, l := range data.Locations {
			_ = cw.Write([]string{
				strconv.FormatInt(l.ID, 10), l.Name, l.Admin1, l.Country, l.CountryCode,
				formatCoord(l.Latitude), formatCoord(l.Longitude),
			})
		}
	case *model.FavoritesView:
		_ = cw.Write([]string{"id", "name", "admin1", "country", "latitude", "longitude", "temperature", "weather_code"})
		for _, c := range data.Cities {
			var temp *float64
			var code *int
			if c.CurrentWeather != nil {
				temp, code = c.CurrentWeather.Temperature, c.CurrentWeather.WeatherCode
			}
			_ = cw.Write([]string{
				strconv.FormatInt(c.ID, 10), c.Name, c.Admin1, c.Country,
				formatCoord(c.Latitude), formatCoord(c.Longitude),
				csvTemperature(temp, data.TemperatureUnit), csvInt(code),
			})
		}
	case *model.ForecastView:
		tu := data.TemperatureUnit
		_ = cw.Write([]string{"date", "max_temperature", "min_temperature", "weather_code", "conditions",
			"precipitation_sum", "precipitation_probability", "sunrise", "sunset"})
		for _, d := range data.Forecast.Daily {
			_ = cw.Write([]string{
				d.Date,
				csvTemperature(d.MaxTemperature, tu),
				csvTemperature(d.MinTemperature, tu),
				csvInt(d.WeatherCode),
				wmo.DescribePtr(d.WeatherCode),
				csvFloat(d.PrecipitationSum),
				csvFloat(d.PrecipitationProbability),
				d.Sunrise,
				d.Sunset,
			})
		}
	case *model.SettingsView:
		_ = cw.Write([]string{"setting", "value"})
		_ = cw.Write([]string{"temperature_unit", string(data.TemperatureUnit)})
		_ = cw.Write([]string{"wind_speed_unit", string(data.WindSpeedUnit)})
		_ = cw.Write([]string{"dark_theme", strconv.FormatBool(data.DarkTheme)})
	default:
		// Fallback: serialize as JSON on a single line
		b, _ := json.Marshal(result.Data)
		_ = cw.Write([]string{string(b)})
	}

	cw.Flush()
	return cw.Error()
}

// ─── Markdown ─────────────────────────────────────────────────────────────────

func renderMarkdown(w io.Writer, result *model.Result) error {
	switch data := result.Data.(type) {
	case *model.SearchResult:
		fmt.Fprintf(w, "| # | ID | NAME | REGION | COUNTRY |\n|---|----|------|--------|---------|\n")
		for i, l := range data.Locations {
			fmt.Fprintf(w, "| %d | %d | %s | %s | %s |\n",
				i+1, l.ID, mdEscape(l.Name), mdEscape(l.Admin1), mdEscape(l.CountryName()))
		}
		return nil
	case *model.FavoritesView:
		fmt.Fprintf(w, "| ID | NAME | COUNTRY | TEMP |\n|----|------|---------|------|\n")
		for _, c := range data.Cities {
			temp := units.Placeholder
			if c.CurrentWeather != nil {
				temp = units.FormatTemperatureWithUnit(c.CurrentWeather.Temperature, data.TemperatureUnit)
			}
			fmt.Fprintf(w, "| %d | %s | %s | %s |\n", c.ID, mdEscape(c.Name), mdEscape(c.Country), temp)
		}
		return nil
	case *model.ForecastView:
		tu := data.TemperatureUnit
		fmt.Fprintf(w, "| DAY | HIGH | LOW | CONDITIONS |\n|-----|------|-----|------------|\n")
		for _, d := range data.Forecast.Daily {
			fmt.Fprintf(w, "| %s %s | %s | %s | %s |\n",
				dayLabel(d.Date), util.FormatShortDate(d.Date),
				units.FormatTemperatureWithUnit(d.MaxTemperature, tu),
				units.FormatTemperatureWithUnit(d.MinTemperature, tu),
				wmo.DescribePtr(d.WeatherCode))
		}
		return nil
	case *model.SettingsView:
		fmt.Fprintf(w, "| SETTING | VALUE |\n|---------|-------|\n")
		for _, r := range settingsRows(data) {
			fmt.Fprintf(w, "| %s | %s |\n", r[0], r[1])
		}
		return nil
	default:
		return renderJSON(w, result)
	}
}

// ─── Warnings / Stats Footer ─────────────────────────────────────────────────

// PrintFooter writes warnings, and stats when verbose mode is on, to w.
func PrintFooter(w io.Writer, result *model.Result, verbose bool) {
	for _, warn := range result.Warnings {
		fmt.Fprintf(w, "⚠  %s\n", warn)
	}
	if verbose {
		fmt.Fprintf(w, "\n[%s • %d items • %dms]\n",
			result.GeneratedAt.Format(time.RFC3339),
			result.Stats.Items,
			result.Stats.DurationMs,
		)
	}
}

// ─── Helpers ─────────────────────────────────────────────────────────────────

func formatCoord(v float64) string {
	return strconv.FormatFloat(v, 'f', 4, 64)
}

// csvTemperature is the rounded temperature in unit, or empty when missing.
func csvTemperature(c *float64, unit model.TemperatureUnit) string {
	s := units.FormatTemperature(c, unit)
	if s == units.Placeholder {
		return ""
	}
	return s
}

func csvFloat(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}

func csvInt(v *int) string {
	if v == nil {
		return ""
	}
	return strconv.Itoa(*v)
}

func mdEscape(s string) string {
	s = strings.ReplaceAll(s, "|", "\\|")
	s = strings.ReplaceAll(s, "\n", " ")
	return s
}
