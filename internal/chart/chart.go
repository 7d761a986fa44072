// Package chart renders hourly forecast readings as ASCII bar charts.
//
// Missing readings are drawn as gaps, never as zeros. Series that cross
// zero (sub-zero temperatures) are drawn either side of a baseline.
package chart

import (
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/derickschaefer/meteo/internal/model"
	"github.com/derickschaefer/meteo/internal/units"
	"github.com/derickschaefer/meteo/internal/util"
)

// Metric selects which hourly reading is charted.
type Metric string

const (
	MetricTemperature   Metric = "temp"
	MetricPrecipitation Metric = "precip"
)

// ParseMetric accepts "temp"/"temperature" and "precip"/"precipitation".
func ParseMetric(s string) (Metric, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "temp", "temperature":
		return MetricTemperature, nil
	case "precip", "precipitation", "rain":
		return MetricPrecipitation, nil
	}
	return "", fmt.Errorf("invalid metric %q: choose temp|precip", s)
}

// Point is one labelled bar. A nil Value is a gap.
type Point struct {
	Label string
	Value *float64
}

// Options controls rendering.
type Options struct {
	// Width is the total character width. If 0, $COLUMNS is used, falling
	// back to 80.
	Width int
	// Suffix is appended to each value label, e.g. "°C" or "%".
	Suffix string
}

// Hourly turns a forecast's hourly series into chart points for metric,
// converting temperatures into unit.
func Hourly(hours []model.HourlyPoint, metric Metric, unit model.TemperatureUnit) ([]Point, string) {
	pts := make([]Point, len(hours))
	for i, h := range hours {
		pts[i].Label = util.FormatTime(h.Time)
		switch metric {
		case MetricPrecipitation:
			pts[i].Value = h.PrecipitationProbability
		default:
			if h.Temperature != nil {
				v := float64(units.Temperature(*h.Temperature, unit))
				pts[i].Value = &v
			}
		}
	}
	if metric == MetricPrecipitation {
		return pts, "%"
	}
	return pts, "°" + units.TemperatureSymbol(unit)
}

// Bars renders one horizontal bar per point.
//
//	London  temperature
//	07:00   8°C  ███████
//	08:00  10°C  ██████████
//	09:00    --
func Bars(w io.Writer, title string, pts []Point, opts Options) error {
	total := opts.Width
	if total <= 0 {
		total = termWidth()
	}

	minVal, maxVal := math.Inf(1), math.Inf(-1)
	for _, p := range pts {
		if p.Value == nil || math.IsNaN(*p.Value) {
			continue
		}
		minVal = math.Min(minVal, *p.Value)
		maxVal = math.Max(maxVal, *p.Value)
	}
	if math.IsInf(minVal, 1) {
		return fmt.Errorf("chart: no readings to render")
	}

	labelWidth, valWidth := 0, len(units.Placeholder)
	for _, p := range pts {
		labelWidth = max(labelWidth, utf8.RuneCountInString(p.Label))
		valWidth = max(valWidth, utf8.RuneCountInString(valueLabel(p.Value, opts.Suffix)))
	}

	area := total - labelWidth - valWidth - 4
	if area < 4 {
		area = 4
	}

	// The baseline is zero when the series crosses it, otherwise the
	// smaller of zero and the minimum so bar length tracks magnitude.
	lo, hi := math.Min(minVal, 0), math.Max(maxVal, 0)
	span := hi - lo
	if span == 0 {
		span = 1
	}
	zero := int(math.Round(-lo / span * float64(area)))

	fmt.Fprintln(w, title)
	for _, p := range pts {
		fmt.Fprintf(w, "%-*s  %*s  %s\n",
			labelWidth, p.Label,
			valWidth, valueLabel(p.Value, opts.Suffix),
			bar(p.Value, lo, span, area, zero),
		)
	}
	return nil
}

// bar draws v relative to the zero column. Non-zero values always get at
// least one block.
func bar(v *float64, lo, span float64, area, zero int) string {
	if v == nil || math.IsNaN(*v) {
		return ""
	}
	pos := int(math.Round((*v - lo) / span * float64(area)))
	switch {
	case *v > 0:
		n := max(pos-zero, 1)
		return strings.Repeat(" ", zero) + strings.Repeat("█", n)
	case *v < 0:
		n := max(zero-pos, 1)
		return strings.Repeat(" ", max(zero-n, 0)) + strings.Repeat("▒", n) + "│"
	default:
		return strings.Repeat(" ", zero) + "│"
	}
}

func valueLabel(v *float64, suffix string) string {
	if v == nil || math.IsNaN(*v) {
		return units.Placeholder
	}
	return strconv.Itoa(units.Round(*v)) + suffix
}

// termWidth returns the terminal width from $COLUMNS, defaulting to 80.
func termWidth() int {
	if cols := os.Getenv("COLUMNS"); cols != "" {
		if n, err := strconv.Atoi(cols); err == nil && n > 20 {
			return n
		}
	}
	return 80
}
