// Package units converts and formats temperatures and wind speeds for display.
// Readings arrive in Celsius and km/h; a nil reading means the provider had no
// data and formats as Placeholder instead of failing.
package units

import (
	"math"
	"strconv"
	"strings"

	"github.com/derickschaefer/meteo/internal/model"
)

// Placeholder is shown in place of a missing reading.
const Placeholder = "--"

// mphPerKmh is the km/h → mph factor.
const mphPerKmh = 0.621371

// CelsiusToFahrenheit converts c degrees Celsius to Fahrenheit.
func CelsiusToFahrenheit(c float64) float64 {
	return c*9/5 + 32
}

// KmhToMph converts a speed in km/h to mph.
func KmhToMph(kmh float64) float64 {
	return kmh * mphPerKmh
}

// Round rounds half-way values toward positive infinity, so -2.5 → -2 and
// 2.5 → 3.
func Round(v float64) int {
	f := math.Floor(v)
	if v-f >= 0.5 {
		f++
	}
	return int(f)
}

// RoundTenths rounds v half-up to one decimal place. The shortest decimal
// form of v is what gets rounded, so 0.35 gives 0.4 even though its binary
// value lies just below 0.35.
func RoundTenths(v float64) float64 {
	s := strconv.FormatFloat(v, 'f', -1, 64)
	i := strings.IndexByte(s, '.')
	if i < 0 {
		return v
	}
	rest := s[i+2:]
	if rest == "" {
		rest = "0"
	}
	shifted, err := strconv.ParseFloat(s[:i]+s[i+1:i+2]+"."+rest, 64)
	if err != nil {
		return v
	}
	return float64(Round(shifted)) / 10
}

// Temperature returns c rounded in the requested unit.
func Temperature(c float64, unit model.TemperatureUnit) int {
	if unit == model.Fahrenheit {
		return Round(CelsiusToFahrenheit(c))
	}
	return Round(c)
}

// FormatTemperature renders a temperature as a bare integer in unit.
func FormatTemperature(c *float64, unit model.TemperatureUnit) string {
	if c == nil || math.IsNaN(*c) {
		return Placeholder
	}
	return strconv.Itoa(Temperature(*c, unit))
}

// TemperatureSymbol returns "F" for Fahrenheit and "C" otherwise.
func TemperatureSymbol(unit model.TemperatureUnit) string {
	if unit == model.Fahrenheit {
		return "F"
	}
	return "C"
}

// FormatTemperatureWithUnit renders e.g. "21°C".
func FormatTemperatureWithUnit(c *float64, unit model.TemperatureUnit) string {
	s := FormatTemperature(c, unit)
	if s == Placeholder {
		return s
	}
	return s + "°" + TemperatureSymbol(unit)
}

// WindSpeed returns kmh rounded in the requested unit.
func WindSpeed(kmh float64, unit model.WindSpeedUnit) int {
	if unit == model.MPH {
		return Round(KmhToMph(kmh))
	}
	return Round(kmh)
}

// WindSpeedLabel returns the display label for unit.
func WindSpeedLabel(unit model.WindSpeedUnit) string {
	if unit == model.MPH {
		return "mph"
	}
	return "km/h"
}

// FormatWindSpeed renders e.g. "12 km/h" or "7 mph".
func FormatWindSpeed(kmh *float64, unit model.WindSpeedUnit) string {
	if kmh == nil || math.IsNaN(*kmh) {
		return Placeholder
	}
	return strconv.Itoa(WindSpeed(*kmh, unit)) + " " + WindSpeedLabel(unit)
}

// FormatPercent renders a percentage reading, e.g. "40%".
func FormatPercent(p *float64) string {
	if p == nil || math.IsNaN(*p) {
		return Placeholder
	}
	return strconv.Itoa(Round(*p)) + "%"
}

// FormatMillimetres renders a precipitation amount with one decimal.
func FormatMillimetres(mm *float64) string {
	if mm == nil || math.IsNaN(*mm) {
		return Placeholder
	}
	return strconv.FormatFloat(RoundTenths(*mm), 'f', 1, 64) + " mm"
}
