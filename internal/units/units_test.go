package units_test

import (
	"math"
	"testing"

	"github.com/derickschaefer/meteo/internal/model"
	"github.com/derickschaefer/meteo/internal/units"
)

func TestCelsiusToFahrenheit(t *testing.T) {
	cases := map[float64]float64{0: 32, 100: 212, -40: -40, 37: 98.6}
	for c, want := range cases {
		if got := units.CelsiusToFahrenheit(c); math.Abs(got-want) > 1e-9 {
			t.Errorf("CelsiusToFahrenheit(%v): expected %v, got %v", c, want, got)
		}
	}
}

func TestRoundHalfUp(t *testing.T) {
	cases := []struct {
		in   float64
		want int
	}{
		{2.5, 3}, {2.4, 2}, {-2.5, -2}, {-2.6, -3}, {0, 0}, {-0.4, 0},
		// Largest double below 0.5: adding 0.5 would round up to 1.
		{0.49999999999999994, 0}, {-0.49999999999999994, 0},
	}
	for _, tc := range cases {
		if got := units.Round(tc.in); got != tc.want {
			t.Errorf("Round(%v): expected %d, got %d", tc.in, tc.want, got)
		}
	}
}

func TestFormatTemperatureBelowHalf(t *testing.T) {
	if got := units.FormatTemperature(model.Float(0.49999999999999994), model.Celsius); got != "0" {
		t.Errorf("expected 0, got %q", got)
	}
}

func TestRoundTenthsUsesDecimalForm(t *testing.T) {
	for in, want := range map[float64]float64{0.35: 0.4, 1.25: 1.3, 1.24: 1.2, -1.25: -1.2, 3: 3, 0.05: 0.1} {
		if got := units.RoundTenths(in); got != want {
			t.Errorf("RoundTenths(%v): expected %v, got %v", in, want, got)
		}
	}
}

func TestTemperatureMatchesRoundedConversion(t *testing.T) {
	for _, c := range []float64{-40, -12.5, -0.4, 0, 7.49, 21.5, 36.6, 48.2} {
		if got, want := units.Temperature(c, model.Celsius), units.Round(c); got != want {
			t.Errorf("celsius %v: expected %d, got %d", c, want, got)
		}
		if got, want := units.Temperature(c, model.Fahrenheit), units.Round(c*9/5+32); got != want {
			t.Errorf("fahrenheit %v: expected %d, got %d", c, want, got)
		}
	}
}

func TestFormatTemperature(t *testing.T) {
	if got := units.FormatTemperature(model.Float(21.6), model.Celsius); got != "22" {
		t.Errorf("celsius: expected 22, got %q", got)
	}
	if got := units.FormatTemperature(model.Float(20), model.Fahrenheit); got != "68" {
		t.Errorf("fahrenheit: expected 68, got %q", got)
	}
	if got := units.FormatTemperatureWithUnit(model.Float(20), model.Fahrenheit); got != "68°F" {
		t.Errorf("with unit: expected 68°F, got %q", got)
	}
}

func TestFormatTemperatureMissing(t *testing.T) {
	if got := units.FormatTemperature(nil, model.Celsius); got != units.Placeholder {
		t.Errorf("nil reading: expected placeholder, got %q", got)
	}
	if got := units.FormatTemperature(model.Float(math.NaN()), model.Fahrenheit); got != units.Placeholder {
		t.Errorf("NaN reading: expected placeholder, got %q", got)
	}
	if got := units.FormatTemperatureWithUnit(nil, model.Celsius); got != units.Placeholder {
		t.Errorf("nil with unit: expected placeholder, got %q", got)
	}
}

func TestFormatWindSpeed(t *testing.T) {
	cases := []struct {
		kmh  float64
		unit model.WindSpeedUnit
		want string
	}{
		{10, model.KMH, "10 km/h"},
		{10, model.MPH, "6 mph"},
		{12.5, model.KMH, "13 km/h"},
		{100, model.MPH, "62 mph"},
		{0, model.MPH, "0 mph"},
	}
	for _, tc := range cases {
		if got := units.FormatWindSpeed(model.Float(tc.kmh), tc.unit); got != tc.want {
			t.Errorf("FormatWindSpeed(%v, %s): expected %q, got %q", tc.kmh, tc.unit, tc.want, got)
		}
	}
	if got := units.FormatWindSpeed(nil, model.MPH); got != units.Placeholder {
		t.Errorf("nil wind: expected placeholder, got %q", got)
	}
}

func TestWindSpeedMatchesRoundedConversion(t *testing.T) {
	for _, s := range []float64{0, 3.3, 17.8, 55, 120.4} {
		if got, want := units.WindSpeed(s, model.MPH), units.Round(s*0.621371); got != want {
			t.Errorf("mph %v: expected %d, got %d", s, want, got)
		}
		if got, want := units.WindSpeed(s, model.KMH), units.Round(s); got != want {
			t.Errorf("kmh %v: expected %d, got %d", s, want, got)
		}
	}
}

func TestTemperatureSymbol(t *testing.T) {
	if units.TemperatureSymbol(model.Fahrenheit) != "F" || units.TemperatureSymbol(model.Celsius) != "C" {
		t.Error("unexpected temperature symbols")
	}
}

func TestFormatPercentAndMillimetres(t *testing.T) {
	if got := units.FormatPercent(model.Float(39.6)); got != "40%" {
		t.Errorf("percent: expected 40%%, got %q", got)
	}
	if got := units.FormatMillimetres(model.Float(1.26)); got != "1.3 mm" {
		t.Errorf("millimetres: got %q", got)
	}
	for in, want := range map[float64]string{1.25: "1.3 mm", 0.35: "0.4 mm", 0.34: "0.3 mm", 2: "2.0 mm", 0: "0.0 mm", 12.05: "12.1 mm"} {
		if got := units.FormatMillimetres(model.Float(in)); got != want {
			t.Errorf("FormatMillimetres(%v): expected %q, got %q", in, want, got)
		}
	}
	if units.FormatPercent(nil) != units.Placeholder || units.FormatMillimetres(nil) != units.Placeholder {
		t.Error("nil readings should render as placeholder")
	}
}
