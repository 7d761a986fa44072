package chart_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/derickschaefer/meteo/internal/chart"
	"github.com/derickschaefer/meteo/internal/model"
)

// ─── Helpers ──────────────────────────────────────────────────────────────────

// points builds chart points labelled "h0", "h1", ... from values. NaN-free;
// use gap() for a missing reading.
func points(values ...*float64) []chart.Point {
	out := make([]chart.Point, len(values))
	for i, v := range values {
		out[i] = chart.Point{Label: "h" + string(rune('0'+i)), Value: v}
	}
	return out
}

func v(f float64) *float64 { return &f }

func gap() *float64 { return nil }

func render(t *testing.T, pts []chart.Point, width int) []string {
	t.Helper()
	var buf bytes.Buffer
	if err := chart.Bars(&buf, "title", pts, chart.Options{Width: width, Suffix: "°C"}); err != nil {
		t.Fatalf("Bars: %v", err)
	}
	return strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
}

// ─── Bars ─────────────────────────────────────────────────────────────────────

func TestBarsScaleToLargestValue(t *testing.T) {
	lines := render(t, points(v(5), v(10)), 40)
	if lines[0] != "title" {
		t.Errorf("first line should be the title, got %q", lines[0])
	}
	short := strings.Count(lines[1], "█")
	long := strings.Count(lines[2], "█")
	if long <= short || short == 0 {
		t.Errorf("bar lengths should track values: 5→%d, 10→%d", short, long)
	}
	if !strings.Contains(lines[2], "10°C") {
		t.Errorf("value label missing: %q", lines[2])
	}
}

func TestBarsMissingReadingIsGap(t *testing.T) {
	lines := render(t, points(v(4), gap(), v(6)), 40)
	if !strings.Contains(lines[2], "--") {
		t.Errorf("missing reading should show the placeholder: %q", lines[2])
	}
	if strings.ContainsAny(lines[2], "█▒│") {
		t.Errorf("missing reading must not draw a bar: %q", lines[2])
	}
}

func TestBarsNegativeValuesLeftOfBaseline(t *testing.T) {
	lines := render(t, points(v(-5), v(0), v(5)), 40)
	if !strings.Contains(lines[1], "▒") || !strings.HasSuffix(lines[1], "│") {
		t.Errorf("negative bar should extend left to the baseline: %q", lines[1])
	}
	if !strings.HasSuffix(lines[2], "│") || strings.Contains(lines[2], "█") {
		t.Errorf("zero should draw only the baseline: %q", lines[2])
	}
	if !strings.Contains(lines[3], "█") {
		t.Errorf("positive bar missing: %q", lines[3])
	}
	// The zero column lines up across rows.
	if strings.Index(lines[2], "│") != strings.Index(lines[3], "█") {
		t.Errorf("baseline misaligned:\n%s\n%s", lines[2], lines[3])
	}
}

func TestBarsAllMissingIsError(t *testing.T) {
	var buf bytes.Buffer
	if err := chart.Bars(&buf, "t", points(gap(), gap()), chart.Options{Width: 40}); err == nil {
		t.Error("expected error when every reading is missing")
	}
}

func TestBarsWidthFromColumns(t *testing.T) {
	t.Setenv("COLUMNS", "30")
	var buf bytes.Buffer
	if err := chart.Bars(&buf, "t", points(v(1), v(100)), chart.Options{}); err != nil {
		t.Fatal(err)
	}
	for _, line := range strings.Split(strings.TrimRight(buf.String(), "\n"), "\n") {
		if n := len([]rune(line)); n > 30 {
			t.Errorf("line exceeds $COLUMNS: %d %q", n, line)
		}
	}
}

// ─── Hourly ───────────────────────────────────────────────────────────────────

func TestHourlyConvertsTemperature(t *testing.T) {
	hours := []model.HourlyPoint{
		{Time: "2024-03-05T07:00", Temperature: v(20), PrecipitationProbability: v(40)},
		{Time: "2024-03-05T08:00"},
	}
	pts, suffix := chart.Hourly(hours, chart.MetricTemperature, model.Fahrenheit)
	if suffix != "°F" {
		t.Errorf("suffix = %q", suffix)
	}
	if pts[0].Label != "07:00" || pts[0].Value == nil || *pts[0].Value != 68 {
		t.Errorf("first point = %+v", pts[0])
	}
	if pts[1].Value != nil {
		t.Errorf("missing temperature should stay nil")
	}

	pts, suffix = chart.Hourly(hours, chart.MetricPrecipitation, model.Celsius)
	if suffix != "%" || *pts[0].Value != 40 {
		t.Errorf("precip point = %+v %q", pts[0], suffix)
	}
}

func TestParseMetric(t *testing.T) {
	for in, want := range map[string]chart.Metric{
		"temp": chart.MetricTemperature, "Temperature": chart.MetricTemperature,
		"precip": chart.MetricPrecipitation, "rain": chart.MetricPrecipitation,
	} {
		got, err := chart.ParseMetric(in)
		if err != nil || got != want {
			t.Errorf("ParseMetric(%q) = %q, %v", in, got, err)
		}
	}
	if _, err := chart.ParseMetric("wind"); err == nil {
		t.Error("unknown metric should fail")
	}
}
