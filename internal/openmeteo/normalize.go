package openmeteo

import (
	"errors"
	"fmt"
	"strings"

	"github.com/derickschaefer/meteo/internal/model"
)

// Raw provider shapes. Every column entry is a pointer because the provider
// emits null for missing readings.

type rawCurrent struct {
	Temperature         *float64 `json:"temperature_2m"`
	Humidity            *float64 `json:"relative_humidity_2m"`
	ApparentTemperature *float64 `json:"apparent_temperature"`
	WeatherCode         *int     `json:"weather_code"`
	WindSpeed           *float64 `json:"wind_speed_10m"`
	Precipitation       *float64 `json:"precipitation"`
}

type rawHourly struct {
	Time                     []string   `json:"time"`
	Temperature              []*float64 `json:"temperature_2m"`
	WeatherCode              []*int     `json:"weather_code"`
	PrecipitationProbability []*float64 `json:"precipitation_probability"`
}

type rawDaily struct {
	Time                        []string   `json:"time"`
	WeatherCode                 []*int     `json:"weather_code"`
	TemperatureMax              []*float64 `json:"temperature_2m_max"`
	TemperatureMin              []*float64 `json:"temperature_2m_min"`
	Sunrise                     []*string  `json:"sunrise"`
	Sunset                      []*string  `json:"sunset"`
	PrecipitationSum            []*float64 `json:"precipitation_sum"`
	PrecipitationProbabilityMax []*float64 `json:"precipitation_probability_max"`
}

type rawForecast struct {
	Current *rawCurrent `json:"current"`
	Hourly  *rawHourly  `json:"hourly"`
	Daily   *rawDaily   `json:"daily"`
}

// column records whether a named provider array was present in the payload.
type column struct {
	name    string
	present bool
}

// requireColumns fails when a section is absent or any of its columns is
// missing entirely. Columns that are present but shorter than the time axis
// are tolerated; the missing tail reads as nil.
func requireColumns(section string, found bool, cols ...column) error {
	if !found {
		return fmt.Errorf("missing %q section", section)
	}
	var missing []string
	for _, c := range cols {
		if !c.present {
			missing = append(missing, section+"."+c.name)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing columns: %s", strings.Join(missing, ", "))
	}
	return nil
}

// at returns xs[i], or nil when the column is shorter than the time axis.
func at[T any](xs []*T, i int) *T {
	if i < len(xs) {
		return xs[i]
	}
	return nil
}

func stringAt(xs []*string, i int) string {
	if v := at(xs, i); v != nil {
		return *v
	}
	return ""
}

// normalizeForecast reshapes a column-oriented forecast payload into the
// row-oriented model, keeping the first HourlyPoints hours and every day.
func normalizeForecast(raw *rawForecast) (*model.Forecast, error) {
	if raw.Current == nil {
		return nil, errors.New(`missing "current" section`)
	}

	h := raw.Hourly
	if err := requireColumns("hourly", h != nil, hourlyColumns(h)...); err != nil {
		return nil, err
	}
	d := raw.Daily
	if err := requireColumns("daily", d != nil, dailyColumns(d)...); err != nil {
		return nil, err
	}

	n := len(h.Time)
	if n > HourlyPoints {
		n = HourlyPoints
	}
	hourly := make([]model.HourlyPoint, n)
	for i := 0; i < n; i++ {
		hourly[i] = model.HourlyPoint{
			Time:                     h.Time[i],
			Temperature:              at(h.Temperature, i),
			WeatherCode:              at(h.WeatherCode, i),
			PrecipitationProbability: at(h.PrecipitationProbability, i),
		}
	}

	daily := make([]model.DailyPoint, len(d.Time))
	for i, date := range d.Time {
		daily[i] = model.DailyPoint{
			Date:                     date,
			MaxTemperature:           at(d.TemperatureMax, i),
			MinTemperature:           at(d.TemperatureMin, i),
			WeatherCode:              at(d.WeatherCode, i),
			Sunrise:                  stringAt(d.Sunrise, i),
			Sunset:                   stringAt(d.Sunset, i),
			PrecipitationSum:         at(d.PrecipitationSum, i),
			PrecipitationProbability: at(d.PrecipitationProbabilityMax, i),
		}
	}

	c := raw.Current
	return &model.Forecast{
		Current: model.CurrentWeather{
			Temperature:         c.Temperature,
			Humidity:            c.Humidity,
			ApparentTemperature: c.ApparentTemperature,
			WeatherCode:         c.WeatherCode,
			WindSpeed:           c.WindSpeed,
			Precipitation:       c.Precipitation,
		},
		Hourly: hourly,
		Daily:  daily,
	}, nil
}

func hourlyColumns(h *rawHourly) []column {
	if h == nil {
		return nil
	}
	return []column{
		{"time", h.Time != nil},
		{"temperature_2m", h.Temperature != nil},
		{"weather_code", h.WeatherCode != nil},
		{"precipitation_probability", h.PrecipitationProbability != nil},
	}
}

func dailyColumns(d *rawDaily) []column {
	if d == nil {
		return nil
	}
	return []column{
		{"time", d.Time != nil},
		{"weather_code", d.WeatherCode != nil},
		{"temperature_2m_max", d.TemperatureMax != nil},
		{"temperature_2m_min", d.TemperatureMin != nil},
		{"sunrise", d.Sunrise != nil},
		{"sunset", d.Sunset != nil},
		{"precipitation_sum", d.PrecipitationSum != nil},
		{"precipitation_probability_max", d.PrecipitationProbabilityMax != nil},
	}
}
