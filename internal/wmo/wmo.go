// Package wmo maps WMO weather interpretation codes, as reported by
// Open-Meteo, to human-readable descriptions.
package wmo

// Unknown is returned for codes outside the table.
const Unknown = "Unknown"

var descriptions = map[int]string{
	0:  "Clear sky",
	1:  "Mainly clear",
	2:  "Partly cloudy",
	3:  "Overcast",
	45: "Fog",
	48: "Depositing rime fog",
	51: "Light drizzle",
	53: "Moderate drizzle",
	55: "Dense drizzle",
	56: "Light freezing drizzle",
	57: "Dense freezing drizzle",
	61: "Slight rain",
	63: "Moderate rain",
	65: "Heavy rain",
	66: "Light freezing rain",
	67: "Heavy freezing rain",
	71: "Slight snow fall",
	73: "Moderate snow fall",
	75: "Heavy snow fall",
	77: "Snow grains",
	80: "Slight rain showers",
	81: "Moderate rain showers",
	82: "Violent rain showers",
	85: "Slight snow showers",
	86: "Heavy snow showers",
	95: "Thunderstorm",
	96: "Thunderstorm with slight hail",
	99: "Thunderstorm with heavy hail",
}

// Describe returns the description for code, or Unknown.
func Describe(code int) string {
	if d, ok := descriptions[code]; ok {
		return d
	}
	return Unknown
}

// DescribePtr is Describe for an optional code; nil yields Unknown.
func DescribePtr(code *int) string {
	if code == nil {
		return Unknown
	}
	return Describe(*code)
}
