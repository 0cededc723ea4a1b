package weather

import "errors"

var (
	// ErrUnavailable is returned when the search provider cannot be reached or answers non-2xx.
	ErrUnavailable = errors.New("search provider unavailable")
	// ErrNoWeather is returned when no requested location produced a weather report.
	ErrNoWeather = errors.New("could not fetch weather data for any locations")
	// ErrNoLocations is returned for an empty batch.
	ErrNoLocations = errors.New("no locations given")
)

// MaxForecastDays caps the forecast carried per location.
const MaxForecastDays = 5

// Current is the present conditions at one location. Temperatures are nil when the provider omits them.
type Current struct {
	Location     string `json:"location"`
	Condition    string `json:"condition"`
	TemperatureF *int   `json:"temperature_f"`
	TemperatureC *int   `json:"temperature_c"`
	Humidity     string `json:"humidity"`
	Wind         string `json:"wind"`
}

// Day is one forecast entry.
type Day struct {
	Day       string `json:"day"`
	Condition string `json:"condition"`
	HighF     *int   `json:"high_f"`
	LowF      *int   `json:"low_f"`
}

// Report is the normalised weather for one requested location.
// Error is set instead of Current when the provider returned nothing usable.
type Report struct {
	Query    string   `json:"query"`
	Current  *Current `json:"current,omitempty"`
	Forecast []Day    `json:"forecast,omitempty"`
	Error    string   `json:"error,omitempty"`
}

// OK reports whether the location produced weather data.
func (r Report) OK() bool { return r.Current != nil }

// SearchResult is one organic web result.
type SearchResult struct {
	Title   string `json:"title"`
	Link    string `json:"link"`
	Snippet string `json:"snippet"`
}

func fahrenheitToCelsius(f int) int {
	return (f - 32) * 5 / 9
}
