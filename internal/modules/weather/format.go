package weather

import (
	"fmt"
	"strings"
)

const formatForecastDays = 3

// FormatReport renders one location's weather as a few lines of plain text.
func FormatReport(name string, r Report) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s\n", name)
	if !r.OK() {
		fmt.Fprintf(&b, "   %s\n", r.Error)
		return b.String()
	}
	c := r.Current
	fmt.Fprintf(&b, "   Current: %s, %s°F (%s°C)\n", orNA(c.Condition), intOrNA(c.TemperatureF), intOrNA(c.TemperatureC))
	fmt.Fprintf(&b, "   Humidity: %s, Wind: %s\n", orNA(c.Humidity), orNA(c.Wind))
	if len(r.Forecast) > 0 {
		b.WriteString("   Forecast:\n")
		for i, d := range r.Forecast {
			if i == formatForecastDays {
				break
			}
			fmt.Fprintf(&b, "      - %s: %s, High: %s°F, Low: %s°F\n", orNA(d.Day), orNA(d.Condition), intOrNA(d.HighF), intOrNA(d.LowF))
		}
	}
	return b.String()
}

func orNA(s string) string {
	if s == "" {
		return "N/A"
	}
	return s
}

func intOrNA(v *int) string {
	if v == nil {
		return "N/A"
	}
	return fmt.Sprint(*v)
}
