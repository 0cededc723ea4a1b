// README: Trip date-range extraction; connector phrases first, single-date fallback second.
package extraction

import (
	"regexp"
	"time"
)

// dateToken matches any surface form an endpoint may take. Endpoints are re-parsed by ParseDateFlexible.
const dateToken = `\d{4}-\d{1,2}-\d{1,2}` +
	`|\d{1,2}/\d{1,2}/\d{4}` +
	`|[a-z]+\.?\s+\d{1,2}(?:,?\s+\d{4})?` +
	`|\d{1,2}\s+[a-z]+(?:,?\s+\d{4})?` +
	`|today|tomorrow|next\s+week|next\s+month`

type rangeRule struct {
	name    string
	pattern *regexp.Regexp
}

var rangeRules = []rangeRule{
	{"from X to Y", regexp.MustCompile(`\bfrom\s+(` + dateToken + `)\s+(?:to|until|till|through)\s+(` + dateToken + `)`)},
	{"X to Y", regexp.MustCompile(`(` + dateToken + `)\s+to\s+(` + dateToken + `)`)},
	{"X - Y", regexp.MustCompile(`(` + dateToken + `)\s*[-–]\s*(` + dateToken + `)`)},
}

// RangeRuleOrder lists connector rules in evaluation order.
func RangeRuleOrder() []string {
	names := make([]string, len(rangeRules))
	for i, r := range rangeRules {
		names[i] = r.name
	}
	return names
}

// ParseTripRequest extracts a start/end pair from free text. A range counts only when both
// endpoints parse; otherwise the first single date starts a DefaultTripLength-day trip.
func ParseTripRequest(text string, now time.Time) DateRange {
	normalized := normalizeDateText(text)
	for _, rule := range rangeRules {
		for _, m := range rule.pattern.FindAllStringSubmatch(normalized, -1) {
			start, okStart := ParseDateFlexible(m[1], now)
			end, okEnd := ParseDateFlexible(m[2], now)
			if okStart && okEnd {
				return DateRange{StartDate: start, EndDate: end}
			}
		}
	}

	start, _, ok := parseDate(normalized, now)
	if !ok {
		return DateRange{}
	}
	return DateRange{
		StartDate: start.Format(DateLayout),
		EndDate:   start.AddDate(0, 0, DefaultTripLength).Format(DateLayout),
	}
}
