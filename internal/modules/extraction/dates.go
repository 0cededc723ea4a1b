// README: Flexible date parsing as an ordered (matcher, normalizer) table evaluated first-match-wins.
package extraction

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

// DateLayout is the canonical output format for every extracted date.
const DateLayout = "2006-01-02"

// dateRule pairs a matcher with the normalizer that turns one match into a calendar day.
type dateRule struct {
	name      string
	pattern   *regexp.Regexp
	normalize func(m []string, now time.Time) (time.Time, bool)
}

var (
	ordinalSuffix = regexp.MustCompile(`\b(\d{1,2})(?:st|nd|rd|th)\b`)
	spaceRun      = regexp.MustCompile(`\s+`)
)

// relativeRules run before any absolute pattern.
var relativeRules = []dateRule{
	{
		name:    "today",
		pattern: regexp.MustCompile(`\btoday\b`),
		normalize: func(_ []string, now time.Time) (time.Time, bool) {
			return startOfDay(now), true
		},
	},
	{
		name:    "tomorrow",
		pattern: regexp.MustCompile(`\btomorrow\b`),
		normalize: func(_ []string, now time.Time) (time.Time, bool) {
			return startOfDay(now).AddDate(0, 0, 1), true
		},
	},
	{
		name:    "next week",
		pattern: regexp.MustCompile(`\bnext\s+week\b`),
		normalize: func(_ []string, now time.Time) (time.Time, bool) {
			return startOfDay(now).AddDate(0, 0, 7), true
		},
	},
	{
		name:    "next month",
		pattern: regexp.MustCompile(`\bnext\s+month\b`),
		normalize: func(_ []string, now time.Time) (time.Time, bool) {
			return time.Date(now.Year(), now.Month()+1, 1, 0, 0, 0, 0, now.Location()), true
		},
	},
}

// absoluteRules are tried in priority order after the relative tokens.
var absoluteRules = []dateRule{
	{
		name:    "iso",
		pattern: regexp.MustCompile(`\b(\d{4})-(\d{1,2})-(\d{1,2})\b`),
		normalize: func(m []string, now time.Time) (time.Time, bool) {
			return civilDate(atoi(m[1]), atoi(m[2]), atoi(m[3]), now.Location())
		},
	},
	{
		// Month-first; day-first only when month-first is not a real date (e.g. 25/12/2025).
		name:    "slash",
		pattern: regexp.MustCompile(`\b(\d{1,2})/(\d{1,2})/(\d{4})\b`),
		normalize: func(m []string, now time.Time) (time.Time, bool) {
			a, b, year := atoi(m[1]), atoi(m[2]), atoi(m[3])
			if t, ok := civilDate(year, a, b, now.Location()); ok {
				return t, true
			}
			return civilDate(year, b, a, now.Location())
		},
	},
	{
		name:    "month day year",
		pattern: regexp.MustCompile(`\b([a-z]+)\.?\s+(\d{1,2}),?\s+(\d{4})\b`),
		normalize: func(m []string, now time.Time) (time.Time, bool) {
			month, ok := monthByName(m[1])
			if !ok {
				return time.Time{}, false
			}
			return civilDate(atoi(m[3]), int(month), atoi(m[2]), now.Location())
		},
	},
	{
		name:    "day month year",
		pattern: regexp.MustCompile(`\b(\d{1,2})\s+(?:of\s+)?([a-z]+)\.?,?\s+(\d{4})\b`),
		normalize: func(m []string, now time.Time) (time.Time, bool) {
			month, ok := monthByName(m[2])
			if !ok {
				return time.Time{}, false
			}
			return civilDate(atoi(m[3]), int(month), atoi(m[1]), now.Location())
		},
	},
	{
		name:    "month day",
		pattern: regexp.MustCompile(`\b([a-z]+)\.?\s+(\d{1,2})\b`),
		normalize: func(m []string, now time.Time) (time.Time, bool) {
			month, ok := monthByName(m[1])
			if !ok {
				return time.Time{}, false
			}
			return civilDate(now.Year(), int(month), atoi(m[2]), now.Location())
		},
	},
	{
		name:    "day month",
		pattern: regexp.MustCompile(`\b(\d{1,2})\s+(?:of\s+)?([a-z]+)\b`),
		normalize: func(m []string, now time.Time) (time.Time, bool) {
			month, ok := monthByName(m[2])
			if !ok {
				return time.Time{}, false
			}
			return civilDate(now.Year(), int(month), atoi(m[1]), now.Location())
		},
	},
}

// DateRuleOrder lists rule names in evaluation order.
func DateRuleOrder() []string {
	names := make([]string, 0, len(relativeRules)+len(absoluteRules))
	for _, r := range relativeRules {
		names = append(names, r.name)
	}
	for _, r := range absoluteRules {
		names = append(names, r.name)
	}
	return names
}

// ParseDateFlexible returns the first date found in text as YYYY-MM-DD.
// Yearless dates assume the year of now. ok is false when nothing parses.
func ParseDateFlexible(text string, now time.Time) (string, bool) {
	t, _, ok := parseDate(text, now)
	if !ok {
		return "", false
	}
	return t.Format(DateLayout), true
}

func parseDate(text string, now time.Time) (time.Time, string, bool) {
	normalized := normalizeDateText(text)
	if normalized == "" {
		return time.Time{}, "", false
	}
	for _, rules := range [][]dateRule{relativeRules, absoluteRules} {
		for _, rule := range rules {
			for _, m := range rule.pattern.FindAllStringSubmatch(normalized, -1) {
				if t, ok := rule.normalize(m, now); ok {
					return t, rule.name, true
				}
			}
		}
	}
	return time.Time{}, "", false
}

func normalizeDateText(text string) string {
	s := strings.ToLower(strings.TrimSpace(text))
	s = ordinalSuffix.ReplaceAllString(s, "$1")
	return spaceRun.ReplaceAllString(s, " ")
}

// civilDate rejects overflowing values such as February 30 instead of normalizing them.
func civilDate(year, month, day int, loc *time.Location) (time.Time, bool) {
	if month < 1 || month > 12 || day < 1 || day > 31 || year < 1 {
		return time.Time{}, false
	}
	t := time.Date(year, time.Month(month), day, 0, 0, 0, 0, loc)
	if t.Year() != year || int(t.Month()) != month || t.Day() != day {
		return time.Time{}, false
	}
	return t, true
}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

func atoi(s string) int {
	n, _ := strconv.Atoi(s)
	return n
}

// monthNames accepts full English names, three-letter abbreviations, and "sept".
var monthNames = func() map[string]time.Month {
	names := make(map[string]time.Month, 25)
	for m := time.January; m <= time.December; m++ {
		full := strings.ToLower(m.String())
		names[full] = m
		names[full[:3]] = m
	}
	names["sept"] = time.September
	return names
}()

func monthByName(name string) (time.Month, bool) {
	m, ok := monthNames[name]
	return m, ok
}
