// README: Location-name extraction from original-case text (surface patterns + gazetteer + stop words).
package extraction

import (
	"regexp"
	"sort"
	"strings"

	"github.com/samber/lo"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// properNoun matches one or more capitalized words; capitalization is the main proper-noun signal.
const properNoun = `[A-Z][a-zA-Z'\-]*(?:\s+[A-Z][a-zA-Z'\-]*)*`

type locationRule struct {
	name    string
	pattern *regexp.Regexp
}

var locationRules = []locationRule{
	{"to X", regexp.MustCompile(`\bto\s+(` + properNoun + `)`)},
	{"in X", regexp.MustCompile(`\bin\s+(` + properNoun + `)`)},
	{"at X", regexp.MustCompile(`\bat\s+(` + properNoun + `)`)},
	{"visit X", regexp.MustCompile(`\b[Vv]isit(?:ing)?\s+(` + properNoun + `)`)},
	{"go to X", regexp.MustCompile(`\bgo(?:ing)?\s+to\s+(` + properNoun + `)`)},
	{"travel to X", regexp.MustCompile(`\b[Tt]ravel(?:ing|ling)?\s+to\s+(` + properNoun + `)`)},
	{"from X to Y", regexp.MustCompile(`\bfrom\s+(` + properNoun + `)\s+to\s+(` + properNoun + `)`)},
	{"X and Y", regexp.MustCompile(`(` + properNoun + `)\s+and\s+(` + properNoun + `)`)},
	{"gazetteer", gazetteerPattern()},
}

var canonicalPlaces = lo.SliceToMap(knownPlaces, func(p string) (string, string) {
	return strings.ToLower(p), p
})

// gazetteerPattern puts longer names first so "New York" wins over any shorter prefix.
func gazetteerPattern() *regexp.Regexp {
	names := lo.Uniq(knownPlaces)
	sort.SliceStable(names, func(i, j int) bool { return len(names[i]) > len(names[j]) })
	quoted := lo.Map(names, func(n string, _ int) string { return regexp.QuoteMeta(n) })
	return regexp.MustCompile(`(?i)\b(` + strings.Join(quoted, "|") + `)\b`)
}

// LocationRuleOrder lists location rules in evaluation order.
func LocationRuleOrder() []string {
	return lo.Map(locationRules, func(r locationRule, _ int) string { return r.name })
}

// ExtractLocations unions every rule hit, drops stop words, and deduplicates case-insensitively.
// The order of the result follows first discovery but callers must treat it as a set.
func ExtractLocations(text string) []string {
	if strings.TrimSpace(text) == "" {
		return nil
	}

	var found []string
	for _, rule := range locationRules {
		for _, m := range rule.pattern.FindAllStringSubmatch(text, -1) {
			for _, group := range m[1:] {
				if name := cleanLocation(group); name != "" {
					found = append(found, name)
				}
			}
		}
	}

	found = lo.Filter(found, func(name string, _ int) bool {
		_, stop := stopWords[strings.ToLower(name)]
		return !stop && len(name) > 1
	})
	return lo.UniqBy(found, strings.ToLower)
}

func cleanLocation(raw string) string {
	name := strings.Trim(strings.TrimSpace(raw), "'-")
	name = spaceRun.ReplaceAllString(name, " ")
	if canonical, ok := canonicalPlaces[strings.ToLower(name)]; ok {
		return canonical
	}
	return name
}

// CanonicalName tidies a model- or user-supplied place name: known places get their gazetteer
// spelling and all-lowercase input is title-cased ("new york" -> "New York").
func CanonicalName(name string) string {
	name = spaceRun.ReplaceAllString(strings.TrimSpace(name), " ")
	if canonical, ok := canonicalPlaces[strings.ToLower(name)]; ok {
		return canonical
	}
	if name == strings.ToLower(name) {
		return cases.Title(language.English).String(name)
	}
	return name
}
