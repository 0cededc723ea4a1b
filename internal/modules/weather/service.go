// README: Weather and web search over the search provider, normalised into stable shapes.
package weather

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/samber/lo"
	"github.com/tidwall/gjson"
	"golang.org/x/sync/errgroup"

	"tripmate/internal/logger"
)

const (
	maxSearchResults   = 5
	defaultParallelism = 4
)

// Service looks up weather and web results.
type Service struct {
	searcher Searcher
	log      *logger.Logger
}

func NewService(searcher Searcher, log *logger.Logger) *Service {
	if log == nil {
		log = logger.Nop()
	}
	return &Service{searcher: searcher, log: log.With("weather")}
}

// Forecast returns one Report per location, in input order.
// Locations the provider cannot answer carry Error. ErrNoWeather is returned only when every lookup failed.
func (s *Service) Forecast(ctx context.Context, locations []string) ([]Report, error) {
	locations = lo.Filter(locations, func(l string, _ int) bool { return strings.TrimSpace(l) != "" })
	if len(locations) == 0 {
		return nil, ErrNoLocations
	}

	reports := make([]Report, len(locations))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(defaultParallelism)
	for i, loc := range locations {
		g.Go(func() error {
			reports[i] = s.lookup(gctx, loc)
			return nil
		})
	}
	_ = g.Wait()

	if !lo.SomeBy(reports, Report.OK) {
		return reports, ErrNoWeather
	}
	return reports, nil
}

func (s *Service) lookup(ctx context.Context, location string) Report {
	doc, err := s.searcher.Search(ctx, "weather "+location)
	if err != nil {
		s.log.Warn().Err(err).Str("location", location).Msg("weather lookup failed")
		return Report{Query: location, Error: err.Error()}
	}
	report, ok := parseAnswerBox(location, doc)
	if !ok {
		s.log.Debug().Str("location", location).Msg("no weather answer box")
		return Report{Query: location, Error: "no weather data found for " + location}
	}
	return report
}

func parseAnswerBox(location string, doc gjson.Result) (Report, bool) {
	box := doc.Get("answer_box")
	if !box.Get("weather").Exists() {
		return Report{}, false
	}
	cur := &Current{
		Location:  lo.CoalesceOrEmpty(box.Get("location").String(), location),
		Condition: box.Get("weather").String(),
		Humidity:  box.Get("humidity").String(),
		Wind:      box.Get("wind").String(),
	}
	if f, ok := intField(box.Get("temperature")); ok {
		c := fahrenheitToCelsius(f)
		cur.TemperatureF, cur.TemperatureC = &f, &c
	}

	report := Report{Query: location, Current: cur}
	for i, d := range box.Get("forecast").Array() {
		if i == MaxForecastDays {
			break
		}
		day := Day{Day: d.Get("day").String(), Condition: d.Get("weather").String()}
		if v, ok := intField(d.Get("temperature.high")); ok {
			day.HighF = &v
		}
		if v, ok := intField(d.Get("temperature.low")); ok {
			day.LowF = &v
		}
		report.Forecast = append(report.Forecast, day)
	}
	return report, true
}

// intField accepts numbers and numeric strings such as "72" or "72°".
func intField(r gjson.Result) (int, bool) {
	switch r.Type {
	case gjson.Number:
		return int(r.Int()), true
	case gjson.String:
		n, err := strconv.Atoi(strings.TrimRight(strings.TrimSpace(r.Str), "°FfCc "))
		return n, err == nil
	}
	return 0, false
}

// WebSearch returns the top organic results for query.
func (s *Service) WebSearch(ctx context.Context, query string) ([]SearchResult, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, fmt.Errorf("empty search query")
	}
	doc, err := s.searcher.Search(ctx, query)
	if err != nil {
		return nil, err
	}
	var out []SearchResult
	doc.Get("organic_results").ForEach(func(_, r gjson.Result) bool {
		out = append(out, SearchResult{
			Title:   r.Get("title").String(),
			Link:    r.Get("link").String(),
			Snippet: r.Get("snippet").String(),
		})
		return len(out) < maxSearchResults
	})
	return out, nil
}
