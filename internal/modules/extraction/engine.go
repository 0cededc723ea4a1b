package extraction

import (
	"context"
	"strings"
	"time"

	"tripmate/internal/logger"
	"tripmate/internal/types"
)

// Engine bundles the pure extractors with an injected clock, logger, and geocoding adapter.
type Engine struct {
	now      func() time.Time
	log      *logger.Logger
	resolver *Resolver
}

type Option func(*Engine)

// WithClock overrides time.Now; tests pin "today" with it.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// WithResolver attaches the geocoding adapter used by ResolveLocations.
func WithResolver(r *Resolver) Option {
	return func(e *Engine) { e.resolver = r }
}

func NewEngine(log *logger.Logger, opts ...Option) *Engine {
	if log == nil {
		log = logger.Nop()
	}
	e := &Engine{now: time.Now, log: log.With("extraction")}
	for _, opt := range opts {
		opt(e)
	}
	if e.resolver == nil {
		e.resolver = NewResolver(nil, 0, log, nil)
	}
	return e
}

// Now returns the engine's notion of the current time.
func (e *Engine) Now() time.Time {
	return e.now()
}

// ParseDate is ParseDateFlexible against the engine clock.
func (e *Engine) ParseDate(text string) (string, bool) {
	t, rule, ok := parseDate(text, e.now())
	if !ok {
		return "", false
	}
	e.log.Debug().Str("rule", rule).Str("date", t.Format(DateLayout)).Msg("date matched")
	return t.Format(DateLayout), true
}

// ParseTripRequest is the package-level ParseTripRequest against the engine clock.
func (e *Engine) ParseTripRequest(text string) DateRange {
	return ParseTripRequest(text, e.now())
}

// Analyze recomputes trip info from user-authored messages, oldest first. Destinations are the
// union over all messages; dates come from the newest message that mentions any.
func (e *Engine) Analyze(userMessages []string) TripInfo {
	now := e.now()
	info := TripInfo{Destinations: []string{}}

	seen := make(map[string]struct{})
	for _, msg := range userMessages {
		for _, name := range ExtractLocations(msg) {
			key := strings.ToLower(name)
			if _, dup := seen[key]; dup {
				continue
			}
			seen[key] = struct{}{}
			info.Destinations = append(info.Destinations, name)
		}
	}

	for i := len(userMessages) - 1; i >= 0; i-- {
		r := ParseTripRequest(userMessages[i], now)
		if r.StartDate != "" {
			info.StartDate, info.EndDate = r.StartDate, r.EndDate
			break
		}
	}

	info.HasDestination = len(info.Destinations) > 0
	info.HasDates = info.StartDate != "" && info.EndDate != ""
	return info
}

// ResolveLocations geocodes names through the attached adapter.
func (e *Engine) ResolveLocations(ctx context.Context, names []string) []types.Location {
	return e.resolver.Resolve(ctx, names)
}
