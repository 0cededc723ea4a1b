// README: Trip service; reads and writes trips through the backend and renders them for the model.
package trips

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/samber/lo"

	"tripmate/internal/logger"
	"tripmate/internal/modules/extraction"
	"tripmate/internal/types"
)

// DefaultContextTimeout bounds the trip fetch done before every turn.
const DefaultContextTimeout = 5 * time.Second

// Locator geocodes place names. *extraction.Resolver implements it.
type Locator interface {
	Resolve(ctx context.Context, names []string) []types.Location
	Lookup(ctx context.Context, name string) (types.Location, bool)
}

// Service wraps the backend with validation, geocoding and formatting.
type Service struct {
	backend        Backend
	locator        Locator
	log            *logger.Logger
	now            func() time.Time
	contextTimeout time.Duration
}

func NewService(backend Backend, locator Locator, log *logger.Logger) *Service {
	if log == nil {
		log = logger.Nop()
	}
	return &Service{
		backend:        backend,
		locator:        locator,
		log:            log.With("trips"),
		now:            time.Now,
		contextTimeout: DefaultContextTimeout,
	}
}

// List returns the user's trips.
func (s *Service) List(ctx context.Context, userID string) ([]Trip, error) {
	return s.backend.List(ctx, userID)
}

// FindByTitle returns trips whose title contains filter, case-insensitively. An empty filter matches all.
func (s *Service) FindByTitle(ctx context.Context, userID, filter string) ([]Trip, error) {
	all, err := s.backend.List(ctx, userID)
	if err != nil {
		return nil, err
	}
	filter = strings.ToLower(strings.TrimSpace(filter))
	if filter == "" {
		return all, nil
	}
	matched := lo.Filter(all, func(t Trip, _ int) bool {
		return strings.Contains(strings.ToLower(t.Title), filter)
	})
	if len(matched) == 0 {
		return nil, fmt.Errorf("no trip titled like %q: %w", filter, ErrNotFound)
	}
	return matched[:1], nil
}

// Context fetches and formats the user's trips. Any failure degrades to "".
func (s *Service) Context(ctx context.Context, userID string) string {
	if userID == "" {
		return ""
	}
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	list, err := s.backend.List(ctx, userID)
	if err != nil {
		s.log.Warn().Err(err).Str("user_id", userID).Msg("trip context unavailable")
		return ""
	}
	return FormatContext(list)
}

// FormatContext renders trips as the background block handed to the model.
func FormatContext(list []Trip) string {
	if len(list) == 0 {
		return ""
	}
	var b strings.Builder
	fmt.Fprintf(&b, "You have %d trip(s):\n\n", len(list))
	for i, t := range list {
		fmt.Fprintf(&b, "%d. %s\n", i+1, t.Title)
		fmt.Fprintf(&b, "   Description: %s\n", t.Description)
		fmt.Fprintf(&b, "   Dates: %s to %s\n", t.StartDay(), t.EndDay())
		if len(t.Locations) > 0 {
			fmt.Fprintf(&b, "   Locations: %s\n", strings.Join(t.LocationNames(), ", "))
			if km, ok := routeKm(t.Locations); ok {
				fmt.Fprintf(&b, "   Route: about %.0f km\n", km)
			}
		}
		b.WriteString("\n")
	}
	return b.String()
}

// routeKm sums leg distances. It reports false when any stop is unresolved.
func routeKm(locs []types.Location) (float64, bool) {
	if len(locs) < 2 {
		return 0, false
	}
	total := 0.0
	for i := 1; i < len(locs); i++ {
		if locs[i-1].Unresolved() || locs[i].Unresolved() {
			return 0, false
		}
		total += types.DistanceKm(locs[i-1], locs[i])
	}
	return total, true
}

// Create validates req, geocodes its locations and stores the trip.
// Unresolvable locations are kept with the (0, 0) sentinel.
func (s *Service) Create(ctx context.Context, req CreateRequest) (Trip, error) {
	names := lo.Uniq(lo.FilterMap(req.Locations, func(n string, _ int) (string, bool) {
		n = strings.TrimSpace(n)
		return n, n != ""
	}))

	start, ok := s.normalizeDate(req.StartDate)
	if !ok {
		return Trip{}, fmt.Errorf("%w: start_date %q is not a date", ErrInvalidTrip, req.StartDate)
	}
	end, ok := s.normalizeDate(req.EndDate)
	if !ok {
		return Trip{}, fmt.Errorf("%w: end_date %q is not a date", ErrInvalidTrip, req.EndDate)
	}
	if end < start {
		return Trip{}, fmt.Errorf("%w: end_date %s is before start_date %s", ErrInvalidTrip, end, start)
	}

	title := strings.TrimSpace(req.Title)
	if title == "" {
		if len(names) == 0 {
			return Trip{}, fmt.Errorf("%w: a title or at least one location is required", ErrInvalidTrip)
		}
		title = "Trip to " + names[0]
	}

	locs := []types.Location{}
	if len(names) > 0 {
		locs = s.locator.Resolve(ctx, names)
	}

	trip, err := s.backend.Create(ctx, createBody{
		UserID:      req.UserID,
		Title:       title,
		Description: req.Description,
		Summary:     req.Summary,
		StartDate:   start,
		EndDate:     end,
		Locations:   locs,
	})
	if err != nil {
		return Trip{}, err
	}
	s.log.Info().Str("user_id", req.UserID).Str("trip_id", trip.ID).Int("locations", len(locs)).Msg("trip created")
	return trip, nil
}

// AddLocation geocodes name and appends it to the trip, stored under the provider's display name when resolved.
func (s *Service) AddLocation(ctx context.Context, userID, tripID, name string) (types.Location, error) {
	name = strings.TrimSpace(name)
	if tripID == "" || name == "" {
		return types.Location{}, fmt.Errorf("%w: trip_id and location are required", ErrInvalidTrip)
	}
	loc, _ := s.locator.Lookup(ctx, name)
	stored, err := s.backend.AddLocation(ctx, tripID, addLocationBody{
		UserID: userID,
		Name:   loc.Name,
		Lat:    loc.Lat,
		Lng:    loc.Lng,
	})
	if err != nil {
		return types.Location{}, err
	}
	return stored, nil
}

// normalizeDate accepts canonical dates and anything the flexible parser understands.
func (s *Service) normalizeDate(v string) (string, bool) {
	v = strings.TrimSpace(v)
	if _, err := time.Parse(extraction.DateLayout, day(v)); err == nil {
		return day(v), true
	}
	return extraction.ParseDateFlexible(v, s.now())
}

// IsUnavailable reports whether err means the backend could not be reached.
func IsUnavailable(err error) bool {
	return errors.Is(err, ErrUnavailable)
}
