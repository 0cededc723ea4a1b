package maps

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/ringsaturn/tzf"
	"googlemaps.github.io/maps"

	"tripmate/internal/types"
)

// ErrNoResults is returned when the provider knows no place by that name.
var ErrNoResults = errors.New("no geocoding results")

// TimezoneFinder maps coordinates to an IANA zone name.
type TimezoneFinder interface {
	GetTimezoneName(lng, lat float64) string
}

// NewTimezoneFinder loads the embedded timezone polygons. Loading takes a moment; do it once.
func NewTimezoneFinder() (TimezoneFinder, error) {
	finder, err := tzf.NewDefaultFinder()
	if err != nil {
		return nil, fmt.Errorf("load timezone data: %w", err)
	}
	return finder, nil
}

// GeocodeService handles interactions with the Google Geocoding API.
type GeocodeService struct {
	client    *maps.Client
	timezones TimezoneFinder
}

// NewGeocodeService creates a GeocodeService with the given API key.
// Extra client options (e.g. maps.WithBaseURL) are passed through.
func NewGeocodeService(apiKey string, timezones TimezoneFinder, opts ...maps.ClientOption) (*GeocodeService, error) {
	opts = append([]maps.ClientOption{maps.WithAPIKey(apiKey)}, opts...)
	client, err := maps.NewClient(opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create maps client: %w", err)
	}
	return &GeocodeService{client: client, timezones: timezones}, nil
}

// Geocode resolves a free-form place name. The returned Name is the "City, Country" form.
func (s *GeocodeService) Geocode(ctx context.Context, name string) (types.Location, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return types.Location{}, ErrNoResults
	}
	results, err := s.client.Geocode(ctx, &maps.GeocodingRequest{Address: name})
	if err != nil {
		return types.Location{}, fmt.Errorf("geocode %q: %w", name, err)
	}
	if len(results) == 0 {
		return types.Location{}, fmt.Errorf("geocode %q: %w", name, ErrNoResults)
	}

	best := results[0]
	loc := types.Location{
		Name: displayName(best, name),
		Lat:  best.Geometry.Location.Lat,
		Lng:  best.Geometry.Location.Lng,
	}
	if s.timezones != nil {
		loc.Timezone = s.timezones.GetTimezoneName(loc.Lng, loc.Lat)
	}
	return loc, nil
}

// displayName prefers "City, Country", then the formatted address, then the query.
func displayName(r maps.GeocodingResult, fallback string) string {
	var city, region, country string
	for _, c := range r.AddressComponents {
		for _, t := range c.Types {
			switch t {
			case "locality":
				city = c.LongName
			case "administrative_area_level_1":
				region = c.LongName
			case "country":
				country = c.LongName
			}
		}
	}
	if city == "" {
		city = region
	}
	switch {
	case city != "" && country != "" && city != country:
		return city + ", " + country
	case country != "":
		return country
	case r.FormattedAddress != "":
		return r.FormattedAddress
	}
	return fallback
}
