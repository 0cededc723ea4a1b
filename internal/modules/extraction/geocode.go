// README: Geocoding adapter; bounded per-name timeout, (0, 0) sentinel on any failure.
package extraction

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"tripmate/internal/logger"
	"tripmate/internal/metrics"
	"tripmate/internal/types"
)

const (
	DefaultGeocodeTimeout     = 10 * time.Second
	defaultGeocodeParallelism = 4
)

// Geocoder resolves a place name to coordinates.
type Geocoder interface {
	Geocode(ctx context.Context, name string) (types.Location, error)
}

// Resolver attaches coordinates to extracted names without ever dropping one.
type Resolver struct {
	geocoder    Geocoder
	timeout     time.Duration
	parallelism int
	log         *logger.Logger
	metrics     *metrics.Metrics
}

// NewResolver builds a Resolver. A nil geocoder leaves every name unresolved.
func NewResolver(geocoder Geocoder, timeout time.Duration, log *logger.Logger, m *metrics.Metrics) *Resolver {
	if timeout <= 0 {
		timeout = DefaultGeocodeTimeout
	}
	if log == nil {
		log = logger.Nop()
	}
	return &Resolver{
		geocoder:    geocoder,
		timeout:     timeout,
		parallelism: defaultGeocodeParallelism,
		log:         log.With("geocode"),
		metrics:     m,
	}
}

// Resolve returns one Location per name, in input order. Unresolvable names carry (0, 0).
func (r *Resolver) Resolve(ctx context.Context, names []string) []types.Location {
	out := make([]types.Location, len(names))
	g := new(errgroup.Group)
	g.SetLimit(r.parallelism)
	for i, name := range names {
		g.Go(func() error {
			out[i] = r.resolveOne(ctx, name)
			return nil
		})
	}
	_ = g.Wait()
	return out
}

func (r *Resolver) resolveOne(ctx context.Context, name string) types.Location {
	loc, _ := r.Lookup(ctx, name)
	loc.Name = name
	return loc
}

// Lookup geocodes one name and keeps the provider's display name. On failure it returns the
// sentinel location carrying the input name and ok=false.
func (r *Resolver) Lookup(ctx context.Context, name string) (types.Location, bool) {
	unresolved := types.Location{Name: name}
	if r.geocoder == nil {
		r.metrics.RecordGeocode("unresolved")
		return unresolved, false
	}

	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	loc, err := r.geocoder.Geocode(ctx, name)
	if err != nil {
		r.log.Warn().Str("location", name).Err(err).Msg("geocoding failed, using sentinel coordinates")
		r.metrics.RecordGeocode("unresolved")
		return unresolved, false
	}
	if loc.Unresolved() {
		r.metrics.RecordGeocode("unresolved")
		return unresolved, false
	}
	if loc.Name == "" {
		loc.Name = name
	}
	r.metrics.RecordGeocode("resolved")
	return loc, true
}
