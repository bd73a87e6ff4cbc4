package usecases

import (
	"context"
	"encoding/json"

	"github.com/samirrijal/evroute/internal/core/domain"
	"github.com/samirrijal/evroute/internal/core/ports"
	"github.com/samirrijal/evroute/internal/pkg/metrics"
)

// GeocodeService resolves place names to coordinates.
type GeocodeService struct {
	geocoder ports.Geocoder
	cache    ports.CacheService
	events   ports.EventPublisher
	cacheTTL int
}

// NewGeocodeService creates a new GeocodeService. cache and events may be nil.
func NewGeocodeService(geocoder ports.Geocoder, cache ports.CacheService, events ports.EventPublisher, cacheTTLSeconds int) *GeocodeService {
	return &GeocodeService{geocoder: geocoder, cache: cache, events: events, cacheTTL: cacheTTLSeconds}
}

// Lookup returns the coordinates of the best match for place.
// Returns domain.ErrPlaceNotFound when the geocoder has no match.
func (s *GeocodeService) Lookup(ctx context.Context, place string) (*domain.GeoPoint, error) {
	cacheKey := "geocode:" + place
	if s.cache != nil {
		if data, err := s.cache.Get(ctx, cacheKey); err == nil {
			var point domain.GeoPoint
			if err := json.Unmarshal(data, &point); err == nil {
				metrics.CacheHits.WithLabelValues("geocode").Inc()
				return &point, nil
			}
		}
		metrics.CacheMisses.WithLabelValues("geocode").Inc()
	}

	matches, err := s.geocoder.Search(ctx, place, 1)
	if err != nil {
		publishFailure(ctx, s.events, domain.UpstreamGeocoding, err)
		return nil, err
	}
	if len(matches) == 0 {
		return nil, domain.ErrPlaceNotFound
	}

	point := &domain.GeoPoint{Lat: matches[0].Lat, Lon: matches[0].Lon}

	// Only hits are cached; a miss may resolve once the upstream index updates.
	if s.cache != nil && s.cacheTTL > 0 {
		if data, err := json.Marshal(point); err == nil {
			_ = s.cache.Set(ctx, cacheKey, data, s.cacheTTL)
		}
	}

	return point, nil
}
