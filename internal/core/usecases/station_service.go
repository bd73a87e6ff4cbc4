package usecases

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"

	"github.com/samirrijal/evroute/internal/core/domain"
	"github.com/samirrijal/evroute/internal/core/ports"
	"github.com/samirrijal/evroute/internal/pkg/geospatial"
	"github.com/samirrijal/evroute/internal/pkg/metrics"
)

// StationService handles charging-station lookups.
type StationService struct {
	directory ports.StationDirectory
	cache     ports.CacheService
	events    ports.EventPublisher
	cacheTTL  int
}

// NewStationService creates a new StationService. cache and events may be nil.
func NewStationService(directory ports.StationDirectory, cache ports.CacheService, events ports.EventPublisher, cacheTTLSeconds int) *StationService {
	return &StationService{directory: directory, cache: cache, events: events, cacheTTL: cacheTTLSeconds}
}

// Nearby returns the stations around (lat, lon) that carry usable coordinates.
// The result is never nil.
func (s *StationService) Nearby(ctx context.Context, lat, lon string) ([]domain.StationSummary, error) {
	cacheKey := fmt.Sprintf("stations:nearby:%s:%s", lat, lon)
	if s.cache != nil {
		if data, err := s.cache.Get(ctx, cacheKey); err == nil {
			var stations []domain.StationSummary
			if err := json.Unmarshal(data, &stations); err == nil && stations != nil {
				metrics.CacheHits.WithLabelValues("stations").Inc()
				return stations, nil
			}
		}
		metrics.CacheMisses.WithLabelValues("stations").Inc()
	}

	points, err := s.directory.Nearby(ctx, lat, lon)
	if err != nil {
		publishFailure(ctx, s.events, domain.UpstreamStations, err)
		return nil, err
	}

	stations := SummarizeStations(points)

	if s.cache != nil && s.cacheTTL > 0 {
		if data, err := json.Marshal(stations); err == nil {
			_ = s.cache.Set(ctx, cacheKey, data, s.cacheTTL)
		}
	}

	return stations, nil
}

// SummarizeStations maps charge points to summaries, dropping records whose
// latitude or longitude is missing or zero.
func SummarizeStations(points []domain.ChargePoint) []domain.StationSummary {
	stations := make([]domain.StationSummary, 0, len(points))
	for _, p := range points {
		info := p.AddressInfo
		if info == nil || info.Latitude == nil || info.Longitude == nil {
			continue
		}
		if *info.Latitude == 0 || *info.Longitude == 0 {
			continue
		}
		stations = append(stations, domain.StationSummary{
			ID:      p.ID,
			Title:   info.Title,
			Lat:     *info.Latitude,
			Lon:     *info.Longitude,
			Address: info.AddressLine1,
		})
	}
	return stations
}

// SortByDistance orders stations by great-circle distance from origin, nearest first.
func SortByDistance(stations []domain.StationSummary, origin domain.GeoPoint) {
	sort.SliceStable(stations, func(i, j int) bool {
		di := geospatial.Haversine(origin.Lat, origin.Lon, stations[i].Lat, stations[i].Lon)
		dj := geospatial.Haversine(origin.Lat, origin.Lon, stations[j].Lat, stations[j].Lon)
		return di < dj
	})
}
