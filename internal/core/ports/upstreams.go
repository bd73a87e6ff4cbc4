package ports

import (
	"context"

	"github.com/samirrijal/evroute/internal/core/domain"
)

// RoutingClient fetches driving routes between two points.
type RoutingClient interface {
	// Routes returns the upstream routes in upstream order. The first one is the primary route.
	Routes(ctx context.Context, start, end domain.GeoPoint, alternatives bool) ([]domain.RouteOption, error)
}

// StationDirectory looks up charge points around a location.
type StationDirectory interface {
	// Nearby returns raw charge points. lat and lon are forwarded unparsed.
	// A nil slice with a nil error means the upstream did not answer with a list.
	Nearby(ctx context.Context, lat, lon string) ([]domain.ChargePoint, error)
}

// Geocoder resolves place names to coordinates.
type Geocoder interface {
	Search(ctx context.Context, place string, limit int) ([]domain.GeocodeMatch, error)
}
