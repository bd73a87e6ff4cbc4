package http

import (
	"context"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/samirrijal/evroute/internal/core/usecases"
)

// Pinger is a dependency that can report its health.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Dependencies holds all services needed by HTTP handlers.
type Dependencies struct {
	Routes   *usecases.RouteService
	Stations *usecases.StationService
	Geocode  *usecases.GeocodeService
	NATS     *nats.Conn // optional, feeds /ws
	Cache    Pinger     // optional, checked by /ready
}

// RouterConfig tunes the middleware chain.
type RouterConfig struct {
	AllowOrigins   string        // CORS origins, "*" for any
	RateLimit      int           // requests per minute per IP, 0 disables
	RequestTimeout time.Duration // per-request budget for gateway endpoints
}
