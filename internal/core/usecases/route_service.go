package usecases

import (
	"context"
	"log/slog"
	"time"

	"github.com/samirrijal/evroute/internal/core/domain"
	"github.com/samirrijal/evroute/internal/core/ports"
)

// RouteService plans driving routes through the routing engine.
type RouteService struct {
	routing ports.RoutingClient
	events  ports.EventPublisher
}

// NewRouteService creates a new RouteService. events may be nil.
func NewRouteService(routing ports.RoutingClient, events ports.EventPublisher) *RouteService {
	return &RouteService{routing: routing, events: events}
}

// Plan asks the routing engine for alternatives between start and end and
// applies the blocked-road simulation. Returns domain.ErrNoRoutes when the
// engine found nothing.
func (s *RouteService) Plan(ctx context.Context, start, end domain.GeoPoint, blocked bool) (*domain.RoutePlan, error) {
	routes, err := s.routing.Routes(ctx, start, end, true)
	if err != nil {
		publishFailure(ctx, s.events, domain.UpstreamRouting, err)
		return nil, err
	}
	if len(routes) == 0 {
		return nil, domain.ErrNoRoutes
	}

	plan := SelectRoutes(routes, blocked)

	if s.events != nil {
		event := &domain.RoutePlannedEvent{
			Start:            start,
			End:              end,
			RoutesFound:      len(routes),
			BlockedSimulated: blocked,
			ChosenDistanceM:  plan.Chosen.DistanceM,
			ChosenDurationS:  plan.Chosen.DurationS,
			PlannedAt:        time.Now().UTC(),
		}
		if err := s.events.PublishRoutePlanned(ctx, event); err != nil {
			slog.WarnContext(ctx, "publish route planned", "error", err)
		}
	}

	return plan, nil
}

// SelectRoutes builds a plan from a non-empty route list.
// Primary is always routes[0]. When blocked and an alternative exists, the
// alternative becomes the chosen route.
func SelectRoutes(routes []domain.RouteOption, blocked bool) *domain.RoutePlan {
	plan := &domain.RoutePlan{
		Chosen:           routes[0],
		Primary:          routes[0],
		BlockedSimulated: blocked,
	}
	if len(routes) > 1 {
		alt := routes[1]
		plan.Alternative = &alt
		if blocked {
			plan.Chosen = alt
		}
	}
	return plan
}
