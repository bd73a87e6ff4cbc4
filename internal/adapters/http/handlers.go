package http

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/samirrijal/evroute/internal/core/domain"
	"github.com/samirrijal/evroute/internal/core/usecases"
)

// StationsResponse is the body of GET /stations.
type StationsResponse struct {
	Stations []domain.StationSummary `json:"stations"`
}

// RouteHandler plans a route between two coordinates.
// GET /route?start=52.52,13.405&end=48.1351,11.582&blocked=true
func RouteHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		startRaw := c.Query("start")
		endRaw := c.Query("end")
		if startRaw == "" || endRaw == "" {
			return errBadRequest(c, "missing start or end")
		}

		start, err := domain.ParseGeoPoint(startRaw)
		if err != nil {
			return errBadRequest(c, "bad start/end format; expected lat,lon")
		}
		end, err := domain.ParseGeoPoint(endRaw)
		if err != nil {
			return errBadRequest(c, "bad start/end format; expected lat,lon")
		}

		blocked := strings.EqualFold(c.Query("blocked", "false"), "true")

		plan, err := deps.Routes.Plan(c.UserContext(), start, end, blocked)
		if errors.Is(err, domain.ErrNoRoutes) {
			return errNotFound(c, "no routes found")
		}
		if err != nil {
			return errUpstream(c, "routing error", err)
		}

		return c.JSON(plan)
	}
}

// StationsHandler lists charging stations around a point.
// GET /stations?lat=52.52&lon=13.405[&sort=distance]
func StationsHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		lat := c.Query("lat")
		lon := c.Query("lon")
		if lat == "" || lon == "" {
			return errBadRequest(c, "lat,lon required")
		}

		ctx := c.UserContext()
		stations, err := deps.Stations.Nearby(ctx, lat, lon)
		if err != nil {
			LoggerFromCtx(ctx).Warn("station lookup failed",
				"lat", lat,
				"lon", lon,
				"error", err,
			)
			return errUpstream(c, "station lookup failed", err)
		}

		if strings.EqualFold(c.Query("sort"), "distance") {
			// lat/lon are only validated for presence; sort only when they parse.
			if origin, err := domain.ParseGeoPoint(lat + "," + lon); err == nil {
				usecases.SortByDistance(stations, origin)
			}
		}

		return c.JSON(StationsResponse{Stations: stations})
	}
}

// GeocodeHandler resolves a place name to coordinates.
// GET /geocode?place=Berlin
func GeocodeHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		place := c.Query("place")
		if place == "" {
			return errBadRequest(c, "missing place")
		}

		point, err := deps.Geocode.Lookup(c.UserContext(), place)
		if errors.Is(err, domain.ErrPlaceNotFound) {
			return errNotFound(c, "not found")
		}
		if err != nil {
			return errUpstream(c, "geocoding failed", err)
		}

		return c.JSON(point)
	}
}
