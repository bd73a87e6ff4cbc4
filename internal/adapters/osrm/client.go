package osrm

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/samirrijal/evroute/internal/adapters/upstream"
	"github.com/samirrijal/evroute/internal/core/domain"
)

// Client implements ports.RoutingClient against an OSRM /route/v1/<profile> endpoint.
type Client struct {
	baseURL string
	http    *upstream.Client
}

// NewClient creates a routing client. baseURL is e.g.
// "https://router.project-osrm.org/route/v1/driving".
func NewClient(baseURL string, opts upstream.Options) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    upstream.New(domain.UpstreamRouting, opts),
	}
}

type routeResponse struct {
	Code   string       `json:"code"`
	Routes []routeEntry `json:"routes"`
}

type routeEntry struct {
	Distance float64         `json:"distance"`
	Duration float64         `json:"duration"`
	Geometry json.RawMessage `json:"geometry"`
}

// RouteURL builds the request URL. OSRM takes lon,lat; callers pass lat,lon points.
func (c *Client) RouteURL(start, end domain.GeoPoint, alternatives bool) string {
	return fmt.Sprintf("%s/%s;%s?overview=full&geometries=geojson&alternatives=%t",
		c.baseURL, start.LonLat(), end.LonLat(), alternatives)
}

// Routes fetches driving routes from start to end.
func (c *Client) Routes(ctx context.Context, start, end domain.GeoPoint, alternatives bool) ([]domain.RouteOption, error) {
	var resp routeResponse
	if err := c.http.GetJSON(ctx, c.RouteURL(start, end, alternatives), &resp); err != nil {
		return nil, err
	}

	routes := make([]domain.RouteOption, 0, len(resp.Routes))
	for _, r := range resp.Routes {
		geometry := r.Geometry
		if len(geometry) == 0 {
			geometry = json.RawMessage("null")
		}
		routes = append(routes, domain.RouteOption{
			DistanceM: r.Distance,
			DurationS: r.Duration,
			Geometry:  geometry,
		})
	}
	return routes, nil
}
