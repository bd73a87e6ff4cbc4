package domain

import (
	"encoding/json"
	"errors"
	"time"
)

var (
	// ErrNoRoutes means the routing engine answered but found no route.
	ErrNoRoutes = errors.New("no routes found")

	// ErrPlaceNotFound means the geocoder returned no match.
	ErrPlaceNotFound = errors.New("place not found")
)

// RouteOption is one driving route as returned by the routing engine.
type RouteOption struct {
	DistanceM float64         `json:"distance_m"`
	DurationS float64         `json:"duration_s"`
	Geometry  json.RawMessage `json:"geometry"` // GeoJSON LineString, passed through
}

// RoutePlan is the route bundle returned to the planner.
type RoutePlan struct {
	Chosen           RouteOption  `json:"chosen"`
	Primary          RouteOption  `json:"primary"`
	Alternative      *RouteOption `json:"alternative"`
	BlockedSimulated bool         `json:"blocked_simulated"`
}

// AddressInfo is the location block of a charge point record.
// Every field is optional upstream.
type AddressInfo struct {
	Title        *string  `json:"Title"`
	Latitude     *float64 `json:"Latitude"`
	Longitude    *float64 `json:"Longitude"`
	AddressLine1 *string  `json:"AddressLine1"`
}

// ChargePoint is a raw point of interest from the charging-station directory.
type ChargePoint struct {
	ID          *int64       `json:"ID"`
	AddressInfo *AddressInfo `json:"AddressInfo"`
}

// StationSummary is the simplified station sent to clients.
type StationSummary struct {
	ID      *int64  `json:"id"`
	Title   *string `json:"title"`
	Lat     float64 `json:"lat"`
	Lon     float64 `json:"lon"`
	Address *string `json:"address"`
}

// GeocodeMatch is a single geocoder hit.
type GeocodeMatch struct {
	Lat         float64 `json:"lat"`
	Lon         float64 `json:"lon"`
	DisplayName string  `json:"display_name,omitempty"`
}

// RoutePlannedEvent is published after a successful /route call.
type RoutePlannedEvent struct {
	Start            GeoPoint  `json:"start"`
	End              GeoPoint  `json:"end"`
	RoutesFound      int       `json:"routes_found"`
	BlockedSimulated bool      `json:"blocked_simulated"`
	ChosenDistanceM  float64   `json:"chosen_distance_m"`
	ChosenDurationS  float64   `json:"chosen_duration_s"`
	PlannedAt        time.Time `json:"planned_at"`
}

// UpstreamFailureEvent is published when an upstream call fails.
type UpstreamFailureEvent struct {
	Upstream string    `json:"upstream"`
	Detail   string    `json:"detail"`
	FailedAt time.Time `json:"failed_at"`
}

// Upstream service names, used in metrics, spans, events and logs.
const (
	UpstreamRouting   = "routing"
	UpstreamStations  = "stations"
	UpstreamGeocoding = "geocoding"
)
