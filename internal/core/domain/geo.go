package domain

import (
	"errors"
	"math"
	"strconv"
	"strings"
)

// ErrBadCoordinate is returned when a "lat,lon" string cannot be parsed.
var ErrBadCoordinate = errors.New("bad coordinate; expected lat,lon")

// GeoPoint represents a geographic coordinate (WGS 84).
type GeoPoint struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// ParseGeoPoint parses a "lat,lon" pair. Both parts must be finite floats.
func ParseGeoPoint(raw string) (GeoPoint, error) {
	parts := strings.Split(raw, ",")
	if len(parts) != 2 {
		return GeoPoint{}, ErrBadCoordinate
	}

	lat, err := parseDegrees(parts[0])
	if err != nil {
		return GeoPoint{}, ErrBadCoordinate
	}
	lon, err := parseDegrees(parts[1])
	if err != nil {
		return GeoPoint{}, ErrBadCoordinate
	}
	return GeoPoint{Lat: lat, Lon: lon}, nil
}

func parseDegrees(s string) (float64, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, ErrBadCoordinate
	}
	return v, nil
}

// LonLat formats the point in the lon,lat order used by OSRM.
func (p GeoPoint) LonLat() string {
	return strconv.FormatFloat(p.Lon, 'f', -1, 64) + "," + strconv.FormatFloat(p.Lat, 'f', -1, 64)
}
