package openchargemap

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"math"
	"net/url"
	"strconv"
	"strings"

	"github.com/samirrijal/evroute/internal/adapters/upstream"
	"github.com/samirrijal/evroute/internal/core/domain"
)

// Query holds the fixed search parameters sent with every lookup.
type Query struct {
	APIKey       string
	Distance     int
	DistanceUnit string
	MaxResults   int
}

// Client implements ports.StationDirectory against the OpenChargeMap POI API.
type Client struct {
	baseURL string
	query   Query
	http    *upstream.Client
}

// NewClient creates a station directory client.
func NewClient(baseURL string, query Query, opts upstream.Options) *Client {
	return &Client{
		baseURL: baseURL,
		query:   query,
		http:    upstream.New(domain.UpstreamStations, opts),
	}
}

func (c *Client) searchURL(lat, lon string) (string, error) {
	u, err := url.Parse(c.baseURL)
	if err != nil {
		return "", fmt.Errorf("stations base url: %w", err)
	}
	q := u.Query()
	q.Set("latitude", lat)
	q.Set("longitude", lon)
	q.Set("distance", strconv.Itoa(c.query.Distance))
	q.Set("distanceunit", c.query.DistanceUnit)
	q.Set("maxresults", strconv.Itoa(c.query.MaxResults))
	q.Set("output", "json")
	if c.query.APIKey != "" {
		q.Set("key", c.query.APIKey)
	}
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// Nearby returns the charge points around (lat, lon). A valid JSON body that
// is not an array yields (nil, nil). Records are decoded one by one, so a
// record with an odd shape is skipped or loosened instead of failing the list.
func (c *Client) Nearby(ctx context.Context, lat, lon string) ([]domain.ChargePoint, error) {
	uri, err := c.searchURL(lat, lon)
	if err != nil {
		return nil, err
	}

	body, err := c.http.Get(ctx, uri)
	if err != nil {
		return nil, err
	}

	if !json.Valid(body) {
		return nil, fmt.Errorf("decode stations response: invalid JSON")
	}
	if trimmed := bytes.TrimSpace(body); len(trimmed) == 0 || trimmed[0] != '[' {
		return nil, nil
	}

	var records []json.RawMessage
	if err := json.Unmarshal(body, &records); err != nil {
		return nil, fmt.Errorf("decode stations response: %w", err)
	}

	points := make([]domain.ChargePoint, 0, len(records))
	skipped := 0
	for _, raw := range records {
		p, ok := decodePoint(raw)
		if !ok {
			skipped++
			continue
		}
		points = append(points, p)
	}
	if skipped > 0 {
		slog.DebugContext(ctx, "skipped station records that are not objects", "count", skipped)
	}
	return points, nil
}

// poiRecord and addressRecord keep every field raw so each can be read
// leniently.
type poiRecord struct {
	ID          json.RawMessage `json:"ID"`
	AddressInfo json.RawMessage `json:"AddressInfo"`
}

type addressRecord struct {
	Title        json.RawMessage `json:"Title"`
	Latitude     json.RawMessage `json:"Latitude"`
	Longitude    json.RawMessage `json:"Longitude"`
	AddressLine1 json.RawMessage `json:"AddressLine1"`
}

// decodePoint reads one POI record. It fails only when the record is not a
// JSON object; fields of the wrong type become nil.
func decodePoint(raw json.RawMessage) (domain.ChargePoint, bool) {
	if !isObject(raw) {
		return domain.ChargePoint{}, false
	}
	var rec poiRecord
	if err := json.Unmarshal(raw, &rec); err != nil {
		return domain.ChargePoint{}, false
	}

	p := domain.ChargePoint{ID: looseInt(rec.ID)}
	if !isObject(rec.AddressInfo) {
		return p, true
	}
	var addr addressRecord
	if err := json.Unmarshal(rec.AddressInfo, &addr); err != nil {
		return p, true
	}
	p.AddressInfo = &domain.AddressInfo{
		Title:        looseString(addr.Title),
		Latitude:     looseFloat(addr.Latitude),
		Longitude:    looseFloat(addr.Longitude),
		AddressLine1: looseString(addr.AddressLine1),
	}
	return p, true
}

func isObject(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) > 0 && trimmed[0] == '{'
}

func isNull(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null"))
}

// looseFloat accepts a JSON number or a numeric string.
func looseFloat(raw json.RawMessage) *float64 {
	if isNull(raw) {
		return nil
	}
	var f float64
	if err := json.Unmarshal(raw, &f); err != nil {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return nil
		}
		if f, err = strconv.ParseFloat(strings.TrimSpace(s), 64); err != nil {
			return nil
		}
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return nil
	}
	return &f
}

// looseInt accepts integers, integral floats such as 5.0 and numeric strings.
func looseInt(raw json.RawMessage) *int64 {
	if isNull(raw) {
		return nil
	}
	var n int64
	if err := json.Unmarshal(raw, &n); err == nil {
		return &n
	}
	f := looseFloat(raw)
	if f == nil || *f != math.Trunc(*f) || math.Abs(*f) > 1<<53 {
		return nil
	}
	n = int64(*f)
	return &n
}

func looseString(raw json.RawMessage) *string {
	if isNull(raw) {
		return nil
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return nil
	}
	return &s
}
