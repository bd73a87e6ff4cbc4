package nominatim

import (
	"bytes"
	"context"
	"fmt"
	"net/url"
	"strconv"

	"github.com/samirrijal/evroute/internal/adapters/upstream"
	"github.com/samirrijal/evroute/internal/core/domain"
)

// Client implements ports.Geocoder against a Nominatim /search endpoint.
type Client struct {
	baseURL string
	http    *upstream.Client
}

// NewClient creates a geocoding client.
func NewClient(baseURL string, opts upstream.Options) *Client {
	return &Client{
		baseURL: baseURL,
		http:    upstream.New(domain.UpstreamGeocoding, opts),
	}
}

// degrees accepts both "52.52" and 52.52. Nominatim sends strings.
type degrees float64

func (d *degrees) UnmarshalJSON(data []byte) error {
	data = bytes.Trim(data, `"`)
	v, err := strconv.ParseFloat(string(data), 64)
	if err != nil {
		return fmt.Errorf("coordinate %q: %w", data, err)
	}
	*d = degrees(v)
	return nil
}

type searchResult struct {
	Lat         degrees `json:"lat"`
	Lon         degrees `json:"lon"`
	DisplayName string  `json:"display_name"`
}

func (c *Client) searchURL(place string, limit int) (string, error) {
	u, err := url.Parse(c.baseURL)
	if err != nil {
		return "", fmt.Errorf("geocoding base url: %w", err)
	}
	q := u.Query()
	q.Set("q", place)
	q.Set("format", "json")
	q.Set("limit", strconv.Itoa(limit))
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// Search returns up to limit matches for place, best first.
func (c *Client) Search(ctx context.Context, place string, limit int) ([]domain.GeocodeMatch, error) {
	uri, err := c.searchURL(place, limit)
	if err != nil {
		return nil, err
	}

	var results []searchResult
	if err := c.http.GetJSON(ctx, uri, &results); err != nil {
		return nil, err
	}

	matches := make([]domain.GeocodeMatch, 0, len(results))
	for _, r := range results {
		matches = append(matches, domain.GeocodeMatch{
			Lat:         float64(r.Lat),
			Lon:         float64(r.Lon),
			DisplayName: r.DisplayName,
		})
	}
	return matches, nil
}
