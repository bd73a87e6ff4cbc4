package nominatim

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/samirrijal/evroute/internal/adapters/upstream"
)

func TestClient_Search(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/search", r.URL.Path)
		q := r.URL.Query()
		assert.Equal(t, "Brandenburger Tor, Berlin", q.Get("q"))
		assert.Equal(t, "json", q.Get("format"))
		assert.Equal(t, "1", q.Get("limit"))
		assert.Equal(t, "EVRoutePlanner/1.0", r.Header.Get("User-Agent"))

		w.Write([]byte(`[{"place_id": 1, "lat": "52.5162746", "lon": "13.3777041", "display_name": "Brandenburger Tor, Pariser Platz, Berlin"}]`))
	}))
	defer server.Close()

	c := NewClient(server.URL+"/search", upstream.Options{Timeout: time.Second, UserAgent: "EVRoutePlanner/1.0"})
	matches, err := c.Search(context.Background(), "Brandenburger Tor, Berlin", 1)
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, 52.5162746, matches[0].Lat)
	assert.Equal(t, 13.3777041, matches[0].Lon)
	assert.Equal(t, "Brandenburger Tor, Pariser Platz, Berlin", matches[0].DisplayName)
}

func TestClient_Search_NumericCoordinates(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[{"lat": 48.1351, "lon": 11.582}]`))
	}))
	defer server.Close()

	c := NewClient(server.URL, upstream.Options{Timeout: time.Second})
	matches, err := c.Search(context.Background(), "München", 1)
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, 48.1351, matches[0].Lat)
}

func TestClient_Search_Empty(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[]`))
	}))
	defer server.Close()

	c := NewClient(server.URL, upstream.Options{Timeout: time.Second})
	matches, err := c.Search(context.Background(), "nowhere-at-all", 1)
	require.NoError(t, err)
	assert.Empty(t, matches)
}

func TestClient_Search_BadCoordinate(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[{"lat": "north", "lon": "13.4"}]`))
	}))
	defer server.Close()

	c := NewClient(server.URL, upstream.Options{Timeout: time.Second})
	_, err := c.Search(context.Background(), "x", 1)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decode geocoding response")
}
