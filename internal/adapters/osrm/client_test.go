package osrm

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/samirrijal/evroute/internal/adapters/upstream"
	"github.com/samirrijal/evroute/internal/core/domain"
)

const twoRoutes = `{
	"code": "Ok",
	"routes": [
		{"distance": 584321.4, "duration": 20410.2, "geometry": {"type": "LineString", "coordinates": [[13.405, 52.52], [11.582, 48.1351]]}},
		{"distance": 601002.0, "duration": 21877.9, "geometry": {"type": "LineString", "coordinates": [[13.405, 52.52], [12.1, 50.0], [11.582, 48.1351]]}}
	]
}`

func TestClient_RouteURL_SwapsToLonLat(t *testing.T) {
	c := NewClient("https://router.example/route/v1/driving/", upstream.Options{})

	start := domain.GeoPoint{Lat: 52.52, Lon: 13.405}
	end := domain.GeoPoint{Lat: 48.1351, Lon: 11.582}

	got := c.RouteURL(start, end, true)
	want := "https://router.example/route/v1/driving/13.405,52.52;11.582,48.1351?overview=full&geometries=geojson&alternatives=true"
	assert.Equal(t, want, got)

	got = c.RouteURL(start, end, false)
	assert.Contains(t, got, "alternatives=false")
}

func TestClient_Routes(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// The path carries lon,lat pairs while the caller gave lat,lon.
		assert.Equal(t, "/route/v1/driving/13.405,52.52;11.582,48.1351", r.URL.Path)
		q := r.URL.Query()
		assert.Equal(t, "full", q.Get("overview"))
		assert.Equal(t, "geojson", q.Get("geometries"))
		assert.Equal(t, "true", q.Get("alternatives"))
		w.Write([]byte(twoRoutes))
	}))
	defer server.Close()

	c := NewClient(server.URL+"/route/v1/driving", upstream.Options{Timeout: time.Second})
	routes, err := c.Routes(context.Background(),
		domain.GeoPoint{Lat: 52.52, Lon: 13.405},
		domain.GeoPoint{Lat: 48.1351, Lon: 11.582},
		true,
	)
	require.NoError(t, err)
	require.Len(t, routes, 2)

	assert.Equal(t, 584321.4, routes[0].DistanceM)
	assert.Equal(t, 20410.2, routes[0].DurationS)
	assert.JSONEq(t, `{"type":"LineString","coordinates":[[13.405,52.52],[11.582,48.1351]]}`, string(routes[0].Geometry))
	assert.Equal(t, 601002.0, routes[1].DistanceM)
}

func TestClient_Routes_NoRoute(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"code":"Ok","routes":[]}`))
	}))
	defer server.Close()

	c := NewClient(server.URL, upstream.Options{Timeout: time.Second})
	routes, err := c.Routes(context.Background(), domain.GeoPoint{Lat: 1, Lon: 2}, domain.GeoPoint{Lat: 3, Lon: 4}, true)
	require.NoError(t, err)
	assert.Empty(t, routes)
}

func TestClient_Routes_UpstreamError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"code":"InvalidQuery"}`))
	}))
	defer server.Close()

	c := NewClient(server.URL, upstream.Options{Timeout: time.Second})
	_, err := c.Routes(context.Background(), domain.GeoPoint{Lat: 1, Lon: 2}, domain.GeoPoint{Lat: 3, Lon: 4}, true)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 400")
}
