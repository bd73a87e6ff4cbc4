package openchargemap

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

var defaultQuery = Query{APIKey: "test-key", Distance: 100, DistanceUnit: "KM", MaxResults: 25}

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return NewClient(server.URL+"/v3/poi/", defaultQuery, upstream.Options{
		Timeout:   time.Second,
		UserAgent: "EVRoutePlanner/1.0 (https://evroute.local)",
	})
}

func TestClient_Nearby_QueryAndHeaders(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v3/poi/", r.URL.Path)
		q := r.URL.Query()
		assert.Equal(t, "52.52", q.Get("latitude"))
		assert.Equal(t, "13.405", q.Get("longitude"))
		assert.Equal(t, "100", q.Get("distance"))
		assert.Equal(t, "KM", q.Get("distanceunit"))
		assert.Equal(t, "25", q.Get("maxresults"))
		assert.Equal(t, "json", q.Get("output"))
		assert.Equal(t, "test-key", q.Get("key"))
		assert.Equal(t, "EVRoutePlanner/1.0 (https://evroute.local)", r.Header.Get("User-Agent"))

		w.Write([]byte(`[
			{"ID": 101, "AddressInfo": {"Title": "Alexanderplatz", "Latitude": 52.5219, "Longitude": 13.4132, "AddressLine1": "Alexanderstr. 1"}},
			{"ID": 102, "AddressInfo": null},
			{"ID": 103}
		]`))
	})

	points, err := c.Nearby(context.Background(), "52.52", "13.405")
	require.NoError(t, err)
	require.Len(t, points, 3)

	require.NotNil(t, points[0].ID)
	assert.Equal(t, int64(101), *points[0].ID)
	require.NotNil(t, points[0].AddressInfo)
	assert.Equal(t, "Alexanderplatz", *points[0].AddressInfo.Title)
	assert.Equal(t, 52.5219, *points[0].AddressInfo.Latitude)
	assert.Nil(t, points[1].AddressInfo)
	assert.Nil(t, points[2].AddressInfo)
}

func TestClient_Nearby_OddRecordsDoNotFailTheList(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[
			{"ID": 1, "AddressInfo": {"Title": "Good", "Latitude": 52.5, "Longitude": 13.4}},
			{"ID": 5.0, "AddressInfo": {"Latitude": 1, "Longitude": 1}},
			{"ID": "abc", "AddressInfo": {"Title": 42, "Latitude": "52.6", "Longitude": " 13.5 ", "AddressLine1": ["x"]}},
			{"ID": 9, "AddressInfo": "somewhere"},
			42,
			"not a record",
			null
		]`))
	})

	points, err := c.Nearby(context.Background(), "52.52", "13.405")
	require.NoError(t, err)
	require.Len(t, points, 4)

	require.NotNil(t, points[0].ID)
	assert.Equal(t, int64(1), *points[0].ID)
	assert.Equal(t, "Good", *points[0].AddressInfo.Title)

	require.NotNil(t, points[1].ID, "integral float IDs are kept")
	assert.Equal(t, int64(5), *points[1].ID)
	assert.Equal(t, 1.0, *points[1].AddressInfo.Latitude)

	assert.Nil(t, points[2].ID)
	require.NotNil(t, points[2].AddressInfo)
	assert.Nil(t, points[2].AddressInfo.Title)
	assert.Nil(t, points[2].AddressInfo.AddressLine1)
	require.NotNil(t, points[2].AddressInfo.Latitude, "numeric string latitude is kept")
	assert.Equal(t, 52.6, *points[2].AddressInfo.Latitude)
	assert.Equal(t, 13.5, *points[2].AddressInfo.Longitude)

	assert.Equal(t, int64(9), *points[3].ID)
	assert.Nil(t, points[3].AddressInfo)
}

func TestLooseFloat(t *testing.T) {
	assert.Nil(t, looseFloat(nil))
	assert.Nil(t, looseFloat([]byte("null")))
	assert.Nil(t, looseFloat([]byte(`"north"`)))
	assert.Nil(t, looseFloat([]byte(`"NaN"`)))
	assert.Nil(t, looseFloat([]byte("true")))
	assert.Equal(t, 0.0, *looseFloat([]byte("0")))
	assert.Equal(t, -3.25, *looseFloat([]byte(`"-3.25"`)))
}

func TestLooseInt(t *testing.T) {
	assert.Nil(t, looseInt([]byte("5.5")))
	assert.Nil(t, looseInt([]byte("{}")))
	assert.Equal(t, int64(123456789), *looseInt([]byte("123456789")))
	assert.Equal(t, int64(7), *looseInt([]byte(`"7"`)))
}

func TestClient_Nearby_NotAList(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"message": "rate limited"}`))
	})

	points, err := c.Nearby(context.Background(), "1", "2")
	require.NoError(t, err)
	assert.Nil(t, points)
}

func TestClient_Nearby_MalformedBody(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[{"ID": 1,`))
	})

	_, err := c.Nearby(context.Background(), "1", "2")
	require.Error(t, err)
}

func TestClient_Nearby_Unauthorized_DoesNotLeakKey(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	})

	_, err := c.Nearby(context.Background(), "1", "2")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 403")
	assert.NotContains(t, err.Error(), "test-key")
}
