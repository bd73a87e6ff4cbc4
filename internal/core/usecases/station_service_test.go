package usecases_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/samirrijal/evroute/internal/adapters/memcache"
	"github.com/samirrijal/evroute/internal/core/domain"
	"github.com/samirrijal/evroute/internal/core/usecases"
)

func chargePoint(id int64, lat, lon *float64) domain.ChargePoint {
	return domain.ChargePoint{
		ID: ptr(id),
		AddressInfo: &domain.AddressInfo{
			Title:        ptr("Station"),
			Latitude:     lat,
			Longitude:    lon,
			AddressLine1: ptr("Street 1"),
		},
	}
}

func TestSummarizeStations(t *testing.T) {
	points := []domain.ChargePoint{
		chargePoint(1, ptr(52.5), ptr(13.4)),
		chargePoint(2, ptr(0.0), ptr(13.4)),
		chargePoint(3, ptr(52.5), ptr(0.0)),
		chargePoint(4, nil, ptr(13.4)),
		chargePoint(5, ptr(52.5), nil),
		{ID: ptr(int64(6))},
		chargePoint(7, ptr(-33.9), ptr(-70.6)),
	}

	got := usecases.SummarizeStations(points)
	require.Len(t, got, 2)
	assert.Equal(t, int64(1), *got[0].ID)
	assert.Equal(t, int64(7), *got[1].ID)
	assert.Equal(t, "Street 1", *got[0].Address)
	assert.Equal(t, -33.9, got[1].Lat)
}

func TestSummarizeStations_NeverNil(t *testing.T) {
	assert.NotNil(t, usecases.SummarizeStations(nil))
	assert.Empty(t, usecases.SummarizeStations(nil))
}

func TestSummarizeStations_OptionalFields(t *testing.T) {
	got := usecases.SummarizeStations([]domain.ChargePoint{
		{AddressInfo: &domain.AddressInfo{Latitude: ptr(1.0), Longitude: ptr(2.0)}},
	})
	require.Len(t, got, 1)
	assert.Nil(t, got[0].ID)
	assert.Nil(t, got[0].Title)
	assert.Nil(t, got[0].Address)
}

func TestSortByDistance(t *testing.T) {
	stations := []domain.StationSummary{
		{ID: ptr(int64(1)), Lat: 48.1351, Lon: 11.582}, // Munich
		{ID: ptr(int64(2)), Lat: 52.53, Lon: 13.41},    // Berlin centre
		{ID: ptr(int64(3)), Lat: 51.34, Lon: 12.37},    // Leipzig
	}

	usecases.SortByDistance(stations, berlin)

	ids := []int64{*stations[0].ID, *stations[1].ID, *stations[2].ID}
	assert.Equal(t, []int64{2, 3, 1}, ids)
}

func TestStationService_NearbyNoCache(t *testing.T) {
	dir := &mockDirectory{points: []domain.ChargePoint{chargePoint(1, ptr(52.5), ptr(13.4))}}
	svc := usecases.NewStationService(dir, nil, nil, 300)

	for i := 0; i < 2; i++ {
		got, err := svc.Nearby(context.Background(), "52.52", "13.405")
		require.NoError(t, err)
		assert.Len(t, got, 1)
	}
	assert.Equal(t, 2, dir.calls, "every request must reach the upstream without a cache")
}

func TestStationService_NearbyReadThroughCache(t *testing.T) {
	dir := &mockDirectory{points: []domain.ChargePoint{chargePoint(1, ptr(52.5), ptr(13.4))}}
	cache := memcache.New(0)
	svc := usecases.NewStationService(dir, cache, nil, 300)

	first, err := svc.Nearby(context.Background(), "52.52", "13.405")
	require.NoError(t, err)
	second, err := svc.Nearby(context.Background(), "52.52", "13.405")
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, 1, dir.calls)
	assert.Equal(t, 1, cache.Len())
}

func TestStationService_EmptyResultIsCached(t *testing.T) {
	dir := &mockDirectory{}
	cache := memcache.New(0)
	svc := usecases.NewStationService(dir, cache, nil, 300)

	for i := 0; i < 2; i++ {
		got, err := svc.Nearby(context.Background(), "1", "2")
		require.NoError(t, err)
		assert.NotNil(t, got)
		assert.Empty(t, got)
	}
	assert.Equal(t, 1, dir.calls)
}

func TestStationService_UpstreamFailure(t *testing.T) {
	cause := errors.New("stations upstream returned status 503")
	events := new(mockEvents)
	events.On("PublishUpstreamFailure", mock.Anything, mock.MatchedBy(func(e *domain.UpstreamFailureEvent) bool {
		return e.Upstream == domain.UpstreamStations
	})).Return(nil).Once()

	cache := memcache.New(0)
	svc := usecases.NewStationService(&mockDirectory{err: cause}, cache, events, 300)

	got, err := svc.Nearby(context.Background(), "52.52", "13.405")
	assert.Nil(t, got)
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, 0, cache.Len(), "failures must not be cached")
	events.AssertExpectations(t)
}
