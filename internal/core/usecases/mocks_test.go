package usecases_test

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/samirrijal/evroute/internal/core/domain"
)

type mockRouting struct {
	routes []domain.RouteOption
	err    error
	calls  int
}

func (m *mockRouting) Routes(ctx context.Context, start, end domain.GeoPoint, alternatives bool) ([]domain.RouteOption, error) {
	m.calls++
	return m.routes, m.err
}

type mockDirectory struct {
	points []domain.ChargePoint
	err    error
	calls  int
}

func (m *mockDirectory) Nearby(ctx context.Context, lat, lon string) ([]domain.ChargePoint, error) {
	m.calls++
	return m.points, m.err
}

type mockGeocoder struct {
	matches []domain.GeocodeMatch
	err     error
	calls   int
}

func (m *mockGeocoder) Search(ctx context.Context, place string, limit int) ([]domain.GeocodeMatch, error) {
	m.calls++
	return m.matches, m.err
}

type mockEvents struct {
	mock.Mock
}

func (m *mockEvents) PublishRoutePlanned(ctx context.Context, event *domain.RoutePlannedEvent) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

func (m *mockEvents) PublishUpstreamFailure(ctx context.Context, event *domain.UpstreamFailureEvent) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

func ptr[T any](v T) *T { return &v }
