package ports

import (
	"context"

	"github.com/samirrijal/evroute/internal/core/domain"
)

// EventPublisher publishes gateway events to a message broker.
type EventPublisher interface {
	PublishRoutePlanned(ctx context.Context, event *domain.RoutePlannedEvent) error
	PublishUpstreamFailure(ctx context.Context, event *domain.UpstreamFailureEvent) error
}

// CacheService provides read-through caching.
type CacheService interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttlSeconds int) error
	Delete(ctx context.Context, key string) error
}
