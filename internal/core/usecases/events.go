package usecases

import (
	"context"
	"log/slog"
	"time"

	"github.com/samirrijal/evroute/internal/core/domain"
	"github.com/samirrijal/evroute/internal/core/ports"
)

// publishFailure reports an upstream failure on the event bus. Never fails the caller.
func publishFailure(ctx context.Context, events ports.EventPublisher, upstream string, cause error) {
	if events == nil {
		return
	}
	event := &domain.UpstreamFailureEvent{
		Upstream: upstream,
		Detail:   cause.Error(),
		FailedAt: time.Now().UTC(),
	}
	if err := events.PublishUpstreamFailure(ctx, event); err != nil {
		slog.WarnContext(ctx, "publish upstream failure", "upstream", upstream, "error", err)
	}
}
