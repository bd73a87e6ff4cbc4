package natsadapter

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/samirrijal/evroute/internal/core/domain"
	"github.com/samirrijal/evroute/internal/pkg/metrics"
)

// Subjects published by the gateway.
const (
	SubjectRoutePlanned         = "evroute.route.planned"
	SubjectUpstreamFailedPrefix = "evroute.upstream.failed."
	SubjectAll                  = "evroute.>"
)

// StreamName is the JetStream stream holding gateway events.
const StreamName = "EVROUTE_EVENTS"

// Publisher implements ports.EventPublisher using NATS JetStream.
type Publisher struct {
	conn *nats.Conn
	js   nats.JetStreamContext
}

// NewPublisher connects to NATS and makes sure the event stream exists.
func NewPublisher(url string) (*Publisher, error) {
	conn, err := Connect(url)
	if err != nil {
		return nil, err
	}

	js, err := conn.JetStream(
		nats.PublishAsyncMaxPending(256),
		nats.PublishAsyncErrHandler(func(_ nats.JetStream, msg *nats.Msg, err error) {
			metrics.EventsPublished.WithLabelValues(eventKind(msg.Subject), "error").Inc()
			slog.Warn("event not acknowledged", "subject", msg.Subject, "error", err)
		}),
	)
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("jetstream: %w", err)
	}

	cfg := nats.StreamConfig{
		Name:      StreamName,
		Subjects:  []string{SubjectAll},
		Retention: nats.LimitsPolicy,
		MaxAge:    24 * time.Hour,
		Storage:   nats.FileStorage,
	}
	if _, err := js.AddStream(&cfg); err != nil {
		// Stream may already exist; update it instead.
		if _, err := js.UpdateStream(&cfg); err != nil {
			conn.Close()
			return nil, fmt.Errorf("ensure stream %s: %w", cfg.Name, err)
		}
	}

	return &Publisher{conn: conn, js: js}, nil
}

// Connect opens a plain NATS connection that keeps reconnecting.
func Connect(url string) (*nats.Conn, error) {
	conn, err := nats.Connect(url,
		nats.Name("evroute-gateway"),
		nats.RetryOnFailedConnect(true),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
	)
	if err != nil {
		return nil, fmt.Errorf("nats connect: %w", err)
	}
	return conn, nil
}

// PublishRoutePlanned and PublishUpstreamFailure do not wait for the JetStream
// ack, so a slow broker never delays an HTTP response.
func (p *Publisher) PublishRoutePlanned(_ context.Context, event *domain.RoutePlannedEvent) error {
	return p.publish(SubjectRoutePlanned, event)
}

func (p *Publisher) PublishUpstreamFailure(_ context.Context, event *domain.UpstreamFailureEvent) error {
	return p.publish(SubjectUpstreamFailedPrefix+event.Upstream, event)
}

func (p *Publisher) publish(subject string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	if _, err := p.js.PublishAsync(subject, data); err != nil {
		metrics.EventsPublished.WithLabelValues(eventKind(subject), "error").Inc()
		return fmt.Errorf("publish %s: %w", subject, err)
	}
	metrics.EventsPublished.WithLabelValues(eventKind(subject), "sent").Inc()
	return nil
}

func eventKind(subject string) string {
	if strings.HasPrefix(subject, SubjectUpstreamFailedPrefix) {
		return "upstream_failed"
	}
	return "route_planned"
}

// Conn exposes the underlying connection, e.g. for the WebSocket relay.
func (p *Publisher) Conn() *nats.Conn {
	return p.conn
}

// Close drains and closes the connection.
func (p *Publisher) Close() {
	_ = p.conn.Drain()
}
