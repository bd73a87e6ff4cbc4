package upstream

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/valyala/fasthttp"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/samirrijal/evroute/internal/pkg/metrics"
	"github.com/samirrijal/evroute/internal/pkg/telemetry"
)

// StatusError is returned when an upstream answers with a non-2xx status.
type StatusError struct {
	Upstream   string
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s upstream returned status %d", e.Upstream, e.StatusCode)
}

// ErrTimeout wraps calls that did not complete within the configured timeout.
var ErrTimeout = errors.New("upstream timeout")

// Options configures a Client.
type Options struct {
	Timeout   time.Duration // 0 means no per-call timeout
	UserAgent string
}

// Client issues single GET requests to one upstream and decodes JSON bodies.
// It is safe for concurrent use.
type Client struct {
	name      string
	http      *fasthttp.Client
	timeout   time.Duration
	userAgent string
}

// shared keeps one connection pool for all upstreams.
var shared = &fasthttp.Client{
	Name:                "evroute",
	MaxConnsPerHost:     128,
	MaxIdleConnDuration: 30 * time.Second,
}

// New creates a Client for the named upstream.
func New(name string, opts Options) *Client {
	return &Client{
		name:      name,
		http:      shared,
		timeout:   opts.Timeout,
		userAgent: opts.UserAgent,
	}
}

// GetJSON performs one GET and unmarshals the body into out.
// There are no retries.
func (c *Client) GetJSON(ctx context.Context, uri string, out any) error {
	body, err := c.Get(ctx, uri)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("decode %s response: %w", c.name, err)
	}
	return nil
}

// Get performs one GET and returns the raw body of a 2xx response.
func (c *Client) Get(ctx context.Context, uri string) ([]byte, error) {
	ctx, span := telemetry.Tracer().Start(ctx, c.name+".get",
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(telemetry.AttrUpstream.String(c.name)),
	)
	defer span.End()

	req := fasthttp.AcquireRequest()
	defer fasthttp.ReleaseRequest(req)
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(uri)
	req.Header.SetMethod(fasthttp.MethodGet)
	req.Header.Set(fasthttp.HeaderAccept, "application/json")
	if c.userAgent != "" {
		req.Header.SetUserAgent(c.userAgent)
	}

	start := time.Now()
	err := c.do(ctx, req, resp)
	elapsed := time.Since(start)

	if err != nil {
		outcome := "error"
		if errors.Is(err, fasthttp.ErrTimeout) || errors.Is(err, context.DeadlineExceeded) {
			outcome = "timeout"
			err = fmt.Errorf("%w: %s after %s", ErrTimeout, c.name, c.timeout)
		} else {
			err = fmt.Errorf("%s request: %w", c.name, err)
		}
		c.finish(span, outcome, 0, elapsed, err)
		return nil, err
	}

	status := resp.StatusCode()
	if status < 200 || status > 299 {
		err := &StatusError{Upstream: c.name, StatusCode: status}
		c.finish(span, "status", status, elapsed, err)
		return nil, err
	}

	c.finish(span, "ok", status, elapsed, nil)

	// resp is released on return; copy the body out.
	return append([]byte(nil), resp.Body()...), nil
}

func (c *Client) do(ctx context.Context, req *fasthttp.Request, resp *fasthttp.Response) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	deadline, hasDeadline := ctx.Deadline()
	if c.timeout > 0 {
		if own := time.Now().Add(c.timeout); !hasDeadline || own.Before(deadline) {
			deadline, hasDeadline = own, true
		}
	}
	if hasDeadline {
		return c.http.DoDeadline(req, resp, deadline)
	}
	return c.http.Do(req, resp)
}

func (c *Client) finish(span trace.Span, outcome string, status int, elapsed time.Duration, err error) {
	metrics.ObserveUpstream(c.name, outcome, elapsed)
	span.SetAttributes(telemetry.AttrOutcome.String(outcome))
	if status != 0 {
		span.SetAttributes(telemetry.AttrHTTPStatus.Int(status))
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
}
