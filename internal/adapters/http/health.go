package http

import (
	"context"
	"runtime/debug"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/nats-io/nats.go"
)

const (
	checkOK            = "ok"
	checkNotConfigured = "not configured"
	readyProbeTimeout  = 3 * time.Second
)

// Readiness is the body of GET /ready.
type Readiness struct {
	Status string            `json:"status"` // "ready" | "not ready"
	Checks map[string]string `json:"checks"`
}

// buildVersion is the main module version stamped by the Go toolchain.
func buildVersion() string {
	if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" {
		return info.Main.Version
	}
	return "dev"
}

// HealthHandler reports liveness. It never touches dependencies.
func HealthHandler(deps *Dependencies) fiber.Handler {
	startedAt := time.Now()
	version := buildVersion()

	return func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "healthy",
			"uptime":  time.Since(startedAt).Round(time.Second).String(),
			"version": version,
		})
	}
}

// ReadyHandler probes the optional NATS and cache connections. A dependency
// that is not configured does not make the gateway unready; the upstream
// web services are never probed.
func ReadyHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx, cancel := context.WithTimeout(c.UserContext(), readyProbeTimeout)
		defer cancel()

		report := Readiness{Status: "ready", Checks: map[string]string{}}
		record := func(name, result string) {
			report.Checks[name] = result
			if result != checkOK && result != checkNotConfigured {
				report.Status = "not ready"
			}
		}
		record("nats", probeNATS(deps.NATS))
		record("cache", probeCache(ctx, deps.Cache))

		if report.Status != "ready" {
			return c.Status(fiber.StatusServiceUnavailable).JSON(report)
		}
		return c.JSON(report)
	}
}

func probeNATS(nc *nats.Conn) string {
	switch {
	case nc == nil:
		return checkNotConfigured
	case nc.IsConnected():
		return checkOK
	default:
		return "disconnected"
	}
}

func probeCache(ctx context.Context, p Pinger) string {
	if p == nil {
		return checkNotConfigured
	}
	if err := p.Ping(ctx); err != nil {
		return "error: " + err.Error()
	}
	return checkOK
}
