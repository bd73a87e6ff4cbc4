package http

import (
	"github.com/gofiber/fiber/v2"
)

// CachingMiddleware sets a default Cache-Control on successful GET responses
// that did not set one. Error responses are never marked cacheable.
func CachingMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		err := c.Next()

		if c.Method() != fiber.MethodGet {
			return err
		}
		if c.Response().StatusCode() != fiber.StatusOK {
			c.Set(fiber.HeaderCacheControl, "no-store")
			return err
		}
		if existing := c.GetRespHeader(fiber.HeaderCacheControl); existing != "" {
			return err
		}

		var ttl string
		switch c.Path() {
		case "/geocode":
			ttl = "public, max-age=3600" // place names rarely move
		case "/stations":
			ttl = "public, max-age=300"
		case "/route":
			ttl = "public, max-age=60" // traffic-free, but keep short
		case "/health", "/ready", "/metrics":
			ttl = "no-cache"
		case "/docs", "/docs/openapi.yaml", "/docs/openapi.json":
			ttl = "public, max-age=3600"
		}

		if ttl != "" {
			c.Set(fiber.HeaderCacheControl, ttl)
		}
		return err
	}
}
