package http

import (
	"strings"

	"github.com/gofiber/fiber/v2"
)

// CachingMiddleware sets Cache-Control headers on GET responses based on endpoint.
// Adds sensible defaults if not already set by the handler.
func CachingMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		err := c.Next()

		// Only set on GET requests
		if c.Method() != "GET" {
			return err
		}

		// Don't override if already set
		if existing := c.Get("Cache-Control"); existing != "" {
			return err
		}

		// Errors are never cached
		if c.Response().StatusCode() >= 400 {
			c.Set("Cache-Control", "no-store")
			return err
		}

		path := c.Path()
		var ttl string

		switch {
		case path == "/health" || path == "/ready" || path == "/health/db":
			ttl = "no-cache"

		case path == "/metrics":
			ttl = "no-cache"

		case path == "/api/arrondissements" || path == "/api/zonage/arrondissements" ||
			path == "/api/zonage/zone-codes" || path == "/api/admin-boundaries/all/geojson":
			ttl = "public, max-age=3600" // reference data changes only on import

		case strings.HasSuffix(path, "/at-point"):
			ttl = "public, max-age=600"

		case strings.HasPrefix(path, "/api/"):
			ttl = "public, max-age=300"
		}

		if ttl != "" {
			c.Set("Cache-Control", ttl)
		}

		return err
	}
}
