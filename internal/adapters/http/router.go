package http

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/gofiber/fiber/v2/middleware/timeout"
	"github.com/gofiber/websocket/v2"

	"github.com/samirrijal/mtlmap/internal/pkg/metrics"
)

// requestTimeout bounds every data endpoint.
const requestTimeout = 15 * time.Second

// SetupRoutes registers all REST, GraphQL, and WebSocket routes.
func SetupRoutes(app *fiber.App, deps *Dependencies) {
	// Prometheus metrics
	app.Use(metrics.Middleware())
	app.Get("/metrics", metrics.Handler())

	// Response compression (gzip)
	app.Use(compress.New(compress.Config{
		Level: compress.LevelBestSpeed,
	}))

	// Request ID
	app.Use(requestid.New())

	// Propagate request ID into slog context
	app.Use(RequestIDLogMiddleware())

	// One span per request
	app.Use(TracingMiddleware())

	// Access logs (structured HTTP request logging)
	app.Use(AccessLogMiddleware())

	// Rate limiting: 600 requests per minute per IP. Map panning issues
	// several bounding-box queries per gesture.
	app.Use(limiter.New(limiter.Config{
		Max:        600,
		Expiration: 1 * time.Minute,
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return newError(c, 429, "rate_limited", "too many requests, please try again later")
		},
	}))

	// Security headers + API version
	app.Use(func(c *fiber.Ctx) error {
		c.Set("X-Content-Type-Options", "nosniff")
		c.Set("X-Frame-Options", "DENY")
		c.Set("Referrer-Policy", "strict-origin-when-cross-origin")
		c.Set("X-API-Version", "1.0.0")
		return c.Next()
	})

	// ETag for conditional caching
	app.Use(ETagMiddleware())

	// Default Cache-Control headers
	app.Use(CachingMiddleware())

	app.Use(DeprecationMiddleware(deprecatedRoutes))

	// Health & readiness (no timeout, fast internal checks)
	app.Get("/health", HealthHandler(deps))
	app.Get("/ready", ReadyHandler(deps))
	app.Get("/health/db", DBHealthHandler(deps))

	api := app.Group("/api")
	get := func(path string, h fiber.Handler) {
		api.Get(path, timeout.NewWithContext(h, requestTimeout))
	}

	get("/admin-boundaries/search/geojson", BoundariesInBoxHandler(deps))
	get("/admin-boundaries/all/geojson", AllBoundariesHandler(deps))
	get("/arrondissements", ArrondissementsHandler(deps))

	// Static building paths must precede /buildings/:id.
	get("/buildings/search", SearchBuildingsHandler(deps))
	get("/buildings/search/geojson", BuildingPointsHandler(deps))
	get("/buildings/search/geojson/full", BuildingsFullHandler(deps))
	get("/buildings/search/geojson/footprints", BuildingFootprintsHandler(deps))
	get("/buildings/search/geojson/polygons", PropertyPolygonsHandler(deps))
	get("/buildings/search/geojsonsearch-polygons", PropertyPolygonsHandler(deps))
	get("/buildings/open-data/search/geojson", OpenDataBuildingsHandler(deps))
	get("/buildings/:id", GetBuildingHandler(deps))

	get("/land-use/at-point", LandUseAtPointHandler(deps))
	get("/land-use/search/geojson", LandUseInBoxHandler(deps))

	get("/zonage/at-point", ZonageAtPointHandler(deps))
	get("/zonage/search/geojson", ZonageInBoxHandler(deps))
	get("/zonage/arrondissements", ZonageArrondissementsHandler(deps))
	get("/zonage/zone-codes", ZoneCodesHandler(deps))

	get("/zonage-tab/at-point", ZoneCodeAtPointHandler(deps))

	// GraphQL
	app.Post("/graphql", GraphQLHandler(deps))

	// API documentation (Swagger UI)
	SetupDocs(app)

	// WebSocket relay of dataset events; needs NATS.
	if deps.NATS != nil {
		app.Use("/ws", func(c *fiber.Ctx) error {
			if websocket.IsWebSocketUpgrade(c) {
				return c.Next()
			}
			return fiber.ErrUpgradeRequired
		})
		app.Get("/ws", websocket.New(WebSocketHandler(deps.NATS)))
	}
}
