package http

import (
	"github.com/nats-io/nats.go"

	"github.com/samirrijal/mtlmap/internal/core/ports"
	"github.com/samirrijal/mtlmap/internal/core/usecases"
)

// Dependencies holds all services needed by HTTP handlers.
type Dependencies struct {
	Boundaries *usecases.BoundaryService
	Buildings  *usecases.BuildingService
	LandUse    *usecases.LandUseService
	Zonage     *usecases.ZonageService
	NATS       *nats.Conn
	Storage    ports.Pinger
	Cache      ports.Pinger
	Version    string
}
