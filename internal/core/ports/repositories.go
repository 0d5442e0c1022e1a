package ports

import (
	"context"

	"github.com/samirrijal/mtlmap/internal/core/domain"
	"github.com/samirrijal/mtlmap/internal/pkg/geospatial"
)

// AdminBoundaryRepository reads administrative boundaries.
type AdminBoundaryRepository interface {
	SearchInBox(ctx context.Context, box geospatial.BoundingBox) ([]domain.AdminBoundary, error)
	All(ctx context.Context) ([]domain.AdminBoundary, error)
}

// ArrondissementRepository reads the borough reference table.
type ArrondissementRepository interface {
	List(ctx context.Context) ([]domain.Arrondissement, error)
}

// BuildingRepository reads curated buildings.
type BuildingRepository interface {
	GetByID(ctx context.Context, id string) (*domain.Building, error)
	Search(ctx context.Context, s domain.BuildingSearch) ([]domain.Building, error)
	SearchPolygons(ctx context.Context, s domain.BuildingSearch) ([]domain.Building, error)
}

// OpenDataBuildingRepository reads the city open-data footprints.
type OpenDataBuildingRepository interface {
	SearchInBox(ctx context.Context, box geospatial.BoundingBox) ([]domain.MontrealBuilding, error)
}

// LandUseRepository reads land-use zones.
type LandUseRepository interface {
	// SearchInBox returns at most query.LandUseCap zones, largest first.
	SearchInBox(ctx context.Context, box geospatial.BoundingBox) ([]domain.LandUse, error)
	// AtPoint returns at most one zone; no match is an empty slice.
	AtPoint(ctx context.Context, pt geospatial.Coordinate) ([]domain.LandUse, error)
}

// ZonageRepository reads zoning parcels.
type ZonageRepository interface {
	SearchInBox(ctx context.Context, box geospatial.BoundingBox) ([]domain.Zonage, error)
	// AtPoint returns domain.ErrNotFound when no parcel contains pt.
	AtPoint(ctx context.Context, pt geospatial.Coordinate) (*domain.Zonage, error)
	DistinctArrondissements(ctx context.Context) ([]string, error)
	ZoneCodesByBoundary(ctx context.Context, code3l string) ([]string, error)
}

// ZoneCellRepository reads the raw zoning grid.
type ZoneCellRepository interface {
	// CodeAtPoint returns domain.ErrNotFound when no coded cell touches pt.
	CodeAtPoint(ctx context.Context, pt geospatial.Coordinate) (*domain.ZoneCode, error)
}

// PropertyAssessmentRepository reads the property assessment roll.
type PropertyAssessmentRepository interface {
	Search(ctx context.Context, s domain.PropertySearch) ([]domain.PropertyAssessment, error)
}

// LayerWriter replaces the content of a dataset table with the records of
// that layer held by snap.
type LayerWriter interface {
	ReplaceLayer(ctx context.Context, layer domain.Layer, snap *domain.Snapshot) (int, error)
}

// Pinger reports storage liveness.
type Pinger interface {
	Ping(ctx context.Context) error
}
