package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/samirrijal/mtlmap/internal/core/domain"
	"github.com/samirrijal/mtlmap/internal/pkg/geospatial"
)

// BuildingRepo implements ports.BuildingRepository and
// ports.OpenDataBuildingRepository with pgx.
type BuildingRepo struct {
	db *DB
}

// NewBuildingRepo creates a new BuildingRepo.
func NewBuildingRepo(db *DB) *BuildingRepo {
	return &BuildingRepo{db: db}
}

const buildingColumns = `id, address, neighborhood, year_built, floors, building_type, ST_AsBinary(geom)`

// Filters are $5..$10; a NULL parameter disables its clause.
const buildingWhere = `
	geom IS NOT NULL
	AND ST_CoveredBy(geom, ` + envelope + `)
	AND ($5::text IS NULL OR neighborhood = $5)
	AND ($6::text IS NULL OR building_type = $6)
	AND ($7::int IS NULL OR year_built >= $7)
	AND ($8::int IS NULL OR year_built <= $8)
	AND ($9::int IS NULL OR floors >= $9)
	AND ($10::int IS NULL OR floors <= $10)`

func buildingArgs(s domain.BuildingSearch) []any {
	f := s.Filter
	return []any{
		s.Box.MinLng, s.Box.MinLat, s.Box.MaxLng, s.Box.MaxLat,
		f.Neighborhood, f.BuildingType,
		f.YearBuilt.Min, f.YearBuilt.Max,
		f.Floors.Min, f.Floors.Max,
	}
}

// GetByID returns the building with the given id or domain.ErrNotFound.
func (r *BuildingRepo) GetByID(ctx context.Context, id string) (*domain.Building, error) {
	rows, err := r.db.Pool.Query(ctx, `
		SELECT `+buildingColumns+` FROM buildings WHERE id = $1 LIMIT 1
	`, id)
	if err != nil {
		return nil, err
	}
	out, err := collectBuildings(rows)
	if err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("building %q: %w", id, domain.ErrNotFound)
	}
	return &out[0], nil
}

// Search returns buildings within the box that pass the filters.
func (r *BuildingRepo) Search(ctx context.Context, s domain.BuildingSearch) ([]domain.Building, error) {
	if s.Box.Inverted() {
		return []domain.Building{}, nil
	}
	rows, err := r.db.Pool.Query(ctx, `
		SELECT `+buildingColumns+` FROM buildings WHERE `+buildingWhere,
		buildingArgs(s)...)
	if err != nil {
		return nil, err
	}
	return collectBuildings(rows)
}

// SearchPolygons is Search restricted to polygonal footprints.
func (r *BuildingRepo) SearchPolygons(ctx context.Context, s domain.BuildingSearch) ([]domain.Building, error) {
	if s.Box.Inverted() {
		return []domain.Building{}, nil
	}
	rows, err := r.db.Pool.Query(ctx, `
		SELECT `+buildingColumns+` FROM buildings WHERE `+buildingWhere+`
		AND GeometryType(geom) IN ('POLYGON', 'MULTIPOLYGON')`,
		buildingArgs(s)...)
	if err != nil {
		return nil, err
	}
	return collectBuildings(rows)
}

func collectBuildings(rows pgx.Rows) ([]domain.Building, error) {
	defer rows.Close()
	out := make([]domain.Building, 0)
	for rows.Next() {
		var (
			b   domain.Building
			raw []byte
		)
		if err := rows.Scan(&b.ID, &b.Address, &b.Neighborhood, &b.YearBuilt,
			&b.Floors, &b.BuildingType, &raw); err != nil {
			return nil, err
		}
		g, err := fromWKB(raw)
		if err != nil {
			return nil, fmt.Errorf("building %q: %w", b.ID, err)
		}
		b.Geom = g
		out = append(out, b)
	}
	return out, rows.Err()
}

// SearchInBox returns the open-data footprints intersecting box.
func (r *BuildingRepo) SearchInBox(ctx context.Context, box geospatial.BoundingBox) ([]domain.MontrealBuilding, error) {
	if box.Inverted() {
		return []domain.MontrealBuilding{}, nil
	}
	rows, err := r.db.Pool.Query(ctx, `
		SELECT id, source_layer, superficie::float8, update_date, source, version::float8, ST_AsBinary(geom)
		FROM montreal_buildings
		WHERE geom IS NOT NULL AND ST_Intersects(geom, `+envelope+`)
	`, box.MinLng, box.MinLat, box.MaxLng, box.MaxLat)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]domain.MontrealBuilding, 0)
	for rows.Next() {
		var (
			b   domain.MontrealBuilding
			raw []byte
		)
		if err := rows.Scan(&b.ID, &b.SourceLayer, &b.Superficie, &b.UpdateDate,
			&b.Source, &b.Version, &raw); err != nil {
			return nil, err
		}
		if b.Geom, err = fromWKB(raw); err != nil {
			return nil, fmt.Errorf("montreal building %d: %w", b.ID, err)
		}
		out = append(out, b)
	}
	return out, rows.Err()
}
