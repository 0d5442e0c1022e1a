package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/samirrijal/mtlmap/internal/core/domain"
	"github.com/samirrijal/mtlmap/internal/core/query"
	"github.com/samirrijal/mtlmap/internal/pkg/geospatial"
)

// LandUseRepo implements ports.LandUseRepository with pgx.
type LandUseRepo struct {
	db *DB
}

// NewLandUseRepo creates a new LandUseRepo.
func NewLandUseRepo(db *DB) *LandUseRepo {
	return &LandUseRepo{db: db}
}

const landUseColumns = `id, affectation, affectation_en, area_sqm::float8, ST_AsBinary(geom)`

// SearchInBox returns the largest zones intersecting box. DESC keeps the
// PostgreSQL default of NULLS FIRST.
func (r *LandUseRepo) SearchInBox(ctx context.Context, box geospatial.BoundingBox) ([]domain.LandUse, error) {
	if box.Inverted() {
		return []domain.LandUse{}, nil
	}
	rows, err := r.db.Pool.Query(ctx, `
		SELECT `+landUseColumns+`
		FROM land_use
		WHERE geom IS NOT NULL AND ST_Intersects(geom, `+envelope+`)
		ORDER BY area_sqm DESC
		LIMIT $5
	`, box.MinLng, box.MinLat, box.MaxLng, box.MaxLat, query.LandUseCap)
	if err != nil {
		return nil, err
	}
	return collectLandUses(rows)
}

// AtPoint returns at most one zone covering pt.
func (r *LandUseRepo) AtPoint(ctx context.Context, pt geospatial.Coordinate) ([]domain.LandUse, error) {
	rows, err := r.db.Pool.Query(ctx, `
		SELECT `+landUseColumns+`
		FROM land_use
		WHERE geom IS NOT NULL AND ST_Covers(geom, `+point+`)
		LIMIT 1
	`, pt.Lng, pt.Lat)
	if err != nil {
		return nil, err
	}
	return collectLandUses(rows)
}

func collectLandUses(rows pgx.Rows) ([]domain.LandUse, error) {
	defer rows.Close()
	out := make([]domain.LandUse, 0)
	for rows.Next() {
		var (
			l   domain.LandUse
			raw []byte
		)
		if err := rows.Scan(&l.ID, &l.Affectation, &l.AffectationEn, &l.AreaSqm, &raw); err != nil {
			return nil, err
		}
		g, err := fromWKB(raw)
		if err != nil {
			return nil, fmt.Errorf("land use %d: %w", l.ID, err)
		}
		l.Geom = g
		out = append(out, l)
	}
	return out, rows.Err()
}
