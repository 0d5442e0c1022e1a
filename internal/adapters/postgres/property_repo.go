package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/samirrijal/mtlmap/internal/core/domain"
	"github.com/samirrijal/mtlmap/internal/core/query"
)

// PropertyRepo implements ports.PropertyAssessmentRepository with pgx.
type PropertyRepo struct {
	db *DB
}

// NewPropertyRepo creates a new PropertyRepo.
func NewPropertyRepo(db *DB) *PropertyRepo {
	return &PropertyRepo{db: db}
}

const propertyColumns = `id, id_uev, civic_number_start, civic_number_end, street_name, suite,
	municipality, floors, num_units, year_built, usage_code, usage_label, category, matricule,
	land_area::float8, building_area::float8, borough, ST_AsBinary(geom)`

// Search runs the borough-mode or filtered-mode query selected by s.Mode.
func (r *PropertyRepo) Search(ctx context.Context, s domain.PropertySearch) ([]domain.PropertyAssessment, error) {
	if s.Box.Inverted() {
		return []domain.PropertyAssessment{}, nil
	}

	var (
		rows pgx.Rows
		err  error
	)
	switch s.Mode() {
	case domain.PropertyModeBorough:
		rows, err = r.db.Pool.Query(ctx, `
			SELECT `+propertyColumns+`
			FROM property_assessment
			WHERE geom IS NOT NULL AND ST_Intersects(geom, `+envelope+`)
			  AND borough = $5
			ORDER BY building_area DESC
			LIMIT $6
		`, s.Box.MinLng, s.Box.MinLat, s.Box.MaxLng, s.Box.MaxLat, s.Borough, query.PropertyCap)
	default:
		rows, err = r.db.Pool.Query(ctx, `
			SELECT `+propertyColumns+`
			FROM property_assessment
			WHERE geom IS NOT NULL AND ST_Intersects(geom, `+envelope+`)
			  AND ($5::int IS NULL OR year_built >= $5)
			  AND ($6::int IS NULL OR year_built <= $6)
			  AND ($7::int IS NULL OR floors >= $7)
			  AND ($8::int IS NULL OR floors <= $8)
			ORDER BY building_area DESC
			LIMIT $9
		`, s.Box.MinLng, s.Box.MinLat, s.Box.MaxLng, s.Box.MaxLat,
			s.YearBuilt.Min, s.YearBuilt.Max, s.Floors.Min, s.Floors.Max, query.PropertyCap)
	}
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]domain.PropertyAssessment, 0)
	for rows.Next() {
		var (
			p   domain.PropertyAssessment
			raw []byte
		)
		if err := rows.Scan(&p.ID, &p.IDUev, &p.CivicNumberStart, &p.CivicNumberEnd, &p.StreetName,
			&p.Suite, &p.Municipality, &p.Floors, &p.NumUnits, &p.YearBuilt, &p.UsageCode,
			&p.UsageLabel, &p.Category, &p.Matricule, &p.LandArea, &p.BuildingArea,
			&p.Borough, &raw); err != nil {
			return nil, err
		}
		if p.Geom, err = fromWKB(raw); err != nil {
			return nil, fmt.Errorf("property %d: %w", p.ID, err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}
