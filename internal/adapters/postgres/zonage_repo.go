package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/samirrijal/mtlmap/internal/core/domain"
	"github.com/samirrijal/mtlmap/internal/pkg/geospatial"
)

// ZonageRepo implements ports.ZonageRepository and ports.ZoneCellRepository
// with pgx.
type ZonageRepo struct {
	db *DB
}

// NewZonageRepo creates a new ZonageRepo.
func NewZonageRepo(db *DB) *ZonageRepo {
	return &ZonageRepo{db: db}
}

const zonageColumns = `id, zone_code, arrondissement, district, secteur,
	classe1, classe2, classe3, classe4, classe5, classe6,
	etage_min::float8, etage_max::float8, densite_min::float8, densite_max::float8,
	taux_min::float8, taux_max::float8, note, info, ST_AsBinary(geom)`

// SearchInBox returns the parcels intersecting box.
func (r *ZonageRepo) SearchInBox(ctx context.Context, box geospatial.BoundingBox) ([]domain.Zonage, error) {
	if box.Inverted() {
		return []domain.Zonage{}, nil
	}
	rows, err := r.db.Pool.Query(ctx, `
		SELECT `+zonageColumns+`
		FROM zonage
		WHERE geom IS NOT NULL AND ST_Intersects(geom, `+envelope+`)
	`, box.MinLng, box.MinLat, box.MaxLng, box.MaxLat)
	if err != nil {
		return nil, err
	}
	return collectZonages(rows)
}

// AtPoint returns the first parcel covering pt.
func (r *ZonageRepo) AtPoint(ctx context.Context, pt geospatial.Coordinate) (*domain.Zonage, error) {
	rows, err := r.db.Pool.Query(ctx, `
		SELECT `+zonageColumns+`
		FROM zonage
		WHERE geom IS NOT NULL AND ST_Covers(geom, `+point+`)
		LIMIT 1
	`, pt.Lng, pt.Lat)
	if err != nil {
		return nil, err
	}
	out, err := collectZonages(rows)
	if err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("zonage at (%g, %g): %w", pt.Lng, pt.Lat, domain.ErrNotFound)
	}
	return &out[0], nil
}

func collectZonages(rows pgx.Rows) ([]domain.Zonage, error) {
	defer rows.Close()
	out := make([]domain.Zonage, 0)
	for rows.Next() {
		var (
			z   domain.Zonage
			raw []byte
		)
		if err := rows.Scan(&z.ID, &z.ZoneCode, &z.Arrondissement, &z.District, &z.Secteur,
			&z.Classe1, &z.Classe2, &z.Classe3, &z.Classe4, &z.Classe5, &z.Classe6,
			&z.EtageMin, &z.EtageMax, &z.DensiteMin, &z.DensiteMax,
			&z.TauxMin, &z.TauxMax, &z.Note, &z.Info, &raw); err != nil {
			return nil, err
		}
		g, err := fromWKB(raw)
		if err != nil {
			return nil, fmt.Errorf("zonage %d: %w", z.ID, err)
		}
		z.Geom = g
		out = append(out, z)
	}
	return out, rows.Err()
}

// DistinctArrondissements returns the non-null arrondissement names.
func (r *ZonageRepo) DistinctArrondissements(ctx context.Context) ([]string, error) {
	rows, err := r.db.Pool.Query(ctx, `
		SELECT DISTINCT arrondissement FROM zonage
		WHERE arrondissement IS NOT NULL
		ORDER BY arrondissement
	`)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, pgx.RowTo[string])
}

// ZoneCodesByBoundary returns the zone codes of the parcels intersecting the
// boundaries whose code_3c equals code3l.
func (r *ZonageRepo) ZoneCodesByBoundary(ctx context.Context, code3l string) ([]string, error) {
	rows, err := r.db.Pool.Query(ctx, `
		SELECT DISTINCT z.zone_code
		FROM zonage z
		JOIN admin_boundaries b ON ST_Intersects(z.geom, b.geom)
		WHERE b.code_3c = $1 AND z.zone_code IS NOT NULL
		ORDER BY z.zone_code
	`, code3l)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, pgx.RowTo[string])
}

// CodeAtPoint returns the code of the first raw zoning cell touching pt.
func (r *ZonageRepo) CodeAtPoint(ctx context.Context, pt geospatial.Coordinate) (*domain.ZoneCode, error) {
	var code *string
	err := r.db.Pool.QueryRow(ctx, `
		SELECT numero_complet
		FROM raw.raw_zonage_tab
		WHERE wkb_geometry IS NOT NULL AND ST_Intersects(wkb_geometry, `+point+`)
		LIMIT 1
	`, pt.Lng, pt.Lat).Scan(&code)
	if errors.Is(err, pgx.ErrNoRows) || (err == nil && code == nil) {
		return nil, fmt.Errorf("zone cell at (%g, %g): %w", pt.Lng, pt.Lat, domain.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &domain.ZoneCode{ZoneCode: *code}, nil
}
