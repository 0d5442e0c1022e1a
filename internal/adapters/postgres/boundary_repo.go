package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/samirrijal/mtlmap/internal/core/domain"
	"github.com/samirrijal/mtlmap/internal/pkg/geospatial"
)

// BoundaryRepo implements ports.AdminBoundaryRepository and
// ports.ArrondissementRepository with pgx.
type BoundaryRepo struct {
	db *DB
}

// NewBoundaryRepo creates a new BoundaryRepo.
func NewBoundaryRepo(db *DB) *BoundaryRepo {
	return &BoundaryRepo{db: db}
}

const boundaryColumns = `id, code_id, name, name_official, code_3c, num, abbrev, boundary_type, ST_AsBinary(geom)`

// SearchInBox returns boundaries intersecting box, by name.
func (r *BoundaryRepo) SearchInBox(ctx context.Context, box geospatial.BoundingBox) ([]domain.AdminBoundary, error) {
	if box.Inverted() {
		return []domain.AdminBoundary{}, nil
	}
	rows, err := r.db.Pool.Query(ctx, `
		SELECT `+boundaryColumns+`
		FROM admin_boundaries
		WHERE geom IS NOT NULL AND ST_Intersects(geom, `+envelope+`)
		ORDER BY name
	`, box.MinLng, box.MinLat, box.MaxLng, box.MaxLat)
	if err != nil {
		return nil, err
	}
	return collectBoundaries(rows)
}

// All returns every boundary with a geometry.
func (r *BoundaryRepo) All(ctx context.Context) ([]domain.AdminBoundary, error) {
	rows, err := r.db.Pool.Query(ctx, `
		SELECT `+boundaryColumns+`
		FROM admin_boundaries
		WHERE geom IS NOT NULL
	`)
	if err != nil {
		return nil, err
	}
	return collectBoundaries(rows)
}

func collectBoundaries(rows pgx.Rows) ([]domain.AdminBoundary, error) {
	defer rows.Close()
	out := make([]domain.AdminBoundary, 0)
	for rows.Next() {
		var (
			b   domain.AdminBoundary
			raw []byte
		)
		if err := rows.Scan(&b.ID, &b.CodeID, &b.Name, &b.NameOfficial, &b.Code3C,
			&b.Num, &b.Abbrev, &b.BoundaryType, &raw); err != nil {
			return nil, err
		}
		g, err := fromWKB(raw)
		if err != nil {
			return nil, err
		}
		b.Geom = g
		out = append(out, b)
	}
	return out, rows.Err()
}

// List returns the arrondissement reference table.
func (r *BoundaryRepo) List(ctx context.Context) ([]domain.Arrondissement, error) {
	rows, err := r.db.Pool.Query(ctx, `
		SELECT id, nom_officiel, nom_abrege, acronyme, code_3l, id_uadm, no_arro_election, code_rem
		FROM arrondissements
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]domain.Arrondissement, 0)
	for rows.Next() {
		var a domain.Arrondissement
		if err := rows.Scan(&a.ID, &a.NomOfficiel, &a.NomAbrege, &a.Acronyme, &a.Code3L,
			&a.IDUadm, &a.NoArroElection, &a.CodeRem); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}
