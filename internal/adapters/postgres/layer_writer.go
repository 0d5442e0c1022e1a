package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/samirrijal/mtlmap/internal/core/domain"
)

// LayerWriter implements ports.LayerWriter: it replaces a table's content in
// one transaction.
type LayerWriter struct {
	db *DB
}

// NewLayerWriter creates a new LayerWriter.
func NewLayerWriter(db *DB) *LayerWriter {
	return &LayerWriter{db: db}
}

var layerTables = map[domain.Layer]string{
	domain.LayerAdminBoundaries:    "admin_boundaries",
	domain.LayerArrondissements:    "arrondissements",
	domain.LayerBuildings:          "buildings",
	domain.LayerMontrealBuildings:  "montreal_buildings",
	domain.LayerLandUse:            "land_use",
	domain.LayerZonage:             "zonage",
	domain.LayerRawZonageTab:       "raw.raw_zonage_tab",
	domain.LayerPropertyAssessment: "property_assessment",
}

// ReplaceLayer deletes every row of layer's table and inserts the layer's
// records from snap. It returns the number of rows written.
func (w *LayerWriter) ReplaceLayer(ctx context.Context, layer domain.Layer, snap *domain.Snapshot) (int, error) {
	table, ok := layerTables[layer]
	if !ok {
		return 0, fmt.Errorf("replace layer: unknown layer %q", layer)
	}

	batch := &pgx.Batch{}
	if err := queueLayer(batch, layer, snap); err != nil {
		return 0, fmt.Errorf("replace %s: %w", layer, err)
	}

	tx, err := w.db.Pool.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	if _, err := tx.Exec(ctx, "DELETE FROM "+table); err != nil {
		return 0, fmt.Errorf("clear %s: %w", table, err)
	}

	n := batch.Len()
	br := tx.SendBatch(ctx, batch)
	for i := 0; i < n; i++ {
		if _, err := br.Exec(); err != nil {
			br.Close()
			return 0, fmt.Errorf("batch exec %s row %d: %w", table, i, err)
		}
	}
	if err := br.Close(); err != nil {
		return 0, fmt.Errorf("batch close: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("commit: %w", err)
	}
	return n, nil
}

func queueLayer(b *pgx.Batch, layer domain.Layer, snap *domain.Snapshot) error {
	switch layer {
	case domain.LayerAdminBoundaries:
		for _, r := range snap.AdminBoundaries {
			g, err := toWKB(r.Geom)
			if err != nil {
				return err
			}
			b.Queue(`INSERT INTO admin_boundaries
				(id, code_id, name, name_official, code_3c, num, abbrev, boundary_type, geom)
				VALUES ($1, $2, $3, $4, $5, $6, $7, $8, ST_GeomFromWKB($9, 4326))`,
				r.ID, r.CodeID, r.Name, r.NameOfficial, r.Code3C, r.Num, r.Abbrev, r.BoundaryType, g)
		}
	case domain.LayerArrondissements:
		for _, r := range snap.Arrondissements {
			b.Queue(`INSERT INTO arrondissements
				(id, nom_officiel, nom_abrege, acronyme, code_3l, id_uadm, no_arro_election, code_rem)
				VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
				r.ID, r.NomOfficiel, r.NomAbrege, r.Acronyme, r.Code3L, r.IDUadm, r.NoArroElection, r.CodeRem)
		}
	case domain.LayerBuildings:
		for _, r := range snap.Buildings {
			g, err := toWKB(r.Geom)
			if err != nil {
				return err
			}
			b.Queue(`INSERT INTO buildings
				(id, address, neighborhood, year_built, floors, building_type, geom)
				VALUES ($1, $2, $3, $4, $5, $6, ST_GeomFromWKB($7, 4326))`,
				r.ID, r.Address, r.Neighborhood, r.YearBuilt, r.Floors, r.BuildingType, g)
		}
	case domain.LayerMontrealBuildings:
		for _, r := range snap.MontrealBuildings {
			g, err := toWKB(r.Geom)
			if err != nil {
				return err
			}
			b.Queue(`INSERT INTO montreal_buildings
				(id, source_layer, superficie, update_date, source, version, geom)
				VALUES ($1, $2, $3, $4, $5, $6, ST_GeomFromWKB($7, 4326))`,
				r.ID, r.SourceLayer, r.Superficie, r.UpdateDate, r.Source, r.Version, g)
		}
	case domain.LayerLandUse:
		for _, r := range snap.LandUses {
			g, err := toWKB(r.Geom)
			if err != nil {
				return err
			}
			b.Queue(`INSERT INTO land_use
				(id, affectation, affectation_en, area_sqm, geom)
				VALUES ($1, $2, $3, $4, ST_GeomFromWKB($5, 4326))`,
				r.ID, r.Affectation, r.AffectationEn, r.AreaSqm, g)
		}
	case domain.LayerZonage:
		for _, r := range snap.Zonages {
			g, err := toWKB(r.Geom)
			if err != nil {
				return err
			}
			b.Queue(`INSERT INTO zonage
				(id, zone_code, arrondissement, district, secteur,
				 classe1, classe2, classe3, classe4, classe5, classe6,
				 etage_min, etage_max, densite_min, densite_max, taux_min, taux_max,
				 note, info, geom)
				VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17,
				 $18, $19, ST_GeomFromWKB($20, 4326))`,
				r.ID, r.ZoneCode, r.Arrondissement, r.District, r.Secteur,
				r.Classe1, r.Classe2, r.Classe3, r.Classe4, r.Classe5, r.Classe6,
				r.EtageMin, r.EtageMax, r.DensiteMin, r.DensiteMax, r.TauxMin, r.TauxMax,
				r.Note, r.Info, g)
		}
	case domain.LayerRawZonageTab:
		for _, r := range snap.ZoneCells {
			g, err := toWKB(r.Geom)
			if err != nil {
				return err
			}
			b.Queue(`INSERT INTO raw.raw_zonage_tab (ogc_fid, numero_complet, wkb_geometry)
				VALUES ($1, $2, ST_GeomFromWKB($3, 4326))`,
				r.ID, r.NumeroComplet, g)
		}
	case domain.LayerPropertyAssessment:
		for _, r := range snap.Properties {
			g, err := toWKB(r.Geom)
			if err != nil {
				return err
			}
			b.Queue(`INSERT INTO property_assessment
				(id, id_uev, civic_number_start, civic_number_end, street_name, suite,
				 municipality, floors, num_units, year_built, usage_code, usage_label,
				 category, matricule, land_area, building_area, borough, geom)
				VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17,
				 ST_GeomFromWKB($18, 4326))`,
				r.ID, r.IDUev, r.CivicNumberStart, r.CivicNumberEnd, r.StreetName, r.Suite,
				r.Municipality, r.Floors, r.NumUnits, r.YearBuilt, r.UsageCode, r.UsageLabel,
				r.Category, r.Matricule, r.LandArea, r.BuildingArea, r.Borough, g)
		}
	}
	return nil
}
