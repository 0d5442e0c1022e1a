// Package dataset reads layer files (one GeoJSON FeatureCollection per
// layer, WGS 84) into typed domain records.
package dataset

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/samirrijal/mtlmap/internal/core/domain"
	"github.com/samirrijal/mtlmap/internal/pkg/geojson"
	"github.com/samirrijal/mtlmap/internal/pkg/geospatial"
)

// ErrUnknownLayer is returned for a layer name with no decoder.
var ErrUnknownLayer = errors.New("unknown layer")

// Stats reports how many features of a layer were kept and skipped.
type Stats struct {
	Layer   domain.Layer
	Records int
	Skipped int
}

// FileName returns the file name of layer inside a data directory.
func FileName(layer domain.Layer) string { return string(layer) + ".geojson" }

// ReadFile reads one layer file.
func ReadFile(path string) (*geojson.FeatureCollection, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var fc geojson.FeatureCollection
	if err := json.NewDecoder(f).Decode(&fc); err != nil {
		return nil, fmt.Errorf("decode %s: %w", filepath.Base(path), err)
	}
	return &fc, nil
}

// Decode appends the features of fc to the slice of snap that holds layer.
// Features whose geometry cannot be decoded are skipped; features without
// geometry are kept with Absent geometry.
func Decode(snap *domain.Snapshot, layer domain.Layer, fc *geojson.FeatureCollection) (Stats, error) {
	st := Stats{Layer: layer}
	for i, f := range fc.Features {
		g, err := geojson.Decode(f.Geometry)
		if err != nil {
			st.Skipped++
			continue
		}
		if err := appendRecord(snap, layer, i, f, g); err != nil {
			return st, err
		}
		st.Records++
	}
	return st, nil
}

func appendRecord(snap *domain.Snapshot, layer domain.Layer, i int, f geojson.Feature, g geospatial.Geometry) error {
	p := f.Properties
	switch layer {
	case domain.LayerAdminBoundaries:
		snap.AdminBoundaries = append(snap.AdminBoundaries, domain.AdminBoundary{
			ID:           intID(f, i),
			CodeID:       p.Int("code_id"),
			Name:         p.String("name"),
			NameOfficial: p.String("name_official"),
			Code3C:       p.String("code_3c"),
			Num:          p.Int("num"),
			Abbrev:       p.String("abbrev"),
			BoundaryType: p.String("boundary_type"),
			Geom:         g,
		})
	case domain.LayerArrondissements:
		snap.Arrondissements = append(snap.Arrondissements, domain.Arrondissement{
			ID:             intID(f, i),
			NomOfficiel:    p.String("nom_officiel"),
			NomAbrege:      p.String("nom_abrege"),
			Acronyme:       p.String("acronyme"),
			Code3L:         p.String("code_3l"),
			IDUadm:         p.Int("id_uadm"),
			NoArroElection: p.Int("no_arro_election"),
			CodeRem:        p.String("code_rem"),
		})
	case domain.LayerBuildings:
		id := f.ID
		if s := p.String("id"); id == "" && s != nil {
			id = *s
		}
		if id == "" {
			id = strconv.Itoa(i + 1)
		}
		snap.Buildings = append(snap.Buildings, domain.Building{
			ID:           id,
			Address:      p.String("address"),
			Neighborhood: p.String("neighborhood"),
			YearBuilt:    p.Int("year_built"),
			Floors:       p.Int("floors"),
			BuildingType: p.String("building_type"),
			Geom:         g,
		})
	case domain.LayerMontrealBuildings:
		snap.MontrealBuildings = append(snap.MontrealBuildings, domain.MontrealBuilding{
			ID:          int64(intID(f, i)),
			SourceLayer: p.String("source_layer"),
			Superficie:  p.Float("superficie"),
			UpdateDate:  p.String("update_date"),
			Source:      p.String("source"),
			Version:     p.Float("version"),
			Geom:        g,
		})
	case domain.LayerLandUse:
		snap.LandUses = append(snap.LandUses, domain.LandUse{
			ID:            intID(f, i),
			Affectation:   p.String("affectation"),
			AffectationEn: p.String("affectation_en"),
			AreaSqm:       p.Float("area_sqm"),
			Geom:          g,
		})
	case domain.LayerZonage:
		snap.Zonages = append(snap.Zonages, domain.Zonage{
			ID:             int64(intID(f, i)),
			ZoneCode:       p.String("zone_code"),
			Arrondissement: p.String("arrondissement"),
			District:       p.String("district"),
			Secteur:        p.String("secteur"),
			Classe1:        p.String("classe1"),
			Classe2:        p.String("classe2"),
			Classe3:        p.String("classe3"),
			Classe4:        p.String("classe4"),
			Classe5:        p.String("classe5"),
			Classe6:        p.String("classe6"),
			EtageMin:       p.Float("etage_min"),
			EtageMax:       p.Float("etage_max"),
			DensiteMin:     p.Float("densite_min"),
			DensiteMax:     p.Float("densite_max"),
			TauxMin:        p.Float("taux_min"),
			TauxMax:        p.Float("taux_max"),
			Note:           p.String("note"),
			Info:           p.String("info"),
			Geom:           g,
		})
	case domain.LayerRawZonageTab:
		snap.ZoneCells = append(snap.ZoneCells, domain.ZoneCell{
			ID:            int64(intID(f, i)),
			NumeroComplet: p.String("numero_complet"),
			Geom:          g,
		})
	case domain.LayerPropertyAssessment:
		snap.Properties = append(snap.Properties, domain.PropertyAssessment{
			ID:               int64(intID(f, i)),
			IDUev:            p.String("id_uev"),
			CivicNumberStart: p.String("civic_number_start"),
			CivicNumberEnd:   p.String("civic_number_end"),
			StreetName:       p.String("street_name"),
			Suite:            p.String("suite"),
			Municipality:     p.String("municipality"),
			Floors:           p.Int("floors"),
			NumUnits:         p.Int("num_units"),
			YearBuilt:        p.Int("year_built"),
			UsageCode:        p.String("usage_code"),
			UsageLabel:       p.String("usage_label"),
			Category:         p.String("category"),
			Matricule:        p.String("matricule"),
			LandArea:         p.Float("land_area"),
			BuildingArea:     p.Float("building_area"),
			Borough:          p.String("borough"),
			Geom:             g,
		})
	default:
		return fmt.Errorf("%w: %q", ErrUnknownLayer, layer)
	}
	return nil
}

// intID takes the numeric feature id, then an "id" property, then the
// 1-based position in the file.
func intID(f geojson.Feature, i int) int {
	if n, err := strconv.Atoi(f.ID); err == nil {
		return n
	}
	if n := f.Properties.Int("id"); n != nil {
		return *n
	}
	return i + 1
}
