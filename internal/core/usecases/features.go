package usecases

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/samirrijal/mtlmap/internal/core/domain"
	"github.com/samirrijal/mtlmap/internal/pkg/geojson"
	"github.com/samirrijal/mtlmap/internal/pkg/geospatial"
)

const (
	sourcePropertyAssessment = "Montreal Property Assessment"
	sourceOpenData           = "Montreal Open Data"
	openDataBuildingType     = "Montreal Building"
)

// collect builds one feature per record and keeps result order. Records with
// nothing to encode are dropped; any other encoding failure aborts.
func collect[T any](records []T, build func(T) (geojson.Feature, error)) (*geojson.FeatureCollection, error) {
	fc := geojson.NewFeatureCollection()
	for _, r := range records {
		f, err := build(r)
		if errors.Is(err, geojson.ErrNoGeometry) {
			continue
		}
		if err != nil {
			return nil, err
		}
		fc.Add(f)
	}
	return fc, nil
}

// AdminBoundaryFeature renders an administrative boundary.
func AdminBoundaryFeature(b domain.AdminBoundary) (geojson.Feature, error) {
	var p geojson.Properties
	p.Set("name", b.Name)
	p.Set("nameOfficial", b.NameOfficial)
	p.Set("abbrev", b.Abbrev)
	p.Set("boundaryType", b.BoundaryType)
	p.Set("num", b.Num)
	return feature("admin-"+strconv.Itoa(b.ID), b.Geom, p)
}

func buildingProps(b domain.Building) geojson.Properties {
	var p geojson.Properties
	p.Set("address", b.Address)
	p.Set("neighborhood", b.Neighborhood)
	p.Set("yearBuilt", b.YearBuilt)
	p.Set("floors", b.Floors)
	p.Set("buildingType", b.BuildingType)
	return p
}

// BuildingPointFeature renders a building as a point at the first
// coordinate of its geometry.
func BuildingPointFeature(b domain.Building) (geojson.Feature, error) {
	c, ok := b.Geom.FirstCoordinate()
	if !ok {
		return geojson.Feature{}, geojson.ErrNoGeometry
	}
	return feature(b.ID, geospatial.PointAt(c.Lng, c.Lat), buildingProps(b))
}

// BuildingFeature renders a building with its full geometry.
func BuildingFeature(b domain.Building) (geojson.Feature, error) {
	return feature(b.ID, b.Geom, buildingProps(b))
}

// OpenDataBuildingFeature renders an open-data footprint.
func OpenDataBuildingFeature(b domain.MontrealBuilding) (geojson.Feature, error) {
	var p geojson.Properties
	p.Set("address", nil)
	p.Set("neighborhood", nil)
	p.Set("yearBuilt", nil)
	p.Set("floors", nil)
	p.Set("buildingType", openDataBuildingType)
	p.Set("superficie", b.Superficie)
	p.Set("source", sourceOpenData)
	p.Set("updateDate", b.UpdateDate)
	return feature("mtl-"+strconv.FormatInt(b.ID, 10), b.Geom, p)
}

// LandUseFeature renders a land-use zone.
func LandUseFeature(l domain.LandUse) (geojson.Feature, error) {
	var p geojson.Properties
	p.Set("affectation", l.Affectation)
	p.Set("affectationEn", l.AffectationEn)
	p.Set("areaSqm", l.AreaSqm)
	return feature("landuse-"+strconv.Itoa(l.ID), l.Geom, p)
}

// ZonageFeature renders a zoning parcel. Its id carries no prefix.
func ZonageFeature(z domain.Zonage) (geojson.Feature, error) {
	var p geojson.Properties
	p.Set("zoneCode", z.ZoneCode)
	p.Set("arrondissement", z.Arrondissement)
	p.Set("district", z.District)
	p.Set("secteur", z.Secteur)
	p.Set("classe1", z.Classe1)
	p.Set("classe2", z.Classe2)
	p.Set("classe3", z.Classe3)
	p.Set("classe4", z.Classe4)
	p.Set("classe5", z.Classe5)
	p.Set("classe6", z.Classe6)
	p.Set("etageMin", z.EtageMin)
	p.Set("etageMax", z.EtageMax)
	p.Set("densiteMin", z.DensiteMin)
	p.Set("densiteMax", z.DensiteMax)
	p.Set("tauxMin", z.TauxMin)
	p.Set("tauxMax", z.TauxMax)
	p.Set("note", z.Note)
	p.Set("info", z.Info)
	return feature(strconv.FormatInt(z.ID, 10), z.Geom, p)
}

// PropertyFeature renders a property-assessment parcel.
func PropertyFeature(a domain.PropertyAssessment) (geojson.Feature, error) {
	var p geojson.Properties
	p.Set("address", a.FullAddress())
	p.Set("neighborhood", a.Borough)
	p.Set("matricule", a.Matricule)
	p.Set("yearBuilt", a.YearBuilt)
	p.Set("floors", a.Floors)
	p.Set("buildingType", a.UsageLabel)
	p.Set("numUnits", a.NumUnits)
	p.Set("category", a.Category)
	p.Set("landArea", a.LandArea)
	p.Set("buildingArea", a.BuildingArea)
	p.Set("source", sourcePropertyAssessment)
	return feature("prop-"+strconv.FormatInt(a.ID, 10), a.Geom, p)
}

func feature(id string, g geospatial.Geometry, p geojson.Properties) (geojson.Feature, error) {
	f, err := geojson.NewFeature(id, g, p)
	if err != nil && !errors.Is(err, geojson.ErrNoGeometry) {
		return f, fmt.Errorf("feature %s: %w", id, err)
	}
	return f, err
}
