package usecases_test

import (
	"encoding/json"
	"errors"
	"reflect"
	"testing"

	"github.com/samirrijal/mtlmap/internal/core/domain"
	"github.com/samirrijal/mtlmap/internal/core/usecases"
	"github.com/samirrijal/mtlmap/internal/pkg/geojson"
	"github.com/samirrijal/mtlmap/internal/pkg/geospatial"
)

func TestFeatureIDsAndPropertyOrder(t *testing.T) {
	geom := square(0, 0, 1, 1)
	tests := []struct {
		name   string
		build  func() (geojson.Feature, error)
		wantID string
		keys   []string
	}{
		{
			name:   "admin boundary",
			build:  func() (geojson.Feature, error) { return usecases.AdminBoundaryFeature(domain.AdminBoundary{ID: 7, Geom: geom}) },
			wantID: "admin-7",
			keys:   []string{"name", "nameOfficial", "abbrev", "boundaryType", "num"},
		},
		{
			name:   "building",
			build:  func() (geojson.Feature, error) { return usecases.BuildingFeature(domain.Building{ID: "B-12", Geom: geom}) },
			wantID: "B-12",
			keys:   []string{"address", "neighborhood", "yearBuilt", "floors", "buildingType"},
		},
		{
			name:   "land use",
			build:  func() (geojson.Feature, error) { return usecases.LandUseFeature(domain.LandUse{ID: 3, Geom: geom}) },
			wantID: "landuse-3",
			keys:   []string{"affectation", "affectationEn", "areaSqm"},
		},
		{
			name:   "zonage",
			build:  func() (geojson.Feature, error) { return usecases.ZonageFeature(domain.Zonage{ID: 99, Geom: geom}) },
			wantID: "99",
			keys: []string{"zoneCode", "arrondissement", "district", "secteur",
				"classe1", "classe2", "classe3", "classe4", "classe5", "classe6",
				"etageMin", "etageMax", "densiteMin", "densiteMax", "tauxMin", "tauxMax", "note", "info"},
		},
		{
			name:   "property",
			build:  func() (geojson.Feature, error) { return usecases.PropertyFeature(domain.PropertyAssessment{ID: 5, Geom: geom}) },
			wantID: "prop-5",
			keys: []string{"address", "neighborhood", "matricule", "yearBuilt", "floors", "buildingType",
				"numUnits", "category", "landArea", "buildingArea", "source"},
		},
		{
			name:   "open data",
			build:  func() (geojson.Feature, error) { return usecases.OpenDataBuildingFeature(domain.MontrealBuilding{ID: 8, Geom: geom}) },
			wantID: "mtl-8",
			keys: []string{"address", "neighborhood", "yearBuilt", "floors", "buildingType",
				"superficie", "source", "updateDate"},
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			f, err := tc.build()
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if f.ID != tc.wantID {
				t.Errorf("expected id %q, got %q", tc.wantID, f.ID)
			}
			if got := f.Properties.Keys(); !reflect.DeepEqual(got, tc.keys) {
				t.Errorf("property order:\n got  %v\n want %v", got, tc.keys)
			}
		})
	}
}

func TestPropertyFeature_Values(t *testing.T) {
	f, err := usecases.PropertyFeature(domain.PropertyAssessment{
		ID:               1,
		CivicNumberStart: ptr("123"),
		CivicNumberEnd:   ptr("125"),
		StreetName:       ptr("Rue Saint-Denis"),
		Suite:            ptr("4"),
		Borough:          ptr("Plateau-Mont-Royal"),
		UsageLabel:       ptr("Logement"),
		Geom:             square(0, 0, 1, 1),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	raw, err := json.Marshal(f.Properties)
	if err != nil {
		t.Fatal(err)
	}
	want := `{"address":"123-125 Rue Saint-Denis, suite 4","neighborhood":"Plateau-Mont-Royal","matricule":null,` +
		`"yearBuilt":null,"floors":null,"buildingType":"Logement","numUnits":null,"category":null,` +
		`"landArea":null,"buildingArea":null,"source":"Montreal Property Assessment"}`
	if string(raw) != want {
		t.Errorf("properties:\n got  %s\n want %s", raw, want)
	}
}

func TestBuildingPointFeature_UsesFirstCoordinate(t *testing.T) {
	f, err := usecases.BuildingPointFeature(domain.Building{ID: "b", Geom: square(-73.6, 45.5, -73.5, 45.6)})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	g, err := geojson.Decode(f.Geometry)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(g, geospatial.PointAt(-73.6, 45.5)) {
		t.Errorf("expected point at first coordinate, got %+v", g)
	}

	_, err = usecases.BuildingPointFeature(domain.Building{ID: "none"})
	if !errors.Is(err, geojson.ErrNoGeometry) {
		t.Errorf("expected ErrNoGeometry, got %v", err)
	}
}

func TestFeature_UnsupportedGeometry(t *testing.T) {
	_, err := usecases.LandUseFeature(domain.LandUse{ID: 1, Geom: geospatial.Geometry{Type: "LineString"}})
	if !errors.Is(err, geospatial.ErrUnsupportedGeometry) {
		t.Errorf("expected ErrUnsupportedGeometry, got %v", err)
	}
}
