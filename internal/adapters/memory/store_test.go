package memory_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/samirrijal/mtlmap/internal/adapters/memory"
	"github.com/samirrijal/mtlmap/internal/core/domain"
	"github.com/samirrijal/mtlmap/internal/core/ports"
	"github.com/samirrijal/mtlmap/internal/pkg/geospatial"
)

var (
	_ ports.AdminBoundaryRepository      = (*memory.BoundaryRepo)(nil)
	_ ports.ArrondissementRepository     = (*memory.ArrondissementRepo)(nil)
	_ ports.BuildingRepository           = (*memory.BuildingRepo)(nil)
	_ ports.OpenDataBuildingRepository   = (*memory.OpenDataRepo)(nil)
	_ ports.LandUseRepository            = (*memory.LandUseRepo)(nil)
	_ ports.ZonageRepository             = (*memory.ZonageRepo)(nil)
	_ ports.ZoneCellRepository           = (*memory.ZoneCellRepo)(nil)
	_ ports.PropertyAssessmentRepository = (*memory.PropertyRepo)(nil)
	_ ports.LayerWriter                  = (*memory.Store)(nil)
	_ ports.Pinger                       = (*memory.Store)(nil)
)

const zonageLayer = `{"type":"FeatureCollection","features":[
 {"type":"Feature","id":1,"geometry":{"type":"MultiPolygon","coordinates":[[[[0,0],[4,0],[4,4],[0,4],[0,0]],[[1,1],[2,1],[2,2],[1,2],[1,1]]]]},
  "properties":{"zone_code":"H.1","arrondissement":"Verdun"}},
 {"type":"Feature","id":2,"geometry":{"type":"Polygon","coordinates":[[[4,0],[8,0],[8,4],[4,4],[4,0]]]},
  "properties":{"zone_code":"C.2","arrondissement":"Anjou"}}
]}`

const boundaryLayer = `{"type":"FeatureCollection","features":[
 {"type":"Feature","id":10,"geometry":{"type":"Polygon","coordinates":[[[5,1],[6,1],[6,2],[5,2],[5,1]]]},
  "properties":{"name":"Anjou","code_3c":"ANJ"}}
]}`

func openFixture(t *testing.T) *memory.Store {
	t.Helper()
	dir := t.TempDir()
	for name, body := range map[string]string{
		"zonage.geojson":           zonageLayer,
		"admin_boundaries.geojson": boundaryLayer,
	} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(body), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	s, err := memory.Open(dir)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	return s
}

func TestStore_ZonageAtPoint(t *testing.T) {
	repo := openFixture(t).Zonage()
	ctx := context.Background()

	z, err := repo.AtPoint(ctx, geospatial.Coordinate{Lng: 3, Lat: 3})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if z.ID != 1 {
		t.Errorf("expected parcel 1, got %d", z.ID)
	}

	// Inside the hole of parcel 1.
	_, err = repo.AtPoint(ctx, geospatial.Coordinate{Lng: 1.5, Lat: 1.5})
	if !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("expected ErrNotFound inside hole, got %v", err)
	}
}

func TestStore_ZonageSearchAndReference(t *testing.T) {
	repo := openFixture(t).Zonage()
	ctx := context.Background()

	zs, err := repo.SearchInBox(ctx, geospatial.Box(1.2, 1.2, 1.8, 1.8))
	if err != nil {
		t.Fatal(err)
	}
	if len(zs) != 0 {
		t.Errorf("box inside a hole should match nothing, got %d", len(zs))
	}

	names, _ := repo.DistinctArrondissements(ctx)
	if len(names) != 2 || names[0] != "Anjou" {
		t.Errorf("unexpected arrondissements %v", names)
	}

	codes, _ := repo.ZoneCodesByBoundary(ctx, "ANJ")
	if len(codes) != 1 || codes[0] != "C.2" {
		t.Errorf("unexpected zone codes %v", codes)
	}
}

func TestStore_ReplaceLayer(t *testing.T) {
	s := openFixture(t)
	ctx := context.Background()

	n, err := s.ReplaceLayer(ctx, domain.LayerZonage, &domain.Snapshot{})
	if err != nil {
		t.Fatal(err)
	}
	if n != 0 {
		t.Errorf("expected 0 records, got %d", n)
	}
	zs, _ := s.Zonage().SearchInBox(ctx, geospatial.Box(-10, -10, 10, 10))
	if len(zs) != 0 {
		t.Errorf("zonage should be empty after replace, got %d", len(zs))
	}
	if got := len(s.Snapshot().AdminBoundaries); got != 1 {
		t.Errorf("other layers must survive, got %d boundaries", got)
	}

	if err := s.Reload(ctx); err != nil {
		t.Fatal(err)
	}
	if got := len(s.Snapshot().Zonages); got != 2 {
		t.Errorf("reload should restore files, got %d parcels", got)
	}
}
