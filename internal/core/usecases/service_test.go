package usecases_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/samirrijal/mtlmap/internal/core/domain"
	"github.com/samirrijal/mtlmap/internal/core/query"
	"github.com/samirrijal/mtlmap/internal/core/usecases"
	"github.com/samirrijal/mtlmap/internal/pkg/geospatial"
)

func TestLandUseService_AtPoint_EmptyNotError(t *testing.T) {
	svc := usecases.NewLandUseService(&mockLandUseRepo{}, nil, 0)
	zones, err := svc.AtPoint(context.Background(), geospatial.Coordinate{Lng: -73.6, Lat: 45.5})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if zones == nil || len(zones) != 0 {
		t.Errorf("expected empty slice, got %#v", zones)
	}
}

func TestZonageService_AtPoint_NotFound(t *testing.T) {
	svc := usecases.NewZonageService(&mockZonageRepo{}, nil, nil, 0)
	_, err := svc.AtPoint(context.Background(), geospatial.Coordinate{Lng: -73.6, Lat: 45.5})
	if !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestLandUseService_SearchGeoJSON_Cached(t *testing.T) {
	calls := 0
	repo := &mockLandUseRepo{
		searchFn: func(ctx context.Context, box geospatial.BoundingBox) ([]domain.LandUse, error) {
			calls++
			return []domain.LandUse{{ID: 1, Affectation: ptr("Industrie"), AreaSqm: ptr(12.5), Geom: square(0, 0, 1, 1)}}, nil
		},
	}
	cache := newMockCache()
	svc := usecases.NewLandUseService(repo, cache, 300)
	box := geospatial.Box(0, 0, 1, 1)

	first, err := svc.SearchGeoJSON(context.Background(), box)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := svc.SearchGeoJSON(context.Background(), box)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if calls != 1 {
		t.Errorf("expected 1 repository call, got %d", calls)
	}
	if second.Len() != 1 || second.Features[0].ID != first.Features[0].ID {
		t.Errorf("cached collection differs: %+v", second)
	}
	if keys := second.Features[0].Properties.Keys(); keys[0] != "affectation" || keys[2] != "areaSqm" {
		t.Errorf("cached properties lost their order: %v", keys)
	}

	// Re-import drops the entry.
	inv := usecases.NewCacheInvalidator(cache)
	if err := inv.HandleDatasetUpdated(context.Background(), &domain.DatasetUpdated{Layer: domain.LayerLandUse}); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.SearchGeoJSON(context.Background(), box); err != nil {
		t.Fatal(err)
	}
	if calls != 2 {
		t.Errorf("expected a fresh read after invalidation, got %d calls", calls)
	}
}

func TestLandUseService_SearchGeoJSON_NearbyBoxesCachedApart(t *testing.T) {
	zones := []domain.LandUse{{ID: 1, AreaSqm: ptr(4.0), Geom: square(1.0000003, 0, 2, 1)}}
	repo := &mockLandUseRepo{
		searchFn: func(ctx context.Context, box geospatial.BoundingBox) ([]domain.LandUse, error) {
			return query.LandUses(zones, box), nil
		},
	}
	svc := usecases.NewLandUseService(repo, newMockCache(), 300)

	short, err := svc.SearchGeoJSON(context.Background(), geospatial.Box(0, 0, 1.0000001, 1))
	if err != nil {
		t.Fatal(err)
	}
	long, err := svc.SearchGeoJSON(context.Background(), geospatial.Box(0, 0, 1.0000004, 1))
	if err != nil {
		t.Fatal(err)
	}
	if short.Len() != 0 {
		t.Errorf("box ending before the zone: expected 0 features, got %d", short.Len())
	}
	if long.Len() != 1 {
		t.Errorf("box reaching the zone: expected 1 feature, got %d", long.Len())
	}
}

func TestCache_DisabledWithZeroTTL(t *testing.T) {
	cache := newMockCache()
	svc := usecases.NewZonageService(&mockZonageRepo{
		arrondFn: func(ctx context.Context) ([]string, error) { return []string{"Anjou"}, nil },
	}, nil, cache, 0)
	if _, err := svc.Arrondissements(context.Background()); err != nil {
		t.Fatal(err)
	}
	if cache.sets != 0 {
		t.Errorf("expected no cache writes, got %d", cache.sets)
	}
}

func TestCacheInvalidator_ZoneCodesFollowBoundaries(t *testing.T) {
	cache := newMockCache()
	svc := usecases.NewZonageService(&mockZonageRepo{
		zoneCodesFn: func(ctx context.Context, code string) ([]string, error) { return []string{"H.1"}, nil },
	}, nil, cache, 60)
	if _, err := svc.ZoneCodes(context.Background(), "VMA"); err != nil {
		t.Fatal(err)
	}
	if len(cache.data) != 1 {
		t.Fatalf("expected 1 cached entry, got %d", len(cache.data))
	}
	inv := usecases.NewCacheInvalidator(cache)
	if err := inv.HandleDatasetUpdated(context.Background(), &domain.DatasetUpdated{Layer: domain.LayerAdminBoundaries}); err != nil {
		t.Fatal(err)
	}
	if len(cache.data) != 0 {
		t.Errorf("zone codes should be dropped when boundaries change, %d left", len(cache.data))
	}
}

func TestBoundaryService_SearchGeoJSON(t *testing.T) {
	repo := &mockBoundaryRepo{
		searchFn: func(ctx context.Context, box geospatial.BoundingBox) ([]domain.AdminBoundary, error) {
			return []domain.AdminBoundary{
				{ID: 1, Name: ptr("Anjou"), Geom: square(0, 0, 1, 1)},
				{ID: 2, Name: ptr("Verdun")},
			}, nil
		},
	}
	svc := usecases.NewBoundaryService(repo, &mockArrondissementRepo{}, nil, 0)
	fc, err := svc.SearchGeoJSON(context.Background(), geospatial.Box(0, 0, 1, 1))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if fc.Len() != 1 || fc.Features[0].ID != "admin-1" {
		t.Errorf("unexpected features %+v", fc.Features)
	}

	list, err := svc.Arrondissements(context.Background())
	if err != nil || list == nil {
		t.Errorf("expected empty list, got %v %v", list, err)
	}
}

func TestImportService_ImportFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "zonage.geojson")
	body := `{"type":"FeatureCollection","features":[
		{"type":"Feature","id":1,"geometry":{"type":"Polygon","coordinates":[[[0,0],[1,0],[1,1],[0,0]]]},"properties":{"zone_code":"H.1"}},
		{"type":"Feature","id":2,"geometry":{"type":"Polygon","coordinates":[[[0,0],[1,0]]]},"properties":{}}
	]}`
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}

	var written *domain.Snapshot
	writer := &mockWriter{replaceFn: func(ctx context.Context, layer domain.Layer, snap *domain.Snapshot) (int, error) {
		written = snap
		return len(snap.Zonages), nil
	}}
	pub := &mockPublisher{}
	svc := usecases.NewImportService(writer, pub)

	ev, err := svc.ImportFile(context.Background(), domain.LayerZonage, path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ev.Records != 1 || ev.Skipped != 1 || ev.Source != "zonage.geojson" {
		t.Errorf("unexpected event %+v", ev)
	}
	if written == nil || *written.Zonages[0].ZoneCode != "H.1" {
		t.Errorf("writer did not receive the decoded parcel")
	}

	if err := svc.Announce(context.Background(), ev); err != nil {
		t.Fatal(err)
	}
	if len(pub.published) != 1 || pub.published[0].Layer != domain.LayerZonage {
		t.Errorf("expected one dataset-updated event, got %+v", pub.published)
	}
}

func TestImportService_MissingFile(t *testing.T) {
	svc := usecases.NewImportService(&mockWriter{}, nil)
	_, err := svc.ImportFile(context.Background(), domain.LayerZonage, filepath.Join(t.TempDir(), "nope.geojson"))
	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("expected not-exist error, got %v", err)
	}
}
