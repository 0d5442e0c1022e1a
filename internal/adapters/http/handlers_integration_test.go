//go:build integration
// +build integration

package http_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	handler "github.com/samirrijal/mtlmap/internal/adapters/http"
	"github.com/samirrijal/mtlmap/internal/adapters/postgres"
	"github.com/samirrijal/mtlmap/internal/core/domain"
	"github.com/samirrijal/mtlmap/internal/core/usecases"
	"github.com/samirrijal/mtlmap/internal/pkg/config"
)

// setupTestDB connects to the test database described by MTLMAP_* env vars.
// The schema is expected to be migrated already.
func setupTestDB(t *testing.T) *postgres.DB {
	cfg, err := config.Load("mtlmap-test")
	if err != nil {
		t.Fatalf("load config: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	db, err := postgres.New(ctx, cfg.Database.DSN(), 4)
	if err != nil {
		t.Fatalf("connect db: %v", err)
	}
	t.Cleanup(db.Close)
	return db
}

// seedLayers replaces every layer of the fixture in the database.
func seedLayers(t *testing.T, db *postgres.DB) {
	ctx := context.Background()
	w := postgres.NewLayerWriter(db)
	snap := fixture()
	for _, layer := range domain.Layers {
		if _, err := w.ReplaceLayer(ctx, layer, snap); err != nil {
			t.Fatalf("seed %s: %v", layer, err)
		}
	}
}

func setupPostgresDeps(db *postgres.DB) *handler.Dependencies {
	boundaries := postgres.NewBoundaryRepo(db)
	buildings := postgres.NewBuildingRepo(db)
	zonage := postgres.NewZonageRepo(db)

	return &handler.Dependencies{
		Boundaries: usecases.NewBoundaryService(boundaries, boundaries, nil, 0),
		Buildings:  usecases.NewBuildingService(buildings, buildings, postgres.NewPropertyRepo(db), nil, 0),
		LandUse:    usecases.NewLandUseService(postgres.NewLandUseRepo(db), nil, 0),
		Zonage:     usecases.NewZonageService(zonage, zonage, nil, 0),
		Storage:    db,
	}
}

func TestBoundariesInBox_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	db := setupTestDB(t)
	seedLayers(t, db)
	app := setupApp(setupPostgresDeps(db))

	status, body, _ := get(t, app, "/api/admin-boundaries/search/geojson?minLng=-1&minLat=-1&maxLng=9&maxLat=5")
	if status != 200 {
		t.Fatalf("expected 200, got %d: %s", status, body)
	}
	fc := decodeCollection(t, body)
	if len(fc.Features) != 2 {
		t.Fatalf("expected 2 boundaries, got %d", len(fc.Features))
	}
	if fc.Features[0].Properties["name"] != "Anjou" {
		t.Errorf("expected Anjou first, got %v", fc.Features[0].Properties["name"])
	}
}

func TestGetBuilding_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	db := setupTestDB(t)
	seedLayers(t, db)
	app := setupApp(setupPostgresDeps(db))

	status, body, _ := get(t, app, "/api/buildings/b1")
	if status != 200 {
		t.Fatalf("expected 200, got %d: %s", status, body)
	}
	var b domain.BuildingDetails
	if err := json.Unmarshal(body, &b); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if b.ID != "b1" || b.Longitude == nil || *b.Longitude != 1 {
		t.Errorf("unexpected building %+v", b)
	}

	if status, _, _ := get(t, app, "/api/buildings/missing"); status != 404 {
		t.Errorf("expected 404, got %d", status)
	}
}

func TestPropertyPolygons_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	db := setupTestDB(t)
	seedLayers(t, db)
	app := setupApp(setupPostgresDeps(db))

	status, body, headers := get(t, app, "/api/buildings/search/geojson/polygons?minLng=0&minLat=0&maxLng=4&maxLat=4&minFloors=5")
	if status != 200 {
		t.Fatalf("expected 200, got %d: %s", status, body)
	}
	if headers["X-Query-Mode"] != "filtered" {
		t.Errorf("expected filtered mode, got %q", headers["X-Query-Mode"])
	}
	if fc := decodeCollection(t, body); len(fc.Features) != 1 {
		t.Errorf("expected 1 parcel, got %d", len(fc.Features))
	}
}

func TestZonage_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	db := setupTestDB(t)
	seedLayers(t, db)
	app := setupApp(setupPostgresDeps(db))

	status, body, _ := get(t, app, "/api/zonage/zone-codes?code3l=VER")
	if status != 200 {
		t.Fatalf("expected 200, got %d: %s", status, body)
	}
	var codes []string
	if err := json.Unmarshal(body, &codes); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(codes) != 1 || codes[0] != "H.1" {
		t.Errorf("expected [H.1], got %v", codes)
	}

	if status, _, _ := get(t, app, "/api/zonage-tab/at-point?lng=50&lat=50"); status != 404 {
		t.Errorf("expected 404 outside the grid, got %d", status)
	}
}
