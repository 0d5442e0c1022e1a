package usecases_test

import (
	"context"
	"strings"
	"sync"

	"github.com/samirrijal/mtlmap/internal/core/domain"
	"github.com/samirrijal/mtlmap/internal/pkg/geospatial"
)

func ptr[T any](v T) *T { return &v }

func square(minLng, minLat, maxLng, maxLat float64) geospatial.Geometry {
	p, err := geospatial.NewPolygon(geospatial.Ring{
		{Lng: minLng, Lat: minLat},
		{Lng: maxLng, Lat: minLat},
		{Lng: maxLng, Lat: maxLat},
		{Lng: minLng, Lat: maxLat},
		{Lng: minLng, Lat: minLat},
	})
	if err != nil {
		panic(err)
	}
	return p.Geometry()
}

// --- Mock BuildingRepository ---

type mockBuildingRepo struct {
	getByIDFn        func(ctx context.Context, id string) (*domain.Building, error)
	searchFn         func(ctx context.Context, s domain.BuildingSearch) ([]domain.Building, error)
	searchPolygonsFn func(ctx context.Context, s domain.BuildingSearch) ([]domain.Building, error)
}

func (m *mockBuildingRepo) GetByID(ctx context.Context, id string) (*domain.Building, error) {
	if m.getByIDFn != nil {
		return m.getByIDFn(ctx, id)
	}
	return nil, nil
}

func (m *mockBuildingRepo) Search(ctx context.Context, s domain.BuildingSearch) ([]domain.Building, error) {
	if m.searchFn != nil {
		return m.searchFn(ctx, s)
	}
	return nil, nil
}

func (m *mockBuildingRepo) SearchPolygons(ctx context.Context, s domain.BuildingSearch) ([]domain.Building, error) {
	if m.searchPolygonsFn != nil {
		return m.searchPolygonsFn(ctx, s)
	}
	return nil, nil
}

// --- Mock OpenDataBuildingRepository ---

type mockOpenDataRepo struct {
	searchFn func(ctx context.Context, box geospatial.BoundingBox) ([]domain.MontrealBuilding, error)
}

func (m *mockOpenDataRepo) SearchInBox(ctx context.Context, box geospatial.BoundingBox) ([]domain.MontrealBuilding, error) {
	if m.searchFn != nil {
		return m.searchFn(ctx, box)
	}
	return nil, nil
}

// --- Mock PropertyAssessmentRepository ---

type mockPropertyRepo struct {
	searchFn func(ctx context.Context, s domain.PropertySearch) ([]domain.PropertyAssessment, error)
}

func (m *mockPropertyRepo) Search(ctx context.Context, s domain.PropertySearch) ([]domain.PropertyAssessment, error) {
	if m.searchFn != nil {
		return m.searchFn(ctx, s)
	}
	return nil, nil
}

// --- Mock LandUseRepository ---

type mockLandUseRepo struct {
	searchFn  func(ctx context.Context, box geospatial.BoundingBox) ([]domain.LandUse, error)
	atPointFn func(ctx context.Context, pt geospatial.Coordinate) ([]domain.LandUse, error)
}

func (m *mockLandUseRepo) SearchInBox(ctx context.Context, box geospatial.BoundingBox) ([]domain.LandUse, error) {
	if m.searchFn != nil {
		return m.searchFn(ctx, box)
	}
	return nil, nil
}

func (m *mockLandUseRepo) AtPoint(ctx context.Context, pt geospatial.Coordinate) ([]domain.LandUse, error) {
	if m.atPointFn != nil {
		return m.atPointFn(ctx, pt)
	}
	return nil, nil
}

// --- Mock ZonageRepository ---

type mockZonageRepo struct {
	searchFn    func(ctx context.Context, box geospatial.BoundingBox) ([]domain.Zonage, error)
	atPointFn   func(ctx context.Context, pt geospatial.Coordinate) (*domain.Zonage, error)
	arrondFn    func(ctx context.Context) ([]string, error)
	zoneCodesFn func(ctx context.Context, code3l string) ([]string, error)
}

func (m *mockZonageRepo) SearchInBox(ctx context.Context, box geospatial.BoundingBox) ([]domain.Zonage, error) {
	if m.searchFn != nil {
		return m.searchFn(ctx, box)
	}
	return nil, nil
}

func (m *mockZonageRepo) AtPoint(ctx context.Context, pt geospatial.Coordinate) (*domain.Zonage, error) {
	if m.atPointFn != nil {
		return m.atPointFn(ctx, pt)
	}
	return nil, domain.ErrNotFound
}

func (m *mockZonageRepo) DistinctArrondissements(ctx context.Context) ([]string, error) {
	if m.arrondFn != nil {
		return m.arrondFn(ctx)
	}
	return nil, nil
}

func (m *mockZonageRepo) ZoneCodesByBoundary(ctx context.Context, code3l string) ([]string, error) {
	if m.zoneCodesFn != nil {
		return m.zoneCodesFn(ctx, code3l)
	}
	return nil, nil
}

// --- Mock AdminBoundaryRepository / ArrondissementRepository ---

type mockBoundaryRepo struct {
	searchFn func(ctx context.Context, box geospatial.BoundingBox) ([]domain.AdminBoundary, error)
	allFn    func(ctx context.Context) ([]domain.AdminBoundary, error)
}

func (m *mockBoundaryRepo) SearchInBox(ctx context.Context, box geospatial.BoundingBox) ([]domain.AdminBoundary, error) {
	if m.searchFn != nil {
		return m.searchFn(ctx, box)
	}
	return nil, nil
}

func (m *mockBoundaryRepo) All(ctx context.Context) ([]domain.AdminBoundary, error) {
	if m.allFn != nil {
		return m.allFn(ctx)
	}
	return nil, nil
}

type mockArrondissementRepo struct {
	listFn func(ctx context.Context) ([]domain.Arrondissement, error)
}

func (m *mockArrondissementRepo) List(ctx context.Context) ([]domain.Arrondissement, error) {
	if m.listFn != nil {
		return m.listFn(ctx)
	}
	return nil, nil
}

// --- Mock CacheService ---

type mockCache struct {
	mu   sync.Mutex
	data map[string][]byte
	sets int
}

func newMockCache() *mockCache { return &mockCache{data: map[string][]byte{}} }

func (m *mockCache) Get(ctx context.Context, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.data[key]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return v, nil
}

func (m *mockCache) Set(ctx context.Context, key string, value []byte, ttlSeconds int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = value
	m.sets++
	return nil
}

func (m *mockCache) Delete(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
	return nil
}

func (m *mockCache) DeletePrefix(ctx context.Context, prefix string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for k := range m.data {
		if strings.HasPrefix(k, prefix) {
			delete(m.data, k)
			n++
		}
	}
	return n, nil
}

// --- Mock LayerWriter / EventPublisher ---

type mockWriter struct {
	replaceFn func(ctx context.Context, layer domain.Layer, snap *domain.Snapshot) (int, error)
}

func (m *mockWriter) ReplaceLayer(ctx context.Context, layer domain.Layer, snap *domain.Snapshot) (int, error) {
	if m.replaceFn != nil {
		return m.replaceFn(ctx, layer, snap)
	}
	return snap.Count(layer), nil
}

type mockPublisher struct {
	published []*domain.DatasetUpdated
}

func (m *mockPublisher) PublishDatasetUpdated(ctx context.Context, ev *domain.DatasetUpdated) error {
	m.published = append(m.published, ev)
	return nil
}

func (m *mockPublisher) PublishBroadcast(ctx context.Context, data []byte) error { return nil }
