// Package memory serves every repository port from an immutable in-process
// snapshot of the layer files. It applies the same query policies as the
// PostGIS adapter without a spatial database.
package memory

import (
	"context"
	"fmt"
	"sync/atomic"

	"github.com/samirrijal/mtlmap/internal/core/domain"
	"github.com/samirrijal/mtlmap/internal/core/query"
	"github.com/samirrijal/mtlmap/internal/pkg/dataset"
	"github.com/samirrijal/mtlmap/internal/pkg/geospatial"
)

// Store implements the read repositories of ports over a Snapshot.
// Reload swaps the snapshot atomically; readers never see a partial one.
type Store struct {
	snap atomic.Pointer[domain.Snapshot]
	dir  string
}

// New wraps an already loaded snapshot.
func New(snap *domain.Snapshot) *Store {
	s := &Store{}
	s.snap.Store(snap)
	return s
}

// Open loads every layer file of dir.
func Open(dir string) (*Store, error) {
	snap, err := dataset.LoadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", dir, err)
	}
	s := New(snap)
	s.dir = dir
	return s, nil
}

// Reload re-reads the data directory the store was opened on.
func (s *Store) Reload(ctx context.Context) error {
	if s.dir == "" {
		return nil
	}
	snap, err := dataset.LoadDir(s.dir)
	if err != nil {
		return fmt.Errorf("reload %s: %w", s.dir, err)
	}
	s.snap.Store(snap)
	return nil
}

// Snapshot returns the current snapshot.
func (s *Store) Snapshot() *domain.Snapshot { return s.snap.Load() }

// Ping always succeeds.
func (s *Store) Ping(ctx context.Context) error { return ctx.Err() }

// Boundaries returns the AdminBoundaryRepository view.
func (s *Store) Boundaries() *BoundaryRepo { return &BoundaryRepo{s} }

// Arrondissements returns the ArrondissementRepository view.
func (s *Store) Arrondissements() *ArrondissementRepo { return &ArrondissementRepo{s} }

// Buildings returns the BuildingRepository view.
func (s *Store) Buildings() *BuildingRepo { return &BuildingRepo{s} }

// OpenData returns the OpenDataBuildingRepository view.
func (s *Store) OpenData() *OpenDataRepo { return &OpenDataRepo{s} }

// LandUse returns the LandUseRepository view.
func (s *Store) LandUse() *LandUseRepo { return &LandUseRepo{s} }

// Zonage returns the ZonageRepository view.
func (s *Store) Zonage() *ZonageRepo { return &ZonageRepo{s} }

// ZoneCells returns the ZoneCellRepository view.
func (s *Store) ZoneCells() *ZoneCellRepo { return &ZoneCellRepo{s} }

// Properties returns the PropertyAssessmentRepository view.
func (s *Store) Properties() *PropertyRepo { return &PropertyRepo{s} }

// BoundaryRepo implements ports.AdminBoundaryRepository.
type BoundaryRepo struct{ s *Store }

func (r *BoundaryRepo) SearchInBox(ctx context.Context, box geospatial.BoundingBox) ([]domain.AdminBoundary, error) {
	return query.Boundaries(r.s.Snapshot().AdminBoundaries, box), ctx.Err()
}

func (r *BoundaryRepo) All(ctx context.Context) ([]domain.AdminBoundary, error) {
	return query.AllBoundaries(r.s.Snapshot().AdminBoundaries), ctx.Err()
}

// ArrondissementRepo implements ports.ArrondissementRepository.
type ArrondissementRepo struct{ s *Store }

func (r *ArrondissementRepo) List(ctx context.Context) ([]domain.Arrondissement, error) {
	src := r.s.Snapshot().Arrondissements
	out := make([]domain.Arrondissement, len(src))
	copy(out, src)
	return out, ctx.Err()
}

// BuildingRepo implements ports.BuildingRepository.
type BuildingRepo struct{ s *Store }

func (r *BuildingRepo) GetByID(ctx context.Context, id string) (*domain.Building, error) {
	b, err := query.BuildingByID(r.s.Snapshot().Buildings, id)
	if err != nil {
		return nil, err
	}
	return &b, nil
}

func (r *BuildingRepo) Search(ctx context.Context, q domain.BuildingSearch) ([]domain.Building, error) {
	return query.Buildings(r.s.Snapshot().Buildings, q), ctx.Err()
}

func (r *BuildingRepo) SearchPolygons(ctx context.Context, q domain.BuildingSearch) ([]domain.Building, error) {
	return query.BuildingPolygons(r.s.Snapshot().Buildings, q), ctx.Err()
}

// OpenDataRepo implements ports.OpenDataBuildingRepository.
type OpenDataRepo struct{ s *Store }

func (r *OpenDataRepo) SearchInBox(ctx context.Context, box geospatial.BoundingBox) ([]domain.MontrealBuilding, error) {
	return query.OpenDataBuildings(r.s.Snapshot().MontrealBuildings, box), ctx.Err()
}

// LandUseRepo implements ports.LandUseRepository.
type LandUseRepo struct{ s *Store }

func (r *LandUseRepo) SearchInBox(ctx context.Context, box geospatial.BoundingBox) ([]domain.LandUse, error) {
	return query.LandUses(r.s.Snapshot().LandUses, box), ctx.Err()
}

func (r *LandUseRepo) AtPoint(ctx context.Context, pt geospatial.Coordinate) ([]domain.LandUse, error) {
	return query.LandUseAt(r.s.Snapshot().LandUses, pt), ctx.Err()
}

// ZonageRepo implements ports.ZonageRepository.
type ZonageRepo struct{ s *Store }

func (r *ZonageRepo) SearchInBox(ctx context.Context, box geospatial.BoundingBox) ([]domain.Zonage, error) {
	return query.ZonagesInBox(r.s.Snapshot().Zonages, box), ctx.Err()
}

func (r *ZonageRepo) AtPoint(ctx context.Context, pt geospatial.Coordinate) (*domain.Zonage, error) {
	z, err := query.ZonageAt(r.s.Snapshot().Zonages, pt)
	if err != nil {
		return nil, err
	}
	return &z, nil
}

func (r *ZonageRepo) DistinctArrondissements(ctx context.Context) ([]string, error) {
	return query.DistinctArrondissements(r.s.Snapshot().Zonages), ctx.Err()
}

func (r *ZonageRepo) ZoneCodesByBoundary(ctx context.Context, code3l string) ([]string, error) {
	snap := r.s.Snapshot()
	return query.ZoneCodesByBoundary(snap.Zonages, snap.AdminBoundaries, code3l), ctx.Err()
}

// ZoneCellRepo implements ports.ZoneCellRepository.
type ZoneCellRepo struct{ s *Store }

func (r *ZoneCellRepo) CodeAtPoint(ctx context.Context, pt geospatial.Coordinate) (*domain.ZoneCode, error) {
	c, err := query.ZoneCellAt(r.s.Snapshot().ZoneCells, pt)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// PropertyRepo implements ports.PropertyAssessmentRepository.
type PropertyRepo struct{ s *Store }

func (r *PropertyRepo) Search(ctx context.Context, q domain.PropertySearch) ([]domain.PropertyAssessment, error) {
	return query.Properties(r.s.Snapshot().Properties, q), ctx.Err()
}
