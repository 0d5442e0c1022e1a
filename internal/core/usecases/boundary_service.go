package usecases

import (
	"context"

	"github.com/samirrijal/mtlmap/internal/core/domain"
	"github.com/samirrijal/mtlmap/internal/core/ports"
	"github.com/samirrijal/mtlmap/internal/pkg/geojson"
	"github.com/samirrijal/mtlmap/internal/pkg/geospatial"
)

// BoundaryService serves administrative boundaries and the borough reference list.
type BoundaryService struct {
	boundaries      ports.AdminBoundaryRepository
	arrondissements ports.ArrondissementRepository
	rt              readThrough
}

// NewBoundaryService creates a new BoundaryService. cache may be nil.
func NewBoundaryService(boundaries ports.AdminBoundaryRepository, arrondissements ports.ArrondissementRepository, cache ports.CacheService, ttlSeconds int) *BoundaryService {
	return &BoundaryService{
		boundaries:      boundaries,
		arrondissements: arrondissements,
		rt:              readThrough{cache: cache, ttl: ttlSeconds},
	}
}

// SearchGeoJSON returns the boundaries intersecting box, by name.
func (s *BoundaryService) SearchGeoJSON(ctx context.Context, box geospatial.BoundingBox) (*geojson.FeatureCollection, error) {
	key := cacheKey(string(domain.LayerAdminBoundaries), "box", boxKey(box))
	return cached(ctx, s.rt, key, func() (*geojson.FeatureCollection, error) {
		bs, err := s.boundaries.SearchInBox(ctx, box)
		if err != nil {
			return nil, err
		}
		return collect(bs, AdminBoundaryFeature)
	})
}

// AllGeoJSON returns every boundary.
func (s *BoundaryService) AllGeoJSON(ctx context.Context) (*geojson.FeatureCollection, error) {
	key := cacheKey(string(domain.LayerAdminBoundaries), "all")
	return cached(ctx, s.rt, key, func() (*geojson.FeatureCollection, error) {
		bs, err := s.boundaries.All(ctx)
		if err != nil {
			return nil, err
		}
		return collect(bs, AdminBoundaryFeature)
	})
}

// Arrondissements returns the borough reference list.
func (s *BoundaryService) Arrondissements(ctx context.Context) ([]domain.Arrondissement, error) {
	key := cacheKey(string(domain.LayerArrondissements), "list")
	return cached(ctx, s.rt, key, func() ([]domain.Arrondissement, error) {
		list, err := s.arrondissements.List(ctx)
		if list == nil && err == nil {
			list = []domain.Arrondissement{}
		}
		return list, err
	})
}
