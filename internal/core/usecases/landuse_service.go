package usecases

import (
	"context"

	"github.com/samirrijal/mtlmap/internal/core/domain"
	"github.com/samirrijal/mtlmap/internal/core/ports"
	"github.com/samirrijal/mtlmap/internal/pkg/geojson"
	"github.com/samirrijal/mtlmap/internal/pkg/geospatial"
)

// LandUseService serves land-use zones.
type LandUseService struct {
	zones ports.LandUseRepository
	rt    readThrough
}

// NewLandUseService creates a new LandUseService. cache may be nil.
func NewLandUseService(zones ports.LandUseRepository, cache ports.CacheService, ttlSeconds int) *LandUseService {
	return &LandUseService{zones: zones, rt: readThrough{cache: cache, ttl: ttlSeconds}}
}

// AtPoint returns the zone containing pt. No match is an empty slice, not an error.
func (s *LandUseService) AtPoint(ctx context.Context, pt geospatial.Coordinate) ([]domain.LandUse, error) {
	zones, err := s.zones.AtPoint(ctx, pt)
	if err != nil {
		return nil, err
	}
	if zones == nil {
		zones = []domain.LandUse{}
	}
	return zones, nil
}

// SearchGeoJSON returns the largest zones intersecting box.
func (s *LandUseService) SearchGeoJSON(ctx context.Context, box geospatial.BoundingBox) (*geojson.FeatureCollection, error) {
	key := cacheKey(string(domain.LayerLandUse), "box", boxKey(box))
	return cached(ctx, s.rt, key, func() (*geojson.FeatureCollection, error) {
		zones, err := s.zones.SearchInBox(ctx, box)
		if err != nil {
			return nil, err
		}
		return collect(zones, LandUseFeature)
	})
}
