package usecases

import (
	"context"
	"fmt"

	"github.com/samirrijal/mtlmap/internal/core/domain"
	"github.com/samirrijal/mtlmap/internal/core/ports"
	"github.com/samirrijal/mtlmap/internal/pkg/geojson"
	"github.com/samirrijal/mtlmap/internal/pkg/geospatial"
)

// BuildingService serves curated buildings, open-data footprints and
// property-assessment parcels.
type BuildingService struct {
	buildings  ports.BuildingRepository
	openData   ports.OpenDataBuildingRepository
	properties ports.PropertyAssessmentRepository
	rt         readThrough
}

// NewBuildingService creates a new BuildingService. cache may be nil.
func NewBuildingService(
	buildings ports.BuildingRepository,
	openData ports.OpenDataBuildingRepository,
	properties ports.PropertyAssessmentRepository,
	cache ports.CacheService,
	ttlSeconds int,
) *BuildingService {
	return &BuildingService{
		buildings:  buildings,
		openData:   openData,
		properties: properties,
		rt:         readThrough{cache: cache, ttl: ttlSeconds},
	}
}

// GetByID returns a building's details or domain.ErrNotFound.
func (s *BuildingService) GetByID(ctx context.Context, id string) (*domain.BuildingDetails, error) {
	b, err := s.buildings.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if b == nil {
		return nil, fmt.Errorf("building %q: %w", id, domain.ErrNotFound)
	}
	d := b.Details()
	return &d, nil
}

// Search returns the details of the buildings within the box.
func (s *BuildingService) Search(ctx context.Context, q domain.BuildingSearch) ([]domain.BuildingDetails, error) {
	bs, err := s.buildings.Search(ctx, q)
	if err != nil {
		return nil, err
	}
	out := make([]domain.BuildingDetails, len(bs))
	for i, b := range bs {
		out[i] = b.Details()
	}
	return out, nil
}

// SearchGeoJSON renders the matching buildings as points.
func (s *BuildingService) SearchGeoJSON(ctx context.Context, q domain.BuildingSearch) (*geojson.FeatureCollection, error) {
	return cached(ctx, s.rt, buildingKey("points", q), func() (*geojson.FeatureCollection, error) {
		bs, err := s.buildings.Search(ctx, q)
		if err != nil {
			return nil, err
		}
		return collect(bs, BuildingPointFeature)
	})
}

// SearchGeoJSONFull renders the matching buildings with their full geometry.
func (s *BuildingService) SearchGeoJSONFull(ctx context.Context, q domain.BuildingSearch) (*geojson.FeatureCollection, error) {
	return cached(ctx, s.rt, buildingKey("full", q), func() (*geojson.FeatureCollection, error) {
		bs, err := s.buildings.Search(ctx, q)
		if err != nil {
			return nil, err
		}
		return collect(bs, BuildingFeature)
	})
}

// SearchGeoJSONFootprints is SearchGeoJSONFull restricted to polygonal footprints.
func (s *BuildingService) SearchGeoJSONFootprints(ctx context.Context, q domain.BuildingSearch) (*geojson.FeatureCollection, error) {
	return cached(ctx, s.rt, buildingKey("footprints", q), func() (*geojson.FeatureCollection, error) {
		bs, err := s.buildings.SearchPolygons(ctx, q)
		if err != nil {
			return nil, err
		}
		return collect(bs, BuildingFeature)
	})
}

// SearchPropertyPolygons renders property-assessment parcels. A non-blank
// borough switches to borough mode, where the year and floor ranges are ignored.
func (s *BuildingService) SearchPropertyPolygons(ctx context.Context, q domain.PropertySearch) (*geojson.FeatureCollection, error) {
	key := cacheKey(string(domain.LayerPropertyAssessment), q.Mode().String(), boxKey(q.Box))
	if q.Mode() == domain.PropertyModeBorough {
		key += ":" + fmt.Sprintf("%q", q.Borough)
	} else {
		key += ":" + rangeKey(q.YearBuilt) + ":" + rangeKey(q.Floors)
	}
	return cached(ctx, s.rt, key, func() (*geojson.FeatureCollection, error) {
		ps, err := s.properties.Search(ctx, q)
		if err != nil {
			return nil, err
		}
		return collect(ps, PropertyFeature)
	})
}

// SearchOpenDataGeoJSON renders the open-data footprints intersecting box.
func (s *BuildingService) SearchOpenDataGeoJSON(ctx context.Context, box geospatial.BoundingBox) (*geojson.FeatureCollection, error) {
	key := cacheKey(string(domain.LayerMontrealBuildings), "box", boxKey(box))
	return cached(ctx, s.rt, key, func() (*geojson.FeatureCollection, error) {
		bs, err := s.openData.SearchInBox(ctx, box)
		if err != nil {
			return nil, err
		}
		return collect(bs, OpenDataBuildingFeature)
	})
}

func buildingKey(variant string, q domain.BuildingSearch) string {
	f := q.Filter
	return cacheKey(string(domain.LayerBuildings), variant, boxKey(q.Box),
		optString(f.Neighborhood), optString(f.BuildingType),
		rangeKey(f.YearBuilt), rangeKey(f.Floors))
}
