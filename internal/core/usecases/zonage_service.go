package usecases

import (
	"context"

	"github.com/samirrijal/mtlmap/internal/core/domain"
	"github.com/samirrijal/mtlmap/internal/core/ports"
	"github.com/samirrijal/mtlmap/internal/pkg/geojson"
	"github.com/samirrijal/mtlmap/internal/pkg/geospatial"
)

// ZonageService serves zoning parcels and the raw zoning grid.
type ZonageService struct {
	parcels ports.ZonageRepository
	cells   ports.ZoneCellRepository
	rt      readThrough
}

// NewZonageService creates a new ZonageService. cache may be nil.
func NewZonageService(parcels ports.ZonageRepository, cells ports.ZoneCellRepository, cache ports.CacheService, ttlSeconds int) *ZonageService {
	return &ZonageService{parcels: parcels, cells: cells, rt: readThrough{cache: cache, ttl: ttlSeconds}}
}

// AtPoint returns the parcel containing pt or domain.ErrNotFound.
func (s *ZonageService) AtPoint(ctx context.Context, pt geospatial.Coordinate) (*domain.Zonage, error) {
	return s.parcels.AtPoint(ctx, pt)
}

// SearchGeoJSON returns the parcels intersecting box.
func (s *ZonageService) SearchGeoJSON(ctx context.Context, box geospatial.BoundingBox) (*geojson.FeatureCollection, error) {
	key := cacheKey(string(domain.LayerZonage), "box", boxKey(box))
	return cached(ctx, s.rt, key, func() (*geojson.FeatureCollection, error) {
		zs, err := s.parcels.SearchInBox(ctx, box)
		if err != nil {
			return nil, err
		}
		return collect(zs, ZonageFeature)
	})
}

// Arrondissements returns the distinct arrondissement names of the parcels.
func (s *ZonageService) Arrondissements(ctx context.Context) ([]string, error) {
	key := cacheKey(string(domain.LayerZonage), "arrondissements")
	return cached(ctx, s.rt, key, func() ([]string, error) {
		return nonNil(s.parcels.DistinctArrondissements(ctx))
	})
}

// ZoneCodes returns the distinct zone codes of the parcels intersecting the
// boundary identified by code3l.
func (s *ZonageService) ZoneCodes(ctx context.Context, code3l string) ([]string, error) {
	key := cacheKey(zoneCodesKeys, code3l)
	return cached(ctx, s.rt, key, func() ([]string, error) {
		return nonNil(s.parcels.ZoneCodesByBoundary(ctx, code3l))
	})
}

// ZoneCodeAtPoint returns the raw grid code at pt or domain.ErrNotFound.
func (s *ZonageService) ZoneCodeAtPoint(ctx context.Context, pt geospatial.Coordinate) (*domain.ZoneCode, error) {
	return s.cells.CodeAtPoint(ctx, pt)
}

func nonNil(list []string, err error) ([]string, error) {
	if list == nil && err == nil {
		list = []string{}
	}
	return list, err
}
