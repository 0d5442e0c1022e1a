package memory

import (
	"context"
	"fmt"

	"github.com/samirrijal/mtlmap/internal/core/domain"
	"github.com/samirrijal/mtlmap/internal/pkg/dataset"
)

// ReplaceLayer implements ports.LayerWriter. It publishes a copy of the
// current snapshot with one layer swapped for the records held by src.
func (s *Store) ReplaceLayer(ctx context.Context, layer domain.Layer, src *domain.Snapshot) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	for {
		cur := s.snap.Load()
		next := *cur
		switch layer {
		case domain.LayerAdminBoundaries:
			next.AdminBoundaries = src.AdminBoundaries
		case domain.LayerArrondissements:
			next.Arrondissements = src.Arrondissements
		case domain.LayerBuildings:
			next.Buildings = src.Buildings
		case domain.LayerMontrealBuildings:
			next.MontrealBuildings = src.MontrealBuildings
		case domain.LayerLandUse:
			next.LandUses = src.LandUses
		case domain.LayerZonage:
			next.Zonages = src.Zonages
		case domain.LayerRawZonageTab:
			next.ZoneCells = src.ZoneCells
		case domain.LayerPropertyAssessment:
			next.Properties = src.Properties
		default:
			return 0, fmt.Errorf("%w: %q", dataset.ErrUnknownLayer, layer)
		}
		if s.snap.CompareAndSwap(cur, &next) {
			return next.Count(layer), nil
		}
	}
}
