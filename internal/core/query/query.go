// Package query holds the per-kind filter, ordering and cap policies of the
// record search operations. The functions are pure: they take a candidate
// snapshot in storage order and never mutate it. The PostGIS adapter pushes the
// same policies into SQL; the in-memory store calls these directly.
package query

import (
	"fmt"
	"sort"

	"github.com/samirrijal/mtlmap/internal/core/domain"
	"github.com/samirrijal/mtlmap/internal/pkg/geospatial"
)

const (
	// LandUseCap bounds a land-use bounding box search.
	LandUseCap = 500
	// PropertyCap bounds a property-assessment search.
	PropertyCap = 5000
)

// Boundaries returns the boundaries intersecting box, by name ascending with
// unnamed boundaries last.
func Boundaries(all []domain.AdminBoundary, box geospatial.BoundingBox) []domain.AdminBoundary {
	out := filter(all, func(b domain.AdminBoundary) bool {
		return geospatial.Intersects(b.Geom, box)
	})
	sort.SliceStable(out, func(i, j int) bool {
		return ascNullsLast(out[i].Name, out[j].Name)
	})
	return out
}

// AllBoundaries returns every boundary that has a geometry, in storage order.
func AllBoundaries(all []domain.AdminBoundary) []domain.AdminBoundary {
	return filter(all, func(b domain.AdminBoundary) bool { return !b.Geom.IsAbsent() })
}

// Buildings returns the buildings entirely within the box that pass the filter.
func Buildings(all []domain.Building, s domain.BuildingSearch) []domain.Building {
	return filter(all, func(b domain.Building) bool {
		return geospatial.Within(b.Geom, s.Box) && s.Filter.Match(b)
	})
}

// BuildingPolygons is Buildings restricted to polygonal footprints.
func BuildingPolygons(all []domain.Building, s domain.BuildingSearch) []domain.Building {
	return filter(all, func(b domain.Building) bool {
		return b.Geom.IsPolygonal() && geospatial.Within(b.Geom, s.Box) && s.Filter.Match(b)
	})
}

// BuildingByID returns the building with the given id.
func BuildingByID(all []domain.Building, id string) (domain.Building, error) {
	for _, b := range all {
		if b.ID == id {
			return b, nil
		}
	}
	return domain.Building{}, fmt.Errorf("building %q: %w", id, domain.ErrNotFound)
}

// OpenDataBuildings returns the open-data footprints intersecting box.
func OpenDataBuildings(all []domain.MontrealBuilding, box geospatial.BoundingBox) []domain.MontrealBuilding {
	return filter(all, func(b domain.MontrealBuilding) bool {
		return geospatial.Intersects(b.Geom, box)
	})
}

// LandUses returns at most LandUseCap zones intersecting box, largest area first.
// Zones with no area sort before every sized zone.
func LandUses(all []domain.LandUse, box geospatial.BoundingBox) []domain.LandUse {
	out := filter(all, func(l domain.LandUse) bool {
		return geospatial.Intersects(l.Geom, box)
	})
	sort.SliceStable(out, func(i, j int) bool {
		return descNullsFirst(out[i].AreaSqm, out[j].AreaSqm)
	})
	return capped(out, LandUseCap)
}

// LandUseAt returns the first zone containing pt, or an empty slice.
func LandUseAt(all []domain.LandUse, pt geospatial.Coordinate) []domain.LandUse {
	for _, l := range all {
		if geospatial.Contains(l.Geom, pt) {
			return []domain.LandUse{l}
		}
	}
	return []domain.LandUse{}
}

// ZonagesInBox returns the zoning parcels intersecting box in storage order.
func ZonagesInBox(all []domain.Zonage, box geospatial.BoundingBox) []domain.Zonage {
	return filter(all, func(z domain.Zonage) bool {
		return geospatial.Intersects(z.Geom, box)
	})
}

// ZonageAt returns the first parcel containing pt. Overlapping parcels are
// resolved by storage order.
func ZonageAt(all []domain.Zonage, pt geospatial.Coordinate) (domain.Zonage, error) {
	for _, z := range all {
		if geospatial.Contains(z.Geom, pt) {
			return z, nil
		}
	}
	return domain.Zonage{}, fmt.Errorf("zonage at (%g, %g): %w", pt.Lng, pt.Lat, domain.ErrNotFound)
}

// ZoneCellAt returns the code of the first raw zoning cell touching pt.
// A matching cell without a code counts as no match.
func ZoneCellAt(all []domain.ZoneCell, pt geospatial.Coordinate) (domain.ZoneCode, error) {
	probe := geospatial.Box(pt.Lng, pt.Lat, pt.Lng, pt.Lat)
	for _, c := range all {
		if !geospatial.Intersects(c.Geom, probe) {
			continue
		}
		if c.NumeroComplet == nil {
			break
		}
		return domain.ZoneCode{ZoneCode: *c.NumeroComplet}, nil
	}
	return domain.ZoneCode{}, fmt.Errorf("zone cell at (%g, %g): %w", pt.Lng, pt.Lat, domain.ErrNotFound)
}

// Properties runs a property-assessment search. In borough mode only the box
// and the exact borough are checked; the year and floor ranges are ignored.
// Results are ordered by building area descending and capped at PropertyCap.
func Properties(all []domain.PropertyAssessment, s domain.PropertySearch) []domain.PropertyAssessment {
	var keep func(domain.PropertyAssessment) bool
	switch s.Mode() {
	case domain.PropertyModeBorough:
		keep = func(p domain.PropertyAssessment) bool {
			return p.Borough != nil && *p.Borough == s.Borough &&
				geospatial.Intersects(p.Geom, s.Box)
		}
	default:
		keep = func(p domain.PropertyAssessment) bool {
			return s.YearBuilt.Match(p.YearBuilt) && s.Floors.Match(p.Floors) &&
				geospatial.Intersects(p.Geom, s.Box)
		}
	}
	out := filter(all, keep)
	sort.SliceStable(out, func(i, j int) bool {
		return descNullsFirst(out[i].BuildingArea, out[j].BuildingArea)
	})
	return capped(out, PropertyCap)
}

// DistinctArrondissements returns the distinct non-null arrondissement names
// of the zoning parcels, ascending.
func DistinctArrondissements(all []domain.Zonage) []string {
	return distinctSorted(all, func(z domain.Zonage) *string { return z.Arrondissement })
}

// ZoneCodesByBoundary returns the distinct zone codes of the parcels that
// intersect any boundary whose code3c equals code, ascending.
func ZoneCodesByBoundary(zones []domain.Zonage, boundaries []domain.AdminBoundary, code string) []string {
	var targets []geospatial.Geometry
	for _, b := range boundaries {
		if b.Code3C != nil && *b.Code3C == code && !b.Geom.IsAbsent() {
			targets = append(targets, b.Geom)
		}
	}
	if len(targets) == 0 {
		return []string{}
	}
	hits := filter(zones, func(z domain.Zonage) bool {
		for _, g := range targets {
			if geospatial.IntersectsGeometry(z.Geom, g) {
				return true
			}
		}
		return false
	})
	return distinctSorted(hits, func(z domain.Zonage) *string { return z.ZoneCode })
}

func filter[T any](items []T, keep func(T) bool) []T {
	out := make([]T, 0)
	for _, it := range items {
		if keep(it) {
			out = append(out, it)
		}
	}
	return out
}

func capped[T any](items []T, n int) []T {
	if len(items) > n {
		return items[:n]
	}
	return items
}

func distinctSorted[T any](items []T, key func(T) *string) []string {
	seen := make(map[string]struct{})
	out := make([]string, 0)
	for _, it := range items {
		k := key(it)
		if k == nil {
			continue
		}
		if _, dup := seen[*k]; dup {
			continue
		}
		seen[*k] = struct{}{}
		out = append(out, *k)
	}
	sort.Strings(out)
	return out
}

// descNullsFirst orders like PostgreSQL ORDER BY x DESC.
func descNullsFirst(a, b *float64) bool {
	switch {
	case a == nil:
		return b != nil
	case b == nil:
		return false
	}
	return *a > *b
}

// ascNullsLast orders like PostgreSQL ORDER BY x ASC.
func ascNullsLast(a, b *string) bool {
	switch {
	case a == nil:
		return false
	case b == nil:
		return true
	}
	return *a < *b
}
