package query_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/samirrijal/mtlmap/internal/core/domain"
	"github.com/samirrijal/mtlmap/internal/core/query"
	"github.com/samirrijal/mtlmap/internal/pkg/geospatial"
)

func ptr[T any](v T) *T { return &v }

func rect(minLng, minLat, maxLng, maxLat float64) geospatial.Geometry {
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

var view = geospatial.Box(0, 0, 10, 10)

func TestLandUses_CapAndOrder(t *testing.T) {
	var zones []domain.LandUse
	// Ascending on input so the sort has work to do.
	for i := 0; i < 600; i++ {
		zones = append(zones, domain.LandUse{
			ID:      i,
			AreaSqm: ptr(float64(401 + i)),
			Geom:    rect(1, 1, 2, 2),
		})
	}

	got := query.LandUses(zones, view)
	require.Len(t, got, query.LandUseCap)
	require.Equal(t, 1000.0, *got[0].AreaSqm)
	require.Equal(t, 501.0, *got[499].AreaSqm)
	for i := 1; i < len(got); i++ {
		require.Greater(t, *got[i-1].AreaSqm, *got[i].AreaSqm)
	}
	require.Equal(t, 401.0, *zones[0].AreaSqm, "input left untouched")
}

func TestLandUses_NullAreaFirstAndStable(t *testing.T) {
	zones := []domain.LandUse{
		{ID: 1, AreaSqm: ptr(5.0), Geom: rect(1, 1, 2, 2)},
		{ID: 2, Geom: rect(1, 1, 2, 2)},
		{ID: 3, AreaSqm: ptr(5.0), Geom: rect(1, 1, 2, 2)},
		{ID: 4, AreaSqm: ptr(9.0), Geom: rect(20, 20, 30, 30)},
		{ID: 5, AreaSqm: ptr(7.0)},
	}
	got := query.LandUses(zones, view)
	ids := make([]int, len(got))
	for i, z := range got {
		ids[i] = z.ID
	}
	require.Equal(t, []int{2, 1, 3}, ids)
}

func TestLandUseAt(t *testing.T) {
	zones := []domain.LandUse{
		{ID: 1, Geom: rect(0, 0, 1, 1)},
		{ID: 2, Geom: rect(0, 0, 5, 5)},
		{ID: 3, Geom: rect(0, 0, 5, 5)},
	}
	got := query.LandUseAt(zones, geospatial.Coordinate{Lng: 3, Lat: 3})
	require.Len(t, got, 1)
	require.Equal(t, 2, got[0].ID, "first match in storage order")

	got = query.LandUseAt(zones, geospatial.Coordinate{Lng: 30, Lat: 30})
	require.NotNil(t, got)
	require.Empty(t, got)
}

func TestZonageAt(t *testing.T) {
	parcels := []domain.Zonage{
		{ID: 10, ZoneCode: ptr("H.1"), Geom: rect(0, 0, 5, 5)},
		{ID: 11, ZoneCode: ptr("C.2"), Geom: rect(5, 0, 10, 5)},
	}
	z, err := query.ZonageAt(parcels, geospatial.Coordinate{Lng: 7, Lat: 1})
	require.NoError(t, err)
	require.Equal(t, int64(11), z.ID)

	z, err = query.ZonageAt(parcels, geospatial.Coordinate{Lng: 5, Lat: 1})
	require.NoError(t, err)
	require.Equal(t, int64(10), z.ID, "shared edge goes to the first parcel")

	_, err = query.ZonageAt(parcels, geospatial.Coordinate{Lng: 7, Lat: 7})
	require.True(t, errors.Is(err, domain.ErrNotFound))
}

func TestZoneCellAt(t *testing.T) {
	cells := []domain.ZoneCell{
		{ID: 1, NumeroComplet: ptr("0001"), Geom: rect(0, 0, 1, 1)},
		{ID: 2, Geom: rect(2, 2, 3, 3)},
	}
	code, err := query.ZoneCellAt(cells, geospatial.Coordinate{Lng: 1, Lat: 0.5})
	require.NoError(t, err)
	require.Equal(t, "0001", code.ZoneCode)

	_, err = query.ZoneCellAt(cells, geospatial.Coordinate{Lng: 2.5, Lat: 2.5})
	require.ErrorIs(t, err, domain.ErrNotFound)

	_, err = query.ZoneCellAt(cells, geospatial.Coordinate{Lng: 9, Lat: 9})
	require.ErrorIs(t, err, domain.ErrNotFound)
}

func TestProperties_BoroughModeIgnoresRanges(t *testing.T) {
	parcels := []domain.PropertyAssessment{
		{ID: 1, Borough: ptr("Ahuntsic"), YearBuilt: ptr(1925), BuildingArea: ptr(100.0), Geom: rect(1, 1, 2, 2)},
		{ID: 2, Borough: ptr("Ahuntsic"), YearBuilt: ptr(2010), BuildingArea: ptr(300.0), Geom: rect(1, 1, 2, 2)},
		{ID: 3, Borough: ptr("Verdun"), YearBuilt: ptr(2015), BuildingArea: ptr(900.0), Geom: rect(1, 1, 2, 2)},
		{ID: 4, Borough: ptr("Ahuntsic"), YearBuilt: ptr(2020), BuildingArea: ptr(50.0), Geom: rect(40, 40, 41, 41)},
		{ID: 5, Borough: ptr("Ahuntsic"), YearBuilt: nil, BuildingArea: ptr(10.0), Geom: rect(1, 1, 2, 2)},
	}

	got := query.Properties(parcels, domain.PropertySearch{
		Box:       view,
		Borough:   "Ahuntsic",
		YearBuilt: domain.IntRange{Min: ptr(2000)},
	})
	require.Equal(t, []int64{2, 1, 5}, propertyIDs(got), "pre-2000 and unknown-year parcels are kept")

	got = query.Properties(parcels, domain.PropertySearch{
		Box:       view,
		YearBuilt: domain.IntRange{Min: ptr(2000)},
	})
	require.Equal(t, []int64{3, 2}, propertyIDs(got), "filtered mode applies the range across boroughs")
}

func TestProperties_Cap(t *testing.T) {
	parcels := make([]domain.PropertyAssessment, 0, query.PropertyCap+10)
	for i := 0; i < query.PropertyCap+10; i++ {
		parcels = append(parcels, domain.PropertyAssessment{
			ID:           int64(i),
			BuildingArea: ptr(float64(i)),
			Geom:         rect(1, 1, 2, 2),
		})
	}
	got := query.Properties(parcels, domain.PropertySearch{Box: view})
	require.Len(t, got, query.PropertyCap)
	require.Equal(t, int64(query.PropertyCap+9), got[0].ID)
}

func TestBuildings_WithinAndFilters(t *testing.T) {
	all := []domain.Building{
		{ID: "inside", Neighborhood: ptr("Plateau"), YearBuilt: ptr(1910), Geom: rect(1, 1, 2, 2)},
		{ID: "straddling", Neighborhood: ptr("Plateau"), Geom: rect(9, 9, 11, 11)},
		{ID: "point", Neighborhood: ptr("Plateau"), Geom: geospatial.PointAt(5, 5)},
		{ID: "other", Neighborhood: ptr("Verdun"), Geom: rect(3, 3, 4, 4)},
		{ID: "absent", Neighborhood: ptr("Plateau")},
	}
	s := domain.BuildingSearch{Box: view, Filter: domain.BuildingFilter{Neighborhood: ptr("Plateau")}}

	require.Equal(t, []string{"inside", "point"}, buildingIDs(query.Buildings(all, s)))
	require.Equal(t, []string{"inside"}, buildingIDs(query.BuildingPolygons(all, s)))

	s.Filter.YearBuilt = domain.IntRange{Max: ptr(1950)}
	require.Equal(t, []string{"inside"}, buildingIDs(query.Buildings(all, s)), "null year never matches a range")
}

func TestBuildingByID(t *testing.T) {
	all := []domain.Building{{ID: "a"}, {ID: "b"}}
	b, err := query.BuildingByID(all, "b")
	require.NoError(t, err)
	require.Equal(t, "b", b.ID)

	_, err = query.BuildingByID(all, "zz")
	require.ErrorIs(t, err, domain.ErrNotFound)
}

func TestBoundaries(t *testing.T) {
	all := []domain.AdminBoundary{
		{ID: 1, Name: ptr("Verdun"), Geom: rect(1, 1, 2, 2)},
		{ID: 2, Geom: rect(1, 1, 2, 2)},
		{ID: 3, Name: ptr("Anjou"), Geom: rect(3, 3, 4, 4)},
		{ID: 4, Name: ptr("Lachine"), Geom: rect(50, 50, 60, 60)},
		{ID: 5, Name: ptr("Outremont")},
	}
	got := query.Boundaries(all, view)
	ids := make([]int, len(got))
	for i, b := range got {
		ids[i] = b.ID
	}
	require.Equal(t, []int{3, 1, 2}, ids)

	require.Len(t, query.AllBoundaries(all), 4)
	require.Empty(t, query.Boundaries(all, geospatial.Box(10, 10, 0, 0)), "inverted box")
}

func TestZoneCodesByBoundary(t *testing.T) {
	boundaries := []domain.AdminBoundary{
		{ID: 1, Code3C: ptr("VMA"), Geom: rect(0, 0, 5, 5)},
		{ID: 2, Code3C: ptr("PMR"), Geom: rect(5, 0, 10, 5)},
	}
	zones := []domain.Zonage{
		{ID: 1, ZoneCode: ptr("B"), Geom: rect(1, 1, 2, 2)},
		{ID: 2, ZoneCode: ptr("A"), Geom: rect(4, 1, 6, 2)},
		{ID: 3, ZoneCode: ptr("B"), Geom: rect(3, 3, 4, 4)},
		{ID: 4, ZoneCode: ptr("Z"), Geom: rect(7, 7, 8, 8)},
		{ID: 5, Geom: rect(1, 1, 2, 2)},
	}
	require.Equal(t, []string{"A", "B"}, query.ZoneCodesByBoundary(zones, boundaries, "VMA"))
	require.Equal(t, []string{"A"}, query.ZoneCodesByBoundary(zones, boundaries, "PMR"))
	require.Empty(t, query.ZoneCodesByBoundary(zones, boundaries, "XXX"))
}

func TestDistinctArrondissements(t *testing.T) {
	zones := []domain.Zonage{
		{Arrondissement: ptr("Verdun")},
		{Arrondissement: ptr("Anjou")},
		{},
		{Arrondissement: ptr("Verdun")},
	}
	require.Equal(t, []string{"Anjou", "Verdun"}, query.DistinctArrondissements(zones))
}

func TestOpenDataAndZonagesInBox(t *testing.T) {
	b := []domain.MontrealBuilding{
		{ID: 1, Geom: rect(9, 9, 11, 11)},
		{ID: 2, Geom: rect(20, 20, 21, 21)},
	}
	got := query.OpenDataBuildings(b, view)
	require.Len(t, got, 1)
	require.Equal(t, int64(1), got[0].ID, "partially visible footprints intersect")

	z := []domain.Zonage{{ID: 7, Geom: rect(-5, -5, 0, 0)}, {ID: 8}}
	require.Len(t, query.ZonagesInBox(z, view), 1)
}

func propertyIDs(ps []domain.PropertyAssessment) []int64 {
	ids := make([]int64, len(ps))
	for i, p := range ps {
		ids[i] = p.ID
	}
	return ids
}

func buildingIDs(bs []domain.Building) []string {
	ids := make([]string, len(bs))
	for i, b := range bs {
		ids[i] = b.ID
	}
	return ids
}
