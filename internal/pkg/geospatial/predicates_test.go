package geospatial_test

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/samirrijal/mtlmap/internal/pkg/geospatial"
)

func mustPolygon(t *testing.T, exterior geospatial.Ring, holes ...geospatial.Ring) geospatial.Geometry {
	t.Helper()
	p, err := geospatial.NewPolygon(exterior, holes...)
	require.NoError(t, err)
	return p.Geometry()
}

// triangle with vertices (0,0), (10,0), (0,10); its envelope covers (9,9)
// but the body does not.
func triangle() geospatial.Ring {
	return geospatial.Ring{{Lng: 0, Lat: 0}, {Lng: 10, Lat: 0}, {Lng: 0, Lat: 10}, {Lng: 0, Lat: 0}}
}

func TestIntersects_Point(t *testing.T) {
	box := geospatial.Box(0, 0, 1, 1)
	require.True(t, geospatial.Intersects(geospatial.PointAt(0.5, 0.5), box))
	require.True(t, geospatial.Intersects(geospatial.PointAt(1, 1), box), "box edge counts")
	require.False(t, geospatial.Intersects(geospatial.PointAt(1.01, 0.5), box))
}

func TestIntersects_Polygon(t *testing.T) {
	donut := mustPolygon(t, square(0, 0, 10, 10), square(3, 3, 7, 7))
	tri := mustPolygon(t, triangle())
	// thin bar crossing the box with no vertex inside it
	bar := mustPolygon(t, square(-5, 4.9, 15, 5.1))

	cases := []struct {
		name string
		g    geospatial.Geometry
		box  geospatial.BoundingBox
		want bool
	}{
		{"vertex inside box", donut, geospatial.Box(-1, -1, 1, 1), true},
		{"box inside body", donut, geospatial.Box(1, 1, 2, 2), true},
		{"box inside hole", donut, geospatial.Box(4, 4, 6, 6), false},
		{"box crosses hole edge", donut, geospatial.Box(6, 4, 8, 6), true},
		{"box touches hole edge", donut, geospatial.Box(5, 5, 7, 6), true},
		{"box disjoint", donut, geospatial.Box(20, 20, 30, 30), false},
		{"envelope only", tri, geospatial.Box(8, 8, 9, 9), false},
		{"near hypotenuse", tri, geospatial.Box(4, 4, 6, 6), true},
		{"edge crossing without vertices", bar, geospatial.Box(0, 0, 10, 10), true},
		{"box contains everything", tri, geospatial.Box(-100, -100, 100, 100), true},
		{"zero-area box on boundary", tri, geospatial.Box(5, 0, 5, 0), true},
		{"inverted box", donut, geospatial.Box(10, 10, 0, 0), false},
		{"absent", geospatial.Absent, geospatial.Box(-100, -100, 100, 100), false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.want, geospatial.Intersects(tc.g, tc.box))
		})
	}
}

func TestWithin(t *testing.T) {
	a := mustPolygon(t, square(1, 1, 2, 2))
	b, _ := geospatial.NewPolygon(square(8, 8, 9, 9))
	pa, _ := geospatial.NewPolygon(square(1, 1, 2, 2))
	mp, _ := geospatial.NewMultiPolygon(pa, b)

	box := geospatial.Box(0, 0, 5, 5)
	require.True(t, geospatial.Within(a, box))
	require.True(t, geospatial.Within(a, geospatial.Box(1, 1, 2, 2)), "boundary counts")
	require.False(t, geospatial.Within(mp.Geometry(), box), "one member outside")
	require.True(t, geospatial.Within(mp.Geometry(), geospatial.Box(0, 0, 10, 10)))
	require.True(t, geospatial.Within(geospatial.PointAt(5, 5), box))
	require.False(t, geospatial.Within(geospatial.Absent, box))
	require.False(t, geospatial.Within(a, geospatial.Box(5, 5, 0, 0)))
}

func TestWithinImpliesIntersects(t *testing.T) {
	geoms := []geospatial.Geometry{
		geospatial.PointAt(0, 0),
		geospatial.PointAt(3, 7),
		mustPolygon(t, triangle()),
		mustPolygon(t, square(0, 0, 10, 10), square(3, 3, 7, 7)),
		mustPolygon(t, square(2, 2, 4, 4)),
		geospatial.Absent,
	}
	var boxes []geospatial.BoundingBox
	for _, lo := range []float64{-1, 0, 2, 3, 5} {
		for _, hi := range []float64{0, 4, 7, 10, 11} {
			boxes = append(boxes, geospatial.Box(lo, lo, hi, hi))
		}
	}
	for gi, g := range geoms {
		for _, b := range boxes {
			if geospatial.Within(g, b) {
				require.True(t, geospatial.Intersects(g, b), fmt.Sprintf("geometry %d box %+v", gi, b))
			}
		}
	}
}

func TestContains(t *testing.T) {
	donut := mustPolygon(t, square(0, 0, 10, 10), square(3, 3, 7, 7))

	require.True(t, geospatial.Contains(donut, geospatial.Coordinate{Lng: 1, Lat: 1}))
	require.False(t, geospatial.Contains(donut, geospatial.Coordinate{Lng: 5, Lat: 5}), "inside the hole")
	require.True(t, geospatial.Contains(donut, geospatial.Coordinate{Lng: 0, Lat: 5}), "exterior boundary")
	require.True(t, geospatial.Contains(donut, geospatial.Coordinate{Lng: 3, Lat: 5}), "hole boundary")
	require.True(t, geospatial.Contains(donut, geospatial.Coordinate{Lng: 10, Lat: 10}), "vertex")
	require.False(t, geospatial.Contains(donut, geospatial.Coordinate{Lng: 11, Lat: 5}))

	tri := mustPolygon(t, triangle())
	require.False(t, geospatial.Contains(tri, geospatial.Coordinate{Lng: 9, Lat: 9}))
	require.True(t, geospatial.Contains(tri, geospatial.Coordinate{Lng: 5, Lat: 5}), "on hypotenuse")

	require.False(t, geospatial.Contains(geospatial.Absent, geospatial.Coordinate{}))
}

func TestContains_MultiPolygon(t *testing.T) {
	a, _ := geospatial.NewPolygon(square(0, 0, 1, 1))
	b, _ := geospatial.NewPolygon(square(5, 5, 6, 6))
	mp, _ := geospatial.NewMultiPolygon(a, b)

	require.True(t, geospatial.Contains(mp.Geometry(), geospatial.Coordinate{Lng: 5.5, Lat: 5.5}))
	require.False(t, geospatial.Contains(mp.Geometry(), geospatial.Coordinate{Lng: 3, Lat: 3}))
}

func TestIntersectsGeometry(t *testing.T) {
	donut := mustPolygon(t, square(0, 0, 10, 10), square(3, 3, 7, 7))

	require.True(t, geospatial.IntersectsGeometry(donut, mustPolygon(t, square(9, 9, 12, 12))), "overlapping corner")
	require.True(t, geospatial.IntersectsGeometry(donut, mustPolygon(t, square(1, 1, 2, 2))), "nested in body")
	require.True(t, geospatial.IntersectsGeometry(mustPolygon(t, square(1, 1, 2, 2)), donut), "symmetric")
	require.False(t, geospatial.IntersectsGeometry(donut, mustPolygon(t, square(4, 4, 6, 6))), "inside the hole")
	require.True(t, geospatial.IntersectsGeometry(donut, mustPolygon(t, square(-5, -5, 20, 20))), "covering")
	require.False(t, geospatial.IntersectsGeometry(donut, mustPolygon(t, square(11, 11, 12, 12))))
	require.True(t, geospatial.IntersectsGeometry(donut, geospatial.PointAt(1, 1)))
	require.False(t, geospatial.IntersectsGeometry(donut, geospatial.Absent))
}
