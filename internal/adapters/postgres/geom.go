package postgres

import (
	"fmt"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/encoding/wkb"

	"github.com/samirrijal/mtlmap/internal/pkg/geospatial"
)

// Geometry columns travel as WKB: read with ST_AsBinary, written with
// ST_GeomFromWKB(..., 4326). A NULL column or an empty geometry maps to
// Absent; empty members of a multipolygon are skipped.

func fromWKB(b []byte) (geospatial.Geometry, error) {
	if len(b) == 0 {
		return geospatial.Absent, nil
	}
	g, err := wkb.Unmarshal(b)
	if err != nil {
		return geospatial.Absent, fmt.Errorf("wkb: %w", err)
	}
	return fromOrb(g)
}

func fromOrb(g orb.Geometry) (geospatial.Geometry, error) {
	switch t := g.(type) {
	case orb.Point:
		return geospatial.PointAt(t[0], t[1]), nil
	case orb.Polygon:
		if len(t) == 0 {
			return geospatial.Absent, nil
		}
		p, err := polygonFromOrb(t)
		if err != nil {
			return geospatial.Absent, err
		}
		return p.Geometry(), nil
	case orb.MultiPolygon:
		polys := make([]geospatial.Polygon, 0, len(t))
		for _, op := range t {
			if len(op) == 0 {
				continue
			}
			p, err := polygonFromOrb(op)
			if err != nil {
				return geospatial.Absent, err
			}
			polys = append(polys, p)
		}
		if len(polys) == 0 {
			return geospatial.Absent, nil
		}
		mp, err := geospatial.NewMultiPolygon(polys...)
		if err != nil {
			return geospatial.Absent, err
		}
		return mp.Geometry(), nil
	}
	return geospatial.Absent, fmt.Errorf("%w: %s", geospatial.ErrUnsupportedGeometry, g.GeoJSONType())
}

func polygonFromOrb(op orb.Polygon) (geospatial.Polygon, error) {
	if len(op) == 0 {
		return geospatial.Polygon{}, fmt.Errorf("%w: polygon has no rings", geospatial.ErrInvalidGeometry)
	}
	rings := make([]geospatial.Ring, len(op))
	for i, r := range op {
		ring := make(geospatial.Ring, len(r))
		for j, pt := range r {
			ring[j] = geospatial.Coordinate{Lng: pt[0], Lat: pt[1]}
		}
		rings[i] = ring
	}
	return geospatial.NewPolygon(rings[0], rings[1:]...)
}

func toWKB(g geospatial.Geometry) ([]byte, error) {
	var og orb.Geometry
	switch g.Type {
	case geospatial.TypeAbsent:
		return nil, nil
	case geospatial.TypePoint:
		og = orb.Point{g.Point.Lng, g.Point.Lat}
	case geospatial.TypePolygon:
		og = polygonToOrb(g.Polygon)
	case geospatial.TypeMultiPolygon:
		mp := make(orb.MultiPolygon, len(g.MultiPolygon))
		for i, p := range g.MultiPolygon {
			mp[i] = polygonToOrb(p)
		}
		og = mp
	default:
		return nil, fmt.Errorf("%w: %q", geospatial.ErrUnsupportedGeometry, g.Type)
	}
	return wkb.Marshal(og)
}

func polygonToOrb(p geospatial.Polygon) orb.Polygon {
	out := make(orb.Polygon, 0, 1+len(p.Holes))
	for _, r := range p.Rings() {
		ring := make(orb.Ring, len(r))
		for i, c := range r {
			ring[i] = orb.Point{c.Lng, c.Lat}
		}
		out = append(out, ring)
	}
	return out
}
