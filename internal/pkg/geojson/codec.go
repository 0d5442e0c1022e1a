// Package geojson converts between the geospatial geometry model and the
// GeoJSON interchange form, and carries the Feature / FeatureCollection types
// returned by the API.
package geojson

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/samirrijal/mtlmap/internal/pkg/geospatial"
)

// ErrNoGeometry is returned by Encode for absent geometry and for polygons
// whose rings are all degenerate. Callers drop the feature.
var ErrNoGeometry = errors.New("no geometry")

// Geometry is the wire form {"type": ..., "coordinates": ...}.
type Geometry struct {
	Type        string          `json:"type"`
	Coordinates json.RawMessage `json:"coordinates"`
}

type (
	position     [2]float64
	ringCoords   []position
	polygonCoord []ringCoords
)

// Encode converts g to its wire form. Degenerate hole rings are skipped, and
// so are multipolygon members with a degenerate exterior.
func Encode(g geospatial.Geometry) (*Geometry, error) {
	var coords any
	switch g.Type {
	case geospatial.TypeAbsent:
		return nil, ErrNoGeometry
	case geospatial.TypePoint:
		coords = position{g.Point.Lng, g.Point.Lat}
	case geospatial.TypePolygon:
		p, ok := encodePolygon(g.Polygon)
		if !ok {
			return nil, ErrNoGeometry
		}
		coords = p
	case geospatial.TypeMultiPolygon:
		mp := make([]polygonCoord, 0, len(g.MultiPolygon))
		for _, poly := range g.MultiPolygon {
			if p, ok := encodePolygon(poly); ok {
				mp = append(mp, p)
			}
		}
		if len(mp) == 0 {
			return nil, ErrNoGeometry
		}
		coords = mp
	default:
		return nil, fmt.Errorf("%w: %q", geospatial.ErrUnsupportedGeometry, g.Type)
	}

	raw, err := json.Marshal(coords)
	if err != nil {
		// NaN and Inf have no JSON form.
		return nil, fmt.Errorf("%w: %v", geospatial.ErrInvalidGeometry, err)
	}
	return &Geometry{Type: string(g.Type), Coordinates: raw}, nil
}

func encodePolygon(p geospatial.Polygon) (polygonCoord, bool) {
	if p.Exterior.Degenerate() {
		return nil, false
	}
	out := make(polygonCoord, 0, 1+len(p.Holes))
	out = append(out, encodeRing(p.Exterior))
	for _, h := range p.Holes {
		if h.Degenerate() {
			continue
		}
		out = append(out, encodeRing(h))
	}
	return out, true
}

func encodeRing(r geospatial.Ring) ringCoords {
	out := make(ringCoords, len(r))
	for i, c := range r {
		out[i] = position{c.Lng, c.Lat}
	}
	return out
}

// Decode is the inverse of Encode. A nil geometry decodes to Absent.
func Decode(g *Geometry) (geospatial.Geometry, error) {
	if g == nil {
		return geospatial.Absent, nil
	}
	switch geospatial.Type(g.Type) {
	case geospatial.TypePoint:
		var pos []float64
		if err := unmarshalCoords(g.Coordinates, &pos); err != nil {
			return geospatial.Absent, err
		}
		if len(pos) < 2 {
			return geospatial.Absent, fmt.Errorf("%w: point has %d ordinates", geospatial.ErrInvalidGeometry, len(pos))
		}
		return geospatial.PointAt(pos[0], pos[1]), nil

	case geospatial.TypePolygon:
		var rings [][][]float64
		if err := unmarshalCoords(g.Coordinates, &rings); err != nil {
			return geospatial.Absent, err
		}
		p, err := decodePolygon(rings)
		if err != nil {
			return geospatial.Absent, err
		}
		return p.Geometry(), nil

	case geospatial.TypeMultiPolygon:
		var polys [][][][]float64
		if err := unmarshalCoords(g.Coordinates, &polys); err != nil {
			return geospatial.Absent, err
		}
		members := make([]geospatial.Polygon, 0, len(polys))
		for i, rings := range polys {
			p, err := decodePolygon(rings)
			if err != nil {
				return geospatial.Absent, fmt.Errorf("polygon %d: %w", i, err)
			}
			members = append(members, p)
		}
		mp, err := geospatial.NewMultiPolygon(members...)
		if err != nil {
			return geospatial.Absent, err
		}
		return mp.Geometry(), nil
	}
	return geospatial.Absent, fmt.Errorf("%w: %q", geospatial.ErrUnsupportedGeometry, g.Type)
}

// Unmarshal decodes a JSON geometry object. JSON null decodes to Absent.
func Unmarshal(data []byte) (geospatial.Geometry, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return geospatial.Absent, nil
	}
	var g Geometry
	if err := json.Unmarshal(data, &g); err != nil {
		return geospatial.Absent, fmt.Errorf("%w: %v", geospatial.ErrInvalidGeometry, err)
	}
	return Decode(&g)
}

// Marshal encodes g as a JSON geometry object.
func Marshal(g geospatial.Geometry) ([]byte, error) {
	wire, err := Encode(g)
	if err != nil {
		return nil, err
	}
	return json.Marshal(wire)
}

func unmarshalCoords(raw json.RawMessage, dst any) error {
	if len(raw) == 0 {
		return fmt.Errorf("%w: missing coordinates", geospatial.ErrInvalidGeometry)
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return fmt.Errorf("%w: %v", geospatial.ErrInvalidGeometry, err)
	}
	return nil
}

func decodePolygon(rings [][][]float64) (geospatial.Polygon, error) {
	if len(rings) == 0 {
		return geospatial.Polygon{}, fmt.Errorf("%w: polygon has no rings", geospatial.ErrInvalidGeometry)
	}
	decoded := make([]geospatial.Ring, len(rings))
	for i, r := range rings {
		ring := make(geospatial.Ring, len(r))
		for j, pos := range r {
			if len(pos) < 2 {
				return geospatial.Polygon{}, fmt.Errorf("%w: ring %d position %d has %d ordinates",
					geospatial.ErrInvalidGeometry, i, j, len(pos))
			}
			ring[j] = geospatial.Coordinate{Lng: pos[0], Lat: pos[1]}
		}
		decoded[i] = ring
	}
	return geospatial.NewPolygon(decoded[0], decoded[1:]...)
}
