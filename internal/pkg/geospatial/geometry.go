package geospatial

import (
	"errors"
	"fmt"
	"math"
)

var (
	// ErrInvalidGeometry is returned when a polygon or multipolygon is built from
	// degenerate rings or from an empty polygon list.
	ErrInvalidGeometry = errors.New("invalid geometry")

	// ErrUnsupportedGeometry is returned for geometry tags other than Point,
	// Polygon and MultiPolygon.
	ErrUnsupportedGeometry = errors.New("unsupported geometry")
)

// MinRingSize is the number of coordinates of the smallest closed ring
// (a triangle plus the closing duplicate).
const MinRingSize = 4

// Type tags a Geometry. The zero value means the record has no geometry.
type Type string

const (
	TypeAbsent       Type = ""
	TypePoint        Type = "Point"
	TypePolygon      Type = "Polygon"
	TypeMultiPolygon Type = "MultiPolygon"
)

// Coordinate is a longitude/latitude pair in degrees (EPSG:4326).
type Coordinate struct {
	Lng float64
	Lat float64
}

// Ring is a closed sequence of coordinates.
type Ring []Coordinate

// Degenerate reports whether the ring has fewer than MinRingSize coordinates.
func (r Ring) Degenerate() bool { return len(r) < MinRingSize }

// Polygon is an exterior ring followed by zero or more holes, in source order.
type Polygon struct {
	Exterior Ring
	Holes    []Ring
}

// MultiPolygon is an ordered, non-empty list of polygons.
type MultiPolygon []Polygon

// Geometry is a tagged union over Point, Polygon and MultiPolygon.
// Only the field matching Type is meaningful.
type Geometry struct {
	Type         Type
	Point        Coordinate
	Polygon      Polygon
	MultiPolygon MultiPolygon
}

// Absent is the geometry of a record that has none.
var Absent = Geometry{}

// PointAt returns a Point geometry.
func PointAt(lng, lat float64) Geometry {
	return Geometry{Type: TypePoint, Point: Coordinate{Lng: lng, Lat: lat}}
}

// NewPolygon validates the rings and builds a Polygon.
func NewPolygon(exterior Ring, holes ...Ring) (Polygon, error) {
	if exterior.Degenerate() {
		return Polygon{}, fmt.Errorf("%w: exterior ring has %d coordinates, need at least %d",
			ErrInvalidGeometry, len(exterior), MinRingSize)
	}
	for i, h := range holes {
		if h.Degenerate() {
			return Polygon{}, fmt.Errorf("%w: interior ring %d has %d coordinates, need at least %d",
				ErrInvalidGeometry, i, len(h), MinRingSize)
		}
	}
	if len(holes) == 0 {
		holes = nil
	}
	return Polygon{Exterior: exterior, Holes: holes}, nil
}

// NewMultiPolygon validates every member and builds a MultiPolygon.
func NewMultiPolygon(polys ...Polygon) (MultiPolygon, error) {
	if len(polys) == 0 {
		return nil, fmt.Errorf("%w: multipolygon has no polygons", ErrInvalidGeometry)
	}
	for i, p := range polys {
		if _, err := NewPolygon(p.Exterior, p.Holes...); err != nil {
			return nil, fmt.Errorf("polygon %d: %w", i, err)
		}
	}
	return MultiPolygon(polys), nil
}

// Geometry wraps the polygon in a Geometry.
func (p Polygon) Geometry() Geometry { return Geometry{Type: TypePolygon, Polygon: p} }

// Geometry wraps the multipolygon in a Geometry.
func (mp MultiPolygon) Geometry() Geometry { return Geometry{Type: TypeMultiPolygon, MultiPolygon: mp} }

// Rings returns the exterior ring followed by the holes.
func (p Polygon) Rings() []Ring {
	rings := make([]Ring, 0, 1+len(p.Holes))
	rings = append(rings, p.Exterior)
	return append(rings, p.Holes...)
}

// IsAbsent reports whether g carries no geometry.
func (g Geometry) IsAbsent() bool { return g.Type == TypeAbsent }

// IsPolygonal reports whether g is a Polygon or a MultiPolygon.
func (g Geometry) IsPolygonal() bool {
	return g.Type == TypePolygon || g.Type == TypeMultiPolygon
}

// Polygons returns the polygonal members of g, nil for points and absent geometry.
func (g Geometry) Polygons() []Polygon {
	switch g.Type {
	case TypePolygon:
		return []Polygon{g.Polygon}
	case TypeMultiPolygon:
		return g.MultiPolygon
	}
	return nil
}

// FirstCoordinate returns the first coordinate of g in storage order.
func (g Geometry) FirstCoordinate() (Coordinate, bool) {
	switch g.Type {
	case TypePoint:
		return g.Point, true
	case TypePolygon, TypeMultiPolygon:
		for _, p := range g.Polygons() {
			if len(p.Exterior) > 0 {
				return p.Exterior[0], true
			}
		}
	}
	return Coordinate{}, false
}

// Empty reports whether g has nothing that can be encoded or tested:
// absent, or polygonal with no polygon carrying a non-degenerate exterior.
func (g Geometry) Empty() bool {
	switch g.Type {
	case TypeAbsent:
		return true
	case TypePoint:
		return false
	}
	for _, p := range g.Polygons() {
		if !p.Exterior.Degenerate() {
			return false
		}
	}
	return true
}

// Bound returns the envelope of g. It is only a prefilter; the predicates in
// this package never decide on envelopes alone.
func (g Geometry) Bound() (BoundingBox, bool) {
	if g.Empty() {
		return BoundingBox{}, false
	}
	b := BoundingBox{
		MinLng: math.Inf(1), MinLat: math.Inf(1),
		MaxLng: math.Inf(-1), MaxLat: math.Inf(-1),
	}
	if g.Type == TypePoint {
		b.extend(g.Point)
		return b, true
	}
	for _, p := range g.Polygons() {
		for _, c := range p.Exterior {
			b.extend(c)
		}
	}
	return b, true
}

// BoundingBox is an axis-aligned rectangle in degrees. It is not normalised:
// an inverted box contains nothing.
type BoundingBox struct {
	MinLng float64 `json:"minLng"`
	MinLat float64 `json:"minLat"`
	MaxLng float64 `json:"maxLng"`
	MaxLat float64 `json:"maxLat"`
}

// Box builds a BoundingBox in the (minLng, minLat, maxLng, maxLat) order used by callers.
func Box(minLng, minLat, maxLng, maxLat float64) BoundingBox {
	return BoundingBox{MinLng: minLng, MinLat: minLat, MaxLng: maxLng, MaxLat: maxLat}
}

// Inverted reports whether the box has min > max on either axis.
func (b BoundingBox) Inverted() bool {
	return b.MinLng > b.MaxLng || b.MinLat > b.MaxLat
}

// Contains reports whether c lies inside or on the edge of the box.
func (b BoundingBox) Contains(c Coordinate) bool {
	return c.Lng >= b.MinLng && c.Lng <= b.MaxLng &&
		c.Lat >= b.MinLat && c.Lat <= b.MaxLat
}

// Overlaps reports whether two boxes share at least one point.
func (b BoundingBox) Overlaps(o BoundingBox) bool {
	return b.MinLng <= o.MaxLng && o.MinLng <= b.MaxLng &&
		b.MinLat <= o.MaxLat && o.MinLat <= b.MaxLat
}

func (b *BoundingBox) extend(c Coordinate) {
	b.MinLng = math.Min(b.MinLng, c.Lng)
	b.MinLat = math.Min(b.MinLat, c.Lat)
	b.MaxLng = math.Max(b.MaxLng, c.Lng)
	b.MaxLat = math.Max(b.MaxLat, c.Lat)
}

// corners returns the box vertices counter-clockwise from (min, min).
func (b BoundingBox) corners() [4]Coordinate {
	return [4]Coordinate{
		{b.MinLng, b.MinLat},
		{b.MaxLng, b.MinLat},
		{b.MaxLng, b.MaxLat},
		{b.MinLng, b.MaxLat},
	}
}
