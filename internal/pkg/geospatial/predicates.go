package geospatial

// Intersects reports whether any point of g lies inside or on the edge of box.
// Polygons are tested edge by edge, so a box that only overlaps a polygon's
// envelope (or sits inside one of its holes) does not match.
func Intersects(g Geometry, box BoundingBox) bool {
	if box.Inverted() || g.Empty() {
		return false
	}
	switch g.Type {
	case TypePoint:
		return box.Contains(g.Point)
	case TypePolygon, TypeMultiPolygon:
		for _, p := range g.Polygons() {
			if polygonIntersectsBox(p, box) {
				return true
			}
		}
	}
	return false
}

// Within reports whether every point of g lies inside or on the edge of box.
// Within(g, b) implies Intersects(g, b).
func Within(g Geometry, box BoundingBox) bool {
	if box.Inverted() || g.Empty() {
		return false
	}
	switch g.Type {
	case TypePoint:
		return box.Contains(g.Point)
	case TypePolygon, TypeMultiPolygon:
		for _, p := range g.Polygons() {
			if p.Exterior.Degenerate() {
				continue
			}
			// The box is convex and holes sit inside the exterior, so the
			// exterior vertices decide.
			for _, c := range p.Exterior {
				if !box.Contains(c) {
					return false
				}
			}
		}
		return true
	}
	return false
}

// Contains reports whether pt lies inside g. Points on any ring, hole rings
// included, count as contained; points strictly inside a hole do not.
func Contains(g Geometry, pt Coordinate) bool {
	switch g.Type {
	case TypePoint:
		return g.Point == pt
	case TypePolygon, TypeMultiPolygon:
		for _, p := range g.Polygons() {
			if polygonCovers(p, pt) {
				return true
			}
		}
	}
	return false
}

// IntersectsGeometry reports whether two geometries share at least one point.
func IntersectsGeometry(a, b Geometry) bool {
	if a.Empty() || b.Empty() {
		return false
	}
	ba, _ := a.Bound()
	bb, _ := b.Bound()
	if !ba.Overlaps(bb) {
		return false
	}
	if a.Type == TypePoint {
		return Contains(b, a.Point)
	}
	if b.Type == TypePoint {
		return Contains(a, b.Point)
	}
	for _, p := range a.Polygons() {
		if p.Exterior.Degenerate() {
			continue
		}
		for _, q := range b.Polygons() {
			if q.Exterior.Degenerate() {
				continue
			}
			if polygonsIntersect(p, q) {
				return true
			}
		}
	}
	return false
}

func polygonIntersectsBox(p Polygon, box BoundingBox) bool {
	if p.Exterior.Degenerate() {
		return false
	}
	for _, r := range p.Rings() {
		if r.Degenerate() {
			continue
		}
		if ringTouchesBox(r, box) {
			return true
		}
	}
	// No boundary reaches the box: it is either entirely inside the polygon
	// body, entirely inside a hole, or outside.
	return polygonCovers(p, box.corners()[0])
}

func polygonsIntersect(p, q Polygon) bool {
	for _, rp := range p.Rings() {
		if rp.Degenerate() {
			continue
		}
		for _, rq := range q.Rings() {
			if rq.Degenerate() {
				continue
			}
			if ringsCross(rp, rq) {
				return true
			}
		}
	}
	return polygonCovers(q, p.Exterior[0]) || polygonCovers(p, q.Exterior[0])
}

func polygonCovers(p Polygon, pt Coordinate) bool {
	if p.Exterior.Degenerate() {
		return false
	}
	if onRing(p.Exterior, pt) {
		return true
	}
	if !insideRing(p.Exterior, pt) {
		return false
	}
	for _, h := range p.Holes {
		if h.Degenerate() {
			continue
		}
		if onRing(h, pt) {
			return true
		}
		if insideRing(h, pt) {
			return false
		}
	}
	return true
}

// insideRing is the even-odd crossing test. Boundary points are undefined
// here; callers check onRing first.
func insideRing(r Ring, pt Coordinate) bool {
	inside := false
	n := len(r)
	for i, j := 0, n-1; i < n; j, i = i, i+1 {
		a, b := r[i], r[j]
		if (a.Lat > pt.Lat) != (b.Lat > pt.Lat) {
			x := (b.Lng-a.Lng)*(pt.Lat-a.Lat)/(b.Lat-a.Lat) + a.Lng
			if pt.Lng < x {
				inside = !inside
			}
		}
	}
	return inside
}

func onRing(r Ring, pt Coordinate) bool {
	n := len(r)
	for i, j := 0, n-1; i < n; j, i = i, i+1 {
		if orient(r[j], r[i], pt) == 0 && withinSpan(r[j], r[i], pt) {
			return true
		}
	}
	return false
}

func ringTouchesBox(r Ring, box BoundingBox) bool {
	n := len(r)
	for i, j := 0, n-1; i < n; j, i = i, i+1 {
		if segmentTouchesBox(r[j], r[i], box) {
			return true
		}
	}
	return false
}

func ringsCross(r, s Ring) bool {
	n, m := len(r), len(s)
	for i, j := 0, n-1; i < n; j, i = i, i+1 {
		for k, l := 0, m-1; k < m; l, k = k, k+1 {
			if segmentsIntersect(r[j], r[i], s[l], s[k]) {
				return true
			}
		}
	}
	return false
}

func segmentTouchesBox(a, b Coordinate, box BoundingBox) bool {
	if box.Contains(a) || box.Contains(b) {
		return true
	}
	seg := BoundingBox{}
	seg.MinLng, seg.MaxLng = minmax(a.Lng, b.Lng)
	seg.MinLat, seg.MaxLat = minmax(a.Lat, b.Lat)
	if !seg.Overlaps(box) {
		return false
	}
	c := box.corners()
	for i := range c {
		if segmentsIntersect(a, b, c[i], c[(i+1)%4]) {
			return true
		}
	}
	return false
}

func segmentsIntersect(p1, p2, q1, q2 Coordinate) bool {
	d1 := orient(q1, q2, p1)
	d2 := orient(q1, q2, p2)
	d3 := orient(p1, p2, q1)
	d4 := orient(p1, p2, q2)

	if ((d1 > 0 && d2 < 0) || (d1 < 0 && d2 > 0)) &&
		((d3 > 0 && d4 < 0) || (d3 < 0 && d4 > 0)) {
		return true
	}
	switch {
	case d1 == 0 && withinSpan(q1, q2, p1):
		return true
	case d2 == 0 && withinSpan(q1, q2, p2):
		return true
	case d3 == 0 && withinSpan(p1, p2, q1):
		return true
	case d4 == 0 && withinSpan(p1, p2, q2):
		return true
	}
	return false
}

// orient is the signed area of the triangle (a, b, c): positive when c is
// left of a->b, zero when collinear.
func orient(a, b, c Coordinate) float64 {
	return (b.Lng-a.Lng)*(c.Lat-a.Lat) - (b.Lat-a.Lat)*(c.Lng-a.Lng)
}

// withinSpan reports whether c, known to be collinear with a and b, lies
// between them.
func withinSpan(a, b, c Coordinate) bool {
	minLng, maxLng := minmax(a.Lng, b.Lng)
	minLat, maxLat := minmax(a.Lat, b.Lat)
	return c.Lng >= minLng && c.Lng <= maxLng && c.Lat >= minLat && c.Lat <= maxLat
}

func minmax(a, b float64) (float64, float64) {
	if a < b {
		return a, b
	}
	return b, a
}
