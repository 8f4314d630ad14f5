package geom

import "math"

// orientation classifies the turn p→q→r: 0 collinear, 1 clockwise,
// 2 counter-clockwise.
func orientation(p, q, r Point) int {
	val := (q.Y-p.Y)*(r.X-q.X) - (q.X-p.X)*(r.Y-q.Y)
	if math.Abs(val) <= Eps {
		return 0
	}
	if val > 0 {
		return 1
	}
	return 2
}

// onSegment reports whether q lies within the bounding box of segment pr.
func onSegment(p, q, r Point) bool {
	return q.X <= math.Max(p.X, r.X)+Eps && q.X >= math.Min(p.X, r.X)-Eps &&
		q.Y <= math.Max(p.Y, r.Y)+Eps && q.Y >= math.Min(p.Y, r.Y)-Eps
}

// SegmentsIntersect reports whether segments p1q1 and p2q2 share a point.
func SegmentsIntersect(p1, q1, p2, q2 Point) bool {
	o1 := orientation(p1, q1, p2)
	o2 := orientation(p1, q1, q2)
	o3 := orientation(p2, q2, p1)
	o4 := orientation(p2, q2, q1)

	if o1 != o2 && o3 != o4 {
		return true
	}
	switch {
	case o1 == 0 && onSegment(p1, p2, q1):
		return true
	case o2 == 0 && onSegment(p1, q2, q1):
		return true
	case o3 == 0 && onSegment(p2, p1, q2):
		return true
	case o4 == 0 && onSegment(p2, q1, q2):
		return true
	}
	return false
}

// PointSegmentDistance returns the distance from p to segment ab.
func PointSegmentDistance(p, a, b Point) float64 {
	ab := b.Sub(a)
	l2 := ab.Dot(ab)
	if l2 == 0 {
		return p.Dist(a)
	}
	t := p.Sub(a).Dot(ab) / l2
	t = math.Max(0, math.Min(1, t))
	return p.Dist(a.Add(ab.Scale(t)))
}

// SegmentDistance returns the minimum distance between segments ab and cd.
func SegmentDistance(a, b, c, d Point) float64 {
	if SegmentsIntersect(a, b, c, d) {
		return 0
	}
	return math.Min(
		math.Min(PointSegmentDistance(a, c, d), PointSegmentDistance(b, c, d)),
		math.Min(PointSegmentDistance(c, a, b), PointSegmentDistance(d, a, b)),
	)
}

// SegmentPolygonDistance returns the distance from segment ab to polygon p;
// zero when the segment touches or enters the polygon.
func SegmentPolygonDistance(a, b Point, p Polygon) float64 {
	if p.Contains(a) || p.Contains(b) {
		return 0
	}
	best := math.Inf(1)
	for i := range p {
		c, d := p.Edge(i)
		if dist := SegmentDistance(a, b, c, d); dist < best {
			best = dist
			if best == 0 {
				return 0
			}
		}
	}
	return best
}

// PolygonDistance returns the distance between two polygons; zero when they
// overlap or touch.
func PolygonDistance(p, q Polygon) float64 {
	if len(p) == 0 || len(q) == 0 {
		return math.Inf(1)
	}
	if p.Contains(q[0]) || q.Contains(p[0]) {
		return 0
	}
	best := math.Inf(1)
	for i := range p {
		a, b := p.Edge(i)
		for j := range q {
			c, d := q.Edge(j)
			if dist := SegmentDistance(a, b, c, d); dist < best {
				best = dist
				if best == 0 {
					return 0
				}
			}
		}
	}
	return best
}

// SegmentBounds returns the bounding box of segment ab.
func SegmentBounds(a, b Point) Bounds { return BoundsOf([]Point{a, b}) }
