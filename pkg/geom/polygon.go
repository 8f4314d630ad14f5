package geom

import (
	"math"

	"github.com/matzehuels/photonlayout/pkg/errors"
)

// Polygon is a closed outline given as an ordered vertex list; the closing
// edge from the last vertex back to the first is implicit.
type Polygon []Point

// Rect returns the axis-aligned rectangle spanning the two corners, with
// counter-clockwise vertex order starting at the lower-left corner.
func Rect(x0, y0, x1, y1 float64) Polygon {
	minX, maxX := math.Min(x0, x1), math.Max(x0, x1)
	minY, maxY := math.Min(y0, y1), math.Max(y0, y1)
	return Polygon{{minX, minY}, {maxX, minY}, {maxX, maxY}, {minX, maxY}}
}

// Ellipse approximates an ellipse with semi-axes a and b centred on c.
// The vertex count is chosen so the chord deviation stays below tol.
func Ellipse(c Point, a, b, tol float64) Polygon {
	r := math.Max(a, b)
	n := arcSteps(2*math.Pi, r, tol)
	if n < 8 {
		n = 8
	}
	out := make(Polygon, n)
	for i := range out {
		s, co := math.Sincos(2 * math.Pi * float64(i) / float64(n))
		out[i] = Point{c.X + a*co, c.Y + b*s}
	}
	return out
}

// Validate rejects polygons that cannot be exported: fewer than three
// vertices, non-finite coordinates or zero area.
func (p Polygon) Validate() error {
	if len(p) < 3 {
		return errors.New(errors.ErrCodeGeometry, "polygon needs at least 3 vertices, got %d", len(p))
	}
	for _, v := range p {
		if math.IsNaN(v.X) || math.IsNaN(v.Y) || math.IsInf(v.X, 0) || math.IsInf(v.Y, 0) {
			return errors.New(errors.ErrCodeGeometry, "polygon has non-finite vertex %s", v)
		}
	}
	if math.Abs(p.Area()) <= Eps {
		return errors.New(errors.ErrCodeGeometry, "polygon has zero area")
	}
	return nil
}

// Area returns the signed area (positive for counter-clockwise order).
func (p Polygon) Area() float64 {
	var a float64
	for i, v := range p {
		w := p[(i+1)%len(p)]
		a += v.Cross(w)
	}
	return a / 2
}

// Bounds returns the bounding box of the polygon.
func (p Polygon) Bounds() Bounds { return BoundsOf(p) }

// Transform returns a copy of p mapped through t.
func (p Polygon) Transform(t Transform) Polygon { return t.ApplyAll(p) }

// Clone returns a copy of p.
func (p Polygon) Clone() Polygon { return append(Polygon(nil), p...) }

// Edge returns the i-th edge, wrapping around to close the outline.
func (p Polygon) Edge(i int) (Point, Point) { return p[i], p[(i+1)%len(p)] }

// Contains reports whether q lies strictly inside or on the boundary of p.
func (p Polygon) Contains(q Point) bool {
	inside := false
	for i := range p {
		a, b := p.Edge(i)
		if PointSegmentDistance(q, a, b) <= Eps {
			return true
		}
		if (a.Y > q.Y) != (b.Y > q.Y) {
			x := a.X + (q.Y-a.Y)*(b.X-a.X)/(b.Y-a.Y)
			if q.X < x {
				inside = !inside
			}
		}
	}
	return inside
}

// Less orders polygons by vertex count, then lexicographically by vertices.
// It gives flattened output a canonical order independent of traversal.
func (p Polygon) Less(o Polygon) bool {
	if len(p) != len(o) {
		return len(p) < len(o)
	}
	for i := range p {
		if p[i].X != o[i].X {
			return p[i].X < o[i].X
		}
		if p[i].Y != o[i].Y {
			return p[i].Y < o[i].Y
		}
	}
	return false
}

// Equal reports whether p and o have identical vertices in identical order.
func (p Polygon) Equal(o Polygon) bool {
	if len(p) != len(o) {
		return false
	}
	for i := range p {
		if p[i] != o[i] {
			return false
		}
	}
	return true
}
