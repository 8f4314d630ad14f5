package geom

import (
	"fmt"
	"math"

	"github.com/jbeda/geom"
)

// Eps is the absolute tolerance used for degenerate-geometry checks
// (zero-length segments, collinearity, coincident points).
const Eps = 1e-9

// Point is a position or displacement in design units.
type Point struct {
	X, Y float64
}

// Pt is shorthand for Point{X: x, Y: y}.
func Pt(x, y float64) Point { return Point{X: x, Y: y} }

func (p Point) Add(q Point) Point     { return Point{p.X + q.X, p.Y + q.Y} }
func (p Point) Sub(q Point) Point     { return Point{p.X - q.X, p.Y - q.Y} }
func (p Point) Scale(s float64) Point { return Point{p.X * s, p.Y * s} }
func (p Point) Dot(q Point) float64   { return p.X*q.X + p.Y*q.Y }
func (p Point) Cross(q Point) float64 { return p.X*q.Y - p.Y*q.X }
func (p Point) Len() float64          { return math.Hypot(p.X, p.Y) }
func (p Point) Dist(q Point) float64  { return p.Sub(q).Len() }
func (p Point) Perp() Point           { return Point{-p.Y, p.X} }
func (p Point) String() string        { return fmt.Sprintf("(%g, %g)", p.X, p.Y) }
func (p Point) coord() geom.Coord     { return geom.Coord{X: p.X, Y: p.Y} }
func (p Point) Neg() Point            { return Point{-p.X, -p.Y} }
func (p Point) Mid(q Point) Point     { return Point{(p.X + q.X) / 2, (p.Y + q.Y) / 2} }
func (p Point) Lerp(q Point, t float64) Point {
	return Point{p.X + (q.X-p.X)*t, p.Y + (q.Y-p.Y)*t}
}

// Unit returns p scaled to length 1. The zero vector is returned unchanged.
func (p Point) Unit() Point {
	l := p.Len()
	if l == 0 {
		return p
	}
	return Point{p.X / l, p.Y / l}
}

// Rotate rotates p about the origin by theta radians (counter-clockwise).
func (p Point) Rotate(theta float64) Point {
	s, c := sincos(theta)
	return Point{p.X*c - p.Y*s, p.X*s + p.Y*c}
}

// AlmostEqual reports whether p and q are within tol of each other on both axes.
func (p Point) AlmostEqual(q Point, tol float64) bool {
	return math.Abs(p.X-q.X) <= tol && math.Abs(p.Y-q.Y) <= tol
}

// Direction returns the unit vector pointing along angle theta.
func Direction(theta float64) Point {
	s, c := sincos(theta)
	return Point{c, s}
}

// NormalizeAngle maps theta into [0, 2π).
func NormalizeAngle(theta float64) float64 {
	a := math.Mod(theta, 2*math.Pi)
	if a < 0 {
		a += 2 * math.Pi
	}
	if a >= 2*math.Pi {
		a = 0
	}
	return a
}

// AngleDiff returns the signed smallest rotation taking a onto b, in (-π, π].
func AngleDiff(a, b float64) float64 {
	d := math.Mod(b-a, 2*math.Pi)
	switch {
	case d > math.Pi:
		d -= 2 * math.Pi
	case d <= -math.Pi:
		d += 2 * math.Pi
	}
	return d
}

// sincos returns exact values for whole quarter turns and math.Sincos otherwise.
func sincos(theta float64) (sin, cos float64) {
	q := theta / (math.Pi / 2)
	if r := math.Round(q); math.Abs(q-r) < 1e-12 {
		switch int(math.Mod(math.Mod(r, 4)+4, 4)) {
		case 0:
			return 0, 1
		case 1:
			return 1, 0
		case 2:
			return 0, -1
		case 3:
			return -1, 0
		}
	}
	return math.Sincos(theta)
}

// Bounds is an axis-aligned bounding box.
type Bounds struct {
	geom.Rect
}

// BoundsOf returns the bounding box of pts. It panics on an empty slice.
func BoundsOf(pts []Point) Bounds {
	b := Bounds{geom.Rect{Min: pts[0].coord(), Max: pts[0].coord()}}
	for _, p := range pts[1:] {
		b.ExpandToContainCoord(p.coord())
	}
	return b
}

// Union returns the smallest box containing b and o.
func (b Bounds) Union(o Bounds) Bounds {
	b.ExpandToContainRect(o.Rect)
	return b
}

// Inflate grows the box by d on every side.
func (b Bounds) Inflate(d float64) Bounds {
	return Bounds{geom.Rect{
		Min: geom.Coord{X: b.Min.X - d, Y: b.Min.Y - d},
		Max: geom.Coord{X: b.Max.X + d, Y: b.Max.Y + d},
	}}
}

// Overlaps reports whether b and o share any point (touching counts).
func (b Bounds) Overlaps(o Bounds) bool {
	return b.Min.X <= o.Max.X && o.Min.X <= b.Max.X &&
		b.Min.Y <= o.Max.Y && o.Min.Y <= b.Max.Y
}

// ContainsPoint reports whether p lies inside or on the box.
func (b Bounds) ContainsPoint(p Point) bool {
	return p.X >= b.Min.X && p.X <= b.Max.X && p.Y >= b.Min.Y && p.Y <= b.Max.Y
}

// Dx returns the width of the box.
func (b Bounds) Dx() float64 { return b.Max.X - b.Min.X }

// Dy returns the height of the box.
func (b Bounds) Dy() float64 { return b.Max.Y - b.Min.Y }
