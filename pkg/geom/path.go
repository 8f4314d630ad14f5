package geom

import (
	"math"

	"github.com/matzehuels/photonlayout/pkg/errors"
)

// DefaultTolerance is the default maximum chord deviation for arcs, in
// design units.
const DefaultTolerance = 1e-3

// reversalLimit is the largest turn angle a bend may have. Anything closer
// to a full reversal has an unbounded tangent length.
const reversalLimit = math.Pi - 1e-6

// Arc describes one smoothed bend of a centreline.
type Arc struct {
	Center     Point
	Radius     float64
	StartAngle float64 // angle of the first arc point as seen from Center
	Sweep      float64 // signed, positive counter-clockwise
	First      int     // index of the first arc point in Centerline.Points
	Last       int     // index of the last arc point in Centerline.Points
}

// Centerline is a waveguide centre polyline after bend smoothing.
// Tangents[i] is the unit direction of travel at Points[i].
type Centerline struct {
	Points   []Point
	Tangents []Point
	Arcs     []Arc
}

// Length returns the path length of the discretised centreline.
func (c *Centerline) Length() float64 {
	var l float64
	for i := 1; i < len(c.Points); i++ {
		l += c.Points[i].Dist(c.Points[i-1])
	}
	return l
}

// TangentLength returns how far before and after a vertex a bend of the
// given turn angle and radius starts and ends.
func TangentLength(turn, radius float64) float64 {
	return radius * math.Tan(math.Abs(turn)/2)
}

// arcSteps returns the number of chords needed so that an arc of the given
// sweep and radius deviates from the true circle by at most tol.
func arcSteps(sweep, radius, tol float64) int {
	step := math.Pi / 4
	if radius > 0 && tol > 0 && tol < radius {
		if s := 2 * math.Acos(1-tol/radius); s > 0 && !math.IsNaN(s) {
			step = s
		}
	}
	return max(1, int(math.Ceil(math.Abs(sweep)/step)))
}

// SmoothPath replaces every interior waypoint with an arc of the given
// radius tangent to both adjacent segments. The arc discretisation keeps
// the chord deviation below tol.
func SmoothPath(waypoints []Point, radius, tol float64) (*Centerline, error) {
	return smooth(waypoints, radius, radius, tol)
}

// smooth discretises arcs as if their radius were stepRadius, which lets
// the polygon outline bound the deviation of its outer offset curve.
func smooth(waypoints []Point, radius, stepRadius, tol float64) (*Centerline, error) {
	n := len(waypoints)
	if n < 2 {
		return nil, errors.New(errors.ErrCodeGeometry, "path needs at least 2 waypoints, got %d", n)
	}
	if radius < 0 || math.IsNaN(radius) {
		return nil, errors.New(errors.ErrCodeGeometry, "invalid bend radius %g", radius)
	}

	dirs := make([]Point, n-1)
	lens := make([]float64, n-1)
	for i := range dirs {
		d := waypoints[i+1].Sub(waypoints[i])
		lens[i] = d.Len()
		if lens[i] <= Eps {
			return nil, errors.New(errors.ErrCodeGeometry, "zero-length segment at waypoint %d %s", i, waypoints[i])
		}
		dirs[i] = d.Scale(1 / lens[i])
	}

	turns := make([]float64, n)
	tangents := make([]float64, n)
	for k := 1; k < n-1; k++ {
		u, v := dirs[k-1], dirs[k]
		phi := math.Atan2(u.Cross(v), u.Dot(v))
		if math.Abs(phi) <= Eps {
			continue
		}
		if math.Abs(phi) > reversalLimit {
			return nil, errors.New(errors.ErrCodeGeometry, "path reverses direction at waypoint %d %s", k, waypoints[k])
		}
		turns[k] = phi
		tangents[k] = TangentLength(phi, radius)
	}

	for i := range lens {
		need := tangents[i] + tangents[i+1]
		if need > lens[i]+Eps {
			return nil, errors.New(errors.ErrCodeGeometry,
				"segment %d from %s to %s is %.6g long, bends of radius %g need %.6g",
				i, waypoints[i], waypoints[i+1], lens[i], radius, need)
		}
	}

	c := &Centerline{}
	push := func(p, t Point) {
		if last := len(c.Points) - 1; last >= 0 && c.Points[last].AlmostEqual(p, Eps) {
			c.Tangents[last] = t
			return
		}
		c.Points = append(c.Points, p)
		c.Tangents = append(c.Tangents, t)
	}

	push(waypoints[0], dirs[0])
	for k := 1; k < n-1; k++ {
		if turns[k] == 0 {
			continue
		}
		u, v, t := dirs[k-1], dirs[k], tangents[k]
		start := waypoints[k].Sub(u.Scale(t))
		end := waypoints[k].Add(v.Scale(t))

		side := 1.0
		if turns[k] < 0 {
			side = -1
		}
		center := start.Add(u.Perp().Scale(side * radius))
		radial := start.Sub(center)
		arc := Arc{
			Center:     center,
			Radius:     radius,
			StartAngle: math.Atan2(radial.Y, radial.X),
			Sweep:      turns[k],
		}

		push(start, u)
		arc.First = len(c.Points) - 1
		steps := arcSteps(turns[k], stepRadius, tol)
		for i := 1; i < steps; i++ {
			a := turns[k] * float64(i) / float64(steps)
			push(center.Add(radial.Rotate(a)), u.Rotate(a))
		}
		push(end, v)
		arc.Last = len(c.Points) - 1
		c.Arcs = append(c.Arcs, arc)
	}
	push(waypoints[n-1], dirs[n-2])

	return c, nil
}

// PathToPolygon converts a waypoint polyline into the closed outline of a
// waveguide of the given width. Interior waypoints become arcs of
// bendRadius; the outline's outer edge deviates from the ideal curve by at
// most tol.
//
// The call fails with a GEOMETRY error when the path is degenerate, when
// bendRadius does not exceed half the width (the inner edge would fold), or
// when a segment is too short to hold the bends at both of its ends.
func PathToPolygon(waypoints []Point, width, bendRadius, tol float64) (Polygon, error) {
	if width <= 0 || math.IsNaN(width) {
		return nil, errors.New(errors.ErrCodeGeometry, "invalid waveguide width %g", width)
	}
	if len(waypoints) > 2 && bendRadius <= width/2 {
		return nil, errors.New(errors.ErrCodeGeometry,
			"bend radius %g must exceed half the waveguide width %g", bendRadius, width)
	}
	c, err := smooth(waypoints, bendRadius, bendRadius+width/2, tol)
	if err != nil {
		return nil, err
	}
	return c.Outline(width), nil
}

// Outline offsets the centreline by half the width on each side and joins
// both offsets into one closed counter-clockwise polygon: the right-hand
// offset runs forward, the left-hand offset comes back.
func (c *Centerline) Outline(width float64) Polygon {
	h := width / 2
	n := len(c.Points)
	out := make(Polygon, 2*n)
	for i, p := range c.Points {
		off := c.Tangents[i].Perp().Scale(h)
		out[i] = p.Sub(off)
		out[2*n-1-i] = p.Add(off)
	}
	return out
}
