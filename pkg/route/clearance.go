package route

import (
	"math"

	"github.com/matzehuels/photonlayout/pkg/geom"
)

// clearanceSlack absorbs rounding when a path runs at exactly the margin.
const clearanceSlack = 1e-9

// obstacleIndex answers "does this segment keep its margin" queries.
// Bounding boxes inflated by the margin act as a broadphase before the
// exact segment/polygon distance.
type obstacleIndex struct {
	polys   []geom.Polygon
	boxes   []geom.Bounds
	margin  float64
	escapes []geom.Point // port positions whose surroundings are exempt
}

func newObstacleIndex(obstacles []geom.Polygon, margin float64, escapes ...geom.Point) *obstacleIndex {
	x := &obstacleIndex{margin: margin, escapes: escapes}
	for _, p := range obstacles {
		if len(p) == 0 {
			continue
		}
		x.polys = append(x.polys, p)
		x.boxes = append(x.boxes, p.Bounds().Inflate(margin))
	}
	return x
}

// bounds returns the box covering every obstacle, ok false when empty.
func (x *obstacleIndex) bounds() (b geom.Bounds, ok bool) {
	for _, p := range x.polys {
		if !ok {
			b, ok = p.Bounds(), true
			continue
		}
		b = b.Union(p.Bounds())
	}
	return b, ok
}

// segmentClear reports whether segment ab keeps the margin from every
// obstacle, ignoring the parts within the margin of an escape point.
func (x *obstacleIndex) segmentClear(a, b geom.Point) bool {
	if len(x.polys) == 0 {
		return true
	}
	for _, span := range x.exposed(a, b) {
		p, q := a.Lerp(b, span[0]), a.Lerp(b, span[1])
		if p.Dist(q) <= geom.Eps {
			continue
		}
		box := geom.SegmentBounds(p, q)
		for i, poly := range x.polys {
			if !x.boxes[i].Overlaps(box) {
				continue
			}
			if geom.SegmentPolygonDistance(p, q, poly) < x.margin-clearanceSlack {
				return false
			}
		}
	}
	return true
}

// polylineClear tests every segment of pts.
func (x *obstacleIndex) polylineClear(pts []geom.Point) bool {
	for i := 1; i < len(pts); i++ {
		if !x.segmentClear(pts[i-1], pts[i]) {
			return false
		}
	}
	return true
}

// exposed returns the parameter spans of ab lying outside every escape
// disk.
func (x *obstacleIndex) exposed(a, b geom.Point) [][2]float64 {
	spans := [][2]float64{{0, 1}}
	for _, c := range x.escapes {
		t0, t1, hit := diskSpan(a, b, c, x.margin)
		if !hit {
			continue
		}
		var next [][2]float64
		for _, s := range spans {
			if t1 <= s[0] || t0 >= s[1] {
				next = append(next, s)
				continue
			}
			if s[0] < t0 {
				next = append(next, [2]float64{s[0], t0})
			}
			if t1 < s[1] {
				next = append(next, [2]float64{t1, s[1]})
			}
		}
		spans = next
	}
	return spans
}

// diskSpan returns the parameter interval of segment ab inside the disk of
// radius r around c.
func diskSpan(a, b, c geom.Point, r float64) (t0, t1 float64, hit bool) {
	d := b.Sub(a)
	f := a.Sub(c)
	qa := d.Dot(d)
	if qa == 0 {
		return 0, 0, false
	}
	qb := 2 * f.Dot(d)
	qc := f.Dot(f) - r*r
	disc := qb*qb - 4*qa*qc
	if disc <= 0 {
		return 0, 0, false
	}
	sq := math.Sqrt(disc)
	t0 = math.Max(0, (-qb-sq)/(2*qa))
	t1 = math.Min(1, (-qb+sq)/(2*qa))
	if t0 >= t1 {
		return 0, 0, false
	}
	return t0, t1, true
}

// arcClear checks the discretised bend at vertex v from heading in to
// heading out.
func (x *obstacleIndex) arcClear(v geom.Point, in, out heading, radius, tol float64) bool {
	if radius == 0 || len(x.polys) == 0 {
		return true
	}
	phi := math.Abs(float64(turnBetween(in, out))) * math.Pi / 4
	t := geom.TangentLength(phi, radius)
	c, err := geom.SmoothPath([]geom.Point{
		v.Sub(in.unit().Scale(t)),
		v,
		v.Add(out.unit().Scale(t)),
	}, radius, tol)
	if err != nil {
		return false
	}
	return x.polylineClear(c.Points)
}
