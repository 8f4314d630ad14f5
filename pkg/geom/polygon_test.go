package geom

import (
	"math"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRect(t *testing.T) {
	r := Rect(5, 4, 1, 2)
	assert.Equal(t, Polygon{{1, 2}, {5, 2}, {5, 4}, {1, 4}}, r)
	assert.InDelta(t, 8, r.Area(), 1e-12)
}

func TestEllipse(t *testing.T) {
	e := Ellipse(Pt(10, 0), 4, 2, 1e-2)
	require.GreaterOrEqual(t, len(e), 8)
	for _, p := range e {
		d := p.Sub(Pt(10, 0))
		assert.InDelta(t, 1, d.X*d.X/16+d.Y*d.Y/4, 1e-9)
	}
	assert.True(t, e.Contains(Pt(10, 0)))
	assert.False(t, e.Contains(Pt(15, 0)))
	assert.Greater(t, e.Area(), 0.0)
}

func TestPolygonValidate(t *testing.T) {
	assert.NoError(t, Rect(0, 0, 1, 1).Validate())
	assert.Error(t, Polygon{{0, 0}, {1, 1}}.Validate())
	assert.Error(t, Polygon{{0, 0}, {1, 1}, {2, 2}}.Validate())
	assert.Error(t, Polygon{{0, 0}, {1, math.NaN()}, {2, 0}}.Validate())
}

func TestPolygonContains(t *testing.T) {
	sq := Rect(0, 0, 10, 10)
	assert.True(t, sq.Contains(Pt(5, 5)))
	assert.True(t, sq.Contains(Pt(0, 5)), "boundary counts as inside")
	assert.True(t, sq.Contains(Pt(10, 10)), "corner counts as inside")
	assert.False(t, sq.Contains(Pt(-1, 5)))
	assert.False(t, sq.Contains(Pt(5, 11)))
}

func TestPolygonTransform(t *testing.T) {
	sq := Rect(0, 0, 2, 1)
	moved := sq.Transform(NewTransform(10, 0, math.Pi/2, false))
	b := moved.Bounds()
	assert.InDelta(t, 9, b.Min.X, 1e-12)
	assert.InDelta(t, 10, b.Max.X, 1e-12)
	assert.InDelta(t, 0, b.Min.Y, 1e-12)
	assert.InDelta(t, 2, b.Max.Y, 1e-12)
	// The source polygon is untouched.
	assert.Equal(t, Rect(0, 0, 2, 1), sq)
}

func TestPolygonLess(t *testing.T) {
	polys := []Polygon{
		Rect(5, 0, 6, 1),
		{{0, 0}, {1, 0}, {0, 1}},
		Rect(0, 0, 1, 1),
		Rect(0, -1, 1, 1),
	}
	sort.Slice(polys, func(i, j int) bool { return polys[i].Less(polys[j]) })
	assert.Len(t, polys[0], 3)
	assert.True(t, polys[1].Equal(Rect(0, -1, 1, 1)))
	assert.True(t, polys[2].Equal(Rect(0, 0, 1, 1)))
	assert.True(t, polys[3].Equal(Rect(5, 0, 6, 1)))
	assert.False(t, polys[1].Less(polys[1]))
}

func TestBounds(t *testing.T) {
	b := BoundsOf([]Point{{1, 5}, {-2, 3}, {4, -1}})
	assert.Equal(t, -2.0, b.Min.X)
	assert.Equal(t, -1.0, b.Min.Y)
	assert.Equal(t, 4.0, b.Max.X)
	assert.Equal(t, 5.0, b.Max.Y)
	assert.Equal(t, 6.0, b.Dx())
	assert.Equal(t, 6.0, b.Dy())

	far := BoundsOf([]Point{{10, 10}, {12, 12}})
	assert.False(t, b.Overlaps(far))
	assert.True(t, b.Inflate(6).Overlaps(far))
	assert.True(t, b.Union(far).ContainsPoint(Pt(11, 11)))
}

func TestSegmentsIntersect(t *testing.T) {
	tests := []struct {
		name       string
		a, b, c, d Point
		want       bool
	}{
		{"crossing", Pt(0, 0), Pt(10, 10), Pt(0, 10), Pt(10, 0), true},
		{"parallel", Pt(0, 0), Pt(10, 0), Pt(0, 1), Pt(10, 1), false},
		{"collinear overlap", Pt(0, 0), Pt(10, 0), Pt(5, 0), Pt(15, 0), true},
		{"collinear disjoint", Pt(0, 0), Pt(4, 0), Pt(5, 0), Pt(15, 0), false},
		{"touching endpoint", Pt(0, 0), Pt(5, 5), Pt(5, 5), Pt(10, 0), true},
		{"t-junction miss", Pt(0, 0), Pt(10, 0), Pt(5, 1), Pt(5, 10), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SegmentsIntersect(tt.a, tt.b, tt.c, tt.d))
		})
	}
}

func TestDistances(t *testing.T) {
	assert.InDelta(t, 1, PointSegmentDistance(Pt(5, 1), Pt(0, 0), Pt(10, 0)), 1e-12)
	assert.InDelta(t, 5, PointSegmentDistance(Pt(13, 4), Pt(0, 0), Pt(10, 0)), 1e-12)
	assert.InDelta(t, 2, SegmentDistance(Pt(0, 0), Pt(10, 0), Pt(0, 2), Pt(10, 2)), 1e-12)

	a := Rect(0, 0, 1, 1)
	b := Rect(3, 0, 4, 1)
	assert.InDelta(t, 2, PolygonDistance(a, b), 1e-12)
	assert.Equal(t, 0.0, PolygonDistance(a, Rect(0.5, 0.5, 2, 2)))
	assert.Equal(t, 0.0, PolygonDistance(Rect(-5, -5, 5, 5), a), "containment")

	assert.InDelta(t, 1, SegmentPolygonDistance(Pt(-5, 2), Pt(5, 2), a), 1e-12)
	assert.Equal(t, 0.0, SegmentPolygonDistance(Pt(-5, 0.5), Pt(5, 0.5), a))
	assert.Equal(t, 0.0, SegmentPolygonDistance(Pt(0.2, 0.2), Pt(0.3, 0.3), a))
}
