package geom

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/photonlayout/pkg/errors"
)

func TestPathToPolygonStraight(t *testing.T) {
	poly, err := PathToPolygon([]Point{{0, 0}, {100, 0}}, 1, 10, DefaultTolerance)
	require.NoError(t, err)
	require.Len(t, poly, 4)

	b := poly.Bounds()
	assert.InDelta(t, 0, b.Min.X, 1e-12)
	assert.InDelta(t, 100, b.Max.X, 1e-12)
	assert.InDelta(t, -0.5, b.Min.Y, 1e-12)
	assert.InDelta(t, 0.5, b.Max.Y, 1e-12)
	assert.InDelta(t, 100, poly.Area(), 1e-9, "outline should wind counter-clockwise")
	assert.NoError(t, poly.Validate())
}

func TestPathToPolygonBend(t *testing.T) {
	const (
		width  = 1.0
		radius = 10.0
		tol    = 1e-3
	)
	pts := []Point{{0, 0}, {50, 0}, {50, 50}}

	c, err := SmoothPath(pts, radius, tol)
	require.NoError(t, err)
	require.Len(t, c.Arcs, 1)

	arc := c.Arcs[0]
	assertPointNear(t, Pt(40, 10), arc.Center, "arc centre")
	assert.InDelta(t, math.Pi/2, arc.Sweep, 1e-12)
	assertPointNear(t, Pt(40, 0), c.Points[arc.First], "arc start")
	assertPointNear(t, Pt(50, 10), c.Points[arc.Last], "arc end")
	for i := arc.First; i <= arc.Last; i++ {
		assert.InDelta(t, radius, c.Points[i].Dist(arc.Center), 1e-9, "point %d off the arc", i)
	}
	assertPointNear(t, Pt(0, 0), c.Points[0], "start")
	assertPointNear(t, Pt(50, 50), c.Points[len(c.Points)-1], "end")

	poly, err := PathToPolygon(pts, width, radius, tol)
	require.NoError(t, err)
	require.NoError(t, poly.Validate())

	assert.Greater(t, poly.Area(), 0.0)

	// The bend is a left turn, so the left offset (the return half of the
	// outline) is the inner edge.
	n := len(poly)
	outer := radius + width/2
	var prev Point
	for k, i := 0, arc.First; i <= arc.Last; k, i = k+1, i+1 {
		inner := poly[n-1-i]
		out := poly[i]
		assert.InDelta(t, radius-width/2, inner.Dist(arc.Center), 1e-9)
		assert.InDelta(t, outer, out.Dist(arc.Center), 1e-9)
		if k > 0 {
			// Chord sagitta on the outer edge stays within tolerance.
			mid := prev.Mid(out)
			assert.GreaterOrEqual(t, mid.Dist(arc.Center), outer-tol-1e-9)
		}
		prev = out
	}
}

func TestPathToPolygonRightTurn(t *testing.T) {
	c, err := SmoothPath([]Point{{0, 0}, {30, 0}, {30, -30}}, 5, DefaultTolerance)
	require.NoError(t, err)
	require.Len(t, c.Arcs, 1)
	assertPointNear(t, Pt(25, -5), c.Arcs[0].Center, "arc centre")
	assert.InDelta(t, -math.Pi/2, c.Arcs[0].Sweep, 1e-12)

	poly, err := PathToPolygon([]Point{{0, 0}, {30, 0}, {30, -30}}, 1, 5, DefaultTolerance)
	require.NoError(t, err)
	assert.Greater(t, poly.Area(), 0.0, "outline should wind counter-clockwise")
}

func TestPathToPolygonCollinearWaypoint(t *testing.T) {
	poly, err := PathToPolygon([]Point{{0, 0}, {10, 0}, {20, 0}}, 2, 5, DefaultTolerance)
	require.NoError(t, err)
	assert.Len(t, poly, 4)
}

func TestPathToPolygonErrors(t *testing.T) {
	tests := []struct {
		name   string
		pts    []Point
		width  float64
		radius float64
	}{
		{"single point", []Point{{0, 0}}, 1, 10},
		{"zero width", []Point{{0, 0}, {10, 0}}, 0, 10},
		{"zero-length segment", []Point{{0, 0}, {0, 0}, {10, 0}}, 1, 10},
		{"reversal", []Point{{0, 0}, {10, 0}, {0, 0}}, 1, 2},
		{"radius below half width", []Point{{0, 0}, {50, 0}, {50, 50}}, 4, 2},
		{"first segment too short", []Point{{0, 0}, {5, 0}, {5, 50}}, 1, 10},
		{"middle segment too short", []Point{{0, 0}, {30, 0}, {30, 15}, {60, 15}}, 1, 10},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := PathToPolygon(tt.pts, tt.width, tt.radius, DefaultTolerance)
			require.Error(t, err)
			assert.True(t, errors.Is(err, errors.ErrCodeGeometry), "got %v", err)
		})
	}
}

func TestPathToPolygonExactFit(t *testing.T) {
	// Two 90° bends of radius 10 exactly consume a 20-long middle segment.
	_, err := PathToPolygon([]Point{{0, 0}, {30, 0}, {30, 20}, {60, 20}}, 1, 10, DefaultTolerance)
	assert.NoError(t, err)
}

func TestArcSteps(t *testing.T) {
	assert.Equal(t, 1, arcSteps(0, 10, 1e-3))
	// tol >= radius falls back to eighth turns.
	assert.Equal(t, 4, arcSteps(math.Pi, 1, 5))

	n := arcSteps(math.Pi/2, 10, 1e-3)
	step := (math.Pi / 2) / float64(n)
	assert.LessOrEqual(t, 10*(1-math.Cos(step/2)), 1e-3+1e-12)
}

func TestCenterlineLength(t *testing.T) {
	c, err := SmoothPath([]Point{{0, 0}, {50, 0}, {50, 50}}, 10, 1e-6)
	require.NoError(t, err)
	want := 40 + 40 + math.Pi*10/2
	assert.InDelta(t, want, c.Length(), 1e-3)
}
