package route

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/photonlayout/pkg/errors"
	"github.com/matzehuels/photonlayout/pkg/geom"
	"github.com/matzehuels/photonlayout/pkg/layout"
)

func straightResult(t *testing.T) *Result {
	t.Helper()
	s := newSearch(t, func(o *Options) { o.GridPitch = 10 })
	res, err := s.Route(context.Background(), Request{
		Name:   "wg_ab",
		Source: port("a", 0, 0, 0),
		Target: port("b", 100, 0, math.Pi),
	}, nil)
	require.NoError(t, err)
	return res
}

func TestNewWaveguide(t *testing.T) {
	res := straightResult(t)

	wg := NewWaveguide("", res)
	assert.Equal(t, "wg_ab", wg.Name)
	assert.Equal(t, core, wg.Layer)

	assert.Equal(t, PortIn, wg.In.Name)
	assert.Equal(t, geom.Pt(0, 0), wg.In.Position)
	assert.InDelta(t, math.Pi, math.Abs(wg.In.Angle), 1e-12)

	assert.Equal(t, PortOut, wg.Out.Name)
	assert.Equal(t, geom.Pt(100, 0), wg.Out.Position)
	assert.InDelta(t, 0, wg.Out.Angle, 1e-12)
	assert.Equal(t, 0.5, wg.Out.Width)

	assert.Equal(t, "custom", NewWaveguide("custom", res).Name)
}

func TestWaveguideCommit(t *testing.T) {
	d := layout.NewDesign()
	top, err := d.CreateCell("top")
	require.NoError(t, err)

	wg := NewWaveguide("", straightResult(t))
	cell, inst, err := wg.Commit(d, top)
	require.NoError(t, err)

	assert.Equal(t, "wg_ab", d.CellName(cell))
	assert.Len(t, d.PolygonsOf(cell, core), 1)
	assert.Len(t, d.Ports(cell), 2)

	placed, err := d.Instance(inst)
	require.NoError(t, err)
	assert.Equal(t, top, placed.Parent)
	assert.Equal(t, cell, placed.Cell)
	assert.True(t, placed.Transform.IsIdentity(0))

	// The placed ports land on the routed ports.
	out, err := d.InstancePort(inst, PortOut)
	require.NoError(t, err)
	assert.Equal(t, geom.Pt(100, 0), out.Position)
}

func TestWaveguideCommitAtomic(t *testing.T) {
	d := layout.NewDesign()
	top, err := d.CreateCell("top")
	require.NoError(t, err)
	wg := NewWaveguide("", straightResult(t))

	_, _, err = wg.Commit(d, top)
	require.NoError(t, err)
	cells, insts := d.NumCells(), d.NumInstances()

	_, _, err = wg.Commit(d, top)
	assert.True(t, errors.Is(err, errors.ErrCodeDuplicateName), "got %v", err)

	_, _, err = wg.Commit(d, layout.CellID(99))
	assert.True(t, errors.Is(err, errors.ErrCodeNotFound), "got %v", err)

	bad := wg
	bad.Name = "wg_bad"
	bad.Polygon = geom.Polygon{{X: 0, Y: 0}, {X: 1, Y: 1}}
	_, _, err = bad.Commit(d, top)
	assert.True(t, errors.Is(err, errors.ErrCodeGeometry), "got %v", err)

	assert.Equal(t, cells, d.NumCells())
	assert.Equal(t, insts, d.NumInstances())
}

func bentResult(t *testing.T) *Result {
	t.Helper()
	s := newSearch(t, nil)
	res, err := s.Route(context.Background(), Request{
		Name:   "wg_bent",
		Source: port("a", 0, 0, 0),
		Target: port("b", 100, 40, math.Pi),
	}, nil)
	require.NoError(t, err)
	require.Positive(t, res.Bends())
	return res
}

func TestWaveguideTraces(t *testing.T) {
	clad := layout.Layer{Number: 2}
	trench := layout.Layer{Number: 3}
	res := bentResult(t)

	wg, err := NewWaveguide("", res).WithTraces(res, []Trace{{Layer: clad, Width: 4}, {Layer: trench, Width: 8}}, geom.DefaultTolerance)
	require.NoError(t, err)
	require.Len(t, wg.Traces, 2)
	assert.Equal(t, clad, wg.Traces[0].Layer)
	assert.Equal(t, trench, wg.Traces[1].Layer)
	// Each trace follows the core's centreline at its own width.
	assert.Greater(t, wg.Traces[0].Polygon.Area(), res.Polygon.Area())
	assert.Greater(t, wg.Traces[1].Polygon.Area(), wg.Traces[0].Polygon.Area())

	d := layout.NewDesign()
	top, err := d.CreateCell("top")
	require.NoError(t, err)
	cell, _, err := wg.Commit(d, top)
	require.NoError(t, err)
	assert.Len(t, d.PolygonsOf(cell, core), 1)
	assert.Len(t, d.PolygonsOf(cell, clad), 1)
	assert.Len(t, d.PolygonsOf(cell, trench), 1)
	assert.Len(t, d.Ports(cell), 2)
}

func TestWaveguideTraceTooWide(t *testing.T) {
	res := bentResult(t)
	require.Equal(t, 5.0, res.BendRadius)

	// Half of the widest trace reaches the bend radius.
	_, err := NewWaveguide("", res).WithTraces(res, []Trace{{Layer: core, Width: 2}, {Layer: layout.Layer{Number: 2}, Width: 10}}, geom.DefaultTolerance)
	assert.True(t, errors.Is(err, errors.ErrCodeGeometry), "got %v", err)

	// A straight route has no bend to fold, so any width draws.
	straight := straightResult(t)
	wg, err := NewWaveguide("", straight).WithTraces(straight, []Trace{{Layer: layout.Layer{Number: 2}, Width: 40}}, geom.DefaultTolerance)
	require.NoError(t, err)
	assert.InDelta(t, 4000, wg.Traces[0].Polygon.Area(), 1e-6)
}

func TestFromWaypoints(t *testing.T) {
	pts := []geom.Point{{X: 0, Y: 0}, {X: 30, Y: 0}, {X: 30, Y: 30}}
	res, err := FromWaypoints("manual", pts, 0.5, 5, core, geom.DefaultTolerance)
	require.NoError(t, err)

	assert.Equal(t, "manual", res.Name)
	assert.Equal(t, pts, res.Waypoints)
	assert.Equal(t, 1, res.Bends())
	assert.Equal(t, core, res.Layer)
	assert.InDelta(t, 0, res.Source.Angle, 1e-12)
	assert.InDelta(t, 3*math.Pi/2, res.Target.Angle, 1e-12)
	assert.InDelta(t, 50+2*math.Pi*5/4, res.Length, 1e-2)
	assert.NoError(t, res.Polygon.Validate())
	assert.Greater(t, res.Polygon.Area(), 0.0)

	// The committed ports face out of the waveguide.
	wg := NewWaveguide("", res)
	assert.InDelta(t, math.Pi, wg.In.Angle, 1e-12)
	assert.InDelta(t, math.Pi/2, wg.Out.Angle, 1e-12)
}

func TestFromWaypointsErrors(t *testing.T) {
	tests := []struct {
		name   string
		pts    []geom.Point
		width  float64
		radius float64
	}{
		{"single point", []geom.Point{{X: 0, Y: 0}}, 0.5, 5},
		{"segment too short", []geom.Point{{X: 0, Y: 0}, {X: 3, Y: 0}, {X: 3, Y: 30}}, 0.5, 5},
		{"reversal", []geom.Point{{X: 0, Y: 0}, {X: 30, Y: 0}, {X: 10, Y: 0}}, 0.5, 5},
		{"radius below half width", []geom.Point{{X: 0, Y: 0}, {X: 30, Y: 0}, {X: 30, Y: 30}}, 4, 1.5},
		{"no width", []geom.Point{{X: 0, Y: 0}, {X: 30, Y: 0}}, 0, 5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := FromWaypoints("manual", tt.pts, tt.width, tt.radius, core, geom.DefaultTolerance)
			assert.Nil(t, res)
			assert.True(t, errors.Is(err, errors.ErrCodeGeometry), "got %v", err)
		})
	}
}
