package route

import (
	"math"

	"github.com/matzehuels/photonlayout/pkg/errors"
	"github.com/matzehuels/photonlayout/pkg/geom"
	"github.com/matzehuels/photonlayout/pkg/layout"
)

// FromWaypoints builds the result for a hand-drawn waveguide. Interior
// waypoints become bends of the given radius; no obstacle is consulted.
//
// The path must be drawable: a segment too short for the bends at its
// ends, a reversal, or a radius not above half the width fails with
// GEOMETRY. The source port sits on the first waypoint facing along the
// first segment, the target port on the last waypoint facing back along
// the last segment, as a routed result has them.
func FromWaypoints(name string, waypoints []geom.Point, width, radius float64, layer layout.Layer, tol float64) (*Result, error) {
	if len(waypoints) < 2 {
		return nil, errors.New(errors.ErrCodeGeometry, "waveguide %q needs at least 2 waypoints, got %d", name, len(waypoints))
	}
	pts := append([]geom.Point(nil), waypoints...)
	poly, err := geom.PathToPolygon(pts, width, radius, tol)
	if err != nil {
		return nil, errors.Wrap(errors.GetCode(err), err, "waveguide %q", name)
	}
	c, err := geom.SmoothPath(pts, radius, tol)
	if err != nil {
		return nil, errors.Wrap(errors.GetCode(err), err, "waveguide %q", name)
	}

	n := len(pts)
	end := func(label string, at, toward geom.Point) layout.Port {
		d := toward.Sub(at)
		return layout.Port{
			Name:     label,
			Position: at,
			Angle:    geom.NormalizeAngle(math.Atan2(d.Y, d.X)),
			Width:    width,
			Layer:    layer,
		}
	}
	return &Result{
		Name:       name,
		Waypoints:  pts,
		Polygon:    poly,
		Width:      width,
		BendRadius: radius,
		Layer:      layer,
		Source:     end("source", pts[0], pts[1]),
		Target:     end("target", pts[n-1], pts[n-2]),
		Length:     c.Length(),
	}, nil
}
