package route

import (
	"math"

	"github.com/matzehuels/photonlayout/pkg/errors"
	"github.com/matzehuels/photonlayout/pkg/geom"
	"github.com/matzehuels/photonlayout/pkg/layout"
)

// Port names of a waveguide cell.
const (
	PortIn  = "in"
	PortOut = "out"
)

// Trace is an extra outline drawn along a waveguide centreline, such as a
// cladding or a trench opening.
type Trace struct {
	Layer layout.Layer
	Width float64
}

// Outline is one layer's polygon of a waveguide cell.
type Outline struct {
	Layer   layout.Layer
	Polygon geom.Polygon
}

// Waveguide is a routed path packaged as a cell with exactly two ports.
// Its geometry is already in the routing scope's frame, so it is placed
// with the identity transform.
type Waveguide struct {
	Name    string
	Layer   layout.Layer
	Polygon geom.Polygon
	Traces  []Outline // drawn along the same centreline as Polygon
	In, Out layout.Port
}

// NewWaveguide builds the waveguide cell description for a result. An
// empty name falls back to the request name.
//
// The waveguide's ports face away from the waveguide: "in" sits on the
// source port facing back into it, "out" likewise on the target port.
func NewWaveguide(name string, r *Result) Waveguide {
	if name == "" {
		name = r.Name
	}
	port := func(n string, p layout.Port) layout.Port {
		return layout.Port{
			Name:     n,
			Position: p.Position,
			Angle:    geom.NormalizeAngle(p.Angle + math.Pi),
			Width:    r.Width,
			Layer:    r.Layer,
		}
	}
	return Waveguide{
		Name:    name,
		Layer:   r.Layer,
		Polygon: r.Polygon,
		In:      port(PortIn, r.Source),
		Out:     port(PortOut, r.Target),
	}
}

// WithTraces returns w with one outline per trace, each following r's
// waypoints and bend radius. It fails with a GEOMETRY error when the route
// bends and its radius does not exceed half of the widest trace.
func (w Waveguide) WithTraces(r *Result, traces []Trace, tol float64) (Waveguide, error) {
	if len(traces) == 0 {
		return w, nil
	}
	widest := 0.0
	for _, t := range traces {
		widest = max(widest, t.Width)
	}
	if r.Bends() > 0 && r.BendRadius <= widest/2 {
		return Waveguide{}, errors.New(errors.ErrCodeGeometry,
			"bend radius %g of %q must exceed half the widest trace %g", r.BendRadius, w.Name, widest)
	}

	out := make([]Outline, len(traces))
	for i, t := range traces {
		poly, err := geom.PathToPolygon(r.Waypoints, t.Width, r.BendRadius, tol)
		if err != nil {
			return Waveguide{}, errors.Wrap(errors.GetCode(err), err, "trace on layer %s", t.Layer)
		}
		out[i] = Outline{Layer: t.Layer, Polygon: poly}
	}
	w.Traces = out
	return w, nil
}

// Commit adds the waveguide cell to d and places it in scope. Everything
// that can fail is checked first, so a failed commit leaves d unchanged.
func (w Waveguide) Commit(d *layout.Design, scope layout.CellID) (layout.CellID, layout.InstanceID, error) {
	if d.CellName(scope) == "" {
		return 0, 0, errors.New(errors.ErrCodeNotFound, "unknown scope cell %d", scope)
	}
	if err := errors.ValidateName("cell", w.Name); err != nil {
		return 0, 0, err
	}
	if _, exists := d.CellByName(w.Name); exists {
		return 0, 0, errors.New(errors.ErrCodeDuplicateName, "cell %q already exists", w.Name)
	}
	if _, err := d.InstanceByName(scope, w.Name); err == nil {
		return 0, 0, errors.New(errors.ErrCodeDuplicateName, "scope already has an instance named %q", w.Name)
	}
	if err := w.Polygon.Validate(); err != nil {
		return 0, 0, err
	}
	for _, t := range w.Traces {
		if err := t.Polygon.Validate(); err != nil {
			return 0, 0, errors.Wrap(errors.GetCode(err), err, "trace on layer %s", t.Layer)
		}
	}
	if !(w.In.Width > 0) {
		return 0, 0, errors.New(errors.ErrCodeInvalidInput, "waveguide %q has no width", w.Name)
	}

	cell, err := d.CreateCell(w.Name)
	if err != nil {
		return 0, 0, err
	}
	if err := d.AddPolygon(cell, w.Layer, w.Polygon); err != nil {
		return 0, 0, err
	}
	for _, t := range w.Traces {
		if err := d.AddPolygon(cell, t.Layer, t.Polygon); err != nil {
			return 0, 0, err
		}
	}
	for _, p := range []layout.Port{w.In, w.Out} {
		if err := d.AddPort(cell, p); err != nil {
			return 0, 0, err
		}
	}
	inst, err := d.AddNamedInstance(scope, cell, geom.Identity(), w.Name)
	if err != nil {
		return 0, 0, err
	}
	return cell, inst, nil
}
