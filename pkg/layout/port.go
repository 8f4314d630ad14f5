package layout

import (
	"math"

	"github.com/matzehuels/photonlayout/pkg/errors"
	"github.com/matzehuels/photonlayout/pkg/geom"
)

// Port is a named connection point on a cell boundary.
type Port struct {
	Name     string
	Position geom.Point // in the owning cell's frame
	Angle    float64    // outward facing direction, radians
	Width    float64    // waveguide width the port expects
	Layer    Layer
}

// Direction returns the unit vector the port faces.
func (p Port) Direction() geom.Point { return geom.Direction(p.Angle) }

// Transform returns the port expressed in the frame t maps into. Width
// scales with the transform's magnification.
func (p Port) Transform(t geom.Transform) Port {
	p.Position = t.Apply(p.Position)
	p.Angle = t.ApplyAngle(p.Angle)
	p.Width *= t.Mag()
	return p
}

// AddPort appends a port to a cell. Port names are unique per cell.
func (d *Design) AddPort(id CellID, p Port) error {
	c, err := d.cell(id)
	if err != nil {
		return err
	}
	if err := errors.ValidateName("port", p.Name); err != nil {
		return err
	}
	if _, exists := c.portIndex[p.Name]; exists {
		return errors.New(errors.ErrCodeDuplicateName, "cell %q already has a port named %q", c.name, p.Name)
	}
	if !(p.Width > 0) || math.IsInf(p.Width, 0) {
		return errors.New(errors.ErrCodeInvalidInput, "port %q on %q: width must be positive, got %g", p.Name, c.name, p.Width)
	}
	if math.IsNaN(p.Angle) || math.IsInf(p.Angle, 0) ||
		math.IsNaN(p.Position.X) || math.IsNaN(p.Position.Y) ||
		math.IsInf(p.Position.X, 0) || math.IsInf(p.Position.Y, 0) {
		return errors.New(errors.ErrCodeGeometry, "port %q on %q has non-finite position or angle", p.Name, c.name)
	}
	p.Angle = geom.NormalizeAngle(p.Angle)
	c.portIndex[p.Name] = len(c.ports)
	c.ports = append(c.ports, p)
	return nil
}

// Port returns a port of a cell in the cell's own frame.
func (d *Design) Port(id CellID, name string) (Port, error) {
	c, err := d.cell(id)
	if err != nil {
		return Port{}, err
	}
	i, ok := c.portIndex[name]
	if !ok {
		return Port{}, errors.New(errors.ErrCodeNotFound, "cell %q has no port %q", c.name, name)
	}
	return c.ports[i], nil
}

// Ports returns the ports of a cell in insertion order.
func (d *Design) Ports(id CellID) []Port {
	c, err := d.cell(id)
	if err != nil {
		return nil
	}
	return append([]Port(nil), c.ports...)
}

// InstancePort returns a port of the instance's cell expressed in the
// frame of the instance's parent.
func (d *Design) InstancePort(inst InstanceID, name string) (Port, error) {
	in, err := d.Instance(inst)
	if err != nil {
		return Port{}, err
	}
	p, err := d.Port(in.Cell, name)
	if err != nil {
		return Port{}, err
	}
	return p.Transform(in.Transform), nil
}

// GlobalPort resolves a port through a chain of instances and returns it
// in the frame of scope.
//
// chain[0] must be an instance placed in scope, and every following
// instance must be placed in the cell of its predecessor. The port is
// looked up on the cell of the last instance; an empty chain names a port
// of scope itself.
func (d *Design) GlobalPort(scope CellID, chain []InstanceID, name string) (Port, error) {
	t, cell, err := d.ChainTransform(scope, chain)
	if err != nil {
		return Port{}, err
	}
	p, err := d.Port(cell, name)
	if err != nil {
		return Port{}, err
	}
	return p.Transform(t), nil
}

// ChainTransform composes the transforms along an instance chain rooted
// in scope. It returns the composed transform and the cell at the end of
// the chain.
func (d *Design) ChainTransform(scope CellID, chain []InstanceID) (geom.Transform, CellID, error) {
	if _, err := d.cell(scope); err != nil {
		return geom.Transform{}, 0, err
	}
	t := geom.Identity()
	at := scope
	for i, id := range chain {
		in, err := d.Instance(id)
		if err != nil {
			return geom.Transform{}, 0, err
		}
		if in.Parent != at {
			return geom.Transform{}, 0, errors.New(errors.ErrCodeInvalidInput,
				"instance chain broken at step %d: instance %d lives in %q, not %q",
				i, id, d.CellName(in.Parent), d.CellName(at))
		}
		t = geom.Compose(t, in.Transform)
		at = in.Cell
	}
	return t, at, nil
}
