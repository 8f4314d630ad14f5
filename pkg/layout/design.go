package layout

import (
	"github.com/matzehuels/photonlayout/pkg/errors"
	"github.com/matzehuels/photonlayout/pkg/geom"
)

// CellID is a handle to a cell owned by a [Design].
type CellID int

// InstanceID is a handle to an instance owned by a [Design].
type InstanceID int

// Instance places a referenced cell inside a parent cell.
type Instance struct {
	ID        InstanceID
	Parent    CellID         // cell that contains the instance
	Cell      CellID         // cell being placed
	Transform geom.Transform // maps the placed cell's frame into the parent's
	Name      string         // optional, unique among the parent's instances
}

type cell struct {
	name      string
	polygons  map[Layer][]geom.Polygon
	ports     []Port
	portIndex map[string]int
	children  []InstanceID
	names     map[string]InstanceID // named children
	parents   int                   // number of instances referencing this cell
}

// Design is the arena owning every cell and instance of a layout.
//
// The zero value is not usable; create designs with [NewDesign].
type Design struct {
	cells     []*cell
	byName    map[string]CellID
	instances []Instance
}

// NewDesign returns an empty design.
func NewDesign() *Design {
	return &Design{byName: make(map[string]CellID)}
}

// CreateCell adds an empty cell. Names are unique across the design.
func (d *Design) CreateCell(name string) (CellID, error) {
	if err := errors.ValidateName("cell", name); err != nil {
		return 0, err
	}
	if _, exists := d.byName[name]; exists {
		return 0, errors.New(errors.ErrCodeDuplicateName, "cell %q already exists", name)
	}
	id := CellID(len(d.cells))
	d.cells = append(d.cells, &cell{
		name:      name,
		polygons:  make(map[Layer][]geom.Polygon),
		portIndex: make(map[string]int),
		names:     make(map[string]InstanceID),
	})
	d.byName[name] = id
	return id, nil
}

// CellByName looks up a cell by name.
func (d *Design) CellByName(name string) (CellID, bool) {
	id, ok := d.byName[name]
	return id, ok
}

// CellName returns the name of a cell, or "" for an unknown handle.
func (d *Design) CellName(id CellID) string {
	c, err := d.cell(id)
	if err != nil {
		return ""
	}
	return c.name
}

// NumCells returns the number of cells in the design.
func (d *Design) NumCells() int { return len(d.cells) }

// NumInstances returns the number of instances in the design.
func (d *Design) NumInstances() int { return len(d.instances) }

func (d *Design) cell(id CellID) (*cell, error) {
	if id < 0 || int(id) >= len(d.cells) {
		return nil, errors.New(errors.ErrCodeNotFound, "unknown cell %d", id)
	}
	return d.cells[id], nil
}

// AddPolygon appends a polygon to a cell on the given layer. The polygon is
// copied; later changes to the caller's slice do not affect the design.
func (d *Design) AddPolygon(id CellID, layer Layer, p geom.Polygon) error {
	c, err := d.cell(id)
	if err != nil {
		return err
	}
	if err := p.Validate(); err != nil {
		return errors.Wrap(errors.ErrCodeGeometry, err, "polygon on layer %s of cell %q", layer, c.name)
	}
	c.polygons[layer] = append(c.polygons[layer], p.Clone())
	return nil
}

// AddInstance places cell ref inside parent under transform t.
//
// The call fails with CYCLIC_REFERENCE when parent is reachable from ref
// (including ref == parent); the design is left unchanged.
func (d *Design) AddInstance(parent, ref CellID, t geom.Transform) (InstanceID, error) {
	return d.AddNamedInstance(parent, ref, t, "")
}

// AddNamedInstance is [Design.AddInstance] with an instance name. A
// non-empty name must be unique among the parent's instances.
func (d *Design) AddNamedInstance(parent, ref CellID, t geom.Transform, name string) (InstanceID, error) {
	pc, err := d.cell(parent)
	if err != nil {
		return 0, err
	}
	rc, err := d.cell(ref)
	if err != nil {
		return 0, err
	}
	if err := t.Validate(); err != nil {
		return 0, err
	}
	if name != "" {
		if err := errors.ValidateName("instance", name); err != nil {
			return 0, err
		}
		if _, exists := pc.names[name]; exists {
			return 0, errors.New(errors.ErrCodeDuplicateName, "cell %q already has an instance named %q", pc.name, name)
		}
	}
	if parent == ref {
		return 0, errors.New(errors.ErrCodeCyclicReference, "cell %q cannot contain itself", pc.name)
	}
	if d.Reachable(ref, parent) {
		return 0, errors.New(errors.ErrCodeCyclicReference,
			"placing %q in %q would create a cycle: %q already contains %q", rc.name, pc.name, rc.name, pc.name)
	}

	id := InstanceID(len(d.instances))
	d.instances = append(d.instances, Instance{
		ID:        id,
		Parent:    parent,
		Cell:      ref,
		Transform: t,
		Name:      name,
	})
	pc.children = append(pc.children, id)
	if name != "" {
		pc.names[name] = id
	}
	rc.parents++
	return id, nil
}

// Instance returns a copy of the instance record.
func (d *Design) Instance(id InstanceID) (Instance, error) {
	if id < 0 || int(id) >= len(d.instances) {
		return Instance{}, errors.New(errors.ErrCodeNotFound, "unknown instance %d", id)
	}
	return d.instances[id], nil
}

// InstanceByName finds a named instance inside parent.
func (d *Design) InstanceByName(parent CellID, name string) (InstanceID, error) {
	c, err := d.cell(parent)
	if err != nil {
		return 0, err
	}
	id, ok := c.names[name]
	if !ok {
		return 0, errors.New(errors.ErrCodeNotFound, "cell %q has no instance named %q", c.name, name)
	}
	return id, nil
}

// Reachable reports whether to can be reached from from by following
// instance references (from contains to, at any depth). A cell reaches
// itself.
func (d *Design) Reachable(from, to CellID) bool {
	if from == to {
		return true
	}
	seen := make(map[CellID]bool)
	stack := []CellID{from}
	for len(stack) > 0 {
		id := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if seen[id] {
			continue
		}
		seen[id] = true
		for _, inst := range d.cells[id].children {
			child := d.instances[inst].Cell
			if child == to {
				return true
			}
			if !seen[child] {
				stack = append(stack, child)
			}
		}
	}
	return false
}

// Validate checks the whole instance graph for cycles. AddInstance already
// prevents them; Validate is for designs assembled from external documents
// or after bulk edits.
//
// Cycle detection is a depth-first search with white/gray/black colouring.
func (d *Design) Validate() error {
	const (
		white = iota
		gray
		black
	)

	color := make([]int, len(d.cells))
	var cyclic CellID = -1

	var dfs func(id CellID)
	dfs = func(id CellID) {
		color[id] = gray
		for _, inst := range d.cells[id].children {
			child := d.instances[inst].Cell
			switch color[child] {
			case white:
				dfs(child)
			case gray:
				cyclic = child
				return
			}
			if cyclic >= 0 {
				return
			}
		}
		color[id] = black
	}

	for id := range d.cells {
		if color[id] == white {
			dfs(CellID(id))
			if cyclic >= 0 {
				return errors.New(errors.ErrCodeCyclicReference, "instance graph has a cycle through %q", d.cells[cyclic].name)
			}
		}
	}
	return nil
}
