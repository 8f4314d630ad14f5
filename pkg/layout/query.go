package layout

import "github.com/matzehuels/photonlayout/pkg/geom"

// Cells returns every cell handle in creation order.
func (d *Design) Cells() []CellID {
	out := make([]CellID, len(d.cells))
	for i := range out {
		out[i] = CellID(i)
	}
	return out
}

// TopCells returns the cells no instance refers to, in creation order.
func (d *Design) TopCells() []CellID {
	var out []CellID
	for i, c := range d.cells {
		if c.parents == 0 {
			out = append(out, CellID(i))
		}
	}
	return out
}

// ChildrenOf returns the instances placed directly inside a cell, in
// insertion order.
func (d *Design) ChildrenOf(id CellID) []InstanceID {
	c, err := d.cell(id)
	if err != nil {
		return nil
	}
	return append([]InstanceID(nil), c.children...)
}

// ParentsOf returns the cells that place id directly, each once, in
// creation order.
func (d *Design) ParentsOf(id CellID) []CellID {
	seen := make(map[CellID]bool)
	for _, in := range d.instances {
		if in.Cell == id {
			seen[in.Parent] = true
		}
	}
	var out []CellID
	for i := range d.cells {
		if seen[CellID(i)] {
			out = append(out, CellID(i))
		}
	}
	return out
}

// PolygonsOf returns the polygons a cell holds directly on a layer. The
// returned polygons must not be modified.
func (d *Design) PolygonsOf(id CellID, layer Layer) []geom.Polygon {
	c, err := d.cell(id)
	if err != nil {
		return nil
	}
	return append([]geom.Polygon(nil), c.polygons[layer]...)
}

// Layers returns the layers a cell holds polygons on directly, sorted.
func (d *Design) Layers(id CellID) []Layer {
	c, err := d.cell(id)
	if err != nil {
		return nil
	}
	out := make([]Layer, 0, len(c.polygons))
	for l := range c.polygons {
		out = append(out, l)
	}
	SortLayers(out)
	return out
}

// Bounds returns the bounding box of everything a cell holds directly,
// ports included. ok is false for an empty cell.
func (d *Design) Bounds(id CellID) (b geom.Bounds, ok bool) {
	c, err := d.cell(id)
	if err != nil {
		return geom.Bounds{}, false
	}
	add := func(o geom.Bounds) {
		if !ok {
			b, ok = o, true
			return
		}
		b = b.Union(o)
	}
	for _, l := range d.Layers(id) {
		for _, p := range c.polygons[l] {
			add(p.Bounds())
		}
	}
	for _, p := range c.ports {
		add(geom.BoundsOf([]geom.Point{p.Position}))
	}
	return b, ok
}

// Depth returns the number of instance levels below a cell: 0 for a leaf.
func (d *Design) Depth(id CellID) int {
	memo := make(map[CellID]int)
	var depth func(CellID) int
	depth = func(c CellID) int {
		if v, ok := memo[c]; ok {
			return v
		}
		best := 0
		for _, inst := range d.cells[c].children {
			best = max(best, 1+depth(d.instances[inst].Cell))
		}
		memo[c] = best
		return best
	}
	if _, err := d.cell(id); err != nil {
		return 0
	}
	return depth(id)
}
