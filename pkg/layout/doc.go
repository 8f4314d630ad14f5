// Package layout holds the hierarchical design model: cells, their
// polygons and ports, and instances placing one cell inside another.
//
// # Overview
//
// A [Design] is an arena. Cells and instances are created through it and
// referred to by small integer handles ([CellID], [InstanceID]); the design
// owns every record and hands out copies. Cells are never frozen: polygons,
// ports and instances may be added at any time.
//
// The instance graph (cell → referenced cell) must stay acyclic. Every
// [Design.AddInstance] call first checks whether the parent is reachable
// from the referenced cell and rejects the edge with a CYCLIC_REFERENCE
// error if it is, leaving the design unchanged. Placing a cell inside
// itself is the one-hop case of the same check.
//
// # Basic Usage
//
//	d := layout.NewDesign()
//	mmi, _ := d.CreateCell("mmi")
//	_ = d.AddPolygon(mmi, layout.Layer{Number: 1}, geom.Rect(0, -2, 10, 2))
//	_ = d.AddPort(mmi, layout.Port{Name: "in", Position: geom.Pt(0, 0), Angle: math.Pi, Width: 0.5, Layer: layout.Layer{Number: 1}})
//
//	top, _ := d.CreateCell("top")
//	inst, _ := d.AddInstance(top, mmi, geom.Translate(100, 0))
//	p, _ := d.InstancePort(inst, "in") // port in top's frame
//
// # Ports
//
// A [Port] faces outward: its Angle points away from the owning cell, the
// direction a waveguide leaves in. [Design.GlobalPort] resolves a port
// through a chain of instances by composing their transforms, so a port
// several levels down can be expressed in the frame of any ancestor.
//
// # Concurrency
//
// A Design is not safe for concurrent mutation. Read-only queries may run
// concurrently once no writer is active.
package layout
