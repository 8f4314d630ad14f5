// Package flatten expands a cell hierarchy into plain polygons in one frame.
//
// [Flatten] walks the instance tree below a root cell, composing each
// instance's transform with the frame of its parent, and collects every
// polygon grouped by layer. The result is canonical: polygons on a layer are
// sorted by [geom.Polygon.Less], so the output depends only on the design's
// geometry and never on the order instances were created or visited.
//
// Results are recomputed on every call. The model has no invalidation
// hooks, so nothing is cached.
package flatten

import (
	"slices"

	"github.com/matzehuels/photonlayout/pkg/errors"
	"github.com/matzehuels/photonlayout/pkg/geom"
	"github.com/matzehuels/photonlayout/pkg/layout"
)

// DefaultMaxDepth bounds recursion when Options.MaxDepth is zero.
const DefaultMaxDepth = 64

// Options controls a flatten run.
type Options struct {
	// MaxDepth is the deepest instance nesting allowed below the root.
	// Zero means DefaultMaxDepth.
	MaxDepth int
	// Layers restricts the output to the given layers. Nil keeps all.
	Layers []layout.Layer
	// Filter, when set, drops every layer it rejects.
	Filter func(layout.Layer) bool
}

func (o Options) maxDepth() int {
	if o.MaxDepth <= 0 {
		return DefaultMaxDepth
	}
	return o.MaxDepth
}

func (o Options) keep() func(layout.Layer) bool {
	filter := o.Filter
	if filter == nil {
		filter = func(layout.Layer) bool { return true }
	}
	if o.Layers == nil {
		return filter
	}
	set := make(map[layout.Layer]bool, len(o.Layers))
	for _, l := range o.Layers {
		set[l] = true
	}
	return func(l layout.Layer) bool { return set[l] && filter(l) }
}

// Layout is a flattened design: polygons grouped by layer in one frame.
type Layout struct {
	Polygons map[layout.Layer][]geom.Polygon
}

// Layers returns the layers present in the layout, sorted.
func (l *Layout) Layers() []layout.Layer {
	out := make([]layout.Layer, 0, len(l.Polygons))
	for k := range l.Polygons {
		out = append(out, k)
	}
	layout.SortLayers(out)
	return out
}

// Count returns the total number of polygons.
func (l *Layout) Count() int {
	n := 0
	for _, ps := range l.Polygons {
		n += len(ps)
	}
	return n
}

// All returns every polygon, layer by layer in sorted layer order.
func (l *Layout) All() []geom.Polygon {
	var out []geom.Polygon
	for _, k := range l.Layers() {
		out = append(out, l.Polygons[k]...)
	}
	return out
}

// Bounds returns the bounding box of all polygons; ok is false when the
// layout is empty.
func (l *Layout) Bounds() (b geom.Bounds, ok bool) {
	for _, p := range l.All() {
		if !ok {
			b, ok = p.Bounds(), true
			continue
		}
		b = b.Union(p.Bounds())
	}
	return b, ok
}

// Equal reports whether two layouts hold identical polygons on identical
// layers.
func (l *Layout) Equal(o *Layout) bool {
	if len(l.Polygons) != len(o.Polygons) {
		return false
	}
	for k, ps := range l.Polygons {
		qs, ok := o.Polygons[k]
		if !ok || len(ps) != len(qs) {
			return false
		}
		for i := range ps {
			if !ps[i].Equal(qs[i]) {
				return false
			}
		}
	}
	return true
}

// Flatten expands root and everything below it into frame. The design is
// only read. A RECURSION_LIMIT error is returned when the nesting below root
// is deeper than opts.MaxDepth.
func Flatten(d *layout.Design, root layout.CellID, frame geom.Transform, opts Options) (*Layout, error) {
	if d.CellName(root) == "" {
		return nil, errors.New(errors.ErrCodeNotFound, "unknown cell %d", root)
	}
	w := walker{
		d:     d,
		limit: opts.maxDepth(),
		keep:  opts.keep(),
		out:   &Layout{Polygons: make(map[layout.Layer][]geom.Polygon)},
	}
	if err := w.walk(root, frame, 0); err != nil {
		return nil, err
	}
	for k, ps := range w.out.Polygons {
		slices.SortFunc(ps, comparePolygons)
		w.out.Polygons[k] = ps
	}
	return w.out, nil
}

type walker struct {
	d     *layout.Design
	limit int
	keep  func(layout.Layer) bool
	out   *Layout
}

func (w *walker) walk(cell layout.CellID, frame geom.Transform, depth int) error {
	if depth > w.limit {
		return errors.New(errors.ErrCodeRecursionLimit,
			"hierarchy below %q exceeds the depth limit of %d", w.d.CellName(cell), w.limit)
	}
	for _, l := range w.d.Layers(cell) {
		if !w.keep(l) {
			continue
		}
		for _, p := range w.d.PolygonsOf(cell, l) {
			w.out.Polygons[l] = append(w.out.Polygons[l], p.Transform(frame))
		}
	}
	for _, id := range w.d.ChildrenOf(cell) {
		in, err := w.d.Instance(id)
		if err != nil {
			return err
		}
		if err := w.walk(in.Cell, geom.Compose(frame, in.Transform), depth+1); err != nil {
			return err
		}
	}
	return nil
}

func comparePolygons(a, b geom.Polygon) int {
	switch {
	case a.Less(b):
		return -1
	case b.Less(a):
		return 1
	}
	return 0
}

// Obstacles returns the flattened polygons of scope in scope's own frame,
// on the layers opts keeps. The zero Options accept every layer.
func Obstacles(d *layout.Design, scope layout.CellID, opts Options) ([]geom.Polygon, error) {
	l, err := Flatten(d, scope, geom.Identity(), opts)
	if err != nil {
		return nil, err
	}
	return l.All(), nil
}
