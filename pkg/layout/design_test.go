package layout

import (
	"slices"
	"testing"

	"github.com/matzehuels/photonlayout/pkg/errors"
	"github.com/matzehuels/photonlayout/pkg/geom"
)

var wg = Layer{Number: 1}

func mustCell(t *testing.T, d *Design, name string) CellID {
	t.Helper()
	id, err := d.CreateCell(name)
	if err != nil {
		t.Fatalf("CreateCell(%q): %v", name, err)
	}
	return id
}

func mustInstance(t *testing.T, d *Design, parent, ref CellID, tr geom.Transform) InstanceID {
	t.Helper()
	id, err := d.AddInstance(parent, ref, tr)
	if err != nil {
		t.Fatalf("AddInstance(%d, %d): %v", parent, ref, err)
	}
	return id
}

func TestCreateCell(t *testing.T) {
	d := NewDesign()
	a := mustCell(t, d, "a")
	b := mustCell(t, d, "b")
	if a == b {
		t.Fatalf("handles collide: %d", a)
	}
	if got := d.CellName(b); got != "b" {
		t.Errorf("CellName = %q, want b", got)
	}
	if id, ok := d.CellByName("a"); !ok || id != a {
		t.Errorf("CellByName(a) = %d, %v", id, ok)
	}

	_, err := d.CreateCell("a")
	if !errors.Is(err, errors.ErrCodeDuplicateName) {
		t.Errorf("duplicate name: got %v, want DUPLICATE_NAME", err)
	}
	if _, err := d.CreateCell(""); !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("empty name: got %v, want INVALID_INPUT", err)
	}
	if d.NumCells() != 2 {
		t.Errorf("NumCells = %d, want 2", d.NumCells())
	}
}

func TestAddPolygon(t *testing.T) {
	d := NewDesign()
	c := mustCell(t, d, "c")

	src := geom.Rect(0, 0, 1, 1)
	if err := d.AddPolygon(c, wg, src); err != nil {
		t.Fatalf("AddPolygon: %v", err)
	}
	src[0] = geom.Pt(-100, -100)
	if got := d.PolygonsOf(c, wg)[0][0]; got != geom.Pt(0, 0) {
		t.Errorf("stored polygon aliases caller slice: %v", got)
	}

	err := d.AddPolygon(c, wg, geom.Polygon{{X: 0, Y: 0}, {X: 1, Y: 0}})
	if !errors.Is(err, errors.ErrCodeGeometry) {
		t.Errorf("two-point polygon: got %v, want GEOMETRY", err)
	}
	if err := d.AddPolygon(CellID(42), wg, src); !errors.Is(err, errors.ErrCodeNotFound) {
		t.Errorf("unknown cell: got %v, want NOT_FOUND", err)
	}
}

func TestAddInstanceRejectsSelf(t *testing.T) {
	d := NewDesign()
	a := mustCell(t, d, "a")
	_, err := d.AddInstance(a, a, geom.Identity())
	if !errors.Is(err, errors.ErrCodeCyclicReference) {
		t.Fatalf("self placement: got %v, want CYCLIC_REFERENCE", err)
	}
	if len(d.ChildrenOf(a)) != 0 {
		t.Error("failed placement left an instance behind")
	}
}

func TestAddInstanceRejectsCycles(t *testing.T) {
	tests := []struct {
		name string
		hops int
	}{
		{"two-hop", 2},
		{"three-hop", 3},
		{"long chain", 12},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := NewDesign()
			cells := make([]CellID, tt.hops)
			for i := range cells {
				cells[i] = mustCell(t, d, string(rune('a'+i)))
			}
			for i := 0; i+1 < len(cells); i++ {
				mustInstance(t, d, cells[i], cells[i+1], geom.Identity())
			}
			before := d.NumInstances()

			last := cells[len(cells)-1]
			_, err := d.AddInstance(last, cells[0], geom.Identity())
			if !errors.Is(err, errors.ErrCodeCyclicReference) {
				t.Fatalf("closing edge: got %v, want CYCLIC_REFERENCE", err)
			}
			if d.NumInstances() != before {
				t.Errorf("instances = %d, want %d", d.NumInstances(), before)
			}
			if len(d.ChildrenOf(last)) != 0 {
				t.Error("failed placement left a child behind")
			}
			if err := d.Validate(); err != nil {
				t.Errorf("Validate after rejected edge: %v", err)
			}
		})
	}
}

func TestAddInstanceAllowsDiamond(t *testing.T) {
	d := NewDesign()
	top := mustCell(t, d, "top")
	l := mustCell(t, d, "left")
	r := mustCell(t, d, "right")
	leaf := mustCell(t, d, "leaf")
	mustInstance(t, d, top, l, geom.Identity())
	mustInstance(t, d, top, r, geom.Identity())
	mustInstance(t, d, l, leaf, geom.Identity())
	mustInstance(t, d, r, leaf, geom.Identity())
	// The same cell may be placed twice in one parent.
	mustInstance(t, d, top, leaf, geom.Translate(10, 0))
	mustInstance(t, d, top, leaf, geom.Translate(20, 0))

	if err := d.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if !d.Reachable(top, leaf) {
		t.Error("top should reach leaf")
	}
	if d.Reachable(leaf, top) {
		t.Error("leaf should not reach top")
	}
	if got := d.TopCells(); !slices.Equal(got, []CellID{top}) {
		t.Errorf("TopCells = %v, want [%d]", got, top)
	}
	if got := d.ParentsOf(leaf); !slices.Equal(got, []CellID{top, l, r}) {
		t.Errorf("ParentsOf(leaf) = %v", got)
	}
	if got := d.Depth(top); got != 2 {
		t.Errorf("Depth(top) = %d, want 2", got)
	}
}

func TestAddInstanceRejectsDegenerateTransform(t *testing.T) {
	d := NewDesign()
	a := mustCell(t, d, "a")
	b := mustCell(t, d, "b")
	_, err := d.AddInstance(a, b, geom.Transform{Magnification: -2})
	if !errors.Is(err, errors.ErrCodeGeometry) {
		t.Fatalf("got %v, want GEOMETRY", err)
	}
}

func TestNamedInstances(t *testing.T) {
	d := NewDesign()
	top := mustCell(t, d, "top")
	mmi := mustCell(t, d, "mmi")

	id, err := d.AddNamedInstance(top, mmi, geom.Identity(), "splitter")
	if err != nil {
		t.Fatalf("AddNamedInstance: %v", err)
	}
	if _, err := d.AddNamedInstance(top, mmi, geom.Identity(), "splitter"); !errors.Is(err, errors.ErrCodeDuplicateName) {
		t.Errorf("duplicate instance name: got %v", err)
	}
	got, err := d.InstanceByName(top, "splitter")
	if err != nil || got != id {
		t.Errorf("InstanceByName = %d, %v; want %d", got, err, id)
	}
	if _, err := d.InstanceByName(top, "nope"); !errors.Is(err, errors.ErrCodeNotFound) {
		t.Errorf("missing instance: got %v", err)
	}
}

func TestLayersSorted(t *testing.T) {
	d := NewDesign()
	c := mustCell(t, d, "c")
	for _, l := range []Layer{{3, 0}, {1, 2}, {1, 0}} {
		if err := d.AddPolygon(c, l, geom.Rect(0, 0, 1, 1)); err != nil {
			t.Fatal(err)
		}
	}
	want := []Layer{{1, 0}, {1, 2}, {3, 0}}
	if got := d.Layers(c); !slices.Equal(got, want) {
		t.Errorf("Layers = %v, want %v", got, want)
	}
}

func TestParseLayer(t *testing.T) {
	tests := []struct {
		in      string
		want    Layer
		wantErr bool
	}{
		{"1/0", Layer{1, 0}, false},
		{"34", Layer{34, 0}, false},
		{" 2/7 ", Layer{2, 7}, false},
		{"x", Layer{}, true},
		{"1/y", Layer{}, true},
		{"-1", Layer{}, true},
	}
	for _, tt := range tests {
		got, err := ParseLayer(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseLayer(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseLayer(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
	if s := (Layer{4, 1}).String(); s != "4/1" {
		t.Errorf("String = %q", s)
	}
}

func TestBounds(t *testing.T) {
	d := NewDesign()
	c := mustCell(t, d, "c")
	if _, ok := d.Bounds(c); ok {
		t.Error("empty cell reported bounds")
	}
	_ = d.AddPolygon(c, wg, geom.Rect(0, 0, 4, 2))
	_ = d.AddPort(c, Port{Name: "out", Position: geom.Pt(6, 1), Width: 0.5, Layer: wg})
	b, ok := d.Bounds(c)
	if !ok || b.Max.X != 6 || b.Min.Y != 0 || b.Max.Y != 2 {
		t.Errorf("Bounds = %+v, %v", b, ok)
	}
}
