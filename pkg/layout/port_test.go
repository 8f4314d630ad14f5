package layout

import (
	"math"
	"testing"

	"github.com/matzehuels/photonlayout/pkg/errors"
	"github.com/matzehuels/photonlayout/pkg/geom"
)

func near(a, b float64) bool { return math.Abs(a-b) <= 1e-9 }

func TestAddPort(t *testing.T) {
	d := NewDesign()
	c := mustCell(t, d, "c")

	p := Port{Name: "in", Position: geom.Pt(0, 0), Angle: -math.Pi / 2, Width: 0.5, Layer: wg}
	if err := d.AddPort(c, p); err != nil {
		t.Fatalf("AddPort: %v", err)
	}
	got, err := d.Port(c, "in")
	if err != nil {
		t.Fatalf("Port: %v", err)
	}
	if !near(got.Angle, 3*math.Pi/2) {
		t.Errorf("Angle = %g, want normalised 3π/2", got.Angle)
	}

	if err := d.AddPort(c, p); !errors.Is(err, errors.ErrCodeDuplicateName) {
		t.Errorf("duplicate port: got %v", err)
	}
	bad := p
	bad.Name = "w"
	bad.Width = 0
	if err := d.AddPort(c, bad); !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("zero width: got %v", err)
	}
	if _, err := d.Port(c, "missing"); !errors.Is(err, errors.ErrCodeNotFound) {
		t.Errorf("missing port: got %v", err)
	}
	if n := len(d.Ports(c)); n != 1 {
		t.Errorf("Ports = %d, want 1", n)
	}
}

func TestInstancePort(t *testing.T) {
	d := NewDesign()
	dev := mustCell(t, d, "dev")
	top := mustCell(t, d, "top")
	_ = d.AddPort(dev, Port{Name: "out", Position: geom.Pt(10, 0), Angle: 0, Width: 0.5, Layer: wg})

	tests := []struct {
		name      string
		tr        geom.Transform
		wantPos   geom.Point
		wantAngle float64
	}{
		{"identity", geom.Identity(), geom.Pt(10, 0), 0},
		{"translate", geom.Translate(5, 5), geom.Pt(15, 5), 0},
		{"rotate", geom.Rotate(math.Pi / 2), geom.Pt(0, 10), math.Pi / 2},
		{"rotate and translate", geom.NewTransform(100, 0, math.Pi, false), geom.Pt(90, 0), math.Pi},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			inst := mustInstance(t, d, top, dev, tt.tr)
			got, err := d.InstancePort(inst, "out")
			if err != nil {
				t.Fatalf("InstancePort: %v", err)
			}
			if !got.Position.AlmostEqual(tt.wantPos, 1e-9) {
				t.Errorf("Position = %v, want %v", got.Position, tt.wantPos)
			}
			if !near(got.Angle, tt.wantAngle) {
				t.Errorf("Angle = %g, want %g", got.Angle, tt.wantAngle)
			}
			if got.Width != 0.5 || got.Layer != wg {
				t.Errorf("width/layer changed: %+v", got)
			}
		})
	}
}

func TestInstancePortMirrored(t *testing.T) {
	d := NewDesign()
	dev := mustCell(t, d, "dev")
	top := mustCell(t, d, "top")
	_ = d.AddPort(dev, Port{Name: "up", Position: geom.Pt(0, 3), Angle: math.Pi / 2, Width: 1, Layer: wg})
	inst := mustInstance(t, d, top, dev, geom.MirrorX())

	got, err := d.InstancePort(inst, "up")
	if err != nil {
		t.Fatal(err)
	}
	if !got.Position.AlmostEqual(geom.Pt(0, -3), 1e-12) || !near(got.Angle, 3*math.Pi/2) {
		t.Errorf("mirrored port = %v @ %g", got.Position, got.Angle)
	}
}

func TestGlobalPort(t *testing.T) {
	d := NewDesign()
	leaf := mustCell(t, d, "leaf")
	mid := mustCell(t, d, "mid")
	top := mustCell(t, d, "top")
	_ = d.AddPort(leaf, Port{Name: "o", Position: geom.Pt(1, 0), Angle: 0, Width: 0.5, Layer: wg})
	_ = d.AddPort(top, Port{Name: "pad", Position: geom.Pt(-5, -5), Angle: math.Pi, Width: 0.5, Layer: wg})

	i1 := mustInstance(t, d, mid, leaf, geom.NewTransform(10, 0, math.Pi/2, false))
	i2 := mustInstance(t, d, top, mid, geom.NewTransform(0, 100, math.Pi/2, false))

	got, err := d.GlobalPort(top, []InstanceID{i2, i1}, "o")
	if err != nil {
		t.Fatalf("GlobalPort: %v", err)
	}
	// leaf (1,0) → mid (10,1) → top (-1,110); facing rotated twice.
	if !got.Position.AlmostEqual(geom.Pt(-1, 110), 1e-9) {
		t.Errorf("Position = %v, want (-1, 110)", got.Position)
	}
	if !near(got.Angle, math.Pi) {
		t.Errorf("Angle = %g, want π", got.Angle)
	}

	// Sequential InstancePort resolution agrees.
	inMid, _ := d.InstancePort(i1, "o")
	manual := inMid.Transform(geom.NewTransform(0, 100, math.Pi/2, false))
	if !manual.Position.AlmostEqual(got.Position, 1e-9) {
		t.Errorf("chained %v != manual %v", got.Position, manual.Position)
	}

	own, err := d.GlobalPort(top, nil, "pad")
	if err != nil || own.Position != geom.Pt(-5, -5) {
		t.Errorf("scope's own port = %v, %v", own, err)
	}

	if _, err := d.GlobalPort(top, []InstanceID{i1}, "o"); !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("broken chain: got %v, want INVALID_INPUT", err)
	}
	if _, err := d.GlobalPort(top, []InstanceID{i2, i1}, "zzz"); !errors.Is(err, errors.ErrCodeNotFound) {
		t.Errorf("missing port: got %v, want NOT_FOUND", err)
	}
}

func TestPortMagnification(t *testing.T) {
	p := Port{Name: "p", Position: geom.Pt(1, 0), Width: 0.5}
	got := p.Transform(geom.Transform{Magnification: 2})
	if got.Width != 1 || got.Position != geom.Pt(2, 0) {
		t.Errorf("magnified port = %+v", got)
	}
}
