package geom

import (
	"fmt"
	"math"

	"github.com/matzehuels/photonlayout/pkg/errors"
)

// Transform places a local frame into its parent frame.
//
// Applying a transform mirrors across the x-axis (when Mirror is set),
// scales by the magnification, rotates counter-clockwise by Rotation
// radians and translates by Offset, in that order.
//
// The zero value is the identity: a zero Magnification means 1.
type Transform struct {
	Offset        Point
	Rotation      float64 // radians, counter-clockwise
	Mirror        bool    // reflect across the x-axis before rotating
	Magnification float64 // 0 means 1
}

// Identity returns the identity transform.
func Identity() Transform { return Transform{} }

// Translate returns a pure translation.
func Translate(dx, dy float64) Transform { return Transform{Offset: Point{dx, dy}} }

// Rotate returns a rotation about the origin by theta radians.
func Rotate(theta float64) Transform { return Transform{Rotation: NormalizeAngle(theta)} }

// MirrorX returns a reflection across the x-axis.
func MirrorX() Transform { return Transform{Mirror: true} }

// NewTransform builds a transform from its components.
func NewTransform(dx, dy, theta float64, mirror bool) Transform {
	return Transform{Offset: Point{dx, dy}, Rotation: NormalizeAngle(theta), Mirror: mirror}
}

// Mag returns the effective magnification.
func (t Transform) Mag() float64 {
	if t.Magnification == 0 {
		return 1
	}
	return t.Magnification
}

// Validate rejects degenerate transforms.
func (t Transform) Validate() error {
	if t.Magnification < 0 || math.IsNaN(t.Magnification) || math.IsInf(t.Magnification, 0) {
		return errors.New(errors.ErrCodeGeometry, "degenerate transform: magnification %g", t.Magnification)
	}
	for _, v := range []float64{t.Offset.X, t.Offset.Y, t.Rotation} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return errors.New(errors.ErrCodeGeometry, "degenerate transform: non-finite component")
		}
	}
	return nil
}

// ApplyVector maps a displacement; translation is ignored.
func (t Transform) ApplyVector(v Point) Point {
	if t.Mirror {
		v.Y = -v.Y
	}
	return v.Rotate(t.Rotation).Scale(t.Mag())
}

// Apply maps a point from the local frame into the parent frame.
func (t Transform) Apply(p Point) Point {
	return t.ApplyVector(p).Add(t.Offset)
}

// ApplyAll maps every point of pts into a new slice.
func (t Transform) ApplyAll(pts []Point) []Point {
	out := make([]Point, len(pts))
	for i, p := range pts {
		out[i] = t.Apply(p)
	}
	return out
}

// ApplyAngle maps a direction angle (radians) into the parent frame.
func (t Transform) ApplyAngle(a float64) float64 {
	if t.Mirror {
		return NormalizeAngle(t.Rotation - a)
	}
	return NormalizeAngle(t.Rotation + a)
}

// Compose returns the transform equivalent to applying inner first and then
// outer, i.e. inner expressed in the frame established by outer:
//
//	Compose(outer, inner).Apply(p) == outer.Apply(inner.Apply(p))
func Compose(outer, inner Transform) Transform {
	rot := inner.Rotation
	if outer.Mirror {
		rot = -rot
	}
	out := Transform{
		Offset:   outer.Apply(inner.Offset),
		Rotation: NormalizeAngle(outer.Rotation + rot),
		Mirror:   outer.Mirror != inner.Mirror,
	}
	if m := outer.Mag() * inner.Mag(); m != 1 {
		out.Magnification = m
	}
	return out
}

// Then is the method form of Compose(t, inner).
func (t Transform) Then(inner Transform) Transform { return Compose(t, inner) }

// Invert returns the exact inverse: Compose(t, t.Invert()) is the identity.
func (t Transform) Invert() Transform {
	inv := Transform{Mirror: t.Mirror, Rotation: t.Rotation}
	if !t.Mirror {
		inv.Rotation = NormalizeAngle(-t.Rotation)
	}
	if m := t.Mag(); m != 1 {
		inv.Magnification = 1 / m
	}
	inv.Offset = inv.ApplyVector(t.Offset).Neg()
	return inv
}

// AlmostEqual compares two transforms component-wise. Rotations are compared
// on the circle so 0 and 2π-ε are equal.
func (t Transform) AlmostEqual(u Transform, tol float64) bool {
	return t.Mirror == u.Mirror &&
		t.Offset.AlmostEqual(u.Offset, tol) &&
		math.Abs(AngleDiff(t.Rotation, u.Rotation)) <= tol &&
		math.Abs(t.Mag()-u.Mag()) <= tol
}

// IsIdentity reports whether t is the identity within tol.
func (t Transform) IsIdentity(tol float64) bool {
	return t.AlmostEqual(Identity(), tol)
}

func (t Transform) String() string {
	s := fmt.Sprintf("translate%s rotate(%.6g°)", t.Offset, t.Rotation*180/math.Pi)
	if t.Mirror {
		s += " mirror"
	}
	if t.Mag() != 1 {
		s += fmt.Sprintf(" mag(%g)", t.Mag())
	}
	return s
}

// Radians converts an angle in degrees to radians.
func Radians(deg float64) float64 { return deg * math.Pi / 180 }

// ToDegrees converts an angle in radians to degrees.
func ToDegrees(rad float64) float64 { return rad * 180 / math.Pi }
