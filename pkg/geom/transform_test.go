package geom

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// sampleTransforms covers every combination of mirror, quarter and
// arbitrary rotation, and magnification.
var sampleTransforms = []Transform{
	Identity(),
	Translate(3, -7),
	Rotate(math.Pi / 2),
	Rotate(0.3),
	MirrorX(),
	NewTransform(10, 5, math.Pi, true),
	NewTransform(-2.5, 4, 1.1, true),
	{Offset: Pt(1, 2), Rotation: 2.2, Magnification: 2},
	{Offset: Pt(-4, 0.5), Rotation: 5.1, Mirror: true, Magnification: 0.5},
}

var samplePoints = []Point{{0, 0}, {1, 0}, {0, 1}, {3.5, -2.25}, {-10, 42}}

func assertPointNear(t *testing.T, want, got Point, msg string) {
	t.Helper()
	assert.InDelta(t, want.X, got.X, 1e-9, "%s: x", msg)
	assert.InDelta(t, want.Y, got.Y, 1e-9, "%s: y", msg)
}

func TestComposeMatchesSequentialApplication(t *testing.T) {
	for _, outer := range sampleTransforms {
		for _, inner := range sampleTransforms {
			c := Compose(outer, inner)
			for _, p := range samplePoints {
				assertPointNear(t, outer.Apply(inner.Apply(p)), c.Apply(p), "compose")
			}
		}
	}
}

func TestComposeAssociative(t *testing.T) {
	a, b, c := sampleTransforms[5], sampleTransforms[7], sampleTransforms[8]
	left := Compose(Compose(a, b), c)
	right := Compose(a, Compose(b, c))
	assert.True(t, left.AlmostEqual(right, 1e-9), "%s != %s", left, right)
}

func TestInvert(t *testing.T) {
	for _, tr := range sampleTransforms {
		inv := tr.Invert()
		assert.True(t, Compose(tr, inv).IsIdentity(1e-9), "t·t⁻¹ for %s = %s", tr, Compose(tr, inv))
		assert.True(t, Compose(inv, tr).IsIdentity(1e-9), "t⁻¹·t for %s = %s", tr, Compose(inv, tr))
		for _, p := range samplePoints {
			assertPointNear(t, p, inv.Apply(tr.Apply(p)), "round trip")
		}
	}
}

func TestQuarterTurnsAreExact(t *testing.T) {
	tests := []struct {
		theta float64
		want  Point
	}{
		{0, Pt(1, 0)},
		{math.Pi / 2, Pt(0, 1)},
		{math.Pi, Pt(-1, 0)},
		{3 * math.Pi / 2, Pt(0, -1)},
		{-math.Pi / 2, Pt(0, -1)},
	}
	for _, tt := range tests {
		got := Rotate(tt.theta).Apply(Pt(1, 0))
		assert.Equal(t, tt.want.X, got.X, "theta=%g", tt.theta)
		assert.Equal(t, tt.want.Y, got.Y, "theta=%g", tt.theta)
	}
}

func TestMirror(t *testing.T) {
	m := MirrorX()
	assert.Equal(t, Pt(2, -3), m.Apply(Pt(2, 3)))
	assert.InDelta(t, NormalizeAngle(-0.4), m.ApplyAngle(0.4), 1e-12)

	// Mirroring twice is the identity.
	assert.True(t, Compose(m, m).IsIdentity(0))
}

func TestApplyAngle(t *testing.T) {
	tr := NewTransform(0, 0, math.Pi/2, false)
	assert.InDelta(t, math.Pi, tr.ApplyAngle(math.Pi/2), 1e-12)

	mr := NewTransform(0, 0, math.Pi/2, true)
	// East mirrored stays east, then rotates to north.
	assert.InDelta(t, math.Pi/2, mr.ApplyAngle(0), 1e-12)
	// North mirrored becomes south, then rotates to east.
	assert.InDelta(t, 0, mr.ApplyAngle(math.Pi/2), 1e-12)
}

func TestTransformValidate(t *testing.T) {
	require.NoError(t, Identity().Validate())
	assert.Error(t, Transform{Magnification: -1}.Validate())
	assert.Error(t, Transform{Magnification: math.NaN()}.Validate())
	assert.Error(t, Transform{Offset: Pt(math.Inf(1), 0)}.Validate())
}

func TestNormalizeAngle(t *testing.T) {
	assert.InDelta(t, 0, NormalizeAngle(2*math.Pi), 1e-12)
	assert.InDelta(t, 3*math.Pi/2, NormalizeAngle(-math.Pi/2), 1e-12)
	assert.InDelta(t, math.Pi/4, NormalizeAngle(9*math.Pi/4), 1e-12)
}

func TestAngleDiff(t *testing.T) {
	assert.InDelta(t, math.Pi/2, AngleDiff(0, math.Pi/2), 1e-12)
	assert.InDelta(t, -math.Pi/2, AngleDiff(0, 3*math.Pi/2), 1e-12)
	assert.InDelta(t, 0.2, AngleDiff(2*math.Pi-0.1, 0.1), 1e-12)
	assert.InDelta(t, math.Pi, AngleDiff(0, math.Pi), 1e-12)
}

func TestDegreesRoundTrip(t *testing.T) {
	assert.InDelta(t, math.Pi/2, Radians(90), 1e-15)
	assert.InDelta(t, 270, ToDegrees(Radians(270)), 1e-12)
}
