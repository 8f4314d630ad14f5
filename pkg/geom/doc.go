// Package geom is the geometry kernel: pure, stateless 2D math for layout.
//
// # Points and Transforms
//
// [Point] doubles as position and vector. A [Transform] places a local frame
// in its parent frame: it mirrors across the x-axis (optional), magnifies,
// rotates and finally translates:
//
//	apply(T, p) = mag · rotate(mirror(p), θ) + offset
//
// [Compose] folds two transforms into one; the composition is associative
// (to floating-point precision) but not commutative, so deep instance chains
// can be collapsed in any grouping:
//
//	world := geom.Compose(parent, child)
//	p := world.Apply(local)
//
// Rotations by whole quarter turns use exact sine and cosine values, which
// keeps orthogonal hierarchies free of accumulated drift.
//
// # Paths
//
// [PathToPolygon] converts a waveguide centre polyline into a closed outline.
// Every interior vertex is replaced by a circular arc of the requested bend
// radius, tangent to both neighbouring segments. Arcs are discretised with an
// angular step derived from the radius and a deviation tolerance, so the
// chord error stays below the tolerance for every radius:
//
//	step = 2 · acos(1 − tol / r)
//
// A segment shorter than the tangent lengths of the bends at its two ends is
// rejected with a GEOMETRY error rather than producing a self-overlapping
// outline.
//
// # Clearance
//
// [SegmentPolygonDistance] and [PolygonDistance] support the router's
// obstacle tests; [Bounds] provides the cheap broad phase.
package geom
