// Package route finds obstacle-avoiding waveguide paths between two ports.
//
// # Search
//
// [Search] runs A* over a square lattice anchored at the source port. A
// search state is a lattice node plus the current heading, the straight
// distance travelled since the last bend and the angle class of that bend.
// Headings are the 4 axis directions or, optionally, all 8 compass
// directions.
//
// A bend of angle Δ with radius R needs R·tan(Δ/2) of straight waveguide
// before and after its vertex. The search only turns when the current run
// covers both the previous bend's tangent and the new one, so every path it
// returns converts into a polygon with [geom.PathToPolygon]: the search can
// fail, but it never yields a path that cannot be drawn.
//
// Edge cost is the step length plus a fixed penalty per bend; the heuristic
// is the straight-line distance to the target. Ties in the frontier are
// broken on the heuristic and then on insertion order, so identical inputs
// always give identical outputs.
//
// # Clearance
//
// Every step and every bend arc must keep width/2 + spacing away from all
// obstacles. The first and last stretch of that length next to each port is
// exempt, since the cell owning the port usually touches it.
//
// # Targets off the lattice
//
// The target position rarely falls on the lattice. The last leg is built
// analytically instead: either a straight run along the arrival heading from
// a node in line with the target, or one final bend onto the target's
// approach line.
package route
