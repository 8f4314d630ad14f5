package route

import (
	"math"

	"github.com/matzehuels/photonlayout/pkg/geom"
)

// heading is a compass direction in eighth turns counter-clockwise from
// east: 0 east, 2 north, 4 west, 6 south. Four-heading routing uses the
// even values only.
type heading uint8

const numHeadings = 8

// angleTol is how far a port facing may be from a compass direction and
// still count as on it.
const angleTol = 1e-6

var steps = [numHeadings][2]int32{
	{1, 0}, {1, 1}, {0, 1}, {-1, 1}, {-1, 0}, {-1, -1}, {0, -1}, {1, -1},
}

func (h heading) step() (di, dj int32) { return steps[h][0], steps[h][1] }
func (h heading) diagonal() bool      { return h%2 == 1 }
func (h heading) angle() float64      { return float64(h) * math.Pi / 4 }
func (h heading) unit() geom.Point    { return geom.Direction(h.angle()) }

// turn returns the heading d eighth turns counter-clockwise from h.
func (h heading) turn(d int) heading {
	return heading(((int(h)+d)%numHeadings + numHeadings) % numHeadings)
}

// headingFor returns the compass heading matching angle, if it is one of
// the n routing headings.
func headingFor(angle float64, n int) (heading, bool) {
	a := geom.NormalizeAngle(angle)
	k := math.Round(a / (math.Pi / 4))
	if math.Abs(a-k*math.Pi/4) > angleTol {
		return 0, false
	}
	h := heading(int(k) % numHeadings)
	if n == 4 && h.diagonal() {
		return 0, false
	}
	return h, true
}

// turnBetween returns the signed number of eighth turns taking a onto b,
// in [-3, 4].
func turnBetween(a, b heading) int {
	d := (int(b) - int(a) + numHeadings) % numHeadings
	if d > 4 {
		d -= numHeadings
	}
	return d
}

// allowedTurns lists the signed turns the search may take: quarter turns,
// plus eighth turns with 8 headings.
func allowedTurns(n int) []int {
	if n == 8 {
		return []int{1, -1, 2, -2}
	}
	return []int{2, -2}
}

func abs(d int) int {
	if d < 0 {
		return -d
	}
	return d
}
