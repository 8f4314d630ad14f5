package layout

import (
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/matzehuels/photonlayout/pkg/errors"
)

// Layer identifies a fabrication layer by its number and datatype, the pair
// an exchange-format writer emits for every polygon.
type Layer struct {
	Number   int
	Datatype int
}

// String formats the layer as "number/datatype".
func (l Layer) String() string { return fmt.Sprintf("%d/%d", l.Number, l.Datatype) }

// Less orders layers by number, then datatype.
func (l Layer) Less(o Layer) bool {
	if l.Number != o.Number {
		return l.Number < o.Number
	}
	return l.Datatype < o.Datatype
}

// ParseLayer parses "number/datatype" or a bare "number" (datatype 0).
func ParseLayer(s string) (Layer, error) {
	num, dt, found := strings.Cut(strings.TrimSpace(s), "/")
	n, err := strconv.Atoi(num)
	if err != nil || n < 0 {
		return Layer{}, errors.New(errors.ErrCodeInvalidInput, "invalid layer %q", s)
	}
	l := Layer{Number: n}
	if found {
		d, err := strconv.Atoi(dt)
		if err != nil || d < 0 {
			return Layer{}, errors.New(errors.ErrCodeInvalidInput, "invalid layer datatype %q", s)
		}
		l.Datatype = d
	}
	return l, nil
}

// SortLayers sorts layers in place in [Layer.Less] order.
func SortLayers(layers []Layer) {
	slices.SortFunc(layers, func(a, b Layer) int {
		switch {
		case a.Less(b):
			return -1
		case b.Less(a):
			return 1
		}
		return 0
	})
}
