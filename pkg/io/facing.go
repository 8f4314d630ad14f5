package io

import (
	"encoding/json"
	"math"
	"strings"

	"github.com/matzehuels/photonlayout/pkg/errors"
	"github.com/matzehuels/photonlayout/pkg/geom"
)

var compass = map[string]float64{
	"e": 0, "ne": 45, "n": 90, "nw": 135,
	"w": 180, "sw": 225, "s": 270, "se": 315,
	"east": 0, "north": 90, "west": 180, "south": 270,
}

var compassNames = [8]string{"e", "ne", "n", "nw", "w", "sw", "s", "se"}

// Facing is a port direction in radians. In JSON it is a compass letter
// or a number of degrees.
type Facing float64

// UnmarshalJSON accepts "e", "north", 90 and so on.
func (f *Facing) UnmarshalJSON(data []byte) error {
	var name string
	if err := json.Unmarshal(data, &name); err == nil {
		deg, ok := compass[strings.ToLower(name)]
		if !ok {
			return errors.New(errors.ErrCodeInvalidFormat, "unknown facing %q", name)
		}
		*f = Facing(geom.Radians(deg))
		return nil
	}
	var deg float64
	if err := json.Unmarshal(data, &deg); err != nil {
		return errors.New(errors.ErrCodeInvalidFormat, "facing must be a compass direction or degrees, got %s", data)
	}
	*f = Facing(geom.Radians(deg))
	return nil
}

// MarshalJSON writes eighth turns as compass letters and anything else as
// degrees.
func (f Facing) MarshalJSON() ([]byte, error) {
	deg := geom.ToDegrees(geom.NormalizeAngle(float64(f)))
	k := math.Round(deg / 45)
	if math.Abs(deg-k*45) < 1e-9 {
		return json.Marshal(compassNames[int(k)%8])
	}
	return json.Marshal(deg)
}
