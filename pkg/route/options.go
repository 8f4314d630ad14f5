package route

import (
	"github.com/matzehuels/photonlayout/pkg/cache"
	"github.com/matzehuels/photonlayout/pkg/errors"
	"github.com/matzehuels/photonlayout/pkg/geom"
)

// Options configures the router.
type Options struct {
	GridPitch   float64 `json:"grid_pitch" toml:"grid_pitch"`
	BendRadius  float64 `json:"bend_radius" toml:"bend_radius"`
	Spacing     float64 `json:"spacing" toml:"spacing"`           // gap kept between waveguide edge and obstacles
	TurnPenalty float64 `json:"turn_penalty" toml:"turn_penalty"` // cost added per bend
	Headings    int     `json:"headings" toml:"headings"`         // 4 or 8
	MaxNodes    int     `json:"max_nodes" toml:"max_nodes"`       // expansion budget; 0 means unlimited
	Tolerance   float64 `json:"tolerance" toml:"tolerance"`       // arc chord deviation
}

// DefaultOptions returns the router defaults.
func DefaultOptions() Options {
	return Options{
		GridPitch:   1,
		BendRadius:  10,
		Spacing:     1,
		TurnPenalty: 5,
		Headings:    4,
		MaxNodes:    500_000,
		Tolerance:   geom.DefaultTolerance,
	}
}

// Validate reports the first invalid option.
func (o Options) Validate() error {
	switch {
	case !(o.GridPitch > 0):
		return errors.New(errors.ErrCodeInvalidConfig, "grid pitch must be positive, got %g", o.GridPitch)
	case !(o.BendRadius > 0):
		return errors.New(errors.ErrCodeInvalidConfig, "bend radius must be positive, got %g", o.BendRadius)
	case o.Spacing < 0:
		return errors.New(errors.ErrCodeInvalidConfig, "spacing must not be negative, got %g", o.Spacing)
	case o.TurnPenalty < 0:
		return errors.New(errors.ErrCodeInvalidConfig, "turn penalty must not be negative, got %g", o.TurnPenalty)
	case o.Headings != 4 && o.Headings != 8:
		return errors.New(errors.ErrCodeInvalidConfig, "headings must be 4 or 8, got %d", o.Headings)
	case o.MaxNodes < 0:
		return errors.New(errors.ErrCodeInvalidConfig, "max nodes must not be negative, got %d", o.MaxNodes)
	case !(o.Tolerance > 0):
		return errors.New(errors.ErrCodeInvalidConfig, "tolerance must be positive, got %g", o.Tolerance)
	}
	return nil
}

// KeyOpts returns the options in the form used for cache keys.
func (o Options) KeyOpts() cache.RouteKeyOpts {
	return cache.RouteKeyOpts{
		GridPitch:   o.GridPitch,
		BendRadius:  o.BendRadius,
		Spacing:     o.Spacing,
		TurnPenalty: o.TurnPenalty,
		Headings:    o.Headings,
		MaxNodes:    o.MaxNodes,
		Tolerance:   o.Tolerance,
	}
}
