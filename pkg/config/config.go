// Package config holds the explicit configuration threaded through a
// session: export units, the router options, the flattening depth bound
// and the process layer table.
//
// Session configuration is read from TOML:
//
//	unit = 1e-6
//	precision = 1e-9
//
//	[route]
//	grid_pitch = 1
//	bend_radius = 10
//
//	[[layers]]
//	name = "core"
//	number = 1
//	obstacle = true
//
//	[[trace]]
//	layer = "clad"
//	width = 4
//
// Server configuration comes from PHOTONLAYOUT_* environment variables;
// see [Server].
package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/photonlayout/pkg/errors"
	"github.com/matzehuels/photonlayout/pkg/flatten"
	"github.com/matzehuels/photonlayout/pkg/route"
)

// Session configures a design session.
type Session struct {
	Unit      float64       `toml:"unit" json:"unit"`           // metres per design unit
	Precision float64       `toml:"precision" json:"precision"` // metres per database unit
	MaxDepth  int           `toml:"max_depth" json:"max_depth"`
	Route     route.Options `toml:"route" json:"route"`
	Layers    []LayerSpec   `toml:"layers" json:"layers,omitempty"`
	Trace     []TraceSpec   `toml:"trace" json:"trace,omitempty"` // outlines drawn along every waveguide besides its core
}

// Default returns the configuration used when no file is given.
func Default() Session {
	return Session{
		Unit:      1e-6,
		Precision: 1e-9,
		MaxDepth:  flatten.DefaultMaxDepth,
		Route:     route.DefaultOptions(),
	}
}

// Load reads a TOML file on top of the defaults. Keys the file sets
// replace the default; unknown keys are an error.
func Load(path string) (Session, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Session{}, errors.Wrap(errors.ErrCodeInvalidConfig, err, "read config")
	}
	cfg, err := Parse(string(data))
	if err != nil {
		return Session{}, errors.Wrap(errors.ErrCodeInvalidConfig, err, "load %s", path)
	}
	return cfg, nil
}

// Parse decodes a TOML document on top of the defaults and validates it.
func Parse(doc string) (Session, error) {
	cfg := Default()
	md, err := toml.Decode(doc, &cfg)
	if err != nil {
		return Session{}, errors.Wrap(errors.ErrCodeInvalidConfig, err, "decode config")
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return Session{}, errors.New(errors.ErrCodeInvalidConfig, "unknown keys: %s", strings.Join(keys, ", "))
	}
	if err := cfg.Validate(); err != nil {
		return Session{}, err
	}
	return cfg, nil
}

// Validate checks every field and the layer table.
func (c Session) Validate() error {
	if !(c.Unit > 0) {
		return errors.New(errors.ErrCodeInvalidConfig, "unit must be positive, got %g", c.Unit)
	}
	if !(c.Precision > 0) || c.Precision > c.Unit {
		return errors.New(errors.ErrCodeInvalidConfig, "precision must be positive and at most the unit, got %g", c.Precision)
	}
	if c.MaxDepth <= 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "max_depth must be positive, got %d", c.MaxDepth)
	}
	if err := c.Route.Validate(); err != nil {
		return err
	}
	if err := validateLayers(c.Layers); err != nil {
		return err
	}
	_, err := c.Traces()
	return err
}

// Encode writes the configuration as TOML.
func (c Session) Encode() (string, error) {
	var b strings.Builder
	if err := toml.NewEncoder(&b).Encode(c); err != nil {
		return "", fmt.Errorf("encode config: %w", err)
	}
	return b.String(), nil
}
