package config

import (
	"github.com/matzehuels/photonlayout/pkg/errors"
	"github.com/matzehuels/photonlayout/pkg/layout"
	"github.com/matzehuels/photonlayout/pkg/route"
)

// LayerSpec names a fabrication layer of the process.
type LayerSpec struct {
	Name     string `toml:"name" json:"name"`
	Number   int    `toml:"number" json:"number"`
	Datatype int    `toml:"datatype" json:"datatype"`
	Doc      string `toml:"doc,omitempty" json:"doc,omitempty"`
	NoExport bool   `toml:"no_export,omitempty" json:"no_export,omitempty"` // drawn but never written out
	Obstacle bool   `toml:"obstacle,omitempty" json:"obstacle,omitempty"`   // routes keep clear of it
}

// Layer returns the layout layer of the spec.
func (s LayerSpec) Layer() layout.Layer {
	return layout.Layer{Number: s.Number, Datatype: s.Datatype}
}

func validateLayers(specs []LayerSpec) error {
	names := make(map[string]bool, len(specs))
	layers := make(map[layout.Layer]string, len(specs))
	for _, s := range specs {
		if err := errors.ValidateName("layer", s.Name); err != nil {
			return errors.Wrap(errors.ErrCodeInvalidConfig, err, "layer table")
		}
		if s.Number < 0 || s.Datatype < 0 {
			return errors.New(errors.ErrCodeInvalidConfig, "layer %q has negative number or datatype", s.Name)
		}
		if names[s.Name] {
			return errors.New(errors.ErrCodeInvalidConfig, "layer %q declared twice", s.Name)
		}
		if other, ok := layers[s.Layer()]; ok {
			return errors.New(errors.ErrCodeInvalidConfig, "layers %q and %q share %s", other, s.Name, s.Layer())
		}
		names[s.Name] = true
		layers[s.Layer()] = s.Name
	}
	return nil
}

// LayerByName looks a layer up in the table.
func (c Session) LayerByName(name string) (LayerSpec, bool) {
	for _, s := range c.Layers {
		if s.Name == name {
			return s, true
		}
	}
	return LayerSpec{}, false
}

// LayerName returns the table name of l, or "" if it is not declared.
func (c Session) LayerName(l layout.Layer) string {
	for _, s := range c.Layers {
		if s.Layer() == l {
			return s.Name
		}
	}
	return ""
}

// ResolveLayer accepts a table name or a literal "number/datatype".
func (c Session) ResolveLayer(s string) (layout.Layer, error) {
	if spec, ok := c.LayerByName(s); ok {
		return spec.Layer(), nil
	}
	l, err := layout.ParseLayer(s)
	if err != nil {
		return layout.Layer{}, errors.Wrap(errors.ErrCodeInvalidInput, err, "layer %q is neither declared nor number/datatype", s)
	}
	return l, nil
}

// ObstacleFilter returns the layers routes must avoid. Without any layer
// marked as obstacle every layer counts, so the filter is nil.
func (c Session) ObstacleFilter() func(layout.Layer) bool {
	set := make(map[layout.Layer]bool)
	for _, s := range c.Layers {
		if s.Obstacle {
			set[s.Layer()] = true
		}
	}
	if len(set) == 0 {
		return nil
	}
	return func(l layout.Layer) bool { return set[l] }
}

// ExportFilter drops the layers marked no_export. Undeclared layers are
// exported.
func (c Session) ExportFilter() func(layout.Layer) bool {
	skip := make(map[layout.Layer]bool)
	for _, s := range c.Layers {
		if s.NoExport {
			skip[s.Layer()] = true
		}
	}
	if len(skip) == 0 {
		return nil
	}
	return func(l layout.Layer) bool { return !skip[l] }
}

// TraceSpec is one entry of the waveguide trace template: an outline of
// the given width drawn on Layer along every waveguide centreline, such as
// a cladding or a trench opening.
type TraceSpec struct {
	Layer string  `toml:"layer" json:"layer"`
	Width float64 `toml:"width" json:"width"`
}

// Traces resolves the trace template. Each trace needs a positive width
// and a declared or number/datatype layer, and the configured bend radius
// must exceed half of every trace width.
func (c Session) Traces() ([]route.Trace, error) {
	if len(c.Trace) == 0 {
		return nil, nil
	}
	out := make([]route.Trace, len(c.Trace))
	for i, t := range c.Trace {
		if !(t.Width > 0) {
			return nil, errors.New(errors.ErrCodeInvalidConfig, "trace %d on layer %q needs a positive width, got %g", i, t.Layer, t.Width)
		}
		l, err := c.ResolveLayer(t.Layer)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidConfig, err, "trace %d", i)
		}
		if c.Route.BendRadius <= t.Width/2 {
			return nil, errors.New(errors.ErrCodeInvalidConfig,
				"bend radius %g must exceed half the trace width %g on layer %q", c.Route.BendRadius, t.Width, t.Layer)
		}
		out[i] = route.Trace{Layer: l, Width: t.Width}
	}
	return out, nil
}
