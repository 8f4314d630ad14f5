package session

import (
	"context"
	"time"

	"github.com/matzehuels/photonlayout/pkg/errors"
	"github.com/matzehuels/photonlayout/pkg/geom"
	"github.com/matzehuels/photonlayout/pkg/layout"
	"github.com/matzehuels/photonlayout/pkg/route"
)

// PortRef names a port through a chain of instances below the routing
// scope. An empty chain refers to a port of the scope cell itself.
type PortRef struct {
	Chain []layout.InstanceID
	Port  string
}

// Connection asks for one waveguide.
type Connection struct {
	Name       string // waveguide cell name; generated when empty
	From, To   PortRef
	BendRadius float64 // overrides the configured radius when positive
	GridPitch  float64 // overrides the configured grid pitch when positive
}

// Waveguide is a committed route.
type Waveguide struct {
	*route.Result
	Cell     layout.CellID
	Instance layout.InstanceID
}

// Route connects two ports inside scope and commits the waveguide. On
// failure the design is unchanged.
func (s *Session) Route(ctx context.Context, scope layout.CellID, c Connection) (*Waveguide, error) {
	wgs, err := s.RouteAll(ctx, scope, []Connection{c})
	if err != nil {
		return nil, err
	}
	return wgs[0], nil
}

// RouteAll routes independent connections in parallel against one
// obstacle snapshot of scope, then commits the waveguides in order.
// Connections therefore do not avoid each other. If any search fails
// nothing is committed.
func (s *Session) RouteAll(ctx context.Context, scope layout.CellID, conns []Connection) ([]*Waveguide, error) {
	scopeName, err := s.scopeName(scope)
	if err != nil {
		return nil, err
	}
	reqs, err := s.requests(scope, conns)
	if err != nil {
		return nil, err
	}
	traces, err := s.Config.Traces()
	if err != nil {
		return nil, err
	}
	obstacles, err := s.Obstacles(scope)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	results, err := route.RouteAll(ctx, s.router, reqs, obstacles, 0)
	if err != nil {
		s.Logger.Debug("routing failed", "scope", scopeName, "connections", len(reqs), "err", err)
		return nil, err
	}

	wgs := make([]route.Waveguide, len(results))
	for i, res := range results {
		wg, err := route.NewWaveguide(reqs[i].Name, res).WithTraces(res, traces, s.Config.Route.Tolerance)
		if err != nil {
			return nil, errors.Wrap(errors.GetCode(err), err, "waveguide %q", reqs[i].Name)
		}
		wgs[i] = wg
	}

	out := make([]*Waveguide, len(results))
	for i, res := range results {
		cell, inst, err := wgs[i].Commit(s.design, scope)
		if err != nil {
			return nil, errors.Wrap(errors.GetCode(err), err, "commit waveguide %q", reqs[i].Name)
		}
		out[i] = &Waveguide{Result: res, Cell: cell, Instance: inst}
		s.Logger.Debug("routed",
			"name", res.Name,
			"scope", scopeName,
			"bends", res.Bends(),
			"length", res.Length,
			"expanded", res.Expanded)
	}
	s.Logger.Info("routed waveguides", "scope", scopeName, "count", len(out), "obstacles", len(obstacles), "duration", time.Since(start).Round(time.Millisecond))
	return out, nil
}

// AddWaveguide draws a waveguide by hand along waypoints given in scope's
// frame and commits it the way Route commits a search result, trace
// template included. Interior waypoints become bends of radius, or of the
// configured bend radius when radius is not positive. An empty name is
// generated. Obstacles are not consulted.
//
// A path that cannot be drawn fails with GEOMETRY, a taken name with
// DUPLICATE_NAME. On failure the design is unchanged.
func (s *Session) AddWaveguide(scope layout.CellID, name string, waypoints []geom.Point, width float64, layer layout.Layer, radius float64) (*Waveguide, error) {
	scopeName, err := s.scopeName(scope)
	if err != nil {
		return nil, err
	}
	if name != "" {
		if err := errors.ValidateName("waveguide", name); err != nil {
			return nil, err
		}
		if !s.nameFree(scope, name) {
			return nil, errors.New(errors.ErrCodeDuplicateName, "waveguide name %q is already taken", name)
		}
	}
	if radius <= 0 {
		radius = s.Config.Route.BendRadius
	}
	traces, err := s.Config.Traces()
	if err != nil {
		return nil, err
	}

	tol := s.Config.Route.Tolerance
	res, err := route.FromWaypoints(name, waypoints, width, radius, layer, tol)
	if err != nil {
		return nil, err
	}
	wg, err := route.NewWaveguide(name, res).WithTraces(res, traces, tol)
	if err != nil {
		return nil, errors.Wrap(errors.GetCode(err), err, "waveguide %q", name)
	}
	if name == "" {
		name = s.nextWaveguideName(scope, nil)
		res.Name, wg.Name = name, name
	}

	cell, inst, err := wg.Commit(s.design, scope)
	if err != nil {
		return nil, errors.Wrap(errors.GetCode(err), err, "commit waveguide %q", name)
	}
	s.Logger.Debug("drew waveguide",
		"name", name,
		"scope", scopeName,
		"bends", res.Bends(),
		"length", res.Length)
	return &Waveguide{Result: res, Cell: cell, Instance: inst}, nil
}

// requests resolves every connection into scope-frame ports and assigns
// waveguide names, rejecting names that clash with existing cells or with
// each other before any search starts.
func (s *Session) requests(scope layout.CellID, conns []Connection) ([]route.Request, error) {
	taken := make(map[string]bool, len(conns))
	for _, c := range conns {
		if c.Name == "" {
			continue
		}
		if err := errors.ValidateName("waveguide", c.Name); err != nil {
			return nil, err
		}
		if taken[c.Name] || !s.nameFree(scope, c.Name) {
			return nil, errors.New(errors.ErrCodeDuplicateName, "waveguide name %q is already taken", c.Name)
		}
		taken[c.Name] = true
	}

	reqs := make([]route.Request, len(conns))
	for i, c := range conns {
		from, err := s.design.GlobalPort(scope, c.From.Chain, c.From.Port)
		if err != nil {
			return nil, err
		}
		to, err := s.design.GlobalPort(scope, c.To.Chain, c.To.Port)
		if err != nil {
			return nil, err
		}
		name := c.Name
		if name == "" {
			name = s.nextWaveguideName(scope, taken)
			taken[name] = true
		}
		reqs[i] = route.Request{Name: name, Source: from, Target: to, BendRadius: c.BendRadius, GridPitch: c.GridPitch}
	}
	return reqs, nil
}
