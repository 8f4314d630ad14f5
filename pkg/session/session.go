// Package session is the scripting surface of photonlayout.
//
// A Session owns one design and the configuration every operation runs
// under. Scripts build cells, place instances and ask for waveguides
// between ports; the session resolves the ports through the hierarchy,
// snapshots the obstacles of the routing scope, runs the router and
// commits each result as a two-port waveguide cell placed in the scope.
//
//	s, err := session.New(config.Default(), session.WithLogger(logger))
//	if err != nil {
//	    return err
//	}
//	top, _ := s.CreateCell("top")
//	...
//	wg, err := s.Route(ctx, top, session.Connection{
//	    From: session.PortRef{Chain: []layout.InstanceID{mmi}, Port: "o2"},
//	    To:   session.PortRef{Chain: []layout.InstanceID{ring}, Port: "in"},
//	})
//
// A session is not safe for concurrent mutation. [Session.RouteAll]
// parallelises the searches internally and commits serially.
package session

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/matzehuels/photonlayout/pkg/cache"
	"github.com/matzehuels/photonlayout/pkg/config"
	"github.com/matzehuels/photonlayout/pkg/errors"
	"github.com/matzehuels/photonlayout/pkg/flatten"
	"github.com/matzehuels/photonlayout/pkg/geom"
	"github.com/matzehuels/photonlayout/pkg/layout"
	"github.com/matzehuels/photonlayout/pkg/observability"
	"github.com/matzehuels/photonlayout/pkg/route"
)

// Session is a design under construction plus its configuration.
type Session struct {
	ID     uuid.UUID
	Config config.Session
	Logger *log.Logger

	design *layout.Design
	router route.Router
	wgSeq  int
}

// Option customises a session.
type Option func(*sessionOptions)

type sessionOptions struct {
	logger *log.Logger
	design *layout.Design
	cache  cache.Cache
	keyer  cache.Keyer
	router route.Router
}

// WithLogger sets the logger. Without it the session logs to
// log.Default().
func WithLogger(l *log.Logger) Option {
	return func(o *sessionOptions) { o.logger = l }
}

// WithDesign continues work on an existing design.
func WithDesign(d *layout.Design) Option {
	return func(o *sessionOptions) { o.design = d }
}

// WithCache memoises routing results in c. A nil keyer uses the default.
func WithCache(c cache.Cache, k cache.Keyer) Option {
	return func(o *sessionOptions) { o.cache, o.keyer = c, k }
}

// WithRouter replaces the router built from the configuration.
func WithRouter(r route.Router) Option {
	return func(o *sessionOptions) { o.router = r }
}

// New validates cfg and starts a session.
func New(cfg config.Session, opts ...Option) (*Session, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	var o sessionOptions
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = log.Default()
	}
	if o.design == nil {
		o.design = layout.NewDesign()
	}
	if o.router == nil {
		search, err := route.New(cfg.Route)
		if err != nil {
			return nil, err
		}
		o.router = search
		if o.cache != nil {
			o.router = route.NewCachedRouter(search, cfg.Route, o.cache, o.keyer)
		}
	}
	return &Session{
		ID:     uuid.New(),
		Config: cfg,
		Logger: o.logger,
		design: o.design,
		router: o.router,
	}, nil
}

// Design returns the session's design for read-only queries.
func (s *Session) Design() *layout.Design { return s.design }

// CreateCell adds an empty cell.
func (s *Session) CreateCell(name string) (layout.CellID, error) {
	return s.design.CreateCell(name)
}

// AddPolygon adds a polygon to a cell.
func (s *Session) AddPolygon(cell layout.CellID, layer layout.Layer, p geom.Polygon) error {
	return s.design.AddPolygon(cell, layer, p)
}

// AddPort adds a port to a cell.
func (s *Session) AddPort(cell layout.CellID, p layout.Port) error {
	return s.design.AddPort(cell, p)
}

// AddInstance places ref inside parent. The name may be empty.
func (s *Session) AddInstance(parent, ref layout.CellID, t geom.Transform, name string) (layout.InstanceID, error) {
	return s.design.AddNamedInstance(parent, ref, t, name)
}

// Obstacles returns the flattened geometry of scope on the configured
// obstacle layers, in scope's frame.
func (s *Session) Obstacles(scope layout.CellID) ([]geom.Polygon, error) {
	return flatten.Obstacles(s.design, scope, flatten.Options{
		MaxDepth: s.Config.MaxDepth,
		Filter:   s.Config.ObstacleFilter(),
	})
}

// Flatten expands root into the global frame.
func (s *Session) Flatten(ctx context.Context, root layout.CellID) (*flatten.Layout, error) {
	return s.flatten(ctx, root, flatten.Options{MaxDepth: s.Config.MaxDepth})
}

// Export flattens root keeping only the layers marked for export.
func (s *Session) Export(ctx context.Context, root layout.CellID) (*flatten.Layout, error) {
	return s.flatten(ctx, root, flatten.Options{
		MaxDepth: s.Config.MaxDepth,
		Filter:   s.Config.ExportFilter(),
	})
}

func (s *Session) flatten(ctx context.Context, root layout.CellID, opts flatten.Options) (l *flatten.Layout, err error) {
	name := s.design.CellName(root)
	start := time.Now()
	observability.Flatten().OnFlattenStart(ctx, name)
	defer func() {
		n := 0
		if l != nil {
			n = l.Count()
		}
		observability.Flatten().OnFlattenComplete(ctx, name, n, time.Since(start), err)
	}()

	l, err = flatten.Flatten(s.design, root, geom.Identity(), opts)
	if err != nil {
		return nil, err
	}
	s.Logger.Debug("flattened", "cell", name, "layers", len(l.Polygons), "polygons", l.Count(), "duration", time.Since(start))
	return l, nil
}

// nameFree reports whether a waveguide may use name: no cell has it and
// no instance in scope carries it.
func (s *Session) nameFree(scope layout.CellID, name string) bool {
	if _, exists := s.design.CellByName(name); exists {
		return false
	}
	_, err := s.design.InstanceByName(scope, name)
	return err != nil
}

// nextWaveguideName returns an unused name for an unnamed waveguide.
func (s *Session) nextWaveguideName(scope layout.CellID, taken map[string]bool) string {
	for {
		s.wgSeq++
		name := fmt.Sprintf("wg%d", s.wgSeq)
		if !taken[name] && s.nameFree(scope, name) {
			return name
		}
	}
}

func (s *Session) scopeName(scope layout.CellID) (string, error) {
	name := s.design.CellName(scope)
	if name == "" {
		return "", errors.New(errors.ErrCodeNotFound, "unknown scope cell %d", scope)
	}
	return name, nil
}
