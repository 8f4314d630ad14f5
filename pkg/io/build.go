package io

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/matzehuels/photonlayout/pkg/errors"
	"github.com/matzehuels/photonlayout/pkg/geom"
	"github.com/matzehuels/photonlayout/pkg/layout"
	"github.com/matzehuels/photonlayout/pkg/session"
)

// BuildOptions controls how routes are replayed.
type BuildOptions struct {
	// Parallel routes each run of consecutive routes sharing a scope
	// against one obstacle snapshot. Runs are committed in document order,
	// so a later run avoids the waveguides of earlier ones. Otherwise every
	// route sees all waveguides committed before it.
	Parallel bool
	// SkipRoutes builds the hierarchy and the hand-drawn waveguides but
	// runs no search.
	SkipRoutes bool
}

// Built is the outcome of replaying a document.
type Built struct {
	Top        layout.CellID
	Cells      map[string]layout.CellID
	Waveguides []*session.Waveguide
}

// Build replays doc into s: cells with their polygons and ports, then
// instances, then hand-drawn waveguides, then routes. It stops at the first
// failing statement; the error names the cell, port, waveguide or route it
// came from.
func Build(ctx context.Context, s *session.Session, doc *Document, opts BuildOptions) (*Built, error) {
	b := &Built{Cells: make(map[string]layout.CellID, len(doc.Cells))}
	for _, c := range doc.Cells {
		id, err := s.CreateCell(c.Name)
		if err != nil {
			return nil, err
		}
		b.Cells[c.Name] = id
	}

	tol := s.Config.Route.Tolerance
	for _, c := range doc.Cells {
		id := b.Cells[c.Name]
		for i, p := range c.Polygons {
			layer, err := s.Config.ResolveLayer(p.Layer)
			if err != nil {
				return nil, annotate(err, "cell %q polygon %d", c.Name, i)
			}
			poly, err := p.polygon(tol)
			if err != nil {
				return nil, annotate(err, "cell %q polygon %d", c.Name, i)
			}
			if err := s.AddPolygon(id, layer, poly); err != nil {
				return nil, annotate(err, "cell %q polygon %d", c.Name, i)
			}
		}
		for _, p := range c.Ports {
			layer, err := s.Config.ResolveLayer(p.Layer)
			if err != nil {
				return nil, annotate(err, "cell %q port %q", c.Name, p.Name)
			}
			err = s.AddPort(id, layout.Port{
				Name:     p.Name,
				Position: geom.Pt(p.At[0], p.At[1]),
				Angle:    float64(p.Facing),
				Width:    p.Width,
				Layer:    layer,
			})
			if err != nil {
				return nil, annotate(err, "cell %q port %q", c.Name, p.Name)
			}
		}
	}

	for _, c := range doc.Cells {
		for _, in := range c.Instances {
			ref, ok := b.Cells[in.Cell]
			if !ok {
				return nil, errors.New(errors.ErrCodeNotFound, "cell %q places unknown cell %q", c.Name, in.Cell)
			}
			if _, err := s.AddInstance(b.Cells[c.Name], ref, in.transform(), in.Name); err != nil {
				return nil, annotate(err, "cell %q instance of %q", c.Name, in.Cell)
			}
		}
	}

	top, err := b.top(s, doc.Top)
	if err != nil {
		return nil, err
	}
	b.Top = top

	for i, w := range doc.Waveguides {
		wg, err := b.draw(s, w)
		if err != nil {
			return nil, annotate(err, "waveguide %d", i)
		}
		b.Waveguides = append(b.Waveguides, wg)
	}

	if opts.SkipRoutes {
		return b, nil
	}
	if err := b.route(ctx, s, doc.Routes, opts.Parallel); err != nil {
		return nil, err
	}
	return b, nil
}

func (b *Built) top(s *session.Session, name string) (layout.CellID, error) {
	if name != "" {
		id, ok := b.Cells[name]
		if !ok {
			return 0, errors.New(errors.ErrCodeNotFound, "top cell %q is not defined", name)
		}
		return id, nil
	}
	tops := s.Design().TopCells()
	if len(tops) != 1 {
		return 0, errors.New(errors.ErrCodeInvalidInput, "document has %d top cells; name one with \"top\"", len(tops))
	}
	return tops[0], nil
}

func (b *Built) draw(s *session.Session, w WaveguideDoc) (*session.Waveguide, error) {
	scope, ok := b.Cells[w.Scope]
	if !ok {
		return nil, errors.New(errors.ErrCodeNotFound, "unknown scope %q", w.Scope)
	}
	layer, err := s.Config.ResolveLayer(w.Layer)
	if err != nil {
		return nil, err
	}
	pts := make([]geom.Point, len(w.Points))
	for i, p := range w.Points {
		pts[i] = geom.Pt(p[0], p[1])
	}
	return s.AddWaveguide(scope, w.Name, pts, w.Width, layer, w.Radius)
}

func (b *Built) route(ctx context.Context, s *session.Session, routes []RouteDoc, parallel bool) error {
	if !parallel {
		for i, r := range routes {
			scope, conn, err := b.connection(s, i, r)
			if err != nil {
				return err
			}
			wg, err := s.Route(ctx, scope, conn)
			if err != nil {
				return annotate(err, "route %d (%s -> %s)", i, r.From, r.To)
			}
			b.Waveguides = append(b.Waveguides, wg)
		}
		return nil
	}

	// A scope change ends a batch. Ports of a batch are resolved after the
	// batches before it are committed, so they may name earlier waveguides.
	for start := 0; start < len(routes); {
		end := start + 1
		for end < len(routes) && routes[end].Scope == routes[start].Scope {
			end++
		}
		var scope layout.CellID
		conns := make([]session.Connection, 0, end-start)
		for i := start; i < end; i++ {
			sc, conn, err := b.connection(s, i, routes[i])
			if err != nil {
				return err
			}
			scope = sc
			conns = append(conns, conn)
		}
		wgs, err := s.RouteAll(ctx, scope, conns)
		if err != nil {
			return annotate(err, "routes %d-%d in %q", start, end-1, routes[start].Scope)
		}
		b.Waveguides = append(b.Waveguides, wgs...)
		start = end
	}
	return nil
}

// connection resolves route i into its scope and port references.
func (b *Built) connection(s *session.Session, i int, r RouteDoc) (layout.CellID, session.Connection, error) {
	scope, ok := b.Cells[r.Scope]
	if !ok {
		return 0, session.Connection{}, errors.New(errors.ErrCodeNotFound, "route %d: unknown scope %q", i, r.Scope)
	}
	from, err := ResolvePortPath(s.Design(), scope, r.From)
	if err != nil {
		return 0, session.Connection{}, annotate(err, "route %d from", i)
	}
	to, err := ResolvePortPath(s.Design(), scope, r.To)
	if err != nil {
		return 0, session.Connection{}, annotate(err, "route %d to", i)
	}
	return scope, session.Connection{
		Name:       r.Name,
		From:       from,
		To:         to,
		BendRadius: r.BendRadius,
		GridPitch:  r.GridPitch,
	}, nil
}

// ResolvePortPath turns "inst.sub.port" into a port reference below
// scope. A bare port name refers to scope's own port.
func ResolvePortPath(d *layout.Design, scope layout.CellID, path string) (session.PortRef, error) {
	parts := strings.Split(path, ".")
	if path == "" || slices.Contains(parts, "") {
		return session.PortRef{}, errors.New(errors.ErrCodeInvalidInput, "malformed port path %q", path)
	}
	ref := session.PortRef{Port: parts[len(parts)-1]}
	cell := scope
	for _, name := range parts[:len(parts)-1] {
		id, err := d.InstanceByName(cell, name)
		if err != nil {
			return session.PortRef{}, err
		}
		in, err := d.Instance(id)
		if err != nil {
			return session.PortRef{}, err
		}
		ref.Chain = append(ref.Chain, id)
		cell = in.Cell
	}
	return ref, nil
}

// annotate adds context to err and keeps its code.
func annotate(err error, format string, args ...any) error {
	code := errors.GetCode(err)
	if code == "" {
		return fmt.Errorf(format+": %w", append(args, err)...)
	}
	return errors.Wrap(code, err, format, args...)
}
