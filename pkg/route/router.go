package route

import (
	"container/heap"
	"context"
	"math"
	"slices"
	"time"

	"github.com/matzehuels/photonlayout/pkg/errors"
	"github.com/matzehuels/photonlayout/pkg/geom"
	"github.com/matzehuels/photonlayout/pkg/layout"
	"github.com/matzehuels/photonlayout/pkg/observability"
)

// Request asks for a waveguide between two ports given in the frame of the
// routing scope.
type Request struct {
	Name       string      `json:"name,omitempty"`
	Source     layout.Port `json:"source"`
	Target     layout.Port `json:"target"`
	BendRadius float64     `json:"bend_radius,omitempty"` // overrides Options.BendRadius when set
	GridPitch  float64     `json:"grid_pitch,omitempty"`  // overrides Options.GridPitch when set
}

// Result is a routed waveguide.
type Result struct {
	Name       string       `json:"name,omitempty"`
	Waypoints  []geom.Point `json:"waypoints"` // source, bend vertices, target
	Polygon    geom.Polygon `json:"polygon"`
	Width      float64      `json:"width"`
	BendRadius float64      `json:"bend_radius"`
	Layer      layout.Layer `json:"layer"`
	Source     layout.Port  `json:"source"`
	Target     layout.Port  `json:"target"`
	Length     float64      `json:"length"`   // centreline length including arcs
	Expanded   int          `json:"expanded"` // search states expanded
}

// Bends returns the number of bends in the route.
func (r *Result) Bends() int { return max(0, len(r.Waypoints)-2) }

// Router routes single requests against an obstacle set.
type Router interface {
	Route(ctx context.Context, req Request, obstacles []geom.Polygon) (*Result, error)
}

// Search is the A* router. It holds only configuration and is safe for
// concurrent use.
type Search struct {
	opts Options
}

// New returns a router with the given options.
func New(opts Options) (*Search, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	return &Search{opts: opts}, nil
}

// Options returns the router configuration.
func (s *Search) Options() Options { return s.opts }

// Route finds a waveguide from req.Source to req.Target that keeps clear of
// obstacles.
//
// Ports of different width or layer, or facing off the routing headings,
// fail with INCOMPATIBLE_PORTS before any search. When no path exists
// within the search area or the node budget, the error is ROUTE_NOT_FOUND.
func (s *Search) Route(ctx context.Context, req Request, obstacles []geom.Polygon) (res *Result, err error) {
	start := time.Now()
	observability.Route().OnRouteStart(ctx, req.Name)
	expanded := 0
	defer func() {
		length := 0.0
		if res != nil {
			length = res.Length
		}
		observability.Route().OnRouteComplete(ctx, req.Name, expanded, length, time.Since(start), err)
	}()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	sr, err := s.prepare(req, obstacles)
	if err != nil {
		return nil, err
	}
	goal, err := sr.run(ctx)
	expanded = sr.expanded
	if err != nil {
		return nil, err
	}

	pts := sr.waypoints(goal)
	poly, err := geom.PathToPolygon(pts, sr.width, sr.radius, s.opts.Tolerance)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "route %q produced an undrawable path", req.Name)
	}
	c, err := geom.SmoothPath(pts, sr.radius, s.opts.Tolerance)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "route %q produced an undrawable path", req.Name)
	}
	return &Result{
		Name:       req.Name,
		Waypoints:  pts,
		Polygon:    poly,
		Width:      sr.width,
		BendRadius: sr.radius,
		Layer:      req.Source.Layer,
		Source:     req.Source,
		Target:     req.Target,
		Length:     c.Length(),
		Expanded:   sr.expanded,
	}, nil
}

// stateKey identifies a search state.
type stateKey struct {
	i, j  int32
	h     heading
	class uint8  // bend class of the last bend: 0 none, 1 eighth, 2 quarter
	run   uint16 // lattice steps since the last bend, capped
}

type node struct {
	key    stateKey
	g      float64
	parent int32 // -1 for the start state
	turned bool  // the edge into this node bends at the parent's position
	closed bool
	goal   bool
	via    geom.Point // final bend vertex of a goal reached by a bend
	hasVia bool
}

type edgeKey struct {
	i, j int32
	h    heading
}

type arcKey struct {
	i, j    int32
	in, out heading
}

// search is the state of one routing run.
type search struct {
	opts     Options
	width    float64
	radius   float64
	pitch    float64
	origin   geom.Point
	target   geom.Point
	depart   heading
	arrive   heading
	area     geom.Bounds
	obs      *obstacleIndex
	tangent  [3]float64 // straight length a bend of each class needs on both sides
	runCap   [2]uint16  // run cap for straight and diagonal headings
	turns    []int
	nodes    []node
	index    map[stateKey]int32
	open     frontier
	seq      uint64
	expanded int
	stepOK   map[edgeKey]bool
	arcOK    map[arcKey]bool
}

func (s *Search) prepare(req Request, obstacles []geom.Polygon) (*search, error) {
	src, dst := req.Source, req.Target
	if math.Abs(src.Width-dst.Width) > geom.Eps {
		return nil, errors.New(errors.ErrCodeIncompatiblePorts,
			"port %q has width %g but port %q has width %g", src.Name, src.Width, dst.Name, dst.Width)
	}
	if src.Layer != dst.Layer {
		return nil, errors.New(errors.ErrCodeIncompatiblePorts,
			"port %q is on layer %s but port %q is on layer %s", src.Name, src.Layer, dst.Name, dst.Layer)
	}
	if !(src.Width > 0) {
		return nil, errors.New(errors.ErrCodeIncompatiblePorts, "port %q has no width", src.Name)
	}
	depart, ok := headingFor(src.Angle, s.opts.Headings)
	if !ok {
		return nil, errors.New(errors.ErrCodeIncompatiblePorts,
			"port %q faces %.6g°, not one of the %d routing headings", src.Name, geom.ToDegrees(src.Angle), s.opts.Headings)
	}
	arrive, ok := headingFor(dst.Angle+math.Pi, s.opts.Headings)
	if !ok {
		return nil, errors.New(errors.ErrCodeIncompatiblePorts,
			"port %q faces %.6g°, not one of the %d routing headings", dst.Name, geom.ToDegrees(dst.Angle), s.opts.Headings)
	}
	if src.Position.AlmostEqual(dst.Position, geom.Eps) {
		return nil, errors.New(errors.ErrCodeInvalidInput, "ports %q and %q coincide", src.Name, dst.Name)
	}

	radius := s.opts.BendRadius
	if req.BendRadius > 0 {
		radius = req.BendRadius
	}
	if radius <= src.Width/2 {
		return nil, errors.New(errors.ErrCodeGeometry,
			"bend radius %g must exceed half the waveguide width %g", radius, src.Width)
	}

	pitch := s.opts.GridPitch
	if req.GridPitch != 0 {
		if !(req.GridPitch > 0) || math.IsInf(req.GridPitch, 1) {
			return nil, errors.New(errors.ErrCodeInvalidInput, "grid pitch must be positive, got %g", req.GridPitch)
		}
		pitch = req.GridPitch
	}

	margin := src.Width/2 + s.opts.Spacing
	sr := &search{
		opts:   s.opts,
		width:  src.Width,
		radius: radius,
		pitch:  pitch,
		origin: src.Position,
		target: dst.Position,
		depart: depart,
		arrive: arrive,
		obs:    newObstacleIndex(obstacles, margin, src.Position, dst.Position),
		turns:  allowedTurns(s.opts.Headings),
		index:  make(map[stateKey]int32),
		stepOK: make(map[edgeKey]bool),
		arcOK:  make(map[arcKey]bool),
	}
	sr.tangent[1] = geom.TangentLength(math.Pi/4, radius)
	sr.tangent[2] = geom.TangentLength(math.Pi/2, radius)

	// A run of 2R covers any pair of adjacent bends, so longer runs need
	// not be told apart.
	for d, l := range []float64{pitch, pitch * math.Sqrt2} {
		sr.runCap[d] = uint16(min(math.MaxUint16, math.Max(1, math.Ceil(2*radius/l))))
	}

	area := geom.BoundsOf([]geom.Point{src.Position, dst.Position})
	if ob, ok := sr.obs.bounds(); ok {
		area = area.Union(ob)
	}
	sr.area = area.Inflate(margin + 4*radius + 2*pitch)
	return sr, nil
}

func (sr *search) pos(i, j int32) geom.Point {
	return geom.Point{
		X: sr.origin.X + float64(i)*sr.pitch,
		Y: sr.origin.Y + float64(j)*sr.pitch,
	}
}

func (sr *search) stepLen(h heading) float64 {
	if h.diagonal() {
		return sr.pitch * math.Sqrt2
	}
	return sr.pitch
}

func (sr *search) cap(h heading) uint16 {
	if h.diagonal() {
		return sr.runCap[1]
	}
	return sr.runCap[0]
}

func (sr *search) run(ctx context.Context) (int32, error) {
	sr.relax(stateKey{h: sr.depart}, 0, -1, false)

	for sr.open.Len() > 0 {
		it := heap.Pop(&sr.open).(item)
		n := &sr.nodes[it.node]
		if n.closed || it.g > n.g {
			continue
		}
		n.closed = true
		if n.goal {
			return it.node, nil
		}

		sr.expanded++
		if sr.opts.MaxNodes > 0 && sr.expanded > sr.opts.MaxNodes {
			return 0, errors.New(errors.ErrCodeRouteNotFound,
				"no route from %s to %s within %d expanded nodes", sr.origin, sr.target, sr.opts.MaxNodes)
		}
		if sr.expanded%1024 == 0 {
			if err := ctx.Err(); err != nil {
				return 0, err
			}
		}
		sr.expand(it.node)
	}
	return 0, errors.New(errors.ErrCodeRouteNotFound,
		"no route from %s to %s clears the obstacles with bend radius %g", sr.origin, sr.target, sr.radius)
}

func (sr *search) expand(idx int32) {
	cur := sr.nodes[idx]
	k := cur.key
	p := sr.pos(k.i, k.j)
	runLen := float64(k.run) * sr.stepLen(k.h)

	sr.finish(idx, cur, p, runLen)

	sr.step(idx, cur, k.h, 0)
	for _, d := range sr.turns {
		class := abs(d)
		if runLen+geom.Eps < sr.tangent[k.class]+sr.tangent[class] {
			continue
		}
		out := k.h.turn(d)
		if !sr.arcFree(k.i, k.j, k.h, out) {
			continue
		}
		sr.step(idx, cur, out, class)
	}
}

// step moves one lattice step along h from cur. A non-zero class means the
// move starts with a bend of that class at cur.
func (sr *search) step(idx int32, cur node, h heading, class int) {
	k := cur.key
	di, dj := h.step()
	next := stateKey{i: k.i + di, j: k.j + dj, h: h}
	if !sr.area.ContainsPoint(sr.pos(next.i, next.j)) {
		return
	}
	if !sr.stepFree(k.i, k.j, h) {
		return
	}
	g := cur.g + sr.stepLen(h)
	if class > 0 {
		next.class = uint8(class)
		next.run = 1
		g += sr.opts.TurnPenalty
	} else {
		next.class = k.class
		next.run = min(k.run+1, sr.cap(h))
	}
	sr.relax(next, g, idx, class > 0)
}

// finish tries to close the route from cur onto the target, either
// straight along the arrival heading or through one last bend.
func (sr *search) finish(idx int32, cur node, p geom.Point, runLen float64) {
	k := cur.key
	w := sr.target.Sub(p)
	a := sr.arrive.unit()

	if k.h == sr.arrive {
		along, lateral := w.Dot(a), a.Cross(w)
		if math.Abs(lateral) > angleTol || along < -angleTol {
			return
		}
		along = math.Max(along, 0)
		if along == 0 && cur.parent < 0 {
			return
		}
		if runLen+along+geom.Eps < sr.tangent[k.class] {
			return
		}
		if along > 0 && !sr.obs.segmentClear(p, sr.target) {
			return
		}
		sr.reach(idx, cur.g+along, geom.Point{}, false)
		return
	}

	d := turnBetween(k.h, sr.arrive)
	if !slices.Contains(sr.turns, d) {
		return
	}
	dir := k.h.unit()
	den := dir.Cross(a)
	if math.Abs(den) < geom.Eps {
		return
	}
	s := w.Cross(a) / den   // distance to the final bend
	u := dir.Cross(w) / den // distance from the final bend to the target
	if s < -angleTol || u <= angleTol {
		return
	}
	s = math.Max(s, 0)
	class := abs(d)
	if runLen+s+geom.Eps < sr.tangent[k.class]+sr.tangent[class] || u+geom.Eps < sr.tangent[class] {
		return
	}
	v := p.Add(dir.Scale(s))
	if s > 0 && !sr.obs.segmentClear(p, v) {
		return
	}
	if !sr.obs.arcClear(v, k.h, sr.arrive, sr.radius, sr.opts.Tolerance) {
		return
	}
	if !sr.obs.segmentClear(v, sr.target) {
		return
	}
	sr.reach(idx, cur.g+s+u+sr.opts.TurnPenalty, v, true)
}

func (sr *search) stepFree(i, j int32, h heading) bool {
	key := edgeKey{i, j, h}
	if ok, seen := sr.stepOK[key]; seen {
		return ok
	}
	di, dj := h.step()
	ok := sr.obs.segmentClear(sr.pos(i, j), sr.pos(i+di, j+dj))
	sr.stepOK[key] = ok
	return ok
}

func (sr *search) arcFree(i, j int32, in, out heading) bool {
	key := arcKey{i, j, in, out}
	if ok, seen := sr.arcOK[key]; seen {
		return ok
	}
	ok := sr.obs.arcClear(sr.pos(i, j), in, out, sr.radius, sr.opts.Tolerance)
	sr.arcOK[key] = ok
	return ok
}

func (sr *search) relax(key stateKey, g float64, parent int32, turned bool) {
	idx, ok := sr.index[key]
	if ok {
		n := &sr.nodes[idx]
		if n.closed || g >= n.g {
			return
		}
		n.g, n.parent, n.turned = g, parent, turned
	} else {
		idx = int32(len(sr.nodes))
		sr.nodes = append(sr.nodes, node{key: key, g: g, parent: parent, turned: turned})
		sr.index[key] = idx
	}
	h := sr.pos(key.i, key.j).Dist(sr.target)
	sr.push(item{f: g + h, h: h, g: g, node: idx})
}

// reach records a complete route ending at the target.
func (sr *search) reach(parent int32, g float64, via geom.Point, hasVia bool) {
	idx := int32(len(sr.nodes))
	sr.nodes = append(sr.nodes, node{g: g, parent: parent, goal: true, via: via, hasVia: hasVia})
	sr.push(item{f: g, g: g, node: idx})
}

func (sr *search) push(it item) {
	it.seq = sr.seq
	sr.seq++
	heap.Push(&sr.open, it)
}

// waypoints walks back from a goal node and returns source, bend vertices
// and target in path order.
func (sr *search) waypoints(goal int32) []geom.Point {
	g := sr.nodes[goal]
	pts := []geom.Point{sr.target}
	if g.hasVia {
		pts = append(pts, g.via)
	}
	for idx := g.parent; idx >= 0; idx = sr.nodes[idx].parent {
		n := sr.nodes[idx]
		if n.turned {
			pk := sr.nodes[n.parent].key
			pts = append(pts, sr.pos(pk.i, pk.j))
		}
	}
	pts = append(pts, sr.origin)
	slices.Reverse(pts)
	return pts
}
