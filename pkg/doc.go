// Package pkg provides the core libraries for photonlayout, a hierarchical
// photonic layout builder.
//
// # Overview
//
// A design is a set of cells. Each cell holds polygons on layers, ports
// where light enters or leaves, and instances of other cells placed with a
// rigid transform. Waveguides between ports are found by a grid A* search,
// smoothed with circular bends and committed back into the hierarchy as
// cells of their own. Flattening a top cell yields the per-layer polygon
// export.
//
// # Architecture
//
// The typical data flow through photonlayout:
//
//	Design document (JSON) + session config (TOML)
//	         ↓
//	    [io] package (replay cells, instances and routes)
//	         ↓
//	    [session] package (design + router + cache)
//	         ↓
//	    [route] package (A* search, bends, waveguide cells)
//	         ↓
//	    [flatten] package (per-layer polygons)
//	         ↓
//	    JSON/SVG/PNG/PDF output
//
// # Quick Start
//
// Build a design programmatically and route one waveguide:
//
//	import (
//	    "context"
//	    "math"
//	    "github.com/matzehuels/photonlayout/pkg/config"
//	    "github.com/matzehuels/photonlayout/pkg/geom"
//	    "github.com/matzehuels/photonlayout/pkg/layout"
//	    "github.com/matzehuels/photonlayout/pkg/session"
//	)
//
//	// 1. Open a session
//	s, _ := session.New(config.Default())
//
//	// 2. Create cells and place them
//	mmi, _ := s.CreateCell("mmi")
//	core := layout.Layer{Number: 1}
//	s.AddPolygon(mmi, core, geom.Rect(0, -2, 10, 2))
//	s.AddPort(mmi, layout.Port{Name: "in", Angle: math.Pi, Width: 0.5, Layer: core})
//	s.AddPort(mmi, layout.Port{Name: "out", Position: geom.Point{X: 10}, Width: 0.5, Layer: core})
//	top, _ := s.CreateCell("top")
//	a, _ := s.AddInstance(top, mmi, geom.Identity(), "a")
//	b, _ := s.AddInstance(top, mmi, geom.Translate(100, 40), "b")
//
//	// 3. Route between ports
//	wg, _ := s.Route(ctx, top, session.Connection{
//	    From: session.PortRef{Chain: []layout.InstanceID{a}, Port: "out"},
//	    To:   session.PortRef{Chain: []layout.InstanceID{b}, Port: "in"},
//	})
//
//	// 4. Flatten for export
//	l, _ := s.Export(ctx, top)
//
// # Main Packages
//
// ## Geometry and hierarchy
//
// [geom] - Points, rigid transforms, polygons, circular-bend path
// smoothing and segment/polygon distance queries.
//
// [layout] - The cell hierarchy: cells, instances, ports and layers, with
// cycle and name checks on every mutation.
//
// [flatten] - Recursive expansion of a cell into per-layer polygons and the
// obstacle set a router sees in a scope.
//
// ## Routing
//
// [route] - Heading-aware A* on a grid with turn costs, clearance checks
// against obstacles, bend insertion and concurrent routing of independent
// requests.
//
// [session] - Ties a design to a router, a cache and a logger, and
// commits routed waveguides into the hierarchy.
//
// ## Serialization and rendering
//
// [io] - Design documents and the flattened layout export.
//
// [render/preview] - SVG preview of a flattened layout.
//
// [render/hierarchy] - Cell hierarchy diagrams using Graphviz.
//
// [render] - Format conversion (SVG to PDF/PNG).
//
// ## Infrastructure
//
// [pipeline] - Build, flatten and render used by both the CLI and the HTTP
// API.
//
// [cache] - File, Redis and null caches for routes and diagrams.
//
// [store] - File and MongoDB storage for design documents.
//
// [config] - TOML session config and environment-driven server config.
//
// [observability] - Hooks for routing, flattening, caching and HTTP.
//
// [errors] - Coded errors shared by every package.
package pkg
