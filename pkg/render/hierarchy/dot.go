// Package hierarchy draws the instance hierarchy of a design with Graphviz.
//
// Each cell reachable from the root becomes a box; each parent/child pair
// becomes one arrow, labelled with the instance count when a parent places
// the same cell more than once.
//
//	dot := hierarchy.ToDOT(d, top, hierarchy.Options{Detailed: true})
//	svg, err := hierarchy.RenderSVG(ctx, dot)
package hierarchy

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/photonlayout/pkg/layout"
)

// Options configures hierarchy diagrams.
type Options struct {
	// Detailed adds the per-layer polygon counts and port names of each cell
	// to its label. When false, only the cell name is shown.
	Detailed bool
	// LayerName names layers in detailed labels. Layers print as
	// "number/datatype" when nil or when it returns "".
	LayerName func(layout.Layer) string
}

type edge struct{ from, to layout.CellID }

// ToDOT converts the hierarchy below root to Graphviz DOT. Cells appear in
// breadth-first order so the output is stable for a given design.
func ToDOT(d *layout.Design, root layout.CellID, opts Options) string {
	cells, edges, counts := walk(d, root)

	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	buf.WriteString("  rankdir=TB;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, fontsize=24, margin=\"0.2,0.1\"];\n")
	buf.WriteString("  ranksep=0.5;\n")
	buf.WriteString("  nodesep=0.3;\n")
	buf.WriteString("\n")

	for _, c := range cells {
		attrs := []string{fmt.Sprintf("label=%q", fmtLabel(d, c, opts))}
		if c == root {
			attrs = append(attrs, "penwidth=3")
		}
		if len(d.ChildrenOf(c)) == 0 {
			attrs = append(attrs, "fillcolor=\"#eef5ff\"")
		}
		fmt.Fprintf(&buf, "  %q [%s];\n", d.CellName(c), strings.Join(attrs, ", "))
	}

	buf.WriteString("\n")
	for _, e := range edges {
		from, to := d.CellName(e.from), d.CellName(e.to)
		if n := counts[e]; n > 1 {
			fmt.Fprintf(&buf, "  %q -> %q [label=\"×%d\"];\n", from, to, n)
			continue
		}
		fmt.Fprintf(&buf, "  %q -> %q;\n", from, to)
	}

	buf.WriteString("}\n")
	return buf.String()
}

func walk(d *layout.Design, root layout.CellID) ([]layout.CellID, []edge, map[edge]int) {
	cells := []layout.CellID{root}
	seen := map[layout.CellID]bool{root: true}
	counts := make(map[edge]int)
	var edges []edge
	for i := 0; i < len(cells); i++ {
		for _, iid := range d.ChildrenOf(cells[i]) {
			in, err := d.Instance(iid)
			if err != nil {
				continue
			}
			e := edge{cells[i], in.Cell}
			if counts[e] == 0 {
				edges = append(edges, e)
			}
			counts[e]++
			if !seen[in.Cell] {
				seen[in.Cell] = true
				cells = append(cells, in.Cell)
			}
		}
	}
	return cells, edges, counts
}

func fmtLabel(d *layout.Design, c layout.CellID, opts Options) string {
	name := d.CellName(c)
	if !opts.Detailed {
		return name
	}

	var parts []string
	for _, l := range d.Layers(c) {
		parts = append(parts, fmt.Sprintf("%s: %d", layerName(l, opts), len(d.PolygonsOf(c, l))))
	}
	if ports := d.Ports(c); len(ports) > 0 {
		names := make([]string, len(ports))
		for i, p := range ports {
			names[i] = p.Name
		}
		parts = append(parts, "ports: "+strings.Join(names, ", "))
	}
	if len(parts) == 0 {
		return name
	}
	return name + "\n" + strings.Join(parts, "\n")
}

func layerName(l layout.Layer, opts Options) string {
	if opts.LayerName != nil {
		if s := opts.LayerName(l); s != "" {
			return s
		}
	}
	return l.String()
}

// RenderSVG renders a DOT graph to SVG using Graphviz.
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return normalizeViewBox(buf.Bytes()), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

// normalizeViewBox replaces Graphviz's point-sized root element with one
// whose viewBox starts at the origin.
func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}

	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}

	root := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`,
		w, h, w, h)
	return svgTagRe.ReplaceAll(svg, []byte(root))
}
