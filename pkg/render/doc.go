// Package render draws designs.
//
// It contains two renderers and the format conversion they share:
//
//   - [hierarchy] draws the cell hierarchy as a Graphviz diagram: one box
//     per cell, one arrow per parent/child pair labelled with the number of
//     instances.
//   - [preview] draws a flattened layout as SVG, one colour per layer.
//
// [ToPDF] and [ToPNG] convert the SVG of either renderer with the external
// rsvg-convert tool (from librsvg):
//
//	dot := hierarchy.ToDOT(design, top, hierarchy.Options{})
//	svg, err := hierarchy.RenderSVG(ctx, dot)
//	png, err := render.ToPNG(svg, 2.0)
//
// [hierarchy]: github.com/matzehuels/photonlayout/pkg/render/hierarchy
// [preview]: github.com/matzehuels/photonlayout/pkg/render/preview
package render
