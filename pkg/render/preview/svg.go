// Package preview draws a flattened layout as SVG.
//
// Layers are drawn in sorted order, each as one group of translucent
// filled paths, so overlapping layers stay visible. The y axis points up as
// in the design.
package preview

import (
	"bytes"
	"fmt"
	"html"
	"strconv"

	"github.com/matzehuels/photonlayout/pkg/flatten"
	"github.com/matzehuels/photonlayout/pkg/geom"
	"github.com/matzehuels/photonlayout/pkg/layout"
)

var palette = []string{
	"#1f77b4", "#ff7f0e", "#2ca02c", "#d62728",
	"#9467bd", "#8c564b", "#e377c2", "#17becf",
}

type Option func(*renderer)

type renderer struct {
	scale     float64
	margin    float64
	layerName func(layout.Layer) string
}

// WithScale sets the number of SVG pixels per design unit.
func WithScale(px float64) Option { return func(r *renderer) { r.scale = px } }

// WithMargin sets the blank border around the geometry, in design units.
func WithMargin(m float64) Option { return func(r *renderer) { r.margin = m } }

// WithLayerNames titles each layer group.
func WithLayerNames(f func(layout.Layer) string) Option {
	return func(r *renderer) { r.layerName = f }
}

func RenderSVG(l *flatten.Layout, opts ...Option) []byte {
	r := renderer{scale: 4, margin: 5}
	for _, opt := range opts {
		opt(&r)
	}

	b, ok := l.Bounds()
	if !ok {
		b = geom.BoundsOf([]geom.Point{{}})
	}
	b = b.Inflate(r.margin)
	w, h := b.Dx(), b.Dy()

	var buf bytes.Buffer
	fmt.Fprintf(&buf, `<svg xmlns="http://www.w3.org/2000/svg" viewBox="%s %s %s %s" width="%.0f" height="%.0f">`+"\n",
		num(b.Min.X), num(-b.Max.Y), num(w), num(h), w*r.scale, h*r.scale)
	buf.WriteString(`  <g transform="scale(1,-1)" stroke-width="0">` + "\n")
	for i, layer := range l.Layers() {
		fmt.Fprintf(&buf, `    <g id="layer-%d-%d" fill="%s" fill-opacity="0.6">`+"\n",
			layer.Number, layer.Datatype, palette[i%len(palette)])
		if r.layerName != nil {
			if name := r.layerName(layer); name != "" {
				fmt.Fprintf(&buf, "      <title>%s</title>\n", html.EscapeString(name))
			}
		}
		for _, p := range l.Polygons[layer] {
			buf.WriteString(`      <path d="`)
			writePath(&buf, p)
			buf.WriteString("\"/>\n")
		}
		buf.WriteString("    </g>\n")
	}
	buf.WriteString("  </g>\n")
	buf.WriteString("</svg>\n")
	return buf.Bytes()
}

func writePath(buf *bytes.Buffer, p geom.Polygon) {
	for i, v := range p {
		if i == 0 {
			buf.WriteString("M")
		} else {
			buf.WriteString(" L")
		}
		buf.WriteString(num(v.X))
		buf.WriteByte(' ')
		buf.WriteString(num(v.Y))
	}
	buf.WriteString(" Z")
}

// num prints coordinates compactly without losing nanometre detail.
func num(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
