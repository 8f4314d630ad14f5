package pipeline

import (
	"bytes"
	"context"

	"github.com/matzehuels/photonlayout/pkg/config"
	"github.com/matzehuels/photonlayout/pkg/flatten"
	pkgio "github.com/matzehuels/photonlayout/pkg/io"
	"github.com/matzehuels/photonlayout/pkg/layout"
	"github.com/matzehuels/photonlayout/pkg/render"
	"github.com/matzehuels/photonlayout/pkg/render/hierarchy"
	"github.com/matzehuels/photonlayout/pkg/render/preview"
)

func renderLayout(name string, l *flatten.Layout, cfg config.Session, format string, scale float64) ([]byte, error) {
	if format == FormatJSON {
		var buf bytes.Buffer
		if err := pkgio.WriteLayout(&buf, name, l, cfg); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	}
	svg := preview.RenderSVG(l, preview.WithScale(scale), preview.WithLayerNames(cfg.LayerName))
	return render.Convert(svg, format, 1)
}

func renderDiagram(ctx context.Context, d *layout.Design, top layout.CellID, cfg config.Session, opts Options) ([]byte, error) {
	dot := hierarchy.ToDOT(d, top, hierarchy.Options{
		Detailed:  opts.Detailed,
		LayerName: cfg.LayerName,
	})
	if opts.Diagram == FormatDOT {
		return []byte(dot), nil
	}
	svg, err := hierarchy.RenderSVG(ctx, dot)
	if err != nil {
		return nil, err
	}
	return render.Convert(svg, opts.Diagram, 2)
}
