package io

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/matzehuels/photonlayout/pkg/config"
	"github.com/matzehuels/photonlayout/pkg/errors"
	"github.com/matzehuels/photonlayout/pkg/flatten"
	"github.com/matzehuels/photonlayout/pkg/geom"
	"github.com/matzehuels/photonlayout/pkg/layout"
)

// LayoutDoc is the exported form of a flattened layout.
type LayoutDoc struct {
	Name      string     `json:"name,omitempty"`
	Unit      float64    `json:"unit"`      // metres per design unit
	Precision float64    `json:"precision"` // metres per database unit
	Layers    []LayerDoc `json:"layers"`
}

// LayerDoc holds the polygons of one layer.
type LayerDoc struct {
	Name     string         `json:"name,omitempty"`
	Number   int            `json:"number"`
	Datatype int            `json:"datatype"`
	Polygons [][][2]float64 `json:"polygons"`
}

// NewLayoutDoc converts l, naming layers from cfg's table. Layers come
// out in (number, datatype) order and polygons in the layout's canonical
// order, so equal layouts encode to equal bytes.
func NewLayoutDoc(name string, l *flatten.Layout, cfg config.Session) *LayoutDoc {
	doc := &LayoutDoc{Name: name, Unit: cfg.Unit, Precision: cfg.Precision, Layers: []LayerDoc{}}
	for _, k := range l.Layers() {
		ld := LayerDoc{Name: cfg.LayerName(k), Number: k.Number, Datatype: k.Datatype}
		for _, p := range l.Polygons[k] {
			pts := make([][2]float64, len(p))
			for i, v := range p {
				pts[i] = [2]float64{v.X, v.Y}
			}
			ld.Polygons = append(ld.Polygons, pts)
		}
		doc.Layers = append(doc.Layers, ld)
	}
	return doc
}

// Layout converts the document back to a flattened layout.
func (d *LayoutDoc) Layout() *flatten.Layout {
	l := &flatten.Layout{Polygons: make(map[layout.Layer][]geom.Polygon, len(d.Layers))}
	for _, ld := range d.Layers {
		k := layout.Layer{Number: ld.Number, Datatype: ld.Datatype}
		for _, pts := range ld.Polygons {
			p := make(geom.Polygon, len(pts))
			for i, v := range pts {
				p[i] = geom.Pt(v[0], v[1])
			}
			l.Polygons[k] = append(l.Polygons[k], p)
		}
	}
	return l
}

// WriteLayout encodes a flattened layout as JSON.
func WriteLayout(w io.Writer, name string, l *flatten.Layout, cfg config.Session) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(NewLayoutDoc(name, l, cfg)); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}

// ExportLayout writes a flattened layout to path.
func ExportLayout(path, name string, l *flatten.Layout, cfg config.Session) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()
	return WriteLayout(f, name, l, cfg)
}

// ReadLayout decodes an exported layout.
func ReadLayout(r io.Reader) (*LayoutDoc, error) {
	var doc LayoutDoc
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "decode layout")
	}
	return &doc, nil
}
