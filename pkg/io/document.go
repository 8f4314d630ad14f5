package io

import (
	"encoding/json"
	"fmt"
	"io"
	"math"
	"os"

	"github.com/matzehuels/photonlayout/pkg/config"
	"github.com/matzehuels/photonlayout/pkg/errors"
	"github.com/matzehuels/photonlayout/pkg/geom"
	"github.com/matzehuels/photonlayout/pkg/layout"
)

// Document is a design document.
type Document struct {
	Name       string         `json:"name,omitempty"`
	Top        string         `json:"top,omitempty"`
	Cells      []CellDoc      `json:"cells"`
	Waveguides []WaveguideDoc `json:"waveguides,omitempty"`
	Routes     []RouteDoc     `json:"routes,omitempty"`
}

// CellDoc describes one cell.
type CellDoc struct {
	Name      string        `json:"name"`
	Polygons  []PolygonDoc  `json:"polygons,omitempty"`
	Ports     []PortDoc     `json:"ports,omitempty"`
	Instances []InstanceDoc `json:"instances,omitempty"`
}

// PolygonDoc is a polygon given by exactly one of Points, Rect or Ellipse.
type PolygonDoc struct {
	Layer   string       `json:"layer"`
	Points  [][2]float64 `json:"points,omitempty"`
	Rect    *[4]float64  `json:"rect,omitempty"`
	Ellipse *EllipseDoc  `json:"ellipse,omitempty"`
}

// EllipseDoc is an axis-aligned ellipse, discretised with the session's
// routing tolerance.
type EllipseDoc struct {
	Center [2]float64 `json:"center"`
	RX     float64    `json:"rx"`
	RY     float64    `json:"ry"`
}

// PortDoc describes a port.
type PortDoc struct {
	Name   string     `json:"name"`
	At     [2]float64 `json:"at"`
	Facing Facing     `json:"facing"`
	Width  float64    `json:"width"`
	Layer  string     `json:"layer"`
}

// InstanceDoc places a cell. Rotation is in degrees; a zero Mag means 1.
type InstanceDoc struct {
	Name     string     `json:"name,omitempty"`
	Cell     string     `json:"cell"`
	At       [2]float64 `json:"at"`
	Rotation float64    `json:"rotation,omitempty"`
	Mirror   bool       `json:"mirror,omitempty"`
	Mag      float64    `json:"mag,omitempty"`
}

// RouteDoc asks for a waveguide between two port paths inside Scope.
type RouteDoc struct {
	Name       string  `json:"name,omitempty"`
	Scope      string  `json:"scope"`
	From       string  `json:"from"`
	To         string  `json:"to"`
	BendRadius float64 `json:"bend_radius,omitempty"`
	GridPitch  float64 `json:"grid_pitch,omitempty"`
}

// WaveguideDoc draws a waveguide by hand inside Scope. Interior points
// become bends of Radius, or of the configured radius when it is zero.
type WaveguideDoc struct {
	Name   string       `json:"name,omitempty"`
	Scope  string       `json:"scope"`
	Points [][2]float64 `json:"points"`
	Width  float64      `json:"width"`
	Layer  string       `json:"layer"`
	Radius float64      `json:"radius,omitempty"`
}

// ReadDocument decodes a design document. Unknown fields are rejected so
// typos do not pass silently.
func ReadDocument(r io.Reader) (*Document, error) {
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	var doc Document
	if err := dec.Decode(&doc); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "decode design document")
	}
	return &doc, nil
}

// ImportDocument reads a design document from path.
func ImportDocument(path string) (*Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return ReadDocument(f)
}

// WriteDocument encodes doc as indented JSON.
func WriteDocument(doc *Document, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}

// ExportDocument writes doc to path.
func ExportDocument(doc *Document, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()
	return WriteDocument(doc, f)
}

// FromDesign describes every cell of d. Layers are written by their table
// name in cfg when they have one. Routed waveguides appear as ordinary
// cells, so the document replays to the same design without routing.
func FromDesign(d *layout.Design, top layout.CellID, cfg config.Session) *Document {
	doc := &Document{Top: d.CellName(top)}
	for _, id := range d.Cells() {
		c := CellDoc{Name: d.CellName(id)}
		for _, l := range d.Layers(id) {
			name := layerName(cfg, l)
			for _, p := range d.PolygonsOf(id, l) {
				pts := make([][2]float64, len(p))
				for i, v := range p {
					pts[i] = [2]float64{v.X, v.Y}
				}
				c.Polygons = append(c.Polygons, PolygonDoc{Layer: name, Points: pts})
			}
		}
		for _, p := range d.Ports(id) {
			c.Ports = append(c.Ports, PortDoc{
				Name:   p.Name,
				At:     [2]float64{p.Position.X, p.Position.Y},
				Facing: Facing(p.Angle),
				Width:  p.Width,
				Layer:  layerName(cfg, p.Layer),
			})
		}
		for _, iid := range d.ChildrenOf(id) {
			in, err := d.Instance(iid)
			if err != nil {
				continue
			}
			t := in.Transform
			inst := InstanceDoc{
				Name:     in.Name,
				Cell:     d.CellName(in.Cell),
				At:       [2]float64{t.Offset.X, t.Offset.Y},
				Rotation: degrees(t.Rotation),
				Mirror:   t.Mirror,
			}
			if t.Mag() != 1 {
				inst.Mag = t.Mag()
			}
			c.Instances = append(c.Instances, inst)
		}
		doc.Cells = append(doc.Cells, c)
	}
	return doc
}

// TopCells returns the names of the cells no other cell places, in
// document order.
func (d *Document) TopCells() []string {
	placed := make(map[string]bool)
	for _, c := range d.Cells {
		for _, in := range c.Instances {
			placed[in.Cell] = true
		}
	}
	var tops []string
	for _, c := range d.Cells {
		if !placed[c.Name] {
			tops = append(tops, c.Name)
		}
	}
	return tops
}

func layerName(cfg config.Session, l layout.Layer) string {
	if name := cfg.LayerName(l); name != "" {
		return name
	}
	return l.String()
}

// degrees converts radians, snapping values within 1e-9 of a whole degree.
func degrees(rad float64) float64 {
	d := geom.ToDegrees(rad)
	if r := math.Round(d); math.Abs(d-r) < 1e-9 {
		return r
	}
	return d
}

func (p PolygonDoc) polygon(tol float64) (geom.Polygon, error) {
	n := 0
	if p.Points != nil {
		n++
	}
	if p.Rect != nil {
		n++
	}
	if p.Ellipse != nil {
		n++
	}
	if n != 1 {
		return nil, errors.New(errors.ErrCodeInvalidFormat, "polygon needs exactly one of points, rect or ellipse")
	}
	switch {
	case p.Rect != nil:
		r := p.Rect
		return geom.Rect(r[0], r[1], r[2], r[3]), nil
	case p.Ellipse != nil:
		e := p.Ellipse
		if !(e.RX > 0) || !(e.RY > 0) {
			return nil, errors.New(errors.ErrCodeGeometry, "ellipse radii must be positive")
		}
		return geom.Ellipse(geom.Pt(e.Center[0], e.Center[1]), e.RX, e.RY, tol), nil
	}
	out := make(geom.Polygon, len(p.Points))
	for i, v := range p.Points {
		out[i] = geom.Pt(v[0], v[1])
	}
	return out, nil
}

func (i InstanceDoc) transform() geom.Transform {
	t := geom.NewTransform(i.At[0], i.At[1], geom.Radians(i.Rotation), i.Mirror)
	t.Magnification = i.Mag
	return t
}
