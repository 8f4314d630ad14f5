// Package pipeline runs the document → design → layout pipeline shared by
// the CLI and the HTTP API.
//
// # Stages
//
//  1. Build: replay a design document into a fresh session, routing every
//     waveguide (route results are cached).
//  2. Flatten: expand the top cell into a global-frame layout, dropping
//     layers marked no_export.
//  3. Render: encode the layout (JSON export, SVG/PDF/PNG preview) and
//     optionally draw the cell hierarchy (DOT/SVG/PDF/PNG, cached).
//
// # Usage
//
//	runner := pipeline.NewRunner(cfg, cache, nil, logger)
//	result, err := runner.Execute(ctx, doc, pipeline.Options{
//	    Formats: []string{pipeline.FormatJSON, pipeline.FormatSVG},
//	    Diagram: pipeline.FormatDOT,
//	})
//	layoutJSON := result.Artifacts[pipeline.FormatJSON]
package pipeline

import (
	"fmt"
	"time"

	"github.com/matzehuels/photonlayout/pkg/errors"
	"github.com/matzehuels/photonlayout/pkg/flatten"
	pkgio "github.com/matzehuels/photonlayout/pkg/io"
	"github.com/matzehuels/photonlayout/pkg/session"
)

// Format constants for output formats.
const (
	FormatJSON = "json" // flattened layout export
	FormatSVG  = "svg"
	FormatPNG  = "png"
	FormatPDF  = "pdf"
	FormatDOT  = "dot" // hierarchy diagram only
)

// DefaultScale is the preview resolution in pixels per design unit.
const DefaultScale = 4.0

// ValidFormats is the set of layout artifact formats.
var ValidFormats = map[string]bool{
	FormatJSON: true,
	FormatSVG:  true,
	FormatPNG:  true,
	FormatPDF:  true,
}

// ValidDiagramFormats is the set of hierarchy diagram formats.
var ValidDiagramFormats = map[string]bool{
	FormatDOT: true,
	FormatSVG: true,
	FormatPNG: true,
	FormatPDF: true,
}

// Options configures one pipeline run.
type Options struct {
	// Top overrides the document's top cell.
	Top string `json:"top,omitempty"`
	// Parallel routes each run of consecutive same-scope routes against
	// one snapshot, in document order.
	Parallel bool `json:"parallel,omitempty"`
	// SkipRoutes builds the hierarchy without routing.
	SkipRoutes bool `json:"skip_routes,omitempty"`

	// Formats lists the layout artifacts to produce.
	Formats []string `json:"formats,omitempty"`
	// Scale is the preview resolution; DefaultScale when zero.
	Scale float64 `json:"scale,omitempty"`

	// Diagram selects a hierarchy diagram format; empty for none.
	Diagram string `json:"diagram,omitempty"`
	// Detailed adds layer and port summaries to diagram labels.
	Detailed bool `json:"detailed,omitempty"`
	// Refresh bypasses the diagram cache.
	Refresh bool `json:"refresh,omitempty"`
}

// Validate checks the formats and fills in defaults.
func (o *Options) Validate() error {
	if err := ValidateFormats(o.Formats); err != nil {
		return err
	}
	if o.Diagram != "" && !ValidDiagramFormats[o.Diagram] {
		return errors.New(errors.ErrCodeInvalidInput, "invalid diagram format %q (want dot, svg, png or pdf)", o.Diagram)
	}
	if o.Scale < 0 {
		return errors.New(errors.ErrCodeInvalidInput, "scale must not be negative, got %g", o.Scale)
	}
	if o.Scale == 0 {
		o.Scale = DefaultScale
	}
	return nil
}

// ValidateFormat checks a single layout artifact format.
func ValidateFormat(format string) error {
	if !ValidFormats[format] {
		return errors.New(errors.ErrCodeInvalidInput, "invalid format %q (want json, svg, png or pdf)", format)
	}
	return nil
}

// ValidateFormats checks every format in formats.
func ValidateFormats(formats []string) error {
	for _, f := range formats {
		if err := ValidateFormat(f); err != nil {
			return err
		}
	}
	return nil
}

// Result holds everything a run produced.
type Result struct {
	Session    *session.Session
	Built      *pkgio.Built
	Layout     *flatten.Layout
	Artifacts  map[string][]byte // keyed by format
	Diagram    []byte
	DesignHash string // content hash of the input document

	Stats     Stats
	CacheInfo CacheInfo
}

// Stats summarizes a run.
type Stats struct {
	Cells      int
	Instances  int
	Waveguides int
	Polygons   int

	BuildTime   time.Duration
	FlattenTime time.Duration
	RenderTime  time.Duration
}

// CacheInfo reports which stages were served from the cache.
type CacheInfo struct {
	DiagramHit bool
}

// String formats the stats on one line.
func (s Stats) String() string {
	return fmt.Sprintf("%d cells, %d instances, %d waveguides, %d polygons", s.Cells, s.Instances, s.Waveguides, s.Polygons)
}
