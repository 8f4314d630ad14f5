package pipeline

import (
	"context"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/photonlayout/pkg/cache"
	"github.com/matzehuels/photonlayout/pkg/config"
	"github.com/matzehuels/photonlayout/pkg/errors"
	pkgio "github.com/matzehuels/photonlayout/pkg/io"
	"github.com/matzehuels/photonlayout/pkg/layout"
	"github.com/matzehuels/photonlayout/pkg/session"
)

// Runner executes the pipeline with caching. It keeps no per-run state, so
// one Runner may serve concurrent runs.
type Runner struct {
	Config config.Session
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger
}

// NewRunner creates a runner. A nil keyer falls back to DefaultKeyer, a
// nil cache disables caching and a nil logger uses log.Default().
func NewRunner(cfg config.Session, c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{Config: cfg, Cache: c, Keyer: keyer, Logger: logger}
}

// Execute runs build → flatten → render.
func (r *Runner) Execute(ctx context.Context, doc *pkgio.Document, opts Options) (*Result, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	hash, err := cache.HashJSON(doc)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "hash document")
	}
	result := &Result{DesignHash: hash, Artifacts: make(map[string][]byte)}

	buildStart := time.Now()
	s, built, err := r.Build(ctx, doc, opts)
	if err != nil {
		return nil, err
	}
	result.Session, result.Built = s, built
	result.Stats.BuildTime = time.Since(buildStart)
	result.Stats.Cells = s.Design().NumCells()
	result.Stats.Instances = s.Design().NumInstances()
	result.Stats.Waveguides = len(built.Waveguides)

	flattenStart := time.Now()
	l, err := s.Export(ctx, built.Top)
	if err != nil {
		return nil, err
	}
	result.Layout = l
	result.Stats.FlattenTime = time.Since(flattenStart)
	result.Stats.Polygons = l.Count()

	r.Logger.Info("built design",
		"name", doc.Name,
		"top", s.Design().CellName(built.Top),
		"cells", result.Stats.Cells,
		"waveguides", result.Stats.Waveguides,
		"polygons", result.Stats.Polygons,
		"duration", result.Stats.BuildTime+result.Stats.FlattenTime)

	renderStart := time.Now()
	for _, format := range opts.Formats {
		data, err := renderLayout(doc.Name, l, s.Config, format, opts.Scale)
		if err != nil {
			return nil, err
		}
		result.Artifacts[format] = data
	}
	if opts.Diagram != "" {
		data, hit, err := r.DiagramWithCacheInfo(ctx, hash, s.Design(), built.Top, opts)
		if err != nil {
			return nil, err
		}
		result.Diagram = data
		result.CacheInfo.DiagramHit = hit
	}
	result.Stats.RenderTime = time.Since(renderStart)
	if len(opts.Formats) > 0 || opts.Diagram != "" {
		r.Logger.Debug("rendered outputs", "formats", opts.Formats, "diagram", opts.Diagram, "duration", result.Stats.RenderTime)
	}
	return result, nil
}

// Build replays doc into a fresh session whose router uses the runner's
// cache.
func (r *Runner) Build(ctx context.Context, doc *pkgio.Document, opts Options) (*session.Session, *pkgio.Built, error) {
	if opts.Top != "" {
		d := *doc
		d.Top = opts.Top
		doc = &d
	}
	s, err := session.New(r.Config,
		session.WithLogger(r.Logger),
		session.WithCache(r.Cache, r.Keyer))
	if err != nil {
		return nil, nil, err
	}
	built, err := pkgio.Build(ctx, s, doc, pkgio.BuildOptions{
		Parallel:   opts.Parallel,
		SkipRoutes: opts.SkipRoutes,
	})
	if err != nil {
		return nil, nil, err
	}
	return s, built, nil
}

// DiagramWithCacheInfo renders the hierarchy diagram of top, keyed by the
// hash of the document it was built from, and reports whether it came
// from the cache.
func (r *Runner) DiagramWithCacheInfo(ctx context.Context, designHash string, d *layout.Design, top layout.CellID, opts Options) ([]byte, bool, error) {
	key := r.Keyer.DiagramKey(designHash, cache.DiagramKeyOpts{
		Root:     d.CellName(top),
		Format:   opts.Diagram,
		Detailed: opts.Detailed,
	})
	if !opts.Refresh {
		if data, hit, err := r.Cache.Get(ctx, key); err == nil && hit {
			return data, true, nil
		}
	}

	data, err := renderDiagram(ctx, d, top, r.Config, opts)
	if err != nil {
		return nil, false, err
	}
	_ = r.Cache.Set(ctx, key, data, cache.TTLDiagram)
	return data, false, nil
}

// Close releases the cache.
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}
