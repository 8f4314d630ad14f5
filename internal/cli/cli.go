// Package cli implements the photonlayout command-line interface.
package cli

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/photonlayout/pkg/buildinfo"
	"github.com/matzehuels/photonlayout/pkg/cache"
	"github.com/matzehuels/photonlayout/pkg/config"
	pkgio "github.com/matzehuels/photonlayout/pkg/io"
	"github.com/matzehuels/photonlayout/pkg/pipeline"
)

// =============================================================================
// Constants
// =============================================================================

const (
	// appName is the application name used for directories and display.
	appName = "photonlayout"

	// configFile is looked up in the working directory when --config is not given.
	configFile = "photonlayout.toml"
)

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, level)}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          appName,
		Short:        "Photonlayout builds hierarchical photonic layouts",
		Long:         `Photonlayout replays design documents into hierarchical photonic layouts: cells, ports and instances, with waveguides routed between ports, flattened into per-layer polygons.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cmd.SetContext(withLogger(cmd.Context(), c.Logger))
			return nil
		},
	}

	root.SetVersionTemplate(buildinfo.Template())

	root.AddCommand(c.buildCommand())
	root.AddCommand(c.routeCommand())
	root.AddCommand(c.hierarchyCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// =============================================================================
// Runner Factory
// =============================================================================

// commonOpts are the flags shared by commands that build a document.
type commonOpts struct {
	config  string
	top     string
	noCache bool
}

func (o *commonOpts) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&o.config, "config", "c", "", "session config file (default ./"+configFile+" when present)")
	cmd.Flags().StringVar(&o.top, "top", "", "top cell (default: the document's, or the only unplaced cell)")
	cmd.Flags().BoolVar(&o.noCache, "no-cache", false, "disable the route and diagram cache")
}

// newRunner creates a pipeline runner for CLI use.
func (c *CLI) newRunner(opts commonOpts) (*pipeline.Runner, error) {
	cfg, err := loadConfig(opts.config)
	if err != nil {
		return nil, err
	}
	ch, err := newCache(opts.noCache)
	if err != nil {
		return nil, err
	}
	return pipeline.NewRunner(cfg, ch, nil, c.Logger), nil
}

func newCache(noCache bool) (cache.Cache, error) {
	if noCache {
		return cache.NewNullCache(), nil
	}
	dir, err := cacheDir()
	if err != nil {
		return cache.NewNullCache(), nil
	}
	return cache.NewFileCache(dir)
}

// loadConfig reads path, or ./photonlayout.toml when path is empty and the
// file exists, or falls back to the defaults.
func loadConfig(path string) (config.Session, error) {
	if path == "" {
		if _, err := os.Stat(configFile); err != nil {
			return config.Default(), nil
		}
		path = configFile
	}
	return config.Load(path)
}

// readDocument reads a design document from path, or stdin for "-".
func readDocument(path string) (*pkgio.Document, error) {
	if path == "-" {
		return pkgio.ReadDocument(os.Stdin)
	}
	return pkgio.ImportDocument(path)
}

// =============================================================================
// Paths
// =============================================================================

// cacheDir returns the cache directory using XDG standard (~/.cache/photonlayout/).
func cacheDir() (string, error) {
	if cacheHome := os.Getenv("XDG_CACHE_HOME"); cacheHome != "" {
		return filepath.Join(cacheHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", appName), nil
}

// outputPath derives an output file next to input: "chip.json" with
// suffix ".layout.json" becomes "chip.layout.json".
func outputPath(input, suffix string) string {
	if input == "-" || input == "" {
		return "design" + suffix
	}
	return strings.TrimSuffix(input, filepath.Ext(input)) + suffix
}

// formatOf returns the format named by path's extension.
func formatOf(path string) (string, error) {
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
	switch ext {
	case pipeline.FormatJSON, pipeline.FormatSVG, pipeline.FormatPNG, pipeline.FormatPDF, pipeline.FormatDOT:
		return ext, nil
	case "gv":
		return pipeline.FormatDOT, nil
	}
	return "", fmt.Errorf("cannot tell the output format of %q (use .json, .svg, .png, .pdf or .dot)", path)
}

// isTerminal reports whether f is attached to a terminal.
func isTerminal(f *os.File) bool {
	fi, err := f.Stat()
	return err == nil && fi.Mode()&os.ModeCharDevice != 0
}
