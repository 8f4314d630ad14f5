package cli

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/photonlayout/pkg/errors"
	pkgio "github.com/matzehuels/photonlayout/pkg/io"
	"github.com/matzehuels/photonlayout/pkg/pipeline"
)

// buildOpts holds the flags of the build command.
type buildOpts struct {
	commonOpts
	output     string  // flattened layout (.json) or preview (.svg/.png/.pdf)
	preview    string  // additional preview file
	save       string  // routed design document
	parallel   bool    // route consecutive same-scope connections concurrently
	skipRoutes bool    // hierarchy only
	scale      float64 // preview pixels per design unit
}

func (c *CLI) buildCommand() *cobra.Command {
	var opts buildOpts

	cmd := &cobra.Command{
		Use:   "build [design.json]",
		Short: "Build a design document into a flattened layout",
		Long: `Build replays a design document: it creates the cells, places the
instances, routes every waveguide and flattens the top cell into a
per-layer polygon export.

Use "-" to read the document from stdin.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runBuild(cmd.Context(), args[0], opts)
		},
	}

	opts.register(cmd)
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "layout output file (default <design>.layout.json)")
	cmd.Flags().StringVar(&opts.preview, "preview", "", "also write a preview image (.svg, .png or .pdf)")
	cmd.Flags().StringVar(&opts.save, "save", "", "write the routed design as a document that replays without routing")
	cmd.Flags().BoolVar(&opts.parallel, "parallel", false, "route each run of consecutive same-scope connections concurrently against one snapshot")
	cmd.Flags().BoolVar(&opts.skipRoutes, "skip-routes", false, "build the hierarchy without routing")
	cmd.Flags().Float64Var(&opts.scale, "scale", pipeline.DefaultScale, "preview pixels per design unit")

	return cmd
}

func (c *CLI) runBuild(ctx context.Context, input string, opts buildOpts) error {
	logger := loggerFromContext(ctx)

	doc, err := readDocument(input)
	if err != nil {
		return err
	}
	top, err := resolveTop(doc, opts.top)
	if err != nil {
		return err
	}

	if opts.output == "" {
		opts.output = outputPath(input, ".layout.json")
	}
	outFormat, err := formatOf(opts.output)
	if err != nil {
		return err
	}
	if outFormat == pipeline.FormatDOT {
		return fmt.Errorf("use the hierarchy command for DOT output")
	}
	formats := []string{outFormat}
	var previewFormat string
	if opts.preview != "" {
		if previewFormat, err = formatOf(opts.preview); err != nil {
			return err
		}
		if previewFormat == pipeline.FormatJSON || previewFormat == pipeline.FormatDOT {
			return fmt.Errorf("--preview must be .svg, .png or .pdf")
		}
		if previewFormat != outFormat {
			formats = append(formats, previewFormat)
		}
	}

	runner, err := c.newRunner(opts.commonOpts)
	if err != nil {
		return err
	}
	defer runner.Close()

	spinner := newSpinnerWithContext(ctx, "Building "+input+"...")
	spinner.Start()
	prog := newProgress(logger)
	result, err := runner.Execute(ctx, doc, pipeline.Options{
		Top:        top,
		Parallel:   opts.parallel,
		SkipRoutes: opts.skipRoutes,
		Formats:    formats,
		Scale:      opts.scale,
	})
	if err != nil {
		spinner.StopWithError("Build failed")
		return explain(err)
	}
	spinner.Stop()
	prog.done(fmt.Sprintf("Built %s", result.Session.Design().CellName(result.Built.Top)))

	printSuccess("Built %s", StyleValue.Render(displayName(doc, input)))
	printStats(result.Stats, nil)

	if err := os.WriteFile(opts.output, result.Artifacts[outFormat], 0o644); err != nil {
		return fmt.Errorf("write %s: %w", opts.output, err)
	}
	printFile(opts.output)

	if opts.preview != "" {
		if err := os.WriteFile(opts.preview, result.Artifacts[previewFormat], 0o644); err != nil {
			return fmt.Errorf("write %s: %w", opts.preview, err)
		}
		printFile(opts.preview)
	}

	if opts.save != "" {
		saved := pkgio.FromDesign(result.Session.Design(), result.Built.Top, result.Session.Config)
		saved.Name = doc.Name
		if err := pkgio.ExportDocument(saved, opts.save); err != nil {
			return err
		}
		printFile(opts.save)
	}
	return nil
}

// interactive reports whether the user can answer a prompt.
var interactive = func() bool {
	return isTerminal(os.Stdin) && isTerminal(os.Stdout)
}

// resolveTop returns the top cell to build: the flag, else the document's,
// else the only unplaced cell. With several candidates on a terminal it
// asks; otherwise it fails listing them.
func resolveTop(doc *pkgio.Document, flag string) (string, error) {
	if flag != "" || doc.Top != "" {
		return flag, nil
	}
	choices := topChoices(doc)
	if len(choices) <= 1 {
		return "", nil
	}
	if !interactive() {
		names := make([]string, len(choices))
		for i, ch := range choices {
			names[i] = ch.Name
		}
		return "", errors.New(errors.ErrCodeInvalidInput,
			"document has %d top cells (%s); pick one with --top", len(choices), strings.Join(names, ", "))
	}
	name, err := pickTop(choices)
	if err != nil {
		return "", err
	}
	if name == "" {
		return "", context.Canceled
	}
	return name, nil
}

// explain adds a hint to errors the user can act on.
func explain(err error) error {
	switch errors.GetCode(err) {
	case errors.ErrCodeRouteNotFound:
		printDetail("try a finer grid_pitch or a smaller bend_radius in the session config")
	case errors.ErrCodeIncompatiblePorts:
		printDetail("connected ports must share layer and width")
	case errors.ErrCodeInvalidFormat:
		printDetail("check the document against the format described in `go doc github.com/matzehuels/photonlayout/pkg/io`")
	}
	return err
}

func displayName(doc *pkgio.Document, input string) string {
	if doc.Name != "" {
		return doc.Name
	}
	return input
}
