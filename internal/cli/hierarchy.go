package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/matzehuels/photonlayout/pkg/pipeline"
)

type hierarchyOpts struct {
	commonOpts
	output     string
	format     string
	detailed   bool
	skipRoutes bool
	refresh    bool
}

func (c *CLI) hierarchyCommand() *cobra.Command {
	var opts hierarchyOpts

	cmd := &cobra.Command{
		Use:     "hierarchy [design.json]",
		Aliases: []string{"tree"},
		Short:   "Draw the cell hierarchy of a design",
		Long: `Hierarchy draws one box per cell and one arrow per parent/child pair,
labelled with the instance count. DOT goes to stdout unless --output is
given; other formats need --output.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runHierarchy(cmd.Context(), args[0], opts)
		},
	}

	opts.register(cmd)
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file; the format follows the extension unless --format is set")
	cmd.Flags().StringVarP(&opts.format, "format", "f", "", "dot, svg, png or pdf")
	cmd.Flags().BoolVar(&opts.detailed, "detailed", false, "list layers and ports in each cell")
	cmd.Flags().BoolVar(&opts.skipRoutes, "skip-routes", false, "leave out routed waveguide cells")
	cmd.Flags().BoolVar(&opts.refresh, "refresh", false, "ignore a cached diagram")

	return cmd
}

func (c *CLI) runHierarchy(ctx context.Context, input string, opts hierarchyOpts) error {
	format := opts.format
	if format == "" {
		format = pipeline.FormatDOT
		if opts.output != "" {
			f, err := formatOf(opts.output)
			if err != nil {
				return err
			}
			format = f
		}
	}
	if format != pipeline.FormatDOT && opts.output == "" {
		return fmt.Errorf("%s output needs --output", format)
	}

	doc, err := readDocument(input)
	if err != nil {
		return err
	}
	top, err := resolveTop(doc, opts.top)
	if err != nil {
		return err
	}
	runner, err := c.newRunner(opts.commonOpts)
	if err != nil {
		return err
	}
	defer runner.Close()

	result, err := runner.Execute(ctx, doc, pipeline.Options{
		Top:        top,
		SkipRoutes: opts.skipRoutes,
		Diagram:    format,
		Detailed:   opts.detailed,
		Refresh:    opts.refresh,
	})
	if err != nil {
		return explain(err)
	}

	if opts.output == "" {
		_, err := os.Stdout.Write(result.Diagram)
		return err
	}
	if err := os.WriteFile(opts.output, result.Diagram, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", opts.output, err)
	}
	printSuccess("Drew %s", StyleValue.Render(displayName(doc, input)))
	printStats(result.Stats, &result.CacheInfo.DiagramHit)
	printFile(opts.output)
	return nil
}
