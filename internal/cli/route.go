package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/photonlayout/pkg/errors"
	pkgio "github.com/matzehuels/photonlayout/pkg/io"
	"github.com/matzehuels/photonlayout/pkg/pipeline"
	"github.com/matzehuels/photonlayout/pkg/session"
)

type routeOpts struct {
	commonOpts
	scope  string
	from   string
	to     string
	name   string
	radius float64
	pitch  float64
	output string
}

func (c *CLI) routeCommand() *cobra.Command {
	var opts routeOpts

	cmd := &cobra.Command{
		Use:   "route [design.json]",
		Short: "Route one more waveguide in a design",
		Long: `Route builds the design, then connects two ports inside a scope cell and
reports the result. Ports are named by instance path, e.g. "mzi.arm1.out".

With --output the design, including the new waveguide, is written back as
a document.`,
		Example: `  photonlayout route chip.json --scope top --from a.out --to b.in
  photonlayout route chip.json --scope top --from a.out --to b.in --radius 20 -o chip.routed.json
  photonlayout route chip.json --from a.out --to b.in --pitch 0.25`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runRoute(cmd.Context(), args[0], opts)
		},
	}

	opts.register(cmd)
	cmd.Flags().StringVar(&opts.scope, "scope", "", "cell to route in (default: the top cell)")
	cmd.Flags().StringVar(&opts.from, "from", "", "source port path")
	cmd.Flags().StringVar(&opts.to, "to", "", "target port path")
	cmd.Flags().StringVar(&opts.name, "name", "", "waveguide cell name (default wg<N>)")
	cmd.Flags().Float64Var(&opts.radius, "radius", 0, "bend radius for this waveguide (default from config)")
	cmd.Flags().Float64Var(&opts.pitch, "pitch", 0, "grid pitch for this search (default from config)")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "write the updated design document")
	cmd.MarkFlagRequired("from")
	cmd.MarkFlagRequired("to")

	return cmd
}

func (c *CLI) runRoute(ctx context.Context, input string, opts routeOpts) error {
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

	s, built, err := runner.Build(ctx, doc, pipeline.Options{Top: top})
	if err != nil {
		return explain(err)
	}

	scope := built.Top
	if opts.scope != "" {
		id, ok := built.Cells[opts.scope]
		if !ok {
			return errors.New(errors.ErrCodeNotFound, "scope cell %q is not defined", opts.scope)
		}
		scope = id
	}
	from, err := pkgio.ResolvePortPath(s.Design(), scope, opts.from)
	if err != nil {
		return err
	}
	to, err := pkgio.ResolvePortPath(s.Design(), scope, opts.to)
	if err != nil {
		return err
	}

	spinner := newSpinnerWithContext(ctx, fmt.Sprintf("Routing %s → %s...", opts.from, opts.to))
	spinner.Start()
	wg, err := s.Route(ctx, scope, session.Connection{
		Name:       opts.name,
		From:       from,
		To:         to,
		BendRadius: opts.radius,
		GridPitch:  opts.pitch,
	})
	if err != nil {
		spinner.StopWithError("No route")
		return explain(err)
	}
	spinner.Stop()

	printSuccess("Routed %s", StyleValue.Render(wg.Name))
	printKeyValue("scope", s.Design().CellName(scope))
	printKeyValue("length", fmt.Sprintf("%.3f", wg.Length))
	printKeyValue("bends", fmt.Sprint(wg.Bends()))
	printKeyValue("waypoints", fmt.Sprint(len(wg.Waypoints)))
	printKeyValue("expanded", StyleNumber.Render(fmt.Sprint(wg.Expanded)))

	if opts.output != "" {
		updated := pkgio.FromDesign(s.Design(), built.Top, s.Config)
		updated.Name = doc.Name
		if err := pkgio.ExportDocument(updated, opts.output); err != nil {
			return err
		}
		printFile(opts.output)
	}
	return nil
}
