package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/TFMV/refugeeflow/models"
	"github.com/TFMV/refugeeflow/render"
	"github.com/TFMV/refugeeflow/view"
)

type queryFlags struct {
	kind      string
	year      int
	direction string
	selection []string
	format    string
}

func newQueryCmd(a *app) *cobra.Command {
	var f queryFlags

	cmd := &cobra.Command{
		Use:   "query",
		Short: "Compute one chart and write it to stdout",
		Example: `  refugeeflow query --od dest.csv --kind bar --year 2015 --direction inbound
  refugeeflow query --od dest.csv --kind node-link --year 2015 --select Germany --format ascii`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			kind, ok := models.ParseChartKind(f.kind)
			if !ok {
				return fmt.Errorf("%w: %q (want one of %v)", view.ErrUnknownChartKind, f.kind, models.ChartKinds())
			}
			renderer, err := render.GetRenderer(f.format)
			if err != nil {
				return fmt.Errorf("%w (want one of %s)", err, strings.Join(render.Formats(), ", "))
			}
			direction, ok := models.ParseDirection(f.direction)
			if !ok {
				direction = models.Direction(f.direction)
			}

			sel, err := a.selector(cmd.Context())
			if err != nil {
				return err
			}
			chart, err := sel.Select(cmd.Context(), view.Request{
				Kind:      kind,
				Year:      f.year,
				Direction: direction,
				Selection: f.selection,
			})
			if err != nil {
				return err
			}

			opts := render.NewDefaultOptions(f.format)
			opts.Width = a.cfg.Layout.Width
			opts.Height = a.cfg.Layout.Height
			out, err := renderer.Render(chart, opts)
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(out)
			return err
		},
	}

	cmd.Flags().StringVar(&f.kind, "kind", string(models.Bar), "chart kind (bar, sankey, node-link)")
	cmd.Flags().IntVar(&f.year, "year", models.MaxYear, "year to show")
	cmd.Flags().StringVar(&f.direction, "direction", string(models.Inbound), "inbound or outbound")
	cmd.Flags().StringArrayVar(&f.selection, "select", nil, "restrict to a location (repeatable)")
	cmd.Flags().StringVar(&f.format, "format", "json", "output format (json, svg, dot, ascii)")
	cmd.Flags().Int("max-iterations", 500, "layout iteration cap")
	return cmd
}
