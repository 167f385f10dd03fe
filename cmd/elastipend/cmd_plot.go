package main

import (
	"fmt"
	"os"

	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"

	"github.com/san-kum/elastipend/internal/export"
	"github.com/san-kum/elastipend/internal/physics"
	"github.com/san-kum/elastipend/internal/viz"
)

func newPlotCmd() *cobra.Command {
	f := &modelFlags{}
	var (
		width, height int
		svgPath       string
	)
	cmd := &cobra.Command{
		Use:   "plot",
		Short: "integrate and preview the motion in the terminal",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, traj, err := simulate(cmd, f)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			sol, tr := traj.Solution, traj.Trace

			series := []struct {
				caption string
				data    []float64
			}{
				{"bob 2 x(t)", tr.X2},
				{"bob 2 y(t)", tr.Y2},
				{"spring a(t)", sol.Column(physics.IdxA)},
				{"spring b(t)", sol.Column(physics.IdxB)},
			}
			for _, s := range series {
				if len(s.data) < 2 {
					continue
				}
				graph := asciigraph.Plot(s.data,
					asciigraph.Height(height),
					asciigraph.Width(width),
					asciigraph.Caption(s.caption),
				)
				fmt.Fprintln(out, graph)
				fmt.Fprintln(out)
			}

			fmt.Fprintln(out, viz.Bob2Style.Render(viz.PathPreview(tr, width/2, height)))

			if svgPath != "" {
				fh, err := os.Create(svgPath)
				if err != nil {
					return err
				}
				if err := export.WriteSVG(fh, tr, 800, 800); err != nil {
					fh.Close()
					return err
				}
				if err := fh.Close(); err != nil {
					return err
				}
				fmt.Fprintf(out, "wrote %s\n", svgPath)
			}
			return nil
		},
	}
	f.register(cmd.Flags())
	cmd.Flags().IntVar(&width, "width", 80, "plot width in characters")
	cmd.Flags().IntVar(&height, "height", 10, "plot height in rows")
	cmd.Flags().StringVar(&svgPath, "svg", "", "also write both bob paths to this SVG file")
	return cmd
}
