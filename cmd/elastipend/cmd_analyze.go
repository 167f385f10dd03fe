package main

import (
	"fmt"

	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"

	"github.com/san-kum/elastipend/internal/analysis"
	"github.com/san-kum/elastipend/internal/integrators"
	"github.com/san-kum/elastipend/internal/metrics"
	"github.com/san-kum/elastipend/internal/physics"
)

func newAnalyzeCmd() *cobra.Command {
	f := &modelFlags{}
	var (
		lyapunov bool
		lyapDt   float64
	)
	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "spectrum, energy and phase portrait of the motion",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, traj, err := simulate(cmd, f)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			sol := traj.Solution

			alpha := sol.Column(physics.IdxAlpha)
			ps := analysis.PowerSpectrum(alpha)
			if half := ps[:len(ps)/2]; len(half) >= 2 {
				graph := asciigraph.Plot(half,
					asciigraph.Height(12),
					asciigraph.Width(80),
					asciigraph.Caption("power spectrum of alpha"),
				)
				fmt.Fprintln(out, graph)
				fmt.Fprintln(out)
			}
			if freq, err := analysis.DominantFrequency(alpha, cfg.Sim.FPS); err == nil {
				fmt.Fprintf(out, "dominant frequency: %.4f Hz (period %.3f s)\n", freq, 1/freq)
			} else {
				fmt.Fprintf(out, "dominant frequency: %v\n", err)
			}

			e := metrics.Summarize(traj.Model, sol)
			fmt.Fprintf(out, "energy: initial %.6f  min %.6f  max %.6f  drift %.3e\n", e.Initial, e.Min, e.Max, e.Drift)

			if lyapunov {
				tb, err := integrators.Get("rk4")
				if err != nil {
					return err
				}
				lambda, err := analysis.LyapunovExponent(traj.Model, tb, traj.Model.InitialState(), lyapDt, cfg.Sim.TEnd, 1e-6)
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "largest lyapunov exponent: %.4f 1/s\n", lambda)
			}

			portrait, err := analysis.PhasePortrait(sol, physics.IdxAlpha, physics.IdxAlphaDot)
			if err != nil {
				return err
			}
			fmt.Fprintln(out, "\nphase portrait (alpha, alpha_dot)")
			fmt.Fprintln(out, analysis.PhasePortraitToASCII(portrait, 60, 20))

			section, err := analysis.PoincareSectionOf(sol, physics.IdxBeta, 0, physics.IdxAlpha, physics.IdxAlphaDot)
			if err != nil {
				return err
			}
			if len(section.Points) > 0 {
				fmt.Fprintf(out, "poincare section at beta=0 (%d crossings)\n", len(section.Points))
				fmt.Fprintln(out, analysis.PoincareSectionToASCII(section, 60, 20))
			}
			return nil
		},
	}
	f.register(cmd.Flags())
	cmd.Flags().BoolVar(&lyapunov, "lyapunov", false, "estimate the largest Lyapunov exponent")
	cmd.Flags().Float64Var(&lyapDt, "lyapunov-dt", 1e-3, "fixed step of the Lyapunov estimate")
	return cmd
}
