package main

import (
	"github.com/spf13/cobra"

	"github.com/san-kum/elastipend/internal/storage"
)

func newExportCmd() *cobra.Command {
	f := &modelFlags{}
	var asJSON bool
	cmd := &cobra.Command{
		Use:     "export-csv",
		Aliases: []string{"export"},
		Short:   "integrate and write the trajectory to stdout",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, traj, err := simulate(cmd, f)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if asJSON {
				return storage.WriteTrajectoryJSON(out, traj.Model.GetParams(), cfg.Sim.FPS, traj.Solution, traj.Trace)
			}
			return storage.WriteTrajectoryCSV(out, traj.Solution, traj.Trace)
		},
	}
	f.register(cmd.Flags())
	cmd.Flags().BoolVar(&asJSON, "json", false, "write JSON instead of CSV")
	return cmd
}
