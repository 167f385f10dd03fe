package main

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/san-kum/elastipend/internal/storage"
)

func newListCmd() *cobra.Command {
	var (
		catalog string
		limit   int
	)
	cmd := &cobra.Command{
		Use:   "list",
		Short: "list catalogued runs, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cat, err := storage.Open(catalog)
			if err != nil {
				return err
			}
			defer cat.Close()

			runs, err := cat.List(cmd.Context(), limit)
			if err != nil {
				return err
			}
			if len(runs) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "no runs found")
				return nil
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tTIME\tSEED\tMETHOD\tALPHA0\tBETA0\tK1\tK2\tFRAMES\tSTATUS\tMOVIE")
			for _, r := range runs {
				status := r.Status
				if r.Stage != "" {
					status += " (" + r.Stage + ")"
				}
				fmt.Fprintf(w, "%d\t%s\t%d\t%s\t%.2f\t%.2f\t%.1f\t%.1f\t%d\t%s\t%s\n",
					r.ID,
					r.CreatedAt.Local().Format(time.DateTime),
					r.Seed,
					r.Method,
					r.Alpha0, r.Beta0,
					r.K1, r.K2,
					r.Frames,
					status,
					r.Movie,
				)
			}
			return w.Flush()
		},
	}
	cmd.Flags().StringVar(&catalog, "catalog", defaultCatalog, "run catalog database")
	cmd.Flags().IntVar(&limit, "limit", 20, "maximum runs to show (0 = all)")
	return cmd
}
