package main

import (
	"fmt"
	"os"
	"os/signal"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/piwi3910/SlabGen/internal/engine"
	"github.com/piwi3910/SlabGen/internal/model"
)

func newCompareCmd(c *cli) *cobra.Command {
	var (
		rf requestFlags
		sf settingsFlags
	)
	cmd := &cobra.Command{
		Use:   "compare",
		Short: "Dry-run thickness and padding variations of a request",
		Long: `Runs the request and a few variations of it (double and half thickness,
extra padding, no LLL reduction) without writing files and prints the
number of terminations and the slab sizes of each.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			settings := model.DefaultSettings()
			cfg.ApplyToSettings(&settings)
			sf.apply(cmd.Flags(), &settings)
			if !cmd.Flags().Changed("padding") {
				rf.padding = cfg.DefaultPadding
			}

			req, err := rf.request(cmd.Flags(), nil)
			if err != nil {
				return err
			}
			cellPath := sf.cell
			if cellPath == "" {
				cellPath = cfg.UnitCellPath
			}
			cell, _, err := loadCell(cellPath)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(commandContext(cmd), os.Interrupt)
			defer stop()

			scenarios := engine.BuildDefaultScenarios(req, settings)
			results := engine.CompareScenarios(ctx, cell, scenarios, engine.WithLogger(c.log()))

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(tw, "SCENARIO\tTHICKNESS\tPADDING\tTERMINATIONS\tATOMS\tSLAB (A)\tCELL C (A)")
			for _, r := range results {
				sr := r.Scenario.Request
				if r.Err != nil {
					fmt.Fprintf(tw, "%s\t%g\t%g\terror: %v\t\t\t\n", r.Scenario.Name, sr.Thickness, sr.Padding, r.Err)
					continue
				}
				atoms := fmt.Sprintf("%d", r.MinAtoms)
				if r.MaxAtoms != r.MinAtoms {
					atoms = fmt.Sprintf("%d-%d", r.MinAtoms, r.MaxAtoms)
				}
				fmt.Fprintf(tw, "%s\t%g\t%g\t%d\t%s\t%.2f\t%.2f\n",
					r.Scenario.Name, sr.Thickness, sr.Padding, r.Terminations, atoms, r.MaxThickness, r.CellHeight)
			}
			return tw.Flush()
		},
	}

	rf.register(cmd.Flags())
	sf.register(cmd.Flags())
	return cmd
}
