package main

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/piwi3910/SlabGen/internal/engine"
)

func newFamiliesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "families",
		Short: "Print the supported Miller index families",
		Long: `Lists the four plane families of the rhombohedral setting and the
orthorhombic index each member is translated to.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(tw, "FAMILY\tORTHORHOMBIC\tMEMBERS")
			for _, f := range engine.Families() {
				members := make([]string, 0, len(f.Members()))
				for _, m := range f.Members() {
					members = append(members, m.String())
				}
				fmt.Fprintf(tw, "%s\t%s\t%s\n", f, f.Orthorhombic(), strings.Join(members, " "))
			}
			return tw.Flush()
		},
	}
}
