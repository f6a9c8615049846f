package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/ekaya-inc/sqlbridge/pkg/catalog"
)

var driversCmd = &cobra.Command{
	Use:   "drivers",
	Short: "List the database types sqlbridge can connect to",
	RunE: func(cmd *cobra.Command, args []string) error {
		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "TYPE\tDRIVER\tGATEWAY\tDESCRIPTION")
		for _, desc := range catalog.All() {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", desc.Type, desc.DriverID, desc.Gateway, desc.Description)
		}
		return w.Flush()
	},
}

func init() {
	rootCmd.AddCommand(driversCmd)
}
