package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os/signal"
	"strconv"
	"syscall"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/ekaya-inc/sqlbridge/pkg/bridge"
)

var (
	queryParams []string
	queryJSON   bool
)

var queryCmd = &cobra.Command{
	Use:   "query \"SQL\"",
	Short: "Run a single query against the configured database",
	Long: `Run a single query against the configured database and print the result.

Placeholders in the SQL are written as ? and bound positionally from
--param flags, which are coerced to numbers and booleans where they
parse as such:

  sqlbridge query "SELECT * FROM users WHERE id = ? AND active = ?" -p 42 -p true`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		params := make([]any, len(queryParams))
		for i, raw := range queryParams {
			params[i] = parseParam(raw)
		}

		d, err := bridge.New(loaded.Bridge(), bridge.WithLogger(rootLog))
		if err != nil {
			return err
		}
		defer func() { _ = d.Release(context.Background()) }()

		rs, err := d.Query(ctx, args[0], params)
		if err != nil {
			return err
		}

		if queryJSON {
			return printJSON(cmd.OutOrStdout(), rs)
		}
		return printTable(cmd.OutOrStdout(), rs)
	},
}

// parseParam coerces a --param string into the narrowest value it parses
// as, so numeric and boolean literals reach the query formatter as numbers
// and booleans rather than quoted strings.
func parseParam(raw string) any {
	if n, err := strconv.ParseInt(raw, 10, 64); err == nil {
		return n
	}
	if f, err := strconv.ParseFloat(raw, 64); err == nil {
		return f
	}
	if raw == "true" || raw == "false" {
		return raw == "true"
	}
	return raw
}

func printJSON(out io.Writer, rs *bridge.RowSet) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(rs)
}

func printTable(out io.Writer, rs *bridge.RowSet) error {
	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	for i, col := range rs.Columns {
		if i > 0 {
			fmt.Fprint(w, "\t")
		}
		fmt.Fprint(w, col.Name)
	}
	fmt.Fprintln(w)

	for _, row := range rs.Rows {
		for i, col := range rs.Columns {
			if i > 0 {
				fmt.Fprint(w, "\t")
			}
			fmt.Fprintf(w, "%v", row[col.Name])
		}
		fmt.Fprintln(w)
	}
	if err := w.Flush(); err != nil {
		return err
	}

	fmt.Fprintf(out, "(%d rows)\n", rs.RowCount)
	return nil
}

func init() {
	queryCmd.Flags().StringArrayVarP(&queryParams, "param", "p", nil, "positional query parameter, repeatable")
	queryCmd.Flags().BoolVar(&queryJSON, "json", false, "print the result as JSON instead of a table")
	rootCmd.AddCommand(queryCmd)
}
