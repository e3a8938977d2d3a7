package cli

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/JonMunkholm/productview/internal/core"
)

func newColumnsCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "columns",
		Short: "List the dataset columns",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cols := core.Columns()

			if flags.jsonMode {
				type column struct {
					ID     core.ColumnID `json:"id"`
					Header string        `json:"header"`
					Kind   string        `json:"kind"`
				}
				out := make([]column, len(cols))
				for i, c := range cols {
					out[i] = column{ID: c.ID, Header: c.Header, Kind: c.Kind.String()}
				}
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(out)
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tHEADER\tKIND")
			for _, c := range cols {
				fmt.Fprintf(tw, "%s\t%s\t%s\n", c.ID, c.Header, c.Kind)
			}
			return tw.Flush()
		},
	}
}
