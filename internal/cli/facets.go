package cli

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"
)

func newFacetsCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "facets",
		Short: "Show the filter values available in the dataset",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := loadService(cmd, flags)
			if err != nil {
				return err
			}
			f := svc.Facets()

			out := cmd.OutOrStdout()
			if flags.jsonMode {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(f)
			}

			fmt.Fprintf(out, "Records:       %d\n", svc.Store().Len())
			fmt.Fprintf(out, "Categories:    %s\n", strings.Join(f.Categories, ", "))
			fmt.Fprintf(out, "Subcategories: %s\n", strings.Join(f.Subcategories, ", "))
			if f.PriceMin.Valid {
				fmt.Fprintf(out, "Price:         %s - %s\n",
					f.PriceMin.Decimal.StringFixed(2), f.PriceMax.Decimal.StringFixed(2))
			}
			if f.CreatedFrom != nil {
				fmt.Fprintf(out, "Created:       %s - %s\n",
					f.CreatedFrom.Format(time.DateOnly), f.CreatedTo.Format(time.DateOnly))
			}
			return nil
		},
	}
}
