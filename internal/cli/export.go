package cli

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
)

func newExportCmd(flags *rootFlags) *cobra.Command {
	var (
		cf     criteriaFlags
		output string
	)

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write the view as comma-separated text",
		Long: `Write the rows of the view as comma-separated text, header first.

The view is derived from the same criteria flags as "viewctl view". Output
goes to stdout unless --output is given. Set EXPORT_ESCAPE_FIELDS=true to
quote fields containing commas, quotes or line breaks.

Examples:
  viewctl export --category Tools > tools.csv
  viewctl export --sort price --dir desc --output product-data.csv`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			criteria, err := cf.criteria()
			if err != nil {
				return err
			}
			svc, err := loadService(cmd, flags)
			if err != nil {
				return err
			}

			if output == "" {
				_, err := svc.Export(cmd.Context(), cmd.OutOrStdout(), criteria)
				return err
			}

			f, err := os.Create(output)
			if err != nil {
				return fmt.Errorf("create output: %w", err)
			}
			rows, err := svc.Export(cmd.Context(), f, criteria)
			if cerr := f.Close(); err == nil && cerr != nil {
				err = fmt.Errorf("close output: %w", cerr)
			}
			if err != nil {
				return err
			}
			slog.Info("export written", "path", output, "rows", rows)
			return nil
		},
	}
	cf.register(cmd)
	cmd.Flags().StringVarP(&output, "output", "o", "", "write to file instead of stdout")
	return cmd
}
