package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/JonMunkholm/productview/internal/core"
)

func newViewCmd(flags *rootFlags) *cobra.Command {
	var cf criteriaFlags

	cmd := &cobra.Command{
		Use:   "view",
		Short: "Print the filtered, grouped and sorted records",
		Long: `Print the records matching the criteria flags.

Examples:
  viewctl view --category Tools --sort price --dir desc
  viewctl view --group category --group subcategory --hide updatedAt
  viewctl view --search widget --price-min 10 --price-max 50 --json`,
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

			view := svc.View(criteria)
			if flags.jsonMode {
				return writeViewJSON(cmd.OutOrStdout(), criteria, view)
			}
			return writeViewTable(cmd.OutOrStdout(), view)
		},
	}
	cf.register(cmd)
	return cmd
}

// viewJSON is the --json rendering of a view.
type viewJSON struct {
	Criteria core.CriteriaSet `json:"criteria"`
	Groups   []groupJSON      `json:"groups,omitempty"`
	Rows     []core.Record    `json:"rows"`
	Total    int              `json:"total"`
	Matched  int              `json:"matched"`
}

type groupJSON struct {
	Key   []string `json:"key"`
	Count int      `json:"count"`
}

func writeViewJSON(w io.Writer, c core.CriteriaSet, v core.DerivedView) error {
	out := viewJSON{
		Criteria: c,
		Rows:     v.Rows,
		Total:    v.Total,
		Matched:  v.Matched,
	}
	if out.Rows == nil {
		out.Rows = []core.Record{}
	}
	for _, g := range v.Groups {
		out.Groups = append(out.Groups, groupJSON{Key: g.Key, Count: len(g.Rows)})
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

// writeViewTable prints visible columns, with a heading line per group.
func writeViewTable(w io.Writer, v core.DerivedView) error {
	var visible []core.Column
	for _, cs := range v.Columns {
		if !cs.Visible {
			continue
		}
		if col, ok := core.LookupColumn(cs.ID); ok {
			visible = append(visible, col)
		}
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	headers := make([]string, len(visible))
	for i, c := range visible {
		headers[i] = strings.ToUpper(c.Header)
	}
	if len(headers) > 0 {
		fmt.Fprintln(tw, strings.Join(headers, "\t"))
	}

	writeRows := func(rows []core.Record) {
		if len(visible) == 0 {
			return
		}
		cells := make([]string, len(visible))
		for _, r := range rows {
			for i, c := range visible {
				cells[i] = c.Format(r)
			}
			fmt.Fprintln(tw, strings.Join(cells, "\t"))
		}
	}

	if v.Grouped() {
		for _, g := range v.Groups {
			fmt.Fprintf(tw, "# %s (%d)\n", groupLabel(v.GroupBy, g.Key), len(g.Rows))
			writeRows(g.Rows)
		}
	} else {
		writeRows(v.Rows)
	}

	if err := tw.Flush(); err != nil {
		return err
	}
	_, err := fmt.Fprintf(w, "%d of %d records\n", v.Matched, v.Total)
	return err
}

// groupLabel renders "Category=Tools, Subcategory=Hand".
func groupLabel(cols []core.ColumnID, key []string) string {
	parts := make([]string, 0, len(key))
	for i, k := range key {
		name := string(cols[i])
		if col, ok := core.LookupColumn(cols[i]); ok {
			name = col.Header
		}
		parts = append(parts, name+"="+k)
	}
	return strings.Join(parts, ", ")
}
