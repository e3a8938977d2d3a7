package core

// export.go serializes derived rows as comma-separated text.
//
// By default fields are joined verbatim with no quoting, matching the
// established export format byte for byte. Values containing commas, quotes
// or newlines therefore produce ragged rows. Setting Exporter.Escape quotes
// such fields per RFC 4180 instead.

import (
	"bytes"
	"encoding/csv"
	"io"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

const (
	// ExportFileName is the download name of an exported view.
	ExportFileName = "product-data.csv"

	// ExportContentType is the MIME type of an exported view.
	ExportContentType = "text/csv;charset=utf-8"

	// NoSaleText is rendered in the Sale Price column when a record has no sale.
	NoSaleText = "N/A"
)

// ExportHeader is the fixed header row of every export.
var ExportHeader = []string{
	"ID", "Name", "Category", "Subcategory", "Price", "Sale Price", "Created At", "Updated At",
}

// Exporter serializes record sequences. The zero value reproduces the
// unescaped export format.
type Exporter struct {
	// Escape quotes fields containing delimiters, quotes or line breaks.
	Escape bool
}

// Serialize renders the header followed by one line per record, in input
// order, joined by "\n" with no trailing newline. It never filters or
// reorders rows.
func (e Exporter) Serialize(rows []Record) string {
	var b strings.Builder
	// Writes to a strings.Builder cannot fail.
	_, _ = e.Stream(&b, rows)
	return b.String()
}

// Stream writes the same bytes Serialize returns to w.
func (e Exporter) Stream(w io.Writer, rows []Record) (int64, error) {
	var total int64

	line := e.formatLine(ExportHeader)
	n, err := io.WriteString(w, line)
	total += int64(n)
	if err != nil {
		return total, err
	}

	for _, r := range rows {
		n, err := io.WriteString(w, "\n"+e.formatLine(ExportFields(r)))
		total += int64(n)
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

// formatLine joins fields, escaping them when configured.
func (e Exporter) formatLine(fields []string) string {
	if !e.Escape {
		return strings.Join(fields, ",")
	}

	var buf bytes.Buffer
	cw := csv.NewWriter(&buf)
	// Writes to a bytes.Buffer cannot fail.
	_ = cw.Write(fields)
	cw.Flush()
	return strings.TrimSuffix(buf.String(), "\n")
}

// ExportFields renders one record in ExportHeader order.
func ExportFields(r Record) []string {
	return []string{
		strconv.FormatInt(r.ID, 10),
		r.Name,
		r.Category,
		r.Subcategory,
		r.Price.StringFixed(2),
		formatSalePrice(r.SalePrice),
		r.CreatedAt.Format(TimestampLayout),
		r.UpdatedAt.Format(TimestampLayout),
	}
}

// formatSalePrice renders a sale price with two decimals, or NoSaleText.
func formatSalePrice(sp decimal.NullDecimal) string {
	if !sp.Valid {
		return NoSaleText
	}
	return sp.Decimal.StringFixed(2)
}
