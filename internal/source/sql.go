package source

import (
	"fmt"
	"strings"
	"time"

	"github.com/JonMunkholm/productview/internal/core"
	"github.com/shopspring/decimal"
)

// SQL sources read a table with these columns:
//
//	id          integer primary key
//	name        text
//	category    text
//	subcategory text
//	created_at  timestamp (or ISO-8601 text in SQLite)
//	updated_at  timestamp (or ISO-8601 text in SQLite)
//	price       numeric
//	sale_price  numeric, NULL when there is no sale
//
// Rows are read in id order.

// columnCast adapts a selected column to the type the scanner expects.
type columnCast struct {
	timestamp func(col string) string
	decimal   func(col string) string // Must yield exact decimal text
}

// selectRecordsQuery builds the query for table.
func selectRecordsQuery(table string, cast columnCast) string {
	return fmt.Sprintf(
		"SELECT id, name, category, subcategory, %s, %s, %s, %s FROM %s ORDER BY id",
		cast.timestamp("created_at"), cast.timestamp("updated_at"),
		cast.decimal("price"), cast.decimal("sale_price"),
		quoteTable(table),
	)
}

// quoteIdentifier quotes a SQL identifier, escaping embedded quotes.
func quoteIdentifier(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

// quoteTable quotes each part of a possibly schema-qualified table name.
func quoteTable(table string) string {
	parts := strings.Split(table, ".")
	for i, p := range parts {
		parts[i] = quoteIdentifier(p)
	}
	return strings.Join(parts, ".")
}

// row holds one scanned row before conversion. Nil fields were NULL.
type row struct {
	id          *int64
	name        *string
	category    *string
	subcategory *string
	createdAt   *string
	updatedAt   *string
	price       *string
	salePrice   *string
}

// input converts a scanned row into an unvalidated record. Unparsable
// prices are reported through RecordInput.Err.
func (r row) input() core.RecordInput {
	in := core.RecordInput{
		ID:          r.id,
		Name:        r.name,
		Category:    r.category,
		Subcategory: r.subcategory,
		CreatedAt:   r.createdAt,
		UpdatedAt:   r.updatedAt,
	}

	var err error
	if in.Price, err = parseDecimal(r.price); err != nil {
		return core.RecordInput{Err: fmt.Errorf("price: %w", err)}
	}
	if in.SalePrice, err = parseDecimal(r.salePrice); err != nil {
		return core.RecordInput{Err: fmt.Errorf("sale_price: %w", err)}
	}
	return in
}

func parseDecimal(s *string) (*decimal.Decimal, error) {
	if s == nil {
		return nil, nil
	}
	d, err := decimal.NewFromString(strings.TrimSpace(*s))
	if err != nil {
		return nil, fmt.Errorf("invalid number: %q", *s)
	}
	return &d, nil
}

func formatTime(t time.Time) *string {
	s := t.UTC().Format(time.RFC3339Nano)
	return &s
}
