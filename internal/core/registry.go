package core

import (
	"strconv"
	"strings"
	"time"
)

// ColumnID identifies a column of the product dataset.
type ColumnID string

const (
	ColID          ColumnID = "id"
	ColName        ColumnID = "name"
	ColCategory    ColumnID = "category"
	ColSubcategory ColumnID = "subcategory"
	ColPrice       ColumnID = "price"
	ColSalePrice   ColumnID = "sale_price"
	ColCreatedAt   ColumnID = "createdAt"
	ColUpdatedAt   ColumnID = "updatedAt"
)

// ColumnKind determines how values of a column are compared.
type ColumnKind int

const (
	KindText ColumnKind = iota
	KindInteger
	KindDecimal
	KindTimestamp
)

// String returns the kind name used in API responses.
func (k ColumnKind) String() string {
	switch k {
	case KindInteger:
		return "integer"
	case KindDecimal:
		return "decimal"
	case KindTimestamp:
		return "timestamp"
	default:
		return "text"
	}
}

// Column is the definition of one dataset column.
type Column struct {
	ID     ColumnID
	Header string // Display and export header text
	Kind   ColumnKind

	// compare orders two records by this column: negative, zero or positive.
	compare func(a, b Record) int

	// text renders the column value for display.
	text func(r Record) string

	// key renders the value losslessly; equal values share a key.
	key func(r Record) string
}

// Format renders r's value for this column as display text.
func (c Column) Format(r Record) string {
	return c.text(r)
}

// columns is the fixed catalogue in display order.
var columns = []Column{
	{
		ID: ColID, Header: "ID", Kind: KindInteger,
		compare: func(a, b Record) int { return compareInt64(a.ID, b.ID) },
		text:    func(r Record) string { return strconv.FormatInt(r.ID, 10) },
		key:     func(r Record) string { return strconv.FormatInt(r.ID, 10) },
	},
	{
		ID: ColName, Header: "Name", Kind: KindText,
		compare: func(a, b Record) int { return strings.Compare(a.Name, b.Name) },
		text:    func(r Record) string { return r.Name },
		key:     func(r Record) string { return r.Name },
	},
	{
		ID: ColCategory, Header: "Category", Kind: KindText,
		compare: func(a, b Record) int { return strings.Compare(a.Category, b.Category) },
		text:    func(r Record) string { return r.Category },
		key:     func(r Record) string { return r.Category },
	},
	{
		ID: ColSubcategory, Header: "Subcategory", Kind: KindText,
		compare: func(a, b Record) int { return strings.Compare(a.Subcategory, b.Subcategory) },
		text:    func(r Record) string { return r.Subcategory },
		key:     func(r Record) string { return r.Subcategory },
	},
	{
		ID: ColPrice, Header: "Price", Kind: KindDecimal,
		compare: func(a, b Record) int { return a.Price.Cmp(b.Price) },
		text:    func(r Record) string { return r.Price.StringFixed(2) },
		key:     func(r Record) string { return r.Price.String() },
	},
	{
		ID: ColSalePrice, Header: "Sale Price", Kind: KindDecimal,
		compare: compareSalePrice,
		text:    func(r Record) string { return formatSalePrice(r.SalePrice) },
		key:     salePriceKey,
	},
	{
		ID: ColCreatedAt, Header: "Created At", Kind: KindTimestamp,
		compare: func(a, b Record) int { return a.CreatedAt.Compare(b.CreatedAt) },
		text:    func(r Record) string { return r.CreatedAt.Format(TimestampLayout) },
		key:     func(r Record) string { return r.CreatedAt.UTC().Format(time.RFC3339Nano) },
	},
	{
		ID: ColUpdatedAt, Header: "Updated At", Kind: KindTimestamp,
		compare: func(a, b Record) int { return a.UpdatedAt.Compare(b.UpdatedAt) },
		text:    func(r Record) string { return r.UpdatedAt.Format(TimestampLayout) },
		key:     func(r Record) string { return r.UpdatedAt.UTC().Format(time.RFC3339Nano) },
	},
}

// columnIndex maps column IDs to their position in the catalogue.
var columnIndex = func() map[ColumnID]int {
	idx := make(map[ColumnID]int, len(columns))
	for i, c := range columns {
		idx[c.ID] = i
	}
	return idx
}()

// Columns returns the column catalogue in display order.
func Columns() []Column {
	out := make([]Column, len(columns))
	copy(out, columns)
	return out
}

// LookupColumn returns a column definition by ID.
// Returns false if the column is not part of the catalogue.
func LookupColumn(id ColumnID) (Column, bool) {
	i, ok := columnIndex[id]
	if !ok {
		return Column{}, false
	}
	return columns[i], true
}

// IsKnownColumn reports whether id names a catalogue column.
func IsKnownColumn(id ColumnID) bool {
	_, ok := columnIndex[id]
	return ok
}

// ParseColumnID resolves user input to a column ID.
// Matching is case-insensitive and accepts header text ("Sale Price")
// as well as the camelCase alias "salePrice".
func ParseColumnID(s string) (ColumnID, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", false
	}
	for _, c := range columns {
		if strings.EqualFold(string(c.ID), s) || strings.EqualFold(c.Header, s) {
			return c.ID, true
		}
	}
	if strings.EqualFold(s, "salePrice") {
		return ColSalePrice, true
	}
	return "", false
}

// ColumnHeaders returns header text for every column in catalogue order.
func ColumnHeaders() []string {
	headers := make([]string, len(columns))
	for i, c := range columns {
		headers[i] = c.Header
	}
	return headers
}

func compareInt64(a, b int64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

// compareSalePrice orders an absent sale price before every present one.
func compareSalePrice(a, b Record) int {
	switch {
	case !a.SalePrice.Valid && !b.SalePrice.Valid:
		return 0
	case !a.SalePrice.Valid:
		return -1
	case !b.SalePrice.Valid:
		return 1
	default:
		return a.SalePrice.Decimal.Cmp(b.SalePrice.Decimal)
	}
}

// salePriceKey keys absent sale prices apart from every present value.
func salePriceKey(r Record) string {
	if !r.SalePrice.Valid {
		return NoSaleText
	}
	return r.SalePrice.Decimal.String()
}
