// Package core provides the view-state engine for the product dataset.
// This package has no UI or transport dependencies and can be used by any frontend.
package core

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"
)

// TimestampLayout is the layout used when timestamps are rendered as text.
const TimestampLayout = time.RFC3339Nano

// Record is one product in the dataset. Records are immutable once loaded.
type Record struct {
	ID          int64
	Name        string
	Category    string
	Subcategory string
	CreatedAt   time.Time
	UpdatedAt   time.Time
	Price       decimal.Decimal
	SalePrice   decimal.NullDecimal // Valid=false means "no sale"
}

// HasSale reports whether the record carries a sale price.
func (r Record) HasSale() bool {
	return r.SalePrice.Valid
}

// recordJSON is the wire shape of a Record.
type recordJSON struct {
	ID          int64            `json:"id"`
	Name        string           `json:"name"`
	Category    string           `json:"category"`
	Subcategory string           `json:"subcategory"`
	CreatedAt   string           `json:"createdAt"`
	UpdatedAt   string           `json:"updatedAt"`
	Price       decimal.Decimal  `json:"price"`
	SalePrice   *decimal.Decimal `json:"sale_price,omitempty"`
}

// MarshalJSON renders the record using the same field names the data source uses.
func (r Record) MarshalJSON() ([]byte, error) {
	out := recordJSON{
		ID:          r.ID,
		Name:        r.Name,
		Category:    r.Category,
		Subcategory: r.Subcategory,
		CreatedAt:   r.CreatedAt.Format(TimestampLayout),
		UpdatedAt:   r.UpdatedAt.Format(TimestampLayout),
		Price:       r.Price,
	}
	if r.SalePrice.Valid {
		sp := r.SalePrice.Decimal
		out.SalePrice = &sp
	}
	return json.Marshal(out)
}

// RecordInput is an unvalidated record as supplied by a data source.
// Every field is optional so that missing values can be detected and the
// entry skipped instead of silently defaulting to zero.
type RecordInput struct {
	ID          *int64           `json:"id"`
	Name        *string          `json:"name"`
	Category    *string          `json:"category"`
	Subcategory *string          `json:"subcategory"`
	CreatedAt   *string          `json:"createdAt"`
	UpdatedAt   *string          `json:"updatedAt"`
	Price       *decimal.Decimal `json:"price"`
	SalePrice   *decimal.Decimal `json:"sale_price"`

	// SalePriceAlt accepts the camelCase spelling used by some exports.
	SalePriceAlt *decimal.Decimal `json:"salePrice"`

	// Err is set by a source when the entry could not be decoded at all.
	Err error `json:"-"`
}

// Group is a partition of the derived rows sharing the same group-key tuple.
type Group struct {
	Key  []string // One value per group column, in GroupBy order
	Rows []Record
}

// ColumnState describes a column and whether a renderer should display it.
type ColumnState struct {
	ID      ColumnID `json:"id"`
	Header  string   `json:"header"`
	Kind    string   `json:"kind"`
	Visible bool     `json:"visible"`
}

// DerivedView is the filtered, grouped and sorted projection of the record set
// for a given CriteriaSet. A view is always freshly allocated and never shares
// backing arrays with the store or with a previously derived view.
type DerivedView struct {
	Rows          []Record
	Groups        []Group // Empty when GroupBy is empty
	Columns       []ColumnState
	Visibility    map[ColumnID]bool
	SortKey       ColumnID
	SortAscending bool
	GroupBy       []ColumnID
	Total         int // Records in the store
	Matched       int // Records surviving the filters
}

// Len returns the number of rows in the view.
func (v DerivedView) Len() int {
	return len(v.Rows)
}

// Grouped reports whether the view was partitioned into groups.
func (v DerivedView) Grouped() bool {
	return len(v.GroupBy) > 0
}
