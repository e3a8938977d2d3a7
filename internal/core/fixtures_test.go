package core

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func mustTime(t *testing.T, s string) time.Time {
	t.Helper()
	ts, err := ParseTimestamp(s)
	if err != nil {
		t.Fatalf("parse %q: %v", s, err)
	}
	return ts
}

func rec(t *testing.T, id int64, name, cat, sub, price, created string) Record {
	t.Helper()
	ts := mustTime(t, created)
	return Record{
		ID:          id,
		Name:        name,
		Category:    cat,
		Subcategory: sub,
		CreatedAt:   ts,
		UpdatedAt:   ts,
		Price:       decimal.RequireFromString(price),
	}
}

func withSale(r Record, sale string) Record {
	r.SalePrice = decimal.NewNullDecimal(decimal.RequireFromString(sale))
	return r
}

// sampleRecords is a small catalogue covering ties, missing sale prices
// and several categories.
func sampleRecords(t *testing.T) []Record {
	t.Helper()
	return []Record{
		withSale(rec(t, 1, "Widget", "Tools", "Hand", "50", "2024-01-10"), "45"),
		rec(t, 2, "Gadget", "Electronics", "Audio", "150", "2024-02-01"),
		rec(t, 3, "Wrench", "Tools", "Hand", "25.5", "2024-01-05"),
		withSale(rec(t, 4, "Speaker", "Electronics", "Audio", "50", "2024-03-15"), "39.99"),
		rec(t, 5, "Drill", "Tools", "Power", "120", "2024-02-20"),
		rec(t, 6, "Mini Widget", "Toys", "Small", "9.99", "2023-12-31"),
	}
}

func ids(rows []Record) []int64 {
	out := make([]int64, len(rows))
	for i, r := range rows {
		out[i] = r.ID
	}
	return out
}
