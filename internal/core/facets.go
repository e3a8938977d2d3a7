package core

import (
	"time"

	"github.com/shopspring/decimal"
)

// Facets lists the values a filter UI offers for the current record set.
type Facets struct {
	Categories    []string            `json:"categories"`
	Subcategories []string            `json:"subcategories"`
	PriceMin      decimal.NullDecimal `json:"priceMin"`
	PriceMax      decimal.NullDecimal `json:"priceMax"`
	CreatedFrom   *time.Time          `json:"createdFrom"`
	CreatedTo     *time.Time          `json:"createdTo"`
}

// ComputeFacets collects distinct categories and subcategories in
// first-seen order together with the price and creation-date bounds.
func ComputeFacets(records []Record) Facets {
	f := Facets{
		Categories:    []string{},
		Subcategories: []string{},
	}
	seenCat := make(map[string]bool)
	seenSub := make(map[string]bool)

	for _, r := range records {
		if !seenCat[r.Category] {
			seenCat[r.Category] = true
			f.Categories = append(f.Categories, r.Category)
		}
		if !seenSub[r.Subcategory] {
			seenSub[r.Subcategory] = true
			f.Subcategories = append(f.Subcategories, r.Subcategory)
		}

		if !f.PriceMin.Valid || r.Price.LessThan(f.PriceMin.Decimal) {
			f.PriceMin = decimal.NewNullDecimal(r.Price)
		}
		if !f.PriceMax.Valid || r.Price.GreaterThan(f.PriceMax.Decimal) {
			f.PriceMax = decimal.NewNullDecimal(r.Price)
		}

		if f.CreatedFrom == nil || r.CreatedAt.Before(*f.CreatedFrom) {
			t := r.CreatedAt
			f.CreatedFrom = &t
		}
		if f.CreatedTo == nil || r.CreatedAt.After(*f.CreatedTo) {
			t := r.CreatedAt
			f.CreatedTo = &t
		}
	}

	return f
}
