package core

import (
	"encoding/json"
	"slices"
	"time"

	"github.com/shopspring/decimal"
)

// PriceRange is a closed interval on Record.Price. An invalid bound leaves
// that side of the interval open.
type PriceRange struct {
	Min decimal.NullDecimal
	Max decimal.NullDecimal
}

// NewPriceRange returns the closed interval [min, max].
func NewPriceRange(min, max decimal.Decimal) PriceRange {
	return PriceRange{
		Min: decimal.NewNullDecimal(min),
		Max: decimal.NewNullDecimal(max),
	}
}

// Contains reports whether p lies inside the range, inclusive on both ends.
func (pr PriceRange) Contains(p decimal.Decimal) bool {
	if pr.Min.Valid && p.LessThan(pr.Min.Decimal) {
		return false
	}
	if pr.Max.Valid && p.GreaterThan(pr.Max.Decimal) {
		return false
	}
	return true
}

// Unbounded reports whether neither bound is set.
func (pr PriceRange) Unbounded() bool {
	return !pr.Min.Valid && !pr.Max.Valid
}

// DateRange bounds Record.CreatedAt. A nil end is unbounded.
type DateRange struct {
	Start *time.Time
	End   *time.Time
}

// Contains reports whether t lies inside the range, inclusive on both ends.
func (dr DateRange) Contains(t time.Time) bool {
	if dr.Start != nil && t.Before(*dr.Start) {
		return false
	}
	if dr.End != nil && t.After(*dr.End) {
		return false
	}
	return true
}

// Unbounded reports whether neither bound is set.
func (dr DateRange) Unbounded() bool {
	return dr.Start == nil && dr.End == nil
}

// CriteriaSet holds every user-adjustable view parameter. It is a value
// object: setters return a modified copy and never touch the receiver.
//
// An empty category or subcategory set means "all allowed", never
// "none allowed".
type CriteriaSet struct {
	groupBy       []ColumnID
	visibility    map[ColumnID]bool
	sortKey       ColumnID
	sortAscending bool
	search        string
	categories    map[string]struct{}
	subcategories map[string]struct{}
	priceRange    PriceRange
	dateRange     DateRange
}

// NewCriteria returns the neutral criteria set: no filters, no sort, no
// grouping and every known column visible.
func NewCriteria() CriteriaSet {
	vis := make(map[ColumnID]bool, len(columns))
	for _, c := range columns {
		vis[c.ID] = true
	}
	return CriteriaSet{
		visibility:    vis,
		sortAscending: true,
	}
}

// clone returns a deep copy so that setters can mutate the result freely.
func (c CriteriaSet) clone() CriteriaSet {
	out := c
	out.groupBy = slices.Clone(c.groupBy)
	out.visibility = make(map[ColumnID]bool, len(c.visibility))
	for k, v := range c.visibility {
		out.visibility[k] = v
	}
	out.categories = cloneSet(c.categories)
	out.subcategories = cloneSet(c.subcategories)
	out.dateRange = DateRange{Start: cloneTime(c.dateRange.Start), End: cloneTime(c.dateRange.End)}
	return out
}

// WithGroupBy replaces the grouping keys. Order is grouping precedence;
// repeated keys are dropped after their first occurrence.
func (c CriteriaSet) WithGroupBy(keys ...ColumnID) CriteriaSet {
	out := c.clone()
	out.groupBy = nil
	seen := make(map[ColumnID]bool, len(keys))
	for _, k := range keys {
		if seen[k] {
			continue
		}
		seen[k] = true
		out.groupBy = append(out.groupBy, k)
	}
	return out
}

// WithColumnVisibility replaces the whole visibility map. Known columns
// missing from vis default to visible.
func (c CriteriaSet) WithColumnVisibility(vis map[ColumnID]bool) CriteriaSet {
	out := c.clone()
	out.visibility = make(map[ColumnID]bool, len(columns)+len(vis))
	for _, col := range columns {
		out.visibility[col.ID] = true
	}
	for k, v := range vis {
		out.visibility[k] = v
	}
	return out
}

// WithColumnVisible sets the visibility of a single column.
func (c CriteriaSet) WithColumnVisible(col ColumnID, visible bool) CriteriaSet {
	out := c.clone()
	out.visibility[col] = visible
	return out
}

// ToggleColumn flips the visibility of a single column.
func (c CriteriaSet) ToggleColumn(col ColumnID) CriteriaSet {
	return c.WithColumnVisible(col, !c.ColumnVisible(col))
}

// WithSort sets the sort key and direction together. An empty key clears sorting.
func (c CriteriaSet) WithSort(key ColumnID, ascending bool) CriteriaSet {
	out := c.clone()
	out.sortKey = key
	out.sortAscending = ascending
	return out
}

// WithSortKey sets the sort key, keeping the current direction.
func (c CriteriaSet) WithSortKey(key ColumnID) CriteriaSet {
	return c.WithSort(key, c.sortAscending)
}

// WithSortAscending sets the sort direction, keeping the current key.
func (c CriteriaSet) WithSortAscending(ascending bool) CriteriaSet {
	return c.WithSort(c.sortKey, ascending)
}

// WithSearch sets the case-insensitive name search term.
func (c CriteriaSet) WithSearch(term string) CriteriaSet {
	out := c.clone()
	out.search = term
	return out
}

// WithCategories replaces the allowed categories. No values means no restriction.
func (c CriteriaSet) WithCategories(values ...string) CriteriaSet {
	out := c.clone()
	out.categories = toSet(values)
	return out
}

// WithSubcategories replaces the allowed subcategories. No values means no restriction.
func (c CriteriaSet) WithSubcategories(values ...string) CriteriaSet {
	out := c.clone()
	out.subcategories = toSet(values)
	return out
}

// WithPriceRange replaces the price interval. Inverted bounds are accepted
// and simply match nothing.
func (c CriteriaSet) WithPriceRange(pr PriceRange) CriteriaSet {
	out := c.clone()
	out.priceRange = pr
	return out
}

// WithDateRange replaces the creation-date bounds.
func (c CriteriaSet) WithDateRange(dr DateRange) CriteriaSet {
	out := c.clone()
	out.dateRange = DateRange{Start: cloneTime(dr.Start), End: cloneTime(dr.End)}
	return out
}

// Reset returns the neutral criteria set.
func (c CriteriaSet) Reset() CriteriaSet {
	return NewCriteria()
}

// GroupBy returns the grouping keys in precedence order.
func (c CriteriaSet) GroupBy() []ColumnID { return slices.Clone(c.groupBy) }

// SortKey returns the sort column, or "" when unsorted.
func (c CriteriaSet) SortKey() ColumnID { return c.sortKey }

// SortAscending returns the sort direction.
func (c CriteriaSet) SortAscending() bool { return c.sortAscending }

// Search returns the name search term.
func (c CriteriaSet) Search() string { return c.search }

// PriceRange returns the price interval.
func (c CriteriaSet) PriceRange() PriceRange { return c.priceRange }

// DateRange returns a copy of the creation-date bounds.
func (c CriteriaSet) DateRange() DateRange {
	return DateRange{Start: cloneTime(c.dateRange.Start), End: cloneTime(c.dateRange.End)}
}

// Categories returns the allowed categories, sorted.
func (c CriteriaSet) Categories() []string { return setValues(c.categories) }

// Subcategories returns the allowed subcategories, sorted.
func (c CriteriaSet) Subcategories() []string { return setValues(c.subcategories) }

// ColumnVisible reports whether col is visible. Columns never configured
// are visible.
func (c CriteriaSet) ColumnVisible(col ColumnID) bool {
	v, ok := c.visibility[col]
	if !ok {
		return true
	}
	return v
}

// Visibility returns a copy of the visibility map.
func (c CriteriaSet) Visibility() map[ColumnID]bool {
	out := make(map[ColumnID]bool, len(columns)+len(c.visibility))
	for _, col := range columns {
		out[col.ID] = true
	}
	for k, v := range c.visibility {
		out[k] = v
	}
	return out
}

// IsNeutral reports whether every filter, sort and grouping is at its
// default. Column visibility is not considered.
func (c CriteriaSet) IsNeutral() bool {
	return len(c.groupBy) == 0 &&
		c.sortKey == "" &&
		c.search == "" &&
		len(c.categories) == 0 &&
		len(c.subcategories) == 0 &&
		c.priceRange.Unbounded() &&
		c.dateRange.Unbounded()
}

// criteriaJSON is the wire shape of a CriteriaSet.
type criteriaJSON struct {
	GroupBy       []ColumnID          `json:"groupBy"`
	Visibility    map[ColumnID]bool   `json:"columnVisibility"`
	SortKey       ColumnID            `json:"sortKey,omitempty"`
	SortAscending bool                `json:"sortAscending"`
	Search        string              `json:"searchTerm"`
	Categories    []string            `json:"categoryFilter"`
	Subcategories []string            `json:"subcategoryFilter"`
	PriceMin      decimal.NullDecimal `json:"priceMin"`
	PriceMax      decimal.NullDecimal `json:"priceMax"`
	DateStart     *time.Time          `json:"dateStart"`
	DateEnd       *time.Time          `json:"dateEnd"`
}

// MarshalJSON renders the criteria set for API responses.
func (c CriteriaSet) MarshalJSON() ([]byte, error) {
	groupBy := c.GroupBy()
	if groupBy == nil {
		groupBy = []ColumnID{}
	}
	return json.Marshal(criteriaJSON{
		GroupBy:       groupBy,
		Visibility:    c.Visibility(),
		SortKey:       c.sortKey,
		SortAscending: c.sortAscending,
		Search:        c.search,
		Categories:    c.Categories(),
		Subcategories: c.Subcategories(),
		PriceMin:      c.priceRange.Min,
		PriceMax:      c.priceRange.Max,
		DateStart:     c.dateRange.Start,
		DateEnd:       c.dateRange.End,
	})
}

// UnmarshalJSON replaces the receiver with the decoded criteria set.
// Fields absent from the document keep their neutral defaults.
func (c *CriteriaSet) UnmarshalJSON(data []byte) error {
	in := criteriaJSON{SortAscending: true}
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	out := NewCriteria().
		WithGroupBy(in.GroupBy...).
		WithColumnVisibility(in.Visibility).
		WithSort(in.SortKey, in.SortAscending).
		WithSearch(in.Search).
		WithCategories(in.Categories...).
		WithSubcategories(in.Subcategories...).
		WithPriceRange(PriceRange{Min: in.PriceMin, Max: in.PriceMax}).
		WithDateRange(DateRange{Start: in.DateStart, End: in.DateEnd})
	*c = out
	return nil
}

func toSet(values []string) map[string]struct{} {
	if len(values) == 0 {
		return nil
	}
	set := make(map[string]struct{}, len(values))
	for _, v := range values {
		set[v] = struct{}{}
	}
	return set
}

func cloneSet(set map[string]struct{}) map[string]struct{} {
	if set == nil {
		return nil
	}
	out := make(map[string]struct{}, len(set))
	for k := range set {
		out[k] = struct{}{}
	}
	return out
}

func setValues(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	slices.Sort(out)
	return out
}

func cloneTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := *t
	return &v
}
