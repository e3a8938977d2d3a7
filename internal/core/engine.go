package core

// engine.go derives a DerivedView from a record sequence and a CriteriaSet.
//
// The pipeline is:
//  1. Filter: category, subcategory, search, price and date predicates (AND)
//  2. Group: partition survivors by GroupBy tuple, first-seen group order
//  3. Sort: stable sort inside each group (or the whole sequence)
//
// Derive is pure. It reads its inputs, allocates a fresh view and has no
// side effects, so repeated calls with equal inputs yield equal views.

import (
	"slices"
	"strings"
)

// groupKeySep joins tuple values into a map key. It cannot appear in
// well-formed text values.
const groupKeySep = "\x1f"

// Derive filters, groups and sorts records according to c.
func Derive(records []Record, c CriteriaSet) DerivedView {
	match := newMatcher(c)

	rows := make([]Record, 0, len(records))
	for _, r := range records {
		if match(r) {
			rows = append(rows, r)
		}
	}
	matched := len(rows)

	groupCols := resolveColumns(c.groupBy)
	sortCol, sorting := LookupColumn(c.sortKey)
	cmp := sortComparator(sortCol, c.sortAscending)

	var groups []Group
	if len(groupCols) > 0 {
		groups = partition(rows, groupCols)
		rows = rows[:0]
		for i := range groups {
			if sorting {
				slices.SortStableFunc(groups[i].Rows, cmp)
			}
			rows = append(rows, groups[i].Rows...)
		}
	} else if sorting {
		slices.SortStableFunc(rows, cmp)
	}

	groupBy := make([]ColumnID, len(groupCols))
	for i, col := range groupCols {
		groupBy[i] = col.ID
	}

	sortKey := ColumnID("")
	if sorting {
		sortKey = sortCol.ID
	}

	return DerivedView{
		Rows:          rows,
		Groups:        groups,
		Columns:       columnStates(c),
		Visibility:    c.Visibility(),
		SortKey:       sortKey,
		SortAscending: c.sortAscending,
		GroupBy:       groupBy,
		Total:         len(records),
		Matched:       matched,
	}
}

// Matches reports whether a single record satisfies every filter in c.
func Matches(r Record, c CriteriaSet) bool {
	return newMatcher(c)(r)
}

// newMatcher builds the conjunction of all active predicates.
// Inactive predicates are omitted rather than evaluated as "true".
func newMatcher(c CriteriaSet) func(Record) bool {
	var preds []func(Record) bool

	if len(c.categories) > 0 {
		allowed := c.categories
		preds = append(preds, func(r Record) bool {
			_, ok := allowed[r.Category]
			return ok
		})
	}
	if len(c.subcategories) > 0 {
		allowed := c.subcategories
		preds = append(preds, func(r Record) bool {
			_, ok := allowed[r.Subcategory]
			return ok
		})
	}
	if c.search != "" {
		term := strings.ToLower(c.search)
		preds = append(preds, func(r Record) bool {
			return strings.Contains(strings.ToLower(r.Name), term)
		})
	}
	if !c.priceRange.Unbounded() {
		pr := c.priceRange
		preds = append(preds, func(r Record) bool { return pr.Contains(r.Price) })
	}
	if !c.dateRange.Unbounded() {
		dr := c.DateRange()
		preds = append(preds, func(r Record) bool { return dr.Contains(r.CreatedAt) })
	}

	return func(r Record) bool {
		for _, p := range preds {
			if !p(r) {
				return false
			}
		}
		return true
	}
}

// resolveColumns maps IDs to catalogue columns, dropping unknown ones.
func resolveColumns(ids []ColumnID) []Column {
	var out []Column
	for _, id := range ids {
		if col, ok := LookupColumn(id); ok {
			out = append(out, col)
		}
	}
	return out
}

// partition splits rows into groups keyed by the values at cols.
// Groups appear in the order their first member appears in rows.
func partition(rows []Record, cols []Column) []Group {
	var groups []Group
	index := make(map[string]int)

	key := make([]string, len(cols))
	for _, r := range rows {
		for i, col := range cols {
			key[i] = col.key(r)
		}
		k := strings.Join(key, groupKeySep)

		gi, ok := index[k]
		if !ok {
			gi = len(groups)
			index[k] = gi
			groups = append(groups, Group{Key: slices.Clone(key)})
		}
		groups[gi].Rows = append(groups[gi].Rows, r)
	}
	return groups
}

// sortComparator returns the comparison used for stable sorting.
// Descending order negates the comparison so ties stay in their prior order.
func sortComparator(col Column, ascending bool) func(a, b Record) int {
	if col.compare == nil {
		return func(a, b Record) int { return 0 }
	}
	if ascending {
		return col.compare
	}
	return func(a, b Record) int { return -col.compare(a, b) }
}

// columnStates annotates the catalogue with visibility from c.
func columnStates(c CriteriaSet) []ColumnState {
	states := make([]ColumnState, len(columns))
	for i, col := range columns {
		states[i] = ColumnState{
			ID:      col.ID,
			Header:  col.Header,
			Kind:    col.Kind.String(),
			Visible: c.ColumnVisible(col.ID),
		}
	}
	return states
}
