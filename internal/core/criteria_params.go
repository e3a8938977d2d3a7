package core

// criteria_params.go builds criteria sets from request parameters and
// partial JSON updates. Both the HTTP API and the CLI go through here, so
// a value rejected by one is rejected by the other.

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// ErrInvalidCriteria wraps every parameter or patch validation failure.
var ErrInvalidCriteria = errors.New("invalid criteria")

// Query parameter names accepted by ParseCriteriaParams.
const (
	ParamSearch      = "search"
	ParamCategory    = "category"
	ParamSubcategory = "subcategory"
	ParamPriceMin    = "price_min"
	ParamPriceMax    = "price_max"
	ParamFrom        = "from"
	ParamTo          = "to"
	ParamSort        = "sort"
	ParamDir         = "dir"
	ParamGroup       = "group"
	ParamHide        = "hide"
)

// dateOnlyLen is the length of a YYYY-MM-DD value.
const dateOnlyLen = len("2006-01-02")

// ParseCriteriaParams builds a criteria set from query-style parameters.
// Repeated category, subcategory, group and hide parameters accumulate.
// Unparsable numbers, dates, directions and unknown columns are rejected.
func ParseCriteriaParams(params url.Values) (CriteriaSet, error) {
	c := NewCriteria().
		WithSearch(params.Get(ParamSearch)).
		WithCategories(nonEmpty(params[ParamCategory])...).
		WithSubcategories(nonEmpty(params[ParamSubcategory])...)

	priceMin, err := parsePriceBound(ParamPriceMin, params.Get(ParamPriceMin))
	if err != nil {
		return CriteriaSet{}, err
	}
	priceMax, err := parsePriceBound(ParamPriceMax, params.Get(ParamPriceMax))
	if err != nil {
		return CriteriaSet{}, err
	}
	c = c.WithPriceRange(PriceRange{Min: priceMin, Max: priceMax})

	from, err := parseDateBound(ParamFrom, params.Get(ParamFrom), false)
	if err != nil {
		return CriteriaSet{}, err
	}
	to, err := parseDateBound(ParamTo, params.Get(ParamTo), true)
	if err != nil {
		return CriteriaSet{}, err
	}
	c = c.WithDateRange(DateRange{Start: from, End: to})

	ascending, err := ParseSortDirection(params.Get(ParamDir))
	if err != nil {
		return CriteriaSet{}, err
	}
	var sortKey ColumnID
	if raw := strings.TrimSpace(params.Get(ParamSort)); raw != "" {
		if sortKey, err = parseColumn(ParamSort, raw); err != nil {
			return CriteriaSet{}, err
		}
	}
	c = c.WithSort(sortKey, ascending)

	groupBy, err := parseColumns(ParamGroup, params[ParamGroup])
	if err != nil {
		return CriteriaSet{}, err
	}
	c = c.WithGroupBy(groupBy...)

	hidden, err := parseColumns(ParamHide, params[ParamHide])
	if err != nil {
		return CriteriaSet{}, err
	}
	for _, col := range hidden {
		c = c.WithColumnVisible(col, false)
	}

	return c, nil
}

// ParseSortDirection accepts "", "asc" and "desc" in any case.
// The empty string means ascending.
func ParseSortDirection(s string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "asc", "ascending":
		return true, nil
	case "desc", "descending":
		return false, nil
	default:
		return false, fmt.Errorf("%w: invalid sort direction %q", ErrInvalidCriteria, s)
	}
}

// CriteriaPatch is a partial criteria update. Absent fields leave the
// current value untouched; an explicit null clears a price or date bound.
type CriteriaPatch struct {
	GroupBy       *[]string       `json:"groupBy"`
	Visibility    map[string]bool `json:"columnVisibility"`
	SortKey       *string         `json:"sortKey"`
	SortAscending *bool           `json:"sortAscending"`
	Search        *string         `json:"searchTerm"`
	Categories    *[]string       `json:"categoryFilter"`
	Subcategories *[]string       `json:"subcategoryFilter"`
	PriceMin      json.RawMessage `json:"priceMin"`
	PriceMax      json.RawMessage `json:"priceMax"`
	DateStart     json.RawMessage `json:"dateStart"`
	DateEnd       json.RawMessage `json:"dateEnd"`
}

// DecodeCriteriaPatch parses a JSON patch document. Unknown fields are rejected.
func DecodeCriteriaPatch(data []byte) (CriteriaPatch, error) {
	var p CriteriaPatch
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&p); err != nil {
		return CriteriaPatch{}, fmt.Errorf("%w: %v", ErrInvalidCriteria, err)
	}
	return p, nil
}

// Apply returns c with the patch applied. Validation happens before any
// field is changed, so a rejected patch never half-applies.
func (p CriteriaPatch) Apply(c CriteriaSet) (CriteriaSet, error) {
	var groupBy []ColumnID
	if p.GroupBy != nil {
		cols, err := parseColumns("groupBy", *p.GroupBy)
		if err != nil {
			return c, err
		}
		groupBy = cols
	}

	vis := make(map[ColumnID]bool, len(p.Visibility))
	for name, visible := range p.Visibility {
		col, err := parseColumn("columnVisibility", name)
		if err != nil {
			return c, err
		}
		vis[col] = visible
	}

	var sortKey ColumnID
	if p.SortKey != nil && strings.TrimSpace(*p.SortKey) != "" {
		col, err := parseColumn("sortKey", *p.SortKey)
		if err != nil {
			return c, err
		}
		sortKey = col
	}

	pr := c.PriceRange()
	if err := patchPrice(&pr.Min, "priceMin", p.PriceMin); err != nil {
		return c, err
	}
	if err := patchPrice(&pr.Max, "priceMax", p.PriceMax); err != nil {
		return c, err
	}

	dr := c.DateRange()
	if err := patchDate(&dr.Start, "dateStart", p.DateStart, false); err != nil {
		return c, err
	}
	if err := patchDate(&dr.End, "dateEnd", p.DateEnd, true); err != nil {
		return c, err
	}

	out := c
	if p.GroupBy != nil {
		out = out.WithGroupBy(groupBy...)
	}
	for col, visible := range vis {
		out = out.WithColumnVisible(col, visible)
	}
	if p.SortKey != nil {
		out = out.WithSortKey(sortKey)
	}
	if p.SortAscending != nil {
		out = out.WithSortAscending(*p.SortAscending)
	}
	if p.Search != nil {
		out = out.WithSearch(*p.Search)
	}
	if p.Categories != nil {
		out = out.WithCategories(*p.Categories...)
	}
	if p.Subcategories != nil {
		out = out.WithSubcategories(*p.Subcategories...)
	}
	return out.WithPriceRange(pr).WithDateRange(dr), nil
}

func patchPrice(dst *decimal.NullDecimal, field string, raw json.RawMessage) error {
	if len(raw) == 0 {
		return nil
	}
	if string(raw) == "null" {
		*dst = decimal.NullDecimal{}
		return nil
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		s = string(raw)
	}
	v, err := parsePriceBound(field, s)
	if err != nil {
		return err
	}
	*dst = v
	return nil
}

func patchDate(dst **time.Time, field string, raw json.RawMessage, endOfDay bool) error {
	if len(raw) == 0 {
		return nil
	}
	if string(raw) == "null" {
		*dst = nil
		return nil
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return fmt.Errorf("%w: invalid date for %s: %s", ErrInvalidCriteria, field, raw)
	}
	t, err := parseDateBound(field, s, endOfDay)
	if err != nil {
		return err
	}
	*dst = t
	return nil
}

// parsePriceBound parses an optional non-negative decimal.
func parsePriceBound(field, s string) (decimal.NullDecimal, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.NullDecimal{}, nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.NullDecimal{}, fmt.Errorf("%w: invalid number %q for %s", ErrInvalidCriteria, s, field)
	}
	if d.IsNegative() {
		return decimal.NullDecimal{}, fmt.Errorf("%w: invalid number %q for %s: must not be negative", ErrInvalidCriteria, s, field)
	}
	return decimal.NewNullDecimal(d), nil
}

// parseDateBound parses an optional timestamp. A date-only upper bound
// covers the whole of that day.
func parseDateBound(field, s string, endOfDay bool) (*time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	t, err := ParseTimestamp(s)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrInvalidCriteria, field, err)
	}
	if endOfDay && len(s) == dateOnlyLen {
		t = t.Add(24*time.Hour - time.Nanosecond)
	}
	return &t, nil
}

func parseColumn(field, s string) (ColumnID, error) {
	col, ok := ParseColumnID(s)
	if !ok {
		return "", fmt.Errorf("%w: unknown column %q for %s", ErrInvalidCriteria, s, field)
	}
	return col, nil
}

func parseColumns(field string, values []string) ([]ColumnID, error) {
	var cols []ColumnID
	for _, v := range nonEmpty(values) {
		col, err := parseColumn(field, v)
		if err != nil {
			return nil, err
		}
		cols = append(cols, col)
	}
	return cols, nil
}

// nonEmpty drops blank values left by inputs like "?category=".
func nonEmpty(values []string) []string {
	var out []string
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			out = append(out, v)
		}
	}
	return out
}
