package core

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewCriteriaIsNeutral(t *testing.T) {
	c := NewCriteria()

	assert.True(t, c.IsNeutral())
	assert.True(t, c.SortAscending())
	assert.Empty(t, c.GroupBy())
	for _, col := range Columns() {
		assert.True(t, c.ColumnVisible(col.ID), col.ID)
	}
}

func TestCriteriaSettersDoNotMutateReceiver(t *testing.T) {
	base := NewCriteria().WithCategories("Tools")

	_ = base.WithCategories("Toys")
	_ = base.WithSearch("x")
	_ = base.WithGroupBy(ColCategory)
	_ = base.WithColumnVisible(ColName, false)
	_ = base.WithSort(ColPrice, false)

	assert.Equal(t, []string{"Tools"}, base.Categories())
	assert.Empty(t, base.Search())
	assert.Empty(t, base.GroupBy())
	assert.True(t, base.ColumnVisible(ColName))
	assert.Equal(t, ColumnID(""), base.SortKey())
	assert.True(t, base.SortAscending())
}

func TestWithGroupByDropsRepeats(t *testing.T) {
	c := NewCriteria().WithGroupBy(ColCategory, ColSubcategory, ColCategory)

	assert.Equal(t, []ColumnID{ColCategory, ColSubcategory}, c.GroupBy())
}

func TestToggleColumn(t *testing.T) {
	c := NewCriteria().ToggleColumn(ColSalePrice)
	assert.False(t, c.ColumnVisible(ColSalePrice))

	c = c.ToggleColumn(ColSalePrice)
	assert.True(t, c.ColumnVisible(ColSalePrice))
}

func TestWithColumnVisibilityDefaultsMissingToVisible(t *testing.T) {
	c := NewCriteria().
		WithColumnVisible(ColName, false).
		WithColumnVisibility(map[ColumnID]bool{ColPrice: false})

	vis := c.Visibility()
	assert.False(t, vis[ColPrice])
	assert.True(t, vis[ColName])
	assert.Len(t, vis, len(Columns()))
}

func TestSortKeyAndDirectionSetIndependently(t *testing.T) {
	c := NewCriteria().WithSortAscending(false).WithSortKey(ColName)

	assert.Equal(t, ColName, c.SortKey())
	assert.False(t, c.SortAscending())
}

func TestReset(t *testing.T) {
	c := NewCriteria().
		WithSearch("widget").
		WithCategories("Tools").
		WithGroupBy(ColCategory).
		WithPriceRange(NewPriceRange(decimal.Zero, decimal.NewFromInt(10))).
		WithColumnVisible(ColID, false)

	require.False(t, c.IsNeutral())

	r := c.Reset()
	assert.True(t, r.IsNeutral())
	assert.True(t, r.ColumnVisible(ColID))
}

func TestCriteriaJSONRoundTrip(t *testing.T) {
	start := mustTime(t, "2024-01-01T00:00:00Z")
	c := NewCriteria().
		WithSearch("wid").
		WithCategories("Tools", "Toys").
		WithGroupBy(ColCategory).
		WithSort(ColPrice, false).
		WithPriceRange(PriceRange{Max: decimal.NewNullDecimal(decimal.RequireFromString("99.5"))}).
		WithDateRange(DateRange{Start: &start}).
		WithColumnVisible(ColUpdatedAt, false)

	data, err := json.Marshal(c)
	require.NoError(t, err)

	var got CriteriaSet
	require.NoError(t, json.Unmarshal(data, &got))

	assert.Equal(t, c.Search(), got.Search())
	assert.Equal(t, c.Categories(), got.Categories())
	assert.Equal(t, c.GroupBy(), got.GroupBy())
	assert.Equal(t, c.SortKey(), got.SortKey())
	assert.Equal(t, c.SortAscending(), got.SortAscending())
	assert.False(t, got.PriceRange().Min.Valid)
	assert.True(t, got.PriceRange().Max.Decimal.Equal(decimal.RequireFromString("99.5")))
	require.NotNil(t, got.DateRange().Start)
	assert.True(t, got.DateRange().Start.Equal(start))
	assert.Nil(t, got.DateRange().End)
	assert.False(t, got.ColumnVisible(ColUpdatedAt))
}

func TestCriteriaUnmarshalDefaults(t *testing.T) {
	var c CriteriaSet
	require.NoError(t, json.Unmarshal([]byte(`{"searchTerm":"gad"}`), &c))

	assert.Equal(t, "gad", c.Search())
	assert.True(t, c.SortAscending())
	assert.True(t, c.ColumnVisible(ColName))
}
