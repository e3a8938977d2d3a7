package cli

import (
	"net/url"

	"github.com/spf13/cobra"

	"github.com/JonMunkholm/productview/internal/core"
)

// criteriaFlags mirrors the HTTP query parameters of /api/view.
type criteriaFlags struct {
	search        string
	categories    []string
	subcategories []string
	priceMin      string
	priceMax      string
	from          string
	to            string
	sort          string
	dir           string
	groups        []string
	hide          []string
}

func (c *criteriaFlags) register(cmd *cobra.Command) {
	fl := cmd.Flags()
	fl.StringVar(&c.search, "search", "", "case-insensitive name substring")
	fl.StringArrayVar(&c.categories, "category", nil, "allowed category (repeatable)")
	fl.StringArrayVar(&c.subcategories, "subcategory", nil, "allowed subcategory (repeatable)")
	fl.StringVar(&c.priceMin, "price-min", "", "minimum price, inclusive")
	fl.StringVar(&c.priceMax, "price-max", "", "maximum price, inclusive")
	fl.StringVar(&c.from, "from", "", "earliest creation date (ISO-8601)")
	fl.StringVar(&c.to, "to", "", "latest creation date (ISO-8601); a bare date covers the whole day")
	fl.StringVar(&c.sort, "sort", "", "sort column")
	fl.StringVar(&c.dir, "dir", "asc", "sort direction: asc or desc")
	fl.StringArrayVar(&c.groups, "group", nil, "group column in precedence order (repeatable)")
	fl.StringArrayVar(&c.hide, "hide", nil, "column to hide (repeatable)")
}

// criteria validates the flags through the same parser the HTTP API uses.
func (c *criteriaFlags) criteria() (core.CriteriaSet, error) {
	q := url.Values{}
	set := func(key, v string) {
		if v != "" {
			q.Set(key, v)
		}
	}
	set(core.ParamSearch, c.search)
	set(core.ParamPriceMin, c.priceMin)
	set(core.ParamPriceMax, c.priceMax)
	set(core.ParamFrom, c.from)
	set(core.ParamTo, c.to)
	set(core.ParamSort, c.sort)
	set(core.ParamDir, c.dir)
	q[core.ParamCategory] = c.categories
	q[core.ParamSubcategory] = c.subcategories
	q[core.ParamGroup] = c.groups
	q[core.ParamHide] = c.hide

	return core.ParseCriteriaParams(q)
}
