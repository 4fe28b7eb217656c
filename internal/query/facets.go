package query

import (
	"slices"

	"github.com/pkg/errors"
	"github.com/tobsdb/tablekit/internal/builder"
	"github.com/tobsdb/tablekit/internal/types"
	"github.com/tobsdb/tablekit/pkg"
)

type FacetCount struct {
	Label string `json:"label"`
	Value string `json:"value"`
	Count int    `json:"count"`
}

// Facets counts the values of a categorical column over the rows that pass
// every other filter and the global filter. Configured options come first,
// in their order, followed by any other values.
func Facets[R any](t *builder.Table[R], id string) ([]FacetCount, error) {
	col, err := t.Column(id)
	if err != nil {
		return nil, err
	}
	if col.Kind != types.ColumnKindCategorical {
		return nil, errors.Wrapf(builder.ErrFilterKind, "column %q is %s", id, col.Kind)
	}

	others := pkg.NewInsertSortMap[string, builder.Filter]()
	for _, f_id := range t.State.Filters.Sorted {
		if f_id != id {
			others.Push(f_id, t.State.Filters.Get(f_id))
		}
	}
	rows := FilterRows(t, t.Rows.All(), others)
	rows = GlobalFilterRows(t, rows, t.State.GlobalFilter)

	counts := pkg.Map[string, int]{}
	for _, row := range rows {
		counts[Stringify(col, col.Value(row.Original))]++
	}

	facets := make([]FacetCount, 0, len(counts))
	seen := pkg.Map[string, bool]{}
	for _, opt := range col.Options {
		facets = append(facets, FacetCount{opt.Label, opt.Value, counts.Get(opt.Value)})
		seen.Set(opt.Value, true)
	}
	rest := pkg.Filter(counts.Keys(), func(v string) bool { return !seen.Has(v) })
	slices.SortFunc(rest, NaturalCompare)
	for _, v := range rest {
		facets = append(facets, FacetCount{v, v, counts.Get(v)})
	}
	return facets, nil
}
