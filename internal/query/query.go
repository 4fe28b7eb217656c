package query

import (
	"slices"

	"github.com/tobsdb/tablekit/internal/builder"
	"github.com/tobsdb/tablekit/internal/paging"
	"github.com/tobsdb/tablekit/pkg"
)

type Result[R any] struct {
	// rows on the current page
	Rows []builder.Row[R]
	// every row passing the filters in sorted order, used by export
	Filtered []builder.Row[R]

	Total     int
	PageCount int
	PageIndex int
	PageSize  int
	Window    paging.Window

	Columns []*builder.Column[R]
}

// FilterRows keeps the rows passing every filter. Filters on unknown columns are ignored.
func FilterRows[R any](t *builder.Table[R], rows []builder.Row[R], filters *pkg.InsertSortMap[string, builder.Filter]) []builder.Row[R] {
	found := rows
	if filters == nil {
		return slices.Clone(found)
	}
	for _, id := range filters.Sorted {
		col := t.Columns.Get(id)
		f := filters.Get(id)
		if col == nil || f == nil || f.IsEmpty() {
			continue
		}
		found = pkg.Filter(found, func(row builder.Row[R]) bool {
			return MatchFilter(col, col.Value(row.Original), f)
		})
	}
	if len(found) == len(rows) {
		return slices.Clone(rows)
	}
	return found
}

func GlobalFilterRows[R any](t *builder.Table[R], rows []builder.Row[R], text string) []builder.Row[R] {
	if text == "" {
		return slices.Clone(rows)
	}
	columns := t.Columns.Values()
	return pkg.Filter(rows, func(row builder.Row[R]) bool {
		return MatchGlobal(columns, row.Original, text)
	})
}

// SortRows returns a stably sorted copy of rows. nil values go last in both directions.
func SortRows[R any](t *builder.Table[R], rows []builder.Row[R], s builder.SortState) []builder.Row[R] {
	sorted := slices.Clone(rows)
	if !s.IsSet() {
		return sorted
	}
	col := t.Columns.Get(s.ColumnID)
	if col == nil || !col.Sortable() {
		return sorted
	}

	cmp := CompareValues
	if col.Compare != nil {
		cmp = col.Compare
	}
	desc := s.Direction.Desc()
	slices.SortStableFunc(sorted, func(a, b builder.Row[R]) int {
		av, bv := col.Value(a.Original), col.Value(b.Original)
		a_nil, b_nil := isNil(av), isNil(bv)
		switch {
		case a_nil && b_nil:
			return 0
		case a_nil:
			return 1
		case b_nil:
			return -1
		}
		c := cmp(av, bv)
		if desc {
			return -c
		}
		return c
	})
	return sorted
}

// PaginateRows returns the page at index after clamping it into range, and the clamped index.
func PaginateRows[R any](rows []builder.Row[R], index, size int) ([]builder.Row[R], int) {
	index = paging.Clamp(index, len(rows), size)
	return paging.Slice(rows, index, size), index
}

// Derive runs the filter, global filter, sort and paginate pipeline over
// the table. The clamped page index is written back to the table state.
func Derive[R any](t *builder.Table[R]) Result[R] {
	rows := t.Rows.All()
	rows = FilterRows(t, rows, t.State.Filters)
	rows = GlobalFilterRows(t, rows, t.State.GlobalFilter)
	rows = SortRows(t, rows, t.State.Sort)

	res := Result[R]{
		Filtered: rows,
		Total:    len(rows),
		Columns:  t.VisibleColumns(),
	}

	if !t.Options.EnablePagination {
		res.Rows = rows
		res.PageSize = len(rows)
		res.Window = paging.Window{Start: 0, End: len(rows)}
		if len(rows) > 0 {
			res.PageCount = 1
		}
		return res
	}

	p := &t.State.Pagination
	res.Rows, p.PageIndex = PaginateRows(rows, p.PageIndex, p.PageSize)
	res.PageIndex = p.PageIndex
	res.PageSize = p.PageSize
	res.PageCount = paging.PageCount(len(rows), p.PageSize)
	res.Window = paging.PageWindow(p.PageIndex, len(rows), p.PageSize)
	return res
}
