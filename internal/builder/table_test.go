package builder_test

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/pkg/errors"
	. "github.com/tobsdb/tablekit/internal/builder"
	"github.com/tobsdb/tablekit/internal/types"
	"gotest.tools/assert"
)

func testColumns() []Column[testRow] {
	return []Column[testRow]{
		{ID: "name", Title: "Name", Accessor: func(r testRow) any { return r.Name }},
		{ID: "weight", Title: "Weight", Accessor: func(r testRow) any { return r.Weight }},
		{ID: "key", Title: "Key", Accessor: func(r testRow) any { return r.Key }, Hidden: true},
		{ID: "actions"},
	}
}

func newTestTable(t *testing.T, opts Options) *Table[testRow] {
	opts.RangeFilterColumns = []RangeFilterColumn{{ID: "weight", Title: "Weight", Min: 0, Max: 100}}
	table, err := NewTable("test", testColumns(), opts)
	assert.NilError(t, err)
	table.Load(newTestData(), testRowID)
	return table
}

func TestNewTable(t *testing.T) {
	t.Run("Duplicate column", func(t *testing.T) {
		cols := append(testColumns(), Column[testRow]{ID: "name"})
		_, err := NewTable("test", cols, DefaultOptions())
		assert.Assert(t, errors.Is(err, ErrDuplicateColumn))
	})

	t.Run("Unknown option column", func(t *testing.T) {
		opts := DefaultOptions()
		opts.SearchableColumns = []SearchableColumn{{ID: "nope"}}
		_, err := NewTable("test", testColumns(), opts)
		assert.Assert(t, errors.Is(err, ErrUnknownColumn))
	})

	t.Run("Options applied", func(t *testing.T) {
		opts := DefaultOptions()
		opts.FilterableColumns = []FilterableColumn{{ID: "name", Options: []FacetOption{{Label: "A", Value: "a"}}}}
		opts.DefaultSort = &SortState{"weight", types.SortDesc}
		table := newTestTable(t, opts)

		name, _ := table.Column("name")
		assert.Equal(t, name.Kind, types.ColumnKindCategorical)
		assert.Equal(t, len(name.Options), 1)
		weight, _ := table.Column("weight")
		assert.Equal(t, weight.Kind, types.ColumnKindNumericRange)
		assert.Equal(t, *weight.Max, 100.0)
		assert.Equal(t, table.State.Sort, SortState{"weight", types.SortDesc})
		assert.Equal(t, table.State.Pagination, Pagination{0, 10})
	})

	t.Run("Visibility defaults", func(t *testing.T) {
		table := newTestTable(t, DefaultOptions())
		ids := []string{}
		for _, c := range table.VisibleColumns() {
			ids = append(ids, c.ID)
		}
		assert.DeepEqual(t, ids, []string{"name", "weight", "actions"})
	})
}

func TestTableFilters(t *testing.T) {
	t.Run("Kind checked", func(t *testing.T) {
		table := newTestTable(t, DefaultOptions())
		err := table.SetColumnFilter("weight", TextFilter{"x"})
		assert.Assert(t, errors.Is(err, ErrFilterKind))
		err = table.SetColumnFilter("nope", TextFilter{"x"})
		assert.Assert(t, errors.Is(err, ErrUnknownColumn))
	})

	t.Run("Empty filter removes", func(t *testing.T) {
		table := newTestTable(t, DefaultOptions())
		assert.NilError(t, table.SetColumnFilter("name", TextFilter{"a"}))
		assert.Assert(t, table.IsFiltered())
		assert.NilError(t, table.SetColumnFilter("name", TextFilter{}))
		assert.Assert(t, !table.IsFiltered())
	})

	t.Run("Insertion order", func(t *testing.T) {
		table := newTestTable(t, DefaultOptions())
		assert.NilError(t, table.SetColumnFilter("weight", NewRangeFilter(1, 2)))
		assert.NilError(t, table.SetColumnFilter("name", TextFilter{"a"}))
		assert.NilError(t, table.SetColumnFilter("weight", NewRangeFilter(3, 4)))
		assert.DeepEqual(t, table.ActiveFilters(), []string{"weight", "name"})
	})

	t.Run("Reset", func(t *testing.T) {
		table := newTestTable(t, DefaultOptions())
		table.Reset()
		assert.Assert(t, !table.IsFiltered())
		assert.Equal(t, table.State.GlobalFilter, "")

		assert.NilError(t, table.SetColumnFilter("name", TextFilter{"a"}))
		table.SetGlobalFilter("b")
		assert.NilError(t, table.SetSort("weight", types.SortDesc))
		assert.NilError(t, table.SetColumnVisibility("name", false))
		table.Reset()
		assert.Equal(t, table.State.Filters.Len(), 0)
		assert.Equal(t, table.State.GlobalFilter, "")
		assert.Equal(t, table.State.Sort.ColumnID, "weight")
		assert.Assert(t, !table.IsVisible("name"))
	})
}

func TestTableSort(t *testing.T) {
	table := newTestTable(t, DefaultOptions())

	assert.NilError(t, table.ToggleSort("name"))
	assert.Equal(t, table.State.Sort, SortState{"name", types.SortAsc})
	assert.NilError(t, table.ToggleSort("name"))
	assert.Equal(t, table.State.Sort, SortState{"name", types.SortDesc})
	assert.NilError(t, table.ToggleSort("name"))
	assert.Assert(t, !table.State.Sort.IsSet())

	// display only columns are not sortable
	assert.NilError(t, table.ToggleSort("actions"))
	assert.Assert(t, !table.State.Sort.IsSet())
	assert.NilError(t, table.SetSort("actions", types.SortAsc))
	assert.Assert(t, !table.State.Sort.IsSet())
}

func TestTablePagination(t *testing.T) {
	t.Run("Page size", func(t *testing.T) {
		table := newTestTable(t, DefaultOptions())
		assert.Assert(t, errors.Is(table.SetPageSize(7), ErrPageSize))
		assert.NilError(t, table.SetPageIndex(3))
		assert.NilError(t, table.SetPageSize(20))
		assert.Equal(t, table.State.Pagination, Pagination{1, 20})
	})

	t.Run("Disabled", func(t *testing.T) {
		opts := DefaultOptions()
		opts.EnablePagination = false
		table := newTestTable(t, opts)
		assert.Assert(t, errors.Is(table.NextPage(), ErrFeatureDisabled))
	})

	t.Run("Previous page stops at zero", func(t *testing.T) {
		table := newTestTable(t, DefaultOptions())
		assert.NilError(t, table.PreviousPage())
		assert.Equal(t, table.State.Pagination.PageIndex, 0)
	})

	t.Run("Filter resets page", func(t *testing.T) {
		table := newTestTable(t, DefaultOptions())
		assert.NilError(t, table.SetPageIndex(2))
		table.SetGlobalFilter("name")
		assert.Equal(t, table.State.Pagination.PageIndex, 0)
	})
}

func TestTableSelection(t *testing.T) {
	t.Run("Disabled by default", func(t *testing.T) {
		table := newTestTable(t, DefaultOptions())
		assert.Assert(t, errors.Is(table.ToggleRowSelection("r1"), ErrFeatureDisabled))
	})

	opts := DefaultOptions()
	opts.EnableRowSelection = true
	table := newTestTable(t, opts)

	assert.Assert(t, errors.Is(table.ToggleRowSelection("nope"), ErrUnknownRow))
	assert.NilError(t, table.SetRowsSelection([]RowID{"r4", "r1"}, true))
	assert.NilError(t, table.ToggleRowSelection("r2"))
	assert.NilError(t, table.ToggleRowSelection("r4"))

	selected := table.SelectedRows()
	assert.Equal(t, len(selected), 2)
	assert.Equal(t, selected[0].ID, RowID("r1"))
	assert.Equal(t, selected[1].ID, RowID("r2"))

	// reload drops selections of rows that are gone
	table.Load(newTestData()[:2], testRowID)
	assert.Assert(t, table.IsSelected("r1"))
	assert.Assert(t, !table.IsSelected("r2"))

	table.ClearSelection()
	assert.Equal(t, len(table.SelectedRows()), 0)
}

func TestDecodeFilter(t *testing.T) {
	t.Run("Text", func(t *testing.T) {
		f, err := DecodeFilter(types.ColumnKindText, json.RawMessage(`"ahmed"`))
		assert.NilError(t, err)
		assert.Equal(t, f, Filter(TextFilter{"ahmed"}))
	})

	t.Run("Facet", func(t *testing.T) {
		f, err := DecodeFilter(types.ColumnKindCategorical, json.RawMessage(`["Admin","Staff"]`))
		assert.NilError(t, err)
		assert.DeepEqual(t, f.(FacetFilter).Values, []string{"Admin", "Staff"})
		f, err = DecodeFilter(types.ColumnKindCategorical, json.RawMessage(`"Admin"`))
		assert.NilError(t, err)
		assert.DeepEqual(t, f.(FacetFilter).Values, []string{"Admin"})
	})

	t.Run("Range", func(t *testing.T) {
		f, err := DecodeFilter(types.ColumnKindNumericRange, json.RawMessage(`[null, 50]`))
		assert.NilError(t, err)
		r := f.(RangeFilter)
		assert.Assert(t, r.Min == nil)
		assert.Equal(t, *r.Max, 50.0)

		f, err = DecodeFilter(types.ColumnKindNumericRange, json.RawMessage(`{"min": 20}`))
		assert.NilError(t, err)
		assert.Equal(t, *f.(RangeFilter).Min, 20.0)

		_, err = DecodeFilter(types.ColumnKindNumericRange, json.RawMessage(`[1,2,3]`))
		assert.ErrorContains(t, err, "2 bounds")
	})

	t.Run("Date range", func(t *testing.T) {
		f, err := DecodeFilter(types.ColumnKindDateRange, json.RawMessage(`["2024-01-01", null]`))
		assert.NilError(t, err)
		d := f.(DateRangeFilter)
		assert.Equal(t, d.Start.Format(time.DateOnly), "2024-01-01")
		assert.Assert(t, d.End == nil)

		f, err = DecodeFilter(types.ColumnKindDateRange, json.RawMessage(`{"start": "2024-01-01", "end": "June 30, 2024"}`))
		assert.NilError(t, err)
		assert.Equal(t, f.(DateRangeFilter).End.Month(), time.June)

		_, err = DecodeFilter(types.ColumnKindDateRange, json.RawMessage(`["not a date", null]`))
		assert.Assert(t, err != nil)
	})

	t.Run("Null is empty", func(t *testing.T) {
		f, err := DecodeFilter(types.ColumnKindNumericRange, json.RawMessage(`null`))
		assert.NilError(t, err)
		assert.Assert(t, f.IsEmpty())
	})

	t.Run("Bad kind", func(t *testing.T) {
		_, err := DecodeFilter("nope", json.RawMessage(`"x"`))
		assert.Assert(t, errors.Is(err, ErrFilterKind))
	})
}
