package render_test

import (
	"strings"
	"testing"

	"github.com/tobsdb/tablekit/internal/builder"
	"github.com/tobsdb/tablekit/internal/dataset"
	. "github.com/tobsdb/tablekit/internal/render"
	"github.com/tobsdb/tablekit/internal/types"
	"gotest.tools/assert"
	is "gotest.tools/assert/cmp"
)

func snapshot() *dataset.Snapshot {
	return &dataset.Snapshot{
		Name:   "employees",
		Status: types.FetchStatusSuccess,
		Columns: []builder.ColumnInfo{
			{ID: "name", Title: "Name", Visible: true},
			{ID: "role", Title: "Role", Visible: true},
		},
		Visible: []string{"name", "role"},
		Rows: []dataset.ViewRow{
			{ID: "1", Cells: []string{"Ahmed", "Admin"}, Selected: true},
			{ID: "2", Cells: []string{"Sara", "Staff"}},
		},
		Total: 1234, PageCount: 124, PageIndex: 0, PageSize: 10, From: 1, To: 10,
		Sort:     builder.SortState{ColumnID: "name", Direction: types.SortDesc},
		Selected: 1,
		Features: dataset.Features{RowSelection: true, Pagination: true},
		Toolbar:  dataset.Toolbar{SearchPlaceholder: "Search Name..."},
		Filters:  []dataset.ActiveFilter{},
	}
}

func TestRender(t *testing.T) {
	t.Run("rows", func(t *testing.T) {
		b := &strings.Builder{}
		assert.NilError(t, Render(b, snapshot()))
		out := b.String()
		assert.Assert(t, is.Contains(out, "[Search Name...]"))
		assert.Assert(t, is.Contains(out, "Name ↓"))
		assert.Assert(t, is.Contains(out, "Ahmed"))
		assert.Assert(t, is.Contains(out, "[x]"))
		assert.Assert(t, is.Contains(out, "Page 1 of 124 · rows 1–10 of 1,234 · 10 per page"))
		assert.Assert(t, is.Contains(out, "1 of 1,234 row(s) selected."))
	})

	t.Run("empty", func(t *testing.T) {
		s := snapshot()
		s.Rows, s.Total, s.PageCount, s.From, s.To = []dataset.ViewRow{}, 0, 0, 0, 0
		b := &strings.Builder{}
		assert.NilError(t, Render(b, s))
		assert.Assert(t, is.Contains(b.String(), EMPTY_MESSAGE))
		assert.Assert(t, is.Contains(b.String(), "Page 0 of 0"))
	})

	t.Run("loading", func(t *testing.T) {
		s := snapshot()
		s.Status, s.Rows = types.FetchStatusLoading, []dataset.ViewRow{}
		b := &strings.Builder{}
		assert.NilError(t, Render(b, s))
		assert.Equal(t, strings.Count(b.String(), SKELETON_CELL), 10*2)
	})

	t.Run("error", func(t *testing.T) {
		s := snapshot()
		s.Status = types.FetchStatusError
		b := &strings.Builder{}
		assert.NilError(t, Render(b, s))
		assert.Equal(t, b.String(), ERROR_MESSAGE+"\n")
	})
}

func TestToolbar(t *testing.T) {
	s := snapshot()
	min, max := 10.0, 50.5
	s.GlobalFilter = "ahmed"
	s.Filters = []dataset.ActiveFilter{
		{ID: "role", Title: "Role", Value: []string{"Admin", "Staff"}},
		{ID: "votes", Title: "Votes", Value: []*float64{&min, &max}},
		{ID: "since", Title: "Since", Value: []*string{nil, nil}},
	}
	s.Toolbar.ShowReset = true
	assert.Equal(t, Toolbar(s), "[ahmed]  Role: Admin, Staff  Votes: 10 – 50.5  Since: … – …  [Reset]")
}
