package dataset

import (
	"strings"

	"github.com/tobsdb/tablekit/internal/builder"
	"github.com/tobsdb/tablekit/internal/query"
	"github.com/tobsdb/tablekit/internal/types"
)

type ViewRow struct {
	ID       builder.RowID `json:"id"`
	Cells    []string      `json:"cells"`
	Selected bool          `json:"selected"`
	Pending  bool          `json:"pending"`
}

type ActiveFilter struct {
	ID    string `json:"id"`
	Title string `json:"title"`
	Value any    `json:"value"`
}

type Features struct {
	RowSelection     bool `json:"rowSelection"`
	ColumnVisibility bool `json:"columnVisibility"`
	Pagination       bool `json:"pagination"`
	Export           bool `json:"export"`
}

type Toolbar struct {
	SearchPlaceholder string                      `json:"searchPlaceholder"`
	Searchable        []builder.SearchableColumn  `json:"searchable"`
	Filterable        []builder.FilterableColumn  `json:"filterable"`
	Ranges            []builder.RangeFilterColumn `json:"ranges"`
	PageSizes         []int                       `json:"pageSizes"`
	ShowReset         bool                        `json:"showReset"`
}

// Snapshot is a rendered view of a dataset, free of its row type.
type Snapshot struct {
	Name   string            `json:"name"`
	Key    string            `json:"key"`
	Status types.FetchStatus `json:"status"`
	Error  string            `json:"error,omitempty"`

	Columns []builder.ColumnInfo `json:"columns"`
	// ids of the visible columns, in order. Rows carry one cell per entry.
	Visible []string  `json:"visible"`
	Rows    []ViewRow `json:"rows"`

	Total     int `json:"total"`
	PageCount int `json:"pageCount"`
	PageIndex int `json:"pageIndex"`
	PageSize  int `json:"pageSize"`
	// 1 based, 0 when there are no rows
	From int `json:"from"`
	To   int `json:"to"`

	GlobalFilter string            `json:"globalFilter"`
	Filters      []ActiveFilter    `json:"filters"`
	Sort         builder.SortState `json:"sort"`
	Selected     int               `json:"selected"`
	Pending      int               `json:"pending"`

	Features    Features `json:"features"`
	Toolbar     Toolbar  `json:"toolbar"`
	ExportError string   `json:"exportError,omitempty"`
}

func (s *Snapshot) Loading() bool { return s.Status == types.FetchStatusLoading }
func (s *Snapshot) Failed() bool  { return s.Status == types.FetchStatusError }

// View derives the current page. While loading or after a failed fetch it
// keeps the full chrome but carries no rows.
func (d *Dataset[R]) View() Snapshot {
	d.locker.Lock()
	defer d.locker.Unlock()

	t := d.table
	entry := d.cache.Current()
	res := query.Derive(t)

	s := Snapshot{
		Name:         d.name,
		Key:          entry.Key,
		Status:       entry.Status,
		Columns:      t.ColumnInfos(),
		Visible:      make([]string, len(res.Columns)),
		Rows:         []ViewRow{},
		GlobalFilter: t.State.GlobalFilter,
		Filters:      []ActiveFilter{},
		Sort:         t.State.Sort,
		Selected:     len(t.State.Selection),
		Pending:      d.overlay.Len(),
		Features: Features{
			t.Options.EnableRowSelection, t.Options.EnableColumnVisibility,
			t.Options.EnablePagination, t.Options.EnableExport,
		},
		Toolbar: Toolbar{
			SearchPlaceholder: searchPlaceholder(t.Options.SearchableColumns),
			Searchable:        t.Options.SearchableColumns,
			Filterable:        t.Options.FilterableColumns,
			Ranges:            t.Options.RangeFilterColumns,
			PageSizes:         t.Options.PaginationSizes,
			ShowReset:         t.IsFiltered(),
		},
	}
	if entry.Err != nil {
		s.Error = entry.Err.Error()
	}
	if d.export_err != nil {
		s.ExportError = d.export_err.Error()
	}
	for i, col := range res.Columns {
		s.Visible[i] = col.ID
	}
	for _, id := range t.State.Filters.Sorted {
		col := t.Columns.Get(id)
		s.Filters = append(s.Filters, ActiveFilter{id, col.Label(), builder.FilterJSON(t.State.Filters.Get(id))})
	}

	s.PageIndex, s.PageSize = res.PageIndex, res.PageSize
	if s.Loading() || s.Failed() {
		return s
	}

	s.Total, s.PageCount = res.Total, res.PageCount
	if res.Window.Len() > 0 {
		s.From, s.To = res.Window.Start+1, res.Window.End
	}
	for _, row := range res.Rows {
		cells := make([]string, len(res.Columns))
		for i, col := range res.Columns {
			value := col.Value(row.Original)
			if col.Format != nil {
				cells[i] = col.Format(value)
			} else {
				cells[i] = query.Stringify(col, value)
			}
		}
		s.Rows = append(s.Rows, ViewRow{row.ID, cells, t.IsSelected(row.ID), d.overlay.Has(row.ID)})
	}
	return s
}

func searchPlaceholder(columns []builder.SearchableColumn) string {
	if len(columns) == 0 {
		return "Search..."
	}
	titles := make([]string, len(columns))
	for i, c := range columns {
		titles[i] = c.Title
	}
	return "Search " + strings.Join(titles, ", ") + "..."
}
