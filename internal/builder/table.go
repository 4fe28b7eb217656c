package builder

import (
	"sync"

	"github.com/pkg/errors"
	"github.com/tobsdb/tablekit/internal/paging"
	"github.com/tobsdb/tablekit/internal/types"
	"github.com/tobsdb/tablekit/pkg"
)

// Table owns the rows, columns and state of one dataset view.
type Table[R any] struct {
	locker sync.RWMutex

	Name    string
	Columns *pkg.InsertSortMap[string, *Column[R]]
	Options Options
	Rows    *Rows[R]
	State   *State
}

func NewTable[R any](name string, columns []Column[R], options Options) (*Table[R], error) {
	t := &Table[R]{
		Name:    name,
		Columns: pkg.NewInsertSortMap[string, *Column[R]](),
		Options: options,
		Rows:    NewRows[R](),
		State:   NewState(),
	}

	for i := range columns {
		col := columns[i]
		if col.ID == "" {
			return nil, errors.Errorf("column %d has no id", i)
		}
		if t.Columns.Has(col.ID) {
			return nil, errors.Wrapf(ErrDuplicateColumn, "%q", col.ID)
		}
		if col.Kind == "" {
			col.Kind = types.ColumnKindText
		}
		t.Columns.Push(col.ID, &col)
		t.State.Visibility.Set(col.ID, col.Visible())
	}

	for _, s := range options.SearchableColumns {
		if !t.Columns.Has(s.ID) {
			return nil, errors.Wrapf(ErrUnknownColumn, "searchable column %q", s.ID)
		}
	}
	for _, f := range options.FilterableColumns {
		col := t.Columns.Get(f.ID)
		if col == nil {
			return nil, errors.Wrapf(ErrUnknownColumn, "filterable column %q", f.ID)
		}
		col.Kind = types.ColumnKindCategorical
		col.Options = f.Options
	}
	for _, r := range options.RangeFilterColumns {
		col := t.Columns.Get(r.ID)
		if col == nil {
			return nil, errors.Wrapf(ErrUnknownColumn, "range filter column %q", r.ID)
		}
		min, max := r.Min, r.Max
		col.Kind = types.ColumnKindNumericRange
		col.Min, col.Max = &min, &max
	}

	if len(t.Options.PaginationSizes) == 0 {
		t.Options.PaginationSizes = DefaultOptions().PaginationSizes
	}
	t.State.Pagination = Pagination{0, t.Options.DefaultPageSize()}

	if s := options.DefaultSort; s != nil && s.IsSet() {
		col := t.Columns.Get(s.ColumnID)
		if col == nil {
			return nil, errors.Wrapf(ErrUnknownColumn, "default sort %q", s.ColumnID)
		}
		if col.Sortable() {
			t.State.Sort = *s
		}
	}
	return t, nil
}

func (t *Table[R]) GetLocker() *sync.RWMutex { return &t.locker }

func (t *Table[R]) Column(id string) (*Column[R], error) {
	col := t.Columns.Get(id)
	if col == nil {
		return nil, errors.Wrapf(ErrUnknownColumn, "%q", id)
	}
	return col, nil
}

// Load replaces the row set. Selections of rows that no longer exist are dropped.
func (t *Table[R]) Load(data []R, id_fn func(R) string) {
	t.Rows.Load(data, id_fn)
	for _, id := range t.State.Selection.Keys() {
		if !t.Rows.Has(id) {
			t.State.Selection.Delete(id)
		}
	}
}

// SetColumnFilter activates a filter, an empty filter removes it.
func (t *Table[R]) SetColumnFilter(id string, f Filter) error {
	col, err := t.Column(id)
	if err != nil {
		return err
	}
	if f == nil || f.IsEmpty() {
		t.State.Filters.Delete(id)
		t.State.Pagination.PageIndex = 0
		return nil
	}
	if f.Kind() != col.Kind {
		return errors.Wrapf(ErrFilterKind, "column %q is %s, got %s filter", id, col.Kind, f.Kind())
	}
	t.State.Filters.Set(id, f)
	t.State.Pagination.PageIndex = 0
	return nil
}

func (t *Table[R]) ClearColumnFilter(id string) error {
	if _, err := t.Column(id); err != nil {
		return err
	}
	t.State.Filters.Delete(id)
	return nil
}

func (t *Table[R]) SetGlobalFilter(text string) {
	if t.State.GlobalFilter != text {
		t.State.Pagination.PageIndex = 0
	}
	t.State.GlobalFilter = text
}

// Reset clears the column filters and the global filter. Sort, visibility
// and pagination are kept.
func (t *Table[R]) Reset() {
	if t.IsFiltered() {
		t.State.Pagination.PageIndex = 0
	}
	t.State.Filters.Clear()
	t.State.GlobalFilter = ""
}

func (t *Table[R]) IsFiltered() bool {
	return t.State.Filters.Len() > 0 || t.State.GlobalFilter != ""
}

// ActiveFilters returns the active column filters in the order they were applied.
func (t *Table[R]) ActiveFilters() []string {
	return append([]string{}, t.State.Filters.Sorted...)
}

func (t *Table[R]) SetSort(id string, dir types.SortDirection) error {
	col, err := t.Column(id)
	if err != nil {
		return err
	}
	if !col.Sortable() {
		return nil
	}
	t.State.Sort = SortState{id, dir}
	return nil
}

// ToggleSort cycles a column through asc, desc and unsorted.
func (t *Table[R]) ToggleSort(id string) error {
	col, err := t.Column(id)
	if err != nil {
		return err
	}
	if !col.Sortable() {
		return nil
	}
	switch {
	case t.State.Sort.ColumnID != id:
		t.State.Sort = SortState{id, types.SortAsc}
	case t.State.Sort.Direction.Desc():
		t.State.Sort = SortState{}
	default:
		t.State.Sort = SortState{id, types.SortDesc}
	}
	return nil
}

func (t *Table[R]) ClearSort() { t.State.Sort = SortState{} }

// SetPageIndex stores the index as is, it is clamped when the view is derived.
func (t *Table[R]) SetPageIndex(index int) error {
	if !t.Options.EnablePagination {
		return errors.Wrap(ErrFeatureDisabled, "pagination")
	}
	if index < 0 {
		index = 0
	}
	t.State.Pagination.PageIndex = index
	return nil
}

// SetPageSize changes the page size keeping the first row of the current page in view.
func (t *Table[R]) SetPageSize(size int) error {
	if !t.Options.EnablePagination {
		return errors.Wrap(ErrFeatureDisabled, "pagination")
	}
	if !t.Options.PageSizeAllowed(size) {
		return errors.Wrapf(ErrPageSize, "%d not in %v", size, t.Options.PaginationSizes)
	}
	p := &t.State.Pagination
	p.PageIndex = paging.Reanchor(p.PageIndex, p.PageSize, size)
	p.PageSize = size
	return nil
}

func (t *Table[R]) NextPage() error {
	return t.SetPageIndex(t.State.Pagination.PageIndex + 1)
}

func (t *Table[R]) PreviousPage() error {
	return t.SetPageIndex(t.State.Pagination.PageIndex - 1)
}

func (t *Table[R]) SetColumnVisibility(id string, visible bool) error {
	if !t.Options.EnableColumnVisibility {
		return errors.Wrap(ErrFeatureDisabled, "column visibility")
	}
	if _, err := t.Column(id); err != nil {
		return err
	}
	t.State.Visibility.Set(id, visible)
	return nil
}

func (t *Table[R]) ToggleColumnVisibility(id string) error {
	if _, err := t.Column(id); err != nil {
		return err
	}
	return t.SetColumnVisibility(id, !t.IsVisible(id))
}

func (t *Table[R]) IsVisible(id string) bool {
	if !t.State.Visibility.Has(id) {
		col := t.Columns.Get(id)
		return col != nil && col.Visible()
	}
	return t.State.Visibility.Get(id)
}

// VisibleColumns returns the visible columns in their configured order.
func (t *Table[R]) VisibleColumns() []*Column[R] {
	return pkg.Filter(t.Columns.Values(), func(c *Column[R]) bool {
		return t.IsVisible(c.ID)
	})
}

func (t *Table[R]) ColumnInfos() []ColumnInfo {
	infos := make([]ColumnInfo, 0, t.Columns.Len())
	for _, col := range t.Columns.Values() {
		infos = append(infos, col.Info(t.IsVisible(col.ID)))
	}
	return infos
}

func (t *Table[R]) ToggleRowSelection(id RowID) error {
	if !t.Options.EnableRowSelection {
		return errors.Wrap(ErrFeatureDisabled, "row selection")
	}
	if !t.Rows.Has(id) {
		return errors.Wrapf(ErrUnknownRow, "%q", id)
	}
	if t.State.Selection.Get(id) {
		t.State.Selection.Delete(id)
	} else {
		t.State.Selection.Set(id, true)
	}
	return nil
}

// SetRowsSelection selects or deselects every given row, as the header
// checkbox does for the current page.
func (t *Table[R]) SetRowsSelection(ids []RowID, selected bool) error {
	if !t.Options.EnableRowSelection {
		return errors.Wrap(ErrFeatureDisabled, "row selection")
	}
	for _, id := range ids {
		if !t.Rows.Has(id) {
			return errors.Wrapf(ErrUnknownRow, "%q", id)
		}
	}
	for _, id := range ids {
		if selected {
			t.State.Selection.Set(id, true)
		} else {
			t.State.Selection.Delete(id)
		}
	}
	return nil
}

func (t *Table[R]) ClearSelection() {
	t.State.Selection = pkg.Map[RowID, bool]{}
}

func (t *Table[R]) IsSelected(id RowID) bool { return t.State.Selection.Get(id) }

// SelectedRows returns the selected rows in original order.
func (t *Table[R]) SelectedRows() []Row[R] {
	return pkg.Filter(t.Rows.All(), func(r Row[R]) bool {
		return t.State.Selection.Get(r.ID)
	})
}
