package dataset

import (
	"context"
	"encoding/json"
	"io"
	"sync"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/tobsdb/tablekit/internal/builder"
	"github.com/tobsdb/tablekit/internal/cache"
	"github.com/tobsdb/tablekit/internal/export"
	"github.com/tobsdb/tablekit/internal/query"
	"github.com/tobsdb/tablekit/internal/transaction"
	"github.com/tobsdb/tablekit/internal/types"
	"github.com/tobsdb/tablekit/pkg"
)

// Fetcher resolves a query key to the function fetching its rows.
type Fetcher[R any] func(key string) (cache.FetchFunc[R], error)

type Config[R any] struct {
	Name    string
	Key     string
	Columns []builder.Column[R]
	Options builder.Options
	// stable row identity, required so edits survive refetches
	IDFunc  func(R) string
	Fetcher Fetcher[R]
}

// Dataset is one table instance: its rows, state, fetch cache and pending edits.
type Dataset[R any] struct {
	locker sync.RWMutex

	name    string
	id_fn   func(R) string
	fetcher Fetcher[R]

	table   *builder.Table[R]
	cache   *cache.Cache[R]
	overlay *transaction.Overlay[R]

	export_err error
	listeners  []func()
}

func New[R any](cfg Config[R]) (*Dataset[R], error) {
	if cfg.IDFunc == nil {
		return nil, errors.Errorf("dataset %s has no id func", cfg.Name)
	}
	if cfg.Fetcher == nil {
		return nil, errors.Errorf("dataset %s has no fetcher", cfg.Name)
	}
	table, err := builder.NewTable(cfg.Name, cfg.Columns, cfg.Options)
	if err != nil {
		return nil, errors.Wrapf(err, "dataset %s", cfg.Name)
	}
	key := cfg.Key
	if key == "" {
		key = cfg.Name
	}
	return &Dataset[R]{
		name:    cfg.Name,
		id_fn:   cfg.IDFunc,
		fetcher: cfg.Fetcher,
		table:   table,
		cache:   cache.New[R](key),
		overlay: transaction.NewOverlay(cfg.IDFunc),
	}, nil
}

func (d *Dataset[R]) GetLocker() *sync.RWMutex { return &d.locker }

func (d *Dataset[R]) Name() string { return d.name }

func (d *Dataset[R]) Key() string { return d.cache.Bound() }

// Table is the underlying table. Callers must hold the dataset lock while using it.
func (d *Dataset[R]) Table() *builder.Table[R] { return d.table }

// OnChange registers fn to be called after every fetch that changed the shown data.
func (d *Dataset[R]) OnChange(fn func()) {
	pkg.LockWrap(d, func() { d.listeners = append(d.listeners, fn) })
}

func (d *Dataset[R]) notify() {
	d.locker.RLock()
	listeners := append([]func(){}, d.listeners...)
	d.locker.RUnlock()
	for _, fn := range listeners {
		fn()
	}
}

func (d *Dataset[R]) log() *logrus.Entry {
	return pkg.LogFields(logrus.Fields{"dataset": d.name, "key": d.cache.Bound()})
}

// sync reloads the table from the bound entry with pending edits merged in.
func (d *Dataset[R]) sync() {
	entry := d.cache.Current()
	d.table.Load(d.overlay.Apply(entry.Data), d.id_fn)
}

// Refresh fetches the bound key. A result superseded by a newer request or
// a rebind is dropped and reported as cache.ErrSuperseded.
func (d *Dataset[R]) Refresh(ctx context.Context) error {
	key := d.cache.Bound()
	fetch, err := d.fetcher(key)
	if err != nil {
		return err
	}
	d.notify()

	_, err = d.cache.Fetch(ctx, key, fetch)
	if errors.Is(err, cache.ErrSuperseded) {
		return err
	}
	pkg.LockWrap(d, d.sync)
	d.notify()
	if err != nil {
		d.log().Warn("refresh failed: ", err)
	}
	return err
}

// RefreshIfNeeded fetches only when the bound entry is missing, stale or failed.
func (d *Dataset[R]) RefreshIfNeeded(ctx context.Context) error {
	if !d.cache.NeedsFetch(d.cache.Bound()) {
		return nil
	}
	return d.Refresh(ctx)
}

// Rebind points the dataset at another query key. Pending edits belong to
// the old key and are dropped. Returns true if the new key has to be fetched.
func (d *Dataset[R]) Rebind(key string) (bool, error) {
	if _, err := d.fetcher(key); err != nil {
		return false, err
	}
	pkg.LockWrap(d, func() {
		d.cache.Bind(key)
		d.overlay.Clear()
		d.sync()
	})
	return d.cache.NeedsFetch(key), nil
}

// Invalidate marks the bound key stale so the next RefreshIfNeeded fetches it.
func (d *Dataset[R]) Invalidate() { d.cache.Invalidate(d.cache.Bound()) }

func (d *Dataset[R]) Status() types.FetchStatus { return d.cache.Current().Status }

func (d *Dataset[R]) SetGlobalFilter(text string) {
	pkg.LockWrap(d, func() { d.table.SetGlobalFilter(text) })
}

func (d *Dataset[R]) SetColumnFilter(id string, raw json.RawMessage) error {
	return pkg.LockWrapErr(d, func() error {
		col, err := d.table.Column(id)
		if err != nil {
			return err
		}
		f, err := builder.DecodeFilter(col.Kind, raw)
		if err != nil {
			return errors.Wrap(builder.ErrFilterKind, err.Error())
		}
		return d.table.SetColumnFilter(id, f)
	})
}

func (d *Dataset[R]) ClearColumnFilter(id string) error {
	return pkg.LockWrapErr(d, func() error { return d.table.ClearColumnFilter(id) })
}

func (d *Dataset[R]) Reset() { pkg.LockWrap(d, d.table.Reset) }

func (d *Dataset[R]) SetSort(id string, dir types.SortDirection) error {
	return pkg.LockWrapErr(d, func() error { return d.table.SetSort(id, dir) })
}

func (d *Dataset[R]) ToggleSort(id string) error {
	return pkg.LockWrapErr(d, func() error { return d.table.ToggleSort(id) })
}

func (d *Dataset[R]) ClearSort() { pkg.LockWrap(d, d.table.ClearSort) }

func (d *Dataset[R]) SetPageIndex(index int) error {
	return pkg.LockWrapErr(d, func() error { return d.table.SetPageIndex(index) })
}

func (d *Dataset[R]) SetPageSize(size int) error {
	return pkg.LockWrapErr(d, func() error { return d.table.SetPageSize(size) })
}

func (d *Dataset[R]) NextPage() error {
	return pkg.LockWrapErr(d, func() error {
		// clamp first so repeated presses on the last page do not run ahead
		query.Derive(d.table)
		return d.table.NextPage()
	})
}

func (d *Dataset[R]) PreviousPage() error {
	return pkg.LockWrapErr(d, func() error {
		query.Derive(d.table)
		return d.table.PreviousPage()
	})
}

func (d *Dataset[R]) ToggleColumn(id string) error {
	return pkg.LockWrapErr(d, func() error { return d.table.ToggleColumnVisibility(id) })
}

func (d *Dataset[R]) ToggleRow(id builder.RowID) error {
	return pkg.LockWrapErr(d, func() error { return d.table.ToggleRowSelection(id) })
}

// ToggleAllPageRows selects every row on the current page, or clears them
// all when they are already selected.
func (d *Dataset[R]) ToggleAllPageRows() error {
	return pkg.LockWrapErr(d, func() error {
		res := query.Derive(d.table)
		ids := make([]builder.RowID, len(res.Rows))
		all := len(res.Rows) > 0
		for i, row := range res.Rows {
			ids[i] = row.ID
			all = all && d.table.IsSelected(row.ID)
		}
		return d.table.SetRowsSelection(ids, !all)
	})
}

func (d *Dataset[R]) Facets(id string) ([]query.FacetCount, error) {
	var facets []query.FacetCount
	err := pkg.LockWrapErr(d, func() (err error) {
		facets, err = query.Facets(d.table, id)
		return err
	})
	return facets, err
}

// Export writes the full filtered and sorted row set over the visible columns.
// A failure is kept in the view until the next successful export.
func (d *Dataset[R]) Export(format types.ExportFormat, w io.Writer) error {
	return pkg.LockWrapErr(d, func() error {
		if !d.table.Options.EnableExport {
			return errors.Wrap(builder.ErrFeatureDisabled, "export")
		}
		res := query.Derive(d.table)
		d.export_err = export.Export(format, res.Columns, res.Filtered, w)
		return d.export_err
	})
}

// Edit stages a change to one row. It shows immediately and stays pending
// until committed or rolled back.
func (d *Dataset[R]) Edit(id builder.RowID, fn func(R) (R, error)) error {
	return pkg.LockWrapErr(d, func() error {
		row, ok := d.table.Rows.Get(id)
		if !ok {
			return errors.Wrapf(builder.ErrUnknownRow, "%q", id)
		}
		next, err := fn(row.Original)
		if err != nil {
			return err
		}
		d.overlay.Update(id, next)
		d.sync()
		return nil
	})
}

// EditRow stages a JSON merge patch over the row.
func (d *Dataset[R]) EditRow(id builder.RowID, patch json.RawMessage) error {
	return d.Edit(id, func(r R) (R, error) {
		next := r
		if err := json.Unmarshal(patch, &next); err != nil {
			return r, errors.Wrap(err, "row patch")
		}
		return next, nil
	})
}

func (d *Dataset[R]) Add(value R) {
	pkg.LockWrap(d, func() {
		d.overlay.Add(value)
		d.sync()
	})
}

func (d *Dataset[R]) Remove(id builder.RowID) error {
	return pkg.LockWrapErr(d, func() error {
		if !d.table.Rows.Has(id) {
			return errors.Wrapf(builder.ErrUnknownRow, "%q", id)
		}
		d.overlay.Delete(id)
		d.sync()
		return nil
	})
}

// Commit folds the pending edit of a row into the cached snapshot.
func (d *Dataset[R]) Commit(id builder.RowID) error {
	return pkg.LockWrapErr(d, func() error {
		entry := d.cache.Current()
		next, err := d.overlay.Commit(id, entry.Data)
		if err != nil {
			return errors.Wrap(builder.ErrUnknownRow, err.Error())
		}
		d.cache.Set(entry.Key, next)
		d.sync()
		return nil
	})
}

func (d *Dataset[R]) Rollback(id builder.RowID) error {
	return pkg.LockWrapErr(d, func() error {
		if err := d.overlay.Rollback(id); err != nil {
			return errors.Wrap(builder.ErrUnknownRow, err.Error())
		}
		d.sync()
		return nil
	})
}

// Data returns the shown rows, pending edits included, in original order.
func (d *Dataset[R]) Data() []R {
	d.locker.RLock()
	defer d.locker.RUnlock()
	return d.table.Rows.Originals()
}
