package transaction

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/tobsdb/tablekit/internal/builder"
	"github.com/tobsdb/tablekit/pkg"
)

var ErrNoEdit = errors.New("no pending edit")

type EditKind string

const (
	EditUpdate EditKind = "update"
	EditDelete EditKind = "delete"
	EditAdd    EditKind = "add"
)

type Edit[R any] struct {
	ID    uuid.UUID
	RowID builder.RowID
	Kind  EditKind
	Value R

	StartTime time.Time
}

// Overlay holds pending edits keyed by row id. They are merged over the last
// fetched snapshot until each one is committed into it or rolled back.
type Overlay[R any] struct {
	locker sync.RWMutex
	id_fn  func(R) string

	edits *pkg.InsertSortMap[builder.RowID, *Edit[R]]
}

func NewOverlay[R any](id_fn func(R) string) *Overlay[R] {
	return &Overlay[R]{id_fn: id_fn, edits: pkg.NewInsertSortMap[builder.RowID, *Edit[R]]()}
}

func (o *Overlay[R]) GetLocker() *sync.RWMutex { return &o.locker }

func (o *Overlay[R]) push(id builder.RowID, kind EditKind, value R) *Edit[R] {
	edit := &Edit[R]{uuid.Must(uuid.NewV7()), id, kind, value, time.Now()}
	o.edits.Set(id, edit)
	return edit
}

func (o *Overlay[R]) Update(id builder.RowID, value R) (edit Edit[R]) {
	pkg.LockWrap(o, func() {
		kind := EditUpdate
		if prev := o.edits.Get(id); prev != nil && prev.Kind == EditAdd {
			kind = EditAdd
		}
		edit = *o.push(id, kind, value)
	})
	return edit
}

func (o *Overlay[R]) Delete(id builder.RowID) (edit Edit[R]) {
	pkg.LockWrap(o, func() {
		if prev := o.edits.Get(id); prev != nil && prev.Kind == EditAdd {
			// the row never made it into the snapshot
			o.edits.Delete(id)
			edit = *prev
			edit.Kind = EditDelete
			return
		}
		var zero R
		edit = *o.push(id, EditDelete, zero)
	})
	return edit
}

func (o *Overlay[R]) Add(value R) (edit Edit[R]) {
	pkg.LockWrap(o, func() {
		edit = *o.push(builder.RowID(o.id_fn(value)), EditAdd, value)
	})
	return edit
}

func (o *Overlay[R]) Has(id builder.RowID) bool {
	o.locker.RLock()
	defer o.locker.RUnlock()
	return o.edits.Has(id)
}

func (o *Overlay[R]) Len() int {
	o.locker.RLock()
	defer o.locker.RUnlock()
	return o.edits.Len()
}

func (o *Overlay[R]) Pending() []Edit[R] {
	o.locker.RLock()
	defer o.locker.RUnlock()
	edits := make([]Edit[R], 0, o.edits.Len())
	for _, e := range o.edits.Values() {
		edits = append(edits, *e)
	}
	return edits
}

// Apply returns snapshot with every pending edit merged in. snapshot is not modified.
func (o *Overlay[R]) Apply(snapshot []R) []R {
	o.locker.RLock()
	defer o.locker.RUnlock()
	return o.apply(snapshot, o.edits)
}

func (o *Overlay[R]) apply(snapshot []R, edits *pkg.InsertSortMap[builder.RowID, *Edit[R]]) []R {
	merged := make([]R, 0, len(snapshot)+edits.Len())
	for _, item := range snapshot {
		id := builder.RowID(o.id_fn(item))
		edit := edits.Get(id)
		switch {
		case edit == nil:
			merged = append(merged, item)
		case edit.Kind == EditDelete:
		default:
			merged = append(merged, edit.Value)
		}
	}
	for _, id := range edits.Sorted {
		if edit := edits.Get(id); edit.Kind == EditAdd && !containsID(snapshot, id, o.id_fn) {
			merged = append(merged, edit.Value)
		}
	}
	return merged
}

func containsID[R any](snapshot []R, id builder.RowID, id_fn func(R) string) bool {
	for _, item := range snapshot {
		if builder.RowID(id_fn(item)) == id {
			return true
		}
	}
	return false
}

// Commit folds the pending edit of one row into snapshot and returns the result.
func (o *Overlay[R]) Commit(id builder.RowID, snapshot []R) ([]R, error) {
	var committed []R
	err := pkg.LockWrapErr(o, func() error {
		edit := o.edits.Get(id)
		if edit == nil {
			return errors.Wrapf(ErrNoEdit, "row %q", id)
		}
		single := pkg.NewInsertSortMap[builder.RowID, *Edit[R]]()
		single.Push(id, edit)
		committed = o.apply(snapshot, single)
		o.edits.Delete(id)
		pkg.DebugLog("committed", edit.Kind, "of row", id, "after", time.Since(edit.StartTime))
		return nil
	})
	return committed, err
}

// Rollback discards the pending edit of one row.
func (o *Overlay[R]) Rollback(id builder.RowID) error {
	return pkg.LockWrapErr(o, func() error {
		if !o.edits.Has(id) {
			return errors.Wrapf(ErrNoEdit, "row %q", id)
		}
		o.edits.Delete(id)
		return nil
	})
}

func (o *Overlay[R]) Clear() {
	pkg.LockWrap(o, func() { o.edits.Clear() })
}
