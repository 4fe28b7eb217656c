package builder

import (
	"sync"

	"github.com/google/uuid"
	"github.com/tobsdb/tablekit/pkg"
	sorted "github.com/tobshub/go-sortedmap"
)

// RowID is the stable identity of a row, independent of its position.
type RowID string

type Row[R any] struct {
	ID RowID
	// position in the fetched data set, used as the tie breaker for stable sorts
	Index    int
	Original R
}

func rowsComparisonFunc[R any](a, b Row[R]) bool {
	return a.Index < b.Index
}

// Maps row id to its data, iterated in original order
type Rows[R any] struct {
	locker sync.RWMutex

	Map *sorted.SortedMap[RowID, Row[R]]
	// row id -> original index
	Indexes pkg.Map[RowID, int]
}

func NewRows[R any]() *Rows[R] {
	return &Rows[R]{
		Map:     sorted.New[RowID, Row[R]](0, rowsComparisonFunc[R]),
		Indexes: pkg.Map[RowID, int]{},
	}
}

func (r *Rows[R]) GetLocker() *sync.RWMutex { return &r.locker }

// Load replaces every row. The data slice itself is never modified.
// id_fn may be nil, in which case each row gets a fresh uuid.
func (r *Rows[R]) Load(data []R, id_fn func(R) string) {
	r.locker.Lock()
	defer r.locker.Unlock()

	m := sorted.New[RowID, Row[R]](len(data), rowsComparisonFunc[R])
	indexes := pkg.Map[RowID, int]{}
	for i, item := range data {
		var id RowID
		if id_fn != nil {
			id = RowID(id_fn(item))
		} else {
			id = RowID(uuid.NewString())
		}
		row := Row[R]{ID: id, Index: i, Original: item}
		if !m.Insert(id, row) {
			pkg.WarnLog("duplicate row id, keeping the last one:", id)
			m.Replace(id, row)
		}
		indexes.Set(id, i)
	}
	r.Map = m
	r.Indexes = indexes
}

func (r *Rows[R]) Get(id RowID) (Row[R], bool) {
	r.locker.RLock()
	defer r.locker.RUnlock()
	if !r.Indexes.Has(id) {
		return Row[R]{}, false
	}
	return r.Map.Get(id)
}

func (r *Rows[R]) Has(id RowID) bool {
	r.locker.RLock()
	defer r.locker.RUnlock()
	return r.Indexes.Has(id)
}

func (r *Rows[R]) Replace(id RowID, value R) bool {
	r.locker.Lock()
	defer r.locker.Unlock()
	if !r.Indexes.Has(id) {
		return false
	}
	r.Map.Replace(id, Row[R]{ID: id, Index: r.Indexes.Get(id), Original: value})
	return true
}

func (r *Rows[R]) Len() int {
	r.locker.RLock()
	defer r.locker.RUnlock()
	return len(r.Indexes)
}

// All returns every row in original order.
func (r *Rows[R]) All() []Row[R] {
	r.locker.RLock()
	defer r.locker.RUnlock()

	rows := make([]Row[R], 0, len(r.Indexes))
	if len(r.Indexes) == 0 {
		return rows
	}
	iterCh, err := r.Map.IterCh()
	if err != nil {
		return rows
	}
	for rec := range iterCh.Records() {
		rows = append(rows, rec.Val)
	}
	return rows
}

// Originals returns the row values in original order.
func (r *Rows[R]) Originals() []R {
	all := r.All()
	data := make([]R, len(all))
	for i, row := range all {
		data[i] = row.Original
	}
	return data
}
