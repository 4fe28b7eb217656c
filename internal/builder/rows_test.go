package builder_test

import (
	"fmt"
	"sync"
	"testing"

	. "github.com/tobsdb/tablekit/internal/builder"
	"gotest.tools/assert"
)

const TEST_SIZE = 10

type testRow struct {
	Key    string
	Name   string
	Weight float64
}

func newTestData() []testRow {
	data := make([]testRow, TEST_SIZE)
	for i := 0; i < TEST_SIZE; i++ {
		data[i] = testRow{fmt.Sprint("r", i), fmt.Sprint("name ", i), float64(i * 10)}
	}
	return data
}

func testRowID(r testRow) string { return r.Key }

func TestRows(t *testing.T) {
	t.Run("Load", func(t *testing.T) {
		data := newTestData()
		r := NewRows[testRow]()
		r.Load(data, testRowID)
		assert.Equal(t, r.Len(), TEST_SIZE)

		all := r.All()
		assert.Equal(t, len(all), TEST_SIZE)
		for i, row := range all {
			assert.Equal(t, row.Index, i)
			assert.Equal(t, row.ID, RowID(data[i].Key))
			assert.DeepEqual(t, row.Original, data[i])
		}
	})

	t.Run("Load without id func", func(t *testing.T) {
		r := NewRows[testRow]()
		r.Load(newTestData(), nil)
		assert.Equal(t, r.Len(), TEST_SIZE)
		seen := map[RowID]bool{}
		for _, row := range r.All() {
			assert.Assert(t, row.ID != "")
			assert.Assert(t, !seen[row.ID])
			seen[row.ID] = true
		}
	})

	t.Run("Load keeps input", func(t *testing.T) {
		data := newTestData()
		before := append([]testRow{}, data...)
		r := NewRows[testRow]()
		r.Load(data, testRowID)
		r.Replace("r0", testRow{"r0", "changed", 1})
		assert.DeepEqual(t, data, before)
	})

	t.Run("Get", func(t *testing.T) {
		r := NewRows[testRow]()
		r.Load(newTestData(), testRowID)
		row, ok := r.Get("r3")
		assert.Assert(t, ok)
		assert.Equal(t, row.Original.Name, "name 3")
		_, ok = r.Get("missing")
		assert.Assert(t, !ok)
	})

	t.Run("Replace", func(t *testing.T) {
		r := NewRows[testRow]()
		r.Load(newTestData(), testRowID)
		assert.Assert(t, r.Replace("r5", testRow{"r5", "five", 5}))
		assert.Assert(t, !r.Replace("nope", testRow{}))
		row, _ := r.Get("r5")
		assert.Equal(t, row.Original.Name, "five")
		assert.Equal(t, row.Index, 5)
		assert.Equal(t, r.Originals()[5].Name, "five")
	})

	t.Run("Concurrent reads", func(t *testing.T) {
		r := NewRows[testRow]()
		r.Load(newTestData(), testRowID)
		wg := sync.WaitGroup{}
		for i := 0; i < TEST_SIZE; i++ {
			i := i
			wg.Add(1)
			go func() {
				defer wg.Done()
				assert.Assert(t, r.Has(RowID(fmt.Sprint("r", i))))
				assert.Equal(t, len(r.All()), TEST_SIZE)
			}()
		}
		wg.Wait()
	})
}
