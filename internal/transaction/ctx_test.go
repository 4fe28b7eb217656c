package transaction_test

import (
	"testing"

	"github.com/pkg/errors"
	. "github.com/tobsdb/tablekit/internal/transaction"
	"gotest.tools/assert"
)

type rec struct {
	ID   string
	Name string
}

func recID(r rec) string { return r.ID }

func snapshot() []rec {
	return []rec{{"a", "A"}, {"b", "B"}, {"c", "C"}}
}

func TestOverlay(t *testing.T) {
	t.Run("Apply", func(t *testing.T) {
		o := NewOverlay(recID)
		base := snapshot()
		o.Update("b", rec{"b", "B2"})
		o.Delete("a")
		o.Add(rec{"d", "D"})

		assert.DeepEqual(t, o.Apply(base), []rec{{"b", "B2"}, {"c", "C"}, {"d", "D"}})
		assert.DeepEqual(t, base, snapshot())
		assert.Equal(t, o.Len(), 3)
	})

	t.Run("Commit", func(t *testing.T) {
		o := NewOverlay(recID)
		o.Update("b", rec{"b", "B2"})
		o.Delete("c")

		next, err := o.Commit("b", snapshot())
		assert.NilError(t, err)
		assert.DeepEqual(t, next, []rec{{"a", "A"}, {"b", "B2"}, {"c", "C"}})
		assert.Assert(t, !o.Has("b"))
		// the remaining edit still applies over the new snapshot
		assert.DeepEqual(t, o.Apply(next), []rec{{"a", "A"}, {"b", "B2"}})

		_, err = o.Commit("b", next)
		assert.Assert(t, errors.Is(err, ErrNoEdit))
	})

	t.Run("Rollback", func(t *testing.T) {
		o := NewOverlay(recID)
		o.Update("a", rec{"a", "A2"})
		assert.NilError(t, o.Rollback("a"))
		assert.DeepEqual(t, o.Apply(snapshot()), snapshot())
		assert.Assert(t, errors.Is(o.Rollback("a"), ErrNoEdit))
	})

	t.Run("Edits on added rows", func(t *testing.T) {
		o := NewOverlay(recID)
		o.Add(rec{"d", "D"})
		e := o.Update("d", rec{"d", "D2"})
		assert.Equal(t, e.Kind, EditAdd)
		assert.DeepEqual(t, o.Apply(nil), []rec{{"d", "D2"}})

		o.Delete("d")
		assert.Equal(t, o.Len(), 0)
	})
}
