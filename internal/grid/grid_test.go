package grid_test

import (
	"testing"

	"github.com/pkg/errors"
	. "github.com/tobsdb/tablekit/internal/grid"
	"gotest.tools/assert"
)

func TestNavigate(t *testing.T) {
	t.Run("Enter on last cell appends", func(t *testing.T) {
		g := New([]string{"a", "b", "c"}, 2)
		assert.Assert(t, g.Focus(0, 2))
		moved, handled := g.Navigate(KeyEnter)
		assert.Assert(t, moved && handled)
		assert.Equal(t, g.Cursor(), Cursor{1, 0})
		assert.Equal(t, g.Len(), 2)

		assert.Assert(t, g.Focus(1, 2))
		g.Navigate(KeyEnter)
		assert.Equal(t, g.Len(), 3)
		assert.Equal(t, g.Cursor(), Cursor{2, 0})
		row, ok := g.ScrollTarget()
		assert.Assert(t, ok)
		assert.Equal(t, row, 2)
	})

	t.Run("Right walks the row", func(t *testing.T) {
		g := New([]string{"a", "b", "c"}, 2)
		for i := 0; i < 3; i++ {
			g.Navigate(KeyRight)
		}
		assert.Equal(t, g.Cursor(), Cursor{1, 0})
		assert.Equal(t, g.Len(), 2)
	})

	t.Run("Edges do not move", func(t *testing.T) {
		g := New([]string{"a", "b"}, 2)
		for _, k := range []Key{KeyLeft, KeyUp} {
			moved, handled := g.Navigate(k)
			assert.Assert(t, !moved)
			assert.Assert(t, handled)
		}
		assert.Assert(t, g.Focus(1, 1))
		moved, handled := g.Navigate(KeyDown)
		assert.Assert(t, !moved && handled)
		assert.Equal(t, g.Len(), 2)
	})

	t.Run("Arrows", func(t *testing.T) {
		g := New([]string{"a", "b"}, 3)
		g.Navigate(KeyDown)
		g.Navigate(KeyDown)
		g.Navigate(KeyRight)
		g.Navigate(KeyUp)
		g.Navigate(KeyLeft)
		assert.Equal(t, g.Cursor(), Cursor{1, 0})
	})

	t.Run("Other keys are not handled", func(t *testing.T) {
		g := New([]string{"a"}, 1)
		_, handled := g.Navigate(KeyNone)
		assert.Assert(t, !handled)
	})
}

func TestColumns(t *testing.T) {
	t.Run("Add", func(t *testing.T) {
		g := New([]string{"a"}, 2)
		assert.Assert(t, g.AddColumn("b"))
		assert.Assert(t, !g.AddColumn("b"))
		assert.Assert(t, !g.AddColumn(""))
		assert.Assert(t, !g.AddColumn("  "))
		assert.DeepEqual(t, g.Columns(), []string{"a", "b"})
		for _, row := range g.Rows() {
			v, ok := row["b"]
			assert.Assert(t, ok)
			assert.Equal(t, v, "")
		}
	})

	t.Run("Remove strips data", func(t *testing.T) {
		g := New([]string{"a", "b"}, 3)
		assert.Assert(t, g.AddColumn("X"))
		for i := 0; i < 3; i++ {
			assert.Assert(t, g.SetAt(i, 2, "value"))
		}
		assert.Assert(t, g.RemoveColumn("X"))
		assert.Assert(t, !g.RemoveColumn("X"))
		for _, row := range g.Rows() {
			_, ok := row["X"]
			assert.Assert(t, !ok)
		}
		assert.DeepEqual(t, g.Columns(), []string{"a", "b"})
	})

	t.Run("Remove clamps cursor", func(t *testing.T) {
		g := New([]string{"a", "b"}, 1)
		assert.Assert(t, g.Focus(0, 1))
		g.RemoveColumn("b")
		assert.Equal(t, g.Cursor(), Cursor{0, 0})
	})

	t.Run("Rows added later get every column", func(t *testing.T) {
		g := New([]string{"a"}, 0)
		g.AddColumn("b")
		id := g.AddRow()
		v, ok := g.Get(CellRef{id, "b"})
		assert.Assert(t, ok)
		assert.Equal(t, v, "")
		assert.Assert(t, !g.Set(CellRef{id, "c"}, "x"))
	})
}

func TestRows(t *testing.T) {
	g := NewShipmentGrid()
	assert.Equal(t, g.Len(), SHIPMENT_ROWS)
	assert.Equal(t, len(g.Columns()), 10)

	ref, ok := g.Ref(0, 1)
	assert.Assert(t, ok)
	assert.Equal(t, ref.Column, "Goods Type")
	assert.Assert(t, g.Set(ref, "Rice"))
	v, _ := g.Get(ref)
	assert.Equal(t, v, "Rice")

	// identity survives removing an earlier row
	assert.Assert(t, g.Set(CellRef{mustRef(t, g, 1).Row, "Unit"}, "kg"))
	second := mustRef(t, g, 1).Row
	assert.Assert(t, g.RemoveRow(0))
	v, _ = g.Get(CellRef{second, "Unit"})
	assert.Equal(t, v, "kg")
	assert.Equal(t, g.Len(), SHIPMENT_ROWS-1)
	assert.Assert(t, !g.RemoveRow(100))

	rows := g.Rows()
	rows[0]["Unit"] = "changed"
	v, _ = g.Get(CellRef{second, "Unit"})
	assert.Equal(t, v, "kg")
}

func mustRef(t *testing.T, g *Grid, row int) CellRef {
	ref, ok := g.Ref(row, 0)
	assert.Assert(t, ok)
	return ref
}

func TestSubmit(t *testing.T) {
	g := New([]string{"a"}, 2)
	g.SetAt(1, 0, "x")
	var got []map[string]string
	res := g.Submit(func(rows []map[string]string) error {
		got = rows
		return nil
	})
	assert.Assert(t, res.OK)
	assert.Equal(t, res.Message, SUBMIT_SUCCESS_MESSAGE)
	assert.DeepEqual(t, got, []map[string]string{{"a": ""}, {"a": "x"}})

	res = g.Submit(func(rows []map[string]string) error { return errors.New("offline") })
	assert.Assert(t, !res.OK)
	assert.Equal(t, res.Message, "offline")
	assert.Equal(t, g.Len(), 2)
}

func TestParseKey(t *testing.T) {
	k, err := ParseKey("ArrowRight")
	assert.NilError(t, err)
	assert.Equal(t, k, KeyRight)
	_, err = ParseKey("Tab")
	assert.ErrorContains(t, err, "not a navigation key")
}
