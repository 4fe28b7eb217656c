package grid

import (
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/tobsdb/tablekit/pkg"
)

// Shipment item columns in display order.
var SHIPMENT_COLUMNS = []string{
	"No.", "Goods Type", "Quantity", "Unit", "Gross Weight",
	"Net Weight", "Unit Price", "Packages", "Package Type", "Notes",
}

const SHIPMENT_ROWS = 10

type Slot struct {
	ID uuid.UUID
	// column name -> value, holds exactly the grid's current columns
	Values pkg.Map[string, string]
}

// CellRef addresses a cell by row identity and column name.
type CellRef struct {
	Row    uuid.UUID
	Column string
}

// Cursor is the focused cell by position.
type Cursor struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

// Grid is a matrix of named columns by appendable rows.
type Grid struct {
	locker sync.RWMutex

	columns []string
	slots   []Slot
	cursor  Cursor

	scroll_to int
}

func New(columns []string, rows int) *Grid {
	g := &Grid{scroll_to: -1}
	for _, c := range columns {
		g.addColumn(c)
	}
	for i := 0; i < rows; i++ {
		g.addRow()
	}
	g.scroll_to = -1
	return g
}

func NewShipmentGrid() *Grid { return New(SHIPMENT_COLUMNS, SHIPMENT_ROWS) }

func (g *Grid) GetLocker() *sync.RWMutex { return &g.locker }

func (g *Grid) Columns() []string {
	g.locker.RLock()
	defer g.locker.RUnlock()
	return append([]string{}, g.columns...)
}

func (g *Grid) Len() int {
	g.locker.RLock()
	defer g.locker.RUnlock()
	return len(g.slots)
}

func (g *Grid) Cursor() Cursor {
	g.locker.RLock()
	defer g.locker.RUnlock()
	return g.cursor
}

// Focus moves the cursor to a cell, as a click would.
func (g *Grid) Focus(row, col int) bool {
	g.locker.Lock()
	defer g.locker.Unlock()
	if row < 0 || row >= len(g.slots) || col < 0 || col >= len(g.columns) {
		return false
	}
	g.cursor = Cursor{row, col}
	return true
}

func (g *Grid) hasColumn(name string) bool { return pkg.Contains(g.columns, name) }

func (g *Grid) addColumn(name string) bool {
	if strings.TrimSpace(name) == "" || g.hasColumn(name) {
		return false
	}
	g.columns = append(g.columns, name)
	for _, slot := range g.slots {
		slot.Values.Set(name, "")
	}
	return true
}

// AddColumn appends a column, empty in every row. Empty and duplicate
// names are ignored.
func (g *Grid) AddColumn(name string) (ok bool) {
	pkg.LockWrap(g, func() { ok = g.addColumn(name) })
	return ok
}

// RemoveColumn drops a column and its value from every row.
func (g *Grid) RemoveColumn(name string) (ok bool) {
	pkg.LockWrap(g, func() {
		if !g.hasColumn(name) {
			return
		}
		g.columns = pkg.Filter(g.columns, func(c string) bool { return c != name })
		for _, slot := range g.slots {
			slot.Values.Delete(name)
		}
		if g.cursor.Col >= len(g.columns) {
			g.cursor.Col = max(len(g.columns)-1, 0)
		}
		ok = true
	})
	return ok
}

func (g *Grid) addRow() uuid.UUID {
	slot := Slot{uuid.New(), pkg.Map[string, string]{}}
	for _, c := range g.columns {
		slot.Values.Set(c, "")
	}
	g.slots = append(g.slots, slot)
	g.scroll_to = len(g.slots) - 1
	return slot.ID
}

// AddRow appends an empty row and makes it the scroll target.
func (g *Grid) AddRow() (id uuid.UUID) {
	pkg.LockWrap(g, func() { id = g.addRow() })
	return id
}

// RemoveRow deletes the row at index. The grid never calls this itself,
// it is there for hosts that manage their own row list.
func (g *Grid) RemoveRow(index int) (ok bool) {
	pkg.LockWrap(g, func() {
		if index < 0 || index >= len(g.slots) {
			return
		}
		g.slots = append(g.slots[:index], g.slots[index+1:]...)
		if g.cursor.Row >= len(g.slots) {
			g.cursor.Row = max(len(g.slots)-1, 0)
		}
		ok = true
	})
	return ok
}

// ScrollTarget returns the row that should be brought into view, once.
func (g *Grid) ScrollTarget() (int, bool) {
	g.locker.Lock()
	defer g.locker.Unlock()
	row := g.scroll_to
	g.scroll_to = -1
	return row, row >= 0
}

// Ref returns the address of the cell at a position.
func (g *Grid) Ref(row, col int) (CellRef, bool) {
	g.locker.RLock()
	defer g.locker.RUnlock()
	if row < 0 || row >= len(g.slots) || col < 0 || col >= len(g.columns) {
		return CellRef{}, false
	}
	return CellRef{g.slots[row].ID, g.columns[col]}, true
}

func (g *Grid) slot(id uuid.UUID) *Slot {
	for i := range g.slots {
		if g.slots[i].ID == id {
			return &g.slots[i]
		}
	}
	return nil
}

func (g *Grid) Set(ref CellRef, value string) (ok bool) {
	pkg.LockWrap(g, func() {
		slot := g.slot(ref.Row)
		if slot == nil || !g.hasColumn(ref.Column) {
			return
		}
		slot.Values.Set(ref.Column, value)
		ok = true
	})
	return ok
}

func (g *Grid) Get(ref CellRef) (string, bool) {
	g.locker.RLock()
	defer g.locker.RUnlock()
	slot := g.slot(ref.Row)
	if slot == nil || !slot.Values.Has(ref.Column) {
		return "", false
	}
	return slot.Values.Get(ref.Column), true
}

// SetAt writes the cell at a position.
func (g *Grid) SetAt(row, col int, value string) bool {
	ref, ok := g.Ref(row, col)
	if !ok {
		return false
	}
	return g.Set(ref, value)
}

// Rows returns a copy of every row's values, in row order.
func (g *Grid) Rows() []map[string]string {
	g.locker.RLock()
	defer g.locker.RUnlock()
	rows := make([]map[string]string, len(g.slots))
	for i, slot := range g.slots {
		row := make(map[string]string, len(slot.Values))
		for k, v := range slot.Values {
			row[k] = v
		}
		rows[i] = row
	}
	return rows
}
