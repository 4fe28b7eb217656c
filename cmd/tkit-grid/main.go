package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/alecthomas/kingpin/v2"
	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"
	"github.com/tobsdb/tablekit/internal/grid"
)

const HELP_TEXT = "arrows/enter move · type to edit · ^N add column · ^D drop column · ^A add row · ^S submit · esc quit"

var (
	app = kingpin.New("tkit-grid", "Edit shipment items in the terminal.")

	rows = app.Flag("rows", "initial row count").Default(fmt.Sprint(grid.SHIPMENT_ROWS)).Int()
)

type Editor struct {
	app    *tview.Application
	pages  *tview.Pages
	table  *tview.Table
	status *tview.TextView
	grid   *grid.Grid

	result *grid.Result
}

func NewEditor(g *grid.Grid) *Editor {
	e := &Editor{
		app:    tview.NewApplication(),
		pages:  tview.NewPages(),
		table:  tview.NewTable().SetFixed(1, 0).SetSelectable(true, true).SetBorders(true),
		status: tview.NewTextView().SetDynamicColors(true),
		grid:   g,
	}
	e.status.SetText(HELP_TEXT)

	layout := tview.NewFlex().SetDirection(tview.FlexRow).
		AddItem(e.table, 0, 1, true).
		AddItem(e.status, 1, 0, false)
	e.pages.AddPage("grid", layout, true, true)

	e.table.SetInputCapture(e.handleKey)
	e.table.SetSelectionChangedFunc(func(row, col int) {
		// mouse clicks move the focus too
		if row > 0 {
			e.grid.Focus(row-1, col)
		}
	})
	e.draw()
	return e
}

// draw rebuilds the table from the grid. Row 0 is the header.
func (e *Editor) draw() {
	e.table.Clear()
	columns := e.grid.Columns()
	for c, name := range columns {
		e.table.SetCell(0, c, tview.NewTableCell(name).
			SetSelectable(false).SetAttributes(tcell.AttrBold).SetExpansion(1))
	}
	for r, row := range e.grid.Rows() {
		for c, name := range columns {
			e.table.SetCell(r+1, c, tview.NewTableCell(row[name]).SetExpansion(1))
		}
	}
	cursor := e.grid.Cursor()
	if len(columns) > 0 && e.grid.Len() > 0 {
		e.table.Select(cursor.Row+1, cursor.Col)
	}
	if row, ok := e.grid.ScrollTarget(); ok {
		e.status.SetText(fmt.Sprintf("row %d added · %s", row+1, HELP_TEXT))
	}
}

func (e *Editor) editFocused(fn func(string) string) {
	cursor := e.grid.Cursor()
	ref, ok := e.grid.Ref(cursor.Row, cursor.Col)
	if !ok {
		return
	}
	value, _ := e.grid.Get(ref)
	e.grid.Set(ref, fn(value))
}

func (e *Editor) promptColumn() {
	input := tview.NewInputField().SetLabel("Column name: ").SetFieldWidth(30)
	input.SetDoneFunc(func(key tcell.Key) {
		if key == tcell.KeyEnter {
			if !e.grid.AddColumn(input.GetText()) {
				e.status.SetText("[red]column names must be unique and not empty[-]")
			}
		}
		e.pages.RemovePage("prompt")
		e.app.SetFocus(e.table)
		e.draw()
	})
	modal := tview.NewFlex().SetDirection(tview.FlexRow).
		AddItem(nil, 0, 1, false).
		AddItem(input, 1, 0, true).
		AddItem(nil, 0, 1, false)
	e.pages.AddPage("prompt", modal, true, true)
	e.app.SetFocus(input)
}

func (e *Editor) handleKey(ev *tcell.EventKey) *tcell.EventKey {
	if k := grid.KeyFromEvent(ev); k != grid.KeyNone {
		if _, handled := e.grid.Navigate(k); handled {
			e.draw()
			return nil
		}
	}

	switch ev.Key() {
	case tcell.KeyEscape, tcell.KeyCtrlQ:
		e.app.Stop()
	case tcell.KeyCtrlN:
		e.promptColumn()
	case tcell.KeyCtrlD:
		columns := e.grid.Columns()
		if cursor := e.grid.Cursor(); cursor.Col < len(columns) {
			e.grid.RemoveColumn(columns[cursor.Col])
		}
	case tcell.KeyCtrlA:
		e.grid.AddRow()
	case tcell.KeyCtrlS:
		res := e.grid.Submit(func(rows []map[string]string) error { return nil })
		e.result = &res
		e.app.Stop()
	case tcell.KeyBackspace, tcell.KeyBackspace2:
		e.editFocused(func(v string) string {
			r := []rune(v)
			if len(r) == 0 {
				return v
			}
			return string(r[:len(r)-1])
		})
	case tcell.KeyRune:
		e.editFocused(func(v string) string { return v + string(ev.Rune()) })
	default:
		return ev
	}
	e.draw()
	return nil
}

func (e *Editor) Run() error {
	return e.app.SetRoot(e.pages, true).EnableMouse(true).Run()
}

func main() {
	kingpin.MustParse(app.Parse(os.Args[1:]))

	e := NewEditor(grid.New(grid.SHIPMENT_COLUMNS, *rows))
	app.FatalIfError(e.Run(), "Running editor")

	if e.result == nil {
		return
	}
	fmt.Printf("%s: %s\n", e.result.Title, e.result.Message)
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	app.FatalIfError(enc.Encode(e.grid.Rows()), "Encoding rows")
}
