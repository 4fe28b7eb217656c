package conn

import (
	"fmt"
	"net/http"

	"github.com/tobsdb/tablekit/internal/grid"
)

type GridView struct {
	Columns []string            `json:"columns"`
	Rows    []map[string]string `json:"rows"`
	Cursor  grid.Cursor         `json:"cursor"`
	// set once after a row was appended
	ScrollTo *int `json:"scrollTo,omitempty"`
}

func NewGridView(g *grid.Grid) GridView {
	v := GridView{Columns: g.Columns(), Rows: g.Rows(), Cursor: g.Cursor()}
	if row, ok := g.ScrollTarget(); ok {
		v.ScrollTo = &row
	}
	return v
}

func gridResponse(g *grid.Grid, message string) Response {
	return NewResponse(http.StatusOK, message, NewGridView(g))
}

type GridKeyRequest struct {
	Key string `json:"key"`
}

type GridKeyResult struct {
	Moved   bool     `json:"moved"`
	Handled bool     `json:"handled"`
	View    GridView `json:"view"`
}

func GridKeyReqHandler(g *grid.Grid, raw []byte) Response {
	req, err := decode[GridKeyRequest](raw)
	if err != nil {
		return NewErrorResponse(http.StatusBadRequest, err.Error())
	}
	k, err := grid.ParseKey(req.Key)
	if err != nil {
		return NewErrorResponse(http.StatusBadRequest, err.Error())
	}
	moved, handled := g.Navigate(k)
	return NewResponse(http.StatusOK, req.Key, GridKeyResult{moved, handled, NewGridView(g)})
}

type GridCellRequest struct {
	Row   int    `json:"row"`
	Col   int    `json:"col"`
	Value string `json:"value"`
}

func GridSetCellReqHandler(g *grid.Grid, raw []byte) Response {
	req, err := decode[GridCellRequest](raw)
	if err != nil {
		return NewErrorResponse(http.StatusBadRequest, err.Error())
	}
	if !g.SetAt(req.Row, req.Col, req.Value) {
		return NewErrorResponse(http.StatusNotFound, fmt.Sprintf("no cell at %d,%d", req.Row, req.Col))
	}
	g.Focus(req.Row, req.Col)
	return gridResponse(g, "Cell set")
}

type GridColumnRequest struct {
	Name string `json:"name"`
}

func GridAddColumnReqHandler(g *grid.Grid, raw []byte) Response {
	req, err := decode[GridColumnRequest](raw)
	if err != nil {
		return NewErrorResponse(http.StatusBadRequest, err.Error())
	}
	if !g.AddColumn(req.Name) {
		return NewErrorResponse(http.StatusBadRequest, fmt.Sprintf("cannot add column %q", req.Name))
	}
	return NewResponse(http.StatusCreated, fmt.Sprintf("Added column %s", req.Name), NewGridView(g))
}

func GridRemoveColumnReqHandler(g *grid.Grid, raw []byte) Response {
	req, err := decode[GridColumnRequest](raw)
	if err != nil {
		return NewErrorResponse(http.StatusBadRequest, err.Error())
	}
	if !g.RemoveColumn(req.Name) {
		return NewErrorResponse(http.StatusNotFound, fmt.Sprintf("no column %q", req.Name))
	}
	return gridResponse(g, fmt.Sprintf("Removed column %s", req.Name))
}

func GridRemoveRowReqHandler(g *grid.Grid, raw []byte) Response {
	req, err := decode[GridCellRequest](raw)
	if err != nil {
		return NewErrorResponse(http.StatusBadRequest, err.Error())
	}
	if !g.RemoveRow(req.Row) {
		return NewErrorResponse(http.StatusNotFound, fmt.Sprintf("no row %d", req.Row))
	}
	return gridResponse(g, fmt.Sprintf("Removed row %d", req.Row))
}

func GridActionHandler(s *Session, action RequestAction, raw []byte) Response {
	g := s.Grid
	switch action {
	case RequestActionGridView:
		return gridResponse(g, "Grid")
	case RequestActionGridKey:
		return GridKeyReqHandler(g, raw)
	case RequestActionGridSetCell:
		return GridSetCellReqHandler(g, raw)
	case RequestActionGridAddColumn:
		return GridAddColumnReqHandler(g, raw)
	case RequestActionGridRemoveColumn:
		return GridRemoveColumnReqHandler(g, raw)
	case RequestActionGridAddRow:
		g.AddRow()
		return NewResponse(http.StatusCreated, "Added row", NewGridView(g))
	case RequestActionGridRemoveRow:
		return GridRemoveRowReqHandler(g, raw)
	case RequestActionGridSubmit:
		res := g.Submit(s.submit)
		status := http.StatusOK
		if !res.OK {
			status = http.StatusInternalServerError
		}
		return NewResponse(status, res.Message, res)
	}
	return NewErrorResponse(http.StatusBadRequest, fmt.Sprintf("unknown action: %s", action))
}
