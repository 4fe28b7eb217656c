package grid

import (
	"github.com/tobsdb/tablekit/pkg"
)

const SUBMIT_SUCCESS_MESSAGE = "Data saved successfully."

type Result struct {
	OK      bool   `json:"ok"`
	Title   string `json:"title"`
	Message string `json:"message"`
}

// Submit hands every row to fn. The grid keeps its data either way.
func (g *Grid) Submit(fn func(rows []map[string]string) error) Result {
	rows := g.Rows()
	if err := fn(rows); err != nil {
		pkg.ErrorLog("grid submit:", err)
		return Result{false, "Error", err.Error()}
	}
	pkg.DebugLog("grid submitted", len(rows), "rows")
	return Result{true, "Success", SUBMIT_SUCCESS_MESSAGE}
}
