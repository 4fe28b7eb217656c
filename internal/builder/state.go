package builder

import (
	"github.com/tobsdb/tablekit/internal/types"
	"github.com/tobsdb/tablekit/pkg"
)

type SortState struct {
	ColumnID  string              `json:"id" yaml:"id"`
	Direction types.SortDirection `json:"direction" yaml:"-"`
}

func (s SortState) IsSet() bool { return s.ColumnID != "" }

type Pagination struct {
	PageIndex int `json:"pageIndex"`
	PageSize  int `json:"pageSize"`
}

// State is everything the user can change about a table.
type State struct {
	// column id -> filter, in the order the filters were first applied
	Filters      *pkg.InsertSortMap[string, Filter]
	GlobalFilter string
	Sort         SortState
	Pagination   Pagination
	// column id -> visible
	Visibility pkg.Map[string, bool]
	// row id -> selected
	Selection pkg.Map[RowID, bool]
}

func NewState() *State {
	return &State{
		Filters:    pkg.NewInsertSortMap[string, Filter](),
		Visibility: pkg.Map[string, bool]{},
		Selection:  pkg.Map[RowID, bool]{},
	}
}
