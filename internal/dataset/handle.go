package dataset

import (
	"context"
	"encoding/json"
	"io"

	"github.com/tobsdb/tablekit/internal/builder"
	"github.com/tobsdb/tablekit/internal/query"
	"github.com/tobsdb/tablekit/internal/types"
)

// Handle is a dataset with its row type erased, as driven by a host.
type Handle interface {
	Name() string
	Key() string
	OnChange(fn func())

	Refresh(ctx context.Context) error
	RefreshIfNeeded(ctx context.Context) error
	Rebind(key string) (bool, error)
	Invalidate()
	View() Snapshot

	SetGlobalFilter(text string)
	SetColumnFilter(id string, raw json.RawMessage) error
	ClearColumnFilter(id string) error
	Reset()

	SetSort(id string, dir types.SortDirection) error
	ToggleSort(id string) error
	ClearSort()

	SetPageIndex(index int) error
	SetPageSize(size int) error
	NextPage() error
	PreviousPage() error

	ToggleColumn(id string) error
	ToggleRow(id builder.RowID) error
	ToggleAllPageRows() error

	Facets(id string) ([]query.FacetCount, error)
	Export(format types.ExportFormat, w io.Writer) error

	EditRow(id builder.RowID, patch json.RawMessage) error
	Remove(id builder.RowID) error
	Commit(id builder.RowID) error
	Rollback(id builder.RowID) error
}

var _ Handle = (*Dataset[struct{ ID string }])(nil)
