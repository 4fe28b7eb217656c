package conn

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/pkg/errors"
	"github.com/tobsdb/tablekit/internal/builder"
	"github.com/tobsdb/tablekit/internal/cache"
	"github.com/tobsdb/tablekit/internal/dataset"
	"github.com/tobsdb/tablekit/internal/export"
	"github.com/tobsdb/tablekit/internal/mock"
	"github.com/tobsdb/tablekit/internal/transaction"
	"github.com/tobsdb/tablekit/internal/types"
)

type Response struct {
	Data    any    `json:"data"`
	Message string `json:"message"`
	Status  int    `json:"status"`
	// don't manually set this. it comes from the client
	ReqId int `json:"__tkit_client_req_id__"`
}

func NewErrorResponse(status int, err string) Response {
	return Response{Message: err, Status: status}
}

func NewResponse(status int, message string, data any) Response {
	return Response{Data: data, Message: message, Status: status}
}

// ErrorStatus maps a dataset or grid error to its http status.
func ErrorStatus(err error) int {
	var export_err *export.ExportError
	switch {
	case errors.Is(err, builder.ErrUnknownColumn), errors.Is(err, builder.ErrUnknownRow),
		errors.Is(err, transaction.ErrNoEdit), errors.Is(err, mock.ErrUnknownKey):
		return http.StatusNotFound
	case errors.Is(err, builder.ErrFeatureDisabled):
		return http.StatusForbidden
	case errors.Is(err, cache.ErrSuperseded):
		return http.StatusConflict
	case errors.As(err, &export_err):
		return http.StatusInternalServerError
	}
	return http.StatusBadRequest
}

func NewQueryErrorResponse(err error) Response {
	return NewErrorResponse(ErrorStatus(err), err.Error())
}

func decode[T any](raw []byte) (T, error) {
	var req T
	err := json.Unmarshal(raw, &req)
	return req, err
}

func viewResponse(d dataset.Handle, message string) Response {
	return NewResponse(http.StatusOK, message, d.View())
}

type ColumnRequest struct {
	Column string `json:"column"`
}

type RowRequest struct {
	Row builder.RowID `json:"row"`
}

type RefreshRequest struct {
	// optional, rebinds the dataset to another query key first
	Key string `json:"key"`
}

func RefreshReqHandler(s *Session, d dataset.Handle, raw []byte) Response {
	req, err := decode[RefreshRequest](raw)
	if err != nil {
		return NewErrorResponse(http.StatusBadRequest, err.Error())
	}
	force := true
	if req.Key != "" && req.Key != d.Key() {
		fetch, err := d.Rebind(req.Key)
		if err != nil {
			return NewQueryErrorResponse(err)
		}
		force = fetch
	}
	if force {
		s.Refresh(d, true)
	}
	return NewResponse(http.StatusAccepted, fmt.Sprintf("Refreshing %s", d.Key()), d.View())
}

type GlobalFilterRequest struct {
	Value string `json:"value"`
}

func SetGlobalFilterReqHandler(d dataset.Handle, raw []byte) Response {
	req, err := decode[GlobalFilterRequest](raw)
	if err != nil {
		return NewErrorResponse(http.StatusBadRequest, err.Error())
	}
	d.SetGlobalFilter(req.Value)
	return viewResponse(d, "Global filter set")
}

type ColumnFilterRequest struct {
	Column string          `json:"column"`
	Value  json.RawMessage `json:"value"`
}

func SetColumnFilterReqHandler(d dataset.Handle, raw []byte) Response {
	req, err := decode[ColumnFilterRequest](raw)
	if err != nil {
		return NewErrorResponse(http.StatusBadRequest, err.Error())
	}
	if err := d.SetColumnFilter(req.Column, req.Value); err != nil {
		return NewQueryErrorResponse(err)
	}
	return viewResponse(d, fmt.Sprintf("Filter set on column %s", req.Column))
}

func ClearColumnFilterReqHandler(d dataset.Handle, raw []byte) Response {
	req, err := decode[ColumnRequest](raw)
	if err != nil {
		return NewErrorResponse(http.StatusBadRequest, err.Error())
	}
	if err := d.ClearColumnFilter(req.Column); err != nil {
		return NewQueryErrorResponse(err)
	}
	return viewResponse(d, fmt.Sprintf("Filter cleared on column %s", req.Column))
}

type SortRequest struct {
	Column    string `json:"column"`
	Direction string `json:"direction"`
}

func SetSortReqHandler(d dataset.Handle, raw []byte) Response {
	req, err := decode[SortRequest](raw)
	if err != nil {
		return NewErrorResponse(http.StatusBadRequest, err.Error())
	}
	dir, err := types.ParseSortDirection(req.Direction)
	if err != nil {
		return NewErrorResponse(http.StatusBadRequest, err.Error())
	}
	if err := d.SetSort(req.Column, dir); err != nil {
		return NewQueryErrorResponse(err)
	}
	return viewResponse(d, fmt.Sprintf("Sorted by %s %s", req.Column, dir))
}

func ToggleSortReqHandler(d dataset.Handle, raw []byte) Response {
	req, err := decode[ColumnRequest](raw)
	if err != nil {
		return NewErrorResponse(http.StatusBadRequest, err.Error())
	}
	if err := d.ToggleSort(req.Column); err != nil {
		return NewQueryErrorResponse(err)
	}
	return viewResponse(d, fmt.Sprintf("Sort toggled on column %s", req.Column))
}

type PageRequest struct {
	Index int `json:"index"`
	Size  int `json:"size"`
}

func SetPageIndexReqHandler(d dataset.Handle, raw []byte) Response {
	req, err := decode[PageRequest](raw)
	if err != nil {
		return NewErrorResponse(http.StatusBadRequest, err.Error())
	}
	if err := d.SetPageIndex(req.Index); err != nil {
		return NewQueryErrorResponse(err)
	}
	return viewResponse(d, "Page set")
}

func SetPageSizeReqHandler(d dataset.Handle, raw []byte) Response {
	req, err := decode[PageRequest](raw)
	if err != nil {
		return NewErrorResponse(http.StatusBadRequest, err.Error())
	}
	if err := d.SetPageSize(req.Size); err != nil {
		return NewQueryErrorResponse(err)
	}
	return viewResponse(d, "Page size set")
}

func ToggleColumnReqHandler(d dataset.Handle, raw []byte) Response {
	req, err := decode[ColumnRequest](raw)
	if err != nil {
		return NewErrorResponse(http.StatusBadRequest, err.Error())
	}
	if err := d.ToggleColumn(req.Column); err != nil {
		return NewQueryErrorResponse(err)
	}
	return viewResponse(d, fmt.Sprintf("Visibility toggled on column %s", req.Column))
}

func ToggleRowReqHandler(d dataset.Handle, raw []byte) Response {
	req, err := decode[RowRequest](raw)
	if err != nil {
		return NewErrorResponse(http.StatusBadRequest, err.Error())
	}
	if err := d.ToggleRow(req.Row); err != nil {
		return NewQueryErrorResponse(err)
	}
	return viewResponse(d, fmt.Sprintf("Selection toggled on row %s", req.Row))
}

func FacetsReqHandler(d dataset.Handle, raw []byte) Response {
	req, err := decode[ColumnRequest](raw)
	if err != nil {
		return NewErrorResponse(http.StatusBadRequest, err.Error())
	}
	facets, err := d.Facets(req.Column)
	if err != nil {
		return NewQueryErrorResponse(err)
	}
	return NewResponse(http.StatusOK, fmt.Sprintf("Found %d facets", len(facets)), facets)
}

type ExportRequest struct {
	Format string `json:"format"`
}

type ExportResult struct {
	FileName string `json:"fileName"`
	MimeType string `json:"mimeType"`
	// base64 in json
	Content []byte `json:"content"`
}

func ExportReqHandler(d dataset.Handle, raw []byte) Response {
	req, err := decode[ExportRequest](raw)
	if err != nil {
		return NewErrorResponse(http.StatusBadRequest, err.Error())
	}
	format, err := types.ParseExportFormat(req.Format)
	if err != nil {
		return NewErrorResponse(http.StatusBadRequest, err.Error())
	}
	buf := &bytes.Buffer{}
	if err := d.Export(format, buf); err != nil {
		return NewQueryErrorResponse(err)
	}
	return NewResponse(http.StatusOK, fmt.Sprintf("Exported %s", d.Name()), ExportResult{
		FileName: export.FileName(format),
		MimeType: format.MimeType(),
		Content:  buf.Bytes(),
	})
}

type EditRowRequest struct {
	Row  builder.RowID   `json:"row"`
	Data json.RawMessage `json:"data"`
}

func EditRowReqHandler(d dataset.Handle, raw []byte) Response {
	req, err := decode[EditRowRequest](raw)
	if err != nil {
		return NewErrorResponse(http.StatusBadRequest, err.Error())
	}
	if len(req.Data) == 0 {
		return NewErrorResponse(http.StatusBadRequest, "missing row data")
	}
	if err := d.EditRow(req.Row, req.Data); err != nil {
		return NewQueryErrorResponse(err)
	}
	return viewResponse(d, fmt.Sprintf("Row %s edited", req.Row))
}

// rowReqHandler handles the edit actions that only name a row.
func rowReqHandler(d dataset.Handle, raw []byte, fn func(builder.RowID) error, verb string) Response {
	req, err := decode[RowRequest](raw)
	if err != nil {
		return NewErrorResponse(http.StatusBadRequest, err.Error())
	}
	if err := fn(req.Row); err != nil {
		return NewQueryErrorResponse(err)
	}
	return viewResponse(d, fmt.Sprintf("Row %s %s", req.Row, verb))
}

type DatasetInfo struct {
	Name    string               `json:"name"`
	Key     string               `json:"key"`
	Status  types.FetchStatus    `json:"status"`
	Columns []builder.ColumnInfo `json:"columns"`
}

func ListDatasetsReqHandler(s *Session) Response {
	infos := []DatasetInfo{}
	for _, name := range s.Names() {
		view := s.Datasets.Get(name).View()
		infos = append(infos, DatasetInfo{name, view.Key, view.Status, view.Columns})
	}
	return NewResponse(http.StatusOK, fmt.Sprintf("Found %d datasets", len(infos)), infos)
}

// DatasetActionHandler runs one dataset action against d.
func DatasetActionHandler(s *Session, d dataset.Handle, action RequestAction, raw []byte) Response {
	switch action {
	case RequestActionView:
		return viewResponse(d, d.Name())
	case RequestActionRefresh:
		return RefreshReqHandler(s, d, raw)
	case RequestActionSetGlobalFilter:
		return SetGlobalFilterReqHandler(d, raw)
	case RequestActionSetColumnFilter:
		return SetColumnFilterReqHandler(d, raw)
	case RequestActionClearColumnFilter:
		return ClearColumnFilterReqHandler(d, raw)
	case RequestActionReset:
		d.Reset()
		return viewResponse(d, "Filters reset")
	case RequestActionSetSort:
		return SetSortReqHandler(d, raw)
	case RequestActionToggleSort:
		return ToggleSortReqHandler(d, raw)
	case RequestActionClearSort:
		d.ClearSort()
		return viewResponse(d, "Sort cleared")
	case RequestActionSetPageIndex:
		return SetPageIndexReqHandler(d, raw)
	case RequestActionSetPageSize:
		return SetPageSizeReqHandler(d, raw)
	case RequestActionNextPage:
		if err := d.NextPage(); err != nil {
			return NewQueryErrorResponse(err)
		}
		return viewResponse(d, "Next page")
	case RequestActionPreviousPage:
		if err := d.PreviousPage(); err != nil {
			return NewQueryErrorResponse(err)
		}
		return viewResponse(d, "Previous page")
	case RequestActionToggleColumn:
		return ToggleColumnReqHandler(d, raw)
	case RequestActionToggleRow:
		return ToggleRowReqHandler(d, raw)
	case RequestActionToggleAllPageRows:
		if err := d.ToggleAllPageRows(); err != nil {
			return NewQueryErrorResponse(err)
		}
		return viewResponse(d, "Page selection toggled")
	case RequestActionFacets:
		return FacetsReqHandler(d, raw)
	case RequestActionExport:
		return ExportReqHandler(d, raw)
	case RequestActionEditRow:
		return EditRowReqHandler(d, raw)
	case RequestActionDeleteRow:
		return rowReqHandler(d, raw, d.Remove, "deleted")
	case RequestActionCommitEdit:
		return rowReqHandler(d, raw, d.Commit, "committed")
	case RequestActionRollbackEdit:
		return rowReqHandler(d, raw, d.Rollback, "rolled back")
	}
	return NewErrorResponse(http.StatusBadRequest, fmt.Sprintf("unknown action: %s", action))
}

func ActionHandler(s *Session, req WsRequest, raw []byte) Response {
	if req.Action == RequestActionListDatasets {
		return ListDatasetsReqHandler(s)
	}
	if req.Action.IsGridAction() {
		return GridActionHandler(s, req.Action, raw)
	}
	if req.Dataset == "" {
		return NewErrorResponse(http.StatusBadRequest, "no dataset selected")
	}
	if !s.Datasets.Has(req.Dataset) {
		return NewErrorResponse(http.StatusNotFound, "Dataset not found")
	}
	return DatasetActionHandler(s, s.Datasets.Get(req.Dataset), req.Action, raw)
}
