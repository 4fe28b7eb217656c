package conn

type RequestAction string

const (
	// dataset actions
	RequestActionListDatasets      RequestAction = "listDatasets"
	RequestActionView              RequestAction = "view"
	RequestActionRefresh           RequestAction = "refresh"
	RequestActionSetGlobalFilter   RequestAction = "setGlobalFilter"
	RequestActionSetColumnFilter   RequestAction = "setColumnFilter"
	RequestActionClearColumnFilter RequestAction = "clearColumnFilter"
	RequestActionReset             RequestAction = "reset"
	RequestActionSetSort           RequestAction = "setSort"
	RequestActionToggleSort        RequestAction = "toggleSort"
	RequestActionClearSort         RequestAction = "clearSort"
	RequestActionSetPageIndex      RequestAction = "setPageIndex"
	RequestActionSetPageSize       RequestAction = "setPageSize"
	RequestActionNextPage          RequestAction = "nextPage"
	RequestActionPreviousPage      RequestAction = "previousPage"
	RequestActionToggleColumn      RequestAction = "toggleColumn"
	RequestActionToggleRow         RequestAction = "toggleRow"
	RequestActionToggleAllPageRows RequestAction = "toggleAllPageRows"
	RequestActionFacets            RequestAction = "facets"
	RequestActionExport            RequestAction = "export"

	// edit actions
	RequestActionEditRow      RequestAction = "editRow"
	RequestActionDeleteRow    RequestAction = "deleteRow"
	RequestActionCommitEdit   RequestAction = "commitEdit"
	RequestActionRollbackEdit RequestAction = "rollbackEdit"

	// grid actions
	RequestActionGridView         RequestAction = "gridView"
	RequestActionGridKey          RequestAction = "gridKey"
	RequestActionGridSetCell      RequestAction = "gridSetCell"
	RequestActionGridAddColumn    RequestAction = "gridAddColumn"
	RequestActionGridRemoveColumn RequestAction = "gridRemoveColumn"
	RequestActionGridAddRow       RequestAction = "gridAddRow"
	RequestActionGridRemoveRow    RequestAction = "gridRemoveRow"
	RequestActionGridSubmit       RequestAction = "gridSubmit"
)

func (action RequestAction) IsGridAction() bool {
	switch action {
	case RequestActionGridView, RequestActionGridKey, RequestActionGridSetCell,
		RequestActionGridAddColumn, RequestActionGridRemoveColumn, RequestActionGridAddRow,
		RequestActionGridRemoveRow, RequestActionGridSubmit:
		return true
	}
	return false
}

// IsReadOnly reports whether the action leaves dataset and grid state untouched.
func (action RequestAction) IsReadOnly() bool {
	switch action {
	case RequestActionListDatasets, RequestActionView, RequestActionFacets,
		RequestActionGridView, RequestActionGridSubmit:
		return true
	}
	return false
}
