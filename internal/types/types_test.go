package types_test

import (
	"testing"

	. "github.com/tobsdb/tablekit/internal/types"
	"gotest.tools/assert"
)

func TestParseColumnKind(t *testing.T) {
	for _, k := range VALID_COLUMN_KINDS {
		parsed, err := ParseColumnKind(string(k))
		assert.NilError(t, err)
		assert.Equal(t, parsed, k)
	}

	_, err := ParseColumnKind("number")
	assert.ErrorContains(t, err, "number is not a valid column kind")
}

func TestParseSortDirection(t *testing.T) {
	d, err := ParseSortDirection("")
	assert.NilError(t, err)
	assert.Equal(t, d, SortAsc)

	d, err = ParseSortDirection("desc")
	assert.NilError(t, err)
	assert.Assert(t, d.Desc())

	_, err = ParseSortDirection("up")
	assert.ErrorContains(t, err, "not a valid sort direction")
}

func TestExportFormat(t *testing.T) {
	f, err := ParseExportFormat("xlsx")
	assert.NilError(t, err)
	assert.Equal(t, f, ExportFormatExcel)
	assert.Equal(t, f.Extension(), "xlsx")
	assert.Equal(t, ExportFormatCSV.MimeType(), "text/csv")
	assert.Equal(t, ExportFormatPDF.Extension(), "pdf")

	_, err = ParseExportFormat("docx")
	assert.ErrorContains(t, err, "docx is not a valid export format")
}
