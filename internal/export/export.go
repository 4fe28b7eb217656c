package export

import (
	"fmt"
	"io"

	"github.com/Velocidex/ordereddict"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/tobsdb/tablekit/internal/builder"
	"github.com/tobsdb/tablekit/internal/types"
	"github.com/tobsdb/tablekit/pkg"
)

const FILE_BASE_NAME = "table-data"

var ErrUnknownFormat = errors.New("unknown export format")

// ExportError is the failure of one export. The table it was taken from is unaffected.
type ExportError struct {
	Format types.ExportFormat
	Err    error
}

func (e *ExportError) Error() string { return fmt.Sprintf("%s export failed: %s", e.Format, e.Err) }
func (e *ExportError) Unwrap() error { return e.Err }

func FileName(format types.ExportFormat) string {
	return FILE_BASE_NAME + "." + format.Extension()
}

func Headers[R any](columns []*builder.Column[R]) []string {
	headers := make([]string, len(columns))
	for i, col := range columns {
		headers[i] = col.ID
	}
	return headers
}

// Records maps each row to a dict of its column values, keyed by column id
// in column order.
func Records[R any](columns []*builder.Column[R], rows []builder.Row[R]) []*ordereddict.Dict {
	records := make([]*ordereddict.Dict, len(rows))
	for i, row := range rows {
		record := ordereddict.NewDict()
		for _, col := range columns {
			value := col.Value(row.Original)
			if col.Stringify != nil && value != nil {
				value = col.Stringify(value)
			}
			record.Set(col.ID, value)
		}
		records[i] = record
	}
	return records
}

// Export writes the rows in the given format, one column per entry of columns.
func Export[R any](format types.ExportFormat, columns []*builder.Column[R], rows []builder.Row[R], w io.Writer) error {
	return Write(format, Headers(columns), Records(columns, rows), w)
}

// Write serializes records. A panic inside a writer is returned as an ExportError.
func Write(format types.ExportFormat, headers []string, records []*ordereddict.Dict, w io.Writer) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &ExportError{format, errors.Errorf("%v", r)}
		}
		if err != nil {
			pkg.ErrorLog("export:", err)
		}
	}()

	switch format {
	case types.ExportFormatCSV:
		err = CSV(headers, records, w)
	case types.ExportFormatExcel:
		err = Excel(headers, records, w)
	case types.ExportFormatPDF:
		err = PDF(headers, records, w)
	default:
		return &ExportError{format, errors.Wrapf(ErrUnknownFormat, "%q", format)}
	}
	if err != nil {
		return &ExportError{format, err}
	}
	pkg.LogFields(logrus.Fields{"format": format, "rows": len(records)}).Debug("exported")
	return nil
}

func value(record *ordereddict.Dict, key string) any {
	v, _ := record.Get(key)
	return v
}
