package types

import "github.com/pkg/errors"

var VALID_EXPORT_FORMATS = []ExportFormat{
	ExportFormatCSV, ExportFormatExcel, ExportFormatPDF,
}

type ExportFormat string

const (
	ExportFormatCSV   ExportFormat = "csv"
	ExportFormatExcel ExportFormat = "excel"
	ExportFormatPDF   ExportFormat = "pdf"
)

func ParseExportFormat(s string) (ExportFormat, error) {
	switch s {
	case "csv":
		return ExportFormatCSV, nil
	case "excel", "xlsx":
		return ExportFormatExcel, nil
	case "pdf":
		return ExportFormatPDF, nil
	}
	return "", errors.Errorf("%s is not a valid export format", s)
}

func (f ExportFormat) Extension() string {
	switch f {
	case ExportFormatCSV:
		return "csv"
	case ExportFormatExcel:
		return "xlsx"
	case ExportFormatPDF:
		return "pdf"
	}
	return ""
}

func (f ExportFormat) MimeType() string {
	switch f {
	case ExportFormatCSV:
		return "text/csv"
	case ExportFormatExcel:
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	case ExportFormatPDF:
		return "application/pdf"
	}
	return "application/octet-stream"
}
