package export

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/360EntSecGroup-Skylar/excelize"
	"github.com/Velocidex/ordereddict"
)

const SHEET_NAME = "Sheet1"

// Excel writes a workbook with a single sheet: the header row then one row per record.
func Excel(headers []string, records []*ordereddict.Dict, w io.Writer) error {
	f := excelize.NewFile()

	header := make([]interface{}, len(headers))
	for i, h := range headers {
		header[i] = h
	}
	f.SetSheetRow(SHEET_NAME, "A1", &header)

	for i, record := range records {
		row := make([]interface{}, len(headers))
		for j, h := range headers {
			row[j] = cellValue(value(record, h))
		}
		f.SetSheetRow(SHEET_NAME, fmt.Sprintf("A%d", i+2), &row)
	}
	return f.Write(w)
}

func cellValue(v any) interface{} {
	switch v := v.(type) {
	case nil:
		return ""
	case string, bool, int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64, float32, float64:
		return v
	case time.Time:
		return v.UTC().Format(time.RFC3339)
	case fmt.Stringer:
		return v.String()
	}
	encoded, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprint(v)
	}
	return string(encoded)
}
