package export

import (
	"bufio"
	"bytes"
	"encoding/json"
	"io"
	"strings"

	"github.com/Velocidex/ordereddict"
	"github.com/pkg/errors"
)

// CSV writes the headers comma joined, then one line per record with every
// value JSON encoded on its own. nil values are left empty.
func CSV(headers []string, records []*ordereddict.Dict, w io.Writer) error {
	buf := bufio.NewWriter(w)
	var cell bytes.Buffer
	enc := json.NewEncoder(&cell)
	enc.SetEscapeHTML(false)
	buf.WriteString(strings.Join(headers, ","))
	for _, record := range records {
		buf.WriteByte('\n')
		for i, h := range headers {
			if i > 0 {
				buf.WriteByte(',')
			}
			v := value(record, h)
			if v == nil {
				continue
			}
			cell.Reset()
			if err := enc.Encode(v); err != nil {
				return errors.Wrapf(err, "column %s", h)
			}
			buf.Write(bytes.TrimSuffix(cell.Bytes(), []byte("\n")))
		}
	}
	return buf.Flush()
}
