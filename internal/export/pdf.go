package export

import (
	"io"

	"github.com/Velocidex/ordereddict"
	"github.com/go-pdf/fpdf"
	"github.com/tobsdb/tablekit/internal/paging"
	"github.com/tobsdb/tablekit/internal/query"
)

const (
	PDF_ROWS_PER_PAGE = 35
	pdfMargin         = 10.0
	pdfRowHeight      = 7.0
	pdfPageWidth      = 210.0
)

// PDF writes an A4 document with the header row repeated on every page.
func PDF(headers []string, records []*ordereddict.Dict, w io.Writer) error {
	doc := fpdf.New("P", "mm", "A4", "")
	doc.SetMargins(pdfMargin, pdfMargin, pdfMargin)
	doc.SetAutoPageBreak(false, pdfMargin)
	tr := doc.UnicodeTranslatorFromDescriptor("")

	width := pdfPageWidth - 2*pdfMargin
	if len(headers) > 0 {
		width /= float64(len(headers))
	}

	header := func() {
		doc.SetFont("Helvetica", "B", 9)
		doc.SetFillColor(41, 128, 185)
		doc.SetTextColor(255, 255, 255)
		for _, h := range headers {
			doc.CellFormat(width, pdfRowHeight, tr(h), "1", 0, "L", true, 0, "")
		}
		doc.Ln(-1)
		doc.SetFont("Helvetica", "", 8)
		doc.SetTextColor(0, 0, 0)
	}

	pages := paging.Chunk(records, PDF_ROWS_PER_PAGE)
	if len(pages) == 0 {
		pages = [][]*ordereddict.Dict{nil}
	}
	for _, page := range pages {
		doc.AddPage()
		header()
		for _, record := range page {
			for _, h := range headers {
				doc.CellFormat(width, pdfRowHeight, tr(query.StringifyValue(value(record, h))), "1", 0, "L", false, 0, "")
			}
			doc.Ln(-1)
		}
	}

	if err := doc.Error(); err != nil {
		return err
	}
	return doc.Output(w)
}
