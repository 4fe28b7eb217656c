package render

import (
	"fmt"
	"io"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/olekukonko/tablewriter"
	"github.com/tobsdb/tablekit/internal/dataset"
)

const (
	ERROR_MESSAGE = "Error fetching data"
	EMPTY_MESSAGE = "No results."
	SKELETON_CELL = "░░░░░░"
	SKELETON_ROWS = 10
)

// Render writes a plain text rendition of s: toolbar, table and pager.
func Render(w io.Writer, s *dataset.Snapshot) error {
	if s.Failed() {
		_, err := fmt.Fprintln(w, ERROR_MESSAGE)
		return err
	}

	b := &strings.Builder{}
	b.WriteString(Toolbar(s))
	b.WriteByte('\n')

	tbl := tablewriter.NewWriter(b)
	tbl.SetAutoFormatHeaders(false)
	tbl.SetAutoWrapText(false)
	tbl.SetHeader(Headers(s))

	selection := s.Features.RowSelection
	switch {
	case s.Loading():
		n := min(s.PageSize, SKELETON_ROWS)
		for range n {
			row := make([]string, len(s.Visible))
			for i := range row {
				row[i] = SKELETON_CELL
			}
			if selection {
				row = append([]string{"[ ]"}, row...)
			}
			tbl.Append(row)
		}
	case len(s.Rows) == 0:
		tbl.SetFooter(emptyFooter(len(s.Visible), selection))
	default:
		for _, r := range s.Rows {
			row := r.Cells
			if r.Pending && len(row) > 0 {
				row = append([]string{}, r.Cells...)
				row[0] = "*" + row[0]
			}
			if selection {
				row = append([]string{checkbox(r.Selected)}, row...)
			}
			tbl.Append(row)
		}
	}
	tbl.Render()

	if s.Features.Pagination {
		b.WriteString(Pager(s))
		b.WriteByte('\n')
	}
	if s.ExportError != "" {
		fmt.Fprintf(b, "Export failed: %s\n", s.ExportError)
	}
	_, err := io.WriteString(w, b.String())
	return err
}

func checkbox(v bool) string {
	if v {
		return "[x]"
	}
	return "[ ]"
}

func emptyFooter(columns int, selection bool) []string {
	if selection {
		columns++
	}
	footer := make([]string, max(columns, 1))
	footer[0] = EMPTY_MESSAGE
	return footer
}

// Headers are the titles of the visible columns, the sorted one marked
// with its direction.
func Headers(s *dataset.Snapshot) []string {
	titles := map[string]string{}
	for _, c := range s.Columns {
		titles[c.ID] = c.Title
	}
	headers := []string{}
	if s.Features.RowSelection {
		all := len(s.Rows) > 0
		for _, r := range s.Rows {
			all = all && r.Selected
		}
		headers = append(headers, checkbox(all))
	}
	for _, id := range s.Visible {
		title := titles[id]
		if s.Sort.IsSet() && s.Sort.ColumnID == id {
			if s.Sort.Direction.Desc() {
				title += " ↓"
			} else {
				title += " ↑"
			}
		}
		headers = append(headers, title)
	}
	return headers
}

// Toolbar is the one line summary of search text, active filters and the
// reset affordance.
func Toolbar(s *dataset.Snapshot) string {
	parts := []string{}
	if s.GlobalFilter == "" {
		parts = append(parts, fmt.Sprintf("[%s]", s.Toolbar.SearchPlaceholder))
	} else {
		parts = append(parts, fmt.Sprintf("[%s]", s.GlobalFilter))
	}
	for _, f := range s.Filters {
		parts = append(parts, fmt.Sprintf("%s: %s", f.Title, filterText(f.Value)))
	}
	if s.Toolbar.ShowReset {
		parts = append(parts, "[Reset]")
	}
	return strings.Join(parts, "  ")
}

func bound[T any](v *T, f func(T) string) string {
	if v == nil {
		return "…"
	}
	return f(*v)
}

func filterText(v any) string {
	switch v := v.(type) {
	case string:
		return v
	case []string:
		return strings.Join(v, ", ")
	case []*float64:
		return bound(v[0], humanize.Ftoa) + " – " + bound(v[1], humanize.Ftoa)
	case []*string:
		id := func(s string) string { return s }
		return bound(v[0], id) + " – " + bound(v[1], id)
	}
	return fmt.Sprint(v)
}

// Pager is the footer line with page position, row window and page size.
func Pager(s *dataset.Snapshot) string {
	b := &strings.Builder{}
	if s.Features.RowSelection {
		fmt.Fprintf(b, "%s of %s row(s) selected.  ",
			humanize.Comma(int64(s.Selected)), humanize.Comma(int64(s.Total)))
	}
	page := s.PageIndex + 1
	if s.PageCount == 0 {
		page = 0
	}
	fmt.Fprintf(b, "Page %s of %s · rows %s–%s of %s · %d per page",
		humanize.Comma(int64(page)), humanize.Comma(int64(s.PageCount)),
		humanize.Comma(int64(s.From)), humanize.Comma(int64(s.To)),
		humanize.Comma(int64(s.Total)), s.PageSize)
	return b.String()
}
