package query

import (
	"math"
	"strings"

	"github.com/tobsdb/tablekit/internal/builder"
	"github.com/tobsdb/tablekit/pkg"
)

// MatchFilter reports if a cell value passes a column filter.
func MatchFilter[R any](col *builder.Column[R], value any, f builder.Filter) bool {
	if f == nil || f.IsEmpty() {
		return true
	}

	switch f := f.(type) {
	case builder.TextFilter:
		return strings.Contains(fold(Stringify(col, value)), fold(f.Text))
	case builder.FacetFilter:
		s := Stringify(col, value)
		for _, v := range f.Values {
			if v == s {
				return true
			}
		}
		return false
	case builder.RangeFilter:
		n, ok := pkg.NumToFloat(value)
		if !ok {
			return false
		}
		lo, hi := math.Inf(-1), math.Inf(1)
		if col.Min != nil {
			lo = *col.Min
		}
		if col.Max != nil {
			hi = *col.Max
		}
		if f.Min != nil {
			lo = *f.Min
		}
		if f.Max != nil {
			hi = *f.Max
		}
		// an inverted range matches nothing
		return lo <= n && n <= hi
	case builder.DateRangeFilter:
		if f.Start == nil || f.End == nil {
			return true
		}
		t, ok := toTime(value)
		if !ok {
			return false
		}
		return !t.Before(*f.Start) && !t.After(*f.End)
	}
	return true
}

// MatchGlobal reports if any searchable column of row contains text.
func MatchGlobal[R any](columns []*builder.Column[R], row R, text string) bool {
	if text == "" {
		return true
	}
	text = fold(text)
	for _, col := range columns {
		if !col.Searchable() {
			continue
		}
		value := col.Value(row)
		if col.Stringify != nil {
			if strings.Contains(fold(col.Stringify(value)), text) {
				return true
			}
			continue
		}
		if containsText(value, text) {
			return true
		}
	}
	return false
}
