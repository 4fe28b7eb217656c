package builder

import (
	"bytes"
	"encoding/json"
	"strings"
	"time"

	"github.com/araddon/dateparse"
	"github.com/pkg/errors"
	"github.com/tobsdb/tablekit/internal/types"
)

// Filter is the value of one column filter. Its shape depends on the column kind.
type Filter interface {
	Kind() types.ColumnKind
	// an empty filter puts no constraint on its column
	IsEmpty() bool
}

type TextFilter struct {
	Text string `json:"text"`
}

func (f TextFilter) Kind() types.ColumnKind { return types.ColumnKindText }
func (f TextFilter) IsEmpty() bool          { return f.Text == "" }

// FacetFilter accepts rows whose value is one of Values.
type FacetFilter struct {
	Values []string `json:"values"`
}

func (f FacetFilter) Kind() types.ColumnKind { return types.ColumnKindCategorical }
func (f FacetFilter) IsEmpty() bool          { return len(f.Values) == 0 }

// RangeFilter is an inclusive [Min, Max] numeric range, nil bounds are open.
type RangeFilter struct {
	Min *float64 `json:"min"`
	Max *float64 `json:"max"`
}

func (f RangeFilter) Kind() types.ColumnKind { return types.ColumnKindNumericRange }
func (f RangeFilter) IsEmpty() bool          { return f.Min == nil && f.Max == nil }

func NewRangeFilter(min, max float64) RangeFilter { return RangeFilter{&min, &max} }

// DateRangeFilter is an inclusive [Start, End] range.
// The filter only constrains rows once both ends are set.
type DateRangeFilter struct {
	Start *time.Time `json:"start"`
	End   *time.Time `json:"end"`
}

func (f DateRangeFilter) Kind() types.ColumnKind { return types.ColumnKindDateRange }
func (f DateRangeFilter) IsEmpty() bool          { return f.Start == nil && f.End == nil }

func NewDateRangeFilter(start, end time.Time) DateRangeFilter {
	return DateRangeFilter{&start, &end}
}

// DecodeFilter decodes a wire filter value for a column of the given kind.
//
//	text          "ahmed"
//	categorical   ["Admin", "Staff"] or "Admin"
//	numeric-range [20, 50], [null, 50] or {"min": 20, "max": 50}
//	date-range    ["2024-01-01", "2024-06-30"] or {"start": ..., "end": ...}
func DecodeFilter(kind types.ColumnKind, raw json.RawMessage) (Filter, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return emptyFilter(kind), nil
	}

	switch kind {
	case types.ColumnKindText:
		var text string
		if err := json.Unmarshal(raw, &text); err != nil {
			return nil, errors.Wrap(err, "text filter")
		}
		return TextFilter{text}, nil
	case types.ColumnKindCategorical:
		var values []string
		if raw[0] == '"' {
			var value string
			if err := json.Unmarshal(raw, &value); err != nil {
				return nil, errors.Wrap(err, "facet filter")
			}
			values = []string{value}
		} else if err := json.Unmarshal(raw, &values); err != nil {
			return nil, errors.Wrap(err, "facet filter")
		}
		return FacetFilter{values}, nil
	case types.ColumnKindNumericRange:
		var f RangeFilter
		if raw[0] == '[' {
			var bounds []*float64
			if err := json.Unmarshal(raw, &bounds); err != nil {
				return nil, errors.Wrap(err, "range filter")
			}
			if len(bounds) > 2 {
				return nil, errors.Errorf("range filter takes 2 bounds, got %d", len(bounds))
			}
			if len(bounds) > 0 {
				f.Min = bounds[0]
			}
			if len(bounds) > 1 {
				f.Max = bounds[1]
			}
		} else if err := json.Unmarshal(raw, &f); err != nil {
			return nil, errors.Wrap(err, "range filter")
		}
		return f, nil
	case types.ColumnKindDateRange:
		var bounds []*string
		if raw[0] == '[' {
			if err := json.Unmarshal(raw, &bounds); err != nil {
				return nil, errors.Wrap(err, "date range filter")
			}
		} else {
			var obj struct {
				Start *string `json:"start"`
				End   *string `json:"end"`
			}
			if err := json.Unmarshal(raw, &obj); err != nil {
				return nil, errors.Wrap(err, "date range filter")
			}
			bounds = []*string{obj.Start, obj.End}
		}
		if len(bounds) > 2 {
			return nil, errors.Errorf("date range filter takes 2 bounds, got %d", len(bounds))
		}
		var f DateRangeFilter
		for i, b := range bounds {
			if b == nil || strings.TrimSpace(*b) == "" {
				continue
			}
			d, err := dateparse.ParseAny(strings.TrimSpace(*b))
			if err != nil {
				return nil, errors.Wrapf(err, "date range filter bound %q", *b)
			}
			if i == 0 {
				f.Start = &d
			} else {
				f.End = &d
			}
		}
		return f, nil
	}
	return nil, errors.Wrapf(ErrFilterKind, "kind %q", kind)
}

func emptyFilter(kind types.ColumnKind) Filter {
	switch kind {
	case types.ColumnKindCategorical:
		return FacetFilter{}
	case types.ColumnKindNumericRange:
		return RangeFilter{}
	case types.ColumnKindDateRange:
		return DateRangeFilter{}
	}
	return TextFilter{}
}

// FilterJSON is the wire form of an active filter.
func FilterJSON(f Filter) any {
	switch f := f.(type) {
	case TextFilter:
		return f.Text
	case FacetFilter:
		return f.Values
	case RangeFilter:
		return []*float64{f.Min, f.Max}
	case DateRangeFilter:
		bounds := []*string{nil, nil}
		if f.Start != nil {
			s := f.Start.UTC().Format(time.RFC3339)
			bounds[0] = &s
		}
		if f.End != nil {
			s := f.End.UTC().Format(time.RFC3339)
			bounds[1] = &s
		}
		return bounds
	}
	return nil
}
