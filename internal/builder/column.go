package builder

import (
	"github.com/tobsdb/tablekit/internal/types"
)

type FacetOption struct {
	Label string `json:"label" yaml:"label"`
	Value string `json:"value" yaml:"value"`
}

// Column describes how to read, filter, sort and render one field of R.
// The zero value of the booleans is visible, sortable and searchable.
type Column[R any] struct {
	ID    string
	Title string
	Kind  types.ColumnKind

	// nil for display-only columns such as row actions
	Accessor func(R) any

	Hidden              bool
	DisableSort         bool
	DisableGlobalFilter bool

	// optional overrides for the default stringify/compare rules
	Stringify func(any) string
	Compare   func(a, b any) int
	// display form of a cell, views only
	Format func(any) string

	// range extremes, set from the range filter config
	Min *float64
	Max *float64

	// facet options, set from the filterable column config
	Options []FacetOption
}

func (c *Column[R]) Visible() bool    { return !c.Hidden }
func (c *Column[R]) Sortable() bool   { return !c.DisableSort && c.Accessor != nil }
func (c *Column[R]) Searchable() bool { return !c.DisableGlobalFilter && c.Accessor != nil }

func (c *Column[R]) Value(row R) any {
	if c.Accessor == nil {
		return nil
	}
	return c.Accessor(row)
}

func (c *Column[R]) Label() string {
	if c.Title == "" {
		return c.ID
	}
	return c.Title
}

// ColumnInfo is the non-generic description of a column handed to hosts.
type ColumnInfo struct {
	ID       string           `json:"id"`
	Title    string           `json:"title"`
	Kind     types.ColumnKind `json:"kind"`
	Visible  bool             `json:"visible"`
	Sortable bool             `json:"sortable"`
	Min      *float64         `json:"min,omitempty"`
	Max      *float64         `json:"max,omitempty"`
	Options  []FacetOption    `json:"options,omitempty"`
}

func (c *Column[R]) Info(visible bool) ColumnInfo {
	return ColumnInfo{c.ID, c.Label(), c.Kind, visible, c.Sortable(), c.Min, c.Max, c.Options}
}
