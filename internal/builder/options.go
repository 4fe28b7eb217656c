package builder

import (
	"github.com/tobsdb/tablekit/internal/paging"
)

type SearchableColumn struct {
	ID    string `json:"id" yaml:"id"`
	Title string `json:"title" yaml:"title"`
}

type FilterableColumn struct {
	ID      string        `json:"id" yaml:"id"`
	Title   string        `json:"title" yaml:"title"`
	Options []FacetOption `json:"options" yaml:"options"`
}

type RangeFilterColumn struct {
	ID    string  `json:"id" yaml:"id"`
	Title string  `json:"title" yaml:"title"`
	Min   float64 `json:"min" yaml:"min"`
	Max   float64 `json:"max" yaml:"max"`
}

// Options is the per table configuration declared by the host.
type Options struct {
	SearchableColumns  []SearchableColumn  `json:"searchableColumns"`
	FilterableColumns  []FilterableColumn  `json:"filterableColumns"`
	RangeFilterColumns []RangeFilterColumn `json:"rangeFilterColumns"`

	DefaultSort     *SortState `json:"defaultSort"`
	PaginationSizes []int      `json:"paginationSizes"`

	EnableRowSelection     bool `json:"enableRowSelection"`
	EnableColumnVisibility bool `json:"enableColumnVisibility"`
	EnablePagination       bool `json:"enablePagination"`
	EnableExport           bool `json:"enableExport"`
}

func DefaultOptions() Options {
	return Options{
		PaginationSizes:        append([]int{}, paging.DEFAULT_PAGE_SIZES...),
		EnableColumnVisibility: true,
		EnablePagination:       true,
		EnableExport:           true,
	}
}

func (o *Options) PageSizeAllowed(size int) bool {
	for _, s := range o.PaginationSizes {
		if s == size {
			return true
		}
	}
	return false
}

func (o *Options) DefaultPageSize() int {
	if len(o.PaginationSizes) == 0 {
		return paging.DEFAULT_PAGE_SIZES[0]
	}
	return o.PaginationSizes[0]
}
