package config

import (
	_ "embed"
	"os"
	"sort"

	"github.com/pkg/errors"
	"github.com/tobsdb/tablekit/internal/builder"
	"github.com/tobsdb/tablekit/internal/types"
	"gopkg.in/yaml.v3"
)

//go:embed default.yaml
var default_config []byte

var ErrInvalid = errors.New("invalid config")

type DefaultSort struct {
	ID   string `yaml:"id"`
	Desc bool   `yaml:"desc"`
}

// Dataset is the table configuration of one dataset. Unset toggles take
// their default.
type Dataset struct {
	Key                string                      `yaml:"key"`
	SearchableColumns  []builder.SearchableColumn  `yaml:"searchableColumns"`
	FilterableColumns  []builder.FilterableColumn  `yaml:"filterableColumns"`
	RangeFilterColumns []builder.RangeFilterColumn `yaml:"rangeFilterColumns"`
	DefaultSort        *DefaultSort                `yaml:"defaultSort"`
	PaginationSizes    []int                       `yaml:"paginationSizes"`

	EnableRowSelection     *bool `yaml:"enableRowSelection"`
	EnableColumnVisibility *bool `yaml:"enableColumnVisibility"`
	EnablePagination       *bool `yaml:"enablePagination"`
	EnableExport           *bool `yaml:"enableExport"`
}

type Config struct {
	Datasets map[string]*Dataset `yaml:"datasets"`
}

func Default() *Config {
	c, err := Parse(default_config)
	if err != nil {
		panic(err)
	}
	return c
}

func Load(path string) (*Config, error) {
	buf, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "reading config")
	}
	return Parse(buf)
}

func Parse(buf []byte) (*Config, error) {
	var c Config
	if err := yaml.Unmarshal(buf, &c); err != nil {
		return nil, errors.Wrap(ErrInvalid, err.Error())
	}
	if c.Datasets == nil {
		c.Datasets = map[string]*Dataset{}
	}
	for name, d := range c.Datasets {
		if d == nil {
			d = &Dataset{}
			c.Datasets[name] = d
		}
		if d.Key == "" {
			d.Key = name
		}
		if err := d.check(); err != nil {
			return nil, errors.Wrapf(err, "dataset %s", name)
		}
	}
	return &c, nil
}

// Names returns the configured dataset names, sorted.
func (c *Config) Names() []string {
	names := make([]string, 0, len(c.Datasets))
	for name := range c.Datasets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (d *Dataset) check() error {
	for _, size := range d.PaginationSizes {
		if size <= 0 {
			return errors.Wrapf(ErrInvalid, "page size %d", size)
		}
	}
	for _, r := range d.RangeFilterColumns {
		if r.Min > r.Max {
			return errors.Wrapf(ErrInvalid, "range column %s has min %v > max %v", r.ID, r.Min, r.Max)
		}
	}
	return nil
}

// Validate checks every referenced column id against the dataset's columns.
func (d *Dataset) Validate(columns []string) error {
	known := map[string]bool{}
	for _, c := range columns {
		known[c] = true
	}
	ids := []string{}
	for _, c := range d.SearchableColumns {
		ids = append(ids, c.ID)
	}
	for _, c := range d.FilterableColumns {
		ids = append(ids, c.ID)
	}
	for _, c := range d.RangeFilterColumns {
		ids = append(ids, c.ID)
	}
	if d.DefaultSort != nil {
		ids = append(ids, d.DefaultSort.ID)
	}
	for _, id := range ids {
		if !known[id] {
			return errors.Wrapf(ErrInvalid, "unknown column %q", id)
		}
	}
	return nil
}

func toggle(v *bool, def bool) bool {
	if v == nil {
		return def
	}
	return *v
}

func (d *Dataset) Options() builder.Options {
	o := builder.DefaultOptions()
	o.SearchableColumns = d.SearchableColumns
	o.FilterableColumns = d.FilterableColumns
	o.RangeFilterColumns = d.RangeFilterColumns
	if len(d.PaginationSizes) > 0 {
		o.PaginationSizes = d.PaginationSizes
	}
	if d.DefaultSort != nil && d.DefaultSort.ID != "" {
		dir := types.SortAsc
		if d.DefaultSort.Desc {
			dir = types.SortDesc
		}
		o.DefaultSort = &builder.SortState{ColumnID: d.DefaultSort.ID, Direction: dir}
	}
	o.EnableRowSelection = toggle(d.EnableRowSelection, o.EnableRowSelection)
	o.EnableColumnVisibility = toggle(d.EnableColumnVisibility, o.EnableColumnVisibility)
	o.EnablePagination = toggle(d.EnablePagination, o.EnablePagination)
	o.EnableExport = toggle(d.EnableExport, o.EnableExport)
	return o
}
