package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/alecthomas/kingpin/v2"
	"github.com/pkg/errors"
	"github.com/tobsdb/tablekit/internal/config"
	"github.com/tobsdb/tablekit/internal/dataset"
	"github.com/tobsdb/tablekit/internal/export"
	"github.com/tobsdb/tablekit/internal/mock"
	"github.com/tobsdb/tablekit/internal/render"
	"github.com/tobsdb/tablekit/internal/types"
	"github.com/tobsdb/tablekit/pkg"
)

var (
	app = kingpin.New("tkit-export", "Filter, sort and export a generated dataset.")

	name        = app.Arg("dataset", "dataset to export").Default("employees").String()
	config_path = app.Flag("config", "dataset config file, the built-in config when empty").String()
	seed        = app.Flag("seed", "seed of the generated rows").Default("1").Int64()
	global      = app.Flag("global", "global search text").String()
	filters     = app.Flag("filter", "column filter as id=value, repeatable").Strings()
	ranges      = app.Flag("range", "range filter as id=min:max, either bound may be empty").Strings()
	sort_by     = app.Flag("sort", "sort as id or id:desc").String()
	format      = app.Flag("format", "csv, excel or pdf").Default("csv").Enum("csv", "excel", "xlsx", "pdf")
	out         = app.Flag("out", "output file, table-data.<ext> when empty").String()
	debug       = app.Flag("debug", "show debug logs").Bool()
)

func splitFlag(s, sep string) (string, string, error) {
	id, value, ok := strings.Cut(s, sep)
	if !ok || id == "" {
		return "", "", errors.Errorf("malformed flag value %q", s)
	}
	return id, value, nil
}

func columnKind(view dataset.Snapshot, id string) types.ColumnKind {
	for _, c := range view.Columns {
		if c.ID == id {
			return c.Kind
		}
	}
	return ""
}

// rangeJSON encodes min:max as a two element bound array, empty bounds as null.
func rangeJSON(kind types.ColumnKind, value string) (json.RawMessage, error) {
	lo, hi, _ := strings.Cut(value, ":")
	bounds := []any{nil, nil}
	for i, b := range []string{lo, hi} {
		if b == "" {
			continue
		}
		if kind == types.ColumnKindDateRange {
			bounds[i] = b
			continue
		}
		n, err := strconv.ParseFloat(b, 64)
		if err != nil {
			return nil, errors.Wrapf(err, "range bound %q", b)
		}
		bounds[i] = n
	}
	return json.Marshal(bounds)
}

func apply(d dataset.Handle) error {
	d.SetGlobalFilter(*global)

	facets := map[string][]string{}
	order := []string{}
	for _, f := range *filters {
		id, value, err := splitFlag(f, "=")
		if err != nil {
			return err
		}
		if _, ok := facets[id]; !ok {
			order = append(order, id)
		}
		facets[id] = append(facets[id], value)
	}
	view := d.View()
	for _, id := range order {
		var value any = facets[id]
		if columnKind(view, id) != types.ColumnKindCategorical {
			value = strings.Join(facets[id], " ")
		}
		raw, _ := json.Marshal(value)
		if err := d.SetColumnFilter(id, raw); err != nil {
			return errors.Wrapf(err, "--filter %s", id)
		}
	}

	for _, r := range *ranges {
		id, value, err := splitFlag(r, "=")
		if err != nil {
			return err
		}
		raw, err := rangeJSON(columnKind(view, id), value)
		if err != nil {
			return err
		}
		if err := d.SetColumnFilter(id, raw); err != nil {
			return errors.Wrapf(err, "--range %s", id)
		}
	}

	if *sort_by != "" {
		id, dir, _ := strings.Cut(*sort_by, ":")
		direction, err := types.ParseSortDirection(dir)
		if err != nil {
			return err
		}
		if err := d.SetSort(id, direction); err != nil {
			return errors.Wrapf(err, "--sort %s", id)
		}
	}
	return nil
}

func main() {
	kingpin.MustParse(app.Parse(os.Args[1:]))
	if *debug {
		pkg.SetLogLevel(pkg.LogLevelDebug)
	}

	cfg := config.Default()
	if *config_path != "" {
		var err error
		cfg, err = config.Load(*config_path)
		app.FatalIfError(err, "Unable to load config file")
	}

	handles, err := mock.Datasets(cfg, mock.NewSource(*seed, 0))
	app.FatalIfError(err, "Unable to build datasets")
	d, ok := handles[*name]
	if !ok {
		app.Fatalf("unknown dataset %s", *name)
	}

	app.FatalIfError(d.Refresh(context.Background()), "Fetching %s", *name)
	app.FatalIfError(apply(d), "Applying filters")

	f, err := types.ParseExportFormat(*format)
	app.FatalIfError(err, "Export format")
	path := *out
	if path == "" {
		path = export.FileName(f)
	}

	file, err := os.Create(path)
	app.FatalIfError(err, "Creating %s", path)
	err = d.Export(f, file)
	if cerr := file.Close(); err == nil {
		err = cerr
	}
	app.FatalIfError(err, "Exporting %s", *name)

	view := d.View()
	app.FatalIfError(render.Render(os.Stdout, &view), "Rendering")
	fmt.Printf("Wrote %d rows to %s\n", view.Total, path)
}
