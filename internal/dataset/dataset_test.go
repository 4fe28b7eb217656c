package dataset_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/tobsdb/tablekit/internal/builder"
	"github.com/tobsdb/tablekit/internal/cache"
	. "github.com/tobsdb/tablekit/internal/dataset"
	"github.com/tobsdb/tablekit/internal/types"
	"gotest.tools/assert"
)

type shipment struct {
	ID     string  `json:"id"`
	Owner  string  `json:"owner"`
	Weight float64 `json:"weight"`
}

func shipments(prefix string, n int) []shipment {
	data := make([]shipment, n)
	for i := range data {
		data[i] = shipment{fmt.Sprint(prefix, i), fmt.Sprint("owner ", i), float64(i * 10)}
	}
	return data
}

func columns() []builder.Column[shipment] {
	return []builder.Column[shipment]{
		{ID: "id", Title: "ID", Accessor: func(s shipment) any { return s.ID }},
		{ID: "owner", Title: "Owner", Accessor: func(s shipment) any { return s.Owner }},
		{ID: "weight", Title: "Weight", Accessor: func(s shipment) any { return s.Weight }},
	}
}

func staticFetcher(key string) (cache.FetchFunc[shipment], error) {
	switch key {
	case "a", "b":
		return func(ctx context.Context) ([]shipment, error) { return shipments(key, 10), nil }, nil
	case "broken":
		return func(ctx context.Context) ([]shipment, error) { return nil, errors.New("backend down") }, nil
	}
	return nil, errors.Errorf("unknown key %s", key)
}

func newDataset(t *testing.T, opts builder.Options, fetcher Fetcher[shipment]) *Dataset[shipment] {
	opts.SearchableColumns = []builder.SearchableColumn{{ID: "owner", Title: "Owner"}, {ID: "id", Title: "ID"}}
	opts.RangeFilterColumns = []builder.RangeFilterColumn{{ID: "weight", Title: "Weight", Min: 0, Max: 100}}
	d, err := New(Config[shipment]{
		Name:    "shipments",
		Key:     "a",
		Columns: columns(),
		Options: opts,
		IDFunc:  func(s shipment) string { return s.ID },
		Fetcher: fetcher,
	})
	assert.NilError(t, err)
	return d
}

func TestView(t *testing.T) {
	d := newDataset(t, builder.DefaultOptions(), staticFetcher)
	assert.Equal(t, d.View().Status, types.FetchStatusIdle)
	assert.NilError(t, d.Refresh(context.Background()))

	s := d.View()
	assert.Equal(t, s.Status, types.FetchStatusSuccess)
	assert.Equal(t, s.Total, 10)
	assert.Equal(t, len(s.Rows), 10)
	assert.Equal(t, s.From, 1)
	assert.Equal(t, s.To, 10)
	assert.DeepEqual(t, s.Visible, []string{"id", "owner", "weight"})
	assert.DeepEqual(t, s.Rows[2].Cells, []string{"a2", "owner 2", "20"})
	assert.Equal(t, s.Toolbar.SearchPlaceholder, "Search Owner, ID...")

	t.Run("Filters", func(t *testing.T) {
		assert.NilError(t, d.SetColumnFilter("weight", json.RawMessage(`[20, 50]`)))
		s := d.View()
		assert.Equal(t, s.Total, 4)
		assert.Assert(t, s.Toolbar.ShowReset)
		assert.Equal(t, s.Filters[0].ID, "weight")

		err := d.SetColumnFilter("weight", json.RawMessage(`"heavy"`))
		assert.Assert(t, errors.Is(err, builder.ErrFilterKind))

		d.Reset()
		assert.Equal(t, d.View().Total, 10)
	})

	t.Run("Hidden column", func(t *testing.T) {
		assert.NilError(t, d.ToggleColumn("owner"))
		s := d.View()
		assert.DeepEqual(t, s.Visible, []string{"id", "weight"})
		assert.Equal(t, len(s.Rows[0].Cells), 2)

		// hidden columns still match the global filter
		d.SetGlobalFilter("owner 3")
		assert.Equal(t, d.View().Total, 1)
		d.Reset()
		assert.NilError(t, d.ToggleColumn("owner"))
	})
}

func TestLoadingAndError(t *testing.T) {
	release := make(chan struct{})
	fetcher := func(key string) (cache.FetchFunc[shipment], error) {
		return func(ctx context.Context) ([]shipment, error) {
			<-release
			if key == "broken" {
				return nil, errors.New("backend down")
			}
			return shipments(key, 3), nil
		}, nil
	}
	d := newDataset(t, builder.DefaultOptions(), fetcher)

	done := make(chan error)
	go func() { done <- d.Refresh(context.Background()) }()
	// wait for the request to start
	for d.Status() != types.FetchStatusLoading {
		time.Sleep(time.Millisecond)
	}
	s := d.View()
	assert.Assert(t, s.Loading())
	assert.Equal(t, len(s.Rows), 0)
	assert.Equal(t, len(s.Visible), 3)
	close(release)
	assert.NilError(t, <-done)
	assert.Equal(t, len(d.View().Rows), 3)

	_, err := d.Rebind("broken")
	assert.NilError(t, err)
	assert.ErrorContains(t, d.Refresh(context.Background()), "backend down")
	s = d.View()
	assert.Assert(t, s.Failed())
	assert.Equal(t, s.Error, "backend down")
	assert.Equal(t, len(s.Rows), 0)
}

func TestSupersession(t *testing.T) {
	gates := map[string]chan struct{}{"a": make(chan struct{}), "b": make(chan struct{})}
	started := make(chan string, 2)
	fetcher := func(key string) (cache.FetchFunc[shipment], error) {
		return func(ctx context.Context) ([]shipment, error) {
			started <- key
			<-gates[key]
			return shipments(key, 2), nil
		}, nil
	}
	d := newDataset(t, builder.DefaultOptions(), fetcher)

	wg := sync.WaitGroup{}
	var a_err error
	wg.Add(1)
	go func() {
		defer wg.Done()
		a_err = d.Refresh(context.Background())
	}()
	assert.Equal(t, <-started, "a")

	_, err := d.Rebind("b")
	assert.NilError(t, err)
	b_done := make(chan error)
	go func() { b_done <- d.Refresh(context.Background()) }()
	assert.Equal(t, <-started, "b")

	close(gates["b"])
	assert.NilError(t, <-b_done)
	close(gates["a"])
	wg.Wait()

	assert.Assert(t, errors.Is(a_err, cache.ErrSuperseded))
	s := d.View()
	assert.Equal(t, s.Key, "b")
	assert.Equal(t, string(s.Rows[0].ID), "b0")
}

func TestEdits(t *testing.T) {
	d := newDataset(t, builder.DefaultOptions(), staticFetcher)
	assert.NilError(t, d.Refresh(context.Background()))

	assert.NilError(t, d.EditRow("a1", json.RawMessage(`{"owner": "ahmed"}`)))
	s := d.View()
	assert.Equal(t, s.Rows[1].Cells[1], "ahmed")
	assert.Assert(t, s.Rows[1].Pending)
	assert.Equal(t, s.Pending, 1)

	assert.NilError(t, d.Rollback("a1"))
	assert.Equal(t, d.View().Rows[1].Cells[1], "owner 1")

	assert.NilError(t, d.EditRow("a1", json.RawMessage(`{"owner": "ahmed"}`)))
	assert.NilError(t, d.Remove("a2"))
	assert.NilError(t, d.Commit("a1"))
	s = d.View()
	assert.Equal(t, s.Total, 9)
	assert.Equal(t, s.Rows[1].Cells[1], "ahmed")
	assert.Assert(t, !s.Rows[1].Pending)

	assert.NilError(t, d.Rollback("a2"))
	assert.Equal(t, d.View().Total, 10)

	assert.Assert(t, errors.Is(d.EditRow("nope", json.RawMessage(`{}`)), builder.ErrUnknownRow))
	assert.Assert(t, errors.Is(d.Commit("a3"), builder.ErrUnknownRow))
}

func TestSelection(t *testing.T) {
	opts := builder.DefaultOptions()
	opts.EnableRowSelection = true
	d := newDataset(t, opts, staticFetcher)
	assert.NilError(t, d.Refresh(context.Background()))

	assert.NilError(t, d.ToggleAllPageRows())
	assert.Equal(t, d.View().Selected, 10)
	assert.NilError(t, d.ToggleRow("a0"))
	assert.Equal(t, d.View().Selected, 9)
	assert.NilError(t, d.ToggleAllPageRows())
	assert.Equal(t, d.View().Selected, 10)
	assert.NilError(t, d.ToggleAllPageRows())
	assert.Equal(t, d.View().Selected, 0)
}

func TestPaging(t *testing.T) {
	d := newDataset(t, builder.DefaultOptions(), staticFetcher)
	assert.NilError(t, d.Refresh(context.Background()))

	for i := 0; i < 3; i++ {
		assert.NilError(t, d.NextPage())
	}
	assert.Equal(t, d.View().PageIndex, 0)
	assert.Assert(t, errors.Is(d.SetPageSize(15), builder.ErrPageSize))
}

func TestExport(t *testing.T) {
	d := newDataset(t, builder.DefaultOptions(), staticFetcher)
	assert.NilError(t, d.Refresh(context.Background()))
	assert.NilError(t, d.SetColumnFilter("weight", json.RawMessage(`[0, 20]`)))
	assert.NilError(t, d.ToggleColumn("weight"))

	var buf bytes.Buffer
	assert.NilError(t, d.Export(types.ExportFormatCSV, &buf))
	assert.Equal(t, buf.String(), strings.Join([]string{
		"id,owner", `"a0","owner 0"`, `"a1","owner 1"`, `"a2","owner 2"`,
	}, "\n"))

	assert.Assert(t, d.Export("docx", &buf) != nil)
	assert.Assert(t, d.View().ExportError != "")

	t.Run("Disabled", func(t *testing.T) {
		opts := builder.DefaultOptions()
		opts.EnableExport = false
		d := newDataset(t, opts, staticFetcher)
		assert.Assert(t, errors.Is(d.Export(types.ExportFormatCSV, &buf), builder.ErrFeatureDisabled))
	})
}
