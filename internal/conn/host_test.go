package conn_test

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/tobsdb/tablekit/client"
	"github.com/tobsdb/tablekit/internal/config"
	. "github.com/tobsdb/tablekit/internal/conn"
	"github.com/tobsdb/tablekit/internal/dataset"
	"github.com/tobsdb/tablekit/internal/mock"
	"github.com/tobsdb/tablekit/internal/types"
	"gotest.tools/assert"
)

func newTestHost(t *testing.T, latency time.Duration) (*httptest.Server, *client.Client) {
	host := NewHost(config.Default(), mock.NewSource(11, latency), LogOptions{})
	srv := httptest.NewServer(host.Handler())
	t.Cleanup(srv.Close)

	c, err := client.NewClient("ws" + strings.TrimPrefix(srv.URL, "http"))
	assert.NilError(t, err)
	assert.NilError(t, c.Connect())
	t.Cleanup(func() { c.Close() })
	return srv, c
}

// waitView reads pushed events until one for ds has finished loading key.
func waitView(t *testing.T, c *client.Client, ds, key string) dataset.Snapshot {
	t.Helper()
	timeout := time.After(5 * time.Second)
	for {
		select {
		case e := <-c.Events():
			if e.Event != EventView || e.Dataset != ds {
				continue
			}
			var v dataset.Snapshot
			assert.NilError(t, e.Decode(&v))
			if !v.Loading() && v.Key == key {
				return v
			}
		case <-timeout:
			t.Fatalf("no view pushed for %s", ds)
		}
	}
}

func TestHealth(t *testing.T) {
	srv, _ := newTestHost(t, 0)
	res, err := http.Get(srv.URL + "/health")
	assert.NilError(t, err)
	defer res.Body.Close()
	body, _ := io.ReadAll(res.Body)
	assert.Equal(t, res.StatusCode, http.StatusOK)
	assert.Equal(t, string(body), "ok")
}

func TestHostSession(t *testing.T) {
	_, c := newTestHost(t, 10*time.Millisecond)

	v := waitView(t, c, "employees", "employees")
	assert.Equal(t, v.Total, 50)

	res, err := c.Do("setGlobalFilter", map[string]any{"dataset": "employees", "value": "@"})
	assert.NilError(t, err)
	assert.Equal(t, res.Status, http.StatusOK, res.Message)
	assert.NilError(t, res.Decode(&v))
	assert.Equal(t, v.GlobalFilter, "@")

	res, err = c.Do("view", map[string]any{"dataset": "missing"})
	assert.NilError(t, err)
	assert.Equal(t, res.Status, http.StatusNotFound)

	t.Run("concurrent requests", func(t *testing.T) {
		done := make(chan client.Response, 10)
		for range 10 {
			go func() {
				res, _ := c.Do("gridView", nil)
				done <- res
			}()
		}
		for range 10 {
			assert.Equal(t, (<-done).Status, http.StatusOK)
		}
	})

	t.Run("export", func(t *testing.T) {
		res, err := c.Do("export", map[string]any{"dataset": "employees", "format": "pdf"})
		assert.NilError(t, err)
		assert.Equal(t, res.Status, http.StatusOK, res.Message)
		var out ExportResult
		assert.NilError(t, res.Decode(&out))
		assert.Equal(t, out.FileName, "table-data.pdf")
		assert.Assert(t, strings.HasPrefix(string(out.Content), "%PDF"))
	})

	t.Run("refresh pushes view", func(t *testing.T) {
		res, err := c.Do("refresh", map[string]any{"dataset": "candidates", "key": "candidates:2"})
		assert.NilError(t, err)
		assert.Equal(t, res.Status, http.StatusAccepted, res.Message)
		v := waitView(t, c, "candidates", "candidates:2")
		assert.Equal(t, v.Status, types.FetchStatusSuccess)
	})
}

func TestSessionsAreIsolated(t *testing.T) {
	srv, a := newTestHost(t, 0)
	b, err := client.NewClient("ws" + strings.TrimPrefix(srv.URL, "http"))
	assert.NilError(t, err)
	assert.NilError(t, b.Connect())
	defer b.Close()

	_, err = a.Do("gridAddRow", nil)
	assert.NilError(t, err)

	res, err := b.Do("gridView", nil)
	assert.NilError(t, err)
	var g GridView
	assert.NilError(t, res.Decode(&g))
	assert.Equal(t, len(g.Rows), 10)
}
