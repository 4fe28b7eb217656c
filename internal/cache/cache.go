package cache

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/tobsdb/tablekit/internal/types"
	"github.com/tobsdb/tablekit/pkg"
)

var ErrSuperseded = errors.New("fetch superseded by a newer request")

type FetchFunc[R any] func(ctx context.Context) ([]R, error)

type Entry[R any] struct {
	Key       string
	Data      []R
	Status    types.FetchStatus
	RequestID uint64
	Err       error
	UpdatedAt time.Time
	// set by Invalidate, cleared by the next successful fetch
	Stale bool
}

// Cache holds one entry per query key. Only the newest request for the
// bound key may change what the table shows.
type Cache[R any] struct {
	locker sync.RWMutex

	entries pkg.Map[string, *Entry[R]]
	bound   string
	next_id atomic.Uint64
}

func New[R any](key string) *Cache[R] {
	return &Cache[R]{entries: pkg.Map[string, *Entry[R]]{}, bound: key}
}

func (c *Cache[R]) GetLocker() *sync.RWMutex { return &c.locker }

func (c *Cache[R]) Bind(key string) {
	pkg.LockWrap(c, func() { c.bound = key })
}

func (c *Cache[R]) Bound() string {
	c.locker.RLock()
	defer c.locker.RUnlock()
	return c.bound
}

// Begin starts a request for key and marks its entry as loading.
func (c *Cache[R]) Begin(key string) uint64 {
	id := c.next_id.Add(1)
	pkg.LockWrap(c, func() {
		entry := c.entries.Get(key)
		if entry == nil {
			entry = &Entry[R]{Key: key}
			c.entries.Set(key, entry)
		}
		entry.RequestID = id
		entry.Status = types.FetchStatusLoading
	})
	return id
}

// Resolve completes request id. A request that is no longer the newest
// for its key, or whose key is no longer bound, changes nothing and
// returns ErrSuperseded.
func (c *Cache[R]) Resolve(key string, id uint64, data []R, fetch_err error) error {
	return pkg.LockWrapErr(c, func() error {
		entry := c.entries.Get(key)
		if entry == nil || entry.RequestID != id {
			return c.superseded(key, id)
		}
		if key != c.bound {
			// nothing else is in flight for this key, let the next bind refetch it
			entry.Status = types.FetchStatusIdle
			return c.superseded(key, id)
		}

		entry.UpdatedAt = time.Now()
		if fetch_err != nil {
			entry.Status = types.FetchStatusError
			entry.Err = fetch_err
			entry.Data = nil
			pkg.LogFields(logrus.Fields{"key": key, "request": id}).Error("fetch failed: ", fetch_err)
			return nil
		}
		entry.Status = types.FetchStatusSuccess
		entry.Err = nil
		entry.Stale = false
		entry.Data = data
		return nil
	})
}

func (c *Cache[R]) superseded(key string, id uint64) error {
	pkg.LogFields(logrus.Fields{"key": key, "request": id, "bound": c.bound}).Debug("dropping superseded fetch")
	return errors.Wrapf(ErrSuperseded, "key %q request %d", key, id)
}

// Fetch runs one request for key. The returned error is either the fetch
// error or ErrSuperseded.
func (c *Cache[R]) Fetch(ctx context.Context, key string, fn FetchFunc[R]) (Entry[R], error) {
	id := c.Begin(key)
	data, fetch_err := fn(ctx)
	if err := c.Resolve(key, id, data, fetch_err); err != nil {
		return Entry[R]{}, err
	}
	entry, _ := c.Get(key)
	return entry, fetch_err
}

// Get returns a copy of the entry for key.
func (c *Cache[R]) Get(key string) (Entry[R], bool) {
	c.locker.RLock()
	defer c.locker.RUnlock()
	entry := c.entries.Get(key)
	if entry == nil {
		return Entry[R]{Key: key, Status: types.FetchStatusIdle}, false
	}
	return *entry, true
}

// Current returns the entry of the bound key.
func (c *Cache[R]) Current() Entry[R] {
	entry, _ := c.Get(c.Bound())
	return entry
}

// Set replaces the data of a key without a fetch, used to fold in committed edits.
func (c *Cache[R]) Set(key string, data []R) {
	pkg.LockWrap(c, func() {
		entry := c.entries.Get(key)
		if entry == nil {
			entry = &Entry[R]{Key: key, RequestID: c.next_id.Add(1)}
			c.entries.Set(key, entry)
		}
		entry.Data = data
		entry.Status = types.FetchStatusSuccess
		entry.Err = nil
		entry.UpdatedAt = time.Now()
	})
}

func (c *Cache[R]) Invalidate(key string) {
	pkg.LockWrap(c, func() {
		if entry := c.entries.Get(key); entry != nil {
			entry.Stale = true
		}
	})
}

// NeedsFetch reports if the entry for key has to be (re)fetched before it can be shown.
func (c *Cache[R]) NeedsFetch(key string) bool {
	entry, ok := c.Get(key)
	if !ok || entry.Stale {
		return true
	}
	return entry.Status == types.FetchStatusIdle || entry.Status == types.FetchStatusError
}
