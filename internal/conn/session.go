package conn

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/tobsdb/tablekit/internal/cache"
	"github.com/tobsdb/tablekit/internal/dataset"
	"github.com/tobsdb/tablekit/internal/grid"
	"github.com/tobsdb/tablekit/pkg"
)

type SubmitFunc func(rows []map[string]string) error

// Session is the state owned by one connection: its datasets and its grid.
// Nothing in it is shared with other sessions.
type Session struct {
	ID     uuid.UUID
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	Datasets pkg.Map[string, dataset.Handle]
	Grid     *grid.Grid
	submit   SubmitFunc
}

func NewSession(datasets map[string]dataset.Handle, submit SubmitFunc) *Session {
	ctx, cancel := context.WithCancel(context.Background())
	if submit == nil {
		submit = func(rows []map[string]string) error { return nil }
	}
	return &Session{
		ID:       uuid.New(),
		ctx:      ctx,
		cancel:   cancel,
		Datasets: datasets,
		Grid:     grid.NewShipmentGrid(),
		submit:   submit,
	}
}

func (s *Session) Names() []string {
	names := s.Datasets.Keys()
	sort.Strings(names)
	return names
}

// OnView calls fn with a fresh view whenever a fetch changes a dataset.
func (s *Session) OnView(fn func(name string, view dataset.Snapshot)) {
	for name, d := range s.Datasets {
		d.OnChange(func() { fn(name, d.View()) })
	}
}

// Refresh fetches d in the background. Only the latest fetch of a dataset
// lands, older ones are dropped by its cache.
func (s *Session) Refresh(d dataset.Handle, force bool) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		var err error
		if force {
			err = d.Refresh(s.ctx)
		} else {
			err = d.RefreshIfNeeded(s.ctx)
		}
		switch {
		case err == nil, errors.Is(err, context.Canceled):
		case errors.Is(err, cache.ErrSuperseded):
			s.log(d).Debug("fetch superseded")
		default:
			s.log(d).Warn("fetch failed: ", err)
		}
	}()
}

func (s *Session) log(d dataset.Handle) *logrus.Entry {
	return pkg.LogFields(logrus.Fields{"session": s.ID, "dataset": d.Name(), "key": d.Key()})
}

// Prefetch starts the first fetch of every dataset.
func (s *Session) Prefetch() {
	for _, name := range s.Names() {
		s.Refresh(s.Datasets.Get(name), false)
	}
}

// Close cancels in-flight fetches and waits for them to return.
func (s *Session) Close() {
	s.cancel()
	s.wg.Wait()
}
