package conn

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/tobsdb/tablekit/internal/config"
	"github.com/tobsdb/tablekit/internal/mock"
	"github.com/tobsdb/tablekit/pkg"
)

type LogOptions struct {
	Should_log      bool
	Show_debug_logs bool
}

// Host serves datasets and a shipment grid over websockets. Every
// connection gets a fresh session built from the config.
type Host struct {
	config *config.Config
	source *mock.Source
	// receives the rows of every grid submit
	Submit SubmitFunc
}

func NewHost(cfg *config.Config, source *mock.Source, log_options LogOptions) *Host {
	if log_options.Should_log {
		if log_options.Show_debug_logs {
			pkg.SetLogLevel(pkg.LogLevelDebug)
		} else {
			pkg.SetLogLevel(pkg.LogLevelErrOnly)
		}
	} else {
		pkg.SetLogLevel(pkg.LogLevelNone)
	}
	return &Host{config: cfg, source: source}
}

func (h *Host) NewSession() (*Session, error) {
	datasets, err := mock.Datasets(h.config, h.source)
	if err != nil {
		return nil, err
	}
	return NewSession(datasets, h.Submit), nil
}

func (h *Host) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})
	mux.HandleFunc("/", h.HandleConnection)
	return mux
}

func (h *Host) Listen(port int) {
	exit := make(chan os.Signal, 2)
	signal.Notify(exit, os.Interrupt, syscall.SIGTERM)

	s := &http.Server{
		Addr:         fmt.Sprintf(":%d", port),
		Handler:      h.Handler(),
		ReadTimeout:  0,
		WriteTimeout: 0,
	}

	go func() {
		err := s.ListenAndServe()
		if err != http.ErrServerClosed {
			pkg.FatalLog(err)
		}
	}()

	pkg.InfoLog("tablekit listening on port", port)
	<-exit
	pkg.DebugLog("Shutting down...")
	s.Shutdown(context.Background())
}
