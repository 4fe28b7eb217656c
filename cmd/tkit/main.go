package main

import (
	"os"

	"github.com/alecthomas/kingpin/v2"
	"github.com/tobsdb/tablekit/internal/config"
	"github.com/tobsdb/tablekit/internal/conn"
	"github.com/tobsdb/tablekit/internal/mock"
	"github.com/tobsdb/tablekit/pkg"
)

var (
	app = kingpin.New("tkit", "Serve tablekit datasets and the shipment grid over websockets.")

	port        = app.Flag("port", "listening port").Default("7085").Envar("TKIT_PORT").Int()
	config_path = app.Flag("config", "dataset config file, the built-in config when empty").Envar("TKIT_CONFIG").String()
	latency     = app.Flag("latency", "simulated fetch latency").Default("300ms").Envar("TKIT_LATENCY").Duration()
	seed        = app.Flag("seed", "seed of the generated rows").Default("1").Envar("TKIT_SEED").Int64()
	should_log  = app.Flag("log", "enable logging").Envar("TKIT_LOG").Bool()
	debug       = app.Flag("debug", "show debug logs").Envar("TKIT_DEBUG").Bool()
)

func main() {
	kingpin.MustParse(app.Parse(os.Args[1:]))

	cfg := config.Default()
	if *config_path != "" {
		var err error
		cfg, err = config.Load(*config_path)
		app.FatalIfError(err, "Unable to load config file")
	}

	host := conn.NewHost(cfg, mock.NewSource(*seed, *latency), conn.LogOptions{
		Should_log:      *should_log,
		Show_debug_logs: *debug,
	})
	host.Submit = func(rows []map[string]string) error {
		pkg.InfoLog("grid submitted with", len(rows), "rows")
		return nil
	}
	host.Listen(*port)
}
