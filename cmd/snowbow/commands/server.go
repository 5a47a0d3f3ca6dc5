package commands

import (
	"time"

	prom "github.com/prometheus/client_golang/prometheus"

	"git.home.luguber.info/inful/snowbow/internal/build"
	"git.home.luguber.info/inful/snowbow/internal/metrics"
	"git.home.luguber.info/inful/snowbow/internal/server"
)

// ServerCmd implements the 'server' command.
type ServerCmd struct {
	Dir             string        `arg:"" type:"existingdir" help:"Content root"`
	Theme           string        `required:"" help:"Theme directory name below <dir>/themes"`
	Addr            string        `help:"Listen address" default:"127.0.0.1:4000" env:"SNOWBOW_ADDR"`
	Debounce        time.Duration `help:"Quiet period after the last change before rebuilding" default:"300ms"`
	RebuildInterval time.Duration `name:"rebuild-interval" help:"Also rebuild periodically (0 disables)" default:"0s"`
	MetricsAddr     string        `name:"metrics-addr" help:"Serve Prometheus metrics on this address"`
	NoHistory       bool          `name:"no-history" help:"Do not record builds in <dir>/.snowbow/history.db"`
}

// Run serves until interrupted. The initial build must succeed.
func (s *ServerCmd) Run(_ *Global, root *CLI) error {
	ctx, cancel := signalContext()
	defer cancel()

	opts, err := root.Options(s.Dir, s.Theme)
	if err != nil {
		return err
	}
	conv, err := converterFor(opts)
	if err != nil {
		return err
	}
	store, genOpts := openHistory(opts, s.NoHistory)
	defer closeHistory(store)

	reg := prom.NewRegistry()
	recorder := metrics.NewPrometheusRecorder(reg)
	genOpts = append(genOpts, build.WithRecorder(recorder))

	srv := server.New(build.NewGenerator(opts, conv, genOpts...), server.Config{
		Addr:            s.Addr,
		Debounce:        s.Debounce,
		RebuildInterval: s.RebuildInterval,
		MetricsAddr:     s.MetricsAddr,
		MetricsHandler:  metrics.HTTPHandler(reg),
	}, recorder)
	return srv.Run(ctx)
}
