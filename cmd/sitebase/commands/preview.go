package commands

import (
	"context"
	"net"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
	promcollect "github.com/prometheus/client_golang/prometheus/collectors"

	"git.home.luguber.info/inful/sitebase/internal/config"
	"git.home.luguber.info/inful/sitebase/internal/deploy"
	"git.home.luguber.info/inful/sitebase/internal/metrics"
	"git.home.luguber.info/inful/sitebase/internal/preview"
)

// PreviewCmd serves a generated site locally under its base path.
type PreviewCmd struct {
	Dir            string        `arg:"" optional:"" type:"path" help:"Generated site directory (default: output.directory)"`
	Host           string        `name:"host" help:"Listen host (default: preview.host)"`
	Port           int           `name:"port" help:"Listen port (default: preview.port)"`
	VerifyInterval time.Duration `name:"verify-interval" help:"Re-verify periodically (default: preview.verify_interval; 0 disables)"`
}

func (p *PreviewCmd) Run(_ *Global, root *CLI) error {
	cfg, err := root.LoadConfig()
	if err != nil {
		return err
	}
	// Setup signal-based context for graceful shutdown
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	dc := cfg.Resolve()
	return preview.New(siteDir(p.Dir, cfg), dc, p.options(cfg, dc)).Run(ctx)
}

// options merges flags over the project config. With metrics enabled the resolution
// that produced dc is counted on the preview's registry.
func (p *PreviewCmd) options(cfg *config.Config, dc deploy.DeploymentConfig) preview.Options {
	host, port := cfg.Preview.Host, cfg.Preview.Port
	if p.Host != "" {
		host = p.Host
	}
	if p.Port != 0 {
		port = p.Port
	}
	interval := cfg.Preview.Interval()
	if p.VerifyInterval != 0 {
		interval = p.VerifyInterval
	}

	opts := preview.Options{
		Addr:           net.JoinHostPort(host, strconv.Itoa(port)),
		VerifyInterval: interval,
	}
	if cfg.Monitoring.Metrics.Enabled {
		reg := prom.NewRegistry()
		reg.MustRegister(promcollect.NewGoCollector(), promcollect.NewProcessCollector(promcollect.ProcessCollectorOpts{}))
		rec := metrics.NewPrometheusRecorder(reg)
		rec.IncResolution(string(dc.BaseSource))
		opts.Recorder = rec
		opts.MetricsPath = cfg.Monitoring.Metrics.Path
		opts.Metrics = rec.HTTPHandler()
	}
	return opts
}
