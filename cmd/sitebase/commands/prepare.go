package commands

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	prom "github.com/prometheus/client_golang/prometheus"

	"git.home.luguber.info/inful/sitebase/internal/config"
	"git.home.luguber.info/inful/sitebase/internal/eventstore"
	"git.home.luguber.info/inful/sitebase/internal/foundation/errors"
	"git.home.luguber.info/inful/sitebase/internal/logfields"
	"git.home.luguber.info/inful/sitebase/internal/metrics"
	"git.home.luguber.info/inful/sitebase/internal/notify"
	"git.home.luguber.info/inful/sitebase/internal/pipeline"
)

// PrepareCmd implements the 'prepare' command.
type PrepareCmd struct {
	Dir string `arg:"" optional:"" type:"path" help:"Generated site directory (default: output.directory)"`
}

func (p *PrepareCmd) Run(g *Global, root *CLI) error {
	cfg, err := root.LoadConfig()
	if err != nil {
		return err
	}
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	store, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	publisher := openPublisher(cfg)
	defer func() { _ = publisher.Close() }()

	opts := []pipeline.Option{
		pipeline.WithStore(store),
		pipeline.WithPublisher(publisher),
	}
	var reg *prom.Registry
	if cfg.Monitoring.Metrics.Enabled {
		reg = prom.NewRegistry()
		opts = append(opts, pipeline.WithRecorder(metrics.NewPrometheusRecorder(reg)))
	}

	res, err := pipeline.New(opts...).Prepare(ctx, pipeline.Request{
		Root:          siteDir(p.Dir, cfg),
		Deployment:    cfg.Resolve(),
		ConfigHash:    cfg.Snapshot(),
		RepositoryDir: cfg.Path(cfg.Site.RepositoryDir),
	})
	if reg != nil {
		writeMetricsTextfile(cfg.Path(cfg.Monitoring.Metrics.Textfile), reg)
	}
	out := g.out()
	if res != nil && len(res.Verify.Broken) > 0 {
		for _, b := range res.Verify.Broken {
			_, _ = fmt.Fprintf(out, "%s: %s (%s)\n", b.Document, b.Ref, b.Reason)
		}
	}
	if err != nil {
		return err
	}
	_, _ = fmt.Fprintf(out, "Prepared build %s: base %s (%s), preset %s, %d references rewritten, %d files\n",
		res.BuildID, res.Deployment.BasePath, res.Deployment.BaseSource, res.Deployment.Preset,
		res.Rewrite.RefsRewritten, res.Manifest.Outputs.Files)
	_, _ = fmt.Fprintf(out, "Manifest: %s\n", res.ManifestPath)
	return nil
}

// writeMetricsTextfile exports the run's metrics for a node exporter textfile
// collector. A failed export is logged and does not fail the run.
func writeMetricsTextfile(path string, reg *prom.Registry) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		slog.Warn("Metrics export skipped", logfields.Path(path), logfields.Error(err))
		return
	}
	if err := prom.WriteToTextfile(path, reg); err != nil {
		slog.Warn("Metrics export failed", logfields.Path(path), logfields.Error(err))
		return
	}
	slog.Debug("Wrote metrics", logfields.Path(path))
}

// openStore opens the configured event store, or a no-op store when recording is disabled.
func openStore(cfg *config.Config) (eventstore.Store, error) {
	if cfg.Events.Store == "" {
		return eventstore.NopStore{}, nil
	}
	path := cfg.Path(cfg.Events.Store)
	store, err := eventstore.NewSQLiteStore(path)
	if err != nil {
		return nil, errors.WrapError(err, errors.CategoryEventStore, "open event store").
			WithContext("path", path).Build()
	}
	return store, nil
}

// openPublisher connects to NATS when enabled. An unreachable broker only disables
// publishing for this run.
func openPublisher(cfg *config.Config) notify.Publisher {
	if !cfg.Events.NATS.Enabled {
		return notify.NopPublisher{}
	}
	pub, err := notify.NewNATSPublisher(cfg.Events.NATS.URL, cfg.Events.NATS.Subject)
	if err != nil {
		slog.Warn("Event publishing disabled", logfields.URL(cfg.Events.NATS.URL), logfields.Error(err))
		return notify.NopPublisher{}
	}
	return pub
}

