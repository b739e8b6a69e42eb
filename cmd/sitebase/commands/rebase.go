package commands

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"git.home.luguber.info/inful/sitebase/internal/logfields"
	"git.home.luguber.info/inful/sitebase/internal/sitetree"
)

// RebaseCmd implements the 'rebase' command.
type RebaseCmd struct {
	Dir        string `arg:"" optional:"" type:"path" help:"Generated site directory (default: output.directory)"`
	NoFinalize bool   `name:"no-finalize" help:"Skip preset finalizers (.nojekyll, 404 fallback)"`
}

func (r *RebaseCmd) Run(g *Global, root *CLI) error {
	cfg, err := root.LoadConfig()
	if err != nil {
		return err
	}
	dc := cfg.Resolve()
	dir := siteDir(r.Dir, cfg)

	res, err := sitetree.Rebase(context.Background(), dir, dc)
	if err != nil {
		return err
	}
	slog.Info("Rebased site tree", logfields.Path(dir), logfields.BasePath(dc.BasePath), logfields.Count(res.RefsRewritten))
	out := g.out()
	_, _ = fmt.Fprintf(out, "Rebased %s under %s: %d files scanned, %d changed, %d references rewritten\n",
		dir, dc.BasePath, res.FilesScanned, res.FilesChanged, res.RefsRewritten)

	if r.NoFinalize {
		return nil
	}
	fin, err := sitetree.Finalize(dir, dc)
	if err != nil {
		return err
	}
	if len(fin.Written) > 0 {
		_, _ = fmt.Fprintf(out, "Finalized for %s: %s\n", dc.Preset, strings.Join(fin.Written, ", "))
	}
	return nil
}
