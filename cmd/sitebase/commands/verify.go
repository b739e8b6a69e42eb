package commands

import (
	"context"
	"fmt"

	"git.home.luguber.info/inful/sitebase/internal/sitetree"
)

// VerifyCmd implements the 'verify' command.
type VerifyCmd struct {
	Dir string `arg:"" optional:"" type:"path" help:"Generated site directory (default: output.directory)"`
}

func (v *VerifyCmd) Run(g *Global, root *CLI) error {
	cfg, err := root.LoadConfig()
	if err != nil {
		return err
	}
	dc := cfg.Resolve()
	dir := siteDir(v.Dir, cfg)

	res, err := sitetree.Verify(context.Background(), dir, dc)
	if err != nil {
		return err
	}
	out := g.out()
	for _, b := range res.Broken {
		_, _ = fmt.Fprintf(out, "%s: %s (%s)\n", b.Document, b.Ref, b.Reason)
	}
	_, _ = fmt.Fprintf(out, "Checked %d references in %d documents under %s: %d broken\n",
		res.References, res.Documents, dc.BasePath, len(res.Broken))
	return res.Err()
}
