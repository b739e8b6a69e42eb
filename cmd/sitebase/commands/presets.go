package commands

import (
	"fmt"

	"git.home.luguber.info/inful/sitebase/internal/deploy"
)

// PresetsCmd implements the 'presets' command.
type PresetsCmd struct{}

func (p *PresetsCmd) Run(g *Global, _ *CLI) error {
	out := g.out()
	for _, info := range deploy.Presets() {
		def := ""
		if info.Preset == deploy.DefaultPreset {
			def = " (default)"
		}
		if _, err := fmt.Fprintf(out, "%-16s %s%s\n", info.Preset, info.Description, def); err != nil {
			return err
		}
		_, _ = fmt.Fprintf(out, "%-16s output=%s crawl=%t nojekyll=%t 404-fallback=%t\n",
			"", info.OutputDir, info.Crawl, info.NoJekyll, info.NotFoundFallback)
	}
	return nil
}
