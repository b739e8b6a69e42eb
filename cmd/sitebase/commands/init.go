package commands

import (
	"fmt"

	"git.home.luguber.info/inful/sitebase/internal/config"
	"git.home.luguber.info/inful/sitebase/internal/deploy"
	"git.home.luguber.info/inful/sitebase/internal/foundation/errors"
)

// InitCmd implements the 'init' command.
type InitCmd struct {
	Force   bool   `help:"Overwrite existing configuration file"`
	BaseURL string `name:"base-url" help:"Base path to record as app.base_url (default: derived from the git repository)"`
	Preset  string `name:"preset" help:"Hosting preset to record as nitro.preset" default:"static"`
}

func (i *InitCmd) Run(g *Global, root *CLI) error {
	preset, err := deploy.ParsePreset(i.Preset)
	if err != nil {
		return errors.WrapError(err, errors.CategoryValidation, "invalid preset").
			WithContext("preset", i.Preset).Build()
	}
	example := config.Example(i.BaseURL)
	example.Nitro.Preset = preset
	if info, ok := preset.Info(); ok {
		example.Output.Directory = info.OutputDir
	}

	out := g.out()
	_, _ = fmt.Fprintln(out, "Initializing sitebase project")
	_, _ = fmt.Fprintf(out, "Writing configuration to %s\n", root.Config)
	if err := config.Init(root.Config, i.Force, example); err != nil {
		_, _ = fmt.Fprintln(out, "Initialization failed")
		return err
	}
	_, _ = fmt.Fprintln(out, "initialized successfully")
	return nil
}
