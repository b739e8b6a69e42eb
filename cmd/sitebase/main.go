package main

import (
	"log/slog"
	"os"

	"github.com/alecthomas/kong"

	"git.home.luguber.info/inful/sitebase/cmd/sitebase/commands"
	"git.home.luguber.info/inful/sitebase/internal/foundation/errors"
	"git.home.luguber.info/inful/sitebase/internal/version"
)

func main() {
	var cli commands.CLI
	global := &commands.Global{Stdout: os.Stdout}

	ctx := kong.Parse(&cli,
		kong.Name("sitebase"),
		kong.Description("Resolve the base path and hosting preset of a static site build and make the output deployable under it."),
		kong.UsageOnError(),
		kong.Vars{"version": version.String()},
	)
	err := ctx.Run(global, &cli)
	errors.NewCLIErrorAdapter(cli.Verbose, slog.Default()).HandleError(err)
}
