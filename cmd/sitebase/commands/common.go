package commands

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/alecthomas/kong"

	"git.home.luguber.info/inful/sitebase/internal/config"
)

// LogLevelEnv overrides the log level chosen by flags and configuration.
const LogLevelEnv = "SITEBASE_LOG_LEVEL"

// Global context passed to subcommands.
type Global struct {
	Stdout io.Writer
}

func (g *Global) out() io.Writer {
	if g == nil || g.Stdout == nil {
		return os.Stdout
	}
	return g.Stdout
}

// CLI definition & global flags - used by commands that need access to root config.
type CLI struct {
	Config  string           `short:"c" help:"Configuration file path" default:"sitebase.yaml" type:"path"`
	Verbose bool             `short:"v" help:"Enable verbose logging"`
	Version kong.VersionFlag `name:"version" help:"Show version and exit"`

	Resolve ResolveCmd `cmd:"" help:"Print the resolved deployment configuration"`
	Init    InitCmd    `cmd:"" help:"Initialize a new configuration file"`
	Presets PresetsCmd `cmd:"" help:"List the supported hosting presets"`
	Rebase  RebaseCmd  `cmd:"" help:"Prefix root-relative asset references with the base path and apply preset finalizers"`
	Verify  VerifyCmd  `cmd:"" help:"Check that every internal reference resolves under the base path"`
	Prepare PrepareCmd `cmd:"" help:"Resolve, rebase, finalize, write a manifest and verify a generated site"`
	Preview PreviewCmd `cmd:"" help:"Serve a generated site locally under its base path"`
	History HistoryCmd `cmd:"" help:"List recorded prepare events"`
}

// AfterApply runs after flag parsing; setup logging once.
// nolint:unparam // AfterApply currently never returns an error.
func (c *CLI) AfterApply() error {
	slog.SetDefault(newLogger(os.Stderr, c.Verbose, "", config.LogFormatText))
	return nil
}

// LoadConfig loads the project file. A missing file is only an error when a
// non-default path was given.
func (c *CLI) LoadConfig() (*config.Config, error) {
	path := c.Config
	if path == "" {
		path = config.DefaultFilename
	}
	cfg, err := config.LoadOrDefault(path, isDefaultConfigPath(path))
	if err != nil {
		return nil, err
	}
	slog.SetDefault(newLogger(os.Stderr, c.Verbose, cfg.Monitoring.Logging.Level, cfg.Monitoring.Logging.Format))
	return cfg, nil
}

// newLogger picks the level from SITEBASE_LOG_LEVEL, then --verbose, then the
// configured level.
func newLogger(w io.Writer, verbose bool, level config.LogLevel, format config.LogFormat) *slog.Logger {
	if env := config.NormalizeLogLevel(os.Getenv(LogLevelEnv)); env != "" {
		level = env
	} else if verbose {
		level = config.LogLevelDebug
	}
	opts := &slog.HandlerOptions{Level: level.SlogLevel()}
	if format == config.LogFormatJSON {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

// siteDir returns the directory argument, or the configured output directory.
func siteDir(arg string, cfg *config.Config) string {
	if arg != "" {
		return arg
	}
	return cfg.Path(cfg.Output.Directory)
}

// isDefaultConfigPath reports whether p is the default project file in the working
// directory. kong resolves path flags to absolute paths, so compare by base and dir.
func isDefaultConfigPath(p string) bool {
	if filepath.Base(p) != config.DefaultFilename {
		return false
	}
	abs, err := filepath.Abs(p)
	if err != nil {
		return false
	}
	wd, err := filepath.Abs(".")
	if err != nil {
		return false
	}
	return filepath.Dir(abs) == wd
}
