package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"gopkg.in/yaml.v3"

	"git.home.luguber.info/inful/sitebase/internal/config"
	"git.home.luguber.info/inful/sitebase/internal/deploy"
	"git.home.luguber.info/inful/sitebase/internal/foundation/errors"
	"git.home.luguber.info/inful/sitebase/internal/logfields"
)

// ResolveCmd implements the 'resolve' command.
type ResolveCmd struct {
	Format string `short:"f" enum:"env,json,yaml" default:"env" help:"Output format (env, json, yaml)"`
}

func (r *ResolveCmd) Run(g *Global, root *CLI) error {
	cfg, err := root.LoadConfig()
	if err != nil {
		return err
	}
	dc := cfg.Resolve()
	slog.Debug("Resolved deployment",
		logfields.BasePath(dc.BasePath),
		logfields.Source(string(dc.BaseSource)),
		logfields.Preset(string(dc.Preset)))
	return WriteDeployment(g.out(), r.Format, dc, cfg)
}

// WriteDeployment renders dc in the given format. The env format uses the configured
// variable names so its output can be sourced by the build tool.
func WriteDeployment(w io.Writer, format string, dc deploy.DeploymentConfig, cfg *config.Config) error {
	switch format {
	case "", "env":
		lines := dc.Environ(cfg.App.BaseURLEnv, cfg.Nitro.PresetEnv)
		for i, line := range lines {
			key, value, _ := strings.Cut(line, "=")
			lines[i] = key + "=" + shellQuote(value)
		}
		_, err := fmt.Fprintln(w, strings.Join(lines, "\n"))
		return err
	case "json":
		data, err := json.MarshalIndent(dc, "", "  ")
		if err != nil {
			return errors.WrapError(err, errors.CategoryInternal, "encode deployment").Build()
		}
		_, err = fmt.Fprintln(w, string(data))
		return err
	case "yaml":
		data, err := yaml.Marshal(dc)
		if err != nil {
			return errors.WrapError(err, errors.CategoryInternal, "encode deployment").Build()
		}
		_, err = w.Write(data)
		return err
	default:
		return errors.ValidationError("unknown output format").WithContext("format", format).Build()
	}
}

// shellQuote single-quotes v unless it consists only of characters a POSIX shell
// reads literally.
func shellQuote(v string) string {
	if v != "" && strings.Trim(v, shellSafe) == "" {
		return v
	}
	return "'" + strings.ReplaceAll(v, "'", `'\''`) + "'"
}

const shellSafe = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789/-_.,:+@%="
