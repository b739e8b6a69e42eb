package deploy

import (
	"log/slog"
	"os"
	"strings"

	"git.home.luguber.info/inful/sitebase/internal/logfields"
)

// Default environment variable names read by the resolver.
const (
	DefaultBaseURLEnv = "NUXT_APP_BASE_URL"
	DefaultPresetEnv  = "NITRO_PRESET"
)

// LookupFunc reads one environment variable; os.LookupEnv satisfies it.
type LookupFunc func(key string) (string, bool)

// Resolver turns environment overrides and compiled-in defaults into a DeploymentConfig.
type Resolver struct {
	BaseURLEnv        string
	PresetEnv         string
	DefaultBase       string
	DefaultBaseSource Source
	DefaultPreset     Preset
	DefaultPresetFrom Source
	SPA               bool
	Lookup            LookupFunc
}

// NewResolver returns a resolver with the standard variable names and os.LookupEnv.
func NewResolver(defaultBase string) *Resolver {
	return &Resolver{
		BaseURLEnv:        DefaultBaseURLEnv,
		PresetEnv:         DefaultPresetEnv,
		DefaultBase:       defaultBase,
		DefaultBaseSource: SourceConfig,
		DefaultPreset:     DefaultPreset,
		DefaultPresetFrom: SourceFallback,
		SPA:               true,
		Lookup:            os.LookupEnv,
	}
}

// Resolve reads the environment once and returns the deployment config. It cannot
// fail: a missing or empty override selects the default, and an unknown preset in the
// environment is ignored with a warning.
func (r *Resolver) Resolve() DeploymentConfig {
	lookup := r.Lookup
	if lookup == nil {
		lookup = os.LookupEnv
	}

	cfg := DeploymentConfig{SPA: r.SPA}

	override, present := r.lookup(lookup, r.BaseURLEnv)
	cfg.BasePath = ResolveBasePath(override, present, r.DefaultBase)
	if present && strings.TrimSpace(override) != "" {
		cfg.BaseSource = SourceEnv
	} else {
		cfg.BaseSource = r.DefaultBaseSource
		if cfg.BaseSource == "" {
			cfg.BaseSource = SourceConfig
		}
	}

	cfg.Preset, cfg.PresetSource = r.DefaultPreset, r.DefaultPresetFrom
	if !cfg.Preset.Valid() {
		cfg.Preset, cfg.PresetSource = DefaultPreset, SourceFallback
	}
	if raw, ok := r.lookup(lookup, r.PresetEnv); ok && strings.TrimSpace(raw) != "" {
		if p, known := LookupPreset(raw); known {
			cfg.Preset, cfg.PresetSource = p, SourceEnv
		} else {
			attrs := []any{logfields.EnvVar(r.PresetEnv), slog.String("value", raw), logfields.Preset(string(cfg.Preset))}
			if s := SuggestPreset(raw); s != "" {
				attrs = append(attrs, slog.String("did_you_mean", s))
			}
			slog.Warn("Ignoring unknown preset from environment", attrs...)
		}
	}

	slog.Debug("Resolved deployment config",
		logfields.BasePath(cfg.BasePath),
		logfields.Source(string(cfg.BaseSource)),
		logfields.Preset(string(cfg.Preset)))
	return cfg
}

func (r *Resolver) lookup(fn LookupFunc, name string) (string, bool) {
	if name == "" {
		return "", false
	}
	return fn(name)
}
