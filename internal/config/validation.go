package config

import (
	"regexp"
	"strings"

	"git.home.luguber.info/inful/sitebase/internal/deploy"
	"git.home.luguber.info/inful/sitebase/internal/foundation/errors"
)

var envNamePattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// ValidateConfig checks a normalized, defaulted config.
func ValidateConfig(c *Config) error {
	if c.Version != CurrentVersion {
		return errors.ConfigError("unsupported config version").
			WithContext("version", c.Version).
			WithContext("supported", CurrentVersion).
			Build()
	}
	if err := validatePreset(c.Nitro.Preset); err != nil {
		return err
	}
	for field, name := range map[string]string{
		"app.base_url_env":  c.App.BaseURLEnv,
		"nitro.preset_env": c.Nitro.PresetEnv,
	} {
		if !envNamePattern.MatchString(name) {
			return errors.ConfigError("invalid environment variable name").
				WithContext("field", field).
				WithContext("value", name).
				Build()
		}
	}
	if c.App.BaseURLEnv == c.Nitro.PresetEnv {
		return errors.ConfigError("base URL and preset must use different environment variables").
			WithContext("value", c.App.BaseURLEnv).
			Build()
	}
	if strings.TrimSpace(c.Output.Directory) == "" {
		return errors.ConfigError("output.directory must not be empty").Build()
	}
	if c.Preview.Port < 1 || c.Preview.Port > 65535 {
		return errors.ConfigError("preview.port out of range").WithContext("port", c.Preview.Port).Build()
	}
	if c.Events.NATS.Enabled && strings.TrimSpace(c.Events.NATS.URL) == "" {
		return errors.ConfigError("events.nats.url is required when NATS publishing is enabled").Build()
	}
	if !strings.HasPrefix(c.Monitoring.Metrics.Path, "/") {
		return errors.ConfigError("monitoring.metrics.path must start with '/'").
			WithContext("path", c.Monitoring.Metrics.Path).
			Build()
	}
	return nil
}

func validatePreset(p deploy.Preset) error {
	if p == "" || p.Valid() {
		return nil
	}
	b := errors.ConfigError("unknown nitro.preset").WithContext("value", string(p))
	if s := deploy.SuggestPreset(string(p)); s != "" {
		b = b.WithContext("did_you_mean", s)
	}
	return b.Build()
}
