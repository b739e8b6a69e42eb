package config

import (
	"fmt"
	"strings"

	"git.home.luguber.info/inful/sitebase/internal/deploy"
)

// NormalizationResult captures adjustments & warnings from normalization pass.
type NormalizationResult struct{ Warnings []string }

// NormalizeConfig canonicalizes enumerated and free-form fields before defaults are
// applied. It mutates c in place; unknown enum values are reported, not fixed, so
// validation can reject them with a suggestion.
func NormalizeConfig(c *Config) (*NormalizationResult, error) {
	if c == nil {
		return nil, fmt.Errorf("config nil")
	}
	res := &NormalizationResult{}

	c.Version = strings.TrimSpace(c.Version)
	c.Site.Name = strings.TrimSpace(c.Site.Name)
	c.App.BaseURLEnv = strings.TrimSpace(c.App.BaseURLEnv)
	c.Nitro.PresetEnv = strings.TrimSpace(c.Nitro.PresetEnv)
	c.Events.NATS.Subject = strings.TrimSpace(c.Events.NATS.Subject)

	if c.App.BaseURL != "" {
		if nb := deploy.NormalizeBasePath(c.App.BaseURL); nb != c.App.BaseURL {
			res.Warnings = append(res.Warnings, warnChanged("app.base_url", c.App.BaseURL, nb))
			c.App.BaseURL = nb
		}
	}

	if raw := string(c.Nitro.Preset); strings.TrimSpace(raw) != "" {
		if p, ok := deploy.LookupPreset(raw); ok {
			if p != c.Nitro.Preset {
				res.Warnings = append(res.Warnings, warnChanged("nitro.preset", raw, p))
				c.Nitro.Preset = p
			}
		} else {
			res.Warnings = append(res.Warnings, fmt.Sprintf("unknown nitro.preset '%s'", raw))
		}
	}

	normalizeLogging(&c.Monitoring.Logging, res)
	return res, nil
}

func normalizeLogging(l *LoggingConfig, res *NormalizationResult) {
	if lvl := NormalizeLogLevel(string(l.Level)); lvl != "" {
		if l.Level != lvl {
			res.Warnings = append(res.Warnings, warnChanged("monitoring.logging.level", l.Level, lvl))
			l.Level = lvl
		}
	} else if strings.TrimSpace(string(l.Level)) != "" {
		res.Warnings = append(res.Warnings, warnUnknown("monitoring.logging.level", string(l.Level), string(LogLevelInfo)))
		l.Level = LogLevelInfo
	}
	if f := NormalizeLogFormat(string(l.Format)); f != "" {
		if l.Format != f {
			res.Warnings = append(res.Warnings, warnChanged("monitoring.logging.format", l.Format, f))
			l.Format = f
		}
	} else if strings.TrimSpace(string(l.Format)) != "" {
		res.Warnings = append(res.Warnings, warnUnknown("monitoring.logging.format", string(l.Format), string(LogFormatText)))
		l.Format = LogFormatText
	}
}

func warnChanged(field string, from, to any) string {
	return fmt.Sprintf("normalized %s from '%v' to '%v'", field, from, to)
}

func warnUnknown(field, value, def string) string {
	return fmt.Sprintf("unknown %s '%s', defaulting to %s", field, value, def)
}
