package config

import (
	"time"

	"git.home.luguber.info/inful/sitebase/internal/deploy"
)

// Default values applied to fields left empty in the project file.
const (
	DefaultOutputDirectory = ".output/public"
	DefaultPreviewHost     = "127.0.0.1"
	DefaultPreviewPort     = 3030
	DefaultVerifyInterval  = 5 * time.Minute
	DefaultEventStore      = ".sitebase/events.db"
	DefaultNATSSubject     = "sitebase.deployments"
	DefaultMetricsPath     = "/metrics"
	DefaultMetricsTextfile = ".sitebase/prepare.prom"
)

// applyDefaults fills unset fields. It runs after NormalizeConfig.
func applyDefaults(c *Config) error {
	if c.Version == "" {
		c.Version = CurrentVersion
	}
	if c.Site.RepositoryDir == "" {
		c.Site.RepositoryDir = "."
	}
	if c.App.BaseURLEnv == "" {
		c.App.BaseURLEnv = deploy.DefaultBaseURLEnv
	}
	if c.Nitro.PresetEnv == "" {
		c.Nitro.PresetEnv = deploy.DefaultPresetEnv
	}
	if c.Output.Directory == "" {
		if info, ok := c.Nitro.Preset.Info(); ok {
			c.Output.Directory = info.OutputDir
		} else {
			c.Output.Directory = DefaultOutputDirectory
		}
	}
	if c.Preview.Host == "" {
		c.Preview.Host = DefaultPreviewHost
	}
	if c.Preview.Port == 0 {
		c.Preview.Port = DefaultPreviewPort
	}
	if c.Preview.VerifyInterval == nil {
		d := DefaultVerifyInterval
		c.Preview.VerifyInterval = &d
	} else if *c.Preview.VerifyInterval < 0 {
		*c.Preview.VerifyInterval = 0
	}
	if c.Events.NATS.Subject == "" {
		c.Events.NATS.Subject = DefaultNATSSubject
	}
	if c.Monitoring.Logging.Level == "" {
		c.Monitoring.Logging.Level = LogLevelInfo
	}
	if c.Monitoring.Logging.Format == "" {
		c.Monitoring.Logging.Format = LogFormatText
	}
	if c.Monitoring.Metrics.Path == "" {
		c.Monitoring.Metrics.Path = DefaultMetricsPath
	}
	if c.Monitoring.Metrics.Textfile == "" {
		c.Monitoring.Metrics.Textfile = DefaultMetricsTextfile
	}
	return nil
}

// Default returns a fully defaulted config, as if an empty project file was loaded.
func Default() *Config {
	c := &Config{}
	_ = applyDefaults(c)
	return c
}
