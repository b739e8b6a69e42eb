package config

import (
	"path/filepath"
	"time"

	"git.home.luguber.info/inful/sitebase/internal/deploy"
)

// CurrentVersion is the only project file format this build understands.
const CurrentVersion = "1"

// DefaultFilename is the project file looked up when -c is not given.
const DefaultFilename = "sitebase.yaml"

// Config represents a sitebase project file.
type Config struct {
	Version    string           `yaml:"version"`
	Site       SiteConfig       `yaml:"site"`
	App        AppConfig        `yaml:"app"`
	Nitro      NitroConfig      `yaml:"nitro"`
	Output     OutputConfig     `yaml:"output"`
	Preview    PreviewConfig    `yaml:"preview"`
	Events     EventsConfig     `yaml:"events"`
	Monitoring MonitoringConfig `yaml:"monitoring"`

	// dir is the directory of the loaded file; relative paths resolve against it.
	dir string
}

// SiteConfig describes the project being deployed.
type SiteConfig struct {
	Name          string `yaml:"name,omitempty"`
	RepositoryDir string `yaml:"repository_dir,omitempty"` // git checkout used to derive the default base path
	SSR           bool   `yaml:"ssr"`                      // false: client-rendered SPA
}

// AppConfig holds the compiled-in base URL and the variable that may override it.
type AppConfig struct {
	BaseURL    string `yaml:"base_url,omitempty"`
	BaseURLEnv string `yaml:"base_url_env,omitempty"`
}

// NitroConfig selects the static hosting preset.
type NitroConfig struct {
	Preset    deploy.Preset `yaml:"preset,omitempty"`
	PresetEnv string        `yaml:"preset_env,omitempty"`
}

// OutputConfig locates the generated static tree.
type OutputConfig struct {
	Directory string `yaml:"directory,omitempty"`
}

// PreviewConfig configures the local preview server.
type PreviewConfig struct {
	Host           string        `yaml:"host,omitempty"`
	Port           int           `yaml:"port,omitempty"`
	VerifyInterval *time.Duration `yaml:"verify_interval,omitempty"` // unset means DefaultVerifyInterval; 0 disables
}

// Interval returns the periodic verification interval; 0 means disabled.
func (p PreviewConfig) Interval() time.Duration {
	if p.VerifyInterval == nil || *p.VerifyInterval < 0 {
		return 0
	}
	return *p.VerifyInterval
}

// EventsConfig configures where prepare runs are recorded.
type EventsConfig struct {
	Store string     `yaml:"store,omitempty"` // sqlite path; empty disables recording
	NATS  NATSConfig `yaml:"nats,omitempty"`
}

// NATSConfig configures optional event publishing.
type NATSConfig struct {
	Enabled bool   `yaml:"enabled"`
	URL     string `yaml:"url,omitempty"`
	Subject string `yaml:"subject,omitempty"`
}

// MonitoringConfig represents logging and metrics configuration.
type MonitoringConfig struct {
	Logging LoggingConfig `yaml:"logging"`
	Metrics MetricsConfig `yaml:"metrics"`
}

// LoggingConfig represents logging configuration.
type LoggingConfig struct {
	Level  LogLevel  `yaml:"level,omitempty"`
	Format LogFormat `yaml:"format,omitempty"`
}

// MetricsConfig represents metrics configuration.
type MetricsConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Path     string `yaml:"path,omitempty"`
	Textfile string `yaml:"textfile,omitempty"` // written by prepare in the textfile collector format
}

// Dir returns the directory relative paths are resolved against.
func (c *Config) Dir() string {
	if c.dir == "" {
		return "."
	}
	return c.dir
}

// Path resolves p against the config directory. Absolute and empty paths are returned unchanged.
func (c *Config) Path(p string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(c.Dir(), p)
}
