package config

import (
	"bytes"
	stderrors "errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"git.home.luguber.info/inful/sitebase/internal/foundation/errors"
)

// EnvFiles are loaded, in order, from the config directory before the file is parsed.
var EnvFiles = []string{".env", ".env.local"}

// Load reads, normalizes, defaults and validates a project file.
func Load(configPath string) (*Config, error) {
	dir := filepath.Dir(configPath)
	LoadEnvFiles(dir)

	data, err := os.ReadFile(configPath)
	if err != nil {
		if stderrors.Is(err, fs.ErrNotExist) {
			return nil, errors.NotFoundError("configuration file not found").WithContext("path", configPath).Build()
		}
		return nil, errors.WrapError(err, errors.CategoryConfig, "read configuration file").WithContext("path", configPath).Build()
	}

	cfg, err := Parse(data)
	if err != nil {
		return nil, err
	}
	cfg.dir = dir
	return cfg, nil
}

// LoadOrDefault loads configPath, or returns Default() when the file does not exist
// and missingOK is set.
func LoadOrDefault(configPath string, missingOK bool) (*Config, error) {
	cfg, err := Load(configPath)
	if err == nil || !missingOK || !errors.HasCategory(err, errors.CategoryNotFound) {
		return cfg, err
	}
	slog.Debug("No configuration file; using defaults", "path", configPath)
	cfg = Default()
	cfg.dir = filepath.Dir(configPath)
	return cfg, nil
}

// Parse decodes a project file from memory. ${VAR} references are expanded first.
func Parse(data []byte) (*Config, error) {
	expanded := os.ExpandEnv(string(data))

	var cfg Config
	dec := yaml.NewDecoder(bytes.NewReader([]byte(expanded)))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !stderrors.Is(err, io.EOF) {
		return nil, errors.WrapError(err, errors.CategoryConfig, "parse configuration").Build()
	}

	res, err := NormalizeConfig(&cfg)
	if err != nil {
		return nil, errors.WrapError(err, errors.CategoryInternal, "normalize configuration").Build()
	}
	for _, w := range res.Warnings {
		slog.Warn("Configuration normalized", "detail", w)
	}
	if err := applyDefaults(&cfg); err != nil {
		return nil, err
	}
	if err := ValidateConfig(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// LoadEnvFiles loads .env files from dir without overriding variables that are
// already set in the process environment. Missing files are skipped.
func LoadEnvFiles(dir string) []string {
	var loaded []string
	for _, name := range EnvFiles {
		p := filepath.Join(dir, name)
		if _, err := os.Stat(p); err != nil {
			continue
		}
		if err := godotenv.Load(p); err != nil {
			slog.Warn("Failed to load env file", "path", p, "error", err)
			continue
		}
		loaded = append(loaded, p)
		slog.Debug("Loaded environment variables", "path", p)
	}
	return loaded
}

// Init writes an example project file. It refuses to overwrite unless force is set.
func Init(configPath string, force bool, example *Config) error {
	if _, err := os.Stat(configPath); err == nil && !force {
		return errors.NewError(errors.CategoryAlreadyExists, "configuration file already exists (use --force to overwrite)").
			WithContext("path", configPath).
			Build()
	}
	if example == nil {
		example = Example("")
	}

	var buf bytes.Buffer
	buf.WriteString("# sitebase project configuration\n")
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(example); err != nil {
		return errors.WrapError(err, errors.CategoryInternal, "marshal config").Build()
	}
	if err := enc.Close(); err != nil {
		return errors.WrapError(err, errors.CategoryInternal, "marshal config").Build()
	}

	if dir := filepath.Dir(configPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return errors.WrapError(err, errors.CategoryFileSystem, "create config directory").WithContext("path", dir).Build()
		}
	}
	if err := os.WriteFile(configPath, buf.Bytes(), 0o644); err != nil {
		return errors.WrapError(err, errors.CategoryFileSystem, "write config file").WithContext("path", configPath).Build()
	}
	return nil
}

// Example returns the config written by `sitebase init`.
func Example(baseURL string) *Config {
	c := Default()
	c.Site.Name = "my-site"
	c.App.BaseURL = baseURL
	c.Nitro.Preset = "static"
	c.Events.Store = DefaultEventStore
	return c
}

func (c *Config) String() string {
	return fmt.Sprintf("sitebase config v%s (preset=%s, base_url=%q)", c.Version, c.Nitro.Preset, c.App.BaseURL)
}
