package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-git/go-git/v5"
	ggitcfg "github.com/go-git/go-git/v5/config"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/sitebase/internal/deploy"
	"git.home.luguber.info/inful/sitebase/internal/foundation/errors"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	dir := t.TempDir()
	p := filepath.Join(dir, DefaultFilename)
	require.NoError(t, os.WriteFile(p, []byte(body), 0o644))
	return p
}

func TestLoad_AppliesDefaults(t *testing.T) {
	p := writeConfig(t, `
site:
  name: birthday-baby
app:
  base_url: /birthday-baby/
`)
	cfg, err := Load(p)
	require.NoError(t, err)

	require.Equal(t, CurrentVersion, cfg.Version)
	require.Equal(t, deploy.DefaultBaseURLEnv, cfg.App.BaseURLEnv)
	require.Equal(t, deploy.DefaultPresetEnv, cfg.Nitro.PresetEnv)
	require.Equal(t, DefaultOutputDirectory, cfg.Output.Directory)
	require.Equal(t, DefaultPreviewPort, cfg.Preview.Port)
	require.Equal(t, LogLevelInfo, cfg.Monitoring.Logging.Level)
	require.Equal(t, LogFormatText, cfg.Monitoring.Logging.Format)
	require.Empty(t, cfg.Events.Store)
	require.False(t, cfg.Site.SSR)
	require.Equal(t, filepath.Dir(p), cfg.Dir())
}

func TestLoad_NormalizesFields(t *testing.T) {
	p := writeConfig(t, `
app:
  base_url: birthday-baby
nitro:
  preset: GitHub_Pages
monitoring:
  logging:
    level: WARNING
    format: JSON
preview:
  verify_interval: 30s
`)
	cfg, err := Load(p)
	require.NoError(t, err)
	require.Equal(t, "/birthday-baby/", cfg.App.BaseURL)
	require.Equal(t, deploy.PresetGitHubPages, cfg.Nitro.Preset)
	require.Equal(t, LogLevelWarn, cfg.Monitoring.Logging.Level)
	require.Equal(t, LogFormatJSON, cfg.Monitoring.Logging.Format)
	require.Equal(t, 30*time.Second, cfg.Preview.Interval())
}

func TestLoad_VerifyInterval(t *testing.T) {
	tests := []struct {
		name string
		yaml string
		want time.Duration
	}{
		{"unset uses default", "site:\n  name: x\n", DefaultVerifyInterval},
		{"explicit zero disables", "preview:\n  verify_interval: 0s\n", 0},
		{"negative disables", "preview:\n  verify_interval: -1m\n", 0},
		{"explicit value", "preview:\n  verify_interval: 90s\n", 90 * time.Second},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := Parse([]byte(tt.yaml))
			require.NoError(t, err)
			require.Equal(t, tt.want, cfg.Preview.Interval())
		})
	}
	require.Equal(t, DefaultVerifyInterval, Default().Preview.Interval())
}

func TestLoad_PresetDrivesOutputDirectory(t *testing.T) {
	p := writeConfig(t, "nitro:\n  preset: vercel-static\n")
	cfg, err := Load(p)
	require.NoError(t, err)
	require.Equal(t, ".vercel/output/static", cfg.Output.Directory)
}

func TestLoad_UnknownPresetSuggests(t *testing.T) {
	p := writeConfig(t, "nitro:\n  preset: githb-pages\n")
	_, err := Load(p)
	require.Error(t, err)
	require.True(t, errors.HasCategory(err, errors.CategoryConfig))

	ce, ok := errors.AsClassified(err)
	require.True(t, ok)
	s, _ := ce.Context().GetString("did_you_mean")
	require.Equal(t, "github-pages", s)
}

func TestLoad_RejectsUnknownFields(t *testing.T) {
	p := writeConfig(t, "app:\n  baseURL: /x/\n")
	_, err := Load(p)
	require.Error(t, err)
	require.True(t, errors.HasCategory(err, errors.CategoryConfig))
}

func TestLoad_EmptyFileIsValid(t *testing.T) {
	p := writeConfig(t, "")
	cfg, err := Load(p)
	require.NoError(t, err)
	require.Equal(t, CurrentVersion, cfg.Version)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
	require.True(t, errors.HasCategory(err, errors.CategoryNotFound))
}

func TestLoadOrDefault_MissingFileAllowed(t *testing.T) {
	dir := t.TempDir()
	cfg, err := LoadOrDefault(filepath.Join(dir, DefaultFilename), true)
	require.NoError(t, err)
	require.Equal(t, dir, cfg.Dir())
	require.Equal(t, DefaultVerifyInterval, cfg.Preview.Interval())

	_, err = LoadOrDefault(filepath.Join(dir, DefaultFilename), false)
	require.Error(t, err)
}

func TestLoad_ExpandsEnvironment(t *testing.T) {
	t.Setenv("SITEBASE_TEST_NAME", "expanded")
	p := writeConfig(t, "site:\n  name: ${SITEBASE_TEST_NAME}\n")
	cfg, err := Load(p)
	require.NoError(t, err)
	require.Equal(t, "expanded", cfg.Site.Name)
}

func TestLoad_DotEnvDoesNotOverrideProcessEnv(t *testing.T) {
	t.Setenv("SITEBASE_TEST_KEEP", "process")
	p := writeConfig(t, "site:\n  name: ${SITEBASE_TEST_KEEP}\napp:\n  base_url: /${SITEBASE_TEST_FROM_DOTENV}/\n")
	dir := filepath.Dir(p)
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"),
		[]byte("SITEBASE_TEST_KEEP=dotenv\nSITEBASE_TEST_FROM_DOTENV=fromfile\n"), 0o644))
	t.Cleanup(func() { _ = os.Unsetenv("SITEBASE_TEST_FROM_DOTENV") })

	cfg, err := Load(p)
	require.NoError(t, err)
	require.Equal(t, "process", cfg.Site.Name)
	require.Equal(t, "/fromfile/", cfg.App.BaseURL)
}

func TestValidateConfig(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *Config)
	}{
		{"bad version", func(c *Config) { c.Version = "2" }},
		{"bad env name", func(c *Config) { c.App.BaseURLEnv = "1BAD" }},
		{"same env names", func(c *Config) { c.Nitro.PresetEnv = c.App.BaseURLEnv }},
		{"port", func(c *Config) { c.Preview.Port = 70000 }},
		{"nats without url", func(c *Config) { c.Events.NATS.Enabled = true }},
		{"metrics path", func(c *Config) { c.Monitoring.Metrics.Path = "metrics" }},
		{"unknown preset", func(c *Config) { c.Nitro.Preset = "ftp" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := Default()
			require.NoError(t, ValidateConfig(c))
			tt.mutate(c)
			require.Error(t, ValidateConfig(c))
		})
	}
}

func TestDefaultBasePath_Precedence(t *testing.T) {
	dir := t.TempDir()
	repo, err := git.PlainInit(dir, false)
	require.NoError(t, err)
	_, err = repo.CreateRemote(&ggitcfg.RemoteConfig{Name: "origin", URLs: []string{"git@github.com:someone/birthday-baby.git"}})
	require.NoError(t, err)

	c := Default()
	c.Site.RepositoryDir = dir
	c.Site.Name = "named"

	base, src := c.DefaultBasePath()
	require.Equal(t, "/birthday-baby/", base)
	require.Equal(t, deploy.SourceGit, src)

	c.App.BaseURL = "/configured/"
	base, src = c.DefaultBasePath()
	require.Equal(t, "/configured/", base)
	require.Equal(t, deploy.SourceConfig, src)

	c.App.BaseURL = ""
	c.Site.RepositoryDir = filepath.Join(t.TempDir(), "missing")
	base, src = c.DefaultBasePath()
	require.Equal(t, "/named/", base)
	require.Equal(t, deploy.SourceSite, src)

	c.Site.Name = ""
	c.Site.RepositoryDir = ""
	base, src = c.DefaultBasePath()
	require.Equal(t, "/", base)
	require.Equal(t, deploy.SourceFallback, src)
}

func TestResolve_EnvironmentOverride(t *testing.T) {
	c := Default()
	c.App.BaseURL = "/birthday-baby/"
	c.Nitro.Preset = deploy.PresetGitHubPages

	t.Setenv(deploy.DefaultBaseURLEnv, "")
	t.Setenv(deploy.DefaultPresetEnv, "")
	dc := c.Resolve()
	require.Equal(t, "/birthday-baby/", dc.BasePath)
	require.Equal(t, deploy.PresetGitHubPages, dc.Preset)
	require.Equal(t, deploy.SourceConfig, dc.PresetSource)
	require.True(t, dc.SPA)

	t.Setenv(deploy.DefaultBaseURLEnv, "/preview/")
	dc = c.Resolve()
	require.Equal(t, "/preview/", dc.BasePath)
	require.Equal(t, deploy.SourceEnv, dc.BaseSource)
}

func TestSnapshot(t *testing.T) {
	a := Default()
	a.App.BaseURL = "/x/"
	b := Default()
	b.App.BaseURL = "/x/"
	b.Preview.Port = 9999
	require.Equal(t, a.Snapshot(), b.Snapshot(), "preview settings do not affect the snapshot")

	b.Nitro.Preset = deploy.PresetGitHubPages
	require.NotEqual(t, a.Snapshot(), b.Snapshot())
}

func TestInit(t *testing.T) {
	p := filepath.Join(t.TempDir(), "nested", DefaultFilename)
	require.NoError(t, Init(p, false, Example("/birthday-baby/")))

	cfg, err := Load(p)
	require.NoError(t, err)
	require.Equal(t, "/birthday-baby/", cfg.App.BaseURL)
	require.Equal(t, deploy.PresetStatic, cfg.Nitro.Preset)
	require.Equal(t, DefaultEventStore, cfg.Events.Store)
	require.Equal(t, DefaultVerifyInterval, cfg.Preview.Interval())

	err = Init(p, false, nil)
	require.Error(t, err)
	require.True(t, errors.HasCategory(err, errors.CategoryAlreadyExists))
	require.NoError(t, Init(p, true, nil))
}
