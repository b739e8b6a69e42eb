package config

import (
	"log/slog"

	"git.home.luguber.info/inful/sitebase/internal/deploy"
	"git.home.luguber.info/inful/sitebase/internal/gitinfo"
	"git.home.luguber.info/inful/sitebase/internal/logfields"
)

// DefaultBasePath picks the compiled-in base path: app.base_url, then the git
// repository name, then site.name, then "/".
func (c *Config) DefaultBasePath() (string, deploy.Source) {
	if c.App.BaseURL != "" {
		return deploy.NormalizeBasePath(c.App.BaseURL), deploy.SourceConfig
	}
	if c.Site.RepositoryDir != "" {
		info, err := gitinfo.Inspect(c.Path(c.Site.RepositoryDir))
		if err == nil && info.RepoName != "" {
			return gitinfo.BasePathForRepo(info.RepoName), deploy.SourceGit
		}
		if err != nil {
			slog.Debug("Git repository name unavailable", logfields.Path(c.Site.RepositoryDir), logfields.Error(err))
		}
	}
	if c.Site.Name != "" {
		return deploy.NormalizeBasePath(c.Site.Name), deploy.SourceSite
	}
	return deploy.RootPath, deploy.SourceFallback
}

// Resolver builds the deployment resolver for this project.
func (c *Config) Resolver() *deploy.Resolver {
	base, source := c.DefaultBasePath()
	r := deploy.NewResolver(base)
	r.DefaultBaseSource = source
	r.BaseURLEnv = c.App.BaseURLEnv
	r.PresetEnv = c.Nitro.PresetEnv
	r.SPA = !c.Site.SSR
	if c.Nitro.Preset != "" {
		r.DefaultPreset, r.DefaultPresetFrom = c.Nitro.Preset, deploy.SourceConfig
	}
	return r
}

// Resolve is shorthand for c.Resolver().Resolve().
func (c *Config) Resolve() deploy.DeploymentConfig {
	return c.Resolver().Resolve()
}
