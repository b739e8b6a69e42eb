package deploy

import (
	"fmt"
	"strings"
)

// Source records where a resolved value came from.
type Source string

const (
	SourceEnv      Source = "env"
	SourceConfig   Source = "config"
	SourceGit      Source = "git"
	SourceSite     Source = "site"
	SourceFallback Source = "fallback"
)

// DeploymentConfig is the resolved deployment target of one build invocation.
// It is a value type; callers receive copies and nothing mutates it after Resolve.
type DeploymentConfig struct {
	BasePath     string `json:"base_path" yaml:"base_path"`
	Preset       Preset `json:"preset" yaml:"preset"`
	BaseSource   Source `json:"base_source" yaml:"base_source"`
	PresetSource Source `json:"preset_source" yaml:"preset_source"`
	// SPA is true when the site is client-rendered (ssr disabled).
	SPA bool `json:"spa" yaml:"spa"`
}

// AssetPath prefixes a root-relative reference with the base path.
// "/_nuxt/app.js" under "/birthday-baby/" becomes "/birthday-baby/_nuxt/app.js".
func (c DeploymentConfig) AssetPath(ref string) string {
	return c.BasePath + strings.TrimPrefix(ref, "/")
}

// HasPrefix reports whether ref is already addressed under the base path.
// The base path without its trailing slash also counts, since hosts redirect it.
func (c DeploymentConfig) HasPrefix(ref string) bool {
	if strings.HasPrefix(ref, c.BasePath) {
		return true
	}
	return ref == strings.TrimSuffix(c.BasePath, "/") && c.BasePath != RootPath
}

// TrimBase strips the base path from ref, returning a path relative to the site root.
func (c DeploymentConfig) TrimBase(ref string) (string, bool) {
	if !c.HasPrefix(ref) {
		return "", false
	}
	if rest, ok := strings.CutPrefix(ref, c.BasePath); ok {
		return rest, true
	}
	return "", true
}

// Environ renders the config as unquoted KEY=value pairs, the form exec.Cmd.Env
// expects.
func (c DeploymentConfig) Environ(baseEnv, presetEnv string) []string {
	return []string{
		fmt.Sprintf("%s=%s", baseEnv, c.BasePath),
		fmt.Sprintf("%s=%s", presetEnv, c.Preset),
	}
}

// PresetInfo returns the descriptor of the resolved preset.
func (c DeploymentConfig) PresetInfo() PresetInfo {
	info, ok := c.Preset.Info()
	if !ok {
		info, _ = DefaultPreset.Info()
	}
	return info
}
