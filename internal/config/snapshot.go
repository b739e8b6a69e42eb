package config

import (
	"crypto/sha256"
	"encoding/hex"
	"strconv"
	"strings"
)

// Snapshot computes a stable hash of the normalized fields that affect what gets
// deployed. Preview, events and monitoring settings are deliberately excluded.
// Callers should hash a config produced by Load or Parse.
func (c *Config) Snapshot() string {
	if c == nil {
		return ""
	}
	h := sha256.New()
	w := func(parts ...string) { h.Write([]byte(strings.Join(parts, "="))); h.Write([]byte{0}) }
	w("version", c.Version)
	w("site.name", c.Site.Name)
	w("site.ssr", strconv.FormatBool(c.Site.SSR))
	w("app.base_url", c.App.BaseURL)
	w("app.base_url_env", c.App.BaseURLEnv)
	w("nitro.preset", string(c.Nitro.Preset))
	w("nitro.preset_env", c.Nitro.PresetEnv)
	w("output.directory", c.Output.Directory)
	return hex.EncodeToString(h.Sum(nil))
}
