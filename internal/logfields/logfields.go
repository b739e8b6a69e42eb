package logfields

import (
	"log/slog"
	"time"
)

// Canonical log field name constants to avoid drift across packages.
const (
	KeyBasePath   = "base_path"
	KeyPreset     = "preset"
	KeySource     = "source"
	KeyEnvVar     = "env_var"
	KeyPath       = "path"
	KeyBuildID    = "build_id"
	KeyStage      = "stage"
	KeyDurationMS = "duration_ms"
	KeyCount      = "count"
	KeyURL        = "url"
	KeyError      = "error"
)

func BasePath(p string) slog.Attr   { return slog.String(KeyBasePath, p) }
func Preset(p string) slog.Attr     { return slog.String(KeyPreset, p) }
func Source(s string) slog.Attr     { return slog.String(KeySource, s) }
func EnvVar(name string) slog.Attr  { return slog.String(KeyEnvVar, name) }
func Path(p string) slog.Attr       { return slog.String(KeyPath, p) }
func BuildID(id string) slog.Attr   { return slog.String(KeyBuildID, id) }
func Stage(name string) slog.Attr   { return slog.String(KeyStage, name) }
func Count(n int) slog.Attr         { return slog.Int(KeyCount, n) }
func URL(u string) slog.Attr        { return slog.String(KeyURL, u) }
func Duration(d time.Duration) slog.Attr {
	return slog.Float64(KeyDurationMS, float64(d.Microseconds())/1000)
}
func Error(err error) slog.Attr {
	if err == nil {
		return slog.String(KeyError, "")
	}
	return slog.String(KeyError, err.Error())
}
