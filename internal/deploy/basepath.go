package deploy

import (
	"net/url"
	"strings"
)

// RootPath is the base path of a site served from the domain root.
const RootPath = "/"

// NormalizeBasePath returns p with exactly one leading and one trailing slash and
// no empty segments. An absolute URL contributes only its path. Empty input yields "/".
func NormalizeBasePath(p string) string {
	p = strings.TrimSpace(p)
	if u, err := url.Parse(p); err == nil && u.Scheme != "" && u.Host != "" {
		p = u.Path
	}
	p = strings.ReplaceAll(p, "\\", "/")

	segments := strings.FieldsFunc(p, func(r rune) bool { return r == '/' })
	if len(segments) == 0 {
		return RootPath
	}
	return "/" + strings.Join(segments, "/") + "/"
}

// IsNormalizedBasePath reports whether p is already in canonical form.
func IsNormalizedBasePath(p string) bool {
	return p != "" && NormalizeBasePath(p) == p
}

// ResolveBasePath applies the override-or-default rule. An override counts as
// absent when present is false or when it is empty after trimming whitespace.
func ResolveBasePath(override string, present bool, def string) string {
	if present && strings.TrimSpace(override) != "" {
		return NormalizeBasePath(override)
	}
	return NormalizeBasePath(def)
}
