package sitetree

import (
	"strings"

	"golang.org/x/net/html"
)

// Kind separates references the browser must fetch from links a user follows.
type Kind string

const (
	KindAsset      Kind = "asset"
	KindNavigation Kind = "navigation"
)

// refAttrs lists, per element, the attributes that hold a URL.
var refAttrs = map[string][]string{
	"a":      {"href"},
	"link":   {"href"},
	"script": {"src"},
	"img":    {"src", "srcset"},
	"source": {"src", "srcset"},
	"video":  {"src", "poster"},
	"audio":  {"src"},
	"iframe": {"src"},
	"form":   {"action"},
}

var navigationRels = []string{"canonical", "alternate", "prev", "next"}

// Reference is one URL found in an HTML document.
type Reference struct {
	Document string `json:"document"` // slash-separated path relative to the tree root
	Tag      string `json:"tag"`
	Attr     string `json:"attr"`
	URL      string `json:"url"`
	Kind     Kind   `json:"kind"`
}

// IsRootRelative reports whether ref is addressed from the host root ("/x", not "//x").
func IsRootRelative(ref string) bool {
	return strings.HasPrefix(ref, "/") && !strings.HasPrefix(ref, "//")
}

// IsExternal reports whether ref leaves the site or is not a fetchable path at all.
func IsExternal(ref string) bool {
	ref = strings.TrimSpace(ref)
	if ref == "" || strings.HasPrefix(ref, "#") || strings.HasPrefix(ref, "//") {
		return true
	}
	if i := strings.IndexAny(ref, ":/?#"); i > 0 && ref[i] == ':' {
		return true // has a scheme: http:, mailto:, data:, javascript:, ...
	}
	return false
}

func attrValue(t *html.Token, key string) string {
	for _, a := range t.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func kindOf(t *html.Token) Kind {
	switch t.Data {
	case "a", "form", "iframe":
		return KindNavigation
	case "link":
		rels := strings.Fields(strings.ToLower(attrValue(t, "rel")))
		for _, r := range rels {
			for _, nav := range navigationRels {
				if r == nav {
					return KindNavigation
				}
			}
		}
	}
	return KindAsset
}

// splitSrcset returns the URL of each image candidate in a srcset value.
func splitSrcset(v string) []string {
	var urls []string
	for _, candidate := range strings.Split(v, ",") {
		if fields := strings.Fields(candidate); len(fields) > 0 {
			urls = append(urls, fields[0])
		}
	}
	return urls
}

// mapSrcset applies fn to each candidate URL, keeping descriptors.
func mapSrcset(v string, fn func(string) string) string {
	parts := strings.Split(v, ",")
	for i, candidate := range parts {
		fields := strings.Fields(candidate)
		if len(fields) == 0 {
			continue
		}
		fields[0] = fn(fields[0])
		parts[i] = strings.Join(fields, " ")
	}
	return strings.Join(parts, ", ")
}
