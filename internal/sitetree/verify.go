package sitetree

import (
	"context"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"git.home.luguber.info/inful/sitebase/internal/deploy"
	"git.home.luguber.info/inful/sitebase/internal/foundation/errors"
)

// Reasons a reference is reported broken.
const (
	ReasonOutsideBase = "outside base path"
	ReasonEscapesRoot = "escapes site root"
	ReasonMissing     = "target not found"
	ReasonMalformed   = "malformed URL"
)

// BrokenRef is an internal reference that does not resolve.
type BrokenRef struct {
	Document string `json:"document"`
	Ref      string `json:"ref"`
	Reason   string `json:"reason"`
}

// VerifyResult summarizes one verification pass.
type VerifyResult struct {
	Documents  int         `json:"documents"`
	References int         `json:"references"`
	Broken     []BrokenRef `json:"broken,omitempty"`
}

// OK reports whether no reference is broken.
func (r VerifyResult) OK() bool { return len(r.Broken) == 0 }

// Err returns a build error describing the broken references, or nil.
func (r VerifyResult) Err() error {
	if r.OK() {
		return nil
	}
	first := r.Broken[0]
	return errors.BuildError("site contains broken references").
		WithContext("broken", len(r.Broken)).
		WithContext("first", first.Document+": "+first.Ref+" ("+first.Reason+")").
		Build()
}

// Verify checks that every internal reference of every HTML document under root is
// addressed under the base path and resolves to a file in the tree. For client-rendered
// sites, navigation links may target routes that only exist in the app, so only assets
// must resolve there.
func Verify(ctx context.Context, root string, dc deploy.DeploymentConfig) (VerifyResult, error) {
	docs, err := HTMLFiles(root)
	if err != nil {
		return VerifyResult{}, err
	}
	res := VerifyResult{Documents: len(docs)}

	var mu sync.Mutex
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for _, doc := range docs {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			data, err := os.ReadFile(filepath.Join(root, filepath.FromSlash(doc)))
			if err != nil {
				return errors.WrapError(err, errors.CategoryFileSystem, "read document").
					WithContext("path", doc).Build()
			}
			refs, err := extract(doc, data)
			if err != nil {
				return errors.WrapError(err, errors.CategoryBuild, "parse document").
					WithContext("path", doc).Build()
			}
			var broken []BrokenRef
			checked := 0
			for _, ref := range refs {
				if IsExternal(ref.URL) {
					continue
				}
				checked++
				if reason := checkRef(root, ref, dc); reason != "" {
					broken = append(broken, BrokenRef{Document: doc, Ref: ref.URL, Reason: reason})
				}
			}
			mu.Lock()
			res.References += checked
			res.Broken = append(res.Broken, broken...)
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return VerifyResult{}, err
	}
	sort.Slice(res.Broken, func(i, j int) bool {
		if res.Broken[i].Document != res.Broken[j].Document {
			return res.Broken[i].Document < res.Broken[j].Document
		}
		return res.Broken[i].Ref < res.Broken[j].Ref
	})
	return res, nil
}

// checkRef returns the reason ref is broken, or "" when it resolves.
func checkRef(root string, ref Reference, dc deploy.DeploymentConfig) string {
	raw := ref.URL
	if i := strings.IndexAny(raw, "?#"); i >= 0 {
		raw = raw[:i]
	}
	if raw == "" {
		return "" // same-document link
	}
	p, err := url.PathUnescape(raw)
	if err != nil {
		return ReasonMalformed
	}

	var target string
	if IsRootRelative(p) {
		rest, ok := dc.TrimBase(p)
		if !ok {
			return ReasonOutsideBase
		}
		target = rest
	} else {
		joined := path.Join(path.Dir(ref.Document), p)
		if joined == ".." || strings.HasPrefix(joined, "../") {
			return ReasonEscapesRoot
		}
		target = joined
		if strings.HasSuffix(p, "/") {
			target += "/"
		}
	}

	if _, ok := Lookup(root, target); ok {
		return ""
	}
	if dc.SPA && ref.Kind == KindNavigation {
		return ""
	}
	return ReasonMissing
}

// Lookup maps a site-relative target to the file that serves it: the file itself,
// index.html inside a directory, or target.html. A trailing slash only matches a
// directory.
func Lookup(root, target string) (string, bool) {
	target = strings.TrimPrefix(target, "/")
	clean := path.Clean("/" + target)[1:]
	full := filepath.Join(root, filepath.FromSlash(clean))

	if st, err := os.Stat(full); err == nil {
		if st.Mode().IsRegular() && !strings.HasSuffix(target, "/") {
			return full, true
		}
		if st.IsDir() {
			index := filepath.Join(full, indexPage)
			return index, isFile(index)
		}
	}
	if clean == "" || strings.HasSuffix(target, "/") {
		return "", false
	}
	return full + ".html", isFile(full + ".html")
}

func isFile(p string) bool {
	st, err := os.Stat(p)
	return err == nil && st.Mode().IsRegular()
}
