package sitetree

import (
	"context"
	"os"
	"path/filepath"
	"sync"

	"golang.org/x/net/html"
	"golang.org/x/sync/errgroup"

	"git.home.luguber.info/inful/sitebase/internal/deploy"
	"git.home.luguber.info/inful/sitebase/internal/foundation/errors"
)

// RewriteResult summarizes one rebase pass.
type RewriteResult struct {
	FilesScanned  int `json:"files_scanned"`
	FilesChanged  int `json:"files_changed"`
	RefsRewritten int `json:"refs_rewritten"`
}

// RebaseDocument rewrites the root-relative references of one HTML document so they
// live under dc.BasePath. It returns the new content and the number of rewritten references.
func RebaseDocument(data []byte, dc deploy.DeploymentConfig) ([]byte, int, error) {
	if dc.BasePath == deploy.RootPath {
		return data, 0, nil
	}
	count := 0
	rewrite := func(ref string) string {
		if !IsRootRelative(ref) || dc.HasPrefix(ref) {
			return ref
		}
		count++
		return dc.AssetPath(ref)
	}
	out, _, err := transform(data, func(t *html.Token) bool {
		before := count
		for _, attr := range refAttrs[t.Data] {
			for i := range t.Attr {
				if t.Attr[i].Key != attr || t.Attr[i].Val == "" {
					continue
				}
				if attr == "srcset" {
					t.Attr[i].Val = mapSrcset(t.Attr[i].Val, rewrite)
				} else {
					t.Attr[i].Val = rewrite(t.Attr[i].Val)
				}
			}
		}
		return count > before
	})
	if err != nil {
		return nil, 0, err
	}
	return out, count, nil
}

// Rebase rewrites every HTML document under root in place. Documents are processed in
// parallel; the pass is a no-op for the root base path and repeating it changes nothing.
func Rebase(ctx context.Context, root string, dc deploy.DeploymentConfig) (RewriteResult, error) {
	docs, err := HTMLFiles(root)
	if err != nil {
		return RewriteResult{}, err
	}
	res := RewriteResult{FilesScanned: len(docs)}
	if dc.BasePath == deploy.RootPath {
		return res, nil
	}

	var mu sync.Mutex
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for _, doc := range docs {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			n, err := rebaseFile(filepath.Join(root, filepath.FromSlash(doc)), dc)
			if err != nil {
				return errors.WrapError(err, errors.CategoryBuild, "rebase document").
					WithContext("path", doc).Build()
			}
			if n > 0 {
				mu.Lock()
				res.FilesChanged++
				res.RefsRewritten += n
				mu.Unlock()
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return RewriteResult{}, err
	}
	return res, nil
}

func rebaseFile(path string, dc deploy.DeploymentConfig) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, err
	}
	out, n, err := RebaseDocument(data, dc)
	if err != nil || n == 0 {
		return 0, err
	}
	info, err := os.Stat(path)
	if err != nil {
		return 0, err
	}
	return n, os.WriteFile(path, out, info.Mode().Perm())
}
