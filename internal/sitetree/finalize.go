package sitetree

import (
	"os"
	"path/filepath"

	"git.home.luguber.info/inful/sitebase/internal/deploy"
	"git.home.luguber.info/inful/sitebase/internal/foundation/errors"
)

const (
	NoJekyllFile    = ".nojekyll"
	NotFoundPage    = "404.html"
	indexPage       = "index.html"
	spaFallbackPage = "200.html"
)

// FinalizeResult lists the files written by Finalize, relative to the tree root.
type FinalizeResult struct {
	Written []string `json:"written,omitempty"`
}

// Finalize applies the hosting conventions of the resolved preset: .nojekyll for
// hosts that run Jekyll, and for client-rendered sites a 404.html copied from the
// SPA shell so deep links load the app. An existing 404.html is never replaced.
func Finalize(root string, dc deploy.DeploymentConfig) (FinalizeResult, error) {
	if err := checkRoot(root); err != nil {
		return FinalizeResult{}, err
	}
	info := dc.PresetInfo()
	var res FinalizeResult

	if info.NoJekyll {
		p := filepath.Join(root, NoJekyllFile)
		if _, err := os.Stat(p); os.IsNotExist(err) {
			if err := os.WriteFile(p, nil, 0o644); err != nil {
				return res, errors.WrapError(err, errors.CategoryFileSystem, "write .nojekyll").
					WithContext("path", p).Build()
			}
			res.Written = append(res.Written, NoJekyllFile)
		}
	}

	if info.NotFoundFallback && dc.SPA {
		target := filepath.Join(root, NotFoundPage)
		if _, err := os.Stat(target); os.IsNotExist(err) {
			src, ok := spaShell(root)
			if ok {
				data, err := os.ReadFile(src)
				if err != nil {
					return res, errors.WrapError(err, errors.CategoryFileSystem, "read SPA shell").
						WithContext("path", src).Build()
				}
				if err := os.WriteFile(target, data, 0o644); err != nil {
					return res, errors.WrapError(err, errors.CategoryFileSystem, "write 404 fallback").
						WithContext("path", target).Build()
				}
				res.Written = append(res.Written, NotFoundPage)
			}
		}
	}
	return res, nil
}

// spaShell returns the page that boots the client app: 200.html when the generator
// emitted one, else index.html.
func spaShell(root string) (string, bool) {
	for _, name := range []string{spaFallbackPage, indexPage} {
		p := filepath.Join(root, name)
		if st, err := os.Stat(p); err == nil && st.Mode().IsRegular() {
			return p, true
		}
	}
	return "", false
}
