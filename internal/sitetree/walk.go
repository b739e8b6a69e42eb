package sitetree

import (
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"

	"git.home.luguber.info/inful/sitebase/internal/foundation/errors"
	"git.home.luguber.info/inful/sitebase/internal/manifest"
)

// ManifestFile is written into the tree by prepare and excluded from fingerprints.
const ManifestFile = manifest.Filename

// workers bounds per-file parallelism.
var workers = runtime.GOMAXPROCS(0)

// checkRoot ensures root exists and is a directory.
func checkRoot(root string) error {
	info, err := os.Stat(root)
	if err != nil {
		if os.IsNotExist(err) {
			return errors.NotFoundError("site directory does not exist").
				WithContext("path", root).Build()
		}
		return errors.WrapError(err, errors.CategoryFileSystem, "stat site directory").
			WithContext("path", root).Build()
	}
	if !info.IsDir() {
		return errors.ValidationError("site path is not a directory").
			WithContext("path", root).Build()
	}
	return nil
}

// Files lists the regular files under root as sorted slash-separated relative paths.
func Files(root string) ([]string, error) {
	if err := checkRoot(root); err != nil {
		return nil, err
	}
	var files []string
	err := filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.Type().IsRegular() {
			return nil
		}
		rel, err := filepath.Rel(root, p)
		if err != nil {
			return err
		}
		files = append(files, filepath.ToSlash(rel))
		return nil
	})
	if err != nil {
		return nil, errors.WrapError(err, errors.CategoryFileSystem, "walk site directory").
			WithContext("path", root).Build()
	}
	sort.Strings(files)
	return files, nil
}

// HTMLFiles lists the .html documents under root.
func HTMLFiles(root string) ([]string, error) {
	files, err := Files(root)
	if err != nil {
		return nil, err
	}
	out := files[:0]
	for _, f := range files {
		if strings.EqualFold(filepath.Ext(f), ".html") {
			out = append(out, f)
		}
	}
	return out, nil
}
