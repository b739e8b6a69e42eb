// Package gitinfo reads the facts sitebase needs from the project's git checkout:
// the repository name (which GitHub Pages uses as the project site's base path)
// and the commit being deployed.
package gitinfo

import (
	stderrors "errors"
	"net/url"
	"path"
	"path/filepath"
	"strings"

	"github.com/go-git/go-git/v5"

	"git.home.luguber.info/inful/sitebase/internal/foundation/errors"
)

// DefaultRemote is the remote whose URL names the repository.
const DefaultRemote = "origin"

// Info describes a checkout.
type Info struct {
	Root       string
	RemoteURL  string
	RepoName   string
	HeadCommit string
}

// Inspect opens the repository containing dir (searching parent directories) and
// collects its name and HEAD commit. A repository without an origin remote is named
// after its worktree directory; one without commits has an empty HeadCommit.
func Inspect(dir string) (*Info, error) {
	repo, err := git.PlainOpenWithOptions(dir, &git.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		if stderrors.Is(err, git.ErrRepositoryNotExists) {
			return nil, errors.NotFoundError("not a git repository").WithContext("path", dir).Build()
		}
		return nil, errors.WrapError(err, errors.CategoryGit, "open repository").WithContext("path", dir).Build()
	}

	info := &Info{}
	if wt, wtErr := repo.Worktree(); wtErr == nil {
		info.Root = wt.Filesystem.Root()
	}

	if remote, remoteErr := repo.Remote(DefaultRemote); remoteErr == nil {
		if urls := remote.Config().URLs; len(urls) > 0 {
			info.RemoteURL = urls[0]
			info.RepoName = RepoNameFromURL(urls[0])
		}
	}
	if info.RepoName == "" && info.Root != "" {
		info.RepoName = filepath.Base(info.Root)
	}

	if head, headErr := repo.Head(); headErr == nil {
		info.HeadCommit = head.Hash().String()
	}
	return info, nil
}

// RepoNameFromURL extracts the repository name from a clone URL. It understands
// https and ssh URLs, scp-like "git@host:owner/name.git" and local paths.
func RepoNameFromURL(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	p := raw
	if u, err := url.Parse(raw); err == nil && u.Scheme != "" && u.Host != "" {
		p = u.Path
	} else if i := strings.Index(raw, ":"); i > 0 && !strings.Contains(raw[:i], "/") && !isWindowsDrive(raw) {
		p = raw[i+1:]
	}
	p = strings.TrimRight(filepath.ToSlash(p), "/")
	name := strings.TrimSuffix(path.Base(p), ".git")
	if name == "." || name == "/" {
		return ""
	}
	return name
}

// BasePathForRepo returns the project-site base path GitHub Pages assigns to a
// repository. User and organization sites ("<owner>.github.io") are served from "/".
func BasePathForRepo(name string) string {
	name = strings.Trim(strings.TrimSpace(name), "/")
	if name == "" || strings.HasSuffix(strings.ToLower(name), ".github.io") {
		return "/"
	}
	return "/" + name + "/"
}

func isWindowsDrive(s string) bool {
	return len(s) >= 2 && s[1] == ':' && ((s[0] >= 'a' && s[0] <= 'z') || (s[0] >= 'A' && s[0] <= 'Z'))
}
