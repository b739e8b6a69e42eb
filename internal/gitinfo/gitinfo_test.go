package gitinfo

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-git/go-git/v5"
	ggitcfg "github.com/go-git/go-git/v5/config"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/sitebase/internal/foundation/errors"
)

func TestRepoNameFromURL(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"https://github.com/someone/birthday-baby.git", "birthday-baby"},
		{"https://github.com/someone/birthday-baby", "birthday-baby"},
		{"https://github.com/someone/birthday-baby/", "birthday-baby"},
		{"git@github.com:someone/birthday-baby.git", "birthday-baby"},
		{"ssh://git@github.com/someone/birthday-baby.git", "birthday-baby"},
		{"/srv/git/birthday-baby.git", "birthday-baby"},
		{"", ""},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			require.Equal(t, tt.want, RepoNameFromURL(tt.in))
		})
	}
}

func TestBasePathForRepo(t *testing.T) {
	require.Equal(t, "/birthday-baby/", BasePathForRepo("birthday-baby"))
	require.Equal(t, "/", BasePathForRepo("someone.github.io"))
	require.Equal(t, "/", BasePathForRepo("Someone.GitHub.io"))
	require.Equal(t, "/", BasePathForRepo(""))
}

func initRepo(t *testing.T) (*git.Repository, string) {
	t.Helper()
	dir := filepath.Join(t.TempDir(), "checkout")
	require.NoError(t, os.MkdirAll(dir, 0o755))
	repo, err := git.PlainInit(dir, false)
	require.NoError(t, err)
	return repo, dir
}

func TestInspect_UsesOriginRemote(t *testing.T) {
	repo, dir := initRepo(t)
	_, err := repo.CreateRemote(&ggitcfg.RemoteConfig{
		Name: "origin",
		URLs: []string{"https://github.com/someone/birthday-baby.git"},
	})
	require.NoError(t, err)

	sub := filepath.Join(dir, "app")
	require.NoError(t, os.MkdirAll(sub, 0o755))

	info, err := Inspect(sub)
	require.NoError(t, err)
	require.Equal(t, "birthday-baby", info.RepoName)
	require.Equal(t, "https://github.com/someone/birthday-baby.git", info.RemoteURL)
	require.Empty(t, info.HeadCommit)
}

func TestInspect_FallsBackToDirectoryName(t *testing.T) {
	repo, dir := initRepo(t)

	wt, err := repo.Worktree()
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "index.html"), []byte("<html></html>"), 0o644))
	_, err = wt.Add("index.html")
	require.NoError(t, err)
	hash, err := wt.Commit("initial", &git.CommitOptions{
		Author: &object.Signature{Name: "test", Email: "test@example.com", When: time.Now()},
	})
	require.NoError(t, err)

	info, err := Inspect(dir)
	require.NoError(t, err)
	require.Equal(t, "checkout", info.RepoName)
	require.Equal(t, hash.String(), info.HeadCommit)
}

func TestInspect_NotARepository(t *testing.T) {
	_, err := Inspect(t.TempDir())
	require.Error(t, err)
	require.True(t, errors.HasCategory(err, errors.CategoryNotFound))
}
