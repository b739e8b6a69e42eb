package sitetree

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/sitebase/internal/deploy"
	"git.home.luguber.info/inful/sitebase/internal/foundation/errors"
)

func dcFor(base string, preset deploy.Preset, spa bool) deploy.DeploymentConfig {
	return deploy.DeploymentConfig{BasePath: base, Preset: preset, SPA: spa}
}

func writeTree(t *testing.T, files map[string]string) string {
	t.Helper()
	root := t.TempDir()
	for rel, content := range files {
		p := filepath.Join(root, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
		require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
	}
	return root
}

func readFile(t *testing.T, root, rel string) string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(root, filepath.FromSlash(rel)))
	require.NoError(t, err)
	return string(data)
}

const shell = `<!DOCTYPE html>
<html><head>
<link rel="stylesheet" href="/_nuxt/entry.css">
<link rel="icon" href="/favicon.ico">
<script type="module" src="/_nuxt/entry.js"></script>
</head><body>
<a href="/about">About</a>
<a href="https://example.com/">Ext</a>
<a href="#top">Top</a>
<a href="mailto:me@example.com">Mail</a>
<img src="/img/cake.png" srcset="/img/cake.png 1x, /img/cake@2x.png 2x" alt="Cake">
<img src="data:image/gif;base64,R0lGOD" alt="">
<video src="/media/party.mp4" poster="/media/poster.jpg"></video>
<form action="/search"></form>
<script src="//cdn.example.com/lib.js"></script>
<img src="img/relative.png">
</body></html>
`

func TestRebaseDocument(t *testing.T) {
	dc := dcFor("/birthday-baby/", deploy.PresetGitHubPages, true)
	out, n, err := RebaseDocument([]byte(shell), dc)
	require.NoError(t, err)
	require.Equal(t, 10, n)

	s := string(out)
	for _, want := range []string{
		`href="/birthday-baby/_nuxt/entry.css"`,
		`href="/birthday-baby/favicon.ico"`,
		`src="/birthday-baby/_nuxt/entry.js"`,
		`href="/birthday-baby/about"`,
		`srcset="/birthday-baby/img/cake.png 1x, /birthday-baby/img/cake@2x.png 2x"`,
		`poster="/birthday-baby/media/poster.jpg"`,
		`action="/birthday-baby/search"`,
		`href="https://example.com/"`,
		`href="#top"`,
		`src="//cdn.example.com/lib.js"`,
		`src="img/relative.png"`,
		`<!DOCTYPE html>`,
	} {
		require.Contains(t, s, want)
	}
}

func TestRebaseDocument_Idempotent(t *testing.T) {
	dc := dcFor("/birthday-baby/", deploy.PresetStatic, false)
	once, n1, err := RebaseDocument([]byte(shell), dc)
	require.NoError(t, err)
	require.Positive(t, n1)

	twice, n2, err := RebaseDocument(once, dc)
	require.NoError(t, err)
	require.Zero(t, n2)
	require.Equal(t, string(once), string(twice))
}

func TestRebaseDocument_RootBaseIsNoop(t *testing.T) {
	out, n, err := RebaseDocument([]byte(shell), dcFor("/", deploy.PresetStatic, false))
	require.NoError(t, err)
	require.Zero(t, n)
	require.Equal(t, shell, string(out))
}

func TestRebaseDocument_PreservesUntouchedMarkup(t *testing.T) {
	doc := `<DIV Class="x"><svg viewBox="0 0 1 1"></svg><p>Hi &amp; bye</p></DIV>`
	out, n, err := RebaseDocument([]byte(doc), dcFor("/b/", deploy.PresetStatic, false))
	require.NoError(t, err)
	require.Zero(t, n)
	require.Equal(t, doc, string(out))
}

func TestRebaseDocument_BaseWithoutTrailingSlashIsAlreadyPrefixed(t *testing.T) {
	doc := `<a href="/birthday-baby">Home</a><a href="/birthday-baby-extra/x">X</a>`
	out, n, err := RebaseDocument([]byte(doc), dcFor("/birthday-baby/", deploy.PresetStatic, false))
	require.NoError(t, err)
	require.Equal(t, 1, n)
	require.Contains(t, string(out), `href="/birthday-baby"`)
	require.Contains(t, string(out), `href="/birthday-baby/birthday-baby-extra/x"`)
}

func TestRebase_Tree(t *testing.T) {
	root := writeTree(t, map[string]string{
		"index.html":       shell,
		"about/index.html": `<a href="/">Home</a>`,
		"plain.html":       `<p>no refs</p>`,
		"_nuxt/entry.js":   `console.log("/not/rewritten")`,
	})
	dc := dcFor("/birthday-baby/", deploy.PresetGitHubPages, true)

	res, err := Rebase(context.Background(), root, dc)
	require.NoError(t, err)
	require.Equal(t, RewriteResult{FilesScanned: 3, FilesChanged: 2, RefsRewritten: 11}, res)
	require.Contains(t, readFile(t, root, "about/index.html"), `href="/birthday-baby/"`)
	require.Equal(t, `console.log("/not/rewritten")`, readFile(t, root, "_nuxt/entry.js"))

	again, err := Rebase(context.Background(), root, dc)
	require.NoError(t, err)
	require.Equal(t, RewriteResult{FilesScanned: 3}, again)
}

func TestRebase_MissingRoot(t *testing.T) {
	_, err := Rebase(context.Background(), filepath.Join(t.TempDir(), "nope"), dcFor("/b/", deploy.PresetStatic, false))
	require.Error(t, err)
	require.True(t, errors.HasCategory(err, errors.CategoryNotFound))
}

func TestRebase_CancelledContext(t *testing.T) {
	root := writeTree(t, map[string]string{"index.html": shell})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := Rebase(ctx, root, dcFor("/b/", deploy.PresetStatic, false))
	require.ErrorIs(t, err, context.Canceled)
}

func TestFinalize(t *testing.T) {
	tests := []struct {
		name   string
		preset deploy.Preset
		spa    bool
		files  map[string]string
		want   []string
	}{
		{"github pages spa", deploy.PresetGitHubPages, true, map[string]string{"index.html": "shell"}, []string{NoJekyllFile, NotFoundPage}},
		{"github pages ssr", deploy.PresetGitHubPages, false, map[string]string{"index.html": "shell"}, []string{NoJekyllFile}},
		{"static", deploy.PresetStatic, true, map[string]string{"index.html": "shell"}, nil},
		{"netlify prefers 200", deploy.PresetNetlifyStatic, true, map[string]string{"index.html": "index", "200.html": "shell"}, []string{NotFoundPage}},
		{"existing 404 kept", deploy.PresetGitHubPages, true, map[string]string{"index.html": "shell", "404.html": "custom"}, []string{NoJekyllFile}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			root := writeTree(t, tt.files)
			res, err := Finalize(root, dcFor("/b/", tt.preset, tt.spa))
			require.NoError(t, err)
			require.Equal(t, tt.want, res.Written)
			if _, ok := tt.files[NotFoundPage]; ok {
				require.Equal(t, "custom", readFile(t, root, NotFoundPage))
			} else if len(tt.want) > 0 && tt.want[len(tt.want)-1] == NotFoundPage {
				require.Equal(t, "shell", readFile(t, root, NotFoundPage))
			}
		})
	}
}

func TestFinalize_Idempotent(t *testing.T) {
	root := writeTree(t, map[string]string{"index.html": "shell"})
	dc := dcFor("/b/", deploy.PresetGitHubPages, true)
	_, err := Finalize(root, dc)
	require.NoError(t, err)
	res, err := Finalize(root, dc)
	require.NoError(t, err)
	require.Empty(t, res.Written)
}

func TestVerify_RebasedTreeIsClean(t *testing.T) {
	root := writeTree(t, map[string]string{
		"index.html": `<link rel="stylesheet" href="/_nuxt/entry.css">
<script src="/_nuxt/entry.js"></script>
<a href="/about/">About</a><a href="/guide#intro">Guide</a>
<img src="img/cake.png?v=2"><a href="/">Home</a>`,
		"about/index.html": `<a href="../index.html">Up</a>`,
		"guide.html":       `<p>guide</p>`,
		"_nuxt/entry.css":  "",
		"_nuxt/entry.js":   "",
		"img/cake.png":     "",
	})
	dc := dcFor("/birthday-baby/", deploy.PresetGitHubPages, false)
	_, err := Rebase(context.Background(), root, dc)
	require.NoError(t, err)

	res, err := Verify(context.Background(), root, dc)
	require.NoError(t, err)
	require.Empty(t, res.Broken)
	require.True(t, res.OK())
	require.NoError(t, res.Err())
	require.Equal(t, 3, res.Documents)
	require.Equal(t, 7, res.References)
}

func TestVerify_ReportsBrokenReferences(t *testing.T) {
	root := writeTree(t, map[string]string{
		"index.html": `<script src="/_nuxt/entry.js"></script>
<img src="/birthday-baby/missing.png">
<a href="/birthday-baby/nowhere">Route</a>
<img src="../../outside.png">`,
	})
	dc := dcFor("/birthday-baby/", deploy.PresetStatic, false)

	res, err := Verify(context.Background(), root, dc)
	require.NoError(t, err)
	require.Equal(t, []BrokenRef{
		{Document: "index.html", Ref: "../../outside.png", Reason: ReasonEscapesRoot},
		{Document: "index.html", Ref: "/_nuxt/entry.js", Reason: ReasonOutsideBase},
		{Document: "index.html", Ref: "/birthday-baby/missing.png", Reason: ReasonMissing},
		{Document: "index.html", Ref: "/birthday-baby/nowhere", Reason: ReasonMissing},
	}, res.Broken)

	err = res.Err()
	require.Error(t, err)
	require.True(t, errors.HasCategory(err, errors.CategoryBuild))
}

func TestVerify_SPANavigationMayTargetAppRoutes(t *testing.T) {
	root := writeTree(t, map[string]string{
		"index.html": `<a href="/b/party/42">Party</a><img src="/b/gone.png">`,
	})
	res, err := Verify(context.Background(), root, dcFor("/b/", deploy.PresetGitHubPages, true))
	require.NoError(t, err)
	require.Len(t, res.Broken, 1)
	require.Equal(t, "/b/gone.png", res.Broken[0].Ref)
}

func TestExtractReferences(t *testing.T) {
	refs, err := ExtractReferences("index.html", strings.NewReader(shell))
	require.NoError(t, err)

	kinds := map[string]Kind{}
	for _, r := range refs {
		kinds[r.URL] = r.Kind
	}
	require.Equal(t, KindAsset, kinds["/_nuxt/entry.css"])
	require.Equal(t, KindNavigation, kinds["/about"])
	require.Equal(t, KindAsset, kinds["/img/cake@2x.png"])
	require.Equal(t, KindNavigation, kinds["/search"])
}

func TestIsExternal(t *testing.T) {
	for ref, want := range map[string]bool{
		"https://example.com": true,
		"mailto:a@b":          true,
		"data:image/png;x":    true,
		"javascript:void(0)":  true,
		"//cdn.example.com/x": true,
		"#frag":               true,
		"":                    true,
		"/a/b":                false,
		"a/b:c":               false,
		"img.png":             false,
		"?q=1":                false,
	} {
		require.Equal(t, want, IsExternal(ref), ref)
	}
}

func TestContentHash(t *testing.T) {
	root := writeTree(t, map[string]string{"index.html": "a", "x/y.css": "b"})
	fp, err := ContentHash(root)
	require.NoError(t, err)
	require.Equal(t, 2, fp.Files)
	require.Len(t, fp.Hash, 64)

	require.NoError(t, os.WriteFile(filepath.Join(root, ManifestFile), []byte("{}"), 0o644))
	same, err := ContentHash(root)
	require.NoError(t, err)
	require.Equal(t, fp, same)

	require.NoError(t, os.WriteFile(filepath.Join(root, "x/y.css"), []byte("c"), 0o644))
	changed, err := ContentHash(root)
	require.NoError(t, err)
	require.NotEqual(t, fp.Hash, changed.Hash)
}

func TestLookup(t *testing.T) {
	root := writeTree(t, map[string]string{
		"index.html":       "",
		"about/index.html": "",
		"guide.html":       "",
		"app.js":           "",
		"empty/keep.txt":   "",
	})
	tests := []struct {
		target string
		want   string
		ok     bool
	}{
		{"", "index.html", true},
		{"about", "about/index.html", true},
		{"about/", "about/index.html", true},
		{"guide", "guide.html", true},
		{"app.js", "app.js", true},
		{"app.js/", "", false},
		{"empty/", "", false},
		{"../../etc/passwd", "", false},
		{"missing", "", false},
	}
	for _, tt := range tests {
		got, ok := Lookup(root, tt.target)
		require.Equal(t, tt.ok, ok, tt.target)
		if tt.ok {
			require.Equal(t, filepath.Join(root, filepath.FromSlash(tt.want)), got, tt.target)
		}
	}
}
