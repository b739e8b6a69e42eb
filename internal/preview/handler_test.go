package preview

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/sitebase/internal/deploy"
	"git.home.luguber.info/inful/sitebase/internal/metrics"
)

func writeSite(t *testing.T, files map[string]string) string {
	t.Helper()
	root := t.TempDir()
	for rel, content := range files {
		p := filepath.Join(root, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
		require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
	}
	return root
}

func get(t *testing.T, h http.Handler, target string) (*http.Response, string) {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
	res := rec.Result()
	body, err := io.ReadAll(res.Body)
	require.NoError(t, err)
	return res, string(body)
}

var site = map[string]string{
	"index.html":       "shell",
	"about/index.html": "about",
	"guide.html":       "guide",
	"_nuxt/app.js":     "boot()",
	"404.html":         "not found page",
}

func TestHandler_DirectoryRedirectKeepsRelativeRefsResolvable(t *testing.T) {
	root := writeSite(t, map[string]string{
		"index.html":       "shell",
		"about/index.html": `<img src="logo.png">`,
		"about/logo.png":   "png",
	})
	dc := deploy.DeploymentConfig{BasePath: "/b/", Preset: deploy.PresetStatic}
	h := NewHandler(root, dc, HandlerOptions{})

	res, _ := get(t, h, "/b/about?lang=en")
	require.Equal(t, http.StatusMovedPermanently, res.StatusCode)
	require.Equal(t, "/b/about/?lang=en", res.Header.Get("Location"))

	res, body := get(t, h, "/b/about/")
	require.Equal(t, http.StatusOK, res.StatusCode)
	require.Equal(t, `<img src="logo.png">`, body)

	res, body = get(t, h, "/b/about/logo.png")
	require.Equal(t, http.StatusOK, res.StatusCode)
	require.Equal(t, "png", body)
}

func TestHandler_ServesUnderBasePath(t *testing.T) {
	root := writeSite(t, site)
	dc := deploy.DeploymentConfig{BasePath: "/birthday-baby/", Preset: deploy.PresetGitHubPages}
	h := NewHandler(root, dc, HandlerOptions{})

	tests := []struct {
		target   string
		code     int
		body     string
		location string
	}{
		{"/", http.StatusFound, "", "/birthday-baby/"},
		{"/birthday-baby", http.StatusMovedPermanently, "", "/birthday-baby/"},
		{"/birthday-baby/", http.StatusOK, "shell", ""},
		{"/birthday-baby/about/", http.StatusOK, "about", ""},
		{"/birthday-baby/about", http.StatusMovedPermanently, "", "/birthday-baby/about/"},
		{"/birthday-baby/guide", http.StatusOK, "guide", ""},
		{"/birthday-baby/_nuxt/app.js", http.StatusOK, "boot()", ""},
		{"/birthday-baby/party/1", http.StatusNotFound, "not found page", ""},
		{"/_nuxt/app.js", http.StatusNotFound, "not found page", ""},
	}
	for _, tt := range tests {
		t.Run(tt.target, func(t *testing.T) {
			res, body := get(t, h, tt.target)
			require.Equal(t, tt.code, res.StatusCode)
			if tt.location != "" {
				require.Equal(t, tt.location, res.Header.Get("Location"))
			} else {
				require.Equal(t, tt.body, body)
			}
		})
	}
}

func TestHandler_SPAFallback(t *testing.T) {
	root := writeSite(t, map[string]string{"index.html": "shell", "img/a.png": "png"})
	dc := deploy.DeploymentConfig{BasePath: "/b/", Preset: deploy.PresetStatic, SPA: true}
	h := NewHandler(root, dc, HandlerOptions{})

	res, body := get(t, h, "/b/party/42")
	require.Equal(t, http.StatusOK, res.StatusCode)
	require.Equal(t, "shell", body)

	res, _ = get(t, h, "/b/img/missing.png")
	require.Equal(t, http.StatusNotFound, res.StatusCode)
}

func TestHandler_RootBase(t *testing.T) {
	root := writeSite(t, map[string]string{"index.html": "shell"})
	h := NewHandler(root, deploy.DeploymentConfig{BasePath: "/", Preset: deploy.PresetStatic}, HandlerOptions{})
	res, body := get(t, h, "/")
	require.Equal(t, http.StatusOK, res.StatusCode)
	require.Equal(t, "shell", body)
}

func TestHandler_RejectsWrites(t *testing.T) {
	root := writeSite(t, site)
	h := NewHandler(root, deploy.DeploymentConfig{BasePath: "/", Preset: deploy.PresetStatic}, HandlerOptions{})
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/index.html", nil))
	require.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestHandler_HealthAndMetrics(t *testing.T) {
	root := writeSite(t, site)
	dc := deploy.DeploymentConfig{BasePath: "/b/", Preset: deploy.PresetGitHubPages}
	rec := metrics.NewPrometheusRecorder(nil)
	h := NewHandler(root, dc, HandlerOptions{
		Recorder:    rec,
		MetricsPath: "/metrics",
		Metrics:     rec.HTTPHandler(),
		Status:      &Status{},
	})

	res, body := get(t, h, HealthPath)
	require.Equal(t, http.StatusOK, res.StatusCode)
	var health HealthResponse
	require.NoError(t, json.Unmarshal([]byte(body), &health))
	require.Equal(t, "ok", health.Status)
	require.Equal(t, "/b/", health.BasePath)
	require.Nil(t, health.Verified)

	res, body = get(t, h, "/metrics")
	require.Equal(t, http.StatusOK, res.StatusCode)
	require.Contains(t, body, `sitebase_preview_http_requests_total{code="200"} 1`)
}
