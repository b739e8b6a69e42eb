package preview

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"git.home.luguber.info/inful/sitebase/internal/deploy"
	"git.home.luguber.info/inful/sitebase/internal/logfields"
	"git.home.luguber.info/inful/sitebase/internal/metrics"
	"git.home.luguber.info/inful/sitebase/internal/sitetree"
)

// HealthPath is always served, independent of the base path.
const HealthPath = "/healthz"

// HandlerOptions configures NewHandler.
type HandlerOptions struct {
	Recorder metrics.Recorder
	// MetricsPath and Metrics mount a metrics endpoint when both are set.
	MetricsPath string
	Metrics     http.Handler
	// Status reports the last verification on the health endpoint. Optional.
	Status *Status
}

// NewHandler serves the tree at root the way a static host serving it under
// dc.BasePath would: "/" redirects to the base path, files resolve as on the host,
// and client-rendered sites fall back to their app shell for unknown routes.
func NewHandler(root string, dc deploy.DeploymentConfig, opts HandlerOptions) http.Handler {
	if opts.Recorder == nil {
		opts.Recorder = metrics.NoopRecorder{}
	}
	site := &siteHandler{root: root, dc: dc}

	mux := http.NewServeMux()
	mux.HandleFunc(HealthPath, healthHandler(dc, opts.Status))
	if opts.MetricsPath != "" && opts.Metrics != nil {
		mux.Handle(opts.MetricsPath, opts.Metrics)
	}
	mux.Handle("/", site)
	return chain(opts.Recorder, mux)
}

type siteHandler struct {
	root string
	dc   deploy.DeploymentConfig
}

func (h *siteHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		w.Header().Set("Allow", "GET, HEAD")
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return
	}
	if r.URL.Path == "/" && h.dc.BasePath != deploy.RootPath {
		http.Redirect(w, r, h.dc.BasePath, http.StatusFound)
		return
	}
	rel, ok := h.dc.TrimBase(r.URL.Path)
	if !ok {
		h.notFound(w, r)
		return
	}
	if r.URL.Path == strings.TrimSuffix(h.dc.BasePath, "/") {
		http.Redirect(w, r, h.dc.BasePath, http.StatusMovedPermanently)
		return
	}
	if file, found := sitetree.Lookup(h.root, rel); found {
		if isDirWithoutSlash(h.root, rel) {
			target := r.URL.Path + "/"
			if r.URL.RawQuery != "" {
				target += "?" + r.URL.RawQuery
			}
			http.Redirect(w, r, target, http.StatusMovedPermanently)
			return
		}
		serveFile(w, r, file, http.StatusOK)
		return
	}
	if h.dc.SPA && isRoute(rel) {
		if shell, found := sitetree.Lookup(h.root, "200.html"); found {
			serveFile(w, r, shell, http.StatusOK)
			return
		}
		if shell, found := sitetree.Lookup(h.root, ""); found {
			serveFile(w, r, shell, http.StatusOK)
			return
		}
	}
	h.notFound(w, r)
}

func (h *siteHandler) notFound(w http.ResponseWriter, r *http.Request) {
	if page := filepath.Join(h.root, sitetree.NotFoundPage); fileExists(page) {
		serveFile(w, r, page, http.StatusNotFound)
		return
	}
	http.NotFound(w, r)
}

// isDirWithoutSlash reports whether rel names a directory but lacks the trailing
// slash that relative references inside its index.html depend on.
func isDirWithoutSlash(root, rel string) bool {
	if rel == "" || strings.HasSuffix(rel, "/") {
		return false
	}
	st, err := os.Stat(filepath.Join(root, filepath.FromSlash(path.Clean("/" + rel)[1:])))
	return err == nil && st.IsDir()
}

// isRoute reports whether rel looks like an app route rather than a missing asset.
func isRoute(rel string) bool {
	return path.Ext(strings.TrimSuffix(rel, "/")) == "" || strings.HasSuffix(rel, ".html")
}

// serveFile writes the file with the given status. http.ServeContent is used for
// 200 responses so range and conditional requests behave like a real host.
func serveFile(w http.ResponseWriter, r *http.Request, file string, status int) {
	if status == http.StatusOK {
		f, err := os.Open(file)
		if err != nil {
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
			return
		}
		defer func() { _ = f.Close() }()
		st, err := f.Stat()
		if err != nil {
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
			return
		}
		http.ServeContent(w, r, file, st.ModTime(), f)
		return
	}
	data, err := os.ReadFile(file)
	if err != nil {
		http.Error(w, http.StatusText(status), status)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if r.Method != http.MethodHead {
		_, _ = w.Write(data)
	}
}

func fileExists(p string) bool {
	st, err := os.Stat(p)
	return err == nil && st.Mode().IsRegular()
}

// HealthResponse is the body of the health endpoint.
type HealthResponse struct {
	Status   string     `json:"status"`
	BasePath string     `json:"base_path"`
	Preset   string     `json:"preset"`
	Verified *time.Time `json:"verified,omitempty"`
	Broken   int        `json:"broken"`
	Error    string     `json:"error,omitempty"`
}

func healthHandler(dc deploy.DeploymentConfig, status *Status) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		resp := HealthResponse{Status: "ok", BasePath: dc.BasePath, Preset: string(dc.Preset)}
		if status != nil {
			snap := status.Snapshot()
			if !snap.At.IsZero() {
				at := snap.At
				resp.Verified = &at
			}
			resp.Broken = len(snap.Result.Broken)
			if snap.Err != nil {
				resp.Error = snap.Err.Error()
			}
		}
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(resp); err != nil {
			slog.Error("failed to write health response", logfields.Error(err))
		}
	}
}

// chain records request metrics and logs each request at debug level.
func chain(rec metrics.Recorder, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		wrapped := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next.ServeHTTP(wrapped, r)
		d := time.Since(start)
		rec.ObserveHTTPRequest(wrapped.statusCode, d)
		slog.Debug("HTTP request",
			slog.String("method", r.Method),
			logfields.Path(r.URL.Path),
			slog.Int("status", wrapped.statusCode),
			logfields.Duration(d))
	})
}

// responseWriter captures status codes for metrics.
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}
