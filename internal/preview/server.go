// Package preview serves a prepared static tree locally under its base path and
// keeps re-verifying it while files change.
package preview

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/go-co-op/gocron/v2"

	"git.home.luguber.info/inful/sitebase/internal/deploy"
	ferrors "git.home.luguber.info/inful/sitebase/internal/foundation/errors"
	"git.home.luguber.info/inful/sitebase/internal/logfields"
	"git.home.luguber.info/inful/sitebase/internal/metrics"
	"git.home.luguber.info/inful/sitebase/internal/sitetree"
)

// DebounceDelay is how long the watcher waits for changes to settle.
const DebounceDelay = 300 * time.Millisecond

// Options configures a Server.
type Options struct {
	Addr           string
	VerifyInterval time.Duration // 0 disables periodic verification
	Recorder       metrics.Recorder
	MetricsPath    string
	Metrics        http.Handler
}

// Server is a local preview of one tree.
type Server struct {
	root   string
	dc     deploy.DeploymentConfig
	opts   Options
	status *Status

	verifyReq chan struct{}
}

// New creates a preview server for the tree at root.
func New(root string, dc deploy.DeploymentConfig, opts Options) *Server {
	if opts.Recorder == nil {
		opts.Recorder = metrics.NoopRecorder{}
	}
	return &Server{
		root:      root,
		dc:        dc,
		opts:      opts,
		status:    &Status{},
		verifyReq: make(chan struct{}, 1),
	}
}

// Status returns the verification status shared with the health endpoint.
func (s *Server) Status() *Status { return s.status }

// Handler returns the HTTP handler of the preview.
func (s *Server) Handler() http.Handler {
	return NewHandler(s.root, s.dc, HandlerOptions{
		Recorder:    s.opts.Recorder,
		MetricsPath: s.opts.MetricsPath,
		Metrics:     s.opts.Metrics,
		Status:      s.status,
	})
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.opts.Addr)
	if err != nil {
		return ferrors.WrapError(err, ferrors.CategoryRuntime, "listen").
			WithContext("addr", s.opts.Addr).Build()
	}
	return s.Serve(ctx, ln)
}

// Serve is Run with a pre-bound listener.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	abs, err := filepath.Abs(s.root)
	if err != nil {
		_ = ln.Close()
		return ferrors.WrapError(err, ferrors.CategoryFileSystem, "resolve site directory").Build()
	}
	if st, statErr := os.Stat(abs); statErr != nil || !st.IsDir() {
		_ = ln.Close()
		return ferrors.NotFoundError("site directory not found or not a directory").
			WithContext("path", abs).Build()
	}

	watcher, err := setupFileWatcher(abs)
	if err != nil {
		_ = ln.Close()
		return err
	}
	defer func() { _ = watcher.Close() }()

	scheduler, err := s.startScheduler()
	if err != nil {
		_ = ln.Close()
		return err
	}
	defer func() {
		if scheduler != nil {
			_ = scheduler.Shutdown()
		}
	}()

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		s.verifyWorker(ctx)
	}()
	s.requestVerify()

	srv := &http.Server{Handler: s.Handler(), ReadTimeout: 30 * time.Second, WriteTimeout: 30 * time.Second, IdleTimeout: 120 * time.Second}
	serveErr := make(chan error, 1)
	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()
	slog.Info("Preview server listening",
		logfields.URL(fmt.Sprintf("http://%s%s", ln.Addr().String(), s.dc.BasePath)),
		logfields.Path(abs))

	trigger := debouncer(DebounceDelay, s.requestVerify)
	loopErr := s.loop(ctx, watcher, trigger, serveErr)

	slog.Info("Shutting down preview server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Warn("HTTP server shutdown error", logfields.Error(err))
	}
	wg.Wait()
	return loopErr
}

func (s *Server) loop(ctx context.Context, watcher *fsnotify.Watcher, trigger func(), serveErr <-chan error) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case err, ok := <-serveErr:
			if ok && err != nil {
				return ferrors.WrapError(err, ferrors.CategoryRuntime, "preview server failed").Build()
			}
			serveErr = nil
		case ev, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			handleFileEvent(watcher, ev, trigger)
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			slog.Warn("watcher error", logfields.Error(err))
		}
	}
}

func (s *Server) startScheduler() (gocron.Scheduler, error) {
	if s.opts.VerifyInterval <= 0 {
		return nil, nil
	}
	sched, err := gocron.NewScheduler()
	if err != nil {
		return nil, fmt.Errorf("failed to create gocron scheduler: %w", err)
	}
	if _, err := sched.NewJob(
		gocron.DurationJob(s.opts.VerifyInterval),
		gocron.NewTask(s.requestVerify),
		gocron.WithName("preview-verify"),
	); err != nil {
		_ = sched.Shutdown()
		return nil, fmt.Errorf("failed to create periodic verify job: %w", err)
	}
	sched.Start()
	slog.Info("Periodic verification scheduled", slog.Duration("interval", s.opts.VerifyInterval))
	return sched, nil
}

// requestVerify queues a verification; requests made while one is queued coalesce.
func (s *Server) requestVerify() {
	select {
	case s.verifyReq <- struct{}{}:
	default:
	}
}

func (s *Server) verifyWorker(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-s.verifyReq:
			s.verifyOnce(ctx)
		}
	}
}

func (s *Server) verifyOnce(ctx context.Context) {
	res, err := sitetree.Verify(ctx, s.root, s.dc)
	s.status.set(time.Now(), res, err)
	switch {
	case err != nil:
		s.opts.Recorder.ObserveVerify(metrics.ResultError, 0)
		slog.Warn("Verification failed", logfields.Error(err))
	case !res.OK():
		s.opts.Recorder.ObserveVerify(metrics.ResultBroken, len(res.Broken))
		for _, b := range res.Broken {
			slog.Warn("Broken reference", logfields.Path(b.Document), logfields.URL(b.Ref), slog.String("reason", b.Reason))
		}
	default:
		s.opts.Recorder.ObserveVerify(metrics.ResultOK, 0)
		slog.Info("Site verified", logfields.Count(res.References))
	}
}

// debouncer returns a trigger that calls fn once no trigger has fired for delay.
func debouncer(delay time.Duration, fn func()) func() {
	var mu sync.Mutex
	var timer *time.Timer
	return func() {
		mu.Lock()
		defer mu.Unlock()
		if timer != nil {
			timer.Stop()
		}
		timer = time.AfterFunc(delay, fn)
	}
}

func setupFileWatcher(root string) (*fsnotify.Watcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, ferrors.WrapError(err, ferrors.CategoryRuntime, "fsnotify").Build()
	}
	if err := addDirsRecursive(watcher, root); err != nil {
		_ = watcher.Close()
		return nil, err
	}
	return watcher, nil
}

func handleFileEvent(watcher *fsnotify.Watcher, ev fsnotify.Event, trigger func()) {
	if shouldIgnoreEvent(ev.Name) {
		return
	}
	if ev.Op&fsnotify.Create == fsnotify.Create {
		if fi, err := os.Stat(ev.Name); err == nil && fi.IsDir() {
			_ = addDirsRecursive(watcher, ev.Name)
		}
	}
	slog.Debug("File change detected", logfields.Path(ev.Name), slog.String("op", ev.Op.String()))
	trigger()
}

func addDirsRecursive(w *fsnotify.Watcher, root string) error {
	return filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if d.IsDir() {
			if err := w.Add(path); err != nil {
				slog.Warn("watch add failed", logfields.Path(path), logfields.Error(err))
			}
		}
		return nil
	})
}

// shouldIgnoreEvent filters editor swap files and OS metadata. The manifest is
// ignored too, since prepare rewrites it on every run.
func shouldIgnoreEvent(path string) bool {
	base := filepath.Base(path)
	switch {
	case base == sitetree.ManifestFile, base == ".DS_Store", base == "Thumbs.db":
		return true
	case strings.HasSuffix(base, "~"), strings.HasSuffix(base, ".swp"), strings.HasSuffix(base, ".swx"):
		return true
	case strings.HasPrefix(base, ".#"), strings.HasPrefix(base, "#") && strings.HasSuffix(base, "#"):
		return true
	}
	return false
}
