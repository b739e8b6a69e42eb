// Package pipeline runs a prepare: it takes a resolved DeploymentConfig and a
// generated static tree and makes the tree deployable under the base path, recording
// each step as it goes.
package pipeline

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"git.home.luguber.info/inful/sitebase/internal/deploy"
	"git.home.luguber.info/inful/sitebase/internal/eventstore"
	"git.home.luguber.info/inful/sitebase/internal/foundation/errors"
	"git.home.luguber.info/inful/sitebase/internal/gitinfo"
	"git.home.luguber.info/inful/sitebase/internal/logfields"
	"git.home.luguber.info/inful/sitebase/internal/manifest"
	"git.home.luguber.info/inful/sitebase/internal/metrics"
	"git.home.luguber.info/inful/sitebase/internal/notify"
	"git.home.luguber.info/inful/sitebase/internal/observability"
	"git.home.luguber.info/inful/sitebase/internal/sitetree"
	"git.home.luguber.info/inful/sitebase/internal/version"
)

// Stage names, used for logging and as the stage of failed events.
const (
	StageResolve  = "resolve"
	StageRebase   = "rebase"
	StageFinalize = "finalize"
	StageManifest = "manifest"
	StageVerify   = "verify"
)

// Request contains the inputs of one prepare run.
type Request struct {
	// Root is the generated static tree to process in place.
	Root string
	// Deployment is the configuration resolved for this build invocation.
	Deployment deploy.DeploymentConfig
	// ConfigHash is the snapshot of the project settings the run was resolved from.
	ConfigHash string
	// RepositoryDir, when set, names the git checkout whose HEAD is recorded.
	RepositoryDir string
}

// Result contains the outcome of a prepare run.
type Result struct {
	BuildID      string
	Deployment   deploy.DeploymentConfig
	Rewrite      sitetree.RewriteResult
	Finalize     sitetree.FinalizeResult
	Verify       sitetree.VerifyResult
	Manifest     *manifest.DeploymentManifest
	ManifestPath string
	Duration     time.Duration
}

// Preparer executes prepare runs.
type Preparer struct {
	store     eventstore.Store
	publisher notify.Publisher
	recorder  metrics.Recorder
	now       func() time.Time
	newID     func() string
}

// Option configures a Preparer.
type Option func(*Preparer)

// WithStore records events in s.
func WithStore(s eventstore.Store) Option {
	return func(p *Preparer) { p.store = s }
}

// WithPublisher publishes each event through pub.
func WithPublisher(pub notify.Publisher) Option {
	return func(p *Preparer) { p.publisher = pub }
}

// WithRecorder reports measurements to r.
func WithRecorder(r metrics.Recorder) Option {
	return func(p *Preparer) { p.recorder = r }
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(p *Preparer) { p.now = now }
}

// WithIDGenerator overrides build ID generation.
func WithIDGenerator(fn func() string) Option {
	return func(p *Preparer) { p.newID = fn }
}

// New creates a Preparer. Without options nothing is recorded.
func New(opts ...Option) *Preparer {
	p := &Preparer{
		store:     eventstore.NopStore{},
		publisher: notify.NopPublisher{},
		recorder:  metrics.NoopRecorder{},
		now:       time.Now,
		newID:     uuid.NewString,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Prepare runs resolve, rebase, finalize, manifest and verify against req.Root.
// A broken reference fails the run with a build error; the returned Result is
// populated up to the failing stage.
func (p *Preparer) Prepare(ctx context.Context, req Request) (*Result, error) {
	start := p.now()
	res := &Result{BuildID: p.newID(), Deployment: req.Deployment}
	ctx = observability.WithBuildID(ctx, res.BuildID)

	err := p.run(ctx, req, res, start)
	res.Duration = p.now().Sub(start)
	p.recorder.ObservePrepareDuration(res.Duration, err == nil)
	if err != nil {
		observability.ErrorContext(ctx, "Prepare failed", logfields.Stage(failedStage(err)), logfields.Error(err))
		p.record(ctx, res, eventstore.TypeFailed, map[string]string{
			logfields.KeyStage: failedStage(err),
			logfields.KeyError: err.Error(),
		})
		return res, err
	}
	observability.InfoContext(ctx, "Prepare completed",
		logfields.BasePath(res.Deployment.BasePath),
		logfields.Preset(string(res.Deployment.Preset)),
		logfields.Duration(res.Duration))
	return res, nil
}

func (p *Preparer) run(ctx context.Context, req Request, res *Result, start time.Time) error {
	dc := req.Deployment
	if !deploy.IsNormalizedBasePath(dc.BasePath) {
		return stageError(StageResolve, errors.ValidationError("base path is not normalized").
			WithContext("base_path", dc.BasePath).Build())
	}
	if !dc.Preset.Valid() {
		return stageError(StageResolve, errors.ValidationError("unknown preset").
			WithContext("preset", string(dc.Preset)).Build())
	}

	sctx := observability.WithStage(ctx, StageResolve)
	p.recorder.IncResolution(string(dc.BaseSource))
	observability.InfoContext(sctx, "Resolved deployment",
		logfields.BasePath(dc.BasePath),
		logfields.Source(string(dc.BaseSource)),
		logfields.Preset(string(dc.Preset)))
	p.record(sctx, res, eventstore.TypeResolved, dc)

	sctx = observability.WithStage(ctx, StageRebase)
	rw, err := sitetree.Rebase(sctx, req.Root, dc)
	if err != nil {
		return stageError(StageRebase, err)
	}
	res.Rewrite = rw
	p.recorder.ObserveRewrite(rw.FilesScanned, rw.FilesChanged, rw.RefsRewritten)
	observability.InfoContext(sctx, "Rebased site tree",
		logfields.Count(rw.RefsRewritten),
		logfields.Path(req.Root))
	p.record(sctx, res, eventstore.TypeRebased, rw)

	sctx = observability.WithStage(ctx, StageFinalize)
	fin, err := sitetree.Finalize(req.Root, dc)
	if err != nil {
		return stageError(StageFinalize, err)
	}
	res.Finalize = fin
	p.record(sctx, res, eventstore.TypeFinalized, fin)

	sctx = observability.WithStage(ctx, StageManifest)
	m, err := p.buildManifest(sctx, req, res, start)
	if err != nil {
		return stageError(StageManifest, err)
	}
	path, err := m.Write(req.Root)
	if err != nil {
		return stageError(StageManifest, err)
	}
	res.Manifest, res.ManifestPath = m, path
	observability.DebugContext(sctx, "Wrote manifest", logfields.Path(path))

	sctx = observability.WithStage(ctx, StageVerify)
	vr, err := sitetree.Verify(sctx, req.Root, dc)
	if err != nil {
		p.recorder.ObserveVerify(metrics.ResultError, 0)
		return stageError(StageVerify, err)
	}
	res.Verify = vr
	p.record(sctx, res, eventstore.TypeVerified, vr)
	if !vr.OK() {
		p.recorder.ObserveVerify(metrics.ResultBroken, len(vr.Broken))
		for _, b := range vr.Broken {
			observability.WarnContext(sctx, "Broken reference",
				logfields.Path(b.Document), logfields.URL(b.Ref), slog.String("reason", b.Reason))
		}
		return stageError(StageVerify, vr.Err())
	}
	p.recorder.ObserveVerify(metrics.ResultOK, 0)
	return nil
}

func (p *Preparer) buildManifest(ctx context.Context, req Request, res *Result, start time.Time) (*manifest.DeploymentManifest, error) {
	fp, err := sitetree.ContentHash(req.Root)
	if err != nil {
		return nil, err
	}
	now := p.now()
	m := &manifest.DeploymentManifest{
		ID:         res.BuildID,
		Timestamp:  now.UTC(),
		Deployment: res.Deployment,
		Inputs:     manifest.Inputs{ConfigHash: req.ConfigHash},
		Outputs: manifest.Outputs{
			Files:         fp.Files,
			ContentHash:   fp.Hash,
			RefsRewritten: res.Rewrite.RefsRewritten,
			Finalized:     res.Finalize.Written,
		},
		Tool:     version.String(),
		Duration: now.Sub(start).Milliseconds(),
	}
	if req.RepositoryDir != "" {
		info, err := gitinfo.Inspect(req.RepositoryDir)
		if err != nil {
			observability.DebugContext(ctx, "Git commit unavailable", logfields.Path(req.RepositoryDir), logfields.Error(err))
		} else {
			m.Inputs.GitCommit = info.HeadCommit
			m.Inputs.RemoteURL = info.RemoteURL
		}
	}
	return m, nil
}

// record appends an event and publishes it. Recording is an audit trail: failures are
// logged and never fail the run.
func (p *Preparer) record(ctx context.Context, res *Result, eventType string, payload any) {
	data, err := json.Marshal(payload)
	if err != nil {
		observability.WarnContext(ctx, "Failed to encode event", logfields.Error(err))
		return
	}
	meta := map[string]string{
		logfields.KeyBasePath: res.Deployment.BasePath,
		logfields.KeyPreset:   string(res.Deployment.Preset),
	}
	if stage := observability.FromContext(ctx).Stage; stage != "" {
		meta[logfields.KeyStage] = stage
	}
	if err := p.store.Append(ctx, res.BuildID, eventType, data, meta); err != nil {
		observability.WarnContext(ctx, "Failed to record event", slogType(eventType), logfields.Error(err))
	}

	n := notify.Notification{
		BuildID:   res.BuildID,
		Type:      eventType,
		BasePath:  res.Deployment.BasePath,
		Preset:    string(res.Deployment.Preset),
		Timestamp: p.now().UTC(),
	}
	if detail, ok := payload.(map[string]string); ok {
		n.Detail = detail
	}
	if err := p.publisher.Publish(ctx, n); err != nil {
		observability.WarnContext(ctx, "Failed to publish event", slogType(eventType), logfields.Error(err))
	}
}
