package metrics

import (
	"net/http"
	"strconv"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
	promhttp "github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "sitebase"

// PrometheusRecorder implements Recorder using Prometheus metrics.
type PrometheusRecorder struct {
	reg             *prom.Registry
	resolutions     *prom.CounterVec
	rewriteFiles    *prom.CounterVec
	rewriteRefs     prom.Counter
	verifyRuns      *prom.CounterVec
	verifyBroken    prom.Gauge
	prepareDuration *prom.HistogramVec
	httpRequests    *prom.CounterVec
	httpDuration    prom.Histogram
}

// NewPrometheusRecorder constructs metrics and registers them on reg (a new
// registry when nil).
func NewPrometheusRecorder(reg *prom.Registry) *PrometheusRecorder {
	if reg == nil {
		reg = prom.NewRegistry()
	}
	pr := &PrometheusRecorder{
		reg: reg,
		resolutions: prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "resolutions_total",
			Help:      "Deployment config resolutions by base path source",
		}, []string{"source"}),
		rewriteFiles: prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "rewrite_files_total",
			Help:      "HTML files scanned by rebase, by whether they changed",
		}, []string{"result"}),
		rewriteRefs: prom.NewCounter(prom.CounterOpts{
			Namespace: namespace,
			Name:      "rewrite_references_total",
			Help:      "Asset references prefixed with the base path",
		}),
		verifyRuns: prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "verify_runs_total",
			Help:      "Tree verifications by outcome",
		}, []string{"result"}),
		verifyBroken: prom.NewGauge(prom.GaugeOpts{
			Namespace: namespace,
			Name:      "verify_broken_references",
			Help:      "Broken references found by the last verification",
		}),
		prepareDuration: prom.NewHistogramVec(prom.HistogramOpts{
			Namespace: namespace,
			Name:      "prepare_duration_seconds",
			Help:      "Duration of prepare runs",
			Buckets:   prom.DefBuckets,
		}, []string{"outcome"}),
		httpRequests: prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "preview_http_requests_total",
			Help:      "Preview server requests by status code",
		}, []string{"code"}),
		httpDuration: prom.NewHistogram(prom.HistogramOpts{
			Namespace: namespace,
			Name:      "preview_http_request_duration_seconds",
			Help:      "Preview server request latency",
			Buckets:   prom.DefBuckets,
		}),
	}
	reg.MustRegister(pr.resolutions, pr.rewriteFiles, pr.rewriteRefs, pr.verifyRuns,
		pr.verifyBroken, pr.prepareDuration, pr.httpRequests, pr.httpDuration)
	return pr
}

// Registry returns the registry the metrics are registered on.
func (p *PrometheusRecorder) Registry() *prom.Registry { return p.reg }

func (p *PrometheusRecorder) IncResolution(source string) {
	p.resolutions.WithLabelValues(source).Inc()
}

func (p *PrometheusRecorder) ObserveRewrite(filesScanned, filesChanged, refsRewritten int) {
	p.rewriteFiles.WithLabelValues("changed").Add(float64(filesChanged))
	p.rewriteFiles.WithLabelValues("unchanged").Add(float64(filesScanned - filesChanged))
	p.rewriteRefs.Add(float64(refsRewritten))
}

func (p *PrometheusRecorder) ObserveVerify(result ResultLabel, broken int) {
	p.verifyRuns.WithLabelValues(string(result)).Inc()
	p.verifyBroken.Set(float64(broken))
}

func (p *PrometheusRecorder) ObservePrepareDuration(d time.Duration, success bool) {
	outcome := "success"
	if !success {
		outcome = "failed"
	}
	p.prepareDuration.WithLabelValues(outcome).Observe(d.Seconds())
}

func (p *PrometheusRecorder) ObserveHTTPRequest(code int, d time.Duration) {
	p.httpRequests.WithLabelValues(strconv.Itoa(code)).Inc()
	p.httpDuration.Observe(d.Seconds())
}

// HTTPHandler returns an http.Handler that serves the recorder's registry.
func (p *PrometheusRecorder) HTTPHandler() http.Handler {
	return promhttp.HandlerFor(p.reg, promhttp.HandlerOpts{EnableOpenMetrics: true})
}
