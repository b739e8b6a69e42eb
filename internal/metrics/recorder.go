// Package metrics defines the observability hooks used by prepare, verify and the
// preview server. A NoopRecorder is used unless monitoring.metrics.enabled is set.
package metrics

import "time"

// ResultLabel enumerates verify outcome categories for counters.
type ResultLabel string

const (
	ResultOK     ResultLabel = "ok"
	ResultBroken ResultLabel = "broken"
	ResultError  ResultLabel = "error"
)

// Recorder receives measurements. Implementations must be safe for concurrent use.
type Recorder interface {
	IncResolution(source string)
	ObserveRewrite(filesScanned, filesChanged, refsRewritten int)
	ObserveVerify(result ResultLabel, broken int)
	ObservePrepareDuration(d time.Duration, success bool)
	ObserveHTTPRequest(code int, d time.Duration)
}

// NoopRecorder is a Recorder that does nothing.
type NoopRecorder struct{}

func (NoopRecorder) IncResolution(string)                       {}
func (NoopRecorder) ObserveRewrite(int, int, int)               {}
func (NoopRecorder) ObserveVerify(ResultLabel, int)             {}
func (NoopRecorder) ObservePrepareDuration(time.Duration, bool) {}
func (NoopRecorder) ObserveHTTPRequest(int, time.Duration)      {}
