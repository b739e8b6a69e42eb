package pipeline

import (
	stderrors "errors"
	"log/slog"
)

// stageErr tags an error with the stage that produced it.
type stageErr struct {
	stage string
	err   error
}

func (e *stageErr) Error() string { return e.err.Error() }
func (e *stageErr) Unwrap() error { return e.err }

func stageError(stage string, err error) error {
	return &stageErr{stage: stage, err: err}
}

// failedStage returns the stage recorded on err, or "".
func failedStage(err error) string {
	var se *stageErr
	if stderrors.As(err, &se) {
		return se.stage
	}
	return ""
}

func slogType(eventType string) slog.Attr { return slog.String("event_type", eventType) }
