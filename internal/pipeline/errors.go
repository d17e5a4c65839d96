package pipeline

import "fmt"

// Stage identifies where in the per-document pass a failure occurred.
type Stage string

const (
	StageLoad      Stage = "load"
	StageClassify  Stage = "classify"
	StageSerialize Stage = "serialize"
)

// StageError ties a failure to a document and a pipeline stage. Failures
// are isolated per document: a StageError yields that document's fallback
// record and never aborts the batch.
type StageError struct {
	Doc   string
	Stage Stage
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("%s: %s: %v", e.Doc, e.Stage, e.Err)
}

func (e *StageError) Unwrap() error { return e.Err }

func stageErr(doc string, stage Stage, err error) *StageError {
	return &StageError{Doc: doc, Stage: stage, Err: err}
}
