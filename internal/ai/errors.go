package ai

import (
	"errors"
	"fmt"
)

// Stage names a pipeline stage for error attribution. Stage errors are
// local: the orchestrator maps them to fallbacks or manual review, never to
// a process abort.
type Stage string

const (
	StageClassification     Stage = "classification"
	StageExtraction         Stage = "extraction"
	StageScoring            Stage = "scoring"
	StageFollowUpAnalysis   Stage = "follow-up analysis"
	StageResponseGeneration Stage = "response generation"
)

// StageError attributes a failure to a single pipeline stage.
type StageError struct {
	Stage Stage
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("%s: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error {
	return e.Err
}

// NewStageError wraps err with stage attribution. A nil err returns nil.
func NewStageError(stage Stage, err error) error {
	if err == nil {
		return nil
	}
	return &StageError{Stage: stage, Err: err}
}

// IsStage reports whether err is a StageError for the given stage.
func IsStage(err error, stage Stage) bool {
	var se *StageError
	return errors.As(err, &se) && se.Stage == stage
}

func errUnknownLabel(label string) error {
	return fmt.Errorf("model returned unknown label %q", label)
}
