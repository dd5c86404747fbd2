package usecase

import (
	"errors"
	"fmt"
)

var (
	// ErrNoMedia is returned when a job is started with nothing loaded.
	ErrNoMedia = errors.New("no media loaded")
	// ErrBusy is returned when a job of the same kind is already running for
	// the medium.
	ErrBusy = errors.New("job already in progress")
)

type Kind string

const (
	KindPrecondition Kind = "precondition"
	KindEngineInit   Kind = "engine_init"
	KindStageIO      Kind = "stage_io"
	KindInference    Kind = "inference"
	KindRender       Kind = "render"
)

// StageError is a failure inside one stage of a pipeline.
type StageError struct {
	Kind  Kind
	Stage string
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("%s: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error { return e.Err }

func stageErr(kind Kind, stage string, err error) error {
	if err == nil {
		return nil
	}
	return &StageError{Kind: kind, Stage: stage, Err: err}
}

// KindOf classifies err. It returns "" for errors that did not come from a
// pipeline stage.
func KindOf(err error) Kind {
	if errors.Is(err, ErrNoMedia) {
		return KindPrecondition
	}
	var se *StageError
	if errors.As(err, &se) {
		return se.Kind
	}
	return ""
}
