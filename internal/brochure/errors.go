package brochure

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidRequest is returned for counts out of range.
	ErrInvalidRequest = errors.New("invalid request")

	errShortSupply = errors.New("store returned fewer passwords than requested")
)

// Stage of batch.
type Stage string

const (
	StageFetch   Stage = "fetch"
	StageWorkDir Stage = "workdir"
	StageQR      Stage = "qr"
	StageRender  Stage = "render"
	StageConvert Stage = "convert"
	StageMerge   Stage = "merge"
)

// StageError tells which stage aborted the batch. Sequence is the recipient
// the stage failed on, 0 for batch wide stages.
type StageError struct {
	Stage    Stage
	Sequence int
	Err      error
}

func (e *StageError) Error() string {
	if e.Sequence > 0 {
		return fmt.Sprintf("%s brochure %d: %v", e.Stage, e.Sequence, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error {
	return e.Err
}
