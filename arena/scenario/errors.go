package scenario

import (
	"errors"
	"fmt"
)

var (
	// ErrUnknownOp indicates a step whose op is not one of alloc, free,
	// write, check, dump or note.
	ErrUnknownOp = errors.New("scenario: unknown op")

	// ErrUnknownPtr indicates a step naming a pointer no earlier alloc
	// step produced.
	ErrUnknownPtr = errors.New("scenario: unknown pointer name")

	// ErrInvalid indicates a scenario that parses but cannot be run.
	ErrInvalid = errors.New("scenario: invalid")

	// ErrNotFound indicates an unknown built-in scenario name.
	ErrNotFound = errors.New("scenario: not found")
)

// StepError attaches a step index to a failure that stopped a run or a
// parse.
type StepError struct {
	Index int // zero-based
	Op    Op
	Err   error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("step %d (%s): %v", e.Index+1, e.Op, e.Err)
}

func (e *StepError) Unwrap() error { return e.Err }
