package scheduler

import (
	"errors"
	"fmt"
)

var (
	ErrReentrantRun = errors.New("scheduler: run already in progress")
	ErrStepLimit    = errors.New("scheduler: step limit reached")
	ErrTaskPanic    = errors.New("scheduler: task panicked")
)

// TaskError wraps an error returned (or panic raised) by a task body.
type TaskError struct {
	ID    TaskID
	Name  string
	Class Class
	Err   error
}

func (e *TaskError) Error() string {
	if e == nil {
		return ""
	}
	name := e.Name
	if name == "" {
		name = fmt.Sprintf("#%d", e.ID)
	}
	return fmt.Sprintf("%s %s failed: %v", e.Class, name, e.Err)
}

func (e *TaskError) Unwrap() error { return e.Err }

type panicError struct {
	value any
	stack []byte
}

func (e *panicError) Error() string { return fmt.Sprintf("%v: %v", ErrTaskPanic, e.value) }
func (e *panicError) Unwrap() error { return ErrTaskPanic }

// PanicValue returns the recovered value if err came from a task panic.
func PanicValue(err error) (any, bool) {
	var pe *panicError
	if errors.As(err, &pe) {
		return pe.value, true
	}
	return nil, false
}
