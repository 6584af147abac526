package termwright

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrSessionExists is wrapped by *CreateError when a session name is
// already taken.
var ErrSessionExists = errors.New("session already exists")

// ErrSessionClosed is wrapped by *IOError when input is sent to a
// session that is no longer live.
var ErrSessionClosed = errors.New("session is closed")

// CreateError reports that a session could not be created.
type CreateError struct {
	Session string
	Err     error
}

func (e *CreateError) Error() string {
	return fmt.Sprintf("create session %q: %v", e.Session, e.Err)
}

func (e *CreateError) Unwrap() error { return e.Err }

// IOError reports a failed read or write against a live session.
type IOError struct {
	Session string
	Err     error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("session %q i/o: %v", e.Session, e.Err)
}

func (e *IOError) Unwrap() error { return e.Err }

// StepTimeoutError reports that an expected substring never appeared
// within the step's timeout. LastScreen holds the final capture for
// diagnosis.
type StepTimeoutError struct {
	Expected   string
	Timeout    time.Duration
	LastScreen []string
}

func (e *StepTimeoutError) Error() string {
	return fmt.Sprintf("expected output %q did not appear within %s\nlast screen:\n%s",
		e.Expected, e.Timeout, strings.Join(e.LastScreen, "\n"))
}

// StepError wraps any failure with the index (zero-based) and key
// sequence of the step it occurred in.
type StepError struct {
	Index int
	Step  Step
	Err   error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("step %d (%s): %v", e.Index+1, e.Step.describe(), e.Err)
}

func (e *StepError) Unwrap() error { return e.Err }
