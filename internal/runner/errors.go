package runner

import (
	"errors"
	"fmt"
	"time"
)

// Sentinels matched by the typed errors below.
var (
	ErrProcessFailed = errors.New("process failed")
	ErrTimeout       = errors.New("process timed out")
	ErrNotFound      = errors.New("command not found")
)

// ProcessFailedError reports a non-zero exit status.
type ProcessFailedError struct {
	Command  string
	ExitCode int
	Tail     string // last lines of combined output
}

func (e *ProcessFailedError) Error() string {
	msg := fmt.Sprintf("%s exited with code %d", e.Command, e.ExitCode)
	if e.Tail != "" {
		msg += ":\n" + e.Tail
	}
	return msg
}

func (e *ProcessFailedError) Is(target error) bool {
	return target == ErrProcessFailed
}

// TimeoutError reports a command killed after exceeding its timeout.
type TimeoutError struct {
	Command string
	Timeout time.Duration
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("%s did not finish within %s and was killed", e.Command, e.Timeout)
}

func (e *TimeoutError) Is(target error) bool {
	return target == ErrTimeout
}

// NotFoundError reports an executable missing from PATH.
type NotFoundError struct {
	Name string
	Err  error
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s: executable not found in PATH", e.Name)
}

func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

func (e *NotFoundError) Unwrap() error {
	return e.Err
}
