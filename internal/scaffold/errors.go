package scaffold

import (
	"errors"
	"fmt"
)

var (
	// ErrServiceAlreadyExists is returned by Generate when services/<name>
	// is already present. The existing directory is left untouched.
	ErrServiceAlreadyExists = errors.New("service already exists")
	// ErrServiceNotFound is returned when a workflow needs an existing
	// service directory.
	ErrServiceNotFound = errors.New("service not found")
)

// StepError identifies the step a workflow failed at.
type StepError struct {
	Step string
	Err  error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("step %s failed: %v", e.Step, e.Err)
}

func (e *StepError) Unwrap() error {
	return e.Err
}
