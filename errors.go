package sena

import (
	"fmt"

	"github.com/pkg/errors"
)

var (
	ErrAgentNotFound       = errors.New("agent not found")
	ErrExecutionFailed     = errors.New("execution failed")
	ErrOverrideUnsupported = errors.New("agent does not support overrides")
	ErrDuplicateAgent      = errors.New("duplicate agent name")
)

// ExecutionError is returned when an agent could not be executed because a
// collaborator failed. It matches ErrExecutionFailed and unwraps to the cause.
type ExecutionError struct {
	Agent string
	Cause error
}

func (e *ExecutionError) Error() string {
	return fmt.Sprintf("execution of %s failed: %v", e.Agent, e.Cause)
}

func (e *ExecutionError) Is(target error) bool {
	return target == ErrExecutionFailed
}

func (e *ExecutionError) Unwrap() error {
	return e.Cause
}

func notFound(name string) error {
	return errors.Wrapf(ErrAgentNotFound, "%q", name)
}
