package errs

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrValidateBadRequest error = errors.New("struct validation error")
	ErrValidation         error = errors.New("telemetry validation error")
	ErrPersistence        error = errors.New("telemetry persistence error")
	ErrEvaluation         error = errors.New("alert rule evaluation error")
	ErrBrokerNotConnected error = errors.New("broker not connected")
	ErrUnknownProtocol    error = errors.New("unknown command protocol")
)

// ValidationError is returned when an inbound payload lacks required fields.
// It is raised before anything is persisted.
type ValidationError struct {
	Reasons []string
}

func NewValidationError(reasons ...string) *ValidationError {
	return &ValidationError{Reasons: reasons}
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", ErrValidation, strings.Join(e.Reasons, "; "))
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

type PersistenceError struct {
	Op  string
	Err error
}

func NewPersistenceError(op string, err error) *PersistenceError {
	return &PersistenceError{Op: op, Err: err}
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("%s: %s: %s", ErrPersistence, e.Op, e.Err)
}

func (e *PersistenceError) Is(target error) bool {
	return target == ErrPersistence
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}

type EvaluationError struct {
	Subject string
	Reason  string
}

func (e *EvaluationError) Error() string {
	return fmt.Sprintf("%s: %s: %s", ErrEvaluation, e.Subject, e.Reason)
}

func (e *EvaluationError) Is(target error) bool {
	return target == ErrEvaluation
}
