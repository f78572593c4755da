// Package errors provides the error taxonomy of the training service.
// Sentinel errors are matched with errors.Is, typed wrappers carry the job
// or task the error belongs to and unwrap to the sentinel.
package errors

import (
	"context"
	"errors"
	"fmt"
)

// Sentinel errors for common error conditions
var (
	// Submission errors. Both of them are also a ErrSubmissionRejected.
	ErrSubmissionRejected = errors.New("submission rejected")
	ErrAlreadyRunning     = errors.New("a training job for this task is already queued or running")
	ErrInvalidDescriptor  = errors.New("invalid job descriptor")

	// Execution outcomes
	ErrSpawnFailed     = errors.New("failed to start training process")
	ErrRuntimeFailure  = errors.New("training exited abnormally")
	ErrCancelledByUser = errors.New("stopped by user")
	ErrArtifactMissing = errors.New("training finished but no artifact was found")
	ErrExportFailed    = errors.New("model export failed")

	// Lookup errors
	ErrJobNotFound       = errors.New("job not found")
	ErrTaskNotFound      = errors.New("task not found")
	ErrRunNotFound       = errors.New("run not found")
	ErrLogStreamNotFound = errors.New("log stream does not exist or has expired")

	// System errors
	ErrPermissionDenied = errors.New("permission denied")
	ErrInvalidConfig    = errors.New("invalid configuration")
	ErrShuttingDown     = errors.New("server shutting down")
	ErrDatasetInvalid   = errors.New("dataset is not ready for training")
)

// submissionError keeps ErrSubmissionRejected in the chain next to the cause.
type submissionError struct {
	cause error
}

func (e *submissionError) Error() string {
	return e.cause.Error()
}

func (e *submissionError) Unwrap() []error {
	return []error{ErrSubmissionRejected, e.cause}
}

// NewSubmissionError marks err as a rejected submission.
func NewSubmissionError(err error) error {
	if err == nil {
		return nil
	}
	return &submissionError{cause: err}
}

// ExitError reports a training process that exited with a non-zero code.
type ExitError struct {
	Code int
}

func (e *ExitError) Error() string {
	return fmt.Sprintf("%s (Code: %d)", ErrRuntimeFailure.Error(), e.Code)
}

func (e *ExitError) Unwrap() error {
	return ErrRuntimeFailure
}

// JobError represents an error related to a specific job
type JobError struct {
	JobID     string
	Operation string
	Err       error
}

func (e *JobError) Error() string {
	return fmt.Sprintf("job %s: operation %s: %v", e.JobID, e.Operation, e.Err)
}

func (e *JobError) Unwrap() error {
	return e.Err
}

// TaskError represents an error related to an owner/task pair
type TaskError struct {
	TaskKey   string
	Operation string
	Err       error
}

func (e *TaskError) Error() string {
	return fmt.Sprintf("task %s: operation %s: %v", e.TaskKey, e.Operation, e.Err)
}

func (e *TaskError) Unwrap() error {
	return e.Err
}

// ConfigError represents an error related to configuration
type ConfigError struct {
	Component string
	Field     string
	Err       error
}

func (e *ConfigError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("config %s.%s: %v", e.Component, e.Field, e.Err)
	}
	return fmt.Sprintf("config %s: %v", e.Component, e.Err)
}

func (e *ConfigError) Unwrap() error {
	return e.Err
}

// Error wrapping constructors
func WrapJobError(jobID, operation string, err error) error {
	if err == nil {
		return nil
	}
	return &JobError{JobID: jobID, Operation: operation, Err: err}
}

func WrapTaskError(taskKey, operation string, err error) error {
	if err == nil {
		return nil
	}
	return &TaskError{TaskKey: taskKey, Operation: operation, Err: err}
}

func WrapConfigError(component, field string, err error) error {
	if err == nil {
		return nil
	}
	return &ConfigError{Component: component, Field: field, Err: err}
}

// Error classification functions
func IsJobError(err error) bool {
	var je *JobError
	return errors.As(err, &je)
}

func IsTaskError(err error) bool {
	var te *TaskError
	return errors.As(err, &te)
}

func IsConfigError(err error) bool {
	var ce *ConfigError
	return errors.As(err, &ce)
}

func IsSubmissionRejected(err error) bool {
	return errors.Is(err, ErrSubmissionRejected)
}

func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrJobNotFound) ||
		errors.Is(err, ErrTaskNotFound) ||
		errors.Is(err, ErrRunNotFound) ||
		errors.Is(err, ErrLogStreamNotFound)
}

func IsPermissionError(err error) bool {
	return errors.Is(err, ErrPermissionDenied)
}

// ExitCode extracts the process exit code from a runtime failure.
func ExitCode(err error) (int, bool) {
	var ee *ExitError
	if errors.As(err, &ee) {
		return ee.Code, true
	}
	return 0, false
}

// Error extraction helpers
func GetJobID(err error) (string, bool) {
	var je *JobError
	if errors.As(err, &je) {
		return je.JobID, true
	}
	return "", false
}

// Convenience functions for common error patterns
func NewJobNotFoundError(jobID string) error {
	return WrapJobError(jobID, "lookup", ErrJobNotFound)
}

func NewAlreadyRunningError(taskKey string) error {
	return NewSubmissionError(WrapTaskError(taskKey, "enqueue", ErrAlreadyRunning))
}

func NewInvalidDescriptorError(field, reason string) error {
	return NewSubmissionError(fmt.Errorf("%w: %s %s", ErrInvalidDescriptor, field, reason))
}

func NewConfigError(component, field string, err error) error {
	return WrapConfigError(component, field, fmt.Errorf("%w: %v", ErrInvalidConfig, err))
}

// Context-aware error handling
func IsContextError(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}

// Is and As re-export the standard helpers so callers need a single import.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

func As(err error, target any) bool {
	return errors.As(err, target)
}

// New re-exports errors.New.
func New(text string) error {
	return errors.New(text)
}

// JoinErrors combines multiple errors into a single error, skipping nils.
func JoinErrors(errs ...error) error {
	return errors.Join(errs...)
}
