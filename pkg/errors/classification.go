package errors

import (
	"context"
	"errors"
	"net/http"
)

// ErrorCategory groups errors by the kind of problem they represent.
type ErrorCategory string

const (
	CategoryValidation    ErrorCategory = "validation"
	CategoryConflict      ErrorCategory = "conflict"
	CategoryNotFound      ErrorCategory = "not_found"
	CategoryPermission    ErrorCategory = "permission"
	CategoryConfiguration ErrorCategory = "configuration"
	CategoryExecution     ErrorCategory = "execution"
	CategoryUnavailable   ErrorCategory = "unavailable"
	CategoryTimeout       ErrorCategory = "timeout"
	CategoryUnknown       ErrorCategory = "unknown"
)

// ClassifiedError is a regular error with a category and a message that is
// safe to show to the person who triggered it.
type ClassifiedError struct {
	Err      error
	Category ErrorCategory
	Code     string // short machine readable code, e.g. "already_running"
	UserMsg  string
}

func (e *ClassifiedError) Error() string {
	return e.Err.Error()
}

func (e *ClassifiedError) Unwrap() error {
	return e.Err
}

// ClassifyError classifies an error based on the sentinels in its chain.
func ClassifyError(err error) *ClassifiedError {
	if err == nil {
		return nil
	}

	var classified *ClassifiedError
	if errors.As(err, &classified) {
		return classified
	}

	switch {
	case errors.Is(err, ErrAlreadyRunning):
		return &ClassifiedError{
			Err:      err,
			Category: CategoryConflict,
			Code:     "already_running",
			UserMsg:  "A training job for this task is already queued or running.",
		}

	case errors.Is(err, ErrInvalidDescriptor), errors.Is(err, ErrDatasetInvalid):
		return &ClassifiedError{
			Err:      err,
			Category: CategoryValidation,
			Code:     "invalid_request",
			UserMsg:  err.Error(),
		}

	case IsNotFoundError(err):
		return &ClassifiedError{
			Err:      err,
			Category: CategoryNotFound,
			Code:     "not_found",
			UserMsg:  "Requested resource not found.",
		}

	case IsPermissionError(err):
		return &ClassifiedError{
			Err:      err,
			Category: CategoryPermission,
			Code:     "permission_denied",
			UserMsg:  "Permission denied.",
		}

	case IsConfigError(err):
		return &ClassifiedError{
			Err:      err,
			Category: CategoryConfiguration,
			Code:     "configuration",
			UserMsg:  "Configuration error. Please check the server configuration.",
		}

	case errors.Is(err, ErrSpawnFailed), errors.Is(err, ErrRuntimeFailure),
		errors.Is(err, ErrArtifactMissing), errors.Is(err, ErrExportFailed):
		return &ClassifiedError{
			Err:      err,
			Category: CategoryExecution,
			Code:     "execution",
			UserMsg:  err.Error(),
		}

	case errors.Is(err, ErrShuttingDown):
		return &ClassifiedError{
			Err:      err,
			Category: CategoryUnavailable,
			Code:     "unavailable",
			UserMsg:  "The server is shutting down.",
		}

	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return &ClassifiedError{
			Err:      err,
			Category: CategoryTimeout,
			Code:     "timeout",
			UserMsg:  "Operation was canceled or timed out.",
		}

	default:
		return &ClassifiedError{
			Err:      err,
			Category: CategoryUnknown,
			Code:     "internal",
			UserMsg:  "An unexpected error occurred.",
		}
	}
}

// GetCategory returns the category of err, or CategoryUnknown for nil.
func GetCategory(err error) ErrorCategory {
	classified := ClassifyError(err)
	if classified == nil {
		return CategoryUnknown
	}
	return classified.Category
}

// GetUserMessage returns the message that may be shown to a user.
func GetUserMessage(err error) string {
	classified := ClassifyError(err)
	if classified == nil {
		return "An error occurred."
	}
	return classified.UserMsg
}

// HTTPStatus maps an error category to the status code the API answers with.
func HTTPStatus(err error) int {
	switch GetCategory(err) {
	case CategoryValidation:
		return http.StatusBadRequest
	case CategoryConflict:
		return http.StatusConflict
	case CategoryNotFound:
		return http.StatusNotFound
	case CategoryPermission:
		return http.StatusForbidden
	case CategoryUnavailable:
		return http.StatusServiceUnavailable
	case CategoryTimeout:
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

// FormatErrorForLogging formats an error for structured logging
func FormatErrorForLogging(err error) map[string]interface{} {
	if err == nil {
		return nil
	}

	classified := ClassifyError(err)
	result := map[string]interface{}{
		"error":    err.Error(),
		"category": string(classified.Category),
	}
	if jobID, ok := GetJobID(err); ok {
		result["job_id"] = jobID
	}
	if code, ok := ExitCode(err); ok {
		result["exit_code"] = code
	}

	return result
}

// LogError logs an error with its classification fields.
func LogError(logger interface{ Error(string, ...interface{}) }, err error, msg string) {
	if err == nil {
		return
	}

	logData := FormatErrorForLogging(err)
	args := make([]interface{}, 0, len(logData)*2)
	for k, v := range logData {
		args = append(args, k, v)
	}

	logger.Error(msg, args...)
}
