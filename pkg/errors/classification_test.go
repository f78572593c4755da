package errors

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"testing"
)

func TestClassifyError(t *testing.T) {
	tests := []struct {
		name             string
		err              error
		expectedCategory ErrorCategory
		expectedCode     string
	}{
		{"AlreadyRunning", NewAlreadyRunningError("alice/cats"), CategoryConflict, "already_running"},
		{"InvalidDescriptor", NewInvalidDescriptorError("task_key", "is required"), CategoryValidation, "invalid_request"},
		{"DatasetInvalid", fmt.Errorf("%w: no images", ErrDatasetInvalid), CategoryValidation, "invalid_request"},
		{"JobNotFound", NewJobNotFoundError("abc"), CategoryNotFound, "not_found"},
		{"PermissionDenied", ErrPermissionDenied, CategoryPermission, "permission_denied"},
		{"ConfigError", WrapConfigError("server", "port", fmt.Errorf("invalid")), CategoryConfiguration, "configuration"},
		{"SpawnFailed", fmt.Errorf("%w: exec: not found", ErrSpawnFailed), CategoryExecution, "execution"},
		{"ExitError", &ExitError{Code: 2}, CategoryExecution, "execution"},
		{"ShuttingDown", ErrShuttingDown, CategoryUnavailable, "unavailable"},
		{"ContextCanceled", context.Canceled, CategoryTimeout, "timeout"},
		{"UnknownError", fmt.Errorf("unknown error"), CategoryUnknown, "internal"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			classified := ClassifyError(tt.err)
			if classified == nil {
				t.Fatalf("Expected non-nil classification for error: %v", tt.err)
			}

			if classified.Category != tt.expectedCategory {
				t.Errorf("Expected category %v, got %v", tt.expectedCategory, classified.Category)
			}
			if classified.Code != tt.expectedCode {
				t.Errorf("Expected code %v, got %v", tt.expectedCode, classified.Code)
			}
			if classified.Unwrap() != tt.err {
				t.Errorf("Expected unwrapped error to be original error")
			}
			if classified.Error() != tt.err.Error() {
				t.Errorf("Expected error message %q, got %q", tt.err.Error(), classified.Error())
			}
		})
	}

	if ClassifyError(nil) != nil {
		t.Error("Expected nil for nil error")
	}
}

func TestClassifyError_AlreadyClassified(t *testing.T) {
	original := &ClassifiedError{Err: fmt.Errorf("boom"), Category: CategoryExecution, UserMsg: "custom"}
	wrapped := fmt.Errorf("outer: %w", original)

	if got := ClassifyError(wrapped); got != original {
		t.Errorf("Expected the classified error in the chain, got %v", got)
	}
	if GetUserMessage(wrapped) != "custom" {
		t.Errorf("GetUserMessage() = %q", GetUserMessage(wrapped))
	}
}

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"conflict", NewAlreadyRunningError("a/b"), http.StatusConflict},
		{"validation", NewInvalidDescriptorError("command", "is required"), http.StatusBadRequest},
		{"not found", ErrRunNotFound, http.StatusNotFound},
		{"permission", ErrPermissionDenied, http.StatusForbidden},
		{"unavailable", ErrShuttingDown, http.StatusServiceUnavailable},
		{"unknown", fmt.Errorf("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := HTTPStatus(tt.err); got != tt.want {
				t.Errorf("HTTPStatus(%v) = %d, want %d", tt.err, got, tt.want)
			}
		})
	}
}

func TestFormatErrorForLogging(t *testing.T) {
	if FormatErrorForLogging(nil) != nil {
		t.Error("Expected nil for nil error")
	}

	fields := FormatErrorForLogging(WrapJobError("job-9", "wait", &ExitError{Code: 3}))
	if fields["job_id"] != "job-9" {
		t.Errorf("job_id = %v", fields["job_id"])
	}
	if fields["exit_code"] != 3 {
		t.Errorf("exit_code = %v", fields["exit_code"])
	}
	if fields["category"] != string(CategoryExecution) {
		t.Errorf("category = %v", fields["category"])
	}
}

type recordingLogger struct {
	msg  string
	args []interface{}
}

func (r *recordingLogger) Error(msg string, args ...interface{}) {
	r.msg = msg
	r.args = args
}

func TestLogError(t *testing.T) {
	rec := &recordingLogger{}

	LogError(rec, nil, "ignored")
	if rec.msg != "" {
		t.Error("LogError should not log a nil error")
	}

	LogError(rec, ErrPermissionDenied, "request failed")
	if rec.msg != "request failed" {
		t.Errorf("msg = %q", rec.msg)
	}
	if !strings.Contains(fmt.Sprint(rec.args...), "permission") {
		t.Errorf("args missing category: %v", rec.args)
	}
}
