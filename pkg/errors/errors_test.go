package errors

import (
	"errors"
	"fmt"
	"testing"
)

func TestJobError(t *testing.T) {
	originalErr := errors.New("process exited with code 1")
	jobErr := &JobError{
		JobID:     "job-123",
		Operation: "execute",
		Err:       originalErr,
	}

	expectedMsg := "job job-123: operation execute: process exited with code 1"
	if jobErr.Error() != expectedMsg {
		t.Errorf("JobError.Error() = %v, want %v", jobErr.Error(), expectedMsg)
	}

	if unwrapped := jobErr.Unwrap(); unwrapped != originalErr {
		t.Errorf("JobError.Unwrap() = %v, want %v", unwrapped, originalErr)
	}
}

func TestTaskError(t *testing.T) {
	taskErr := &TaskError{
		TaskKey:   "alice/cats",
		Operation: "enqueue",
		Err:       ErrAlreadyRunning,
	}

	expectedMsg := "task alice/cats: operation enqueue: " + ErrAlreadyRunning.Error()
	if taskErr.Error() != expectedMsg {
		t.Errorf("TaskError.Error() = %v, want %v", taskErr.Error(), expectedMsg)
	}
	if !errors.Is(taskErr, ErrAlreadyRunning) {
		t.Error("TaskError should unwrap to ErrAlreadyRunning")
	}
}

func TestExitError(t *testing.T) {
	err := fmt.Errorf("run: %w", &ExitError{Code: 1})

	if !errors.Is(err, ErrRuntimeFailure) {
		t.Error("ExitError should be an ErrRuntimeFailure")
	}
	if got := (&ExitError{Code: 1}).Error(); got != "training exited abnormally (Code: 1)" {
		t.Errorf("ExitError.Error() = %q", got)
	}

	code, ok := ExitCode(err)
	if !ok || code != 1 {
		t.Errorf("ExitCode() = %d, %v; want 1, true", code, ok)
	}

	if _, ok := ExitCode(errors.New("other")); ok {
		t.Error("ExitCode() should not find a code in an unrelated error")
	}
}

func TestSubmissionErrors(t *testing.T) {
	tests := []struct {
		name  string
		err   error
		cause error
	}{
		{"already running", NewAlreadyRunningError("alice/cats"), ErrAlreadyRunning},
		{"invalid descriptor", NewInvalidDescriptorError("command", "must not be empty"), ErrInvalidDescriptor},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if !IsSubmissionRejected(tt.err) {
				t.Errorf("%v should be a rejected submission", tt.err)
			}
			if !errors.Is(tt.err, tt.cause) {
				t.Errorf("%v should wrap %v", tt.err, tt.cause)
			}
		})
	}

	if NewSubmissionError(nil) != nil {
		t.Error("NewSubmissionError(nil) should be nil")
	}
}

func TestIsNotFoundError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"job not found", NewJobNotFoundError("abc"), true},
		{"log stream", fmt.Errorf("read: %w", ErrLogStreamNotFound), true},
		{"run not found", ErrRunNotFound, true},
		{"permission", ErrPermissionDenied, false},
		{"nil", nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsNotFoundError(tt.err); got != tt.want {
				t.Errorf("IsNotFoundError(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}

func TestWrapJobError(t *testing.T) {
	if WrapJobError("job-1", "start", nil) != nil {
		t.Error("WrapJobError(nil) should be nil")
	}

	err := WrapJobError("job-1", "start", ErrSpawnFailed)
	if !IsJobError(err) {
		t.Error("expected a JobError")
	}

	jobID, ok := GetJobID(err)
	if !ok || jobID != "job-1" {
		t.Errorf("GetJobID() = %q, %v", jobID, ok)
	}
}

func TestConfigError(t *testing.T) {
	err := NewConfigError("logs", "retain_lines", errors.New("must be lower than max_lines"))

	if !IsConfigError(err) {
		t.Error("expected a ConfigError")
	}
	if !errors.Is(err, ErrInvalidConfig) {
		t.Error("ConfigError should wrap ErrInvalidConfig")
	}
	expected := "config logs.retain_lines: invalid configuration: must be lower than max_lines"
	if err.Error() != expected {
		t.Errorf("Error() = %q, want %q", err.Error(), expected)
	}
}

func TestJoinErrors(t *testing.T) {
	if JoinErrors(nil, nil) != nil {
		t.Error("JoinErrors of nils should be nil")
	}

	err := JoinErrors(ErrExportFailed, nil, ErrArtifactMissing)
	if !errors.Is(err, ErrExportFailed) || !errors.Is(err, ErrArtifactMissing) {
		t.Errorf("joined error lost a member: %v", err)
	}
}
