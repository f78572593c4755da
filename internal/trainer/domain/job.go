package domain

import (
	"strings"
	"time"
)

// Phase represents where a training job is in its lifecycle.
// Phases only move forward; the terminal ones never change again.
type Phase string

const (
	PhaseQueued               Phase = "QUEUED"
	PhaseCancelledWhileQueued Phase = "CANCELLED_WHILE_QUEUED"
	PhaseStarting             Phase = "STARTING"
	PhaseRunning              Phase = "RUNNING"
	PhaseSucceeded            Phase = "SUCCEEDED"
	PhaseFailed               Phase = "FAILED"
	PhaseCancelled            Phase = "CANCELLED"
	PhaseError                Phase = "ERROR"
)

// IsTerminal returns true once the job can no longer change
func (p Phase) IsTerminal() bool {
	switch p {
	case PhaseCancelledWhileQueued, PhaseSucceeded, PhaseFailed, PhaseCancelled, PhaseError:
		return true
	default:
		return false
	}
}

// IsActive returns true while the job holds its task key
func (p Phase) IsActive() bool {
	return !p.IsTerminal()
}

// ExportSpec describes the post-training conversion of the weights.
type ExportSpec struct {
	Format string `json:"format"`
	Opset  int    `json:"opset"`
}

// Descriptor is everything the worker needs to run one training job.
// It is immutable once handed to the orchestrator.
type Descriptor struct {
	TaskKey       string            // owner/task, at most one active job per key
	Command       []string          // training argv
	Environment   map[string]string // merged over the server environment
	WorkDir       string            // working directory, empty for the server's
	RunRoot       string            // directory the training writes its runs into
	RunNamePrefix string            // prefix of the run directory this job creates
	Export        ExportSpec        // applied to the weights on success
	Preamble      []string          // informational lines logged before the job is queued
}

// Validate returns the name of the first missing field, or "".
func (d *Descriptor) Validate() (field string, reason string) {
	switch {
	case strings.TrimSpace(d.TaskKey) == "":
		return "task_key", "is required"
	case len(d.Command) == 0 || strings.TrimSpace(d.Command[0]) == "":
		return "command", "must not be empty"
	case d.RunRoot == "":
		return "run_root", "is required"
	case d.RunNamePrefix == "":
		return "run_name_prefix", "is required"
	}
	return "", ""
}

// Job is a point-in-time snapshot of a training job, safe to hand to callers.
type Job struct {
	ID         string     `json:"job_id"`
	TaskKey    string     `json:"task_key"`
	Phase      Phase      `json:"phase"`
	Cancelled  bool       `json:"cancelled"`
	ExitCode   *int       `json:"exit_code,omitempty"`
	Artifact   string     `json:"artifact,omitempty"`
	Message    string     `json:"message,omitempty"`
	RunPrefix  string     `json:"run_name_prefix"`
	CreatedAt  time.Time  `json:"created_at"`
	StartedAt  *time.Time `json:"started_at,omitempty"`
	FinishedAt *time.Time `json:"finished_at,omitempty"`
}

// GetDuration returns how long the job has been (or was) executing
func (j *Job) GetDuration() time.Duration {
	if j.StartedAt == nil {
		return 0
	}
	if j.FinishedAt == nil {
		return time.Since(*j.StartedAt)
	}
	return j.FinishedAt.Sub(*j.StartedAt)
}

// TaskStatus answers "is a job active for this task right now"
type TaskStatus struct {
	Status string `json:"status"` // "idle" or "running"
	JobID  string `json:"job_id,omitempty"`
	Phase  Phase  `json:"phase,omitempty"`
}

const (
	TaskIdle    = "idle"
	TaskRunning = "running"
)

// IsRunning reports whether a job currently holds the task key.
func (s TaskStatus) IsRunning() bool {
	return s.Status == TaskRunning
}
