package process

import (
	"fmt"
	"sort"
	"strings"
	"syscall"
	"time"

	"github.com/ehsaniara/annotrain/pkg/errors"
	"github.com/ehsaniara/annotrain/pkg/logger"
	"github.com/ehsaniara/annotrain/pkg/platform"
)

const (
	DefaultGracePeriod        = 2 * time.Second
	DefaultOutputDrainTimeout = 5 * time.Second

	maxLineSize = 256 * 1024
)

// Spec describes one external command to run.
type Spec struct {
	JobID   string
	Command []string
	Env     map[string]string // merged over the server environment
	Dir     string
}

// ValidationError reports a Spec that cannot be started.
type ValidationError struct {
	Field   string
	Value   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("validation failed for %s '%s': %s", e.Field, e.Value, e.Message)
}

// Controller starts external commands in their own process group and stops
// them with SIGTERM followed by SIGKILL after a grace period.
type Controller struct {
	platform     platform.Platform
	gracePeriod  time.Duration
	drainTimeout time.Duration
	logger       *logger.Logger
}

// NewController creates a process controller. Non-positive durations fall
// back to the defaults.
func NewController(p platform.Platform, gracePeriod, drainTimeout time.Duration) *Controller {
	if gracePeriod <= 0 {
		gracePeriod = DefaultGracePeriod
	}
	if drainTimeout <= 0 {
		drainTimeout = DefaultOutputDrainTimeout
	}
	return &Controller{
		platform:     p,
		gracePeriod:  gracePeriod,
		drainTimeout: drainTimeout,
		logger:       logger.WithField("component", "process-controller"),
	}
}

// GracePeriod returns the time Terminate waits between SIGTERM and SIGKILL.
func (c *Controller) GracePeriod() time.Duration {
	return c.gracePeriod
}

// Start launches the command with stdout and stderr merged into one pipe.
// Spawn failures wrap errors.ErrSpawnFailed and are never retried.
func (c *Controller) Start(spec Spec) (*Handle, error) {
	if err := c.validate(spec); err != nil {
		return nil, fmt.Errorf("%w: %v", errors.ErrSpawnFailed, err)
	}

	r, w, err := c.platform.Pipe()
	if err != nil {
		return nil, fmt.Errorf("%w: output pipe: %v", errors.ErrSpawnFailed, err)
	}

	cmd := c.platform.CreateCommand(spec.Command[0], spec.Command[1:]...)
	cmd.SetStdout(w)
	cmd.SetStderr(w)
	cmd.SetSysProcAttr(c.platform.CreateProcessGroup())
	cmd.SetEnv(c.buildEnvironment(spec.Env))
	if spec.Dir != "" {
		cmd.SetDir(spec.Dir)
	}

	if err := cmd.Start(); err != nil {
		_ = r.Close()
		_ = w.Close()
		return nil, fmt.Errorf("%w: %v", errors.ErrSpawnFailed, err)
	}
	// The child holds its own copy of the write end.
	_ = w.Close()

	h := &Handle{
		jobID:        spec.JobID,
		cmd:          cmd,
		pid:          cmd.Process().Pid(),
		output:       r,
		done:         make(chan struct{}),
		drainTimeout: c.drainTimeout,
		startedAt:    c.platform.Now(),
	}
	go h.wait()

	c.logger.Debug("process started", "jobId", spec.JobID, "pid", h.pid, "command", spec.Command[0])
	return h, nil
}

// Run starts the command and delivers its output lines to fn until it exits.
// It returns the exit code, or an error if the command could not be started.
func (c *Controller) Run(spec Spec, fn func(line string)) (int, error) {
	h, err := c.Start(spec)
	if err != nil {
		return -1, err
	}
	if err := h.Lines(fn); err != nil {
		c.logger.Warn("reading process output failed", "jobId", spec.JobID, "error", err)
	}
	return h.Wait()
}

// Terminate stops the process group of h: SIGTERM, then SIGKILL if the
// process is still running after the grace period. It returns once the
// process is gone or SIGKILL has been sent.
func (c *Controller) Terminate(h *Handle) {
	log := c.logger.WithFields("jobId", h.jobID, "pid", h.pid)

	select {
	case <-h.done:
		return
	default:
	}

	log.Debug("sending SIGTERM to process group", "grace", c.gracePeriod)
	c.signal(h.pid, syscall.SIGTERM, log)

	select {
	case <-h.done:
		log.Debug("process terminated gracefully")
		return
	case <-time.After(c.gracePeriod):
	}

	log.Warn("process still alive after grace period, force killing")
	c.signal(h.pid, syscall.SIGKILL, log)
}

// signal targets the process group first and falls back to the process itself.
func (c *Controller) signal(pid int, sig syscall.Signal, log *logger.Logger) {
	if err := c.platform.Kill(-pid, sig); err != nil {
		log.Debug("signal to process group failed", "signal", sig, "error", err)
		if err := c.platform.Kill(pid, sig); err != nil && err != syscall.ESRCH {
			log.Warn("signal to process failed", "signal", sig, "error", err)
		}
	}
}

func (c *Controller) buildEnvironment(overrides map[string]string) []string {
	env := c.platform.Environ()
	if len(overrides) == 0 {
		return env
	}

	keys := make([]string, 0, len(overrides))
	for k := range overrides {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	result := make([]string, 0, len(env)+len(keys))
	for _, kv := range env {
		name, _, _ := strings.Cut(kv, "=")
		if _, overridden := overrides[name]; !overridden {
			result = append(result, kv)
		}
	}
	for _, k := range keys {
		result = append(result, k+"="+overrides[k])
	}
	return result
}

func (c *Controller) validate(spec Spec) error {
	if len(spec.Command) == 0 || strings.TrimSpace(spec.Command[0]) == "" {
		return ValidationError{Field: "command", Value: "", Message: "command cannot be empty"}
	}
	for i, arg := range spec.Command {
		if strings.Contains(arg, "\x00") {
			return ValidationError{Field: "command", Value: fmt.Sprintf("argv[%d]", i), Message: "argument contains null bytes"}
		}
	}
	for k, v := range spec.Env {
		if k == "" || strings.ContainsAny(k, "=\x00") || strings.Contains(v, "\x00") {
			return ValidationError{Field: "environment", Value: k, Message: "invalid environment variable"}
		}
	}
	if spec.Dir != "" && !c.platform.DirExists(spec.Dir) {
		return ValidationError{Field: "dir", Value: spec.Dir, Message: "working directory does not exist"}
	}
	return nil
}
