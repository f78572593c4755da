package orchestrator

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/ehsaniara/annotrain/internal/trainer/command"
	"github.com/ehsaniara/annotrain/internal/trainer/domain"
	"github.com/ehsaniara/annotrain/internal/trainer/process"
	"github.com/ehsaniara/annotrain/pkg/errors"
	"github.com/ehsaniara/annotrain/pkg/logger"
)

// LogStore is the per-job line log the worker writes into.
type LogStore interface {
	Create(jobID string)
	Append(jobID string, line string) error
}

//go:generate go run github.com/maxbrunsfeld/counterfeiter/v6 -generate

//counterfeiter:generate . ProcessController

// ProcessController starts and stops the external training commands.
type ProcessController interface {
	Start(spec process.Spec) (*process.Handle, error)
	Run(spec process.Spec, fn func(line string)) (int, error)
	Terminate(h *process.Handle)
}

//counterfeiter:generate . ArtifactLocator

// ArtifactLocator finds the run directory and weights a training produced.
type ArtifactLocator interface {
	LatestRun(runRoot, prefix string) (string, error)
	Weights(runDir string) (string, bool)
}

// ExportCommandBuilder renders the argv of the post-training export.
type ExportCommandBuilder interface {
	CanExport() bool
	Export(p command.ExportParams) ([]string, error)
}

const DefaultHistorySize = 500

// Options configures an Orchestrator.
type Options struct {
	// HistorySize bounds the finished jobs kept for Job and Jobs lookups.
	HistorySize int
}

// job is the mutable record behind a domain.Job snapshot. All fields are
// guarded by Orchestrator.mutex.
type job struct {
	id           string
	desc         domain.Descriptor
	phase        domain.Phase
	cancelled    bool
	cancelReason string
	settled      bool // outcome decided, cancellation no longer applies
	handle       *process.Handle
	exitCode     *int
	artifact     string
	message      string
	createdAt    time.Time
	startedAt    *time.Time
	finishedAt   *time.Time
}

func (j *job) snapshot() domain.Job {
	s := domain.Job{
		ID:        j.id,
		TaskKey:   j.desc.TaskKey,
		Phase:     j.phase,
		Cancelled: j.cancelled,
		Artifact:  j.artifact,
		Message:   j.message,
		RunPrefix: j.desc.RunNamePrefix,
		CreatedAt: j.createdAt,
	}
	if j.exitCode != nil {
		code := *j.exitCode
		s.ExitCode = &code
	}
	if j.startedAt != nil {
		t := *j.startedAt
		s.StartedAt = &t
	}
	if j.finishedAt != nil {
		t := *j.finishedAt
		s.FinishedAt = &t
	}
	return s
}

// Orchestrator accepts training jobs, runs them one at a time in FIFO order
// on a single worker and reports their progress through the log store.
// At most one job per task key is queued or running at any time.
type Orchestrator struct {
	logs     LogStore
	proc     ProcessController
	locator  ArtifactLocator
	exporter ExportCommandBuilder
	ids      IDGenerator
	logger   *logger.Logger
	now      func() time.Time

	mutex       sync.Mutex
	jobs        map[string]*job
	index       *taskIndex
	queue       []*job
	current     *job
	history     []string // finished job ids, oldest first
	historySize int
	accepting   bool

	// Control channels
	newJobSignal chan struct{}
	stopSignal   chan struct{}
	workerDone   chan struct{}

	running  bool
	runMutex sync.Mutex
}

// New creates an orchestrator. Call Start to launch the worker.
func New(logs LogStore, proc ProcessController, locator ArtifactLocator, exporter ExportCommandBuilder, ids IDGenerator, opts Options) *Orchestrator {
	if opts.HistorySize <= 0 {
		opts.HistorySize = DefaultHistorySize
	}
	if ids == nil {
		ids = NewUUIDGenerator()
	}
	return &Orchestrator{
		logs:         logs,
		proc:         proc,
		locator:      locator,
		exporter:     exporter,
		ids:          ids,
		logger:       logger.WithField("component", "orchestrator"),
		now:          time.Now,
		jobs:         make(map[string]*job),
		index:        newTaskIndex(),
		historySize:  opts.HistorySize,
		accepting:    true,
		newJobSignal: make(chan struct{}, 1),
		stopSignal:   make(chan struct{}),
		workerDone:   make(chan struct{}),
	}
}

// Start launches the worker loop. Calling it twice is a no-op.
func (o *Orchestrator) Start() {
	o.runMutex.Lock()
	defer o.runMutex.Unlock()
	if o.running {
		return
	}
	o.running = true

	go o.run()
	o.logger.Info("orchestrator started")
}

// Enqueue validates the descriptor, claims its task key and queues the job.
// The job log exists and holds the queued sentinel before Enqueue returns.
func (o *Orchestrator) Enqueue(desc domain.Descriptor) (string, error) {
	if field, reason := desc.Validate(); field != "" {
		return "", errors.NewInvalidDescriptorError(field, reason)
	}
	desc = cloneDescriptor(desc)

	o.mutex.Lock()
	if !o.accepting {
		o.mutex.Unlock()
		return "", errors.NewSubmissionError(errors.ErrShuttingDown)
	}
	if existing, ok := o.index.lookup(desc.TaskKey); ok {
		o.mutex.Unlock()
		o.logger.Info("rejected duplicate submission", "taskKey", desc.TaskKey, "activeJobId", existing)
		return "", errors.NewAlreadyRunningError(desc.TaskKey)
	}

	id := o.ids.Next()
	if _, dup := o.jobs[id]; dup {
		o.mutex.Unlock()
		return "", errors.NewSubmissionError(fmt.Errorf("job id %s already in use", id))
	}
	j := &job{
		id:        id,
		desc:      desc,
		phase:     domain.PhaseQueued,
		createdAt: o.now(),
	}

	// The log is written under the lock so the worker can never observe
	// the job before its queued sentinel.
	o.logs.Create(id)
	for _, line := range desc.Preamble {
		o.appendLog(id, line)
	}
	o.appendLog(id, domain.SentinelQueued)
	o.appendLog(id, "task queued, preparing in background...")

	o.jobs[id] = j
	o.index.claim(desc.TaskKey, id)
	o.queue = append(o.queue, j)
	queued := len(o.queue)
	o.mutex.Unlock()

	o.logger.Info("job queued", "jobId", id, "taskKey", desc.TaskKey, "queueLength", queued)
	o.wake()
	return id, nil
}

// Cancel requests cancellation of a job. A queued job is withdrawn and its
// task key released at once, a running job is terminated in the background.
// Cancelling a finished job is a no-op.
func (o *Orchestrator) Cancel(jobID string) error {
	return o.cancel(jobID, errors.ErrCancelledByUser.Error())
}

func (o *Orchestrator) cancel(jobID, reason string) error {
	o.mutex.Lock()
	j, ok := o.jobs[jobID]
	if !ok {
		o.mutex.Unlock()
		return errors.NewJobNotFoundError(jobID)
	}
	if j.phase.IsTerminal() || j.cancelled || j.settled {
		o.mutex.Unlock()
		return nil
	}

	j.cancelled = true
	j.cancelReason = reason
	var h *process.Handle
	switch j.phase {
	case domain.PhaseQueued:
		now := o.now()
		j.phase = domain.PhaseCancelledWhileQueued
		j.message = "cancelled while queued"
		j.finishedAt = &now
		o.index.release(j.desc.TaskKey, j.id)
	case domain.PhaseRunning:
		h = j.handle
	}
	phase := j.phase
	o.mutex.Unlock()

	o.logger.Info("cancellation requested", "jobId", jobID, "phase", phase)
	if h != nil {
		go o.proc.Terminate(h)
	}
	return nil
}

// Status reports whether a job currently holds the task key.
func (o *Orchestrator) Status(taskKey string) domain.TaskStatus {
	o.mutex.Lock()
	defer o.mutex.Unlock()

	id, ok := o.index.lookup(taskKey)
	if !ok {
		return domain.TaskStatus{Status: domain.TaskIdle}
	}
	status := domain.TaskStatus{Status: domain.TaskRunning, JobID: id}
	if j, found := o.jobs[id]; found {
		status.Phase = j.phase
	}
	return status
}

// Job returns a snapshot of one job.
func (o *Orchestrator) Job(jobID string) (domain.Job, error) {
	o.mutex.Lock()
	defer o.mutex.Unlock()

	j, ok := o.jobs[jobID]
	if !ok {
		return domain.Job{}, errors.NewJobNotFoundError(jobID)
	}
	return j.snapshot(), nil
}

// Jobs returns snapshots of every known job: active jobs in submission
// order first, then finished jobs newest first.
func (o *Orchestrator) Jobs() []domain.Job {
	o.mutex.Lock()
	out := make([]domain.Job, 0, len(o.jobs))
	for _, j := range o.jobs {
		out = append(out, j.snapshot())
	}
	o.mutex.Unlock()

	slices.SortFunc(out, func(a, b domain.Job) int {
		aDone, bDone := a.Phase.IsTerminal(), b.Phase.IsTerminal()
		switch {
		case aDone != bDone:
			if aDone {
				return 1
			}
			return -1
		case !aDone:
			return cmp.Or(a.CreatedAt.Compare(b.CreatedAt), cmp.Compare(a.ID, b.ID))
		default:
			return cmp.Or(b.FinishedAt.Compare(*a.FinishedAt), cmp.Compare(b.ID, a.ID))
		}
	})
	return out
}

// QueueLength returns the number of jobs waiting for the worker.
func (o *Orchestrator) QueueLength() int {
	o.mutex.Lock()
	defer o.mutex.Unlock()
	return len(o.queue)
}

// ActiveTasks returns the number of task keys held by queued or running jobs.
func (o *Orchestrator) ActiveTasks() int {
	o.mutex.Lock()
	defer o.mutex.Unlock()
	return o.index.len()
}

// Shutdown stops accepting jobs, fails everything still queued, terminates
// the running job and waits for the worker until ctx is done.
func (o *Orchestrator) Shutdown(ctx context.Context) error {
	o.runMutex.Lock()
	wasRunning := o.running
	o.running = false
	o.runMutex.Unlock()

	o.mutex.Lock()
	if !o.accepting {
		o.mutex.Unlock()
		return nil
	}
	o.accepting = false
	pending := o.queue
	o.queue = nil
	current := o.current
	o.mutex.Unlock()

	reason := errors.ErrShuttingDown.Error()
	o.logger.Info("orchestrator shutting down", "pending", len(pending))

	for _, j := range pending {
		o.mutex.Lock()
		withdrawn := j.phase == domain.PhaseCancelledWhileQueued
		o.mutex.Unlock()
		if withdrawn {
			o.skipWithdrawn(j)
			continue
		}
		o.finish(j, domain.PhaseError, reason)
	}
	if current != nil {
		_ = o.cancel(current.id, reason)
	}

	close(o.stopSignal)
	if !wasRunning {
		return nil
	}

	select {
	case <-o.workerDone:
		o.logger.Info("orchestrator stopped")
		return nil
	case <-ctx.Done():
		o.logger.Warn("worker did not stop in time", "error", ctx.Err())
		return ctx.Err()
	}
}

func (o *Orchestrator) wake() {
	select {
	case o.newJobSignal <- struct{}{}:
	default:
		// Channel is full, the worker will pick the job up anyway
	}
}

func (o *Orchestrator) appendLog(jobID, line string) {
	if err := o.logs.Append(jobID, line); err != nil {
		o.logger.Debug("dropped log line", "jobId", jobID, "error", err)
	}
}

func cloneDescriptor(d domain.Descriptor) domain.Descriptor {
	d.Command = slices.Clone(d.Command)
	d.Preamble = slices.Clone(d.Preamble)
	if d.Environment != nil {
		env := make(map[string]string, len(d.Environment))
		for k, v := range d.Environment {
			env[k] = v
		}
		d.Environment = env
	}
	return d
}
