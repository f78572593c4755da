package orchestrator

import (
	"fmt"
	"runtime/debug"

	"github.com/alessio/shellescape"

	"github.com/ehsaniara/annotrain/internal/trainer/domain"
	"github.com/ehsaniara/annotrain/internal/trainer/process"
	"github.com/ehsaniara/annotrain/pkg/errors"
	"github.com/ehsaniara/annotrain/pkg/logger"
)

// run is the single worker loop. It drains the queue in FIFO order and
// sleeps on newJobSignal when there is nothing to do.
func (o *Orchestrator) run() {
	defer close(o.workerDone)
	o.logger.Debug("worker loop started")

	for {
		if j := o.dequeue(); j != nil {
			o.execute(j)
			continue
		}

		select {
		case <-o.newJobSignal:
		case <-o.stopSignal:
			o.logger.Debug("worker loop stopping")
			return
		}
	}
}

func (o *Orchestrator) dequeue() *job {
	o.mutex.Lock()
	defer o.mutex.Unlock()

	if len(o.queue) == 0 {
		return nil
	}
	j := o.queue[0]
	o.queue[0] = nil
	o.queue = o.queue[1:]
	return j
}

// execute runs one job from STARTING to its terminal phase.
func (o *Orchestrator) execute(j *job) {
	o.mutex.Lock()
	if j.phase != domain.PhaseQueued {
		o.mutex.Unlock()
		o.skipWithdrawn(j)
		return
	}
	if !o.accepting {
		o.mutex.Unlock()
		o.finish(j, domain.PhaseError, errors.ErrShuttingDown.Error())
		return
	}
	now := o.now()
	j.phase = domain.PhaseStarting
	j.startedAt = &now
	o.current = j
	o.mutex.Unlock()

	log := o.logger.WithFields("jobId", j.id, "taskKey", j.desc.TaskKey)

	defer func() {
		if r := recover(); r != nil {
			log.Error("worker panic", "panic", r, "stack", string(debug.Stack()))
			o.mutex.Lock()
			h := j.handle
			o.mutex.Unlock()
			if h != nil {
				o.proc.Terminate(h)
			}
			o.finish(j, domain.PhaseError, fmt.Sprintf("execution error: %v", r))
		}
	}()

	o.appendLog(j.id, domain.SentinelStarting)
	o.appendLog(j.id, "task started (running in background)...")
	log.Info("starting training", "command", shellescape.QuoteCommand(j.desc.Command), "runPrefix", j.desc.RunNamePrefix)

	h, err := o.proc.Start(process.Spec{
		JobID:   j.id,
		Command: j.desc.Command,
		Env:     j.desc.Environment,
		Dir:     j.desc.WorkDir,
	})
	if err != nil {
		log.Error("failed to start training", "error", err)
		o.finish(j, domain.PhaseError, "execution error: "+err.Error())
		return
	}

	o.mutex.Lock()
	j.handle = h
	j.phase = domain.PhaseRunning
	cancelledAtLaunch := j.cancelled
	o.mutex.Unlock()

	if cancelledAtLaunch {
		go o.proc.Terminate(h)
	}

	if err := h.Lines(func(line string) { o.appendLog(j.id, line) }); err != nil {
		log.Warn("output stream ended with error", "error", err)
	}
	code, waitErr := h.Wait()

	o.mutex.Lock()
	j.settled = true
	j.exitCode = &code
	cancelled, reason := j.cancelled, j.cancelReason
	o.mutex.Unlock()

	log.Info("training process exited", "exitCode", code, "cancelled", cancelled, "duration", logger.Since(h.StartedAt()))

	switch {
	case cancelled:
		o.finish(j, domain.PhaseCancelled, reason)
	case waitErr != nil:
		o.finish(j, domain.PhaseError, "execution error: "+waitErr.Error())
	case code == 0:
		o.complete(j)
	default:
		o.finish(j, domain.PhaseFailed, (&errors.ExitError{Code: code}).Error())
	}
}

// skipWithdrawn closes the log of a job cancelled while it was queued.
func (o *Orchestrator) skipWithdrawn(j *job) {
	o.mutex.Lock()
	o.index.release(j.desc.TaskKey, j.id)
	o.recordFinished(j)
	o.mutex.Unlock()

	o.appendLog(j.id, domain.ErrorLine("cancelled while queued"))
	o.appendLog(j.id, domain.SentinelEndOfStream)
	o.logger.Info("skipped job cancelled while queued", "jobId", j.id)
}

// finish moves the job to a terminal phase, releases its task key and writes
// the terminal sentinel followed by the end of stream marker. Only the first
// call for a job has any effect.
func (o *Orchestrator) finish(j *job, phase domain.Phase, detail string) {
	o.finishWith(j, phase, detail, "")
}

func (o *Orchestrator) finishWith(j *job, phase domain.Phase, detail, runName string) {
	o.mutex.Lock()
	if j.phase.IsTerminal() {
		o.mutex.Unlock()
		return
	}
	now := o.now()
	j.phase = phase
	j.finishedAt = &now
	j.message = detail
	j.artifact = runName
	o.index.release(j.desc.TaskKey, j.id)
	if o.current == j {
		o.current = nil
	}
	o.recordFinished(j)
	o.mutex.Unlock()

	terminal := domain.ErrorLine(detail)
	if phase == domain.PhaseSucceeded {
		terminal = domain.SuccessLine(runName)
	}
	o.appendLog(j.id, terminal)
	o.appendLog(j.id, domain.SentinelEndOfStream)

	o.logger.Info("job finished", "jobId", j.id, "taskKey", j.desc.TaskKey, "phase", phase, "detail", detail)
}

// recordFinished appends the job to the history and forgets the oldest
// finished jobs beyond the history size. Caller holds the mutex.
func (o *Orchestrator) recordFinished(j *job) {
	o.history = append(o.history, j.id)
	for len(o.history) > o.historySize {
		delete(o.jobs, o.history[0])
		o.history = o.history[1:]
	}
}
