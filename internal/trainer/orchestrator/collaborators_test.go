package orchestrator_test

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ehsaniara/annotrain/internal/trainer/artifact"
	"github.com/ehsaniara/annotrain/internal/trainer/command"
	"github.com/ehsaniara/annotrain/internal/trainer/domain"
	"github.com/ehsaniara/annotrain/internal/trainer/logbuf"
	"github.com/ehsaniara/annotrain/internal/trainer/orchestrator"
	"github.com/ehsaniara/annotrain/internal/trainer/orchestrator/orchestratorfakes"
	"github.com/ehsaniara/annotrain/internal/trainer/process"
	"github.com/ehsaniara/annotrain/internal/trainer/pubsub"
	"github.com/ehsaniara/annotrain/pkg/errors"
	"github.com/ehsaniara/annotrain/pkg/platform"
)

type collaborators struct {
	proc    orchestrator.ProcessController
	locator orchestrator.ArtifactLocator
	export  []string
}

type harness struct {
	orch    *orchestrator.Orchestrator
	logs    *logbuf.Registry
	runRoot string
}

func newHarness(t *testing.T, c collaborators) *harness {
	t.Helper()

	logs := logbuf.NewRegistry(logbuf.Options{MaxLines: 1000}, pubsub.NewPubSub[int64]())
	builder, err := command.NewBuilder([]string{"true"}, c.export)
	require.NoError(t, err)

	o := orchestrator.New(logs, c.proc, c.locator, builder, orchestrator.NewSequentialIDGenerator("job"), orchestrator.Options{})
	o.Start()
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = o.Shutdown(ctx)
	})
	return &harness{orch: o, logs: logs, runRoot: t.TempDir()}
}

func (h *harness) enqueue(t *testing.T, taskKey, script string) string {
	t.Helper()
	id, err := h.orch.Enqueue(domain.Descriptor{
		TaskKey:       taskKey,
		Command:       []string{"/bin/sh", "-c", script},
		RunRoot:       h.runRoot,
		RunNamePrefix: "run_42",
		Export:        domain.ExportSpec{Format: "onnx", Opset: 17},
	})
	require.NoError(t, err)
	return id
}

func (h *harness) waitForEnd(t *testing.T, jobID string) []string {
	t.Helper()
	var lines []string
	require.Eventually(t, func() bool {
		all, _, err := h.logs.ReadFrom(jobID, 0)
		if err != nil {
			return false
		}
		lines = all
		return len(all) > 0 && all[len(all)-1] == domain.SentinelEndOfStream
	}, 10*time.Second, 10*time.Millisecond)
	return lines
}

func realController() *process.Controller {
	return process.NewController(platform.NewPlatform(), 300*time.Millisecond, time.Second)
}

func realLocator() *artifact.Locator {
	return artifact.NewLocator(platform.NewPlatform(), "weights/best.pt", "weights/last.pt")
}

func TestOrchestrator_CancelWhileStarting(t *testing.T) {
	ctrl := realController()
	proc := new(orchestratorfakes.FakeProcessController)
	entered := make(chan struct{})
	release := make(chan struct{})
	proc.StartCalls(func(spec process.Spec) (*process.Handle, error) {
		close(entered)
		<-release
		return ctrl.Start(process.Spec{JobID: spec.JobID, Command: []string{"sleep", "30"}})
	})
	proc.TerminateCalls(ctrl.Terminate)

	h := newHarness(t, collaborators{proc: proc, locator: realLocator()})
	id := h.enqueue(t, "alice/cats", "unused")

	<-entered
	job, err := h.orch.Job(id)
	require.NoError(t, err)
	require.Equal(t, domain.PhaseStarting, job.Phase)

	require.NoError(t, h.orch.Cancel(id))
	assert.Zero(t, proc.TerminateCallCount(), "nothing to signal before the process exists")
	close(release)

	lines := h.waitForEnd(t, id)
	assert.Equal(t, "__ERROR__:stopped by user", lines[len(lines)-2])

	job, err = h.orch.Job(id)
	require.NoError(t, err)
	assert.Equal(t, domain.PhaseCancelled, job.Phase)
	assert.True(t, job.Cancelled)
	assert.Equal(t, 1, proc.StartCallCount())
	require.Equal(t, 1, proc.TerminateCallCount())
	assert.NotNil(t, proc.TerminateArgsForCall(0))
	assert.Zero(t, proc.RunCallCount())
}

func TestOrchestrator_StartFailure(t *testing.T) {
	proc := new(orchestratorfakes.FakeProcessController)
	proc.StartReturns(nil, fmt.Errorf("%w: no such file", errors.ErrSpawnFailed))
	locator := new(orchestratorfakes.FakeArtifactLocator)

	h := newHarness(t, collaborators{proc: proc, locator: locator})
	id := h.enqueue(t, "alice/cats", "unused")

	lines := h.waitForEnd(t, id)
	assert.Contains(t, lines[len(lines)-2], "__ERROR__:execution error:")

	job, err := h.orch.Job(id)
	require.NoError(t, err)
	assert.Equal(t, domain.PhaseError, job.Phase)
	assert.Nil(t, job.ExitCode)
	assert.Zero(t, locator.LatestRunCallCount())
	assert.Zero(t, proc.TerminateCallCount())
}

func TestOrchestrator_MissingArtifact(t *testing.T) {
	locator := new(orchestratorfakes.FakeArtifactLocator)
	locator.LatestRunReturns("", errors.ErrArtifactMissing)

	h := newHarness(t, collaborators{proc: realController(), locator: locator, export: []string{"echo", "{{ .Weights }}"}})
	id := h.enqueue(t, "alice/cats", "exit 0")

	lines := h.waitForEnd(t, id)
	assert.Equal(t, "__ERROR__:training finished but no artifact was found", lines[len(lines)-2])

	require.Equal(t, 1, locator.LatestRunCallCount())
	runRoot, prefix := locator.LatestRunArgsForCall(0)
	assert.Equal(t, h.runRoot, runRoot)
	assert.Equal(t, "run_42", prefix)
	assert.Zero(t, locator.WeightsCallCount())

	job, err := h.orch.Job(id)
	require.NoError(t, err)
	assert.Equal(t, domain.PhaseError, job.Phase)
	assert.Equal(t, domain.TaskIdle, h.orch.Status("alice/cats").Status)
}

func TestOrchestrator_ExportSkippedWithoutWeights(t *testing.T) {
	locator := new(orchestratorfakes.FakeArtifactLocator)
	runDir := filepath.Join(t.TempDir(), "run_42_2")
	locator.LatestRunReturns(runDir, nil)
	locator.WeightsReturns("", false)

	h := newHarness(t, collaborators{proc: realController(), locator: locator, export: []string{"echo", "{{ .Weights }}"}})
	id := h.enqueue(t, "alice/cats", "exit 0")

	lines := h.waitForEnd(t, id)
	assert.Contains(t, lines, "--- export skipped: no weights in run_42_2 ---")
	assert.Equal(t, "__SUCCESS__:run_42_2", lines[len(lines)-2])
	require.Equal(t, 1, locator.WeightsCallCount())
	assert.Equal(t, runDir, locator.WeightsArgsForCall(0))
}

func TestOrchestrator_ExportFailureKeepsSuccess(t *testing.T) {
	ctrl := realController()
	proc := new(orchestratorfakes.FakeProcessController)
	proc.StartCalls(ctrl.Start)
	proc.RunReturns(3, nil)
	locator := new(orchestratorfakes.FakeArtifactLocator)
	locator.LatestRunReturns("/runs/run_42", nil)
	locator.WeightsReturns("/runs/run_42/weights/best.pt", true)

	h := newHarness(t, collaborators{proc: proc, locator: locator, export: []string{"echo", "{{ .Weights }}", "{{ .Format }}"}})
	id := h.enqueue(t, "alice/cats", "exit 0")

	lines := h.waitForEnd(t, id)
	assert.Contains(t, lines, "--- export: onnx ---")
	assert.Contains(t, lines, "--- export failed (Code: 3) ---")
	assert.Equal(t, "__SUCCESS__:run_42", lines[len(lines)-2])

	require.Equal(t, 1, proc.RunCallCount())
	spec, _ := proc.RunArgsForCall(0)
	assert.Equal(t, []string{"echo", "/runs/run_42/weights/best.pt", "onnx"}, spec.Command)
	assert.Equal(t, id, spec.JobID)
}
