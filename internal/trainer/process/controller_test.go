package process

import (
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/ehsaniara/annotrain/pkg/errors"
	"github.com/ehsaniara/annotrain/pkg/platform"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestController(grace time.Duration) *Controller {
	return NewController(platform.NewPlatform(), grace, 500*time.Millisecond)
}

func collect(t *testing.T, h *Handle) []string {
	t.Helper()
	var lines []string
	require.NoError(t, h.Lines(func(line string) {
		lines = append(lines, line)
	}))
	return lines
}

func TestStart_MergesOutputAndReportsExitCode(t *testing.T) {
	c := newTestController(time.Second)

	h, err := c.Start(Spec{
		JobID:   "job-1",
		Command: []string{"/bin/sh", "-c", "echo out; echo err 1>&2; exit 3"},
	})
	require.NoError(t, err)

	lines := collect(t, h)
	assert.ElementsMatch(t, []string{"out", "err"}, lines)

	code, err := h.Wait()
	require.NoError(t, err)
	assert.Equal(t, 3, code)
}

func TestStart_StripsEscapesAndSplitsCarriageReturns(t *testing.T) {
	c := newTestController(time.Second)

	h, err := c.Start(Spec{
		JobID:   "job-1",
		Command: []string{"/bin/sh", "-c", `printf '\033[32mEpoch 1\033[0m   \n10%%\r50%%\r100%%\r\nempty next\n\ndone'`},
	})
	require.NoError(t, err)

	lines := collect(t, h)
	assert.Equal(t, []string{"Epoch 1", "10%", "50%", "100%", "empty next", "", "done"}, lines)

	code, _ := h.Wait()
	assert.Equal(t, 0, code)
}

func TestStart_EnvironmentAndWorkDir(t *testing.T) {
	c := newTestController(time.Second)
	dir := t.TempDir()

	h, err := c.Start(Spec{
		JobID:   "job-1",
		Command: []string{"/bin/sh", "-c", `echo "$PYTHONUTF8"; pwd`},
		Env:     map[string]string{"PYTHONUTF8": "1"},
		Dir:     dir,
	})
	require.NoError(t, err)

	lines := collect(t, h)
	require.Len(t, lines, 2)
	assert.Equal(t, "1", lines[0])
	assert.True(t, strings.HasSuffix(lines[1], dir[strings.LastIndex(dir, "/"):]))
}

func TestStart_SpawnFailure(t *testing.T) {
	c := newTestController(time.Second)

	tests := []struct {
		name string
		spec Spec
	}{
		{"missing binary", Spec{Command: []string{"/definitely/not/here"}}},
		{"empty command", Spec{Command: nil}},
		{"bad env", Spec{Command: []string{"/bin/true"}, Env: map[string]string{"A=B": "c"}}},
		{"missing dir", Spec{Command: []string{"/bin/true"}, Dir: "/definitely/not/here"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, err := c.Start(tt.spec)
			assert.Nil(t, h)
			assert.ErrorIs(t, err, errors.ErrSpawnFailed)
		})
	}
}

func TestTerminate_GracefulExit(t *testing.T) {
	c := newTestController(2 * time.Second)

	h, err := c.Start(Spec{
		JobID:   "job-1",
		Command: []string{"/bin/sh", "-c", "echo ready; exec sleep 30"},
	})
	require.NoError(t, err)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		_ = h.Lines(func(string) {})
	}()

	start := time.Now()
	c.Terminate(h)
	code, _ := h.Wait()
	wg.Wait()

	assert.Equal(t, -1, code, "killed by a signal")
	assert.Less(t, time.Since(start), time.Second, "SIGTERM should be enough")
}

func TestTerminate_EscalatesToKill(t *testing.T) {
	grace := 300 * time.Millisecond
	c := newTestController(grace)

	h, err := c.Start(Spec{
		JobID:   "job-1",
		Command: []string{"/bin/sh", "-c", "trap '' TERM; echo ready; while true; do sleep 0.05; done"},
	})
	require.NoError(t, err)

	ready := make(chan struct{})
	var once sync.Once
	go func() {
		_ = h.Lines(func(line string) {
			if line == "ready" {
				once.Do(func() { close(ready) })
			}
		})
	}()

	select {
	case <-ready:
	case <-time.After(5 * time.Second):
		t.Fatal("process never became ready")
	}

	start := time.Now()
	c.Terminate(h)

	select {
	case <-h.Done():
	case <-time.After(grace + 2*time.Second):
		t.Fatal("process survived SIGKILL")
	}

	elapsed := time.Since(start)
	assert.GreaterOrEqual(t, elapsed, grace)
	assert.Less(t, elapsed, grace+2*time.Second)
}

func TestTerminate_AlreadyExited(t *testing.T) {
	c := newTestController(time.Second)

	h, err := c.Start(Spec{JobID: "job-1", Command: []string{"/bin/true"}})
	require.NoError(t, err)
	collect(t, h)
	_, _ = h.Wait()

	start := time.Now()
	c.Terminate(h)
	assert.Less(t, time.Since(start), 100*time.Millisecond)
}

func TestRun(t *testing.T) {
	c := newTestController(time.Second)

	var lines []string
	code, err := c.Run(Spec{
		JobID:   "job-1",
		Command: []string{"/bin/sh", "-c", "echo exporting; exit 1"},
	}, func(line string) { lines = append(lines, line) })

	require.NoError(t, err)
	assert.Equal(t, 1, code)
	assert.Equal(t, []string{"exporting"}, lines)
}

func TestLines_OrphanHoldingOutputIsBounded(t *testing.T) {
	c := NewController(platform.NewPlatform(), time.Second, 200*time.Millisecond)

	// The background sleep inherits the pipe and outlives its parent.
	h, err := c.Start(Spec{
		JobID:   "job-1",
		Command: []string{"/bin/sh", "-c", "sleep 5 & echo parent done"},
	})
	require.NoError(t, err)
	defer func() { _ = c.platform.Kill(-h.Pid(), 9) }()

	start := time.Now()
	lines := collect(t, h)
	assert.Equal(t, []string{"parent done"}, lines)
	assert.Less(t, time.Since(start), 3*time.Second)
}
