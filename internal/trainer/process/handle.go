package process

import (
	"bufio"
	"errors"
	"io"
	"os"
	"os/exec"
	"time"

	"github.com/ehsaniara/annotrain/pkg/platform"
)

// Handle is a started process.
type Handle struct {
	jobID        string
	cmd          platform.Command
	pid          int
	output       *os.File // read end of the merged output pipe
	done         chan struct{}
	exitCode     int
	waitErr      error
	drainTimeout time.Duration
	startedAt    time.Time
}

// Pid returns the process id, which is also its process group id.
func (h *Handle) Pid() int {
	return h.pid
}

// StartedAt returns when the process was started.
func (h *Handle) StartedAt() time.Time {
	return h.startedAt
}

// Done is closed once the process has exited.
func (h *Handle) Done() <-chan struct{} {
	return h.done
}

// Wait blocks until the process exits and returns its exit code. A process
// killed by a signal reports -1.
func (h *Handle) Wait() (int, error) {
	<-h.done
	return h.exitCode, h.waitErr
}

func (h *Handle) wait() {
	err := h.cmd.Wait()

	var exitErr *exec.ExitError
	switch {
	case err == nil:
		h.exitCode = 0
	case errors.As(err, &exitErr):
		h.exitCode = exitErr.ExitCode()
	default:
		h.exitCode = -1
		h.waitErr = err
	}
	close(h.done)
}

// Lines reads the merged output line by line, strips escape sequences and
// calls fn for every line, in order. It returns at end of output. Output kept
// open by orphaned children is drained for at most the drain timeout after
// the process itself has exited.
func (h *Handle) Lines(fn func(line string)) error {
	defer h.output.Close()

	stop := make(chan struct{})
	defer close(stop)
	go func() {
		select {
		case <-h.done:
			_ = h.output.SetReadDeadline(time.Now().Add(h.drainTimeout))
		case <-stop:
		}
	}()

	scanner := bufio.NewScanner(h.output)
	scanner.Buffer(make([]byte, 0, 64*1024), 2*maxLineSize)
	scanner.Split(splitLines)
	for scanner.Scan() {
		fn(CleanLine(scanner.Text()))
	}

	err := scanner.Err()
	if err == nil || errors.Is(err, os.ErrDeadlineExceeded) || errors.Is(err, io.EOF) || errors.Is(err, os.ErrClosed) {
		return nil
	}
	return err
}
