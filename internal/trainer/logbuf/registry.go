package logbuf

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/ehsaniara/annotrain/internal/trainer/pubsub"
	"github.com/ehsaniara/annotrain/pkg/errors"
	"github.com/ehsaniara/annotrain/pkg/logger"
)

// Options bounds the memory held by the registry.
type Options struct {
	MaxLines    int           // window size that triggers a cut
	RetainLines int           // lines kept after a cut
	FinishedTTL time.Duration // finished buffers older than this are evicted, 0 keeps them
	MaxFinished int           // at most this many finished buffers are kept, 0 for no limit
}

// Stats provides basic registry statistics
type Stats struct {
	Buffers  int
	Finished int
	Lines    int
}

// Registry maps job ids to their log buffers. Every append is announced on
// the notifier under the job id topic with the new cursor as payload.
type Registry struct {
	buffers  map[string]*Buffer
	mutex    sync.RWMutex
	opts     Options
	notifier pubsub.PubSub[int64]
	logger   *logger.Logger
	now      func() time.Time
}

// NewRegistry creates a registry publishing change notifications on notifier.
func NewRegistry(opts Options, notifier pubsub.PubSub[int64]) *Registry {
	if opts.RetainLines <= 0 || opts.RetainLines > opts.MaxLines {
		opts.RetainLines = opts.MaxLines
	}
	return &Registry{
		buffers:  make(map[string]*Buffer),
		opts:     opts,
		notifier: notifier,
		logger:   logger.WithField("component", "log-registry"),
		now:      time.Now,
	}
}

// Create registers an empty buffer for jobID, keeping an existing one.
func (r *Registry) Create(jobID string) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	if _, exists := r.buffers[jobID]; !exists {
		r.buffers[jobID] = newBuffer(jobID, r.opts.MaxLines, r.opts.RetainLines)
	}
}

// Append adds a line to the job's buffer and notifies readers.
func (r *Registry) Append(jobID string, line string) error {
	buffer, err := r.get(jobID)
	if err != nil {
		return err
	}

	next, err := buffer.Append(line, r.now())
	if err != nil {
		return errors.WrapJobError(jobID, "append", err)
	}

	if err := r.notifier.Publish(context.Background(), jobID, next); err != nil {
		r.logger.Debug("change notification dropped", "jobId", jobID, "error", err)
	}
	return nil
}

// ReadFrom returns the lines of jobID at or after cursor, plus the cursor to
// pass on the next call.
func (r *Registry) ReadFrom(jobID string, cursor int64) ([]string, int64, error) {
	buffer, err := r.get(jobID)
	if err != nil {
		return nil, cursor, err
	}
	lines, next := buffer.ReadFrom(cursor)
	return lines, next, nil
}

// Exists reports whether jobID has a buffer.
func (r *Registry) Exists(jobID string) bool {
	_, err := r.get(jobID)
	return err == nil
}

// Subscribe delivers a notification for every line appended to jobID.
func (r *Registry) Subscribe(ctx context.Context, jobID string) (<-chan pubsub.Message[int64], func(), error) {
	return r.notifier.Subscribe(ctx, jobID)
}

// Remove drops the buffer of jobID.
func (r *Registry) Remove(jobID string) bool {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	_, exists := r.buffers[jobID]
	delete(r.buffers, jobID)
	return exists
}

// Prune evicts finished buffers past the TTL, then the oldest finished ones
// above MaxFinished. Unfinished buffers are never evicted.
func (r *Registry) Prune(now time.Time) int {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	type finishedBuffer struct {
		jobID string
		at    time.Time
	}

	var finished []finishedBuffer
	evicted := 0
	for jobID, buffer := range r.buffers {
		done, at := buffer.Finished()
		if !done {
			continue
		}
		if r.opts.FinishedTTL > 0 && now.Sub(at) > r.opts.FinishedTTL {
			delete(r.buffers, jobID)
			evicted++
			continue
		}
		finished = append(finished, finishedBuffer{jobID: jobID, at: at})
	}

	if r.opts.MaxFinished > 0 && len(finished) > r.opts.MaxFinished {
		slices.SortFunc(finished, func(a, b finishedBuffer) int {
			return a.at.Compare(b.at)
		})
		for _, fb := range finished[:len(finished)-r.opts.MaxFinished] {
			delete(r.buffers, fb.jobID)
			evicted++
		}
	}

	return evicted
}

// RunJanitor prunes the registry every interval until ctx is done.
func (r *Registry) RunJanitor(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		return
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := r.Prune(r.now()); n > 0 {
				r.logger.Info("evicted finished log buffers", "count", n)
			}
		}
	}
}

// Stats returns simple buffer statistics
func (r *Registry) Stats() Stats {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	stats := Stats{Buffers: len(r.buffers)}
	for _, buffer := range r.buffers {
		if done, _ := buffer.Finished(); done {
			stats.Finished++
		}
		stats.Lines += buffer.Size()
	}
	return stats
}

func (r *Registry) get(jobID string) (*Buffer, error) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	buffer, exists := r.buffers[jobID]
	if !exists {
		return nil, errors.WrapJobError(jobID, "read log", errors.ErrLogStreamNotFound)
	}
	return buffer, nil
}
