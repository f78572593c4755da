// Package stream tails job logs for any number of independent readers.
package stream

import (
	"context"
	"time"

	"github.com/ehsaniara/annotrain/internal/trainer/domain"
	"github.com/ehsaniara/annotrain/internal/trainer/pubsub"
	"github.com/ehsaniara/annotrain/pkg/errors"
	"github.com/ehsaniara/annotrain/pkg/logger"
)

const (
	DefaultPollInterval = time.Second
	DefaultKeepAlive    = 15 * time.Second
)

// LogSource is the read side of the log registry.
type LogSource interface {
	ReadFrom(jobID string, cursor int64) ([]string, int64, error)
	Subscribe(ctx context.Context, jobID string) (<-chan pubsub.Message[int64], func(), error)
}

// Event is one item of a feed. Cursor is the position a reader resumes
// from after this line. KeepAlive events carry no line.
type Event struct {
	Cursor    int64
	Line      string
	KeepAlive bool
}

// Emitter delivers an event to the reader. An error ends the feed.
type Emitter func(Event) error

// Options tunes a Streamer.
type Options struct {
	// PollInterval is the fallback re-read period when no change
	// notification arrives.
	PollInterval time.Duration
	// KeepAlive is the idle period after which a keep-alive event is
	// emitted, 0 disables them.
	KeepAlive time.Duration
}

// Streamer replays a job log from a cursor and follows it until the end of
// stream marker.
type Streamer struct {
	logs   LogSource
	opts   Options
	logger *logger.Logger
}

// NewStreamer creates a streamer over logs.
func NewStreamer(logs LogSource, opts Options) *Streamer {
	if opts.PollInterval <= 0 {
		opts.PollInterval = DefaultPollInterval
	}
	return &Streamer{
		logs:   logs,
		opts:   opts,
		logger: logger.WithField("component", "log-stream"),
	}
}

// Stream emits every line of jobID from cursor on, waiting for new lines
// until it has emitted the end of stream marker. A job without a log gets
// an error sentinel followed by the end marker. Cancelling ctx or an emit
// error ends the feed only, the job keeps running.
func (s *Streamer) Stream(ctx context.Context, jobID string, cursor int64, emit Emitter) error {
	if cursor < 0 {
		cursor = 0
	}
	log := s.logger.WithField("jobId", jobID)

	// Subscribe before the first read so no append falls between the two.
	notify, unsubscribe, err := s.logs.Subscribe(ctx, jobID)
	if err != nil {
		log.Debug("change notifications unavailable, polling only", "error", err)
		notify = nil
	} else {
		defer unsubscribe()
	}

	poll := time.NewTicker(s.opts.PollInterval)
	defer poll.Stop()

	var keepAlive <-chan time.Time
	if s.opts.KeepAlive > 0 {
		t := time.NewTicker(s.opts.KeepAlive)
		defer t.Stop()
		keepAlive = t.C
	}

	for {
		lines, next, err := s.logs.ReadFrom(jobID, cursor)
		if err != nil {
			if errors.Is(err, errors.ErrLogStreamNotFound) {
				log.Debug("no log for stream", "cursor", cursor)
				return s.missing(cursor, emit)
			}
			return err
		}

		first := next - int64(len(lines))
		for i, line := range lines {
			if err := emit(Event{Cursor: first + int64(i) + 1, Line: line}); err != nil {
				log.Debug("reader went away", "error", err)
				return err
			}
			if line == domain.SentinelEndOfStream {
				return nil
			}
		}
		cursor = next

		select {
		case <-ctx.Done():
			return ctx.Err()
		case _, ok := <-notify:
			if !ok {
				notify = nil
			}
		case <-poll.C:
		case <-keepAlive:
			if err := emit(Event{Cursor: cursor, KeepAlive: true}); err != nil {
				return err
			}
		}
	}
}

func (s *Streamer) missing(cursor int64, emit Emitter) error {
	if err := emit(Event{Cursor: cursor, Line: domain.ErrorLine(errors.ErrLogStreamNotFound.Error())}); err != nil {
		return err
	}
	return emit(Event{Cursor: cursor, Line: domain.SentinelEndOfStream})
}
