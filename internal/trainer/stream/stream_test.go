package stream

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ehsaniara/annotrain/internal/trainer/domain"
	"github.com/ehsaniara/annotrain/internal/trainer/logbuf"
	"github.com/ehsaniara/annotrain/internal/trainer/pubsub"
)

func newRegistry() *logbuf.Registry {
	return logbuf.NewRegistry(logbuf.Options{MaxLines: 100, RetainLines: 50}, pubsub.NewPubSub[int64]())
}

// collector records emitted events.
type collector struct {
	mu     sync.Mutex
	events []Event
}

func (c *collector) emit(e Event) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.events = append(c.events, e)
	return nil
}

func (c *collector) lines() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	var out []string
	for _, e := range c.events {
		if !e.KeepAlive {
			out = append(out, e.Line)
		}
	}
	return out
}

func TestStream_ReplaysFinishedLog(t *testing.T) {
	r := newRegistry()
	r.Create("job-1")
	for _, line := range []string{domain.SentinelQueued, "epoch 1", "__SUCCESS__:run_1", domain.SentinelEndOfStream} {
		require.NoError(t, r.Append("job-1", line))
	}

	c := &collector{}
	err := NewStreamer(r, Options{}).Stream(context.Background(), "job-1", 0, c.emit)
	require.NoError(t, err)

	assert.Equal(t, []string{domain.SentinelQueued, "epoch 1", "__SUCCESS__:run_1", domain.SentinelEndOfStream}, c.lines())
	assert.Equal(t, int64(1), c.events[0].Cursor)
	assert.Equal(t, int64(4), c.events[3].Cursor)
}

func TestStream_ResumesFromCursor(t *testing.T) {
	r := newRegistry()
	r.Create("job-1")
	for _, line := range []string{"a", "b", "c", domain.SentinelEndOfStream} {
		require.NoError(t, r.Append("job-1", line))
	}

	c := &collector{}
	require.NoError(t, NewStreamer(r, Options{}).Stream(context.Background(), "job-1", 2, c.emit))
	assert.Equal(t, []string{"c", domain.SentinelEndOfStream}, c.lines())
}

func TestStream_FollowsLiveAppends(t *testing.T) {
	r := newRegistry()
	r.Create("job-1")
	require.NoError(t, r.Append("job-1", domain.SentinelQueued))

	// A long poll interval proves the feed is driven by notifications.
	s := NewStreamer(r, Options{PollInterval: time.Hour})
	c := &collector{}
	done := make(chan error, 1)
	go func() { done <- s.Stream(context.Background(), "job-1", 0, c.emit) }()

	require.Eventually(t, func() bool { return len(c.lines()) == 1 }, 2*time.Second, 5*time.Millisecond)
	for i := 0; i < 5; i++ {
		require.NoError(t, r.Append("job-1", fmt.Sprintf("line %d", i)))
	}
	require.NoError(t, r.Append("job-1", domain.SentinelEndOfStream))

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("stream did not end")
	}
	assert.Equal(t, []string{domain.SentinelQueued, "line 0", "line 1", "line 2", "line 3", "line 4", domain.SentinelEndOfStream}, c.lines())
}

func TestStream_UnknownJob(t *testing.T) {
	c := &collector{}
	err := NewStreamer(newRegistry(), Options{}).Stream(context.Background(), "missing", 0, c.emit)
	require.NoError(t, err)

	assert.Equal(t, []string{
		"__ERROR__:log stream does not exist or has expired",
		domain.SentinelEndOfStream,
	}, c.lines())
}

func TestStream_DisconnectEndsFeedOnly(t *testing.T) {
	r := newRegistry()
	r.Create("job-1")
	require.NoError(t, r.Append("job-1", domain.SentinelQueued))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- NewStreamer(r, Options{PollInterval: 10 * time.Millisecond}).Stream(ctx, "job-1", 0, (&collector{}).emit)
	}()
	cancel()

	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(2 * time.Second):
		t.Fatal("stream ignored cancellation")
	}

	// The log is untouched and still writable.
	require.NoError(t, r.Append("job-1", "still running"))
	lines, _, err := r.ReadFrom("job-1", 0)
	require.NoError(t, err)
	assert.Equal(t, []string{domain.SentinelQueued, "still running"}, lines)
}

func TestStream_EmitErrorStopsFeed(t *testing.T) {
	r := newRegistry()
	r.Create("job-1")
	require.NoError(t, r.Append("job-1", "a"))
	require.NoError(t, r.Append("job-1", "b"))

	broken := fmt.Errorf("broken pipe")
	calls := 0
	err := NewStreamer(r, Options{}).Stream(context.Background(), "job-1", 0, func(Event) error {
		calls++
		return broken
	})
	assert.ErrorIs(t, err, broken)
	assert.Equal(t, 1, calls)
}

func TestStream_IndependentReaders(t *testing.T) {
	r := newRegistry()
	r.Create("job-1")
	for _, line := range []string{"0", "1", "2"} {
		require.NoError(t, r.Append("job-1", line))
	}
	s := NewStreamer(r, Options{PollInterval: 10 * time.Millisecond})

	readers := []*collector{{}, {}, {}}
	var wg sync.WaitGroup
	for i, c := range readers {
		wg.Add(1)
		go func(cursor int64, c *collector) {
			defer wg.Done()
			assert.NoError(t, s.Stream(context.Background(), "job-1", cursor, c.emit))
		}(int64(i), c)
	}

	for _, line := range []string{"3", domain.SentinelEndOfStream} {
		require.NoError(t, r.Append("job-1", line))
	}
	wg.Wait()

	assert.Equal(t, []string{"0", "1", "2", "3", domain.SentinelEndOfStream}, readers[0].lines())
	assert.Equal(t, []string{"1", "2", "3", domain.SentinelEndOfStream}, readers[1].lines())
	assert.Equal(t, []string{"2", "3", domain.SentinelEndOfStream}, readers[2].lines())
}

func TestStream_KeepAlive(t *testing.T) {
	r := newRegistry()
	r.Create("job-1")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	c := &collector{}
	go func() {
		_ = NewStreamer(r, Options{PollInterval: time.Hour, KeepAlive: 10 * time.Millisecond}).Stream(ctx, "job-1", 0, c.emit)
	}()

	require.Eventually(t, func() bool {
		c.mu.Lock()
		defer c.mu.Unlock()
		return len(c.events) > 0 && c.events[0].KeepAlive
	}, 2*time.Second, 5*time.Millisecond)
}
