package logbuf

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/ehsaniara/annotrain/internal/trainer/domain"
	"github.com/ehsaniara/annotrain/internal/trainer/pubsub"
	"github.com/ehsaniara/annotrain/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRegistry(opts Options) *Registry {
	return NewRegistry(opts, pubsub.NewPubSub[int64]())
}

func TestRegistry_AppendAndReadFrom(t *testing.T) {
	r := newTestRegistry(Options{MaxLines: 100, RetainLines: 80})
	r.Create("job-1")

	require.NoError(t, r.Append("job-1", domain.SentinelQueued))
	require.NoError(t, r.Append("job-1", "line 1"))

	lines, next, err := r.ReadFrom("job-1", 0)
	require.NoError(t, err)
	assert.Equal(t, []string{domain.SentinelQueued, "line 1"}, lines)
	assert.Equal(t, int64(2), next)

	// Nothing new yet
	lines, next, err = r.ReadFrom("job-1", next)
	require.NoError(t, err)
	assert.Empty(t, lines)
	assert.Equal(t, int64(2), next)

	require.NoError(t, r.Append("job-1", "line 2"))
	lines, next, err = r.ReadFrom("job-1", next)
	require.NoError(t, err)
	assert.Equal(t, []string{"line 2"}, lines)
	assert.Equal(t, int64(3), next)
}

func TestRegistry_UnknownJob(t *testing.T) {
	r := newTestRegistry(Options{MaxLines: 10})

	_, _, err := r.ReadFrom("missing", 0)
	assert.ErrorIs(t, err, errors.ErrLogStreamNotFound)

	err = r.Append("missing", "x")
	assert.ErrorIs(t, err, errors.ErrLogStreamNotFound)

	assert.False(t, r.Exists("missing"))
}

func TestRegistry_WindowKeepsTrailingLines(t *testing.T) {
	r := newTestRegistry(Options{MaxLines: 10, RetainLines: 8})
	r.Create("job-1")

	for i := 1; i <= 11; i++ {
		require.NoError(t, r.Append("job-1", fmt.Sprintf("line %d", i)))
	}

	lines, next, err := r.ReadFrom("job-1", 0)
	require.NoError(t, err)
	require.Len(t, lines, 8)
	assert.Equal(t, "line 4", lines[0])
	assert.Equal(t, "line 11", lines[7])
	assert.Equal(t, int64(11), next)
}

func TestRegistry_DefaultWindow(t *testing.T) {
	r := newTestRegistry(Options{MaxLines: 5000, RetainLines: 4000})
	r.Create("job-1")

	for i := 0; i < 5001; i++ {
		require.NoError(t, r.Append("job-1", fmt.Sprintf("%d", i)))
	}

	lines, _, err := r.ReadFrom("job-1", 0)
	require.NoError(t, err)
	require.Len(t, lines, 4000)
	assert.Equal(t, "1001", lines[0])
	assert.Equal(t, "5000", lines[3999])
}

func TestRegistry_CursorSurvivesTruncation(t *testing.T) {
	r := newTestRegistry(Options{MaxLines: 4, RetainLines: 2})
	r.Create("job-1")

	for _, l := range []string{"a", "b", "c"} {
		require.NoError(t, r.Append("job-1", l))
	}
	_, cursor, err := r.ReadFrom("job-1", 0)
	require.NoError(t, err)
	assert.Equal(t, int64(3), cursor)

	// "d" fits, "e" triggers the cut down to [d e]
	require.NoError(t, r.Append("job-1", "d"))
	require.NoError(t, r.Append("job-1", "e"))

	lines, next, err := r.ReadFrom("job-1", cursor)
	require.NoError(t, err)
	assert.Equal(t, []string{"d", "e"}, lines)
	assert.Equal(t, int64(5), next)

	// A reader that fell behind resumes at the earliest retained line
	lines, _, err = r.ReadFrom("job-1", 1)
	require.NoError(t, err)
	assert.Equal(t, []string{"d", "e"}, lines)
}

func TestRegistry_NothingAfterEndOfStream(t *testing.T) {
	r := newTestRegistry(Options{MaxLines: 10})
	r.Create("job-1")

	require.NoError(t, r.Append("job-1", domain.SentinelEndOfStream))
	err := r.Append("job-1", "late")
	assert.ErrorIs(t, err, ErrBufferFinished)

	lines, _, err := r.ReadFrom("job-1", 0)
	require.NoError(t, err)
	assert.Equal(t, []string{domain.SentinelEndOfStream}, lines)
}

func TestRegistry_AppendNotifiesSubscribers(t *testing.T) {
	r := newTestRegistry(Options{MaxLines: 10})
	r.Create("job-1")

	ch, unsubscribe, err := r.Subscribe(context.Background(), "job-1")
	require.NoError(t, err)
	defer unsubscribe()

	require.NoError(t, r.Append("job-1", "hello"))

	select {
	case msg := <-ch:
		assert.Equal(t, int64(1), msg.Payload)
	case <-time.After(time.Second):
		t.Fatal("no notification after append")
	}
}

func TestRegistry_ConcurrentReadersAndWriter(t *testing.T) {
	r := newTestRegistry(Options{MaxLines: 50, RetainLines: 40})
	r.Create("job-1")

	const total = 500
	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; i < total; i++ {
			_ = r.Append("job-1", fmt.Sprintf("%d", i))
		}
		_ = r.Append("job-1", domain.SentinelEndOfStream)
	}()

	for reader := 0; reader < 4; reader++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			var cursor int64
			last := -1
			for {
				lines, next, err := r.ReadFrom("job-1", cursor)
				if !assert.NoError(t, err) {
					return
				}
				for _, l := range lines {
					if l == domain.SentinelEndOfStream {
						return
					}
					var n int
					_, _ = fmt.Sscanf(l, "%d", &n)
					assert.Greater(t, n, last, "lines must arrive in order")
					last = n
				}
				cursor = next
				time.Sleep(time.Millisecond)
			}
		}()
	}

	wg.Wait()
}

func TestRegistry_Prune(t *testing.T) {
	base := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	r := newTestRegistry(Options{MaxLines: 10, FinishedTTL: time.Hour, MaxFinished: 2})

	finish := func(jobID string, at time.Time) {
		r.now = func() time.Time { return at }
		r.Create(jobID)
		require.NoError(t, r.Append(jobID, domain.SentinelEndOfStream))
	}

	finish("expired", base.Add(-2*time.Hour))
	finish("old", base.Add(-30*time.Minute))
	finish("newer", base.Add(-20*time.Minute))
	finish("newest", base.Add(-10*time.Minute))
	r.Create("running")
	require.NoError(t, r.Append("running", "still going"))

	evicted := r.Prune(base)
	assert.Equal(t, 2, evicted)

	assert.False(t, r.Exists("expired"), "past TTL")
	assert.False(t, r.Exists("old"), "over capacity")
	assert.True(t, r.Exists("newer"))
	assert.True(t, r.Exists("newest"))
	assert.True(t, r.Exists("running"), "unfinished buffers are never evicted")

	stats := r.Stats()
	assert.Equal(t, 3, stats.Buffers)
	assert.Equal(t, 2, stats.Finished)
}

func TestRegistry_Remove(t *testing.T) {
	r := newTestRegistry(Options{MaxLines: 10})
	r.Create("job-1")

	assert.True(t, r.Remove("job-1"))
	assert.False(t, r.Remove("job-1"))
	assert.False(t, r.Exists("job-1"))
}
