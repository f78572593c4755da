package logbuf

import (
	"errors"
	"sync"
	"time"

	"github.com/ehsaniara/annotrain/internal/trainer/domain"
)

// ErrBufferFinished is returned when appending after the end-of-stream line.
var ErrBufferFinished = errors.New("log buffer already finished")

// Buffer holds the output of one job as a window of lines addressed by
// absolute cursors. Line n keeps cursor n for the buffer's lifetime even
// after earlier lines have been dropped.
type Buffer struct {
	jobID       string
	lines       []string
	first       int64 // cursor of lines[0]
	maxLines    int
	retainLines int
	finished    bool
	finishedAt  time.Time
	mutex       sync.RWMutex
}

func newBuffer(jobID string, maxLines, retainLines int) *Buffer {
	return &Buffer{
		jobID:       jobID,
		lines:       make([]string, 0, 64),
		maxLines:    maxLines,
		retainLines: retainLines,
	}
}

// Append adds a line and returns the cursor just past it. Once the window
// grows past maxLines it is cut back to the trailing retainLines, which
// keeps appends amortized O(1).
func (b *Buffer) Append(line string, now time.Time) (int64, error) {
	b.mutex.Lock()
	defer b.mutex.Unlock()

	if b.finished {
		return b.next(), ErrBufferFinished
	}

	b.lines = append(b.lines, line)
	if b.maxLines > 0 && len(b.lines) > b.maxLines {
		drop := len(b.lines) - b.retainLines
		kept := make([]string, b.retainLines, b.maxLines+1)
		copy(kept, b.lines[drop:])
		b.lines = kept
		b.first += int64(drop)
	}

	if line == domain.SentinelEndOfStream {
		b.finished = true
		b.finishedAt = now
	}

	return b.next(), nil
}

// ReadFrom returns the lines at or after cursor and the cursor to resume from.
// A cursor behind the window resumes at the earliest retained line.
func (b *Buffer) ReadFrom(cursor int64) ([]string, int64) {
	b.mutex.RLock()
	defer b.mutex.RUnlock()

	if cursor < b.first {
		cursor = b.first
	}
	next := b.next()
	if cursor >= next {
		return nil, next
	}

	offset := int(cursor - b.first)
	result := make([]string, len(b.lines)-offset)
	copy(result, b.lines[offset:])
	return result, next
}

// Bounds returns the first retained cursor and the next cursor to be written.
func (b *Buffer) Bounds() (first, next int64) {
	b.mutex.RLock()
	defer b.mutex.RUnlock()
	return b.first, b.next()
}

// Finished reports whether the end-of-stream line was appended, and when.
func (b *Buffer) Finished() (bool, time.Time) {
	b.mutex.RLock()
	defer b.mutex.RUnlock()
	return b.finished, b.finishedAt
}

// Size returns the number of retained lines
func (b *Buffer) Size() int {
	b.mutex.RLock()
	defer b.mutex.RUnlock()
	return len(b.lines)
}

func (b *Buffer) next() int64 {
	return b.first + int64(len(b.lines))
}
