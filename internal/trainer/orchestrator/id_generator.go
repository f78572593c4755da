package orchestrator

import (
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
)

// IDGenerator hands out job ids.
type IDGenerator interface {
	Next() string
}

// UUIDGenerator generates random (version 4) job ids.
type UUIDGenerator struct{}

// NewUUIDGenerator creates a generator backed by google/uuid.
func NewUUIDGenerator() *UUIDGenerator {
	return &UUIDGenerator{}
}

func (g *UUIDGenerator) Next() string {
	return uuid.NewString()
}

// SequentialIDGenerator is a predictable generator for tests and debugging.
type SequentialIDGenerator struct {
	prefix  string
	counter int64
}

// NewSequentialIDGenerator creates a generator producing prefix-1, prefix-2, ...
func NewSequentialIDGenerator(prefix string) *SequentialIDGenerator {
	return &SequentialIDGenerator{prefix: prefix}
}

func (g *SequentialIDGenerator) Next() string {
	return fmt.Sprintf("%s-%d", g.prefix, atomic.AddInt64(&g.counter, 1))
}

// RunNamePrefix returns a fresh run directory prefix, "train_<unix>_<8 hex>".
func RunNamePrefix(now time.Time) string {
	short := strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
	return fmt.Sprintf("train_%d_%s", now.Unix(), short)
}
