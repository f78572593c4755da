package artifact

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/samber/lo"

	"github.com/ehsaniara/annotrain/internal/trainer/domain"
	"github.com/ehsaniara/annotrain/pkg/errors"
	"github.com/ehsaniara/annotrain/pkg/platform"
)

// Run is one output directory of a training run.
type Run struct {
	Name       string    `json:"name"`
	ModTime    time.Time `json:"mtime"`
	HasWeights bool      `json:"has_weights"`
	Weights    string    `json:"weights,omitempty"` // relative to the run directory
}

// Locator finds run directories and the weights inside them.
type Locator struct {
	platform platform.OSOperations
	weights  []string
}

// NewLocator creates a locator looking for the preferred weights file first
// and the fallback one second. Both are relative to a run directory.
func NewLocator(p platform.OSOperations, preferred, fallback string) *Locator {
	return &Locator{
		platform: p,
		weights:  lo.Compact([]string{preferred, fallback}),
	}
}

type runEntry struct {
	name    string
	modTime time.Time
}

func (l *Locator) runEntries(runRoot string) ([]runEntry, error) {
	entries, err := l.platform.ReadDir(runRoot)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read run root %s: %w", runRoot, err)
	}

	return lo.FilterMap(entries, func(e os.DirEntry, _ int) (runEntry, bool) {
		if !e.IsDir() {
			return runEntry{}, false
		}
		info, err := e.Info()
		if err != nil {
			return runEntry{}, false
		}
		return runEntry{name: e.Name(), modTime: info.ModTime()}, true
	}), nil
}

// LatestRun returns the path of the most recently modified directory under
// runRoot whose name starts with prefix. Training tools append suffixes to
// the requested name when it already exists, hence the prefix match.
func (l *Locator) LatestRun(runRoot, prefix string) (string, error) {
	entries, err := l.runEntries(runRoot)
	if err != nil {
		return "", err
	}

	candidates := lo.Filter(entries, func(e runEntry, _ int) bool {
		return strings.HasPrefix(e.name, prefix)
	})
	if len(candidates) == 0 {
		return "", errors.ErrArtifactMissing
	}

	latest := lo.MaxBy(candidates, func(a, b runEntry) bool {
		return a.modTime.After(b.modTime)
	})
	return filepath.Join(runRoot, latest.name), nil
}

// Weights returns the first configured weights file present in runDir.
func (l *Locator) Weights(runDir string) (string, bool) {
	for _, rel := range l.weights {
		path := filepath.Join(runDir, rel)
		if l.platform.FileExists(path) {
			return path, true
		}
	}
	return "", false
}

// ListRuns returns every run under runRoot, newest first.
func (l *Locator) ListRuns(runRoot string) ([]Run, error) {
	entries, err := l.runEntries(runRoot)
	if err != nil {
		return nil, err
	}

	runs := lo.Map(entries, func(e runEntry, _ int) Run {
		run := Run{Name: e.name, ModTime: e.modTime}
		if weights, ok := l.Weights(filepath.Join(runRoot, e.name)); ok {
			run.HasWeights = true
			run.Weights, _ = filepath.Rel(filepath.Join(runRoot, e.name), weights)
		}
		return run
	})
	sort.SliceStable(runs, func(i, j int) bool {
		return runs[i].ModTime.After(runs[j].ModTime)
	})
	return runs, nil
}

// RunDir resolves a run name to its directory, rejecting names that could
// escape runRoot.
func (l *Locator) RunDir(runRoot, name string) (string, error) {
	if !domain.ValidName(name) {
		return "", fmt.Errorf("%w: invalid run name %q", errors.ErrRunNotFound, name)
	}
	dir := filepath.Join(runRoot, name)
	if !l.platform.DirExists(dir) {
		return "", fmt.Errorf("%w: %s", errors.ErrRunNotFound, name)
	}
	return dir, nil
}
