package dataset

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/ehsaniara/annotrain/pkg/errors"
	"github.com/ehsaniara/annotrain/pkg/platform"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

// newTask creates a task directory with n labelled images, one unlabelled
// image and a labels.json defining cat and dog.
func newTask(t *testing.T, n int) string {
	t.Helper()
	dir := t.TempDir()
	for i := 0; i < n; i++ {
		name := filepath.Join(dir, "img"+string(rune('a'+i)))
		writeFile(t, name+".jpg", "jpeg")
		writeFile(t, name+".txt", "0 0.5 0.5 0.1 0.1")
	}
	writeFile(t, filepath.Join(dir, "orphan.PNG"), "png")
	writeFile(t, filepath.Join(dir, "notes.md"), "not an image")
	writeFile(t, filepath.Join(dir, LabelsFile), `[{"name":"cat","color":"#f00"},{"name":"dog","color":"#0f0"}]`)
	return dir
}

func TestPrepare_SplitsLabelledImages(t *testing.T) {
	dir := newTask(t, 10)
	p := NewPreparer(platform.NewPlatform(), "").WithSeed(7)

	result, err := p.Prepare(dir, 0.8)
	require.NoError(t, err)

	// 11 images: 8 go to train, 3 to val, the orphan is skipped wherever it lands.
	assert.Equal(t, 11, result.Images)
	assert.Equal(t, 10, result.Train+result.Val)
	assert.Equal(t, []string{"cat", "dog"}, result.Classes)
	assert.Contains(t, result.Message(), "found 11 images, split into 8 train and 3 val")

	trainImages, err := os.ReadDir(filepath.Join(dir, DefaultDirName, "images", "train"))
	require.NoError(t, err)
	trainLabels, err := os.ReadDir(filepath.Join(dir, DefaultDirName, "labels", "train"))
	require.NoError(t, err)
	assert.Len(t, trainImages, result.Train)
	assert.Len(t, trainLabels, result.Train)

	raw, err := os.ReadFile(result.ManifestPath)
	require.NoError(t, err)
	var m manifest
	require.NoError(t, yaml.Unmarshal(raw, &m))
	absOut, _ := filepath.Abs(filepath.Join(dir, DefaultDirName))
	assert.Equal(t, manifest{Path: absOut, Train: "images/train", Val: "images/val", NC: 2, Names: []string{"cat", "dog"}}, m)
}

func TestPrepare_ReplacesPreviousSplit(t *testing.T) {
	dir := newTask(t, 4)
	stale := filepath.Join(dir, DefaultDirName, "images", "train", "stale.jpg")
	require.NoError(t, os.MkdirAll(filepath.Dir(stale), 0755))
	writeFile(t, stale, "old")

	_, err := NewPreparer(platform.NewPlatform(), "").Prepare(dir, 0.5)
	require.NoError(t, err)
	assert.NoFileExists(t, stale)
}

func TestPrepare_Errors(t *testing.T) {
	tests := []struct {
		name    string
		setup   func(t *testing.T) string
		ratio   float64
		message string
	}{
		{
			name:    "bad ratio",
			setup:   func(t *testing.T) string { return newTask(t, 2) },
			ratio:   0,
			message: "train ratio",
		},
		{
			name: "missing labels.json",
			setup: func(t *testing.T) string {
				dir := newTask(t, 2)
				require.NoError(t, os.Remove(filepath.Join(dir, LabelsFile)))
				return dir
			},
			ratio:   0.8,
			message: "labels.json not found",
		},
		{
			name: "no images",
			setup: func(t *testing.T) string {
				dir := t.TempDir()
				writeFile(t, filepath.Join(dir, LabelsFile), `[{"name":"cat"}]`)
				return dir
			},
			ratio:   0.8,
			message: "no images found",
		},
		{
			name: "no labels for any image",
			setup: func(t *testing.T) string {
				dir := t.TempDir()
				writeFile(t, filepath.Join(dir, "a.jpg"), "jpeg")
				writeFile(t, filepath.Join(dir, LabelsFile), `[{"name":"cat"}]`)
				return dir
			},
			ratio:   0.8,
			message: "matching .txt label",
		},
		{
			name: "malformed labels.json",
			setup: func(t *testing.T) string {
				dir := newTask(t, 2)
				writeFile(t, filepath.Join(dir, LabelsFile), `{"name":"cat"}`)
				return dir
			},
			ratio:   0.8,
			message: "not a list of labels",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewPreparer(platform.NewPlatform(), "").Prepare(tt.setup(t), tt.ratio)
			require.Error(t, err)
			assert.ErrorIs(t, err, errors.ErrDatasetInvalid)
			assert.Contains(t, err.Error(), tt.message)
		})
	}
}

func TestPrepare_KeepsClassPositions(t *testing.T) {
	dir := newTask(t, 3)
	writeFile(t, filepath.Join(dir, LabelsFile), `[{"name":"cat"},{"name":""},{"name":"dog"}]`)

	result, err := NewPreparer(platform.NewPlatform(), "").Prepare(dir, 0.5)
	require.NoError(t, err)
	assert.Equal(t, []string{"cat", "", "dog"}, result.Classes)

	raw, err := os.ReadFile(result.ManifestPath)
	require.NoError(t, err)
	var m manifest
	require.NoError(t, yaml.Unmarshal(raw, &m))
	assert.Equal(t, 3, m.NC)
	assert.Equal(t, []string{"cat", "", "dog"}, m.Names)
}

// recordingOS counts the file reads and writes that go through the platform.
type recordingOS struct {
	platform.OSOperations
	reads, writes, opens, creates []string
}

func (r *recordingOS) ReadFile(name string) ([]byte, error) {
	r.reads = append(r.reads, filepath.Base(name))
	return r.OSOperations.ReadFile(name)
}

func (r *recordingOS) WriteFile(name string, data []byte, perm os.FileMode) error {
	r.writes = append(r.writes, filepath.Base(name))
	return r.OSOperations.WriteFile(name, data, perm)
}

func (r *recordingOS) Open(name string) (*os.File, error) {
	r.opens = append(r.opens, name)
	return r.OSOperations.Open(name)
}

func (r *recordingOS) Create(name string) (*os.File, error) {
	r.creates = append(r.creates, name)
	return r.OSOperations.Create(name)
}

func TestPrepare_FileAccessGoesThroughPlatform(t *testing.T) {
	dir := newTask(t, 2)
	rec := &recordingOS{OSOperations: platform.NewPlatform()}

	result, err := NewPreparer(rec, "").Prepare(dir, 0.5)
	require.NoError(t, err)

	assert.Equal(t, []string{LabelsFile}, rec.reads)
	assert.Equal(t, []string{ManifestFile}, rec.writes)
	// one image and one label file per copied sample
	assert.Len(t, rec.opens, 2*(result.Train+result.Val))
	assert.Len(t, rec.creates, 2*(result.Train+result.Val))
}
