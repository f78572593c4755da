// Package dataset turns an annotated task directory into a YOLO training set.
package dataset

import (
	"encoding/json"
	"fmt"
	"io"
	"math/rand/v2"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/samber/lo"
	"gopkg.in/yaml.v3"

	"github.com/ehsaniara/annotrain/pkg/errors"
	"github.com/ehsaniara/annotrain/pkg/logger"
	"github.com/ehsaniara/annotrain/pkg/platform"
)

const (
	DefaultDirName = "TrainData"
	LabelsFile     = "labels.json"
	ManifestFile   = "data.yaml"
)

var imageExtensions = []string{".jpg", ".jpeg", ".png", ".bmp"}

// Result describes a prepared training set.
type Result struct {
	ManifestPath string
	Classes      []string
	Images       int
	Train        int // labelled samples copied into the training split
	Val          int // labelled samples copied into the validation split
	Lines        []string
}

// Message returns the human readable preparation summary.
func (r *Result) Message() string {
	return strings.Join(r.Lines, "\n")
}

// manifest is the data.yaml layout, fields in the order the trainer expects.
type manifest struct {
	Path  string   `yaml:"path"`
	Train string   `yaml:"train"`
	Val   string   `yaml:"val"`
	NC    int      `yaml:"nc"`
	Names []string `yaml:"names"`
}

type label struct {
	Name string `json:"name"`
}

// Preparer splits the labelled images of a task into train and val sets.
type Preparer struct {
	platform platform.OSOperations
	dirName  string
	logger   *logger.Logger

	mu  sync.Mutex
	rng *rand.Rand
}

// NewPreparer creates a preparer writing into <taskDir>/<dirName>.
func NewPreparer(p platform.OSOperations, dirName string) *Preparer {
	if dirName == "" {
		dirName = DefaultDirName
	}
	return &Preparer{
		platform: p,
		dirName:  dirName,
		logger:   logger.WithField("component", "dataset"),
		rng:      rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())),
	}
}

// WithSeed makes the split reproducible.
func (p *Preparer) WithSeed(seed uint64) *Preparer {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.rng = rand.New(rand.NewPCG(seed, seed))
	return p
}

// Prepare rebuilds <taskDir>/TrainData from the images in taskDir that have
// a matching .txt label file, and writes data.yaml. Errors wrap
// errors.ErrDatasetInvalid and carry a message fit for the user.
func (p *Preparer) Prepare(taskDir string, trainRatio float64) (*Result, error) {
	if trainRatio <= 0 || trainRatio > 1 {
		return nil, invalid("train ratio must be in (0, 1], got %v", trainRatio)
	}

	classes, err := p.readClasses(taskDir)
	if err != nil {
		return nil, err
	}

	entries, err := p.platform.ReadDir(taskDir)
	if err != nil {
		return nil, fmt.Errorf("read task directory: %w", err)
	}
	images := lo.FilterMap(entries, func(e os.DirEntry, _ int) (string, bool) {
		ext := strings.ToLower(filepath.Ext(e.Name()))
		return e.Name(), !e.IsDir() && lo.Contains(imageExtensions, ext)
	})
	if len(images) == 0 {
		return nil, invalid("no images found in the task directory")
	}

	p.mu.Lock()
	p.rng.Shuffle(len(images), func(i, j int) { images[i], images[j] = images[j], images[i] })
	p.mu.Unlock()

	trainCount := int(float64(len(images)) * trainRatio)
	trainImages, valImages := images[:trainCount], images[trainCount:]

	outDir := filepath.Join(taskDir, p.dirName)
	if err := p.platform.RemoveAll(outDir); err != nil {
		return nil, fmt.Errorf("clear previous split: %w", err)
	}

	result := &Result{Images: len(images), Classes: classes}
	result.Lines = append(result.Lines,
		fmt.Sprintf("found %d images, split into %d train and %d val", len(images), len(trainImages), len(valImages)))

	if result.Train, err = p.copySplit(taskDir, outDir, "train", trainImages); err != nil {
		return nil, err
	}
	if result.Val, err = p.copySplit(taskDir, outDir, "val", valImages); err != nil {
		return nil, err
	}
	result.Lines = append(result.Lines,
		fmt.Sprintf("copied %d labelled training samples", result.Train),
		fmt.Sprintf("copied %d labelled validation samples", result.Val))

	if result.Train == 0 && result.Val == 0 {
		return nil, invalid("none of the images has a matching .txt label file")
	}

	absOut, err := filepath.Abs(outDir)
	if err != nil {
		return nil, err
	}
	data, err := yaml.Marshal(&manifest{
		Path:  absOut,
		Train: "images/train",
		Val:   "images/val",
		NC:    len(classes),
		Names: classes,
	})
	if err != nil {
		return nil, fmt.Errorf("encode %s: %w", ManifestFile, err)
	}
	result.ManifestPath = filepath.Join(outDir, ManifestFile)
	if err := p.platform.WriteFile(result.ManifestPath, data, 0644); err != nil {
		return nil, fmt.Errorf("write %s: %w", ManifestFile, err)
	}

	result.Lines = append(result.Lines,
		fmt.Sprintf("wrote %s with %d classes", ManifestFile, len(classes)),
		"dataset ready, training will start shortly...")

	p.logger.Info("dataset prepared", "taskDir", taskDir, "train", result.Train, "val", result.Val, "classes", len(classes))
	return result, nil
}

func (p *Preparer) readClasses(taskDir string) ([]string, error) {
	raw, err := p.platform.ReadFile(filepath.Join(taskDir, LabelsFile))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, invalid("%s not found, cannot determine the classes", LabelsFile)
		}
		return nil, fmt.Errorf("read %s: %w", LabelsFile, err)
	}

	var labels []label
	if err := json.Unmarshal(raw, &labels); err != nil {
		return nil, invalid("%s is not a list of labels: %v", LabelsFile, err)
	}
	// Class ids are list positions, so every entry is kept, blank names included.
	classes := lo.Map(labels, func(l label, _ int) string { return l.Name })
	if len(classes) == 0 {
		return nil, invalid("%s defines no classes", LabelsFile)
	}
	return classes, nil
}

// copySplit copies the images with a label file into images/<split> and
// labels/<split>. It returns the number of samples copied.
func (p *Preparer) copySplit(taskDir, outDir, split string, images []string) (int, error) {
	imageDir := filepath.Join(outDir, "images", split)
	labelDir := filepath.Join(outDir, "labels", split)
	for _, dir := range []string{imageDir, labelDir} {
		if err := p.platform.MkdirAll(dir, 0755); err != nil {
			return 0, fmt.Errorf("create %s: %w", dir, err)
		}
	}

	copied := 0
	for _, img := range images {
		labelName := strings.TrimSuffix(img, filepath.Ext(img)) + ".txt"
		labelPath := filepath.Join(taskDir, labelName)
		if !p.platform.FileExists(labelPath) {
			continue
		}
		if err := p.copyFile(filepath.Join(taskDir, img), filepath.Join(imageDir, img)); err != nil {
			return copied, err
		}
		if err := p.copyFile(labelPath, filepath.Join(labelDir, labelName)); err != nil {
			return copied, err
		}
		copied++
	}
	return copied, nil
}

func (p *Preparer) copyFile(src, dst string) error {
	in, err := p.platform.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := p.platform.Create(dst)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close()
		return fmt.Errorf("copy %s: %w", filepath.Base(src), err)
	}
	return out.Close()
}

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", errors.ErrDatasetInvalid, fmt.Sprintf(format, args...))
}
