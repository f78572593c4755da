package command

import (
	"bytes"
	"fmt"
	"strings"
	"text/template"

	sprig "github.com/go-task/slim-sprig/v3"
)

// TrainParams feed the training command template.
type TrainParams struct {
	Data    string // dataset manifest (data.yaml)
	Model   string // base weights
	Epochs  int
	ImgSize int
	Batch   int
	Device  string
	Project string // run root
	Name    string // run name prefix
}

// ExportParams feed the export command template.
type ExportParams struct {
	Weights string
	Format  string
	Opset   int
}

// Builder renders argv templates. Every element is rendered on its own so an
// argument never splits into several ones, and empty results are dropped so
// optional arguments can be written as {{ if ... }}.
type Builder struct {
	train  []*template.Template
	export []*template.Template
}

// NewBuilder parses the training and export templates. The export template
// may be empty, which disables the export step.
func NewBuilder(train, export []string) (*Builder, error) {
	if len(train) == 0 {
		return nil, fmt.Errorf("training command template is empty")
	}

	trainTmpl, err := parse("train", train)
	if err != nil {
		return nil, err
	}
	exportTmpl, err := parse("export", export)
	if err != nil {
		return nil, err
	}
	return &Builder{train: trainTmpl, export: exportTmpl}, nil
}

// CanExport reports whether an export command is configured.
func (b *Builder) CanExport() bool {
	return len(b.export) > 0
}

// Train renders the training argv.
func (b *Builder) Train(p TrainParams) ([]string, error) {
	return render(b.train, p)
}

// Export renders the export argv.
func (b *Builder) Export(p ExportParams) ([]string, error) {
	if !b.CanExport() {
		return nil, fmt.Errorf("no export command configured")
	}
	return render(b.export, p)
}

func parse(name string, args []string) ([]*template.Template, error) {
	result := make([]*template.Template, 0, len(args))
	for i, arg := range args {
		t, err := template.New(fmt.Sprintf("%s[%d]", name, i)).
			Funcs(sprig.TxtFuncMap()).
			Option("missingkey=error").
			Parse(arg)
		if err != nil {
			return nil, fmt.Errorf("parse %s command argument %d: %w", name, i, err)
		}
		result = append(result, t)
	}
	return result, nil
}

func render(tmpls []*template.Template, data any) ([]string, error) {
	argv := make([]string, 0, len(tmpls))
	var buf bytes.Buffer
	for _, t := range tmpls {
		buf.Reset()
		if err := t.Execute(&buf, data); err != nil {
			return nil, fmt.Errorf("render %s: %w", t.Name(), err)
		}
		if arg := buf.String(); strings.TrimSpace(arg) != "" {
			argv = append(argv, arg)
		}
	}
	if len(argv) == 0 {
		return nil, fmt.Errorf("command rendered to nothing")
	}
	return argv, nil
}
