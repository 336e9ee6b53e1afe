package ci

import (
	"fmt"
	"os"
	"slices"

	"gopkg.in/yaml.v3"

	"github.com/mmr-tortoise/matrixctl/internal/model"
)

// DefaultFileName is the workflow file probed in the repository root
// when --workflow is not given.
const DefaultFileName = "matrix-ci.yaml"

// Events a workflow can bind to.
const (
	EventPush        = "push"
	EventPullRequest = "pull_request"
)

// Workflow describes what a repository event runs.
type Workflow struct {
	// Name labels the workflow in output.
	Name string `yaml:"name" json:"name"`

	// On lists the events that trigger the workflow.
	On []string `yaml:"on" json:"on"`

	// Matrix spans the interpreter/architecture cells.
	Matrix Matrix `yaml:"matrix" json:"matrix"`

	// Envs are the environments each cell runs.
	Envs []string `yaml:"envs" json:"envs"`

	// RunParallel runs a cell's environments concurrently.
	RunParallel bool `yaml:"run-parallel" json:"runParallel"`
}

// Matrix is the cell axes. Every interpreter is paired with every
// architecture.
type Matrix struct {
	Interpreter []string `yaml:"interpreter" json:"interpreter"`
	Arch        []string `yaml:"arch" json:"arch"`
}

// Cell is one matrix point.
type Cell struct {
	Interpreter string `json:"interpreter"`
	Arch        string `json:"arch"`
}

// String renders the cell for logs and summaries.
func (c Cell) String() string {
	return c.Interpreter + "/" + c.Arch
}

// DefaultWorkflow is what runs when no workflow file exists: one cell,
// interpreter 3.8 on x64, running the standard gate environments in
// parallel on both trigger events.
func DefaultWorkflow() *Workflow {
	return &Workflow{
		Name: "gate",
		On:   []string{EventPush, EventPullRequest},
		Matrix: Matrix{
			Interpreter: []string{"3.8"},
			Arch:        []string{"x64"},
		},
		Envs:        []string{"py3", "pep8", "cover"},
		RunParallel: true,
	}
}

// Load reads and validates a workflow file.
func Load(path string) (*Workflow, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, model.WrapCLIError(model.ExitConfigError,
			fmt.Sprintf("failed to read workflow %s", path), err)
	}

	var wf Workflow
	if err := yaml.Unmarshal(data, &wf); err != nil {
		return nil, model.WrapCLIError(model.ExitConfigError,
			fmt.Sprintf("failed to parse workflow %s", path), err)
	}

	if err := wf.Validate(); err != nil {
		return nil, err
	}
	return &wf, nil
}

// Validate checks the workflow is runnable.
func (w *Workflow) Validate() error {
	if len(w.On) == 0 {
		return model.NewCLIError(model.ExitConfigError, "workflow binds no events (empty on:)")
	}
	for _, event := range w.On {
		if event != EventPush && event != EventPullRequest {
			return model.NewCLIError(model.ExitConfigError,
				fmt.Sprintf("workflow binds unknown event %q", event))
		}
	}
	if len(w.Matrix.Interpreter) == 0 || len(w.Matrix.Arch) == 0 {
		return model.NewCLIError(model.ExitConfigError, "workflow matrix has an empty axis")
	}
	if len(w.Envs) == 0 {
		return model.NewCLIError(model.ExitConfigError, "workflow lists no environments")
	}
	return nil
}

// Triggered reports whether the event is bound by this workflow.
func (w *Workflow) Triggered(event string) bool {
	return slices.Contains(w.On, event)
}

// Cells expands the matrix axes into the full cross product, in axis
// order (interpreters outer, architectures inner).
func (w *Workflow) Cells() []Cell {
	cells := make([]Cell, 0, len(w.Matrix.Interpreter)*len(w.Matrix.Arch))
	for _, interp := range w.Matrix.Interpreter {
		for _, arch := range w.Matrix.Arch {
			cells = append(cells, Cell{Interpreter: interp, Arch: arch})
		}
	}
	return cells
}
