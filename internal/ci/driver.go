package ci

import (
	"context"
	"maps"

	"go.uber.org/zap"

	"github.com/mmr-tortoise/matrixctl/internal/config"
	"github.com/mmr-tortoise/matrixctl/internal/model"
	"github.com/mmr-tortoise/matrixctl/internal/runner"
)

// Variables exported into every environment a cell runs, so commands
// can key off the matrix point they execute under.
const (
	VarInterpreter = "MATRIX_INTERPRETER"
	VarArch        = "MATRIX_ARCH"
)

// Result is the outcome of executing a workflow for one event.
type Result struct {
	// Workflow is the executed workflow's name.
	Workflow string `json:"workflow"`

	// Event is the trigger the workflow was evaluated against.
	Event string `json:"event"`

	// Triggered is false when the event is not bound; the run is then a
	// no-op success with no cells.
	Triggered bool `json:"triggered"`

	// Cells holds one entry per executed matrix point.
	Cells []CellResult `json:"cells,omitempty"`
}

// CellResult pairs a matrix point with its run summary.
type CellResult struct {
	Cell    Cell              `json:"cell"`
	Summary *model.RunSummary `json:"summary"`
}

// Succeeded reports the conjunction over all cells. An untriggered run
// succeeds vacuously.
func (r *Result) Succeeded() bool {
	for _, cell := range r.Cells {
		if !cell.Summary.Succeeded() {
			return false
		}
	}
	return true
}

// Driver executes workflows against a loaded configuration.
type Driver struct {
	cfg *config.Config
	log *zap.Logger

	// RunAll executes one cell's environment list. Overridable so tests
	// can substitute a fake; the default backs onto a fresh Runner.
	RunAll func(ctx context.Context, envs []config.Env, parallel int) (*model.RunSummary, error)
}

// NewDriver creates a Driver whose cells run through the standard
// environment runner.
func NewDriver(cfg *config.Config, logger *zap.Logger) *Driver {
	d := &Driver{cfg: cfg, log: logger}
	d.RunAll = func(ctx context.Context, envs []config.Env, parallel int) (*model.RunSummary, error) {
		return runner.New(cfg, logger).RunAll(ctx, envs, parallel)
	}
	return d
}

// Execute runs the workflow for the given event. Unbound events produce
// a no-op success. Every cell runs even when an earlier cell failed, so
// the result reports the whole matrix.
func (d *Driver) Execute(ctx context.Context, wf *Workflow, event string) (*Result, error) {
	result := &Result{Workflow: wf.Name, Event: event}

	if !wf.Triggered(event) {
		d.log.Debug("event not bound by workflow",
			zap.String("workflow", wf.Name), zap.String("event", event))
		return result, nil
	}
	result.Triggered = true

	envs, err := d.cfg.Select(wf.Envs)
	if err != nil {
		return nil, err
	}

	parallel := 1
	if wf.RunParallel {
		parallel = d.cfg.Matrix.Parallel
		if parallel <= 1 {
			parallel = len(envs)
		}
	}

	for _, cell := range wf.Cells() {
		d.log.Debug("running matrix cell",
			zap.String("workflow", wf.Name), zap.Stringer("cell", cell))

		summary, err := d.RunAll(ctx, withCellVariables(envs, cell), parallel)
		if err != nil {
			return nil, err
		}
		result.Cells = append(result.Cells, CellResult{Cell: cell, Summary: summary})
	}
	return result, nil
}

// withCellVariables copies the environments with the cell's matrix
// variables merged into setenv. Workflow-injected variables lose to an
// explicit setenv of the same name.
func withCellVariables(envs []config.Env, cell Cell) []config.Env {
	out := make([]config.Env, len(envs))
	for i, env := range envs {
		setenv := map[string]string{
			VarInterpreter: cell.Interpreter,
			VarArch:        cell.Arch,
		}
		maps.Copy(setenv, env.SetEnv)
		env.SetEnv = setenv
		out[i] = env
	}
	return out
}
