package ci

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmr-tortoise/matrixctl/internal/model"
)

const sampleWorkflow = `name: gate
on: [push, pull_request]
matrix:
  interpreter: ["3.8"]
  arch: ["x64"]
envs: [py3, pep8, cover]
run-parallel: true
`

func writeWorkflow(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), DefaultFileName)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

// TestLoad parses the standard workflow shape.
func TestLoad(t *testing.T) {
	wf, err := Load(writeWorkflow(t, sampleWorkflow))
	require.NoError(t, err)

	assert.Equal(t, "gate", wf.Name)
	assert.Equal(t, []string{EventPush, EventPullRequest}, wf.On)
	assert.Equal(t, []string{"py3", "pep8", "cover"}, wf.Envs)
	assert.True(t, wf.RunParallel)
	assert.Equal(t, []Cell{{Interpreter: "3.8", Arch: "x64"}}, wf.Cells())
}

// TestLoad_Errors covers the missing-file and invalid-content paths.
func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"not yaml", "on: [push\n  broken"},
		{"no events", "name: x\nmatrix:\n  interpreter: [\"3.8\"]\n  arch: [x64]\nenvs: [py3]\n"},
		{"unknown event", "on: [deploy]\nmatrix:\n  interpreter: [\"3.8\"]\n  arch: [x64]\nenvs: [py3]\n"},
		{"empty axis", "on: [push]\nmatrix:\n  interpreter: []\n  arch: [x64]\nenvs: [py3]\n"},
		{"no envs", "on: [push]\nmatrix:\n  interpreter: [\"3.8\"]\n  arch: [x64]\nenvs: []\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeWorkflow(t, tt.content))
			require.Error(t, err)
			var cliErr *model.CLIError
			require.ErrorAs(t, err, &cliErr)
			assert.Equal(t, model.ExitConfigError, cliErr.Code)
		})
	}

	t.Run("missing file", func(t *testing.T) {
		_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
		assert.Error(t, err)
	})
}

// TestDefaultWorkflow pins the shipped trigger contract: one 3.8/x64
// cell running the gate environments in parallel.
func TestDefaultWorkflow(t *testing.T) {
	wf := DefaultWorkflow()
	require.NoError(t, wf.Validate())

	assert.True(t, wf.Triggered(EventPush))
	assert.True(t, wf.Triggered(EventPullRequest))
	assert.False(t, wf.Triggered("deploy"))

	cells := wf.Cells()
	require.Len(t, cells, 1)
	assert.Equal(t, "3.8", cells[0].Interpreter)
	assert.Equal(t, "x64", cells[0].Arch)
	assert.Equal(t, "3.8/x64", cells[0].String())

	assert.Equal(t, []string{"py3", "pep8", "cover"}, wf.Envs)
	assert.True(t, wf.RunParallel)
}

// TestWorkflow_Cells is the cross product in axis order.
func TestWorkflow_Cells(t *testing.T) {
	wf := &Workflow{Matrix: Matrix{
		Interpreter: []string{"3.8", "3.9"},
		Arch:        []string{"x64", "arm64"},
	}}
	assert.Equal(t, []Cell{
		{"3.8", "x64"}, {"3.8", "arm64"},
		{"3.9", "x64"}, {"3.9", "arm64"},
	}, wf.Cells())
}
