package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmr-tortoise/matrixctl/internal/model"
)

// TestLoad_INI exercises the full INI fixture: matrix settings, base
// inheritance, per-env overrides, and both policy sections.
func TestLoad_INI(t *testing.T) {
	cfg, err := Load("testdata", "")
	require.NoError(t, err)

	assert.Equal(t, []string{"py3", "pep8", "cover"}, cfg.Matrix.EnvList)
	assert.Equal(t, 4, cfg.Matrix.Parallel)
	assert.Equal(t, model.IsolationProcess, cfg.Matrix.Isolation)
	assert.Equal(t, ".matrix", cfg.Matrix.WorkDir)
	assert.Equal(t, filepath.Dir(cfg.Path), cfg.RootDir)

	require.Contains(t, cfg.Envs, "py3")
	py3 := cfg.Envs["py3"]
	assert.Equal(t, "unit tests", py3.Description)
	assert.Equal(t, []string{"stestr run {posargs}"}, py3.Commands)
	// Inherited from [env].
	assert.Equal(t, []string{"BRANCH_NAME", "CLIENT_NAME", "DEFAULT_REPO", "PYTHON*"}, py3.PassEnv)
	assert.Equal(t, []string{"./tools/bootstrap.sh {envdir}"}, py3.Provision)
	assert.Equal(t, "ignore", py3.SetEnv["PYTHONWARNINGS"])

	// Per-env setenv overrides merge over the base.
	cover := cfg.Envs["cover"]
	assert.Equal(t, "coverage run --parallel-mode", cover.SetEnv["PYTHON"])
	assert.Equal(t, "ignore", cover.SetEnv["PYTHONWARNINGS"])
	assert.Equal(t, "coverage.xml", cover.CoverageReport)
	assert.Len(t, cover.Commands, 4)

	assert.InDelta(t, 82.0, cfg.Coverage.Threshold, 0.001)
	assert.Equal(t, []string{"html", "xml"}, cfg.Coverage.Reports)
	assert.Equal(t, "cover", cfg.Coverage.Output)

	assert.Equal(t, []string{"E125", "E251", "W503", "W504", "E305", "E731", "E117", "W605", "F632"}, cfg.Lint.Ignore)
	assert.Equal(t, []string{".matrix/*", "build/*"}, cfg.Lint.Exclude)
	assert.Equal(t, 99, cfg.Lint.MaxLineLength)
	assert.Equal(t, "checker .", cfg.Lint.Command)
}

// TestLoad_TOML verifies the alternate format produces the same shapes.
func TestLoad_TOML(t *testing.T) {
	cfg, err := Load("testdata", filepath.Join("testdata", "matrix.toml"))
	require.NoError(t, err)

	assert.Equal(t, []string{"py3", "pep8"}, cfg.Matrix.EnvList)
	assert.Equal(t, 2, cfg.Matrix.Parallel)

	require.Contains(t, cfg.Envs, "py3")
	assert.Equal(t, []string{"stestr run {posargs}"}, cfg.Envs["py3"].Commands)
	assert.Equal(t, "ignore", cfg.Envs["py3"].SetEnv["PYTHONWARNINGS"])

	assert.InDelta(t, 90.5, cfg.Coverage.Threshold, 0.001)
	assert.Equal(t, []string{"xml"}, cfg.Coverage.Reports)
	assert.Equal(t, "reports", cfg.Coverage.Output)
	assert.Equal(t, []string{"E501"}, cfg.Lint.Ignore)
	assert.Equal(t, 120, cfg.Lint.MaxLineLength)
}

// TestLoad_Defaults checks that a minimal file inherits every policy
// default: 82% threshold, the standard ignore set, html+xml reports.
func TestLoad_Defaults(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "matrix.ini"), `
[env:py3]
commands = true
`)

	cfg, err := Load(dir, "")
	require.NoError(t, err)

	assert.InDelta(t, DefaultCoverageThreshold, cfg.Coverage.Threshold, 0.001)
	assert.Equal(t, DefaultLintIgnore, cfg.Lint.Ignore)
	assert.Equal(t, DefaultCoverageReports, cfg.Coverage.Reports)
	assert.Equal(t, DefaultMaxLineLength, cfg.Lint.MaxLineLength)
	assert.Equal(t, DefaultWorkDir, cfg.Matrix.WorkDir)
	assert.Equal(t, model.IsolationProcess, cfg.Matrix.Isolation)
	assert.Equal(t, 0, cfg.Matrix.Parallel)
}

// TestLoad_NoConfig verifies the error contract when nothing is found.
func TestLoad_NoConfig(t *testing.T) {
	_, err := Load(t.TempDir(), "")
	require.Error(t, err)

	var cliErr *model.CLIError
	require.ErrorAs(t, err, &cliErr)
	assert.Equal(t, model.ExitConfigError, cliErr.Code)
}

// TestLoad_InvalidThreshold checks the [0,100] invariant from the data
// model: a percentage outside the range must be rejected at load time.
func TestLoad_InvalidThreshold(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "matrix.ini"), `
[env:py3]
commands = true

[coverage]
threshold = 120
`)

	_, err := Load(dir, "")
	require.Error(t, err)

	var cliErr *model.CLIError
	require.ErrorAs(t, err, &cliErr)
	assert.Equal(t, model.ExitConfigError, cliErr.Code)
	assert.Contains(t, err.Error(), "out of range")
}

// TestLoad_EnvlistReferencesUndefined rejects envlist entries that do not
// name a defined environment.
func TestLoad_EnvlistReferencesUndefined(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "matrix.ini"), `
[matrix]
envlist = py3,ghost

[env:py3]
commands = true
`)

	_, err := Load(dir, "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ghost")
}

// TestLoad_LocalOverride layers matrix.local.json (with comments) over
// the file configuration.
func TestLoad_LocalOverride(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "matrix.ini"), `
[matrix]
envlist = py3
parallel = 4

[env:py3]
setenv =
    A = file
commands = true
`)
	writeFile(t, filepath.Join(dir, "matrix.local.json"), `
{
  // personal machine: keep it quiet
  "parallel": 1,
  "setenv": {"A": "local", "B": "added"},
  "passenv": ["SSH_AUTH_SOCK"]
}
`)

	cfg, err := Load(dir, "")
	require.NoError(t, err)

	assert.Equal(t, 1, cfg.Matrix.Parallel)
	assert.Equal(t, "local", cfg.Envs["py3"].SetEnv["A"])
	assert.Equal(t, "added", cfg.Envs["py3"].SetEnv["B"])
	assert.Contains(t, cfg.Envs["py3"].PassEnv, "SSH_AUTH_SOCK")
}

// TestConfig_Select covers default selection, explicit selection, and the
// unknown-environment error code.
func TestConfig_Select(t *testing.T) {
	cfg, err := Load("testdata", "")
	require.NoError(t, err)

	envs, err := cfg.Select(nil)
	require.NoError(t, err)
	require.Len(t, envs, 3)
	assert.Equal(t, "py3", envs[0].Name)

	envs, err = cfg.Select([]string{"pep8"})
	require.NoError(t, err)
	require.Len(t, envs, 1)
	assert.Equal(t, "pep8", envs[0].Name)

	_, err = cfg.Select([]string{"nope"})
	require.Error(t, err)
	var cliErr *model.CLIError
	require.ErrorAs(t, err, &cliErr)
	assert.Equal(t, model.ExitEnvNotFound, cliErr.Code)
}

// TestConfig_DuplicateCommandEnvs detects the historical pep8/flake8
// redundancy: two environments with identical command lists.
func TestConfig_DuplicateCommandEnvs(t *testing.T) {
	cfg, err := Load("testdata", "")
	require.NoError(t, err)

	groups := cfg.DuplicateCommandEnvs()
	require.Len(t, groups, 1)
	assert.Equal(t, []string{"flake8", "pep8"}, groups[0])
}

// TestSplitList covers both separator styles.
func TestSplitList(t *testing.T) {
	assert.Equal(t, []string{"a", "b", "c"}, splitList("a, b,c"))
	assert.Equal(t, []string{"x", "y"}, splitList("\n  x\n  y\n"))
	assert.Empty(t, splitList("  "))
}

// TestParseSetEnv covers the KEY = VALUE block grammar.
func TestParseSetEnv(t *testing.T) {
	setenv := parseSetEnv("A = 1\nB=two words\nnot-a-pair\nC =")
	assert.Equal(t, map[string]string{"A": "1", "B": "two words", "C": ""}, setenv)
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}
