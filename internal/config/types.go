package config

import (
	"fmt"
	"sort"
	"strings"

	"github.com/mmr-tortoise/matrixctl/internal/model"
)

// Default file names probed in the working directory, in order.
const (
	// DefaultININame is the primary configuration file name.
	DefaultININame = "matrix.ini"

	// DefaultTOMLName is the alternate configuration file name.
	DefaultTOMLName = "matrix.toml"

	// LocalOverrideName is the optional per-developer JSONC overlay.
	// It is never committed; .gitignore in consuming repos is expected
	// to exclude it.
	LocalOverrideName = "matrix.local.json"
)

// Policy defaults. The coverage threshold and lint ignore set mirror the
// policy this tool enforces out of the box; both are overridable per repo.
const (
	// DefaultCoverageThreshold is the minimum acceptable aggregate
	// coverage percentage when a [coverage] section does not set one.
	DefaultCoverageThreshold = 82.0

	// DefaultMaxLineLength is the line length limit used by the lint
	// gate for long-line rule codes.
	DefaultMaxLineLength = 99

	// DefaultWorkDir is where per-environment directories and journals
	// live, relative to the configuration file.
	DefaultWorkDir = ".matrix"

	// DefaultCoverageOutput is the directory coverage reports are
	// written into.
	DefaultCoverageOutput = "cover"
)

// DefaultLintIgnore is the style-rule exclusion set applied when the
// [lint] section does not define one.
var DefaultLintIgnore = []string{
	"E125", "E251", "W503", "W504", "E305", "E731", "E117", "W605", "F632",
}

// DefaultCoverageReports lists the report formats produced when the
// [coverage] section does not choose a subset.
var DefaultCoverageReports = []string{"html", "xml"}

// Config is the fully resolved matrix configuration for one invocation.
// It is parsed once and never mutated afterwards.
type Config struct {
	// Path is the absolute path of the configuration file that was loaded.
	Path string

	// RootDir is the directory containing the configuration file. All
	// relative paths in the configuration resolve against it, and it is
	// the working directory for every executed command.
	RootDir string

	// Matrix holds run-wide settings from the [matrix] section.
	Matrix MatrixSettings

	// Base is the shared [env] definition inherited by every environment.
	Base Env

	// Envs maps environment name to its merged definition (base + own).
	Envs map[string]Env

	// Coverage is the coverage-threshold policy from [coverage].
	Coverage CoveragePolicy

	// Lint is the style-checker policy from [lint].
	Lint LintPolicy
}

// MatrixSettings holds the [matrix] section.
type MatrixSettings struct {
	// EnvList is the default environment selection when the user does
	// not pass -e. Order is preserved for serial runs.
	EnvList []string

	// Parallel is the maximum number of environments run concurrently.
	// Zero means serial execution.
	Parallel int

	// Isolation selects process or container execution.
	Isolation model.IsolationMode

	// WorkDir is the journal/environment directory, relative to RootDir
	// unless absolute.
	WorkDir string
}

// Env is one environment definition after base merging. Commands and
// provisioning steps are kept as raw lines; substitution happens at
// execution time because {posargs} depends on the invocation.
type Env struct {
	// Name is the environment's identifier (the NAME in [env:NAME]).
	Name string

	// Description is an optional one-line summary shown by "list".
	Description string

	// PassEnv lists host environment variable names, or glob patterns
	// such as "PYTHON*", allowed through to commands.
	PassEnv []string

	// SetEnv maps variable names to values set for every command.
	// Values may contain {placeholder} substitutions.
	SetEnv map[string]string

	// Provision is the ordered list of command lines run once to prepare
	// the environment. Re-run only when the provision hash changes.
	Provision []string

	// Commands is the ordered list of command lines that make up the
	// environment's main run. Any non-zero exit aborts the environment.
	Commands []string

	// Image is the container image used under container isolation.
	Image string

	// CoverageReport, when set, is the path (relative to RootDir) of the
	// Cobertura XML the commands produce; its presence arms the coverage
	// threshold gate for this environment.
	CoverageReport string
}

// CoveragePolicy holds the [coverage] section.
type CoveragePolicy struct {
	// Threshold is the minimum acceptable aggregate coverage percentage,
	// in [0,100].
	Threshold float64

	// Reports is the subset of {"html", "xml"} to generate.
	Reports []string

	// Output is the directory reports are written into, relative to
	// RootDir unless absolute.
	Output string
}

// WantsReport reports whether the given format is enabled.
func (p CoveragePolicy) WantsReport(format string) bool {
	for _, r := range p.Reports {
		if strings.EqualFold(r, format) {
			return true
		}
	}
	return false
}

// LintPolicy holds the [lint] section.
type LintPolicy struct {
	// Ignore is the set of rule codes deliberately not enforced.
	Ignore []string

	// Exclude is a list of path globs; violations under matching paths
	// are dropped.
	Exclude []string

	// MaxLineLength is the limit consulted for long-line rule codes.
	MaxLineLength int

	// Command is the style checker invocation used when the lint gate is
	// asked to produce its own report instead of reading one.
	Command string
}

// EnvNames returns all defined environment names in sorted order.
// Sorting keeps "list" and "config" output deterministic regardless of
// map iteration order.
func (c *Config) EnvNames() []string {
	names := make([]string, 0, len(c.Envs))
	for name := range c.Envs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Select resolves the requested environment names against the
// configuration. An empty request selects the configured envlist.
// Returns a CLIError with ExitEnvNotFound for unknown names.
func (c *Config) Select(requested []string) ([]Env, error) {
	names := requested
	if len(names) == 0 {
		names = c.Matrix.EnvList
	}

	envs := make([]Env, 0, len(names))
	for _, name := range names {
		env, ok := c.Envs[name]
		if !ok {
			return nil, model.NewCLIError(model.ExitEnvNotFound,
				fmt.Sprintf("environment %q is not defined (known: %s)",
					name, strings.Join(c.EnvNames(), ", ")))
		}
		envs = append(envs, env)
	}
	return envs, nil
}

// DuplicateCommandEnvs groups environments whose command lists are
// byte-identical after trimming. Historically repos carry two lint
// environments running the same checker; this powers the warning emitted
// by "matrixctl config" rather than rejecting such configurations.
func (c *Config) DuplicateCommandEnvs() [][]string {
	byCommands := make(map[string][]string)
	for name, env := range c.Envs {
		if len(env.Commands) == 0 {
			continue
		}
		key := strings.Join(env.Commands, "\n")
		byCommands[key] = append(byCommands[key], name)
	}

	var groups [][]string
	for _, names := range byCommands {
		if len(names) > 1 {
			sort.Strings(names)
			groups = append(groups, names)
		}
	}
	sort.Slice(groups, func(i, j int) bool { return groups[i][0] < groups[j][0] })
	return groups
}

// mergeEnv layers an environment's own definition over the shared base.
// List and scalar fields replace the base when set; SetEnv is a key-wise
// merge so per-environment entries override shared ones.
func mergeEnv(base Env, own Env) Env {
	merged := own

	if len(merged.PassEnv) == 0 {
		merged.PassEnv = base.PassEnv
	}
	if len(merged.Provision) == 0 {
		merged.Provision = base.Provision
	}
	if len(merged.Commands) == 0 {
		merged.Commands = base.Commands
	}
	if merged.Image == "" {
		merged.Image = base.Image
	}
	if merged.CoverageReport == "" {
		merged.CoverageReport = base.CoverageReport
	}
	if merged.Description == "" {
		merged.Description = base.Description
	}

	if len(base.SetEnv) > 0 {
		setenv := make(map[string]string, len(base.SetEnv)+len(own.SetEnv))
		for k, v := range base.SetEnv {
			setenv[k] = v
		}
		for k, v := range own.SetEnv {
			setenv[k] = v
		}
		merged.SetEnv = setenv
	}

	return merged
}

// Validate checks the invariants that hold for every well-formed
// configuration. It is called by Load after parsing and merging.
func (c *Config) Validate() error {
	if c.Coverage.Threshold < 0 || c.Coverage.Threshold > 100 {
		return model.NewCLIError(model.ExitConfigError,
			fmt.Sprintf("coverage threshold %.1f out of range [0,100]", c.Coverage.Threshold))
	}
	if c.Matrix.Parallel < 0 {
		return model.NewCLIError(model.ExitConfigError,
			fmt.Sprintf("parallel must not be negative (got %d)", c.Matrix.Parallel))
	}
	if !c.Matrix.Isolation.IsValid() {
		return model.NewCLIError(model.ExitConfigError,
			fmt.Sprintf("invalid isolation mode %q", c.Matrix.Isolation))
	}
	if c.Lint.MaxLineLength <= 0 {
		return model.NewCLIError(model.ExitConfigError,
			fmt.Sprintf("lint max line length must be positive (got %d)", c.Lint.MaxLineLength))
	}

	for name := range c.Envs {
		if err := model.ValidateName(name); err != nil {
			return model.WrapCLIError(model.ExitConfigError, "invalid environment definition", err)
		}
	}

	for _, format := range c.Coverage.Reports {
		if !strings.EqualFold(format, "html") && !strings.EqualFold(format, "xml") {
			return model.NewCLIError(model.ExitConfigError,
				fmt.Sprintf("unknown coverage report format %q (valid: html, xml)", format))
		}
	}

	// Every envlist entry must name a defined environment so that a bare
	// "matrixctl run" cannot fail halfway through selection.
	for _, name := range c.Matrix.EnvList {
		if _, ok := c.Envs[name]; !ok {
			return model.NewCLIError(model.ExitConfigError,
				fmt.Sprintf("envlist references undefined environment %q", name))
		}
	}

	return nil
}
