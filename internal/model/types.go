package model

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

// EnvStatus represents the outcome state of a single environment run.
// The state transitions are:
//
//	[Selected] → Pending → Running → Passed | Failed | Error
//	[Selected] → Skipped (environment filtered out before execution)
type EnvStatus string

const (
	// StatusPending indicates the environment is queued but not started.
	StatusPending EnvStatus = "pending"

	// StatusRunning indicates the environment's command list is executing.
	StatusRunning EnvStatus = "running"

	// StatusPassed indicates every command in the environment exited zero
	// and all armed gates (coverage) held.
	StatusPassed EnvStatus = "passed"

	// StatusFailed indicates a command exited non-zero or a gate tripped.
	// Execution of the environment stops at the first failure.
	StatusFailed EnvStatus = "failed"

	// StatusError indicates the environment could not be executed at all
	// (provisioning failure, missing binary, unreachable container runtime).
	StatusError EnvStatus = "error"

	// StatusSkipped indicates the environment was deselected for this run.
	StatusSkipped EnvStatus = "skipped"
)

// String returns the string representation of EnvStatus.
// This satisfies fmt.Stringer for CLI output and logging.
func (s EnvStatus) String() string {
	return string(s)
}

// IsValid checks whether the EnvStatus value is one of the
// predefined states.
func (s EnvStatus) IsValid() bool {
	switch s {
	case StatusPending, StatusRunning, StatusPassed, StatusFailed, StatusError, StatusSkipped:
		return true
	default:
		return false
	}
}

// IsTerminal reports whether the status is a final outcome that will not
// change for the remainder of the run.
func (s EnvStatus) IsTerminal() bool {
	switch s {
	case StatusPassed, StatusFailed, StatusError, StatusSkipped:
		return true
	default:
		return false
	}
}

// Succeeded reports whether the status counts toward a passing run.
// Skipped environments do not fail the conjunction.
func (s EnvStatus) Succeeded() bool {
	return s == StatusPassed || s == StatusSkipped
}

// ParseEnvStatus converts a string to an EnvStatus.
// Returns an error if the string does not match any valid status.
func ParseEnvStatus(s string) (EnvStatus, error) {
	status := EnvStatus(strings.ToLower(s))
	if !status.IsValid() {
		return "", fmt.Errorf("invalid environment status: %q (valid: pending, running, passed, failed, error, skipped)", s)
	}
	return status, nil
}

// IsolationMode selects how an environment's commands are executed.
type IsolationMode string

const (
	// IsolationProcess runs commands as child processes of matrixctl with
	// a scrubbed environment. This is the default.
	IsolationProcess IsolationMode = "process"

	// IsolationContainer runs each command inside a disposable container
	// of the environment's configured image.
	IsolationContainer IsolationMode = "container"
)

// String returns the string representation of IsolationMode.
func (m IsolationMode) String() string {
	return string(m)
}

// IsValid checks whether the IsolationMode is a known mode.
func (m IsolationMode) IsValid() bool {
	return m == IsolationProcess || m == IsolationContainer
}

// ParseIsolationMode converts a string to an IsolationMode.
func ParseIsolationMode(s string) (IsolationMode, error) {
	mode := IsolationMode(strings.ToLower(s))
	if !mode.IsValid() {
		return "", fmt.Errorf("invalid isolation mode: %q (valid: process, container)", s)
	}
	return mode, nil
}

// nameRegex validates environment names: alphanumeric plus hyphen,
// underscore and dot, starting with an alphanumeric character. Dots are
// allowed because interpreter-style names such as "py3.8" are common.
var nameRegex = regexp.MustCompile(`^[a-zA-Z0-9][a-zA-Z0-9._-]*$`)

// ValidateName checks if the given name is a valid environment name.
func ValidateName(name string) error {
	if name == "" {
		return fmt.Errorf("environment name must not be empty")
	}
	if !nameRegex.MatchString(name) {
		return fmt.Errorf("invalid environment name %q: must start with an alphanumeric character and contain only alphanumerics, '.', '-' or '_'", name)
	}
	return nil
}

// CommandResult records the outcome of one command within an environment.
type CommandResult struct {
	// Argv is the fully substituted command line that was executed.
	Argv []string `json:"argv"`

	// ExitCode is the process exit code. -1 when the command could not
	// be started at all.
	ExitCode int `json:"exitCode"`

	// Output is the combined stdout/stderr captured from the command.
	Output string `json:"output,omitempty"`

	// Duration is the wall-clock time the command took.
	Duration time.Duration `json:"duration"`
}

// Succeeded reports whether the command exited zero.
func (c CommandResult) Succeeded() bool {
	return c.ExitCode == 0
}

// EnvResult is the aggregate outcome of running one environment.
// This is the primary value passed from the runner to the CLI layer
// and journaled by the report package.
type EnvResult struct {
	// Name is the environment name from the configuration.
	Name string `json:"name"`

	// Status is the terminal outcome of the run.
	Status EnvStatus `json:"status"`

	// Commands holds per-command results in execution order. Execution
	// aborts at the first non-zero exit, so a failed run's last entry is
	// the command that failed.
	Commands []CommandResult `json:"commands,omitempty"`

	// Provisioned indicates whether provisioning commands actually ran
	// (false when the provision hash matched and the step was skipped).
	Provisioned bool `json:"provisioned"`

	// CoverageChecked indicates the environment had a coverage report
	// configured and the threshold gate was evaluated.
	CoverageChecked bool `json:"coverageChecked"`

	// CoveragePercent is the measured aggregate coverage when
	// CoverageChecked is true.
	CoveragePercent float64 `json:"coveragePercent,omitempty"`

	// Reason carries a human-readable explanation for failed or error
	// outcomes.
	Reason string `json:"reason,omitempty"`

	// StartedAt is the wall-clock start time of the environment run.
	StartedAt time.Time `json:"startedAt"`

	// Duration is the total wall-clock time including provisioning.
	Duration time.Duration `json:"duration"`
}

// Succeeded reports whether the environment counts toward a passing run.
func (r *EnvResult) Succeeded() bool {
	return r.Status.Succeeded()
}

// RunSummary aggregates the results of a multi-environment invocation.
// The overall status is the conjunction of all per-environment outcomes.
type RunSummary struct {
	// Results holds per-environment outcomes in completion order.
	Results []EnvResult `json:"results"`

	// Duration is the wall-clock time of the whole invocation, which is
	// less than the sum of the parts when environments ran in parallel.
	Duration time.Duration `json:"duration"`
}

// Succeeded reports whether every environment in the summary passed.
// An empty summary succeeds — running zero environments is not a failure.
func (s *RunSummary) Succeeded() bool {
	for i := range s.Results {
		if !s.Results[i].Succeeded() {
			return false
		}
	}
	return true
}

// Failed returns the names of environments that did not pass.
func (s *RunSummary) Failed() []string {
	var names []string
	for i := range s.Results {
		if !s.Results[i].Succeeded() {
			names = append(names, s.Results[i].Name)
		}
	}
	return names
}
