package model

import "fmt"

// ExitCode defines standard CLI exit codes. These codes form the
// operational contract with CI systems and scripts: each failure class
// maps to a distinct code so callers can branch without parsing output.
type ExitCode int

const (
	// ExitSuccess indicates the command completed successfully.
	ExitSuccess ExitCode = 0

	// ExitGeneralError indicates an unspecified error occurred.
	ExitGeneralError ExitCode = 1

	// ExitConfigError indicates the matrix configuration file is missing,
	// unparseable, or violates an invariant.
	ExitConfigError ExitCode = 2

	// ExitEnvFailed indicates one or more environments failed: a command
	// exited non-zero or provisioning broke.
	ExitEnvFailed ExitCode = 3

	// ExitCoverageBelowThreshold indicates the aggregate coverage in the
	// report dropped below the configured minimum.
	ExitCoverageBelowThreshold ExitCode = 4

	// ExitLintViolations indicates non-ignored style violations remained
	// after filtering.
	ExitLintViolations ExitCode = 5

	// ExitEnvNotFound indicates a requested environment name is not
	// defined in the configuration.
	ExitEnvNotFound ExitCode = 6

	// ExitContainerUnavailable indicates container isolation was requested
	// but the container runtime is not reachable.
	ExitContainerUnavailable ExitCode = 7
)

// CLIError is a custom error type that carries an exit code.
// This allows the CLI layer to translate domain errors into
// appropriate process exit codes.
type CLIError struct {
	// Code is the exit code to return to the OS.
	Code ExitCode

	// Message is the human-readable error description.
	Message string

	// Err is the underlying error, if any.
	Err error
}

// Error satisfies the error interface. It returns the human-readable
// error message, optionally including the underlying error.
func (e *CLIError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the underlying error for use with errors.Is/errors.As.
func (e *CLIError) Unwrap() error {
	return e.Err
}

// NewCLIError creates a new CLIError with the given exit code and message.
func NewCLIError(code ExitCode, message string) *CLIError {
	return &CLIError{Code: code, Message: message}
}

// WrapCLIError creates a new CLIError that wraps an existing error.
func WrapCLIError(code ExitCode, message string, err error) *CLIError {
	return &CLIError{Code: code, Message: message, Err: err}
}
