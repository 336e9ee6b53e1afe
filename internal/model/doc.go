// Package model defines the domain types and value objects for the
// matrixctl CLI.
//
// This package contains pure data structures with no external dependencies.
// All entities (EnvResult, CommandResult, coverage and lint findings) are
// transient representations of a single run — the only persisted artifacts
// are the journal files written by the report package.
//
// The package also defines exit codes (ExitCode) and a custom error type
// (CLIError) that carries exit codes for proper OS process exit handling.
package model
