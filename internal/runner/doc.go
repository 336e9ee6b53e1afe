// Package runner executes environments: it provisions the isolated
// directory, computes the scrubbed variable set, runs the substituted
// command list in order, and evaluates the coverage gate for environments
// that declare a report.
//
// Failure semantics follow the environment contract: any non-zero exit
// from a listed command aborts the environment run; there is no retry,
// no partial-failure handling, no rollback. Multiple environments run
// concurrently as independent processes with no shared mutable state;
// the run's overall status is the conjunction of all outcomes.
package runner
