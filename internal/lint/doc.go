// Package lint implements the style-policy gate: it parses checker
// output in the conventional "path:line:col: CODE message" form, drops
// violations covered by the configured ignore set, exclusion globs, or
// line-length allowance, and fails when anything remains.
//
// The package does not lint anything itself — the checker is an external
// command (or a pre-produced report file). matrixctl owns only the
// policy layer: which findings count.
package lint
