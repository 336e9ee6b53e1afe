// Package report persists run outcomes as flat JSON journals in the work
// directory.
//
// Two artifacts are maintained:
//   - results.json: the last recorded outcome per environment, consumed
//     by "matrixctl list".
//   - times.json: a per-environment duration history used to order
//     parallel runs slowest-first for better packing.
//
// Both files are rewritten atomically per invocation; there is no
// concurrent writer because journal updates happen after all environments
// have finished.
package report
