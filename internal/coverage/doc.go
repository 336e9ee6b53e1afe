// Package coverage evaluates Cobertura-style XML coverage reports
// against the configured threshold and renders HTML/XML summaries.
//
// The gate is binary: a run fails when the document's aggregate line
// rate, expressed as a percentage, drops below the threshold. There is
// no graceful degradation and no per-package minimum — "aggregate" means
// the overall line-rate the producing tool computed.
package coverage
