// Package ci loads workflow files and executes them locally. A workflow
// maps repository events (push, pull_request) onto a matrix of
// interpreter/architecture cells, each running a list of environments;
// the workflow passes only when every cell's every environment passes.
//
// There is no remote service integration: the workflow file is a local
// description of what a trigger would run, and `matrixctl ci` is the
// thing that runs it.
package ci
