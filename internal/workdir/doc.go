// Package workdir manages the per-environment isolated directories under
// the matrix work directory (.matrix by default).
//
// Each environment gets its own directory, created fresh on first use and
// wiped on --recreate. The directory carries a provision hash file so
// unchanged provisioning command lists are not re-run on every invocation.
// Journal files written by the report package live next to the environment
// directories in the work directory root.
package workdir
