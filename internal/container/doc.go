// Package container implements the optional container isolation mode.
//
// When an environment is configured with isolation = container, each of
// its commands runs inside a disposable container of the environment's
// image, with the repository root bind-mounted and the same computed
// variable set a process run would receive. Containers are tagged with
// matrix.* labels so leftovers can be discovered and removed through the
// Docker API by "matrixctl clean --containers".
//
// The package wraps the Docker Engine SDK for daemon discovery, ping and
// label-filtered listing/removal, and shells out to "docker run" for
// execution itself, where CLI flag semantics (--rm, -v, -w) are the
// stable interface.
package container
