package runner

import (
	"context"
	"errors"
	"os/exec"
	"sort"

	"github.com/mmr-tortoise/matrixctl/internal/container"
)

// Executor runs one fully substituted command with a computed variable
// set and reports its exit code and combined output. Implementations
// must treat a non-zero exit as a result, not an error — the error
// return is reserved for failing to execute at all.
type Executor interface {
	Run(ctx context.Context, envName, envDir string, environ map[string]string, argv []string) (int, string, error)
}

// ProcessExecutor runs commands as child processes with the repository
// root as working directory. This is the default isolation mode: the
// isolation comes from the scrubbed variable set and the per-environment
// directory, not from a sandbox.
type ProcessExecutor struct {
	// RootDir is the working directory for every command.
	RootDir string
}

// Run executes argv as a child process. The host environment is NOT
// inherited; only the computed variable set is passed.
func (e *ProcessExecutor) Run(ctx context.Context, envName, envDir string, environ map[string]string, argv []string) (int, string, error) {
	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
	cmd.Dir = e.RootDir
	cmd.Env = flattenEnviron(environ)

	output, err := cmd.CombinedOutput()
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return exitErr.ExitCode(), string(output), nil
		}
		// Startup failure: missing binary, permission, cancelled context.
		return -1, string(output), err
	}
	return 0, string(output), nil
}

// ContainerExecutor runs commands inside disposable containers of the
// environment's image. Constructed by the CLI layer after a successful
// runtime ping.
type ContainerExecutor struct {
	// RootDir is bind-mounted and used as the in-container working
	// directory.
	RootDir string

	// Image is the environment's configured container image.
	Image string
}

// Run executes argv via the container runtime.
func (e *ContainerExecutor) Run(ctx context.Context, envName, envDir string, environ map[string]string, argv []string) (int, string, error) {
	return container.Exec(ctx, container.RunSpec{
		Image:   e.Image,
		EnvName: envName,
		RootDir: e.RootDir,
		EnvDir:  envDir,
		Env:     environ,
		Argv:    argv,
	})
}

// flattenEnviron converts a variable map to the KEY=VALUE slice form
// expected by os/exec, sorted for determinism.
func flattenEnviron(environ map[string]string) []string {
	keys := make([]string, 0, len(environ))
	for k := range environ {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := make([]string, 0, len(keys))
	for _, k := range keys {
		out = append(out, k+"="+environ[k])
	}
	return out
}
