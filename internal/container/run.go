package container

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"sort"
	"strings"
	"time"

	"github.com/docker/docker/api/types/container"
	"github.com/docker/docker/api/types/filters"

	"github.com/mmr-tortoise/matrixctl/internal/model"
)

// RunSpec describes one command execution inside a disposable container.
type RunSpec struct {
	// Image is the container image to run.
	Image string

	// EnvName is the owning environment, recorded in labels.
	EnvName string

	// RootDir is the repository root. It is bind-mounted at the same
	// absolute path inside the container and used as the working
	// directory, so paths computed on the host stay valid.
	RootDir string

	// EnvDir is the environment's isolated directory, bind-mounted the
	// same way so {envdir} substitutions resolve inside the container.
	EnvDir string

	// Env is the computed variable set for the command.
	Env map[string]string

	// Argv is the fully substituted command line.
	Argv []string
}

// Exec runs one command in a disposable container via "docker run --rm".
// The shell-out mirrors how compose-style tooling drives the engine: the
// CLI flags are the stable interface, while the SDK is reserved for
// queries (ListManaged, RemoveManaged).
//
// Returns the command's exit code and combined output. A non-zero exit is
// not an error — only failure to invoke the runtime at all is.
func Exec(ctx context.Context, spec RunSpec) (int, string, error) {
	if spec.Image == "" {
		return -1, "", model.NewCLIError(model.ExitConfigError,
			fmt.Sprintf("environment %q uses container isolation but sets no image", spec.EnvName))
	}

	args := []string{"run", "--rm"}
	args = append(args, "-v", spec.RootDir+":"+spec.RootDir)
	if spec.EnvDir != "" && spec.EnvDir != spec.RootDir {
		args = append(args, "-v", spec.EnvDir+":"+spec.EnvDir)
	}
	args = append(args, "-w", spec.RootDir)

	for k, v := range BuildLabels(spec.EnvName, time.Now()) {
		args = append(args, "--label", k+"="+v)
	}

	// Sorted env flags keep invocations deterministic for logging and
	// tests despite map iteration order.
	keys := make([]string, 0, len(spec.Env))
	for k := range spec.Env {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		args = append(args, "-e", k+"="+spec.Env[k])
	}

	args = append(args, spec.Image)
	args = append(args, spec.Argv...)

	cmd := exec.CommandContext(ctx, "docker", args...)
	output, err := cmd.CombinedOutput()
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			// The engine propagates the container's exit code, so this
			// is the command failing, not the runtime.
			return exitErr.ExitCode(), string(output), nil
		}
		return -1, string(output), model.WrapCLIError(model.ExitContainerUnavailable,
			fmt.Sprintf("failed to invoke container runtime: %s", strings.TrimSpace(string(output))), err)
	}

	return 0, string(output), nil
}

// ManagedContainer is a leftover container discovered by label.
type ManagedContainer struct {
	// ID is the container identifier.
	ID string

	// EnvName is the owning environment from the matrix.env label.
	EnvName string

	// State is the engine-reported state string (e.g. "running", "exited").
	State string
}

// ListManaged queries the daemon for containers carrying the matrixctl
// management label, including stopped ones. The filter runs server-side,
// so unrelated containers never cross the wire.
func ListManaged(ctx context.Context, cli *Client, envName string) ([]ManagedContainer, error) {
	filterArgs := filters.NewArgs(
		filters.Arg("label", LabelManagedBy+"="+ManagedByValue),
	)
	if envName != "" {
		filterArgs.Add("label", LabelEnv+"="+envName)
	}

	containers, err := cli.Inner().ContainerList(ctx, container.ListOptions{
		All:     true,
		Filters: filterArgs,
	})
	if err != nil {
		return nil, model.WrapCLIError(model.ExitContainerUnavailable,
			"failed to list managed containers", err)
	}

	result := make([]ManagedContainer, 0, len(containers))
	for _, c := range containers {
		result = append(result, ManagedContainer{
			ID:      c.ID,
			EnvName: c.Labels[LabelEnv],
			State:   c.State,
		})
	}
	return result, nil
}

// RemoveManaged force-removes the given containers. Force covers the
// running case: leftovers from a killed invocation may still be running
// their command.
func RemoveManaged(ctx context.Context, cli *Client, containers []ManagedContainer) error {
	for _, c := range containers {
		err := cli.Inner().ContainerRemove(ctx, c.ID, container.RemoveOptions{Force: true})
		if err != nil {
			return model.WrapCLIError(model.ExitContainerUnavailable,
				fmt.Sprintf("failed to remove container %q", c.ID), err)
		}
	}
	return nil
}
