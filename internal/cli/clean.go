// Package cli — clean.go implements the "matrixctl clean" command.
//
// The clean command removes environment directories from the work
// directory (forcing re-provisioning on the next run) and, with
// --containers, removes leftover labeled containers from interrupted
// container-isolated runs.
package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mmr-tortoise/matrixctl/internal/container"
	"github.com/mmr-tortoise/matrixctl/internal/workdir"
)

// cleanFlags holds the flag values for the clean command.
type cleanFlags struct {
	// envs selects environments to clean; empty means all of them.
	envs []string

	// containers also removes leftover labeled containers.
	containers bool
}

// NewCleanCommand creates the "clean" cobra command.
func NewCleanCommand() *cobra.Command {
	flags := &cleanFlags{}

	cmd := &cobra.Command{
		Use:   "clean",
		Short: "Remove environment directories",
		Long: `Remove environment directories from the work directory. The next run
re-provisions from scratch. With --containers, leftover containers from
interrupted container-isolated runs are removed as well.

Examples:
  matrixctl clean
  matrixctl clean -e py3
  matrixctl clean --containers`,

		Args: cobra.NoArgs,

		RunE: func(cmd *cobra.Command, args []string) error {
			return runClean(cmd.Context(), flags)
		},
	}

	cmd.Flags().StringSliceVarP(&flags.envs, "env", "e", nil,
		"Environments to clean (comma-separated; default: all)")
	cmd.Flags().BoolVar(&flags.containers, "containers", false,
		"Also remove leftover labeled containers")

	return cmd
}

// runClean is the main logic function for the clean command.
func runClean(ctx context.Context, flags *cleanFlags) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	mgr := workdir.NewManager(cfg.WorkDirPath())

	if len(flags.envs) == 0 {
		if err := mgr.CleanAll(); err != nil {
			return err
		}
		fmt.Printf("removed work directory %s\n", cfg.WorkDirPath())
	} else {
		for _, name := range flags.envs {
			// Validate against the configuration so a typo is reported
			// instead of silently cleaning nothing.
			if _, err := cfg.Select([]string{name}); err != nil {
				return err
			}
			if err := mgr.Clean(name); err != nil {
				return err
			}
			fmt.Printf("removed environment directory %s\n", mgr.EnvDir(name))
		}
	}

	if flags.containers {
		return cleanContainers(ctx, flags.envs)
	}
	return nil
}

// cleanContainers removes leftover labeled containers, scoped to the
// selected environments when any were named.
func cleanContainers(ctx context.Context, envs []string) error {
	cli, err := container.NewClient()
	if err != nil {
		return err
	}
	defer func() { _ = cli.Close() }()

	if err := cli.Ping(ctx); err != nil {
		return err
	}

	// An empty environment name lists every managed container.
	names := envs
	if len(names) == 0 {
		names = []string{""}
	}

	removed := 0
	for _, name := range names {
		leftovers, err := container.ListManaged(ctx, cli, name)
		if err != nil {
			return err
		}
		if err := container.RemoveManaged(ctx, cli, leftovers); err != nil {
			return err
		}
		removed += len(leftovers)
	}

	fmt.Printf("removed %d leftover container(s)\n", removed)
	return nil
}
