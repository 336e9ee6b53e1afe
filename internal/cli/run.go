// Package cli — run.go implements the "matrixctl run" command.
//
// The run command executes one or more configured environments, each in
// a fresh isolated context, and reports the conjunction: the invocation
// succeeds only when every selected environment passed. Arguments after
// "--" are passed through to commands via the {posargs} placeholder.
package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mmr-tortoise/matrixctl/internal/container"
	"github.com/mmr-tortoise/matrixctl/internal/model"
	"github.com/mmr-tortoise/matrixctl/internal/runner"
)

// runFlags holds the flag values for the run command.
type runFlags struct {
	// envs selects environments by name; empty means the configured
	// envlist.
	envs []string

	// parallel overrides the configured concurrency. -1 means "use the
	// configuration value".
	parallel int

	// recreate wipes environment directories before running, forcing
	// re-provisioning.
	recreate bool

	// isolation overrides the configured isolation mode ("process" or
	// "container"). Empty means "use the configuration value".
	isolation string
}

// NewRunCommand creates the "run" cobra command.
func NewRunCommand() *cobra.Command {
	flags := &runFlags{}

	cmd := &cobra.Command{
		Use:   "run [-- posargs...]",
		Short: "Run test environments",
		Long: `Run the selected environments (default: the configured envlist).

Each environment runs its provisioning commands (once, until they change)
and then its command list, stopping at the first failure. Arguments after
"--" replace {posargs} in command lines.

Examples:
  matrixctl run
  matrixctl run -e py3,pep8 --parallel 2
  matrixctl run -e py3 -- -k test_login
  matrixctl run --isolation container --recreate`,

		RunE: func(cmd *cobra.Command, args []string) error {
			// Everything after "--" is posargs, not subcommand arguments.
			var posargs []string
			if at := cmd.ArgsLenAtDash(); at >= 0 {
				posargs = args[at:]
			}
			return runRun(cmd.Context(), flags, posargs)
		},
	}

	cmd.Flags().StringSliceVarP(&flags.envs, "env", "e", nil,
		"Environments to run (comma-separated; default: configured envlist)")
	cmd.Flags().IntVar(&flags.parallel, "parallel", -1,
		"Maximum environments running concurrently (default: configuration value)")
	cmd.Flags().BoolVar(&flags.recreate, "recreate", false,
		"Wipe environment directories before running")
	cmd.Flags().StringVar(&flags.isolation, "isolation", "",
		"Isolation mode: process or container (default: configuration value)")

	return cmd
}

// runRun is the main logic function for the run command.
func runRun(ctx context.Context, flags *runFlags, posargs []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	envs, err := cfg.Select(flags.envs)
	if err != nil {
		return err
	}

	log := newLogger()
	defer func() { _ = log.Sync() }()

	r := runner.New(cfg, log)
	r.PosArgs = posargs
	r.Recreate = flags.recreate

	if flags.isolation != "" {
		mode := model.IsolationMode(flags.isolation)
		if !mode.IsValid() {
			return model.NewCLIError(model.ExitConfigError,
				fmt.Sprintf("invalid isolation mode %q: valid values are process, container", flags.isolation))
		}
		r.Isolation = mode
	}

	// Container isolation needs a responsive runtime; fail up front with
	// the dedicated exit code rather than once per environment.
	if r.Isolation == model.IsolationContainer {
		cli, err := container.NewClient()
		if err != nil {
			return err
		}
		pingErr := cli.Ping(ctx)
		_ = cli.Close()
		if pingErr != nil {
			return pingErr
		}
	}

	parallel := flags.parallel
	if parallel < 0 {
		parallel = cfg.Matrix.Parallel
	}

	summary, err := r.RunAll(ctx, envs, parallel)
	if err != nil {
		return err
	}

	printRunSummary(summary)

	if !summary.Succeeded() {
		return model.NewCLIError(model.ExitEnvFailed,
			fmt.Sprintf("environment(s) failed: %s", strings.Join(summary.Failed(), ", ")))
	}
	return nil
}

// printRunSummary outputs the run outcome in text or JSON format.
func printRunSummary(summary *model.RunSummary) {
	if IsJSONOutput() {
		data, _ := json.MarshalIndent(summary, "", "  ")
		fmt.Println(string(data))
		return
	}

	fmt.Print(renderSummaryTable(summary))
	fmt.Printf("\n%d environment(s) in %s\n", len(summary.Results), formatDuration(summary.Duration))
}
