package runner

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"github.com/mmr-tortoise/matrixctl/internal/config"
	"github.com/mmr-tortoise/matrixctl/internal/coverage"
	"github.com/mmr-tortoise/matrixctl/internal/model"
	"github.com/mmr-tortoise/matrixctl/internal/report"
	"github.com/mmr-tortoise/matrixctl/internal/workdir"
)

// Runner executes environments against one loaded configuration.
type Runner struct {
	cfg   *config.Config
	mgr   *workdir.Manager
	store *report.Store
	log   *zap.Logger

	// NewExecutor builds the executor for one environment. Overridable
	// so tests can substitute a fake; the default dispatches on the
	// isolation mode.
	NewExecutor func(env config.Env, isolation model.IsolationMode) Executor

	// PosArgs are the CLI pass-through arguments substituted for
	// {posargs} in command lines.
	PosArgs []string

	// Recreate forces environment directories to be wiped before use.
	Recreate bool

	// Isolation is the effective isolation mode for this invocation
	// (configuration value unless overridden on the command line).
	Isolation model.IsolationMode
}

// New creates a Runner for the given configuration. The work directory
// manager and journal store are derived from the configuration's
// workdir setting.
func New(cfg *config.Config, logger *zap.Logger) *Runner {
	r := &Runner{
		cfg:       cfg,
		mgr:       workdir.NewManager(cfg.WorkDirPath()),
		store:     report.NewStore(cfg.WorkDirPath()),
		log:       logger,
		Isolation: cfg.Matrix.Isolation,
	}
	r.NewExecutor = r.defaultExecutor
	return r
}

// defaultExecutor dispatches on the isolation mode.
func (r *Runner) defaultExecutor(env config.Env, isolation model.IsolationMode) Executor {
	if isolation == model.IsolationContainer {
		return &ContainerExecutor{RootDir: r.cfg.RootDir, Image: env.Image}
	}
	return &ProcessExecutor{RootDir: r.cfg.RootDir}
}

// RunEnv executes a single environment end to end: directory
// preparation, provisioning, the main command list, and the coverage
// gate when the environment declares a report. The returned result is
// always terminal; errors are folded into the status rather than
// returned, because one environment failing must not stop its siblings.
func (r *Runner) RunEnv(ctx context.Context, env config.Env) (result model.EnvResult) {
	result = model.EnvResult{
		Name:      env.Name,
		Status:    model.StatusRunning,
		StartedAt: time.Now().UTC(),
	}
	// Named return: the defer must observe the final result value so the
	// duration covers every exit path, including the early error returns.
	defer func() {
		result.Duration = time.Since(result.StartedAt)
	}()

	envDir, err := r.mgr.Prepare(env.Name, r.Recreate)
	if err != nil {
		return r.errored(result, "failed to prepare environment directory", err)
	}

	vars := config.Vars{
		EnvName: env.Name,
		EnvDir:  envDir,
		RootDir: r.cfg.RootDir,
		WorkDir: r.mgr.Root(),
		PosArgs: r.PosArgs,
	}

	environ, err := BuildEnviron(env, vars)
	if err != nil {
		return r.errored(result, "failed to compute environment variables", err)
	}

	executor := r.NewExecutor(env, r.Isolation)

	// Provisioning runs before the main commands and only when its
	// command list changed since the last successful provisioning.
	stale, err := r.mgr.ProvisionStale(env.Name, env.Provision)
	if err != nil {
		return r.errored(result, "failed to check provisioning state", err)
	}
	if stale {
		r.log.Debug("provisioning environment", zap.String("env", env.Name))
		result.Provisioned = true
		for _, line := range env.Provision {
			cmdResult, err := r.runCommand(ctx, executor, env.Name, envDir, environ, vars, line)
			if err != nil {
				return r.errored(result, fmt.Sprintf("provisioning command %q", line), err)
			}
			result.Commands = append(result.Commands, cmdResult)
			if !cmdResult.Succeeded() {
				result.Status = model.StatusError
				result.Reason = fmt.Sprintf("provisioning command exited with code %d", cmdResult.ExitCode)
				return result
			}
		}
		if err := r.mgr.RecordProvision(env.Name, env.Provision); err != nil {
			return r.errored(result, "failed to record provisioning", err)
		}
	}

	// The main command list. First non-zero exit aborts the environment.
	for _, line := range env.Commands {
		cmdResult, err := r.runCommand(ctx, executor, env.Name, envDir, environ, vars, line)
		if err != nil {
			return r.errored(result, fmt.Sprintf("command %q", line), err)
		}
		result.Commands = append(result.Commands, cmdResult)
		if !cmdResult.Succeeded() {
			result.Status = model.StatusFailed
			result.Reason = fmt.Sprintf("command exited with code %d", cmdResult.ExitCode)
			r.log.Warn("environment command failed",
				zap.String("env", env.Name),
				zap.Strings("argv", cmdResult.Argv),
				zap.Int("exitCode", cmdResult.ExitCode))
			return result
		}
	}

	// Coverage gate: armed by the environment's coverage_report setting.
	if env.CoverageReport != "" {
		reportPath := env.CoverageReport
		if !filepath.IsAbs(reportPath) {
			reportPath = filepath.Join(r.cfg.RootDir, reportPath)
		}

		doc, err := coverage.ParseFile(reportPath)
		if err != nil {
			return r.errored(result, "failed to read coverage report", err)
		}

		result.CoverageChecked = true
		result.CoveragePercent = doc.Percent()
		if result.CoveragePercent < r.cfg.Coverage.Threshold {
			result.Status = model.StatusFailed
			result.Reason = fmt.Sprintf("coverage %.2f%% below threshold %.2f%%",
				result.CoveragePercent, r.cfg.Coverage.Threshold)
			return result
		}
	}

	result.Status = model.StatusPassed
	return result
}

// runCommand expands and executes one command line.
func (r *Runner) runCommand(ctx context.Context, executor Executor, envName, envDir string, environ map[string]string, vars config.Vars, line string) (model.CommandResult, error) {
	argv, err := vars.ExpandCommand(line)
	if err != nil {
		return model.CommandResult{}, err
	}

	r.log.Debug("running command", zap.String("env", envName), zap.Strings("argv", argv))

	start := time.Now()
	exitCode, output, err := executor.Run(ctx, envName, envDir, environ, argv)
	elapsed := time.Since(start)
	if err != nil {
		return model.CommandResult{}, err
	}

	return model.CommandResult{
		Argv:     argv,
		ExitCode: exitCode,
		Output:   output,
		Duration: elapsed,
	}, nil
}

// errored finalizes a result in the error state.
func (r *Runner) errored(result model.EnvResult, message string, err error) model.EnvResult {
	result.Status = model.StatusError
	result.Reason = fmt.Sprintf("%s: %v", message, err)
	r.log.Warn("environment errored",
		zap.String("env", result.Name),
		zap.String("reason", result.Reason))
	return result
}
