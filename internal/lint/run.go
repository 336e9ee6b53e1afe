package lint

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"

	"github.com/google/shlex"

	"github.com/mmr-tortoise/matrixctl/internal/config"
	"github.com/mmr-tortoise/matrixctl/internal/model"
)

// RunChecker executes the configured checker command in rootDir and
// parses its stdout as a report. A non-zero checker exit is expected —
// checkers exit non-zero exactly when they found something — so only a
// startup failure is an error.
func RunChecker(ctx context.Context, policy config.LintPolicy, rootDir string) ([]Violation, error) {
	if policy.Command == "" {
		return nil, model.NewCLIError(model.ExitConfigError,
			"no [lint] command configured and no report file given")
	}

	argv, err := shlex.Split(policy.Command)
	if err != nil || len(argv) == 0 {
		return nil, model.WrapCLIError(model.ExitConfigError,
			fmt.Sprintf("invalid [lint] command %q", policy.Command), err)
	}

	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
	cmd.Dir = rootDir
	cmd.Env = os.Environ()

	var stdout bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = os.Stderr

	if err := cmd.Run(); err != nil {
		var exitErr *exec.ExitError
		if !errors.As(err, &exitErr) {
			return nil, model.WrapCLIError(model.ExitGeneralError,
				fmt.Sprintf("failed to run checker %q", argv[0]), err)
		}
	}

	return ParseReport(&stdout)
}

// LoadReport parses a pre-produced report file.
func LoadReport(path string) ([]Violation, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, model.WrapCLIError(model.ExitGeneralError,
			fmt.Sprintf("failed to open lint report %s", path), err)
	}
	defer f.Close()

	return ParseReport(f)
}
