// Package cli — ci.go implements the "matrixctl ci" command.
//
// The ci command executes a workflow locally: for each matrix cell
// (interpreter/architecture pair) it runs the workflow's environment
// list, exporting the cell coordinates into every environment. The
// invocation succeeds only when every cell's every environment passed.
package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mmr-tortoise/matrixctl/internal/ci"
	"github.com/mmr-tortoise/matrixctl/internal/model"
)

// ciFlags holds the flag values for the ci command.
type ciFlags struct {
	// workflow is an explicit workflow file. When empty, matrix-ci.yaml
	// in the repository root is used if present, else the built-in
	// default workflow.
	workflow string

	// event is the trigger to evaluate the workflow against.
	event string
}

// NewCICommand creates the "ci" cobra command.
func NewCICommand() *cobra.Command {
	flags := &ciFlags{}

	cmd := &cobra.Command{
		Use:   "ci",
		Short: "Execute a workflow locally",
		Long: `Execute a workflow as the given event would: run the workflow's
environments once per matrix cell, with MATRIX_INTERPRETER and
MATRIX_ARCH exported into every environment.

Events the workflow does not bind are a no-op success.

Examples:
  matrixctl ci
  matrixctl ci --event pull_request
  matrixctl ci --workflow ci/nightly.yaml`,

		Args: cobra.NoArgs,

		RunE: func(cmd *cobra.Command, args []string) error {
			return runCI(cmd.Context(), flags)
		},
	}

	cmd.Flags().StringVar(&flags.workflow, "workflow", "",
		"Workflow file (default: matrix-ci.yaml in the repository root, or built-in)")
	cmd.Flags().StringVar(&flags.event, "event", ci.EventPush,
		"Trigger event: push or pull_request")

	return cmd
}

// runCI is the main logic function for the ci command.
func runCI(ctx context.Context, flags *ciFlags) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	wf, err := resolveWorkflow(flags.workflow, cfg.RootDir)
	if err != nil {
		return err
	}

	log := newLogger()
	defer func() { _ = log.Sync() }()

	result, err := ci.NewDriver(cfg, log).Execute(ctx, wf, flags.event)
	if err != nil {
		return err
	}

	printCIResult(result)

	if !result.Succeeded() {
		return model.NewCLIError(model.ExitEnvFailed,
			fmt.Sprintf("workflow %q failed for event %q", wf.Name, flags.event))
	}
	return nil
}

// resolveWorkflow picks the workflow: explicit flag, conventional file
// in the repository root, or the built-in default.
func resolveWorkflow(explicit, rootDir string) (*ci.Workflow, error) {
	if explicit != "" {
		return ci.Load(explicit)
	}

	conventional := filepath.Join(rootDir, ci.DefaultFileName)
	if _, err := os.Stat(conventional); err == nil {
		return ci.Load(conventional)
	}

	return ci.DefaultWorkflow(), nil
}

// printCIResult outputs the workflow outcome in text or JSON format.
func printCIResult(result *ci.Result) {
	if IsJSONOutput() {
		data, _ := json.MarshalIndent(result, "", "  ")
		fmt.Println(string(data))
		return
	}

	if !result.Triggered {
		fmt.Printf("workflow %q does not bind event %q; nothing to do\n",
			result.Workflow, result.Event)
		return
	}

	for _, cell := range result.Cells {
		fmt.Printf("=== cell %s ===\n", cell.Cell)
		fmt.Print(renderSummaryTable(cell.Summary))
		fmt.Println()
	}

	verdict := "passed"
	if !result.Succeeded() {
		verdict = "failed"
	}
	fmt.Printf("workflow %q %s (%s)\n", result.Workflow, verdict,
		strings.Join(cellNames(result.Cells), ", "))
}

// cellNames renders the executed cells for the one-line verdict.
func cellNames(cells []ci.CellResult) []string {
	names := make([]string, len(cells))
	for i, cell := range cells {
		names[i] = cell.Cell.String()
	}
	return names
}
