// Package cli — lint.go implements the "matrixctl lint" command.
//
// The lint command applies the repository's style policy: it obtains a
// checker report (by running the configured checker, or from a file via
// --report), filters out ignored codes, excluded paths, and long lines
// within the configured allowance, and fails when anything remains.
package cli

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mmr-tortoise/matrixctl/internal/lint"
)

// lintFlags holds the flag values for the lint command.
type lintFlags struct {
	// report is a pre-produced checker report file. When empty the
	// configured checker command is run instead.
	report string
}

// NewLintCommand creates the "lint" cobra command.
func NewLintCommand() *cobra.Command {
	flags := &lintFlags{}

	cmd := &cobra.Command{
		Use:   "lint",
		Short: "Apply the style policy",
		Long: `Run the configured style checker (or read a report file) and apply the
repository's ignore set, path exclusions, and line-length allowance.
Any violation that survives filtering fails the command.

Examples:
  matrixctl lint
  matrixctl lint --report checker-output.txt`,

		Args: cobra.NoArgs,

		RunE: func(cmd *cobra.Command, args []string) error {
			return runLint(cmd.Context(), flags)
		},
	}

	cmd.Flags().StringVar(&flags.report, "report", "",
		"Read a checker report file instead of running the checker")

	return cmd
}

// runLint is the main logic function for the lint command.
func runLint(ctx context.Context, flags *lintFlags) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	var violations []lint.Violation
	if flags.report != "" {
		violations, err = lint.LoadReport(flags.report)
	} else {
		violations, err = lint.RunChecker(ctx, cfg.Lint, cfg.RootDir)
	}
	if err != nil {
		return err
	}

	kept := lint.Filter(violations, cfg.Lint)
	printLintResult(violations, kept)
	return lint.Gate(kept)
}

// printLintResult outputs the surviving violations in text or JSON form.
func printLintResult(all, kept []lint.Violation) {
	if IsJSONOutput() {
		type resultJSON struct {
			Total      int              `json:"total"`
			Filtered   int              `json:"filtered"`
			Violations []lint.Violation `json:"violations"`
		}
		result := resultJSON{
			Total:      len(all),
			Filtered:   len(all) - len(kept),
			Violations: kept,
		}
		if result.Violations == nil {
			result.Violations = []lint.Violation{}
		}
		data, _ := json.MarshalIndent(result, "", "  ")
		fmt.Println(string(data))
		return
	}

	for _, v := range kept {
		fmt.Println(v.String())
	}
	fmt.Printf("%d finding(s), %d filtered by policy, %d remaining\n",
		len(all), len(all)-len(kept), len(kept))
}
