// Package cli — cover.go implements the "matrixctl cover" command.
//
// The cover command evaluates a Cobertura-style coverage report against
// the configured threshold and renders the enabled report formats into
// the output directory. Measuring coverage is the tested project's job;
// this command only judges and presents the result.
package cli

import (
	"encoding/json"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/mmr-tortoise/matrixctl/internal/config"
	"github.com/mmr-tortoise/matrixctl/internal/coverage"
)

// defaultCoverageInput is the report file probed when --input is not
// given, relative to the repository root.
const defaultCoverageInput = "coverage.xml"

// coverFlags holds the flag values for the cover command.
type coverFlags struct {
	// input is the coverage XML file to evaluate.
	input string

	// min overrides the configured threshold. Negative means "use the
	// configuration value".
	min float64
}

// NewCoverCommand creates the "cover" cobra command.
func NewCoverCommand() *cobra.Command {
	flags := &coverFlags{}

	cmd := &cobra.Command{
		Use:   "cover",
		Short: "Evaluate the coverage threshold",
		Long: `Parse a coverage XML report, compare the aggregate percentage against
the configured threshold, and write the enabled report formats into the
coverage output directory.

Examples:
  matrixctl cover
  matrixctl cover --input build/coverage.xml --min 90`,

		Args: cobra.NoArgs,

		RunE: func(cmd *cobra.Command, args []string) error {
			return runCover(flags)
		},
	}

	cmd.Flags().StringVar(&flags.input, "input", "",
		"Coverage XML report (default: coverage.xml in the repository root)")
	cmd.Flags().Float64Var(&flags.min, "min", -1,
		"Minimum acceptable coverage percentage (default: configuration value)")

	return cmd
}

// runCover is the main logic function for the cover command.
func runCover(flags *coverFlags) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	input := flags.input
	if input == "" {
		input = filepath.Join(cfg.RootDir, defaultCoverageInput)
	} else if !filepath.IsAbs(input) {
		input = filepath.Join(cfg.RootDir, input)
	}

	threshold := cfg.Coverage.Threshold
	if flags.min >= 0 {
		threshold = flags.min
	}

	doc, err := coverage.ParseFile(input)
	if err != nil {
		return err
	}

	// Reports are written before the gate so a failing run still leaves
	// the rendered report behind for inspection.
	if err := coverage.WriteReports(doc, threshold, cfg.Coverage.Reports, cfg.CoverageOutputPath()); err != nil {
		return err
	}

	printCoverResult(doc, threshold, reportFiles(cfg.Coverage, cfg.CoverageOutputPath()))
	return coverage.Check(doc, threshold)
}

// reportFiles lists the report files the policy produced in outDir.
func reportFiles(policy config.CoveragePolicy, outDir string) []string {
	var files []string
	if policy.WantsReport("html") {
		files = append(files, filepath.Join(outDir, coverage.HTMLReportName))
	}
	if policy.WantsReport("xml") {
		files = append(files, filepath.Join(outDir, coverage.XMLReportName))
	}
	return files
}

// printCoverResult outputs the measurement in text or JSON format.
func printCoverResult(doc *coverage.Document, threshold float64, reports []string) {
	percent := doc.Percent()

	if IsJSONOutput() {
		if reports == nil {
			reports = []string{}
		}
		result := map[string]interface{}{
			"percent":   percent,
			"threshold": threshold,
			"passed":    percent >= threshold,
			"reports":   reports,
		}
		data, _ := json.MarshalIndent(result, "", "  ")
		fmt.Println(string(data))
		return
	}

	fmt.Printf("coverage: %.2f%% (threshold %.2f%%)\n", percent, threshold)
	for _, file := range reports {
		fmt.Printf("report:   %s\n", file)
	}
}
