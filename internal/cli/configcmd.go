// Package cli — configcmd.go implements the "matrixctl config" command.
//
// The config command prints the fully resolved configuration: defaults
// applied, base [env] section merged into every environment, and the
// local override file layered on top. It also warns when two
// environments carry identical command lists, since that usually means
// one of them is a historical leftover.
package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mmr-tortoise/matrixctl/internal/config"
)

// configFlags holds the flag values for the config command.
type configFlags struct {
	// env narrows output to a single environment.
	env string
}

// NewConfigCommand creates the "config" cobra command.
func NewConfigCommand() *cobra.Command {
	flags := &configFlags{}

	cmd := &cobra.Command{
		Use:   "config",
		Short: "Show the resolved configuration",
		Long: `Show the fully resolved configuration after defaults, base-section
merging, and the local override file.

Examples:
  matrixctl config
  matrixctl config --env py3
  matrixctl config --json`,

		Args: cobra.NoArgs,

		RunE: func(cmd *cobra.Command, args []string) error {
			return runConfig(flags)
		},
	}

	cmd.Flags().StringVar(&flags.env, "env", "", "Show only the named environment")

	return cmd
}

// runConfig is the main logic function for the config command.
func runConfig(flags *configFlags) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	if flags.env != "" {
		envs, err := cfg.Select([]string{flags.env})
		if err != nil {
			return err
		}
		printEnvConfig(envs[0])
		return nil
	}

	// Duplicate command lists are legal but usually unintended; warn on
	// stderr so scripted consumers of stdout are unaffected.
	for _, group := range cfg.DuplicateCommandEnvs() {
		fmt.Fprintf(os.Stderr, "Warning: environments %s share an identical command list\n",
			strings.Join(group, ", "))
	}

	printConfig(cfg)
	return nil
}

// printConfig outputs the whole configuration in text or JSON format.
func printConfig(cfg *config.Config) {
	if IsJSONOutput() {
		data, _ := json.MarshalIndent(cfg, "", "  ")
		fmt.Println(string(data))
		return
	}

	fmt.Printf("config:     %s\n", cfg.Path)
	fmt.Printf("envlist:    %s\n", strings.Join(cfg.Matrix.EnvList, ", "))
	fmt.Printf("parallel:   %d\n", cfg.Matrix.Parallel)
	fmt.Printf("isolation:  %s\n", cfg.Matrix.Isolation)
	fmt.Printf("workdir:    %s\n", cfg.WorkDirPath())
	fmt.Printf("coverage:   threshold %.1f%%, reports %s -> %s\n",
		cfg.Coverage.Threshold, strings.Join(cfg.Coverage.Reports, ","), cfg.Coverage.Output)
	fmt.Printf("lint:       ignore %s; max line %d\n",
		strings.Join(cfg.Lint.Ignore, ","), cfg.Lint.MaxLineLength)

	for _, name := range cfg.EnvNames() {
		fmt.Println()
		printEnvConfig(cfg.Envs[name])
	}
}

// printEnvConfig outputs a single resolved environment.
func printEnvConfig(env config.Env) {
	if IsJSONOutput() {
		data, _ := json.MarshalIndent(env, "", "  ")
		fmt.Println(string(data))
		return
	}

	fmt.Printf("[env:%s]\n", env.Name)
	if env.Description != "" {
		fmt.Printf("  description: %s\n", env.Description)
	}
	if len(env.PassEnv) > 0 {
		fmt.Printf("  passenv:     %s\n", strings.Join(env.PassEnv, ", "))
	}
	for _, key := range sortedKeys(env.SetEnv) {
		fmt.Printf("  setenv:      %s=%s\n", key, env.SetEnv[key])
	}
	for _, line := range env.Provision {
		fmt.Printf("  provision:   %s\n", line)
	}
	for _, line := range env.Commands {
		fmt.Printf("  command:     %s\n", line)
	}
	if env.Image != "" {
		fmt.Printf("  image:       %s\n", env.Image)
	}
	if env.CoverageReport != "" {
		fmt.Printf("  coverage:    %s\n", env.CoverageReport)
	}
}

// sortedKeys returns the map keys in sorted order for stable output.
func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
