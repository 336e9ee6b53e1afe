// Package cli — list.go implements the "matrixctl list" command.
//
// The list command shows every configured environment together with its
// last recorded outcome from the work directory's result journal. It is
// purely informational — nothing is executed.
package cli

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mmr-tortoise/matrixctl/internal/model"
	"github.com/mmr-tortoise/matrixctl/internal/report"
)

// NewListCommand creates the "list" cobra command.
func NewListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List configured environments",
		Long: `List every configured environment with its description and the outcome
of its last run, if any.

Examples:
  matrixctl list
  matrixctl list --json`,

		Args: cobra.NoArgs,

		RunE: func(cmd *cobra.Command, args []string) error {
			return runList()
		},
	}
}

// listEntry is one row of list output.
type listEntry struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Default     bool   `json:"default"`
	LastStatus  string `json:"lastStatus,omitempty"`
}

// runList is the main logic function for the list command.
func runList() error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	// The journal may not exist yet; that just means no history.
	last, err := report.NewStore(cfg.WorkDirPath()).LastResults()
	if err != nil {
		return err
	}

	inEnvList := make(map[string]bool, len(cfg.Matrix.EnvList))
	for _, name := range cfg.Matrix.EnvList {
		inEnvList[name] = true
	}

	entries := make([]listEntry, 0, len(cfg.Envs))
	for _, name := range cfg.EnvNames() {
		entry := listEntry{
			Name:        name,
			Description: cfg.Envs[name].Description,
			Default:     inEnvList[name],
		}
		if result, ok := last[name]; ok {
			entry.LastStatus = result.Status.String()
		}
		entries = append(entries, entry)
	}

	printListResult(entries)
	return nil
}

// printListResult outputs the entries in text or JSON format.
func printListResult(entries []listEntry) {
	if IsJSONOutput() {
		type resultJSON struct {
			Environments []listEntry `json:"environments"`
		}
		data, _ := json.MarshalIndent(resultJSON{Environments: entries}, "", "  ")
		fmt.Println(string(data))
		return
	}

	if len(entries) == 0 {
		fmt.Println("No environments configured.")
		return
	}

	fmt.Printf("%-16s %-9s %-10s %s\n", "ENV", "DEFAULT", "LAST", "DESCRIPTION")
	for _, entry := range entries {
		deflt := ""
		if entry.Default {
			deflt = "*"
		}

		// Pad on the plain text before styling; the escape sequences
		// would otherwise break the column alignment.
		last := entry.LastStatus
		if last == "" {
			last = "-"
		}
		padded := fmt.Sprintf("%-10s", last)
		if status, err := model.ParseEnvStatus(entry.LastStatus); err == nil {
			padded = strings.Replace(padded, entry.LastStatus, renderStatus(status), 1)
		}

		fmt.Printf("%-16s %-9s %s %s\n", entry.Name, deflt, padded, entry.Description)
	}
}
