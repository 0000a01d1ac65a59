// ABOUTME: Tables command lists every lexeme table the bot knows
// ABOUTME: Marks the default table and supports JSON output
package commands

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

// NewTablesCmd creates the tables command
func NewTablesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "tables",
		Short: "List lexeme tables",
		Long: `List lexeme tables.

Tables are created on first use by /settable or ingest --table. The
default table always exists.

Examples:
  trigrambot tables
  trigrambot tables --format json`,
		Args: cobra.NoArgs,
		RunE: runTables,
	}
}

func runTables(cmd *cobra.Command, args []string) error {
	a, err := openApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	tables, err := a.model.ListTables(cmd.Context())
	if err != nil {
		return err
	}
	defaultName := a.store.DB().DefaultTable().Name()

	out := cmd.OutOrStdout()
	if outputFormat == "json" {
		names := make([]string, 0, len(tables))
		for _, t := range tables {
			names = append(names, t.Name())
		}
		jsonData, err := json.MarshalIndent(names, "", "  ")
		if err != nil {
			return fmt.Errorf("marshaling JSON: %w", err)
		}
		fmt.Fprintf(out, "%s\n", jsonData)
		return nil
	}

	if !quiet {
		fmt.Fprintln(out, titleStyle.Render(fmt.Sprintf("Tables (%d)", len(tables))))
	}
	for _, t := range tables {
		line := "  " + tableStyle.Render(t.Name())
		if t.Name() == defaultName {
			line += " " + dimStyle.Render("(default)")
		}
		fmt.Fprintln(out, line)
	}
	return nil
}
