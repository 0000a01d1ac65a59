// ABOUTME: Export command dumps a lexeme table to YAML or JSON
// ABOUTME: Writes to stdout or to a file given with --output
package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/harper/trigrambot/internal/storage/sqlite"
)

var (
	exportTable  string
	exportOutput string
)

// NewExportCmd creates the export command
func NewExportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export a table's trigrams",
		Long: `Export a table's trigrams with their counts.

YAML is written unless --format json is given.

Examples:
  trigrambot export
  trigrambot export --table poems --format json
  trigrambot export --table poems --output poems.yaml`,
		Args: cobra.NoArgs,
		RunE: runExport,
	}

	cmd.Flags().StringVarP(&exportTable, "table", "t", "", "Table to export (default table if empty)")
	cmd.Flags().StringVarP(&exportOutput, "output", "o", "", "Write to file instead of stdout")

	return cmd
}

func runExport(cmd *cobra.Command, args []string) error {
	format, err := exportFormat(outputFormat)
	if err != nil {
		return err
	}

	a, err := openApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	table, err := a.readTable(exportTable)
	if err != nil {
		return err
	}

	if exportOutput != "" {
		if err := a.store.ExportToFile(cmd.Context(), table, exportOutput, format); err != nil {
			return err
		}
		if !quiet {
			fmt.Fprintln(cmd.OutOrStdout(), successStyle.Render(fmt.Sprintf("Exported %s to %s", table, exportOutput)))
		}
		return nil
	}

	data, err := a.store.Export(cmd.Context(), table)
	if err != nil {
		return err
	}
	return sqlite.EncodeExport(cmd.OutOrStdout(), data, format)
}
