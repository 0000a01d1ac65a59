// ABOUTME: Ingest command teaches the model text from arguments or a file
// ABOUTME: Operator path that writes straight into a table, bypassing chat permissions
package commands

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

var (
	ingestFile  string
	ingestTable string
	ingestLines bool
)

// NewIngestCmd creates the ingest command
func NewIngestCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ingest [text]",
		Short: "Learn text into a table",
		Long: `Learn text into a table.

Text comes from the arguments or from --file. By default the whole input
is learned as one message; with --lines every non-empty line is its own
message, so sentence boundaries are kept.

Examples:
  trigrambot ingest "the cat sat on the mat"
  trigrambot ingest --file corpus.txt --lines
  trigrambot ingest --table poems --file sonnets.txt --lines`,
		RunE: runIngest,
	}

	cmd.Flags().StringVarP(&ingestFile, "file", "f", "", "Read text from file")
	cmd.Flags().StringVarP(&ingestTable, "table", "t", "", "Target table (created if missing; default table if empty)")
	cmd.Flags().BoolVar(&ingestLines, "lines", false, "Learn each line as a separate message")

	return cmd
}

// maxLineSize bounds a single line in --lines mode.
const maxLineSize = 1024 * 1024

type ingestResult struct {
	Table    string `json:"table"`
	Messages int    `json:"messages"`
	Windows  int    `json:"windows"`
}

func runIngest(cmd *cobra.Command, args []string) error {
	text, err := ingestInput(args)
	if err != nil {
		return err
	}

	a, err := openApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	ctx := cmd.Context()
	table, err := a.writeTable(ctx, ingestTable)
	if err != nil {
		return fmt.Errorf("resolving table: %w", err)
	}

	messages := []string{text}
	if ingestLines {
		if messages, err = splitLines(text); err != nil {
			return err
		}
	}

	result := ingestResult{Table: table.Name()}
	for _, m := range messages {
		n, err := a.model.Ingest(ctx, table, m)
		if err != nil {
			return fmt.Errorf("ingesting into %s: %w", table, err)
		}
		if n > 0 {
			result.Messages++
			result.Windows += n
		}
	}

	if outputFormat == "json" {
		jsonData, err := json.MarshalIndent(result, "", "  ")
		if err != nil {
			return fmt.Errorf("marshaling JSON: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s\n", jsonData)
		return nil
	}

	if !quiet {
		fmt.Fprintln(cmd.OutOrStdout(), successStyle.Render(
			fmt.Sprintf("Learned %d windows from %d messages into %s", result.Windows, result.Messages, result.Table)))
	}
	return nil
}

func ingestInput(args []string) (string, error) {
	switch {
	case ingestFile != "" && len(args) > 0:
		return "", fmt.Errorf("give text either as arguments or with --file, not both")
	case ingestFile != "":
		data, err := os.ReadFile(ingestFile)
		if err != nil {
			return "", fmt.Errorf("reading %s: %w", ingestFile, err)
		}
		return string(data), nil
	case len(args) > 0:
		return strings.Join(args, " "), nil
	}
	return "", fmt.Errorf("no text given; pass it as arguments or use --file")
}

func splitLines(text string) ([]string, error) {
	var lines []string
	scanner := bufio.NewScanner(strings.NewReader(text))
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)
	for scanner.Scan() {
		if line := strings.TrimSpace(scanner.Text()); line != "" {
			lines = append(lines, line)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("splitting lines: %w", err)
	}
	return lines, nil
}
