// ABOUTME: Generate and count commands read a table without touching profiles
// ABOUTME: Generate walks a chain from a seed word; count sums a word's occurrences
package commands

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

var (
	generateTable string
	countTable    string
)

// NewGenerateCmd creates the generate command
func NewGenerateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "generate [word]",
		Short: "Generate a sentence from a table",
		Long: `Generate a sentence from a table.

With a word, the sentence is grown backward and forward around a
random occurrence of it. Without one, generation starts from a random
sentence opening. "Not found" means the table has nothing to offer.

Examples:
  trigrambot generate
  trigrambot generate cat
  trigrambot generate --table poems moon`,
		Args: cobra.MaximumNArgs(1),
		RunE: runGenerate,
	}

	cmd.Flags().StringVarP(&generateTable, "table", "t", "", "Table to read (default table if empty)")

	return cmd
}

func runGenerate(cmd *cobra.Command, args []string) error {
	a, err := openApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	table, err := a.readTable(generateTable)
	if err != nil {
		return err
	}

	seed := ""
	if len(args) == 1 {
		seed = args[0]
	}

	text, err := a.model.Generate(cmd.Context(), table, seed)
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), text)
	return nil
}

// NewCountCmd creates the count command
func NewCountCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "count WORD",
		Short: "Count how often a word was learned",
		Long: `Count how often a word was learned.

Sums the counts of every stored triple containing the word, so a word
seen once in the middle of a message counts three times.

Examples:
  trigrambot count cat
  trigrambot count --table poems moon --format json`,
		Args: cobra.ExactArgs(1),
		RunE: runCount,
	}

	cmd.Flags().StringVarP(&countTable, "table", "t", "", "Table to read (default table if empty)")

	return cmd
}

type countResult struct {
	Table string `json:"table"`
	Word  string `json:"word"`
	Count int64  `json:"count"`
}

func runCount(cmd *cobra.Command, args []string) error {
	a, err := openApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	table, err := a.readTable(countTable)
	if err != nil {
		return err
	}

	n, ok, err := a.model.CountFor(cmd.Context(), table, args[0])
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("word must not be blank")
	}

	if outputFormat == "json" {
		jsonData, err := json.MarshalIndent(countResult{Table: table.Name(), Word: args[0], Count: n}, "", "  ")
		if err != nil {
			return fmt.Errorf("marshaling JSON: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s\n", jsonData)
		return nil
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Count %d\n", n)
	return nil
}
