// ABOUTME: Root command and global flags for the trigrambot CLI
// ABOUTME: Registers every subcommand and holds the shared flag values
package commands

import (
	"github.com/spf13/cobra"
)

var (
	verbose      bool
	quiet        bool
	outputFormat string
	dbPath       string
)

const banner = `
 ███████ ████   ███  ████  ████    ███  ████   ███  ███████
   ██    ██  █   █  ██     ██  █  ██ ██ ██ ██ ██ ██   ██
   ██    ████    █  ██ ███ ████   █████ ████  ██ ██   ██
   ██    ██  █   █  ██  ██ ██  █  ██ ██ ██ ██ ██ ██   ██
   ██    ██  █  ███  ████  ██  █  ██ ██ ████   ███    ██
`

// NewRootCmd builds the command tree
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "trigrambot",
		Short: "Chat bot that learns word trigrams and babbles them back",
		Long: banner + `
trigrambot learns every message it sees as overlapping word triples,
stores them per table in SQLite, and generates new sentences by walking
the learned chains backward and forward from a seed word.

Run it as an MCP server for agents, as a console chat, or use the
operator commands to ingest, inspect and export tables directly.`,
		SilenceUsage: true,
	}

	cmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
	cmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "Suppress informational output")
	cmd.PersistentFlags().StringVar(&outputFormat, "format", "auto", "Output format: auto, json or yaml")
	cmd.PersistentFlags().StringVar(&dbPath, "db", "", "Database path (overrides TRIGRAMBOT_DB_PATH)")
	cmd.MarkFlagsMutuallyExclusive("verbose", "quiet")

	cmd.AddCommand(
		NewServeCmd(),
		NewChatCmd(),
		NewIngestCmd(),
		NewGenerateCmd(),
		NewCountCmd(),
		NewTablesCmd(),
		NewProfileCmd(),
		NewExportCmd(),
		NewVersionCmd(),
	)

	return cmd
}

// Execute runs the root command
func Execute() error {
	return NewRootCmd().Execute()
}
