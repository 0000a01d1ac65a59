// ABOUTME: Serve command starts the Model Context Protocol server
// ABOUTME: Exposes chat, document and profile tools over stdio
package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/harper/trigrambot/internal/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"
)

const shutdownTimeout = 10 * time.Second

// NewServeCmd creates the serve command
func NewServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start MCP server for LLM agents",
		Long: `Start MCP server for LLM agents

Runs trigrambot as an MCP (Model Context Protocol) server over stdio.
Every tool call is one chat message routed through the dispatcher,
so agents see the same replies a chat user would.`,
		Args: cobra.NoArgs,
		RunE: runServe,
		Example: `  # Start MCP server (typically called by an agent host)
  trigrambot serve

  # Configure in claude_desktop_config.json:
  # {
  #   "mcpServers": {
  #     "trigrambot": {
  #       "command": "trigrambot",
  #       "args": ["serve"]
  #     }
  #   }
  # }`,
	}
}

func runServe(cmd *cobra.Command, args []string) error {
	a, err := openApp(cmd)
	if err != nil {
		return err
	}

	d := a.dispatcher(a.service(), nil)
	server := mcpserver.NewMCPServer("trigrambot", versionInfo.Version)
	mcp.RegisterTools(server, d, a.profiles, a.log)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a.log.Info("MCP server starting on stdio", "db", a.store.DB().Path())

	serverErr := make(chan error, 1)
	go func() {
		serverErr <- mcpserver.ServeStdio(server)
	}()

	var runErr error
	select {
	case <-ctx.Done():
		a.log.Info("shutdown signal received")
	case err := <-serverErr:
		if err != nil {
			runErr = fmt.Errorf("server error: %w", err)
		}
	}

	sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := d.Shutdown(sctx); err != nil {
		a.log.Warn("dispatcher did not drain", "err", err)
	}
	if err := a.Close(); err != nil {
		a.log.Warn("closing storage", "err", err)
	}
	a.log.Info("shutdown complete")

	return runErr
}
