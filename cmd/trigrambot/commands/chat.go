// ABOUTME: Chat command runs the bot against stdin and stdout
// ABOUTME: Each input line is a message from one user; replies print as they arrive
package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/harper/trigrambot/internal/transport/console"
)

var chatUser string

// NewChatCmd creates the chat command
func NewChatCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Chat with the bot on the console",
		Long: `Chat with the bot on the console.

Every line read from stdin is handled as a message from --user.
Plain text is learned; commands such as /q, /count, /settable and
/help behave as they do in any other transport.

Examples:
  trigrambot chat
  trigrambot chat --user alice
  cat corpus.txt | trigrambot chat --user loader`,
		Args: cobra.NoArgs,
		RunE: runChat,
	}

	cmd.Flags().StringVar(&chatUser, "user", "console", "User id the lines are sent as")

	return cmd
}

func runChat(cmd *cobra.Command, args []string) error {
	if chatUser == "" {
		return fmt.Errorf("--user must not be empty")
	}

	a, err := openApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	c := console.New(cmd.InOrStdin(), cmd.OutOrStdout(), chatUser, a.log)
	d := a.dispatcher(a.service(), c)

	n, runErr := c.Run(ctx, d)

	sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := d.Shutdown(sctx); err != nil {
		a.log.Warn("dispatcher did not drain", "err", err)
	}
	a.log.Debug("chat finished", "messages", n)

	if runErr != nil && ctx.Err() == nil {
		return runErr
	}
	return nil
}
