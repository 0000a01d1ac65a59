// ABOUTME: Line-based chat transport over a reader and a writer
// ABOUTME: Every input line is one message from a fixed user; replies are printed back
package console

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/harper/trigrambot/internal/bot"
	"github.com/harper/trigrambot/internal/logging"
)

// Submitter accepts messages for asynchronous handling
type Submitter interface {
	Submit(ctx context.Context, m bot.Message) (string, error)
}

// Console reads messages from in and writes replies to out
type Console struct {
	in     io.Reader
	userID string
	log    *log.Logger

	mu  sync.Mutex
	out io.Writer
}

// New creates a Console speaking for userID
func New(in io.Reader, out io.Writer, userID string, logger *log.Logger) *Console {
	return &Console{
		in:     in,
		out:    out,
		userID: userID,
		log:    logging.Component(logger, "console"),
	}
}

// Send prints a reply. Replies to a message are quoted with "> ".
func (c *Console) Send(_ context.Context, _ bot.Message, r bot.Reply) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	switch r.Kind {
	case bot.ReplyToMessage:
		_, err := fmt.Fprintf(c.out, "> %s\n", r.Text)
		return err
	case bot.ReplyToChat:
		_, err := fmt.Fprintln(c.out, r.Text)
		return err
	}
	return nil
}

// Run submits every non-empty line until in is exhausted or ctx ends.
// It returns the number of submitted messages.
func (c *Console) Run(ctx context.Context, sub Submitter) (int, error) {
	scanner := bufio.NewScanner(c.in)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	n := 0
	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return n, err
		}
		line := scanner.Text()
		if line == "" {
			continue
		}
		id, err := sub.Submit(ctx, bot.Message{UserID: c.userID, Text: line})
		if err != nil {
			return n, fmt.Errorf("submitting line: %w", err)
		}
		c.log.Debug("line submitted", "id", id)
		n++
	}
	if err := scanner.Err(); err != nil {
		return n, fmt.Errorf("reading input: %w", err)
	}
	return n, nil
}
