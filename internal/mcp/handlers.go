// ABOUTME: MCP tool handler implementations for the trigram bot server
// ABOUTME: Routes tool calls through the dispatcher and reports replies as JSON
package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/harper/trigrambot/internal/bot"
	"github.com/harper/trigrambot/internal/models"
	"github.com/mark3labs/mcp-go/mcp"
)

// Doer runs one message synchronously
type Doer interface {
	Do(ctx context.Context, m bot.Message) (bot.Reply, error)
}

// ProfileReader looks up cached profiles
type ProfileReader interface {
	Get(userID string) (models.Profile, bool)
}

// Handlers contains the handler functions for all MCP tools
type Handlers struct {
	dispatcher Doer
	profiles   ProfileReader
	log        *log.Logger
}

type messageResponse struct {
	MessageID string `json:"message_id"`
	Reply     string `json:"reply"`
	Text      string `json:"text,omitempty"`
}

func (h *Handlers) run(ctx context.Context, request mcp.CallToolRequest, document bool) (*mcp.CallToolResult, error) {
	userID, err := request.RequireString("user_id")
	if err != nil {
		return mcp.NewToolResultError("user_id argument is required and must be a string"), nil
	}
	text, err := request.RequireString("text")
	if err != nil {
		return mcp.NewToolResultError("text argument is required and must be a string"), nil
	}

	msg := bot.Message{
		ID:       uuid.NewString(),
		UserID:   userID,
		Text:     text,
		Document: document,
	}
	h.log.Debug("tool call", "id", msg.ID, "user", userID, "document", document)
	reply, err := h.dispatcher.Do(ctx, msg)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("message failed: %v", err)), nil
	}

	response := messageResponse{
		MessageID: msg.ID,
		Reply:     reply.Kind.String(),
		Text:      reply.Text,
	}
	responseJSON, err := json.Marshal(response)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to marshal response: %v", err)), nil
	}
	return mcp.NewToolResultText(string(responseJSON)), nil
}

// SendMessage handles the send_message tool
func (h *Handlers) SendMessage(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return h.run(ctx, request, false)
}

// IngestDocument handles the ingest_document tool
func (h *Handlers) IngestDocument(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return h.run(ctx, request, true)
}

// GetProfile handles the get_profile tool
func (h *Handlers) GetProfile(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	userID, err := request.RequireString("user_id")
	if err != nil {
		return mcp.NewToolResultError("user_id argument is required and must be a string"), nil
	}

	p, ok := h.profiles.Get(userID)
	if !ok {
		return mcp.NewToolResultError(fmt.Sprintf("no profile for user %s", userID)), nil
	}

	responseJSON, err := json.Marshal(p)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to marshal profile: %v", err)), nil
	}
	return mcp.NewToolResultText(string(responseJSON)), nil
}
