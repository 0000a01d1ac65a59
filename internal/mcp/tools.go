// ABOUTME: MCP tool definitions and registration for the trigram bot server
// ABOUTME: Defines JSON schemas for the chat, document and profile tools
package mcp

import (
	"github.com/charmbracelet/log"
	"github.com/harper/trigrambot/internal/logging"
	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"
)

// RegisterTools registers all MCP tools with the server
func RegisterTools(server *mcpserver.MCPServer, dispatcher Doer, profiles ProfileReader, logger *log.Logger) *Handlers {
	handlers := &Handlers{
		dispatcher: dispatcher,
		profiles:   profiles,
		log:        logging.Component(logger, "mcp"),
	}

	// 1. send_message - deliver one chat message as a user
	server.AddTool(mcp.Tool{
		Name:        "send_message",
		Description: "Send a chat message to the bot as the given user. Commands like /q, /count and /settable are recognized; anything else is learned and may be answered.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"user_id": map[string]interface{}{
					"type":        "string",
					"description": "Sender or chat identifier",
				},
				"text": map[string]interface{}{
					"type":        "string",
					"description": "Message text",
				},
			},
			Required: []string{"user_id", "text"},
		},
	}, handlers.SendMessage)

	// 2. ingest_document - learn a whole document as one message
	server.AddTool(mcp.Tool{
		Name:        "ingest_document",
		Description: "Learn a document's text as a single message into the sender's active table. Only admins may do this; nothing is returned to the chat.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"user_id": map[string]interface{}{
					"type":        "string",
					"description": "Sender identifier (must be an admin)",
				},
				"text": map[string]interface{}{
					"type":        "string",
					"description": "Document contents",
				},
			},
			Required: []string{"user_id", "text"},
		},
	}, handlers.IngestDocument)

	// 3. get_profile - show a user's settings
	server.AddTool(mcp.Tool{
		Name:        "get_profile",
		Description: "Get a user's bot settings: admin flag, auto-reply mode and active table.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"user_id": map[string]interface{}{
					"type":        "string",
					"description": "User identifier",
				},
			},
			Required: []string{"user_id"},
		},
	}, handlers.GetProfile)

	return handlers
}
