// ABOUTME: Reply values returned to transports and the fixed bot texts
// ABOUTME: A reply targets the triggering message, the whole chat, or nobody
package bot

import "fmt"

// ReplyKind says where a reply goes
type ReplyKind int

const (
	// NoReply sends nothing back.
	NoReply ReplyKind = iota
	// ReplyToMessage answers the triggering message directly.
	ReplyToMessage
	// ReplyToChat posts to the chat without quoting the message.
	ReplyToChat
)

// String returns the name used in logs and tool results.
func (k ReplyKind) String() string {
	switch k {
	case NoReply:
		return "none"
	case ReplyToMessage:
		return "message"
	case ReplyToChat:
		return "chat"
	}
	return "unknown"
}

// Reply is the outcome of handling one message
type Reply struct {
	Kind ReplyKind `json:"kind"`
	Text string    `json:"text,omitempty"`
}

func none() Reply { return Reply{Kind: NoReply} }
func toMessage(text string) Reply { return Reply{Kind: ReplyToMessage, Text: text} }
func toChat(text string) Reply { return Reply{Kind: ReplyToChat, Text: text} }
func countText(n int64) string { return fmt.Sprintf("Count %d", n) }
func activeTableText(name string) string { return "Active table: " + name }
func invalidTableText(name string) string { return "Invalid table name: " + name }

const (
	emptyWordText = "Empty word provided"
	adminOnlyText = "This command is for admins only"

	greetingText = `Hi! I learn how people talk here and sometimes join in.
Every message you send teaches me a little more.
Send /help to see what I can do.`

	helpText = `Commands:
/q <word> - say something around a word
/count <word> - how often a word shows up
/off - stop answering automatically
/on - answer automatically again
/table - show the active table
/settable <name> - switch to another table
/help - this message`

	adminHelpText = `Admin commands:
/tables - list every table
/adminhelp - this message
Documents sent by an admin are learned as a single message.`
)
