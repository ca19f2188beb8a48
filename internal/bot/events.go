// ABOUTME: Transport-agnostic inbound event model and outbound transport interface
// ABOUTME: The telegram adapter converts platform updates into these events

package bot

import "context"

// Event kinds routed by the controller.
const (
	EventCommand  = "command"
	EventCallback = "callback"
	EventText     = "text"
)

// Event is one inbound transport event, normalized away from the platform API.
type Event struct {
	// Kind is one of EventCommand, EventCallback, EventText
	Kind string

	// EventID uniquely identifies the event on the platform, used for dedupe
	EventID string

	ChatID   int64
	UserID   int64
	Username string

	// Command is the bare command name for EventCommand (no slash)
	Command string

	// Text is the message body for EventText
	Text string

	// Data is the opaque callback payload for EventCallback
	Data string

	// MessageID is the message the callback's keyboard is attached to
	MessageID int
}

// Button is one inline keyboard button: visible label plus callback payload.
type Button struct {
	Text string
	Data string
}

// Transport sends outbound messages. Implementations must be safe for
// concurrent use; every call is bounded by its context.
type Transport interface {
	// SendText sends a plain text message
	SendText(ctx context.Context, chatID int64, text string) error

	// SendMarkdown sends a Markdown-formatted message
	SendMarkdown(ctx context.Context, chatID int64, text string) error

	// SendKeyboard sends a message with an inline keyboard attached
	SendKeyboard(ctx context.Context, chatID int64, text string, keyboard [][]Button) error

	// EditKeyboard replaces the text and keyboard of an existing message.
	// A nil keyboard removes the buttons.
	EditKeyboard(ctx context.Context, chatID int64, messageID int, text string, keyboard [][]Button) error
}
