// Package bot wires the messaging transport to the conversation state
// machine and the document generation pipeline, gated by the admin
// directory.
package bot

import "context"

// Update is one inbound messaging event: either a command with an
// optional argument or a freeform text message.
type Update struct {
	UserID  string
	Text    string // raw message text
	Command string // command name without the slash, "" for freeform text
	Arg     string // first whitespace-delimited token after the command name
}

// Gateway sends outbound replies and attachments. Implementations own
// the transport details; the core never sees structured payloads.
type Gateway interface {
	// SendText sends a plain text reply to the user.
	SendText(ctx context.Context, userID, text string) error
	// SendDocument sends the file at path as an attachment named filename.
	SendDocument(ctx context.Context, userID, filename, path string) error
}
