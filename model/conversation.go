package model

import (
	"fmt"

	"github.com/kbukum/modelgate/errors"
)

// Role tags the author of a conversation message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Valid reports whether r is a conversation role.
func (r Role) Valid() bool {
	return r == RoleUser || r == RoleAssistant
}

// Message is a single role-tagged conversation entry.
type Message struct {
	Role    Role   `json:"role" yaml:"role"`
	Content string `json:"content" yaml:"content"`
}

// Conversation is an ordered, append-only message history owned by a single
// caller session. It is not safe for concurrent use and is never persisted.
type Conversation struct {
	messages []Message
}

// NewConversation returns an empty conversation.
func NewConversation() *Conversation {
	return &Conversation{}
}

// Append adds a message. Unknown roles fail with INVALID_PARAMETER.
func (c *Conversation) Append(role Role, content string) error {
	if !role.Valid() {
		return errors.InvalidParameter("role", fmt.Sprintf("%q is not one of user, assistant", role))
	}
	c.messages = append(c.messages, Message{Role: role, Content: content})
	return nil
}

// AppendUser adds a user message.
func (c *Conversation) AppendUser(content string) {
	c.messages = append(c.messages, Message{Role: RoleUser, Content: content})
}

// AppendAssistant adds an assistant message.
func (c *Conversation) AppendAssistant(content string) {
	c.messages = append(c.messages, Message{Role: RoleAssistant, Content: content})
}

// Messages returns a copy of the history in order.
func (c *Conversation) Messages() []Message {
	out := make([]Message, len(c.messages))
	copy(out, c.messages)
	return out
}

// Len returns the number of messages.
func (c *Conversation) Len() int { return len(c.messages) }

// Reset clears the whole history.
func (c *Conversation) Reset() { c.messages = nil }

// Checkpoint marks the current end of the history for a later Rollback.
func (c *Conversation) Checkpoint() int { return len(c.messages) }

// Rollback drops every message appended after checkpoint cp. Out-of-range
// checkpoints are ignored.
func (c *Conversation) Rollback(cp int) {
	if cp < 0 || cp >= len(c.messages) {
		return
	}
	clear(c.messages[cp:])
	c.messages = c.messages[:cp]
}

// Prompt is the input of one generation: the new prompt text plus optional
// prior conversation.
type Prompt struct {
	Text    string
	History []Message
}

// Text builds a prompt without history.
func Text(s string) Prompt { return Prompt{Text: s} }

// Messages returns the full message list to send to a backend: the history
// followed by the prompt as a user message. When the history already ends with
// the same user message it is not repeated.
func (p Prompt) Messages() []Message {
	out := make([]Message, 0, len(p.History)+1)
	out = append(out, p.History...)
	if n := len(out); n > 0 && out[n-1].Role == RoleUser && out[n-1].Content == p.Text {
		return out
	}
	if p.Text != "" || len(out) == 0 {
		out = append(out, Message{Role: RoleUser, Content: p.Text})
	}
	return out
}
