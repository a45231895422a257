// Package chat answers questions about a summary's source documents by
// replaying the conversation to the model alongside the stored file handles.
package chat

import (
	"slices"
	"strings"

	"github.com/google/uuid"
)

// Conversation roles.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is one conversation turn.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Request is the chat entry point body. Messages holds the full history,
// ending with the new question.
type Request struct {
	SummaryID uuid.UUID `json:"summaryId"`
	Messages  []Message `json:"messages"`
}

// Response is the chat entry point envelope.
type Response struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}

// Conversation is an append-only message history owned by one session.
// A user turn is appended before its reply is requested, so a failed call
// leaves it unanswered.
type Conversation struct {
	turns []Message
}

// NewConversation validates and copies history into a new conversation.
func NewConversation(history ...Message) (*Conversation, error) {
	c := &Conversation{turns: make([]Message, 0, len(history)+1)}
	for _, m := range history {
		if err := c.Append(m); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// Append adds m to the end of the history.
func (c *Conversation) Append(m Message) error {
	if m.Role != RoleUser && m.Role != RoleAssistant {
		return ErrInvalidRole
	}
	if strings.TrimSpace(m.Content) == "" {
		return ErrEmptyMessage
	}
	c.turns = append(c.turns, m)
	return nil
}

// Turns returns a copy of the history in order.
func (c *Conversation) Turns() []Message {
	return slices.Clone(c.turns)
}

// Len returns the number of turns.
func (c *Conversation) Len() int {
	return len(c.turns)
}

// Unanswered reports whether the last turn is a user turn with no reply.
func (c *Conversation) Unanswered() bool {
	return len(c.turns) > 0 && c.turns[len(c.turns)-1].Role == RoleUser
}
