package domain

import (
	"time"

	"github.com/google/uuid"
)

// Role is the author of a message
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// ContentKind distinguishes literal text from an opaque renderable block
type ContentKind string

const (
	ContentText  ContentKind = "text"
	ContentBlock ContentKind = "block"
)

// Message is one entry of the persisted conversation history.
// Kind never changes after creation. Overlay is set at most once, when the
// turn that produced the message is finalized.
type Message struct {
	ID        string      `json:"id"`
	Role      Role        `json:"role"`
	Kind      ContentKind `json:"kind"`
	Content   string      `json:"content,omitempty"` // markdown source for text messages
	Block     *Payload    `json:"block,omitempty"`   // renderable unit for block messages
	Overlay   *Payload    `json:"overlay,omitempty"` // confirmation surfaced next to the text
	CreatedAt time.Time   `json:"created_at"`
}

// NewTextMessage creates a plain-text message
func NewTextMessage(role Role, content string) Message {
	return Message{
		ID:        uuid.New().String(),
		Role:      role,
		Kind:      ContentText,
		Content:   content,
		CreatedAt: time.Now(),
	}
}

// NewBlockMessage creates an assistant message holding a rendered block
func NewBlockMessage(p *Payload) Message {
	return Message{
		ID:        uuid.New().String(),
		Role:      RoleAssistant,
		Kind:      ContentBlock,
		Block:     p,
		CreatedAt: time.Now(),
	}
}

// IsBlock reports whether the message is a rendered block of kind k
func (m Message) IsBlock(k PayloadKind) bool {
	return m.Kind == ContentBlock && m.Block != nil && m.Block.Kind == k
}

// Snapshot is the persisted state of one conversation
type Snapshot struct {
	Messages        []Message `json:"messages"`
	SessionID       string    `json:"session_id,omitempty"`
	ProfileInjected bool      `json:"profile_injected"`
}
