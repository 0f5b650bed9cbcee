package graphstream

import (
	"encoding/json"

	"github.com/google/uuid"
)

// MessageType identifies who produced a conversation turn.
type MessageType string

const (
	// MessageHuman is a turn typed by the user
	MessageHuman MessageType = "human"

	// MessageAI is a turn synthesized from streamed model output
	MessageAI MessageType = "ai"

	// MessageTool is a turn recording a tool invocation
	MessageTool MessageType = "tool"
)

// String returns the string representation of the message type
func (t MessageType) String() string {
	return string(t)
}

// IsValid returns true if the message type is a known type
func (t MessageType) IsValid() bool {
	switch t {
	case MessageHuman, MessageAI, MessageTool:
		return true
	default:
		return false
	}
}

// StreamMessage is one conversation turn sent to or received from the
// server. Messages are created client-side before submission and never
// mutated after creation; a new turn is a new instance.
type StreamMessage struct {
	// ID is opaque and globally unique within a session
	ID string `json:"id"`

	// Type is one of human, ai or tool
	Type MessageType `json:"type"`

	// Content is the turn text
	Content string `json:"content"`

	// ToolContent records the tool invocation for tool turns
	ToolContent *StreamToolCall `json:"toolContent,omitempty"`
}

// NewMessage creates a message of the given type with a fresh id.
func NewMessage(t MessageType, content string) StreamMessage {
	return StreamMessage{
		ID:      uuid.NewString(),
		Type:    t,
		Content: content,
	}
}

// NewToolMessage creates a tool turn carrying the given tool call record.
func NewToolMessage(content string, call StreamToolCall) StreamMessage {
	msg := NewMessage(MessageTool, content)
	msg.ToolContent = &call
	return msg
}

// StreamToolCall is a record of a tool invocation surfaced to the UI.
// Constructed only from tool-end event payloads (see EventData.ToolCall).
type StreamToolCall struct {
	ID     string          `json:"id"`
	Name   string          `json:"name"`
	Args   json.RawMessage `json:"args,omitempty"`
	Result json.RawMessage `json:"result,omitempty"`
}

// StreamStatus is a transient human-readable status line (for example
// "Looking up: winter menu"). It has no identity; each emission replaces
// the previous one.
type StreamStatus struct {
	Content string `json:"content"`
	Name    string `json:"name,omitempty"`
}
