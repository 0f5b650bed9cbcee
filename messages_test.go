package graphstream

import (
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMessageType_IsValid(t *testing.T) {
	tests := []struct {
		mt       MessageType
		expected bool
	}{
		{MessageHuman, true},
		{MessageAI, true},
		{MessageTool, true},
		{MessageType("system"), false},
		{MessageType("Human"), false},
		{MessageType(""), false},
	}

	for _, tt := range tests {
		t.Run(tt.mt.String(), func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.mt.IsValid())
		})
	}
}

func TestNewMessage(t *testing.T) {
	msg := NewMessage(MessageHuman, "hello there")

	assert.Equal(t, MessageHuman, msg.Type)
	assert.Equal(t, "hello there", msg.Content)
	assert.Nil(t, msg.ToolContent)

	_, err := uuid.Parse(msg.ID)
	assert.NoError(t, err, "message ids are uuids")

	other := NewMessage(MessageHuman, "hello there")
	assert.NotEqual(t, msg.ID, other.ID, "every message gets a fresh id")
}

func TestNewToolMessage(t *testing.T) {
	call := StreamToolCall{
		ID:     "call-1",
		Name:   "catalog_retriever",
		Args:   raw(`{"query":"socks"}`),
		Result: raw(`{"documents":[]}`),
	}

	msg := NewToolMessage("", call)

	assert.Equal(t, MessageTool, msg.Type)
	require.NotNil(t, msg.ToolContent)
	assert.Equal(t, "call-1", msg.ToolContent.ID)
	assert.Equal(t, "catalog_retriever", msg.ToolContent.Name)
}

func TestStreamMessage_WireShape(t *testing.T) {
	msg := StreamMessage{ID: "m1", Type: MessageHuman, Content: "hi"}

	data, err := json.Marshal(msg)
	require.NoError(t, err)
	// toolContent is omitted for non-tool turns.
	assert.JSONEq(t, `{"id":"m1","type":"human","content":"hi"}`, string(data))
}
