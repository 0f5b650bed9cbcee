package graphstream

import (
	"strings"
	"sync"

	"github.com/google/uuid"
)

// ActiveEntity is the merchant the conversation is scoped to.
type ActiveEntity struct {
	ID   string `json:"id"`
	Type string `json:"type"` // e.g. "restaurant", "store"
}

// SessionState carries the identifiers attached to every submitted turn.
type SessionState struct {
	UserID       string
	SessionID    string
	ActiveEntity ActiveEntity
}

// NewSessionState creates session state with a fresh session id.
func NewSessionState(userID string, entity ActiveEntity) SessionState {
	return SessionState{
		UserID:       userID,
		SessionID:    uuid.NewString(),
		ActiveEntity: entity,
	}
}

// NewStreamRequest builds the submission payload for the given messages.
func (s SessionState) NewStreamRequest(messages []StreamMessage) *StreamRequest {
	return &StreamRequest{
		Messages:     messages,
		UserID:       s.UserID,
		SessionID:    s.SessionID,
		MerchantID:   s.ActiveEntity.ID,
		MerchantType: s.ActiveEntity.Type,
	}
}

// Conversation is the ordered, append-only message list of one session.
// Message order is submission/arrival order and ids are unique within the
// conversation; messages are never mutated or deleted once appended.
//
// Mutation happens on the stream-consuming goroutine via dispatcher
// callbacks (see StreamCallbacks) or explicit Append calls; reads take a
// snapshot so a UI can render from any goroutine.
type Conversation struct {
	mu       sync.RWMutex
	messages []StreamMessage
	ids      map[string]struct{}

	// pending accumulates streamed tokens of the in-flight ai turn
	pending strings.Builder
	status  StreamStatus
}

// NewConversation creates an empty conversation.
func NewConversation() *Conversation {
	return &Conversation{
		ids: make(map[string]struct{}),
	}
}

// Append adds a message, enforcing id uniqueness.
func (c *Conversation) Append(msg StreamMessage) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.append(msg)
}

// append adds a message. Called with c.mu held.
func (c *Conversation) append(msg StreamMessage) error {
	if _, exists := c.ids[msg.ID]; exists {
		return ErrDuplicateMessageID
	}
	c.ids[msg.ID] = struct{}{}
	c.messages = append(c.messages, msg)
	return nil
}

// Messages returns a snapshot of the message list in arrival order.
func (c *Conversation) Messages() []StreamMessage {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]StreamMessage, len(c.messages))
	copy(out, c.messages)
	return out
}

// Len returns the number of messages.
func (c *Conversation) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.messages)
}

// Last returns the most recent message, if any.
func (c *Conversation) Last() (StreamMessage, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if len(c.messages) == 0 {
		return StreamMessage{}, false
	}
	return c.messages[len(c.messages)-1], true
}

// Status returns the latest status line. Statuses have no identity; each
// emission during a stream replaces the previous one.
func (c *Conversation) Status() StreamStatus {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.status
}

// Pending returns the model output streamed so far for the in-flight turn.
func (c *Conversation) Pending() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.pending.String()
}

// StreamCallbacks returns dispatcher callbacks that fold one stream
// invocation into the conversation: tokens accumulate into a pending ai
// turn which is appended on completion, tool calls append tool turns, and
// each status emission overwrites the previous one. Compose with your own
// callbacks for rendering.
func (c *Conversation) StreamCallbacks() Callbacks {
	return Callbacks{
		OnToken: func(token string) {
			c.mu.Lock()
			defer c.mu.Unlock()
			c.pending.WriteString(token)
		},
		OnStatus: func(status StreamStatus) {
			c.mu.Lock()
			defer c.mu.Unlock()
			c.status = status
		},
		OnToolCall: func(call StreamToolCall) {
			c.mu.Lock()
			defer c.mu.Unlock()
			// Duplicate ids cannot happen here: NewToolMessage mints one.
			_ = c.append(NewToolMessage("", call))
		},
		OnComplete: func() {
			c.mu.Lock()
			defer c.mu.Unlock()
			if c.pending.Len() == 0 {
				return
			}
			_ = c.append(NewMessage(MessageAI, c.pending.String()))
			c.pending.Reset()
			c.status = StreamStatus{}
		},
	}
}
