package chat

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// Conversation is the append-only history of one chat surface. The first
// entry is always the bot's welcome turn.
type Conversation struct {
	mu       sync.Mutex
	botID    string
	messages []Message
	pending  bool
	now      func() time.Time
}

// NewConversation seeds a conversation with the synthetic welcome turn.
// A nil clock uses time.Now.
func NewConversation(botID, welcome string, clock func() time.Time) *Conversation {
	if clock == nil {
		clock = time.Now
	}
	c := &Conversation{
		botID:    botID,
		messages: make([]Message, 0, 16),
		now:      clock,
	}
	c.appendLocked(Message{Role: RoleModel, Text: welcome})
	return c
}

// BotID returns the bot this conversation belongs to.
func (c *Conversation) BotID() string {
	return c.botID
}

// Append adds msg to the end of the history and returns it as stored.
func (c *Conversation) Append(msg Message) Message {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.appendLocked(msg)
}

func (c *Conversation) appendLocked(msg Message) Message {
	if msg.ID == "" {
		msg.ID = uuid.NewString()
	}
	if msg.Timestamp.IsZero() {
		msg.Timestamp = c.now().UTC()
	}
	if n := len(c.messages); n > 0 && msg.Timestamp.Before(c.messages[n-1].Timestamp) {
		msg.Timestamp = c.messages[n-1].Timestamp
	}
	if msg.Sources == nil {
		msg.Sources = []Source{}
	}
	c.messages = append(c.messages, msg)
	return msg
}

// Messages returns a copy of the history.
func (c *Conversation) Messages() []Message {
	c.mu.Lock()
	defer c.mu.Unlock()
	copied := make([]Message, len(c.messages))
	copy(copied, c.messages)
	return copied
}

// Len reports the number of turns.
func (c *Conversation) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.messages)
}

// TryBegin claims the conversation for one in-flight turn. It returns false
// when another turn has not settled yet.
func (c *Conversation) TryBegin() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.pending {
		return false
	}
	c.pending = true
	return true
}

// End releases the claim taken by TryBegin.
func (c *Conversation) End() {
	c.mu.Lock()
	c.pending = false
	c.mu.Unlock()
}

// Pending reports whether a turn is in flight.
func (c *Conversation) Pending() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.pending
}
