package workflow

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"aurix/internal/models"
	"aurix/internal/upstream"
)

// ChatService is the external boundary the chat workflow depends on.
type ChatService interface {
	Send(ctx context.Context, message string) (string, error)
}

var (
	ErrEmptyInput   = errors.New("empty input")
	ErrTurnInFlight = errors.New("chat turn already in progress")
)

// Fixed fallback texts. A service reply without usable text and an
// unreachable service are surfaced differently, but both as ordinary
// assistant messages rather than errors.
const (
	FallbackNoReply     = "Sorry, I could not come up with a response. Please try again."
	FallbackUnreachable = "The AI assistant endpoint is not connected yet. Please try again later."
)

// SuggestedPrompts are pure compose-field shortcuts; picking one never
// submits on its own.
var SuggestedPrompts = []string{
	"What are my biggest expenses?",
	"Forecast my cash flow for the next quarter",
	"How did revenue change last month?",
	"Summarize my latest uploaded dataset",
}

// Chat maintains an append-only conversation log and mediates exactly one
// outstanding request/response turn at a time.
type Chat struct {
	mu       sync.Mutex
	service  ChatService
	messages []*models.Message
	inFlight bool
	draft    string
}

func NewChat(service ChatService) *Chat {
	return &Chat{service: service}
}

// Submit appends the user message, performs one chat service turn, and
// appends the assistant reply. Empty input and submissions while a turn is
// in flight are rejected before anything touches the log. Service failures
// never escape: they become fixed fallback assistant messages.
func (c *Chat) Submit(ctx context.Context, text string) (user, assistant *models.Message, err error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, nil, ErrEmptyInput
	}

	c.mu.Lock()
	if c.inFlight {
		c.mu.Unlock()
		return nil, nil, ErrTurnInFlight
	}
	c.inFlight = true
	user = c.appendLocked(models.RoleUser, text)
	c.draft = ""
	c.mu.Unlock()

	reply, sendErr := c.service.Send(ctx, text)
	content := reply
	if sendErr != nil {
		if errors.Is(sendErr, upstream.ErrNoReply) {
			content = FallbackNoReply
		} else {
			content = FallbackUnreachable
		}
	}

	c.mu.Lock()
	assistant = c.appendLocked(models.RoleAssistant, content)
	// Clearing the in-flight flag is the final step of the turn.
	c.inFlight = false
	c.mu.Unlock()
	return user, assistant, nil
}

// appendLocked derives the id from the current log length; safe because at
// most one turn mutates the log at a time.
func (c *Chat) appendLocked(role models.Role, content string) *models.Message {
	msg := &models.Message{
		ID:        int64(len(c.messages)) + 1,
		Role:      role,
		Content:   content,
		CreatedAt: time.Now().UTC(),
	}
	c.messages = append(c.messages, msg)
	return msg
}

// SetDraft populates the compose buffer without side effects.
func (c *Chat) SetDraft(text string) {
	c.mu.Lock()
	c.draft = text
	c.mu.Unlock()
}

func (c *Chat) Draft() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.draft
}

// InFlight reports whether a turn is outstanding.
func (c *Chat) InFlight() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.inFlight
}

// Messages returns a copy of the log in insertion order.
func (c *Chat) Messages() []*models.Message {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]*models.Message, len(c.messages))
	copy(out, c.messages)
	return out
}

// Restore seeds the log from a cached transcript. Only an empty, idle chat
// accepts a restore; anything else keeps its live state.
func (c *Chat) Restore(messages []*models.Message) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.inFlight || len(c.messages) > 0 {
		return
	}
	for _, msg := range messages {
		if msg == nil {
			continue
		}
		c.messages = append(c.messages, msg)
	}
}
