// Package chat is the client side of the booking assistant at /api/chatbot.
package chat

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"sync"

	"github.com/BradenHooton/frontdesk/pkg/dto"
)

// MsgApology replaces the assistant's turn when the request fails.
const MsgApology = "Lo siento, ha ocurrido un error. Por favor, inténtalo de nuevo."

type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

type Message struct {
	Role Role
	Text string
	// Failed marks an apology standing in for a reply that never came.
	Failed bool
}

// API is the transport. *gate.Client implements it.
type API interface {
	DoJSON(ctx context.Context, method, path string, in, out any) error
}

type request struct {
	Message        string            `json:"message"`
	ConversationID string            `json:"conversation_id,omitempty"`
	State          *dto.BookingState `json:"state,omitempty"`
}

type response struct {
	Response       string           `json:"response"`
	State          dto.BookingState `json:"state"`
	ConversationID string           `json:"conversation_id"`
}

// Conversation is one chat window: its history, booking progress and id.
type Conversation struct {
	api    API
	logger *slog.Logger

	mu      sync.Mutex
	id      string
	state   *dto.BookingState
	history []Message
}

func NewConversation(api API, logger *slog.Logger) *Conversation {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Conversation{api: api, logger: logger}
}

func (c *Conversation) ID() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.id
}

// State is the booking progress echoed back on the next Send.
func (c *Conversation) State() dto.BookingState {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state == nil {
		return dto.BookingState{Step: dto.StepInitial}
	}
	return *c.state
}

func (c *Conversation) History() []Message {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]Message(nil), c.history...)
}

// Send posts text and returns the assistant's reply. Blank input is ignored.
// On failure the apology is recorded as the reply and the error returned;
// booking progress is kept so the user can simply retry.
func (c *Conversation) Send(ctx context.Context, text string) (string, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return "", nil
	}

	c.mu.Lock()
	req := request{Message: text, ConversationID: c.id, State: c.state}
	c.history = append(c.history, Message{Role: RoleUser, Text: text})
	c.mu.Unlock()

	var resp response
	if err := c.api.DoJSON(ctx, http.MethodPost, "/api/chatbot", req, &resp); err != nil {
		c.logger.Error("chat request failed", slog.Any("error", err))
		c.mu.Lock()
		c.history = append(c.history, Message{Role: RoleAssistant, Text: MsgApology, Failed: true})
		c.mu.Unlock()
		return MsgApology, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if resp.ConversationID != "" {
		c.id = resp.ConversationID
	}
	state := resp.State
	c.state = &state
	c.history = append(c.history, Message{Role: RoleAssistant, Text: resp.Response})
	return resp.Response, nil
}

// Reset starts a new conversation.
func (c *Conversation) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.id = ""
	c.state = nil
	c.history = nil
}
