package chat

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BradenHooton/frontdesk/pkg/dto"
	"github.com/BradenHooton/frontdesk/pkg/gate"
)

// echoBot advances one step per message and records what it was sent.
type echoBot struct {
	mu       sync.Mutex
	received []request
	status   int
}

func (b *echoBot) requests() []request {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]request(nil), b.received...)
}

func (b *echoBot) fail(status int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.status = status
}

func (b *echoBot) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	defer b.mu.Unlock()

	var req request
	_ = json.NewDecoder(r.Body).Decode(&req)
	b.received = append(b.received, req)

	if b.status != 0 {
		w.WriteHeader(b.status)
		return
	}

	next := dto.BookingState{Step: dto.StepCollectingName}
	if req.State != nil && req.State.Step == dto.StepCollectingName {
		next = dto.BookingState{Step: dto.StepCollectingEmail, Data: dto.BookingData{Name: req.Message}}
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(response{
		Response:       "eco: " + req.Message,
		State:          next,
		ConversationID: "4b1c1a5e-8a55-4b2c-9f0e-0d6f3f2f8a11",
	})
}

func newTestConversation(t *testing.T, bot *echoBot) *Conversation {
	t.Helper()
	srv := httptest.NewServer(bot)
	t.Cleanup(srv.Close)

	client, err := gate.NewClient(srv.URL, nil)
	require.NoError(t, err)
	return NewConversation(client, nil)
}

func TestConversation_CarriesStateAndID(t *testing.T) {
	bot := &echoBot{}
	c := newTestConversation(t, bot)

	reply, err := c.Send(context.Background(), "quiero una cita")
	require.NoError(t, err)
	assert.Equal(t, "eco: quiero una cita", reply)
	assert.Equal(t, dto.StepCollectingName, c.State().Step)
	assert.NotEmpty(t, c.ID())

	_, err = c.Send(context.Background(), "Lucía")
	require.NoError(t, err)
	assert.Equal(t, dto.StepCollectingEmail, c.State().Step)
	assert.Equal(t, "Lucía", c.State().Data.Name)

	received := bot.requests()
	require.Len(t, received, 2)
	assert.Nil(t, received[0].State)
	assert.Empty(t, received[0].ConversationID)
	require.NotNil(t, received[1].State)
	assert.Equal(t, dto.StepCollectingName, received[1].State.Step)
	assert.Equal(t, c.ID(), received[1].ConversationID)

	assert.Len(t, c.History(), 4)
}

func TestConversation_FailureAppendsApology(t *testing.T) {
	bot := &echoBot{}
	c := newTestConversation(t, bot)

	_, err := c.Send(context.Background(), "hola")
	require.NoError(t, err)
	before := c.State()

	bot.fail(http.StatusInternalServerError)
	reply, err := c.Send(context.Background(), "Lucía")
	require.Error(t, err)
	assert.Equal(t, MsgApology, reply)
	assert.Equal(t, before, c.State())

	history := c.History()
	last := history[len(history)-1]
	assert.Equal(t, RoleAssistant, last.Role)
	assert.True(t, last.Failed)
	assert.Equal(t, MsgApology, last.Text)
}

func TestConversation_BlankIgnored(t *testing.T) {
	bot := &echoBot{}
	c := newTestConversation(t, bot)

	reply, err := c.Send(context.Background(), "   ")
	require.NoError(t, err)
	assert.Empty(t, reply)
	assert.Empty(t, bot.requests())
	assert.Empty(t, c.History())
	assert.Equal(t, dto.StepInitial, c.State().Step)
}

func TestConversation_Reset(t *testing.T) {
	c := newTestConversation(t, &echoBot{})
	_, err := c.Send(context.Background(), "hola")
	require.NoError(t, err)

	c.Reset()
	assert.Empty(t, c.ID())
	assert.Empty(t, c.History())
	assert.Equal(t, dto.StepInitial, c.State().Step)
}
