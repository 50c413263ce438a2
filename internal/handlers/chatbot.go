package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/BradenHooton/frontdesk/internal/chatbot"
	"github.com/BradenHooton/frontdesk/pkg/dto"
	pkghttp "github.com/BradenHooton/frontdesk/pkg/http"
	"github.com/google/uuid"
)

// ChatResponder produces the assistant's next turn
type ChatResponder interface {
	Respond(ctx context.Context, message string, state *dto.BookingState) (*chatbot.Reply, error)
}

type ChatHandler struct {
	bot    ChatResponder
	logger *slog.Logger
}

func NewChatHandler(bot ChatResponder, logger *slog.Logger) *ChatHandler {
	return &ChatHandler{bot: bot, logger: logger}
}

type ChatRequest struct {
	Message        string            `json:"message" validate:"max=1000"`
	ConversationID string            `json:"conversation_id" validate:"omitempty,uuid"`
	State          *dto.BookingState `json:"state"`
}

type ChatResponse struct {
	Response       string           `json:"response"`
	State          dto.BookingState `json:"state"`
	ConversationID string           `json:"conversation_id"`
}

// Respond handles POST /api/chatbot
func (h *ChatHandler) Respond(w http.ResponseWriter, r *http.Request) {
	var req ChatRequest
	if err := pkghttp.DecodeJSON(w, r, &req); err != nil {
		pkghttp.WriteBadRequest(w, "No data provided")
		return
	}
	if strings.TrimSpace(req.Message) == "" {
		pkghttp.WriteBadRequest(w, "Empty message")
		return
	}
	if err := ValidateRequest(req); err != nil {
		pkghttp.WriteBadRequest(w, err.Error())
		return
	}

	conversationID := req.ConversationID
	if conversationID == "" {
		conversationID = uuid.NewString()
	}

	reply, err := h.bot.Respond(r.Context(), req.Message, req.State)
	if err != nil {
		h.logger.Error("chatbot response failed",
			slog.String("conversation_id", conversationID),
			slog.Any("error", err))
		pkghttp.WriteInternalError(w, "Lo siento, ha ocurrido un error. Por favor, intenta de nuevo más tarde.")
		return
	}

	pkghttp.WriteJSON(w, http.StatusOK, ChatResponse{
		Response:       reply.Response,
		State:          reply.State,
		ConversationID: conversationID,
	})
}
