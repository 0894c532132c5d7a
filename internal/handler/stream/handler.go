package stream

import (
	"context"
	"errors"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/zhouzirui/withjet/backend/internal/model/chat"
	chatService "github.com/zhouzirui/withjet/backend/internal/service/chat"
	"github.com/zhouzirui/withjet/backend/pkg/utils"
)

var errStreamingUnsupported = errors.New("streaming unsupported")

// Handler answers a turn over Server-Sent Events.
type Handler struct {
	chatSvc *chatService.Service
}

// New creates a new stream handler
func New(chatSvc *chatService.Service) *Handler {
	return &Handler{chatSvc: chatSvc}
}

// StreamResponse represents a streaming response chunk
type StreamResponse struct {
	Event     string        `json:"event"`
	SessionID string        `json:"sessionId,omitempty"`
	BotID     string        `json:"botId,omitempty"`
	Message   *chat.Message `json:"message,omitempty"`
	Finished  bool          `json:"finished,omitempty"`
	Error     string        `json:"error,omitempty"`
}

// HandleStreamRequest emits start, message and end for one turn. Failures
// before the reply exists are reported as a single error event.
func (h *Handler) HandleStreamRequest(ctx context.Context, w http.ResponseWriter, sessionID, userMessage string) error {
	flusher, ok := w.(http.Flusher)
	if !ok {
		return errStreamingUnsupported
	}

	session, err := h.chatSvc.GetSession(ctx, sessionID)
	utils.SetupSSEHeaders(w)
	if err != nil {
		h.sendError(w, flusher, err)
		return nil
	}

	utils.SendSSEEvent(w, flusher, "start", StreamResponse{
		Event:     "start",
		SessionID: sessionID,
		BotID:     session.BotID,
	})

	reply, err := h.chatSvc.SubmitTurn(ctx, sessionID, userMessage)
	if err != nil {
		h.sendError(w, flusher, err)
		return nil
	}

	utils.SendSSEEvent(w, flusher, "message", StreamResponse{
		Event:     "message",
		SessionID: sessionID,
		Message:   &reply,
	})
	utils.SendSSEEvent(w, flusher, "end", StreamResponse{
		Event:     "end",
		SessionID: sessionID,
		Finished:  true,
	})

	log.Debug().Str("component", "stream").Str("session_id", sessionID).Str("bot_id", session.BotID).Msg("completed response")
	return nil
}

func (h *Handler) sendError(w http.ResponseWriter, flusher http.Flusher, err error) {
	utils.SendSSEEvent(w, flusher, "error", StreamResponse{
		Event: "error",
		Error: err.Error(),
	})
}
