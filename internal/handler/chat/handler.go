package chat

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/zhouzirui/withjet/backend/internal/model/bot"
	"github.com/zhouzirui/withjet/backend/internal/model/chat"
	chatService "github.com/zhouzirui/withjet/backend/internal/service/chat"
	"github.com/zhouzirui/withjet/backend/pkg/utils"
)

// Handler exposes chat sessions over HTTP.
type Handler struct {
	chatSvc *chatService.Service
}

// New creates the chat handler.
func New(chatSvc *chatService.Service) *Handler {
	return &Handler{chatSvc: chatSvc}
}

// RegisterRoutes mounts the session routes.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/sessions", h.handleCreateSession)
	r.Route("/sessions/{sessionID}", func(r chi.Router) {
		r.Delete("/", h.handleDeleteSession)
		r.Get("/messages", h.handleTranscript)
		r.Post("/turns", h.handleSubmitTurn)
	})
}

type createSessionResponse struct {
	Session  chat.Session   `json:"session"`
	Messages []chat.Message `json:"messages"`
}

// handleCreateSession opens a session seeded with the welcome message.
func (h *Handler) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		BotID string `json:"botId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	session, err := h.chatSvc.CreateSession(r.Context(), payload.BotID)
	if err != nil {
		utils.RespondError(w, StatusFor(err), err.Error())
		return
	}

	messages, err := h.chatSvc.Transcript(r.Context(), session.ID)
	if err != nil {
		utils.RespondError(w, StatusFor(err), err.Error())
		return
	}

	utils.RespondJSON(w, http.StatusCreated, createSessionResponse{Session: session, Messages: messages})
}

func (h *Handler) handleTranscript(w http.ResponseWriter, r *http.Request) {
	messages, err := h.chatSvc.Transcript(r.Context(), chi.URLParam(r, "sessionID"))
	if err != nil {
		utils.RespondError(w, StatusFor(err), err.Error())
		return
	}
	utils.RespondJSON(w, http.StatusOK, messages)
}

// handleSubmitTurn submits a user turn and returns the model reply.
func (h *Handler) handleSubmitTurn(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Text string `json:"text"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	reply, err := h.chatSvc.SubmitTurn(r.Context(), chi.URLParam(r, "sessionID"), payload.Text)
	if err != nil {
		utils.RespondError(w, StatusFor(err), err.Error())
		return
	}
	utils.RespondJSON(w, http.StatusOK, reply)
}

func (h *Handler) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	if err := h.chatSvc.DeleteSession(r.Context(), chi.URLParam(r, "sessionID")); err != nil {
		utils.RespondError(w, StatusFor(err), err.Error())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// StatusFor maps chat service errors onto HTTP status codes.
func StatusFor(err error) int {
	switch {
	case errors.Is(err, chatService.ErrSessionNotFound), errors.Is(err, bot.ErrBotNotFound):
		return http.StatusNotFound
	case errors.Is(err, chatService.ErrTurnInFlight):
		return http.StatusConflict
	case errors.Is(err, chatService.ErrEmptyInput), errors.Is(err, chatService.ErrBotRequired):
		return http.StatusBadRequest
	case errors.Is(err, chatService.ErrBotArchived):
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}
