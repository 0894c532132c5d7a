package bots

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/zhouzirui/withjet/backend/internal/model/bot"
	"github.com/zhouzirui/withjet/backend/pkg/utils"
)

// Handler serves bot presentation data.
type Handler struct {
	bots bot.Store
}

// New creates the bot handler.
func New(bots bot.Store) *Handler {
	return &Handler{bots: bots}
}

// RegisterRoutes mounts the bot routes.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/bots/{botID}", h.handleGetBot)
}

// handleGetBot returns the presentation-safe view of one bot.
func (h *Handler) handleGetBot(w http.ResponseWriter, r *http.Request) {
	cfg, ok := h.bots.FindByID(chi.URLParam(r, "botID"))
	if !ok {
		utils.RespondError(w, http.StatusNotFound, bot.ErrBotNotFound.Error())
		return
	}
	utils.RespondJSON(w, http.StatusOK, cfg.Public())
}
