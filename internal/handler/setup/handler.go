package setup

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/zhouzirui/withjet/backend/internal/model/bot"
	"github.com/zhouzirui/withjet/backend/pkg/utils"
)

// Assistant drafts a bot configuration from a site URL and description.
type Assistant interface {
	Available() bool
	GenerateInitialConfig(ctx context.Context, url, description string) bot.Draft
}

// Handler serves the setup assistant.
type Handler struct {
	assistant Assistant
}

// New creates the setup handler.
func New(assistant Assistant) *Handler {
	return &Handler{assistant: assistant}
}

// RegisterRoutes mounts the setup routes.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/setup/generate", h.handleGenerate)
}

func (h *Handler) handleGenerate(w http.ResponseWriter, r *http.Request) {
	if h.assistant == nil || !h.assistant.Available() {
		utils.RespondError(w, http.StatusServiceUnavailable, "setup assistant unavailable")
		return
	}

	var payload struct {
		URL         string `json:"url"`
		Description string `json:"description"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if strings.TrimSpace(payload.URL) == "" && strings.TrimSpace(payload.Description) == "" {
		utils.RespondError(w, http.StatusBadRequest, "url or description is required")
		return
	}

	// An empty draft is a valid answer; the caller falls back to manual setup.
	draft := h.assistant.GenerateInitialConfig(r.Context(), payload.URL, payload.Description)
	utils.RespondJSON(w, http.StatusOK, draft)
}
