package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/log"

	"github.com/zhouzirui/withjet/backend/internal/config"
	"github.com/zhouzirui/withjet/backend/internal/handler/bots"
	"github.com/zhouzirui/withjet/backend/internal/handler/chat"
	"github.com/zhouzirui/withjet/backend/internal/handler/embed"
	"github.com/zhouzirui/withjet/backend/internal/handler/setup"
	"github.com/zhouzirui/withjet/backend/internal/handler/stream"
	"github.com/zhouzirui/withjet/backend/internal/handler/ws"
	middlewarePkg "github.com/zhouzirui/withjet/backend/internal/middleware"
	"github.com/zhouzirui/withjet/backend/internal/model/bot"
	chatService "github.com/zhouzirui/withjet/backend/internal/service/chat"
	"github.com/zhouzirui/withjet/backend/pkg/utils"
)

// NewRouter wires HTTP routes to core services.
func NewRouter(botStore bot.Store, chatSvc *chatService.Service, assistant setup.Assistant, widgetCfg config.WidgetConfig) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middlewarePkg.CORS(widgetCfg.OriginAllowed))

	botHandler := bots.New(botStore)
	chatHandler := chat.New(chatSvc)
	streamHandler := stream.New(chatSvc)
	wsHandler := ws.New(chatSvc, widgetCfg.OriginAllowed)
	setupHandler := setup.New(assistant)

	r.Route("/api", func(api chi.Router) {
		botHandler.RegisterRoutes(api)
		chatHandler.RegisterRoutes(api)
		setupHandler.RegisterRoutes(api)
		wsHandler.RegisterRoutes(api)

		api.Get("/stream/{sessionID}", func(w http.ResponseWriter, r *http.Request) {
			sessionID := chi.URLParam(r, "sessionID")
			userMessage := r.URL.Query().Get("message")
			if userMessage == "" {
				utils.RespondError(w, http.StatusBadRequest, "message query parameter is required")
				return
			}

			if err := streamHandler.HandleStreamRequest(r.Context(), w, sessionID, userMessage); err != nil {
				log.Error().Err(err).Str("component", "stream").Str("session_id", sessionID).Msg("error handling request")
				utils.RespondError(w, http.StatusInternalServerError, "streaming failed")
			}
		})
	})

	embed.New(botStore, widgetCfg).RegisterRoutes(r)

	return r
}
