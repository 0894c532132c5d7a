package embed

import (
	_ "embed"
	"html/template"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"github.com/zhouzirui/withjet/backend/internal/config"
	"github.com/zhouzirui/withjet/backend/internal/model/bot"
	"github.com/zhouzirui/withjet/backend/internal/widget"
)

// ScriptPath is where the loader script is served.
const ScriptPath = "/static/withjet.js"

//go:embed assets/withjet.js
var loaderScript []byte

//go:embed assets/frame.html
var frameTemplate string

var framePage = template.Must(template.New("frame").Parse(frameTemplate))

// Handler serves the embed frame page and the loader script.
type Handler struct {
	bots   bot.Store
	widget config.WidgetConfig
}

// New creates the embed handler.
func New(bots bot.Store, widgetCfg config.WidgetConfig) *Handler {
	if widgetCfg.EmbedPath == "" {
		widgetCfg.EmbedPath = widget.DefaultEmbedPath
	}
	return &Handler{bots: bots, widget: widgetCfg}
}

// RegisterRoutes mounts the routes at the router root; the frame URL path
// is configurable and lives outside /api.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get(h.widget.EmbedPath, h.handleFrame)
	r.Get(ScriptPath, h.handleScript)
}

// boot is handed to the frame script as a JS value.
type boot struct {
	widget.FrameParams
	APIBase string     `json:"apiBase"`
	Bot     bot.Public `json:"bot"`
}

type pageData struct {
	Lang       string
	Theme      string
	Title      string
	ThemeColor string
	Boot       boot
}

func (h *Handler) handleFrame(w http.ResponseWriter, r *http.Request) {
	params := widget.ParseFrameQuery(r.URL.Query(), h.widget.DefaultLang)
	if params.BotID == "" {
		http.Error(w, "botId is required", http.StatusBadRequest)
		return
	}

	cfg, ok := h.bots.FindByID(params.BotID)
	if !ok {
		http.Error(w, bot.ErrBotNotFound.Error(), http.StatusNotFound)
		return
	}
	if cfg.Archived() {
		http.Error(w, "bot is archived", http.StatusForbidden)
		return
	}

	data := pageData{
		Lang:       params.Lang,
		Theme:      params.Theme,
		Title:      cfg.Name,
		ThemeColor: cfg.ThemeColor,
		Boot: boot{
			FrameParams: params,
			APIBase:     h.publicOrigin(r),
			Bot:         cfg.Public(),
		},
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	if err := framePage.Execute(w, data); err != nil {
		log.Warn().Err(err).Str("component", "embed").Str("bot_id", cfg.ID).Msg("render frame failed")
	}
}

func (h *Handler) handleScript(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/javascript; charset=utf-8")
	w.Header().Set("Cache-Control", "public, max-age=300")
	_, _ = w.Write(loaderScript)
}

// publicOrigin prefers the configured origin and otherwise derives it from
// the request, honoring a TLS-terminating proxy.
func (h *Handler) publicOrigin(r *http.Request) string {
	if h.widget.PublicOrigin != "" {
		return h.widget.PublicOrigin
	}
	scheme := "http"
	if r.TLS != nil || strings.EqualFold(r.Header.Get("X-Forwarded-Proto"), "https") {
		scheme = "https"
	}
	return scheme + "://" + r.Host
}
