package handler

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/zhouzirui/withjet/backend/internal/config"
	"github.com/zhouzirui/withjet/backend/internal/model/bot"
	"github.com/zhouzirui/withjet/backend/internal/service/ai"
	chatService "github.com/zhouzirui/withjet/backend/internal/service/chat"
)

func newTestRouter() http.Handler {
	store := bot.NewMemoryStore(bot.Seed())
	aiSvc := ai.NewServiceWithBackend(ai.Unavailable{}, config.AIConfig{})
	chatSvc := chatService.NewService(store, chatService.NewEngine(aiSvc))
	return NewRouter(store, chatSvc, aiSvc, config.WidgetConfig{EmbedPath: "/bot/embed", DefaultLang: "it"})
}

func TestRouterRoutes(t *testing.T) {
	r := newTestRouter()

	cases := []struct {
		method, target, body string
		status               int
	}{
		{http.MethodGet, "/api/bots/demo", "", http.StatusOK},
		{http.MethodPost, "/api/sessions", `{"botId":"demo"}`, http.StatusCreated},
		{http.MethodPost, "/api/setup/generate", `{"url":"https://example.com"}`, http.StatusServiceUnavailable},
		{http.MethodGet, "/api/stream/anything", "", http.StatusBadRequest},
		{http.MethodGet, "/bot/embed?botId=demo", "", http.StatusOK},
		{http.MethodGet, "/static/withjet.js", "", http.StatusOK},
	}
	for _, tc := range cases {
		t.Run(tc.method+" "+tc.target, func(t *testing.T) {
			req := httptest.NewRequest(tc.method, tc.target, strings.NewReader(tc.body))
			rec := httptest.NewRecorder()
			r.ServeHTTP(rec, req)
			assert.Equal(t, tc.status, rec.Code)
		})
	}
}

func TestRouterCORSPreflight(t *testing.T) {
	req := httptest.NewRequest(http.MethodOptions, "/api/sessions", nil)
	req.Header.Set("Origin", "https://shop.example")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rec := httptest.NewRecorder()

	newTestRouter().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "https://shop.example", rec.Header().Get("Access-Control-Allow-Origin"))
}
