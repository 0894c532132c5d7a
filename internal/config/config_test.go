package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{
		"PORT", "AI_PROVIDER", "AI_TEMPERATURE", "AI_TIMEOUT", "GEMINI_API_KEY", "API_KEY",
		"GEMINI_MODEL", "WIDGET_EMBED_PATH", "WIDGET_DEFAULT_LANG", "WIDGET_ALLOWED_ORIGINS",
		"WIDGET_PUBLIC_ORIGIN", "BOTS_FILE", "LOG_LEVEL", "LOG_FORMAT",
	} {
		t.Setenv(key, "")
	}

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Equal(t, ProviderGemini, cfg.AI.Provider)
	assert.Equal(t, float32(0.5), cfg.AI.Temperature)
	assert.Equal(t, 30*time.Second, cfg.AI.Timeout)
	assert.False(t, cfg.AI.Enabled())
	assert.Equal(t, "/bot/embed", cfg.Widget.EmbedPath)
	assert.Equal(t, "it", cfg.Widget.DefaultLang)
	assert.True(t, cfg.Widget.OriginAllowed("https://anyone.example"))
	assert.Equal(t, "info", cfg.Log.Level)
}

func TestLoadServerAddr(t *testing.T) {
	t.Setenv("PORT", "127.0.0.1:9000")
	server, err := loadServerConfig()
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1:9000", server.Addr)

	t.Setenv("PORT", "80 80")
	_, err = loadServerConfig()
	assert.Error(t, err)
}

func TestLoadAIConfig(t *testing.T) {
	t.Setenv("AI_PROVIDER", "")
	t.Setenv("GEMINI_API_KEY", "")
	t.Setenv("API_KEY", "legacy-key")
	t.Setenv("AI_TEMPERATURE", "0.2")
	t.Setenv("AI_TIMEOUT", "5s")

	ai, err := loadAIConfig()
	require.NoError(t, err)
	assert.Equal(t, "legacy-key", ai.GeminiAPIKey)
	assert.Equal(t, float32(0.2), ai.Temperature)
	assert.Equal(t, 5*time.Second, ai.Timeout)
	assert.True(t, ai.Enabled())
}

func TestLoadAIConfigRejectsGarbage(t *testing.T) {
	t.Setenv("AI_PROVIDER", "skynet")
	_, err := loadAIConfig()
	assert.Error(t, err)

	t.Setenv("AI_PROVIDER", "ark")
	t.Setenv("AI_TEMPERATURE", "warm")
	_, err = loadAIConfig()
	assert.Error(t, err)

	t.Setenv("AI_TEMPERATURE", "")
	t.Setenv("AI_TIMEOUT", "-1s")
	_, err = loadAIConfig()
	assert.Error(t, err)
}

func TestArkEnabledNeedsModelAndCredentials(t *testing.T) {
	ai := AIConfig{Provider: ProviderArk, ArkAPIKey: "k"}
	assert.False(t, ai.Enabled())

	ai.ArkModel = "ep-123"
	assert.True(t, ai.Enabled())

	ai = AIConfig{Provider: ProviderArk, ArkModel: "ep-123", ArkAccessKey: "ak"}
	assert.False(t, ai.Enabled())
}

func TestWidgetAllowedOrigins(t *testing.T) {
	t.Setenv("WIDGET_EMBED_PATH", "")
	t.Setenv("WIDGET_ALLOWED_ORIGINS", "https://shop.example, https://blog.example/ ,")

	widget, err := loadWidgetConfig()
	require.NoError(t, err)
	assert.Equal(t, []string{"https://shop.example", "https://blog.example"}, widget.AllowedOrigins)
	assert.True(t, widget.OriginAllowed("https://blog.example"))
	assert.False(t, widget.OriginAllowed("https://evil.example"))

	t.Setenv("WIDGET_EMBED_PATH", "bot/embed")
	_, err = loadWidgetConfig()
	assert.Error(t, err)
}
