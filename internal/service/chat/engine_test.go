package chat

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zhouzirui/withjet/backend/internal/model/bot"
	"github.com/zhouzirui/withjet/backend/internal/model/chat"
	"github.com/zhouzirui/withjet/backend/internal/service/ai"
)

type fakeBackend struct {
	result  ai.ChatResult
	err     error
	calls   int
	lastReq ai.ChatRequest
	release chan struct{}
	entered chan struct{}
}

func (f *fakeBackend) Name() string { return "fake" }

func (f *fakeBackend) Chat(ctx context.Context, req ai.ChatRequest) (ai.ChatResult, error) {
	f.calls++
	f.lastReq = req
	if f.entered != nil {
		close(f.entered)
	}
	if f.release != nil {
		<-f.release
	}
	return f.result, f.err
}

func (f *fakeBackend) GenerateJSON(context.Context, string, []ai.Field) (string, error) {
	return "", errors.New("not used")
}

func testBot() bot.Config {
	return bot.Config{
		ID:             "b1",
		Name:           "Jet",
		WebsiteURL:     "https://example.com",
		SystemPrompt:   "Be helpful.",
		KnowledgeText:  "Open 9-18.",
		WelcomeMessage: "Hello!",
		Status:         bot.StatusActive,
	}
}

func fixedClock() time.Time {
	return time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
}

func TestSubmitTurnBuildsRequest(t *testing.T) {
	backend := &fakeBackend{result: ai.ChatResult{Text: "We open at 9."}}
	engine := NewEngine(backend, WithTemperature(0.3), WithClock(fixedClock))
	history := []chat.Message{
		{Role: chat.RoleModel, Text: "Hello!"},
		{Role: chat.RoleUser, Text: "Hi"},
		{Role: chat.Role("system"), Text: "odd"},
	}

	reply, err := engine.SubmitTurn(context.Background(), history, "When do you open?", testBot())
	require.NoError(t, err)

	assert.Equal(t, 1, backend.calls)
	assert.Equal(t, []ai.Turn{
		{Role: chat.RoleModel, Text: "Hello!"},
		{Role: chat.RoleUser, Text: "Hi"},
		{Role: chat.RoleUser, Text: "odd"},
		{Role: chat.RoleUser, Text: "When do you open?"},
	}, backend.lastReq.Turns)
	assert.Equal(t, ai.BuildSystemInstruction(testBot()), backend.lastReq.SystemInstruction)
	assert.InDelta(t, 0.3, backend.lastReq.Temperature, 1e-6)
	assert.True(t, backend.lastReq.LiveSearch)

	assert.Equal(t, chat.RoleModel, reply.Role)
	assert.Equal(t, "We open at 9.", reply.Text)
	assert.NotEmpty(t, reply.ID)
	assert.Equal(t, fixedClock(), reply.Timestamp)
	assert.NotNil(t, reply.Sources)
	assert.Empty(t, reply.Sources)
	assert.Len(t, history, 3)
}

func TestSubmitTurnNormalizesSources(t *testing.T) {
	backend := &fakeBackend{result: ai.ChatResult{
		Text: "See the site.",
		Chunks: []ai.GroundingChunk{
			{Web: &ai.WebRef{URI: "https://a.example", Title: "A"}},
			{},
			{Web: &ai.WebRef{URI: "https://b.example"}},
		},
	}}
	engine := NewEngine(backend)

	reply, err := engine.SubmitTurn(context.Background(), nil, "where?", testBot())
	require.NoError(t, err)

	assert.Equal(t, []chat.Source{
		{URI: "https://a.example", Title: "A"},
		{URI: "https://b.example", Title: DefaultSourceTitle},
	}, reply.Sources)
}

func TestSubmitTurnFallbacks(t *testing.T) {
	t.Run("empty text", func(t *testing.T) {
		engine := NewEngine(&fakeBackend{result: ai.ChatResult{Text: "  "}})
		reply, err := engine.SubmitTurn(context.Background(), nil, "hi", testBot())
		require.NoError(t, err)
		assert.Equal(t, FallbackEmptyText, reply.Text)
		assert.Equal(t, chat.RoleModel, reply.Role)
	})

	t.Run("backend error", func(t *testing.T) {
		engine := NewEngine(&fakeBackend{err: errors.New("boom")})
		reply, err := engine.SubmitTurn(context.Background(), nil, "hi", testBot())
		require.NoError(t, err)
		assert.Equal(t, FallbackFailedText, reply.Text)
		assert.NotNil(t, reply.Sources)
		assert.Empty(t, reply.Sources)
	})

	t.Run("unavailable backend", func(t *testing.T) {
		engine := NewEngine(ai.Unavailable{})
		reply, err := engine.SubmitTurn(context.Background(), nil, "hi", testBot())
		require.NoError(t, err)
		assert.Equal(t, FallbackFailedText, reply.Text)
	})
}

func TestSubmitTurnRejectsBlankInput(t *testing.T) {
	backend := &fakeBackend{}
	engine := NewEngine(backend)

	_, err := engine.SubmitTurn(context.Background(), nil, " \n\t", testBot())
	assert.ErrorIs(t, err, ErrEmptyInput)
	assert.Zero(t, backend.calls)
}
