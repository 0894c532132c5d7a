package chat

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/zhouzirui/withjet/backend/internal/model/bot"
	"github.com/zhouzirui/withjet/backend/internal/model/chat"
	"github.com/zhouzirui/withjet/backend/internal/service/ai"
)

// Fixed replies used when the backend cannot produce one.
const (
	FallbackEmptyText  = "I'm sorry, I couldn't process that."
	FallbackFailedText = "I'm sorry, I'm having trouble connecting to the brain."
	DefaultSourceTitle = "Source"
)

// DefaultTemperature favors determinism over creativity.
const DefaultTemperature float32 = 0.5

// Engine produces exactly one model turn per submitted user turn. It never
// mutates the history it is given.
type Engine struct {
	backend     ai.Backend
	temperature float32
	now         func() time.Time
}

// EngineOption customizes an Engine.
type EngineOption func(*Engine)

// WithTemperature overrides DefaultTemperature.
func WithTemperature(t float32) EngineOption {
	return func(e *Engine) { e.temperature = t }
}

// WithClock sets the timestamp source of produced turns.
func WithClock(now func() time.Time) EngineOption {
	return func(e *Engine) { e.now = now }
}

// NewEngine creates an Engine over backend.
func NewEngine(backend ai.Backend, opts ...EngineOption) *Engine {
	e := &Engine{
		backend:     backend,
		temperature: DefaultTemperature,
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// SubmitTurn answers text given the prior history and bot configuration.
// The only error is ErrEmptyInput; backend failures become a fallback turn.
func (e *Engine) SubmitTurn(ctx context.Context, history []chat.Message, text string, cfg bot.Config) (chat.Message, error) {
	if strings.TrimSpace(text) == "" {
		return chat.Message{}, ErrEmptyInput
	}

	req := ai.ChatRequest{
		Turns:             BuildTurns(history, text),
		SystemInstruction: ai.BuildSystemInstruction(cfg),
		Temperature:       e.temperature,
		LiveSearch:        true,
	}

	res, err := e.backend.Chat(ctx, req)
	if err != nil {
		log.Warn().Err(err).Str("component", "chat").Str("bot_id", cfg.ID).Str("backend", e.backend.Name()).Msg("assistant turn failed, using fallback")
		return e.modelTurn(FallbackFailedText, nil), nil
	}

	reply := res.Text
	if strings.TrimSpace(reply) == "" {
		reply = FallbackEmptyText
	}
	return e.modelTurn(reply, NormalizeSources(res.Chunks)), nil
}

// BuildTurns maps history to role-tagged turns and appends the new user turn.
// Anything that is not a model turn is sent as user.
func BuildTurns(history []chat.Message, text string) []ai.Turn {
	turns := make([]ai.Turn, 0, len(history)+1)
	for _, msg := range history {
		role := chat.RoleUser
		if msg.Role == chat.RoleModel {
			role = chat.RoleModel
		}
		turns = append(turns, ai.Turn{Role: role, Text: msg.Text})
	}
	return append(turns, ai.Turn{Role: chat.RoleUser, Text: text})
}

// NormalizeSources keeps one citation per chunk carrying a web reference.
func NormalizeSources(chunks []ai.GroundingChunk) []chat.Source {
	sources := make([]chat.Source, 0, len(chunks))
	for _, chunk := range chunks {
		if chunk.Web == nil {
			continue
		}
		title := strings.TrimSpace(chunk.Web.Title)
		if title == "" {
			title = DefaultSourceTitle
		}
		sources = append(sources, chat.Source{URI: chunk.Web.URI, Title: title})
	}
	return sources
}

func (e *Engine) modelTurn(text string, sources []chat.Source) chat.Message {
	if sources == nil {
		sources = []chat.Source{}
	}
	return chat.Message{
		ID:        uuid.NewString(),
		Role:      chat.RoleModel,
		Text:      text,
		Sources:   sources,
		Timestamp: e.now().UTC(),
	}
}
