package chat

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/zhouzirui/withjet/backend/internal/model/bot"
	"github.com/zhouzirui/withjet/backend/internal/model/chat"
)

var (
	ErrBotRequired     = errors.New("bot id is required")
	ErrBotArchived     = errors.New("bot is archived")
	ErrSessionNotFound = errors.New("session not found")
	ErrEmptyInput      = errors.New("message text is required")
	ErrTurnInFlight    = errors.New("a reply is already pending for this conversation")
)

type entry struct {
	session chat.Session
	conv    *chat.Conversation
}

// Service owns live conversations, one per mounted chat surface.
type Service struct {
	mu       sync.RWMutex
	sessions map[string]*entry
	bots     bot.Store
	engine   *Engine
	now      func() time.Time
}

// NewService bootstraps the in-memory session service.
func NewService(bots bot.Store, engine *Engine) *Service {
	return &Service{
		sessions: make(map[string]*entry),
		bots:     bots,
		engine:   engine,
		now:      time.Now,
	}
}

// CreateSession opens a conversation with botID, seeded with its welcome turn.
func (s *Service) CreateSession(_ context.Context, botID string) (chat.Session, error) {
	if strings.TrimSpace(botID) == "" {
		return chat.Session{}, ErrBotRequired
	}
	cfg, ok := s.bots.FindByID(botID)
	if !ok {
		return chat.Session{}, bot.ErrBotNotFound
	}
	if cfg.Archived() {
		return chat.Session{}, ErrBotArchived
	}

	session := chat.Session{
		ID:        uuid.NewString(),
		BotID:     cfg.ID,
		CreatedAt: s.now().UTC(),
	}

	s.mu.Lock()
	s.sessions[session.ID] = &entry{
		session: session,
		conv:    chat.NewConversation(cfg.ID, cfg.WelcomeMessage, s.now),
	}
	s.mu.Unlock()

	return session, nil
}

// GetSession retrieves a session by identifier.
func (s *Service) GetSession(_ context.Context, sessionID string) (chat.Session, error) {
	e, err := s.lookup(sessionID)
	if err != nil {
		return chat.Session{}, err
	}
	return e.session, nil
}

// Transcript returns a copy of the conversation history.
func (s *Service) Transcript(_ context.Context, sessionID string) ([]chat.Message, error) {
	e, err := s.lookup(sessionID)
	if err != nil {
		return nil, err
	}
	return e.conv.Messages(), nil
}

// SubmitTurn appends the user turn, obtains the model turn and appends it.
// A second call for the same session while one is pending gets
// ErrTurnInFlight; it is not queued.
func (s *Service) SubmitTurn(ctx context.Context, sessionID, text string) (chat.Message, error) {
	if strings.TrimSpace(text) == "" {
		return chat.Message{}, ErrEmptyInput
	}
	e, err := s.lookup(sessionID)
	if err != nil {
		return chat.Message{}, err
	}
	cfg, ok := s.bots.FindByID(e.session.BotID)
	if !ok {
		return chat.Message{}, bot.ErrBotNotFound
	}
	if cfg.Archived() {
		return chat.Message{}, ErrBotArchived
	}

	if !e.conv.TryBegin() {
		return chat.Message{}, ErrTurnInFlight
	}
	defer e.conv.End()

	history := e.conv.Messages()
	e.conv.Append(chat.Message{Role: chat.RoleUser, Text: text})

	reply, err := s.engine.SubmitTurn(ctx, history, text, cfg)
	if err != nil {
		return chat.Message{}, err
	}
	stored := e.conv.Append(reply)

	log.Debug().Str("component", "chat").Str("session_id", sessionID).Str("bot_id", cfg.ID).Int("sources", len(stored.Sources)).Msg("turn completed")
	return stored, nil
}

// DeleteSession discards a conversation when its chat surface unmounts.
func (s *Service) DeleteSession(_ context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.sessions[sessionID]; !ok {
		return ErrSessionNotFound
	}
	delete(s.sessions, sessionID)
	return nil
}

func (s *Service) lookup(sessionID string) (*entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.sessions[sessionID]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return e, nil
}
