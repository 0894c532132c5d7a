package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/zhouzirui/withjet/backend/internal/config"
	"github.com/zhouzirui/withjet/backend/internal/model/bot"
)

// Service wraps the selected backend with the configured timeout and hosts
// the setup assistant. It satisfies Backend itself.
type Service struct {
	backend     Backend
	timeout     time.Duration
	temperature float32
	available   bool
}

// NewService picks the backend named by cfg.Provider. Without credentials it
// installs Unavailable rather than failing.
func NewService(ctx context.Context, cfg config.AIConfig) (*Service, error) {
	if !cfg.Enabled() {
		return NewServiceWithBackend(Unavailable{}, cfg), nil
	}

	var (
		backend Backend
		err     error
	)
	switch cfg.Provider {
	case config.ProviderArk:
		backend, err = NewArkBackend(ctx, cfg)
	default:
		backend, err = NewGeminiBackend(ctx, cfg)
	}
	if err != nil {
		return nil, err
	}
	return NewServiceWithBackend(backend, cfg), nil
}

// NewServiceWithBackend wires an explicit backend, mostly for tests.
func NewServiceWithBackend(backend Backend, cfg config.AIConfig) *Service {
	_, unavailable := backend.(Unavailable)
	return &Service{
		backend:     backend,
		timeout:     cfg.Timeout,
		temperature: cfg.Temperature,
		available:   !unavailable,
	}
}

// Available reports whether a real backend is configured.
func (s *Service) Available() bool {
	return s.available
}

// Temperature is the sampling temperature applied to chat turns.
func (s *Service) Temperature() float32 {
	return s.temperature
}

func (s *Service) Name() string { return s.backend.Name() }

// Chat delegates to the backend within the configured timeout.
func (s *Service) Chat(ctx context.Context, req ChatRequest) (ChatResult, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()
	return s.backend.Chat(ctx, req)
}

// GenerateJSON delegates to the backend within the configured timeout.
func (s *Service) GenerateJSON(ctx context.Context, prompt string, fields []Field) (string, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()
	return s.backend.GenerateJSON(ctx, prompt, fields)
}

func (s *Service) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, s.timeout)
}

// GenerateInitialConfig proposes a starter bot configuration for a site.
// Any backend or parse failure yields an empty Draft.
func (s *Service) GenerateInitialConfig(ctx context.Context, url, description string) bot.Draft {
	raw, err := s.GenerateJSON(ctx, setupPrompt(url, description), setupFields)
	if err != nil {
		log.Warn().Err(err).Str("component", "setup").Str("backend", s.Name()).Msg("setup generation failed")
		return bot.Draft{}
	}

	draft, err := parseDraft(raw)
	if err != nil {
		log.Warn().Err(err).Str("component", "setup").Msg("setup output parse failed")
		return bot.Draft{}
	}
	return draft
}

// parseDraft extracts the outermost JSON object of raw, which tolerates models
// that wrap their JSON in prose or code fences.
func parseDraft(raw string) (bot.Draft, error) {
	trimmed := strings.TrimSpace(raw)
	start := strings.Index(trimmed, "{")
	end := strings.LastIndex(trimmed, "}")
	if start == -1 || end == -1 || end <= start {
		return bot.Draft{}, fmt.Errorf("missing json object")
	}

	var draft bot.Draft
	if err := json.Unmarshal([]byte(trimmed[start:end+1]), &draft); err != nil {
		return bot.Draft{}, err
	}
	return draft, nil
}
