package bot

import (
	"errors"
	"strings"
	"time"
)

// ErrBotNotFound is returned when a bot id does not resolve.
var ErrBotNotFound = errors.New("bot not found")

// Status is informational; the engine serves turns regardless of it.
type Status string

const (
	StatusDraft    Status = "draft"
	StatusActive   Status = "active"
	StatusArchived Status = "archived"
)

// Valid reports whether s is one of the known statuses.
func (s Status) Valid() bool {
	switch s {
	case StatusDraft, StatusActive, StatusArchived:
		return true
	}
	return false
}

// Config is the operator-authored definition of one assistant.
type Config struct {
	ID             string    `json:"id" yaml:"id"`
	Name           string    `json:"name" yaml:"name"`
	WebsiteURL     string    `json:"websiteUrl" yaml:"websiteUrl"`
	SystemPrompt   string    `json:"systemPrompt" yaml:"systemPrompt"`
	KnowledgeText  string    `json:"knowledgeText" yaml:"knowledgeText"`
	ThemeColor     string    `json:"themeColor" yaml:"themeColor"`
	WelcomeMessage string    `json:"welcomeMessage" yaml:"welcomeMessage"`
	Status         Status    `json:"status" yaml:"status"`
	CreatedAt      time.Time `json:"createdAt" yaml:"createdAt"`
	LastUpdated    time.Time `json:"lastUpdated" yaml:"lastUpdated"`
}

// Public is the subset of Config that is safe to hand to host pages.
type Public struct {
	ID             string `json:"id"`
	Name           string `json:"name"`
	WelcomeMessage string `json:"welcomeMessage"`
	ThemeColor     string `json:"themeColor"`
	Status         Status `json:"status"`
}

// Public strips operator-only fields such as the system prompt and knowledge text.
func (c Config) Public() Public {
	return Public{
		ID:             c.ID,
		Name:           c.Name,
		WelcomeMessage: c.WelcomeMessage,
		ThemeColor:     c.ThemeColor,
		Status:         c.Status,
	}
}

// Archived reports whether the bot has been retired by its operator.
func (c Config) Archived() bool {
	return c.Status == StatusArchived
}

// Draft is a partial configuration proposed by the setup assistant.
// Empty fields mean "no suggestion".
type Draft struct {
	Name           string `json:"name,omitempty"`
	SystemPrompt   string `json:"systemPrompt,omitempty"`
	WelcomeMessage string `json:"welcomeMessage,omitempty"`
	ThemeColor     string `json:"themeColor,omitempty"`
}

// IsEmpty reports whether the draft carries no suggestion at all.
func (d Draft) IsEmpty() bool {
	return strings.TrimSpace(d.Name) == "" &&
		strings.TrimSpace(d.SystemPrompt) == "" &&
		strings.TrimSpace(d.WelcomeMessage) == "" &&
		strings.TrimSpace(d.ThemeColor) == ""
}

// Seed provides the demo bot used when no seed file is configured.
func Seed() []Config {
	created := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	return []Config{
		{
			ID:             "demo",
			Name:           "Jet",
			WebsiteURL:     "https://example.com",
			SystemPrompt:   "Answer questions about the shop, its products and opening hours. Keep replies short.",
			KnowledgeText:  "Opening hours: Monday to Friday 9:00-18:00. Shipping is free above 50 EUR.",
			ThemeColor:     "#5b4bff",
			WelcomeMessage: "Hi! How can I help you today?",
			Status:         StatusActive,
			CreatedAt:      created,
			LastUpdated:    created,
		},
	}
}
