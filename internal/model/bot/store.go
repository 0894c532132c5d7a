package bot

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Store exposes bot lookup for the chat engine and handlers.
type Store interface {
	List() []Config
	FindByID(id string) (Config, bool)
}

// MemoryStore implements Store with an in-memory slice.
type MemoryStore struct {
	items []Config
}

// NewMemoryStore returns a MemoryStore preloaded with the supplied bots.
func NewMemoryStore(items []Config) *MemoryStore {
	return &MemoryStore{items: append([]Config(nil), items...)}
}

// List returns the bots in load order.
func (s *MemoryStore) List() []Config {
	return append([]Config(nil), s.items...)
}

// FindByID looks up a bot by identifier.
func (s *MemoryStore) FindByID(id string) (Config, bool) {
	for _, item := range s.items {
		if item.ID == id {
			return item, true
		}
	}
	return Config{}, false
}

type seedFile struct {
	Bots []Config `yaml:"bots"`
}

// LoadFile reads bot definitions from a YAML document of the form
// `bots: [...]`.
func LoadFile(path string) ([]Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read bots file: %w", err)
	}
	return Parse(raw)
}

// Parse decodes a YAML seed document. Every bot needs a unique id; a missing
// status defaults to draft.
func Parse(raw []byte) ([]Config, error) {
	var doc seedFile
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("decode bots file: %w", err)
	}

	seen := make(map[string]struct{}, len(doc.Bots))
	for i := range doc.Bots {
		b := &doc.Bots[i]
		b.ID = strings.TrimSpace(b.ID)
		if b.ID == "" {
			return nil, fmt.Errorf("bot #%d: id is required", i+1)
		}
		if _, dup := seen[b.ID]; dup {
			return nil, fmt.Errorf("bot %q: duplicate id", b.ID)
		}
		seen[b.ID] = struct{}{}

		if b.Status == "" {
			b.Status = StatusDraft
		}
		if !b.Status.Valid() {
			return nil, fmt.Errorf("bot %q: unknown status %q", b.ID, b.Status)
		}
	}
	return doc.Bots, nil
}
