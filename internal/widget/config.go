// Package widget implements the host-page side of the embeddable chat widget:
// reading the embedding attributes, building the content frame URL, and the
// origin-checked command protocol between the host page and that frame.
//
// Everything visual sits behind the Surface interface, and the cross-origin
// message bus behind Channel, so the protocol runs headless.
package widget

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"
)

const (
	DefaultEmbedPath = "/bot/embed"
	DefaultTheme     = "auto"
	DefaultLang      = "it"

	// AttrPrefix is the optional prefix used on script tags,
	// e.g. data-withjet-bot-id.
	AttrPrefix = "data-withjet-"
)

// Attribute names read from the embedding tag.
const (
	AttrBotID     = "bot-id"
	AttrOrigin    = "origin"
	AttrEmbedPath = "embed-path"
	AttrToken     = "token"
	AttrTheme     = "theme"
	AttrLang      = "lang"
	AttrUser      = "user"
)

var (
	ErrMissingBotID     = errors.New("missing bot-id")
	ErrMissingOrigin    = errors.New("missing origin")
	ErrInvalidOrigin    = errors.New("invalid origin")
	ErrInvalidEmbedPath = errors.New("invalid embed-path")
)

// Config is the immutable configuration of one loader instance.
type Config struct {
	BotID     string
	Origin    string
	EmbedPath string
	Token     string
	Theme     string
	Lang      string
	User      map[string]any
}

// Attributes is the raw attribute set of the embedding tag. Keys may carry
// AttrPrefix or not.
type Attributes map[string]string

func (a Attributes) read(name, fallback string) string {
	v, ok := a[name]
	if !ok {
		v = a[AttrPrefix+name]
	}
	v = strings.TrimSpace(v)
	if v == "" {
		return fallback
	}
	return v
}

// ParseAttributes applies defaults and validates the required attributes.
// A malformed user attribute degrades to an empty object.
func ParseAttributes(attrs Attributes) (Config, error) {
	cfg := Config{
		BotID:     attrs.read(AttrBotID, ""),
		Origin:    attrs.read(AttrOrigin, ""),
		EmbedPath: attrs.read(AttrEmbedPath, DefaultEmbedPath),
		Token:     attrs.read(AttrToken, ""),
		Theme:     attrs.read(AttrTheme, DefaultTheme),
		Lang:      attrs.read(AttrLang, DefaultLang),
		User:      ParseUser(attrs.read(AttrUser, "{}")),
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	origin, err := NormalizeOrigin(cfg.Origin)
	if err != nil {
		return Config{}, err
	}
	cfg.Origin = origin
	return cfg, nil
}

// Validate checks the attributes without which nothing may be rendered.
func (c Config) Validate() error {
	if c.BotID == "" {
		return ErrMissingBotID
	}
	if c.Origin == "" {
		return ErrMissingOrigin
	}
	if _, err := NormalizeOrigin(c.Origin); err != nil {
		return err
	}
	return validateEmbedPath(c.EmbedPath)
}

// validateEmbedPath keeps the frame on the configured origin: the path must
// be absolute and must not resolve to another host.
func validateEmbedPath(p string) error {
	if !strings.HasPrefix(p, "/") || strings.HasPrefix(p, "//") || strings.HasPrefix(p, "/\\") {
		return fmt.Errorf("%w: %q must start with a single /", ErrInvalidEmbedPath, p)
	}
	u, err := url.Parse(p)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidEmbedPath, err)
	}
	if u.Scheme != "" || u.Host != "" {
		return fmt.Errorf("%w: %q", ErrInvalidEmbedPath, p)
	}
	return nil
}

// NormalizeOrigin reduces raw to scheme://host[:port], the form browsers
// report as a message origin: lowercase, with the scheme's default port
// dropped. Anything carrying a path, query or credentials is rejected.
func NormalizeOrigin(raw string) (string, error) {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidOrigin, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return "", fmt.Errorf("%w: scheme must be http or https", ErrInvalidOrigin)
	}
	if u.Host == "" || u.User != nil || u.RawQuery != "" || u.Fragment != "" {
		return "", fmt.Errorf("%w: %q", ErrInvalidOrigin, raw)
	}
	if u.Path != "" && u.Path != "/" {
		return "", fmt.Errorf("%w: origin must not carry a path", ErrInvalidOrigin)
	}
	scheme := strings.ToLower(u.Scheme)
	host := strings.ToLower(u.Host)
	if port := u.Port(); port == defaultPorts[scheme] {
		host = strings.TrimSuffix(host, ":"+port)
	}
	return scheme + "://" + host, nil
}

var defaultPorts = map[string]string{"http": "80", "https": "443"}

// ParseUser decodes the user metadata attribute. Anything that is not a JSON
// object yields an empty map.
func ParseUser(raw string) map[string]any {
	user := map[string]any{}
	if err := json.Unmarshal([]byte(raw), &user); err != nil || user == nil {
		return map[string]any{}
	}
	return user
}
