package widget

import (
	"encoding/json"
	"net/url"
	"strings"
)

// Query parameter names of the embed frame URL.
const (
	ParamBotID = "botId"
	ParamToken = "token"
	ParamTheme = "theme"
	ParamLang  = "lang"
	ParamUser  = "user"
)

// FrameURL joins origin and embed path and appends the non-empty parameters.
// url.Values encodes keys in sorted order and encoding/json sorts map keys,
// so equal configs give byte-identical URLs.
func FrameURL(cfg Config) string {
	base, err := url.Parse(cfg.Origin)
	if err != nil {
		return ""
	}
	ref, err := url.Parse(cfg.EmbedPath)
	if err != nil {
		return ""
	}
	u := base.ResolveReference(ref)

	q := url.Values{}
	setIfPresent(q, ParamBotID, cfg.BotID)
	setIfPresent(q, ParamToken, cfg.Token)
	setIfPresent(q, ParamTheme, cfg.Theme)
	setIfPresent(q, ParamLang, cfg.Lang)
	if len(cfg.User) > 0 {
		if raw, err := json.Marshal(cfg.User); err == nil {
			setIfPresent(q, ParamUser, string(raw))
		}
	}
	u.RawQuery = q.Encode()
	u.Fragment = ""
	return u.String()
}

func setIfPresent(q url.Values, key, value string) {
	if value != "" {
		q.Set(key, value)
	}
}

// FrameParams is what the embed endpoint reads back out of the frame URL.
type FrameParams struct {
	BotID string         `json:"botId"`
	Token string         `json:"token,omitempty"`
	Theme string         `json:"theme"`
	Lang  string         `json:"lang"`
	User  map[string]any `json:"user"`
}

// ParseFrameQuery is the frame-side inverse of FrameURL. Missing theme and
// lang fall back to the loader defaults; a malformed user becomes {}.
func ParseFrameQuery(q url.Values, defaultLang string) FrameParams {
	if defaultLang == "" {
		defaultLang = DefaultLang
	}
	params := FrameParams{
		BotID: strings.TrimSpace(q.Get(ParamBotID)),
		Token: q.Get(ParamToken),
		Theme: firstNonEmpty(q.Get(ParamTheme), DefaultTheme),
		Lang:  firstNonEmpty(q.Get(ParamLang), defaultLang),
		User:  map[string]any{},
	}
	if raw := q.Get(ParamUser); raw != "" {
		params.User = ParseUser(raw)
	}
	return params
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
