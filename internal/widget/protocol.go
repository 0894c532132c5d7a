package widget

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// MessageType discriminates protocol envelopes.
type MessageType string

// Host → frame.
const (
	TypeOpen  MessageType = "OPEN"
	TypeClose MessageType = "CLOSE"
	TypeSend  MessageType = "SEND"
)

// Frame → host.
const (
	TypeRequestClose MessageType = "REQUEST_CLOSE"
	TypeSetBadge     MessageType = "SET_BADGE"
	TypeResize       MessageType = "RESIZE"
)

// legacyPrefix is carried by frames built against the first loader script.
const legacyPrefix = "WITHJET_"

func normalizeType(t string) MessageType {
	return MessageType(strings.TrimPrefix(strings.TrimSpace(t), legacyPrefix))
}

// HostMessage is posted by the loader into the frame.
type HostMessage struct {
	Type    MessageType `json:"type"`
	BotID   string      `json:"botId"`
	Payload any         `json:"payload,omitempty"`
}

// frameMessage is the decoded form of an inbound envelope. Numeric fields
// stay raw because frames are free to send strings or garbage.
type frameMessage struct {
	Type   string          `json:"type"`
	BotID  string          `json:"botId"`
	Count  json.RawMessage `json:"count"`
	Width  json.RawMessage `json:"width"`
	Height json.RawMessage `json:"height"`
}

// FrameMessage builds the envelope a frame posts to the host page.
// fields are merged next to type and botId.
func FrameMessage(t MessageType, botID string, fields map[string]any) ([]byte, error) {
	envelope := make(map[string]any, len(fields)+2)
	for k, v := range fields {
		envelope[k] = v
	}
	envelope["type"] = t
	envelope["botId"] = botID
	return json.Marshal(envelope)
}

// Dimensions is the panel size in CSS pixels.
type Dimensions struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// Panel size bounds, inclusive.
const (
	MinWidth  = 280
	MaxWidth  = 520
	MinHeight = 360
	MaxHeight = 800
)

// DefaultDimensions matches the stylesheet of the launcher panel.
var DefaultDimensions = Dimensions{Width: 380, Height: 560}

// BadgeCount converts a SET_BADGE count into a displayable integer; anything
// that is not a positive number becomes 0.
func BadgeCount(raw json.RawMessage) int {
	n, ok := jsNumber(raw)
	if !ok || n <= 0 {
		return 0
	}
	if n > math.MaxInt32 {
		return math.MaxInt32
	}
	return int(n)
}

// dimension accepts v only when it is a non-zero number within [min, max].
func dimension(raw json.RawMessage, min, max int) (int, bool) {
	n, ok := jsNumber(raw)
	if !ok || n == 0 {
		return 0, false
	}
	if n < float64(min) || n > float64(max) {
		return 0, false
	}
	return int(n), true
}

// jsNumber mirrors the lenient Number() coercion frames rely on: JSON
// numbers and numeric strings are accepted.
func jsNumber(raw json.RawMessage) (float64, bool) {
	if len(raw) == 0 {
		return 0, false
	}
	var n float64
	if err := json.Unmarshal(raw, &n); err == nil {
		return n, finite(n)
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return 0, false
	}
	n, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, false
	}
	return n, finite(n)
}

func finite(n float64) bool {
	return !math.IsNaN(n) && !math.IsInf(n, 0)
}
