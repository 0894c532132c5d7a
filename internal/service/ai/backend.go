package ai

import (
	"context"
	"errors"

	"github.com/zhouzirui/withjet/backend/internal/model/chat"
)

// ErrUnavailable is returned by the placeholder backend used when no
// credentials are configured.
var ErrUnavailable = errors.New("assistant backend unavailable")

// Turn is one role-tagged entry of a chat request.
type Turn struct {
	Role chat.Role
	Text string
}

// ChatRequest is everything a backend needs for one assistant turn.
type ChatRequest struct {
	Turns             []Turn
	SystemInstruction string
	Temperature       float32
	LiveSearch        bool
}

// WebRef is the web reference of a grounding chunk.
type WebRef struct {
	URI   string
	Title string
}

// GroundingChunk is one unit of grounding evidence; Web is nil for chunks
// that do not point at a web page.
type GroundingChunk struct {
	Web *WebRef
}

// ChatResult is the raw backend answer before normalization.
type ChatResult struct {
	Text   string
	Chunks []GroundingChunk
}

// Field is one required string property of a structured response.
type Field struct {
	Name        string
	Description string
}

// Backend is an assistant model provider.
type Backend interface {
	Name() string
	Chat(ctx context.Context, req ChatRequest) (ChatResult, error)
	// GenerateJSON asks for a JSON object carrying the given string fields
	// and returns the raw text of the answer.
	GenerateJSON(ctx context.Context, prompt string, fields []Field) (string, error)
}

// Unavailable is the backend installed when the service has no credentials.
// Every call fails, which the chat engine turns into its fallback reply.
type Unavailable struct{}

func (Unavailable) Name() string { return "unavailable" }

func (Unavailable) Chat(context.Context, ChatRequest) (ChatResult, error) {
	return ChatResult{}, ErrUnavailable
}

func (Unavailable) GenerateJSON(context.Context, string, []Field) (string, error) {
	return "", ErrUnavailable
}
