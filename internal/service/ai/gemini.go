package ai

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/genai"

	"github.com/zhouzirui/withjet/backend/internal/config"
	"github.com/zhouzirui/withjet/backend/internal/model/chat"
)

// GeminiBackend talks to the Gemini API and supports Google Search grounding.
type GeminiBackend struct {
	client *genai.Client
	model  string
}

// NewGeminiBackend creates the genai client from cfg.
func NewGeminiBackend(ctx context.Context, cfg config.AIConfig) (*GeminiBackend, error) {
	if cfg.GeminiAPIKey == "" {
		return nil, fmt.Errorf("gemini API key not configured")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.GeminiAPIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}

	return &GeminiBackend{client: client, model: cfg.GeminiModel}, nil
}

func (g *GeminiBackend) Name() string { return "gemini" }

// Chat sends the turns with the system instruction and, when requested, the
// Google Search tool enabled.
func (g *GeminiBackend) Chat(ctx context.Context, req ChatRequest) (ChatResult, error) {
	temperature := req.Temperature
	cfg := &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(req.SystemInstruction, genai.RoleUser),
		Temperature:       &temperature,
	}
	if req.LiveSearch {
		cfg.Tools = []*genai.Tool{{GoogleSearch: &genai.GoogleSearch{}}}
	}

	res, err := g.client.Models.GenerateContent(ctx, g.model, toGeminiContents(req.Turns), cfg)
	if err != nil {
		return ChatResult{}, fmt.Errorf("gemini generate content: %w", err)
	}
	return resultFromGemini(res), nil
}

// GenerateJSON requests a structured JSON answer constrained by a schema.
func (g *GeminiBackend) GenerateJSON(ctx context.Context, prompt string, fields []Field) (string, error) {
	cfg := &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
		ResponseSchema:   geminiSchema(fields),
	}
	contents := []*genai.Content{genai.NewContentFromText(prompt, genai.RoleUser)}

	res, err := g.client.Models.GenerateContent(ctx, g.model, contents, cfg)
	if err != nil {
		return "", fmt.Errorf("gemini generate content: %w", err)
	}
	return resultFromGemini(res).Text, nil
}

func toGeminiContents(turns []Turn) []*genai.Content {
	contents := make([]*genai.Content, 0, len(turns))
	for _, turn := range turns {
		role := genai.Role(genai.RoleUser)
		if turn.Role == chat.RoleModel {
			role = genai.RoleModel
		}
		contents = append(contents, genai.NewContentFromText(turn.Text, role))
	}
	return contents
}

func geminiSchema(fields []Field) *genai.Schema {
	schema := &genai.Schema{
		Type:       genai.TypeObject,
		Properties: make(map[string]*genai.Schema, len(fields)),
		Required:   make([]string, 0, len(fields)),
	}
	for _, f := range fields {
		schema.Properties[f.Name] = &genai.Schema{Type: genai.TypeString, Description: f.Description}
		schema.Required = append(schema.Required, f.Name)
	}
	return schema
}

// resultFromGemini reads the text parts and grounding chunks of the first
// candidate. Thought parts are skipped.
func resultFromGemini(res *genai.GenerateContentResponse) ChatResult {
	if res == nil || len(res.Candidates) == 0 || res.Candidates[0] == nil {
		return ChatResult{}
	}
	candidate := res.Candidates[0]

	var text strings.Builder
	if candidate.Content != nil {
		for _, part := range candidate.Content.Parts {
			if part == nil || part.Thought || part.Text == "" {
				continue
			}
			text.WriteString(part.Text)
		}
	}

	result := ChatResult{Text: text.String()}
	if candidate.GroundingMetadata == nil {
		return result
	}
	for _, chunk := range candidate.GroundingMetadata.GroundingChunks {
		if chunk == nil {
			continue
		}
		gc := GroundingChunk{}
		if chunk.Web != nil {
			gc.Web = &WebRef{URI: chunk.Web.URI, Title: chunk.Web.Title}
		}
		result.Chunks = append(result.Chunks, gc)
	}
	return result
}
