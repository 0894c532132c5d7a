package ai

import (
	"context"
	"fmt"
	"strings"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/schema"

	"github.com/zhouzirui/withjet/backend/internal/config"
	"github.com/zhouzirui/withjet/backend/internal/model/chat"
)

// ArkBackend runs turns through an eino chain over an Ark chat model. Ark
// has no live search tool, so results never carry grounding chunks.
type ArkBackend struct {
	chain compose.Runnable[[]*schema.Message, *schema.Message]
}

// NewArkBackend builds the Ark model from cfg and compiles the chain.
func NewArkBackend(ctx context.Context, cfg config.AIConfig) (*ArkBackend, error) {
	chatModel, err := cfg.NewChatModel(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create chat model: %w", err)
	}
	return NewArkBackendFromModel(ctx, chatModel)
}

// NewArkBackendFromModel compiles the chain around an existing chat model.
func NewArkBackendFromModel(ctx context.Context, chatModel model.BaseChatModel) (*ArkBackend, error) {
	chain := compose.NewChain[[]*schema.Message, *schema.Message]()
	chain.AppendChatModel(chatModel)

	runnable, err := chain.Compile(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to compile chat chain: %w", err)
	}
	return &ArkBackend{chain: runnable}, nil
}

func (a *ArkBackend) Name() string { return "ark" }

// Chat ignores LiveSearch; the instruction still mentions the search tool but
// the model answers from knowledge text alone.
func (a *ArkBackend) Chat(ctx context.Context, req ChatRequest) (ChatResult, error) {
	msgs := toEinoMessages(req.SystemInstruction, req.Turns)

	res, err := a.chain.Invoke(ctx, msgs, compose.WithChatModelOption(model.WithTemperature(req.Temperature)))
	if err != nil {
		return ChatResult{}, fmt.Errorf("failed to run AI chain: %w", err)
	}
	if res == nil {
		return ChatResult{}, nil
	}
	return ChatResult{Text: res.Content}, nil
}

// GenerateJSON spells the schema out in the prompt and returns the raw reply;
// callers extract the JSON object themselves.
func (a *ArkBackend) GenerateJSON(ctx context.Context, prompt string, fields []Field) (string, error) {
	var b strings.Builder
	b.WriteString(prompt)
	b.WriteString("\n\nRespond with a single JSON object and nothing else. Required string fields:")
	for _, f := range fields {
		b.WriteString("\n- ")
		b.WriteString(f.Name)
		if f.Description != "" {
			b.WriteString(": ")
			b.WriteString(f.Description)
		}
	}

	res, err := a.chain.Invoke(ctx, []*schema.Message{schema.UserMessage(b.String())})
	if err != nil {
		return "", fmt.Errorf("failed to run AI chain: %w", err)
	}
	if res == nil {
		return "", nil
	}
	return res.Content, nil
}

func toEinoMessages(system string, turns []Turn) []*schema.Message {
	msgs := make([]*schema.Message, 0, len(turns)+1)
	if system != "" {
		msgs = append(msgs, schema.SystemMessage(system))
	}
	for _, turn := range turns {
		if turn.Role == chat.RoleModel {
			msgs = append(msgs, schema.AssistantMessage(turn.Text, nil))
			continue
		}
		msgs = append(msgs, schema.UserMessage(turn.Text))
	}
	return msgs
}
