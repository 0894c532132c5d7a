package ai

import (
	"context"
	"errors"
	"testing"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zhouzirui/withjet/backend/internal/model/chat"
)

type fakeChatModel struct {
	reply       string
	err         error
	lastInput   []*schema.Message
	temperature *float32
}

func (m *fakeChatModel) Generate(_ context.Context, input []*schema.Message, opts ...model.Option) (*schema.Message, error) {
	m.lastInput = input
	m.temperature = model.GetCommonOptions(nil, opts...).Temperature
	if m.err != nil {
		return nil, m.err
	}
	return schema.AssistantMessage(m.reply, nil), nil
}

func (m *fakeChatModel) Stream(context.Context, []*schema.Message, ...model.Option) (*schema.StreamReader[*schema.Message], error) {
	return nil, errors.New("not implemented")
}

func TestArkBackendChat(t *testing.T) {
	fake := &fakeChatModel{reply: "We open at nine."}
	backend, err := NewArkBackendFromModel(context.Background(), fake)
	require.NoError(t, err)

	res, err := backend.Chat(context.Background(), ChatRequest{
		SystemInstruction: "be nice",
		Temperature:       0.5,
		LiveSearch:        true,
		Turns: []Turn{
			{Role: chat.RoleModel, Text: "Hi!"},
			{Role: chat.RoleUser, Text: "When do you open?"},
		},
	})
	require.NoError(t, err)

	assert.Equal(t, "We open at nine.", res.Text)
	assert.Empty(t, res.Chunks)

	require.Len(t, fake.lastInput, 3)
	assert.Equal(t, schema.System, fake.lastInput[0].Role)
	assert.Equal(t, schema.Assistant, fake.lastInput[1].Role)
	assert.Equal(t, schema.User, fake.lastInput[2].Role)
	require.NotNil(t, fake.temperature)
	assert.Equal(t, float32(0.5), *fake.temperature)
}

func TestArkBackendChatError(t *testing.T) {
	fake := &fakeChatModel{err: errors.New("quota exceeded")}
	backend, err := NewArkBackendFromModel(context.Background(), fake)
	require.NoError(t, err)

	_, err = backend.Chat(context.Background(), ChatRequest{Turns: []Turn{{Role: chat.RoleUser, Text: "hi"}}})
	assert.Error(t, err)
}

func TestArkBackendGenerateJSONListsFields(t *testing.T) {
	fake := &fakeChatModel{reply: `{"name":"Bean"}`}
	backend, err := NewArkBackendFromModel(context.Background(), fake)
	require.NoError(t, err)

	raw, err := backend.GenerateJSON(context.Background(), "make a bot", setupFields)
	require.NoError(t, err)
	assert.Equal(t, `{"name":"Bean"}`, raw)

	require.Len(t, fake.lastInput, 1)
	assert.Contains(t, fake.lastInput[0].Content, "- themeColor: A hex color code")
}
