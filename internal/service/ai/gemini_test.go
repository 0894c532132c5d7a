package ai

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"

	"github.com/zhouzirui/withjet/backend/internal/model/chat"
)

func TestResultFromGeminiReadsTextAndChunks(t *testing.T) {
	res := &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{
			Content: &genai.Content{Parts: []*genai.Part{
				{Text: "thinking...", Thought: true},
				{Text: "Open "},
				{Text: "9-18."},
			}},
			GroundingMetadata: &genai.GroundingMetadata{
				GroundingChunks: []*genai.GroundingChunk{
					{Web: &genai.GroundingChunkWeb{URI: "https://shop.example/hours", Title: "Hours"}},
					{},
					nil,
					{Web: &genai.GroundingChunkWeb{URI: "https://shop.example/faq"}},
				},
			},
		}},
	}

	got := resultFromGemini(res)

	assert.Equal(t, "Open 9-18.", got.Text)
	require.Len(t, got.Chunks, 3)
	assert.Equal(t, &WebRef{URI: "https://shop.example/hours", Title: "Hours"}, got.Chunks[0].Web)
	assert.Nil(t, got.Chunks[1].Web)
	assert.Equal(t, "https://shop.example/faq", got.Chunks[2].Web.URI)
}

func TestResultFromGeminiEmpty(t *testing.T) {
	assert.Equal(t, ChatResult{}, resultFromGemini(nil))
	assert.Equal(t, ChatResult{}, resultFromGemini(&genai.GenerateContentResponse{}))
}

func TestToGeminiContentsMapsRoles(t *testing.T) {
	contents := toGeminiContents([]Turn{
		{Role: chat.RoleModel, Text: "welcome"},
		{Role: chat.RoleUser, Text: "hi"},
		{Role: "system", Text: "odd"},
	})

	require.Len(t, contents, 3)
	assert.Equal(t, "model", contents[0].Role)
	assert.Equal(t, "user", contents[1].Role)
	assert.Equal(t, "user", contents[2].Role)
	assert.Equal(t, "hi", contents[1].Parts[0].Text)
}

func TestGeminiSchemaRequiresEveryField(t *testing.T) {
	schema := geminiSchema(setupFields)

	assert.Equal(t, genai.TypeObject, schema.Type)
	assert.Equal(t, []string{"name", "systemPrompt", "welcomeMessage", "themeColor"}, schema.Required)
	assert.Equal(t, genai.TypeString, schema.Properties["themeColor"].Type)
	assert.NotEmpty(t, schema.Properties["themeColor"].Description)
}
