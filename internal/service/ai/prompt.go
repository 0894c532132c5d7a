package ai

import (
	"fmt"
	"strings"

	"github.com/zhouzirui/withjet/backend/internal/model/bot"
)

const systemInstructionTemplate = `You are an AI Assistant for the website: %[1]s.
Your Name is: %[2]s.

CRITICAL: If the user asks about specific pages, prices, or current info on %[1]s, use the Google Search tool to find the exact details on that domain.

Context from provided documents:
%[3]s

General Behavior:
%[4]s

Guidelines:
1. Be helpful, professional, and friendly.
2. Prioritize info from the Knowledge Base (PDFs), then from live search on %[1]s.
3. If you find a relevant link on the site, provide it to the user.
4. Do not mention you are an AI unless asked.`

// BuildSystemInstruction renders the system instruction for one bot. It is
// a pure function of the config: persona framing, the live-search rule, the
// verbatim knowledge text, the verbatim system prompt, then the fixed
// guidelines.
func BuildSystemInstruction(cfg bot.Config) string {
	return fmt.Sprintf(systemInstructionTemplate,
		cfg.WebsiteURL,
		cfg.Name,
		cfg.KnowledgeText,
		cfg.SystemPrompt,
	)
}

// setupPrompt asks for a starter configuration of a customer service bot.
func setupPrompt(url, description string) string {
	return fmt.Sprintf(
		"Based on the URL %s and this description: %q, generate a JSON configuration for a customer service bot. "+
			"Include a creative name, a professional system prompt, and a friendly welcome message.",
		strings.TrimSpace(url), strings.TrimSpace(description),
	)
}

// setupFields is the response shape of the setup assistant.
var setupFields = []Field{
	{Name: "name"},
	{Name: "systemPrompt"},
	{Name: "welcomeMessage"},
	{Name: "themeColor", Description: "A hex color code that fits the site brand"},
}
