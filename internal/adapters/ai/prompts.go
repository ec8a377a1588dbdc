package ai

import (
	"embed"
	"fmt"

	"github.com/selivandex/news-sentiment/pkg/models"
	"github.com/selivandex/news-sentiment/pkg/templates"
)

// DefaultSystemPrompt is used when the caller supplies no system prompt
const DefaultSystemPrompt = `You analyze recent market text and produce structured JSON.
Rules:
- Return strictly valid JSON matching the provided schema.
- horizon_minutes MUST be 1440 (24 hours).
- overall_sentiment MUST be one of: bullish, bearish, neutral, mixed.
- Only include assets in bullish/bearish if confidence is strong.
- If only one side is supported, leave the other empty.
- Focus on widely discussed topics and clearest trends.
- Prioritize assets that recur across multiple articles.
- Keep assets short (e.g., BTC, ETH, SOL) and predictions one sentence.
- No extra commentary, no markdown.
`

const userPromptTemplate = "user_prompt.tmpl"

//go:embed templates/*.tmpl
var promptFS embed.FS

// PromptBuilder renders the user prompt from recent article previews
type PromptBuilder struct {
	renderer templates.Renderer
}

// NewPromptBuilder loads the embedded prompt templates
func NewPromptBuilder() (*PromptBuilder, error) {
	manager, err := templates.NewManagerWithValidation(promptFS, []string{userPromptTemplate})
	if err != nil {
		return nil, fmt.Errorf("failed to load prompt templates: %w", err)
	}
	return &PromptBuilder{renderer: manager}, nil
}

// Build renders the prompt. Articles must already be ordered newest first.
func (b *PromptBuilder) Build(articles []models.ArticlePreview) (string, error) {
	data := struct {
		HorizonMinutes int
		Articles       []models.ArticlePreview
	}{
		HorizonMinutes: models.HorizonMinutes,
		Articles:       articles,
	}

	return b.renderer.ExecuteTemplate(userPromptTemplate, data)
}

// SystemPromptOrDefault returns the caller's prompt unless it is empty
func SystemPromptOrDefault(systemPrompt string) string {
	if systemPrompt == "" {
		return DefaultSystemPrompt
	}
	return systemPrompt
}
