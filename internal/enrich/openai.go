package enrich

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/rs/zerolog"
	"github.com/sashabaranov/go-openai"
	"notekit/internal/logger"
	"notekit/pkg/models"
)

// OpenAIEnricher derives tags, summary and flashcards from extracted text
// with a single chat completion. Like every Enricher it degrades to the
// local fallback on any failure.
type OpenAIEnricher struct {
	client *openai.Client
	model  string
	log    zerolog.Logger
}

// NewOpenAIEnricher creates an enricher around an existing OpenAI client.
// An empty model defaults to GPT-4o mini.
func NewOpenAIEnricher(client *openai.Client, model string) *OpenAIEnricher {
	if model == "" {
		model = openai.GPT4oMini
	}
	return &OpenAIEnricher{
		client: client,
		model:  model,
		log:    logger.WithComponent("enrich-openai"),
	}
}

const enrichPrompt = `You are given the text extracted from a study document.
Derive learning aids from it.

TEXT:
%s

Respond only with JSON in the following format:
{
  "tags": ["topic1", "topic2"],
  "summary": "two or three sentence summary",
  "flashcards": [
    {"front": "question", "back": "answer"}
  ]
}

Use at most 5 tags and at most 10 flashcards. If the text is too short or
unintelligible, return empty arrays and an empty summary.`

// Enrich performs one chat completion and returns the derived data, or the
// local fallback on any failure.
func (e *OpenAIEnricher) Enrich(ctx context.Context, text string) models.Enrichment {
	resp, err := e.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: e.model,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleUser,
				Content: strings.Replace(enrichPrompt, "%s", text, 1),
			},
		},
		Temperature: 0.2,
		MaxTokens:   1500,
	})
	if err != nil {
		e.log.Warn().Err(err).Msg("Chat completion failed, using fallback")
		return Fallback(text)
	}
	if len(resp.Choices) == 0 {
		e.log.Warn().Msg("No response choices from chat completion, using fallback")
		return Fallback(text)
	}

	var result models.Enrichment
	cleaned := stripCodeFences(resp.Choices[0].Message.Content)
	if err := json.Unmarshal([]byte(cleaned), &result); err != nil {
		e.log.Warn().
			Err(err).
			Str("response", cleaned).
			Msg("Failed to parse chat completion response as JSON, using fallback")
		return Fallback(text)
	}

	normalize(&result)
	e.log.Debug().
		Int("tags", len(result.Tags)).
		Int("flashcards", len(result.Flashcards)).
		Msg("Enrichment completed")
	return result
}

// stripCodeFences handles responses wrapped in markdown code blocks.
func stripCodeFences(response string) string {
	cleaned := strings.TrimSpace(response)
	if strings.HasPrefix(cleaned, "```json") {
		cleaned = strings.TrimPrefix(cleaned, "```json")
		cleaned = strings.TrimSuffix(cleaned, "```")
	} else if strings.HasPrefix(cleaned, "```") {
		cleaned = strings.TrimPrefix(cleaned, "```")
		cleaned = strings.TrimSuffix(cleaned, "```")
	}
	return strings.TrimSpace(cleaned)
}

var _ Enricher = (*OpenAIEnricher)(nil)
