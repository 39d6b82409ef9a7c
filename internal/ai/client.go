package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"github.com/myrjola/interviewdash/internal/errors"
	"github.com/myrjola/interviewdash/internal/models"
	"github.com/sashabaranov/go-openai"
	"log/slog"
	"strings"
)

type Client struct {
	client *openai.Client
	model  string
}

// NewClient creates a client for the OpenAI API. A non-empty baseURL replaces the default API address.
func NewClient(apiKey string, baseURL string) *Client {
	config := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		config.BaseURL = baseURL
	}
	return &Client{
		client: openai.NewClientWithConfig(config),
		model:  openai.GPT4oMini,
	}
}

const MaxTokens = 512

const extractionPrompt = `You read transcripts of short voice interviews.
Reply with a JSON object with these optional keys:
- "is_woman": boolean, whether the participant said they are a woman,
- "favorite_food": string, the participant's favorite food,
- "food_reason": string, why it is their favorite.
Leave a key out when the transcript does not answer it. Do not guess.`

// ExtractVariables infers the structured answers of the interview from its transcript.
func (c *Client) ExtractVariables(
	ctx context.Context,
	transcript []models.TranscriptMessage,
) (*models.ExtractedVariables, error) {
	var b strings.Builder
	for _, message := range transcript {
		_, _ = fmt.Fprintf(&b, "%s: %s\n", message.Speaker, message.Text)
	}

	completion, err := c.client.CreateChatCompletion(
		ctx,
		openai.ChatCompletionRequest{ //nolint:exhaustruct // this is better for readability
			Model:     c.model,
			MaxTokens: MaxTokens,
			ResponseFormat: &openai.ChatCompletionResponseFormat{ //nolint:exhaustruct // JSON mode needs no schema.
				Type: openai.ChatCompletionResponseFormatTypeJSONObject,
			},
			Messages: []openai.ChatCompletionMessage{
				{Role: openai.ChatMessageRoleSystem, Content: extractionPrompt},
				{Role: openai.ChatMessageRoleUser, Content: b.String()},
			},
		},
	)
	if err != nil {
		return nil, errors.Wrap(err, "create chat completion")
	}
	if len(completion.Choices) == 0 {
		return nil, errors.New("no completion choices")
	}

	content := completion.Choices[0].Message.Content
	var vars models.ExtractedVariables
	if err = json.Unmarshal([]byte(content), &vars); err != nil {
		return nil, errors.Wrap(err, "unmarshal extracted variables", slog.String("content", content))
	}
	if vars.IsEmpty() {
		return nil, nil
	}
	return &vars, nil
}
