package llm

import (
	"context"
	"errors"
	"os"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

// AnthropicChat generates answers through the Anthropic messages API.
type AnthropicChat struct {
	client *anthropic.Client
	model  anthropic.Model
}

// NewAnthropicChat creates a chat client using the ANTHROPIC_API_KEY
// environment variable for authentication.
func NewAnthropicChat(model string) (*AnthropicChat, error) {
	apiKey := os.Getenv("ANTHROPIC_API_KEY")
	if apiKey == "" {
		return nil, errors.New("ANTHROPIC_API_KEY environment variable not set")
	}
	m := anthropic.Model(model)
	if model == "" {
		m = anthropic.ModelClaude3_7SonnetLatest
	}
	client := anthropic.NewClient(option.WithAPIKey(apiKey))
	return &AnthropicChat{client: &client, model: m}, nil
}

// Model returns the configured model name.
func (c *AnthropicChat) Model() string { return string(c.model) }

// Generate sends the prompt as a single user message and concatenates the
// text blocks of the response.
func (c *AnthropicChat) Generate(ctx context.Context, prompt string) (string, error) {
	msg, err := c.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     c.model,
		MaxTokens: 1024,
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		},
	})
	if err != nil {
		return "", err
	}

	var b strings.Builder
	for _, content := range msg.Content {
		if content.Type == "text" {
			b.WriteString(content.Text)
		}
	}
	return b.String(), nil
}
