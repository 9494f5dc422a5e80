package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/PabloGalante/partsdesk/internal/domain"
)

// AnthropicClient generates replies with the Anthropic Messages API.
type AnthropicClient struct {
	client *anthropic.Client
	model  string
}

var _ domain.LLMClient = (*AnthropicClient)(nil)

func NewAnthropicClient(apiKey, model string, opts ...option.RequestOption) (*AnthropicClient, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("anthropic api key is required")
	}
	if model == "" {
		model = "claude-3-5-haiku-latest"
	}

	client := anthropic.NewClient(append([]option.RequestOption{option.WithAPIKey(apiKey)}, opts...)...)
	return &AnthropicClient{client: &client, model: model}, nil
}

func (a *AnthropicClient) GenerateReply(ctx context.Context, userMessage string, convCtx domain.ConversationContext) (string, error) {
	var messages []anthropic.MessageParam
	for _, m := range Messages(userMessage, convCtx) {
		if m.Role == domain.RoleAssistant {
			messages = append(messages, anthropic.NewAssistantMessage(anthropic.NewTextBlock(m.Text)))
		} else {
			messages = append(messages, anthropic.NewUserMessage(anthropic.NewTextBlock(m.Text)))
		}
	}

	msg, err := a.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(a.model),
		MaxTokens: 1000,
		System: []anthropic.TextBlockParam{
			{Text: SystemPrompt(convCtx)},
		},
		Messages:    messages,
		Temperature: anthropic.Float(0.7),
	})
	if err != nil {
		return "", fmt.Errorf("anthropic messages: %w", err)
	}

	var b strings.Builder
	for _, block := range msg.Content {
		if tb, ok := block.AsAny().(anthropic.TextBlock); ok {
			b.WriteString(tb.Text)
		}
	}
	text := strings.TrimSpace(b.String())
	if text == "" {
		return "", fmt.Errorf("anthropic returned empty text")
	}
	return text, nil
}
