package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/PabloGalante/partsdesk/internal/domain"
)

// DeepSeekClient talks to DeepSeek through its OpenAI compatible API.
type DeepSeekClient struct {
	client *openai.Client
	model  string
}

var _ domain.LLMClient = (*DeepSeekClient)(nil)

func NewDeepSeekClient(apiKey, baseURL, model string, opts ...option.RequestOption) (*DeepSeekClient, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("deepseek api key is required")
	}
	if model == "" {
		model = "deepseek-chat"
	}

	all := []option.RequestOption{option.WithAPIKey(apiKey)}
	if baseURL != "" {
		all = append(all, option.WithBaseURL(baseURL))
	}
	client := openai.NewClient(append(all, opts...)...)

	return &DeepSeekClient{client: &client, model: model}, nil
}

func (d *DeepSeekClient) GenerateReply(ctx context.Context, userMessage string, convCtx domain.ConversationContext) (string, error) {
	messages := []openai.ChatCompletionMessageParamUnion{openai.SystemMessage(SystemPrompt(convCtx))}
	for _, m := range Messages(userMessage, convCtx) {
		if m.Role == domain.RoleAssistant {
			messages = append(messages, openai.AssistantMessage(m.Text))
		} else {
			messages = append(messages, openai.UserMessage(m.Text))
		}
	}

	resp, err := d.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model:       openai.ChatModel(d.model),
		Messages:    messages,
		Temperature: openai.Float(0.7),
		MaxTokens:   openai.Int(1000),
	})
	if err != nil {
		return "", fmt.Errorf("deepseek chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("deepseek returned no choices")
	}

	text := strings.TrimSpace(resp.Choices[0].Message.Content)
	if text == "" {
		return "", fmt.Errorf("deepseek returned empty text")
	}
	return text, nil
}
