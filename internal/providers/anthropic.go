package providers

import (
	"context"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

const defaultAnthropicModel = "claude-3-haiku-20240307"

// AnthropicProvider calls the Messages API.
type AnthropicProvider struct {
	apiKey string
	model  string
	client anthropic.Client
}

// NewAnthropicProvider creates the provider with SDK retries disabled.
func NewAnthropicProvider(cfg Config) *AnthropicProvider {
	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithMaxRetries(0),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}
	model := cfg.Model
	if model == "" {
		model = defaultAnthropicModel
	}
	return &AnthropicProvider{
		apiKey: cfg.APIKey,
		model:  model,
		client: anthropic.NewClient(opts...),
	}
}

func (p *AnthropicProvider) Name() string { return NameAnthropic }

func (p *AnthropicProvider) Available() bool { return p.apiKey != "" }

// Reply sends the history as alternating messages. Leading assistant turns
// are dropped because the Messages API requires a user turn first.
func (p *AnthropicProvider) Reply(ctx context.Context, turns []Turn, language, level string) (string, error) {
	messages := make([]anthropic.MessageParam, 0, len(turns))
	for _, t := range turns {
		if t.Role == RoleAssistant {
			if len(messages) == 0 {
				continue
			}
			messages = append(messages, anthropic.NewAssistantMessage(anthropic.NewTextBlock(t.Text)))
			continue
		}
		messages = append(messages, anthropic.NewUserMessage(anthropic.NewTextBlock(t.Text)))
	}
	if len(messages) == 0 {
		return "", fmt.Errorf("anthropic: no user turn to answer")
	}

	msg, err := p.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:       anthropic.Model(p.model),
		MaxTokens:   maxReplyTokens,
		System:      []anthropic.TextBlockParam{{Text: TutorPrompt(language, level)}},
		Messages:    messages,
		Temperature: anthropic.Float(replyTemperature),
	})
	if err != nil {
		return "", fmt.Errorf("anthropic messages: %w", err)
	}
	for _, block := range msg.Content {
		if block.Type == "text" && strings.TrimSpace(block.Text) != "" {
			return block.Text, nil
		}
	}
	return emptyReplyText, nil
}
