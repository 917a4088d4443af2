package providers

import (
	"context"
	"fmt"
	"strings"

	openai "github.com/sashabaranov/go-openai"
)

// Config carries one provider's credential and endpoint overrides.
type Config struct {
	APIKey string
	Model  string
	// BaseURL overrides the vendor endpoint; empty uses the SDK default.
	BaseURL string
}

const defaultOpenAIModel = "gpt-4o-mini"

// OpenAIProvider calls the Chat Completions API.
type OpenAIProvider struct {
	apiKey string
	model  string
	client *openai.Client
}

// NewOpenAIProvider creates the provider; it stays unavailable without a key.
func NewOpenAIProvider(cfg Config) *OpenAIProvider {
	clientConfig := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientConfig.BaseURL = cfg.BaseURL
	}
	model := cfg.Model
	if model == "" {
		model = defaultOpenAIModel
	}
	return &OpenAIProvider{
		apiKey: cfg.APIKey,
		model:  model,
		client: openai.NewClientWithConfig(clientConfig),
	}
}

func (p *OpenAIProvider) Name() string { return NameOpenAI }

func (p *OpenAIProvider) Available() bool { return p.apiKey != "" }

// Reply sends the system prompt followed by the whole history.
func (p *OpenAIProvider) Reply(ctx context.Context, turns []Turn, language, level string) (string, error) {
	messages := make([]openai.ChatCompletionMessage, 0, len(turns)+1)
	messages = append(messages, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleSystem,
		Content: TutorPrompt(language, level),
	})
	for _, t := range turns {
		role := openai.ChatMessageRoleUser
		if t.Role == RoleAssistant {
			role = openai.ChatMessageRoleAssistant
		}
		messages = append(messages, openai.ChatCompletionMessage{Role: role, Content: t.Text})
	}

	resp, err := p.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       p.model,
		Messages:    messages,
		MaxTokens:   maxReplyTokens,
		Temperature: replyTemperature,
	})
	if err != nil {
		return "", fmt.Errorf("openai chat completion: %w", err)
	}
	if len(resp.Choices) == 0 || strings.TrimSpace(resp.Choices[0].Message.Content) == "" {
		return emptyReplyText, nil
	}
	return resp.Choices[0].Message.Content, nil
}
