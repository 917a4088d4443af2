package providers

import (
	"context"
	"fmt"
	"log"
	"strings"

	"google.golang.org/genai"
)

const defaultGeminiModel = "gemini-2.0-flash-exp"

// GeminiProvider calls generateContent on the Gemini API.
type GeminiProvider struct {
	apiKey string
	model  string
	client *genai.Client
}

// NewGeminiProvider creates the provider and its client. Without a key, or if
// the client cannot be built, the provider stays unavailable.
func NewGeminiProvider(cfg Config) *GeminiProvider {
	model := cfg.Model
	if model == "" {
		model = defaultGeminiModel
	}
	p := &GeminiProvider{apiKey: cfg.APIKey, model: model}
	if cfg.APIKey == "" {
		return p
	}

	client, err := genai.NewClient(context.Background(), &genai.ClientConfig{
		APIKey:      cfg.APIKey,
		Backend:     genai.BackendGeminiAPI,
		HTTPOptions: genai.HTTPOptions{BaseURL: cfg.BaseURL},
	})
	if err != nil {
		log.Printf("ERROR [GeminiProvider] Failed to create client: %v", err)
		return p
	}
	p.client = client
	return p
}

func (p *GeminiProvider) Name() string { return NameGemini }

func (p *GeminiProvider) Available() bool { return p.apiKey != "" && p.client != nil }

// Reply maps assistant turns onto Gemini's "model" role and passes the tutor
// prompt as the system instruction.
func (p *GeminiProvider) Reply(ctx context.Context, turns []Turn, language, level string) (string, error) {
	if p.client == nil {
		return "", fmt.Errorf("gemini: client not configured")
	}

	contents := make([]*genai.Content, 0, len(turns))
	for _, t := range turns {
		role := genai.RoleUser
		if t.Role == RoleAssistant {
			role = genai.RoleModel
		}
		contents = append(contents, genai.NewContentFromText(t.Text, genai.Role(role)))
	}

	resp, err := p.client.Models.GenerateContent(ctx, p.model, contents, &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(TutorPrompt(language, level), genai.RoleUser),
		Temperature:       genai.Ptr[float32](geminiTemperature),
		TopP:              genai.Ptr[float32](0.95),
		TopK:              genai.Ptr[float32](40),
		MaxOutputTokens:   geminiMaxReplyTokens,
	})
	if err != nil {
		return "", fmt.Errorf("gemini generate content: %w", err)
	}
	text := resp.Text()
	if strings.TrimSpace(text) == "" {
		return emptyReplyText, nil
	}
	return text, nil
}
