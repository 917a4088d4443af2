package providers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"reflect"
	"strings"
	"testing"
)

type stubProvider struct {
	name      string
	available bool
}

func (s *stubProvider) Name() string    { return s.name }
func (s *stubProvider) Available() bool { return s.available }
func (s *stubProvider) Reply(ctx context.Context, turns []Turn, language, level string) (string, error) {
	return "", errors.New("not used")
}

func newStubRegistry(primary string, available ...string) *Registry {
	r := NewRegistry(primary)
	for _, name := range []string{NameGemini, NameOpenAI, NameAnthropic} {
		ok := false
		for _, a := range available {
			if a == name {
				ok = true
			}
		}
		r.Register(&stubProvider{name: name, available: ok})
	}
	return r
}

func TestRegistryOrder(t *testing.T) {
	cases := map[string][]string{
		"gemini":    {NameGemini, NameOpenAI, NameAnthropic},
		"openai":    {NameOpenAI, NameAnthropic, NameGemini},
		"anthropic": {NameAnthropic, NameGemini, NameOpenAI},
		"":          {NameGemini, NameOpenAI, NameAnthropic},
		"mistral":   {NameGemini, NameOpenAI, NameAnthropic},
		" OpenAI ":  {NameOpenAI, NameAnthropic, NameGemini},
	}
	for primary, want := range cases {
		if got := NewRegistry(primary).Order(); !reflect.DeepEqual(got, want) {
			t.Errorf("Order(%q) = %v, want %v", primary, got, want)
		}
	}
}

func TestRegistrySelect(t *testing.T) {
	cases := []struct {
		primary   string
		available []string
		want      string
	}{
		{"openai", []string{NameOpenAI, NameGemini}, NameOpenAI},
		{"openai", []string{NameGemini, NameAnthropic}, NameAnthropic},
		{"gemini", []string{NameAnthropic}, NameAnthropic},
		{"gemini", []string{NameOpenAI, NameAnthropic}, NameOpenAI},
		{"anthropic", []string{NameOpenAI}, NameOpenAI},
	}
	for _, tc := range cases {
		p, ok := newStubRegistry(tc.primary, tc.available...).Select()
		if !ok {
			t.Errorf("primary=%s available=%v: expected a provider", tc.primary, tc.available)
			continue
		}
		if p.Name() != tc.want {
			t.Errorf("primary=%s available=%v: got %s, want %s", tc.primary, tc.available, p.Name(), tc.want)
		}
	}

	if _, ok := newStubRegistry("gemini").Select(); ok {
		t.Error("expected no provider when no credential is configured")
	}
}

func TestRegistryGet(t *testing.T) {
	r := newStubRegistry("gemini")
	if _, err := r.Get(NameOpenAI); err != nil {
		t.Errorf("expected openai to be registered: %v", err)
	}
	if _, err := r.Get("mistral"); err == nil {
		t.Error("expected error for unknown provider")
	}
}

func TestNormalizeRole(t *testing.T) {
	for in, want := range map[string]string{
		"model": RoleAssistant, "assistant": RoleAssistant, "AI": RoleAssistant,
		"user": RoleUser, "": RoleUser, "system": RoleUser,
	} {
		if got := NormalizeRole(in); got != want {
			t.Errorf("NormalizeRole(%q) = %s, want %s", in, got, want)
		}
	}
}

func TestTutorPrompt(t *testing.T) {
	p := TutorPrompt("Spanish", "beginner")
	for _, want := range []string{"expert Spanish language tutor", "ser vs estar", "level is beginner"} {
		if !strings.Contains(p, want) {
			t.Errorf("prompt missing %q:\n%s", want, p)
		}
	}
	if g := LanguageGuidance("Klingon"); !strings.Contains(g, "basic grammar, vocabulary, and pronunciation for Klingon") {
		t.Errorf("unexpected generic guidance: %s", g)
	}
	if g := LanguageGuidance("german"); !strings.Contains(g, "der/die/das") {
		t.Errorf("expected case-insensitive guidance lookup, got %s", g)
	}
}

var testTurns = []Turn{
	{Role: RoleUser, Text: "Hola"},
	{Role: RoleAssistant, Text: "¡Hola! ¿Cómo estás?"},
	{Role: RoleUser, Text: "Bien, gracias"},
}

func TestOpenAIProviderReply(t *testing.T) {
	var got struct {
		Model       string  `json:"model"`
		MaxTokens   int     `json:"max_tokens"`
		Temperature float32 `json:"temperature"`
		Messages    []struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"messages"`
	}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/chat/completions" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if auth := r.Header.Get("Authorization"); auth != "Bearer sk-test" {
			t.Errorf("unexpected Authorization header %q", auth)
		}
		body, _ := io.ReadAll(r.Body)
		if err := json.Unmarshal(body, &got); err != nil {
			t.Errorf("bad request body: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `{"id":"chatcmpl-1","object":"chat.completion","created":1,"model":"gpt-4o-mini",
			"choices":[{"index":0,"message":{"role":"assistant","content":"¡Muy bien!"},"finish_reason":"stop"}],
			"usage":{"prompt_tokens":1,"completion_tokens":1,"total_tokens":2}}`)
	}))
	defer server.Close()

	p := NewOpenAIProvider(Config{APIKey: "sk-test", BaseURL: server.URL + "/v1"})
	reply, err := p.Reply(context.Background(), testTurns, "Spanish", "beginner")
	if err != nil {
		t.Fatalf("Reply failed: %v", err)
	}
	if reply != "¡Muy bien!" {
		t.Errorf("unexpected reply %q", reply)
	}
	if got.Model != "gpt-4o-mini" || got.MaxTokens != 300 || got.Temperature != 0.7 {
		t.Errorf("unexpected request parameters: %+v", got)
	}
	if len(got.Messages) != 4 || got.Messages[0].Role != "system" || got.Messages[2].Role != "assistant" || got.Messages[3].Content != "Bien, gracias" {
		t.Errorf("unexpected message mapping: %+v", got.Messages)
	}
}

func TestOpenAIProviderError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		io.WriteString(w, `{"error":{"message":"boom","type":"server_error"}}`)
	}))
	defer server.Close()

	p := NewOpenAIProvider(Config{APIKey: "sk-test", BaseURL: server.URL + "/v1"})
	if _, err := p.Reply(context.Background(), testTurns, "Spanish", "beginner"); err == nil {
		t.Fatal("expected error from failing upstream")
	}
}

func TestAnthropicProviderReply(t *testing.T) {
	var got struct {
		Model     string `json:"model"`
		MaxTokens int    `json:"max_tokens"`
		Messages  []struct {
			Role string `json:"role"`
		} `json:"messages"`
		System []struct {
			Text string `json:"text"`
		} `json:"system"`
	}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/messages" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if key := r.Header.Get("X-Api-Key"); key != "ak-test" {
			t.Errorf("unexpected api key %q", key)
		}
		body, _ := io.ReadAll(r.Body)
		if err := json.Unmarshal(body, &got); err != nil {
			t.Errorf("bad request body: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `{"id":"msg_1","type":"message","role":"assistant","model":"claude-3-haiku-20240307",
			"content":[{"type":"text","text":"Très bien !"}],"stop_reason":"end_turn","stop_sequence":null,
			"usage":{"input_tokens":1,"output_tokens":1}}`)
	}))
	defer server.Close()

	p := NewAnthropicProvider(Config{APIKey: "ak-test", BaseURL: server.URL + "/"})
	turns := append([]Turn{{Role: RoleAssistant, Text: "Bonjour"}}, testTurns...)
	reply, err := p.Reply(context.Background(), turns, "French", "intermediate")
	if err != nil {
		t.Fatalf("Reply failed: %v", err)
	}
	if reply != "Très bien !" {
		t.Errorf("unexpected reply %q", reply)
	}
	if got.Model != "claude-3-haiku-20240307" || got.MaxTokens != 300 {
		t.Errorf("unexpected request parameters: %+v", got)
	}
	if len(got.Messages) != 3 || got.Messages[0].Role != "user" || got.Messages[1].Role != "assistant" {
		t.Errorf("expected leading assistant turn dropped, got %+v", got.Messages)
	}
	if len(got.System) != 1 || !strings.Contains(got.System[0].Text, "French language tutor") {
		t.Errorf("unexpected system prompt %+v", got.System)
	}
}

func TestGeminiProviderReply(t *testing.T) {
	var got struct {
		Contents []struct {
			Role string `json:"role"`
		} `json:"contents"`
		GenerationConfig struct {
			MaxOutputTokens int `json:"maxOutputTokens"`
		} `json:"generationConfig"`
	}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "models/gemini-test:generateContent") {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		body, _ := io.ReadAll(r.Body)
		if err := json.Unmarshal(body, &got); err != nil {
			t.Errorf("bad request body: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `{"candidates":[{"content":{"role":"model","parts":[{"text":"Sehr gut!"}]},"finishReason":"STOP"}]}`)
	}))
	defer server.Close()

	p := NewGeminiProvider(Config{APIKey: "g-test", Model: "gemini-test", BaseURL: server.URL + "/"})
	if p.client == nil || !p.Available() {
		t.Fatal("expected the client to be built by the constructor")
	}
	client := p.client
	for i := 0; i < 2; i++ {
		reply, err := p.Reply(context.Background(), testTurns, "German", "beginner")
		if err != nil {
			t.Fatalf("Reply %d failed: %v", i, err)
		}
		if reply != "Sehr gut!" {
			t.Errorf("unexpected reply %q", reply)
		}
	}
	if p.client != client {
		t.Error("expected the same client to serve every reply")
	}
	if len(got.Contents) != 3 || got.Contents[1].Role != "model" {
		t.Errorf("unexpected content mapping: %+v", got.Contents)
	}
	if got.GenerationConfig.MaxOutputTokens != 500 {
		t.Errorf("expected 500 max output tokens, got %d", got.GenerationConfig.MaxOutputTokens)
	}
}

func TestProvidersUnavailableWithoutKey(t *testing.T) {
	for _, p := range []Provider{
		NewOpenAIProvider(Config{}),
		NewAnthropicProvider(Config{}),
		NewGeminiProvider(Config{}),
	} {
		if p.Available() {
			t.Errorf("%s should be unavailable without an API key", p.Name())
		}
	}
	if g := NewGeminiProvider(Config{}); g.client != nil {
		t.Error("expected no gemini client without an API key")
	}
	if _, err := NewGeminiProvider(Config{}).Reply(context.Background(), testTurns, "German", "beginner"); err == nil {
		t.Error("expected an error from an unconfigured gemini provider")
	}
}
