package providers

import (
	"context"
	"fmt"
	"log"
	"strings"
)

// Provider names, also reported back to the client.
const (
	NameGemini    = "gemini"
	NameOpenAI    = "openai"
	NameAnthropic = "anthropic"
	NameFallback  = "fallback"
)

// Roles of a normalised turn.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Turn is one provider-neutral history entry.
type Turn struct {
	Role string
	Text string
}

// NormalizeRole maps client role tags onto RoleUser or RoleAssistant.
func NormalizeRole(role string) string {
	switch strings.ToLower(strings.TrimSpace(role)) {
	case "model", "assistant", "ai":
		return RoleAssistant
	default:
		return RoleUser
	}
}

// Provider is a hosted language model that can produce a tutoring reply.
type Provider interface {
	// Name identifies the provider in configuration and responses.
	Name() string
	// Available reports whether the provider's credential is configured.
	Available() bool
	// Reply issues one synchronous completion for turns, the last of which
	// is the learner's new message.
	Reply(ctx context.Context, turns []Turn, language, level string) (string, error)
}

// selectionCycle is rotated to start at the configured primary provider.
var selectionCycle = []string{NameOpenAI, NameAnthropic, NameGemini}

// Registry holds the configured providers and picks one per request.
type Registry struct {
	providers map[string]Provider
	primary   string
}

// NewRegistry creates a registry whose preferred provider is primary.
// Unknown names fall back to gemini.
func NewRegistry(primary string) *Registry {
	primary = strings.ToLower(strings.TrimSpace(primary))
	known := false
	for _, name := range selectionCycle {
		if name == primary {
			known = true
		}
	}
	if !known {
		if primary != "" {
			log.Printf("WARN [ProviderRegistry] Unknown AI_PROVIDER '%s', defaulting to %s.", primary, NameGemini)
		}
		primary = NameGemini
	}
	return &Registry{
		providers: make(map[string]Provider),
		primary:   primary,
	}
}

// Register adds a provider implementation to the registry.
func (r *Registry) Register(p Provider) {
	if _, exists := r.providers[p.Name()]; exists {
		log.Printf("WARN [ProviderRegistry] Provider '%s' is already registered. Overwriting.", p.Name())
	}
	r.providers[p.Name()] = p
	log.Printf("[ProviderRegistry] Registered provider %s (available=%t)", p.Name(), p.Available())
}

// Get retrieves a provider by name.
func (r *Registry) Get(name string) (Provider, error) {
	p, exists := r.providers[name]
	if !exists {
		return nil, fmt.Errorf("no provider registered with name: %s", name)
	}
	return p, nil
}

// Order returns the provider names in the order they are tried: the
// primary first, then the rest of the cycle openai → anthropic → gemini.
func (r *Registry) Order() []string {
	start := 0
	for i, name := range selectionCycle {
		if name == r.primary {
			start = i
		}
	}
	order := make([]string, 0, len(selectionCycle))
	for i := range selectionCycle {
		order = append(order, selectionCycle[(start+i)%len(selectionCycle)])
	}
	return order
}

// Select returns the first provider in Order whose credential is present.
func (r *Registry) Select() (Provider, bool) {
	for _, name := range r.Order() {
		if p, ok := r.providers[name]; ok && p.Available() {
			return p, true
		}
	}
	return nil, false
}
