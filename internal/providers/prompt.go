package providers

import (
	"fmt"
	"strings"
)

// Output bounds and sampling shared by the provider integrations.
const (
	maxReplyTokens       = 300
	geminiMaxReplyTokens = 500
	replyTemperature     = 0.7
	geminiTemperature    = 0.8
)

// emptyReplyText is returned when a provider answers with no text.
const emptyReplyText = "I apologize, I cannot respond right now."

var languageGuidance = map[string]string{
	"spanish": `- Focus on gender agreement (el/la, -o/-a endings)
- Practice ser vs estar usage
- Help with subjunctive mood when relevant
- Emphasize rolled R pronunciation
- Discuss regional variations (Mexican, Argentinian, etc.)`,
	"french": `- Focus on gender agreement and liaisons
- Practice nasal vowels pronunciation
- Help with formal vs informal address (tu/vous)
- Explain silent letters and pronunciation rules
- Discuss cultural etiquette and expressions`,
	"german": `- Focus on der/die/das articles and cases
- Practice word order in different sentence types
- Help with separable/inseparable verbs
- Explain compound word formation
- Discuss formal vs informal address (du/Sie)`,
	"japanese": `- Focus on hiragana, katakana, and basic kanji
- Practice politeness levels (keigo, teineigo)
- Help with particle usage (wa, ga, wo, ni, etc.)
- Explain pitch accent and pronunciation
- Discuss cultural context and bowing etiquette`,
	"italian": `- Focus on gender agreement and verb conjugations
- Practice double consonants pronunciation
- Help with formal vs informal address (tu/Lei)
- Explain hand gestures and cultural expressions
- Discuss regional dialects and variations`,
	"english": `- Focus on irregular verbs and phrasal verbs
- Practice articles (a, an, the) usage
- Help with pronunciation of difficult sounds
- Explain idioms and colloquial expressions
- Discuss formal vs informal language`,
}

// LanguageGuidance returns the teaching focus for language.
func LanguageGuidance(language string) string {
	if g, ok := languageGuidance[strings.ToLower(strings.TrimSpace(language))]; ok {
		return g
	}
	return fmt.Sprintf("Focus on basic grammar, vocabulary, and pronunciation for %s.", language)
}

// TutorPrompt builds the system prompt sent with every provider call.
func TutorPrompt(language, level string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "You are an expert %s language tutor. ", language)
	b.WriteString("Reply concisely and directly to the user's message. ")
	b.WriteString("Only ask a follow-up question if it is required for learning or to keep the conversation going, and keep any question very short. ")
	b.WriteString("Do not ask unnecessary questions. If you correct or explain, do so briefly. ")
	fmt.Fprintf(&b, "Use some %s in your reply when appropriate, and always provide English translations for %s words/phrases. ", language, language)
	b.WriteString("Point out common mistakes only if relevant. Be friendly and supportive.")
	if level != "" {
		fmt.Fprintf(&b, "\n\nThe learner's level is %s; match your vocabulary and grammar to it.", level)
	}
	b.WriteString("\n\nTeaching focus:\n")
	b.WriteString(LanguageGuidance(language))
	return b.String()
}
