package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"langbot-backend/internal/models"
	"langbot-backend/internal/providers"
	"langbot-backend/internal/store"

	"github.com/google/uuid"
)

const (
	DefaultLanguage  = "English"
	DefaultUserLevel = "beginner"
)

// FallbackReply is returned when no provider is configured or the chosen
// provider fails.
const FallbackReply = "I'm having trouble connecting to my AI brain right now, but I'm still here to help you learn! \n\n" +
	"Try asking me about:\n" +
	"🗣️ Basic phrases and greetings\n" +
	"📚 Grammar rules and explanations  \n" +
	"🔤 Vocabulary in specific topics\n" +
	"🗺️ Cultural insights\n\n" +
	"What would you like to learn about?"

// ProviderSelector picks the provider that serves a chat turn.
type ProviderSelector interface {
	Select() (providers.Provider, bool)
}

// ChatService runs one tutoring turn and records it for signed-in users.
type ChatService struct {
	store     store.Store
	providers ProviderSelector
}

// NewChatService creates a new ChatService.
func NewChatService(s store.Store, p ProviderSelector) *ChatService {
	return &ChatService{
		store:     s,
		providers: p,
	}
}

// Chat answers req. user is nil for anonymous requests, in which case
// nothing is persisted. Provider failures never surface as errors; the
// caller receives FallbackReply instead.
func (s *ChatService) Chat(ctx context.Context, user *models.User, req models.ChatRequest) (*models.ChatResponse, error) {
	message := strings.TrimSpace(req.Message)
	if message == "" {
		return nil, fmt.Errorf("%w: message is required", ErrValidation)
	}
	language := strings.TrimSpace(req.Language)
	if language == "" {
		language = DefaultLanguage
	}
	level := strings.TrimSpace(req.UserLevel)
	if level == "" {
		level = DefaultUserLevel
	}

	resp := &models.ChatResponse{
		Language:  language,
		UserLevel: level,
	}

	var conv *models.Conversation
	if user != nil {
		resp.User = &models.ChatUser{ID: user.ID, Email: user.Email, Name: user.Name}
		conv = s.resolveConversation(ctx, user, req.ConversationID, language)
		if conv != nil {
			resp.ConversationID = &conv.ID
			s.record(ctx, conv.ID, models.SenderUser, message)
		}
	}

	turns := make([]providers.Turn, 0, len(req.History)+1)
	for _, h := range req.History {
		text := h.Text()
		if text == "" {
			continue
		}
		turns = append(turns, providers.Turn{Role: providers.NormalizeRole(h.Role), Text: text})
	}
	turns = append(turns, providers.Turn{Role: providers.RoleUser, Text: message})

	resp.Response, resp.Provider = s.reply(ctx, turns, language, level)

	if conv != nil {
		// The reply is stored even if the request was cancelled while waiting on the provider.
		persistCtx := context.WithoutCancel(ctx)
		s.record(persistCtx, conv.ID, models.SenderAI, resp.Response)
		if err := s.store.TouchConversation(persistCtx, conv.ID); err != nil {
			log.Printf("ERROR [ChatService] Touching conversation %s: %v", conv.ID, err)
		}
	}
	return resp, nil
}

// reply makes exactly one provider call.
func (s *ChatService) reply(ctx context.Context, turns []providers.Turn, language, level string) (string, string) {
	p, ok := s.providers.Select()
	if !ok {
		log.Printf("WARN [ChatService] No AI provider configured, using fallback reply")
		return FallbackReply, providers.NameFallback
	}

	start := time.Now()
	text, err := p.Reply(ctx, turns, language, level)
	if err != nil {
		log.Printf("ERROR [ChatService] Provider %s failed after %v: %v", p.Name(), time.Since(start), err)
		return FallbackReply, providers.NameFallback
	}
	log.Printf("[ChatService] Provider %s replied in %v (%d chars)", p.Name(), time.Since(start), len(text))
	return text, p.Name()
}

// resolveConversation returns the caller's conversation for id, or starts a
// new one when id is absent, unknown or owned by someone else. It returns nil
// only if the store fails.
func (s *ChatService) resolveConversation(ctx context.Context, user *models.User, id *uuid.UUID, language string) *models.Conversation {
	if id != nil && *id != uuid.Nil {
		conv, err := s.store.GetConversationByID(ctx, *id)
		switch {
		case err == nil && conv.UserID == user.ID:
			return conv
		case err == nil:
			log.Printf("WARN [ChatService] User %s referenced conversation %s owned by another user; starting a new one", user.ID, *id)
		case errors.Is(err, store.ErrNotFound):
			log.Printf("WARN [ChatService] Conversation %s not found; starting a new one", *id)
		default:
			log.Printf("ERROR [ChatService] Loading conversation %s: %v", *id, err)
		}
	}

	now := time.Now().UTC()
	conv := &models.Conversation{
		ID:        uuid.New(),
		UserID:    user.ID,
		Language:  language,
		Title:     store.DefaultConversationTitle(language),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.store.CreateConversation(ctx, conv); err != nil {
		log.Printf("ERROR [ChatService] Creating conversation for user %s: %v", user.ID, err)
		return nil
	}
	log.Printf("[ChatService] Started conversation %s for user %s", conv.ID, user.ID)
	return conv
}

func (s *ChatService) record(ctx context.Context, conversationID uuid.UUID, sender, content string) {
	msg := &models.Message{
		ID:             uuid.New(),
		ConversationID: conversationID,
		Sender:         sender,
		Content:        content,
	}
	if err := s.store.AppendMessage(ctx, msg); err != nil {
		log.Printf("ERROR [ChatService] Saving %s message to conversation %s: %v", sender, conversationID, err)
	}
}
