package services

import (
	"context"
	"errors"
	"fmt"

	"langbot-backend/internal/models"
	"langbot-backend/internal/store"

	"github.com/google/uuid"
)

// ConversationService exposes a user's stored conversations.
type ConversationService struct {
	store store.Store
}

func NewConversationService(s store.Store) *ConversationService {
	return &ConversationService{store: s}
}

func toConversationResponse(c *models.Conversation) models.ConversationResponse {
	return models.ConversationResponse{
		ID:        c.ID,
		UserID:    c.UserID,
		Language:  c.Language,
		Title:     c.Title,
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}
}

// ListConversations returns the user's conversations, most recently active first.
func (s *ConversationService) ListConversations(ctx context.Context, userID uuid.UUID) (*models.ListConversationsResponse, error) {
	convs, err := s.store.ListConversationsByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list conversations: %w", err)
	}

	resp := &models.ListConversationsResponse{
		Conversations: make([]models.ConversationResponse, 0, len(convs)),
	}
	for i := range convs {
		resp.Conversations = append(resp.Conversations, toConversationResponse(&convs[i]))
	}
	return resp, nil
}

// GetMessages returns a conversation's messages in chronological order.
// A conversation owned by someone else is reported as store.ErrNotFound.
func (s *ConversationService) GetMessages(ctx context.Context, userID, conversationID uuid.UUID) (*models.ListMessagesResponse, error) {
	conv, err := s.store.GetConversationByID(ctx, conversationID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to get conversation: %w", err)
	}
	if conv.UserID != userID {
		return nil, store.ErrNotFound
	}

	msgs, err := s.store.ListMessagesByConversation(ctx, conversationID)
	if err != nil {
		return nil, fmt.Errorf("failed to list messages: %w", err)
	}

	resp := &models.ListMessagesResponse{
		Messages: make([]models.MessageResponse, 0, len(msgs)),
	}
	for _, m := range msgs {
		resp.Messages = append(resp.Messages, models.MessageResponse{
			ID:             m.ID,
			ConversationID: m.ConversationID,
			Sender:         m.Sender,
			Content:        m.Content,
			Timestamp:      m.Timestamp,
		})
	}
	return resp, nil
}
