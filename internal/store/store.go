package store

import (
	"context"
	"errors"
	"unicode"

	"langbot-backend/internal/models"

	"github.com/google/uuid"
)

var (
	// ErrNotFound is returned when a specific record is not found.
	ErrNotFound = errors.New("record not found")
	// ErrDuplicateEmail is returned when the unique email constraint rejects an insert.
	ErrDuplicateEmail = errors.New("email already registered")
)

// Store defines the interface for database operations.
// Implementations own their connection and release it on Close.
type Store interface {
	// User operations
	CreateUser(ctx context.Context, user *models.User) error
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	GetUserByID(ctx context.Context, id uuid.UUID) (*models.User, error)

	// Conversation operations
	CreateConversation(ctx context.Context, conv *models.Conversation) error
	GetConversationByID(ctx context.Context, id uuid.UUID) (*models.Conversation, error)
	ListConversationsByUser(ctx context.Context, userID uuid.UUID) ([]models.Conversation, error)
	TouchConversation(ctx context.Context, id uuid.UUID) error

	// Message operations
	AppendMessage(ctx context.Context, msg *models.Message) error
	ListMessagesByConversation(ctx context.Context, conversationID uuid.UUID) ([]models.Message, error)

	Close() error
}

// DefaultConversationTitle is used when a conversation is created without one.
func DefaultConversationTitle(language string) string {
	if language == "" {
		return "Chat"
	}
	r := []rune(language)
	r[0] = unicode.ToUpper(r[0])
	return string(r) + " Chat"
}
