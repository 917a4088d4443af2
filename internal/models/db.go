package models

import (
	"time"

	"github.com/google/uuid"
)

// Sender tags for a stored message.
const (
	SenderUser = "user"
	SenderAI   = "ai"
)

// DefaultPreferredLanguage is assigned to every new account.
const DefaultPreferredLanguage = "en"

// User represents a user in the database.
type User struct {
	ID                uuid.UUID `db:"id" gorm:"type:text;primaryKey"`
	Email             string    `db:"email" gorm:"uniqueIndex;not null"`
	HashedPassword    string    `db:"hashed_password" gorm:"column:hashed_password;not null"`
	Name              string    `db:"name"`
	PreferredLanguage string    `db:"preferred_language" gorm:"default:en"`
	CreatedAt         time.Time `db:"created_at"`
	UpdatedAt         time.Time `db:"updated_at"`
}

func (User) TableName() string { return "users" }

// Conversation is a tutoring session owned by exactly one user.
type Conversation struct {
	ID        uuid.UUID `db:"id" gorm:"type:text;primaryKey"`
	UserID    uuid.UUID `db:"user_id" gorm:"type:text;index;not null"`
	Language  string    `db:"language" gorm:"not null"`
	Title     string    `db:"title"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at" gorm:"index"`
}

func (Conversation) TableName() string { return "conversations" }

// Message is a single append-only turn inside a conversation.
type Message struct {
	ID             uuid.UUID `db:"id" gorm:"type:text;primaryKey"`
	ConversationID uuid.UUID `db:"conversation_id" gorm:"type:text;index;not null"`
	Sender         string    `db:"sender" gorm:"not null"`
	Content        string    `db:"content" gorm:"type:text;not null"`
	Timestamp      time.Time `db:"timestamp" gorm:"index;not null"`
}

func (Message) TableName() string { return "messages" }
