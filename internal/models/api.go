package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// --- Request Structs ---

// SignupRequest defines the expected body for the signup endpoint.
type SignupRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name,omitempty"`
}

// LoginRequest defines the expected body for the login endpoint.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// --- Response Structs ---

// UserResponse defines the user information returned by the API.
// Avoid returning sensitive info like HashedPassword.
type UserResponse struct {
	ID                uuid.UUID `json:"id"`
	Email             string    `json:"email"`
	Name              string    `json:"name"`
	PreferredLanguage string    `json:"preferred_language"`
}

// NewUserResponse maps a stored user onto its public representation.
func NewUserResponse(u *User) UserResponse {
	return UserResponse{
		ID:                u.ID,
		Email:             u.Email,
		Name:              u.Name,
		PreferredLanguage: u.PreferredLanguage,
	}
}

// AuthResponse defines the response body for successful authentication.
type AuthResponse struct {
	Token string       `json:"token"`
	User  UserResponse `json:"user"`
}

// VerifyResponse is returned by the token verification endpoint.
type VerifyResponse struct {
	User UserResponse `json:"user"`
}

// ErrorResponse defines the standard structure for API errors.
type ErrorResponse struct {
	Error string `json:"error"`
}

// --- Chat DTOs ---

// HistoryPart is one text fragment of a Gemini-style history entry.
type HistoryPart struct {
	Text string `json:"text"`
}

// HistoryTurn is one entry of the rolling history the client sends back.
// The browser mirrors Gemini's {role, parts:[{text}]} shape; plain
// {role, content} entries are accepted as well.
type HistoryTurn struct {
	Role    string        `json:"role"`
	Content string        `json:"content,omitempty"`
	Parts   []HistoryPart `json:"parts,omitempty"`
}

// Text returns the first part's text, falling back to Content.
func (t HistoryTurn) Text() string {
	if len(t.Parts) > 0 && t.Parts[0].Text != "" {
		return t.Parts[0].Text
	}
	return t.Content
}

// ChatRequest defines the payload for a single tutoring turn.
type ChatRequest struct {
	Message        string        `json:"message"`
	History        []HistoryTurn `json:"history"`
	Language       string        `json:"language"`
	UserLevel      string        `json:"userLevel"`
	ConversationID *uuid.UUID    `json:"conversationId,omitempty"`
}

// ChatUser is the trimmed identity echoed back on authenticated chat turns.
type ChatUser struct {
	ID    uuid.UUID `json:"id"`
	Email string    `json:"email"`
	Name  string    `json:"name"`
}

// ChatResponse is returned for every parsed chat request, including
// provider failures.
type ChatResponse struct {
	Response       string     `json:"response"`
	Provider       string     `json:"provider"`
	Language       string     `json:"language"`
	UserLevel      string     `json:"userLevel"`
	ConversationID *uuid.UUID `json:"conversationId"`
	User           *ChatUser  `json:"user"`
}

// --- Conversation DTOs ---

// ConversationResponse defines the representation of a conversation.
type ConversationResponse struct {
	ID        uuid.UUID `json:"id"`
	UserID    uuid.UUID `json:"user_id"`
	Language  string    `json:"language"`
	Title     string    `json:"title"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ListConversationsResponse defines the response structure for listing conversations.
type ListConversationsResponse struct {
	Conversations []ConversationResponse `json:"conversations"`
}

// MessageResponse defines the representation of one stored message.
type MessageResponse struct {
	ID             uuid.UUID `json:"id"`
	ConversationID uuid.UUID `json:"conversation_id"`
	Sender         string    `json:"sender"`
	Content        string    `json:"content"`
	Timestamp      time.Time `json:"timestamp"`
}

// ListMessagesResponse defines the response structure for a conversation's messages.
type ListMessagesResponse struct {
	Messages []MessageResponse `json:"messages"`
}

type rawHistoryTurn HistoryTurn

// UnmarshalJSON accepts history entries whose role is missing by treating
// them as user turns.
func (t *HistoryTurn) UnmarshalJSON(data []byte) error {
	var raw rawHistoryTurn
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*t = HistoryTurn(raw)
	if t.Role == "" {
		t.Role = "user"
	}
	return nil
}
