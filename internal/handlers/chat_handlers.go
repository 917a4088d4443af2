package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"langbot-backend/internal/auth"
	"langbot-backend/internal/models"
	"langbot-backend/internal/services"
	"langbot-backend/pkg/httputil"
)

// ChatService defines the interface expected from the chat orchestrator.
type ChatService interface {
	Chat(ctx context.Context, user *models.User, req models.ChatRequest) (*models.ChatResponse, error)
}

// ChatHandlers handles HTTP requests for tutoring turns.
type ChatHandlers struct {
	chatService ChatService
}

// NewChatHandlers creates a new ChatHandlers instance.
func NewChatHandlers(chatService ChatService) *ChatHandlers {
	return &ChatHandlers{
		chatService: chatService,
	}
}

// HandleChat handles POST /chat. Authentication is optional; provider
// failures still produce a 200 with the fallback reply.
func (h *ChatHandlers) HandleChat(w http.ResponseWriter, r *http.Request) {
	var req models.ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	defer r.Body.Close()

	user, _ := auth.GetUserFromContext(r.Context())

	resp, err := h.chatService.Chat(r.Context(), user, req)
	if err != nil {
		if errors.Is(err, services.ErrValidation) {
			httputil.RespondError(w, http.StatusBadRequest, "Message is required")
			return
		}
		log.Printf("ERROR [ChatHandlers] Chat failed: %v", err)
		httputil.RespondError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	httputil.RespondJSON(w, http.StatusOK, resp)
}
