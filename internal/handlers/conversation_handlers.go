package handlers

import (
	"context"
	"errors"
	"log"
	"net/http"

	"langbot-backend/internal/auth"
	"langbot-backend/internal/models"
	"langbot-backend/internal/store"
	"langbot-backend/pkg/httputil"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

// ConversationService defines the interface expected from the conversation service.
type ConversationService interface {
	ListConversations(ctx context.Context, userID uuid.UUID) (*models.ListConversationsResponse, error)
	GetMessages(ctx context.Context, userID, conversationID uuid.UUID) (*models.ListMessagesResponse, error)
}

// ConversationHandlers serves a user's conversation history.
type ConversationHandlers struct {
	conversationService ConversationService
}

func NewConversationHandlers(svc ConversationService) *ConversationHandlers {
	return &ConversationHandlers{conversationService: svc}
}

// HandleListConversations handles GET /conversations.
func (h *ConversationHandlers) HandleListConversations(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.GetUserFromContext(r.Context())
	if !ok {
		httputil.RespondError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	resp, err := h.conversationService.ListConversations(r.Context(), user.ID)
	if err != nil {
		log.Printf("ERROR [ConversationHandlers] Listing conversations for user %s: %v", user.ID, err)
		httputil.RespondError(w, http.StatusInternalServerError, "Failed to list conversations")
		return
	}
	httputil.RespondJSON(w, http.StatusOK, resp)
}

// HandleGetMessages handles GET /conversations/{conversationID}.
func (h *ConversationHandlers) HandleGetMessages(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.GetUserFromContext(r.Context())
	if !ok {
		httputil.RespondError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	conversationID, err := uuid.Parse(chi.URLParam(r, "conversationID"))
	if err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "Invalid conversation ID")
		return
	}

	resp, err := h.conversationService.GetMessages(r.Context(), user.ID, conversationID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			httputil.RespondError(w, http.StatusNotFound, "Conversation not found")
			return
		}
		log.Printf("ERROR [ConversationHandlers] Loading messages for conversation %s: %v", conversationID, err)
		httputil.RespondError(w, http.StatusInternalServerError, "Failed to get messages")
		return
	}
	httputil.RespondJSON(w, http.StatusOK, resp)
}
