package auth

import (
	"context"

	"langbot-backend/internal/models"
)

// contextKey is a custom type used for context keys to avoid collisions.
type contextKey string

const userKey contextKey = "user"

// --- Context Helper Functions ---

// WithUser returns a copy of ctx carrying the authenticated user.
func WithUser(ctx context.Context, user *models.User) context.Context {
	return context.WithValue(ctx, userKey, user)
}

// GetUserFromContext retrieves the authenticated user from the request context.
// Returns nil and false for anonymous requests.
func GetUserFromContext(ctx context.Context) (*models.User, bool) {
	user, ok := ctx.Value(userKey).(*models.User)
	return user, ok && user != nil
}
