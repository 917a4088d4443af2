package api

import (
	"context"
	"errors"
	"log"
	"net/http"
	"strings"

	"langbot-backend/internal/auth"
	"langbot-backend/internal/models"
	"langbot-backend/internal/services"
	"langbot-backend/pkg/httputil"

	"github.com/golang-jwt/jwt/v5"
)

// TokenVerifier resolves a bearer token to the stored user it names.
type TokenVerifier interface {
	VerifyToken(ctx context.Context, token string) (*models.User, error)
}

// bearerToken extracts the token from an "Authorization: Bearer <token>"
// header. It returns "" and false when the header is absent.
func bearerToken(r *http.Request) (string, bool, error) {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return "", false, nil
	}
	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" || parts[1] == "" {
		return "", true, errors.New("malformed Authorization header")
	}
	return parts[1], true, nil
}

// --- JWT Middleware ---

// JwtAuthMiddleware verifies the bearer token and loads the user from the
// store. If valid, the user is injected into the request context.
func JwtAuthMiddleware(verifier TokenVerifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tokenString, present, err := bearerToken(r)
			if !present {
				log.Println("Auth Middleware: Missing Authorization header")
				httputil.RespondError(w, http.StatusUnauthorized, "Authorization header required")
				return
			}
			if err != nil {
				log.Printf("Auth Middleware: %v", err)
				httputil.RespondError(w, http.StatusUnauthorized, "Malformed Authorization header (Expected: Bearer <token>)")
				return
			}

			user, err := verifier.VerifyToken(r.Context(), tokenString)
			if err != nil {
				log.Printf("Auth Middleware: Token rejected: %v", err)
				respondAuthError(w, err)
				return
			}

			next.ServeHTTP(w, r.WithContext(auth.WithUser(r.Context(), user)))
		})
	}
}

// OptionalJwtAuthMiddleware attaches the user when a valid bearer token is
// supplied and otherwise lets the request through anonymously.
func OptionalJwtAuthMiddleware(verifier TokenVerifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tokenString, present, err := bearerToken(r)
			if !present || err != nil {
				next.ServeHTTP(w, r)
				return
			}

			user, err := verifier.VerifyToken(r.Context(), tokenString)
			if err != nil {
				log.Printf("Auth Middleware: Ignoring invalid token on optional route: %v", err)
				next.ServeHTTP(w, r)
				return
			}

			next.ServeHTTP(w, r.WithContext(auth.WithUser(r.Context(), user)))
		})
	}
}

func respondAuthError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		httputil.RespondError(w, http.StatusUnauthorized, "Token has expired")
	case errors.Is(err, jwt.ErrTokenMalformed):
		httputil.RespondError(w, http.StatusUnauthorized, "Malformed token")
	case errors.Is(err, services.ErrUserNotFound):
		httputil.RespondError(w, http.StatusUnauthorized, "User not found")
	case errors.Is(err, auth.ErrInvalidToken):
		httputil.RespondError(w, http.StatusUnauthorized, "Invalid token")
	default:
		log.Printf("ERROR Auth Middleware: verifying token: %v", err)
		httputil.RespondError(w, http.StatusInternalServerError, "Internal server error")
	}
}
