package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"langbot-backend/internal/auth"
	api_models "langbot-backend/internal/models"
	db_models "langbot-backend/internal/models"
	"langbot-backend/internal/services"
	"langbot-backend/pkg/httputil"
)

// AuthService defines the interface expected from the auth service.
type AuthService interface {
	Signup(ctx context.Context, email, password, name string) (string, *db_models.User, error)
	Login(ctx context.Context, email, password string) (string, *db_models.User, error)
}

type AuthHandler struct {
	authService AuthService
}

func NewAuthHandler(authSvc AuthService) *AuthHandler {
	return &AuthHandler{
		authService: authSvc,
	}
}

// HandleSignup handles the POST /auth/signup request.
func (h *AuthHandler) HandleSignup(w http.ResponseWriter, r *http.Request) {
	var req api_models.SignupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}
	defer r.Body.Close()

	if req.Email == "" || req.Password == "" {
		httputil.RespondError(w, http.StatusBadRequest, "Email and password are required")
		return
	}

	token, user, err := h.authService.Signup(r.Context(), req.Email, req.Password, req.Name)
	if err != nil {
		log.Printf("Signup handler failed for email %s: %v", req.Email, err)
		switch {
		case errors.Is(err, services.ErrUserAlreadyExists):
			httputil.RespondError(w, http.StatusConflict, err.Error()) // 409
		case errors.Is(err, services.ErrValidation):
			httputil.RespondError(w, http.StatusBadRequest, err.Error()) // 400
		default:
			httputil.RespondError(w, http.StatusInternalServerError, "Signup failed due to an internal error") // 500
		}
		return
	}

	resp := api_models.AuthResponse{
		Token: token,
		User:  api_models.NewUserResponse(user),
	}
	httputil.RespondJSON(w, http.StatusCreated, resp) // 201 Created
}

// HandleLogin handles the POST /auth/login request.
func (h *AuthHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var req api_models.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}
	defer r.Body.Close()

	if req.Email == "" || req.Password == "" {
		httputil.RespondError(w, http.StatusBadRequest, "Email and password are required")
		return
	}

	token, user, err := h.authService.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		log.Printf("Login handler failed for email %s: %v", req.Email, err)
		switch {
		case errors.Is(err, services.ErrInvalidCredentials):
			httputil.RespondError(w, http.StatusUnauthorized, err.Error()) // 401
		case errors.Is(err, services.ErrValidation):
			httputil.RespondError(w, http.StatusBadRequest, err.Error()) // 400
		default:
			httputil.RespondError(w, http.StatusInternalServerError, "Login failed due to an internal error") // 500
		}
		return
	}

	resp := api_models.AuthResponse{
		Token: token,
		User:  api_models.NewUserResponse(user),
	}
	httputil.RespondJSON(w, http.StatusOK, resp) // 200 OK
}

// HandleVerify handles GET /auth/verify. The auth middleware has already
// loaded the user from the store.
func (h *AuthHandler) HandleVerify(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.GetUserFromContext(r.Context())
	if !ok {
		httputil.RespondError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}
	httputil.RespondJSON(w, http.StatusOK, api_models.VerifyResponse{User: api_models.NewUserResponse(user)})
}
