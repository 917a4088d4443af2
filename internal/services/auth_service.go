package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"langbot-backend/internal/auth"
	"langbot-backend/internal/config"
	"langbot-backend/internal/models"
	"langbot-backend/internal/store"

	"github.com/google/uuid"
)

// Custom errors for auth service
var (
	ErrUserAlreadyExists  = errors.New("user with this email already exists")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrUserNotFound       = errors.New("user not found")
	ErrHashingPassword    = errors.New("failed to hash password")
	ErrCreatingToken      = errors.New("failed to create access token")
	ErrCreatingUser       = errors.New("failed to create user")
	ErrValidation         = errors.New("input validation failed")
)

type AuthService struct {
	store store.Store
	cfg   *config.Config
}

func NewAuthService(s store.Store, cfg *config.Config) *AuthService {
	return &AuthService{
		store: s,
		cfg:   cfg,
	}
}

func normalizeEmail(email string) string {
	return strings.TrimSpace(strings.ToLower(email))
}

// Signup registers a new user and returns an access token for them.
func (s *AuthService) Signup(ctx context.Context, email, password, name string) (string, *models.User, error) {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return "", nil, fmt.Errorf("%w: email and password are required", ErrValidation)
	}
	if !auth.IsValidEmail(email) {
		return "", nil, fmt.Errorf("%w: invalid email format", ErrValidation)
	}
	if !auth.IsValidPassword(password) {
		return "", nil, fmt.Errorf("%w: password must be at least %d characters and at most %d bytes", ErrValidation, auth.MinPasswordLength, auth.MaxPasswordBytes)
	}

	_, err := s.store.GetUserByEmail(ctx, email)
	if err == nil {
		return "", nil, ErrUserAlreadyExists
	}
	if !errors.Is(err, store.ErrNotFound) {
		log.Printf("ERROR [AuthService] Checking user existence for %s: %v", email, err)
		return "", nil, fmt.Errorf("failed to check user existence: %w", err)
	}

	hashedPassword, err := auth.HashPassword(password)
	if err != nil {
		log.Printf("ERROR [AuthService] Hashing password for %s: %v", email, err)
		return "", nil, ErrHashingPassword
	}

	now := time.Now().UTC()
	user := &models.User{
		ID:                uuid.New(),
		Email:             email,
		HashedPassword:    hashedPassword,
		Name:              strings.TrimSpace(name),
		PreferredLanguage: models.DefaultPreferredLanguage,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	if err := s.store.CreateUser(ctx, user); err != nil {
		// Lost a race with a concurrent signup for the same address.
		if errors.Is(err, store.ErrDuplicateEmail) {
			return "", nil, ErrUserAlreadyExists
		}
		log.Printf("ERROR [AuthService] Creating user %s: %v", email, err)
		return "", nil, fmt.Errorf("%w: %v", ErrCreatingUser, err)
	}

	token, err := s.issueToken(user)
	if err != nil {
		return "", nil, err
	}

	log.Printf("[AuthService] Signed up user %s (ID: %s)", email, user.ID)
	return token, user, nil
}

// Login verifies user credentials and returns an access token and user info.
func (s *AuthService) Login(ctx context.Context, email, password string) (string, *models.User, error) {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return "", nil, fmt.Errorf("%w: email and password are required", ErrValidation)
	}
	if !auth.IsValidEmail(email) {
		return "", nil, fmt.Errorf("%w: invalid email format", ErrValidation)
	}

	user, err := s.store.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return "", nil, ErrInvalidCredentials
		}
		log.Printf("ERROR [AuthService] Retrieving user %s during login: %v", email, err)
		return "", nil, fmt.Errorf("failed to retrieve user: %w", err)
	}

	if !auth.CheckPasswordHash(password, user.HashedPassword) {
		return "", nil, ErrInvalidCredentials
	}

	token, err := s.issueToken(user)
	if err != nil {
		return "", nil, err
	}

	log.Printf("[AuthService] Logged in user %s (ID: %s)", email, user.ID)
	return token, user, nil
}

// VerifyToken validates a bearer token and loads its user from the store.
// Only the user id is taken from the token.
func (s *AuthService) VerifyToken(ctx context.Context, token string) (*models.User, error) {
	claims, err := auth.ParseAccessToken(token, s.cfg.JWTSecret)
	if err != nil {
		return nil, err
	}

	user, err := s.store.GetUserByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		log.Printf("ERROR [AuthService] Loading user %s for token: %v", claims.UserID, err)
		return nil, fmt.Errorf("failed to load user: %w", err)
	}
	return user, nil
}

func (s *AuthService) issueToken(user *models.User) (string, error) {
	token, err := auth.NewAccessToken(user.ID, user.Email, user.Name, user.PreferredLanguage, s.cfg.JWTSecret, s.cfg.TokenExpiration)
	if err != nil {
		log.Printf("ERROR [AuthService] Generating JWT for user %s: %v", user.ID, err)
		return "", ErrCreatingToken
	}
	return token, nil
}
