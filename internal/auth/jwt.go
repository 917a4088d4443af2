package auth

import (
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// DefaultTokenExpiration is how long an issued access token stays valid.
const DefaultTokenExpiration = 7 * 24 * time.Hour

const issuer = "langbot-backend"

// ErrInvalidToken is returned for any token that fails verification:
// expired, bad signature, unexpected algorithm or malformed input.
var ErrInvalidToken = errors.New("invalid token")

// --- JWT Claims ---

// CustomClaims includes standard JWT claims plus the user's profile snapshot.
// Only UserID is trusted on the way back in; the rest is informational.
type CustomClaims struct {
	UserID            uuid.UUID `json:"user_id"`
	Email             string    `json:"email"`
	Name              string    `json:"name,omitempty"`
	PreferredLanguage string    `json:"preferred_language,omitempty"`
	jwt.RegisteredClaims
}

// NewAccessToken generates a new HS256 JWT access token.
func NewAccessToken(userID uuid.UUID, email, name, preferredLanguage, jwtSecret string, expiration time.Duration) (string, error) {
	now := time.Now()
	claims := CustomClaims{
		UserID:            userID,
		Email:             email,
		Name:              name,
		PreferredLanguage: preferredLanguage,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(expiration)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			Issuer:    issuer,
			Subject:   userID.String(),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	signedToken, err := token.SignedString([]byte(jwtSecret))
	if err != nil {
		log.Printf("Error signing JWT token for UserID %s: %v", userID, err)
		return "", err
	}

	return signedToken, nil
}

// ParseAccessToken verifies tokenString and returns its claims. Every
// failure is reported as ErrInvalidToken wrapping the cause, so callers can
// still tell expiry apart with errors.Is(err, jwt.ErrTokenExpired).
func ParseAccessToken(tokenString, jwtSecret string, opts ...jwt.ParserOption) (*CustomClaims, error) {
	if tokenString == "" {
		return nil, fmt.Errorf("%w: empty token", ErrInvalidToken)
	}

	claims := &CustomClaims{}
	opts = append([]jwt.ParserOption{jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()})}, opts...)
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(jwtSecret), nil
	}, opts...)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}
	if !token.Valid {
		return nil, ErrInvalidToken
	}
	if claims.UserID == uuid.Nil {
		return nil, fmt.Errorf("%w: missing user id", ErrInvalidToken)
	}
	return claims, nil
}
