package auth

import (
	"log"
	"regexp"
	"unicode/utf8"

	"golang.org/x/crypto/bcrypt"
)

// PasswordCost is the bcrypt work factor used for every stored password.
const PasswordCost = 12

// MinPasswordLength is the shortest password accepted at signup.
const MinPasswordLength = 6

// MaxPasswordBytes is bcrypt's input limit.
const MaxPasswordBytes = 72

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// HashPassword generates a bcrypt hash for the given password.
func HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), PasswordCost)
	if err != nil {
		log.Printf("Error generating bcrypt hash: %v", err)
		return "", err
	}
	return string(bytes), nil
}

// CheckPasswordHash compares a plaintext password with a stored bcrypt hash.
func CheckPasswordHash(password, hash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	if err != nil {
		if err != bcrypt.ErrMismatchedHashAndPassword {
			// Log unexpected errors, but still return false for security
			log.Printf("Error comparing password hash: %v", err)
		}
		return false
	}
	return true
}

// IsValidEmail reports whether email looks like local@domain.tld.
func IsValidEmail(email string) bool {
	return emailPattern.MatchString(email)
}

// IsValidPassword requires at least MinPasswordLength characters and at
// most MaxPasswordBytes bytes.
func IsValidPassword(password string) bool {
	return utf8.RuneCountInString(password) >= MinPasswordLength && len(password) <= MaxPasswordBytes
}
