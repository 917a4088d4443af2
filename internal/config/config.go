package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds application configuration values loaded from environment variables.
type Config struct {
	HTTPPort        string
	JWTSecret       string
	TokenExpiration time.Duration

	// DatabaseURL selects PostgreSQL when set; otherwise DatabasePath is
	// used as a single-file SQLite database.
	DatabaseURL  string
	DatabasePath string

	AIProvider      string
	GeminiAPIKey    string
	GeminiModelName string
	OpenAIAPIKey    string
	AnthropicAPIKey string

	CORSAllowedOrigins []string
}

const defaultJWTSecret = "your-secret-key-change-in-production"

// LoadConfig loads configuration from environment variables.
// It looks for a .env file first, then checks actual environment variables.
func LoadConfig() (*Config, error) {
	// Attempt to load .env file (useful for development)
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: Could not load .env file. Using environment variables only.", err)
	}
	return FromEnv(), nil
}

// FromEnv builds a Config from the current process environment.
func FromEnv() *Config {
	jwtSecret := getEnv("JWT_SECRET", defaultJWTSecret)
	if jwtSecret == defaultJWTSecret {
		log.Println("WARN: JWT_SECRET is not set, using the development default. CHANGE THIS IN PRODUCTION!")
	}

	tokenExpStr := getEnv("JWT_EXPIRATION_HOURS", "168") // 7 days
	tokenExpHours, err := strconv.Atoi(tokenExpStr)
	if err != nil || tokenExpHours <= 0 {
		log.Printf("Warning: Invalid JWT_EXPIRATION_HOURS '%s', using default 168h. Error: %v", tokenExpStr, err)
		tokenExpHours = 168
	}

	cfg := &Config{
		HTTPPort:           getEnv("HTTP_PORT", "8080"),
		JWTSecret:          jwtSecret,
		TokenExpiration:    time.Hour * time.Duration(tokenExpHours),
		DatabaseURL:        getSecret("DATABASE_URL"),
		DatabasePath:       getEnv("DATABASE_PATH", "./data/langbot.db"),
		AIProvider:         strings.ToLower(getEnv("AI_PROVIDER", "gemini")),
		GeminiAPIKey:       getSecret("GEMINI_API_KEY"),
		GeminiModelName:    getEnv("GEMINI_MODEL_NAME", "gemini-2.0-flash-exp"),
		OpenAIAPIKey:       getSecret("OPENAI_API_KEY"),
		AnthropicAPIKey:    getSecret("ANTHROPIC_API_KEY"),
		CORSAllowedOrigins: splitList(getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:3000,http://localhost:8080")),
	}

	log.Printf("Loaded config: Port=%s, DB=%s, TokenExp=%s, AIProvider=%s, Keys(gemini=%t openai=%t anthropic=%t)",
		cfg.HTTPPort, cfg.storageLabel(), cfg.TokenExpiration, cfg.AIProvider,
		cfg.GeminiAPIKey != "", cfg.OpenAIAPIKey != "", cfg.AnthropicAPIKey != "")

	return cfg
}

func (c *Config) storageLabel() string {
	if c.DatabaseURL != "" {
		return "postgres(***)"
	}
	return "sqlite(" + c.DatabasePath + ")"
}

// getEnv retrieves an environment variable or returns a default value.
func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists && value != "" {
		return value
	}
	log.Printf("Env variable %s not set, using default: %s", key, fallback)
	return fallback
}

// getSecret reads an optional secret without logging its value.
func getSecret(key string) string {
	return strings.TrimSpace(os.Getenv(key))
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
