package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	ProviderGemini = "gemini"
	ProviderGroq   = "groq"
)

// Config holds the configuration for the application.
type Config struct {
	AppEnv string
	Port   string

	// LLM Config
	LLMProvider  string
	GeminiAPIKey string
	GeminiModel  string
	GroqAPIKey   string
	GroqModel    string
	LLMTimeout   time.Duration

	// Web Config
	SessionSecret  string
	DownloadSecret string
	SessionTTL     time.Duration
	MaxSessions    int
	AssetDir       string

	// Usage store; empty disables it
	DatabasePath string

	// Telegram Config
	TelegramBotToken       string
	TelegramWebhookURL     string
	TelegramAllowedUserIDs []int64
}

// IsProduction reports whether cookies and logs should be set up for production.
func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}

// TelegramEnabled reports whether the Telegram front-end should be started.
func (c *Config) TelegramEnabled() bool {
	return c.TelegramBotToken != ""
}

// LoadEnv reads a .env file into the environment if one exists.
func LoadEnv() {
	// A missing .env is fine, the environment may already be populated.
	_ = godotenv.Load()
}

// Load reads a .env file if one exists and then builds the Config from the environment.
func Load() (*Config, error) {
	LoadEnv()
	return NewFromEnv()
}

// NewFromEnv creates a new Config object from environment variables.
func NewFromEnv() (*Config, error) {
	provider := strings.ToLower(getEnv("LLM_PROVIDER", ProviderGemini))

	geminiAPIKey := os.Getenv("GEMINI_API_KEY")
	groqAPIKey := os.Getenv("GROQ_API_KEY")

	switch provider {
	case ProviderGemini:
		if geminiAPIKey == "" {
			return nil, fmt.Errorf("GEMINI_API_KEY environment variable not set")
		}
	case ProviderGroq:
		if groqAPIKey == "" {
			return nil, fmt.Errorf("GROQ_API_KEY environment variable not set")
		}
	default:
		return nil, fmt.Errorf("unsupported LLM_PROVIDER %q", provider)
	}

	sessionSecret := os.Getenv("SESSION_SECRET")
	if sessionSecret == "" {
		return nil, fmt.Errorf("SESSION_SECRET environment variable not set")
	}

	downloadSecret := os.Getenv("DOWNLOAD_SECRET")
	if downloadSecret == "" {
		// Fallback to the session secret if only one is provided
		downloadSecret = sessionSecret
	}

	timeoutSeconds, err := getEnvInt("LLM_TIMEOUT_SECONDS", 60)
	if err != nil {
		return nil, err
	}
	ttlMinutes, err := getEnvInt("SESSION_TTL_MINUTES", 60)
	if err != nil {
		return nil, err
	}
	maxSessions, err := getEnvInt("MAX_SESSIONS", 1000)
	if err != nil {
		return nil, err
	}

	allowedIDs, err := parseIDList(os.Getenv("TELEGRAM_ALLOWED_USER_IDS"))
	if err != nil {
		return nil, fmt.Errorf("invalid TELEGRAM_ALLOWED_USER_IDS: %w", err)
	}

	return &Config{
		AppEnv:                 getEnv("APP_ENV", "development"),
		Port:                   getEnv("PORT", "8080"),
		LLMProvider:            provider,
		GeminiAPIKey:           geminiAPIKey,
		GeminiModel:            getEnv("GEMINI_MODEL", "gemini-2.0-flash"),
		GroqAPIKey:             groqAPIKey,
		GroqModel:              getEnv("GROQ_MODEL", "llama-3.3-70b-versatile"),
		LLMTimeout:             time.Duration(timeoutSeconds) * time.Second,
		SessionSecret:          sessionSecret,
		DownloadSecret:         downloadSecret,
		SessionTTL:             time.Duration(ttlMinutes) * time.Minute,
		MaxSessions:            maxSessions,
		AssetDir:               getEnv("ASSET_DIR", "."),
		DatabasePath:           os.Getenv("DATABASE_PATH"),
		TelegramBotToken:       os.Getenv("TELEGRAM_BOT_TOKEN"),
		TelegramWebhookURL:     os.Getenv("TELEGRAM_WEBHOOK_URL"),
		TelegramAllowedUserIDs: allowedIDs,
	}, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("%s must be a positive integer, got %q", key, v)
	}
	return n, nil
}

func parseIDList(raw string) ([]int64, error) {
	var ids []int64
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, err := strconv.ParseInt(part, 10, 64)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}
