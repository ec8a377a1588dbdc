package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// DefaultModel is used when neither the caller nor the environment names a model
const DefaultModel = "google/gemini-2.5-flash"

// Config represents application configuration
type Config struct {
	LLM      LLMConfig      `envconfig:"LLM"`
	Feeds    FeedsConfig    `envconfig:"FEEDS"`
	Database DatabaseConfig `envconfig:"DATABASE"`
	HTTP     HTTPConfig     `envconfig:"HTTP"`
	Telegram TelegramConfig `envconfig:"TELEGRAM"`
	Logging  LoggingConfig  `envconfig:"LOGGING"`
}

// LLMConfig represents the OpenRouter chat-completions settings
type LLMConfig struct {
	APIKey    string        `envconfig:"OPENROUTER_API_KEY" required:"false"`
	Model     string        `envconfig:"OPENROUTER_MODEL" required:"false"`
	BaseURL   string        `envconfig:"OPENROUTER_BASE_URL" default:"https://openrouter.ai/api/v1"`
	Referer   string        `envconfig:"OPENROUTER_REFERER" default:"https://localhost"`
	Title     string        `envconfig:"OPENROUTER_TITLE" default:"CryptoNewsSentimentApp"`
	Timeout   time.Duration `envconfig:"OPENROUTER_TIMEOUT" default:"120s"`
	MaxTokens int           `envconfig:"OPENROUTER_MAX_TOKENS" default:"2000"`
}

// FeedsConfig represents RSS collection parameters
type FeedsConfig struct {
	URLs         []string      `envconfig:"FEED_URLS" required:"false"`
	FetchTimeout time.Duration `envconfig:"FEED_FETCH_TIMEOUT" default:"10s"`
	UserAgent    string        `envconfig:"FEED_USER_AGENT" default:"news-sentiment/1.0 (+https://localhost)"`
}

// DatabaseConfig represents database connection parameters
type DatabaseConfig struct {
	Driver   string `envconfig:"DB_DRIVER" default:"sqlite"` // sqlite or postgres
	Path     string `envconfig:"APP_DB_PATH" default:"data/app.db"`
	Host     string `envconfig:"DB_HOST" default:"localhost"`
	Port     int    `envconfig:"DB_PORT" default:"5432"`
	Name     string `envconfig:"DB_NAME" default:"sentiment"`
	User     string `envconfig:"DB_USER" required:"false"`
	Password string `envconfig:"DB_PASSWORD" required:"false"`
	SSLMode  string `envconfig:"DB_SSLMODE" default:"disable"`
}

// HTTPConfig represents the presentation server settings
type HTTPConfig struct {
	Addr            string        `envconfig:"HTTP_ADDR" default:":8000"`
	AllowOrigins    []string      `envconfig:"HTTP_ALLOW_ORIGINS" required:"false"`
	ShutdownTimeout time.Duration `envconfig:"HTTP_SHUTDOWN_TIMEOUT" default:"10s"`
}

// TelegramConfig represents the optional Telegram control bot
type TelegramConfig struct {
	BotToken string `envconfig:"TELEGRAM_BOT_TOKEN" required:"false"`
	ChatID   int64  `envconfig:"TELEGRAM_CHAT_ID" required:"false"`
}

// LoggingConfig represents logging configuration
type LoggingConfig struct {
	Level string `envconfig:"LOG_LEVEL" default:"info"`
	File  string `envconfig:"LOG_FILE" default:""`
}

// Load reads configuration from a .env file (if present) and environment variables
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	var cfg Config

	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// Validate checks if configuration is valid.
// A missing LLM key is not an error: prediction runs become no-ops.
func (c *Config) Validate() error {
	switch c.Database.Driver {
	case "sqlite":
		if c.Database.Path == "" {
			return fmt.Errorf("sqlite driver requires APP_DB_PATH")
		}
	case "postgres":
		if c.Database.User == "" {
			return fmt.Errorf("postgres driver requires DB_USER")
		}
	default:
		return fmt.Errorf("unsupported DB_DRIVER %q (valid: sqlite, postgres)", c.Database.Driver)
	}

	if c.Feeds.FetchTimeout <= 0 {
		return fmt.Errorf("feed_fetch_timeout must be positive")
	}
	if c.LLM.Timeout <= 0 {
		return fmt.Errorf("openrouter_timeout must be positive")
	}
	if c.LLM.MaxTokens <= 0 {
		return fmt.Errorf("openrouter_max_tokens must be positive")
	}

	if c.Telegram.BotToken != "" && c.Telegram.ChatID == 0 {
		return fmt.Errorf("telegram chat_id is required when a bot token is set")
	}

	return nil
}

// GetDSN returns the driver-specific connection string
func (c *DatabaseConfig) GetDSN() string {
	if c.Driver == "sqlite" {
		return c.Path + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
	}
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Name, c.SSLMode,
	)
}

// HasCredential reports whether an LLM API key is configured
func (c *LLMConfig) HasCredential() bool {
	return strings.TrimSpace(c.APIKey) != ""
}

// ResolveModel picks the model for a run: the environment override wins,
// then the caller's choice, then DefaultModel.
func (c *LLMConfig) ResolveModel(requested string) string {
	if m := strings.TrimSpace(c.Model); m != "" {
		return m
	}
	if m := strings.TrimSpace(requested); m != "" {
		return m
	}
	return DefaultModel
}

// TelegramEnabled returns true if the control bot should start
func (c *Config) TelegramEnabled() bool {
	return c.Telegram.BotToken != ""
}
