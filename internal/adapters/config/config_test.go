package config

import (
	"os"
	"testing"
	"time"
)

// unsetenv clears variables for the duration of the test; envconfig treats
// an empty but present variable as set and skips its default.
func unsetenv(t *testing.T, keys ...string) {
	t.Helper()
	for _, k := range keys {
		t.Setenv(k, "")
		os.Unsetenv(k)
	}
}

func TestLoadDefaults(t *testing.T) {
	unsetenv(t, "OPENROUTER_API_KEY", "OPENROUTER_MODEL", "DB_DRIVER", "APP_DB_PATH",
		"FEED_URLS", "FEED_FETCH_TIMEOUT", "OPENROUTER_TIMEOUT", "OPENROUTER_MAX_TOKENS", "TELEGRAM_BOT_TOKEN")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Database.Driver != "sqlite" {
		t.Errorf("expected sqlite driver, got %q", cfg.Database.Driver)
	}
	if cfg.Feeds.FetchTimeout != 10*time.Second {
		t.Errorf("expected 10s feed timeout, got %v", cfg.Feeds.FetchTimeout)
	}
	if cfg.LLM.Timeout != 120*time.Second {
		t.Errorf("expected 120s LLM timeout, got %v", cfg.LLM.Timeout)
	}
	if cfg.LLM.MaxTokens != 2000 {
		t.Errorf("expected 2000 max tokens, got %d", cfg.LLM.MaxTokens)
	}
	if cfg.LLM.HasCredential() {
		t.Error("expected no credential by default")
	}
	if cfg.TelegramEnabled() {
		t.Error("telegram should be disabled without a token")
	}
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("OPENROUTER_API_KEY", "sk-or-test")
	t.Setenv("OPENROUTER_MODEL", "openai/gpt-4o-mini")
	t.Setenv("FEED_URLS", "https://a.example/rss,https://b.example/feed")
	t.Setenv("DB_DRIVER", "postgres")
	t.Setenv("DB_USER", "sentiment")
	unsetenv(t, "DB_HOST", "DB_PORT", "DB_NAME", "DB_PASSWORD", "DB_SSLMODE",
		"FEED_FETCH_TIMEOUT", "OPENROUTER_TIMEOUT", "OPENROUTER_MAX_TOKENS", "TELEGRAM_BOT_TOKEN")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if !cfg.LLM.HasCredential() {
		t.Error("expected credential to be detected")
	}
	if len(cfg.Feeds.URLs) != 2 || cfg.Feeds.URLs[1] != "https://b.example/feed" {
		t.Errorf("unexpected feed urls: %v", cfg.Feeds.URLs)
	}
	if got := cfg.Database.GetDSN(); got != "host=localhost port=5432 user=sentiment password= dbname=sentiment sslmode=disable" {
		t.Errorf("unexpected postgres DSN: %s", got)
	}
}

func TestValidate(t *testing.T) {
	valid := func() Config {
		return Config{
			Database: DatabaseConfig{Driver: "sqlite", Path: "data/app.db"},
			Feeds:    FeedsConfig{FetchTimeout: 10 * time.Second},
			LLM:      LLMConfig{Timeout: time.Minute, MaxTokens: 100},
		}
	}

	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr bool
	}{
		{"valid sqlite", func(c *Config) {}, false},
		{"unknown driver", func(c *Config) { c.Database.Driver = "mysql" }, true},
		{"sqlite without path", func(c *Config) { c.Database.Path = "" }, true},
		{"postgres without user", func(c *Config) { c.Database.Driver = "postgres" }, true},
		{"zero feed timeout", func(c *Config) { c.Feeds.FetchTimeout = 0 }, true},
		{"zero llm timeout", func(c *Config) { c.LLM.Timeout = 0 }, true},
		{"zero max tokens", func(c *Config) { c.LLM.MaxTokens = 0 }, true},
		{"telegram token without chat", func(c *Config) { c.Telegram.BotToken = "123:abc" }, true},
		{"telegram token with chat", func(c *Config) {
			c.Telegram.BotToken = "123:abc"
			c.Telegram.ChatID = 42
		}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestResolveModel(t *testing.T) {
	tests := []struct {
		name      string
		override  string
		requested string
		want      string
	}{
		{"override wins", "env/model", "caller/model", "env/model"},
		{"caller model", "", "caller/model", "caller/model"},
		{"default", "", "  ", DefaultModel},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := LLMConfig{Model: tt.override}
			if got := c.ResolveModel(tt.requested); got != tt.want {
				t.Errorf("ResolveModel(%q) = %q, want %q", tt.requested, got, tt.want)
			}
		})
	}
}

func TestSQLiteDSN(t *testing.T) {
	c := DatabaseConfig{Driver: "sqlite", Path: "/tmp/x.db"}
	if got := c.GetDSN(); got != "/tmp/x.db?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)" {
		t.Errorf("unexpected sqlite DSN: %s", got)
	}
}
