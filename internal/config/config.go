package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"go.uber.org/multierr"
)

type Config struct {
	Addr string

	OpenAIBaseURL string
	OpenAIAPIKey  string
	Model         string

	// SessionSecret is a pass-through value reserved for a future persistent
	// or distributed session store; the in-memory store does not use it.
	SessionSecret string

	AutoCreateSessions bool
	MaxHistoryMessages int
	MaxHistoryTokens   int

	// SessionTTL > 0 enables the idle-session janitor.
	SessionTTL time.Duration

	WebDir string
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getBoolEnv(key string, def bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	return v == "1" || v == "true" || v == "TRUE"
}

func getIntEnv(key string, def int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer: %w", key, err)
	}
	return n, nil
}

func getDurationEnv(key string, def time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("%s must be a duration like 24h: %w", key, err)
	}
	return d, nil
}

// Load reads all env vars and builds the config, accumulating every
// validation problem instead of stopping at the first.
func Load() (*Config, error) {
	var errs error

	cfg := &Config{
		Addr:               getEnv("ADDR", ":8000"),
		OpenAIBaseURL:      getEnv("OPENAI_BASE_URL", "https://api.openai.com/v1"),
		OpenAIAPIKey:       os.Getenv("OPENAI_API_KEY"),
		Model:              getEnv("MODEL", "gpt-5"),
		SessionSecret:      getEnv("SESSION_SECRET", "default_secret_key"),
		AutoCreateSessions: getBoolEnv("AUTO_CREATE_SESSIONS", true),
		WebDir:             getEnv("WEB_DIR", "web"),
	}

	var err error
	if cfg.MaxHistoryMessages, err = getIntEnv("MAX_HISTORY_MESSAGES", 12); err != nil {
		errs = multierr.Append(errs, err)
	}
	if cfg.MaxHistoryTokens, err = getIntEnv("MAX_HISTORY_TOKENS", 2048); err != nil {
		errs = multierr.Append(errs, err)
	}
	if cfg.SessionTTL, err = getDurationEnv("SESSION_TTL", 24*time.Hour); err != nil {
		errs = multierr.Append(errs, err)
	}

	if cfg.OpenAIAPIKey == "" {
		errs = multierr.Append(errs, fmt.Errorf("OPENAI_API_KEY must be set"))
	}
	if cfg.MaxHistoryMessages < 0 {
		errs = multierr.Append(errs, fmt.Errorf("MAX_HISTORY_MESSAGES must not be negative"))
	}
	if cfg.MaxHistoryTokens < 0 {
		errs = multierr.Append(errs, fmt.Errorf("MAX_HISTORY_TOKENS must not be negative"))
	}
	if cfg.SessionTTL < 0 {
		errs = multierr.Append(errs, fmt.Errorf("SESSION_TTL must not be negative"))
	}

	if errs != nil {
		return nil, errs
	}
	return cfg, nil
}
