// Package config assembles process configuration from the environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// MinSecretLength is the shortest JWT secret serve accepts.
const MinSecretLength = 16

// Config holds everything the commands need besides LLM settings, which
// the llm package reads itself.
type Config struct {
	// DBDriver is "sqlite" or "postgres".
	DBDriver string
	// DB is a SQLite file path or a Postgres DSN. Empty means the default
	// data-directory path.
	DB string

	HTTPAddr    string
	JWTSecret   string
	TokenTTL    time.Duration
	CORSOrigins []string

	// WebhookSecret enables HMAC verification of payment webhooks.
	WebhookSecret string

	// RedisURL enables the shared certificate-request guard.
	RedisURL string
	// AMQPURL enables publishing domain events to RabbitMQ.
	AMQPURL string

	AdminEmails []string

	// ExamAI generates exams with the configured LLM, falling back to the
	// template engine.
	ExamAI bool

	LogLevel  string
	LogFormat string
}

// DefaultConfig returns a Config with development defaults.
func DefaultConfig() Config {
	return Config{
		DBDriver:    "sqlite",
		HTTPAddr:    ":8080",
		TokenTTL:    24 * time.Hour,
		CORSOrigins: []string{"http://localhost:3000"},
		ExamAI:      true,
		LogLevel:    "info",
		LogFormat:   "text",
	}
}

// LoadEnvFile loads KEY=value pairs from path into the environment without
// overriding variables that are already set. An empty path loads ./.env
// when it exists.
func LoadEnvFile(path string) error {
	if path == "" {
		if _, err := os.Stat(".env"); err != nil {
			return nil
		}
		path = ".env"
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("load env file %s: %w", path, err)
	}
	return nil
}

// ConfigFromEnv builds a Config from environment variables, falling back
// to defaults for unset values.
func ConfigFromEnv() Config {
	cfg := DefaultConfig()

	if v := os.Getenv("CERTIFICA_DB_DRIVER"); v != "" {
		cfg.DBDriver = v
	}
	if v := os.Getenv("CERTIFICA_DB"); v != "" {
		cfg.DB = v
	}
	if v := os.Getenv("CERTIFICA_HTTP_ADDR"); v != "" {
		cfg.HTTPAddr = v
	}
	if v := os.Getenv("CERTIFICA_JWT_SECRET"); v != "" {
		cfg.JWTSecret = v
	}
	if v := os.Getenv("CERTIFICA_TOKEN_TTL"); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			cfg.TokenTTL = d
		}
	}
	if v := os.Getenv("CERTIFICA_CORS_ORIGINS"); v != "" {
		cfg.CORSOrigins = splitList(v)
	}
	if v := os.Getenv("CERTIFICA_WEBHOOK_SECRET"); v != "" {
		cfg.WebhookSecret = v
	}
	if v := os.Getenv("CERTIFICA_REDIS_URL"); v != "" {
		cfg.RedisURL = v
	}
	if v := os.Getenv("CERTIFICA_AMQP_URL"); v != "" {
		cfg.AMQPURL = v
	}
	if v := os.Getenv("CERTIFICA_ADMIN_EMAILS"); v != "" {
		cfg.AdminEmails = splitList(v)
	}
	if v := os.Getenv("CERTIFICA_EXAM_AI"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.ExamAI = b
		}
	}
	if v := os.Getenv("CERTIFICA_LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
	if v := os.Getenv("CERTIFICA_LOG_FORMAT"); v != "" {
		cfg.LogFormat = v
	}

	return cfg
}

// Validate checks settings every command relies on.
func (c Config) Validate() error {
	switch c.DBDriver {
	case "sqlite", "postgres", "pgx":
	default:
		return fmt.Errorf("unknown CERTIFICA_DB_DRIVER %q (want sqlite or postgres)", c.DBDriver)
	}
	if (c.DBDriver == "postgres" || c.DBDriver == "pgx") && c.DB == "" {
		return errors.New("CERTIFICA_DB must hold a DSN for the postgres driver")
	}
	if _, err := ParseLevel(c.LogLevel); err != nil {
		return err
	}
	switch c.LogFormat {
	case "text", "json":
	default:
		return fmt.Errorf("unknown CERTIFICA_LOG_FORMAT %q (want text or json)", c.LogFormat)
	}
	return nil
}

// ValidateServe additionally checks what the HTTP server needs.
func (c Config) ValidateServe() error {
	if err := c.Validate(); err != nil {
		return err
	}
	if len(c.JWTSecret) < MinSecretLength {
		return fmt.Errorf("CERTIFICA_JWT_SECRET must have at least %d characters", MinSecretLength)
	}
	if c.HTTPAddr == "" {
		return errors.New("CERTIFICA_HTTP_ADDR is empty")
	}
	return nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
