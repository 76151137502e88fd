package llm

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/abhisek/certifica/internal/store"
)

// Vendor names accepted in CERTIFICA_LLM_PROVIDER.
const (
	Gemini     = "gemini"
	OpenAI     = "openai"
	Anthropic  = "anthropic"
	OpenRouter = "openrouter"
)

const openRouterURL = "https://openrouter.ai/api/v1"

// vendorDefaults lists vendors in discovery order.
var vendorDefaults = []struct {
	name   string
	keyEnv string
	model  string
}{
	{Gemini, "GEMINI_API_KEY", "gemini-2.5-flash"},
	{OpenAI, "OPENAI_API_KEY", "gpt-4o-mini"},
	{Anthropic, "ANTHROPIC_API_KEY", "claude-haiku-4-5-20251001"},
	{OpenRouter, "OPENROUTER_API_KEY", "google/gemini-2.0-flash-001"},
}

// modelAliases are short names accepted in CERTIFICA_LLM_MODEL.
var modelAliases = map[string]string{
	"gemini-flash":  "gemini-2.5-flash",
	"gemini-pro":    "gemini-2.5-pro",
	"claude-haiku":  "claude-haiku-4-5-20251001",
	"claude-sonnet": "claude-sonnet-4-20250514",
}

// Config selects and tunes one vendor.
type Config struct {
	Vendor  string
	APIKey  string
	Model   string
	BaseURL string
	Timeout time.Duration
	Retry   RetryPolicy
}

// ConfigFromEnv reads CERTIFICA_LLM_*. Without CERTIFICA_LLM_API_KEY the
// vendors' own variables (GEMINI_API_KEY, OPENAI_API_KEY, ...) are checked
// in order, restricted to CERTIFICA_LLM_PROVIDER when that is set.
func ConfigFromEnv() Config {
	cfg := Config{
		Vendor:  strings.ToLower(strings.TrimSpace(os.Getenv("CERTIFICA_LLM_PROVIDER"))),
		APIKey:  os.Getenv("CERTIFICA_LLM_API_KEY"),
		Model:   os.Getenv("CERTIFICA_LLM_MODEL"),
		BaseURL: os.Getenv("CERTIFICA_LLM_BASE_URL"),
		Timeout: 60 * time.Second,
		Retry:   DefaultRetry,
	}
	if d, err := time.ParseDuration(os.Getenv("CERTIFICA_LLM_TIMEOUT")); err == nil && d > 0 {
		cfg.Timeout = d
	}
	if cfg.APIKey != "" {
		if cfg.Vendor == "" {
			cfg.Vendor = Gemini
		}
		return cfg
	}
	for _, v := range vendorDefaults {
		if cfg.Vendor != "" && cfg.Vendor != v.name {
			continue
		}
		if key := os.Getenv(v.keyEnv); key != "" {
			cfg.Vendor, cfg.APIKey = v.name, key
			break
		}
	}
	return cfg
}

// Validate reports a missing key or an unknown vendor.
func (c Config) Validate() error {
	if _, ok := defaultModel(c.Vendor); !ok {
		return fmt.Errorf("unknown LLM provider %q", c.Vendor)
	}
	if c.APIKey == "" {
		return fmt.Errorf("no API key for LLM provider %s (set CERTIFICA_LLM_API_KEY)", c.Vendor)
	}
	return nil
}

// ResolvedModel is the model id the vendor is asked for.
func (c Config) ResolvedModel() string {
	if c.Model == "" {
		m, _ := defaultModel(c.Vendor)
		return m
	}
	if id, ok := modelAliases[c.Model]; ok {
		return id
	}
	return c.Model
}

func defaultModel(vendor string) (string, bool) {
	for _, v := range vendorDefaults {
		if v.name == vendor {
			return v.model, true
		}
	}
	return "", false
}

// New builds the vendor client for cfg wrapped as
// Timeout(Retry(Record(client))).
func New(ctx context.Context, cfg Config, events store.EventRepo, logger *slog.Logger) (Provider, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	model := cfg.ResolvedModel()
	var (
		client Provider
		err    error
	)
	switch cfg.Vendor {
	case Gemini:
		client, err = newGemini(ctx, cfg.APIKey, model)
	case OpenAI:
		client = newOpenAI(OpenAI, cfg.APIKey, model, cfg.BaseURL)
	case OpenRouter:
		base := cfg.BaseURL
		if base == "" {
			base = openRouterURL
		}
		client = newOpenAI(OpenRouter, cfg.APIKey, model, base)
	case Anthropic:
		client = newAnthropic(cfg.APIKey, model, cfg.BaseURL)
	}
	if err != nil {
		return nil, fmt.Errorf("%s client: %w", cfg.Vendor, err)
	}
	return Chain(client, Timeout(cfg.Timeout), Retry(cfg.Retry), Record(events, logger)), nil
}

// FromEnv is New over ConfigFromEnv.
func FromEnv(ctx context.Context, events store.EventRepo, logger *slog.Logger) (Provider, error) {
	return New(ctx, ConfigFromEnv(), events, logger)
}
