package llm

import (
	"context"
	"testing"
	"time"
)

func clearLLMEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		"CERTIFICA_LLM_PROVIDER", "CERTIFICA_LLM_API_KEY", "CERTIFICA_LLM_MODEL",
		"CERTIFICA_LLM_BASE_URL", "CERTIFICA_LLM_TIMEOUT",
		"GEMINI_API_KEY", "OPENAI_API_KEY", "ANTHROPIC_API_KEY", "OPENROUTER_API_KEY",
	} {
		t.Setenv(k, "")
	}
}

func TestConfigFromEnv_Explicit(t *testing.T) {
	clearLLMEnv(t)
	t.Setenv("CERTIFICA_LLM_PROVIDER", "Anthropic")
	t.Setenv("CERTIFICA_LLM_API_KEY", "sk-test")
	t.Setenv("CERTIFICA_LLM_MODEL", "claude-sonnet")
	t.Setenv("CERTIFICA_LLM_TIMEOUT", "15s")

	cfg := ConfigFromEnv()
	if cfg.Vendor != Anthropic || cfg.APIKey != "sk-test" {
		t.Fatalf("cfg = %+v", cfg)
	}
	if cfg.Timeout != 15*time.Second {
		t.Errorf("timeout = %s", cfg.Timeout)
	}
	if got := cfg.ResolvedModel(); got != "claude-sonnet-4-20250514" {
		t.Errorf("model = %q", got)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("validate: %v", err)
	}
}

func TestConfigFromEnv_Discovery(t *testing.T) {
	clearLLMEnv(t)
	t.Setenv("OPENAI_API_KEY", "sk-openai")
	t.Setenv("ANTHROPIC_API_KEY", "sk-ant")

	cfg := ConfigFromEnv()
	if cfg.Vendor != OpenAI || cfg.APIKey != "sk-openai" {
		t.Fatalf("discovered %q with key %q, want openai", cfg.Vendor, cfg.APIKey)
	}
	if cfg.ResolvedModel() != "gpt-4o-mini" {
		t.Errorf("default model = %q", cfg.ResolvedModel())
	}

	t.Setenv("CERTIFICA_LLM_PROVIDER", "anthropic")
	if cfg := ConfigFromEnv(); cfg.Vendor != Anthropic || cfg.APIKey != "sk-ant" {
		t.Errorf("restricted discovery = %+v", cfg)
	}
}

func TestConfigValidate(t *testing.T) {
	clearLLMEnv(t)
	if err := ConfigFromEnv().Validate(); err == nil {
		t.Error("expected error without any key")
	}
	if err := (Config{Vendor: "cohere", APIKey: "k"}).Validate(); err == nil {
		t.Error("expected error for unknown vendor")
	}
	if _, err := New(context.Background(), Config{Vendor: OpenAI}, nil, nil); err == nil {
		t.Error("New should refuse an invalid config")
	}
}

func TestNew_OpenRouterUsesOpenAIClient(t *testing.T) {
	p, err := New(context.Background(), Config{Vendor: OpenRouter, APIKey: "k", Retry: fastRetry}, nil, quiet())
	if err != nil {
		t.Fatal(err)
	}
	if p.Name() != OpenRouter || p.ModelID() != "google/gemini-2.0-flash-001" {
		t.Errorf("provider = %s/%s", p.Name(), p.ModelID())
	}
}
