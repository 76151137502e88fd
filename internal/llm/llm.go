// Package llm sends single-turn prompts to a hosted model and returns JSON
// checked against the caller's schema. Vendor clients for Gemini, OpenAI
// (and OpenRouter) and Anthropic share one decoding path; timeouts, retries
// and the request log are layered on with Chain.
package llm

import (
	"context"
	"encoding/json"
)

// Provider generates structured output from a prompt.
type Provider interface {
	Generate(ctx context.Context, req Request) (*Response, error)
	// Name is the vendor, e.g. "gemini".
	Name() string
	ModelID() string
}

// Request is one prompt. When Schema is set the reply must be a JSON
// document valid against it.
type Request struct {
	System      string
	Prompt      string
	Schema      *Schema
	MaxTokens   int
	Temperature float64
}

// Schema is a named JSON Schema. Name doubles as the tool or format name
// vendors ask for.
type Schema struct {
	Name        string
	Description string
	Definition  map[string]any
	// Validation, when set, replaces Definition when checking replies.
	// Vendors are always sent Definition.
	Validation map[string]any
}

func (s *Schema) validation() map[string]any {
	if s.Validation != nil {
		return s.Validation
	}
	return s.Definition
}

// Response is a validated model reply.
type Response struct {
	Content      json.RawMessage
	Model        string
	Truncated    bool
	InputTokens  int
	OutputTokens int
}

type purposeKey struct{}

// WithPurpose labels the calls made with ctx in the request log.
func WithPurpose(ctx context.Context, purpose string) context.Context {
	return context.WithValue(ctx, purposeKey{}, purpose)
}

// PurposeFrom returns the label set by WithPurpose, or "unknown".
func PurposeFrom(ctx context.Context) string {
	if p, ok := ctx.Value(purposeKey{}).(string); ok && p != "" {
		return p
	}
	return "unknown"
}
