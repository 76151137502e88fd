package examgen

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"github.com/abhisek/certifica/internal/llm"
	"github.com/abhisek/certifica/internal/questionbank"
)

// Purpose tags exam generation calls in the LLM event log.
const Purpose = "exam-gen"

// Generator produces a full exam for a course title.
type Generator interface {
	// Generate returns exactly questionbank.ExamSize validated questions,
	// numbered from 1, with options shuffled.
	Generate(ctx context.Context, title string) ([]questionbank.Question, error)
}

// LLMGenerator implements Generator using an LLM provider.
type LLMGenerator struct {
	provider llm.Provider
	config   Config
	engine   *questionbank.Engine
}

// New creates a new LLMGenerator. Options are shuffled with engine; a nil
// engine gets a time-seeded one.
func New(provider llm.Provider, cfg Config, engine *questionbank.Engine) *LLMGenerator {
	if engine == nil {
		engine = questionbank.New()
	}
	return &LLMGenerator{provider: provider, config: cfg, engine: engine}
}

// examOutput is the raw LLM response before validation.
type examOutput struct {
	Questions []Draft `json:"questions"`
}

// Generate asks the provider for an exam about title.
func (g *LLMGenerator) Generate(ctx context.Context, title string) ([]questionbank.Question, error) {
	ctx = llm.WithPurpose(ctx, Purpose)

	req := llm.Request{
		System:      systemPrompt,
		Prompt:      buildUserMessage(title),
		Schema:      ExamSchema,
		MaxTokens:   g.config.MaxTokens,
		Temperature: g.config.Temperature,
	}

	resp, err := g.provider.Generate(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("LLM generation failed: %w", err)
	}

	drafts, err := parseDrafts(resp.Content)
	if err != nil {
		return nil, fmt.Errorf("failed to parse LLM response: %w", err)
	}
	if len(drafts) < questionbank.ExamSize {
		return nil, &ValidationError{
			Validator: "count",
			Message:   fmt.Sprintf("expected %d questions, got %d", questionbank.ExamSize, len(drafts)),
			Retryable: true,
		}
	}
	drafts = drafts[:questionbank.ExamSize]

	questions := make([]questionbank.Question, 0, len(drafts))
	for i, d := range drafts {
		for _, v := range g.config.Validators {
			if verr := v.Validate(d); verr != nil {
				verr.Message = fmt.Sprintf("question %d: %s", i+1, verr.Message)
				return nil, verr
			}
		}
		q, err := questionbank.NewQuestion(i+1, d.Text, d.Options, d.Correct)
		if err != nil {
			return nil, fmt.Errorf("question %d: %w", i+1, err)
		}
		questions = append(questions, q)
	}

	return g.engine.Shuffle(questions), nil
}

// parseDrafts accepts the schema's {"questions": [...]} object and, for
// providers that ignored the schema, a bare array, optionally fenced.
func parseDrafts(raw json.RawMessage) ([]Draft, error) {
	raw = llm.StripCodeFence(raw)
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		var drafts []Draft
		if err := json.Unmarshal(trimmed, &drafts); err != nil {
			return nil, err
		}
		return drafts, nil
	}

	var out examOutput
	if err := json.Unmarshal(trimmed, &out); err != nil {
		return nil, err
	}
	return out.Questions, nil
}
