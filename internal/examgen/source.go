package examgen

import (
	"context"
	"log/slog"

	"github.com/abhisek/certifica/internal/questionbank"
)

// Question origins reported by FallbackSource.
const (
	OriginAI       = "ai"
	OriginTemplate = "template"
)

// FallbackSource serves exams from a Generator when one is configured and
// from the template engine otherwise, or whenever generation fails.
type FallbackSource struct {
	gen    Generator
	engine *questionbank.Engine
	logger *slog.Logger
}

// NewFallbackSource returns a FallbackSource. gen may be nil.
func NewFallbackSource(gen Generator, engine *questionbank.Engine, logger *slog.Logger) *FallbackSource {
	if engine == nil {
		engine = questionbank.New()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &FallbackSource{gen: gen, engine: engine, logger: logger}
}

// Questions returns the exam for title and where it came from. Generator
// errors are logged and the templates are used instead; only a cancelled
// context is returned as an error.
func (s *FallbackSource) Questions(ctx context.Context, title string) ([]questionbank.Question, string, error) {
	if s.gen != nil {
		qs, err := s.gen.Generate(ctx, title)
		if err == nil {
			return qs, OriginAI, nil
		}
		if ctx.Err() != nil {
			return nil, "", ctx.Err()
		}
		s.logger.Warn("AI exam generation failed, using templates",
			"title", title, "error", err)
	}
	return s.engine.Generate(title), OriginTemplate, nil
}
