package examgen

import (
	"github.com/abhisek/certifica/internal/llm"
	"github.com/abhisek/certifica/internal/questionbank"
)

// ExamSchema defines the JSON schema for LLM exam generation responses.
// Vendors are asked for the {"questions": [...]} object. Replies may also
// be a bare array of questions whose items carry an "id", and may hold any
// number of questions; the count is checked after decoding.
var ExamSchema = &llm.Schema{
	Name:        "certification-exam",
	Description: "An objective certification exam with multiple-choice questions and answer key",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"questions": map[string]any{
				"type":     "array",
				"minItems": questionbank.ExamSize,
				"maxItems": questionbank.ExamSize,
				"items":    questionItem(false),
			},
		},
		"required":             []any{"questions"},
		"additionalProperties": false,
	},
	Validation: map[string]any{
		"anyOf": []any{
			map[string]any{
				"type": "object",
				"properties": map[string]any{
					"questions": questionList(),
				},
				"required": []any{"questions"},
			},
			questionList(),
		},
	},
}

func questionList() map[string]any {
	return map[string]any{
		"type":     "array",
		"minItems": 1,
		"items":    questionItem(true),
	}
}

// questionItem describes one question. withID admits the numeric "id" that
// models add when they answer with a bare array.
func questionItem(withID bool) map[string]any {
	props := map[string]any{
		"text": map[string]any{
			"type":        "string",
			"description": "The question statement, in Brazilian Portuguese",
		},
		"options": map[string]any{
			"type":        "array",
			"minItems":    questionbank.OptionCount,
			"maxItems":    questionbank.OptionCount,
			"items":       map[string]any{"type": "string"},
			"description": "Exactly 4 options (A, B, C, D)",
		},
		"correct": map[string]any{
			"type":        "integer",
			"minimum":     0,
			"maximum":     questionbank.OptionCount - 1,
			"description": "Index of the correct option (0 for A, 1 for B, ...)",
		},
	}
	if withID {
		props["id"] = map[string]any{"type": "integer"}
	}
	return map[string]any{
		"type":                 "object",
		"properties":           props,
		"required":             []any{"text", "options", "correct"},
		"additionalProperties": false,
	}
}
