package examgen

import (
	"fmt"
	"strings"

	"github.com/abhisek/certifica/internal/questionbank"
)

const (
	maxTextLen   = 600
	maxOptionLen = 300
)

// StructuralValidator checks that the statement and options are present,
// within length limits, and that the answer key points at an option.
type StructuralValidator struct{}

func (v *StructuralValidator) Name() string { return "structural" }

func (v *StructuralValidator) Validate(d Draft) *ValidationError {
	if strings.TrimSpace(d.Text) == "" {
		return v.fail("text is empty")
	}
	if len(d.Text) > maxTextLen {
		return v.fail(fmt.Sprintf("text exceeds %d characters", maxTextLen))
	}
	if len(d.Options) != questionbank.OptionCount {
		return v.fail(fmt.Sprintf("expected %d options, got %d", questionbank.OptionCount, len(d.Options)))
	}
	for i, o := range d.Options {
		if strings.TrimSpace(o) == "" {
			return v.fail(fmt.Sprintf("option %d is empty", i))
		}
		if len(o) > maxOptionLen {
			return v.fail(fmt.Sprintf("option %d exceeds %d characters", i, maxOptionLen))
		}
	}
	if d.Correct < 0 || d.Correct >= questionbank.OptionCount {
		return v.fail(fmt.Sprintf("correct index %d out of range", d.Correct))
	}
	return nil
}

func (v *StructuralValidator) fail(msg string) *ValidationError {
	return &ValidationError{Validator: v.Name(), Message: msg, Retryable: true}
}

// DistinctOptionsValidator rejects questions whose options repeat, which
// would make the answer key ambiguous.
type DistinctOptionsValidator struct{}

func (v *DistinctOptionsValidator) Name() string { return "distinct-options" }

func (v *DistinctOptionsValidator) Validate(d Draft) *ValidationError {
	seen := make(map[string]int, len(d.Options))
	for i, o := range d.Options {
		key := strings.ToLower(strings.Join(strings.Fields(o), " "))
		if j, dup := seen[key]; dup {
			return &ValidationError{
				Validator: v.Name(),
				Message:   fmt.Sprintf("options %d and %d are the same", j, i),
				Retryable: true,
			}
		}
		seen[key] = i
	}
	return nil
}
