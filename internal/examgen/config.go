package examgen

// Config controls the behavior of the LLMGenerator.
type Config struct {
	// Validators run in order on every generated question; the first
	// failure rejects the whole exam.
	Validators []Validator

	// MaxTokens is the token budget for the LLM response. Ten questions
	// with four options each fit comfortably in 4096.
	MaxTokens int

	// Temperature controls LLM output randomness (0.0-1.0).
	Temperature float64
}

// DefaultConfig returns a Config with the standard validator chain.
func DefaultConfig() Config {
	return Config{
		Validators: []Validator{
			&StructuralValidator{},
			&DistinctOptionsValidator{},
		},
		MaxTokens:   4096,
		Temperature: 0.7,
	}
}
