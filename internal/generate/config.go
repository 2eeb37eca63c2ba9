package generate

// Config controls the behavior of the LLMGenerator.
type Config struct {
	// MaxTokens is the token budget for the LLM response. Generation
	// returns two full markdown files in one response, so the budget is
	// far larger than a grading call's.
	MaxTokens int

	// Temperature controls LLM output randomness (0.0-1.0).
	Temperature float64

	// DefaultCardCount is used when Input.CardCount is zero.
	DefaultCardCount int

	// DefaultQuestionCount is used when Input.QuestionCount is zero.
	DefaultQuestionCount int

	// MaxSourceBytes caps how much source material goes into the prompt.
	// Longer sources are truncated from the end.
	MaxSourceBytes int
}

// DefaultConfig returns a Config with recommended defaults.
func DefaultConfig() Config {
	return Config{
		MaxTokens:            8192,
		Temperature:          0.7,
		DefaultCardCount:     8,
		DefaultQuestionCount: 10,
		MaxSourceBytes:       48_000,
	}
}
