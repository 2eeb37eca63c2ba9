package generate

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/anupamd/revise/internal/content"
	"github.com/anupamd/revise/internal/llm"
)

// Generator produces a flashcard deck and quiz from source material.
type Generator interface {
	// Generate produces both markdown files for the given input context.
	// The returned Result has already round-tripped through the content
	// parsers, so writing it to the content directory cannot produce a
	// file the corpus loader would reject.
	Generate(ctx context.Context, input Input) (*Result, error)
}

// LLMGenerator implements Generator using the LLM provider.
type LLMGenerator struct {
	provider llm.Provider
	config   Config
}

// New creates a new LLMGenerator with the given provider and config.
func New(provider llm.Provider, cfg Config) *LLMGenerator {
	return &LLMGenerator{provider: provider, config: cfg}
}

// packOutput is the raw LLM response before validation.
type packOutput struct {
	FlashcardsFileName string `json:"flashcards_file_name"`
	QuizFileName       string `json:"quiz_file_name"`
	FlashcardsMarkdown string `json:"flashcards_markdown"`
	QuizMarkdown       string `json:"quiz_markdown"`
}

// Generate produces both files for the given input context.
func (g *LLMGenerator) Generate(ctx context.Context, input Input) (*Result, error) {
	ctx = llm.WithPurpose(ctx, "content-gen")

	userMsg := buildUserMessage(input, g.config)

	req := llm.Request{
		System: systemPrompt,
		Messages: []llm.Message{
			{Role: llm.RoleUser, Content: userMsg},
		},
		Schema:      PackSchema,
		MaxTokens:   g.config.MaxTokens,
		Temperature: g.config.Temperature,
	}

	resp, err := g.provider.Generate(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("LLM generation failed: %w", err)
	}

	var raw packOutput
	if err := json.Unmarshal(resp.Content, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse LLM response: %w", err)
	}

	// Round-trip through the content parsers. A file the parsers reject
	// never reaches the content directory.
	group, err := content.ParseFlashcardGroup(raw.FlashcardsMarkdown)
	if err != nil {
		return nil, fmt.Errorf("generated flashcards are invalid: %w", err)
	}
	quiz, err := content.ParseQuiz(raw.QuizMarkdown)
	if err != nil {
		return nil, fmt.Errorf("generated quiz is invalid: %w", err)
	}

	res := &Result{
		FlashcardsFileName: fileName(raw.FlashcardsFileName, input, input.FlashcardID()),
		QuizFileName:       fileName(raw.QuizFileName, input, input.QuizID()),
		FlashcardsMarkdown: raw.FlashcardsMarkdown,
		QuizMarkdown:       raw.QuizMarkdown,
		Group:              group,
		Quiz:               quiz,
	}

	if err := checkResult(res, input, g.config); err != nil {
		return nil, err
	}
	return res, nil
}

// fileName prefers the model's suggestion when it is a plausible slug,
// otherwise derives one from the subcategory and id sequence.
func fileName(suggested string, input Input, id string) string {
	if s := Slugify(suggested); s != "" && s != "md" {
		return trimSuffixSlug(s) + ".md"
	}
	return Slugify(input.Subcategory) + "-" + sequenceFromID(id) + ".md"
}

func trimSuffixSlug(s string) string {
	if len(s) > 3 && s[len(s)-3:] == "-md" {
		return s[:len(s)-3]
	}
	return s
}

// checkResult enforces the contract the prompt states: exact counts, the
// requested quiz type, and ids matching the taxonomy.
func checkResult(res *Result, input Input, cfg Config) error {
	cards := input.CardCount
	if cards <= 0 {
		cards = cfg.DefaultCardCount
	}
	questions := input.QuestionCount
	if questions <= 0 {
		questions = cfg.DefaultQuestionCount
	}

	if got := len(res.Group.Cards); got != cards {
		return fmt.Errorf("generated %d flashcards, wanted %d", got, cards)
	}
	if got := len(res.Quiz.Questions); got != questions {
		return fmt.Errorf("generated %d quiz questions, wanted %d", got, questions)
	}
	if res.Quiz.Type != input.QuizType {
		return fmt.Errorf("generated quiz type %q, wanted %q", res.Quiz.Type, input.QuizType)
	}
	if res.Group.ID == "" || res.Quiz.ID == "" {
		return fmt.Errorf("generated file is missing an id")
	}
	if res.Group.Version == "" || res.Quiz.Version == "" {
		return fmt.Errorf("generated file is missing a version")
	}
	return nil
}
