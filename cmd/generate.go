package cmd

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/anupamd/revise/internal/content"
	"github.com/anupamd/revise/internal/generate"
	"github.com/anupamd/revise/internal/llm"
	"github.com/anupamd/revise/internal/store"
	"github.com/spf13/cobra"
)

var generateCmd = &cobra.Command{
	Use:   "generate [source-file]",
	Short: "Generate a flashcard deck and quiz from source material",
	Long: `Generate reads source material (a text or markdown file, or stdin),
asks the configured LLM to produce a flashcard deck and a matching quiz,
validates both against the content format, and writes them into the
content directory.

Requires an LLM API key (GEMINI_API_KEY, OPENAI_API_KEY,
ANTHROPIC_API_KEY or OPENROUTER_API_KEY).`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		input, err := generateInput(cmd, args)
		if err != nil {
			return err
		}

		dbPath, err := resolveDBPath(cmd)
		if err != nil {
			return fmt.Errorf("resolve database path: %w", err)
		}
		s, err := store.Open(dbPath)
		if err != nil {
			return fmt.Errorf("open database: %w", err)
		}
		defer s.Close()

		ctx := cmd.Context()
		provider, err := llm.NewProviderFromEnv(ctx, s.Events())
		if err != nil {
			return fmt.Errorf("generation needs an LLM provider: %w", err)
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Generating with %s...\n", provider.ModelID())

		gen := generate.New(provider, generate.DefaultConfig())
		res, err := gen.Generate(ctx, input)
		if err != nil {
			return err
		}

		if stdout, _ := cmd.Flags().GetBool("stdout"); stdout {
			fmt.Fprintln(cmd.OutOrStdout(), res.FlashcardsMarkdown)
			fmt.Fprintln(cmd.OutOrStdout())
			fmt.Fprintln(cmd.OutOrStdout(), res.QuizMarkdown)
			return nil
		}

		flashPath, quizPath, err := generate.Write(resolveContentDir(cmd), res)
		if err != nil {
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s (%d cards)\n", flashPath, len(res.Group.Cards))
		fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s (%d questions)\n", quizPath, len(res.Quiz.Questions))
		return nil
	},
}

// generateInput builds the generation input from flags and the source
// argument, validating the enum-valued flags up front.
func generateInput(cmd *cobra.Command, args []string) (generate.Input, error) {
	var in generate.Input

	category, _ := cmd.Flags().GetString("category")
	subcategory, _ := cmd.Flags().GetString("subcategory")
	tags, _ := cmd.Flags().GetString("tags")
	cardDiff, _ := cmd.Flags().GetString("card-difficulty")
	quizDiff, _ := cmd.Flags().GetString("quiz-difficulty")
	quizType, _ := cmd.Flags().GetString("quiz-type")
	in.CardCount, _ = cmd.Flags().GetInt("cards")
	in.QuestionCount, _ = cmd.Flags().GetInt("questions")

	if subcategory == "" {
		return in, fmt.Errorf("--subcategory is required")
	}
	in.Category = category
	in.Subcategory = subcategory

	for _, t := range strings.Split(tags, ",") {
		if t = strings.TrimSpace(t); t != "" {
			in.Tags = append(in.Tags, t)
		}
	}

	var err error
	if in.CardDifficulty, err = parseDifficulty(cardDiff); err != nil {
		return in, fmt.Errorf("--card-difficulty: %w", err)
	}
	if in.QuizDifficulty, err = parseDifficulty(quizDiff); err != nil {
		return in, fmt.Errorf("--quiz-difficulty: %w", err)
	}
	if in.QuizType, err = parseQuizType(quizType); err != nil {
		return in, fmt.Errorf("--quiz-type: %w", err)
	}

	if len(args) == 1 {
		in.SourceText, err = generate.ReadSource(args[0])
		if err != nil {
			return in, err
		}
	} else {
		raw, err := io.ReadAll(os.Stdin)
		if err != nil {
			return in, fmt.Errorf("read stdin: %w", err)
		}
		in.SourceText = generate.NormalizeSource(string(raw))
	}
	if in.SourceText == "" {
		return in, fmt.Errorf("source material is empty; pass a file or pipe text on stdin")
	}
	return in, nil
}

func parseDifficulty(s string) (content.Difficulty, error) {
	switch d := content.Difficulty(s); d {
	case content.DifficultyEasy, content.DifficultyMedium, content.DifficultyHard:
		return d, nil
	}
	return "", fmt.Errorf("%q is not one of easy, medium, hard", s)
}

func parseQuizType(s string) (content.QuizType, error) {
	switch t := content.QuizType(s); t {
	case content.QuizTypePatternSelection, content.QuizTypeAntiPatterns, content.QuizTypeBigO:
		return t, nil
	}
	return "", fmt.Errorf("%q is not one of pattern-selection, anti-patterns, big-o", s)
}

func init() {
	generateCmd.Flags().String("category", "algorithms", "Top-level category slug")
	generateCmd.Flags().String("subcategory", "", "Subcategory slug (required)")
	generateCmd.Flags().String("tags", "fundamentals", "Comma-separated frontmatter tags")
	generateCmd.Flags().String("card-difficulty", "easy", "Flashcard difficulty: easy, medium, hard")
	generateCmd.Flags().String("quiz-difficulty", "medium", "Quiz difficulty: easy, medium, hard")
	generateCmd.Flags().String("quiz-type", "pattern-selection", "Quiz style: pattern-selection, anti-patterns, big-o")
	generateCmd.Flags().Int("cards", 8, "Number of flashcards to generate")
	generateCmd.Flags().Int("questions", 10, "Number of quiz questions to generate")
	generateCmd.Flags().Bool("stdout", false, "Print the generated markdown instead of writing files")
}
