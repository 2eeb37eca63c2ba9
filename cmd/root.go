package cmd

import (
	"github.com/anupamd/revise/internal/store"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "revise",
	Short: "Terminal study app for flashcards and quizzes",
	Long: `Revise — a terminal study app that serves markdown-authored flashcard
decks and multiple-choice quizzes, with optional AI checking of the
reasoning behind each quiz answer.

Identity comes from REVISE_USER; unset means anonymous play with no
saved progress. Set GEMINI_API_KEY, OPENAI_API_KEY, ANTHROPIC_API_KEY
or OPENROUTER_API_KEY to enable answer checking.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runApp(cmd, nil)
	},
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().String("db", "", "Path to SQLite database file (overrides REVISE_DB env var)")
	rootCmd.PersistentFlags().String("content", "", "Path to markdown content directory (overrides REVISE_CONTENT env var)")

	rootCmd.AddCommand(quizCmd)
	rootCmd.AddCommand(studyCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(validateCmd)
	rootCmd.AddCommand(generateCmd)
	rootCmd.AddCommand(llmCmd)
	rootCmd.AddCommand(versionCmd)
}

// resolveDBPath returns the database path using --db flag (highest priority),
// then REVISE_DB env var, then the default XDG path.
func resolveDBPath(cmd *cobra.Command) (string, error) {
	if p, _ := cmd.Flags().GetString("db"); p != "" {
		return p, store.EnsureDir(p)
	}
	return store.DefaultDBPath()
}
