package cmd

import (
	"fmt"

	"github.com/anupamd/revise/internal/content"
	"github.com/spf13/cobra"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check every content file for parse and validation errors",
	RunE: func(cmd *cobra.Command, args []string) error {
		dir := resolveContentDir(cmd)

		issues, err := content.Validate(dir)
		if err != nil {
			return fmt.Errorf("walk %s: %w", dir, err)
		}

		corpus, err := content.LoadCorpus(dir)
		if err != nil {
			return fmt.Errorf("load %s: %w", dir, err)
		}

		fmt.Printf("%d flashcard decks, %d quizzes\n",
			len(corpus.Groups()), len(corpus.Quizzes()))

		if len(issues) == 0 {
			fmt.Println("All content files are valid.")
			return nil
		}

		for _, issue := range issues {
			fmt.Printf("  %s: %v\n", issue.Path, issue.Err)
		}
		return fmt.Errorf("%d invalid content file(s)", len(issues))
	},
}
