package cmd

import (
	"fmt"

	"github.com/anupamd/revise/internal/app"
	"github.com/anupamd/revise/internal/screen"
	"github.com/anupamd/revise/internal/screens/quiz"
	"github.com/spf13/cobra"
)

var quizCmd = &cobra.Command{
	Use:   "quiz <id>",
	Short: "Start a quiz directly by content ID",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id := args[0]
		return runApp(cmd, func(opts app.Options) (screen.Screen, error) {
			q, ok := opts.Corpus.Quiz(id)
			if !ok {
				return nil, fmt.Errorf("no quiz with ID %q", id)
			}
			return quiz.New(quiz.Deps{
				Quiz:     q,
				User:     opts.User,
				Repos:    opts.Repos,
				Provider: opts.Provider,
			}), nil
		})
	},
}
