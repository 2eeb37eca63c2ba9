package cmd

import (
	"fmt"

	"github.com/anupamd/revise/internal/app"
	"github.com/anupamd/revise/internal/screen"
	"github.com/anupamd/revise/internal/screens/study"
	"github.com/spf13/cobra"
)

var studyCmd = &cobra.Command{
	Use:   "study <id>",
	Short: "Open a flashcard deck directly by content ID",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id := args[0]
		return runApp(cmd, func(opts app.Options) (screen.Screen, error) {
			g, ok := opts.Corpus.Group(id)
			if !ok {
				return nil, fmt.Errorf("no flashcard deck with ID %q", id)
			}
			return study.New(study.Deps{
				Group: g,
				User:  opts.User,
				Repos: opts.Repos,
			}), nil
		})
	},
}
