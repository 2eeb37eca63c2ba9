package cmd

import (
	"errors"

	"github.com/anupamd/revise/internal/app"
	"github.com/anupamd/revise/internal/screen"
	"github.com/anupamd/revise/internal/screens/history"
	"github.com/spf13/cobra"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Browse completed quiz attempts",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runApp(cmd, func(opts app.Options) (screen.Screen, error) {
			if opts.Repos == nil {
				return nil, errors.New("history requires a signed-in user (set REVISE_USER)")
			}
			return history.New(opts.User, opts.Repos.Sessions(), opts.Corpus), nil
		})
	},
}
