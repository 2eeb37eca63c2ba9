package cmd

import (
	"fmt"
	"os"

	"github.com/anupamd/revise/internal/app"
	"github.com/anupamd/revise/internal/content"
	"github.com/anupamd/revise/internal/identity"
	"github.com/anupamd/revise/internal/llm"
	"github.com/anupamd/revise/internal/screen"
	"github.com/anupamd/revise/internal/store"
	"github.com/spf13/cobra"
)

// runApp loads the corpus, opens the store, builds dependencies, and
// launches the TUI on the given initial screen (nil for home).
func runApp(cmd *cobra.Command, initial func(app.Options) (screen.Screen, error)) error {
	ctx := cmd.Context()

	corpus, err := loadCorpus(cmd)
	if err != nil {
		return err
	}

	user := identity.Current()

	opts := app.Options{
		Corpus: corpus,
		User:   user,
	}

	if !user.Anonymous() {
		dbPath, err := resolveDBPath(cmd)
		if err != nil {
			return fmt.Errorf("resolve DB path: %w", err)
		}
		st, err := store.Open(dbPath)
		if err != nil {
			return fmt.Errorf("open store: %w", err)
		}
		defer st.Close()
		opts.Repos = st
	}

	var eventRepo store.EventRepo
	if st, ok := opts.Repos.(*store.Store); ok {
		eventRepo = st.Events()
	}
	provider, err := llm.NewProviderFromEnv(ctx, eventRepo)
	if err != nil {
		fmt.Fprintln(os.Stderr, "LLM provider not configured:", err)
		fmt.Fprintln(os.Stderr, "Answer checking will be unavailable.")
	} else {
		opts.Provider = provider
	}

	if initial != nil {
		scr, err := initial(opts)
		if err != nil {
			return err
		}
		opts.Initial = scr
	}

	return app.Run(opts)
}

// loadCorpus parses the markdown content directory.
func loadCorpus(cmd *cobra.Command) (*content.Corpus, error) {
	dir := resolveContentDir(cmd)
	corpus, err := content.LoadCorpus(dir)
	if err != nil {
		return nil, fmt.Errorf("load content from %s: %w", dir, err)
	}
	return corpus, nil
}

// resolveContentDir returns the content directory using the --content
// flag, then REVISE_CONTENT, then ./content.
func resolveContentDir(cmd *cobra.Command) string {
	if d, _ := cmd.Flags().GetString("content"); d != "" {
		return d
	}
	if d := os.Getenv("REVISE_CONTENT"); d != "" {
		return d
	}
	return "content"
}
