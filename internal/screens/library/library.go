// Package library lists the loaded quizzes or flashcard decks and
// launches the matching screen for the selected entry.
package library

import (
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/anupamd/revise/internal/content"
	"github.com/anupamd/revise/internal/identity"
	"github.com/anupamd/revise/internal/llm"
	"github.com/anupamd/revise/internal/router"
	"github.com/anupamd/revise/internal/screen"
	"github.com/anupamd/revise/internal/screens/quiz"
	"github.com/anupamd/revise/internal/screens/study"
	"github.com/anupamd/revise/internal/store"
	"github.com/anupamd/revise/internal/ui/layout"
	"github.com/anupamd/revise/internal/ui/theme"
)

// Mode selects which half of the corpus the screen lists.
type Mode int

const (
	ModeQuizzes Mode = iota
	ModeFlashcards
)

// Deps carries what the launched screens need.
type Deps struct {
	Corpus   *content.Corpus
	User     identity.User
	Repos    store.Repos
	Provider llm.Provider
}

type entry struct {
	id       string
	title    string
	category string
	detail   string
}

// LibraryScreen is a scrolling picker over one content kind.
type LibraryScreen struct {
	mode     Mode
	deps     Deps
	entries  []entry
	selected int
}

var _ screen.Screen = (*LibraryScreen)(nil)
var _ screen.KeyHintProvider = (*LibraryScreen)(nil)

func New(mode Mode, deps Deps) *LibraryScreen {
	s := &LibraryScreen{mode: mode, deps: deps}

	switch mode {
	case ModeQuizzes:
		for _, q := range deps.Corpus.Quizzes() {
			s.entries = append(s.entries, entry{
				id:       q.ID,
				title:    q.Title,
				category: fmt.Sprintf("%s / %s", q.Category, q.Subcategory),
				detail:   fmt.Sprintf("%d questions", len(q.Questions)),
			})
		}
	case ModeFlashcards:
		for _, g := range deps.Corpus.Groups() {
			s.entries = append(s.entries, entry{
				id:       g.ID,
				title:    g.Title,
				category: fmt.Sprintf("%s / %s", g.Category, g.Subcategory),
				detail:   fmt.Sprintf("%d cards", len(g.Cards)),
			})
		}
	}
	return s
}

func (s *LibraryScreen) Init() tea.Cmd {
	return nil
}

func (s *LibraryScreen) Title() string {
	if s.mode == ModeQuizzes {
		return "Quizzes"
	}
	return "Flashcards"
}

func (s *LibraryScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "↑↓", Description: "Navigate"},
		{Key: "Enter", Description: "Open"},
		{Key: "Esc", Description: "Back"},
	}
}

func (s *LibraryScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	kmsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return s, nil
	}

	switch kmsg.String() {
	case "esc":
		return s, func() tea.Msg { return router.PopScreenMsg{} }
	case "up", "k":
		if s.selected > 0 {
			s.selected--
		}
	case "down", "j":
		if s.selected < len(s.entries)-1 {
			s.selected++
		}
	case "enter":
		return s, s.open()
	}
	return s, nil
}

func (s *LibraryScreen) open() tea.Cmd {
	if s.selected < 0 || s.selected >= len(s.entries) {
		return nil
	}
	id := s.entries[s.selected].id

	switch s.mode {
	case ModeQuizzes:
		q, ok := s.deps.Corpus.Quiz(id)
		if !ok {
			return nil
		}
		return func() tea.Msg {
			return router.PushScreenMsg{Screen: quiz.New(quiz.Deps{
				Quiz:     q,
				User:     s.deps.User,
				Repos:    s.deps.Repos,
				Provider: s.deps.Provider,
			})}
		}
	case ModeFlashcards:
		g, ok := s.deps.Corpus.Group(id)
		if !ok {
			return nil
		}
		return func() tea.Msg {
			return router.PushScreenMsg{Screen: study.New(study.Deps{
				Group: g,
				User:  s.deps.User,
				Repos: s.deps.Repos,
			})}
		}
	}
	return nil
}

func (s *LibraryScreen) View(width, height int) string {
	if len(s.entries) == 0 {
		return lipgloss.NewStyle().
			Width(width).Align(lipgloss.Center).Foreground(theme.TextDim).Italic(true).
			Render("\n\n  Nothing here yet. Add markdown files to the content directory.")
	}

	var b strings.Builder
	b.WriteString("\n")

	for i, e := range s.entries {
		prefix := "  "
		style := lipgloss.NewStyle().Foreground(theme.Text)
		if i == s.selected {
			prefix = "▸ "
			style = style.Foreground(theme.Primary).Bold(true)
		}

		line := fmt.Sprintf("%s%-40s %-30s %s", prefix, e.title, e.category, e.detail)
		b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, style.Render(line)))
		b.WriteString("\n")
	}

	return b.String()
}
