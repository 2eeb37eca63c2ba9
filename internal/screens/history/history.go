package history

import (
	"context"
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"

	"charm.land/lipgloss/v2"

	"github.com/anupamd/revise/internal/content"
	"github.com/anupamd/revise/internal/identity"
	"github.com/anupamd/revise/internal/router"
	"github.com/anupamd/revise/internal/screen"
	"github.com/anupamd/revise/internal/store"
	"github.com/anupamd/revise/internal/ui/layout"
	"github.com/anupamd/revise/internal/ui/theme"
)

type historyLoadedMsg struct {
	Sessions []*store.QuizSession
	Err      error
}

// HistoryScreen lists completed quiz attempts, most recent first.
type HistoryScreen struct {
	user     identity.User
	sessions store.SessionRepo
	corpus   *content.Corpus
	records  []*store.QuizSession
	selected int
	loaded   bool
	errMsg   string
}

var _ screen.Screen = (*HistoryScreen)(nil)
var _ screen.KeyHintProvider = (*HistoryScreen)(nil)

// New creates a new HistoryScreen.
func New(user identity.User, sessions store.SessionRepo, corpus *content.Corpus) *HistoryScreen {
	return &HistoryScreen{
		user:     user,
		sessions: sessions,
		corpus:   corpus,
	}
}

func (s *HistoryScreen) Init() tea.Cmd {
	return func() tea.Msg {
		records, err := s.sessions.CompletedByUser(context.Background(), s.user.ID, "")
		if err != nil {
			return historyLoadedMsg{Err: err}
		}
		return historyLoadedMsg{Sessions: records}
	}
}

func (s *HistoryScreen) Title() string {
	return "History"
}

func (s *HistoryScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "↑↓", Description: "Navigate"},
		{Key: "Esc", Description: "Back"},
	}
}

func (s *HistoryScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case historyLoadedMsg:
		if msg.Err != nil {
			s.errMsg = msg.Err.Error()
		} else {
			s.records = msg.Sessions
		}
		s.loaded = true
		return s, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "esc", "q":
			return s, func() tea.Msg { return router.PopScreenMsg{} }
		case "up", "k":
			if s.selected > 0 {
				s.selected--
			}
			return s, nil
		case "down", "j":
			if s.selected < len(s.records)-1 {
				s.selected++
			}
			return s, nil
		}
	}
	return s, nil
}

func (s *HistoryScreen) View(width, height int) string {
	if s.errMsg != "" {
		return lipgloss.NewStyle().
			Width(width).Align(lipgloss.Center).Foreground(theme.Error).
			Render(fmt.Sprintf("\n\nError: %s", s.errMsg))
	}
	if !s.loaded {
		return lipgloss.NewStyle().
			Width(width).Align(lipgloss.Center).Foreground(theme.TextDim).
			Render("\n\n  Loading history...")
	}
	if len(s.records) == 0 {
		return lipgloss.NewStyle().
			Width(width).Align(lipgloss.Center).Foreground(theme.TextDim).Italic(true).
			Render("\n\n  No completed quizzes yet. Go take one!")
	}

	var b strings.Builder
	b.WriteString("\n")

	for i, rec := range s.records {
		dateStr := rec.CompletedAt.Format("Jan 02, 2006")

		title := rec.QuizID
		if q, ok := s.corpus.Quiz(rec.QuizID); ok {
			title = q.Title
		}
		if len(title) > 36 {
			title = title[:33] + "..."
		}

		var accuracy float64
		if rec.TotalQuestions > 0 {
			accuracy = float64(rec.CorrectCount) / float64(rec.TotalQuestions) * 100
		}

		checked := ""
		if rec.VerificationEnabled {
			checked = "  ai-checked"
		}

		prefix := "  "
		if i == s.selected {
			prefix = "▸ "
		}

		line := fmt.Sprintf("%s%s  %-36s  %d/%d  %.0f%%%s",
			prefix, dateStr, title, rec.CorrectCount, rec.TotalQuestions, accuracy, checked)

		style := lipgloss.NewStyle().Foreground(theme.Text)
		if i == s.selected {
			style = style.Foreground(theme.Primary).Bold(true)
		}
		b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center,
			style.Render(line)))
		b.WriteString("\n")
	}

	return b.String()
}
