// Package study pages through a flashcard deck, revealing backs on
// demand and tracking reveal progress per deck.
package study

import (
	"context"
	"fmt"
	"strings"
	"time"

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

// Deps carries the study screen's dependencies. Repos may be nil, in
// which case reveals are session-local only.
type Deps struct {
	Group *content.FlashcardGroup
	User  identity.User
	Repos store.Repos
}

// studyLoadedMsg delivers the persisted study session, if any.
type studyLoadedMsg struct {
	SessionID string
	Revealed  map[int]bool
	Err       error
}

// revealSavedMsg confirms one reveal write.
type revealSavedMsg struct {
	Err error
}

// StudyScreen implements screen.Screen for one deck.
type StudyScreen struct {
	group    *content.FlashcardGroup
	user     identity.User
	studies  store.StudyRepo
	loaded   bool
	session  string
	current  int
	revealed map[int]bool
	errMsg   string
}

var _ screen.Screen = (*StudyScreen)(nil)
var _ screen.KeyHintProvider = (*StudyScreen)(nil)

func New(deps Deps) *StudyScreen {
	s := &StudyScreen{
		group:    deps.Group,
		user:     deps.User,
		revealed: make(map[int]bool),
	}
	if deps.Repos != nil && !deps.User.Anonymous() {
		s.studies = deps.Repos.Study()
	}
	return s
}

func (s *StudyScreen) Init() tea.Cmd {
	if s.studies == nil {
		s.loaded = true
		return nil
	}
	return func() tea.Msg {
		ctx := context.Background()

		study, err := s.studies.ActiveStudy(ctx, s.user.ID, s.group.ID)
		if err != nil {
			return studyLoadedMsg{Err: err}
		}
		if study == nil {
			study, err = s.studies.StartStudy(ctx, s.user.ID, s.group.ID, len(s.group.Cards), time.Now())
			if err != nil {
				return studyLoadedMsg{Err: err}
			}
		}

		reveals, err := s.studies.ListReveals(ctx, s.user.ID, study.ID)
		if err != nil {
			return studyLoadedMsg{Err: err}
		}
		revealed := make(map[int]bool, len(reveals))
		for _, r := range reveals {
			if r.CardIndex < len(s.group.Cards) {
				revealed[r.CardIndex] = true
			}
		}
		return studyLoadedMsg{SessionID: study.ID, Revealed: revealed}
	}
}

func (s *StudyScreen) Title() string {
	return s.group.Title
}

func (s *StudyScreen) KeyHints() []layout.KeyHint {
	hints := []layout.KeyHint{
		{Key: "Space", Description: "Reveal"},
		{Key: "←→", Description: "Card"},
		{Key: "Esc", Description: "Back"},
	}
	return hints
}

func (s *StudyScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case studyLoadedMsg:
		if msg.Err != nil {
			s.errMsg = msg.Err.Error()
		} else {
			s.session = msg.SessionID
			for i := range msg.Revealed {
				s.revealed[i] = true
			}
		}
		s.loaded = true
		return s, nil

	case revealSavedMsg:
		if msg.Err != nil {
			s.errMsg = msg.Err.Error()
		}
		return s, nil

	case tea.KeyMsg:
		return s.handleKey(msg)
	}
	return s, nil
}

func (s *StudyScreen) handleKey(msg tea.KeyMsg) (screen.Screen, tea.Cmd) {
	if s.errMsg != "" {
		return s, func() tea.Msg { return router.PopScreenMsg{} }
	}

	switch msg.String() {
	case "esc", "q":
		return s, func() tea.Msg { return router.PopScreenMsg{} }
	case "left", "h", "p":
		if s.current > 0 {
			s.current--
		}
	case "right", "l", "n":
		if s.current < len(s.group.Cards)-1 {
			s.current++
		}
	case "space", " ", "enter":
		return s, s.reveal()
	}
	return s, nil
}

// reveal flips the current card and persists the reveal. Re-revealing
// only refreshes the stored timestamp.
func (s *StudyScreen) reveal() tea.Cmd {
	idx := s.current
	s.revealed[idx] = true

	if s.studies == nil || s.session == "" {
		return nil
	}
	sessionID := s.session
	return func() tea.Msg {
		err := s.studies.RecordReveal(context.Background(), s.user.ID, sessionID, idx, time.Now())
		return revealSavedMsg{Err: err}
	}
}

func (s *StudyScreen) View(width, height int) string {
	if s.errMsg != "" {
		return lipgloss.NewStyle().
			Width(width).
			Align(lipgloss.Center).
			Foreground(theme.Error).
			Render(fmt.Sprintf("\n\n\n  Error: %s\n\n  Press any key to go back.", s.errMsg))
	}
	if !s.loaded {
		return lipgloss.NewStyle().
			Width(width).
			Align(lipgloss.Center).
			Foreground(theme.TextDim).
			Render("\n\n\n  Opening deck...")
	}
	if len(s.group.Cards) == 0 {
		return lipgloss.NewStyle().
			Width(width).
			Align(lipgloss.Center).
			Foreground(theme.TextDim).
			Italic(true).
			Render("\n\n\n  This deck has no cards.")
	}

	card := s.group.Cards[s.current]

	var b strings.Builder
	b.WriteString("\n")

	b.WriteString(lipgloss.NewStyle().
		Width(width).
		Align(lipgloss.Center).
		Foreground(theme.TextDim).
		Render(fmt.Sprintf("Card %d of %d  ·  %d revealed",
			s.current+1, len(s.group.Cards), len(s.revealed))))
	b.WriteString("\n\n")

	cardStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(theme.Primary).
		Width(min(width-8, 70)).
		Padding(1, 2).
		Align(lipgloss.Center)

	front := lipgloss.NewStyle().Foreground(theme.Text).Bold(true).Render(card.Front)
	b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, cardStyle.Render(front)))
	b.WriteString("\n\n")

	if s.revealed[s.current] {
		backStyle := lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(theme.Secondary).
			Width(min(width-8, 70)).
			Padding(1, 2)
		back := lipgloss.NewStyle().Foreground(theme.Text).Render(card.Back)
		b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, backStyle.Render(back)))
	} else {
		b.WriteString(lipgloss.NewStyle().
			Width(width).
			Align(lipgloss.Center).
			Foreground(theme.TextDim).
			Italic(true).
			Render("Space to reveal"))
	}

	return b.String()
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}
