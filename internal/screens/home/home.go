package home

import (
	"context"
	"strings"

	tea "charm.land/bubbletea/v2"

	"github.com/anupamd/revise/internal/activity"
	"github.com/anupamd/revise/internal/content"
	"github.com/anupamd/revise/internal/identity"
	"github.com/anupamd/revise/internal/llm"
	"github.com/anupamd/revise/internal/router"
	"github.com/anupamd/revise/internal/screen"
	"github.com/anupamd/revise/internal/screens/history"
	"github.com/anupamd/revise/internal/screens/library"
	"github.com/anupamd/revise/internal/store"
	"github.com/anupamd/revise/internal/ui/components"
)

// Deps carries everything the home screen hands down to child screens.
type Deps struct {
	Corpus   *content.Corpus
	User     identity.User
	Repos    store.Repos
	Provider llm.Provider
}

// HomeScreen is the main menu.
type HomeScreen struct {
	deps       Deps
	menu       components.Menu
	menuLabels []string
	disabled   map[int]bool
	streak     int
	quizCount  int
	deckCount  int
}

var _ screen.Screen = (*HomeScreen)(nil)

// streakLoadedMsg delivers the stats-bar streak.
type streakLoadedMsg int

// New creates the home screen over a loaded corpus.
func New(deps Deps) *HomeScreen {
	quizCount := len(deps.Corpus.Quizzes())
	deckCount := len(deps.Corpus.Groups())

	menuLabels := []string{"QUIZZES", "FLASHCARDS", "HISTORY", "EXIT"}
	disabled := map[int]bool{
		0: quizCount == 0,
		1: deckCount == 0,
		2: deps.Repos == nil || deps.User.Anonymous(),
	}

	items := []components.MenuItem{
		{Label: menuLabels[0], Disabled: disabled[0], Action: func() tea.Cmd {
			return func() tea.Msg {
				return router.PushScreenMsg{Screen: library.New(library.ModeQuizzes, libraryDeps(deps))}
			}
		}},
		{Label: menuLabels[1], Disabled: disabled[1], Action: func() tea.Cmd {
			return func() tea.Msg {
				return router.PushScreenMsg{Screen: library.New(library.ModeFlashcards, libraryDeps(deps))}
			}
		}},
		{Label: menuLabels[2], Disabled: disabled[2], Action: func() tea.Cmd {
			return func() tea.Msg {
				return router.PushScreenMsg{Screen: history.New(deps.User, deps.Repos.Sessions(), deps.Corpus)}
			}
		}},
		{Label: menuLabels[3], Action: func() tea.Cmd {
			return tea.Quit
		}},
	}

	return &HomeScreen{
		deps:       deps,
		menu:       components.NewMenu(items),
		menuLabels: menuLabels,
		disabled:   disabled,
		quizCount:  quizCount,
		deckCount:  deckCount,
	}
}

func libraryDeps(deps Deps) library.Deps {
	return library.Deps{
		Corpus:   deps.Corpus,
		User:     deps.User,
		Repos:    deps.Repos,
		Provider: deps.Provider,
	}
}

func (h *HomeScreen) Init() tea.Cmd {
	if h.deps.Repos == nil || h.deps.User.Anonymous() {
		return nil
	}
	repo := h.deps.Repos.Activity()
	userID := h.deps.User.ID
	return func() tea.Msg {
		n, err := activity.NewService(repo).Streak(context.Background(), userID)
		if err != nil {
			return streakLoadedMsg(0)
		}
		return streakLoadedMsg(n)
	}
}

func (h *HomeScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	if n, ok := msg.(streakLoadedMsg); ok {
		h.streak = int(n)
		return h, nil
	}
	var cmd tea.Cmd
	h.menu, cmd = h.menu.Update(msg)
	return h, cmd
}

func (h *HomeScreen) View(width, height int) string {
	// height is the content area; estimate full terminal height by
	// adding back header (3) + footer (3) + frame gaps.
	termHeight := height + 8
	compact := termHeight < 30 || width < 100

	// All sections share a uniform content width so they line up.
	cw := contentWidth(width)

	var sections []string

	sections = append(sections, renderTitle(cw, compact))
	sections = append(sections, renderStatsBar(h.streak, h.quizCount, h.deckCount, cw, compact))

	if compact {
		sections = append(sections, renderArcadeMenuCompact(h.menuLabels, h.menu.Selected, cw, h.disabled))
	} else {
		sections = append(sections, renderArcadeMenu(h.menuLabels, h.menu.Selected, cw, h.disabled))
	}

	if h.deps.Provider == nil {
		sections = append(sections, renderLLMBanner(cw))
	}

	content := strings.Join(sections, "\n\n")

	return renderCabinetFrame(content, width, height)
}

func (h *HomeScreen) Title() string {
	return "Home"
}
