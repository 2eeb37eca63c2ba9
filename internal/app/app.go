package app

import (
	"context"
	"fmt"
	"os"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/anupamd/revise/internal/activity"
	"github.com/anupamd/revise/internal/content"
	"github.com/anupamd/revise/internal/identity"
	"github.com/anupamd/revise/internal/llm"
	"github.com/anupamd/revise/internal/router"
	"github.com/anupamd/revise/internal/screen"
	"github.com/anupamd/revise/internal/screens/home"
	"github.com/anupamd/revise/internal/store"
	"github.com/anupamd/revise/internal/ui/layout"
)

// Options carries the dependencies the TUI runs with. Repos is nil for
// anonymous runs, Provider is nil when no LLM is configured.
type Options struct {
	Corpus   *content.Corpus
	User     identity.User
	Repos    store.Repos
	Provider llm.Provider

	// Initial overrides the home screen as the first screen.
	Initial screen.Screen
}

// AppModel is the root Bubble Tea model.
type AppModel struct {
	router *router.Router
	user   identity.User
	repos  store.Repos
	streak int
	width  int
	height int
}

// streakMsg delivers the header streak count.
type streakMsg int

func newAppModel(opts Options) AppModel {
	initial := opts.Initial
	if initial == nil {
		initial = home.New(home.Deps{
			Corpus:   opts.Corpus,
			User:     opts.User,
			Repos:    opts.Repos,
			Provider: opts.Provider,
		})
	}
	return AppModel{
		router: router.New(initial),
		user:   opts.User,
		repos:  opts.Repos,
	}
}

func (m AppModel) Init() tea.Cmd {
	cmds := []tea.Cmd{m.loadStreak()}
	if active := m.router.Active(); active != nil {
		cmds = append(cmds, active.Init())
	}
	return tea.Batch(cmds...)
}

func (m AppModel) loadStreak() tea.Cmd {
	if m.repos == nil || m.user.Anonymous() {
		return nil
	}
	repo := m.repos.Activity()
	userID := m.user.ID
	return func() tea.Msg {
		n, err := activity.NewService(repo).Streak(context.Background(), userID)
		if err != nil {
			return streakMsg(0)
		}
		return streakMsg(n)
	}
}

func (m AppModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case streakMsg:
		m.streak = int(msg)
		return m, nil

	// Completing a quiz can extend the streak, so refresh whenever a
	// screen is popped.
	case router.PopScreenMsg:
		cmd := m.router.Update(msg)
		return m, tea.Batch(cmd, m.loadStreak())

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
	}

	cmd := m.router.Update(msg)
	return m, cmd
}

func (m AppModel) View() tea.View {
	v := tea.NewView("")
	v.AltScreen = true

	if m.width == 0 || m.height == 0 {
		return v
	}

	if layout.IsTooSmall(m.width, m.height) {
		v.SetContent(layout.RenderMinSizeMessage(m.width, m.height))
		return v
	}

	active := m.router.Active()
	title := ""
	if active != nil {
		title = active.Title()
	}

	header := layout.RenderHeader(title, m.streak, m.width)

	var footerHints []layout.KeyHint
	if hp, ok := active.(screen.KeyHintProvider); ok {
		footerHints = hp.KeyHints()
	}
	if footerHints == nil {
		if m.router.Depth() > 1 {
			footerHints = []layout.KeyHint{
				{Key: "Esc", Description: "Back"},
				{Key: "Ctrl+C", Description: "Quit"},
			}
		} else {
			footerHints = []layout.KeyHint{
				{Key: "↑↓", Description: "Navigate"},
				{Key: "Enter", Description: "Select"},
				{Key: "Ctrl+C", Description: "Quit"},
			}
		}
	}

	footer := layout.RenderFooter(footerHints, m.width)

	headerHeight := lipgloss.Height(header)
	footerHeight := lipgloss.Height(footer)
	contentHeight := m.height - headerHeight - footerHeight
	if contentHeight < 0 {
		contentHeight = 0
	}

	content := m.router.View(m.width, contentHeight)
	frame := layout.RenderFrame(header, content, footer, m.width, m.height)

	v.SetContent(frame)
	return v
}

// Run starts the Bubble Tea program.
func Run(opts Options) error {
	p := tea.NewProgram(newAppModel(opts))
	_, err := p.Run()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error running program:", err)
		return err
	}
	return nil
}
