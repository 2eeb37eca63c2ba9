// Package quiz drives one quiz attempt: answering with a free-text
// justification, optional AI verification of the reasoning, and the
// final results view.
package quiz

import (
	"context"

	tea "charm.land/bubbletea/v2"

	"github.com/anupamd/revise/internal/content"
	"github.com/anupamd/revise/internal/identity"
	"github.com/anupamd/revise/internal/llm"
	"github.com/anupamd/revise/internal/router"
	"github.com/anupamd/revise/internal/screen"
	sess "github.com/anupamd/revise/internal/session"
	"github.com/anupamd/revise/internal/store"
	"github.com/anupamd/revise/internal/ui/components"
	"github.com/anupamd/revise/internal/ui/layout"
	"github.com/anupamd/revise/internal/verify"
)

// Deps carries the quiz screen's dependencies. Repos may be nil
// (anonymous play), Provider may be nil (no verification).
type Deps struct {
	Quiz     *content.Quiz
	User     identity.User
	Repos    store.Repos
	Provider llm.Provider
}

// QuizScreen implements screen.Screen for a quiz attempt.
type QuizScreen struct {
	st       *sess.State
	verifier *verify.Orchestrator
	updates  chan verify.Update

	selected    int
	input       components.TextInput
	editing     bool
	quitConfirm bool
	errMsg      string
}

var _ screen.Screen = (*QuizScreen)(nil)
var _ screen.KeyHintProvider = (*QuizScreen)(nil)

// New creates a quiz screen. Verification is offered only when a
// provider is configured.
func New(deps Deps) *QuizScreen {
	s := &QuizScreen{
		input: newJustificationInput(),
	}

	if deps.Provider != nil {
		s.updates = make(chan verify.Update, 16)
		s.verifier = verify.New(deps.Provider, verify.DefaultConfig(), func(u verify.Update) {
			s.updates <- u
		})
	}

	var sessions store.SessionRepo
	var answers store.AnswerRepo
	if deps.Repos != nil {
		sessions = deps.Repos.Sessions()
		answers = deps.Repos.Answers()
	}

	s.st = sess.NewState(deps.Quiz, deps.User, sessions, answers, s.verifier, deps.Provider != nil)
	return s
}

func newJustificationInput() components.TextInput {
	return components.NewTextInput("Why is that your answer?", false, 200)
}

func (s *QuizScreen) Init() tea.Cmd {
	cmds := []tea.Cmd{
		s.initSession(),
		s.input.Init(),
	}
	if s.updates != nil {
		cmds = append(cmds, s.waitForUpdate())
	}
	return tea.Batch(cmds...)
}

func (s *QuizScreen) Title() string {
	return s.st.Quiz.Title
}

func (s *QuizScreen) initSession() tea.Cmd {
	return func() tea.Msg {
		return initDoneMsg{Err: sess.Init(context.Background(), s.st)}
	}
}

// waitForUpdate blocks on the verification channel and re-arms after
// every delivery.
func (s *QuizScreen) waitForUpdate() tea.Cmd {
	return func() tea.Msg {
		u, ok := <-s.updates
		if !ok {
			return updatesClosedMsg{}
		}
		return verifyUpdateMsg(u)
	}
}

func (s *QuizScreen) KeyHints() []layout.KeyHint {
	if s.quitConfirm {
		return []layout.KeyHint{
			{Key: "Y", Description: "Leave quiz"},
			{Key: "N", Description: "Keep going"},
		}
	}
	switch s.st.Phase {
	case sess.PhaseResumePrompt:
		return []layout.KeyHint{
			{Key: "Enter", Description: "Resume"},
			{Key: "F", Description: "Start fresh"},
			{Key: "Esc", Description: "Back"},
		}
	case sess.PhaseCompleted:
		return []layout.KeyHint{
			{Key: "R", Description: "Try again"},
			{Key: "Esc", Description: "Done"},
		}
	case sess.PhaseActive:
		if s.answered() {
			hints := []layout.KeyHint{
				{Key: "Enter", Description: "Next"},
				{Key: "←", Description: "Previous"},
				{Key: "E", Description: "Change answer"},
			}
			if s.verifier != nil {
				hints = append(hints,
					layout.KeyHint{Key: "V", Description: "Toggle check"},
					layout.KeyHint{Key: "Ctrl+R", Description: "Re-check"})
			}
			return hints
		}
		return []layout.KeyHint{
			{Key: "↑↓", Description: "Choose"},
			{Key: "Enter", Description: "Submit"},
			{Key: "Esc", Description: "Quit"},
		}
	}
	return nil
}

// answered reports whether the current question has a stored result and
// is not being re-edited.
func (s *QuizScreen) answered() bool {
	return !s.editing && s.st.CurrentResult() != nil
}

func (s *QuizScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case initDoneMsg:
		if msg.Err != nil {
			s.errMsg = msg.Err.Error()
		}
		return s, nil

	case verifyUpdateMsg:
		if err := sess.ApplyVerification(context.Background(), s.st, verify.Update(msg)); err != nil {
			s.errMsg = err.Error()
			return s, nil
		}
		return s, s.waitForUpdate()

	case updatesClosedMsg:
		return s, nil

	case tea.KeyMsg:
		return s.handleKey(msg)
	}

	// Everything else feeds the justification input while answering.
	if s.st.Phase == sess.PhaseActive && !s.answered() && !s.quitConfirm {
		var cmd tea.Cmd
		s.input, cmd = s.input.Update(msg)
		return s, cmd
	}

	return s, nil
}

func (s *QuizScreen) handleKey(msg tea.KeyMsg) (screen.Screen, tea.Cmd) {
	key := msg.String()
	ctx := context.Background()

	if s.errMsg != "" {
		return s, s.leave()
	}

	if s.quitConfirm {
		switch key {
		case "y", "Y":
			return s, s.leave()
		case "n", "N", "esc":
			s.quitConfirm = false
		}
		return s, nil
	}

	switch s.st.Phase {
	case sess.PhaseUninitialized, sess.PhaseResolving:
		return s, nil

	case sess.PhaseResumePrompt:
		switch key {
		case "enter", "r", "R":
			if err := sess.Resume(s.st); err != nil {
				s.errMsg = err.Error()
				return s, nil
			}
			s.enterQuestion()
		case "f", "F":
			if err := sess.StartFresh(ctx, s.st); err != nil {
				s.errMsg = err.Error()
				return s, nil
			}
			s.enterQuestion()
		case "esc":
			return s, s.leave()
		}
		return s, nil

	case sess.PhaseCompleted:
		switch key {
		case "r", "R":
			if err := sess.Restart(ctx, s.st); err != nil {
				s.errMsg = err.Error()
				return s, nil
			}
			s.enterQuestion()
			return s, nil
		case "esc", "enter", "q":
			return s, s.leave()
		}
		return s, nil

	case sess.PhaseActive:
		if s.answered() {
			return s.handleFeedbackKey(ctx, key)
		}
		return s.handleAnswerKey(ctx, key, msg)
	}

	return s, nil
}

func (s *QuizScreen) handleFeedbackKey(ctx context.Context, key string) (screen.Screen, tea.Cmd) {
	switch key {
	case "enter", "n", "right":
		if err := sess.Next(ctx, s.st); err != nil {
			s.errMsg = err.Error()
			return s, nil
		}
		if s.st.Phase == sess.PhaseActive {
			s.enterQuestion()
		}
	case "p", "left":
		if s.st.Current > 0 {
			if err := sess.Previous(ctx, s.st); err != nil {
				s.errMsg = err.Error()
				return s, nil
			}
			s.enterQuestion()
		}
	case "e", "E":
		s.startEdit()
	case "v", "V":
		if s.verifier != nil {
			if err := sess.ToggleVerification(ctx, s.st); err != nil {
				s.errMsg = err.Error()
			}
		}
	case "ctrl+r":
		if s.verifier != nil && s.st.VerificationEnabled {
			s.verifier.Retry(ctx)
		}
	case "esc":
		s.quitConfirm = true
	}
	return s, nil
}

func (s *QuizScreen) handleAnswerKey(ctx context.Context, key string, msg tea.KeyMsg) (screen.Screen, tea.Cmd) {
	q := s.st.CurrentQuestion()
	if q == nil {
		return s, nil
	}

	switch key {
	case "esc":
		s.quitConfirm = true
		return s, nil
	case "up":
		if s.selected > 0 {
			s.selected--
		}
		return s, nil
	case "down":
		if s.selected < len(q.Options)-1 {
			s.selected++
		}
		return s, nil
	case "enter":
		return s.submit(ctx, q)
	}

	// Remaining keys type into the justification field.
	var cmd tea.Cmd
	s.input, cmd = s.input.Update(msg)
	return s, cmd
}

func (s *QuizScreen) submit(ctx context.Context, q *content.Question) (screen.Screen, tea.Cmd) {
	if s.selected < 0 || s.selected >= len(q.Options) {
		return s, nil
	}
	label := q.Options[s.selected].Label

	if _, err := sess.SubmitAnswer(ctx, s.st, label, s.input.Value()); err != nil {
		s.errMsg = err.Error()
		return s, nil
	}
	s.editing = false
	return s, nil
}

// enterQuestion resets the answering widgets for the question at the
// current position.
func (s *QuizScreen) enterQuestion() {
	s.selected = 0
	s.editing = false
	s.input = newJustificationInput()
}

// startEdit switches an answered question back into answering mode with
// the stored answer prefilled.
func (s *QuizScreen) startEdit() {
	r := s.st.CurrentResult()
	q := s.st.CurrentQuestion()
	if r == nil || q == nil {
		return
	}
	s.editing = true
	s.selected = 0
	for i, o := range q.Options {
		if o.Label == r.SelectedAnswer {
			s.selected = i
			break
		}
	}
	s.input = newJustificationInput()
	s.input.Model.SetValue(r.Justification)
}

// leave pops the screen. An in-progress session is left as is so it can
// be resumed later.
func (s *QuizScreen) leave() tea.Cmd {
	if s.verifier != nil {
		s.verifier.Invalidate()
	}
	return func() tea.Msg { return router.PopScreenMsg{} }
}

func (s *QuizScreen) View(width, height int) string {
	if s.errMsg != "" {
		return renderError(width, height, s.errMsg)
	}
	if s.quitConfirm {
		return renderQuitConfirm(width, height, s.st.SessionID != "")
	}

	switch s.st.Phase {
	case sess.PhaseUninitialized, sess.PhaseResolving:
		return renderLoading(width, height)
	case sess.PhaseResumePrompt:
		return s.renderResumePrompt(width, height)
	case sess.PhaseCompleted:
		return s.renderResults(width, height)
	}

	if s.answered() {
		return s.renderFeedback(width, height)
	}
	return s.renderQuestion(width, height)
}
