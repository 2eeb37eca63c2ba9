package quiz

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/anupamd/revise/internal/store"
	"github.com/anupamd/revise/internal/ui/components"
	"github.com/anupamd/revise/internal/ui/theme"
)

// renderQuestion renders the answering view: options above, the
// justification field below.
func (s *QuizScreen) renderQuestion(width, height int) string {
	q := s.st.CurrentQuestion()
	if q == nil {
		return renderLoading(width, height)
	}

	var b strings.Builder

	infoLeft := lipgloss.NewStyle().
		Foreground(theme.Secondary).
		Bold(true).
		Render(fmt.Sprintf("  %s", s.st.Quiz.Title))

	infoRight := lipgloss.NewStyle().
		Foreground(theme.TextDim).
		Render(fmt.Sprintf("Q %d/%d  answered %d",
			s.st.Current+1,
			len(s.st.Quiz.Questions),
			s.st.AnsweredCount(),
		))

	infoLine := infoLeft
	rightPad := width - lipgloss.Width(infoLeft) - lipgloss.Width(infoRight) - 4
	if rightPad > 0 {
		infoLine += strings.Repeat(" ", rightPad) + infoRight
	}

	b.WriteString(infoLine)
	b.WriteString("\n")
	b.WriteString(lipgloss.NewStyle().Foreground(theme.Border).Render(strings.Repeat("─", width-4)))
	b.WriteString("\n\n")

	questionStyle := lipgloss.NewStyle().
		Width(width).
		Align(lipgloss.Center).
		Foreground(theme.Text).
		Bold(true)
	b.WriteString(questionStyle.Render(q.Question))
	b.WriteString("\n\n")

	// Options.
	var opts strings.Builder
	for i, o := range q.Options {
		prefix := "  "
		if i == s.selected {
			prefix = "▸ "
		}
		line := fmt.Sprintf("%s%s) %s", prefix, o.Label, o.Text)

		if i == s.selected {
			opts.WriteString(lipgloss.NewStyle().Foreground(theme.Primary).Bold(true).Render(line))
		} else {
			opts.WriteString(lipgloss.NewStyle().Foreground(theme.Text).Render(line))
		}
		opts.WriteString("\n")
	}
	b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, opts.String()))
	b.WriteString("\n")

	// Justification field.
	justLine := lipgloss.NewStyle().
		Width(width).
		Align(lipgloss.Center).
		Render("Reasoning: " + s.input.View())
	b.WriteString(justLine)
	b.WriteString("\n")
	b.WriteString(lipgloss.NewStyle().
		Width(width).
		Align(lipgloss.Center).
		Foreground(theme.TextDim).
		Render("Arrows choose an option, type your reasoning, Enter submits"))

	return b.String()
}

// renderFeedback renders an answered question: grade, explanation and
// the verification panel.
func (s *QuizScreen) renderFeedback(width, height int) string {
	q := s.st.CurrentQuestion()
	r := s.st.CurrentResult()
	if q == nil || r == nil {
		return renderLoading(width, height)
	}

	var b strings.Builder
	b.WriteString("\n\n")

	if r.IsCorrect {
		b.WriteString(lipgloss.NewStyle().
			Width(width).
			Align(lipgloss.Center).
			Foreground(theme.Success).
			Bold(true).
			Render("Correct!"))
	} else {
		b.WriteString(lipgloss.NewStyle().
			Width(width).
			Align(lipgloss.Center).
			Foreground(theme.Error).
			Bold(true).
			Render("Not quite"))
		b.WriteString("\n")
		b.WriteString(lipgloss.NewStyle().
			Width(width).
			Align(lipgloss.Center).
			Foreground(theme.TextDim).
			Render(fmt.Sprintf("Correct answer: %s", q.Answer)))
	}

	b.WriteString("\n")
	b.WriteString(lipgloss.NewStyle().
		Width(width).
		Align(lipgloss.Center).
		Foreground(theme.TextDim).
		Render(fmt.Sprintf("You chose %s — %q", r.SelectedAnswer, r.Justification)))
	b.WriteString("\n\n")

	if q.Explanation != "" {
		expStyle := lipgloss.NewStyle().
			Width(min(width-8, 70)).
			Foreground(theme.Text)
		b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, expStyle.Render(q.Explanation)))
		b.WriteString("\n\n")
	}

	if panel := s.renderVerification(width, r.Verification); panel != "" {
		b.WriteString(panel)
		b.WriteString("\n")
	}

	b.WriteString(lipgloss.NewStyle().
		Width(width).
		Align(lipgloss.Center).
		Foreground(theme.TextDim).
		Render("Enter for next question"))

	return b.String()
}

// renderVerification renders the AI reasoning-check panel for one
// answer, varying with stream status.
func (s *QuizScreen) renderVerification(width int, v *store.AiVerification) string {
	if s.verifier == nil {
		return ""
	}
	if !s.st.VerificationEnabled {
		return lipgloss.NewStyle().
			Width(width).
			Align(lipgloss.Center).
			Foreground(theme.TextDim).
			Italic(true).
			Render("Reasoning check off — press V to enable")
	}
	if v == nil {
		return ""
	}

	boxStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(theme.Border).
		Width(min(width-8, 70)).
		Padding(0, 1)

	var body string
	switch v.Status {
	case store.VerificationPending:
		body = lipgloss.NewStyle().Foreground(theme.TextDim).Render("Checking your reasoning...")

	case store.VerificationStreaming:
		body = lipgloss.NewStyle().Foreground(theme.TextDim).Render("Checking your reasoning...") +
			"\n" + lipgloss.NewStyle().Foreground(theme.Text).Render(v.Explanation)

	case store.VerificationComplete:
		verdict := lipgloss.NewStyle().Foreground(theme.Success).Bold(true).Render("Reasoning ✓")
		if v.Verdict == store.VerdictFail {
			verdict = lipgloss.NewStyle().Foreground(theme.Error).Bold(true).Render("Reasoning ✗")
		}
		body = verdict
		if v.Explanation != "" {
			body += "\n" + lipgloss.NewStyle().Foreground(theme.Text).Render(v.Explanation)
		}

	case store.VerificationError:
		body = lipgloss.NewStyle().Foreground(theme.Error).Render("Check failed: "+v.Error) +
			"\n" + lipgloss.NewStyle().Foreground(theme.TextDim).Render("Ctrl+R to retry — your answer still counts")
	}

	return lipgloss.PlaceHorizontal(width, lipgloss.Center, boxStyle.Render(body))
}

// renderResumePrompt offers to continue an interrupted attempt.
func (s *QuizScreen) renderResumePrompt(width, height int) string {
	var b strings.Builder
	b.WriteString("\n\n\n")

	b.WriteString(lipgloss.NewStyle().
		Width(width).
		Align(lipgloss.Center).
		Foreground(theme.Text).
		Bold(true).
		Render("Pick up where you left off?"))
	b.WriteString("\n")
	b.WriteString(lipgloss.NewStyle().
		Width(width).
		Align(lipgloss.Center).
		Foreground(theme.TextDim).
		Render(fmt.Sprintf("You answered %d of %d questions last time.",
			s.st.ResumeAnswered, len(s.st.Quiz.Questions))))
	b.WriteString("\n\n")

	b.WriteString(lipgloss.NewStyle().
		Width(width).
		Align(lipgloss.Center).
		Foreground(theme.Success).
		Render("[Enter] Resume"))
	b.WriteString("\n")
	b.WriteString(lipgloss.NewStyle().
		Width(width).
		Align(lipgloss.Center).
		Foreground(theme.Primary).
		Render("[F] Start fresh"))

	return b.String()
}

// renderResults renders the completion summary with a per-question
// breakdown in quiz order.
func (s *QuizScreen) renderResults(width, height int) string {
	total := len(s.st.Quiz.Questions)

	var b strings.Builder
	b.WriteString("\n\n")

	b.WriteString(lipgloss.NewStyle().
		Width(width).
		Align(lipgloss.Center).
		Foreground(theme.Accent).
		Bold(true).
		Render("Quiz complete!"))
	b.WriteString("\n\n")

	scoreStyle := lipgloss.NewStyle().Foreground(theme.Success).Bold(true)
	if s.st.CorrectCount*2 < total {
		scoreStyle = lipgloss.NewStyle().Foreground(theme.Error).Bold(true)
	}
	b.WriteString(lipgloss.NewStyle().
		Width(width).
		Align(lipgloss.Center).
		Render(scoreStyle.Render(fmt.Sprintf("%d / %d", s.st.CorrectCount, total))))
	b.WriteString("\n\n")

	if total > 0 {
		bar := components.NewProgressBar("", float64(s.st.CorrectCount)/float64(total), true, min(width-8, 48))
		b.WriteString(lipgloss.NewStyle().
			Width(width).
			Align(lipgloss.Center).
			Render(bar.View()))
		b.WriteString("\n\n")
	}

	var list strings.Builder
	for i := range s.st.Quiz.Questions {
		r := s.st.Results[i]
		mark := lipgloss.NewStyle().Foreground(theme.TextDim).Render("—")
		if r != nil {
			if r.Correct() {
				mark = lipgloss.NewStyle().Foreground(theme.Success).Render("✓")
			} else {
				mark = lipgloss.NewStyle().Foreground(theme.Error).Render("✗")
			}
		}
		title := s.st.Quiz.Questions[i].Question
		if len(title) > 60 {
			title = title[:57] + "..."
		}
		list.WriteString(fmt.Sprintf("%s %s\n", mark, title))
	}
	b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, list.String()))
	b.WriteString("\n")

	b.WriteString(lipgloss.NewStyle().
		Width(width).
		Align(lipgloss.Center).
		Foreground(theme.TextDim).
		Render("[R] Try again   [Esc] Done"))

	return b.String()
}

// renderQuitConfirm renders the quit confirmation dialog.
func renderQuitConfirm(width, height int, persisted bool) string {
	subtitle := "Progress is not saved for anonymous play."
	if persisted {
		subtitle = "Your progress is saved and you can resume later."
	}

	var b strings.Builder
	b.WriteString("\n\n\n")

	b.WriteString(lipgloss.NewStyle().
		Width(width).
		Align(lipgloss.Center).
		Foreground(theme.Text).
		Bold(true).
		Render("Leave this quiz?"))
	b.WriteString("\n")
	b.WriteString(lipgloss.NewStyle().
		Width(width).
		Align(lipgloss.Center).
		Foreground(theme.TextDim).
		Render(subtitle))
	b.WriteString("\n\n")

	b.WriteString(lipgloss.NewStyle().
		Width(width).
		Align(lipgloss.Center).
		Foreground(theme.Success).
		Render("[Y] Yes, leave"))
	b.WriteString("\n")
	b.WriteString(lipgloss.NewStyle().
		Width(width).
		Align(lipgloss.Center).
		Foreground(theme.Primary).
		Render("[N] No, keep going"))

	return b.String()
}

// renderLoading renders the loading state.
func renderLoading(width, height int) string {
	return lipgloss.NewStyle().
		Width(width).
		Align(lipgloss.Center).
		Foreground(theme.TextDim).
		Render("\n\n\n  Preparing your quiz...")
}

// renderError renders an error message.
func renderError(width, height int, errMsg string) string {
	return lipgloss.NewStyle().
		Width(width).
		Align(lipgloss.Center).
		Foreground(theme.Error).
		Render(fmt.Sprintf("\n\n\n  Error: %s\n\n  Press any key to go back.", errMsg))
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}
