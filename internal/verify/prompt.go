package verify

import (
	"fmt"
	"strings"
)

const verdictSystemPrompt = `You are a strict but fair grader for a study app. A learner answered a
multiple-choice question and wrote a short justification for their choice.
Judge whether the justification demonstrates genuine understanding of why
the correct answer is correct — not whether the selected letter happens to
match.

Respond with a single JSON object and nothing else:
{"verdict": "PASS" or "FAIL", "explanation": "one or two sentences addressed to the learner"}

PASS only when the reasoning is substantively right. A lucky guess with an
empty or irrelevant justification is a FAIL even when the selected answer
is correct.`

// buildVerdictMessage renders one submission for the grader.
func buildVerdictMessage(in Input) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Question:\n%s\n\n", in.Question)

	b.WriteString("Options:\n")
	for _, opt := range in.Options {
		fmt.Fprintf(&b, "- %s: %s\n", opt.Label, opt.Text)
	}

	fmt.Fprintf(&b, "\nCorrect answer: %s\n", in.CorrectAnswer)
	fmt.Fprintf(&b, "Learner selected: %s\n\n", in.SelectedAnswer)
	fmt.Fprintf(&b, "Learner's justification:\n%s\n\n", in.Justification)
	fmt.Fprintf(&b, "Reference explanation:\n%s\n", in.Explanation)

	return b.String()
}
