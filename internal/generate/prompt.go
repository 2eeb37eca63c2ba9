package generate

import (
	"fmt"
	"strings"

	"github.com/anupamd/revise/internal/content"
)

const systemPrompt = `You are an expert educator creating learning content for a spaced repetition and quiz system.

Flashcards teach the basics; quizzes come after and must test deep understanding:
- Application over recall: test the ability to APPLY knowledge to scenarios, not recite facts.
- Realistic scenarios: use practical, real-world problem contexts.
- Meaningful distractors: every wrong option should represent a common misconception, wrong for a specific teachable reason.
- Educational explanations: document both the correct reasoning and the common mistakes. Students must justify their answers and an AI grades the justification against your explanation, so make it detailed enough to grade with.

Difficulty guidelines:
- easy: clear-cut scenarios with one obviously correct approach.
- medium: requires trade-off analysis or understanding of specific properties.
- hard: nuanced scenarios where multiple approaches could work but one is clearly optimal.`

// quizTypeGuidance tells the model what each quiz style tests.
var quizTypeGuidance = map[content.QuizType]string{
	content.QuizTypePatternSelection: `Pattern Selection: test the ability to choose the RIGHT approach for a problem.
- Present realistic scenarios or problem descriptions.
- Options are different data structures, algorithms, or approaches.
- The correct answer must be clearly optimal, not subjective.
- Distractors are plausible but suboptimal for specific reasons.`,

	content.QuizTypeAntiPatterns: `Anti-Patterns: test the ability to identify INCORRECT or suboptimal approaches.
- Present scenarios where common mistakes occur.
- Options include tempting but wrong approaches.
- Focus on what NOT to do and why.
- Highlight common misconceptions and pitfalls.`,

	content.QuizTypeBigO: `Big-O Analysis: test understanding of time and space complexity.
- Present code snippets or algorithm descriptions.
- Options are different complexity classes.
- Include best/worst/average case questions.
- Test understanding of why certain complexities arise.`,
}

// buildUserMessage constructs the user message from Input and Config limits.
func buildUserMessage(input Input, cfg Config) string {
	cards := input.CardCount
	if cards <= 0 {
		cards = cfg.DefaultCardCount
	}
	questions := input.QuestionCount
	if questions <= 0 {
		questions = cfg.DefaultQuestionCount
	}

	source := input.SourceText
	if cfg.MaxSourceBytes > 0 && len(source) > cfg.MaxSourceBytes {
		source = source[:cfg.MaxSourceBytes]
	}

	var b strings.Builder

	b.WriteString("Create TWO markdown files from the source material.\n\n")

	b.WriteString("File 1 is a flashcard deck:\n")
	b.WriteString("- Frontmatter block (--- delimited) with keys: id, category, subcategory, difficulty, tags, version.\n")
	b.WriteString("- Then cards, each as:\n")
	b.WriteString("  ## Card 1\n  ### Front\n  ...\n  ### Back\n  ...\n\n")

	b.WriteString("File 2 is a quiz:\n")
	b.WriteString("- Frontmatter block with keys: id, type, category, subcategory, difficulty, tags, version.\n")
	b.WriteString("- Then questions, each as:\n")
	b.WriteString("  ## Question 1\n  [question text]\n  ### Options\n  - A: ...\n  - B: ...\n  - C: ...\n  - D: ...\n  ### Answer\n  [single letter]\n  ### Explanation\n  ...\n  ### Mistakes\n  ...\n\n")

	if guidance, ok := quizTypeGuidance[input.QuizType]; ok {
		b.WriteString("Quiz style:\n")
		b.WriteString(guidance)
		b.WriteString("\n\n")
	}

	b.WriteString("Rules:\n")
	b.WriteString("- Use version: 1.0.0 for both files.\n")
	fmt.Fprintf(&b, "- Output EXACTLY %d flashcards and EXACTLY %d quiz questions.\n", cards, questions)
	b.WriteString("- Option labels run A through D with no repeats, and the answer letter must match one of them.\n")
	b.WriteString("- Do not add sections or headings outside the required format.\n\n")

	b.WriteString("Parameters:\n")
	fmt.Fprintf(&b, "- category: %s\n", Slugify(input.Category))
	fmt.Fprintf(&b, "- subcategory: %s\n", Slugify(input.Subcategory))
	fmt.Fprintf(&b, "- tags: [%s]\n", strings.Join(input.Tags, ", "))
	fmt.Fprintf(&b, "- flashcard difficulty: %s\n", input.CardDifficulty)
	fmt.Fprintf(&b, "- quiz difficulty: %s\n", input.QuizDifficulty)
	fmt.Fprintf(&b, "- quiz type: %s\n", input.QuizType)
	fmt.Fprintf(&b, "- flashcard id: %s\n", input.FlashcardID())
	fmt.Fprintf(&b, "- quiz id: %s\n", input.QuizID())

	b.WriteString("\nSource material:\n<source>\n")
	b.WriteString(source)
	b.WriteString("\n</source>")

	return b.String()
}
