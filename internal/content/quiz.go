package content

import (
	"regexp"
	"strings"
)

var (
	questionBodyRe = regexp.MustCompile(`(?s)\A(.*?)\n### Options`)
	optionsBlockRe = regexp.MustCompile(`(?s)### Options\s*\n(.*?)\n### Answer`)
	answerBlockRe  = regexp.MustCompile(`(?s)### Answer\s*\n(.*?)\n### Explanation`)
	explanationRe  = regexp.MustCompile(`(?s)### Explanation\s*\n(.*?)(?:\n### Mistakes|\z)`)
	mistakesRe     = regexp.MustCompile(`(?s)### Mistakes\s*\n(.*)\z`)

	optionLineRe = regexp.MustCompile(`^- ([A-D]):\s*(.+)$`)
)

// ParseQuiz parses a full quiz document (frontmatter plus "## Question N"
// sections) into a Quiz. Question order is preserved exactly as
// encountered; shuffling is a session concern.
func ParseQuiz(raw string) (*Quiz, error) {
	fields, body, err := parseFrontmatter(raw)
	if err != nil {
		return nil, err
	}

	questions, err := extractQuestions(body)
	if err != nil {
		return nil, err
	}

	meta := parseMeta(fields)
	quizType := QuizType(metaString(fields, "type"))
	return &Quiz{
		Meta:      meta,
		Type:      quizType,
		Title:     QuizTitle(meta.Subcategory, quizType),
		Questions: questions,
	}, nil
}

// extractQuestions turns raw question sections into Questions. Violations
// report the 1-based question index and the offending field, so a single
// bad question never masks its neighbors.
func extractQuestions(body string) ([]Question, error) {
	sections := splitSections(body, questionSectionRe)
	if len(sections) == 0 {
		return nil, &ParseError{Reason: "no question sections"}
	}

	questions := make([]Question, 0, len(sections))
	for i, section := range sections {
		q := Question{
			Question:    matchGroup(questionBodyRe, section),
			Options:     parseOptions(matchGroup(optionsBlockRe, section)),
			Answer:      matchGroup(answerBlockRe, section),
			Explanation: matchGroup(explanationRe, section),
			Mistakes:    matchGroup(mistakesRe, section),
		}

		idx := i + 1
		dup := dupLabel(q.Options)
		switch {
		case !strings.Contains(section, "### Options"):
			return nil, &ValidationError{Kind: "question", Index: idx, Field: "options", Msg: "missing ### Options header"}
		case q.Question == "":
			return nil, &ValidationError{Kind: "question", Index: idx, Field: "question", Msg: "cannot be empty"}
		case dup != "":
			return nil, &ValidationError{Kind: "question", Index: idx, Field: "options", Msg: "duplicate label " + dup}
		case len(q.Options) < 2:
			return nil, &ValidationError{Kind: "question", Index: idx, Field: "options", Msg: "at least 2 required"}
		case q.Answer == "":
			return nil, &ValidationError{Kind: "question", Index: idx, Field: "answer", Msg: "cannot be empty"}
		case !q.HasOption(q.Answer):
			return nil, &ValidationError{Kind: "question", Index: idx, Field: "answer", Msg: "must match an option label"}
		case q.Explanation == "":
			return nil, &ValidationError{Kind: "question", Index: idx, Field: "explanation", Msg: "cannot be empty"}
		}

		questions = append(questions, q)
	}
	return questions, nil
}

// parseOptions keeps only lines matching "- <LETTER>: <text>". Stray lines
// in the options block (blank lines, formatting noise) are dropped without
// error; tolerance here is deliberate.
func parseOptions(block string) []QuizOption {
	var options []QuizOption
	for _, line := range strings.Split(block, "\n") {
		m := optionLineRe.FindStringSubmatch(strings.TrimSpace(line))
		if m == nil {
			continue
		}
		options = append(options, QuizOption{Label: m[1], Text: strings.TrimSpace(m[2])})
	}
	return options
}

// dupLabel returns the first option label that appears twice, "" when
// all labels are unique.
func dupLabel(options []QuizOption) string {
	seen := make(map[string]bool, len(options))
	for _, o := range options {
		if seen[o.Label] {
			return o.Label
		}
		seen[o.Label] = true
	}
	return ""
}

var quizTypeLabels = map[QuizType]string{
	QuizTypePatternSelection: "Pattern Selection",
	QuizTypeAntiPatterns:     "Anti-Patterns",
	QuizTypeBigO:             "Big O Analysis",
}

// QuizTitle derives the display title of a quiz from its subcategory and type.
func QuizTitle(subcategory string, quizType QuizType) string {
	label, ok := quizTypeLabels[quizType]
	if !ok {
		label = string(quizType)
	}
	return titleCase(subcategory) + ": " + label
}
