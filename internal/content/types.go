// Package content parses the markdown study corpus into typed flashcard
// groups and quizzes. Documents are a frontmatter block followed by
// numbered sections ("## Card N" or "## Question N").
package content

// Difficulty is the authored difficulty of a group or quiz.
type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

// QuizType identifies the kind of quiz a document contains.
type QuizType string

const (
	QuizTypePatternSelection QuizType = "pattern-selection"
	QuizTypeAntiPatterns     QuizType = "anti-patterns"
	QuizTypeBigO             QuizType = "big-o"
)

// Meta is the frontmatter shared by both document kinds.
type Meta struct {
	ID          string
	Category    string
	Subcategory string
	Difficulty  Difficulty
	Tags        []string
	Version     string
}

// Flashcard is one front/back pair. Immutable once parsed.
type Flashcard struct {
	Front string
	Back  string
}

// FlashcardGroup is a parsed flashcard document. Card order is document
// order and is semantically meaningful (study progression).
type FlashcardGroup struct {
	Meta
	Title string
	Cards []Flashcard
}

// QuizOption is one answer choice. Label is a single letter A-D.
type QuizOption struct {
	Label string
	Text  string
}

// Question is one quiz question with its grading material.
type Question struct {
	Question    string
	Options     []QuizOption
	Answer      string
	Explanation string
	Mistakes    string // optional
}

// HasOption reports whether the answer key matches one of the option labels.
func (q *Question) HasOption(label string) bool {
	for _, o := range q.Options {
		if o.Label == label {
			return true
		}
	}
	return false
}

// Quiz is a parsed quiz document. Question order is document order.
type Quiz struct {
	Meta
	Type      QuizType
	Title     string
	Questions []Question
}
