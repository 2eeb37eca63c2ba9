package generate

import (
	"regexp"
	"strings"

	"github.com/anupamd/revise/internal/content"
)

// Input holds all context needed to generate a flashcard deck and quiz
// from source material.
type Input struct {
	// Category and Subcategory place the generated files in the corpus
	// taxonomy. Both are slugified before use.
	Category    string
	Subcategory string

	// Tags are carried into the frontmatter of both files.
	Tags []string

	// CardDifficulty and QuizDifficulty are the authored difficulty of
	// each file. Flashcards usually sit a notch below the quiz.
	CardDifficulty content.Difficulty
	QuizDifficulty content.Difficulty

	// QuizType selects the question style for the quiz file.
	QuizType content.QuizType

	// CardCount and QuestionCount are the exact number of cards and
	// questions to generate. Zero means the config default.
	CardCount     int
	QuestionCount int

	// SourceText is the normalized source material. See NormalizeSource.
	SourceText string
}

// FlashcardID derives the deck's frontmatter id from the taxonomy.
// The first deck of a subcategory carries sequence 001.
func (in Input) FlashcardID() string {
	return Slugify(in.Category) + "-" + Slugify(in.Subcategory) + "-group-001"
}

// QuizID derives the quiz's frontmatter id from the quiz type and subcategory.
func (in Input) QuizID() string {
	return string(in.QuizType) + "-" + Slugify(in.Subcategory) + "-001"
}

// Result is a validated generation: both markdown files plus their
// parsed forms, ready to write into the content directory.
type Result struct {
	FlashcardsFileName string
	QuizFileName       string
	FlashcardsMarkdown string
	QuizMarkdown       string

	Group *content.FlashcardGroup
	Quiz  *content.Quiz
}

var nonSlugRe = regexp.MustCompile(`[^a-z0-9]+`)

// Slugify lowercases a value and collapses runs of non-alphanumerics
// into single hyphens, trimming any at the edges.
func Slugify(value string) string {
	s := strings.ToLower(strings.TrimSpace(value))
	s = nonSlugRe.ReplaceAllString(s, "-")
	return strings.Trim(s, "-")
}

var idSequenceRe = regexp.MustCompile(`-(\d+)$`)

// sequenceFromID extracts the trailing numeric sequence of a content id,
// defaulting to "001" when the id carries none.
func sequenceFromID(id string) string {
	m := idSequenceRe.FindStringSubmatch(id)
	if m == nil {
		return "001"
	}
	return m[1]
}
